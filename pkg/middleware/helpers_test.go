package middleware

import (
	"log/slog"
	"sync"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// discardLogger はテスト用にログを破棄するロガーを返す。
func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// recordingObserver は拒否理由を記録するテスト用のオブザーバー。
type recordingObserver struct {
	mu         sync.Mutex
	rejections []string
}

func (o *recordingObserver) ObserveRejection(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejections = append(o.rejections, reason)
}

func (o *recordingObserver) reasons() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.rejections...)
}
