package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// RequestObserver はHTTPリクエストの処理結果を記録する。
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Metrics はリクエストのメソッド・ルート・ステータス・処理時間を記録するGinミドルウェアを返す。
// ルートにはパスパラメータを展開しないテンプレート（例: /api/products/:id）を使用する。
func Metrics(observer RequestObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observer.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
