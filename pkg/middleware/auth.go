package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/storefront/pkg/token"
)

// クライアントに返す認可エラーメッセージ。検証失敗の詳細は含めない。
const (
	msgNoToken      = "No token"
	msgInvalidToken = "Invalid token"
)

// 認可ゲートが拒否した理由。メトリクスのラベルとログに使用する。
const (
	ReasonMissing          = "missing"
	ReasonMalformed        = "malformed"
	ReasonInvalidSignature = "invalid_signature"
	ReasonExpired          = "expired"
	ReasonInvalidClaims    = "invalid_claims"
)

// ginKeyUserID は検証済みユーザーIDを格納するGinコンテキストのキー。
const ginKeyUserID = "user_id"

// userIDKey はrequest contextに検証済みユーザーIDを格納するためのキー。
type userIDKey struct{}

// TokenVerifier はセッショントークンを検証してユーザーIDを返す。
// *token.Codec が実装する。
type TokenVerifier interface {
	Verify(tokenString string) (string, error)
}

// RejectionObserver は認可ゲートの拒否を記録する。
type RejectionObserver interface {
	ObserveRejection(reason string)
}

// Authenticate はBearerトークンを検証するGinミドルウェアを返す。
// 検証に成功した場合のみユーザーIDをコンテキストに設定して後続のハンドラーへ進む。
// observerはnilでもよい。
func Authenticate(verifier TokenVerifier, logger *slog.Logger, observer RejectionObserver) gin.HandlerFunc {
	reject := func(c *gin.Context, reason, message string, err error) {
		if observer != nil {
			observer.ObserveRejection(reason)
		}
		attrs := []any{
			"reason", reason,
			"path", c.Request.URL.Path,
			"request_id", GetRequestID(c.Request.Context()),
		}
		if err != nil {
			attrs = append(attrs, "error", err)
		}
		logger.WarnContext(c.Request.Context(), "認可ゲートがリクエストを拒否しました", attrs...)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
	}

	return func(c *gin.Context) {
		tokenString := bearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			reject(c, ReasonMissing, msgNoToken, nil)
			return
		}

		userID, err := verifier.Verify(tokenString)
		if err != nil {
			reject(c, rejectionReason(err), msgInvalidToken, err)
			return
		}

		c.Set(ginKeyUserID, userID)
		c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

// bearerToken はAuthorizationヘッダーからBearerトークンを取り出す。
// スキームは大文字小文字を区別しない。取り出せない場合は空文字列を返す。
func bearerToken(header string) string {
	scheme, value, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(value)
}

// rejectionReason はトークン検証エラーを拒否理由に変換する。
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return ReasonExpired
	case errors.Is(err, token.ErrInvalidSignature):
		return ReasonInvalidSignature
	case errors.Is(err, token.ErrInvalidClaims):
		return ReasonInvalidClaims
	default:
		return ReasonMalformed
	}
}

// GetUserID はGinコンテキストから検証済みユーザーIDを取得する。
// Authenticateミドルウェアが事前に適用されている必要がある。
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get(ginKeyUserID)
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// WithUserID はコンテキストにユーザーIDを設定する。
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext はcontextからユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}
