package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/storefront/internal/identity"
	"github.com/nao1215/storefront/pkg/httpclient"
	"github.com/nao1215/storefront/pkg/middleware"
)

// クライアントに返すエラーメッセージ。
const (
	msgInternal           = "Internal server error"
	msgInvalidCredentials = "Invalid login credentials"
	msgMissingCredentials = "Email and password are required"
	msgProductNotFound    = "Product not found"
	msgInvalidRequest     = "Invalid request body"
)

// respondError はエラーをHTTPレスポンスに変換する。
// 外部APIが返したエラーはそのメッセージを400で返し、
// それ以外の想定外のエラーは詳細をログにだけ残して500を返す。
func (s *Server) respondError(c *gin.Context, err error) {
	var (
		regErr *identity.RegistrationError
		apiErr *httpclient.APIError
	)
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": msgInvalidCredentials})
	case errors.Is(err, identity.ErrMissingCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgMissingCredentials})
	case errors.As(err, &regErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": regErr.Message})
	case errors.As(err, &apiErr):
		s.logger.WarnContext(c.Request.Context(), "外部APIがエラーを返しました",
			"path", c.FullPath(),
			"status", apiErr.StatusCode,
			"code", apiErr.Code,
			"request_id", middleware.GetRequestID(c.Request.Context()),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": apiErr.Message})
	default:
		s.logger.ErrorContext(c.Request.Context(), "リクエストの処理に失敗しました",
			"path", c.FullPath(),
			"error", err,
			"request_id", middleware.GetRequestID(c.Request.Context()),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}

// respondBindError はリクエストボディの検証エラーを400で返す。
// 検証エラーの詳細は内部の型名を含むためログにだけ残す。
func (s *Server) respondBindError(c *gin.Context, err error) {
	s.logger.WarnContext(c.Request.Context(), "リクエストボディが不正です",
		"path", c.FullPath(),
		"error", err,
		"request_id", middleware.GetRequestID(c.Request.Context()),
	)
	c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidRequest})
}
