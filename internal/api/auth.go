package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/storefront/internal/identity"
	"github.com/nao1215/storefront/internal/metrics"
	"github.com/nao1215/storefront/pkg/middleware"
)

// registerRequest はアカウント登録リクエストのJSON構造。
type registerRequest struct {
	// Email はログインに使用するメールアドレス。
	Email string `json:"email" binding:"required"`
	// Password は平文のパスワード。プロバイダーへそのまま渡し、ここでは保存しない。
	Password string `json:"password" binding:"required"`
	// Name は表示名。
	Name string `json:"name"`
}

// loginRequest はログインリクエストのJSON構造。
type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// handleRegister はアカウント登録を処理するハンドラを返す。
func (s *Server) handleRegister() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.respondBindError(c, err)
			return
		}

		user, err := s.verifier.Register(c.Request.Context(), req.Email, req.Password, req.Name)
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// handleLogin はログインを処理するハンドラを返す。
// 認証情報を検証し、ユーザーIDを束縛したセッショントークンを発行する。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.respondBindError(c, err)
			return
		}

		user, err := s.verifier.Verify(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, identity.ErrInvalidCredentials) {
				s.metrics.ObserveLogin(metrics.LoginFailure)
			} else {
				s.metrics.ObserveLogin(metrics.LoginError)
			}
			s.respondError(c, err)
			return
		}

		tokenString, err := s.codec.Issue(user.ID)
		if err != nil {
			s.metrics.ObserveLogin(metrics.LoginError)
			s.respondError(c, err)
			return
		}
		s.metrics.ObserveLogin(metrics.LoginSuccess)
		s.metrics.ObserveTokenIssued()

		c.JSON(http.StatusOK, gin.H{"token": tokenString, "user": user})
	}
}

// handleGetCurrentUser はトークンの主体であるユーザーを返すハンドラを返す。
func (s *Server) handleGetCurrentUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.verifier.Lookup(c.Request.Context(), middleware.GetUserID(c))
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}
