package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/storefront/pkg/middleware"
)

// addToCartRequest はカート追加リクエストのJSON構造。
// user_idを送られても無視し、所有者はトークンの主体とする。
type addToCartRequest struct {
	ProductID *int64 `json:"product_id" binding:"required"`
	Quantity  *int64 `json:"quantity" binding:"required"`
}

// handleAddToCart はカートへの商品追加を処理するハンドラを返す。
func (s *Server) handleAddToCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addToCartRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.respondBindError(c, err)
			return
		}

		item, err := s.carts.Add(c.Request.Context(), middleware.GetUserID(c), *req.ProductID, *req.Quantity)
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"cartItem": item})
	}
}

// handleGetCart はログイン中のユーザーのカートを返すハンドラを返す。
func (s *Server) handleGetCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := s.carts.Items(c.Request.Context(), middleware.GetUserID(c))
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}
