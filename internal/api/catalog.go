package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/storefront/internal/store"
	"github.com/nao1215/storefront/pkg/httpclient"
)

// createProductRequest は商品登録リクエストのJSON構造。
// 数値は0を許容しつつ未指定を検出するためポインタで受け取る。
type createProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       *float64 `json:"price" binding:"required"`
	ImageURL    string   `json:"image_url"`
	Stock       *int64   `json:"stock"`
}

// handleListProducts は商品一覧を返すハンドラを返す。
func (s *Server) handleListProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := s.catalog.List(c.Request.Context())
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

// handleGetProduct は指定IDの商品を返すハンドラを返す。
// IDが数値でない場合やストアが検索を拒否した場合も「見つからない」として扱う。
func (s *Server) handleGetProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": msgProductNotFound})
			return
		}

		product, err := s.catalog.Get(c.Request.Context(), id)
		var apiErr *httpclient.APIError
		switch {
		case errors.Is(err, store.ErrNotFound), errors.As(err, &apiErr):
			c.JSON(http.StatusNotFound, gin.H{"error": msgProductNotFound})
			return
		case err != nil:
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"product": product})
	}
}

// handleCreateProduct は商品登録を処理するハンドラを返す。
func (s *Server) handleCreateProduct() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.respondBindError(c, err)
			return
		}

		in := store.NewProduct{
			Name:        req.Name,
			Description: req.Description,
			Price:       *req.Price,
			ImageURL:    req.ImageURL,
		}
		if req.Stock != nil {
			in.Stock = *req.Stock
		}

		product, err := s.catalog.Create(c.Request.Context(), in)
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"product": product})
	}
}
