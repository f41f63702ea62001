package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/storefront/internal/store"
	"github.com/nao1215/storefront/pkg/middleware"
)

// createOrderRequest は注文作成リクエストのJSON構造。
// 必須なのは明細リストと合計金額の存在のみで、明細の中身は検証しない。
type createOrderRequest struct {
	Items      []json.RawMessage `json:"items" binding:"required"`
	TotalPrice *float64          `json:"total_price" binding:"required"`
}

// orderItemRequest は注文明細のJSON構造。
type orderItemRequest struct {
	ProductID *int64   `json:"product_id"`
	Quantity  *int64   `json:"quantity"`
	Price     *float64 `json:"price"`
}

// toNewOrderItems は商品IDと数量を持つ明細だけを保存対象に変換する。
// 解釈できない明細は読み飛ばし、単価が無い明細は0として保存する。
func toNewOrderItems(items []json.RawMessage) []store.NewOrderItem {
	out := make([]store.NewOrderItem, 0, len(items))
	for _, raw := range items {
		var it orderItemRequest
		if err := json.Unmarshal(raw, &it); err != nil {
			continue
		}
		if it.ProductID == nil || it.Quantity == nil {
			continue
		}
		item := store.NewOrderItem{ProductID: *it.ProductID, Quantity: *it.Quantity}
		if it.Price != nil {
			item.Price = *it.Price
		}
		out = append(out, item)
	}
	return out
}

// handleCreateOrder は注文作成を処理するハンドラを返す。
// 合計金額と明細の整合性や在庫は検証しない。
func (s *Server) handleCreateOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.respondBindError(c, err)
			return
		}

		in := store.NewOrder{
			TotalPrice: *req.TotalPrice,
			Items:      toNewOrderItems(req.Items),
		}

		order, err := s.orders.Create(c.Request.Context(), middleware.GetUserID(c), in)
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// handleListOrders はログイン中のユーザーの注文一覧を返すハンドラを返す。
func (s *Server) handleListOrders() gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := s.orders.List(c.Request.Context(), middleware.GetUserID(c))
		if err != nil {
			s.respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}
