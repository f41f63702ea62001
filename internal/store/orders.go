package store

import (
	"context"
	"fmt"
	"time"
)

// OrderStatusPending は作成直後の注文ステータス。
const OrderStatusPending = "pending"

// Orders は注文のリポジトリ。すべての操作は注文者のユーザーIDで絞り込まれる。
type Orders struct {
	backend Backend
	now     func() time.Time
}

// NewOrders は新しいOrdersを生成する。
func NewOrders(backend Backend) *Orders {
	return &Orders{backend: backend, now: time.Now}
}

// Create は注文と明細を保存する。
// ストアがトランザクションを提供しないため、明細の保存に失敗した場合は
// 注文だけが残ることがある。
func (o *Orders) Create(ctx context.Context, userID string, in NewOrder) (*Order, error) {
	if userID == "" {
		return nil, errEmptyOwner
	}

	var order Order
	row := map[string]any{
		"user_id":     userID,
		"total_price": in.TotalPrice,
		"status":      OrderStatusPending,
		"created_at":  timestamp(o.now()),
	}
	if err := o.backend.Insert(ctx, TableOrders, row, &order); err != nil {
		return nil, fmt.Errorf("注文の作成に失敗: %w", err)
	}

	order.Items = make([]OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		var item OrderItem
		itemRow := map[string]any{
			"order_id":   order.ID,
			"product_id": it.ProductID,
			"quantity":   it.Quantity,
			"price":      it.Price,
		}
		if err := o.backend.Insert(ctx, TableOrderItems, itemRow, &item); err != nil {
			return nil, fmt.Errorf("注文 %d の明細の保存に失敗: %w", order.ID, err)
		}
		order.Items = append(order.Items, item)
	}
	return &order, nil
}

// List はユーザーの注文を明細付きで返す。
func (o *Orders) List(ctx context.Context, userID string) ([]Order, error) {
	if userID == "" {
		return nil, errEmptyOwner
	}

	orders := make([]Order, 0)
	if err := o.backend.Select(ctx, TableOrders, &orders, Eq("user_id", userID)); err != nil {
		return nil, fmt.Errorf("注文一覧の取得に失敗: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Items = make([]OrderItem, 0)
	}

	var items []OrderItem
	if err := o.backend.Select(ctx, TableOrderItems, &items, In("order_id", ids)); err != nil {
		return nil, fmt.Errorf("注文明細の取得に失敗: %w", err)
	}
	for _, it := range items {
		if i, ok := index[it.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return orders, nil
}
