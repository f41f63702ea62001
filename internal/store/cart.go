package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// errEmptyOwner は所有者の無い行を読み書きしようとした場合のエラー。
var errEmptyOwner = errors.New("所有者のユーザーIDが空です")

// Carts はカートのリポジトリ。すべての操作は所有者のユーザーIDで絞り込まれる。
type Carts struct {
	backend Backend
	now     func() time.Time
}

// NewCarts は新しいCartsを生成する。
func NewCarts(backend Backend) *Carts {
	return &Carts{backend: backend, now: time.Now}
}

// Add はユーザーのカートに商品を追加する。
func (c *Carts) Add(ctx context.Context, userID string, productID, quantity int64) (*CartItem, error) {
	if userID == "" {
		return nil, errEmptyOwner
	}

	var item CartItem
	row := map[string]any{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
		"created_at": timestamp(c.now()),
	}
	if err := c.backend.Insert(ctx, TableCartItems, row, &item); err != nil {
		return nil, fmt.Errorf("カートへの追加に失敗: %w", err)
	}
	return &item, nil
}

// Items はユーザーのカートの中身を返す。
func (c *Carts) Items(ctx context.Context, userID string) ([]CartItem, error) {
	if userID == "" {
		return nil, errEmptyOwner
	}

	items := make([]CartItem, 0)
	if err := c.backend.Select(ctx, TableCartItems, &items, Eq("user_id", userID)); err != nil {
		return nil, fmt.Errorf("カートの取得に失敗: %w", err)
	}
	return items, nil
}
