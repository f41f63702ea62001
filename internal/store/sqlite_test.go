package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteInsertAndSelect(t *testing.T) {
	t.Parallel()

	t.Run("挿入した行が採番されたIDと共に返ること", func(t *testing.T) {
		t.Parallel()

		db := newTestSQLite(t)
		ctx := context.Background()

		var first, second Product
		require.NoError(t, db.Insert(ctx, TableProducts, map[string]any{"name": "Pen", "price": 1.5, "created_at": "2025-01-01T00:00:00Z"}, &first))
		require.NoError(t, db.Insert(ctx, TableProducts, map[string]any{"name": "Ink", "price": 3.0, "stock": 7, "created_at": "2025-01-01T00:00:00Z"}, &second))

		assert.Equal(t, int64(1), first.ID)
		assert.Equal(t, int64(2), second.ID)
		assert.Equal(t, "", first.Description)
		assert.Equal(t, int64(7), second.Stock)

		var all []Product
		require.NoError(t, db.Select(ctx, TableProducts, &all))
		assert.Equal(t, []Product{first, second}, all)
	})

	t.Run("eqとinの条件で絞り込めること", func(t *testing.T) {
		t.Parallel()

		db := newTestSQLite(t)
		ctx := context.Background()
		for _, owner := range []string{"a", "b", "a"} {
			var item CartItem
			require.NoError(t, db.Insert(ctx, TableCartItems, map[string]any{
				"user_id": owner, "product_id": 1, "quantity": 1, "created_at": "2025-01-01T00:00:00Z",
			}, &item))
		}

		var owned []CartItem
		require.NoError(t, db.Select(ctx, TableCartItems, &owned, Eq("user_id", "a")))
		require.Len(t, owned, 2)
		assert.Equal(t, []int64{1, 3}, []int64{owned[0].ID, owned[1].ID})

		var picked []CartItem
		require.NoError(t, db.Select(ctx, TableCartItems, &picked, In("id", []int64{2, 3}), Eq("user_id", "b")))
		require.Len(t, picked, 1)
		assert.Equal(t, int64(2), picked[0].ID)

		var none []CartItem
		require.NoError(t, db.Select(ctx, TableCartItems, &none, In("id", []int64{})))
		assert.Empty(t, none)
	})

	t.Run("未知のテーブルや列は拒否されること", func(t *testing.T) {
		t.Parallel()

		db := newTestSQLite(t)
		ctx := context.Background()

		var rows []Product
		assert.Error(t, db.Select(ctx, "users; DROP TABLE products", &rows))
		assert.Error(t, db.Select(ctx, TableProducts, &rows, Eq("name = '' OR 1=1 --", "x")))

		var p Product
		assert.Error(t, db.Insert(ctx, TableProducts, map[string]any{"secret": 1}, &p))
		assert.Error(t, db.Insert(ctx, TableProducts, map[string]any{}, &p))
	})

	t.Run("必須列が欠けた挿入はエラーになること", func(t *testing.T) {
		t.Parallel()

		var p Product
		err := newTestSQLite(t).Insert(context.Background(), TableProducts, map[string]any{"name": "no price"}, &p)
		assert.Error(t, err)
	})
	t.Run("外部キー制約がプールのどの接続でも有効であること", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		db, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "store.db"), discardLogger())
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })

		// 最初の接続を握ったまま、別の接続で孤立した明細を挿入する
		held, err := db.db.Connx(ctx)
		require.NoError(t, err)
		t.Cleanup(func() { _ = held.Close() })

		var enabled int
		require.NoError(t, held.QueryRowxContext(ctx, "PRAGMA foreign_keys").Scan(&enabled))
		assert.Equal(t, 1, enabled)

		var item OrderItem
		err = db.Insert(ctx, TableOrderItems, map[string]any{
			"order_id": 999, "product_id": 1, "quantity": 1, "price": 1.0,
		}, &item)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "FOREIGN KEY")

		var items []OrderItem
		require.NoError(t, db.Select(ctx, TableOrderItems, &items))
		assert.Empty(t, items)
	})
}

func TestWithForeignKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{name: "パラメータなし", dsn: "store.db", want: "store.db?_pragma=foreign_keys(1)"},
		{name: "インメモリ", dsn: ":memory:", want: ":memory:?_pragma=foreign_keys(1)"},
		{name: "既存パラメータあり", dsn: "file:store.db?cache=shared", want: "file:store.db?cache=shared&_pragma=foreign_keys(1)"},
		{name: "指定済み", dsn: "store.db?_pragma=foreign_keys(0)", want: "store.db?_pragma=foreign_keys(0)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, withForeignKeys(tt.dsn))
		})
	}
}
