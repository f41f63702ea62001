package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound は単一リソースの取得で該当行が無い場合のエラー。
var ErrNotFound = errors.New("resource not found")

// テーブル名。
const (
	TableProducts   = "products"
	TableCartItems  = "cart_items"
	TableOrders     = "orders"
	TableOrderItems = "order_items"
)

// Op はフィルタの比較演算子。
type Op string

const (
	// OpEq は等価比較。
	OpEq Op = "eq"
	// OpIn はいずれかの値に一致。
	OpIn Op = "in"
)

// Filter はselectの絞り込み条件。複数指定した場合はANDで結合する。
type Filter struct {
	Column string
	Op     Op
	Values []any
}

// Eq はcolumn = valueの条件を返す。
func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: OpEq, Values: []any{value}}
}

// In はcolumnがvaluesのいずれかに一致する条件を返す。
func In[T any](column string, values []T) Filter {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return Filter{Column: column, Op: OpIn, Values: vs}
}

// Backend はテーブル単位のselect/insertを提供する外部ストア。
// 実装は並行に呼び出しても安全でなければならない。
type Backend interface {
	// Select はfiltersに一致する行をid昇順でdest（スライスへのポインタ）に格納する。
	Select(ctx context.Context, table string, dest any, filters ...Filter) error
	// Insert はrowを1行挿入し、ストアが採番した値を含む行をdest（構造体へのポインタ）に格納する。
	Insert(ctx context.Context, table string, row map[string]any, dest any) error
}

// timestamp はcreated_atに保存する形式で時刻を整形する。
func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
