package store

// Product はカタログの商品。
type Product struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description string  `json:"description" db:"description"`
	Price       float64 `json:"price" db:"price"`
	ImageURL    string  `json:"image_url" db:"image_url"`
	Stock       int64   `json:"stock" db:"stock"`
	CreatedAt   string  `json:"created_at" db:"created_at"`
}

// NewProduct は商品登録の入力。
type NewProduct struct {
	Name        string
	Description string
	Price       float64
	ImageURL    string
	Stock       int64
}

// CartItem はユーザーのカートに入った商品。
type CartItem struct {
	ID        int64  `json:"id" db:"id"`
	UserID    string `json:"user_id" db:"user_id"`
	ProductID int64  `json:"product_id" db:"product_id"`
	Quantity  int64  `json:"quantity" db:"quantity"`
	CreatedAt string `json:"created_at" db:"created_at"`
}

// Order はユーザーの注文。Itemsはorder_itemsテーブルの行から組み立てる。
type Order struct {
	ID         int64       `json:"id" db:"id"`
	UserID     string      `json:"user_id" db:"user_id"`
	TotalPrice float64     `json:"total_price" db:"total_price"`
	Status     string      `json:"status" db:"status"`
	CreatedAt  string      `json:"created_at" db:"created_at"`
	Items      []OrderItem `json:"items" db:"-"`
}

// OrderItem は注文明細。
type OrderItem struct {
	ID        int64   `json:"id" db:"id"`
	OrderID   int64   `json:"order_id" db:"order_id"`
	ProductID int64   `json:"product_id" db:"product_id"`
	Quantity  int64   `json:"quantity" db:"quantity"`
	Price     float64 `json:"price" db:"price"`
}

// NewOrder は注文作成の入力。合計金額は明細から再計算せず、そのまま保存する。
type NewOrder struct {
	TotalPrice float64
	Items      []NewOrderItem
}

// NewOrderItem は注文明細の入力。
type NewOrderItem struct {
	ProductID int64
	Quantity  int64
	Price     float64
}
