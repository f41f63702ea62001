package store

import (
	"context"
	"fmt"
	"time"
)

// Catalog は商品カタログのリポジトリ。一覧と個別取得はCacheを経由する。
type Catalog struct {
	backend Backend
	cache   Cache
	now     func() time.Time
}

// NewCatalog は新しいCatalogを生成する。cacheがnilの場合はキャッシュしない。
func NewCatalog(backend Backend, cache Cache) *Catalog {
	if cache == nil {
		cache = NopCache{}
	}
	return &Catalog{backend: backend, cache: cache, now: time.Now}
}

// List はすべての商品を返す。
func (c *Catalog) List(ctx context.Context) ([]Product, error) {
	cached, gen, ok := c.cache.Products(ctx)
	if ok {
		return cached, nil
	}

	products := make([]Product, 0)
	if err := c.backend.Select(ctx, TableProducts, &products); err != nil {
		return nil, fmt.Errorf("商品一覧の取得に失敗: %w", err)
	}
	c.cache.SetProducts(ctx, gen, products)
	return products, nil
}

// Get は指定IDの商品を返す。存在しない場合はErrNotFoundを返す。
func (c *Catalog) Get(ctx context.Context, id int64) (*Product, error) {
	if product, ok := c.cache.Product(ctx, id); ok {
		return product, nil
	}

	var products []Product
	if err := c.backend.Select(ctx, TableProducts, &products, Eq("id", id)); err != nil {
		return nil, fmt.Errorf("商品 %d の取得に失敗: %w", id, err)
	}
	if len(products) == 0 {
		return nil, ErrNotFound
	}
	product := &products[0]
	c.cache.SetProduct(ctx, product)
	return product, nil
}

// Create は商品を登録し、一覧のキャッシュを破棄する。
func (c *Catalog) Create(ctx context.Context, p NewProduct) (*Product, error) {
	var product Product
	row := map[string]any{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"image_url":   p.ImageURL,
		"stock":       p.Stock,
		"created_at":  timestamp(c.now()),
	}
	if err := c.backend.Insert(ctx, TableProducts, row, &product); err != nil {
		return nil, fmt.Errorf("商品の登録に失敗: %w", err)
	}
	c.cache.InvalidateProducts(ctx)
	return &product, nil
}
