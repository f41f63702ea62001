package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	catalogKeyPrefix = "storefront:catalog"
	// DefaultCatalogTTL はカタログキャッシュのデフォルトの有効期間。
	DefaultCatalogTTL = 30 * time.Second
)

// ProductsGeneration は商品一覧キャッシュの世代。商品登録のたびに進む。
// 負の値は世代を読めなかったことを表し、その一覧はキャッシュしない。
type ProductsGeneration int64

// Cache はカタログの読み取りキャッシュ。
// キャッシュの障害は取得失敗（ミス）として扱い、呼び出し元にエラーを返さない。
//
// 商品一覧は世代ごとのキーに保存する。Productsが返した世代をSetProductsに渡すことで、
// 読み取り中に商品が登録された場合の古い一覧は破棄済みの世代に書かれ、参照されない。
type Cache interface {
	Products(ctx context.Context) ([]Product, ProductsGeneration, bool)
	SetProducts(ctx context.Context, gen ProductsGeneration, products []Product)
	Product(ctx context.Context, id int64) (*Product, bool)
	SetProduct(ctx context.Context, product *Product)
	InvalidateProducts(ctx context.Context)
}

// CacheObserver はキャッシュのヒットとミスを記録する。
type CacheObserver interface {
	ObserveCache(name string, hit bool)
}

// NopCache は何もキャッシュしないCache。REDIS_URLが未設定の場合に使用する。
type NopCache struct{}

func (NopCache) Products(context.Context) ([]Product, ProductsGeneration, bool) {
	return nil, -1, false
}
func (NopCache) SetProducts(context.Context, ProductsGeneration, []Product) {}
func (NopCache) Product(context.Context, int64) (*Product, bool)            { return nil, false }
func (NopCache) SetProduct(context.Context, *Product)                       {}
func (NopCache) InvalidateProducts(context.Context)                         {}

// RedisCache はRedisを使うCache。値はJSONで保存する。
type RedisCache struct {
	redis    *redis.Client
	ttl      time.Duration
	logger   *slog.Logger
	observer CacheObserver
}

// NewRedisCache は新しいRedisCacheを生成する。ttlが0以下の場合はDefaultCatalogTTLを使う。
// observerはnilでもよい。
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *slog.Logger, observer CacheObserver) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultCatalogTTL
	}
	return &RedisCache{redis: client, ttl: ttl, logger: logger, observer: observer}
}

func generationKey() string {
	return catalogKeyPrefix + ":products:generation"
}

func listKey(gen ProductsGeneration) string {
	return catalogKeyPrefix + ":products:" + strconv.FormatInt(int64(gen), 10)
}

func productKey(id int64) string {
	return catalogKeyPrefix + ":product:" + strconv.FormatInt(id, 10)
}

// Products は現在の世代とその世代でキャッシュされた商品一覧を返す。
func (c *RedisCache) Products(ctx context.Context) ([]Product, ProductsGeneration, bool) {
	gen, err := c.redis.Get(ctx, generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		gen, err = 0, nil
	}
	if err != nil {
		c.logger.WarnContext(ctx, "カタログキャッシュの世代の取得に失敗しました", "error", err)
		c.observe("products", false)
		return nil, -1, false
	}

	var products []Product
	hit := c.get(ctx, listKey(ProductsGeneration(gen)), &products)
	c.observe("products", hit)
	return products, ProductsGeneration(gen), hit
}

// SetProducts は商品一覧を指定した世代でキャッシュする。
func (c *RedisCache) SetProducts(ctx context.Context, gen ProductsGeneration, products []Product) {
	if gen < 0 {
		return
	}
	c.set(ctx, listKey(gen), products)
}

// Product はキャッシュされた商品を返す。
func (c *RedisCache) Product(ctx context.Context, id int64) (*Product, bool) {
	var product Product
	hit := c.get(ctx, productKey(id), &product)
	c.observe("product", hit)
	if !hit {
		return nil, false
	}
	return &product, true
}

// SetProduct は商品をキャッシュする。
func (c *RedisCache) SetProduct(ctx context.Context, product *Product) {
	c.set(ctx, productKey(product.ID), product)
}

// InvalidateProducts は世代を進めて商品一覧のキャッシュを破棄する。
// 古い世代の一覧は有効期限で消える。
// 個別の商品は作成後に変更されないため破棄しない。
func (c *RedisCache) InvalidateProducts(ctx context.Context) {
	if err := c.redis.Incr(ctx, generationKey()).Err(); err != nil {
		c.logger.WarnContext(ctx, "カタログキャッシュの破棄に失敗しました", "error", err)
	}
}

func (c *RedisCache) get(ctx context.Context, key string, dest any) bool {
	raw, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "カタログキャッシュの取得に失敗しました", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		c.logger.WarnContext(ctx, "カタログキャッシュの値が不正です", "key", key, "error", err)
		return false
	}
	return true
}

func (c *RedisCache) set(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.logger.WarnContext(ctx, "カタログキャッシュのシリアライズに失敗しました", "key", key, "error", err)
		return
	}
	if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "カタログキャッシュの保存に失敗しました", "key", key, "error", err)
	}
}

func (c *RedisCache) observe(name string, hit bool) {
	if c.observer != nil {
		c.observer.ObserveCache(name, hit)
	}
}
