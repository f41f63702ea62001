package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/storefront/internal/identity"
	"github.com/nao1215/storefront/internal/metrics"
	"github.com/nao1215/storefront/internal/store"
	"github.com/nao1215/storefront/pkg/middleware"
	"github.com/nao1215/storefront/pkg/token"
)

// Dependencies はServerが使用するコンポーネント。mainで一度だけ構築して渡す。
type Dependencies struct {
	// Verifier は認証情報をIDプロバイダーで検証する。
	Verifier *identity.Verifier
	// Codec はセッショントークンを発行・検証する。
	Codec *token.Codec
	// Catalog は商品カタログのリポジトリ。
	Catalog *store.Catalog
	// Carts はカートのリポジトリ。
	Carts *store.Carts
	// Orders は注文のリポジトリ。
	Orders *store.Orders
	// Metrics はPrometheusのメトリクス。
	Metrics *metrics.Metrics
	// Logger は構造化ロガー。
	Logger *slog.Logger
	// CORSOrigins はクロスオリジンを許可するオリジン。
	CORSOrigins []string
}

// Server はストアフロントのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router   *gin.Engine
	verifier *identity.Verifier
	codec    *token.Codec
	catalog  *store.Catalog
	carts    *store.Carts
	orders   *store.Orders
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewServer は新しいServerを生成し、ミドルウェアとルーティングを設定する。
func NewServer(deps Dependencies) *Server {
	router := gin.New()
	// パニックで計測が抜けないよう、MetricsはRecoveryより外側に置く
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.Metrics(deps.Metrics))
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.CORS(deps.CORSOrigins))

	s := &Server{
		router:   router,
		verifier: deps.Verifier,
		codec:    deps.Codec,
		catalog:  deps.Catalog,
		carts:    deps.Carts,
		orders:   deps.Orders,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}
	s.setupRoutes()

	return s
}

// Handler はhttp.Serverに渡すハンドラーを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	authenticate := middleware.Authenticate(s.codec, s.logger, s.metrics)

	api := s.router.Group("/api")
	{
		// 認証（トークン不要）
		auth := api.Group("/auth")
		{
			auth.POST("/register", s.handleRegister())
			auth.POST("/login", s.handleLogin())
		}

		// ログイン中のユーザー
		api.GET("/users/me", authenticate, s.handleGetCurrentUser())

		// 商品（参照はトークン不要、登録はトークン必須）
		products := api.Group("/products")
		{
			products.GET("", s.handleListProducts())
			products.GET("/:id", s.handleGetProduct())
			products.POST("", authenticate, s.handleCreateProduct())
		}

		// カート
		cart := api.Group("/cart", authenticate)
		{
			cart.POST("/add", s.handleAddToCart())
			cart.GET("", s.handleGetCart())
		}

		// 注文
		orders := api.Group("/orders", authenticate)
		{
			orders.POST("", s.handleCreateOrder())
			orders.GET("", s.handleListOrders())
		}

		// ヘルスチェック
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "Server is running"})
		})
	}

	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
}
