// ストアフロントAPIサーバーのエントリポイント。
// 認証・カタログ・カート・注文のHTTP APIを提供し、
// IDの検証とデータの保存をSupabase（またはローカルのSQLite）に委譲する。
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nao1215/storefront/internal/api"
	"github.com/nao1215/storefront/internal/config"
	"github.com/nao1215/storefront/internal/identity"
	"github.com/nao1215/storefront/internal/metrics"
	"github.com/nao1215/storefront/internal/store"
	"github.com/nao1215/storefront/internal/supabase"
	"github.com/nao1215/storefront/pkg/token"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout は停止シグナル受信後、処理中のリクエストを待つ時間。
const shutdownTimeout = 10 * time.Second

func main() {
	// Dockerのヘルスチェック用サブコマンド
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		if err := runHealthcheck(); err != nil {
			fmt.Fprintf(os.Stderr, "ヘルスチェックに失敗: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("設定の読み込みに失敗しました", "error", err)
		os.Exit(1)
	}

	logger := newLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("サーバーが異常終了しました", "error", err)
		os.Exit(1)
	}
	logger.Info("サーバーを停止しました")
}

// newLogger はJSON形式の構造化ロガーを生成する。
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// run は依存コンポーネントを組み立ててHTTPサーバーを起動し、ctxが終了するまで待つ。
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	app, cleanup, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           app.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.ExternalTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.InfoContext(ctx, "ストアフロントAPIを起動します",
		"addr", srv.Addr,
		"store_driver", cfg.StoreDriver,
		"catalog_cache", cfg.RedisURL != "",
		"token_ttl", cfg.JWTTTL.String(),
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTPサーバーの起動に失敗: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("停止シグナルを受信しました。処理中のリクエストを待っています")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// build は設定に従ってサーバーと依存コンポーネントを組み立てる。
// 返されたcleanupはサーバー停止後に呼び出す。
func build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*api.Server, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("リソースの解放に失敗しました", "error", err)
			}
		}
	}

	codec, err := token.NewCodec(token.Config{
		Secret: cfg.JWTSecret,
		TTL:    cfg.JWTTTL,
		Issuer: cfg.JWTIssuer,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("トークンCodecの初期化に失敗: %w", err)
	}

	sb, err := supabase.New(supabase.Config{
		URL:        cfg.SupabaseURL,
		AnonKey:    cfg.SupabaseKey,
		ServiceKey: cfg.SupabaseServiceKey,
		Timeout:    cfg.ExternalTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("supabaseクライアントの初期化に失敗: %w", err)
	}
	if cfg.SupabaseServiceKey == "" {
		logger.Warn("SUPABASE_SERVICE_KEYが未設定のため /api/users/me は利用できません")
	}

	var backend store.Backend = sb
	if cfg.StoreDriver == config.DriverSQLite {
		db, err := store.OpenSQLite(ctx, cfg.SQLiteDSN, logger)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, db.Close)
		backend = db
	}

	m := metrics.New()

	var cache store.Cache = store.NopCache{}
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("REDIS_URLの解析に失敗: %w", err)
		}
		rdb := redis.NewClient(opts)
		closers = append(closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			// キャッシュはミスとして扱われるので起動は続ける
			logger.Warn("Redisに接続できません", "error", err)
		}
		cache = store.NewRedisCache(rdb, cfg.CatalogCacheTTL, logger, m)
	}

	server := api.NewServer(api.Dependencies{
		Verifier:    identity.NewVerifier(sb, logger),
		Codec:       codec,
		Catalog:     store.NewCatalog(backend, cache),
		Carts:       store.NewCarts(backend),
		Orders:      store.NewOrders(backend),
		Metrics:     m,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})
	return server, cleanup, nil
}

// runHealthcheck はローカルで動作中のサーバーのヘルスチェックを行う。
func runHealthcheck() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%s/api/health", port))
	if err != nil {
		return fmt.Errorf("リクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ヘルスチェックのステータスが不正です: %d", resp.StatusCode)
	}
	return nil
}
