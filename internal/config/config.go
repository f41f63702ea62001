// Package config は環境変数からサーバーの設定を読み込む。
//
// 設定は起動時に一度だけ構築し、各コンポーネントへ明示的に渡す。
// 実行中に変更されることはない。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ストアのドライバー名。
const (
	DriverSupabase = "supabase"
	DriverSQLite   = "sqlite"
)

// Config はサーバーの設定。
type Config struct {
	// Port はリッスンポート。
	Port string
	// SupabaseURL はSupabaseプロジェクトのURL。
	SupabaseURL string
	// SupabaseKey は公開（anon）キー。
	SupabaseKey string
	// SupabaseServiceKey はサービスロールキー。/api/users/me に必要。
	SupabaseServiceKey string
	// JWTSecret はセッショントークンの署名鍵。
	JWTSecret string
	// JWTTTL はセッショントークンの有効期間。0の場合は有効期限を埋め込まない。
	JWTTTL time.Duration
	// JWTIssuer はセッショントークンのiss。
	JWTIssuer string
	// CORSOrigins はクロスオリジンを許可するオリジン。
	CORSOrigins []string
	// StoreDriver はテーブルの保存先（supabase または sqlite）。
	StoreDriver string
	// SQLiteDSN はSQLiteドライバー使用時の接続先。
	SQLiteDSN string
	// RedisURL はカタログキャッシュのRedis。空の場合はキャッシュしない。
	RedisURL string
	// CatalogCacheTTL はカタログキャッシュの有効期間。
	CatalogCacheTTL time.Duration
	// ExternalTimeout は外部API呼び出しのタイムアウト。
	ExternalTimeout time.Duration
	// LogLevel はログの出力レベル。
	LogLevel slog.Level
}

// Load はカレントディレクトリの.envを読み込んだうえで環境変数から設定を構築する。
// .envが無い場合は環境変数だけを使う。既に設定されている環境変数は上書きしない。
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf(".envの読み込みに失敗: %w", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv はgetenvで取得した値から設定を構築して検証する。
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, defaultValue string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return defaultValue
	}

	cfg := &Config{
		Port:               get("PORT", "5000"),
		SupabaseURL:        get("SUPABASE_URL", ""),
		SupabaseKey:        get("SUPABASE_KEY", ""),
		SupabaseServiceKey: get("SUPABASE_SERVICE_KEY", ""),
		JWTSecret:          getenv("JWT_SECRET"),
		JWTIssuer:          get("JWT_ISSUER", "storefront"),
		CORSOrigins:        splitList(get("CORS_ORIGIN", "http://localhost:3000")),
		StoreDriver:        strings.ToLower(get("STORE_DRIVER", DriverSupabase)),
		SQLiteDSN:          get("SQLITE_DSN", "storefront.db"),
		RedisURL:           get("REDIS_URL", ""),
	}

	durations := []struct {
		key          string
		defaultValue string
		dest         *time.Duration
	}{
		{key: "JWT_TTL", defaultValue: "24h", dest: &cfg.JWTTTL},
		{key: "CATALOG_CACHE_TTL", defaultValue: "30s", dest: &cfg.CatalogCacheTTL},
		{key: "EXTERNAL_TIMEOUT", defaultValue: "10s", dest: &cfg.ExternalTimeout},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(get(d.key, d.defaultValue))
		if err != nil {
			return nil, fmt.Errorf("%sの値が不正です: %w", d.key, err)
		}
		*d.dest = v
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(get("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVELの値が不正です: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate は設定の最初の問題を返す。
func (c *Config) Validate() error {
	switch {
	case c.JWTSecret == "":
		return errors.New("JWT_SECRETが設定されていません")
	case c.JWTTTL < 0:
		return errors.New("JWT_TTLは0以上でなければなりません")
	case c.ExternalTimeout <= 0:
		return errors.New("EXTERNAL_TIMEOUTは正の値でなければなりません")
	case c.CatalogCacheTTL <= 0:
		return errors.New("CATALOG_CACHE_TTLは正の値でなければなりません")
	case c.SupabaseURL == "" || c.SupabaseKey == "":
		return errors.New("SUPABASE_URLとSUPABASE_KEYが設定されていません")
	}

	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORTの値が不正です: %q", c.Port)
	}

	switch c.StoreDriver {
	case DriverSupabase:
	case DriverSQLite:
		if c.SQLiteDSN == "" {
			return errors.New("SQLITE_DSNが設定されていません")
		}
	default:
		return fmt.Errorf("STORE_DRIVERの値が不正です: %q", c.StoreDriver)
	}

	if len(c.CORSOrigins) == 0 {
		return errors.New("CORS_ORIGINが設定されていません")
	}
	return nil
}

// Addr はhttp.Serverに渡すリッスンアドレスを返す。
func (c *Config) Addr() string {
	return ":" + c.Port
}

// splitList はカンマ区切りの値を分割し、空の要素を取り除く。
func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
