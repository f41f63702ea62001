package supabase

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/nao1215/storefront/pkg/httpclient"
)

// ErrServiceKeyRequired はサービスロールキーが必要な操作をキー無しで呼んだ場合のエラー。
var ErrServiceKeyRequired = errors.New("supabase: service role key is not configured")

// Config はSupabaseへの接続設定。
type Config struct {
	// URL はプロジェクトのURL（例: https://xxx.supabase.co）。
	URL string
	// AnonKey はクライアント向けの公開キー。サインアップとサインインに使用する。
	AnonKey string
	// ServiceKey はサービスロールキー。空でもよい。
	// 設定されている場合は管理APIとテーブル操作に使用する。
	ServiceKey string
	// Timeout は1リクエストのタイムアウト。
	Timeout time.Duration
}

// Client はSupabaseのクライアント。並行に使用しても安全。
type Client struct {
	// auth は公開キーで認証するクライアント。
	auth *httpclient.Client
	// admin はサービスロールキーで認証するクライアント。キーが無い場合はnil。
	admin *httpclient.Client
}

// New は新しいClientを生成する。
func New(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("supabase: invalid project URL %q", cfg.URL)
	}
	if cfg.AnonKey == "" {
		return nil, errors.New("supabase: api key is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = httpclient.DefaultTimeout
	}

	c := &Client{auth: newKeyedClient(cfg.URL, cfg.AnonKey, cfg.Timeout)}
	if cfg.ServiceKey != "" {
		c.admin = newKeyedClient(cfg.URL, cfg.ServiceKey, cfg.Timeout)
	}
	return c, nil
}

// newKeyedClient はapikeyとAuthorizationヘッダーを付与するhttpclientを生成する。
func newKeyedClient(baseURL, key string, timeout time.Duration) *httpclient.Client {
	return httpclient.New(baseURL,
		httpclient.WithTimeout(timeout),
		httpclient.WithHeader("apikey", key),
		httpclient.WithHeader("Authorization", "Bearer "+key),
	)
}

// rest はテーブル操作に使うクライアントを返す。
// 所有者の絞り込みはサーバー側で行うため、設定されていればサービスロールキーを使う。
func (c *Client) rest() *httpclient.Client {
	if c.admin != nil {
		return c.admin
	}
	return c.auth
}
