package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/storefront/internal/identity"
	"github.com/nao1215/storefront/internal/identity/mocks"
	"github.com/nao1215/storefront/internal/metrics"
	"github.com/nao1215/storefront/internal/store"
	"github.com/nao1215/storefront/pkg/token"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "api-test-secret"

// spyBackend はBackendへの呼び出しを記録し、必要に応じてエラーを注入する。
type spyBackend struct {
	store.Backend

	mu    sync.Mutex
	calls int
	err   error
}

func (b *spyBackend) Select(ctx context.Context, table string, dest any, filters ...store.Filter) error {
	if err := b.record(); err != nil {
		return err
	}
	return b.Backend.Select(ctx, table, dest, filters...)
}

func (b *spyBackend) Insert(ctx context.Context, table string, row map[string]any, dest any) error {
	if err := b.record(); err != nil {
		return err
	}
	return b.Backend.Insert(ctx, table, row, dest)
}

func (b *spyBackend) record() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	return b.err
}

func (b *spyBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func (b *spyBackend) failWith(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.err = err
}

// testEnv はテスト用に組み立てたサーバーと依存コンポーネント。
type testEnv struct {
	server   *Server
	provider *mocks.MockProvider
	backend  *spyBackend
	codec    *token.Codec
	metrics  *metrics.Metrics
}

// setupTestServer はインメモリSQLiteとモックのIDプロバイダーでサーバーを構築する。
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	db, err := store.OpenSQLite(context.Background(), ":memory:", logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	codec, err := token.NewCodec(token.Config{Secret: testSecret, TTL: time.Hour})
	require.NoError(t, err)

	provider := mocks.NewMockProvider(gomock.NewController(t))
	backend := &spyBackend{Backend: db}
	m := metrics.New()

	server := NewServer(Dependencies{
		Verifier:    identity.NewVerifier(provider, logger),
		Codec:       codec,
		Catalog:     store.NewCatalog(backend, nil),
		Carts:       store.NewCarts(backend),
		Orders:      store.NewOrders(backend),
		Metrics:     m,
		Logger:      logger,
		CORSOrigins: []string{"http://localhost:3000"},
	})
	return &testEnv{server: server, provider: provider, backend: backend, codec: codec, metrics: m}
}

// tokenFor はユーザーIDに対するセッショントークンを発行する。
func (e *testEnv) tokenFor(t *testing.T, userID string) string {
	t.Helper()

	tok, err := e.codec.Issue(userID)
	require.NoError(t, err)
	return tok
}

// do はリクエストを送信してレスポンスを返す。tokenが空の場合はAuthorizationヘッダーを付与しない。
func (e *testEnv) do(t *testing.T, method, path, tok string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

// decode はレスポンスボディをデコードする。
func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// errorBody はエラーレスポンスの構造。
type errorBody struct {
	Error string `json:"error"`
}

// mustStatus はステータスコードを検証する。
func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, w.Body.String())
}
