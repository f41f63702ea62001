package api

import (
	"errors"
	"net/http"
	"testing"

	"github.com/nao1215/storefront/internal/store"
	"github.com/nao1215/storefront/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type productResponse struct {
	Product store.Product `json:"product"`
}

func TestProducts(t *testing.T) {
	t.Parallel()

	t.Run("登録した商品をトークン無しで参照できること", func(t *testing.T) {
		t.Parallel()

		env := setupTestServer(t)
		w := env.do(t, http.MethodPost, "/api/products", env.tokenFor(t, "admin"), map[string]any{
			"name": "Notebook", "description": "A5", "price": 4.5, "image_url": "https://img/n.png", "stock": 0,
		})
		mustStatus(t, w, http.StatusOK)
		created := decode[productResponse](t, w).Product
		assert.Equal(t, "Notebook", created.Name)
		assert.NotZero(t, created.ID)

		w = env.do(t, http.MethodGet, "/api/products", "", nil)
		mustStatus(t, w, http.StatusOK)
		list := decode[struct {
			Products []store.Product `json:"products"`
		}](t, w)
		assert.Equal(t, []store.Product{created}, list.Products)

		w = env.do(t, http.MethodGet, "/api/products/1", "", nil)
		mustStatus(t, w, http.StatusOK)
		assert.Equal(t, created, decode[productResponse](t, w).Product)
	})

	t.Run("商品が無い場合は空配列を返すこと", func(t *testing.T) {
		t.Parallel()

		w := setupTestServer(t).do(t, http.MethodGet, "/api/products", "", nil)
		mustStatus(t, w, http.StatusOK)
		assert.JSONEq(t, `{"products":[]}`, w.Body.String())
	})

	t.Run("存在しないIDは404でProduct not foundを返すこと", func(t *testing.T) {
		t.Parallel()

		env := setupTestServer(t)
		for _, path := range []string{"/api/products/999999", "/api/products/abc"} {
			w := env.do(t, http.MethodGet, path, "", nil)
			mustStatus(t, w, http.StatusNotFound)
			assert.JSONEq(t, `{"error":"Product not found"}`, w.Body.String(), path)
		}
	})

	t.Run("ストアが検索を拒否した場合も404になること", func(t *testing.T) {
		t.Parallel()

		env := setupTestServer(t)
		env.backend.failWith(&httpclient.APIError{StatusCode: http.StatusBadRequest, Code: "22P02", Message: "invalid input syntax"})

		w := env.do(t, http.MethodGet, "/api/products/1", "", nil)
		mustStatus(t, w, http.StatusNotFound)
	})

	t.Run("通信エラーは500になること", func(t *testing.T) {
		t.Parallel()

		env := setupTestServer(t)
		env.backend.failWith(errors.New("connection reset by peer"))

		w := env.do(t, http.MethodGet, "/api/products/1", "", nil)
		mustStatus(t, w, http.StatusInternalServerError)
		assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())

		w = env.do(t, http.MethodGet, "/api/products", "", nil)
		mustStatus(t, w, http.StatusInternalServerError)
	})

	t.Run("一覧でストアのエラーはメッセージ付きの400になること", func(t *testing.T) {
		t.Parallel()

		env := setupTestServer(t)
		env.backend.failWith(&httpclient.APIError{StatusCode: http.StatusUnauthorized, Message: "Invalid API key"})

		w := env.do(t, http.MethodGet, "/api/products", "", nil)
		mustStatus(t, w, http.StatusBadRequest)
		assert.Equal(t, "Invalid API key", decode[errorBody](t, w).Error)
	})

	t.Run("商品登録にはトークンが必要でストアを呼ばないこと", func(t *testing.T) {
		t.Parallel()

		env := setupTestServer(t)
		w := env.do(t, http.MethodPost, "/api/products", "", map[string]any{"name": "Pen", "price": 1})
		mustStatus(t, w, http.StatusUnauthorized)
		assert.Zero(t, env.backend.callCount())
	})

	t.Run("名前か価格が無い場合は400になること", func(t *testing.T) {
		t.Parallel()

		env := setupTestServer(t)
		tok := env.tokenFor(t, "admin")
		for _, body := range []map[string]any{
			{"price": 1},
			{"name": "Pen"},
		} {
			w := env.do(t, http.MethodPost, "/api/products", tok, body)
			mustStatus(t, w, http.StatusBadRequest)
		}
		assert.Zero(t, env.backend.callCount())

		// 価格0は未指定ではない
		w := env.do(t, http.MethodPost, "/api/products", tok, map[string]any{"name": "Free", "price": 0})
		mustStatus(t, w, http.StatusOK)
		require.Equal(t, 0.0, decode[productResponse](t, w).Product.Price)
	})
}
