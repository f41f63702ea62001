package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nao1215/storefront/internal/store"
	"github.com/nao1215/storefront/pkg/httpclient"
)

var _ store.Backend = (*Client)(nil)

// Select はPostgRESTでテーブルを検索する。
func (c *Client) Select(ctx context.Context, table string, dest any, filters ...store.Filter) error {
	query := url.Values{
		"select": {"*"},
		"order":  {"id.asc"},
	}
	for _, f := range filters {
		v, err := filterValue(f)
		if err != nil {
			return err
		}
		if v == "" {
			// 空のinは常に偽
			return nil
		}
		query.Add(f.Column, v)
	}

	req := httpclient.Request{
		Method: http.MethodGet,
		Path:   "/rest/v1/" + url.PathEscape(table),
		Query:  query,
	}
	return c.rest().Do(ctx, req, dest)
}

// Insert はPostgRESTでテーブルに1行挿入し、挿入された行をdestに格納する。
func (c *Client) Insert(ctx context.Context, table string, row map[string]any, dest any) error {
	req := httpclient.Request{
		Method: http.MethodPost,
		Path:   "/rest/v1/" + url.PathEscape(table),
		Header: http.Header{"Prefer": {"return=representation"}},
		Body:   row,
	}
	var rows []json.RawMessage
	if err := c.rest().Do(ctx, req, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("supabase: insert into %s returned no rows", table)
	}
	if err := json.Unmarshal(rows[0], dest); err != nil {
		return fmt.Errorf("supabase: decode inserted %s row: %w", table, err)
	}
	return nil
}

// filterValue はFilterをPostgRESTの演算子付きの値に変換する。空のinの場合は空文字列を返す。
func filterValue(f store.Filter) (string, error) {
	switch f.Op {
	case store.OpEq:
		if len(f.Values) != 1 {
			return "", fmt.Errorf("supabase: eq filter on %s needs exactly one value", f.Column)
		}
		return "eq." + fmt.Sprint(f.Values[0]), nil
	case store.OpIn:
		if len(f.Values) == 0 {
			return "", nil
		}
		quoted := make([]string, len(f.Values))
		for i, v := range f.Values {
			quoted[i] = `"` + strings.ReplaceAll(fmt.Sprint(v), `"`, `\"`) + `"`
		}
		return "in.(" + strings.Join(quoted, ",") + ")", nil
	default:
		return "", fmt.Errorf("supabase: unsupported filter operator %q", f.Op)
	}
}
