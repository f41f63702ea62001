package store

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newTestSQLite はマイグレーション済みのインメモリSQLiteを返す。
func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()

	db, err := OpenSQLite(context.Background(), ":memory:", discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fixedClock はテスト用の固定時刻を返す。
func fixedClock() time.Time {
	return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
}

// countingBackend はBackendへの呼び出し回数を数える。
type countingBackend struct {
	Backend

	mu      sync.Mutex
	selects map[string]int
	inserts map[string]int
}

func newCountingBackend(inner Backend) *countingBackend {
	return &countingBackend{Backend: inner, selects: map[string]int{}, inserts: map[string]int{}}
}

func (b *countingBackend) Select(ctx context.Context, table string, dest any, filters ...Filter) error {
	b.mu.Lock()
	b.selects[table]++
	b.mu.Unlock()
	return b.Backend.Select(ctx, table, dest, filters...)
}

func (b *countingBackend) Insert(ctx context.Context, table string, row map[string]any, dest any) error {
	b.mu.Lock()
	b.inserts[table]++
	b.mu.Unlock()
	return b.Backend.Insert(ctx, table, row, dest)
}

func (b *countingBackend) selectCount(table string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selects[table]
}
