package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/nao1215/storefront/pkg/migration"

	// SQLiteドライバーの登録
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

// tableColumns はSQLiteバックエンドで扱えるテーブルと列。
// SQLに埋め込む識別子はここに含まれるものに限る。
var tableColumns = map[string][]string{
	TableProducts:   {"id", "name", "description", "price", "image_url", "stock", "created_at"},
	TableCartItems:  {"id", "user_id", "product_id", "quantity", "created_at"},
	TableOrders:     {"id", "user_id", "total_price", "status", "created_at"},
	TableOrderItems: {"id", "order_id", "product_id", "quantity", "price"},
}

// SQLite はローカルのSQLiteデータベースを使うBackend。
// 開発環境とテストでSupabaseの代わりに使用する。
type SQLite struct {
	db *sqlx.DB
}

// pragmaForeignKeys はコネクションごとに外部キー制約を有効にするDSNパラメータ。
// PRAGMAは接続単位の設定なので、プールの全接続に効かせるためDSNで指定する。
const pragmaForeignKeys = "_pragma=foreign_keys(1)"

// OpenSQLite はSQLiteデータベースを開き、マイグレーションを適用する。
// dsnが":memory:"の場合は接続を1本に固定する。
func OpenSQLite(ctx context.Context, dsn string, logger *slog.Logger) (*SQLite, error) {
	db, err := sqlx.Open("sqlite", withForeignKeys(dsn))
	if err != nil {
		return nil, fmt.Errorf("データベースのオープンに失敗: %w", err)
	}
	if dsn == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := migration.Run(ctx, db.DB, migrationsFS, "migrations", logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("マイグレーションに失敗: %w", err)
	}
	return &SQLite{db: db}, nil
}

// withForeignKeys はDSNに外部キー制約のPRAGMAを付け加える。
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + pragmaForeignKeys
	}
	return dsn + "?" + pragmaForeignKeys
}

// Close はデータベース接続を閉じる。
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Select はBackendインターフェースを実装する。
func (s *SQLite) Select(ctx context.Context, table string, dest any, filters ...Filter) error {
	if err := checkColumns(table, filterColumns(filters)); err != nil {
		return err
	}

	var (
		conds []string
		args  []any
	)
	for _, f := range filters {
		switch f.Op {
		case OpEq:
			if len(f.Values) != 1 {
				return fmt.Errorf("eqフィルタの値は1つでなければならない: %s", f.Column)
			}
			conds = append(conds, f.Column+" = ?")
			args = append(args, f.Values[0])
		case OpIn:
			if len(f.Values) == 0 {
				// 空のINは常に偽なので問い合わせるまでもない
				return nil
			}
			conds = append(conds, f.Column+" IN (?)")
			args = append(args, f.Values)
		default:
			return fmt.Errorf("未対応のフィルタ演算子: %s", f.Op)
		}
	}

	query := "SELECT * FROM " + table
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return fmt.Errorf("クエリの展開に失敗: %w", err)
	}
	if err := s.db.SelectContext(ctx, dest, s.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("%sの取得に失敗: %w", table, err)
	}
	return nil
}

// Insert はBackendインターフェースを実装する。
func (s *SQLite) Insert(ctx context.Context, table string, row map[string]any, dest any) error {
	columns := make([]string, 0, len(row))
	for c := range row {
		columns = append(columns, c)
	}
	slices.Sort(columns)
	if len(columns) == 0 {
		return errors.New("挿入する列がありません")
	}
	if err := checkColumns(table, columns); err != nil {
		return err
	}

	args := make([]any, len(columns))
	for i, c := range columns {
		args[i] = row[c]
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		table,
		strings.Join(columns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", "),
	)

	if err := s.db.QueryRowxContext(ctx, query, args...).StructScan(dest); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%sの挿入結果が返りませんでした: %w", table, err)
		}
		return fmt.Errorf("%sへの挿入に失敗: %w", table, err)
	}
	return nil
}

// checkColumns はテーブルと列が既知のものかを検証する。
func checkColumns(table string, columns []string) error {
	known, ok := tableColumns[table]
	if !ok {
		return fmt.Errorf("未知のテーブル: %s", table)
	}
	for _, c := range columns {
		if !slices.Contains(known, c) {
			return fmt.Errorf("未知の列: %s.%s", table, c)
		}
	}
	return nil
}

func filterColumns(filters []Filter) []string {
	columns := make([]string, len(filters))
	for i, f := range filters {
		columns[i] = f.Column
	}
	return columns
}
