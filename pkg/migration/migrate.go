// Package migration はSQLiteバックエンドのスキーマを起動時に最新化する。
//
// スキーマはfs.FS上の"<バージョン>_<名前>.up.sql"で表し、適用済みのバージョンを
// schema_migrationsに記録する。ダウンマイグレーションは扱わない。
package migration

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strconv"
	"strings"
)

// ErrDuplicateVersion は同じバージョンのファイルが複数ある場合のエラー。
var ErrDuplicateVersion = errors.New("マイグレーションのバージョンが重複しています")

// ErrUnknownVersion はデータベースに手元に無いバージョンが適用済みの場合のエラー。
// 新しいバイナリで更新したデータベースを古いバイナリで開いたときに起こる。
var ErrUnknownVersion = errors.New("未知のマイグレーションが適用済みです")

// script は1つのマイグレーションファイル。
type script struct {
	version int
	name    string
	path    string
}

// Run はdirにある未適用のスクリプトをバージョン順に適用する。
// 各スクリプトはバージョンの記録と同じトランザクションで実行するため、
// 失敗したスクリプトは記録されず次回の起動で再実行される。
func Run(ctx context.Context, db *sql.DB, fsys fs.FS, dir string, logger *slog.Logger) error {
	scripts, err := scan(fsys, dir)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
		)
	`); err != nil {
		return fmt.Errorf("schema_migrationsの作成に失敗: %w", err)
	}

	applied, err := Applied(ctx, db)
	if err != nil {
		return fmt.Errorf("適用済みバージョンの取得に失敗: %w", err)
	}
	known := make(map[int]bool, len(scripts))
	for _, s := range scripts {
		known[s.version] = true
	}
	for _, v := range applied {
		if !known[v] {
			return fmt.Errorf("%w: %06d", ErrUnknownVersion, v)
		}
	}

	for _, s := range scripts {
		if slices.Contains(applied, s.version) {
			continue
		}
		if err := apply(ctx, db, fsys, s); err != nil {
			return fmt.Errorf("マイグレーション %06d_%s の適用に失敗: %w", s.version, s.name, err)
		}
		logger.InfoContext(ctx, "マイグレーションを適用しました", "version", s.version, "name", s.name)
	}
	return nil
}

// Applied は適用済みのバージョンを昇順で返す。
func Applied(ctx context.Context, db *sql.DB) ([]int, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// scan はdir直下の.up.sqlをバージョン順に返す。
// バージョンとして読めない名前のファイルは無視する。
func scan(fsys fs.FS, dir string) ([]script, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("マイグレーションディレクトリ %s の読み込みに失敗: %w", dir, err)
	}

	var scripts []script
	for _, e := range entries {
		base, ok := strings.CutSuffix(e.Name(), ".up.sql")
		if e.IsDir() || !ok {
			continue
		}
		prefix, name, ok := strings.Cut(base, "_")
		if !ok {
			continue
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			continue
		}
		scripts = append(scripts, script{version: version, name: name, path: path.Join(dir, e.Name())})
	}

	slices.SortFunc(scripts, func(a, b script) int { return cmp.Compare(a.version, b.version) })
	for i := 1; i < len(scripts); i++ {
		if scripts[i].version == scripts[i-1].version {
			return nil, fmt.Errorf("%w: %s, %s", ErrDuplicateVersion, scripts[i-1].path, scripts[i].path)
		}
	}
	return scripts, nil
}

func apply(ctx context.Context, db *sql.DB, fsys fs.FS, s script) error {
	body, err := fs.ReadFile(fsys, s.path)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", s.version); err != nil {
		return err
	}
	return tx.Commit()
}
