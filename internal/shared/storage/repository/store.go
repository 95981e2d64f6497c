// Package repository 数据库无关的存储层实现
//
// 通过 dbutil.Dialect 接口屏蔽 SQLite 与 PostgreSQL 的 SQL 差异，
// 所有 SQL 以 PostgreSQL 风格编写，运行时由 Dialect.Rebind() 转换。
// sql.ErrNoRows 在本层转换为 (nil, nil)，写操作零行命中转换为
// storage.ErrNotFound，唯一键冲突转换为 storage.ErrDuplicate。
package repository

import (
	"context"
	"database/sql"
	"strings"

	"admin-panel/internal/shared/storage"
	"admin-panel/internal/shared/storage/dbutil"
)

// Store 通用存储实现
// 实现了 storage.Store 接口
type Store struct {
	db      *sql.DB
	dialect dbutil.Dialect
}

var _ storage.Store = (*Store)(nil)

// NewStore 创建通用存储
func NewStore(db *sql.DB, dialect dbutil.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Close 关闭数据库连接
func (s *Store) Close() error {
	return s.db.Close()
}

// DB 返回底层数据库连接（仅用于测试）
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect 返回当前方言
func (s *Store) Dialect() dbutil.Dialect {
	return s.dialect
}

// rebind 快捷方法：将 PG 风格 SQL 转换为当前方言
func (s *Store) rebind(query string) string {
	return s.dialect.Rebind(query)
}

// now 返回当前时间戳 SQL 表达式
func (s *Store) now() string {
	return s.dialect.CurrentTimestamp()
}

// insertReturningID 执行 INSERT 并返回自增主键
// PostgreSQL 走 RETURNING id；SQLite 走 LastInsertId
func (s *Store) insertReturningID(ctx context.Context, query string, args ...interface{}) (int64, error) {
	if s.dialect.DriverType() == dbutil.DriverPostgres {
		var id int64
		err := s.db.QueryRowContext(ctx, s.rebind(query+" RETURNING id"), args...).Scan(&id)
		return id, err
	}
	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// requireRows 将零行命中的写操作转换为 storage.ErrNotFound
func requireRows(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// nullIfEmpty 空字符串写为 NULL（可选字段）
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// joinExprs 拼接 SET 表达式列表
func joinExprs(exprs []string) string {
	return strings.Join(exprs, ", ")
}

// isUniqueViolation 判断是否唯一键冲突
// SQLite 报 "UNIQUE constraint failed"，PostgreSQL 报 SQLSTATE 23505
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key")
}
