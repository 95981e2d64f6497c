// Package storage 定义存储层领域错误
//
// 这些错误用于隔离业务层与底层数据库的错误类型，
// repository 层负责将 sql.ErrNoRows / 唯一键冲突等底层错误转换为领域错误，
// HTTP 层再统一映射为状态码。
package storage

import "errors"

var (
	// ErrNotFound 实体不存在
	// 替代 sql.ErrNoRows
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate 唯一键冲突（如用户名已存在）
	ErrDuplicate = errors.New("duplicate: entity already exists")

	// ErrHasChildren 菜单存在子节点，禁止删除（不做级联）
	ErrHasChildren = errors.New("menu has children")

	// ErrProtected 系统关键配置，禁止删除
	ErrProtected = errors.New("config key is protected")
)
