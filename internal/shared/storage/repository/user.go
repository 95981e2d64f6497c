package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"admin-panel/internal/shared/model"
	"admin-panel/internal/shared/storage"
)

const userColumns = `id, username, password_hash, name, role,
	COALESCE(email, ''), COALESCE(avatar, ''), created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Name, &u.Role,
		&u.Email, &u.Avatar, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser 创建用户，成功后回填自增 ID
// 时间戳未设置时取当前时间
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	id, err := s.insertReturningID(ctx,
		`INSERT INTO users (username, password_hash, name, role, email, avatar, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.Username, user.PasswordHash, user.Name, user.Role,
		nullIfEmpty(user.Email), nullIfEmpty(user.Avatar),
		user.CreatedAt, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return storage.ErrDuplicate
	}
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

// GetUserByID 通过 ID 查找用户，不存在返回 (nil, nil)
func (s *Store) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+userColumns+` FROM users WHERE id = $1`), id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

// GetUserByUsername 通过用户名查找用户（大小写敏感精确匹配）
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+userColumns+` FROM users WHERE username = $1`), username))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

// ListUsers 列出用户，支持按角色精确过滤和关键词模糊搜索
func (s *Store) ListUsers(ctx context.Context, filter storage.UserFilter) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var conds []string
	var args []interface{}

	if filter.Role != "" && filter.Role != "all" {
		args = append(args, filter.Role)
		conds = append(conds, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.Search != "" {
		term := "%" + filter.Search + "%"
		args = append(args, term, term, term)
		conds = append(conds, fmt.Sprintf(
			"(username LIKE $%d OR name LIKE $%d OR email LIKE $%d)",
			len(args)-2, len(args)-1, len(args)))
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUser 部分更新用户字段，nil 字段保持不变
func (s *Store) UpdateUser(ctx context.Context, id int64, update storage.UserUpdate) error {
	var sets []string
	var args []interface{}

	add := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if update.Name != nil {
		add("name", *update.Name)
	}
	if update.Role != nil {
		add("role", *update.Role)
	}
	if update.Email != nil {
		add("email", nullIfEmpty(*update.Email))
	}
	if update.Avatar != nil {
		add("avatar", nullIfEmpty(*update.Avatar))
	}
	if update.PasswordHash != nil {
		add("password_hash", *update.PasswordHash)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = "+s.now())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", joinExprs(sets), len(args))

	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if isUniqueViolation(err) {
		return storage.ErrDuplicate
	}
	if err != nil {
		return err
	}
	return requireRows(res)
}

// UpdateUserPassword 更新用户密码哈希
func (s *Store) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE users SET password_hash = $1, updated_at = `+s.now()+` WHERE id = $2`),
		passwordHash, id,
	)
	if err != nil {
		return err
	}
	return requireRows(res)
}

// DeleteUser 删除用户
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM users WHERE id = $1`), id)
	if err != nil {
		return err
	}
	return requireRows(res)
}

// RecentUsers 最近创建的用户（仪表盘）
func (s *Store) RecentUsers(ctx context.Context, limit int) ([]*model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC LIMIT $1`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
