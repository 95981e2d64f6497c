package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"admin-panel/internal/shared/model"
	"admin-panel/internal/shared/storage"
)

const roleColumns = `id, name, COALESCE(description, ''), created_at, updated_at`

func scanRole(row interface{ Scan(...interface{}) error }) (*model.Role, error) {
	r := &model.Role{}
	err := row.Scan(&r.ID, &r.Name, &r.Description, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// CreateRole 创建角色，成功后回填自增 ID
// 时间戳未设置时取当前时间
func (s *Store) CreateRole(ctx context.Context, role *model.Role) error {
	now := time.Now()
	if role.CreatedAt.IsZero() {
		role.CreatedAt = now
	}
	if role.UpdatedAt.IsZero() {
		role.UpdatedAt = now
	}
	id, err := s.insertReturningID(ctx,
		`INSERT INTO roles (name, description, created_at, updated_at)
		 VALUES ($1, $2, $3, $4)`,
		role.Name, nullIfEmpty(role.Description), role.CreatedAt, role.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return storage.ErrDuplicate
	}
	if err != nil {
		return err
	}
	role.ID = id
	return nil
}

// GetRoleByID 通过 ID 查找角色，不存在返回 (nil, nil)
func (s *Store) GetRoleByID(ctx context.Context, id int64) (*model.Role, error) {
	role, err := scanRole(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+roleColumns+` FROM roles WHERE id = $1`), id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return role, err
}

// GetRoleByName 通过名称查找角色，不存在返回 (nil, nil)
// 用户创建/更新边界用此校验角色名合法性
func (s *Store) GetRoleByName(ctx context.Context, name string) (*model.Role, error) {
	role, err := scanRole(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+roleColumns+` FROM roles WHERE name = $1`), name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return role, err
}

// ListRoles 列出所有角色
func (s *Store) ListRoles(ctx context.Context) ([]*model.Role, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT `+roleColumns+` FROM roles ORDER BY id`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []*model.Role
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

// UpdateRole 更新角色名称与描述
func (s *Store) UpdateRole(ctx context.Context, role *model.Role) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE roles SET name = $1, description = $2, updated_at = `+s.now()+` WHERE id = $3`),
		role.Name, nullIfEmpty(role.Description), role.ID,
	)
	if isUniqueViolation(err) {
		return storage.ErrDuplicate
	}
	if err != nil {
		return err
	}
	return requireRows(res)
}

// DeleteRole 删除角色及其菜单关联
func (s *Store) DeleteRole(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx,
		s.rebind(`DELETE FROM role_menu WHERE role_id = $1`), id); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM roles WHERE id = $1`), id)
	if err != nil {
		return err
	}
	return requireRows(res)
}

// SetRoleMenus 整体替换角色的菜单关联集合
func (s *Store) SetRoleMenus(ctx context.Context, roleID int64, menuIDs []int64) error {
	if _, err := s.db.ExecContext(ctx,
		s.rebind(`DELETE FROM role_menu WHERE role_id = $1`), roleID); err != nil {
		return err
	}
	if len(menuIDs) == 0 {
		return nil
	}

	values := make([]string, len(menuIDs))
	args := make([]interface{}, 0, len(menuIDs)*2)
	for i, menuID := range menuIDs {
		values[i] = fmt.Sprintf("($%d, $%d)", i*2+1, i*2+2)
		args = append(args, roleID, menuID)
	}
	query := "INSERT INTO role_menu (role_id, menu_id) VALUES " + strings.Join(values, ", ")

	_, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	return err
}

// ListRoleMenuIDs 返回角色关联的菜单 ID 列表
func (s *Store) ListRoleMenuIDs(ctx context.Context, roleID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT menu_id FROM role_menu WHERE role_id = $1 ORDER BY menu_id`), roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
