package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"admin-panel/internal/shared/model"
	"admin-panel/internal/shared/storage"
)

const menuColumns = `id, parent_id, title, COALESCE(path, ''), COALESCE(icon, ''),
	sort_order, created_at, updated_at`

func scanMenu(row interface{ Scan(...interface{}) error }) (*model.Menu, error) {
	m := &model.Menu{}
	var parent sql.NullInt64
	err := row.Scan(&m.ID, &parent, &m.Title, &m.Path, &m.Icon,
		&m.SortOrder, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if parent.Valid {
		m.ParentID = &parent.Int64
	}
	return m, nil
}

func (s *Store) queryMenus(ctx context.Context, query string, args ...interface{}) ([]model.Menu, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var menus []model.Menu
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, err
		}
		menus = append(menus, *m)
	}
	return menus, rows.Err()
}

// CreateMenu 创建菜单，成功后回填自增 ID
// 时间戳未设置时取当前时间
func (s *Store) CreateMenu(ctx context.Context, menu *model.Menu) error {
	now := time.Now()
	if menu.CreatedAt.IsZero() {
		menu.CreatedAt = now
	}
	if menu.UpdatedAt.IsZero() {
		menu.UpdatedAt = now
	}
	var parent interface{}
	if menu.ParentID != nil {
		parent = *menu.ParentID
	}
	id, err := s.insertReturningID(ctx,
		`INSERT INTO menus (parent_id, title, path, icon, sort_order, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		parent, menu.Title, nullIfEmpty(menu.Path), nullIfEmpty(menu.Icon),
		menu.SortOrder, menu.CreatedAt, menu.UpdatedAt,
	)
	if err != nil {
		return err
	}
	menu.ID = id
	return nil
}

// GetMenuByID 通过 ID 查找菜单，不存在返回 (nil, nil)
func (s *Store) GetMenuByID(ctx context.Context, id int64) (*model.Menu, error) {
	menu, err := scanMenu(s.db.QueryRowContext(ctx,
		s.rebind(`SELECT `+menuColumns+` FROM menus WHERE id = $1`), id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return menu, err
}

// ListMenus 列出所有菜单，按 sort_order 升序、id 升序
func (s *Store) ListMenus(ctx context.Context) ([]model.Menu, error) {
	return s.queryMenus(ctx,
		`SELECT `+menuColumns+` FROM menus ORDER BY sort_order, id`)
}

// ListMenusByRole 列出角色可见的菜单
// admin 返回全部菜单，其他角色走 role_menu 关联表，排序规则一致
func (s *Store) ListMenusByRole(ctx context.Context, role string) ([]model.Menu, error) {
	if role == string(model.UserRoleAdmin) {
		return s.ListMenus(ctx)
	}
	return s.queryMenus(ctx,
		`SELECT m.id, m.parent_id, m.title, COALESCE(m.path, ''), COALESCE(m.icon, ''),
		        m.sort_order, m.created_at, m.updated_at
		 FROM menus m
		 JOIN role_menu rm ON m.id = rm.menu_id
		 JOIN roles r ON rm.role_id = r.id
		 WHERE r.name = $1
		 ORDER BY m.sort_order, m.id`, role)
}

// UpdateMenu 部分更新菜单字段，nil 字段保持不变
func (s *Store) UpdateMenu(ctx context.Context, id int64, update storage.MenuUpdate) error {
	var sets []string
	var args []interface{}

	add := func(col string, val interface{}) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if update.ParentID != nil {
		if *update.ParentID == nil {
			add("parent_id", nil)
		} else {
			add("parent_id", **update.ParentID)
		}
	}
	if update.Title != nil {
		add("title", *update.Title)
	}
	if update.Path != nil {
		add("path", nullIfEmpty(*update.Path))
	}
	if update.Icon != nil {
		add("icon", nullIfEmpty(*update.Icon))
	}
	if update.SortOrder != nil {
		add("sort_order", *update.SortOrder)
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = "+s.now())

	args = append(args, id)
	query := fmt.Sprintf("UPDATE menus SET %s WHERE id = $%d", joinExprs(sets), len(args))

	res, err := s.db.ExecContext(ctx, s.rebind(query), args...)
	if err != nil {
		return err
	}
	return requireRows(res)
}

// DeleteMenu 删除菜单
// 存在子菜单时返回 storage.ErrHasChildren，不做级联删除
func (s *Store) DeleteMenu(ctx context.Context, id int64) error {
	var children int64
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT COUNT(*) FROM menus WHERE parent_id = $1`), id).Scan(&children)
	if err != nil {
		return err
	}
	if children > 0 {
		return storage.ErrHasChildren
	}

	// 清理关联表中的引用
	if _, err := s.db.ExecContext(ctx,
		s.rebind(`DELETE FROM role_menu WHERE menu_id = $1`), id); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM menus WHERE id = $1`), id)
	if err != nil {
		return err
	}
	return requireRows(res)
}
