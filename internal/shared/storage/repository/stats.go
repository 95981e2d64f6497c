package repository

import "context"

// 仪表盘统计查询

func (s *Store) countTable(ctx context.Context, table string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
	return n, err
}

// CountUsers 用户总数
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	return s.countTable(ctx, "users")
}

// CountMenus 菜单总数
func (s *Store) CountMenus(ctx context.Context) (int64, error) {
	return s.countTable(ctx, "menus")
}

// CountRoles 角色总数
func (s *Store) CountRoles(ctx context.Context) (int64, error) {
	return s.countTable(ctx, "roles")
}
