package repository

import (
	"context"
	"fmt"
	"time"

	"admin-panel/internal/shared/model"
)

// DefaultSystemConfigs 系统配置默认值，也用于重置操作
var DefaultSystemConfigs = []struct {
	Key         string
	Value       string
	Description string
}{
	{model.ConfigKeySystemName, "Admin System", "系统名称"},
	{model.ConfigKeySystemLogo, "A", "系统Logo文字"},
	{model.ConfigKeySystemLogoURL, "", "系统Logo图片URL"},
	{model.ConfigKeySystemDescription, "现代化的后台管理系统", "系统描述"},
	{model.ConfigKeySystemVersion, "1.0.0", "系统版本"},
	{model.ConfigKeySystemCopyright, "© 2024 Admin System. All rights reserved.", "版权信息"},
}

// EnsureSeedData 首次启动时写入初始数据（角色、菜单、系统配置）
// 幂等：对应表非空时跳过。管理员账号的引导由 auth.EnsureAdminUser 负责。
func (s *Store) EnsureSeedData(ctx context.Context) error {
	if err := s.seedRoles(ctx); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	if err := s.seedMenus(ctx); err != nil {
		return fmt.Errorf("seed menus: %w", err)
	}
	if err := s.seedSystemConfigs(ctx); err != nil {
		return fmt.Errorf("seed system configs: %w", err)
	}
	return nil
}

func (s *Store) seedRoles(ctx context.Context) error {
	n, err := s.CountRoles(ctx)
	if err != nil || n > 0 {
		return err
	}
	now := time.Now()
	for _, r := range []model.Role{
		{Name: string(model.UserRoleAdmin), Description: "系统管理员"},
		{Name: string(model.UserRoleUser), Description: "普通用户"},
	} {
		r.CreatedAt, r.UpdatedAt = now, now
		if err := s.CreateRole(ctx, &r); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) seedMenus(ctx context.Context) error {
	n, err := s.CountMenus(ctx)
	if err != nil || n > 0 {
		return err
	}
	now := time.Now()
	defaults := []model.Menu{
		{Title: "仪表盘", Path: "/dashboard", Icon: "LayoutDashboard", SortOrder: 0},
		{Title: "用户管理", Path: "/users", Icon: "Users", SortOrder: 1},
		{Title: "系统设置", Path: "/settings", Icon: "Settings", SortOrder: 2},
	}
	var dashboardID int64
	for i := range defaults {
		defaults[i].CreatedAt, defaults[i].UpdatedAt = now, now
		if err := s.CreateMenu(ctx, &defaults[i]); err != nil {
			return err
		}
		if defaults[i].Path == "/dashboard" {
			dashboardID = defaults[i].ID
		}
	}

	// 普通用户默认只看到仪表盘
	userRole, err := s.GetRoleByName(ctx, string(model.UserRoleUser))
	if err != nil || userRole == nil {
		return err
	}
	return s.SetRoleMenus(ctx, userRole.ID, []int64{dashboardID})
}

func (s *Store) seedSystemConfigs(ctx context.Context) error {
	configs, err := s.ListSystemConfigs(ctx)
	if err != nil || len(configs) > 0 {
		return err
	}
	for _, c := range DefaultSystemConfigs {
		value := c.Value
		if _, err := s.SetSystemConfig(ctx, c.Key, &value, model.ConfigTypeString, c.Description); err != nil {
			return err
		}
	}
	return nil
}
