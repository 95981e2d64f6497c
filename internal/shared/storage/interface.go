package storage

import (
	"context"

	"admin-panel/internal/shared/model"
)

// UserFilter 用户列表筛选条件
type UserFilter struct {
	Search string // username/name/email 模糊匹配
	Role   string // 精确匹配角色名，空或 "all" 不过滤
}

// UserUpdate 用户部分更新字段（nil 表示不修改）
type UserUpdate struct {
	Name         *string
	Role         *model.UserRole
	Email        *string
	Avatar       *string
	PasswordHash *string
}

// MenuUpdate 菜单部分更新字段（nil 表示不修改）
//
// ParentID 为二级指针：外层 nil 表示不修改，内层 nil 表示设为根菜单。
type MenuUpdate struct {
	ParentID  **int64
	Title     *string
	Path      *string
	Icon      *string
	SortOrder *int
}

// UserStore 用户存储接口
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]*model.User, error)
	UpdateUser(ctx context.Context, id int64, update UserUpdate) error
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error
	DeleteUser(ctx context.Context, id int64) error
}

// MenuStore 菜单存储接口
type MenuStore interface {
	CreateMenu(ctx context.Context, menu *model.Menu) error
	GetMenuByID(ctx context.Context, id int64) (*model.Menu, error)
	ListMenus(ctx context.Context) ([]model.Menu, error)
	ListMenusByRole(ctx context.Context, role string) ([]model.Menu, error)
	UpdateMenu(ctx context.Context, id int64, update MenuUpdate) error
	DeleteMenu(ctx context.Context, id int64) error
}

// RoleStore 角色存储接口
type RoleStore interface {
	CreateRole(ctx context.Context, role *model.Role) error
	GetRoleByID(ctx context.Context, id int64) (*model.Role, error)
	GetRoleByName(ctx context.Context, name string) (*model.Role, error)
	ListRoles(ctx context.Context) ([]*model.Role, error)
	UpdateRole(ctx context.Context, role *model.Role) error
	DeleteRole(ctx context.Context, id int64) error
	SetRoleMenus(ctx context.Context, roleID int64, menuIDs []int64) error
	ListRoleMenuIDs(ctx context.Context, roleID int64) ([]int64, error)
}

// S3ConfigStore 对象存储配置接口
type S3ConfigStore interface {
	GetS3Config(ctx context.Context) (*model.S3Config, error)
	GetEnabledS3Config(ctx context.Context) (*model.S3Config, error)
	SaveS3Config(ctx context.Context, cfg *model.S3Config) error
}

// SystemConfigStore 系统配置接口
type SystemConfigStore interface {
	ListSystemConfigs(ctx context.Context) ([]*model.SystemConfig, error)
	GetSystemConfig(ctx context.Context, key string) (*model.SystemConfig, error)
	SetSystemConfig(ctx context.Context, key string, value *string, typ model.ConfigType, description string) (*model.SystemConfig, error)
	DeleteSystemConfig(ctx context.Context, key string) error
}

// StatsStore 仪表盘统计接口
type StatsStore interface {
	CountUsers(ctx context.Context) (int64, error)
	CountMenus(ctx context.Context) (int64, error)
	CountRoles(ctx context.Context) (int64, error)
	RecentUsers(ctx context.Context, limit int) ([]*model.User, error)
}

// Store 聚合存储接口，repository.Store 是其唯一实现
type Store interface {
	UserStore
	MenuStore
	RoleStore
	S3ConfigStore
	SystemConfigStore
	StatsStore

	Close() error
}
