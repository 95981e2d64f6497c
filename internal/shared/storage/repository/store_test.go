// Package repository SQLite 集成测试
//
// 使用 SQLite 内存数据库验证 repository 层所有存储接口的正确性。
// 无需外部数据库依赖，可在任何环境下运行。
package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-panel/internal/shared/model"
	"admin-panel/internal/shared/storage"
	"admin-panel/internal/shared/storage/dbutil"
	sqlitedriver "admin-panel/internal/shared/storage/driver/sqlite"
)

// newTestStore 创建用于测试的 SQLite 内存数据库 Store
func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sqlitedriver.Open(":memory:")
	require.NoError(t, err)
	dialect := sqlitedriver.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))
	store := NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })
	return store
}

func strPtr(s string) *string { return &s }
func intPtr(v int) *int       { return &v }

// ============================================================================
// Dialect 基础测试
// ============================================================================

func TestDialectTypes(t *testing.T) {
	d := sqlitedriver.NewDialect()
	assert.Equal(t, dbutil.DriverSQLite, d.DriverType())
	assert.Equal(t, "datetime('now')", d.CurrentTimestamp())
	assert.Equal(t, "1", d.BooleanLiteral(true))
	assert.Equal(t, "0", d.BooleanLiteral(false))
}

func TestRebind(t *testing.T) {
	d := sqlitedriver.NewDialect()
	assert.Equal(t, "SELECT * FROM t WHERE id = ? AND name = ?",
		d.Rebind("SELECT * FROM t WHERE id = $1 AND name = $2"))
}

// ============================================================================
// User 测试
// ============================================================================

func TestUserCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &model.User{
		Username:     "alice",
		PasswordHash: "hash-1",
		Name:         "Alice",
		Role:         model.UserRoleAdmin,
		Email:        "alice@example.com",
	}
	require.NoError(t, s.CreateUser(ctx, user))
	assert.NotZero(t, user.ID)

	got, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.False(t, got.CreatedAt.IsZero())

	got, err = s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)

	// 不存在返回 nil, nil
	got, err = s.GetUserByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)

	// 重名
	err = s.CreateUser(ctx, &model.User{Username: "alice", PasswordHash: "x"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	// 部分更新
	err = s.UpdateUser(ctx, user.ID, storage.UserUpdate{Name: strPtr("Alice L")})
	require.NoError(t, err)
	got, err = s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice L", got.Name)
	assert.Equal(t, "alice@example.com", got.Email)

	// 更新不存在的用户
	err = s.UpdateUser(ctx, 9999, storage.UserUpdate{Name: strPtr("x")})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// 删除
	require.NoError(t, s.DeleteUser(ctx, user.ID))
	assert.ErrorIs(t, s.DeleteUser(ctx, user.ID), storage.ErrNotFound)
}

func TestCreateSetsTimestamps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &model.User{Username: "ts-user", PasswordHash: "h", Name: "T", Role: model.UserRoleUser}
	require.NoError(t, s.CreateUser(ctx, user))
	got, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, got.CreatedAt.IsZero())
	assert.False(t, got.UpdatedAt.IsZero())

	menu := &model.Menu{Title: "ts-menu"}
	require.NoError(t, s.CreateMenu(ctx, menu))
	gotMenu, err := s.GetMenuByID(ctx, menu.ID)
	require.NoError(t, err)
	assert.False(t, gotMenu.CreatedAt.IsZero())
	assert.False(t, gotMenu.UpdatedAt.IsZero())

	role := &model.Role{Name: "ts-role"}
	require.NoError(t, s.CreateRole(ctx, role))
	gotRole, err := s.GetRoleByID(ctx, role.ID)
	require.NoError(t, err)
	assert.False(t, gotRole.CreatedAt.IsZero())
	assert.False(t, gotRole.UpdatedAt.IsZero())

	// 已填入的时间戳不被覆盖
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	seeded := &model.User{Username: "ts-seeded", PasswordHash: "h", CreatedAt: fixed, UpdatedAt: fixed}
	require.NoError(t, s.CreateUser(ctx, seeded))
	gotSeeded, err := s.GetUserByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, fixed.Unix(), gotSeeded.CreatedAt.Unix())
}

func TestUpdateUserLastWriteWins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &model.User{Username: "lw", PasswordHash: "h", Name: "v0", Role: model.UserRoleUser}
	require.NoError(t, s.CreateUser(ctx, user))

	// 顺序写入：后写覆盖先写
	require.NoError(t, s.UpdateUser(ctx, user.ID, storage.UserUpdate{Name: strPtr("v1")}))
	require.NoError(t, s.UpdateUser(ctx, user.ID, storage.UserUpdate{Name: strPtr("v2")}))
	got, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Name)

	// 并发写入互不阻塞，随后完成的写入决定最终值
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("c%d", i)
			assert.NoError(t, s.UpdateUser(ctx, user.ID, storage.UserUpdate{Name: &name}))
		}(i)
	}
	wg.Wait()

	require.NoError(t, s.UpdateUser(ctx, user.ID, storage.UserUpdate{Name: strPtr("final")}))
	got, err = s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "final", got.Name)
}

func TestUpdateUserPassword(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := &model.User{Username: "alice", PasswordHash: "old"}
	require.NoError(t, s.CreateUser(ctx, user))

	require.NoError(t, s.UpdateUserPassword(ctx, user.ID, "new"))
	got, err := s.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.PasswordHash)

	assert.ErrorIs(t, s.UpdateUserPassword(ctx, 9999, "x"), storage.ErrNotFound)
}

func TestListUsersFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, u := range []*model.User{
		{Username: "alice", PasswordHash: "x", Name: "Alice", Role: model.UserRoleAdmin},
		{Username: "bob", PasswordHash: "x", Name: "Bob", Role: model.UserRoleUser},
		{Username: "carol", PasswordHash: "x", Name: "Carol", Role: model.UserRoleUser, Email: "carol@corp.io"},
	} {
		require.NoError(t, s.CreateUser(ctx, u))
	}

	all, err := s.ListUsers(ctx, storage.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	admins, err := s.ListUsers(ctx, storage.UserFilter{Role: "admin"})
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "alice", admins[0].Username)

	// "all" 不过滤
	got, err := s.ListUsers(ctx, storage.UserFilter{Role: "all"})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	// 模糊搜索命中 username/name/email
	got, err = s.ListUsers(ctx, storage.UserFilter{Search: "corp"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "carol", got[0].Username)

	// 组合条件
	got, err = s.ListUsers(ctx, storage.UserFilter{Role: "user", Search: "bob"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "bob", got[0].Username)
}

// ============================================================================
// Menu 测试
// ============================================================================

func TestMenuCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	root := &model.Menu{Title: "仪表盘", Path: "/dashboard", Icon: "LayoutDashboard"}
	require.NoError(t, s.CreateMenu(ctx, root))
	assert.NotZero(t, root.ID)

	child := &model.Menu{Title: "子页面", ParentID: &root.ID, SortOrder: 3}
	require.NoError(t, s.CreateMenu(ctx, child))

	got, err := s.GetMenuByID(ctx, child.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, root.ID, *got.ParentID)
	assert.Equal(t, 3, got.SortOrder)

	// 部分更新：改标题不动父节点
	err = s.UpdateMenu(ctx, child.ID, storage.MenuUpdate{Title: strPtr("改名")})
	require.NoError(t, err)
	got, err = s.GetMenuByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, "改名", got.Title)
	require.NotNil(t, got.ParentID)

	// 设为根菜单（内层 nil）
	var nilParent *int64
	err = s.UpdateMenu(ctx, child.ID, storage.MenuUpdate{ParentID: &nilParent})
	require.NoError(t, err)
	got, err = s.GetMenuByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)

	// 排序更新
	err = s.UpdateMenu(ctx, child.ID, storage.MenuUpdate{SortOrder: intPtr(7)})
	require.NoError(t, err)
	got, err = s.GetMenuByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.SortOrder)
}

func TestListMenusOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// 插入顺序与期望排序不同
	for _, m := range []*model.Menu{
		{Title: "second", SortOrder: 1},
		{Title: "first", SortOrder: 0},
		{Title: "third", SortOrder: 1},
	} {
		require.NoError(t, s.CreateMenu(ctx, m))
	}

	menus, err := s.ListMenus(ctx)
	require.NoError(t, err)
	require.Len(t, menus, 3)
	// sort_order 优先，相同时按 id
	assert.Equal(t, "first", menus[0].Title)
	assert.Equal(t, "second", menus[1].Title)
	assert.Equal(t, "third", menus[2].Title)
}

func TestDeleteMenuWithChildren(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	parent := &model.Menu{Title: "parent"}
	require.NoError(t, s.CreateMenu(ctx, parent))
	child := &model.Menu{Title: "child", ParentID: &parent.ID}
	require.NoError(t, s.CreateMenu(ctx, child))

	err := s.DeleteMenu(ctx, parent.ID)
	assert.ErrorIs(t, err, storage.ErrHasChildren)

	require.NoError(t, s.DeleteMenu(ctx, child.ID))
	require.NoError(t, s.DeleteMenu(ctx, parent.ID))
	assert.ErrorIs(t, s.DeleteMenu(ctx, parent.ID), storage.ErrNotFound)
}

func TestDeleteMenuClearsRoleRefs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	menu := &model.Menu{Title: "m"}
	require.NoError(t, s.CreateMenu(ctx, menu))
	role := &model.Role{Name: "ops"}
	require.NoError(t, s.CreateRole(ctx, role))
	require.NoError(t, s.SetRoleMenus(ctx, role.ID, []int64{menu.ID}))

	require.NoError(t, s.DeleteMenu(ctx, menu.ID))

	ids, err := s.ListRoleMenuIDs(ctx, role.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestListMenusByRole(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureSeedData(ctx))

	// admin 返回全部
	menus, err := s.ListMenusByRole(ctx, "admin")
	require.NoError(t, err)
	assert.Len(t, menus, 3)

	// user 只授权了仪表盘
	menus, err = s.ListMenusByRole(ctx, "user")
	require.NoError(t, err)
	require.Len(t, menus, 1)
	assert.Equal(t, "仪表盘", menus[0].Title)

	// 未知角色返回空集
	menus, err = s.ListMenusByRole(ctx, "ghost")
	require.NoError(t, err)
	assert.Empty(t, menus)
}

// ============================================================================
// Role 测试
// ============================================================================

func TestRoleCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	role := &model.Role{Name: "auditor", Description: "只读"}
	require.NoError(t, s.CreateRole(ctx, role))
	assert.NotZero(t, role.ID)

	err := s.CreateRole(ctx, &model.Role{Name: "auditor"})
	assert.ErrorIs(t, err, storage.ErrDuplicate)

	got, err := s.GetRoleByName(ctx, "auditor")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, role.ID, got.ID)

	got, err = s.GetRoleByName(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, got)

	role.Description = "只读审计"
	require.NoError(t, s.UpdateRole(ctx, role))
	got, err = s.GetRoleByID(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, "只读审计", got.Description)

	require.NoError(t, s.DeleteRole(ctx, role.ID))
	got, err = s.GetRoleByID(ctx, role.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetRoleMenusReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	role := &model.Role{Name: "ops"}
	require.NoError(t, s.CreateRole(ctx, role))
	m1 := &model.Menu{Title: "a"}
	m2 := &model.Menu{Title: "b"}
	require.NoError(t, s.CreateMenu(ctx, m1))
	require.NoError(t, s.CreateMenu(ctx, m2))

	require.NoError(t, s.SetRoleMenus(ctx, role.ID, []int64{m1.ID, m2.ID}))
	ids, err := s.ListRoleMenuIDs(ctx, role.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{m1.ID, m2.ID}, ids)

	// 整体替换
	require.NoError(t, s.SetRoleMenus(ctx, role.ID, []int64{m2.ID}))
	ids, err = s.ListRoleMenuIDs(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{m2.ID}, ids)

	// 清空
	require.NoError(t, s.SetRoleMenus(ctx, role.ID, nil))
	ids, err = s.ListRoleMenuIDs(ctx, role.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

// ============================================================================
// S3Config 测试
// ============================================================================

func TestS3Config(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// 未配置时返回 nil, nil
	got, err := s.GetS3Config(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	cfg := &model.S3Config{
		Enabled:         false,
		AccessKeyID:     "AK",
		SecretAccessKey: "SK",
		RegionName:      "us-east-1",
		BucketName:      "assets",
		Folder:          "uploads",
	}
	require.NoError(t, s.SaveS3Config(ctx, cfg))

	got, err = s.GetS3Config(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "assets", got.BucketName)

	// 未启用时 GetEnabledS3Config 返回 nil
	enabled, err := s.GetEnabledS3Config(ctx)
	require.NoError(t, err)
	assert.Nil(t, enabled)

	// 再次保存更新同一条记录
	got.Enabled = true
	got.BucketName = "assets-v2"
	require.NoError(t, s.SaveS3Config(ctx, got))

	enabled, err = s.GetEnabledS3Config(ctx)
	require.NoError(t, err)
	require.NotNil(t, enabled)
	assert.Equal(t, "assets-v2", enabled.BucketName)

	all, err := s.GetS3Config(ctx)
	require.NoError(t, err)
	assert.Equal(t, got.ID, all.ID)
}

// ============================================================================
// SystemConfig 测试
// ============================================================================

func TestSystemConfigUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cfg, err := s.SetSystemConfig(ctx, "site_name", strPtr("Panel"), model.ConfigTypeString, "站点名")
	require.NoError(t, err)
	assert.Equal(t, "Panel", cfg.ValueOr(""))

	// 后写覆盖
	cfg, err = s.SetSystemConfig(ctx, "site_name", strPtr("Panel v2"), model.ConfigTypeString, "")
	require.NoError(t, err)
	assert.Equal(t, "Panel v2", cfg.ValueOr(""))
	// 空描述保留原值
	assert.Equal(t, "站点名", cfg.Description)

	got, err := s.GetSystemConfig(ctx, "site_name")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Panel v2", got.ValueOr(""))

	// NULL 值
	cfg, err = s.SetSystemConfig(ctx, "optional_key", nil, model.ConfigTypeString, "")
	require.NoError(t, err)
	assert.Nil(t, cfg.Value)
	assert.Equal(t, "fallback", cfg.ValueOr("fallback"))
}

func TestSystemConfigListOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"zebra", "alpha", "mike"} {
		_, err := s.SetSystemConfig(ctx, key, strPtr("v"), model.ConfigTypeString, "")
		require.NoError(t, err)
	}

	configs, err := s.ListSystemConfigs(ctx)
	require.NoError(t, err)
	require.Len(t, configs, 3)
	assert.Equal(t, "alpha", configs[0].Key)
	assert.Equal(t, "mike", configs[1].Key)
	assert.Equal(t, "zebra", configs[2].Key)
}

// ============================================================================
// Stats 与种子数据测试
// ============================================================================

func TestStatsAndSeed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.EnsureSeedData(ctx))
	// 幂等
	require.NoError(t, s.EnsureSeedData(ctx))

	menus, err := s.CountMenus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), menus)

	roles, err := s.CountRoles(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), roles)

	users, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Zero(t, users)

	cfg, err := s.GetSystemConfig(ctx, model.ConfigKeySystemName)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "Admin System", cfg.ValueOr(""))
}

func TestRecentUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"u1", "u2", "u3"} {
		require.NoError(t, s.CreateUser(ctx, &model.User{Username: name, PasswordHash: "x"}))
	}

	recent, err := s.RecentUsers(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	// 最新创建的排在前面
	assert.Equal(t, "u3", recent[0].Username)
	assert.Equal(t, "u2", recent[1].Username)
}
