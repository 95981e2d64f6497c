package menu

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-panel/internal/shared/model"
)

func ptr(v int64) *int64 { return &v }

func TestBuildTree(t *testing.T) {
	menus := []model.Menu{
		{ID: 1, ParentID: nil, Title: "仪表盘", SortOrder: 0},
		{ID: 2, ParentID: ptr(1), Title: "用户管理", SortOrder: 0},
		{ID: 3, ParentID: ptr(1), Title: "系统设置", SortOrder: 1},
	}

	roots := BuildTree(menus)
	require.Len(t, roots, 1)
	assert.Equal(t, int64(1), roots[0].ID)
	require.Len(t, roots[0].Children, 2)
	assert.Equal(t, int64(2), roots[0].Children[0].ID)
	assert.Equal(t, int64(3), roots[0].Children[1].ID)
}

func TestBuildTreePreservesOrder(t *testing.T) {
	// 输入已按 sort_order, id 排序，树内兄弟节点保持该顺序
	menus := []model.Menu{
		{ID: 3, ParentID: nil, Title: "c", SortOrder: 0},
		{ID: 1, ParentID: nil, Title: "a", SortOrder: 1},
		{ID: 2, ParentID: nil, Title: "b", SortOrder: 2},
	}

	roots := BuildTree(menus)
	require.Len(t, roots, 3)
	assert.Equal(t, int64(3), roots[0].ID)
	assert.Equal(t, int64(1), roots[1].ID)
	assert.Equal(t, int64(2), roots[2].ID)
}

func TestBuildTreeDropsOrphans(t *testing.T) {
	// 父节点被过滤掉时子节点连同其子树不进入结果
	menus := []model.Menu{
		{ID: 1, ParentID: nil, Title: "root"},
		{ID: 5, ParentID: ptr(99), Title: "orphan"},
		{ID: 6, ParentID: ptr(5), Title: "orphan-child"},
	}

	roots := BuildTree(menus)
	require.Len(t, roots, 1)
	assert.Equal(t, int64(1), roots[0].ID)
	assert.Empty(t, roots[0].Children)
}

func TestBuildTreeDeepNesting(t *testing.T) {
	menus := []model.Menu{
		{ID: 1, ParentID: nil},
		{ID: 2, ParentID: ptr(1)},
		{ID: 3, ParentID: ptr(2)},
		{ID: 4, ParentID: ptr(3)},
	}

	roots := BuildTree(menus)
	require.Len(t, roots, 1)
	node := roots[0]
	for want := int64(2); want <= 4; want++ {
		require.Len(t, node.Children, 1)
		node = node.Children[0]
		assert.Equal(t, want, node.ID)
	}
	assert.Empty(t, node.Children)
}

func TestBuildTreeEmpty(t *testing.T) {
	assert.Empty(t, BuildTree(nil))
	assert.Empty(t, BuildTree([]model.Menu{}))
}

func TestTreeJSONHasChildrenArray(t *testing.T) {
	// 叶子节点序列化为 "children": [] 而不是 null
	roots := BuildTree([]model.Menu{{ID: 1, Title: "leaf"}})
	data, err := json.Marshal(roots)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"children":[]`)
}
