package menu

import "admin-panel/internal/shared/model"

// BuildTree 将平铺菜单列表组装为树
//
// 单次遍历建立 id -> 节点索引，再按输入顺序挂接父子关系，
// 整体 O(n)。输入已按 sort_order, id 排序，输出保持该顺序。
// 父节点不在集合内（如被角色过滤掉）的节点不进入树。
func BuildTree(menus []model.Menu) []*model.MenuNode {
	nodes := make(map[int64]*model.MenuNode, len(menus))
	for i := range menus {
		nodes[menus[i].ID] = &model.MenuNode{Menu: menus[i], Children: []*model.MenuNode{}}
	}

	roots := []*model.MenuNode{}
	for i := range menus {
		node := nodes[menus[i].ID]
		if menus[i].ParentID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*menus[i].ParentID]; ok {
			parent.Children = append(parent.Children, node)
		}
	}
	return roots
}
