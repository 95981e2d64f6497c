package model

import "time"

// Menu 菜单项
//
// parent_id 为 NULL 表示根菜单；同级排序按 sort_order 升序，
// 相同 sort_order 按 id 升序。
type Menu struct {
	ID        int64     `json:"id" db:"id"`
	ParentID  *int64    `json:"parent_id" db:"parent_id"`
	Title     string    `json:"title" db:"title"`
	Path      string    `json:"path,omitempty" db:"path"`
	Icon      string    `json:"icon,omitempty" db:"icon"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// MenuNode 菜单树节点
type MenuNode struct {
	Menu
	Children []*MenuNode `json:"children"`
}
