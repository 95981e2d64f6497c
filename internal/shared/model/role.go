package model

import "time"

// Role 角色
//
// 角色与菜单通过 role_menu 关联表建立多对多关系；
// 用户记录直接存储角色名（非外键）。
type Role struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
