package model

import "time"

// UserRole 用户角色名
//
// 内置角色常量是权限判定的唯一依据；自定义角色通过 roles 表维护，
// 在用户创建/更新边界处校验角色是否存在。
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// User 用户
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"` // never expose in JSON
	Name         string    `json:"name" db:"name"`
	Role         UserRole  `json:"role" db:"role"`
	Email        string    `json:"email,omitempty" db:"email"`
	Avatar       string    `json:"avatar,omitempty" db:"avatar"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
