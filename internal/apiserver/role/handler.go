// Package role 角色领域 - HTTP 处理
//
// 角色 CRUD 与角色-菜单授权关系的管理，全部仅限管理员。
package role

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"admin-panel/internal/apiserver/auth"
	"admin-panel/internal/shared/model"
	"admin-panel/internal/shared/storage"
)

// 内置角色不可删除
var builtinRoles = map[string]bool{
	string(model.UserRoleAdmin): true,
	string(model.UserRoleUser):  true,
}

// Store 角色处理器依赖的存储接口
type Store interface {
	storage.RoleStore
	storage.MenuStore
	storage.UserStore
}

// Handler 角色领域 HTTP 处理器
type Handler struct {
	store Store
}

// NewHandler 创建角色处理器
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册角色相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/roles", auth.AdminOnly(h.List))
	mux.HandleFunc("POST /api/v1/roles", auth.AdminOnly(h.Create))
	mux.HandleFunc("GET /api/v1/roles/{id}", auth.AdminOnly(h.Get))
	mux.HandleFunc("PUT /api/v1/roles/{id}", auth.AdminOnly(h.Update))
	mux.HandleFunc("DELETE /api/v1/roles/{id}", auth.AdminOnly(h.Delete))
	mux.HandleFunc("GET /api/v1/roles/{id}/menus", auth.AdminOnly(h.GetMenus))
	mux.HandleFunc("PUT /api/v1/roles/{id}/menus", auth.AdminOnly(h.SetMenus))
}

type roleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type setMenusRequest struct {
	MenuIDs []int64 `json:"menu_ids"`
}

// List 角色列表
// GET /api/v1/roles
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	roles, err := h.store.ListRoles(r.Context())
	if err != nil {
		log.Printf("[role.list] ListRoles error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, roles)
}

// Get 查询单个角色
// GET /api/v1/roles/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid role id")
		return
	}
	role, err := h.store.GetRoleByID(r.Context(), id)
	if err != nil {
		log.Printf("[role.get] GetRoleByID error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if role == nil {
		writeError(w, http.StatusNotFound, "role not found")
		return
	}
	writeJSON(w, http.StatusOK, role)
}

// Create 创建角色
// POST /api/v1/roles
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	role := &model.Role{Name: req.Name, Description: req.Description}
	if err := h.store.CreateRole(r.Context(), role); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeError(w, http.StatusConflict, "role name already exists")
			return
		}
		log.Printf("[role.create] CreateRole error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, role)
}

// Update 更新角色
// PUT /api/v1/roles/{id}
// 内置角色不允许改名
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	var req roleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	existing, err := h.store.GetRoleByID(r.Context(), id)
	if err != nil {
		log.Printf("[role.update] GetRoleByID error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "role not found")
		return
	}
	if req.Name != "" && req.Name != existing.Name && builtinRoles[existing.Name] {
		writeError(w, http.StatusBadRequest, "builtin role cannot be renamed")
		return
	}

	if req.Name != "" {
		existing.Name = req.Name
	}
	existing.Description = req.Description

	if err := h.store.UpdateRole(r.Context(), existing); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeError(w, http.StatusConflict, "role name already exists")
			return
		}
		log.Printf("[role.update] UpdateRole error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, existing)
}

// Delete 删除角色
// DELETE /api/v1/roles/{id}
// 内置角色和仍被用户使用的角色不可删除
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	role, err := h.store.GetRoleByID(r.Context(), id)
	if err != nil {
		log.Printf("[role.delete] GetRoleByID error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if role == nil {
		writeError(w, http.StatusNotFound, "role not found")
		return
	}
	if builtinRoles[role.Name] {
		writeError(w, http.StatusBadRequest, "builtin role cannot be deleted")
		return
	}

	users, err := h.store.ListUsers(r.Context(), storage.UserFilter{Role: role.Name})
	if err != nil {
		log.Printf("[role.delete] ListUsers error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if len(users) > 0 {
		writeError(w, http.StatusConflict, "role is still assigned to users")
		return
	}

	if err := h.store.DeleteRole(r.Context(), id); err != nil {
		log.Printf("[role.delete] DeleteRole error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "role deleted"})
}

// GetMenus 查询角色已授权的菜单 ID 列表
// GET /api/v1/roles/{id}/menus
func (h *Handler) GetMenus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid role id")
		return
	}
	role, err := h.store.GetRoleByID(r.Context(), id)
	if err != nil {
		log.Printf("[role.menus] GetRoleByID error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if role == nil {
		writeError(w, http.StatusNotFound, "role not found")
		return
	}

	ids, err := h.store.ListRoleMenuIDs(r.Context(), id)
	if err != nil {
		log.Printf("[role.menus] ListRoleMenuIDs error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int64{"menu_ids": ids})
}

// SetMenus 整体替换角色的菜单授权
// PUT /api/v1/roles/{id}/menus
func (h *Handler) SetMenus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	var req setMenusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.store.GetRoleByID(r.Context(), id)
	if err != nil {
		log.Printf("[role.setmenus] GetRoleByID error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if role == nil {
		writeError(w, http.StatusNotFound, "role not found")
		return
	}

	// 校验菜单 ID 都存在
	menus, err := h.store.ListMenus(r.Context())
	if err != nil {
		log.Printf("[role.setmenus] ListMenus error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	known := make(map[int64]bool, len(menus))
	for i := range menus {
		known[menus[i].ID] = true
	}
	for _, menuID := range req.MenuIDs {
		if !known[menuID] {
			writeError(w, http.StatusBadRequest, "unknown menu id in menu_ids")
			return
		}
	}

	if err := h.store.SetRoleMenus(r.Context(), id, req.MenuIDs); err != nil {
		log.Printf("[role.setmenus] SetRoleMenus error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]int64{"menu_ids": req.MenuIDs})
}
