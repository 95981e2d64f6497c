// Package menu 菜单领域 - HTTP 处理与树构建
package menu

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"admin-panel/internal/apiserver/auth"
	"admin-panel/internal/shared/model"
	"admin-panel/internal/shared/storage"
)

// Store 菜单处理器依赖的存储接口
type Store interface {
	storage.MenuStore
	storage.RoleStore
}

// Handler 菜单领域 HTTP 处理器
type Handler struct {
	store Store
}

// NewHandler 创建菜单处理器
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册菜单相关路由
// 读取需要认证，写入仅限管理员
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/menus", h.List)
	mux.HandleFunc("POST /api/v1/menus", auth.AdminOnly(h.Create))
	mux.HandleFunc("GET /api/v1/menus/tree", h.Tree)
	mux.HandleFunc("GET /api/v1/menus/role/{role}", h.RoleTree)
	mux.HandleFunc("GET /api/v1/menus/{id}", h.Get)
	mux.HandleFunc("PUT /api/v1/menus/{id}", auth.AdminOnly(h.Update))
	mux.HandleFunc("DELETE /api/v1/menus/{id}", auth.AdminOnly(h.Delete))
}

// ============================================================================
// 请求类型
// ============================================================================

type createRequest struct {
	ParentID  *int64 `json:"parent_id"`
	Title     string `json:"title"`
	Path      string `json:"path"`
	Icon      string `json:"icon"`
	SortOrder int    `json:"sort_order"`
}

// updateRequest 部分更新，未出现的字段不修改
// parent_id 显式传 null 表示设为根菜单
type updateRequest struct {
	ParentID  json.RawMessage `json:"parent_id"`
	Title     *string         `json:"title"`
	Path      *string         `json:"path"`
	Icon      *string         `json:"icon"`
	SortOrder *int            `json:"sort_order"`
}

// ============================================================================
// HTTP 处理函数
// ============================================================================

// List 平铺菜单列表（按 sort_order, id 排序）
// GET /api/v1/menus
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	menus, err := h.store.ListMenus(r.Context())
	if err != nil {
		log.Printf("[menu.list] ListMenus error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, menus)
}

// Tree 完整菜单树
// GET /api/v1/menus/tree
func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	menus, err := h.store.ListMenus(r.Context())
	if err != nil {
		log.Printf("[menu.tree] ListMenus error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, BuildTree(menus))
}

// RoleTree 按角色过滤的菜单树
// GET /api/v1/menus/role/{role}
// admin 角色返回完整树，其他角色按 role_menu 关联过滤
func (h *Handler) RoleTree(w http.ResponseWriter, r *http.Request) {
	roleName := r.PathValue("role")

	if roleName != string(model.UserRoleAdmin) {
		role, err := h.store.GetRoleByName(r.Context(), roleName)
		if err != nil {
			log.Printf("[menu.roletree] GetRoleByName error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if role == nil {
			writeError(w, http.StatusNotFound, "role not found")
			return
		}
	}

	menus, err := h.store.ListMenusByRole(r.Context(), roleName)
	if err != nil {
		log.Printf("[menu.roletree] ListMenusByRole error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, BuildTree(menus))
}

// Get 查询单个菜单
// GET /api/v1/menus/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid menu id")
		return
	}
	menu, err := h.store.GetMenuByID(r.Context(), id)
	if err != nil {
		log.Printf("[menu.get] GetMenuByID error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if menu == nil {
		writeError(w, http.StatusNotFound, "menu not found")
		return
	}
	writeJSON(w, http.StatusOK, menu)
}

// Create 创建菜单
// POST /api/v1/menus
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	if req.ParentID != nil {
		parent, err := h.store.GetMenuByID(r.Context(), *req.ParentID)
		if err != nil {
			log.Printf("[menu.create] GetMenuByID error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if parent == nil {
			writeError(w, http.StatusBadRequest, "parent menu not found")
			return
		}
	}

	menu := &model.Menu{
		ParentID:  req.ParentID,
		Title:     req.Title,
		Path:      req.Path,
		Icon:      req.Icon,
		SortOrder: req.SortOrder,
	}
	if err := h.store.CreateMenu(r.Context(), menu); err != nil {
		log.Printf("[menu.create] CreateMenu error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, menu)
}

// Update 更新菜单，写入前校验父子关系不成环
// PUT /api/v1/menus/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid menu id")
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	update := storage.MenuUpdate{
		Title:     req.Title,
		Path:      req.Path,
		Icon:      req.Icon,
		SortOrder: req.SortOrder,
	}

	if len(req.ParentID) > 0 {
		var parentID *int64
		if string(req.ParentID) != "null" {
			var v int64
			if err := json.Unmarshal(req.ParentID, &v); err != nil {
				writeError(w, http.StatusBadRequest, "invalid parent_id")
				return
			}
			parentID = &v
		}
		if parentID != nil {
			if err := h.checkParent(r, id, *parentID); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		update.ParentID = &parentID
	}

	if err := h.store.UpdateMenu(r.Context(), id, update); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "menu not found")
			return
		}
		log.Printf("[menu.update] UpdateMenu error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	menu, err := h.store.GetMenuByID(r.Context(), id)
	if err != nil || menu == nil {
		log.Printf("[menu.update] reload error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, menu)
}

// Delete 删除菜单，存在子菜单时拒绝
// DELETE /api/v1/menus/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid menu id")
		return
	}

	if err := h.store.DeleteMenu(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "menu not found")
		case errors.Is(err, storage.ErrHasChildren):
			writeError(w, http.StatusBadRequest, "menu has child menus, delete them first")
		default:
			log.Printf("[menu.delete] DeleteMenu error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "menu deleted"})
}

// checkParent 校验新的父节点：必须存在、不是自身、且不在自身的子树内
func (h *Handler) checkParent(r *http.Request, id, parentID int64) error {
	if parentID == id {
		return errors.New("menu cannot be its own parent")
	}

	menus, err := h.store.ListMenus(r.Context())
	if err != nil {
		return errors.New("internal error")
	}
	parents := make(map[int64]*int64, len(menus))
	found := false
	for i := range menus {
		parents[menus[i].ID] = menus[i].ParentID
		if menus[i].ID == parentID {
			found = true
		}
	}
	if !found {
		return errors.New("parent menu not found")
	}

	// 沿新父节点向上走，遇到自身说明会成环
	for cur := &parentID; cur != nil; cur = parents[*cur] {
		if *cur == id {
			return errors.New("menu cannot be moved under its own descendant")
		}
	}
	return nil
}
