// Package user 用户领域 - HTTP 处理
//
// 包含登录/刷新令牌入口和用户管理 CRUD。
package user

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"admin-panel/internal/apiserver/auth"
	"admin-panel/internal/shared/model"
	"admin-panel/internal/shared/storage"
)

// Store 用户处理器依赖的存储接口
type Store interface {
	storage.UserStore
	storage.RoleStore
}

// Handler 用户领域 HTTP 处理器
type Handler struct {
	store Store
	svc   *auth.Service
	cfg   auth.Config
}

// NewHandler 创建用户处理器
func NewHandler(store Store, svc *auth.Service, cfg auth.Config) *Handler {
	return &Handler{store: store, svc: svc, cfg: cfg}
}

// RegisterRoutes 注册用户相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/users/login", h.Login)
	mux.HandleFunc("POST /api/v1/users/refresh-token", h.Refresh)
	mux.HandleFunc("GET /api/v1/users", auth.AdminOnly(h.List))
	mux.HandleFunc("POST /api/v1/users", auth.AdminOnly(h.Create))
	mux.HandleFunc("GET /api/v1/users/{id}", auth.SelfOrAdmin(h.Get))
	mux.HandleFunc("PUT /api/v1/users/{id}", auth.SelfOrAdmin(h.Update))
	mux.HandleFunc("DELETE /api/v1/users/{id}", auth.AdminOnly(h.Delete))
}

// ============================================================================
// 请求/响应类型
// ============================================================================

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Token string `json:"token"`
}

type loginResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

type createRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

type updateRequest struct {
	Name     *string `json:"name"`
	Role     *string `json:"role"`
	Email    *string `json:"email"`
	Avatar   *string `json:"avatar"`
	Password *string `json:"password"`
}

// ============================================================================
// 认证入口
// ============================================================================

// Login 用户名密码登录
// POST /api/v1/users/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.svc.ValidateUser(r.Context(), req.Username, req.Password)
	if err != nil {
		log.Printf("[user.login] ValidateUser error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		// 用户不存在与密码错误响应一致
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := auth.IssueToken(h.cfg, user)
	if err != nil {
		log.Printf("[user.login] IssueToken error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{User: user, Token: token})
}

// Refresh 刷新令牌
// POST /api/v1/users/refresh-token
// 旧令牌可以已过期，但签发时间超过上限的令牌要求重新登录。
// 用户信息从存储重读，刷新后的令牌反映当前角色。
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	tokenString := req.Token
	if tokenString == "" {
		tokenString, _ = strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	if tokenString == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}

	claims, err := auth.RefreshClaims(h.cfg, tokenString)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshRejected) {
			writeError(w, http.StatusUnauthorized, "token too old, please login again")
		} else {
			writeError(w, http.StatusUnauthorized, "invalid token")
		}
		return
	}

	user, err := h.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("[user.refresh] GetUserByID error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "user no longer exists")
		return
	}

	token, err := auth.IssueToken(h.cfg, user)
	if err != nil {
		log.Printf("[user.refresh] IssueToken error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// ============================================================================
// 用户管理
// ============================================================================

// List 用户列表，支持 ?search= 模糊搜索和 ?role= 过滤
// GET /api/v1/users
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := storage.UserFilter{
		Search: r.URL.Query().Get("search"),
		Role:   r.URL.Query().Get("role"),
	}

	users, err := h.store.ListUsers(r.Context(), filter)
	if err != nil {
		log.Printf("[user.list] ListUsers error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Get 查询单个用户
// GET /api/v1/users/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), id)
	if err != nil {
		log.Printf("[user.get] GetUserByID error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Create 创建用户
// POST /api/v1/users
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}
	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	role := req.Role
	if role == "" {
		role = string(model.UserRoleUser)
	}
	if !h.roleExists(r, role) {
		writeError(w, http.StatusBadRequest, "unknown role: "+role)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("[user.create] HashPassword error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user := &model.User{
		Username:     req.Username,
		PasswordHash: hash,
		Name:         req.Name,
		Role:         model.UserRole(role),
		Email:        req.Email,
		Avatar:       req.Avatar,
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			writeError(w, http.StatusBadRequest, "username already exists")
			return
		}
		log.Printf("[user.create] CreateUser error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Update 更新用户，零值字段不修改
// PUT /api/v1/users/{id}
// 本人或管理员可更新；角色修改仅限管理员
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actor := auth.GetAuthUser(r.Context())
	if req.Role != nil {
		if actor != nil && !actor.IsAdmin() {
			writeError(w, http.StatusForbidden, "only admin can change roles")
			return
		}
		if !h.roleExists(r, *req.Role) {
			writeError(w, http.StatusBadRequest, "unknown role: "+*req.Role)
			return
		}
	}

	update := storage.UserUpdate{
		Name:   req.Name,
		Email:  req.Email,
		Avatar: req.Avatar,
	}
	if req.Role != nil {
		role := model.UserRole(*req.Role)
		update.Role = &role
	}
	if req.Password != nil {
		if err := auth.ValidatePasswordStrength(*req.Password); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			log.Printf("[user.update] HashPassword error: %v", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		update.PasswordHash = &hash
	}

	if err := h.store.UpdateUser(r.Context(), id, update); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("[user.update] UpdateUser error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user, err := h.store.GetUserByID(r.Context(), id)
	if err != nil || user == nil {
		log.Printf("[user.update] reload error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Delete 删除用户
// DELETE /api/v1/users/{id}
// 管理员不能删除自己的账户
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if actor := auth.GetAuthUser(r.Context()); actor != nil && actor.ID == id {
		writeError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		log.Printf("[user.delete] DeleteUser error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// roleExists 角色是否存在于角色表
func (h *Handler) roleExists(r *http.Request, name string) bool {
	role, err := h.store.GetRoleByName(r.Context(), name)
	if err != nil {
		log.Printf("[user] GetRoleByName error: %v", err)
		return false
	}
	return role != nil
}
