package server

import (
	"net/http"

	"admin-panel/internal/shared/model"
)

// dashboardStats GET /api/v1/dashboard/stats 响应
type dashboardStats struct {
	UserCount   int64         `json:"user_count"`
	MenuCount   int64         `json:"menu_count"`
	RoleCount   int64         `json:"role_count"`
	RecentUsers []*model.User `json:"recent_users"`
}

// DashboardStats 仪表盘统计：各实体数量与最近注册用户
// GET /api/v1/dashboard/stats
func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.store.CountUsers(ctx)
	if err != nil {
		h.logger.Printf("[server.dashboard] CountUsers error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	menus, err := h.store.CountMenus(ctx)
	if err != nil {
		h.logger.Printf("[server.dashboard] CountMenus error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	roles, err := h.store.CountRoles(ctx)
	if err != nil {
		h.logger.Printf("[server.dashboard] CountRoles error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	recent, err := h.store.RecentUsers(ctx, 5)
	if err != nil {
		h.logger.Printf("[server.dashboard] RecentUsers error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.metrics.UsersTotal.Set(float64(users))
	h.metrics.MenusTotal.Set(float64(menus))
	h.metrics.RolesTotal.Set(float64(roles))

	writeJSON(w, http.StatusOK, dashboardStats{
		UserCount:   users,
		MenuCount:   menus,
		RoleCount:   roles,
		RecentUsers: recent,
	})
}
