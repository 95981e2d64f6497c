package server

import (
	"net/http"

	"admin-panel/internal/apiserver/auth"
	"admin-panel/internal/apiserver/menu"
	"admin-panel/internal/apiserver/role"
	"admin-panel/internal/apiserver/s3cfg"
	"admin-panel/internal/apiserver/s3file"
	"admin-panel/internal/apiserver/sysconfig"
	"admin-panel/internal/apiserver/user"
)

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 认证入口（免认证）:
//   - POST /api/v1/users/login          - 登录
//   - POST /api/v1/users/refresh-token  - 刷新令牌
//   - GET  /api/v1/system/info          - 站点信息
//
// 用户管理 (User):
//   - GET    /api/v1/users        - 列出用户（管理员）
//   - POST   /api/v1/users        - 创建用户（管理员）
//   - GET    /api/v1/users/{id}   - 用户详情（本人或管理员）
//   - PUT    /api/v1/users/{id}   - 更新用户（本人或管理员）
//   - DELETE /api/v1/users/{id}   - 删除用户（管理员）
//
// 菜单管理 (Menu):
//   - GET    /api/v1/menus              - 平铺列表
//   - POST   /api/v1/menus              - 创建（管理员）
//   - GET    /api/v1/menus/tree         - 完整菜单树
//   - GET    /api/v1/menus/role/{role}  - 按角色过滤的菜单树
//   - GET    /api/v1/menus/{id}         - 菜单详情
//   - PUT    /api/v1/menus/{id}         - 更新（管理员）
//   - DELETE /api/v1/menus/{id}         - 删除（管理员）
//
// 角色管理 (Role，全部管理员):
//   - GET/POST /api/v1/roles、GET/PUT/DELETE /api/v1/roles/{id}
//   - GET/PUT  /api/v1/roles/{id}/menus - 菜单授权
//
// 系统配置 (SystemConfig，管理员):
//   - GET/PUT /api/v1/system-configs、/api/v1/system-configs/{key}
//   - POST    /api/v1/system-configs/reset
//
// 对象存储 (S3，管理员):
//   - GET/PUT /api/v1/s3-config、POST /api/v1/s3-config/test
//   - GET/POST/DELETE /api/v1/s3/files
//
// 仪表盘 (管理员):
//   - GET /api/v1/dashboard/stats - 统计概览
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("GET /health", h.Health)

	// Prometheus 指标端点
	mux.Handle("GET /metrics", MetricsHandler())

	// 用户与认证入口
	authSvc := auth.NewService(h.store, h.logger)
	user.NewHandler(h.store, authSvc, h.authCfg).RegisterRoutes(mux)

	// 菜单
	menu.NewHandler(h.store).RegisterRoutes(mux)

	// 角色
	role.NewHandler(h.store).RegisterRoutes(mux)

	// 系统配置
	sysconfig.NewHandler(h.store).RegisterRoutes(mux)

	// 对象存储配置与文件管理
	s3cfg.NewHandler(h.store).RegisterRoutes(mux)
	s3file.NewHandler(h.store).RegisterRoutes(mux)

	// 仪表盘
	mux.HandleFunc("GET /api/v1/dashboard/stats", auth.AdminOnly(h.DashboardStats))

	// 中间件链：指标 -> 认证 -> CORS
	apiHandler := h.metrics.MetricsMiddleware(mux)
	authedHandler := auth.Middleware(h.authCfg)(apiHandler)
	return corsMiddleware(authedHandler)
}

// corsMiddleware 添加 CORS 头支持跨域请求
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
