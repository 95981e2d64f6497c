// Package server 路由配置与核心基础设施
//
// 文件组织：
//   - common.go: Handler 定义、健康检查、通用工具函数
//   - handler.go: 路由注册与中间件链
//   - dashboard.go: 仪表盘统计接口
//   - metrics.go: Prometheus 指标
package server

import (
	"encoding/json"
	"log"
	"net/http"

	"admin-panel/internal/apiserver/auth"
	"admin-panel/internal/shared/storage"
)

// Handler API 处理器
//
// 所有 HTTP API 的入口，持有存储层和认证配置，
// 领域路由分发到各自独立包。
type Handler struct {
	store   storage.Store
	authCfg auth.Config
	metrics *Metrics
	logger  *log.Logger
}

// NewHandler 创建 Handler 实例
func NewHandler(store storage.Store, authCfg auth.Config) *Handler {
	return &Handler{
		store:   store,
		authCfg: authCfg,
		metrics: DefaultMetrics(),
		logger:  log.Default(),
	}
}

// Health 服务健康检查
// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON 写入 JSON 响应
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError 写入错误响应
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
