// Package sysconfig 系统配置领域 - HTTP 处理
//
// 键值对形式的站点配置管理，以及无需认证的系统信息聚合接口。
package sysconfig

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"admin-panel/internal/apiserver/auth"
	"admin-panel/internal/shared/model"
	"admin-panel/internal/shared/storage"
	"admin-panel/internal/shared/storage/repository"
)

// Handler 系统配置 HTTP 处理器
type Handler struct {
	store storage.SystemConfigStore
}

// NewHandler 创建系统配置处理器
func NewHandler(store storage.SystemConfigStore) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册系统配置相关路由
// /api/v1/system/info 为免认证接口，其余仅限管理员
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/system/info", h.SystemInfo)
	mux.HandleFunc("GET /api/v1/system-configs", auth.AdminOnly(h.List))
	mux.HandleFunc("PUT /api/v1/system-configs", auth.AdminOnly(h.BatchSet))
	mux.HandleFunc("POST /api/v1/system-configs/reset", auth.AdminOnly(h.Reset))
	mux.HandleFunc("GET /api/v1/system-configs/{key}", auth.AdminOnly(h.Get))
	mux.HandleFunc("PUT /api/v1/system-configs/{key}", auth.AdminOnly(h.Set))
	mux.HandleFunc("DELETE /api/v1/system-configs/{key}", auth.AdminOnly(h.Delete))
}

type configItem struct {
	Key         string  `json:"config_key"`
	Value       *string `json:"config_value"`
	Type        string  `json:"config_type"`
	Description string  `json:"description"`
}

// SystemInfo 站点基础信息聚合，供登录页等未认证场景使用
// GET /api/v1/system/info
func (h *Handler) SystemInfo(w http.ResponseWriter, r *http.Request) {
	configs, err := h.store.ListSystemConfigs(r.Context())
	if err != nil {
		log.Printf("[sysconfig.info] ListSystemConfigs error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	byKey := make(map[string]*model.SystemConfig, len(configs))
	for _, c := range configs {
		byKey[c.Key] = c
	}

	info := make(map[string]string, len(repository.DefaultSystemConfigs))
	for _, def := range repository.DefaultSystemConfigs {
		info[def.Key] = byKey[def.Key].ValueOr(def.Value)
	}
	writeJSON(w, http.StatusOK, info)
}

// List 全部配置项
// GET /api/v1/system-configs
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	configs, err := h.store.ListSystemConfigs(r.Context())
	if err != nil {
		log.Printf("[sysconfig.list] ListSystemConfigs error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, configs)
}

// Get 查询单个配置项
// GET /api/v1/system-configs/{key}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.store.GetSystemConfig(r.Context(), r.PathValue("key"))
	if err != nil {
		log.Printf("[sysconfig.get] GetSystemConfig error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if cfg == nil {
		writeError(w, http.StatusNotFound, "config not found")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// Set 写入单个配置项（UPSERT，后写覆盖）
// PUT /api/v1/system-configs/{key}
func (h *Handler) Set(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	var item configItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	item.Key = key

	cfg, ok := h.setOne(w, r, item)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// BatchSet 批量写入配置项
// PUT /api/v1/system-configs
func (h *Handler) BatchSet(w http.ResponseWriter, r *http.Request) {
	var items []configItem
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	results := make([]*model.SystemConfig, 0, len(items))
	for _, item := range items {
		cfg, ok := h.setOne(w, r, item)
		if !ok {
			return
		}
		results = append(results, cfg)
	}
	writeJSON(w, http.StatusOK, results)
}

// Delete 删除配置项，受保护的系统关键配置拒绝删除
// DELETE /api/v1/system-configs/{key}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if model.ProtectedConfigKeys[key] {
		writeError(w, http.StatusForbidden, "protected config cannot be deleted")
		return
	}

	if err := h.store.DeleteSystemConfig(r.Context(), key); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "config not found")
			return
		}
		log.Printf("[sysconfig.delete] DeleteSystemConfig error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "config deleted"})
}

// Reset 将内置配置项恢复为默认值
// POST /api/v1/system-configs/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	for _, def := range repository.DefaultSystemConfigs {
		value := def.Value
		if _, err := h.store.SetSystemConfig(r.Context(), def.Key, &value,
			model.ConfigTypeString, def.Description); err != nil {
			log.Printf("[sysconfig.reset] SetSystemConfig %s error: %v", def.Key, err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "configs reset to defaults"})
}

// setOne 校验并写入一项配置，失败时已写响应并返回 false
func (h *Handler) setOne(w http.ResponseWriter, r *http.Request, item configItem) (*model.SystemConfig, bool) {
	if item.Key == "" {
		writeError(w, http.StatusBadRequest, "config_key is required")
		return nil, false
	}
	typ := model.ConfigType(item.Type)
	if item.Type == "" {
		typ = model.ConfigTypeString
	}
	if !typ.IsValid() {
		writeError(w, http.StatusBadRequest, "invalid config_type: "+item.Type)
		return nil, false
	}

	cfg, err := h.store.SetSystemConfig(r.Context(), item.Key, item.Value, typ, item.Description)
	if err != nil {
		log.Printf("[sysconfig.set] SetSystemConfig %s error: %v", item.Key, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	return cfg, true
}
