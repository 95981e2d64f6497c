// Package s3cfg 对象存储配置 - HTTP 处理
//
// S3 连接配置由管理员在线维护并存入数据库，供文件管理功能使用。
package s3cfg

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"admin-panel/internal/apiserver/auth"
	"admin-panel/internal/shared/model"
	"admin-panel/internal/shared/objstore"
	"admin-panel/internal/shared/storage"
)

// Handler 对象存储配置 HTTP 处理器
type Handler struct {
	store storage.S3ConfigStore
}

// NewHandler 创建对象存储配置处理器
func NewHandler(store storage.S3ConfigStore) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册对象存储配置相关路由，全部仅限管理员
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/s3-config", auth.AdminOnly(h.Get))
	mux.HandleFunc("PUT /api/v1/s3-config", auth.AdminOnly(h.Save))
	mux.HandleFunc("POST /api/v1/s3-config/test", auth.AdminOnly(h.Test))
}

// Get 查询当前配置，未配置时返回空对象
// GET /api/v1/s3-config
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.store.GetS3Config(r.Context())
	if err != nil {
		log.Printf("[s3cfg.get] GetS3Config error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if cfg == nil {
		cfg = &model.S3Config{}
	}
	writeJSON(w, http.StatusOK, cfg)
}

// Save 保存配置
// PUT /api/v1/s3-config
// 启用状态下必填字段缺失时拒绝保存
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var cfg model.S3Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if cfg.Enabled && !cfg.Complete() {
		writeError(w, http.StatusBadRequest, "access_key_id, secret_access_key, region_name and bucket_name are required when enabled")
		return
	}

	if err := h.store.SaveS3Config(r.Context(), &cfg); err != nil {
		log.Printf("[s3cfg.save] SaveS3Config error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, &cfg)
}

// Test 用请求体中的配置测试连接，不落库
// POST /api/v1/s3-config/test
func (h *Handler) Test(w http.ResponseWriter, r *http.Request) {
	var cfg model.S3Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !cfg.Complete() {
		writeError(w, http.StatusBadRequest, "incomplete s3 configuration")
		return
	}

	client, err := objstore.NewClient(&cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid s3 configuration: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := client.TestConnection(ctx); err != nil {
		writeError(w, http.StatusBadGateway, "connection failed: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "connection successful"})
}
