// Package s3file 对象存储文件管理 - HTTP 代理
//
// 浏览器不直接持有 S3 凭据，列表/上传/删除都经由后端代理完成。
// 客户端按当前数据库配置惰性构建，配置变更后下一个请求即生效。
package s3file

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"admin-panel/internal/apiserver/auth"
	"admin-panel/internal/shared/objstore"
	"admin-panel/internal/shared/storage"
)

// maxUploadSize 单文件上传上限
const maxUploadSize = 64 << 20 // 64 MiB

// Handler 文件管理 HTTP 处理器
type Handler struct {
	store storage.S3ConfigStore
}

// NewHandler 创建文件管理处理器
func NewHandler(store storage.S3ConfigStore) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册文件管理相关路由，全部仅限管理员
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/s3/files", auth.AdminOnly(h.List))
	mux.HandleFunc("POST /api/v1/s3/files", auth.AdminOnly(h.Upload))
	mux.HandleFunc("DELETE /api/v1/s3/files", auth.AdminOnly(h.Delete))
}

// List 列出指定路径下的文件和文件夹
// GET /api/v1/s3/files?path=&max=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	client, folder, ok := h.client(w, r)
	if !ok {
		return
	}

	max := 0
	if v := r.URL.Query().Get("max"); v != "" {
		max, _ = strconv.Atoi(v)
	}
	prefix := joinPrefix(folder, r.URL.Query().Get("path"))

	result, err := client.List(r.Context(), prefix, max)
	if err != nil {
		log.Printf("[s3file.list] List error: %v", err)
		writeError(w, http.StatusBadGateway, "failed to list files")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Upload 上传 multipart 文件
// POST /api/v1/s3/files  (form fields: file, path)
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	client, folder, ok := h.client(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form or file too large")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	if strings.Contains(header.Filename, "/") || strings.Contains(header.Filename, "..") {
		writeError(w, http.StatusBadRequest, "invalid filename")
		return
	}

	key := objstore.ObjectKey(joinPrefix(folder, r.FormValue("path")), header.Filename)
	contentType := header.Header.Get("Content-Type")
	if err := client.Upload(r.Context(), key, file, header.Size, contentType); err != nil {
		log.Printf("[s3file.upload] Upload %s error: %v", key, err)
		writeError(w, http.StatusBadGateway, "failed to upload file")
		return
	}

	url, err := client.FileURL(r.Context(), key)
	if err != nil {
		log.Printf("[s3file.upload] FileURL %s error: %v", key, err)
		url = ""
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"key": key,
		"url": url,
	})
}

// Delete 删除对象
// DELETE /api/v1/s3/files?key=
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	client, folder, ok := h.client(w, r)
	if !ok {
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}
	// 只允许删除配置目录内的对象
	if folder != "" && !strings.HasPrefix(key, folder+"/") {
		writeError(w, http.StatusForbidden, "key is outside the configured folder")
		return
	}

	if err := client.Delete(r.Context(), key); err != nil {
		log.Printf("[s3file.delete] Delete %s error: %v", key, err)
		writeError(w, http.StatusBadGateway, "failed to delete file")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "file deleted"})
}

// client 按当前配置构建客户端，未启用或配置残缺时写错误响应
func (h *Handler) client(w http.ResponseWriter, r *http.Request) (*objstore.Client, string, bool) {
	cfg, err := h.store.GetEnabledS3Config(r.Context())
	if err != nil {
		log.Printf("[s3file] GetEnabledS3Config error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return nil, "", false
	}
	if cfg == nil {
		writeError(w, http.StatusBadRequest, "s3 storage is not enabled")
		return nil, "", false
	}

	client, err := objstore.NewClient(cfg)
	if err != nil {
		log.Printf("[s3file] NewClient error: %v", err)
		writeError(w, http.StatusInternalServerError, "invalid s3 configuration")
		return nil, "", false
	}
	return client, strings.Trim(cfg.Folder, "/"), true
}

// joinPrefix 拼接配置目录与请求路径为列举前缀，非空时以 '/' 结尾
func joinPrefix(folder, path string) string {
	parts := []string{}
	if folder != "" {
		parts = append(parts, folder)
	}
	if p := strings.Trim(path, "/"); p != "" {
		parts = append(parts, p)
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "/") + "/"
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
