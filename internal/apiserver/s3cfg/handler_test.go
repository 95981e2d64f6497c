package s3cfg

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-panel/internal/apiserver/auth"
	"admin-panel/internal/shared/model"
	sqlitedriver "admin-panel/internal/shared/storage/driver/sqlite"
	"admin-panel/internal/shared/storage/repository"
)

func newTestHandler(t *testing.T) *http.ServeMux {
	t.Helper()
	db, err := sqlitedriver.Open(":memory:")
	require.NoError(t, err)
	dialect := sqlitedriver.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))
	store := repository.NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })

	mux := http.NewServeMux()
	NewHandler(store).RegisterRoutes(mux)
	return mux
}

func doRequest(mux *http.ServeMux, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	actor := &auth.AuthUser{ID: 1, Username: "root", Role: model.UserRoleAdmin}
	req = req.WithContext(auth.WithAuthUser(req.Context(), actor))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestGetConfigEmpty(t *testing.T) {
	mux := newTestHandler(t)

	rec := doRequest(mux, http.MethodGet, "/api/v1/s3-config", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cfg model.S3Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.False(t, cfg.Enabled)
	assert.Empty(t, cfg.BucketName)
}

func TestSaveAndGetConfig(t *testing.T) {
	mux := newTestHandler(t)

	rec := doRequest(mux, http.MethodPut, "/api/v1/s3-config", map[string]interface{}{
		"enabled":           true,
		"endpoint_url":      "https://minio.internal:9000",
		"access_key_id":     "AKIA123",
		"secret_access_key": "secret",
		"region_name":       "us-east-1",
		"bucket_name":       "assets",
		"folder":            "uploads",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(mux, http.MethodGet, "/api/v1/s3-config", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cfg model.S3Config
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "assets", cfg.BucketName)
	assert.Equal(t, "uploads", cfg.Folder)

	// 再次保存覆盖同一条配置
	cfg.BucketName = "assets-v2"
	rec = doRequest(mux, http.MethodPut, "/api/v1/s3-config", cfg)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(mux, http.MethodGet, "/api/v1/s3-config", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, "assets-v2", cfg.BucketName)
}

func TestSaveEnabledIncompleteRejected(t *testing.T) {
	mux := newTestHandler(t)

	rec := doRequest(mux, http.MethodPut, "/api/v1/s3-config", map[string]interface{}{
		"enabled":       true,
		"access_key_id": "AKIA123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// 未启用时允许保存半成品配置
	rec = doRequest(mux, http.MethodPut, "/api/v1/s3-config", map[string]interface{}{
		"enabled":       false,
		"access_key_id": "AKIA123",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestConnectionTestIncompleteRejected(t *testing.T) {
	mux := newTestHandler(t)

	rec := doRequest(mux, http.MethodPost, "/api/v1/s3-config/test", map[string]interface{}{
		"access_key_id": "AKIA123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
