package sysconfig

import (
	"bytes"
	"context"
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

func newTestHandler(t *testing.T) (*repository.Store, *http.ServeMux) {
	t.Helper()
	db, err := sqlitedriver.Open(":memory:")
	require.NoError(t, err)
	dialect := sqlitedriver.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))
	store := repository.NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.EnsureSeedData(context.Background()))

	mux := http.NewServeMux()
	NewHandler(store).RegisterRoutes(mux)
	return store, mux
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

func TestSystemInfo(t *testing.T) {
	_, mux := newTestHandler(t)

	// 无需认证上下文
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/system/info", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var info map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "Admin System", info[model.ConfigKeySystemName])
	assert.Equal(t, "1.0.0", info[model.ConfigKeySystemVersion])
}

func TestSetAndGetConfig(t *testing.T) {
	_, mux := newTestHandler(t)

	rec := doRequest(mux, http.MethodPut, "/api/v1/system-configs/system_name",
		map[string]interface{}{"config_value": "My Panel"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(mux, http.MethodGet, "/api/v1/system-configs/system_name", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cfg model.SystemConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, "My Panel", cfg.ValueOr(""))
	assert.Equal(t, model.ConfigTypeString, cfg.Type)

	// 后写覆盖
	rec = doRequest(mux, http.MethodPut, "/api/v1/system-configs/system_name",
		map[string]interface{}{"config_value": "Final Name"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(mux, http.MethodGet, "/api/v1/system-configs/system_name", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, "Final Name", cfg.ValueOr(""))
}

func TestSetConfigInvalidType(t *testing.T) {
	_, mux := newTestHandler(t)

	rec := doRequest(mux, http.MethodPut, "/api/v1/system-configs/feature_flag",
		map[string]interface{}{"config_value": "x", "config_type": "yaml"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchSet(t *testing.T) {
	_, mux := newTestHandler(t)

	rec := doRequest(mux, http.MethodPut, "/api/v1/system-configs", []map[string]interface{}{
		{"config_key": "max_upload_mb", "config_value": "50", "config_type": "number"},
		{"config_key": "maintenance", "config_value": "false", "config_type": "boolean"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var results []*model.SystemConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &results))
	require.Len(t, results, 2)
	assert.Equal(t, model.ConfigTypeNumber, results[0].Type)
}

func TestDeleteConfig(t *testing.T) {
	_, mux := newTestHandler(t)

	// 受保护的键拒绝删除
	rec := doRequest(mux, http.MethodDelete, "/api/v1/system-configs/system_name", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// 普通键可删除
	rec = doRequest(mux, http.MethodPut, "/api/v1/system-configs/temp_key",
		map[string]interface{}{"config_value": "x"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(mux, http.MethodDelete, "/api/v1/system-configs/temp_key", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(mux, http.MethodDelete, "/api/v1/system-configs/temp_key", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReset(t *testing.T) {
	_, mux := newTestHandler(t)

	rec := doRequest(mux, http.MethodPut, "/api/v1/system-configs/system_name",
		map[string]interface{}{"config_value": "Changed"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(mux, http.MethodPost, "/api/v1/system-configs/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(mux, http.MethodGet, "/api/v1/system-configs/system_name", nil)
	var cfg model.SystemConfig
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cfg))
	assert.Equal(t, "Admin System", cfg.ValueOr(""))
}
