package s3file

import (
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

func newTestMux(t *testing.T) (*repository.Store, *http.ServeMux) {
	t.Helper()
	db, err := sqlitedriver.Open(":memory:")
	require.NoError(t, err)
	dialect := sqlitedriver.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))
	store := repository.NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })

	mux := http.NewServeMux()
	NewHandler(store).RegisterRoutes(mux)
	return store, mux
}

func doRequest(mux *http.ServeMux, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	actor := &auth.AuthUser{ID: 1, Username: "root", Role: model.UserRoleAdmin}
	req = req.WithContext(auth.WithAuthUser(req.Context(), actor))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestRequiresEnabledConfig(t *testing.T) {
	_, mux := newTestMux(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/s3/files"},
		{http.MethodPost, "/api/v1/s3/files"},
		{http.MethodDelete, "/api/v1/s3/files?key=x"},
	} {
		rec := doRequest(mux, route.method, route.path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%s %s", route.method, route.path)
		assert.Contains(t, rec.Body.String(), "not enabled")
	}
}

func TestRequiresAdmin(t *testing.T) {
	_, mux := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/s3/files", nil)
	actor := &auth.AuthUser{ID: 2, Username: "bob", Role: model.UserRoleUser}
	req = req.WithContext(auth.WithAuthUser(req.Context(), actor))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestJoinPrefix(t *testing.T) {
	tests := []struct {
		folder, path, want string
	}{
		{"", "", ""},
		{"uploads", "", "uploads/"},
		{"", "images", "images/"},
		{"uploads", "images", "uploads/images/"},
		{"uploads", "/images/2024/", "uploads/images/2024/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, joinPrefix(tt.folder, tt.path),
			"folder=%q path=%q", tt.folder, tt.path)
	}
}
