package auth

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"admin-panel/internal/shared/model"
)

type contextKey string

const ctxKeyAuthUser contextKey = "auth_user"

// AuthUser 注入请求上下文的已认证用户
type AuthUser struct {
	ID       int64
	Username string
	Role     model.UserRole
}

// IsAdmin 是否管理员
func (u *AuthUser) IsAdmin() bool {
	return u.Role == model.UserRoleAdmin
}

// WithAuthUser 将认证用户写入上下文
func WithAuthUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, ctxKeyAuthUser, user)
}

// GetAuthUser 从上下文取认证用户，未认证返回 nil
func GetAuthUser(ctx context.Context) *AuthUser {
	user, _ := ctx.Value(ctxKeyAuthUser).(*AuthUser)
	return user
}

// 免认证路由，按 "METHOD /path" 精确匹配
var publicRoutes = map[string]bool{
	"POST /api/v1/users/login":         true,
	"POST /api/v1/users/refresh-token": true,
	"GET /api/v1/system/info":          true,
	"GET /health":                      true,
	"GET /metrics":                     true,
}

// Middleware 全局认证中间件
// 免认证路由直接放行，其余路由要求 Bearer 令牌并注入 AuthUser。
// 未配置密钥时整体放行（仅开发环境）。
func Middleware(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled() || publicRoutes[r.Method+" "+r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			authz := r.Header.Get("Authorization")
			if authz == "" {
				unauthorized(w, "missing authorization header")
				return
			}
			tokenString, ok := strings.CutPrefix(authz, "Bearer ")
			if !ok {
				unauthorized(w, "invalid authorization header")
				return
			}

			claims, err := VerifyToken(cfg, tokenString)
			if err != nil {
				if err == ErrTokenExpired {
					unauthorized(w, "token expired")
				} else {
					unauthorized(w, "invalid token")
				}
				return
			}

			user := &AuthUser{
				ID:       claims.UserID,
				Username: claims.Username,
				Role:     model.UserRole(claims.Role),
			}
			next.ServeHTTP(w, r.WithContext(WithAuthUser(r.Context(), user)))
		})
	}
}

// AdminOnly 仅管理员可访问
func AdminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := GetAuthUser(r.Context())
		if user == nil {
			unauthorized(w, "authentication required")
			return
		}
		if !user.IsAdmin() {
			forbidden(w, "admin access required")
			return
		}
		next(w, r)
	}
}

// SelfOrAdmin 本人或管理员可访问，目标用户取路径参数 {id}
func SelfOrAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := GetAuthUser(r.Context())
		if user == nil {
			unauthorized(w, "authentication required")
			return
		}
		if user.IsAdmin() {
			next(w, r)
			return
		}
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil || id != user.ID {
			forbidden(w, "access denied")
			return
		}
		next(w, r)
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	writeAuthError(w, http.StatusUnauthorized, msg)
}

func forbidden(w http.ResponseWriter, msg string) {
	writeAuthError(w, http.StatusForbidden, msg)
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":` + strconv.Quote(msg) + `}`))
}
