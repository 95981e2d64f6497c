package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"admin-panel/internal/shared/model"
)

// Config JWT 配置
type Config struct {
	Secret        string        // HS256 签名密钥，为空时禁用认证（仅开发环境）
	TokenTTL      time.Duration // 令牌有效期
	RefreshMaxAge time.Duration // 刷新时令牌签发时间距今的上限
}

// Enabled 是否启用认证
func (c Config) Enabled() bool {
	return c.Secret != ""
}

var (
	// ErrTokenExpired 令牌已过期
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid 令牌无效（签名错误、格式错误等）
	ErrTokenInvalid = errors.New("token invalid")
	// ErrRefreshRejected 令牌签发时间超过刷新上限，要求重新登录
	ErrRefreshRejected = errors.New("token too old to refresh")
)

// Claims JWT 载荷
type Claims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken 为用户签发 HS256 令牌
func IssueToken(cfg Config, user *model.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// VerifyToken 验证令牌签名与有效期，返回载荷
func VerifyToken(cfg Config, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc(cfg),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// RefreshClaims 为刷新流程解析令牌：只验证签名，忽略过期，
// 但签发时间距今超过 RefreshMaxAge 的令牌拒绝刷新。
// 过期令牌在上限内仍可刷新，上限外必须重新登录。
func RefreshClaims(cfg Config, tokenString string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	token, err := parser.ParseWithClaims(tokenString, claims, keyFunc(cfg))
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.IssuedAt == nil {
		return nil, ErrTokenInvalid
	}
	if time.Since(claims.IssuedAt.Time) > cfg.RefreshMaxAge {
		return nil, ErrRefreshRejected
	}
	return claims, nil
}

func keyFunc(cfg Config) jwt.Keyfunc {
	return func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}
}
