package auth

import (
	"context"
	"log"
	"time"

	"admin-panel/internal/shared/model"
	"admin-panel/internal/shared/storage"
)

// Service 凭据验证服务
type Service struct {
	store  storage.UserStore
	logger *log.Logger
}

// NewService 创建凭据验证服务
func NewService(store storage.UserStore, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{store: store, logger: logger}
}

// ValidateUser 验证用户名密码
// 用户不存在与密码错误的返回值完全一致 (nil, nil)，避免用户名枚举。
// 存量方案或过期参数的哈希在验证成功后异步迁移到当前方案。
func (s *Service) ValidateUser(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	ok, err := CheckPassword(password, user.PasswordHash)
	if err != nil {
		// 无法解析的存量哈希按验证失败处理
		s.logger.Printf("[auth] unparseable password hash for user %s: %v", username, err)
		return nil, nil
	}
	if !ok {
		return nil, nil
	}

	if NeedsRehash(user.PasswordHash) {
		go s.rehash(user.ID, username, password)
	}
	return user, nil
}

// rehash 用当前方案重新哈希并落库，失败只记录日志不影响登录
func (s *Service) rehash(id int64, username, password string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hash, err := HashPassword(password)
	if err == nil {
		err = s.store.UpdateUserPassword(ctx, id, hash)
	}
	if err != nil {
		s.logger.Printf("[auth] password rehash failed for user %s: %v", username, err)
		return
	}
	s.logger.Printf("[auth] upgraded password hash for user %s", username)
}

// EnsureAdminUser 确保管理员账户存在（幂等）
// 账户已存在时不做任何修改，包括密码
func EnsureAdminUser(ctx context.Context, store storage.UserStore, username, password string, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}

	existing, err := store.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         model.UserRoleAdmin,
	}
	if err := store.CreateUser(ctx, user); err != nil {
		return err
	}
	logger.Printf("[auth] created admin user %s (id=%d)", username, user.ID)
	return nil
}
