package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/revivewell/internal/auth"
	"github.com/revivewell/internal/db"
	"gorm.io/gorm"
)

// UserService 负责用户凭据的持久化与查询
type UserService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewUserInput 描述注册所需字段
type NewUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// NewUserService 构造 UserService
func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb, now: time.Now}
}

// NormalizeEmail 统一邮箱格式，注册与登录共用
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser 注册新用户，邮箱已存在时返回 ErrConflict。
func (s *UserService) CreateUser(ctx context.Context, input NewUserInput) (*db.User, error) {
	name := strings.TrimSpace(input.Name)
	email := NormalizeEmail(input.Email)
	role := strings.TrimSpace(input.Role)

	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	case email == "":
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	case input.Password == "":
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	case !db.ValidRole(role):
		return nil, fmt.Errorf("%w: unsupported user type %q", ErrInvalidInput, role)
	}

	if _, err := s.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := db.User{
		Name:      name,
		Email:     email,
		Password:  hashed,
		UserType:  role,
		CreatedAt: s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &user, nil
}

// FindByEmail 根据邮箱查找用户
func (s *UserService) FindByEmail(ctx context.Context, email string) (*db.User, error) {
	var user db.User
	if err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID 根据主键查找用户
func (s *UserService) FindByID(ctx context.Context, id string) (*db.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}

	var user db.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// UpdateName 仅修改用户名，不影响邮箱与角色
func (s *UserService) UpdateName(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	result := s.db.WithContext(ctx).Model(&db.User{}).Where("id = ?", id).Update("name", name)
	if result.Error != nil {
		return fmt.Errorf("update user name: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Authenticate 校验邮箱与密码
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*db.User, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// CountByRole 统计指定角色的用户数量
func (s *UserService) CountByRole(ctx context.Context, role string) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&db.User{}).Where("user_type = ?", role).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}
