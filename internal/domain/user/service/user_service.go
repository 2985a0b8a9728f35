package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"pawlina-api/internal/domain/user/model"
	"pawlina-api/internal/domain/user/repository"
	"pawlina-api/pkg/logger"
	"pawlina-api/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 注册/登录错误
var (
	ErrInvalidFields    = errors.New("missing or invalid fields")
	ErrPostcodeRequired = errors.New("postcode required to register")
	ErrOutOfServiceArea = errors.New("outside the delivery service area")
	ErrEmailExists      = errors.New("email already exists")
	ErrInvalidLogin     = errors.New("invalid credentials")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// RadiusChecker 配送范围校验能力（geo.Service 实现）
type RadiusChecker interface {
	WithinServiceRadius(ctx context.Context, postcode string) bool
}

// UserService 用户服务接口
type UserService interface {
	Register(ctx context.Context, name, email, password, postcode string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	GetUser(ctx context.Context, id uint) (*model.User, error)
	UpdateAddress(ctx context.Context, id uint, fields map[string]string) (*model.User, error)
	EnsureAdmin(ctx context.Context, email, password string) error
}

// userService 实现
type userService struct {
	repo   repository.UserRepository
	radius RadiusChecker
}

// NewUserService 创建用户服务
func NewUserService(repo repository.UserRepository, radius RadiusChecker) UserService {
	return &userService{repo: repo, radius: radius}
}

// Register 注册：邮箱、密码、邮编必填，且邮编必须在配送范围内
func (s *userService) Register(ctx context.Context, name, email, password, postcode string) (*model.User, string, error) {
	name = safeText(name, 120)
	email = strings.TrimSpace(email)

	if !emailPattern.MatchString(email) || len(email) > 120 || len(password) < 6 {
		return nil, "", ErrInvalidFields
	}
	if strings.TrimSpace(postcode) == "" {
		return nil, "", ErrPostcodeRequired
	}

	// 配送范围门禁：解析失败一律拒绝
	if !s.radius.WithinServiceRadius(ctx, postcode) {
		return nil, "", ErrOutOfServiceArea
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleUser,
		Postcode:     safeText(postcode, 20),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", ErrEmailExists
		}
		return nil, "", err
	}

	token, _, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login 登录
func (s *userService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidLogin
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidLogin
	}

	token, _, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// GetUser 获取单个用户
func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// 地址可更新字段白名单
var addressFields = map[string]bool{
	"name":          true,
	"address_line1": true,
	"address_line2": true,
	"city":          true,
	"postcode":      true,
	"country":       true,
}

// UpdateAddress 更新地址字段（白名单内、去多余空白、截断）
func (s *userService) UpdateAddress(ctx context.Context, id uint, fields map[string]string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := false
	for key, raw := range fields {
		if !addressFields[key] {
			continue
		}
		value := safeText(strings.Join(strings.Fields(raw), " "), 200)
		if value == "" {
			continue
		}
		updated = true
		switch key {
		case "name":
			user.Name = value
		case "address_line1":
			user.AddressLine1 = value
		case "address_line2":
			user.AddressLine2 = value
		case "city":
			user.City = value
		case "postcode":
			user.Postcode = value
		case "country":
			user.Country = value
		}
	}
	if !updated {
		return nil, ErrInvalidFields
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// EnsureAdmin 启动时自动创建/提升管理员账号
func (s *userService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		admin := &model.User{
			Name:         "Admin",
			Email:        email,
			PasswordHash: string(hash),
			Role:         model.RoleAdmin,
		}
		if err := s.repo.Create(ctx, admin); err != nil {
			return err
		}
		logger.Log.Info("admin account created", zap.String("email", email))
		return nil
	}

	if existing.Role != model.RoleAdmin {
		return s.repo.UpdateRole(ctx, existing.ID, model.RoleAdmin)
	}
	return nil
}

// safeText 去首尾空白并按字符截断，不能劈开多字节字符
func safeText(val string, max int) string {
	val = strings.TrimSpace(val)
	if r := []rune(val); len(r) > max {
		val = string(r[:max])
	}
	return val
}
