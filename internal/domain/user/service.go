package user

import (
	"context"
	"errors"
	"regexp"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// Service 用户领域服务
type Service interface {
	// Register 用户注册
	// 业务规则：邮箱格式合法且未注册；密码8-72位并包含字母和数字；昵称2-50个字符
	Register(ctx context.Context, email, password, nickname string) (*User, error)

	// Authenticate 校验邮箱和密码
	// 用户不存在和密码错误返回同一个错误，避免探测已注册邮箱
	Authenticate(ctx context.Context, email, password string) (*User, error)

	// GetUser 根据ID获取用户
	GetUser(ctx context.Context, id string) (*User, error)
}

type service struct {
	repo     Repository
	hashCost int
}

// NewService 创建用户领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo, hashCost: bcrypt.DefaultCost}
}

func (s *service) Register(ctx context.Context, email, password, nickname string) (*User, error) {
	u := NewUser(email, "", nickname)

	if !emailPattern.MatchString(u.Email) {
		return nil, ErrInvalidEmail
	}
	if err := validatePasswordStrength(password); err != nil {
		return nil, err
	}
	if n := utf8.RuneCountInString(u.Nickname); n < 2 || n > 50 {
		return nil, ErrInvalidNickname
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, apperrors.Wrap(err, "hash password")
	}
	u.PasswordHash = string(hashed)

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperrors.ErrInvalidPassword
		}
		return nil, apperrors.Wrap(err, "compare password")
	}
	return u, nil
}

func (s *service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)
	hasLetter    = regexp.MustCompile(`[a-zA-Z]`)
	hasDigit     = regexp.MustCompile(`[0-9]`)
)

// validatePasswordStrength bcrypt只使用前72字节
func validatePasswordStrength(password string) error {
	if len(password) < 8 || len(password) > 72 {
		return ErrWeakPassword
	}
	if !hasLetter.MatchString(password) || !hasDigit.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}
