package user

import (
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = apperrors.NotFound("User not found")

	// ErrInvalidEmail 邮箱格式不正确
	ErrInvalidEmail = apperrors.Validation("User validation failed: email: invalid format")

	// ErrWeakPassword 密码强度不足
	ErrWeakPassword = apperrors.Validation("User validation failed: password: must be 8-72 characters and contain letters and digits")

	// ErrInvalidNickname 昵称长度不合法
	ErrInvalidNickname = apperrors.Validation("User validation failed: nickname: must be 2-50 characters")
)
