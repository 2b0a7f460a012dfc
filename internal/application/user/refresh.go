package user

import (
	"context"

	"github.com/xiebiao/bookshelf/internal/domain/user"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/jwt"
)

// RefreshTokenUseCase 用Refresh Token换取新的Token对
// 用户已被删除或会话已登出时拒绝刷新
type RefreshTokenUseCase struct {
	userService user.Service
	jwtManager  *jwt.Manager
	sessions    SessionStore
}

// NewRefreshTokenUseCase 创建刷新用例
func NewRefreshTokenUseCase(userService user.Service, jwtManager *jwt.Manager, sessions SessionStore) *RefreshTokenUseCase {
	return &RefreshTokenUseCase{userService: userService, jwtManager: jwtManager, sessions: sessions}
}

// Execute 执行刷新
func (uc *RefreshTokenUseCase) Execute(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	claims, err := uc.jwtManager.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	// 登出会删除会话，之后签发的Refresh Token全部失效
	active, err := uc.sessions.HasSession(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, apperrors.ErrInvalidToken
	}

	u, err := uc.userService.GetUser(ctx, claims.UserID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}

	pair, err := uc.jwtManager.GenerateToken(u.ID, u.Email, u.Nickname)
	if err != nil {
		return nil, err
	}
	resp := toTokenResponse(pair)
	return &resp, nil
}
