package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

const testSecret = "test-secret-for-unit-tests"

func newTestManager() *Manager {
	return NewManager(testSecret, "bookshelf", time.Hour, 24*time.Hour)
}

func TestGenerateAndParse(t *testing.T) {
	m := newTestManager()

	pair, err := m.GenerateToken("u-1", "reader@example.com", "reader")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), pair.ExpiresIn)
	assert.Equal(t, "Bearer", pair.TokenType)

	claims, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "reader@example.com", claims.Email)
	assert.Equal(t, "bookshelf", claims.Issuer)
	assert.InDelta(t, time.Hour.Seconds(), claims.RemainingTTL(time.Now()).Seconds(), 5)
}

func TestParseExpired(t *testing.T) {
	m := NewManager(testSecret, "bookshelf", -time.Minute, time.Hour)

	pair, err := m.GenerateToken("u-1", "a@b.c", "a")
	require.NoError(t, err)

	_, err = m.ParseToken(pair.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestParseInvalid(t *testing.T) {
	m := newTestManager()
	pair, err := m.GenerateToken("u-1", "a@b.c", "a")
	require.NoError(t, err)

	other := NewManager("another-secret", "bookshelf", time.Hour, time.Hour)
	foreign := NewManager(testSecret, "someone-else", time.Hour, time.Hour)
	foreignPair, err := foreign.GenerateToken("u-1", "a@b.c", "a")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u-1", TokenType: TokenTypeAccess}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		m     *Manager
		token string
	}{
		{"garbage", m, "not-a-jwt"},
		{"tampered", m, pair.AccessToken + "x"},
		{"wrong secret", other, pair.AccessToken},
		{"wrong issuer", m, foreignPair.AccessToken},
		{"alg none", m, none},
		{"refresh as access", m, pair.RefreshToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.m.ParseToken(tt.token)
			assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
		})
	}
}

func TestRefresh(t *testing.T) {
	m := newTestManager()
	pair, err := m.GenerateToken("u-7", "a@b.c", "a")
	require.NoError(t, err)

	next, err := m.Refresh(pair.RefreshToken, "a@b.c", "a")
	require.NoError(t, err)

	claims, err := m.ParseToken(next.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-7", claims.UserID)

	_, err = m.Refresh(pair.AccessToken, "a@b.c", "a")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
