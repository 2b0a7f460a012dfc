package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		status  string
		message string
	}{
		{"not found", apperrors.NotFound("Book not found"), 404, StatusFail, "Book not found"},
		{"operational 4xx", apperrors.New(http.StatusConflict, "busy"), 409, StatusFail, "busy"},
		{"operational 5xx", apperrors.New(http.StatusServiceUnavailable, "maintenance"), 503, StatusError, "maintenance"},
		{"validation passes message", apperrors.Validation("price must be >= 0"), 400, StatusFail, "price must be >= 0"},
		{"duplicate", fmt.Errorf("insert: %w", apperrors.ErrDuplicateKey), 400, StatusFail, "Duplicate field value entered"},
		{"invalid token", apperrors.ErrInvalidToken, 401, StatusFail, "Invalid token"},
		{"expired token", apperrors.ErrTokenExpired, 401, StatusFail, "Token expired"},
		{"unauthorized", apperrors.ErrUnauthorized, 401, StatusFail, "Authentication required"},
		{"wrapped internal hides detail", apperrors.Wrap(errors.New("dial tcp: refused"), "find book"), 500, StatusError, "Something went wrong"},
		{"plain error", errors.New("boom"), 500, StatusError, "Something went wrong"},
		{"nil", nil, 500, StatusError, "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := Normalize(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.status, body.Status)
			assert.Equal(t, tt.message, body.Message)
		})
	}
}

func TestErrorWritesEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/books/1", nil)

	Error(c, apperrors.Wrap(errors.New("secret dsn"), "query"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret dsn")

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, ErrorResponse{Status: StatusError, Message: "Something went wrong"}, body)
	assert.True(t, c.IsAborted())
}

func TestSuccessEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","data":null}`, w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	Created(c, gin.H{"book": gin.H{"id": "1"}})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"status":"success","data":{"book":{"id":"1"}}}`, w.Body.String())
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		pages int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 7, 4},
	}
	for _, tt := range tests {
		p := NewPagination(tt.total, 3, tt.limit)
		assert.Equal(t, tt.pages, p.Pages, "total=%d limit=%d", tt.total, tt.limit)
		assert.Equal(t, 3, p.Page)
		assert.Equal(t, tt.total, p.Total)
	}
}
