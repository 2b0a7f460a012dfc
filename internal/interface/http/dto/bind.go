package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// BindJSON 绑定JSON请求体
// 失败统一转换为ValidationError(400),不把解析器的原始错误返回给客户端
// 空请求体按{}处理
func BindJSON(c *gin.Context, obj interface{}) error {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(obj)
	}
	if err == nil {
		return nil
	}
	return bindError(err)
}

func bindError(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		verrs     validator.ValidationErrors
	)
	switch {
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return apperrors.Validation("Invalid JSON body")
	case errors.As(err, &typeErr):
		return apperrors.Validation(fmt.Sprintf("Invalid value for field %s", typeErr.Field))
	case errors.As(err, &verrs):
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldName(fe.Field())+": failed on "+fe.Tag())
		}
		return apperrors.Validation("Invalid input: " + strings.Join(msgs, ", "))
	default:
		return apperrors.ErrInvalidParams
	}
}

// fieldName Email → email
func fieldName(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
