package book

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// validate 校验器是并发安全的,全局复用(会缓存struct元数据)
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 错误消息使用JSON字段名
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateBook(b *Book, missing []string) error {
	return toValidationError(validate.Struct(b), missing)
}

func validatePartial(b *Book, fields, missing []string) error {
	if len(fields) == 0 {
		return toValidationError(nil, missing)
	}
	return toValidationError(validate.StructPartial(b, fields...), missing)
}

// toValidationError 汇总为一条ValidationError
// 格式: Book validation failed: price: must be greater than or equal to 0, title: is required
func toValidationError(err error, missing []string) error {
	msgs := make([]string, 0, len(missing)+1)
	for _, field := range missing {
		msgs = append(msgs, field+": is required")
	}

	if err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return apperrors.Wrap(err, "validate book")
		}
		for _, fe := range verrs {
			msgs = append(msgs, fe.Field()+": "+describe(fe))
		}
	}

	if len(msgs) == 0 {
		return nil
	}
	return apperrors.Validation("Book validation failed: " + strings.Join(msgs, ", "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	default:
		return fmt.Sprintf("failed on %s", fe.Tag())
	}
}

// 出版日期支持的格式
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// ParseDate 解析出版日期,支持2006-01-02与RFC3339
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperrors.Validation(fmt.Sprintf("Book validation failed: publishedDate: invalid date %q", s))
}
