package gormstore

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// likeEscape LIKE转义字符，mysql/postgres/sqlite都支持ESCAPE '!'
const likeEscape = "!"

var likeEscaper = strings.NewReplacer(
	likeEscape, likeEscape+likeEscape,
	"%", likeEscape+"%",
	"_", likeEscape+"_",
)

// containsPattern 构造大小写不敏感的子串匹配模式
// 用户输入按字面量处理（%和_不是通配符）
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// isDuplicateError 判断是否为唯一索引冲突
// TranslateError开启后驱动会返回gorm.ErrDuplicatedKey，错误信息匹配作为兜底：
// - MySQL 1062: Duplicate entry 'xxx' for key 'yyy'
// - Postgres 23505: duplicate key value violates unique constraint
// - SQLite: UNIQUE constraint failed
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// translateError 把存储错误转换为领域可识别的错误
func translateError(err error, op string) error {
	if isDuplicateError(err) {
		return apperrors.ErrDuplicateKey
	}
	return apperrors.Wrap(err, op)
}
