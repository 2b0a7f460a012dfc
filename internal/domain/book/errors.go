package book

import (
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	// 仓储在按ID查找/更新/删除不到记录时返回,由处理器原样交给错误归一化
	ErrBookNotFound = apperrors.NotFound("Book not found")
)
