package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookshelf/internal/application/book"
	"github.com/xiebiao/bookshelf/internal/interface/http/dto"
	"github.com/xiebiao/bookshelf/pkg/response"
)

// BookHandler 图书HTTP处理器
// Handler只负责解析请求/调用用例/输出响应,错误统一交给response.Error
type BookHandler struct {
	createBookUseCase *appbook.CreateBookUseCase
	listBooksUseCase  *appbook.ListBooksUseCase
	getBookUseCase    *appbook.GetBookUseCase
	updateBookUseCase *appbook.UpdateBookUseCase
	deleteBookUseCase *appbook.DeleteBookUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	createBookUseCase *appbook.CreateBookUseCase,
	listBooksUseCase *appbook.ListBooksUseCase,
	getBookUseCase *appbook.GetBookUseCase,
	updateBookUseCase *appbook.UpdateBookUseCase,
	deleteBookUseCase *appbook.DeleteBookUseCase,
) *BookHandler {
	return &BookHandler{
		createBookUseCase: createBookUseCase,
		listBooksUseCase:  listBooksUseCase,
		getBookUseCase:    getBookUseCase,
		updateBookUseCase: updateBookUseCase,
		deleteBookUseCase: deleteBookUseCase,
	}
}

// CreateBook 创建图书
// @Summary      创建图书
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateBookRequest true "图书信息"
// @Success      201 {object} response.Response{data=dto.BookData}
// @Failure      400 {object} response.ErrorResponse "参数错误"
// @Failure      401 {object} response.ErrorResponse "未登录"
// @Router       /api/books [post]
func (h *BookHandler) CreateBook(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := dto.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	cmd, err := req.ToCommand()
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.createBookUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.BookData{Book: b})
}

// ListBooks 查询图书列表
// @Summary      图书列表
// @Description  支持按作者/分类/评分过滤,按标题或作者搜索,分页和排序
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        page      query int    false "页码" default(1)
// @Param        limit     query int    false "每页数量(最大100)" default(10)
// @Param        author    query string false "作者(模糊匹配)"
// @Param        category  query string false "分类(模糊匹配)"
// @Param        search    query string false "标题或作者关键字"
// @Param        rating    query number false "最低评分"
// @Param        sortBy    query string false "排序字段" default(createdAt)
// @Param        sortOrder query string false "asc|desc" default(desc)
// @Success      200 {object} response.Response{data=appbook.ListBooksResponse}
// @Failure      401 {object} response.ErrorResponse "未登录"
// @Router       /api/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	result, err := h.listBooksUseCase.Execute(c.Request.Context(), dto.ParseListQuery(c.Request.URL.Query()))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetBook 查询图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书ID"
// @Success      200 {object} response.Response{data=dto.BookData}
// @Failure      404 {object} response.ErrorResponse "图书不存在"
// @Router       /api/books/{id} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	b, err := h.getBookUseCase.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.BookData{Book: b})
}

// UpdateBook 部分更新图书
// @Summary      更新图书
// @Description  只更新请求中出现的字段
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                 true "图书ID"
// @Param        request body dto.UpdateBookRequest true "需要更新的字段"
// @Success      200 {object} response.Response{data=dto.BookData}
// @Failure      400 {object} response.ErrorResponse "参数错误"
// @Failure      404 {object} response.ErrorResponse "图书不存在"
// @Router       /api/books/{id} [patch]
func (h *BookHandler) UpdateBook(c *gin.Context) {
	var req dto.UpdateBookRequest
	if err := dto.BindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	cmd, err := req.ToCommand(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.updateBookUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.BookData{Book: b})
}

// DeleteBook 删除图书
// @Summary      删除图书
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "图书ID"
// @Success      200 {object} response.Response "data为null"
// @Failure      404 {object} response.ErrorResponse "图书不存在"
// @Router       /api/books/{id} [delete]
func (h *BookHandler) DeleteBook(c *gin.Context) {
	if err := h.deleteBookUseCase.Execute(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, nil)
}
