package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookshop/internal/application/book"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/pkg/response"
)

// BookHandler 图书HTTP处理器
type BookHandler struct {
	books *appbook.BookUseCases
}

// NewBookHandler 创建图书处理器
func NewBookHandler(books *appbook.BookUseCases) *BookHandler {
	return &BookHandler{books: books}
}

// List 图书列表
// @Summary      图书列表
// @Description  全部图书，可按genre_id过滤；没有图书时返回404
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        genre_id query int false "分类ID"
// @Success      200 {object} response.Response{data=[]appbook.BookResponse}
// @Failure      404 {object} response.Response "暂无图书"
// @Router       /api/v1/books [get]
func (h *BookHandler) List(c *gin.Context) {
	genreID, err := parseOptionalID(c, "genre_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	books, err := h.books.List(c.Request.Context(), genreID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, books)
}

// ListByGenre 某个分类下的图书
// @Summary      分类下的图书
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        genre_id path int true "分类ID"
// @Success      200 {object} response.Response{data=[]appbook.BookResponse}
// @Failure      404 {object} response.Response "分类不存在或暂无图书"
// @Router       /api/v1/books/genre/{genre_id} [get]
func (h *BookHandler) ListByGenre(c *gin.Context) {
	id, err := parseID(c, "genre_id")
	if err != nil {
		response.Error(c, err)
		return
	}

	books, err := h.books.ListByGenre(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, books)
}

// Get 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [get]
func (h *BookHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.books.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, b)
}

// Create 新建图书
// @Summary      新建图书
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateBookRequest true "图书信息"
// @Success      201 {object} response.Response{data=appbook.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      404 {object} response.Response "分类不存在"
// @Failure      409 {object} response.Response "书名已存在"
// @Router       /api/v1/books [post]
func (h *BookHandler) Create(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.books.Create(c.Request.Context(), appbook.CreateBookRequest{
		Title:           req.Title,
		Writer:          req.Writer,
		Publisher:       req.Publisher,
		PublicationYear: req.PublicationYear,
		Description:     req.Description,
		Price:           req.Price,
		StockQuantity:   req.StockQuantity,
		GenreID:         req.GenreID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, b)
}

// Update 部分更新图书
// @Summary      修改图书
// @Description  只修改请求体中出现的字段
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Param        request body dto.UpdateBookRequest true "要修改的字段"
// @Success      200 {object} response.Response{data=appbook.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      404 {object} response.Response "图书或分类不存在"
// @Failure      409 {object} response.Response "书名已存在"
// @Router       /api/v1/books/{id} [patch]
func (h *BookHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateBookRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.books.Update(c.Request.Context(), id, req.ToPatch())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, b)
}

// Delete 删除图书（软删除，历史订单不受影响）
// @Summary      删除图书
// @Tags         图书
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "图书ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{id} [delete]
func (h *BookHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.books.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "图书已删除", nil)
}
