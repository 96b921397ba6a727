package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookshop/internal/application/book"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/pkg/response"
)

// GenreHandler 分类HTTP处理器
type GenreHandler struct {
	genres *appbook.GenreUseCases
}

// NewGenreHandler 创建分类处理器
func NewGenreHandler(genres *appbook.GenreUseCases) *GenreHandler {
	return &GenreHandler{genres: genres}
}

// List 分类列表
// @Summary      分类列表
// @Tags         分类
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]appbook.GenreResponse}
// @Failure      404 {object} response.Response "暂无分类"
// @Router       /api/v1/genres [get]
func (h *GenreHandler) List(c *gin.Context) {
	genres, err := h.genres.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, genres)
}

// Get 分类详情
// @Summary      分类详情
// @Tags         分类
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "分类ID"
// @Success      200 {object} response.Response{data=appbook.GenreResponse}
// @Failure      404 {object} response.Response "分类不存在"
// @Router       /api/v1/genres/{id} [get]
func (h *GenreHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	g, err := h.genres.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, g)
}

// Create 新建分类
// @Summary      新建分类
// @Tags         分类
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.GenreRequest true "分类名称"
// @Success      201 {object} response.Response{data=appbook.GenreResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "分类名已存在"
// @Router       /api/v1/genres [post]
func (h *GenreHandler) Create(c *gin.Context) {
	var req dto.GenreRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	g, err := h.genres.Create(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, g)
}

// Update 修改分类名称
// @Summary      修改分类
// @Tags         分类
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "分类ID"
// @Param        request body dto.GenreRequest true "分类名称"
// @Success      200 {object} response.Response{data=appbook.GenreResponse}
// @Failure      404 {object} response.Response "分类不存在"
// @Failure      409 {object} response.Response "分类名已存在"
// @Router       /api/v1/genres/{id} [patch]
func (h *GenreHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.GenreRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	g, err := h.genres.Rename(c.Request.Context(), id, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, g)
}

// Delete 删除分类，分类下还有图书时拒绝
// @Summary      删除分类
// @Tags         分类
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "分类ID"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "分类下仍有图书"
// @Failure      404 {object} response.Response "分类不存在"
// @Router       /api/v1/genres/{id} [delete]
func (h *GenreHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.genres.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "分类已删除", nil)
}
