package dto

import (
	"github.com/xiebiao/bookshop/internal/domain/book"
)

// CreateBookRequest 新建图书
type CreateBookRequest struct {
	Title           string `json:"title" binding:"required,max=200" example:"三体"`
	Writer          string `json:"writer" binding:"required,max=100" example:"刘慈欣"`
	Publisher       string `json:"publisher" binding:"required,max=100" example:"重庆出版社"`
	PublicationYear int    `json:"publication_year" binding:"gte=0" example:"2008"`
	Description     string `json:"description" example:"地球往事三部曲之一"`
	Price           int64  `json:"price" binding:"required,gt=0" example:"2300"` // 分
	StockQuantity   int    `json:"stock_quantity" binding:"gte=0" example:"100"`
	GenreID         uint   `json:"genre_id" binding:"required,gt=0" example:"1"`
}

// UpdateBookRequest 部分更新图书，不传的字段保持原值
type UpdateBookRequest struct {
	Title           *string `json:"title" binding:"omitempty,max=200"`
	Writer          *string `json:"writer" binding:"omitempty,max=100"`
	Publisher       *string `json:"publisher" binding:"omitempty,max=100"`
	PublicationYear *int    `json:"publication_year" binding:"omitempty,gte=0"`
	Description     *string `json:"description"`
	Price           *int64  `json:"price" binding:"omitempty,gt=0"`
	StockQuantity   *int    `json:"stock_quantity" binding:"omitempty,gte=0"`
	GenreID         *uint   `json:"genre_id" binding:"omitempty,gt=0"`
}

// ToPatch 转换为领域层的部分更新
func (r UpdateBookRequest) ToPatch() book.Patch {
	return book.Patch{
		Title:           r.Title,
		Writer:          r.Writer,
		Publisher:       r.Publisher,
		PublicationYear: r.PublicationYear,
		Description:     r.Description,
		Price:           r.Price,
		StockQuantity:   r.StockQuantity,
		GenreID:         r.GenreID,
	}
}

// GenreRequest 新建/修改分类
type GenreRequest struct {
	Name string `json:"name" binding:"required,min=2,max=50" example:"科幻"`
}
