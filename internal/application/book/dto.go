package book

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/genre"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/logger"
)

// =========================================
// 应用层DTO
// =========================================

// GenreResponse 分类
type GenreResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// BookResponse 图书（含分类）
type BookResponse struct {
	ID              uint           `json:"id"`
	Title           string         `json:"title"`
	Writer          string         `json:"writer"`
	Publisher       string         `json:"publisher"`
	PublicationYear int            `json:"publication_year"`
	Description     string         `json:"description"`
	Price           int64          `json:"price"` // 分
	StockQuantity   int            `json:"stock_quantity"`
	GenreID         uint           `json:"genre_id"`
	Genre           *GenreResponse `json:"genre,omitempty"`
}

func toGenreResponse(g *genre.Genre) *GenreResponse {
	return &GenreResponse{ID: g.ID, Name: g.Name}
}

func toBookResponse(b *book.Book) *BookResponse {
	resp := &BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Writer:          b.Writer,
		Publisher:       b.Publisher,
		PublicationYear: b.PublicationYear,
		Description:     b.Description,
		Price:           b.Price,
		StockQuantity:   b.StockQuantity,
		GenreID:         b.GenreID,
	}
	if b.Genre != nil {
		resp.Genre = toGenreResponse(b.Genre)
	}
	return resp
}

// logInternal 只记录服务端错误，业务错误由handler直接返回给客户端
func logInternal(ctx context.Context, fallback zerolog.Logger, err error, msg string) error {
	if apperrors.IsInternal(err) {
		logger.FromContext(ctx, fallback).Error().Err(err).Msg(msg)
	}
	return err
}
