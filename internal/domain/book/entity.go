package book

import (
	"strings"
	"time"

	"github.com/xiebiao/bookshop/internal/domain/genre"
)

// Book 图书实体
// 设计说明:
// 1. Price单位为分(int64)，避免浮点误差
// 2. StockQuantity永远不为负，扣减由仓储的条件UPDATE保证
// 3. Genre只在查询时填充，写操作只看GenreID
type Book struct {
	ID              uint
	Title           string // 书名(唯一)
	Writer          string // 作者
	Publisher       string // 出版社
	PublicationYear int    // 出版年份
	Description     string // 简介(可选)
	Price           int64  // 价格(分)
	StockQuantity   int    // 库存数量
	GenreID         uint
	Genre           *genre.Genre
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewBook 创建图书(工厂方法)，返回前完成字段校验
func NewBook(title, writer, publisher string, publicationYear int, description string, price int64, stock int, genreID uint) (*Book, error) {
	now := time.Now()
	b := &Book{
		Title:           strings.TrimSpace(title),
		Writer:          strings.TrimSpace(writer),
		Publisher:       strings.TrimSpace(publisher),
		PublicationYear: publicationYear,
		Description:     description,
		Price:           price,
		StockQuantity:   stock,
		GenreID:         genreID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate 校验业务规则
func (b *Book) Validate() error {
	switch {
	case b.Title == "":
		return ErrInvalidTitle
	case b.Writer == "" || b.Publisher == "":
		return ErrMissingField
	case b.PublicationYear < 0:
		return ErrInvalidYear
	case b.Price <= 0:
		return ErrInvalidPrice
	case b.StockQuantity < 0:
		return ErrInvalidStock
	case b.GenreID == 0:
		return ErrInvalidGenre
	}
	return nil
}

// HasStock 库存是否足够
func (b *Book) HasStock(quantity int) bool {
	return quantity > 0 && b.StockQuantity >= quantity
}

// Patch 部分更新，nil字段保持原值
type Patch struct {
	Title           *string
	Writer          *string
	Publisher       *string
	PublicationYear *int
	Description     *string
	Price           *int64
	StockQuantity   *int
	GenreID         *uint
}

// GenreChanged 是否修改了分类(需要校验新分类存在)
func (p Patch) GenreChanged(current uint) bool {
	return p.GenreID != nil && *p.GenreID != current
}

// TitleChanged 是否修改了书名
func (p Patch) TitleChanged(current string) bool {
	return p.Title != nil && strings.TrimSpace(*p.Title) != current
}

// Apply 应用部分更新并重新校验，校验失败时实体保持不变
func (b *Book) Apply(p Patch) error {
	next := *b
	if p.Title != nil {
		next.Title = strings.TrimSpace(*p.Title)
	}
	if p.Writer != nil {
		next.Writer = strings.TrimSpace(*p.Writer)
	}
	if p.Publisher != nil {
		next.Publisher = strings.TrimSpace(*p.Publisher)
	}
	if p.PublicationYear != nil {
		next.PublicationYear = *p.PublicationYear
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.Price != nil {
		next.Price = *p.Price
	}
	if p.StockQuantity != nil {
		next.StockQuantity = *p.StockQuantity
	}
	if p.GenreID != nil && *p.GenreID != b.GenreID {
		next.GenreID = *p.GenreID
		next.Genre = nil
	}
	if err := next.Validate(); err != nil {
		return err
	}
	next.UpdatedAt = time.Now()
	*b = next
	return nil
}
