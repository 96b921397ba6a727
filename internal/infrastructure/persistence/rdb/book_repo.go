package rdb

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshop/internal/domain/book"
)

// bookRepository 图书仓储实现
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// Create 创建图书
// 关联的Genre不写入，只写genre_id；分类不存在由外键拒绝
func (r *bookRepository) Create(ctx context.Context, b *book.Book) error {
	m := fromBook(b)
	if err := getDB(ctx, r.db).Omit(clause.Associations).Create(m).Error; err != nil {
		if isDuplicateError(err) {
			return book.ErrTitleDuplicate
		}
		return dbError(err, "创建图书失败")
	}
	b.ID = m.ID
	b.CreatedAt = m.CreatedAt
	b.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	var m BookModel
	if err := getDB(ctx, r.db).Preload("Genre").First(&m, id).Error; err != nil {
		if isNotFound(err) {
			return nil, book.ErrBookNotFound
		}
		return nil, dbError(err, "查询图书失败")
	}
	return m.toEntity(), nil
}

func (r *bookRepository) FindAll(ctx context.Context, filter book.Filter) ([]*book.Book, error) {
	query := getDB(ctx, r.db).Preload("Genre").Order("id ASC")
	if filter.GenreID != 0 {
		query = query.Where("genre_id = ?", filter.GenreID)
	}

	var models []BookModel
	if err := query.Find(&models).Error; err != nil {
		return nil, dbError(err, "查询图书列表失败")
	}
	return toBooks(models), nil
}

// Update 只写patch中设置的字段
// 未设置的列不会被覆盖，并发下单扣减的库存不会被写回旧值
// 用Select指定列，零值（库存为0、简介为空）也会写入
func (r *bookRepository) Update(ctx context.Context, b *book.Book, patch book.Patch) error {
	m := fromBook(b)
	result := getDB(ctx, r.db).Model(&BookModel{ID: b.ID}).
		Select(patchColumns(patch)).
		Updates(m)
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return book.ErrTitleDuplicate
		}
		return dbError(result.Error, "更新图书失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

// patchColumns patch中非nil字段对应的列，updated_at总是写入
func patchColumns(p book.Patch) []string {
	columns := make([]string, 0, 9)
	if p.Title != nil {
		columns = append(columns, "title")
	}
	if p.Writer != nil {
		columns = append(columns, "writer")
	}
	if p.Publisher != nil {
		columns = append(columns, "publisher")
	}
	if p.PublicationYear != nil {
		columns = append(columns, "publication_year")
	}
	if p.Description != nil {
		columns = append(columns, "description")
	}
	if p.Price != nil {
		columns = append(columns, "price")
	}
	if p.StockQuantity != nil {
		columns = append(columns, "stock_quantity")
	}
	if p.GenreID != nil {
		columns = append(columns, "genre_id")
	}
	return append(columns, "updated_at")
}

func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	result := getDB(ctx, r.db).Delete(&BookModel{}, id)
	if result.Error != nil {
		return dbError(result.Error, "删除图书失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrBookNotFound
	}
	return nil
}

func (r *bookRepository) CountByGenre(ctx context.Context, genreID uint) (int64, error) {
	var count int64
	err := getDB(ctx, r.db).Model(&BookModel{}).Where("genre_id = ?", genreID).Count(&count).Error
	if err != nil {
		return 0, dbError(err, "统计分类图书数量失败")
	}
	return count, nil
}

// FindByIDsForUpdate 批量读取库存
// 1. 一条SQL查出全部图书（WHERE id IN ?），不会逐本查询
// 2. MySQL下加FOR UPDATE行锁，按ID升序锁定
// 3. SQLite没有行锁，IMMEDIATE事务已持有库级写锁
func (r *bookRepository) FindByIDsForUpdate(ctx context.Context, ids []uint) ([]*book.Book, error) {
	if len(ids) == 0 {
		return []*book.Book{}, nil
	}

	db := getDB(ctx, r.db)
	query := db.Where("id IN ?", ids).Order("id ASC")
	if isMySQL(db) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var models []BookModel
	if err := query.Find(&models).Error; err != nil {
		return nil, dbError(err, "查询图书库存失败")
	}
	return toBooks(models), nil
}

// DecrementStock 条件扣减库存
// WHERE stock_quantity >= ? 保证并发下不会扣成负数
func (r *bookRepository) DecrementStock(ctx context.Context, id uint, quantity int) error {
	result := getDB(ctx, r.db).Model(&BookModel{}).
		Where("id = ? AND stock_quantity >= ?", id, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		return dbError(result.Error, "扣减库存失败")
	}
	if result.RowsAffected == 0 {
		return book.ErrInsufficientStock
	}
	return nil
}

func fromBook(b *book.Book) *BookModel {
	return &BookModel{
		ID:              b.ID,
		Title:           b.Title,
		Writer:          b.Writer,
		Publisher:       b.Publisher,
		PublicationYear: b.PublicationYear,
		Description:     b.Description,
		Price:           b.Price,
		StockQuantity:   b.StockQuantity,
		GenreID:         b.GenreID,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func (m *BookModel) toEntity() *book.Book {
	b := &book.Book{
		ID:              m.ID,
		Title:           m.Title,
		Writer:          m.Writer,
		Publisher:       m.Publisher,
		PublicationYear: m.PublicationYear,
		Description:     m.Description,
		Price:           m.Price,
		StockQuantity:   m.StockQuantity,
		GenreID:         m.GenreID,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if m.Genre != nil {
		b.Genre = m.Genre.toEntity()
	}
	return b
}

func toBooks(models []BookModel) []*book.Book {
	books := make([]*book.Book, 0, len(models))
	for i := range models {
		books = append(books, models[i].toEntity())
	}
	return books
}
