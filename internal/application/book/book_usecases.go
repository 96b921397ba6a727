package book

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/genre"
)

// BookUseCases 图书管理用例
// 设计说明:
// 1. 写操作前确认分类存在，返回明确的"分类不存在"而不是外键错误
// 2. 书名唯一由数据库唯一索引保证
// 3. 删除为软删除，历史订单仍能显示书名和价格
// 4. 更新只写patch中的字段；修改库存时在事务中加锁读取
type BookUseCases struct {
	bookRepo  book.Repository
	genreRepo genre.Repository
	txManager TxManager
	log       zerolog.Logger
}

// TxManager 事务管理（rdb.TxManager实现）
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// NewBookUseCases 创建图书用例
func NewBookUseCases(bookRepo book.Repository, genreRepo genre.Repository, txManager TxManager, log zerolog.Logger) *BookUseCases {
	return &BookUseCases{bookRepo: bookRepo, genreRepo: genreRepo, txManager: txManager, log: log}
}

// CreateBookRequest 新建图书
type CreateBookRequest struct {
	Title           string
	Writer          string
	Publisher       string
	PublicationYear int
	Description     string
	Price           int64
	StockQuantity   int
	GenreID         uint
}

// List 图书列表，genreID为0时不过滤；结果为空返回ErrNoBooks
func (uc *BookUseCases) List(ctx context.Context, genreID uint) ([]*BookResponse, error) {
	books, err := uc.bookRepo.FindAll(ctx, book.Filter{GenreID: genreID})
	if err != nil {
		return nil, logInternal(ctx, uc.log, err, "查询图书列表失败")
	}
	if len(books) == 0 {
		return nil, book.ErrNoBooks
	}

	list := make([]*BookResponse, 0, len(books))
	for _, b := range books {
		list = append(list, toBookResponse(b))
	}
	return list, nil
}

// ListByGenre 某个分类下的图书，分类不存在返回ErrGenreNotFound
func (uc *BookUseCases) ListByGenre(ctx context.Context, genreID uint) ([]*BookResponse, error) {
	if _, err := uc.genreRepo.FindByID(ctx, genreID); err != nil {
		return nil, logInternal(ctx, uc.log, err, "查询分类失败")
	}
	return uc.List(ctx, genreID)
}

// Get 查询图书（含分类）
func (uc *BookUseCases) Get(ctx context.Context, id uint) (*BookResponse, error) {
	b, err := uc.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, logInternal(ctx, uc.log, err, "查询图书失败")
	}
	return toBookResponse(b), nil
}

// Create 新建图书
func (uc *BookUseCases) Create(ctx context.Context, req CreateBookRequest) (*BookResponse, error) {
	b, err := book.NewBook(req.Title, req.Writer, req.Publisher, req.PublicationYear,
		req.Description, req.Price, req.StockQuantity, req.GenreID)
	if err != nil {
		return nil, err
	}

	g, err := uc.genreRepo.FindByID(ctx, b.GenreID)
	if err != nil {
		return nil, logInternal(ctx, uc.log, err, "查询分类失败")
	}
	if err := uc.bookRepo.Create(ctx, b); err != nil {
		return nil, logInternal(ctx, uc.log, err, "创建图书失败")
	}
	b.Genre = g
	return toBookResponse(b), nil
}

// Update 部分更新，只修改patch中非nil的字段
// 设置了库存时读改写在同一事务中完成，读取加行锁，与下单扣减互斥
func (uc *BookUseCases) Update(ctx context.Context, id uint, patch book.Patch) (*BookResponse, error) {
	var b *book.Book
	save := func(ctx context.Context) error {
		var err error
		if b, err = uc.load(ctx, id, patch.StockQuantity != nil); err != nil {
			return err
		}
		if patch.GenreChanged(b.GenreID) {
			if b.Genre, err = uc.genreRepo.FindByID(ctx, *patch.GenreID); err != nil {
				return err
			}
		}
		g := b.Genre
		if err := b.Apply(patch); err != nil {
			return err
		}
		b.Genre = g
		return uc.bookRepo.Update(ctx, b, patch)
	}

	var err error
	if patch.StockQuantity != nil {
		err = uc.txManager.Transaction(ctx, save)
	} else {
		err = save(ctx)
	}
	if err != nil {
		return nil, logInternal(ctx, uc.log, err, "更新图书失败")
	}

	if b.Genre == nil {
		if b.Genre, err = uc.genreRepo.FindByID(ctx, b.GenreID); err != nil {
			return nil, logInternal(ctx, uc.log, err, "查询分类失败")
		}
	}
	return toBookResponse(b), nil
}

// load 读取待更新的图书，lock为true时用FindByIDsForUpdate加锁（不含分类）
func (uc *BookUseCases) load(ctx context.Context, id uint, lock bool) (*book.Book, error) {
	if !lock {
		return uc.bookRepo.FindByID(ctx, id)
	}
	books, err := uc.bookRepo.FindByIDsForUpdate(ctx, []uint{id})
	if err != nil {
		return nil, err
	}
	if len(books) == 0 {
		return nil, book.ErrBookNotFound
	}
	return books[0], nil
}

// Delete 删除图书
func (uc *BookUseCases) Delete(ctx context.Context, id uint) error {
	if err := uc.bookRepo.Delete(ctx, id); err != nil {
		return logInternal(ctx, uc.log, err, "删除图书失败")
	}
	return nil
}
