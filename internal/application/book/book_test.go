package book

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/genre"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/rdb"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/rdb/rdbtest"
)

func newUseCases(t *testing.T) (*BookUseCases, *GenreUseCases) {
	db := rdbtest.New(t)
	books := rdb.NewBookRepository(db)
	genres := rdb.NewGenreRepository(db)
	return NewBookUseCases(books, genres, rdb.NewTxManager(db), zerolog.Nop()), NewGenreUseCases(genres, books, zerolog.Nop())
}

// orderAfterRead 第一次FindByID返回后扣减库存，模拟读取和写回之间提交的订单
type orderAfterRead struct {
	book.Repository
	tx       *rdb.TxManager
	quantity int
	done     bool
}

func (r *orderAfterRead) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	b, err := r.Repository.FindByID(ctx, id)
	if err != nil || r.done {
		return b, err
	}
	r.done = true
	err = r.tx.Transaction(context.Background(), func(ctx context.Context) error {
		return r.Repository.DecrementStock(ctx, id, r.quantity)
	})
	return b, err
}

func validBook(genreID uint) CreateBookRequest {
	return CreateBookRequest{
		Title:           "三体",
		Writer:          "刘慈欣",
		Publisher:       "重庆出版社",
		PublicationYear: 2008,
		Price:           2300,
		StockQuantity:   10,
		GenreID:         genreID,
	}
}

func TestGenreUseCases(t *testing.T) {
	books, genres := newUseCases(t)
	ctx := context.Background()

	_, err := genres.List(ctx)
	assert.ErrorIs(t, err, genre.ErrNoGenres)

	g, err := genres.Create(ctx, "  科幻  ")
	require.NoError(t, err)
	assert.Equal(t, "科幻", g.Name)

	_, err = genres.Create(ctx, "科幻")
	assert.ErrorIs(t, err, genre.ErrGenreDuplicate)

	_, err = genres.Create(ctx, "x")
	assert.ErrorIs(t, err, genre.ErrInvalidName)

	renamed, err := genres.Rename(ctx, g.ID, "科学幻想")
	require.NoError(t, err)
	assert.Equal(t, "科学幻想", renamed.Name)

	_, err = genres.Rename(ctx, 999, "历史")
	assert.ErrorIs(t, err, genre.ErrGenreNotFound)

	// 分类下有图书时不能删除
	created, err := books.Create(ctx, validBook(g.ID))
	require.NoError(t, err)
	assert.ErrorIs(t, genres.Delete(ctx, g.ID), genre.ErrGenreInUse)

	require.NoError(t, books.Delete(ctx, created.ID))
	require.NoError(t, genres.Delete(ctx, g.ID))
	_, err = genres.Get(ctx, g.ID)
	assert.ErrorIs(t, err, genre.ErrGenreNotFound)
}

func TestBookUseCases_Create(t *testing.T) {
	books, genres := newUseCases(t)
	ctx := context.Background()
	g, err := genres.Create(ctx, "科幻")
	require.NoError(t, err)

	created, err := books.Create(ctx, validBook(g.ID))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	require.NotNil(t, created.Genre)
	assert.Equal(t, "科幻", created.Genre.Name)

	_, err = books.Create(ctx, validBook(g.ID))
	assert.ErrorIs(t, err, book.ErrTitleDuplicate)

	_, err = books.Create(ctx, validBook(999))
	assert.ErrorIs(t, err, genre.ErrGenreNotFound)

	invalid := validBook(g.ID)
	invalid.Title = "另一本"
	invalid.Price = 0
	_, err = books.Create(ctx, invalid)
	assert.ErrorIs(t, err, book.ErrInvalidPrice)
}

func TestBookUseCases_ListAndGet(t *testing.T) {
	books, genres := newUseCases(t)
	ctx := context.Background()

	_, err := books.List(ctx, 0)
	assert.ErrorIs(t, err, book.ErrNoBooks)

	scifi, err := genres.Create(ctx, "科幻")
	require.NoError(t, err)
	history, err := genres.Create(ctx, "历史")
	require.NoError(t, err)

	created, err := books.Create(ctx, validBook(scifi.ID))
	require.NoError(t, err)

	all, err := books.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)

	byGenre, err := books.ListByGenre(ctx, scifi.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, byGenre[0].ID)

	_, err = books.ListByGenre(ctx, history.ID)
	assert.ErrorIs(t, err, book.ErrNoBooks)

	_, err = books.ListByGenre(ctx, 999)
	assert.ErrorIs(t, err, genre.ErrGenreNotFound)

	got, err := books.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "刘慈欣", got.Writer)
	assert.Equal(t, "科幻", got.Genre.Name)
}

func TestBookUseCases_Update(t *testing.T) {
	books, genres := newUseCases(t)
	ctx := context.Background()
	scifi, err := genres.Create(ctx, "科幻")
	require.NoError(t, err)
	history, err := genres.Create(ctx, "历史")
	require.NoError(t, err)
	created, err := books.Create(ctx, validBook(scifi.ID))
	require.NoError(t, err)

	price := int64(3000)
	stock := 0
	updated, err := books.Update(ctx, created.ID, book.Patch{Price: &price, StockQuantity: &stock, GenreID: &history.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3000), updated.Price)
	assert.Equal(t, 0, updated.StockQuantity)
	assert.Equal(t, "历史", updated.Genre.Name)
	assert.Equal(t, "三体", updated.Title, "未传的字段保持原值")

	bad := int64(-1)
	_, err = books.Update(ctx, created.ID, book.Patch{Price: &bad})
	assert.ErrorIs(t, err, book.ErrInvalidPrice)

	missing := uint(999)
	_, err = books.Update(ctx, created.ID, book.Patch{GenreID: &missing})
	assert.ErrorIs(t, err, genre.ErrGenreNotFound)

	_, err = books.Update(ctx, 999, book.Patch{Price: &price})
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	got, err := books.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3000), got.Price)
	assert.Equal(t, history.ID, got.GenreID)
}

func TestBookUseCases_UpdateKeepsConcurrentStockChange(t *testing.T) {
	db := rdbtest.New(t)
	tx := rdb.NewTxManager(db)
	genres := rdb.NewGenreRepository(db)
	repo := &orderAfterRead{Repository: rdb.NewBookRepository(db), tx: tx, quantity: 3}
	books := NewBookUseCases(repo, genres, tx, zerolog.Nop())
	ctx := context.Background()

	g, err := NewGenreUseCases(genres, repo, zerolog.Nop()).Create(ctx, "科幻")
	require.NoError(t, err)
	req := validBook(g.ID)
	req.StockQuantity = 5
	created, err := books.Create(ctx, req)
	require.NoError(t, err)

	title := "三体（典藏版）"
	updated, err := books.Update(ctx, created.ID, book.Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, "科幻", updated.Genre.Name)

	got, err := books.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)
	assert.Equal(t, 2, got.StockQuantity, "读取之后扣减的库存不能被写回")
}

func TestBookUseCases_UpdateStock(t *testing.T) {
	books, genres := newUseCases(t)
	ctx := context.Background()
	g, err := genres.Create(ctx, "科幻")
	require.NoError(t, err)
	created, err := books.Create(ctx, validBook(g.ID))
	require.NoError(t, err)

	stock := 42
	updated, err := books.Update(ctx, created.ID, book.Patch{StockQuantity: &stock})
	require.NoError(t, err)
	assert.Equal(t, 42, updated.StockQuantity)
	require.NotNil(t, updated.Genre)
	assert.Equal(t, "科幻", updated.Genre.Name)

	negative := -1
	_, err = books.Update(ctx, created.ID, book.Patch{StockQuantity: &negative})
	assert.ErrorIs(t, err, book.ErrInvalidStock)

	_, err = books.Update(ctx, 999, book.Patch{StockQuantity: &stock})
	assert.ErrorIs(t, err, book.ErrBookNotFound)

	got, err := books.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 42, got.StockQuantity)
}
