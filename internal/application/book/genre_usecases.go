package book

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/genre"
)

// GenreUseCases 分类管理用例
// 分类只有名称一个字段，增删改查放在同一个结构体里
type GenreUseCases struct {
	genreRepo genre.Repository
	bookRepo  book.Repository
	log       zerolog.Logger
}

// NewGenreUseCases 创建分类用例
func NewGenreUseCases(genreRepo genre.Repository, bookRepo book.Repository, log zerolog.Logger) *GenreUseCases {
	return &GenreUseCases{genreRepo: genreRepo, bookRepo: bookRepo, log: log}
}

// List 全部分类，没有分类时返回ErrNoGenres
func (uc *GenreUseCases) List(ctx context.Context) ([]*GenreResponse, error) {
	genres, err := uc.genreRepo.FindAll(ctx)
	if err != nil {
		return nil, logInternal(ctx, uc.log, err, "查询分类列表失败")
	}
	if len(genres) == 0 {
		return nil, genre.ErrNoGenres
	}

	list := make([]*GenreResponse, 0, len(genres))
	for _, g := range genres {
		list = append(list, toGenreResponse(g))
	}
	return list, nil
}

// Get 查询分类
func (uc *GenreUseCases) Get(ctx context.Context, id uint) (*GenreResponse, error) {
	g, err := uc.genreRepo.FindByID(ctx, id)
	if err != nil {
		return nil, logInternal(ctx, uc.log, err, "查询分类失败")
	}
	return toGenreResponse(g), nil
}

// Create 创建分类，名称重复返回ErrGenreDuplicate
func (uc *GenreUseCases) Create(ctx context.Context, name string) (*GenreResponse, error) {
	g, err := genre.NewGenre(name)
	if err != nil {
		return nil, err
	}
	if err := uc.genreRepo.Create(ctx, g); err != nil {
		return nil, logInternal(ctx, uc.log, err, "创建分类失败")
	}
	return toGenreResponse(g), nil
}

// Rename 修改分类名称
func (uc *GenreUseCases) Rename(ctx context.Context, id uint, name string) (*GenreResponse, error) {
	g, err := uc.genreRepo.FindByID(ctx, id)
	if err != nil {
		return nil, logInternal(ctx, uc.log, err, "查询分类失败")
	}
	if err := g.Rename(name); err != nil {
		return nil, err
	}
	if err := uc.genreRepo.Update(ctx, g); err != nil {
		return nil, logInternal(ctx, uc.log, err, "更新分类失败")
	}
	return toGenreResponse(g), nil
}

// Delete 删除分类，分类下还有图书时返回ErrGenreInUse
func (uc *GenreUseCases) Delete(ctx context.Context, id uint) error {
	if _, err := uc.genreRepo.FindByID(ctx, id); err != nil {
		return logInternal(ctx, uc.log, err, "查询分类失败")
	}
	count, err := uc.bookRepo.CountByGenre(ctx, id)
	if err != nil {
		return logInternal(ctx, uc.log, err, "统计分类图书失败")
	}
	if count > 0 {
		return genre.ErrGenreInUse
	}
	if err := uc.genreRepo.Delete(ctx, id); err != nil {
		return logInternal(ctx, uc.log, err, "删除分类失败")
	}
	return nil
}
