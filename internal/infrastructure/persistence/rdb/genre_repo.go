package rdb

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/genre"
)

// genreRepository 分类仓储实现
type genreRepository struct {
	db *gorm.DB
}

// NewGenreRepository 创建分类仓储
func NewGenreRepository(db *gorm.DB) genre.Repository {
	return &genreRepository{db: db}
}

func (r *genreRepository) Create(ctx context.Context, g *genre.Genre) error {
	m := fromGenre(g)
	if err := getDB(ctx, r.db).Create(m).Error; err != nil {
		if isDuplicateError(err) {
			return genre.ErrGenreDuplicate
		}
		return dbError(err, "创建分类失败")
	}
	g.ID = m.ID
	g.CreatedAt = m.CreatedAt
	g.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *genreRepository) FindByID(ctx context.Context, id uint) (*genre.Genre, error) {
	var m GenreModel
	if err := getDB(ctx, r.db).First(&m, id).Error; err != nil {
		if isNotFound(err) {
			return nil, genre.ErrGenreNotFound
		}
		return nil, dbError(err, "查询分类失败")
	}
	return m.toEntity(), nil
}

func (r *genreRepository) FindAll(ctx context.Context) ([]*genre.Genre, error) {
	var models []GenreModel
	if err := getDB(ctx, r.db).Order("id ASC").Find(&models).Error; err != nil {
		return nil, dbError(err, "查询分类列表失败")
	}
	genres := make([]*genre.Genre, 0, len(models))
	for i := range models {
		genres = append(genres, models[i].toEntity())
	}
	return genres, nil
}

func (r *genreRepository) Update(ctx context.Context, g *genre.Genre) error {
	result := getDB(ctx, r.db).Model(&GenreModel{ID: g.ID}).Updates(map[string]interface{}{
		"name":       g.Name,
		"updated_at": g.UpdatedAt,
	})
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return genre.ErrGenreDuplicate
		}
		return dbError(result.Error, "更新分类失败")
	}
	if result.RowsAffected == 0 {
		return genre.ErrGenreNotFound
	}
	return nil
}

func (r *genreRepository) Delete(ctx context.Context, id uint) error {
	result := getDB(ctx, r.db).Delete(&GenreModel{}, id)
	if result.Error != nil {
		return dbError(result.Error, "删除分类失败")
	}
	if result.RowsAffected == 0 {
		return genre.ErrGenreNotFound
	}
	return nil
}

func fromGenre(g *genre.Genre) *GenreModel {
	return &GenreModel{
		ID:        g.ID,
		Name:      g.Name,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func (m *GenreModel) toEntity() *genre.Genre {
	return &genre.Genre{
		ID:        m.ID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
