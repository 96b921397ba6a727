package genre

import (
	"strings"
	"time"
	"unicode/utf8"
)

// 分类名称长度限制（按字符计）
const (
	NameMinLen = 2
	NameMaxLen = 50
)

// Genre 图书分类实体
type Genre struct {
	ID        uint
	Name      string // 分类名称(唯一)
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewGenre 创建分类(工厂方法，名称去除首尾空白后校验)
func NewGenre(name string) (*Genre, error) {
	g := &Genre{}
	if err := g.Rename(name); err != nil {
		return nil, err
	}
	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now
	return g, nil
}

// Rename 修改分类名称
func (g *Genre) Rename(name string) error {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < NameMinLen || n > NameMaxLen {
		return ErrInvalidName
	}
	g.Name = name
	g.UpdatedAt = time.Now()
	return nil
}
