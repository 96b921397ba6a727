// Package rdbtest 提供基于SQLite的测试数据库
package rdbtest

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/rdb"
)

// New 打开一个已建好表的内存库，测试结束时自动关闭
// 每次调用都是独立的数据库，只有一个连接
func New(t testing.TB) *gorm.DB {
	t.Helper()
	return open(t, ":memory:", 1)
}

// NewFile 在t.TempDir()下打开文件库，连接池有多个连接
// 用于需要真实并发写的测试（IMMEDIATE事务、条件UPDATE）
func NewFile(t testing.TB, conns int) *gorm.DB {
	t.Helper()
	return open(t, filepath.Join(t.TempDir(), "bookshop.db"), conns)
}

func open(t testing.TB, path string, conns int) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "test"},
		Database: config.DatabaseConfig{
			Driver:       config.DriverSQLite,
			Path:         path,
			Migrate:      config.MigrateAuto,
			MaxOpenConns: conns,
			MaxIdleConns: conns,
		},
	}
	db, cleanup, err := rdb.NewDB(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return db
}
