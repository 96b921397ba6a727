package rdb

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/infrastructure/config"
)

// Migrate 按配置建表
// - auto: GORM AutoMigrate，只会创建表、添加字段，适合开发和测试
// - sql:  golang-migrate执行migrations目录下的版本化SQL，生产使用
// - none: 不做任何处理
func Migrate(cfg config.DatabaseConfig, db *gorm.DB, log zerolog.Logger) error {
	switch cfg.Migrate {
	case config.MigrateNone:
		return nil
	case config.MigrateAuto, "":
		return AutoMigrate(db)
	case config.MigrateSQL:
		return migrateSQL(cfg, log)
	default:
		return fmt.Errorf("无效的建表方式: %q", cfg.Migrate)
	}
}

// AutoMigrate 自动迁移全部表结构
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(allModels()...)
}

func migrateSQL(cfg config.DatabaseConfig, log zerolog.Logger) error {
	m, err := migrate.New("file://"+cfg.MigrationsPath, cfg.MigrateURL())
	if err != nil {
		return fmt.Errorf("初始化迁移失败: %w", err)
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Msg("数据库已是最新版本")
		return nil
	}
	if err != nil {
		return fmt.Errorf("执行迁移失败: %w", err)
	}

	version, dirty, _ := m.Version()
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("数据库迁移完成")
	return nil
}
