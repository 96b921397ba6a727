package rdb

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/xiebiao/bookshop/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 使用GORM v2作为ORM框架，driver=mysql用于生产，driver=sqlite用于单机/测试
// 2. 配置连接池参数（MaxOpenConns、MaxIdleConns、ConnMaxLifetime）
// 3. SQL日志接入zerolog，debug模式打印全部SQL，其余只打印慢查询和错误
// 4. 按database.migrate建表（auto/sql/none）
// 返回的cleanup关闭连接池
func NewDB(cfg *config.Config, log zerolog.Logger) (*gorm.DB, func(), error) {
	dialector, err := openDialector(cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(log, cfg.Server.Mode == "debug", cfg.Database.SlowThreshold),
		TranslateError: true, // 唯一索引冲突翻译为gorm.ErrDuplicatedKey
		NowFunc: func() time.Time {
			return time.Now().Round(time.Microsecond)
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}

	if cfg.Database.Driver == config.DriverSQLite && isMemoryPath(cfg.Database.Path) {
		// 内存库每个连接都是独立的数据库，只能用一个连接
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	}

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("数据库连接成功")

	if err := Migrate(cfg.Database, db, log); err != nil {
		sqlDB.Close()
		return nil, nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	cleanup := func() {
		if err := sqlDB.Close(); err != nil {
			log.Error().Err(err).Msg("关闭数据库连接失败")
		}
	}
	return db, cleanup, nil
}

func openDialector(d config.DatabaseConfig) (gorm.Dialector, error) {
	switch d.Driver {
	case config.DriverMySQL:
		return mysql.Open(d.DSN()), nil
	case config.DriverSQLite:
		return sqlite.Open(SQLiteDSN(d.Path)), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %q", d.Driver)
	}
}

// SQLiteDSN 生成mattn/go-sqlite3的连接串
// 开启外键约束；文件库使用IMMEDIATE事务，写事务一开始就拿写锁，避免并发下单时锁升级死锁
func SQLiteDSN(path string) string {
	if isMemoryPath(path) {
		return "file::memory:?_foreign_keys=on"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
}

func isMemoryPath(path string) bool {
	return path == "" || path == ":memory:" || strings.Contains(path, "mode=memory")
}

// isMySQL 只有MySQL支持SELECT ... FOR UPDATE，SQLite依靠库级写锁
func isMySQL(db *gorm.DB) bool {
	return db.Dialector.Name() == "mysql"
}

// gormWriter 把GORM日志转给zerolog
type gormWriter struct {
	log   zerolog.Logger
	level zerolog.Level
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.WithLevel(w.level).Str("component", "gorm").Msgf(format, args...)
}

func newGormLogger(log zerolog.Logger, debug bool, slow time.Duration) gormlogger.Interface {
	level, zlevel := gormlogger.Warn, zerolog.WarnLevel
	if debug {
		level, zlevel = gormlogger.Info, zerolog.DebugLevel
	}
	return gormlogger.New(gormWriter{log: log, level: zlevel}, gormlogger.Config{
		SlowThreshold:             slow,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
