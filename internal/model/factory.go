package model

import (
	"fmt"
	"metagen/internal/config"
	"metagen/internal/entity"
	"metagen/internal/model/sql"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const (
	DBTypeMySQL    = "mysql"
	DBTypeSQLite   = "sqlite"
	DBTypePostgres = "postgres"

	defaultSQLitePath = "datas/metagen.db"
)

// InitRepository 按 DBType 打开数据库并迁移任务与积分表，DBType 为空时使用 SQLite
func InitRepository(cfg *config.Config) (Repository, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}
	return open(dialector)
}

// OpenSQLite 打开指定路径的 SQLite 数据库，供单机部署与测试使用
func OpenSQLite(path string) (Repository, error) {
	dialector, err := sqliteDialector(path)
	if err != nil {
		return nil, err
	}
	return open(dialector)
}

func dialectorFor(cfg *config.Config) (gorm.Dialector, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.DBType)) {
	case "", DBTypeSQLite:
		return sqliteDialector(cfg.DBPath)
	case DBTypeMySQL:
		dsn := cfg.DSNURL
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
				cfg.DBUser, cfg.DBPassword, cfg.DBAddr, cfg.DBPort, cfg.DBName)
		}
		return mysql.Open(dsn), nil
	case DBTypePostgres:
		dsn := cfg.DSNURL
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
				cfg.DBAddr, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
		}
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DBType)
	}
}

// sqliteDialector 确保数据库文件所在目录存在
func sqliteDialector(path string) (gorm.Dialector, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = defaultSQLitePath
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir %q: %w", dir, err)
		}
	}
	return sqlite.Open(path), nil
}

func open(dialector gorm.Dialector) (Repository, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(logrus.StandardLogger(), logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		DisableForeignKeyConstraintWhenMigrating: true,
		NamingStrategy:                           schema.NamingStrategy{SingularTable: true},
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", dialector.Name(), err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 检查点与积分流水只依赖这三张表
	if err := db.AutoMigrate(&entity.DbTask{}, &entity.DbCredits{}, &entity.DbCreditTransaction{}); err != nil {
		return nil, fmt.Errorf("migrate %s schema: %w", dialector.Name(), err)
	}
	return sql.NewGormRepository(db), nil
}
