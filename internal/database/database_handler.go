package database

import (
	"fmt"
	"os"

	"whohas/internal/domain"
	"whohas/internal/support"

	"github.com/charmbracelet/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	DB *gorm.DB
)

type Config struct {
	Path        string // on-disk database file; ignored when DSN is set
	DSN         string
	Overwrite   bool // remove an existing file before opening
	Logger      logger.Interface
	AutoMigrate bool
}

type Option func(*Config)

func WithPath(path string) Option {
	return func(cfg *Config) {
		cfg.Path = path
	}
}

func WithDSN(dsn string) Option {
	return func(cfg *Config) {
		cfg.DSN = dsn
	}
}

func WithOverwrite() Option {
	return func(cfg *Config) {
		cfg.Overwrite = true
	}
}

func defaultConfig() Config {
	return Config{
		Path:        support.GetEnv("WHOHAS_DB", "whohas.db"),
		AutoMigrate: true,
	}
}

// SetupDB opens the session ledger database and installs it as the package
// connection.
func SetupDB(opts ...Option) (*gorm.DB, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	DB = db
	return db, nil
}

// Open connects to a sqlite ledger database described by cfg. The connection
// pool is pinned to a single connection so that concurrent writers queue at
// the pool instead of tripping over sqlite table locks.
func Open(cfg Config) (*gorm.DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		if cfg.Path == "" {
			return nil, fmt.Errorf("database: no path or DSN provided")
		}

		if cfg.Overwrite {
			if err := os.Remove(cfg.Path); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("database: remove %s: %w", cfg.Path, err)
			}
		}

		dsn = fmt.Sprintf("file:%s?_fk=1", cfg.Path)
	}

	silent := logger.New(
		log.Default(),
		logger.Config{
			LogLevel: logger.Silent,
		},
	)

	gormCfg := &gorm.Config{Logger: silent}
	if cfg.Logger != nil {
		gormCfg.Logger = cfg.Logger
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("database: open connection: %w", err)
	}

	if err := configureConnectionPool(db); err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		err = db.AutoMigrate(
			&domain.Address{},
			&domain.ReverseName{},
			&domain.Transaction{},
		)
		if err != nil {
			return nil, fmt.Errorf("database: auto migrate: %w", err)
		}
	}

	return db, nil
}

// OpenSnapshot opens a previously written ledger database read-side for
// merging. A missing file is an immediate error; sqlite would otherwise
// silently create an empty database there.
func OpenSnapshot(path string) (*gorm.DB, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("database: snapshot not found: %s", path)
		}
		return nil, fmt.Errorf("database: stat snapshot %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("database: snapshot is a directory: %s", path)
	}

	return Open(Config{Path: path})
}

func configureConnectionPool(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database: access connection pool: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
		return fmt.Errorf("database: set busy timeout: %w", err)
	}

	return nil
}
