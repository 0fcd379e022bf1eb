package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/sessioncache/internal/domain"
	"github.com/yungbote/sessioncache/internal/platform/logger"
)

// GormStore persists records in SQL tables through gorm. Apply runs the whole
// batch inside one database transaction.
type GormStore struct {
	db     *gorm.DB
	driver Driver
	log    *logger.Logger
}

var (
	_ RecordStore = (*GormStore)(nil)
	_ KeyRange    = (*GormStore)(nil)
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				SlowThreshold:             1 * time.Second,
				LogLevel:                  gormLogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}
}

// OpenSQLite opens (creating if needed) a sqlite database file.
func OpenSQLite(path string, baseLog *logger.Logger) (*GormStore, error) {
	if path == "" {
		path = "sessioncache.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return NewGormStore(db, DriverSQLite, baseLog)
}

// OpenPostgres connects to postgres using the pgx-backed gorm driver.
func OpenPostgres(dsn string, baseLog *logger.Logger) (*GormStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	return NewGormStore(db, DriverPostgres, baseLog)
}

// NewGormStore migrates every record model and wraps db.
func NewGormStore(db *gorm.DB, driver Driver, baseLog *logger.Logger) (*GormStore, error) {
	if db == nil {
		return nil, errors.New("gorm store requires a db")
	}
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return &GormStore{db: db, driver: driver, log: baseLog.With("store", "GormStore", "driver", string(driver))}, nil
}

func (s *GormStore) Driver() Driver { return s.driver }

func (s *GormStore) DB() *gorm.DB { return s.db }

func (s *GormStore) Fetch(ctx context.Context, key domain.EntityKey) (domain.Record, error) {
	rec, err := domain.NewRecord(key.Type)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Where("id = ?", key.ID).Take(rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound(key)
		}
		return nil, err
	}
	return rec, nil
}

func (s *GormStore) Apply(ctx context.Context, writes []Write) error {
	if len(writes) == 0 {
		return nil
	}
	for i, w := range writes {
		if err := validateWrite(i, w); err != nil {
			return err
		}
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, w := range writes {
			switch w.Op {
			case OpInsert:
				if err := tx.Create(w.Record).Error; err != nil {
					return fmt.Errorf("write %d insert %s: %w", i, w.Key, err)
				}
			case OpUpdate:
				res := tx.Model(w.Record).Select("*").Where("id = ?", w.Key.ID).Updates(w.Record)
				if res.Error != nil {
					return fmt.Errorf("write %d update %s: %w", i, w.Key, res.Error)
				}
				if res.RowsAffected == 0 {
					return fmt.Errorf("write %d: update of missing %s", i, w.Key)
				}
			}
		}
		return nil
	})
	if err != nil {
		s.log.Warn("batch rolled back", "writes", len(writes), "error", err)
		return Failure("apply", err)
	}
	return nil
}

func (s *GormStore) MaxID(ctx context.Context, t domain.EntityType) (int64, error) {
	rec, err := domain.NewRecord(t)
	if err != nil {
		return 0, err
	}
	var highest int64
	if err := s.db.WithContext(ctx).Model(rec).Select("COALESCE(MAX(id), 0)").Scan(&highest).Error; err != nil {
		return 0, fmt.Errorf("max id %s: %w", t, err)
	}
	return highest, nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
