package recorder

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SQLite stores rows in the frames table of a SQLite database.
type SQLite struct {
	path string
	db   *gorm.DB
}

func NewSQLite(path string) *SQLite {
	return &SQLite{path: path}
}

func (s *SQLite) Init() error {
	db, err := gorm.Open(sqlite.Open(s.path), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		CreateBatchSize:        500,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return fmt.Errorf("open recording database: %w", err)
	}

	err = db.AutoMigrate(&Row{})
	if err != nil {
		return fmt.Errorf("migrate recording schema: %w", err)
	}

	s.db = db

	return nil
}

func (s *SQLite) Record(row *Row) error {
	if s.db == nil {
		return fmt.Errorf("record frame: backend not initialised")
	}

	err := s.db.Create(row).Error
	if err != nil {
		return fmt.Errorf("insert frame: %w", err)
	}

	return nil
}

// DB exposes the underlying connection for queries over a recording
func (s *SQLite) DB() *gorm.DB {
	return s.db
}

func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}

	s.db = nil

	return sqlDB.Close()
}
