package db

import (
	"fmt"
	"sync/atomic"

	puresqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testSeq atomic.Int64

// NewTest opens an isolated in-memory sqlite database. Each call gets its own
// schema; a single connection keeps the shared-cache database alive.
func NewTest() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:salesdash_test_%d?mode=memory&cache=shared", testSeq.Add(1))
	conn, err := gorm.Open(puresqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return conn, nil
}
