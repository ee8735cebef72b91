package database

import (
	"fmt"
	"testing"

	"gorm.io/gorm"
)

func openTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", name)
	db, err := Open(Config{DSN: dsn, AutoMigrate: true})
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}

	return db
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return openTestDB(t, t.Name())
}
