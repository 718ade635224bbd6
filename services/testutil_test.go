package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/livioochertes/DiscountDining-sub003/models"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens a per-test in-memory sqlite database with the full schema.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.DietaryProfile{},
		&models.MealHistoryEntry{},
		&models.Recommendation{},
		&models.Restaurant{},
		&models.MenuItem{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// fakeChatClient stands in for the scoring provider and records every call.
type fakeChatClient struct {
	response   []byte
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (f *fakeChatClient) CompleteJSON(_ context.Context, system, user string) ([]byte, error) {
	f.calls++
	f.lastSystem = system
	f.lastUser = user
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeChatClient) Model() string { return "fake-model" }
