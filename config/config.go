package config

import (
	"fmt"
	"log"
	"os"

	"github.com/livioochertes/DiscountDining-sub003/models"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}
}

func InitDB(logger *zap.SugaredLogger) *gorm.DB {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		logger.Fatalw("failed to connect to database", "error", err)
	}

	if err := db.AutoMigrate(
		&models.DietaryProfile{},
		&models.MealHistoryEntry{},
		&models.Recommendation{},
		&models.Restaurant{},
		&models.MenuItem{},
	); err != nil {
		logger.Fatalw("automigrate failed", "error", err)
	}

	return db
}
