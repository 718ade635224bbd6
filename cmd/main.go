package main

import (
	"log"
	"os"

	"github.com/livioochertes/DiscountDining-sub003/config"
	"github.com/livioochertes/DiscountDining-sub003/controllers"
	"github.com/livioochertes/DiscountDining-sub003/routes"
	"github.com/livioochertes/DiscountDining-sub003/services"
)

func main() {
	config.LoadEnv()

	logger, err := config.NewLogger(os.Getenv("APP_ENV"))
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	db := config.InitDB(logger)
	rdb := config.InitRedis(logger)

	storage := services.NewDietaryStorage(db, logger)
	catalog := services.NewCatalogService(db)
	cache := services.NewRecommendationCache(rdb, logger, services.CacheWindow)
	engine := services.NewRecommendationEngine(storage, catalog, cache, services.NewOpenAIClient(), logger)

	dietary := controllers.NewDietaryController(engine, storage, catalog, logger)

	r := routes.SetupRouter(dietary)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		logger.Fatalw("server exited", "error", err)
	}
}
