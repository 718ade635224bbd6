package routes

import (
	"github.com/livioochertes/DiscountDining-sub003/controllers"
	"github.com/livioochertes/DiscountDining-sub003/middlewares"

	"github.com/gin-gonic/gin"
)

func SetupRouter(dietary *controllers.DietaryController) *gin.Engine {
	r := gin.Default()

	// Public: BMI is pure computation, no user identity involved.
	r.POST("/api/dietary/bmi", dietary.CalculateBMI)

	api := r.Group("/api/dietary")
	api.Use(middlewares.AuthMiddleware())
	{
		api.GET("/profile", dietary.GetProfile)
		api.POST("/profile", dietary.SaveProfile)

		api.POST("/recommendations", dietary.GenerateRecommendations)
		api.GET("/recommendations", dietary.GetRecommendations)
		api.GET("/restaurant-recommendations", dietary.RestaurantRecommendations)
		api.GET("/menu-recommendations", dietary.MenuRecommendations)
		api.GET("/restaurant/:restaurantId/matching-items", dietary.MatchingMenuItems)

		api.POST("/meal-history", dietary.RecordMealHistory)
	}

	return r
}
