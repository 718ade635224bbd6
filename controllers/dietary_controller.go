// controllers/dietary_controller.go
package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/livioochertes/DiscountDining-sub003/models"
	"github.com/livioochertes/DiscountDining-sub003/services"
	"github.com/livioochertes/DiscountDining-sub003/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// DietaryController maps the /api/dietary surface onto the engine and stores.
// It is the only place that decides HTTP status codes: validation errors are
// 400, missing identity 401, generation/write failures 500, and read-path
// failures are logged and converted into empty results.
type DietaryController struct {
	Engine  *services.RecommendationEngine
	Storage *services.DietaryStorage
	Catalog *services.CatalogService
	Log     *zap.SugaredLogger
}

func NewDietaryController(engine *services.RecommendationEngine, storage *services.DietaryStorage, catalog *services.CatalogService, log *zap.SugaredLogger) *DietaryController {
	return &DietaryController{Engine: engine, Storage: storage, Catalog: catalog, Log: log}
}

// GET /api/dietary/profile
func (h *DietaryController) GetProfile(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	profile, err := h.Storage.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.Log.Errorw("fetching dietary profile failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch dietary profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

type dietaryProfileRequest struct {
	Age           *int     `json:"age" binding:"omitempty,gte=13,lte=120"`
	Height        *float64 `json:"height" binding:"omitempty,gt=0"`
	Weight        *float64 `json:"weight" binding:"omitempty,gt=0"`
	Gender        *string  `json:"gender"`
	ActivityLevel *string  `json:"activityLevel"`
	HealthGoal    *string  `json:"healthGoal"`
	TargetWeight  *float64 `json:"targetWeight" binding:"omitempty,gt=0"`

	DietaryPreferences  []string `json:"dietaryPreferences"`
	Allergies           []string `json:"allergies"`
	FoodIntolerances    []string `json:"foodIntolerances"`
	DislikedIngredients []string `json:"dislikedIngredients"`
	PreferredCuisines   []string `json:"preferredCuisines"`
	HealthConditions    []string `json:"healthConditions"`
	Medications         []string `json:"medications"`

	CalorieTarget *int `json:"calorieTarget" binding:"omitempty,gt=0"`
	ProteinTarget *int `json:"proteinTarget" binding:"omitempty,gt=0"`
	CarbTarget    *int `json:"carbTarget" binding:"omitempty,gt=0"`
	FatTarget     *int `json:"fatTarget" binding:"omitempty,gt=0"`

	BudgetRange     *string `json:"budgetRange" binding:"omitempty,oneof=low medium high"`
	DiningFrequency *string `json:"diningFrequency" binding:"omitempty,oneof=daily weekly monthly"`
}

// POST /api/dietary/profile — creates on first save, partial-updates after.
func (h *DietaryController) SaveProfile(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var req dietaryProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid profile data", "error": err.Error()})
		return
	}

	existing, err := h.Storage.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.Log.Errorw("profile lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save dietary profile"})
		return
	}

	if existing != nil {
		err = h.Storage.UpdateProfile(c.Request.Context(), userID, req.updates())
	} else {
		err = h.Storage.CreateProfile(c.Request.Context(), req.toProfile(userID))
	}
	if err != nil {
		h.Log.Errorw("saving dietary profile failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save dietary profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Dietary profile saved successfully"})
}

func (r *dietaryProfileRequest) toProfile(userID string) *models.DietaryProfile {
	profile := &models.DietaryProfile{
		UserID:              userID,
		Age:                 r.Age,
		Height:              r.Height,
		Weight:              r.Weight,
		TargetWeight:        r.TargetWeight,
		DietaryPreferences:  datatypes.JSONSlice[string](r.DietaryPreferences),
		Allergies:           datatypes.JSONSlice[string](r.Allergies),
		FoodIntolerances:    datatypes.JSONSlice[string](r.FoodIntolerances),
		DislikedIngredients: datatypes.JSONSlice[string](r.DislikedIngredients),
		PreferredCuisines:   datatypes.JSONSlice[string](r.PreferredCuisines),
		HealthConditions:    datatypes.JSONSlice[string](r.HealthConditions),
		Medications:         datatypes.JSONSlice[string](r.Medications),
		CalorieTarget:       r.CalorieTarget,
		ProteinTarget:       r.ProteinTarget,
		CarbTarget:          r.CarbTarget,
		FatTarget:           r.FatTarget,
	}
	if r.Gender != nil {
		profile.Gender = *r.Gender
	}
	if r.ActivityLevel != nil {
		profile.ActivityLevel = *r.ActivityLevel
	}
	if r.HealthGoal != nil {
		profile.HealthGoal = *r.HealthGoal
	}
	if r.BudgetRange != nil {
		profile.BudgetRange = *r.BudgetRange
	}
	if r.DiningFrequency != nil {
		profile.DiningFrequency = *r.DiningFrequency
	}
	return profile
}

// updates returns only the columns the request actually carried.
func (r *dietaryProfileRequest) updates() map[string]interface{} {
	updates := map[string]interface{}{}
	if r.Age != nil {
		updates["age"] = *r.Age
	}
	if r.Height != nil {
		updates["height"] = *r.Height
	}
	if r.Weight != nil {
		updates["weight"] = *r.Weight
	}
	if r.Gender != nil {
		updates["gender"] = *r.Gender
	}
	if r.ActivityLevel != nil {
		updates["activity_level"] = *r.ActivityLevel
	}
	if r.HealthGoal != nil {
		updates["health_goal"] = *r.HealthGoal
	}
	if r.TargetWeight != nil {
		updates["target_weight"] = *r.TargetWeight
	}
	if r.DietaryPreferences != nil {
		updates["dietary_preferences"] = datatypes.JSONSlice[string](r.DietaryPreferences)
	}
	if r.Allergies != nil {
		updates["allergies"] = datatypes.JSONSlice[string](r.Allergies)
	}
	if r.FoodIntolerances != nil {
		updates["food_intolerances"] = datatypes.JSONSlice[string](r.FoodIntolerances)
	}
	if r.DislikedIngredients != nil {
		updates["disliked_ingredients"] = datatypes.JSONSlice[string](r.DislikedIngredients)
	}
	if r.PreferredCuisines != nil {
		updates["preferred_cuisines"] = datatypes.JSONSlice[string](r.PreferredCuisines)
	}
	if r.HealthConditions != nil {
		updates["health_conditions"] = datatypes.JSONSlice[string](r.HealthConditions)
	}
	if r.Medications != nil {
		updates["medications"] = datatypes.JSONSlice[string](r.Medications)
	}
	if r.CalorieTarget != nil {
		updates["calorie_target"] = *r.CalorieTarget
	}
	if r.ProteinTarget != nil {
		updates["protein_target"] = *r.ProteinTarget
	}
	if r.CarbTarget != nil {
		updates["carb_target"] = *r.CarbTarget
	}
	if r.FatTarget != nil {
		updates["fat_target"] = *r.FatTarget
	}
	if r.BudgetRange != nil {
		updates["budget_range"] = *r.BudgetRange
	}
	if r.DiningFrequency != nil {
		updates["dining_frequency"] = *r.DiningFrequency
	}
	return updates
}

// POST /api/dietary/recommendations — triggers the full generation pipeline.
func (h *DietaryController) GenerateRecommendations(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var body struct {
		MealType           string `json:"mealType" binding:"omitempty,oneof=breakfast lunch dinner snack"`
		MaxRecommendations int    `json:"maxRecommendations" binding:"omitempty,gte=1,lte=50"`
		IncludeRestaurants *bool  `json:"includeRestaurants"`
		IncludeMenuItems   *bool  `json:"includeMenuItems"`
	}
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request", "error": err.Error()})
		return
	}

	recs, err := h.Engine.Generate(c.Request.Context(), services.RecommendationRequest{
		UserID:             userID,
		MealType:           body.MealType,
		MaxRecommendations: body.MaxRecommendations,
		IncludeRestaurants: body.IncludeRestaurants == nil || *body.IncludeRestaurants,
		IncludeMenuItems:   body.IncludeMenuItems == nil || *body.IncludeMenuItems,
	})
	if err != nil {
		h.Log.Errorw("generating recommendations failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

type enrichedRecommendation struct {
	models.Recommendation
	Restaurant *models.Restaurant `json:"restaurant,omitempty"`
	MenuItem   *models.MenuItem   `json:"menuItem,omitempty"`
}

// GET /api/dietary/recommendations?limit= — reads stored records and enriches
// them with live catalog detail. Any internal failure degrades to an empty
// list: for this endpoint an empty state is better UX than a 500.
func (h *DietaryController) GetRecommendations(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		limit = 10
	}

	recs, err := h.Storage.StoredRecommendations(c.Request.Context(), userID, limit)
	if err != nil {
		h.Log.Errorw("fetching stored recommendations failed", "error", err)
		c.JSON(http.StatusOK, gin.H{"recommendations": []enrichedRecommendation{}})
		return
	}

	// Auto-generate on first visit rather than returning an empty page.
	if len(recs) == 0 {
		generated, genErr := h.Engine.Generate(c.Request.Context(), services.RecommendationRequest{
			UserID:             userID,
			MaxRecommendations: limit,
			IncludeRestaurants: true,
			IncludeMenuItems:   true,
		})
		if genErr != nil {
			h.Log.Warnw("auto-generation failed", "error", genErr)
		} else {
			recs = generated
		}
	}

	enriched := make([]enrichedRecommendation, 0, len(recs))
	for _, rec := range recs {
		enriched = append(enriched, h.enrich(c, rec))
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": enriched})
}

// enrich attaches live restaurant/menu-item detail. A failed lookup for one
// record must not fail the whole response.
func (h *DietaryController) enrich(c *gin.Context, rec models.Recommendation) enrichedRecommendation {
	out := enrichedRecommendation{Recommendation: rec}
	if rec.TargetID <= 0 {
		return out
	}

	ctx := c.Request.Context()
	switch rec.Type {
	case models.RecommendationTypeRestaurant:
		restaurant, err := h.Catalog.RestaurantByID(ctx, uint(rec.TargetID))
		if err != nil {
			h.Log.Warnw("restaurant enrichment failed", "target_id", rec.TargetID, "error", err)
			return out
		}
		out.Restaurant = restaurant
	case models.RecommendationTypeMenuItem:
		item, err := h.Catalog.MenuItemByID(ctx, uint(rec.TargetID))
		if err != nil {
			h.Log.Warnw("menu item enrichment failed", "target_id", rec.TargetID, "error", err)
			return out
		}
		out.MenuItem = item
		if restaurant, err := h.Catalog.RestaurantByID(ctx, item.RestaurantID); err == nil {
			out.Restaurant = restaurant
		}
	}
	return out
}

// GET /api/dietary/restaurant-recommendations?mealType=
func (h *DietaryController) RestaurantRecommendations(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	recs, err := h.Engine.Generate(c.Request.Context(), services.RecommendationRequest{
		UserID:             userID,
		MealType:           c.Query("mealType"),
		MaxRecommendations: 5,
		IncludeRestaurants: true,
		IncludeMenuItems:   false,
	})
	if err != nil {
		h.Log.Errorw("generating restaurant recommendations failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate restaurant recommendations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": filterByType(recs, models.RecommendationTypeRestaurant)})
}

// GET /api/dietary/menu-recommendations?mealType=&restaurantId=
func (h *DietaryController) MenuRecommendations(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	recs, err := h.Engine.Generate(c.Request.Context(), services.RecommendationRequest{
		UserID:             userID,
		MealType:           c.Query("mealType"),
		MaxRecommendations: 10,
		IncludeRestaurants: false,
		IncludeMenuItems:   true,
	})
	if err != nil {
		h.Log.Errorw("generating menu recommendations failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate menu recommendations"})
		return
	}

	menuRecs := filterByType(recs, models.RecommendationTypeMenuItem)

	// Optional restaurant scoping: keep only items we can verify belong there.
	if raw := c.Query("restaurantId"); raw != "" {
		restaurantID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || restaurantID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid restaurant ID"})
			return
		}
		scoped := make([]models.Recommendation, 0, len(menuRecs))
		for _, rec := range menuRecs {
			item, err := h.Catalog.MenuItemByID(c.Request.Context(), uint(rec.TargetID))
			if err != nil || item.RestaurantID != uint(restaurantID) {
				continue
			}
			scoped = append(scoped, rec)
		}
		menuRecs = scoped
	}

	c.JSON(http.StatusOK, gin.H{"recommendations": menuRecs})
}

// GET /api/dietary/restaurant/:restaurantId/matching-items
func (h *DietaryController) MatchingMenuItems(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	restaurantID, err := strconv.ParseUint(c.Param("restaurantId"), 10, 32)
	if err != nil || restaurantID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid restaurant ID"})
		return
	}

	items, err := h.Engine.MatchingMenuItems(c.Request.Context(), userID, uint(restaurantID))
	if err != nil {
		h.Log.Errorw("matching menu items failed", "restaurant_id", restaurantID, "error", err)
		c.JSON(http.StatusOK, gin.H{"items": []services.ScoredMenuItem{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// POST /api/dietary/meal-history — append-only.
func (h *DietaryController) RecordMealHistory(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var body struct {
		RestaurantID       *uint  `json:"restaurantId"`
		MenuItemID         *uint  `json:"menuItemId"`
		MealType           string `json:"mealType" binding:"omitempty,oneof=breakfast lunch dinner snack"`
		SatisfactionRating *int   `json:"satisfactionRating" binding:"omitempty,gte=1,lte=5"`
		TasteRating        *int   `json:"tasteRating" binding:"omitempty,gte=1,lte=5"`
		HealthinessRating  *int   `json:"healthinessRating" binding:"omitempty,gte=1,lte=5"`
		Notes              string `json:"notes"`
		WouldOrderAgain    *bool  `json:"wouldOrderAgain"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid meal data", "error": err.Error()})
		return
	}

	entry := &models.MealHistoryEntry{
		UserID:             userID,
		RestaurantID:       body.RestaurantID,
		MenuItemID:         body.MenuItemID,
		MealType:           body.MealType,
		MealDate:           time.Now(),
		SatisfactionRating: body.SatisfactionRating,
		TasteRating:        body.TasteRating,
		HealthinessRating:  body.HealthinessRating,
		Notes:              body.Notes,
		WouldOrderAgain:    body.WouldOrderAgain,
	}
	if err := h.Storage.RecordMealHistory(c.Request.Context(), entry); err != nil {
		h.Log.Errorw("recording meal history failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to record meal history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Meal history recorded successfully"})
}

// POST /api/dietary/bmi — pure computation, no auth required.
func (h *DietaryController) CalculateBMI(c *gin.Context) {
	var body struct {
		Weight float64 `json:"weight"`
		Height float64 `json:"height"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Weight <= 0 || body.Height <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Valid weight and height are required"})
		return
	}

	result, err := utils.CalculateBMI(body.Weight, body.Height)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// --- helpers ---

func filterByType(recs []models.Recommendation, recType string) []models.Recommendation {
	out := make([]models.Recommendation, 0, len(recs))
	for _, rec := range recs {
		if rec.Type == recType {
			out = append(out, rec)
		}
	}
	return out
}

func userIDFromCtx(c *gin.Context) (string, bool) {
	v, ok := c.Get("userID")
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
