package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/livioochertes/DiscountDining-sub003/controllers"
	"github.com/livioochertes/DiscountDining-sub003/models"
	"github.com/livioochertes/DiscountDining-sub003/routes"
	"github.com/livioochertes/DiscountDining-sub003/services"
	"github.com/livioochertes/DiscountDining-sub003/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeChat struct {
	response []byte
	err      error
	calls    int
}

func (f *fakeChat) CompleteJSON(_ context.Context, _, _ string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func (f *fakeChat) Model() string { return "fake-model" }

func setupTestApp(t *testing.T, llm services.ChatClient) (*gin.Engine, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.DietaryProfile{},
		&models.MealHistoryEntry{},
		&models.Recommendation{},
		&models.Restaurant{},
		&models.MenuItem{},
	))

	log := zap.NewNop().Sugar()
	storage := services.NewDietaryStorage(db, log)
	catalog := services.NewCatalogService(db)
	cache := services.NewRecommendationCache(nil, log, services.CacheWindow)
	engine := services.NewRecommendationEngine(storage, catalog, cache, llm, log)
	ctrl := controllers.NewDietaryController(engine, storage, catalog, log)

	return routes.SetupRouter(ctrl), db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := utils.GenerateJWT(userID)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBMIEndpoint(t *testing.T) {
	r, _ := setupTestApp(t, &fakeChat{})

	w := doJSON(t, r, http.MethodPost, "/api/dietary/bmi", "", gin.H{"weight": 80, "height": 170})
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		BMI             float64  `json:"bmi"`
		Category        string   `json:"category"`
		Recommendations []string `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.InDelta(t, 27.7, result.BMI, 0.05)
	assert.Equal(t, "overweight", result.Category)
	assert.NotEmpty(t, result.Recommendations)
}

func TestBMIEndpoint_RejectsInvalidInput(t *testing.T) {
	r, _ := setupTestApp(t, &fakeChat{})

	w := doJSON(t, r, http.MethodPost, "/api/dietary/bmi", "", gin.H{"weight": 0, "height": 170})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	r, _ := setupTestApp(t, &fakeChat{})

	w := doJSON(t, r, http.MethodGet, "/api/dietary/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/dietary/recommendations", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSaveProfile_CreateThenPartialUpdate(t *testing.T) {
	r, _ := setupTestApp(t, &fakeChat{})

	w := doJSON(t, r, http.MethodPost, "/api/dietary/profile", "u1", gin.H{
		"healthGoal": "lose_weight",
		"allergies":  []string{"shellfish"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Second save only touches the goal; allergies must survive.
	w = doJSON(t, r, http.MethodPost, "/api/dietary/profile", "u1", gin.H{
		"healthGoal": "maintain",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/dietary/profile", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var profile models.DietaryProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "maintain", profile.HealthGoal)
	assert.Equal(t, []string{"shellfish"}, []string(profile.Allergies))
}

func TestSaveProfile_ValidationError(t *testing.T) {
	r, _ := setupTestApp(t, &fakeChat{})

	w := doJSON(t, r, http.MethodPost, "/api/dietary/profile", "u1", gin.H{"age": 7})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateRecommendationsEndpoint(t *testing.T) {
	fake := &fakeChat{response: []byte(`{"recommendations":[
		{"type":"restaurant","targetId":1,"score":0.9},
		{"type":"menu_item","targetId":2,"score":0.6}]}`)}
	r, _ := setupTestApp(t, fake)

	w := doJSON(t, r, http.MethodPost, "/api/dietary/recommendations", "u1", gin.H{})
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Recommendations []models.Recommendation `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Recommendations, 2)
	assert.Equal(t, 1, fake.calls)
	assert.InDelta(t, 0.9, out.Recommendations[0].Score, 1e-9)
}

func TestGenerateRecommendationsEndpoint_ProviderFailure(t *testing.T) {
	fake := &fakeChat{err: fmt.Errorf("provider down")}
	r, _ := setupTestApp(t, fake)

	w := doJSON(t, r, http.MethodPost, "/api/dietary/recommendations", "u1", gin.H{})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "failed to generate recommendations")
}

func TestGetRecommendations_EnrichmentResilience(t *testing.T) {
	r, db := setupTestApp(t, &fakeChat{})
	now := time.Now()

	require.NoError(t, db.Create(&models.Restaurant{
		Name: "Known Spot", IsActive: true, IsApproved: true,
	}).Error)

	recs := []models.Recommendation{
		{
			UserID: "u1", Type: models.RecommendationTypeRestaurant, TargetID: 1,
			Score: 0.9, Reasoning: []string{"x"}, NutritionalHighlights: []string{"x"},
			CautionaryNotes: []string{}, CreatedAt: now, ExpiresAt: now.Add(20 * time.Hour),
		},
		{
			// Dangling reference: the menu item was deleted after generation.
			UserID: "u1", Type: models.RecommendationTypeMenuItem, TargetID: 999,
			Score: 0.8, Reasoning: []string{"x"}, NutritionalHighlights: []string{"x"},
			CautionaryNotes: []string{}, CreatedAt: now, ExpiresAt: now.Add(20 * time.Hour),
		},
	}
	require.NoError(t, db.Create(&recs).Error)

	w := doJSON(t, r, http.MethodGet, "/api/dietary/recommendations", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Recommendations []struct {
			models.Recommendation
			Restaurant *models.Restaurant `json:"restaurant"`
			MenuItem   *models.MenuItem   `json:"menuItem"`
		} `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Recommendations, 2, "one broken enrichment must not drop the batch")

	assert.NotNil(t, out.Recommendations[0].Restaurant)
	assert.Equal(t, "Known Spot", out.Recommendations[0].Restaurant.Name)
	assert.Nil(t, out.Recommendations[1].MenuItem)
}

func TestGetRecommendations_AutoGeneratesWhenEmpty(t *testing.T) {
	fake := &fakeChat{response: []byte(`{"recommendations":[{"type":"restaurant","targetId":1,"score":0.9}]}`)}
	r, _ := setupTestApp(t, fake)

	w := doJSON(t, r, http.MethodGet, "/api/dietary/recommendations", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Recommendations []json.RawMessage `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Len(t, out.Recommendations, 1)
	assert.Equal(t, 1, fake.calls)
}

func TestGetRecommendations_ReadFailureReturnsEmptyList(t *testing.T) {
	r, db := setupTestApp(t, &fakeChat{err: fmt.Errorf("must not be called")})

	// Simulate a broken read path.
	require.NoError(t, db.Migrator().DropTable(&models.Recommendation{}))

	w := doJSON(t, r, http.MethodGet, "/api/dietary/recommendations", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"recommendations":[]}`, w.Body.String())
}

func TestRecordMealHistoryEndpoint(t *testing.T) {
	r, db := setupTestApp(t, &fakeChat{})

	w := doJSON(t, r, http.MethodPost, "/api/dietary/meal-history", "u1", gin.H{
		"mealType":           "dinner",
		"satisfactionRating": 5,
		"notes":              "great pasta",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.MealHistoryEntry{}).Where("user_id = ?", "u1").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRecordMealHistoryEndpoint_RejectsBadRating(t *testing.T) {
	r, _ := setupTestApp(t, &fakeChat{})

	w := doJSON(t, r, http.MethodPost, "/api/dietary/meal-history", "u1", gin.H{
		"satisfactionRating": 9,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMatchingMenuItemsEndpoint_InvalidID(t *testing.T) {
	r, _ := setupTestApp(t, &fakeChat{})

	w := doJSON(t, r, http.MethodGet, "/api/dietary/restaurant/abc/matching-items", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRestaurantRecommendationsEndpoint_FiltersType(t *testing.T) {
	fake := &fakeChat{response: []byte(`{"recommendations":[
		{"type":"restaurant","targetId":1,"score":0.9},
		{"type":"menu_item","targetId":2,"score":0.95}]}`)}
	r, _ := setupTestApp(t, fake)

	w := doJSON(t, r, http.MethodGet, "/api/dietary/restaurant-recommendations", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		Recommendations []models.Recommendation `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Recommendations, 1)
	assert.Equal(t, models.RecommendationTypeRestaurant, out.Recommendations[0].Type)
}
