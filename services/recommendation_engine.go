package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/livioochertes/DiscountDining-sub003/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// CacheWindow is the soft cache-hit criterion; ExpiresAt is the hard ceiling.
	CacheWindow       = 2 * time.Hour
	recommendationTTL = 24 * time.Hour

	historyPromptCap    = 20
	restaurantPromptCap = 20
	menuItemFetchCap    = 40
	menuItemPromptCap   = 30

	matchingItemsCap = 6
)

type RecommendationRequest struct {
	UserID             string
	MealType           string
	MaxRecommendations int
	IncludeRestaurants bool
	IncludeMenuItems   bool
}

// RecommendationEngine orchestrates the pipeline: cache check, profile and
// catalog assembly, the external scoring call, normalisation and persistence.
// All scoring is delegated to the provider; this code owns the data flow and
// the schema the rest of the app can rely on.
type RecommendationEngine struct {
	storage *DietaryStorage
	catalog *CatalogService
	cache   *RecommendationCache
	llm     ChatClient
	log     *zap.SugaredLogger
}

func NewRecommendationEngine(storage *DietaryStorage, catalog *CatalogService, cache *RecommendationCache, llm ChatClient, log *zap.SugaredLogger) *RecommendationEngine {
	return &RecommendationEngine{
		storage: storage,
		catalog: catalog,
		cache:   cache,
		llm:     llm,
		log:     log,
	}
}

func (e *RecommendationEngine) Generate(ctx context.Context, req RecommendationRequest) ([]models.Recommendation, error) {
	if req.MaxRecommendations <= 0 {
		req.MaxRecommendations = 10
	}
	runID := uuid.NewString()

	// Cache first, unconditionally: a fresh batch skips every external call.
	if recs := e.cache.Get(ctx, req.UserID); len(recs) > 0 {
		e.log.Infow("returning hot-cached recommendations", "run_id", runID, "count", len(recs))
		return truncateByScore(recs, req.MaxRecommendations), nil
	}
	recs, err := e.storage.CachedRecommendations(ctx, req.UserID, CacheWindow)
	if err != nil {
		e.log.Warnw("cache lookup failed, regenerating", "run_id", runID, "error", err)
	}
	if len(recs) > 0 {
		e.log.Infow("returning cached recommendations", "run_id", runID, "count", len(recs))
		return truncateByScore(recs, req.MaxRecommendations), nil
	}

	// A missing or unreadable profile must never block generation.
	profile, err := e.storage.GetProfile(ctx, req.UserID)
	if err != nil {
		e.log.Warnw("profile lookup failed, using defaults", "run_id", runID, "error", err)
	}
	if profile == nil {
		profile = defaultProfile(req.UserID)
	}

	var (
		history     []models.MealHistoryEntry
		restaurants []models.Restaurant
		menuItems   []EligibleMenuItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		history, err = e.storage.MealHistory(gctx, req.UserID, historyPromptCap)
		return err
	})
	g.Go(func() error {
		var err error
		restaurants, err = e.catalog.AvailableRestaurants(gctx)
		return err
	})
	if req.IncludeMenuItems {
		g.Go(func() error {
			var err error
			menuItems, err = e.catalog.AvailableMenuItems(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to generate recommendations: %w", err)
	}

	if len(restaurants) > restaurantPromptCap {
		restaurants = restaurants[:restaurantPromptCap]
	}
	if len(menuItems) > menuItemFetchCap {
		menuItems = menuItems[:menuItemFetchCap]
	}

	system := buildSystemPrompt(profile, history, req)
	user := buildUserPrompt(restaurants, menuItems, req)

	raw, err := e.llm.CompleteJSON(ctx, system, user)
	if err != nil {
		e.log.Errorw("scoring call failed", "run_id", runID, "error", err)
		return nil, fmt.Errorf("failed to generate recommendations: %w", err)
	}

	out := normalizeRecommendations(raw)
	now := time.Now()
	for i := range out {
		out[i].UserID = req.UserID
		out[i].AIModelVersion = e.llm.Model()
		out[i].CreatedAt = now
		out[i].ExpiresAt = now.Add(recommendationTTL)
	}

	if err := e.storage.StoreRecommendations(ctx, req.UserID, out); err != nil {
		return nil, err
	}
	e.cache.Set(ctx, req.UserID, out)

	e.log.Infow("generated recommendations", "run_id", runID, "count", len(out))
	return truncateByScore(out, req.MaxRecommendations), nil
}

// defaultProfile is substituted when a user has never filled one in.
func defaultProfile(userID string) *models.DietaryProfile {
	calories := 2000
	return &models.DietaryProfile{
		UserID:              userID,
		ActivityLevel:       "moderate",
		HealthGoal:          "maintain",
		CalorieTarget:       &calories,
		BudgetRange:         "medium",
		DiningFrequency:     "weekly",
		DietaryPreferences:  []string{},
		Allergies:           []string{},
		FoodIntolerances:    []string{},
		DislikedIngredients: []string{},
		PreferredCuisines:   []string{},
		HealthConditions:    []string{},
	}
}

// truncateByScore re-sorts before truncating: the provider does not guarantee
// order, and "top N" should actually mean the N highest-scored.
func truncateByScore(recs []models.Recommendation, max int) []models.Recommendation {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > max {
		recs = recs[:max]
	}
	return recs
}

// ---------- Prompt assembly ----------

func buildSystemPrompt(profile *models.DietaryProfile, history []models.MealHistoryEntry, req RecommendationRequest) string {
	var sb strings.Builder
	sb.WriteString("You are an AI dietary recommendation engine. Generate personalized restaurant/menu recommendations based on user profile.\n\n")

	sb.WriteString(fmt.Sprintf(
		"User Profile: Health Goal: %s | Diet: %s | Allergies: %s | Intolerances: %s | Conditions: %s | Activity: %s | Calories: %s | Budget: %s | Cuisines: %s\n\n",
		orDefault(profile.HealthGoal, "general_health"),
		joinOr(profile.DietaryPreferences, "none"),
		joinOr(profile.Allergies, "none"),
		joinOr(profile.FoodIntolerances, "none"),
		joinOr(profile.HealthConditions, "none"),
		orDefault(profile.ActivityLevel, "moderate"),
		intOrDefault(profile.CalorieTarget, "unspecified"),
		orDefault(profile.BudgetRange, "medium"),
		joinOr(profile.PreferredCuisines, "open"),
	))

	sb.WriteString(fmt.Sprintf("Context: Meal Type: %s | Include Restaurants: %t | Include Menu Items: %t\n",
		orDefault(req.MealType, "any"), req.IncludeRestaurants, req.IncludeMenuItems))

	if len(history) > 0 {
		sb.WriteString("\nRecent meals:\n")
		for _, h := range history {
			line := fmt.Sprintf("- %s", orDefault(h.MealType, "meal"))
			if h.SatisfactionRating != nil {
				line += fmt.Sprintf(", satisfaction %d/5", *h.SatisfactionRating)
			}
			if h.WouldOrderAgain != nil && *h.WouldOrderAgain {
				line += ", would order again"
			}
			if h.Notes != "" {
				line += ", notes: " + h.Notes
			}
			sb.WriteString(line + "\n")
		}
	}

	sb.WriteString(`
Respond in JSON format:
{
  "recommendations": [
    {
      "type": "restaurant",
      "targetId": 123,
      "score": 0.85,
      "reasoning": ["Brief reason 1", "Brief reason 2"],
      "nutritionalHighlights": ["Highlight 1", "Highlight 2"],
      "cautionaryNotes": ["Note if any"],
      "nutritionalMatch": 0.8,
      "preferenceMatch": 0.9,
      "healthGoalAlignment": 0.85
    }
  ]
}

All scores 0-1, arrays contain strings only.`)

	return sb.String()
}

func buildUserPrompt(restaurants []models.Restaurant, menuItems []EligibleMenuItem, req RecommendationRequest) string {
	var sb strings.Builder
	sb.WriteString("Based on the user profile and meal history above, please recommend the most suitable options from these available choices:\n")

	if req.IncludeRestaurants {
		sb.WriteString("\nAVAILABLE RESTAURANTS:\n")
		for _, r := range restaurants {
			sb.WriteString(fmt.Sprintf("- ID: %d, Name: %s, Cuisine: %s, Price: %s, Features: %s, Health-focused: %t, Rating: %.1f\n",
				r.ID, r.Name, r.Cuisine, r.PriceRange, joinOr(r.Features, "none"), r.HealthFocused, r.Rating))
		}
	}

	if req.IncludeMenuItems {
		sb.WriteString("\nAVAILABLE MENU ITEMS:\n")
		items := menuItems
		if len(items) > menuItemPromptCap { // keep the prompt inside token limits
			items = items[:menuItemPromptCap]
		}
		for _, item := range items {
			sb.WriteString(fmt.Sprintf("- ID: %d, Name: %s, Restaurant: %s, Category: %s, Price: €%.2f, Ingredients: %s, Dietary Tags: %s, Calories: %s, Allergens: %s\n",
				item.ID, item.Name, item.RestaurantName, item.Category, item.Price,
				joinOr(item.Ingredients, "not listed"), joinOr(item.DietaryTags, "none"),
				intOrDefault(item.Calories, "not listed"), joinOr(item.Allergens, "none")))
		}
	}

	sb.WriteString("\nPlease provide up to 10 personalized recommendations that best match the user's profile, preferences, and health goals.")
	return sb.String()
}

func joinOr(list []string, fallback string) string {
	if len(list) == 0 {
		return fallback
	}
	return strings.Join(list, ", ")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func intOrDefault(v *int, fallback string) string {
	if v == nil {
		return fallback
	}
	return fmt.Sprintf("%d", *v)
}

// ---------- Response normalisation ----------

// normalizeRecommendations coerces the provider's untrusted JSON into the
// canonical record shape. It is total: whatever bytes come in, the result is
// a non-nil slice whose records all carry in-range scores and non-nil lists.
func normalizeRecommendations(raw []byte) []models.Recommendation {
	var list []any

	var envelope map[string]any
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if arr, ok := envelope["recommendations"].([]any); ok {
			list = arr
		}
	} else if err := json.Unmarshal(raw, &list); err != nil {
		return []models.Recommendation{}
	}

	out := make([]models.Recommendation, 0, len(list))
	for _, item := range list {
		rec, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, normalizeRecord(rec))
	}
	return out
}

func normalizeRecord(rec map[string]any) models.Recommendation {
	recType, _ := rec["type"].(string)
	if recType != models.RecommendationTypeMenuItem {
		recType = models.RecommendationTypeRestaurant
	}
	return models.Recommendation{
		Type:                recType,
		TargetID:            intField(rec, 0, "targetId", "target_id", "id"),
		Score:               clamp01(floatField(rec, 0.7, "score", "recommendation_score")),
		NutritionalMatch:    clamp01(floatField(rec, 0.7, "nutritionalMatch", "nutritional_match")),
		PreferenceMatch:     clamp01(floatField(rec, 0.7, "preferenceMatch", "preference_match")),
		HealthGoalAlignment: clamp01(floatField(rec, 0.7, "healthGoalAlignment", "health_goal_alignment")),
		Reasoning:           stringListField(rec, []string{"AI recommendation"}, "reasoning"),
		NutritionalHighlights: stringListField(rec,
			[]string{"Nutritional analysis pending"}, "nutritionalHighlights", "nutritional_highlights"),
		CautionaryNotes: stringListField(rec, []string{}, "cautionaryNotes", "cautionary_notes"),
	}
}

func floatField(rec map[string]any, def float64, keys ...string) float64 {
	for _, key := range keys {
		if v, ok := rec[key].(float64); ok {
			return v
		}
	}
	return def
}

func intField(rec map[string]any, def int, keys ...string) int {
	for _, key := range keys {
		if v, ok := rec[key].(float64); ok {
			return int(v)
		}
	}
	return def
}

// stringListField accepts an array under any of the keys, or a bare string,
// which gets wrapped into a one-element list.
func stringListField(rec map[string]any, def []string, keys ...string) []string {
	for _, key := range keys {
		switch v := rec[key].(type) {
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case string:
			return []string{v}
		}
	}
	return def
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ---------- Rule-based per-restaurant matching ----------

// ScoredMenuItem is a menu item annotated with its profile match score.
type ScoredMenuItem struct {
	models.MenuItem
	MatchScore int `json:"matchScore"`
}

// MatchingMenuItems ranks one restaurant's available items against the stored
// profile without any external call. Items containing a profile allergen are
// excluded outright; everything else is scored on tags, calories and cuisine.
func (e *RecommendationEngine) MatchingMenuItems(ctx context.Context, userID string, restaurantID uint) ([]ScoredMenuItem, error) {
	items, err := e.catalog.MenuItemsByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	profile, err := e.storage.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if profile == nil {
		out := make([]ScoredMenuItem, 0, matchingItemsCap)
		for _, item := range items {
			if len(out) == matchingItemsCap {
				break
			}
			out = append(out, ScoredMenuItem{MenuItem: item})
		}
		return out, nil
	}

	userAllergies := lowerAll(profile.Allergies)
	prefCuisines := lowerAll(profile.PreferredCuisines)

	scored := make([]ScoredMenuItem, 0, len(items))
	for _, item := range items {
		tags := lowerAll(item.DietaryTags)
		allergens := lowerAll(item.Allergens)

		if anyOverlap(userAllergies, allergens) {
			continue
		}

		score := 0
		for _, pref := range profile.DietaryPreferences {
			p := strings.ToLower(pref)
			if containsMatch(tags, p) {
				score += 3
				break
			}
		}

		if profile.CalorieTarget != nil && *profile.CalorieTarget > 0 && item.Calories != nil {
			target := float64(*profile.CalorieTarget) / 3
			diff := abs(float64(*item.Calories)-target) / target
			if diff < 0.2 {
				score += 2
			} else if diff < 0.4 {
				score++
			}
		}

		category := strings.ToLower(item.Category)
		for _, cuisine := range prefCuisines {
			if cuisine != "" && strings.Contains(category, cuisine) {
				score++
				break
			}
		}

		if contains(tags, "healthy") || contains(tags, "light") || contains(tags, "fresh") {
			score++
		}

		scored = append(scored, ScoredMenuItem{MenuItem: item, MatchScore: score})
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].MatchScore > scored[j].MatchScore })
	if len(scored) > matchingItemsCap {
		scored = scored[:matchingItemsCap]
	}
	return scored, nil
}

func lowerAll(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, strings.ToLower(s))
	}
	return out
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// containsMatch reports whether any list element equals or contains s.
func containsMatch(list []string, s string) bool {
	for _, item := range list {
		if item == s || strings.Contains(item, s) {
			return true
		}
	}
	return false
}

func anyOverlap(a, b []string) bool {
	for _, s := range a {
		if contains(b, s) {
			return true
		}
	}
	return false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
