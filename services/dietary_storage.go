package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/livioochertes/DiscountDining-sub003/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DietaryStorage owns the three dietary tables: profiles (one row per user),
// meal history (append-only log) and recommendations (expiring batches).
type DietaryStorage struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewDietaryStorage(db *gorm.DB, log *zap.SugaredLogger) *DietaryStorage {
	return &DietaryStorage{db: db, log: log}
}

// ---------- Profile ----------

// GetProfile returns nil, nil when the user has no profile yet.
func (s *DietaryStorage) GetProfile(ctx context.Context, userID string) (*models.DietaryProfile, error) {
	var profile models.DietaryProfile
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dietary profile: %w", err)
	}
	return &profile, nil
}

func (s *DietaryStorage) CreateProfile(ctx context.Context, profile *models.DietaryProfile) error {
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	if err := s.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create dietary profile: %w", err)
	}
	return nil
}

// UpdateProfile merges the given columns into the user's profile row.
// Absent fields are left untouched.
func (s *DietaryStorage) UpdateProfile(ctx context.Context, userID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	err := s.db.WithContext(ctx).
		Model(&models.DietaryProfile{}).
		Where("user_id = ?", userID).
		Updates(updates).Error
	if err != nil {
		return fmt.Errorf("failed to update dietary profile: %w", err)
	}
	return nil
}

// ---------- Meal history ----------

func (s *DietaryStorage) RecordMealHistory(ctx context.Context, entry *models.MealHistoryEntry) error {
	if entry.UserID == "" || entry.MealDate.IsZero() {
		return errors.New("meal history requires a user id and a meal date")
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record meal history: %w", err)
	}
	return nil
}

func (s *DietaryStorage) MealHistory(ctx context.Context, userID string, limit int) ([]models.MealHistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.MealHistoryEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("meal_date DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch meal history: %w", err)
	}
	return entries, nil
}

// ---------- Recommendations ----------

// CachedRecommendations applies the dual freshness condition: a row counts as
// a cache hit only while it is both recent (created inside the window) and not
// yet expired. Expiry always wins over recency.
func (s *DietaryStorage) CachedRecommendations(ctx context.Context, userID string, within time.Duration) ([]models.Recommendation, error) {
	now := time.Now()
	var recs []models.Recommendation
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ? AND expires_at >= ?", userID, now.Add(-within), now).
		Order("score DESC").
		Limit(10).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cached recommendations: %w", err)
	}
	return recs, nil
}

// StoredRecommendations returns unexpired rows regardless of how recently they
// were generated. An empty result is a valid state, not an error.
func (s *DietaryStorage) StoredRecommendations(ctx context.Context, userID string, limit int) ([]models.Recommendation, error) {
	if limit <= 0 {
		limit = 10
	}
	var recs []models.Recommendation
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND expires_at >= ?", userID, time.Now()).
		Order("score DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stored recommendations: %w", err)
	}
	return recs, nil
}

// StoreRecommendations replaces the user's previous batch. The delete and the
// insert are separate statements; the cache is a performance optimisation, so
// a crash between them only costs a regeneration.
func (s *DietaryStorage) StoreRecommendations(ctx context.Context, userID string, recs []models.Recommendation) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Recommendation{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear old recommendations: %w", err)
	}

	if len(recs) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&recs).Error; err != nil {
		return fmt.Errorf("failed to store recommendations: %w", err)
	}
	return nil
}
