package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RecommendationTypeRestaurant = "restaurant"
	RecommendationTypeMenuItem   = "menu_item"
)

// Recommendation is one AI-scored suggestion for a restaurant or menu item.
// A batch is written per generation run; rows stay valid until expires_at and
// count as a cache hit while created_at is inside the freshness window.
type Recommendation struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"index;not null" json:"userId"`

	Type     string `gorm:"not null" json:"type"` // restaurant|menu_item
	TargetID int    `json:"targetId"`             // 0 means unresolvable

	Score               float64 `json:"score"`
	NutritionalMatch    float64 `json:"nutritionalMatch"`
	PreferenceMatch     float64 `json:"preferenceMatch"`
	HealthGoalAlignment float64 `json:"healthGoalAlignment"`

	Reasoning             datatypes.JSONSlice[string] `json:"reasoning"`
	NutritionalHighlights datatypes.JSONSlice[string] `json:"nutritionalHighlights"`
	CautionaryNotes       datatypes.JSONSlice[string] `json:"cautionaryNotes"`

	AIModelVersion string `json:"aiModelVersion,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `gorm:"index" json:"expiresAt"`
}
