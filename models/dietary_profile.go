package models

import (
	"time"

	"gorm.io/datatypes"
)

// DietaryProfile holds one user's dietary preferences, restrictions and
// nutrition targets. At most one row per user (unique index on user_id).
type DietaryProfile struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"uniqueIndex;not null" json:"userId"`

	Age           *int     `json:"age"`
	Height        *float64 `json:"height"` // cm
	Weight        *float64 `json:"weight"` // kg
	Gender        string   `json:"gender"`
	ActivityLevel string   `json:"activityLevel"`
	HealthGoal    string   `json:"healthGoal"`
	TargetWeight  *float64 `json:"targetWeight"`

	DietaryPreferences  datatypes.JSONSlice[string] `json:"dietaryPreferences"`
	Allergies           datatypes.JSONSlice[string] `json:"allergies"`
	FoodIntolerances    datatypes.JSONSlice[string] `json:"foodIntolerances"`
	DislikedIngredients datatypes.JSONSlice[string] `json:"dislikedIngredients"`
	PreferredCuisines   datatypes.JSONSlice[string] `json:"preferredCuisines"`
	HealthConditions    datatypes.JSONSlice[string] `json:"healthConditions"`
	Medications         datatypes.JSONSlice[string] `json:"medications"`

	CalorieTarget *int `json:"calorieTarget"`
	ProteinTarget *int `json:"proteinTarget"`
	CarbTarget    *int `json:"carbTarget"`
	FatTarget     *int `json:"fatTarget"`

	BudgetRange     string `json:"budgetRange"`     // low|medium|high
	DiningFrequency string `json:"diningFrequency"` // daily|weekly|monthly

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
