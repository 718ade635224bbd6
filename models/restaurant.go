package models

import (
	"time"

	"gorm.io/datatypes"
)

// Restaurant and MenuItem are read projections of the catalog owned by the
// rest of the platform. This service only ever reads them; eligibility is
// is_active && is_approved (restaurants) and is_available (menu items).
type Restaurant struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`

	Cuisine    string  `json:"cuisine"`
	PriceRange string  `json:"priceRange"`
	Location   string  `json:"location"`
	Rating     float64 `json:"rating"`

	Features       datatypes.JSONSlice[string] `json:"features"`
	DietaryOptions datatypes.JSONSlice[string] `json:"dietaryOptions"`
	AllergenInfo   datatypes.JSONSlice[string] `json:"allergenInfo"`
	HealthFocused  bool                        `json:"healthFocused"`

	IsActive   bool `json:"isActive"`
	IsApproved bool `json:"isApproved"`

	Items []MenuItem `gorm:"foreignKey:RestaurantID" json:"items,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type MenuItem struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	RestaurantID uint `gorm:"index;not null" json:"restaurantId"`

	Name        string  `gorm:"not null" json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`

	Ingredients datatypes.JSONSlice[string] `json:"ingredients"`
	Allergens   datatypes.JSONSlice[string] `json:"allergens"`
	DietaryTags datatypes.JSONSlice[string] `json:"dietaryTags"`

	SpiceLevel      string `json:"spiceLevel"`
	Calories        *int   `json:"calories"`
	PreparationTime *int   `json:"preparationTime"` // minutes

	IsAvailable bool `json:"isAvailable"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
