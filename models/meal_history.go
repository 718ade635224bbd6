package models

import "time"

// MealHistoryEntry is one logged dining experience. Entries are append-only:
// there are no update or delete paths anywhere in the codebase.
type MealHistoryEntry struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"index;not null" json:"userId"`

	RestaurantID *uint  `json:"restaurantId"`
	MenuItemID   *uint  `json:"menuItemId"`
	MealType     string `json:"mealType"` // breakfast|lunch|dinner|snack

	MealDate time.Time `gorm:"not null" json:"mealDate"`

	SatisfactionRating *int   `json:"satisfactionRating"` // 1-5
	TasteRating        *int   `json:"tasteRating"`        // 1-5
	HealthinessRating  *int   `json:"healthinessRating"`  // 1-5
	Notes              string `json:"notes"`
	WouldOrderAgain    *bool  `json:"wouldOrderAgain"`

	CreatedAt time.Time `json:"createdAt"`
}
