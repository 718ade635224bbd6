package services

import (
	"context"
	"fmt"

	"github.com/livioochertes/DiscountDining-sub003/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CatalogService is a read-only view over the restaurant/menu tables owned by
// the rest of the platform. No caching here; that happens in the engine.
type CatalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: db}
}

// EligibleMenuItem is a menu item joined with enough of its restaurant to be
// enumerated in a scoring prompt without further lookups.
type EligibleMenuItem struct {
	ID           uint                        `json:"id"`
	RestaurantID uint                        `json:"restaurantId"`
	Name         string                      `json:"name"`
	Description  string                      `json:"description"`
	Category     string                      `json:"category"`
	Price        float64                     `json:"price"`
	Ingredients  datatypes.JSONSlice[string] `json:"ingredients"`
	Allergens    datatypes.JSONSlice[string] `json:"allergens"`
	DietaryTags  datatypes.JSONSlice[string] `json:"dietaryTags"`
	SpiceLevel   string                      `json:"spiceLevel"`
	Calories     *int                        `json:"calories"`

	RestaurantName     string  `json:"restaurantName"`
	RestaurantCuisine  string  `json:"restaurantCuisine"`
	RestaurantLocation string  `json:"restaurantLocation"`
	RestaurantRating   float64 `json:"restaurantRating"`
}

// AvailableRestaurants returns restaurants that are active and approved.
func (s *CatalogService) AvailableRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	var restaurants []models.Restaurant
	err := s.db.WithContext(ctx).
		Where("is_active = ? AND is_approved = ?", true, true).
		Find(&restaurants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch available restaurants: %w", err)
	}
	return restaurants, nil
}

// AvailableMenuItems returns available items whose parent restaurant is itself
// eligible, with the restaurant columns denormalised into the row.
func (s *CatalogService) AvailableMenuItems(ctx context.Context) ([]EligibleMenuItem, error) {
	var items []EligibleMenuItem
	err := s.db.WithContext(ctx).
		Table("menu_items").
		Select(`menu_items.id, menu_items.restaurant_id, menu_items.name, menu_items.description,
			menu_items.category, menu_items.price, menu_items.ingredients, menu_items.allergens,
			menu_items.dietary_tags, menu_items.spice_level, menu_items.calories,
			restaurants.name AS restaurant_name, restaurants.cuisine AS restaurant_cuisine,
			restaurants.location AS restaurant_location, restaurants.rating AS restaurant_rating`).
		Joins("JOIN restaurants ON restaurants.id = menu_items.restaurant_id").
		Where("menu_items.is_available = ? AND restaurants.is_active = ? AND restaurants.is_approved = ?",
			true, true, true).
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch available menu items: %w", err)
	}
	return items, nil
}

func (s *CatalogService) RestaurantByID(ctx context.Context, id uint) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := s.db.WithContext(ctx).First(&restaurant, id).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch restaurant %d: %w", id, err)
	}
	return &restaurant, nil
}

func (s *CatalogService) MenuItemByID(ctx context.Context, id uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch menu item %d: %w", id, err)
	}
	return &item, nil
}

func (s *CatalogService) MenuItemsByRestaurant(ctx context.Context, restaurantID uint) ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := s.db.WithContext(ctx).
		Where("restaurant_id = ? AND is_available = ?", restaurantID, true).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch menu items for restaurant %d: %w", restaurantID, err)
	}
	return items, nil
}
