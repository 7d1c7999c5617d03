package models

import (
	"time"

	"github.com/google/uuid"
)

type Restaurant struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	Description         string    `json:"description,omitempty"`
	ImageURL            string    `json:"image,omitempty"`
	Category            string    `json:"category,omitempty"`
	DeliveryFee         float64   `json:"deliveryFee"`
	DeliveryTimeMinutes int       `json:"deliveryTime"`
	Rating              float64   `json:"rating"`
	Latitude            float64   `json:"latitude"`
	Longitude           float64   `json:"longitude"`
	IsOpen              bool      `json:"isOpen"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type MenuItem struct {
	ID           uuid.UUID `json:"id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Price        float64   `json:"price"`
	ImageURL     string    `json:"image,omitempty"`
	Category     string    `json:"category,omitempty"`
	Available    bool      `json:"available"`
}

// RestaurantSummary is the denormalized slice of restaurant data cached on
// the cart and snapshotted onto orders, so past orders render without a
// restaurant lookup.
type RestaurantSummary struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	ImageURL            string    `json:"image,omitempty"`
	DeliveryTimeMinutes int       `json:"deliveryTime"`
	DeliveryFee         float64   `json:"deliveryFee"`
}

func (r *Restaurant) Summary() *RestaurantSummary {
	return &RestaurantSummary{
		ID:                  r.ID,
		Name:                r.Name,
		ImageURL:            r.ImageURL,
		DeliveryTimeMinutes: r.DeliveryTimeMinutes,
		DeliveryFee:         r.DeliveryFee,
	}
}

type RestaurantWithMenu struct {
	Restaurant
	Menu []MenuItem `json:"menu"`
}

type ListRestaurantsFilter struct {
	Category string
	Search   string
}
