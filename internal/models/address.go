package models

import (
	"time"

	"github.com/google/uuid"
)

// Address is a saved delivery address. At most one address per user may be
// the default; setting a new default clears the previous one in the same
// transaction.
type Address struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Street       string    `json:"street"`
	Number       string    `json:"number"`
	Complement   string    `json:"complement,omitempty"`
	Neighborhood string    `json:"neighborhood"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	ZipCode      string    `json:"zipCode"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	IsDefault    bool      `json:"isDefault"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type SaveAddressRequest struct {
	Street       string  `json:"street" validate:"required,max=200"`
	Number       string  `json:"number" validate:"required,max=20"`
	Complement   string  `json:"complement" validate:"omitempty,max=100"`
	Neighborhood string  `json:"neighborhood" validate:"required,max=100"`
	City         string  `json:"city" validate:"required,max=100"`
	State        string  `json:"state" validate:"required,max=50"`
	ZipCode      string  `json:"zipCode" validate:"required,max=20"`
	Latitude     float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude    float64 `json:"longitude" validate:"gte=-180,lte=180"`
	IsDefault    bool    `json:"isDefault"`
}
