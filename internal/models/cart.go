package models

import (
	"time"

	"github.com/google/uuid"
)

// CartLineItem is one menu item inside a cart. Lines are keyed by
// MenuItemID, so a cart never holds duplicate rows for the same item.
type CartLineItem struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	UnitPrice  float64   `json:"unit_price"`
	Quantity   int       `json:"quantity"`
	Notes      string    `json:"notes,omitempty"`
}

// Cart is the in-progress selection for one user. Invariant: when Lines is
// non-empty, RestaurantID is set and every line belongs to that restaurant.
type Cart struct {
	UserID            uuid.UUID               `json:"user_id"`
	Lines             map[string]CartLineItem `json:"lines"`
	RestaurantID      *uuid.UUID              `json:"restaurant_id,omitempty"`
	RestaurantSummary *RestaurantSummary      `json:"restaurant,omitempty"`
	UpdatedAt         time.Time               `json:"updated_at"`
}

func NewCart(userID uuid.UUID) *Cart {
	return &Cart{
		UserID:    userID,
		Lines:     make(map[string]CartLineItem),
		UpdatedAt: time.Now(),
	}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// RequiresReplacement reports whether adding an item from the given
// restaurant would violate the single-restaurant rule. The decision is
// separate from the destructive replacement itself, so callers can prompt
// for confirmation first.
func (c *Cart) RequiresReplacement(restaurantID uuid.UUID) bool {
	return !c.IsEmpty() && c.RestaurantID != nil && *c.RestaurantID != restaurantID
}

// Total is the sum of unit price times quantity over all lines. The
// delivery fee is not part of the cart total.
func (c *Cart) Total() float64 {

	var total float64

	for _, line := range c.Lines {
		total += line.UnitPrice * float64(line.Quantity)
	}

	return total
}

func (c *Cart) ItemCount() int {

	var count int

	for _, line := range c.Lines {
		count += line.Quantity
	}

	return count
}

type AddCartItemRequest struct {
	MenuItemID   uuid.UUID `json:"menu_item_id" validate:"required"`
	RestaurantID uuid.UUID `json:"restaurant_id" validate:"required"`
	Notes        string    `json:"notes" validate:"omitempty,max=280"`
}

type UpdateCartItemRequest struct {
	Quantity int     `json:"quantity" validate:"required,min=1"`
	Notes    *string `json:"notes" validate:"omitempty,max=280"`
}

// CartResponse carries the cart plus its derived totals so clients do not
// recompute them.
type CartResponse struct {
	Cart      *Cart   `json:"cart"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
}

func NewCartResponse(cart *Cart) *CartResponse {
	return &CartResponse{
		Cart:      cart,
		Total:     cart.Total(),
		ItemCount: cart.ItemCount(),
	}
}
