package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lucasferreira-dev/food-delivery-platform/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CartRepository persists cart snapshots in Redis. The service layer owns
// the authoritative in-memory cart; Redis only survives restarts, so a
// missing key is not an error.
type CartRepository interface {
	Save(ctx context.Context, cart *models.Cart) error
	Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

type cartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

const cartTTL = 7 * 24 * time.Hour

func NewCartRepository(client *redis.Client) CartRepository {
	return &cartRepository{client: client, ttl: cartTTL}
}

func cartKey(userID uuid.UUID) string {
	return "cart:" + userID.String()
}

func (r *cartRepository) Save(ctx context.Context, cart *models.Cart) error {

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}

	if err := r.client.Set(ctx, cartKey(cart.UserID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}

	return nil
}

func (r *cartRepository) Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {

	data, err := r.client.Get(ctx, cartKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	cart := &models.Cart{}

	if err := json.Unmarshal(data, cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart: %w", err)
	}

	// A payload with null lines must still come back writable.
	if cart.Lines == nil {
		cart.Lines = make(map[string]models.CartLineItem)
	}

	return cart, nil
}

func (r *cartRepository) Delete(ctx context.Context, userID uuid.UUID) error {

	if err := r.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}

	return nil
}
