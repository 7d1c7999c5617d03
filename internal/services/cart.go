package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/lucasferreira-dev/food-delivery-platform/internal/api/middleware"
	appErrors "github.com/lucasferreira-dev/food-delivery-platform/internal/errors"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/metrics"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/models"
	repository "github.com/lucasferreira-dev/food-delivery-platform/internal/repositories"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// CartService manages the per-user cart. The in-memory copy is
// authoritative; Redis is a best-effort backup that lets carts survive a
// restart, so persistence failures degrade to a log line and never block
// the mutation.
type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, req *models.AddCartItemRequest) (*models.Cart, error)
	// ReplaceCart discards the current cart and starts a new one with the
	// requested item. Callers use it after AddItem reported a conflict and
	// the user confirmed.
	ReplaceCart(ctx context.Context, userID uuid.UUID, req *models.AddCartItemRequest) (*models.Cart, error)
	UpdateItem(ctx context.Context, userID uuid.UUID, menuItemID uuid.UUID, req *models.UpdateCartItemRequest) (*models.Cart, error)
	// RemoveItem decrements the line quantity by one, dropping the line at
	// zero.
	RemoveItem(ctx context.Context, userID uuid.UUID, menuItemID uuid.UUID) (*models.Cart, error)
	RemoveItemCompletely(ctx context.Context, userID uuid.UUID, menuItemID uuid.UUID) (*models.Cart, error)
	ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
}

type cartService struct {
	mu             sync.RWMutex
	carts          map[uuid.UUID]*models.Cart
	repo           repository.CartRepository
	restaurantRepo repository.RestaurantRepository
	sanitizer      *bluemonday.Policy
}

func NewCartService(repo repository.CartRepository, restaurantRepo repository.RestaurantRepository) CartService {
	return &cartService{
		carts:          make(map[uuid.UUID]*models.Cart),
		repo:           repo,
		restaurantRepo: restaurantRepo,
		sanitizer:      bluemonday.StrictPolicy(),
	}
}

// getOrLoad returns the user's cart, recovering it from Redis after a
// restart. Callers must hold the write lock.
func (s *cartService) getOrLoad(ctx context.Context, userID uuid.UUID) *models.Cart {

	if cart, ok := s.carts[userID]; ok {
		return cart
	}

	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to restore cart from redis", slog.Any("error", err))
	}

	if cart == nil {
		cart = models.NewCart(userID)
	}

	s.carts[userID] = cart

	return cart
}

func (s *cartService) persist(ctx context.Context, cart *models.Cart) {

	if err := s.repo.Save(ctx, cart); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to persist cart to redis", slog.Any("error", err))
	}
}

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getOrLoad(ctx, userID), nil
}

func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddCartItemRequest) (*models.Cart, error) {

	menuItem, restaurant, err := s.lookupMenuItem(ctx, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.getOrLoad(ctx, userID)

	if cart.RequiresReplacement(req.RestaurantID) {
		metrics.CartConflicts.Inc()
		return nil, appErrors.CartConflictError("Cart contains items from another restaurant").
			WithDetail("Clear the cart or confirm replacement to add this item")
	}

	s.upsertLine(cart, menuItem, restaurant, req.Notes)
	s.persist(ctx, cart)

	return cart, nil
}

func (s *cartService) ReplaceCart(ctx context.Context, userID uuid.UUID, req *models.AddCartItemRequest) (*models.Cart, error) {

	menuItem, restaurant, err := s.lookupMenuItem(ctx, req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := models.NewCart(userID)
	s.carts[userID] = cart

	s.upsertLine(cart, menuItem, restaurant, req.Notes)
	s.persist(ctx, cart)

	return cart, nil
}

// upsertLine adds one unit of the menu item, creating the line on first
// add. Callers must hold the write lock.
func (s *cartService) upsertLine(cart *models.Cart, menuItem *models.MenuItem, restaurant *models.Restaurant, notes string) {

	key := menuItem.ID.String()

	line, exists := cart.Lines[key]
	if !exists {
		line = models.CartLineItem{
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			UnitPrice:  menuItem.Price,
		}
	}

	line.Quantity++

	if notes != "" {
		line.Notes = s.sanitizer.Sanitize(notes)
	}

	cart.Lines[key] = line

	if cart.RestaurantID == nil {
		restaurantID := restaurant.ID
		cart.RestaurantID = &restaurantID
	}

	// The summary is refreshed on every add so cached fees and delivery
	// times track the restaurant record.
	cart.RestaurantSummary = restaurant.Summary()

	cart.UpdatedAt = time.Now()
}

func (s *cartService) lookupMenuItem(ctx context.Context, req *models.AddCartItemRequest) (*models.MenuItem, *models.Restaurant, error) {

	menuItem, err := s.restaurantRepo.GetMenuItem(ctx, req.MenuItemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.NotFoundError("Menu item not found").WithError(err)
		}
		return nil, nil, appErrors.DatabaseError("Failed to fetch menu item").WithError(err)
	}

	if menuItem.RestaurantID != req.RestaurantID {
		return nil, nil, appErrors.BadRequestError("Menu item does not belong to the given restaurant")
	}

	if !menuItem.Available {
		return nil, nil, appErrors.BadRequestError("Menu item is not available")
	}

	restaurant, err := s.restaurantRepo.GetByID(ctx, req.RestaurantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.NotFoundError("Restaurant not found").WithError(err)
		}
		return nil, nil, appErrors.DatabaseError("Failed to fetch restaurant").WithError(err)
	}

	return menuItem, restaurant, nil
}

func (s *cartService) UpdateItem(ctx context.Context, userID uuid.UUID, menuItemID uuid.UUID, req *models.UpdateCartItemRequest) (*models.Cart, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.getOrLoad(ctx, userID)

	key := menuItemID.String()

	line, exists := cart.Lines[key]
	if !exists {
		return nil, appErrors.BadRequestError("Item not found in the cart")
	}

	line.Quantity = req.Quantity

	if req.Notes != nil {
		line.Notes = s.sanitizer.Sanitize(*req.Notes)
	}

	cart.Lines[key] = line
	cart.UpdatedAt = time.Now()

	s.persist(ctx, cart)

	return cart, nil
}

func (s *cartService) RemoveItem(ctx context.Context, userID uuid.UUID, menuItemID uuid.UUID) (*models.Cart, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.getOrLoad(ctx, userID)

	key := menuItemID.String()

	line, exists := cart.Lines[key]
	if !exists {
		return nil, appErrors.BadRequestError("Item not found in the cart")
	}

	line.Quantity--

	if line.Quantity <= 0 {
		delete(cart.Lines, key)
	} else {
		cart.Lines[key] = line
	}

	s.afterRemoval(ctx, cart)

	return cart, nil
}

func (s *cartService) RemoveItemCompletely(ctx context.Context, userID uuid.UUID, menuItemID uuid.UUID) (*models.Cart, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.getOrLoad(ctx, userID)

	key := menuItemID.String()

	if _, exists := cart.Lines[key]; !exists {
		return nil, appErrors.BadRequestError("Item not found in the cart")
	}

	delete(cart.Lines, key)

	s.afterRemoval(ctx, cart)

	return cart, nil
}

// afterRemoval clears the restaurant binding once the last line is gone,
// so the next add is free to pick any restaurant. Callers must hold the
// write lock.
func (s *cartService) afterRemoval(ctx context.Context, cart *models.Cart) {

	if cart.IsEmpty() {
		cart.RestaurantID = nil
		cart.RestaurantSummary = nil
	}

	cart.UpdatedAt = time.Now()

	s.persist(ctx, cart)
}

// ClearCart empties the cart. Clearing an already empty cart succeeds.
func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	cart := models.NewCart(userID)
	s.carts[userID] = cart

	if err := s.repo.Delete(ctx, userID); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to delete cart from redis", slog.Any("error", err))
	}

	return cart, nil
}
