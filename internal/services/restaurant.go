package service

import (
	"context"
	"database/sql"
	"errors"

	appErrors "github.com/lucasferreira-dev/food-delivery-platform/internal/errors"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/models"
	repository "github.com/lucasferreira-dev/food-delivery-platform/internal/repositories"
	"github.com/google/uuid"
)

type RestaurantService interface {
	// ListRestaurants returns the requested catalog page and the filtered
	// total so handlers can build a paginated response.
	ListRestaurants(ctx context.Context, filter models.ListRestaurantsFilter, page, pageSize int) ([]models.Restaurant, int, error)
	GetRestaurant(ctx context.Context, id uuid.UUID) (*models.RestaurantWithMenu, error)
	GetMenu(ctx context.Context, restaurantID uuid.UUID) ([]models.MenuItem, error)
}

type restaurantService struct {
	repo repository.RestaurantRepository
}

func NewRestaurantService(repo repository.RestaurantRepository) RestaurantService {
	return &restaurantService{repo: repo}
}

func (s *restaurantService) ListRestaurants(ctx context.Context, filter models.ListRestaurantsFilter, page, pageSize int) ([]models.Restaurant, int, error) {

	restaurants, total, err := s.repo.List(ctx, filter, page, pageSize)
	if err != nil {
		return nil, 0, appErrors.DatabaseError("Failed to list restaurants").WithError(err)
	}

	return restaurants, total, nil
}

func (s *restaurantService) GetRestaurant(ctx context.Context, id uuid.UUID) (*models.RestaurantWithMenu, error) {

	restaurant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Restaurant not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to fetch restaurant").WithError(err)
	}

	menu, err := s.repo.GetMenu(ctx, id)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch menu").WithError(err)
	}

	return &models.RestaurantWithMenu{Restaurant: *restaurant, Menu: menu}, nil
}

func (s *restaurantService) GetMenu(ctx context.Context, restaurantID uuid.UUID) ([]models.MenuItem, error) {

	if _, err := s.repo.GetByID(ctx, restaurantID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Restaurant not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to fetch restaurant").WithError(err)
	}

	menu, err := s.repo.GetMenu(ctx, restaurantID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch menu").WithError(err)
	}

	return menu, nil
}
