package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lucasferreira-dev/food-delivery-platform/internal/models"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/utils"
	"github.com/google/uuid"
)

type RestaurantRepository interface {
	// List returns one page of the catalog plus the filtered total.
	List(ctx context.Context, filter models.ListRestaurantsFilter, page, size int) ([]models.Restaurant, int, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error)
	GetMenu(ctx context.Context, restaurantID uuid.UUID) ([]models.MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
}

type restaurantRepository struct {
	DB *sql.DB
}

func NewRestaurantRepository(db *sql.DB) RestaurantRepository {
	return &restaurantRepository{DB: db}
}

const restaurantColumns = `id, name, description, image_url, category, delivery_fee, delivery_time_minutes, rating, latitude, longitude, is_open, created_at, updated_at`

func scanRestaurant(row interface{ Scan(...any) error }, rest *models.Restaurant) error {
	return row.Scan(&rest.ID, &rest.Name, &rest.Description, &rest.ImageURL, &rest.Category,
		&rest.DeliveryFee, &rest.DeliveryTimeMinutes, &rest.Rating, &rest.Latitude, &rest.Longitude,
		&rest.IsOpen, &rest.CreatedAt, &rest.UpdatedAt)
}

func (r *restaurantRepository) List(ctx context.Context, filter models.ListRestaurantsFilter, page, size int) ([]models.Restaurant, int, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	countQuery := `
		SELECT COUNT(*)
		FROM restaurants
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%')
	`

	if err := r.DB.QueryRowContext(dbCtx, countQuery, filter.Category, filter.Search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count restaurants: %w", err)
	}

	offset := (page - 1) * size

	query := `
		SELECT ` + restaurantColumns + `
		FROM restaurants
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR name ILIKE '%' || $2 || '%')
		ORDER BY rating DESC, name ASC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.DB.QueryContext(dbCtx, query, filter.Category, filter.Search, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list restaurants: %w", err)
	}

	defer rows.Close()

	var restaurants []models.Restaurant

	for rows.Next() {

		var restaurant models.Restaurant

		if err := scanRestaurant(rows, &restaurant); err != nil {
			return nil, 0, fmt.Errorf("failed to scan restaurant: %w", err)
		}

		restaurants = append(restaurants, restaurant)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return restaurants, total, nil
}

func (r *restaurantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + restaurantColumns + `
		FROM restaurants
		WHERE id = $1
	`

	restaurant := &models.Restaurant{}

	err := scanRestaurant(r.DB.QueryRowContext(dbCtx, query, id), restaurant)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("querying restaurant: %w", err)
	}

	return restaurant, nil
}

func (r *restaurantRepository) GetMenu(ctx context.Context, restaurantID uuid.UUID) ([]models.MenuItem, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, restaurant_id, name, description, price, image_url, category, available
		FROM menu_items
		WHERE restaurant_id = $1
		ORDER BY category, name
	`

	rows, err := r.DB.QueryContext(dbCtx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get menu: %w", err)
	}

	defer rows.Close()

	var items []models.MenuItem

	for rows.Next() {

		var item models.MenuItem

		err := rows.Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Description,
			&item.Price, &item.ImageURL, &item.Category, &item.Available)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *restaurantRepository) GetMenuItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, restaurant_id, name, description, price, image_url, category, available
		FROM menu_items
		WHERE id = $1
	`

	item := &models.MenuItem{}

	err := r.DB.QueryRowContext(dbCtx, query, id).
		Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Description,
			&item.Price, &item.ImageURL, &item.Category, &item.Available)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("querying menu item: %w", err)
	}

	return item, nil
}
