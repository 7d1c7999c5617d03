package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lucasferreira-dev/food-delivery-platform/internal/models"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/utils"
	"github.com/google/uuid"
)

type AddressRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Address, error)
	Create(ctx context.Context, address *models.Address) error
	Update(ctx context.Context, address *models.Address) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type addressRepository struct {
	DB *sql.DB
}

func NewAddressRepository(db *sql.DB) AddressRepository {
	return &addressRepository{DB: db}
}

const addressColumns = `id, user_id, street, number, complement, neighborhood, city, state, zip_code, latitude, longitude, is_default, created_at, updated_at`

func scanAddress(row interface{ Scan(...any) error }, a *models.Address) error {
	return row.Scan(&a.ID, &a.UserID, &a.Street, &a.Number, &a.Complement, &a.Neighborhood,
		&a.City, &a.State, &a.ZipCode, &a.Latitude, &a.Longitude, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
}

func (r *addressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + addressColumns + `
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at ASC
	`

	rows, err := r.DB.QueryContext(dbCtx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}

	defer rows.Close()

	var addresses []models.Address

	for rows.Next() {

		var address models.Address

		if err := scanAddress(rows, &address); err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}

		addresses = append(addresses, address)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return addresses, nil
}

func (r *addressRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Address, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + addressColumns + `
		FROM addresses
		WHERE id = $1
	`

	address := &models.Address{}

	err := scanAddress(r.DB.QueryRowContext(dbCtx, query, id), address)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("querying address: %w", err)
	}

	return address, nil
}

// Create inserts the address. When the new address is the default, the
// previous default is cleared inside the same transaction so the
// one-default-per-user invariant holds.
func (r *addressRepository) Create(ctx context.Context, address *models.Address) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if address.IsDefault {
		if _, err := tx.ExecContext(dbCtx,
			`UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND is_default`, address.UserID); err != nil {
			return fmt.Errorf("failed to clear previous default address: %w", err)
		}
	}

	query := `
		INSERT INTO addresses (id, user_id, street, number, complement, neighborhood, city, state, zip_code, latitude, longitude, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = tx.QueryRowContext(dbCtx, query, address.ID, address.UserID, address.Street, address.Number,
		address.Complement, address.Neighborhood, address.City, address.State, address.ZipCode,
		address.Latitude, address.Longitude, address.IsDefault).
		Scan(&address.CreatedAt, &address.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert address: %w", err)
	}

	return tx.Commit()
}

func (r *addressRepository) Update(ctx context.Context, address *models.Address) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if address.IsDefault {
		if _, err := tx.ExecContext(dbCtx,
			`UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND is_default AND id <> $2`,
			address.UserID, address.ID); err != nil {
			return fmt.Errorf("failed to clear previous default address: %w", err)
		}
	}

	query := `
		UPDATE addresses
		SET street = $1, number = $2, complement = $3, neighborhood = $4, city = $5, state = $6,
			zip_code = $7, latitude = $8, longitude = $9, is_default = $10, updated_at = $11
		WHERE id = $12 AND user_id = $13
	`

	result, err := tx.ExecContext(dbCtx, query, address.Street, address.Number, address.Complement,
		address.Neighborhood, address.City, address.State, address.ZipCode,
		address.Latitude, address.Longitude, address.IsDefault, time.Now(), address.ID, address.UserID)
	if err != nil {
		return fmt.Errorf("failed to update address: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updatedRows == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}

func (r *addressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}

	deletedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get deleted rows: %w", err)
	}

	if deletedRows == 0 {
		return sql.ErrNoRows
	}

	return nil
}
