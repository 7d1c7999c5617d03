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

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO users (id, name, email, phone, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query, user.ID, user.Name, user.Email, user.Phone, user.Password).
		Scan(&user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, name, email, phone, password, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(dbCtx, query, email).
		Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("querying user by email: %w", err)
	}

	return user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, name, email, phone, password, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(dbCtx, query, id).
		Scan(&user.ID, &user.Name, &user.Email, &user.Phone, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("querying user by id: %w", err)
	}

	return user, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user *models.User) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE users
		SET name = $1, phone = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := r.DB.ExecContext(dbCtx, query, user.Name, user.Phone, time.Now(), user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updatedRows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE users
		SET password = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.DB.ExecContext(dbCtx, query, hashedPassword, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get updated rows: %w", err)
	}

	if updatedRows == 0 {
		return sql.ErrNoRows
	}

	return nil
}
