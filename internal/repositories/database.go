package repository

import (
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/config"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	_ "github.com/lib/pq"
)

// Repositories bundles the SQL-backed repositories sharing one pool.
type Repositories struct {
	DB         *sql.DB
	User       UserRepository
	Address    AddressRepository
	Restaurant RestaurantRepository
	Order      OrderRepository
}

func New(cfg *config.Config) (*Repositories, error) {

	db, err := otelsql.Open("postgres", cfg.Database.GetDSN(),
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	// Test the connection to make sure DB is reachable
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Repositories{
		DB:         db,
		User:       NewUserRepository(db),
		Address:    NewAddressRepository(db),
		Restaurant: NewRestaurantRepository(db),
		Order:      NewOrderRepository(db),
	}, nil
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}
