package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lucasferreira-dev/food-delivery-platform/internal/models"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error)
	// UpdateStatusIf moves the order to the given status only when its
	// current status is in allowedFrom; it reports whether a row changed.
	// The guard runs inside the database, so racing writers cannot move an
	// order out of a terminal state.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, to models.OrderStatus, allowedFrom []models.OrderStatus) (bool, error)
	SetRating(ctx context.Context, id uuid.UUID, rating float64, comment string) (bool, error)
	SetDeliveryRating(ctx context.Context, id uuid.UUID, rating float64, comment string) (bool, error)
	AssignDeliveryPerson(ctx context.Context, id uuid.UUID, dp *models.DeliveryPerson) error
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	addressJSON, err := json.Marshal(order.DeliveryAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery address: %w", err)
	}

	restaurantJSON, err := json.Marshal(order.Restaurant)
	if err != nil {
		return fmt.Errorf("failed to marshal restaurant snapshot: %w", err)
	}

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO orders (id, order_number, customer_id, status, subtotal, delivery_fee, discount, total,
			payment_method, change_for, payment_intent_id, delivery_address, restaurant, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = tx.QueryRowContext(dbCtx, query, order.ID, order.OrderNumber, order.CustomerID, order.Status,
		order.Subtotal, order.DeliveryFee, order.Discount, order.Total,
		order.PaymentMethod, order.ChangeFor, order.PaymentIntentID, addressJSON, restaurantJSON).
		Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, menu_item_id, name, quantity, unit_price, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	`

	for i := range order.Items {

		item := &order.Items[i]

		_, err := tx.ExecContext(dbCtx, itemQuery, item.ID, order.ID, item.MenuItemID,
			item.Name, item.Quantity, item.UnitPrice, item.Notes)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit()
}

const orderColumns = `id, order_number, customer_id, status, subtotal, delivery_fee, discount, total,
	payment_method, change_for, payment_intent_id, delivery_address, restaurant, delivery_person,
	rating, comment, is_rated, delivery_rating, delivery_comment, is_delivery_rated, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }, order *models.Order) error {

	var addressJSON, restaurantJSON []byte
	var deliveryPersonJSON sql.Null[[]byte]

	err := row.Scan(&order.ID, &order.OrderNumber, &order.CustomerID, &order.Status,
		&order.Subtotal, &order.DeliveryFee, &order.Discount, &order.Total,
		&order.PaymentMethod, &order.ChangeFor, &order.PaymentIntentID,
		&addressJSON, &restaurantJSON, &deliveryPersonJSON,
		&order.Rating, &order.Comment, &order.IsRated,
		&order.DeliveryRating, &order.DeliveryComment, &order.IsDeliveryRated,
		&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(addressJSON, &order.DeliveryAddress); err != nil {
		return fmt.Errorf("failed to unmarshal delivery address: %w", err)
	}

	if err := json.Unmarshal(restaurantJSON, &order.Restaurant); err != nil {
		return fmt.Errorf("failed to unmarshal restaurant snapshot: %w", err)
	}

	if deliveryPersonJSON.Valid {
		if err := json.Unmarshal(deliveryPersonJSON.V, &order.DeliveryPerson); err != nil {
			return fmt.Errorf("failed to unmarshal delivery person: %w", err)
		}
	}

	return nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
	`

	order := &models.Order{}

	if err := scanOrder(r.DB.QueryRowContext(dbCtx, query, id), order); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("querying order: %w", err)
	}

	items, err := r.getOrderItems(dbCtx, id)
	if err != nil {
		return nil, err
	}

	order.Items = items

	return order, nil
}

func (r *orderRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.DB.QueryContext(dbCtx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	defer rows.Close()

	var orders []models.Order

	for rows.Next() {

		var order models.Order

		if err := scanOrder(rows, &order); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {

		items, err := r.getOrderItems(dbCtx, orders[i].ID)
		if err != nil {
			return nil, err
		}

		orders[i].Items = items
	}

	return orders, nil
}

func (r *orderRepository) getOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {

	query := `
		SELECT id, menu_item_id, name, quantity, unit_price, notes, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at
	`

	rows, err := r.DB.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}

	defer rows.Close()

	var items []models.OrderItem

	for rows.Next() {

		var item models.OrderItem

		err := rows.Scan(&item.ID, &item.MenuItemID, &item.Name, &item.Quantity,
			&item.UnitPrice, &item.Notes, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}

		item.OrderID = orderID

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *orderRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, to models.OrderStatus, allowedFrom []models.OrderStatus) (bool, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	from := make([]string, 0, len(allowedFrom))
	for _, s := range allowedFrom {
		from = append(from, string(s))
	}

	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = ANY($4)
	`

	result, err := r.DB.ExecContext(dbCtx, query, to, time.Now(), id, pq.Array(from))
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get updated rows: %w", err)
	}

	return updatedRows > 0, nil
}

func (r *orderRepository) SetRating(ctx context.Context, id uuid.UUID, rating float64, comment string) (bool, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE orders
		SET rating = $1, comment = $2, is_rated = TRUE, updated_at = $3
		WHERE id = $4 AND status = 'DELIVERED' AND NOT is_rated
	`

	result, err := r.DB.ExecContext(dbCtx, query, rating, comment, time.Now(), id)
	if err != nil {
		return false, fmt.Errorf("failed to rate order: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get updated rows: %w", err)
	}

	return updatedRows > 0, nil
}

func (r *orderRepository) SetDeliveryRating(ctx context.Context, id uuid.UUID, rating float64, comment string) (bool, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE orders
		SET delivery_rating = $1, delivery_comment = $2, is_delivery_rated = TRUE, updated_at = $3
		WHERE id = $4 AND status = 'DELIVERED' AND delivery_person IS NOT NULL AND NOT is_delivery_rated
	`

	result, err := r.DB.ExecContext(dbCtx, query, rating, comment, time.Now(), id)
	if err != nil {
		return false, fmt.Errorf("failed to rate delivery person: %w", err)
	}

	updatedRows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get updated rows: %w", err)
	}

	return updatedRows > 0, nil
}

func (r *orderRepository) AssignDeliveryPerson(ctx context.Context, id uuid.UUID, dp *models.DeliveryPerson) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	dpJSON, err := json.Marshal(dp)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery person: %w", err)
	}

	query := `
		UPDATE orders
		SET delivery_person = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.DB.ExecContext(dbCtx, query, dpJSON, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to assign delivery person: %w", err)
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
