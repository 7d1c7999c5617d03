package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/lucasferreira-dev/food-delivery-platform/internal/api/middleware"
	appErrors "github.com/lucasferreira-dev/food-delivery-platform/internal/errors"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/metrics"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/models"
	repository "github.com/lucasferreira-dev/food-delivery-platform/internal/repositories"
	"github.com/lucasferreira-dev/food-delivery-platform/pkg/sendGrid"
	"github.com/lucasferreira-dev/food-delivery-platform/pkg/stripe"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// OrderListScope selects which slice of the customer's history to return.
type OrderListScope string

const (
	ScopeAll    OrderListScope = ""
	ScopeActive OrderListScope = "active"
	ScopePast   OrderListScope = "past"
)

type OrderService interface {
	// CreateOrder submits the current cart as an order: it snapshots the
	// cart lines and delivery address, prices the delivery, opens a
	// payment intent for card orders, and clears the cart on success.
	CreateOrder(ctx context.Context, userID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, error)
	// QuoteDeliveryFee prices delivery to the given address ahead of
	// checkout, so clients can show the fee while the cart is still open.
	QuoteDeliveryFee(ctx context.Context, userID uuid.UUID, restaurantID, addressID uuid.UUID) (*models.DeliveryFeeQuote, error)
	GetOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, scope OrderListScope) ([]models.Order, error)
	CancelOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, req *models.UpdateOrderStatusRequest) (*models.Order, error)
	AssignDeliveryPerson(ctx context.Context, orderID uuid.UUID, req *models.AssignDeliveryPersonRequest) (*models.Order, error)
	RateOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID, req *models.RateOrderRequest) (*models.Order, error)
	RateDeliveryPerson(ctx context.Context, userID uuid.UUID, orderID uuid.UUID, req *models.RateOrderRequest) (*models.Order, error)
}

type orderService struct {
	repo           repository.OrderRepository
	addressRepo    repository.AddressRepository
	restaurantRepo repository.RestaurantRepository
	userRepo       repository.UserRepository
	cartService    CartService
	feeService     DeliveryFeeService
	stripeClient   stripe.Client
	emailService   sendGrid.EmailService
	currency       string
	sanitizer      *bluemonday.Policy
}

func NewOrderService(
	repo repository.OrderRepository,
	addressRepo repository.AddressRepository,
	restaurantRepo repository.RestaurantRepository,
	userRepo repository.UserRepository,
	cartService CartService,
	feeService DeliveryFeeService,
	stripeClient stripe.Client,
	emailService sendGrid.EmailService,
	currency string,
) OrderService {
	return &orderService{
		repo:           repo,
		addressRepo:    addressRepo,
		restaurantRepo: restaurantRepo,
		userRepo:       userRepo,
		cartService:    cartService,
		feeService:     feeService,
		stripeClient:   stripeClient,
		emailService:   emailService,
		currency:       currency,
		sanitizer:      bluemonday.StrictPolicy(),
	}
}

func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), suffix)
}

func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, error) {

	logger := middleware.LoggerFromContext(ctx)

	cart, err := s.cartService.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if cart.IsEmpty() || cart.RestaurantID == nil {
		return nil, appErrors.BadRequestError("Cart is empty")
	}

	address, err := s.addressRepo.GetByID(ctx, req.AddressID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Address not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to fetch address").WithError(err)
	}

	if address.UserID != userID {
		return nil, appErrors.ForbiddenError("Address belongs to another user")
	}

	restaurant, err := s.restaurantRepo.GetByID(ctx, *cart.RestaurantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Restaurant not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to fetch restaurant").WithError(err)
	}

	if !restaurant.IsOpen {
		return nil, appErrors.BadRequestError("Restaurant is closed")
	}

	subtotal := cart.Total()
	deliveryFee := s.feeService.Quote(restaurant, address)
	total := math.Round((subtotal+deliveryFee)*100) / 100

	// Validated against the full total, delivery fee included.
	if req.PaymentMethod == models.PaymentMethodCash && req.ChangeFor != nil && *req.ChangeFor < total {
		return nil, appErrors.BadRequestError("Change amount is below the order total")
	}

	order := &models.Order{
		ID:              uuid.New(),
		OrderNumber:     newOrderNumber(),
		CustomerID:      userID,
		Status:          models.OrderStatusPending,
		Subtotal:        subtotal,
		DeliveryFee:     deliveryFee,
		Total:           total,
		PaymentMethod:   req.PaymentMethod,
		ChangeFor:       req.ChangeFor,
		DeliveryAddress: address,
		Restaurant:      restaurant.Summary(),
	}

	for _, line := range cart.Lines {
		order.Items = append(order.Items, models.OrderItem{
			ID:         uuid.New(),
			OrderID:    order.ID,
			MenuItemID: line.MenuItemID,
			Name:       line.Name,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			Notes:      line.Notes,
		})
	}

	if req.PaymentMethod == models.PaymentMethodCard {

		intent, err := s.stripeClient.CreatePaymentIntent(int64(math.Round(total*100)), s.currency, "Order "+order.OrderNumber)
		if err != nil {
			return nil, appErrors.ThirdPartyError("Failed to create payment intent").WithError(err)
		}

		order.PaymentIntentID = intent.ID
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, appErrors.DatabaseError("Failed to create order").WithError(err)
	}

	if _, err := s.cartService.ClearCart(ctx, userID); err != nil {
		logger.Warn("Failed to clear cart after order creation", slog.Any("error", err))
	}

	s.sendConfirmationEmail(ctx, order)

	metrics.OrdersCreated.WithLabelValues(string(order.PaymentMethod)).Inc()

	logger.Info("Order created",
		slog.String("orderId", order.ID.String()),
		slog.String("orderNumber", order.OrderNumber),
		slog.Float64("total", order.Total))

	return order, nil
}

func (s *orderService) QuoteDeliveryFee(ctx context.Context, userID uuid.UUID, restaurantID, addressID uuid.UUID) (*models.DeliveryFeeQuote, error) {

	address, err := s.addressRepo.GetByID(ctx, addressID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Address not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to fetch address").WithError(err)
	}

	if address.UserID != userID {
		return nil, appErrors.ForbiddenError("Address belongs to another user")
	}

	restaurant, err := s.restaurantRepo.GetByID(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Restaurant not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to fetch restaurant").WithError(err)
	}

	distance := s.feeService.Distance(restaurant.Latitude, restaurant.Longitude, address.Latitude, address.Longitude)

	return &models.DeliveryFeeQuote{
		RestaurantID: restaurantID,
		AddressID:    addressID,
		DistanceKm:   math.Round(distance*10) / 10,
		Fee:          s.feeService.Quote(restaurant, address),
	}, nil
}

func (s *orderService) sendConfirmationEmail(ctx context.Context, order *models.Order) {

	logger := middleware.LoggerFromContext(ctx)

	user, err := s.userRepo.GetUserByID(ctx, order.CustomerID)
	if err != nil {
		logger.Warn("Failed to load user for order confirmation email", slog.Any("error", err))
		return
	}

	req := &sendGrid.EmailRequest{
		To:      user.Email,
		Subject: fmt.Sprintf("Pedido %s recebido", order.OrderNumber),
		Content: fmt.Sprintf("Olá %s, recebemos o seu pedido %s no valor de R$ %.2f.",
			user.Name, order.OrderNumber, order.Total),
	}

	if err := s.emailService.Send(ctx, req); err != nil {
		logger.Warn("Failed to send order confirmation email", slog.Any("error", err))
	}
}

// getOwnedOrder loads the order and enforces ownership.
func (s *orderService) getOwnedOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*models.Order, error) {

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Order not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to fetch order").WithError(err)
	}

	if order.CustomerID != userID {
		return nil, appErrors.ForbiddenError("Order belongs to another user")
	}

	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*models.Order, error) {
	return s.getOwnedOrder(ctx, userID, orderID)
}

func (s *orderService) ListOrders(ctx context.Context, userID uuid.UUID, scope OrderListScope) ([]models.Order, error) {

	orders, err := s.repo.ListByCustomer(ctx, userID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to list orders").WithError(err)
	}

	switch scope {
	case ScopeActive:
		return models.FilterActive(orders), nil
	case ScopePast:
		return models.FilterPast(orders), nil
	default:
		return orders, nil
	}
}

func (s *orderService) CancelOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*models.Order, error) {

	logger := middleware.LoggerFromContext(ctx)

	order, err := s.getOwnedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if !models.CanCancel(order.Status) {
		return nil, appErrors.PolicyViolationError("Order can no longer be cancelled").
			WithDetail(fmt.Sprintf("Current status: %s", order.Status))
	}

	// The repository re-checks the status, so a transition that landed
	// between the read and the update loses cleanly.
	changed, err := s.repo.UpdateStatusIf(ctx, orderID, models.OrderStatusCancelled,
		[]models.OrderStatus{models.OrderStatusPending, models.OrderStatusConfirmed})
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to cancel order").WithError(err)
	}

	if !changed {
		return nil, appErrors.PolicyViolationError("Order can no longer be cancelled")
	}

	if order.PaymentIntentID != "" {
		if _, err := s.stripeClient.RefundPayment(order.PaymentIntentID); err != nil {
			logger.Error("Failed to refund cancelled order", slog.String("orderId", orderID.String()), slog.Any("error", err))
		}
	}

	order.Status = models.OrderStatusCancelled
	order.UpdatedAt = time.Now()

	metrics.OrdersCancelled.Inc()
	logger.Info("Order cancelled", slog.String("orderId", orderID.String()))

	return order, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, req *models.UpdateOrderStatusRequest) (*models.Order, error) {

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Order not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to fetch order").WithError(err)
	}

	if !models.CanTransition(order.Status, req.Status) {
		return nil, appErrors.PolicyViolationError("Invalid status transition").
			WithDetail(fmt.Sprintf("%s -> %s", order.Status, req.Status))
	}

	changed, err := s.repo.UpdateStatusIf(ctx, orderID, req.Status, []models.OrderStatus{order.Status})
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to update order status").WithError(err)
	}

	if !changed {
		return nil, appErrors.PolicyViolationError("Order status changed concurrently")
	}

	order.Status = req.Status
	order.UpdatedAt = time.Now()

	middleware.LoggerFromContext(ctx).Info("Order status updated",
		slog.String("orderId", orderID.String()), slog.String("status", string(req.Status)))

	return order, nil
}

func (s *orderService) AssignDeliveryPerson(ctx context.Context, orderID uuid.UUID, req *models.AssignDeliveryPersonRequest) (*models.Order, error) {

	dp := req.DeliveryPerson
	if dp.ID == uuid.Nil {
		dp.ID = uuid.New()
	}

	if err := s.repo.AssignDeliveryPerson(ctx, orderID, &dp); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Order not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to assign delivery person").WithError(err)
	}

	order, err := s.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to fetch order").WithError(err)
	}

	return order, nil
}

func (s *orderService) RateOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID, req *models.RateOrderRequest) (*models.Order, error) {

	order, err := s.getOwnedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusDelivered {
		return nil, appErrors.PolicyViolationError("Only delivered orders can be rated")
	}

	if order.IsRated {
		return nil, appErrors.PolicyViolationError("Order has already been rated")
	}

	comment := s.sanitizer.Sanitize(req.Comment)

	changed, err := s.repo.SetRating(ctx, orderID, req.Rating, comment)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to rate order").WithError(err)
	}

	if !changed {
		return nil, appErrors.PolicyViolationError("Order has already been rated")
	}

	rating := req.Rating
	order.Rating = &rating
	order.Comment = comment
	order.IsRated = true
	order.UpdatedAt = time.Now()

	return order, nil
}

func (s *orderService) RateDeliveryPerson(ctx context.Context, userID uuid.UUID, orderID uuid.UUID, req *models.RateOrderRequest) (*models.Order, error) {

	order, err := s.getOwnedOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusDelivered {
		return nil, appErrors.PolicyViolationError("Only delivered orders can be rated")
	}

	if order.DeliveryPerson == nil {
		return nil, appErrors.PolicyViolationError("Order has no delivery person to rate")
	}

	if order.IsDeliveryRated {
		return nil, appErrors.PolicyViolationError("Delivery has already been rated")
	}

	comment := s.sanitizer.Sanitize(req.Comment)

	changed, err := s.repo.SetDeliveryRating(ctx, orderID, req.Rating, comment)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to rate delivery person").WithError(err)
	}

	if !changed {
		return nil, appErrors.PolicyViolationError("Delivery has already been rated")
	}

	rating := req.Rating
	order.DeliveryRating = &rating
	order.DeliveryComment = comment
	order.IsDeliveryRated = true
	order.UpdatedAt = time.Now()

	return order, nil
}
