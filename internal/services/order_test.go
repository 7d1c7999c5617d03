package service_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lucasferreira-dev/food-delivery-platform/internal/config"
	appErrors "github.com/lucasferreira-dev/food-delivery-platform/internal/errors"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/models"
	repository "github.com/lucasferreira-dev/food-delivery-platform/internal/repositories"
	service "github.com/lucasferreira-dev/food-delivery-platform/internal/services"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/services/mocks"
	"github.com/lucasferreira-dev/food-delivery-platform/pkg/sendGrid"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	stripego "github.com/stripe/stripe-go/v81"
)

type mockStripeClient struct {
	mock.Mock
}

func (m *mockStripeClient) CreatePaymentIntent(amount int64, currency string, description string) (*stripego.PaymentIntent, error) {
	args := m.Called(amount, currency, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripego.PaymentIntent), args.Error(1)
}

func (m *mockStripeClient) RefundPayment(paymentIntentID string) (*stripego.Refund, error) {
	args := m.Called(paymentIntentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripego.Refund), args.Error(1)
}

type mockEmailService struct {
	mock.Mock
}

func (m *mockEmailService) Send(ctx context.Context, req *sendGrid.EmailRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

type orderFixture struct {
	repo           *repository.MockOrderRepository
	addressRepo    *repository.MockAddressRepository
	restaurantRepo *repository.MockRestaurantRepository
	userRepo       *repository.MockUserRepository
	cartService    *mocks.CartService
	stripeClient   *mockStripeClient
	emailService   *mockEmailService
	service        service.OrderService
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		repo:           repository.NewMockOrderRepository(),
		addressRepo:    repository.NewMockAddressRepository(),
		restaurantRepo: repository.NewMockRestaurantRepository(),
		userRepo:       repository.NewMockUserRepository(),
		cartService:    new(mocks.CartService),
		stripeClient:   new(mockStripeClient),
		emailService:   new(mockEmailService),
	}

	feeService := service.NewDeliveryFeeService(config.DeliveryFee{
		BaseFee:  3.00,
		PerKmFee: 1.50,
		MinFee:   3.00,
		MaxFee:   25.00,
	})

	f.service = service.NewOrderService(f.repo, f.addressRepo, f.restaurantRepo, f.userRepo,
		f.cartService, feeService, f.stripeClient, f.emailService, "brl")

	return f
}

// cartWith builds a bound cart holding 2x burger at $10 and 1x fries at $5.
func cartWith(userID, restaurantID uuid.UUID) *models.Cart {
	cart := models.NewCart(userID)

	burgerID := uuid.New()
	friesID := uuid.New()
	cart.Lines[burgerID.String()] = models.CartLineItem{MenuItemID: burgerID, Name: "Burger", UnitPrice: 10.00, Quantity: 2}
	cart.Lines[friesID.String()] = models.CartLineItem{MenuItemID: friesID, Name: "Fries", UnitPrice: 5.00, Quantity: 1}
	cart.RestaurantID = &restaurantID
	cart.RestaurantSummary = &models.RestaurantSummary{ID: restaurantID, Name: "Burger Joint"}

	return cart
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	restaurantID := uuid.New()
	addressID := uuid.New()

	restaurant := &models.Restaurant{
		ID: restaurantID, Name: "Burger Joint", IsOpen: true,
		Latitude: -23.5505, Longitude: -46.6333,
	}
	address := &models.Address{
		ID: addressID, UserID: userID, Street: "Rua A",
		Latitude: -23.5505, Longitude: -46.6333,
	}
	user := &models.User{ID: userID, Name: "Lucas", Email: "lucas@example.com"}

	t.Run("Success - Cash Order With Base Delivery Fee", func(t *testing.T) {
		// Arrange
		f := newOrderFixture()
		f.cartService.On("GetCart", ctx, userID).Return(cartWith(userID, restaurantID), nil).Once()
		f.addressRepo.On("GetByID", ctx, addressID).Return(address, nil).Once()
		f.restaurantRepo.On("GetByID", ctx, restaurantID).Return(restaurant, nil).Once()
		f.repo.On("CreateOrder", ctx, mock.AnythingOfType("*models.Order")).Return(nil).Once()
		f.cartService.On("ClearCart", ctx, userID).Return(models.NewCart(userID), nil).Once()
		f.userRepo.On("GetUserByID", ctx, userID).Return(user, nil).Once()
		f.emailService.On("Send", ctx, mock.AnythingOfType("*sendGrid.EmailRequest")).Return(nil).Once()

		// Act
		order, err := f.service.CreateOrder(ctx, userID, &models.CreateOrderRequest{
			AddressID:     addressID,
			PaymentMethod: models.PaymentMethodCash,
		})

		// Assert
		require.NoError(t, err)
		require.NotNil(t, order)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		assert.InDelta(t, 25.00, order.Subtotal, 0.001)
		assert.InDelta(t, 3.00, order.DeliveryFee, 0.001)
		assert.InDelta(t, 28.00, order.Total, 0.001)
		assert.Len(t, order.Items, 2)
		assert.Empty(t, order.PaymentIntentID)
		assert.NotEmpty(t, order.OrderNumber)
		assert.Equal(t, addressID, order.DeliveryAddress.ID)
		assert.Equal(t, restaurantID, order.Restaurant.ID)
		f.repo.AssertExpectations(t)
		f.cartService.AssertExpectations(t)
	})

	t.Run("Success - Card Order Opens A Payment Intent", func(t *testing.T) {
		// Arrange
		f := newOrderFixture()
		f.cartService.On("GetCart", ctx, userID).Return(cartWith(userID, restaurantID), nil).Once()
		f.addressRepo.On("GetByID", ctx, addressID).Return(address, nil).Once()
		f.restaurantRepo.On("GetByID", ctx, restaurantID).Return(restaurant, nil).Once()
		f.stripeClient.On("CreatePaymentIntent", int64(2800), "brl", mock.AnythingOfType("string")).
			Return(&stripego.PaymentIntent{ID: "pi_123"}, nil).Once()
		f.repo.On("CreateOrder", ctx, mock.AnythingOfType("*models.Order")).Return(nil).Once()
		f.cartService.On("ClearCart", ctx, userID).Return(models.NewCart(userID), nil).Once()
		f.userRepo.On("GetUserByID", ctx, userID).Return(user, nil).Once()
		f.emailService.On("Send", ctx, mock.AnythingOfType("*sendGrid.EmailRequest")).Return(nil).Once()

		// Act
		order, err := f.service.CreateOrder(ctx, userID, &models.CreateOrderRequest{
			AddressID:     addressID,
			PaymentMethod: models.PaymentMethodCard,
		})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "pi_123", order.PaymentIntentID)
		f.stripeClient.AssertExpectations(t)
	})

	t.Run("Failure - Cash Change Below Total With Fee", func(t *testing.T) {
		// Arrange
		f := newOrderFixture()
		// covers the subtotal (25.00) but not subtotal plus fee (28.00)
		changeFor := 26.00
		f.cartService.On("GetCart", ctx, userID).Return(cartWith(userID, restaurantID), nil).Once()
		f.addressRepo.On("GetByID", ctx, addressID).Return(address, nil).Once()
		f.restaurantRepo.On("GetByID", ctx, restaurantID).Return(restaurant, nil).Once()

		// Act
		order, err := f.service.CreateOrder(ctx, userID, &models.CreateOrderRequest{
			AddressID:     addressID,
			PaymentMethod: models.PaymentMethodCash,
			ChangeFor:     &changeFor,
		})

		// Assert
		require.Error(t, err)
		assert.Nil(t, order)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeBadRequest, appErr.Code)
		f.repo.AssertNotCalled(t, "CreateOrder")
	})

	t.Run("Success - Cash Change Covers Total With Fee", func(t *testing.T) {
		// Arrange
		f := newOrderFixture()
		changeFor := 28.00
		f.cartService.On("GetCart", ctx, userID).Return(cartWith(userID, restaurantID), nil).Once()
		f.addressRepo.On("GetByID", ctx, addressID).Return(address, nil).Once()
		f.restaurantRepo.On("GetByID", ctx, restaurantID).Return(restaurant, nil).Once()
		f.repo.On("CreateOrder", ctx, mock.AnythingOfType("*models.Order")).Return(nil).Once()
		f.cartService.On("ClearCart", ctx, userID).Return(models.NewCart(userID), nil).Once()
		f.userRepo.On("GetUserByID", ctx, userID).Return(user, nil).Once()
		f.emailService.On("Send", ctx, mock.AnythingOfType("*sendGrid.EmailRequest")).Return(nil).Once()

		// Act
		order, err := f.service.CreateOrder(ctx, userID, &models.CreateOrderRequest{
			AddressID:     addressID,
			PaymentMethod: models.PaymentMethodCash,
			ChangeFor:     &changeFor,
		})

		// Assert
		require.NoError(t, err)
		require.NotNil(t, order.ChangeFor)
		assert.InDelta(t, 28.00, *order.ChangeFor, 0.001)
	})

	t.Run("Failure - Empty Cart", func(t *testing.T) {
		// Arrange
		f := newOrderFixture()
		f.cartService.On("GetCart", ctx, userID).Return(models.NewCart(userID), nil).Once()

		// Act
		order, err := f.service.CreateOrder(ctx, userID, &models.CreateOrderRequest{
			AddressID:     addressID,
			PaymentMethod: models.PaymentMethodCash,
		})

		// Assert
		require.Error(t, err)
		assert.Nil(t, order)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeBadRequest, appErr.Code)
		f.repo.AssertNotCalled(t, "CreateOrder")
	})

	t.Run("Failure - Address Belongs To Another User", func(t *testing.T) {
		// Arrange
		f := newOrderFixture()
		otherAddress := &models.Address{ID: addressID, UserID: uuid.New()}
		f.cartService.On("GetCart", ctx, userID).Return(cartWith(userID, restaurantID), nil).Once()
		f.addressRepo.On("GetByID", ctx, addressID).Return(otherAddress, nil).Once()

		// Act
		_, err := f.service.CreateOrder(ctx, userID, &models.CreateOrderRequest{
			AddressID:     addressID,
			PaymentMethod: models.PaymentMethodCash,
		})

		// Assert
		require.Error(t, err)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeForbidden, appErr.Code)
	})

	t.Run("Failure - Restaurant Closed", func(t *testing.T) {
		// Arrange
		f := newOrderFixture()
		closed := &models.Restaurant{ID: restaurantID, Name: "Burger Joint", IsOpen: false}
		f.cartService.On("GetCart", ctx, userID).Return(cartWith(userID, restaurantID), nil).Once()
		f.addressRepo.On("GetByID", ctx, addressID).Return(address, nil).Once()
		f.restaurantRepo.On("GetByID", ctx, restaurantID).Return(closed, nil).Once()

		// Act
		_, err := f.service.CreateOrder(ctx, userID, &models.CreateOrderRequest{
			AddressID:     addressID,
			PaymentMethod: models.PaymentMethodCash,
		})

		// Assert
		require.Error(t, err)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeBadRequest, appErr.Code)
	})
}

func TestQuoteDeliveryFee(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	restaurantID := uuid.New()
	addressID := uuid.New()

	t.Run("Success - Base Fee At Zero Distance", func(t *testing.T) {
		// Arrange
		f := newOrderFixture()
		restaurant := &models.Restaurant{ID: restaurantID, Latitude: -23.5505, Longitude: -46.6333}
		address := &models.Address{ID: addressID, UserID: userID, Latitude: -23.5505, Longitude: -46.6333}
		f.addressRepo.On("GetByID", ctx, addressID).Return(address, nil).Once()
		f.restaurantRepo.On("GetByID", ctx, restaurantID).Return(restaurant, nil).Once()

		// Act
		quote, err := f.service.QuoteDeliveryFee(ctx, userID, restaurantID, addressID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, restaurantID, quote.RestaurantID)
		assert.Equal(t, addressID, quote.AddressID)
		assert.InDelta(t, 0, quote.DistanceKm, 0.001)
		assert.InDelta(t, 3.00, quote.Fee, 0.001)
	})

	t.Run("Failure - Address Belongs To Another User", func(t *testing.T) {
		// Arrange
		f := newOrderFixture()
		address := &models.Address{ID: addressID, UserID: uuid.New()}
		f.addressRepo.On("GetByID", ctx, addressID).Return(address, nil).Once()

		// Act
		_, err := f.service.QuoteDeliveryFee(ctx, userID, restaurantID, addressID)

		// Assert
		require.Error(t, err)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeForbidden, appErr.Code)
		f.restaurantRepo.AssertNotCalled(t, "GetByID")
	})
}

func TestGetOrder(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	orderID := uuid.New()

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		f := newOrderFixture()
		f.repo.On("GetOrderByID", ctx, orderID).Return(nil, sql.ErrNoRows).Once()

		// Act
		_, err := f.service.GetOrder(ctx, userID, orderID)

		// Assert
		require.Error(t, err)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})

	t.Run("Failure - Owned By Another User", func(t *testing.T) {
		// Arrange
		f := newOrderFixture()
		order := &models.Order{ID: orderID, CustomerID: uuid.New(), Status: models.OrderStatusPending}
		f.repo.On("GetOrderByID", ctx, orderID).Return(order, nil).Once()

		// Act
		_, err := f.service.GetOrder(ctx, userID, orderID)

		// Assert
		require.Error(t, err)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeForbidden, appErr.Code)
	})
}

func TestListOrders(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	history := []models.Order{
		{CustomerID: userID, Status: models.OrderStatusPending},
		{CustomerID: userID, Status: models.OrderStatusDelivered},
		{CustomerID: userID, Status: models.OrderStatusCancelled},
	}

	t.Run("Active Scope", func(t *testing.T) {
		f := newOrderFixture()
		f.repo.On("ListByCustomer", ctx, userID).Return(history, nil).Once()

		orders, err := f.service.ListOrders(ctx, userID, service.ScopeActive)

		require.NoError(t, err)
		assert.Len(t, orders, 1)
		assert.Equal(t, models.OrderStatusPending, orders[0].Status)
	})

	t.Run("Past Scope", func(t *testing.T) {
		f := newOrderFixture()
		f.repo.On("ListByCustomer", ctx, userID).Return(history, nil).Once()

		orders, err := f.service.ListOrders(ctx, userID, service.ScopePast)

		require.NoError(t, err)
		assert.Len(t, orders, 2)
	})

	t.Run("Default Scope Returns Everything", func(t *testing.T) {
		f := newOrderFixture()
		f.repo.On("ListByCustomer", ctx, userID).Return(history, nil).Once()

		orders, err := f.service.ListOrders(ctx, userID, service.ScopeAll)

		require.NoError(t, err)
		assert.Len(t, orders, 3)
	})
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	orderID := uuid.New()

	t.Run("Success - Pending Order", func(t *testing.T) {
		// Arrange
		f := newOrderFixture()
		order := &models.Order{ID: orderID, CustomerID: userID, Status: models.OrderStatusPending}
		f.repo.On("GetOrderByID", ctx, orderID).Return(order, nil).Once()
		f.repo.On("UpdateStatusIf", ctx, orderID, models.OrderStatusCancelled,
			[]models.OrderStatus{models.OrderStatusPending, models.OrderStatusConfirmed}).Return(true, nil).Once()

		// Act
		cancelled, err := f.service.CancelOrder(ctx, userID, orderID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
		f.repo.AssertExpectations(t)
	})

	t.Run("Success - Card Order Gets Refunded", func(t *testing.T) {
		// Arrange
		f := newOrderFixture()
		order := &models.Order{ID: orderID, CustomerID: userID, Status: models.OrderStatusConfirmed, PaymentIntentID: "pi_42"}
		f.repo.On("GetOrderByID", ctx, orderID).Return(order, nil).Once()
		f.repo.On("UpdateStatusIf", ctx, orderID, models.OrderStatusCancelled,
			mock.AnythingOfType("[]models.OrderStatus")).Return(true, nil).Once()
		f.stripeClient.On("RefundPayment", "pi_42").Return(&stripego.Refund{ID: "re_1"}, nil).Once()

		// Act
		_, err := f.service.CancelOrder(ctx, userID, orderID)

		// Assert
		require.NoError(t, err)
		f.stripeClient.AssertExpectations(t)
	})

	t.Run("Failure - Already Preparing", func(t *testing.T) {
		// Arrange
		f := newOrderFixture()
		order := &models.Order{ID: orderID, CustomerID: userID, Status: models.OrderStatusPreparing}
		f.repo.On("GetOrderByID", ctx, orderID).Return(order, nil).Once()

		// Act
		_, err := f.service.CancelOrder(ctx, userID, orderID)

		// Assert
		require.Error(t, err)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodePolicyViolation, appErr.Code)
		f.repo.AssertNotCalled(t, "UpdateStatusIf")
	})

	t.Run("Failure - Lost The Race", func(t *testing.T) {
		// Arrange
		f := newOrderFixture()
		order := &models.Order{ID: orderID, CustomerID: userID, Status: models.OrderStatusConfirmed}
		f.repo.On("GetOrderByID", ctx, orderID).Return(order, nil).Once()
		f.repo.On("UpdateStatusIf", ctx, orderID, models.OrderStatusCancelled,
			mock.AnythingOfType("[]models.OrderStatus")).Return(false, nil).Once()

		// Act
		_, err := f.service.CancelOrder(ctx, userID, orderID)

		// Assert
		require.Error(t, err)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodePolicyViolation, appErr.Code)
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		f := newOrderFixture()
		order := &models.Order{ID: orderID, CustomerID: uuid.New(), Status: models.OrderStatusConfirmed}
		f.repo.On("GetOrderByID", ctx, orderID).Return(order, nil).Once()
		f.repo.On("UpdateStatusIf", ctx, orderID, models.OrderStatusPreparing,
			[]models.OrderStatus{models.OrderStatusConfirmed}).Return(true, nil).Once()

		// Act
		updated, err := f.service.UpdateOrderStatus(ctx, orderID, &models.UpdateOrderStatusRequest{Status: models.OrderStatusPreparing})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPreparing, updated.Status)
	})

	t.Run("Failure - Invalid Transition", func(t *testing.T) {
		// Arrange
		f := newOrderFixture()
		order := &models.Order{ID: orderID, CustomerID: uuid.New(), Status: models.OrderStatusDelivered}
		f.repo.On("GetOrderByID", ctx, orderID).Return(order, nil).Once()

		// Act
		_, err := f.service.UpdateOrderStatus(ctx, orderID, &models.UpdateOrderStatusRequest{Status: models.OrderStatusPreparing})

		// Assert
		require.Error(t, err)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodePolicyViolation, appErr.Code)
		f.repo.AssertNotCalled(t, "UpdateStatusIf")
	})
}

func TestRateOrder(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	orderID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		f := newOrderFixture()
		order := &models.Order{ID: orderID, CustomerID: userID, Status: models.OrderStatusDelivered}
		f.repo.On("GetOrderByID", ctx, orderID).Return(order, nil).Once()
		f.repo.On("SetRating", ctx, orderID, 4.5, "Muito bom").Return(true, nil).Once()

		// Act
		rated, err := f.service.RateOrder(ctx, userID, orderID, &models.RateOrderRequest{Rating: 4.5, Comment: "Muito bom"})

		// Assert
		require.NoError(t, err)
		require.NotNil(t, rated.Rating)
		assert.InDelta(t, 4.5, *rated.Rating, 0.001)
		assert.True(t, rated.IsRated)
	})

	t.Run("Failure - Not Delivered Yet", func(t *testing.T) {
		// Arrange
		f := newOrderFixture()
		order := &models.Order{ID: orderID, CustomerID: userID, Status: models.OrderStatusOutForDelivery}
		f.repo.On("GetOrderByID", ctx, orderID).Return(order, nil).Once()

		// Act
		_, err := f.service.RateOrder(ctx, userID, orderID, &models.RateOrderRequest{Rating: 5})

		// Assert
		require.Error(t, err)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodePolicyViolation, appErr.Code)
		f.repo.AssertNotCalled(t, "SetRating")
	})

	t.Run("Failure - Already Rated", func(t *testing.T) {
		// Arrange
		f := newOrderFixture()
		order := &models.Order{ID: orderID, CustomerID: userID, Status: models.OrderStatusDelivered, IsRated: true}
		f.repo.On("GetOrderByID", ctx, orderID).Return(order, nil).Once()

		// Act
		_, err := f.service.RateOrder(ctx, userID, orderID, &models.RateOrderRequest{Rating: 3})

		// Assert
		require.Error(t, err)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodePolicyViolation, appErr.Code)
	})
}

func TestRateDeliveryPerson(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	orderID := uuid.New()

	t.Run("Failure - No Delivery Person Assigned", func(t *testing.T) {
		// Arrange
		f := newOrderFixture()
		order := &models.Order{ID: orderID, CustomerID: userID, Status: models.OrderStatusDelivered}
		f.repo.On("GetOrderByID", ctx, orderID).Return(order, nil).Once()

		// Act
		_, err := f.service.RateDeliveryPerson(ctx, userID, orderID, &models.RateOrderRequest{Rating: 5})

		// Assert
		require.Error(t, err)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodePolicyViolation, appErr.Code)
	})

	t.Run("Success", func(t *testing.T) {
		// Arrange
		f := newOrderFixture()
		order := &models.Order{
			ID: orderID, CustomerID: userID, Status: models.OrderStatusDelivered,
			DeliveryPerson: &models.DeliveryPerson{ID: uuid.New(), Name: "Carlos"},
		}
		f.repo.On("GetOrderByID", ctx, orderID).Return(order, nil).Once()
		f.repo.On("SetDeliveryRating", ctx, orderID, 5.0, "").Return(true, nil).Once()

		// Act
		rated, err := f.service.RateDeliveryPerson(ctx, userID, orderID, &models.RateOrderRequest{Rating: 5})

		// Assert
		require.NoError(t, err)
		assert.True(t, rated.IsDeliveryRated)
		require.NotNil(t, rated.DeliveryRating)
		assert.InDelta(t, 5.0, *rated.DeliveryRating, 0.001)
	})
}
