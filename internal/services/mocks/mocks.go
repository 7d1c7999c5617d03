// Package mocks provides testify mocks for the service interfaces, used by
// the handler tests.
package mocks

import (
	"context"

	"github.com/lucasferreira-dev/food-delivery-platform/internal/models"
	service "github.com/lucasferreira-dev/food-delivery-platform/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type CartService struct {
	mock.Mock
}

func (m *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *CartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddCartItemRequest) (*models.Cart, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *CartService) ReplaceCart(ctx context.Context, userID uuid.UUID, req *models.AddCartItemRequest) (*models.Cart, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *CartService) UpdateItem(ctx context.Context, userID uuid.UUID, menuItemID uuid.UUID, req *models.UpdateCartItemRequest) (*models.Cart, error) {
	args := m.Called(ctx, userID, menuItemID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *CartService) RemoveItem(ctx context.Context, userID uuid.UUID, menuItemID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID, menuItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *CartService) RemoveItemCompletely(ctx context.Context, userID uuid.UUID, menuItemID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID, menuItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *CartService) ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

type OrderService struct {
	mock.Mock
}

func (m *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *OrderService) QuoteDeliveryFee(ctx context.Context, userID uuid.UUID, restaurantID, addressID uuid.UUID) (*models.DeliveryFeeQuote, error) {
	args := m.Called(ctx, userID, restaurantID, addressID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeliveryFeeQuote), args.Error(1)
}

func (m *OrderService) GetOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *OrderService) ListOrders(ctx context.Context, userID uuid.UUID, scope service.OrderListScope) ([]models.Order, error) {
	args := m.Called(ctx, userID, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *OrderService) CancelOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *OrderService) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, req *models.UpdateOrderStatusRequest) (*models.Order, error) {
	args := m.Called(ctx, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *OrderService) AssignDeliveryPerson(ctx context.Context, orderID uuid.UUID, req *models.AssignDeliveryPersonRequest) (*models.Order, error) {
	args := m.Called(ctx, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *OrderService) RateOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID, req *models.RateOrderRequest) (*models.Order, error) {
	args := m.Called(ctx, userID, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *OrderService) RateDeliveryPerson(ctx context.Context, userID uuid.UUID, orderID uuid.UUID, req *models.RateOrderRequest) (*models.Order, error) {
	args := m.Called(ctx, userID, orderID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

type UserService struct {
	mock.Mock
}

func (m *UserService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoginResponse), args.Error(1)
}

func (m *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req *models.UpdateProfileRequest) (*models.User, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserService) ChangePassword(ctx context.Context, id uuid.UUID, req *models.ChangePasswordRequest) error {
	args := m.Called(ctx, id, req)
	return args.Error(0)
}

func (m *UserService) ForgotPassword(ctx context.Context, req *models.ForgotPasswordRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *UserService) ResetPassword(ctx context.Context, req *models.ResetPasswordRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

type AddressService struct {
	mock.Mock
}

func (m *AddressService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Address), args.Error(1)
}

func (m *AddressService) GetAddress(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*models.Address, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

func (m *AddressService) CreateAddress(ctx context.Context, userID uuid.UUID, req *models.SaveAddressRequest) (*models.Address, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

func (m *AddressService) UpdateAddress(ctx context.Context, userID uuid.UUID, id uuid.UUID, req *models.SaveAddressRequest) (*models.Address, error) {
	args := m.Called(ctx, userID, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

func (m *AddressService) DeleteAddress(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type RestaurantService struct {
	mock.Mock
}

func (m *RestaurantService) ListRestaurants(ctx context.Context, filter models.ListRestaurantsFilter, page, pageSize int) ([]models.Restaurant, int, error) {
	args := m.Called(ctx, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Restaurant), args.Int(1), args.Error(2)
}

func (m *RestaurantService) GetRestaurant(ctx context.Context, id uuid.UUID) (*models.RestaurantWithMenu, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RestaurantWithMenu), args.Error(1)
}

func (m *RestaurantService) GetMenu(ctx context.Context, restaurantID uuid.UUID) ([]models.MenuItem, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MenuItem), args.Error(1)
}
