package repository

import (
	"context"
	"time"

	"github.com/lucasferreira-dev/food-delivery-platform/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Hand-written testify mocks used by the service tests.

type MockUserRepository struct {
	mock.Mock
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	args := m.Called(ctx, id, hashedPassword)
	return args.Error(0)
}

type MockAddressRepository struct {
	mock.Mock
}

func NewMockAddressRepository() *MockAddressRepository {
	return &MockAddressRepository{}
}

func (m *MockAddressRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Address), args.Error(1)
}

func (m *MockAddressRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

func (m *MockAddressRepository) Create(ctx context.Context, address *models.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *MockAddressRepository) Update(ctx context.Context, address *models.Address) error {
	args := m.Called(ctx, address)
	return args.Error(0)
}

func (m *MockAddressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

type MockRestaurantRepository struct {
	mock.Mock
}

func NewMockRestaurantRepository() *MockRestaurantRepository {
	return &MockRestaurantRepository{}
}

func (m *MockRestaurantRepository) List(ctx context.Context, filter models.ListRestaurantsFilter, page, size int) ([]models.Restaurant, int, error) {
	args := m.Called(ctx, filter, page, size)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]models.Restaurant), args.Int(1), args.Error(2)
}

func (m *MockRestaurantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Restaurant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Restaurant), args.Error(1)
}

func (m *MockRestaurantRepository) GetMenu(ctx context.Context, restaurantID uuid.UUID) ([]models.MenuItem, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.MenuItem), args.Error(1)
}

func (m *MockRestaurantRepository) GetMenuItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MenuItem), args.Error(1)
}

type MockOrderRepository struct {
	mock.Mock
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{}
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatusIf(ctx context.Context, id uuid.UUID, to models.OrderStatus, allowedFrom []models.OrderStatus) (bool, error) {
	args := m.Called(ctx, id, to, allowedFrom)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) SetRating(ctx context.Context, id uuid.UUID, rating float64, comment string) (bool, error) {
	args := m.Called(ctx, id, rating, comment)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) SetDeliveryRating(ctx context.Context, id uuid.UUID, rating float64, comment string) (bool, error) {
	args := m.Called(ctx, id, rating, comment)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) AssignDeliveryPerson(ctx context.Context, id uuid.UUID, dp *models.DeliveryPerson) error {
	args := m.Called(ctx, id, dp)
	return args.Error(0)
}

type MockCartRepository struct {
	mock.Mock
}

func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{}
}

func (m *MockCartRepository) Save(ctx context.Context, cart *models.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *MockCartRepository) Get(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *MockCartRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type MockRateLimitRepository struct {
	mock.Mock
}

func NewMockRateLimitRepository() *MockRateLimitRepository {
	return &MockRateLimitRepository{}
}

func (m *MockRateLimitRepository) CheckLoginRateLimit(ctx context.Context, username string) (bool, int, int, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Int(1), args.Int(2), args.Error(3)
}

type MockTokenRepository struct {
	mock.Mock
}

func NewMockTokenRepository() *MockTokenRepository {
	return &MockTokenRepository{}
}

func (m *MockTokenRepository) StoreResetToken(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	args := m.Called(ctx, token, userID, ttl)
	return args.Error(0)
}

func (m *MockTokenRepository) ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}
