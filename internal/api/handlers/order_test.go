package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lucasferreira-dev/food-delivery-platform/internal/api/handlers"
	appErrors "github.com/lucasferreira-dev/food-delivery-platform/internal/errors"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/models"
	service "github.com/lucasferreira-dev/food-delivery-platform/internal/services"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/services/mocks"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupOrderTest() (*mocks.OrderService, *handlers.OrderHandler) {
	mockOrderService := new(mocks.OrderService)
	handler := handlers.NewOrderHandler(mockOrderService)

	return mockOrderService, handler
}

func TestCreateOrderHandler(t *testing.T) {
	userID := uuid.New()

	validBody := func() *bytes.Buffer {
		body, _ := json.Marshal(models.CreateOrderRequest{
			AddressID:     uuid.New(),
			PaymentMethod: models.PaymentMethodCash,
		})

		return bytes.NewBuffer(body)
	}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockService, handler := setupOrderTest()
		order := &models.Order{
			ID:         uuid.New(),
			CustomerID: userID,
			Status:     models.OrderStatusPending,
			Total:      28.00,
		}
		mockService.On("CreateOrder", mock.Anything, userID, mock.AnythingOfType("*models.CreateOrderRequest")).
			Return(order, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/orders", validBody(), userID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.CreateOrder()(rr, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp struct {
			Success bool `json:"success"`
			Data    struct {
				StatusText  string  `json:"statusText"`
				StatusColor string  `json:"statusColor"`
				CanRate     bool    `json:"canRate"`
				Order       *struct {
					Total float64 `json:"total"`
				} `json:"order"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "Pendente", resp.Data.StatusText)
		assert.Equal(t, "#FFA500", resp.Data.StatusColor)
		assert.False(t, resp.Data.CanRate)
		require.NotNil(t, resp.Data.Order)
		assert.InDelta(t, 28.00, resp.Data.Order.Total, 0.001)
		mockService.AssertExpectations(t)
	})

	t.Run("Failure - Unauthenticated", func(t *testing.T) {
		// Arrange
		mockService, handler := setupOrderTest()

		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/orders", validBody(), nil)
		rr := httptest.NewRecorder()

		// Act
		handler.CreateOrder()(rr, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		mockService.AssertNotCalled(t, "CreateOrder")
	})

	t.Run("Failure - Empty Cart Surfaces As 400", func(t *testing.T) {
		// Arrange
		mockService, handler := setupOrderTest()
		mockService.On("CreateOrder", mock.Anything, userID, mock.AnythingOfType("*models.CreateOrderRequest")).
			Return(nil, appErrors.BadRequestError("Cart is empty")).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/orders", validBody(), userID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.CreateOrder()(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		env := decodeEnvelope(t, rr)
		assert.False(t, env.Success)
		require.NotNil(t, env.Error)
		assert.Equal(t, appErrors.ErrCodeBadRequest, env.Error.Code)
	})

	t.Run("Failure - Invalid Payment Method", func(t *testing.T) {
		// Arrange
		mockService, handler := setupOrderTest()

		body, _ := json.Marshal(map[string]any{
			"address_id":    uuid.New(),
			"paymentMethod": "PIX",
		})
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/orders", bytes.NewBuffer(body), userID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.CreateOrder()(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "CreateOrder")
	})
}

func TestDeliveryFeeQuoteHandler(t *testing.T) {
	userID := uuid.New()
	restaurantID := uuid.New()
	addressID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockService, handler := setupOrderTest()
		quote := &models.DeliveryFeeQuote{
			RestaurantID: restaurantID,
			AddressID:    addressID,
			DistanceKm:   2.5,
			Fee:          6.75,
		}
		mockService.On("QuoteDeliveryFee", mock.Anything, userID, restaurantID, addressID).
			Return(quote, nil).Once()

		target := "/api/v1/delivery-fee?restaurantId=" + restaurantID.String() + "&addressId=" + addressID.String()
		req := testutils.CreateTestRequestWithContext(http.MethodGet, target, nil, userID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.DeliveryFeeQuote()(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Success bool `json:"success"`
			Data    struct {
				DistanceKm float64 `json:"distanceKm"`
				Fee        float64 `json:"fee"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.InDelta(t, 2.5, resp.Data.DistanceKm, 0.001)
		assert.InDelta(t, 6.75, resp.Data.Fee, 0.001)
		mockService.AssertExpectations(t)
	})

	t.Run("Failure - Invalid Restaurant ID", func(t *testing.T) {
		// Arrange
		mockService, handler := setupOrderTest()

		target := "/api/v1/delivery-fee?restaurantId=not-a-uuid&addressId=" + addressID.String()
		req := testutils.CreateTestRequestWithContext(http.MethodGet, target, nil, userID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.DeliveryFeeQuote()(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "QuoteDeliveryFee")
	})

	t.Run("Failure - Unauthenticated", func(t *testing.T) {
		// Arrange
		mockService, handler := setupOrderTest()

		target := "/api/v1/delivery-fee?restaurantId=" + restaurantID.String() + "&addressId=" + addressID.String()
		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, target, nil, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.DeliveryFeeQuote()(rr, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		mockService.AssertNotCalled(t, "QuoteDeliveryFee")
	})
}

func TestListOrdersHandler(t *testing.T) {
	userID := uuid.New()

	t.Run("Scope Is Forwarded", func(t *testing.T) {
		// Arrange
		mockService, handler := setupOrderTest()
		orders := []models.Order{{CustomerID: userID, Status: models.OrderStatusPending}}
		mockService.On("ListOrders", mock.Anything, userID, service.ScopeActive).Return(orders, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/orders?scope=active", nil, userID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.ListOrders()(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Empty History Returns An Empty List", func(t *testing.T) {
		// Arrange
		mockService, handler := setupOrderTest()
		mockService.On("ListOrders", mock.Anything, userID, service.ScopeAll).Return([]models.Order{}, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/orders", nil, userID, nil)
		rr := httptest.NewRecorder()

		// Act
		handler.ListOrders()(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Success bool              `json:"success"`
			Data    []json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Empty(t, resp.Data)
	})
}

func TestCancelOrderHandler(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	t.Run("Failure - Policy Violation Surfaces As 409", func(t *testing.T) {
		// Arrange
		mockService, handler := setupOrderTest()
		mockService.On("CancelOrder", mock.Anything, userID, orderID).
			Return(nil, appErrors.PolicyViolationError("Order can no longer be cancelled")).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/cancel",
			nil, userID, map[string]string{"id": orderID.String()})
		rr := httptest.NewRecorder()

		// Act
		handler.CancelOrder()(rr, req)

		// Assert
		assert.Equal(t, http.StatusConflict, rr.Code)
		env := decodeEnvelope(t, rr)
		require.NotNil(t, env.Error)
		assert.Equal(t, appErrors.ErrCodePolicyViolation, env.Error.Code)
	})

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockService, handler := setupOrderTest()
		order := &models.Order{ID: orderID, CustomerID: userID, Status: models.OrderStatusCancelled}
		mockService.On("CancelOrder", mock.Anything, userID, orderID).Return(order, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/cancel",
			nil, userID, map[string]string{"id": orderID.String()})
		rr := httptest.NewRecorder()

		// Act
		handler.CancelOrder()(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Data struct {
				StatusText string `json:"statusText"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Cancelado", resp.Data.StatusText)
	})
}

func TestRateOrderHandler(t *testing.T) {
	userID := uuid.New()
	orderID := uuid.New()

	t.Run("Failure - Rating Out Of Range", func(t *testing.T) {
		// Arrange
		mockService, handler := setupOrderTest()

		body, _ := json.Marshal(models.RateOrderRequest{Rating: 6})
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/rate",
			bytes.NewBuffer(body), userID, map[string]string{"id": orderID.String()})
		rr := httptest.NewRecorder()

		// Act
		handler.RateOrder()(rr, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "RateOrder")
	})

	t.Run("Success - Half Star Rating", func(t *testing.T) {
		// Arrange
		mockService, handler := setupOrderTest()
		rating := 4.5
		order := &models.Order{
			ID: orderID, CustomerID: userID, Status: models.OrderStatusDelivered,
			Rating: &rating, IsRated: true,
		}
		mockService.On("RateOrder", mock.Anything, userID, orderID, mock.AnythingOfType("*models.RateOrderRequest")).
			Return(order, nil).Once()

		body, _ := json.Marshal(models.RateOrderRequest{Rating: 4.5, Comment: "Muito bom"})
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/rate",
			bytes.NewBuffer(body), userID, map[string]string{"id": orderID.String()})
		rr := httptest.NewRecorder()

		// Act
		handler.RateOrder()(rr, req)

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Data struct {
				CanRate bool `json:"canRate"`
				Order   struct {
					Rating float64 `json:"rating"`
				} `json:"order"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.False(t, resp.Data.CanRate)
		assert.InDelta(t, 4.5, resp.Data.Order.Rating, 0.001)
		mockService.AssertExpectations(t)
	})
}
