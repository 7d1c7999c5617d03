package handlers

import (
	"log/slog"
	"net/http"

	"github.com/lucasferreira-dev/food-delivery-platform/internal/api/middleware"
	appErrors "github.com/lucasferreira-dev/food-delivery-platform/internal/errors"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/models"
	service "github.com/lucasferreira-dev/food-delivery-platform/internal/services"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/utils"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orderService service.OrderService
	validator    *validator.Validate
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		validator:    validator.New(),
	}
}

func (h *OrderHandler) CreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		var req models.CreateOrderRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.CreateOrder(r.Context(), claims.UserID, &req)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Warn("Order creation failed", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusCreated, models.NewOrderResponse(order))
	}
}

// DeliveryFeeQuote serves GET /api/v1/delivery-fee?restaurantId=&addressId=.
func (h *OrderHandler) DeliveryFeeQuote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		restaurantID, err := uuid.Parse(r.URL.Query().Get("restaurantId"))
		if err != nil {
			response.Error(w, appErrors.BadRequestError("Invalid restaurant id"))
			return
		}

		addressID, err := uuid.Parse(r.URL.Query().Get("addressId"))
		if err != nil {
			response.Error(w, appErrors.BadRequestError("Invalid address id"))
			return
		}

		quote, err := h.orderService.QuoteDeliveryFee(r.Context(), claims.UserID, restaurantID, addressID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, quote)
	}
}

func (h *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		orderID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		order, err := h.orderService.GetOrder(r.Context(), claims.UserID, orderID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.NewOrderResponse(order))
	}
}

// ListOrders supports ?scope=active|past; anything else returns the full
// history.
func (h *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		scope := service.OrderListScope(r.URL.Query().Get("scope"))

		orders, err := h.orderService.ListOrders(r.Context(), claims.UserID, scope)
		if err != nil {
			response.Error(w, err)
			return
		}

		result := make([]*models.OrderResponse, 0, len(orders))
		for i := range orders {
			result = append(result, models.NewOrderResponse(&orders[i]))
		}

		response.Success(w, http.StatusOK, result)
	}
}

func (h *OrderHandler) CancelOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		orderID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		order, err := h.orderService.CancelOrder(r.Context(), claims.UserID, orderID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.NewOrderResponse(order))
	}
}

func (h *OrderHandler) UpdateOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		orderID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.UpdateOrderStatusRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.UpdateOrderStatus(r.Context(), orderID, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.NewOrderResponse(order))
	}
}

func (h *OrderHandler) AssignDeliveryPerson() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		orderID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.AssignDeliveryPersonRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.AssignDeliveryPerson(r.Context(), orderID, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.NewOrderResponse(order))
	}
}

func (h *OrderHandler) RateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		orderID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.RateOrderRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.RateOrder(r.Context(), claims.UserID, orderID, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.NewOrderResponse(order))
	}
}

func (h *OrderHandler) RateDeliveryPerson() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		orderID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.RateOrderRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		order, err := h.orderService.RateDeliveryPerson(r.Context(), claims.UserID, orderID, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.NewOrderResponse(order))
	}
}
