package handlers

import (
	"net/http"

	"github.com/lucasferreira-dev/food-delivery-platform/internal/api/middleware"
	appErrors "github.com/lucasferreira-dev/food-delivery-platform/internal/errors"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/models"
	service "github.com/lucasferreira-dev/food-delivery-platform/internal/services"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/utils"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type CartHandler struct {
	cartService service.CartService
	validator   *validator.Validate
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validator:   validator.New(),
	}
}

func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		cart, err := h.cartService.GetCart(r.Context(), claims.UserID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.NewCartResponse(cart))
	}
}

func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		var req models.AddCartItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		cart, err := h.cartService.AddItem(r.Context(), claims.UserID, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.NewCartResponse(cart))
	}
}

// ReplaceCart handles the confirmed half of the cross-restaurant flow: the
// client calls it after AddItem answered with CART_CONFLICT.
func (h *CartHandler) ReplaceCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		var req models.AddCartItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		cart, err := h.cartService.ReplaceCart(r.Context(), claims.UserID, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.NewCartResponse(cart))
	}
}

func (h *CartHandler) UpdateItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		menuItemID, err := utils.ParseID(r, "itemId")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.UpdateCartItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		cart, err := h.cartService.UpdateItem(r.Context(), claims.UserID, menuItemID, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.NewCartResponse(cart))
	}
}

func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		menuItemID, err := utils.ParseID(r, "itemId")
		if err != nil {
			response.Error(w, err)
			return
		}

		cart, err := h.cartService.RemoveItem(r.Context(), claims.UserID, menuItemID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.NewCartResponse(cart))
	}
}

func (h *CartHandler) RemoveItemCompletely() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		menuItemID, err := utils.ParseID(r, "itemId")
		if err != nil {
			response.Error(w, err)
			return
		}

		cart, err := h.cartService.RemoveItemCompletely(r.Context(), claims.UserID, menuItemID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.NewCartResponse(cart))
	}
}

func (h *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		cart, err := h.cartService.ClearCart(r.Context(), claims.UserID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.NewCartResponse(cart))
	}
}
