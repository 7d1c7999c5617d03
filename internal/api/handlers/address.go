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

type AddressHandler struct {
	addressService service.AddressService
	validator      *validator.Validate
}

func NewAddressHandler(addressService service.AddressService) *AddressHandler {
	return &AddressHandler{
		addressService: addressService,
		validator:      validator.New(),
	}
}

func (h *AddressHandler) ListAddresses() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		addresses, err := h.addressService.ListAddresses(r.Context(), claims.UserID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, addresses)
	}
}

func (h *AddressHandler) CreateAddress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		var req models.SaveAddressRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		address, err := h.addressService.CreateAddress(r.Context(), claims.UserID, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusCreated, address)
	}
}

func (h *AddressHandler) UpdateAddress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		addressID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.SaveAddressRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		address, err := h.addressService.UpdateAddress(r.Context(), claims.UserID, addressID, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, address)
	}
}

func (h *AddressHandler) DeleteAddress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		addressID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		if err := h.addressService.DeleteAddress(r.Context(), claims.UserID, addressID); err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, map[string]string{"message": "Address deleted"})
	}
}
