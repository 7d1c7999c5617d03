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
)

type UserHandler struct {
	userService service.UserService
	validator   *validator.Validate
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator.New(),
	}
}

func (h *UserHandler) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.RegisterRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		user, err := h.userService.Register(r.Context(), &req)
		if err != nil {
			middleware.LoggerFromContext(r.Context()).Warn("Registration failed", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusCreated, user)
	}
}

func (h *UserHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.LoginRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		result, err := h.userService.Login(r.Context(), &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		if !result.Success {
			if result.RetryAfter > 0 {
				response.WriteJson(w, http.StatusTooManyRequests, result)
				return
			}
			response.WriteJson(w, http.StatusUnauthorized, result)
			return
		}

		response.Success(w, http.StatusOK, result)
	}
}

func (h *UserHandler) Profile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		user, err := h.userService.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, user)
	}
}

func (h *UserHandler) UpdateProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		var req models.UpdateProfileRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		user, err := h.userService.UpdateProfile(r.Context(), claims.UserID, &req)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, user)
	}
}

func (h *UserHandler) ChangePassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		claims := middleware.ClaimsFromContext(r.Context())
		if claims == nil {
			response.Error(w, appErrors.UnauthorizedError("Authentication required"))
			return
		}

		var req models.ChangePasswordRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		if err := h.userService.ChangePassword(r.Context(), claims.UserID, &req); err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, map[string]string{"message": "Password updated"})
	}
}

func (h *UserHandler) ForgotPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.ForgotPasswordRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		if err := h.userService.ForgotPassword(r.Context(), &req); err != nil {
			response.Error(w, err)
			return
		}

		// Same answer whether or not the email exists.
		response.Success(w, http.StatusOK, map[string]string{"message": "If the email is registered, a reset code has been sent"})
	}
}

func (h *UserHandler) ResetPassword() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		var req models.ResetPasswordRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		if err := h.userService.ResetPassword(r.Context(), &req); err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, map[string]string{"message": "Password updated"})
	}
}
