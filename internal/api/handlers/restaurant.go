package handlers

import (
	"net/http"
	"strconv"

	"github.com/lucasferreira-dev/food-delivery-platform/internal/models"
	service "github.com/lucasferreira-dev/food-delivery-platform/internal/services"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/utils"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/utils/response"
)

// RestaurantHandler serves the public catalog endpoints; no authentication
// required.
type RestaurantHandler struct {
	restaurantService service.RestaurantService
}

func NewRestaurantHandler(restaurantService service.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{restaurantService: restaurantService}
}

// for eg: GET /api/v1/restaurants?category=pizza&page=1&pageSize=20
func (h *RestaurantHandler) ListRestaurants() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		filter := models.ListRestaurantsFilter{
			Category: r.URL.Query().Get("category"),
			Search:   r.URL.Query().Get("search"),
		}

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}

		pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
		if pageSize < 1 || pageSize > 100 {
			pageSize = 20
		}

		restaurants, total, err := h.restaurantService.ListRestaurants(r.Context(), filter, page, pageSize)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.PaginatedResponse{
			Data:     restaurants,
			Total:    total,
			Page:     page,
			PageSize: pageSize,
		})
	}
}

func (h *RestaurantHandler) GetRestaurant() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		restaurantID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		restaurant, err := h.restaurantService.GetRestaurant(r.Context(), restaurantID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, restaurant)
	}
}

func (h *RestaurantHandler) GetMenu() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		restaurantID, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		menu, err := h.restaurantService.GetMenu(r.Context(), restaurantID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, menu)
	}
}
