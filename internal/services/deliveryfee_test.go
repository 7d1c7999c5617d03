package service_test

import (
	"testing"

	"github.com/lucasferreira-dev/food-delivery-platform/internal/config"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/models"
	service "github.com/lucasferreira-dev/food-delivery-platform/internal/services"
	"github.com/stretchr/testify/assert"
)

func newFeeService() service.DeliveryFeeService {
	return service.NewDeliveryFeeService(config.DeliveryFee{
		BaseFee:  3.00,
		PerKmFee: 1.50,
		MinFee:   3.00,
		MaxFee:   25.00,
	})
}

func TestDistance(t *testing.T) {
	svc := newFeeService()

	t.Run("Zero For Same Point", func(t *testing.T) {
		assert.InDelta(t, 0, svc.Distance(-23.5505, -46.6333, -23.5505, -46.6333), 0.001)
	})

	t.Run("Known Pair", func(t *testing.T) {
		// São Paulo to Rio de Janeiro, roughly 360 km
		d := svc.Distance(-23.5505, -46.6333, -22.9068, -43.1729)
		assert.InDelta(t, 360, d, 10)
	})
}

func TestQuote(t *testing.T) {
	svc := newFeeService()

	restaurantAt := func(lat, lon float64) *models.Restaurant {
		return &models.Restaurant{Latitude: lat, Longitude: lon}
	}
	addressAt := func(lat, lon float64) *models.Address {
		return &models.Address{Latitude: lat, Longitude: lon}
	}

	t.Run("Zero Distance Charges The Base Fee", func(t *testing.T) {
		fee := svc.Quote(restaurantAt(-23.5505, -46.6333), addressAt(-23.5505, -46.6333))
		assert.InDelta(t, 3.00, fee, 0.001)
	})

	t.Run("Fee Grows With Distance", func(t *testing.T) {
		near := svc.Quote(restaurantAt(-23.5505, -46.6333), addressAt(-23.5605, -46.6333))
		far := svc.Quote(restaurantAt(-23.5505, -46.6333), addressAt(-23.6505, -46.6333))

		assert.Greater(t, far, near)
	})

	t.Run("Fee Is Clamped To The Maximum", func(t *testing.T) {
		fee := svc.Quote(restaurantAt(-23.5505, -46.6333), addressAt(-22.9068, -43.1729))
		assert.InDelta(t, 25.00, fee, 0.001)
	})

	t.Run("Fee Is Rounded To Cents", func(t *testing.T) {
		fee := svc.Quote(restaurantAt(-23.5505, -46.6333), addressAt(-23.5605, -46.6333))
		assert.InDelta(t, fee, float64(int(fee*100))/100, 0.0001)
	})
}
