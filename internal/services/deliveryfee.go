package service

import (
	"math"

	"github.com/lucasferreira-dev/food-delivery-platform/internal/config"
	"github.com/lucasferreira-dev/food-delivery-platform/internal/models"
)

type DeliveryFeeService interface {
	// Quote prices delivery from the restaurant to the address: base fee
	// plus a per-km rate over the straight-line distance, clamped to the
	// configured bounds and rounded to cents.
	Quote(restaurant *models.Restaurant, address *models.Address) float64
	Distance(lat1, lon1, lat2, lon2 float64) float64
}

type deliveryFeeService struct {
	cfg config.DeliveryFee
}

func NewDeliveryFeeService(cfg config.DeliveryFee) DeliveryFeeService {
	return &deliveryFeeService{cfg: cfg}
}

const earthRadiusKm = 6371.0

// Distance returns the haversine distance in kilometers.
func (s *deliveryFeeService) Distance(lat1, lon1, lat2, lon2 float64) float64 {

	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func (s *deliveryFeeService) Quote(restaurant *models.Restaurant, address *models.Address) float64 {

	distance := s.Distance(restaurant.Latitude, restaurant.Longitude, address.Latitude, address.Longitude)

	fee := s.cfg.BaseFee + distance*s.cfg.PerKmFee

	fee = math.Max(fee, s.cfg.MinFee)
	fee = math.Min(fee, s.cfg.MaxFee)

	return math.Round(fee*100) / 100
}
