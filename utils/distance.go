package utils

import (
	"errors"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// DistanceKm returns the great-circle distance in kilometers between the
// pickup and delivery coordinates of a quotation. Used as a rough route
// estimate shown to suppliers, not for billing.
func DistanceKm(pickupLat, pickupLng, deliveryLat, deliveryLng float64) float64 {
	pickup := orb.Point{pickupLng, pickupLat}
	delivery := orb.Point{deliveryLng, deliveryLat}
	return geo.Distance(pickup, delivery) / 1000
}

// ValidateCoordinate checks latitude/longitude bounds.
func ValidateCoordinate(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return errors.New("latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}
