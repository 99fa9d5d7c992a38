package utils

import (
	"math"
	"testing"
)

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name        string
		pickupLat   float64
		pickupLng   float64
		deliveryLat float64
		deliveryLng float64
		wantKm      float64
		tolerance   float64
	}{
		{"stockholm to gothenburg", 59.3293, 18.0686, 57.7089, 11.9746, 398, 5},
		{"same point", 59.3293, 18.0686, 59.3293, 18.0686, 0, 0.001},
		{"stockholm to malmo", 59.3293, 18.0686, 55.6050, 13.0038, 514, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.pickupLat, tt.pickupLng, tt.deliveryLat, tt.deliveryLng)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("DistanceKm = %.1f, expected %.1f ± %.1f", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

func TestValidateCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"valid", 59.3, 18.1, false},
		{"boundary values", 90, 180, false},
		{"negative boundary", -90, -180, false},
		{"latitude too high", 90.1, 0, true},
		{"latitude too low", -90.1, 0, true},
		{"longitude too high", 0, 180.1, true},
		{"longitude too low", 0, -180.1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinate(tt.lat, tt.lng)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoordinate(%v, %v) error = %v, wantErr %v",
					tt.lat, tt.lng, err, tt.wantErr)
			}
		})
	}
}
