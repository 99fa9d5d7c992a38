package models

import "testing"

func TestValidOrderTransition(t *testing.T) {
	tests := []struct {
		name     string
		from     string
		to       string
		expected bool
	}{
		{"accepted to in transit", OrderStatusAccepted, OrderStatusInTransit, true},
		{"in transit to delivered", OrderStatusInTransit, OrderStatusDelivered, true},
		{"delivered to completed", OrderStatusDelivered, OrderStatusCompleted, true},
		{"cannot skip to delivered", OrderStatusAccepted, OrderStatusDelivered, false},
		{"cannot move backwards", OrderStatusDelivered, OrderStatusInTransit, false},
		{"completed is terminal", OrderStatusCompleted, OrderStatusAccepted, false},
		{"unknown from state", "lost", OrderStatusDelivered, false},
		{"unknown to state", OrderStatusAccepted, "lost", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidOrderTransition(tt.from, tt.to); got != tt.expected {
				t.Errorf("ValidOrderTransition(%q, %q) = %v, expected %v",
					tt.from, tt.to, got, tt.expected)
			}
		})
	}
}
