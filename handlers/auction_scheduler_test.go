package handlers

import (
	"testing"
	"time"
)

func TestExceedsThreshold(t *testing.T) {
	tests := []struct {
		name      string
		total     string
		threshold string
		expected  bool
	}{
		{"above threshold", "50001", "50000", true},
		{"exactly at threshold", "50000", "50000", false},
		{"below threshold", "49999", "50000", false},
		{"zero threshold disables gate", "1000000", "0", false},
		{"negative threshold disables gate", "1000000", "-1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExceedsThreshold(dec(tt.total), dec(tt.threshold))
			if got != tt.expected {
				t.Errorf("ExceedsThreshold(%s, %s) = %v, expected %v",
					tt.total, tt.threshold, got, tt.expected)
			}
		})
	}
}

func TestReviewWindowElapsed(t *testing.T) {
	markedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	delay := 60 * time.Minute

	tests := []struct {
		name     string
		now      time.Time
		expected bool
	}{
		{"just marked", markedAt, false},
		{"halfway through window", markedAt.Add(30 * time.Minute), false},
		{"exactly at deadline", markedAt.Add(delay), true},
		{"past deadline", markedAt.Add(2 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReviewWindowElapsed(markedAt, tt.now, delay)
			if got != tt.expected {
				t.Errorf("ReviewWindowElapsed at %s = %v, expected %v", tt.now, got, tt.expected)
			}
		})
	}
}

func TestReviewWindowElapsedZeroDelay(t *testing.T) {
	markedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if !ReviewWindowElapsed(markedAt, markedAt, 0) {
		t.Error("zero delay should elapse immediately")
	}
}
