package handlers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"p9e.in/flytta/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func settingsWithCommissions(moving, additional, truck string) *models.Settings {
	return &models.Settings{
		MovingCommissionPct:     dec(moving),
		AdditionalCommissionPct: dec(additional),
		TruckCommissionPct:      dec(truck),
	}
}

func TestComputePricing(t *testing.T) {
	tests := []struct {
		name           string
		moving         string
		truck          string
		additional     string
		settings       *models.Settings
		rutDiscount    bool
		extraInsurance bool
		wantFinal      string
		wantInitial    string
		wantRemaining  string
		wantRut        string
	}{
		{
			name:          "rut halves moving and additional",
			moving:        "10000",
			additional:    "2000",
			truck:         "1000",
			settings:      settingsWithCommissions("0", "0", "0"),
			rutDiscount:   true,
			wantFinal:     "7000",
			wantInitial:   "1400",
			wantRemaining: "5600",
			wantRut:       "6000",
		},
		{
			name:          "no rut keeps full price",
			moving:        "10000",
			additional:    "2000",
			truck:         "0",
			settings:      settingsWithCommissions("0", "0", "0"),
			wantFinal:     "12000",
			wantInitial:   "2400",
			wantRemaining: "9600",
			wantRut:       "0",
		},
		{
			name:          "commission applied per component",
			moving:        "1000",
			additional:    "0",
			truck:         "500",
			settings:      settingsWithCommissions("10", "10", "5"),
			wantFinal:     "1625",
			wantInitial:   "325",
			wantRemaining: "1300",
			wantRut:       "0",
		},
		{
			name:           "insurance added after rounding",
			moving:         "1001",
			additional:     "0",
			truck:          "0",
			settings:       settingsWithCommissions("0", "0", "0"),
			rutDiscount:    true,
			extraInsurance: true,
			wantFinal:      "750",
			wantInitial:    "150",
			wantRemaining:  "600",
			wantRut:        "500.5",
		},
		{
			name:          "truck cost is never rut deductible",
			moving:        "4000",
			additional:    "0",
			truck:         "3000",
			settings:      settingsWithCommissions("0", "0", "0"),
			rutDiscount:   true,
			wantFinal:     "5000",
			wantInitial:   "1000",
			wantRemaining: "4000",
			wantRut:       "2000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bid := &models.Bid{
				MovingCost:         dec(tt.moving),
				TruckCost:          dec(tt.truck),
				AdditionalServices: dec(tt.additional),
			}
			got := ComputePricing(bid, tt.rutDiscount, tt.extraInsurance, tt.settings)

			if !got.FinalPrice.Equal(dec(tt.wantFinal)) {
				t.Errorf("FinalPrice = %s, expected %s", got.FinalPrice, tt.wantFinal)
			}
			if !got.InitialPayment.Equal(dec(tt.wantInitial)) {
				t.Errorf("InitialPayment = %s, expected %s", got.InitialPayment, tt.wantInitial)
			}
			if !got.RemainingPayment.Equal(dec(tt.wantRemaining)) {
				t.Errorf("RemainingPayment = %s, expected %s", got.RemainingPayment, tt.wantRemaining)
			}
			if !got.RutDeduction.Equal(dec(tt.wantRut)) {
				t.Errorf("RutDeduction = %s, expected %s", got.RutDeduction, tt.wantRut)
			}
		})
	}
}

func TestComputePricingSplitSumsExactly(t *testing.T) {
	settings := settingsWithCommissions("10", "10", "5")
	amounts := []string{"1", "999", "1001", "12345", "99999", "123456"}

	for _, amount := range amounts {
		bid := &models.Bid{
			MovingCost:         dec(amount),
			TruckCost:          dec("333"),
			AdditionalServices: dec("77"),
		}
		got := ComputePricing(bid, true, true, settings)
		sum := got.InitialPayment.Add(got.RemainingPayment)
		if !sum.Equal(got.FinalPrice) {
			t.Errorf("moving=%s: initial %s + remaining %s = %s, expected final %s",
				amount, got.InitialPayment, got.RemainingPayment, sum, got.FinalPrice)
		}
	}
}

func TestComputePricingFinalIsWholeSEK(t *testing.T) {
	settings := settingsWithCommissions("12.5", "7.25", "3")
	bid := &models.Bid{
		MovingCost:         dec("10333"),
		TruckCost:          dec("1234"),
		AdditionalServices: dec("567"),
	}
	got := ComputePricing(bid, true, false, settings)
	if !got.FinalPrice.Equal(got.FinalPrice.Round(0)) {
		t.Errorf("FinalPrice = %s, expected a whole amount", got.FinalPrice)
	}
}

func pendingBid(total string, createdAt time.Time, id string) models.Bid {
	return models.Bid{
		ID:         uuid.MustParse(id),
		MovingCost: dec(total),
		Status:     models.BidStatusPending,
		CreatedAt:  createdAt,
	}
}

func TestSelectWinner(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	idA := "0a000000-0000-0000-0000-000000000001"
	idB := "0b000000-0000-0000-0000-000000000002"
	idC := "0c000000-0000-0000-0000-000000000003"

	t.Run("lowest total wins", func(t *testing.T) {
		bids := []models.Bid{
			pendingBid("5000", base, idA),
			pendingBid("4500", base.Add(time.Hour), idB),
			pendingBid("6000", base, idC),
		}
		winner := SelectWinner(bids)
		if winner == nil || winner.ID.String() != idB {
			t.Fatalf("expected bid %s to win, got %v", idB, winner)
		}
	})

	t.Run("tie goes to earliest bid", func(t *testing.T) {
		bids := []models.Bid{
			pendingBid("5000", base.Add(time.Hour), idA),
			pendingBid("5000", base, idB),
		}
		winner := SelectWinner(bids)
		if winner == nil || winner.ID.String() != idB {
			t.Fatalf("expected earliest bid %s to win, got %v", idB, winner)
		}
	})

	t.Run("tie at same instant goes to smaller id", func(t *testing.T) {
		bids := []models.Bid{
			pendingBid("5000", base, idB),
			pendingBid("5000", base, idA),
		}
		winner := SelectWinner(bids)
		if winner == nil || winner.ID.String() != idA {
			t.Fatalf("expected smaller id %s to win, got %v", idA, winner)
		}
	})

	t.Run("non pending bids are skipped", func(t *testing.T) {
		withdrawn := pendingBid("1000", base, idA)
		withdrawn.Status = models.BidStatusWithdrawn
		bids := []models.Bid{
			withdrawn,
			pendingBid("5000", base, idB),
		}
		winner := SelectWinner(bids)
		if winner == nil || winner.ID.String() != idB {
			t.Fatalf("expected pending bid %s to win, got %v", idB, winner)
		}
	})

	t.Run("no pending bids returns nil", func(t *testing.T) {
		rejected := pendingBid("1000", base, idA)
		rejected.Status = models.BidStatusRejected
		if winner := SelectWinner([]models.Bid{rejected}); winner != nil {
			t.Fatalf("expected nil winner, got %v", winner)
		}
		if winner := SelectWinner(nil); winner != nil {
			t.Fatalf("expected nil winner for empty slice, got %v", winner)
		}
	})
}

func BenchmarkComputePricing(b *testing.B) {
	settings := settingsWithCommissions("10", "10", "5")
	bid := &models.Bid{
		MovingCost:         dec("10000"),
		TruckCost:          dec("1500"),
		AdditionalServices: dec("2000"),
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ComputePricing(bid, true, true, settings)
	}
}
