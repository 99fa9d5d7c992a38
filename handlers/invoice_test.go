package handlers

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"p9e.in/flytta/models"
)

func TestInvoiceNumber(t *testing.T) {
	issued := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	id := uuid.MustParse("a1b2c3d4-e5f6-4789-8abc-def012345678")

	got := invoiceNumber(issued, id)
	want := "FLY-20260315-A1B2C3D4"
	if got != want {
		t.Errorf("invoiceNumber = %q, expected %q", got, want)
	}
}

func TestInvoiceNumberIsStable(t *testing.T) {
	issued := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	id := uuid.MustParse("00000000-1111-2222-3333-444444444444")

	first := invoiceNumber(issued, id)
	second := invoiceNumber(issued, id)
	if first != second {
		t.Errorf("invoiceNumber not deterministic: %q vs %q", first, second)
	}
	if !strings.HasPrefix(first, "FLY-20260102-") {
		t.Errorf("invoiceNumber = %q, expected FLY-20260102- prefix", first)
	}
}

func TestRenderEmailTemplates(t *testing.T) {
	bid := models.Bid{
		MovingCost:         dec("10000"),
		TruckCost:          dec("1000"),
		AdditionalServices: dec("500"),
	}
	out := &SettlementOutcome{
		Quotation: &models.QuotationInfo{
			Type:            models.PrivateMove,
			CustomerName:    "Anna Andersson",
			CustomerEmail:   "anna@example.com",
			PickupAddress:   "Storgatan 1, Stockholm",
			DeliveryAddress: "Avenyn 2, Göteborg",
			MoveDate:        time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC),
		},
		Pricing: ComputePricing(&bid, true, true, settingsWithCommissions("10", "10", "5")),
	}

	for name, render := range map[string]func(*SettlementOutcome) string{
		"bid approved":      bidApprovedEmail,
		"bid rejected":      bidRejectedEmail,
		"quotation awarded": quotationAwardedEmail,
	} {
		body := render(out)
		if body == "" {
			t.Errorf("%s template rendered empty", name)
		}
		if !strings.Contains(body, "Storgatan 1") {
			t.Errorf("%s template missing pickup address:\n%s", name, body)
		}
	}
}
