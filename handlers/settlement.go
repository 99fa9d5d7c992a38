package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"p9e.in/flytta/config"
	"p9e.in/flytta/models"
)

// Flat customer fee for optional extra insurance, in whole SEK. Added after
// the final price is rounded.
const extraInsuranceFee = 249

// initialPaymentRate is the up-front share of the final price.
var initialPaymentRate = decimal.NewFromFloat(0.20)

var (
	// ErrAlreadySettled covers both a missing quotation and one that was
	// settled by a concurrent attempt: callers answer 404 either way.
	ErrAlreadySettled = errors.New("quotation not found or already processed")
	ErrNoPendingBids  = errors.New("no pending bids for quotation")
)

// PricingResult is the commission-adjusted customer price for a winning bid.
// The same formula serves every settlement trigger: manual admin accept,
// admin edit of an accepted bid, and the scheduled auction.
type PricingResult struct {
	MovingWithCommission     decimal.Decimal `json:"movingWithCommission"`
	AdditionalWithCommission decimal.Decimal `json:"additionalWithCommission"`
	TruckWithCommission      decimal.Decimal `json:"truckWithCommission"`
	RutDeduction             decimal.Decimal `json:"rutDeduction"`
	InsuranceFee             decimal.Decimal `json:"insuranceFee"`
	FinalPrice               decimal.Decimal `json:"finalPrice"`
	InitialPayment           decimal.Decimal `json:"initialPayment"`
	RemainingPayment         decimal.Decimal `json:"remainingPayment"`
}

func applyCommission(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Add(amount.Mul(pct).Div(decimal.NewFromInt(100)))
}

// ComputePricing applies commission mark-ups per cost component, subtracts
// the RUT deduction (half of moving + additional services, truck cost is
// never RUT-eligible), rounds the result to whole SEK, and adds the flat
// insurance fee after rounding. The 20/80 split is derived from the final
// price so that initial + remaining always sums exactly.
func ComputePricing(bid *models.Bid, rutDiscount, extraInsurance bool, s *models.Settings) PricingResult {
	moving := applyCommission(bid.MovingCost, s.MovingCommissionPct)
	additional := applyCommission(bid.AdditionalServices, s.AdditionalCommissionPct)
	truck := applyCommission(bid.TruckCost, s.TruckCommissionPct)

	rutBase := moving.Add(additional)
	rutDeduction := decimal.Zero
	if rutDiscount {
		rutDeduction = rutBase.Div(decimal.NewFromInt(2))
	}

	final := rutBase.Sub(rutDeduction).Add(truck).Round(0)

	insurance := decimal.Zero
	if extraInsurance {
		insurance = decimal.NewFromInt(extraInsuranceFee)
		final = final.Add(insurance)
	}

	initial := final.Mul(initialPaymentRate).Round(2)
	remaining := final.Sub(initial)

	return PricingResult{
		MovingWithCommission:     moving.Round(2),
		AdditionalWithCommission: additional.Round(2),
		TruckWithCommission:      truck.Round(2),
		RutDeduction:             rutDeduction.Round(2),
		InsuranceFee:             insurance,
		FinalPrice:               final,
		InitialPayment:           initial,
		RemainingPayment:         remaining,
	}
}

// SelectWinner picks the pending bid with the lowest total cost. Ties go to
// the earliest bid, then to the smaller id so the result is deterministic.
func SelectWinner(bids []models.Bid) *models.Bid {
	var winner *models.Bid
	for i := range bids {
		b := &bids[i]
		if b.Status != models.BidStatusPending {
			continue
		}
		if winner == nil {
			winner = b
			continue
		}
		switch b.Total().Cmp(winner.Total()) {
		case -1:
			winner = b
		case 0:
			if b.CreatedAt.Before(winner.CreatedAt) ||
				(b.CreatedAt.Equal(winner.CreatedAt) && b.ID.String() < winner.ID.String()) {
				winner = b
			}
		}
	}
	return winner
}

// SettleOptions control a single settlement run.
type SettleOptions struct {
	// BidID forces a specific pending bid to win (admin manual accept).
	// Nil means pick the cheapest pending bid.
	BidID *uuid.UUID
	// Actor tags log lines: "admin" or "auction".
	Actor string
}

// SettlementOutcome is what one committed settlement produced.
type SettlementOutcome struct {
	Quotation *models.QuotationInfo
	Winner    models.Bid
	Rejected  []models.Bid
	Accepted  models.AcceptedBid
	Pricing   PricingResult
}

// SettlementEngine performs the winner selection, pricing and atomic state
// transition for one quotation, then fires the post-commit side effects.
type SettlementEngine struct {
	db            *gorm.DB
	notifications *NotificationService
	emails        *EmailService
	invoices      *InvoiceService
}

func NewSettlementEngine() *SettlementEngine {
	return &SettlementEngine{
		db:            config.DB,
		notifications: NewNotificationService(),
		emails:        NewEmailService(),
		invoices:      NewInvoiceService(),
	}
}

// Settle awards a quotation to one pending bid inside a single transaction:
//
//  1. Flip the quotation open -> awarded. The row count check is the
//     serializing step: of two concurrent attempts exactly one proceeds,
//     the other gets ErrAlreadySettled.
//  2. Insert the AcceptedBid with computed pricing.
//  3. Reject every other pending bid for the pair.
//  4. Approve the winner.
//
// Any failure rolls the whole transition back. Side effects (notifications,
// invoice, email) run only after commit and never fail the settlement.
func (se *SettlementEngine) Settle(qt models.QuotationType, quotationID uuid.UUID, opts SettleOptions) (*SettlementOutcome, error) {
	settings, err := models.LoadSettings(se.db)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	info, err := models.FindQuotationInfo(se.db, qt, quotationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlreadySettled
		}
		return nil, err
	}

	outcome := &SettlementOutcome{Quotation: info}

	err = se.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Table(qt.Table()).
			Where("id = ? AND status = ?", quotationID, models.QuotationStatusOpen).
			Update("status", models.QuotationStatusAwarded)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadySettled
		}

		bids, err := models.PendingBids(tx, qt, quotationID)
		if err != nil {
			return err
		}

		var winner *models.Bid
		if opts.BidID != nil {
			for i := range bids {
				if bids[i].ID == *opts.BidID {
					winner = &bids[i]
					break
				}
			}
			if winner == nil {
				return ErrAlreadySettled
			}
		} else {
			winner = SelectWinner(bids)
		}
		if winner == nil {
			return ErrNoPendingBids
		}

		pricing := ComputePricing(winner, info.RutDiscount && qt.RutEligible(), info.ExtraInsurance, settings)

		accepted := models.AcceptedBid{
			BidID:                    winner.ID,
			SupplierID:               winner.SupplierID,
			QuotationType:            qt,
			QuotationID:              quotationID,
			CustomerID:               info.CustomerID,
			MovingWithCommission:     pricing.MovingWithCommission,
			AdditionalWithCommission: pricing.AdditionalWithCommission,
			TruckWithCommission:      pricing.TruckWithCommission,
			RutDeduction:             pricing.RutDeduction,
			InsuranceFee:             pricing.InsuranceFee,
			FinalPrice:               pricing.FinalPrice,
			InitialPayment:           pricing.InitialPayment,
			RemainingPayment:         pricing.RemainingPayment,
			PaymentStatus:            models.PaymentStatusAwaitingInitial,
			OrderStatus:              models.OrderStatusAccepted,
		}
		if err := tx.Create(&accepted).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Bid{}).
			Where("quotation_type = ? AND quotation_id = ? AND status = ? AND id <> ?",
				qt, quotationID, models.BidStatusPending, winner.ID).
			Update("status", models.BidStatusRejected).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Bid{}).
			Where("id = ?", winner.ID).
			Update("status", models.BidStatusApproved).Error; err != nil {
			return err
		}

		for _, b := range bids {
			if b.ID != winner.ID {
				outcome.Rejected = append(outcome.Rejected, b)
			}
		}
		outcome.Winner = *winner
		outcome.Accepted = accepted
		outcome.Pricing = pricing
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Settled %s/%s: bid %s wins at %s (%s)",
		qt, quotationID, outcome.Winner.ID, outcome.Pricing.FinalPrice, opts.Actor)

	se.dispatchSideEffects(outcome)
	return outcome, nil
}

// Reprice recomputes an already-accepted bid with updated cost figures,
// using the same canonical formula as settlement. The bid and the accepted
// row are updated together; the quotation stays awarded.
func (se *SettlementEngine) Reprice(acceptedBidID uuid.UUID, movingCost, truckCost, additionalServices decimal.Decimal) (*models.AcceptedBid, error) {
	settings, err := models.LoadSettings(se.db)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	var accepted models.AcceptedBid
	if err := se.db.First(&accepted, "id = ?", acceptedBidID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlreadySettled
		}
		return nil, err
	}

	info, err := models.FindQuotationInfo(se.db, accepted.QuotationType, accepted.QuotationID)
	if err != nil {
		return nil, err
	}

	err = se.db.Transaction(func(tx *gorm.DB) error {
		var bid models.Bid
		if err := tx.First(&bid, "id = ?", accepted.BidID).Error; err != nil {
			return err
		}
		bid.MovingCost = movingCost
		bid.TruckCost = truckCost
		bid.AdditionalServices = additionalServices
		if err := tx.Save(&bid).Error; err != nil {
			return err
		}

		pricing := ComputePricing(&bid, info.RutDiscount && accepted.QuotationType.RutEligible(), info.ExtraInsurance, settings)

		accepted.MovingWithCommission = pricing.MovingWithCommission
		accepted.AdditionalWithCommission = pricing.AdditionalWithCommission
		accepted.TruckWithCommission = pricing.TruckWithCommission
		accepted.RutDeduction = pricing.RutDeduction
		accepted.InsuranceFee = pricing.InsuranceFee
		accepted.FinalPrice = pricing.FinalPrice
		accepted.InitialPayment = pricing.InitialPayment
		accepted.RemainingPayment = pricing.RemainingPayment
		return tx.Save(&accepted).Error
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Repriced accepted bid %s: final price %s", accepted.ID, accepted.FinalPrice)
	return &accepted, nil
}

// dispatchSideEffects runs the post-commit notifications, invoice and email.
// Everything here is best-effort: failures are logged, the settlement stays
// committed.
func (se *SettlementEngine) dispatchSideEffects(out *SettlementOutcome) {
	winnerTitle := "Your bid was accepted"
	winnerMsg := fmt.Sprintf("Your bid for the move %s → %s was accepted. Final customer price: %s SEK.",
		out.Quotation.PickupAddress, out.Quotation.DeliveryAddress, out.Pricing.FinalPrice)
	if err := se.notifications.CreateNotification(CreateNotificationParams{
		RecipientID:   out.Winner.SupplierID,
		RecipientType: models.RoleSupplier,
		Type:          models.NotificationTypeBidApproved,
		Title:         winnerTitle,
		Message:       winnerMsg,
		ReferenceID:   &out.Accepted.ID,
		ReferenceType: "accepted_bid",
	}); err != nil {
		log.Printf("⚠️  Failed to notify winning supplier %s: %v", out.Winner.SupplierID, err)
	}
	se.emails.SendToUserAsync(out.Winner.SupplierID, winnerTitle, bidApprovedEmail(out))

	for _, rejected := range out.Rejected {
		if err := se.notifications.CreateNotification(CreateNotificationParams{
			RecipientID:   rejected.SupplierID,
			RecipientType: models.RoleSupplier,
			Type:          models.NotificationTypeBidRejected,
			Title:         "Your bid was not selected",
			Message: fmt.Sprintf("Another supplier won the move %s → %s.",
				out.Quotation.PickupAddress, out.Quotation.DeliveryAddress),
			ReferenceID:   &rejected.ID,
			ReferenceType: "bid",
		}); err != nil {
			log.Printf("⚠️  Failed to notify rejected supplier %s: %v", rejected.SupplierID, err)
		}
		se.emails.SendToUserAsync(rejected.SupplierID, "Your bid was not selected", bidRejectedEmail(out))
	}

	if err := se.notifications.CreateNotification(CreateNotificationParams{
		RecipientID:   out.Quotation.CustomerID,
		RecipientType: models.RoleCustomer,
		Type:          models.NotificationTypeQuotationAwarded,
		Title:         "A mover has been selected for you",
		Message: fmt.Sprintf("Final price %s SEK. Initial payment due: %s SEK.",
			out.Pricing.FinalPrice, out.Pricing.InitialPayment),
		ReferenceID:   &out.Accepted.ID,
		ReferenceType: "accepted_bid",
	}); err != nil {
		log.Printf("⚠️  Failed to notify customer %s: %v", out.Quotation.CustomerID, err)
	}

	invoicePath, err := se.invoices.GenerateInvoice(InvoiceDataFromOutcome(out))
	if err != nil {
		log.Printf("⚠️  Failed to generate invoice for accepted bid %s: %v", out.Accepted.ID, err)
		se.emails.SendAsync(out.Quotation.CustomerEmail, "Your moving order is confirmed", quotationAwardedEmail(out), nil)
		return
	}
	if err := se.db.Model(&models.AcceptedBid{}).
		Where("id = ?", out.Accepted.ID).
		Update("invoice_path", invoicePath).Error; err != nil {
		log.Printf("⚠️  Failed to record invoice path for accepted bid %s: %v", out.Accepted.ID, err)
	}
	se.emails.SendAsync(out.Quotation.CustomerEmail, "Your moving order is confirmed", quotationAwardedEmail(out), []string{invoicePath})
}

// SettlementResponse is the JSON payload returned by the settle endpoints.
type SettlementResponse struct {
	Message                string          `json:"message"`
	FinalPrice             decimal.Decimal `json:"finalPrice"`
	RequiresInitialPayment bool            `json:"requiresInitialPayment"`
	InitialPaymentAmount   decimal.Decimal `json:"initialPaymentAmount"`
}

func NewSettlementResponse(message string, pricing PricingResult) SettlementResponse {
	return SettlementResponse{
		Message:                message,
		FinalPrice:             pricing.FinalPrice,
		RequiresInitialPayment: pricing.InitialPayment.IsPositive(),
		InitialPaymentAmount:   pricing.InitialPayment,
	}
}
