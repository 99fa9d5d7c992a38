package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"p9e.in/flytta/config"
	"p9e.in/flytta/models"
)

// AdminHandler bundles the endpoints that drive settlement by hand.
type AdminHandler struct {
	engine    *SettlementEngine
	scheduler *AuctionScheduler
}

func NewAdminHandler(engine *SettlementEngine, scheduler *AuctionScheduler) *AdminHandler {
	return &AdminHandler{engine: engine, scheduler: scheduler}
}

// AcceptBid settles a quotation in favor of one specific pending bid. The
// same engine the auction uses runs here, so pricing and the exactly-once
// guarantee are identical.
func (h *AdminHandler) AcceptBid(w http.ResponseWriter, r *http.Request) {
	bidID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid bid id", http.StatusBadRequest)
		return
	}

	var bid models.Bid
	if err := config.DB.First(&bid, "id = ?", bidID).Error; err != nil {
		http.Error(w, "bid not found", http.StatusNotFound)
		return
	}
	if bid.Status != models.BidStatusPending {
		http.Error(w, "bid is not pending", http.StatusConflict)
		return
	}

	outcome, err := h.engine.Settle(bid.QuotationType, bid.QuotationID, SettleOptions{
		BidID: &bidID,
		Actor: "admin",
	})
	if err != nil {
		if errors.Is(err, ErrAlreadySettled) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "settlement failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.markReviewed(bid.QuotationType, bid.QuotationID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(NewSettlementResponse("bid accepted", outcome.Pricing))
}

// markReviewed stamps the high-value marker, if any, so the review queue
// reflects the manual decision.
func (h *AdminHandler) markReviewed(qt models.QuotationType, quotationID uuid.UUID) {
	config.DB.Model(&models.HighValueBid{}).
		Where("quotation_type = ? AND quotation_id = ? AND reviewed_at IS NULL", qt, quotationID).
		Update("reviewed_at", time.Now())
}

type editAcceptedBidReq struct {
	MovingCost         decimal.Decimal `json:"movingCost"`
	TruckCost          decimal.Decimal `json:"truckCost"`
	AdditionalServices decimal.Decimal `json:"additionalServices"`
}

// EditAcceptedBid recomputes an accepted bid with corrected cost figures.
func (h *AdminHandler) EditAcceptedBid(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid accepted bid id", http.StatusBadRequest)
		return
	}

	var req editAcceptedBidReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if !req.MovingCost.IsPositive() {
		http.Error(w, "movingCost must be positive", http.StatusBadRequest)
		return
	}
	if req.TruckCost.IsNegative() || req.AdditionalServices.IsNegative() {
		http.Error(w, "costs must not be negative", http.StatusBadRequest)
		return
	}

	accepted, err := h.engine.Reprice(id, req.MovingCost, req.TruckCost, req.AdditionalServices)
	if err != nil {
		if errors.Is(err, ErrAlreadySettled) {
			http.Error(w, "accepted bid not found", http.StatusNotFound)
			return
		}
		http.Error(w, "reprice failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	pricing := PricingResult{
		FinalPrice:     accepted.FinalPrice,
		InitialPayment: accepted.InitialPayment,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(NewSettlementResponse("accepted bid updated", pricing))
}

// ListHighValueBids shows the review queue: markers written by the auction
// scheduler, unreviewed first.
func (h *AdminHandler) ListHighValueBids(w http.ResponseWriter, r *http.Request) {
	query := config.DB.Model(&models.HighValueBid{})
	if r.URL.Query().Get("pending") == "true" {
		query = query.Where("reviewed_at IS NULL")
	}

	var markers []models.HighValueBid
	if err := query.Order("created_at ASC").Find(&markers).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"count": len(markers),
		"data":  markers,
	})
}

type assignDriverReq struct {
	DriverID uuid.UUID `json:"driverId"`
}

// AssignDriver attaches a driver to a settled order and tells them.
func (h *AdminHandler) AssignDriver(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid accepted bid id", http.StatusBadRequest)
		return
	}
	var req assignDriverReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	var driver models.User
	if err := config.DB.Where("id = ? AND role = ? AND is_active = ?", req.DriverID, models.RoleDriver, true).
		First(&driver).Error; err != nil {
		http.Error(w, "driver not found", http.StatusNotFound)
		return
	}

	var accepted models.AcceptedBid
	if err := config.DB.First(&accepted, "id = ?", id).Error; err != nil {
		http.Error(w, "accepted bid not found", http.StatusNotFound)
		return
	}
	accepted.DriverID = &driver.ID
	if err := config.DB.Save(&accepted).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	NewNotificationService().CreateNotification(CreateNotificationParams{
		RecipientID:   driver.ID,
		RecipientType: models.RoleDriver,
		Type:          models.NotificationTypeOrderStatus,
		Title:         "New move assigned to you",
		Message:       "You have been assigned a new moving order. Check your order list for details.",
		ReferenceID:   &accepted.ID,
		ReferenceType: "accepted_bid",
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(accepted)
}

// ListAcceptedBids pages through settled orders for the back office.
func (h *AdminHandler) ListAcceptedBids(w http.ResponseWriter, r *http.Request) {
	query := config.DB.Model(&models.AcceptedBid{})
	if status := r.URL.Query().Get("orderStatus"); status != "" {
		query = query.Where("order_status = ?", status)
	}

	var accepted []models.AcceptedBid
	if err := query.Order("created_at DESC").Find(&accepted).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"count": len(accepted),
		"data":  accepted,
	})
}

// ForceAuctionRun kicks one auction cycle outside the schedule.
func (h *AdminHandler) ForceAuctionRun(w http.ResponseWriter, r *http.Request) {
	go h.scheduler.RunCycle()
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"message": "auction cycle started"})
}
