package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"p9e.in/flytta/config"
	"p9e.in/flytta/middleware"
	"p9e.in/flytta/models"
)

type placeBidReq struct {
	QuotationType      string          `json:"quotationType"`
	QuotationID        uuid.UUID       `json:"quotationId"`
	MovingCost         decimal.Decimal `json:"movingCost"`
	TruckCost          decimal.Decimal `json:"truckCost"`
	AdditionalServices decimal.Decimal `json:"additionalServices"`
	ServicesDetail     datatypes.JSON  `json:"servicesDetail"`
	Note               string          `json:"note"`
}

// PlaceBid lets a supplier submit one priced offer against an open quotation.
func PlaceBid(w http.ResponseWriter, r *http.Request) {
	supplierID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		http.Error(w, "invalid user", http.StatusUnauthorized)
		return
	}

	var req placeBidReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	qt, err := models.ParseQuotationType(req.QuotationType)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
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

	info, err := models.FindQuotationInfo(config.DB, qt, req.QuotationID)
	if err != nil {
		http.Error(w, "quotation not found", http.StatusNotFound)
		return
	}
	if info.Status != models.QuotationStatusOpen {
		http.Error(w, "quotation is no longer open for bids", http.StatusConflict)
		return
	}

	bid := models.Bid{
		SupplierID:         supplierID,
		QuotationType:      qt,
		QuotationID:        req.QuotationID,
		MovingCost:         req.MovingCost,
		TruckCost:          req.TruckCost,
		AdditionalServices: req.AdditionalServices,
		ServicesDetail:     req.ServicesDetail,
		Status:             models.BidStatusPending,
	}
	if req.Note != "" {
		bid.Note = &req.Note
	}
	if err := config.DB.Create(&bid).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			http.Error(w, "you already placed a bid on this quotation", http.StatusConflict)
		} else {
			http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(bid)
}

// ListMyBids returns the calling supplier's bids, newest first. An optional
// status query filters them.
func ListMyBids(w http.ResponseWriter, r *http.Request) {
	supplierID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		http.Error(w, "invalid user", http.StatusUnauthorized)
		return
	}

	query := config.DB.Where("supplier_id = ?", supplierID)
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var bids []models.Bid
	if err := query.Order("created_at DESC").Find(&bids).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"count": len(bids),
		"data":  bids,
	})
}

// WithdrawBid pulls the supplier's own pending bid out of the auction.
// Settled bids cannot be withdrawn.
func WithdrawBid(w http.ResponseWriter, r *http.Request) {
	supplierID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		http.Error(w, "invalid user", http.StatusUnauthorized)
		return
	}
	bidID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid bid id", http.StatusBadRequest)
		return
	}

	res := config.DB.Model(&models.Bid{}).
		Where("id = ? AND supplier_id = ? AND status = ?", bidID, supplierID, models.BidStatusPending).
		Update("status", models.BidStatusWithdrawn)
	if res.Error != nil {
		http.Error(w, "db error: "+res.Error.Error(), http.StatusInternalServerError)
		return
	}
	if res.RowsAffected == 0 {
		http.Error(w, "bid not found or not pending", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
