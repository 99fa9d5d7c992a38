package handlers

import (
	"encoding/json"
	"net/http"

	"p9e.in/flytta/config"
	"p9e.in/flytta/models"
)

// SettingsHandler reads and updates the marketplace configuration row. After
// a write the auction scheduler is re-armed so new intervals apply at once.
type SettingsHandler struct {
	scheduler *AuctionScheduler
}

func NewSettingsHandler(scheduler *AuctionScheduler) *SettingsHandler {
	return &SettingsHandler{scheduler: scheduler}
}

func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := models.LoadSettings(config.DB)
	if err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(settings)
}

func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := models.LoadSettings(config.DB)
	if err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// Decode over the loaded row so omitted fields keep their values.
	id := settings.ID
	if err := json.NewDecoder(r.Body).Decode(settings); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	settings.ID = id
	if settings.AuctionIntervalMinutes <= 0 {
		http.Error(w, "auctionIntervalMinutes must be positive", http.StatusBadRequest)
		return
	}
	if settings.MovingCommissionPct.IsNegative() ||
		settings.AdditionalCommissionPct.IsNegative() ||
		settings.TruckCommissionPct.IsNegative() {
		http.Error(w, "commission percentages must not be negative", http.StatusBadRequest)
		return
	}
	if settings.HighValueReviewDelayMinutes < 0 {
		http.Error(w, "highValueReviewDelayMinutes must not be negative", http.StatusBadRequest)
		return
	}

	if err := config.DB.Save(settings).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.scheduler.Reconfigure()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(settings)
}
