package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"p9e.in/flytta/config"
	"p9e.in/flytta/middleware"
	"p9e.in/flytta/models"
	"p9e.in/flytta/utils"
)

// quotationType parses the {type} path variable.
func quotationType(r *http.Request) (models.QuotationType, error) {
	return models.ParseQuotationType(mux.Vars(r)["type"])
}

// CreateQuotation lets a customer publish a new quotation of the given type.
// The customer identity and the distance estimate come from the server, not
// the payload.
func CreateQuotation(w http.ResponseWriter, r *http.Request) {
	qt, err := quotationType(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	claims := middleware.GetClaims(r)
	if claims == nil {
		http.Error(w, "not authenticated", http.StatusUnauthorized)
		return
	}
	customerID, err := uuid.Parse(claims.UserID)
	if err != nil {
		http.Error(w, "invalid user", http.StatusUnauthorized)
		return
	}

	q := models.NewQuotation(qt)
	if err := json.NewDecoder(r.Body).Decode(q); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	base := q.Base()
	if err := utils.ValidateCoordinate(base.PickupLat, base.PickupLng); err != nil {
		http.Error(w, "pickup: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := utils.ValidateCoordinate(base.DeliveryLat, base.DeliveryLng); err != nil {
		http.Error(w, "delivery: "+err.Error(), http.StatusBadRequest)
		return
	}
	if base.PickupAddress == "" || base.DeliveryAddress == "" {
		http.Error(w, "pickup and delivery addresses are required", http.StatusBadRequest)
		return
	}

	base.ID = uuid.Nil
	base.CustomerID = customerID
	base.CustomerName = claims.Name
	base.CustomerEmail = claims.Email
	base.Status = models.QuotationStatusOpen
	base.DistanceKm = utils.DistanceKm(base.PickupLat, base.PickupLng, base.DeliveryLat, base.DeliveryLng)
	if !qt.RutEligible() {
		base.RutDiscount = false
	}

	if err := config.DB.Create(q).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(q)
}

// ListMyQuotations returns the calling customer's quotations of one type.
func ListMyQuotations(w http.ResponseWriter, r *http.Request) {
	qt, err := quotationType(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	customerID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		http.Error(w, "invalid user", http.StatusUnauthorized)
		return
	}

	list := models.NewQuotationSlice(qt)
	if err := config.DB.
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(list).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"type": qt,
		"data": list,
	})
}

// GetQuotation returns one quotation. Customers see only their own rows,
// admins see everything.
func GetQuotation(w http.ResponseWriter, r *http.Request) {
	qt, err := quotationType(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid quotation id", http.StatusBadRequest)
		return
	}

	q := models.NewQuotation(qt)
	if err := config.DB.First(q, "id = ?", id).Error; err != nil {
		http.Error(w, "quotation not found", http.StatusNotFound)
		return
	}

	if middleware.GetRole(r) != models.RoleAdmin {
		userID, err := uuid.Parse(middleware.GetUserID(r))
		if err != nil || q.Base().CustomerID != userID {
			http.Error(w, "quotation not found", http.StatusNotFound)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(q)
}

// openQuotationOut is the supplier view of an open quotation. Customer
// contact details stay hidden until a bid is accepted.
type openQuotationOut struct {
	ID              uuid.UUID            `json:"id"`
	Type            models.QuotationType `json:"type"`
	PickupAddress   string               `json:"pickupAddress"`
	DeliveryAddress string               `json:"deliveryAddress"`
	DistanceKm      float64              `json:"distanceKm"`
	MoveDate        models.JSONTime      `json:"moveDate"`
	RutDiscount     bool                 `json:"rutDiscount"`
	ExtraInsurance  bool                 `json:"extraInsurance"`
}

// ListOpenQuotations shows suppliers the open quotations of one type, oldest
// first so long-waiting moves surface on top.
func ListOpenQuotations(w http.ResponseWriter, r *http.Request) {
	qt, err := quotationType(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var rows []openQuotationOut
	if err := config.DB.Table(qt.Table()).
		Select("id, pickup_address, delivery_address, distance_km, move_date, rut_discount, extra_insurance").
		Where("status = ? AND deleted_at IS NULL", models.QuotationStatusOpen).
		Order("created_at ASC").
		Scan(&rows).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	for i := range rows {
		rows[i].Type = qt
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"count": len(rows),
		"data":  rows,
	})
}
