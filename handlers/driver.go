package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"p9e.in/flytta/config"
	"p9e.in/flytta/middleware"
	"p9e.in/flytta/models"
)

// driverOrderOut is what a driver sees about an assigned move: route and
// status, no pricing.
type driverOrderOut struct {
	ID              uuid.UUID            `json:"id"`
	QuotationType   models.QuotationType `json:"quotationType"`
	PickupAddress   string               `json:"pickupAddress"`
	DeliveryAddress string               `json:"deliveryAddress"`
	DistanceKm      float64              `json:"distanceKm"`
	MoveDate        string               `json:"moveDate"`
	OrderStatus     string               `json:"orderStatus"`
}

// ListDriverOrders returns the calling driver's assigned moves, upcoming
// first.
func ListDriverOrders(w http.ResponseWriter, r *http.Request) {
	driverID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		http.Error(w, "invalid user", http.StatusUnauthorized)
		return
	}

	var accepted []models.AcceptedBid
	if err := config.DB.Where("driver_id = ?", driverID).
		Order("created_at ASC").
		Find(&accepted).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]driverOrderOut, 0, len(accepted))
	for _, ab := range accepted {
		row := driverOrderOut{
			ID:            ab.ID,
			QuotationType: ab.QuotationType,
			OrderStatus:   ab.OrderStatus,
		}
		// Route details come from the quotation the order was settled for.
		if info, err := models.FindQuotationInfo(config.DB, ab.QuotationType, ab.QuotationID); err == nil {
			row.PickupAddress = info.PickupAddress
			row.DeliveryAddress = info.DeliveryAddress
			row.DistanceKm = info.DistanceKm
			row.MoveDate = info.MoveDate.Format("2006-01-02")
		}
		out = append(out, row)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"count": len(out),
		"data":  out,
	})
}

type updateOrderStatusReq struct {
	Status string `json:"status"`
}

// UpdateOrderStatus moves an assigned order along the fulfillment chain.
// Only the assigned driver may advance it, and only along allowed edges.
func UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	driverID, err := uuid.Parse(middleware.GetUserID(r))
	if err != nil {
		http.Error(w, "invalid user", http.StatusUnauthorized)
		return
	}
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid order id", http.StatusBadRequest)
		return
	}

	var req updateOrderStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	var accepted models.AcceptedBid
	if err := config.DB.Where("id = ? AND driver_id = ?", id, driverID).First(&accepted).Error; err != nil {
		http.Error(w, "order not found", http.StatusNotFound)
		return
	}
	if !models.ValidOrderTransition(accepted.OrderStatus, req.Status) {
		http.Error(w, fmt.Sprintf("cannot move order from %s to %s", accepted.OrderStatus, req.Status),
			http.StatusConflict)
		return
	}

	accepted.OrderStatus = req.Status
	if err := config.DB.Save(&accepted).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	NewNotificationService().CreateNotification(CreateNotificationParams{
		RecipientID:   accepted.CustomerID,
		RecipientType: models.RoleCustomer,
		Type:          models.NotificationTypeOrderStatus,
		Title:         "Your move was updated",
		Message:       fmt.Sprintf("Your moving order is now %s.", req.Status),
		ReferenceID:   &accepted.ID,
		ReferenceType: "accepted_bid",
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(accepted)
}
