package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"p9e.in/flytta/handlers"
	"p9e.in/flytta/middleware"
	"p9e.in/flytta/models"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(engine *handlers.SettlementEngine, scheduler *handlers.AuctionScheduler) http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/register", handlers.Register).Methods("POST")
	r.HandleFunc("/login", handlers.Login).Methods("POST")
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir("./uploads"))),
	)

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)
	api.Use(middleware.RequestLogger)

	api.HandleFunc("/profile", handlers.GetCurrentUser).Methods("GET")

	// =====================================================
	// Customer Routes
	// =====================================================
	customer := api.PathPrefix("/quotations").Subrouter()
	customer.Use(middleware.RequireRole(models.RoleCustomer, models.RoleAdmin))
	customer.HandleFunc("/{type}", handlers.CreateQuotation).Methods("POST")
	customer.HandleFunc("/{type}", handlers.ListMyQuotations).Methods("GET")
	customer.HandleFunc("/{type}/{id}", handlers.GetQuotation).Methods("GET")

	// =====================================================
	// Supplier Routes
	// =====================================================
	supplier := api.PathPrefix("/supplier").Subrouter()
	supplier.Use(middleware.RequireRole(models.RoleSupplier))
	supplier.HandleFunc("/quotations/{type}", handlers.ListOpenQuotations).Methods("GET")
	supplier.HandleFunc("/bids", handlers.PlaceBid).Methods("POST")
	supplier.HandleFunc("/bids", handlers.ListMyBids).Methods("GET")
	supplier.HandleFunc("/bids/{id}", handlers.WithdrawBid).Methods("DELETE")

	// =====================================================
	// Admin Routes
	// =====================================================
	adminHandler := handlers.NewAdminHandler(engine, scheduler)
	settingsHandler := handlers.NewSettingsHandler(scheduler)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	admin.HandleFunc("/bids/{id}/accept", adminHandler.AcceptBid).Methods("POST")
	admin.HandleFunc("/accepted-bids", adminHandler.ListAcceptedBids).Methods("GET")
	admin.HandleFunc("/accepted-bids/{id}", adminHandler.EditAcceptedBid).Methods("PUT")
	admin.HandleFunc("/accepted-bids/{id}/driver", adminHandler.AssignDriver).Methods("POST")
	admin.HandleFunc("/high-value-bids", adminHandler.ListHighValueBids).Methods("GET")
	admin.HandleFunc("/auction/run", adminHandler.ForceAuctionRun).Methods("POST")
	admin.HandleFunc("/settings", settingsHandler.GetSettings).Methods("GET")
	admin.HandleFunc("/settings", settingsHandler.UpdateSettings).Methods("PUT")
	admin.HandleFunc("/exports/settlements", handlers.ExportSettlements).Methods("GET")

	// =====================================================
	// Driver Routes
	// =====================================================
	driver := api.PathPrefix("/driver").Subrouter()
	driver.Use(middleware.RequireRole(models.RoleDriver))
	driver.HandleFunc("/orders", handlers.ListDriverOrders).Methods("GET")
	driver.HandleFunc("/orders/{id}/status", handlers.UpdateOrderStatus).Methods("PUT")

	// =====================================================
	// Feature-Specific Routes
	// =====================================================
	RegisterNotificationRoutes(api)

	return r
}
