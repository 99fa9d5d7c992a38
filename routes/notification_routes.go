package routes

import (
	"github.com/gorilla/mux"
	"p9e.in/flytta/handlers"
)

// RegisterNotificationRoutes registers all notification-related routes
func RegisterNotificationRoutes(api *mux.Router) {
	notifHandler := &handlers.NotificationHandler{}

	// These routes are under /api/v1/notifications, any authenticated user.

	// Get notifications for current user
	api.HandleFunc("/notifications", notifHandler.GetNotifications).Methods("GET")

	// Get unread count
	api.HandleFunc("/notifications/unread-count", notifHandler.GetUnreadCount).Methods("GET")

	// Mark all notifications as read
	api.HandleFunc("/notifications/read-all", notifHandler.MarkAllNotificationsAsRead).Methods("PATCH")

	// Mark notification as read
	api.HandleFunc("/notifications/{id}/read", notifHandler.MarkNotificationAsRead).Methods("PATCH")
}
