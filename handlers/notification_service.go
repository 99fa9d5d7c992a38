package handlers

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"p9e.in/flytta/config"
	"p9e.in/flytta/models"
)

// NotificationService creates and queries in-app notifications.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService() *NotificationService {
	return &NotificationService{db: config.DB}
}

// CreateNotificationParams mirrors the settlement engine's notification
// boundary: recipient, type, rendered text and an optional reference row.
type CreateNotificationParams struct {
	RecipientID   uuid.UUID
	RecipientType string
	Type          models.NotificationType
	Title         string
	Message       string
	ReferenceID   *uuid.UUID
	ReferenceType string
}

// CreateNotification inserts one notification row.
func (ns *NotificationService) CreateNotification(p CreateNotificationParams) error {
	n := models.Notification{
		RecipientID:   p.RecipientID,
		RecipientType: p.RecipientType,
		Type:          p.Type,
		Title:         p.Title,
		Message:       p.Message,
		ReferenceID:   p.ReferenceID,
		Channels:      []string{"in_app"},
	}
	if p.ReferenceType != "" {
		n.ReferenceType = &p.ReferenceType
	}
	return ns.db.Create(&n).Error
}

// NotifyAdmins fans one notification out to every active admin.
func (ns *NotificationService) NotifyAdmins(p CreateNotificationParams) error {
	var admins []models.User
	if err := ns.db.Where("role = ? AND is_active = ?", models.RoleAdmin, true).Find(&admins).Error; err != nil {
		return err
	}
	for _, admin := range admins {
		p.RecipientID = admin.ID
		p.RecipientType = models.RoleAdmin
		if err := ns.CreateNotification(p); err != nil {
			return err
		}
	}
	return nil
}

// GetNotificationsForUser retrieves notifications for one recipient,
// newest first.
func (ns *NotificationService) GetNotificationsForUser(recipientID uuid.UUID, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	query := ns.db.Where("recipient_id = ?", recipientID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var notifications []models.Notification
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&notifications).Error
	return notifications, err
}

// GetUnreadCount gets the count of unread notifications for a recipient.
func (ns *NotificationService) GetUnreadCount(recipientID uuid.UUID) (int64, error) {
	var count int64
	err := ns.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Count(&count).Error
	return count, err
}

// MarkAsRead stamps one notification, scoped to its owner.
func (ns *NotificationService) MarkAsRead(id, recipientID uuid.UUID) error {
	var n models.Notification
	if err := ns.db.Where("id = ? AND recipient_id = ?", id, recipientID).First(&n).Error; err != nil {
		return err
	}
	n.MarkAsRead()
	return ns.db.Save(&n).Error
}

// MarkAllAsRead stamps every unread notification for a recipient.
func (ns *NotificationService) MarkAllAsRead(recipientID uuid.UUID) error {
	return ns.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Update("read_at", gorm.Expr("NOW()")).Error
}
