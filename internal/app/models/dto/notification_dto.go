package dto

import (
	"time"

	"github.com/yigit/uniportal/internal/app/models"
)

// CreateNotificationRequest is used by staff to notify one recipient
type CreateNotificationRequest struct {
	RecipientID   int64                       `json:"recipientId" binding:"required,min=1"`
	RecipientType models.UserType             `json:"recipientType" binding:"required,oneof=STUDENT STAFF ADMIN"`
	Title         string                      `json:"title" binding:"required,max=200"`
	Message       string                      `json:"message" binding:"required"`
	Category      models.NotificationCategory `json:"category" binding:"required,oneof=UPLOAD TOOL_REVIEW ASSIGNMENT PAYMENT ACCOUNT SYSTEM"`
	ExpiresAt     *time.Time                  `json:"expiresAt"`
}

// NotificationListResponse is a page of notifications, newest first
type NotificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unreadCount"`
	Pagination    PaginationInfo        `json:"pagination"`
}

// MarkAllReadResponse reports how many notifications changed
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

// AuditLogListResponse is a page of audit entries
type AuditLogListResponse struct {
	Logs       []models.AuditLog `json:"logs"`
	Pagination PaginationInfo    `json:"pagination"`
}
