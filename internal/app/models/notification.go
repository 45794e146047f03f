package models

import "time"

// NotificationCategory groups notifications for display
type NotificationCategory string

const (
	CategoryUpload     NotificationCategory = "UPLOAD"
	CategoryToolReview NotificationCategory = "TOOL_REVIEW"
	CategoryAssignment NotificationCategory = "ASSIGNMENT"
	CategoryPayment    NotificationCategory = "PAYMENT"
	CategoryAccount    NotificationCategory = "ACCOUNT"
	CategorySystem     NotificationCategory = "SYSTEM"
)

// Valid reports whether c is a known category.
func (c NotificationCategory) Valid() bool {
	switch c {
	case CategoryUpload, CategoryToolReview, CategoryAssignment, CategoryPayment, CategoryAccount, CategorySystem:
		return true
	}
	return false
}

// Recipient identifies who a notification belongs to
type Recipient struct {
	ID   int64    `json:"recipientId"`
	Type UserType `json:"recipientType"`
}

// Notification is a per-recipient message. It can move to read, never back.
type Notification struct {
	ID            int64                `json:"id" db:"id"`
	RecipientID   int64                `json:"recipientId" db:"recipient_id"`
	RecipientType UserType             `json:"recipientType" db:"recipient_type"`
	Title         string               `json:"title" db:"title"`
	Message       string               `json:"message" db:"message"`
	Category      NotificationCategory `json:"category" db:"category"`
	IsRead        bool                 `json:"isRead" db:"is_read"`
	ReadAt        *time.Time           `json:"readAt,omitempty" db:"read_at"`
	ExpiresAt     *time.Time           `json:"expiresAt,omitempty" db:"expires_at"`
	CreatedAt     time.Time            `json:"createdAt" db:"created_at"`
}

// AuditLog is an append-only record of a privileged action
type AuditLog struct {
	ID        int64          `json:"id" db:"id"`
	ActorID   *int64         `json:"actorId,omitempty" db:"actor_id"`
	ActorRole string         `json:"actorRole" db:"actor_role"`
	Action    string         `json:"action" db:"action"`
	Entity    string         `json:"entity" db:"entity"`
	EntityID  string         `json:"entityId" db:"entity_id"`
	Details   map[string]any `json:"details,omitempty" db:"details"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
}

// AuditFilter narrows audit listings
type AuditFilter struct {
	ActorID *int64
	Action  *string
}
