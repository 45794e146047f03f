package inmem

import (
	"context"
	"sort"
	"time"

	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
)

// PasswordResetStore is the in-memory password_resets table
type PasswordResetStore struct{ s *Store }

// ReplaceActive invalidates the user's unused records and inserts rec under one lock
func (p *PasswordResetStore) ReplaceActive(_ context.Context, rec *models.PasswordReset) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	for _, existing := range p.s.resets {
		if existing.UserID == rec.UserID && existing.UserType == rec.UserType && !existing.IsUsed {
			existing.IsUsed = true
		}
	}
	rec.ID = p.s.id()
	rec.Attempts = 0
	cp := *rec
	p.s.resets[rec.ID] = &cp
	return nil
}

// ConsumeAttempt increments the attempt counter of the newest live OTP record
func (p *PasswordResetStore) ConsumeAttempt(_ context.Context, userID int64, userType models.UserType, now time.Time, maxAttempts int) (*models.PasswordReset, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	var live *models.PasswordReset
	for _, rec := range p.s.resets {
		if rec.UserID != userID || rec.UserType != userType || rec.ResetType != models.ResetTypeOTP {
			continue
		}
		if !rec.Live(now, maxAttempts) {
			continue
		}
		if live == nil || rec.CreatedAt.After(live.CreatedAt) || (rec.CreatedAt.Equal(live.CreatedAt) && rec.ID > live.ID) {
			live = rec
		}
	}
	if live == nil {
		return nil, apperrors.ErrResourceNotFound
	}
	live.Attempts++
	cp := *live
	return &cp, nil
}

// MarkVerified flips an unused record to verified and used, keeping it until retainUntil
func (p *PasswordResetStore) MarkVerified(_ context.Context, id int64, now, retainUntil time.Time) (bool, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	rec, ok := p.s.resets[id]
	if !ok || rec.IsUsed {
		return false, nil
	}
	rec.IsUsed, rec.IsVerified, rec.VerifiedAt = true, true, &now
	if retainUntil.After(rec.ExpiresAt) {
		rec.ExpiresAt = retainUntil
	}
	return true, nil
}

// ConsumeGrant marks the reset grant of a verified record redeemed, once
func (p *PasswordResetStore) ConsumeGrant(_ context.Context, id, userID int64, now time.Time) (bool, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	rec, ok := p.s.resets[id]
	if !ok || rec.UserID != userID || !rec.IsVerified || rec.GrantUsedAt != nil || !now.Before(rec.ExpiresAt) {
		return false, nil
	}
	rec.GrantUsedAt = &now
	return true, nil
}

// ConsumeToken marks the live TOKEN record with the hash used and returns it
func (p *PasswordResetStore) ConsumeToken(_ context.Context, hash string, now time.Time) (*models.PasswordReset, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	for _, rec := range p.s.resets {
		if rec.SecretHash == hash && rec.ResetType == models.ResetTypeToken && !rec.IsUsed && now.Before(rec.ExpiresAt) {
			rec.IsUsed, rec.IsVerified, rec.VerifiedAt = true, true, &now
			cp := *rec
			return &cp, nil
		}
	}
	return nil, apperrors.ErrResourceNotFound
}

// DeleteExpired purges records past their expiry
func (p *PasswordResetStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	var n int64
	for id, rec := range p.s.resets {
		if !now.Before(rec.ExpiresAt) {
			delete(p.s.resets, id)
			n++
		}
	}
	return n, nil
}

// Get returns a record by id, for assertions
func (p *PasswordResetStore) Get(id int64) (models.PasswordReset, bool) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()

	rec, ok := p.s.resets[id]
	if !ok {
		return models.PasswordReset{}, false
	}
	return *rec, true
}

// NotificationStore is the in-memory notifications table
type NotificationStore struct{ s *Store }

// Create appends a notification
func (n *NotificationStore) Create(_ context.Context, notification *models.Notification) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()

	notification.ID = n.s.id()
	cp := *notification
	n.s.notifications[notification.ID] = &cp
	return nil
}

// List returns the recipient's unexpired notifications, newest first
func (n *NotificationStore) List(_ context.Context, r models.Recipient, now time.Time, offset, limit uint64) ([]models.Notification, int64, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()

	var all []models.Notification
	for _, item := range n.s.notifications {
		if visible(item, r, now) {
			all = append(all, *item)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return page(all, offset, limit), int64(len(all)), nil
}

// CountUnread counts the recipient's unread, unexpired notifications
func (n *NotificationStore) CountUnread(_ context.Context, r models.Recipient, now time.Time) (int64, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()

	var count int64
	for _, item := range n.s.notifications {
		if visible(item, r, now) && !item.IsRead {
			count++
		}
	}
	return count, nil
}

// MarkRead marks one notification read, keeping an earlier read time
func (n *NotificationStore) MarkRead(_ context.Context, r models.Recipient, id int64, now time.Time) error {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()

	item, ok := n.s.notifications[id]
	if !ok || !visible(item, r, now) {
		return apperrors.ErrNotificationNotFound
	}
	if !item.IsRead {
		item.IsRead = true
		item.ReadAt = &now
	}
	return nil
}

// MarkAllRead marks every unread notification of the recipient read
func (n *NotificationStore) MarkAllRead(_ context.Context, r models.Recipient, now time.Time) (int64, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()

	var changed int64
	for _, item := range n.s.notifications {
		if visible(item, r, now) && !item.IsRead {
			item.IsRead = true
			item.ReadAt = &now
			changed++
		}
	}
	return changed, nil
}

// DeleteExpired purges expired notifications
func (n *NotificationStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	n.s.mu.Lock()
	defer n.s.mu.Unlock()

	var removed int64
	for id, item := range n.s.notifications {
		if item.ExpiresAt != nil && !item.ExpiresAt.After(now) {
			delete(n.s.notifications, id)
			removed++
		}
	}
	return removed, nil
}

// AuditStore is the in-memory audit_logs table
type AuditStore struct{ s *Store }

// Create appends an entry
func (a *AuditStore) Create(_ context.Context, entry *models.AuditLog) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	entry.ID = a.s.id()
	cp := *entry
	a.s.audit = append(a.s.audit, &cp)
	return nil
}

// List returns a filtered page, newest first
func (a *AuditStore) List(_ context.Context, f models.AuditFilter, offset, limit uint64) ([]models.AuditLog, int64, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	var all []models.AuditLog
	for i := len(a.s.audit) - 1; i >= 0; i-- {
		entry := a.s.audit[i]
		if f.ActorID != nil && (entry.ActorID == nil || *entry.ActorID != *f.ActorID) {
			continue
		}
		if f.Action != nil && entry.Action != *f.Action {
			continue
		}
		all = append(all, *entry)
	}
	return page(all, offset, limit), int64(len(all)), nil
}
