package inmem

import (
	"context"
	"time"

	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
)

// UserStore is the in-memory users table
type UserStore struct{ s *Store }

// Create inserts a user; emails are unique case-insensitively
func (u *UserStore) Create(_ context.Context, user *models.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user.Email = lower(user.Email)
	for _, existing := range u.s.users {
		if existing.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	user.ID = u.s.id()
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	cp := *user
	u.s.users[user.ID] = &cp
	return nil
}

// GetByID returns a user
func (u *UserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if user, ok := u.s.users[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, apperrors.ErrUserNotFound
}

// GetByEmail returns a user by email, case-insensitively
func (u *UserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return u.find(func(user *models.User) bool { return user.Email == lower(email) })
}

// GetByAdmissionNumber returns the account linked to a student
func (u *UserStore) GetByAdmissionNumber(_ context.Context, admissionNumber string) (*models.User, error) {
	return u.find(func(user *models.User) bool {
		return user.AdmissionNumber != nil && *user.AdmissionNumber == admissionNumber
	})
}

func (u *UserStore) find(match func(*models.User) bool) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	for _, id := range sortedKeys(u.s.users) {
		if user := u.s.users[id]; match(user) {
			cp := *user
			return &cp, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

// UpdatePassword stores a new password hash
func (u *UserStore) UpdatePassword(_ context.Context, userID int64, hash string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	user, ok := u.s.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	user.Password = hash
	return nil
}

// UpdateLastLogin records a successful login
func (u *UserStore) UpdateLastLogin(_ context.Context, userID int64, at time.Time) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if user, ok := u.s.users[userID]; ok {
		user.LastLoginAt = &at
	}
	return nil
}

// SetActiveByAdmissionNumber toggles the account linked to a student
func (u *UserStore) SetActiveByAdmissionNumber(_ context.Context, admissionNumber string, active bool) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	for _, user := range u.s.users {
		if user.AdmissionNumber != nil && *user.AdmissionNumber == admissionNumber {
			user.IsActive = active
		}
	}
	return nil
}

// TokenStore is the in-memory refresh_tokens table
type TokenStore struct{ s *Store }

// CreateToken stores a refresh token
func (t *TokenStore) CreateToken(_ context.Context, token string, userID int64, expiry time.Time) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	t.s.tokens[token] = &models.RefreshToken{Token: token, UserID: userID, ExpiryDate: expiry, CreatedAt: time.Now()}
	return nil
}

// GetUserID resolves a live token to its owner
func (t *TokenStore) GetUserID(_ context.Context, token string, now time.Time) (int64, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	rt, ok := t.s.tokens[token]
	switch {
	case !ok:
		return 0, apperrors.ErrTokenNotFound
	case rt.IsRevoked:
		return 0, apperrors.ErrTokenRevoked
	case !now.Before(rt.ExpiryDate):
		return 0, apperrors.ErrTokenExpired
	}
	return rt.UserID, nil
}

// RevokeToken revokes one token
func (t *TokenStore) RevokeToken(_ context.Context, token string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	rt, ok := t.s.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	rt.IsRevoked = true
	return nil
}

// RevokeAllUserTokens revokes every token of a user
func (t *TokenStore) RevokeAllUserTokens(_ context.Context, userID int64) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for _, rt := range t.s.tokens {
		if rt.UserID == userID {
			rt.IsRevoked = true
		}
	}
	return nil
}

// DeleteExpired purges expired and revoked tokens
func (t *TokenStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	var n int64
	for k, rt := range t.s.tokens {
		if rt.IsRevoked || !now.Before(rt.ExpiryDate) {
			delete(t.s.tokens, k)
			n++
		}
	}
	return n, nil
}
