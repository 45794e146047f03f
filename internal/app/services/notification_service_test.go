package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
)

func notify(t *testing.T, env *testEnv, r models.Recipient, title string, expiresAt *time.Time) *models.Notification {
	t.Helper()
	n, err := env.svc.Notifications.Create(context.Background(), NotificationInput{
		Recipient: r, Title: title, Message: "body", Category: models.CategorySystem, ExpiresAt: expiresAt,
	})
	require.NoError(t, err)
	return n
}

func TestNotifications_ListNewestFirstAndUnreadCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me := models.Recipient{ID: 5, Type: models.UserTypeStudent}
	other := models.Recipient{ID: 5, Type: models.UserTypeStaff}

	notify(t, env, me, "first", nil)
	env.advance(time.Minute)
	soon := env.clock.Add(2 * time.Minute)
	notify(t, env, me, "expiring", &soon)
	env.advance(time.Minute)
	notify(t, env, me, "third", nil)
	notify(t, env, other, "not mine", nil)

	list, err := env.svc.Notifications.List(ctx, me, 1, 20)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 3)
	assert.Equal(t, "third", list.Notifications[0].Title)
	assert.Equal(t, "first", list.Notifications[2].Title)
	assert.Equal(t, int64(3), list.UnreadCount)

	env.advance(time.Minute)
	list, err = env.svc.Notifications.List(ctx, me, 1, 20)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 2, "expired notifications are not listed")
	assert.Equal(t, int64(2), list.UnreadCount)
	assert.Equal(t, int64(2), list.Pagination.TotalItems)
}

func TestNotifications_MarkReadIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me := models.Recipient{ID: 5, Type: models.UserTypeStudent}
	n := notify(t, env, me, "hello", nil)

	readAt := env.clock
	require.NoError(t, env.svc.Notifications.MarkRead(ctx, me, n.ID))
	env.advance(time.Hour)
	require.NoError(t, env.svc.Notifications.MarkRead(ctx, me, n.ID))

	list, err := env.svc.Notifications.List(ctx, me, 1, 20)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)
	assert.True(t, list.Notifications[0].IsRead)
	require.NotNil(t, list.Notifications[0].ReadAt)
	assert.Equal(t, readAt, *list.Notifications[0].ReadAt)
	assert.Equal(t, int64(0), list.UnreadCount)
}

func TestNotifications_MarkReadNotFound(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me := models.Recipient{ID: 5, Type: models.UserTypeStudent}
	someoneElse := models.Recipient{ID: 6, Type: models.UserTypeStudent}
	n := notify(t, env, someoneElse, "private", nil)

	assert.ErrorIs(t, env.svc.Notifications.MarkRead(ctx, me, n.ID), apperrors.ErrNotificationNotFound)
	assert.ErrorIs(t, env.svc.Notifications.MarkRead(ctx, me, 12345), apperrors.ErrNotificationNotFound)
	assert.ErrorIs(t, env.svc.Notifications.MarkRead(ctx, me, 0), apperrors.ErrNotificationNotFound)
}

func TestNotifications_MarkAllRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	me := models.Recipient{ID: 5, Type: models.UserTypeStudent}

	n, err := env.svc.Notifications.MarkAllRead(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n, "nothing unread is a no-op")

	notify(t, env, me, "a", nil)
	notify(t, env, me, "b", nil)
	n, err = env.svc.Notifications.MarkAllRead(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = env.svc.Notifications.MarkAllRead(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestNotifications_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	me := models.Recipient{ID: 5, Type: models.UserTypeStudent}
	past := env.clock.Add(-time.Minute)

	tests := []struct {
		name string
		in   NotificationInput
	}{
		{"no recipient", NotificationInput{Title: "t", Category: models.CategorySystem}},
		{"bad recipient type", NotificationInput{Recipient: models.Recipient{ID: 1, Type: "GUEST"}, Title: "t", Category: models.CategorySystem}},
		{"bad category", NotificationInput{Recipient: me, Title: "t", Category: "MARKETING"}},
		{"blank title", NotificationInput{Recipient: me, Title: "  ", Category: models.CategorySystem}},
		{"already expired", NotificationInput{Recipient: me, Title: "t", Category: models.CategorySystem, ExpiresAt: &past}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Notifications.Create(context.Background(), tt.in)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
		})
	}
}
