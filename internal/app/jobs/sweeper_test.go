package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/repositories/inmem"
	"github.com/yigit/uniportal/internal/pkg/metrics"
)

func TestSweepOnce_RemovesExpiredRows(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	store := inmem.New()

	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	require.NoError(t, store.PasswordResets().ReplaceActive(ctx, &models.PasswordReset{
		UserID: 1, UserType: models.UserTypeStudent, ResetType: models.ResetTypeOTP, ExpiresAt: past, CreatedAt: past,
	}))
	require.NoError(t, store.PasswordResets().ReplaceActive(ctx, &models.PasswordReset{
		UserID: 2, UserType: models.UserTypeStudent, ResetType: models.ResetTypeOTP, ExpiresAt: future, CreatedAt: now,
	}))
	require.NoError(t, store.Notifications().Create(ctx, &models.Notification{
		RecipientID: 1, RecipientType: models.UserTypeStudent, Title: "old", Category: models.CategorySystem, ExpiresAt: &past,
	}))
	require.NoError(t, store.Notifications().Create(ctx, &models.Notification{
		RecipientID: 1, RecipientType: models.UserTypeStudent, Title: "kept", Category: models.CategorySystem,
	}))
	require.NoError(t, store.Tokens().CreateToken(ctx, "expired", 1, past))
	require.NoError(t, store.Tokens().CreateToken(ctx, "live", 1, future))

	m := metrics.New()
	s := NewSweeper(map[string]Expirer{
		"password_resets": store.PasswordResets(),
		"notifications":   store.Notifications(),
		"refresh_tokens":  store.Tokens(),
	}, time.Minute, m, zerolog.Nop())
	s.now = func() time.Time { return now }

	removed := s.SweepOnce(ctx)
	assert.Equal(t, map[string]int64{"password_resets": 1, "notifications": 1, "refresh_tokens": 1}, removed)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SweeperDeleted.WithLabelValues("notifications")))

	_, err := store.Tokens().GetUserID(ctx, "live", now)
	assert.NoError(t, err)

	again := s.SweepOnce(ctx)
	assert.Equal(t, map[string]int64{"password_resets": 0, "notifications": 0, "refresh_tokens": 0}, again)
}

func TestSweepOnce_FailingTargetDoesNotStopOthers(t *testing.T) {
	calls := 0
	s := NewSweeper(map[string]Expirer{
		"broken": ExpirerFunc(func(context.Context, time.Time) (int64, error) {
			return 0, errors.New("connection reset")
		}),
		"ok": ExpirerFunc(func(context.Context, time.Time) (int64, error) {
			calls++
			return 3, nil
		}),
	}, 0, nil, zerolog.Nop())

	removed := s.SweepOnce(context.Background())
	assert.Equal(t, 1, calls)
	assert.Equal(t, map[string]int64{"ok": 3}, removed)
	assert.Equal(t, time.Minute, s.interval)
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	swept := make(chan struct{}, 1)
	s := NewSweeper(map[string]Expirer{
		"probe": ExpirerFunc(func(context.Context, time.Time) (int64, error) {
			select {
			case swept <- struct{}{}:
			default:
			}
			return 0, nil
		}),
	}, time.Hour, nil, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	select {
	case <-swept:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not run its first pass")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}
