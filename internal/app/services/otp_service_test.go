package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/pkg/apperrors"
)

func wrongCode(code string) string {
	b := []byte(code)
	if b[0] == '9' {
		b[0] = '0'
	} else {
		b[0]++
	}
	return string(b)
}

func verify(ctx context.Context, env *testEnv, req VerifyRequest) error {
	_, err := env.svc.OTP.Verify(ctx, req)
	return err
}

func issueOTP(t *testing.T, env *testEnv, userID int64) (*IssueResult, string) {
	t.Helper()
	res, err := env.svc.OTP.Issue(context.Background(), IssueRequest{
		UserID:   userID,
		UserType: models.UserTypeStudent,
		Email:    "john@uni.ac.ke",
		Name:     "John",
	})
	require.NoError(t, err)
	return res, env.mailer.lastCode(t)
}

func TestOTP_IssueStoresHashAndExpiry(t *testing.T) {
	env := newTestEnv(t)
	res, code := issueOTP(t, env, 1)

	assert.True(t, res.Delivered)
	assert.Equal(t, env.clock.Add(10*time.Minute), res.ExpiresAt)
	assert.Len(t, code, 6)

	rec, ok := env.store.PasswordResets().Get(res.ID)
	require.True(t, ok)
	assert.NotEqual(t, code, rec.SecretHash)
	assert.Len(t, rec.SecretHash, 64)
	assert.Equal(t, models.ResetTypeOTP, rec.ResetType)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.OTPIssued.WithLabelValues("STUDENT", "OTP", "true")))
}

func TestOTP_VerifiesExactlyOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	res, code := issueOTP(t, env, 1)

	resetID, err := env.svc.OTP.Verify(ctx, VerifyRequest{UserID: 1, UserType: models.UserTypeStudent, Code: code})
	require.NoError(t, err)
	assert.Equal(t, res.ID, resetID)

	err = verify(ctx, env, VerifyRequest{UserID: 1, UserType: models.UserTypeStudent, Code: code})
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredCode)

	rec, _ := env.store.PasswordResets().Get(res.ID)
	assert.True(t, rec.IsUsed)
	assert.True(t, rec.IsVerified)
	require.NotNil(t, rec.VerifiedAt)
	assert.Equal(t, env.clock, *rec.VerifiedAt)
}

func TestOTP_FiveWrongAttemptsExhaust(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	res, code := issueOTP(t, env, 1)

	for i := 0; i < 5; i++ {
		err := verify(ctx, env, VerifyRequest{UserID: 1, UserType: models.UserTypeStudent, Code: wrongCode(code)})
		require.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredCode, "attempt %d", i+1)
	}

	err := verify(ctx, env, VerifyRequest{UserID: 1, UserType: models.UserTypeStudent, Code: code})
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredCode)

	rec, _ := env.store.PasswordResets().Get(res.ID)
	assert.Equal(t, 5, rec.Attempts)
	assert.False(t, rec.IsVerified)
	assert.True(t, rec.ExpiresAt.After(env.clock))
}

func TestOTP_CorrectCodeOnLastAttempt(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, code := issueOTP(t, env, 1)

	for i := 0; i < 4; i++ {
		_ = verify(ctx, env, VerifyRequest{UserID: 1, UserType: models.UserTypeStudent, Code: wrongCode(code)})
	}
	assert.NoError(t, verify(ctx, env, VerifyRequest{UserID: 1, UserType: models.UserTypeStudent, Code: code}))
}

func TestOTP_ParallelGuessesNeverExceedCap(t *testing.T) {
	env := newTestEnv(t)
	res, code := issueOTP(t, env, 1)
	bad := wrongCode(code)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := verify(context.Background(), env, VerifyRequest{UserID: 1, UserType: models.UserTypeStudent, Code: bad})
			assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredCode)
		}()
	}
	wg.Wait()

	rec, _ := env.store.PasswordResets().Get(res.ID)
	assert.Equal(t, 5, rec.Attempts)
}

func TestOTP_Expiry(t *testing.T) {
	env := newTestEnv(t)
	_, code := issueOTP(t, env, 1)

	env.advance(10 * time.Minute)
	err := verify(context.Background(), env, VerifyRequest{UserID: 1, UserType: models.UserTypeStudent, Code: code})
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredCode)
}

func TestOTP_ReissueInvalidatesPrevious(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first, _ := issueOTP(t, env, 1)
	env.advance(time.Second)
	second, code := issueOTP(t, env, 1)

	prev, _ := env.store.PasswordResets().Get(first.ID)
	assert.True(t, prev.IsUsed)
	assert.False(t, prev.IsVerified)

	require.NoError(t, verify(ctx, env, VerifyRequest{UserID: 1, UserType: models.UserTypeStudent, Code: code}))
	cur, _ := env.store.PasswordResets().Get(second.ID)
	assert.True(t, cur.IsVerified)
}

func TestOTP_FailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, code := issueOTP(t, env, 1)

	wrong := verify(ctx, env, VerifyRequest{UserID: 1, UserType: models.UserTypeStudent, Code: wrongCode(code)})
	unknown := verify(ctx, env, VerifyRequest{UserID: 42, UserType: models.UserTypeStudent, Code: code})
	otherType := verify(ctx, env, VerifyRequest{UserID: 1, UserType: models.UserTypeStaff, Code: code})
	env.advance(time.Hour)
	expired := verify(ctx, env, VerifyRequest{UserID: 1, UserType: models.UserTypeStudent, Code: code})

	for _, err := range []error{wrong, unknown, otherType, expired} {
		require.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredCode)
		assert.Equal(t, wrong.Error(), err.Error())
		ce, ok := apperrors.AsCustom(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.HintRequestNewCode, ce.Hint)
	}
}

func TestOTP_DeliveryFailureKeepsRecord(t *testing.T) {
	env := newTestEnv(t)
	env.mailer.fail = errSMTPDown

	res, err := env.svc.OTP.Issue(context.Background(), IssueRequest{
		UserID: 1, UserType: models.UserTypeStudent, Email: "john@uni.ac.ke",
	})
	require.NoError(t, err)
	assert.False(t, res.Delivered)

	_, ok := env.store.PasswordResets().Get(res.ID)
	assert.True(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.OTPIssued.WithLabelValues("STUDENT", "OTP", "false")))
}

func TestOTP_TokenReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.svc.OTP.Issue(ctx, IssueRequest{
		UserID: 3, UserType: models.UserTypeStaff, Email: "hod@uni.ac.ke", ResetType: models.ResetTypeToken,
	})
	require.NoError(t, err)
	assert.Equal(t, env.clock.Add(60*time.Minute), res.ExpiresAt)
	token := env.mailer.lastLink(t)

	rec, err := env.svc.OTP.VerifyToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.UserID)

	_, err = env.svc.OTP.VerifyToken(ctx, token)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredCode)

	_, err = env.svc.OTP.VerifyToken(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrExpiredCode)
}

func TestOTP_IssueValidation(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.OTP.Issue(context.Background(), IssueRequest{UserID: 0, UserType: models.UserTypeStudent})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = env.svc.OTP.Issue(context.Background(), IssueRequest{UserID: 1, UserType: models.UserTypeStudent, ResetType: "SMS"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
