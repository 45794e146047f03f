package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/uniportal/internal/app/models"
)

func newTestJWT(now *time.Time) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		ResetGrantExp:   15 * time.Minute,
		TokenIssuer:     "uniportal-test",
	}).WithClock(func() time.Time { return *now })
}

func TestGenerateTokenPair_CarriesRole(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestJWT(&now)
	adm := "ST/001/21"

	pair, err := svc.GenerateTokenPair(&models.User{
		ID: 7, Email: "john@uni.ac.ke", UserType: models.UserTypeStudent,
		Role: models.RoleStudent, AdmissionNumber: &adm,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.EqualValues(t, 3600, pair.ExpiresIn)
	assert.Equal(t, now.Add(24*time.Hour), pair.RefreshExpiresAt)

	claims, err := svc.ValidateToken(pair.AccessToken, PurposeAccess)
	require.NoError(t, err)
	assert.EqualValues(t, 7, claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, adm, claims.AdmissionNumber)
}

func TestValidateToken_Expired(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestJWT(&now)

	grant, _, err := svc.GenerateResetGrant(11, 3, models.UserTypeStaff, "a@uni.ac.ke")
	require.NoError(t, err)

	now = now.Add(16 * time.Minute)
	_, err = svc.ValidateToken(grant, PurposePasswordReset)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_PurposeIsolation(t *testing.T) {
	now := time.Now()
	svc := newTestJWT(&now)

	grant, _, err := svc.GenerateResetGrant(11, 3, models.UserTypeStaff, "a@uni.ac.ke")
	require.NoError(t, err)

	_, err = svc.ValidateToken(grant, PurposeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := svc.ValidateToken(grant, PurposePasswordReset)
	require.NoError(t, err)
	assert.Equal(t, models.UserTypeStaff, claims.UserType)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	now := time.Now()
	pair, err := newTestJWT(&now).GenerateTokenPair(&models.User{ID: 1, Email: "x@uni.ac.ke", Role: models.RoleAdmin})
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "other", TokenIssuer: "uniportal-test"})
	_, err = other.ValidateToken(pair.AccessToken, PurposeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := ExtractBearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)

	tok, err = ExtractBearerToken("bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	for _, h := range []string{"", "Bearer ", "Basic abc", "abc.def"} {
		_, err := ExtractBearerToken(h)
		assert.ErrorIs(t, err, ErrInvalidFormat, h)
	}
}
