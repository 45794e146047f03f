package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yigit/uniportal/internal/app/models"
)

// JWT errors
var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token expired")
	ErrInvalidFormat = errors.New("invalid token format")
)

// Token purposes. A reset grant is never accepted as an access token and vice versa.
const (
	PurposeAccess        = "access"
	PurposePasswordReset = "password_reset"
)

// JWTConfig defines JWT configuration settings
type JWTConfig struct {
	SecretKey       string
	AccessTokenExp  time.Duration
	RefreshTokenExp time.Duration
	ResetGrantExp   time.Duration
	TokenIssuer     string
}

// JWTService handles JWT operations
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config, now: time.Now}
}

// WithClock replaces the time source, for tests
func (s *JWTService) WithClock(now func() time.Time) *JWTService {
	s.now = now
	return s
}

// Claims defines JWT token content
type Claims struct {
	UserID          int64           `json:"userId"`
	Email           string          `json:"email"`
	UserType        models.UserType `json:"userType"`
	Role            models.RoleType `json:"role"`
	AdmissionNumber string          `json:"admissionNumber,omitempty"`
	Purpose         string          `json:"purpose"`
	ResetID         int64           `json:"resetId,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair is the result of a successful login or refresh
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	ExpiresIn        int64
	RefreshExpiresIn int64
	RefreshExpiresAt time.Time
}

func (s *JWTService) sign(claims *Claims, ttl time.Duration) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(ttl)
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    s.config.TokenIssuer,
		Subject:   strconv.FormatInt(claims.UserID, 10),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// GenerateTokenPair creates an access token carrying the user's role and an opaque refresh token
func (s *JWTService) GenerateTokenPair(user *models.User) (*TokenPair, error) {
	claims := &Claims{
		UserID:   user.ID,
		Email:    user.Email,
		UserType: user.UserType,
		Role:     user.Role,
		Purpose:  PurposeAccess,
	}
	if user.AdmissionNumber != nil {
		claims.AdmissionNumber = *user.AdmissionNumber
	}

	accessToken, _, err := s.sign(claims, s.config.AccessTokenExp)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     uuid.NewString(),
		ExpiresIn:        int64(s.config.AccessTokenExp.Seconds()),
		RefreshExpiresIn: int64(s.config.RefreshTokenExp.Seconds()),
		RefreshExpiresAt: s.now().Add(s.config.RefreshTokenExp),
	}, nil
}

// GenerateResetGrant issues a short-lived token bound to the verified reset record.
// The record tracks whether the grant was redeemed.
func (s *JWTService) GenerateResetGrant(resetID, userID int64, userType models.UserType, email string) (string, time.Time, error) {
	return s.sign(&Claims{
		UserID:   userID,
		Email:    email,
		UserType: userType,
		Purpose:  PurposePasswordReset,
		ResetID:  resetID,
	}, s.config.ResetGrantExp)
}

// ValidateToken parses and verifies a token and checks that it was issued for purpose
func (s *JWTService) ValidateToken(tokenString, purpose string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	},
		jwt.WithIssuer(s.config.TokenIssuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Purpose != purpose || claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractBearerToken extracts the token from an "Authorization: Bearer <token>" header
func ExtractBearerToken(authHeader string) (string, error) {
	const prefix = "Bearer "
	if len(authHeader) <= len(prefix) || !strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return "", ErrInvalidFormat
	}
	return strings.TrimSpace(authHeader[len(prefix):]), nil
}
