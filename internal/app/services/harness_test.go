package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	appAuth "github.com/yigit/uniportal/internal/app/auth"
	"github.com/yigit/uniportal/internal/app/models"
	"github.com/yigit/uniportal/internal/app/repositories/inmem"
	pkgAuth "github.com/yigit/uniportal/internal/pkg/auth"
	"github.com/yigit/uniportal/internal/pkg/metrics"
)

type sentSecret struct {
	To     string
	Secret string
}

type fakeMailer struct {
	mu      sync.Mutex
	codes   []sentSecret
	links   []sentSecret
	changed []string
	fail    error
}

func (m *fakeMailer) SendPasswordResetCode(_ context.Context, to, _, code string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.codes = append(m.codes, sentSecret{To: to, Secret: code})
	return nil
}

func (m *fakeMailer) SendPasswordResetLink(_ context.Context, to, _, token string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.links = append(m.links, sentSecret{To: to, Secret: token})
	return nil
}

func (m *fakeMailer) SendPasswordChanged(_ context.Context, to, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changed = append(m.changed, to)
	return nil
}

func (m *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.codes, "no code was mailed")
	return m.codes[len(m.codes)-1].Secret
}

func (m *fakeMailer) lastLink(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.links, "no link was mailed")
	return m.links[len(m.links)-1].Secret
}

var errSMTPDown = errors.New("smtp: connection refused")

type testEnv struct {
	store   *inmem.Store
	svc     *Services
	mailer  *fakeMailer
	metrics *metrics.Metrics
	jwt     *pkgAuth.JWTService
	clock   time.Time
}

var (
	finance   = appAuth.Principal{UserID: 900, UserType: models.UserTypeStaff, Role: models.RoleFinance}
	registrar = appAuth.Principal{UserID: 901, UserType: models.UserTypeStaff, Role: models.RoleRegistrar}
	hod       = appAuth.Principal{UserID: 902, UserType: models.UserTypeStaff, Role: models.RoleHOD}
)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store:   inmem.New(),
		mailer:  &fakeMailer{},
		metrics: metrics.New(),
		clock:   time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	env.jwt = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		ResetGrantExp:   15 * time.Minute,
		TokenIssuer:     "uniportal-test",
	}).WithClock(env.now)

	stores := Stores{
		Users:          env.store.Users(),
		Tokens:         env.store.Tokens(),
		Students:       env.store.Students(),
		Programs:       env.store.Programs(),
		Payments:       env.store.Payments(),
		PasswordResets: env.store.PasswordResets(),
		Notifications:  env.store.Notifications(),
		Audit:          env.store.Audit(),
		Units:          env.store.Units(),
	}
	env.svc = New(stores, env.jwt, env.mailer, env.metrics, Config{
		OTP: OTPConfig{
			CodeLength:  6,
			CodeTTL:     10 * time.Minute,
			TokenTTL:    60 * time.Minute,
			GrantTTL:    15 * time.Minute,
			MaxAttempts: 5,
		},
		RegistrationThreshold: 50000,
	}, zerolog.Nop())

	env.svc.Audit.now = env.now
	env.svc.Notifications.now = env.now
	env.svc.Payments.now = env.now
	env.svc.OTP.now = env.now
	env.svc.Auth.now = env.now
	env.svc.Units.now = env.now
	return env
}

func (e *testEnv) now() time.Time { return e.clock }

func (e *testEnv) advance(d time.Duration) { e.clock = e.clock.Add(d) }

func (e *testEnv) seedProgram(t *testing.T, name string, cost float64) *models.Program {
	t.Helper()
	p := &models.Program{Name: name, Department: "Building", CostPerYear: cost}
	require.NoError(t, e.store.Programs().Create(context.Background(), p))
	return p
}

func (e *testEnv) seedStudent(t *testing.T, admission, course string, year int) *models.Student {
	t.Helper()
	s := &models.Student{
		AdmissionNumber: admission,
		FullName:        "John Otieno",
		Email:           "john@uni.ac.ke",
		CourseCode:      course,
		Department:      "Building",
		YearOfStudy:     year,
		Intake:          "2021-SEP",
		IsActive:        true,
	}
	require.NoError(t, e.store.Students().Create(context.Background(), s))
	return s
}

func (e *testEnv) seedUser(t *testing.T, email, password string, role models.RoleType, admission *string) *models.User {
	t.Helper()
	hash, err := pkgAuth.HashPassword(password)
	require.NoError(t, err)
	u := &models.User{
		Email:           email,
		Password:        hash,
		FullName:        "Test User",
		UserType:        role.UserType(),
		Role:            role,
		AdmissionNumber: admission,
		IsActive:        true,
	}
	require.NoError(t, e.store.Users().Create(context.Background(), u))
	return u
}

func strPtr(s string) *string { return &s }

func recipientOf(u *models.User) models.Recipient {
	return models.Recipient{ID: u.ID, Type: u.UserType}
}

func auditActionFilter(action string) models.AuditFilter {
	return models.AuditFilter{Action: &action}
}
