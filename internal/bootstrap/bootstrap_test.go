package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appControllers "github.com/yigit/uniportal/internal/app/controllers"
	"github.com/yigit/uniportal/internal/app/jobs"
	"github.com/yigit/uniportal/internal/app/repositories/inmem"
	appServices "github.com/yigit/uniportal/internal/app/services"
	"github.com/yigit/uniportal/internal/config"
	"github.com/yigit/uniportal/internal/pkg/ratelimit"
	"github.com/yigit/uniportal/internal/seed"
)

const adminPassword = "Admin-pass-1"

type codeMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *codeMailer) SendPasswordResetCode(_ context.Context, to, _, code string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[to] = code
	return nil
}

func (m *codeMailer) SendPasswordResetLink(context.Context, string, string, string, time.Duration) error {
	return nil
}

func (m *codeMailer) SendPasswordChanged(context.Context, string, string) error { return nil }

func (m *codeMailer) code(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[to]
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type app struct {
	router *gin.Engine
	mailer *codeMailer
	deps   *Dependencies
	cfg    *config.Config
}

func newApp(t *testing.T, checks map[string]appControllers.Pinger) *app {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "server:\n  mode: test\njwt:\n  secret: e2e-secret\nrate_limit:\n  requests_per_window: 100\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	store := inmem.New()
	require.NoError(t, seed.CreateDefaultData(context.Background(), store.Programs(), store.Users(),
		seed.Admin{Email: "admin@uni.ac.ke", Password: adminPassword}, zerolog.Nop()))

	mailer := &codeMailer{codes: map[string]string{}}
	if checks == nil {
		checks = map[string]appControllers.Pinger{"database": stubPinger{}}
	}
	infra := Infrastructure{
		Stores: appServices.Stores{
			Users:          store.Users(),
			Tokens:         store.Tokens(),
			Students:       store.Students(),
			Programs:       store.Programs(),
			Payments:       store.Payments(),
			PasswordResets: store.PasswordResets(),
			Notifications:  store.Notifications(),
			Audit:          store.Audit(),
			Units:          store.Units(),
		},
		Expirers: map[string]jobs.Expirer{"password_resets": store.PasswordResets()},
		Mailer:   mailer,
		Limiter:  ratelimit.NewMemoryLimiter(100, time.Minute),
		Checks:   checks,
	}

	deps := BuildDependencies(cfg, infra, zerolog.Nop())
	return &app{router: SetupRouter(cfg, deps, zerolog.Nop()), mailer: mailer, deps: deps, cfg: cfg}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Hint    string `json:"hint"`
	} `json:"error"`
}

func (a *app) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w.Code, env
}

func (a *app) login(t *testing.T, email, password string) string {
	t.Helper()
	status, env := a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, status, "login %s", email)

	var auth struct {
		Token struct {
			AccessToken string `json:"accessToken"`
		} `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	require.NotEmpty(t, auth.Token.AccessToken)
	return auth.Token.AccessToken
}

func studentPath(admission, suffix string) string {
	return "/api/v1/students/" + url.PathEscape(admission) + suffix
}

func TestEndToEnd_PaymentToEligibility(t *testing.T) {
	a := newApp(t, nil)
	admin := a.login(t, "admin@uni.ac.ke", adminPassword)

	status, _ := a.do(t, http.MethodPost, "/api/v1/students", admin, map[string]any{
		"admissionNumber": "st/001/21",
		"fullName":        "Achieng Otieno",
		"email":           "achieng@uni.ac.ke",
		"courseCode":      "plumbing_4",
		"department":      "Building",
		"yearOfStudy":     1,
		"intake":          "2021-SEP",
		"initialPassword": "Student-pass-1",
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = a.do(t, http.MethodPost, studentPath("ST/001/21", "/payments"), admin, map[string]any{
		"amount": 20000, "mode": "mobile money", "reference": "QWE123",
	})
	require.Equal(t, http.StatusCreated, status)

	student := a.login(t, "achieng@uni.ac.ke", "Student-pass-1")

	status, env := a.do(t, http.MethodGet, studentPath("ST/001/21", "/eligibility"), student, nil)
	require.Equal(t, http.StatusOK, status)

	var elig struct {
		ProgramName    string   `json:"programName"`
		ProgramCost    *float64 `json:"programCost"`
		TotalFees      float64  `json:"totalFees"`
		TotalPaid      float64  `json:"totalPaid"`
		Balance        float64  `json:"balance"`
		CanRegister    bool     `json:"canRegister"`
		FeesDetermined bool     `json:"feesDetermined"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &elig))
	assert.Equal(t, "Plumbing Level 4", elig.ProgramName)
	require.NotNil(t, elig.ProgramCost)
	assert.Equal(t, 50000.0, *elig.ProgramCost)
	assert.Equal(t, 20000.0, elig.TotalPaid)
	assert.Equal(t, 30000.0, elig.Balance)
	assert.True(t, elig.FeesDetermined)
	assert.True(t, elig.CanRegister)

	status, _ = a.do(t, http.MethodPost, studentPath("ST/001/21", "/unit-registrations"), student, map[string]string{
		"unitCode": "PLB 401", "academicPeriod": "2025-JAN",
	})
	assert.Equal(t, http.StatusCreated, status)

	status, env = a.do(t, http.MethodGet, "/api/v1/notifications", student, nil)
	require.Equal(t, http.StatusOK, status)
	var inbox struct {
		UnreadCount int64 `json:"unreadCount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &inbox))
	assert.Equal(t, int64(1), inbox.UnreadCount, "payment notification")
}

func TestEndToEnd_UndeterminedFees(t *testing.T) {
	a := newApp(t, nil)
	admin := a.login(t, "admin@uni.ac.ke", adminPassword)

	status, _ := a.do(t, http.MethodPost, "/api/v1/students", admin, map[string]any{
		"admissionNumber": "ST/031/23",
		"fullName":        "Wanjiru Kamau",
		"email":           "wanjiru@uni.ac.ke",
		"courseCode":      "underwater_basket_weaving_9",
		"department":      "Crafts",
		"yearOfStudy":     1,
		"intake":          "2023-JAN",
	})
	require.Equal(t, http.StatusCreated, status)

	status, env := a.do(t, http.MethodGet, studentPath("ST/031/23", "/eligibility"), admin, nil)
	require.Equal(t, http.StatusOK, status)

	var elig map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &elig))
	assert.Equal(t, false, elig["feesDetermined"])
	assert.Equal(t, false, elig["canRegister"])
	assert.Contains(t, elig, "balance")
	assert.Nil(t, elig["balance"])
	assert.Nil(t, elig["totalFees"])
	assert.Nil(t, elig["programCost"])
}

func TestEndToEnd_AccessControl(t *testing.T) {
	a := newApp(t, nil)
	admin := a.login(t, "admin@uni.ac.ke", adminPassword)

	for _, adm := range []string{"ST/001/21", "ST/002/21"} {
		status, _ := a.do(t, http.MethodPost, "/api/v1/students", admin, map[string]any{
			"admissionNumber": adm,
			"fullName":        "Student " + adm,
			"email":           strings.ToLower(strings.ReplaceAll(adm, "/", "")) + "@uni.ac.ke",
			"courseCode":      "plumbing_4",
			"department":      "Building",
			"yearOfStudy":     1,
			"intake":          "2021-SEP",
			"initialPassword": "Student-pass-1",
		})
		require.Equal(t, http.StatusCreated, status)
	}
	student := a.login(t, "st00121@uni.ac.ke", "Student-pass-1")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
		code   string
	}{
		{"no token", http.MethodGet, studentPath("ST/001/21", ""), "", http.StatusUnauthorized, "AUTH_008"},
		{"garbage token", http.MethodGet, studentPath("ST/001/21", ""), "not-a-jwt", http.StatusUnauthorized, "AUTH_005"},
		{"own record", http.MethodGet, studentPath("ST/001/21", ""), student, http.StatusOK, ""},
		{"own record lower case", http.MethodGet, studentPath("st/001/21", "/payments"), student, http.StatusOK, ""},
		{"someone else's record", http.MethodGet, studentPath("ST/002/21", "/eligibility"), student, http.StatusForbidden, "AUTH_009"},
		{"student listing", http.MethodGet, "/api/v1/students", student, http.StatusForbidden, "AUTH_009"},
		{"student records payment", http.MethodPost, studentPath("ST/001/21", "/payments"), student, http.StatusForbidden, "AUTH_009"},
		{"audit for admin", http.MethodGet, "/api/v1/audit-logs", admin, http.StatusOK, ""},
		{"unknown student", http.MethodGet, studentPath("ST/404/21", ""), admin, http.StatusNotFound, "RES_001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body any
			if tt.method == http.MethodPost {
				body = map[string]any{"amount": 100, "mode": "BANK", "reference": "X1"}
			}
			status, env := a.do(t, tt.method, tt.path, tt.token, body)
			assert.Equal(t, tt.want, status)
			if tt.code != "" {
				require.NotNil(t, env.Error)
				assert.Equal(t, tt.code, env.Error.Code)
			}
		})
	}
}

func TestEndToEnd_ResolveAndAliases(t *testing.T) {
	a := newApp(t, nil)
	admin := a.login(t, "admin@uni.ac.ke", adminPassword)

	status, env := a.do(t, http.MethodGet, "/api/v1/catalog/resolve?courseCode=underwater_basket_9", admin, nil)
	require.Equal(t, http.StatusOK, status)
	var resolved struct {
		CostPerYear *float64 `json:"costPerYear"`
		Known       bool     `json:"known"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &resolved))
	assert.False(t, resolved.Known)
	assert.Nil(t, resolved.CostPerYear)

	status, env = a.do(t, http.MethodGet, "/api/v1/catalog/aliases", "", nil)
	require.Equal(t, http.StatusOK, status)
	var table struct {
		Version int `json:"version"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &table))
	assert.Positive(t, table.Version)
}

func TestEndToEnd_PasswordReset(t *testing.T) {
	a := newApp(t, nil)
	forgot := map[string]string{"email": "admin@uni.ac.ke", "userType": "ADMIN"}

	status, _ := a.do(t, http.MethodPost, "/api/v1/auth/password/forgot", "", forgot)
	require.Equal(t, http.StatusAccepted, status)
	code := a.mailer.code("admin@uni.ac.ke")
	require.NotEmpty(t, code)

	status, env := a.do(t, http.MethodPost, "/api/v1/auth/password/verify-otp", "", map[string]string{
		"email": "admin@uni.ac.ke", "userType": "ADMIN", "code": code,
	})
	require.Equal(t, http.StatusOK, status)
	var verified struct {
		ResetGrant string `json:"resetGrant"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &verified))

	status, env = a.do(t, http.MethodPost, "/api/v1/auth/password/verify-otp", "", map[string]string{
		"email": "admin@uni.ac.ke", "userType": "ADMIN", "code": code,
	})
	assert.Equal(t, http.StatusBadRequest, status, "a code verifies once")
	require.NotNil(t, env.Error)
	assert.Equal(t, "AUTH_010", env.Error.Code)

	status, _ = a.do(t, http.MethodPost, "/api/v1/auth/password/reset", "", map[string]string{
		"resetGrant": verified.ResetGrant, "newPassword": "Brand-new-pass-2",
	})
	require.Equal(t, http.StatusOK, status)

	status, env = a.do(t, http.MethodPost, "/api/v1/auth/password/reset", "", map[string]string{
		"resetGrant": verified.ResetGrant, "newPassword": "Another-pass-3",
	})
	assert.Equal(t, http.StatusBadRequest, status, "a reset grant sets a password once")
	require.NotNil(t, env.Error)
	assert.Equal(t, "AUTH_010", env.Error.Code)

	status, _ = a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "admin@uni.ac.ke", "password": adminPassword})
	assert.Equal(t, http.StatusUnauthorized, status)
	a.login(t, "admin@uni.ac.ke", "Brand-new-pass-2")
}

func TestHealthAndMetrics(t *testing.T) {
	healthy := newApp(t, nil)
	status, _ := healthy.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, status)

	degraded := newApp(t, map[string]appControllers.Pinger{
		"database": stubPinger{},
		"redis":    stubPinger{err: errors.New("dial tcp: connection refused")},
	})
	status, _ = degraded.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	healthy.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	healthy.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "uniportal_http_request_duration_seconds")
}

func TestRateLimit_ForwardedFor(t *testing.T) {
	tests := []struct {
		name           string
		trustedProxies string
		wantLimited    bool
	}{
		{name: "untrusted peer cannot pick its client IP", wantLimited: true},
		{name: "trusted proxy forwards distinct clients", trustedProxies: "203.0.113.0/24", wantLimited: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newApp(t, nil)
			a.cfg.Server.TrustedProxies = tt.trustedProxies
			a.deps.Limiter = ratelimit.NewMemoryLimiter(1, time.Minute)
			router := SetupRouter(a.cfg, a.deps, zerolog.Nop())

			limited := 0
			for i := 1; i <= 5; i++ {
				body := strings.NewReader(`{"email":"nobody@uni.ac.ke","password":"wrong-pass1"}`)
				req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
				req.Header.Set("Content-Type", "application/json")
				req.Header.Set("X-Forwarded-For", "198.51.100."+strconv.Itoa(i))
				req.RemoteAddr = "203.0.113.7:50000"
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)
				if w.Code == http.StatusTooManyRequests {
					limited++
				}
			}

			if tt.wantLimited {
				assert.Equal(t, 4, limited)
			} else {
				assert.Zero(t, limited)
			}
		})
	}
}

func TestCORSConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.CORSOrigins = "*"
	assert.True(t, corsConfig(cfg).AllowAllOrigins)

	cfg.Server.CORSOrigins = "https://portal.uni.ac.ke"
	cc := corsConfig(cfg)
	assert.False(t, cc.AllowAllOrigins)
	assert.Equal(t, []string{"https://portal.uni.ac.ke"}, cc.AllowOrigins)
	assert.Contains(t, cc.AllowHeaders, "Authorization")
}
