package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: s3cret\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 50000.0, cfg.Fees.RegistrationThreshold)
	assert.Equal(t, 5, cfg.OTP.MaxAttempts)
	assert.Equal(t, "10m", cfg.OTP.CodeTTL)
	assert.Equal(t, "60m", cfg.OTP.TokenTTL)
	assert.Equal(t, EmailProviderLog, cfg.Email.Provider)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: from-file\nfees:\n  registration_threshold: 1000\n")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("FEES_REGISTRATION_THRESHOLD", "25000.5")
	t.Setenv("OTP_MAX_ATTEMPTS", "3")
	t.Setenv("SMTP_USE_TLS", "false")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 25000.5, cfg.Fees.RegistrationThreshold)
	assert.Equal(t, 3, cfg.OTP.MaxAttempts)
	assert.False(t, cfg.Email.SMTPUseTLS)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing secret", "server:\n  port: \"9000\"\n"},
		{"bad duration", "jwt:\n  secret: x\notp:\n  code_ttl: ten minutes\n"},
		{"negative threshold", "jwt:\n  secret: x\nfees:\n  registration_threshold: -1\n"},
		{"smtp without host", "jwt:\n  secret: x\nemail:\n  provider: smtp\n"},
		{"unknown provider", "jwt:\n  secret: x\nemail:\n  provider: pigeon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_BadEnvValue(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: x\n")
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestCORSOriginList(t *testing.T) {
	cfg := &Config{}
	cfg.Server.CORSOrigins = "https://a.example, https://b.example,,"
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOriginList())
}

func TestLoadConfig_EnvAliasesAndSecretFiles(t *testing.T) {
	secret := filepath.Join(t.TempDir(), "jwt")
	require.NoError(t, os.WriteFile(secret, []byte("from-file-secret\n"), 0o600))

	path := writeConfig(t, "jwt:\n  secret: x\n")
	t.Setenv("JWT_SECRET_FILE", secret)
	t.Setenv("POSTGRES_DB", "uniportal_test")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file-secret", cfg.JWT.Secret)
	assert.Equal(t, "uniportal_test", cfg.Database.DBName)
	assert.Contains(t, cfg.EnvOverrides, "JWT_SECRET")
	assert.Contains(t, cfg.EnvOverrides, "DB_NAME,POSTGRES_DB")
}

func TestLoadConfig_PrimaryEnvNameWins(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: x\n")
	t.Setenv("DB_NAME", "primary")
	t.Setenv("POSTGRES_DB", "fallback")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "primary", cfg.Database.DBName)
}

func TestLoadConfig_MissingSecretFile(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: x\n")
	t.Setenv("JWT_SECRET_FILE", filepath.Join(t.TempDir(), "absent"))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestTrustedProxies(t *testing.T) {
	cfg := &Config{}
	assert.Empty(t, cfg.TrustedProxyList())

	cfg.Server.TrustedProxies = " 10.0.0.1, 172.16.0.0/12 ,"
	assert.Equal(t, []string{"10.0.0.1", "172.16.0.0/12"}, cfg.TrustedProxyList())

	path := writeConfig(t, "jwt:\n  secret: s\nserver:\n  trusted_proxies: \"not-an-ip\"\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trusted proxy")
}
