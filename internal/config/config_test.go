package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("CTP_PROJECT_KEY", "shop")
	t.Setenv("CTP_CLIENT_ID", "id")
	t.Setenv("CTP_CLIENT_SECRET", "secret")
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestFromEnv_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":4000", cfg.HTTPAddr)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 15*time.Second, cfg.CommerceTimeout)
	assert.Equal(t, "EUR", cfg.CommerceCurrency)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "email", cfg.ShadowPasswordScheme)
	assert.Equal(t, 4, cfg.GuestOrderConcurrency)
	assert.Equal(t, "token", cfg.SessionCookieName)
}

func TestFromEnv_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("CTP_SCOPES", "manage_project:shop view_products:shop")
	t.Setenv("CTP_HTTP_TIMEOUT_SECONDS", "3")
	t.Setenv("LOG_DEVELOPMENT", "true")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, []string{"manage_project:shop", "view_products:shop"}, cfg.CommerceScopes)
	assert.Equal(t, 3*time.Second, cfg.CommerceTimeout)
	assert.True(t, cfg.LogDevelopment)
}

func TestFromEnv_DotenvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.env")
	content := "CTP_PROJECT_KEY=from-file\nCTP_CLIENT_ID=id\nCTP_CLIENT_SECRET=secret\nSESSION_COOKIE_NAME=sid\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("ENV_FILE", path)
	t.Setenv("SESSION_COOKIE_NAME", "from-env")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.CommerceProjectKey)
	assert.Equal(t, "from-env", cfg.SessionCookieName)
}

func TestValidate(t *testing.T) {
	setRequired(t)
	t.Setenv("SHADOW_PASSWORD_SCHEME", "derived")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHADOW_PASSWORD_SECRET")

	t.Setenv("SHADOW_PASSWORD_SECRET", "0123456789abcdef0123456789abcdef")
	_, err = FromEnv()
	assert.NoError(t, err)

	t.Setenv("SHADOW_PASSWORD_SCHEME", "plain")
	_, err = FromEnv()
	assert.Error(t, err)

	t.Setenv("CTP_PROJECT_KEY", "")
	t.Setenv("SHADOW_PASSWORD_SCHEME", "email")
	_, err = FromEnv()
	assert.ErrorContains(t, err, "CTP_PROJECT_KEY")
}
