package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("GUEST_TOKEN_SECRET", "guest-key")
	t.Setenv("CONTEXT_TIMEOUT", "")
	t.Setenv("EMAIL_PROVIDER", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "8080", cfg.Port)
	assert.Contains(t, cfg.DBUrl, "guestbook")
	assert.Equal(t, 5*time.Second, cfg.ContextTimeout)
	assert.Equal(t, "noop", cfg.Email.Provider)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "guest-key", cfg.GuestTokenSecret)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("PORT", "9000")
	t.Setenv("CONTEXT_TIMEOUT", "2s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("GUEST_TOKEN_SECRET", "guest-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.ContextTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "guest-key", cfg.GuestTokenSecret)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("CONTEXT_TIMEOUT", "soon")
	t.Setenv("REDIS_DB", "x")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("GUEST_TOKEN_SECRET", "guest-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.ContextTimeout)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestLoad_Secrets(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		jwt       string
		guest     string
		wantErr   error
		wantJWT   string
		wantGuest string
	}{
		{name: "production without any secret", env: "production", wantErr: ErrMissingSecret},
		{name: "production without guest secret", env: "production", jwt: "s3cret", wantErr: ErrMissingSecret},
		{name: "production without jwt secret", env: "production", guest: "guest-key", wantErr: ErrMissingSecret},
		{name: "production with one shared secret", env: "production", jwt: "same", guest: "same", wantErr: ErrSharedSecret},
		{name: "production with both", env: "production", jwt: "s3cret", guest: "guest-key", wantJWT: "s3cret", wantGuest: "guest-key"},
		{name: "development defaults are independent", env: "development", wantJWT: "dev-jwt-secret", wantGuest: "dev-guest-token-secret"},
		{name: "development keeps a set jwt secret", env: "development", jwt: "s3cret", wantJWT: "s3cret", wantGuest: "dev-guest-token-secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GO_ENV", tt.env)
			t.Setenv("JWT_SECRET", tt.jwt)
			t.Setenv("GUEST_TOKEN_SECRET", tt.guest)

			cfg, err := Load()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantJWT, cfg.JWTSecret)
			assert.Equal(t, tt.wantGuest, cfg.GuestTokenSecret)
			assert.NotEqual(t, cfg.JWTSecret, cfg.GuestTokenSecret)
		})
	}
}
