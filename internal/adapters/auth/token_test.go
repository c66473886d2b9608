package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestbook/internal/domain"
)

func TestJWTIssuer_Issue(t *testing.T) {
	secret := "test-secret"
	expiry := 24 * time.Hour
	issuer := NewJWTIssuer(secret)

	token, err := issuer.Issue("user-123", "u@example.com", []string{"admin", "organizer"}, "sess-1", expiry)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "sess-1", claims.ID)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.Equal(t, []string{"admin", "organizer"}, claims.Roles)
}

func TestJWTVerifier_Verify(t *testing.T) {
	issuer := NewJWTIssuer("test-secret")
	verifier := NewJWTVerifier("test-secret")

	t.Run("round trip", func(t *testing.T) {
		token, err := issuer.Issue("user-123", "u@example.com", []string{"organizer"}, "sess-1", time.Hour)
		require.NoError(t, err)

		claims, err := verifier.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.UserID)
		assert.Equal(t, "sess-1", claims.SessionID)
		assert.True(t, claims.HasRole(domain.RoleOrganizer))
		assert.False(t, claims.HasRole(domain.RoleAdmin))
		assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewJWTIssuer("other").Issue("user-123", "u@example.com", nil, "sess-1", time.Hour)
		require.NoError(t, err)
		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		token, err := issuer.Issue("user-123", "u@example.com", nil, "sess-1", -time.Minute)
		require.NoError(t, err)
		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("guest token is not a session", func(t *testing.T) {
		token, err := NewGuestTokenSigner("test-secret", time.Hour).Sign("ev-1", "a@x.com")
		require.NoError(t, err)
		_, err = verifier.Verify(token)
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := verifier.Verify("not-a-jwt")
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestGuestTokenSigner(t *testing.T) {
	signer := NewGuestTokenSigner("guest-secret", time.Hour)

	token, err := signer.Sign("ev-1", "ana@example.com")
	require.NoError(t, err)

	t.Run("same event", func(t *testing.T) {
		email, err := signer.Verify(token, "ev-1")
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", email)
	})

	t.Run("other event is rejected", func(t *testing.T) {
		_, err := signer.Verify(token, "ev-2")
		require.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.Contains(t, err.Error(), "another event")
	})

	t.Run("tampered signature", func(t *testing.T) {
		_, err := NewGuestTokenSigner("different", time.Hour).Verify(token, "ev-1")
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		old, err := NewGuestTokenSigner("guest-secret", -time.Minute).Sign("ev-1", "ana@example.com")
		require.NoError(t, err)
		_, err = signer.Verify(old, "ev-1")
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}
