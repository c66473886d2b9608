package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"guestbook/internal/domain"
)

const guestAudiencePrefix = "guest:"

var errWrongEvent = errors.New("token was issued for another event")

type guestTokenSigner struct {
	secret []byte
	expiry time.Duration
}

// NewGuestTokenSigner returns a GuestTokenSigner that issues HS256 JWTs scoped to one event:
// aud is "guest:<eventID>" and sub is the guest's normalized email.
func NewGuestTokenSigner(secret string, expiry time.Duration) domain.GuestTokenSigner {
	return &guestTokenSigner{secret: []byte(secret), expiry: expiry}
}

func (s *guestTokenSigner) Sign(eventID, email string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		Audience:  jwt.ClaimStrings{guestAudiencePrefix + eventID},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign guest token: %w", err)
	}
	return token, nil
}

func (s *guestTokenSigner) Verify(tokenString, eventID string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(guestAudiencePrefix+eventID),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenInvalidAudience) {
			return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, errWrongEvent)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", domain.ErrUnauthorized)
	}
	return claims.Subject, nil
}
