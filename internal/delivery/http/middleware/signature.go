package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"

	h "guestbook/internal/delivery/http/helpers"
)

const (
	// SignatureHeader carries "sha256=<hex HMAC of the raw body>".
	SignatureHeader  = "X-Signature"
	signaturePrefix  = "sha256="
	maxSignedBodyLen = 1 << 20
)

// SignBody returns the X-Signature value for body under secret.
func SignBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return signaturePrefix + hex.EncodeToString(mac.Sum(nil))
}

// RequireSignature verifies the HMAC-SHA256 signature of the raw request body.
// An empty secret disables the check. The body is restored for next.
func RequireSignature(secret string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		if secret == "" {
			return next
		}
		return func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxSignedBodyLen+1))
			if err != nil {
				h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "could not read body")
				return
			}
			if len(body) > maxSignedBodyLen {
				h.WriteJSONError(w, http.StatusRequestEntityTooLarge, h.ErrCodePayloadTooLarge, "request body too large")
				return
			}
			got := strings.TrimSpace(r.Header.Get(SignatureHeader))
			if !strings.HasPrefix(got, signaturePrefix) ||
				!hmac.Equal([]byte(strings.ToLower(got)), []byte(SignBody(secret, body))) {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid signature")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			next(w, r)
		}
	}
}
