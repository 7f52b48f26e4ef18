package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const sessionCookieName = "kewo_session"

type sessionIDKey struct{}

// cookieSigner signs session ids so clients cannot pick another session's id.
type cookieSigner struct {
	secret []byte
}

func newCookieSigner(secret string) *cookieSigner {
	return &cookieSigner{secret: []byte(secret)}
}

func (c *cookieSigner) sign(id string) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(id))
	return payload + "." + hex.EncodeToString(c.mac(payload))
}

func (c *cookieSigner) verify(value string) (string, bool) {
	payload, signature, ok := strings.Cut(value, ".")
	if !ok || strings.Contains(signature, ".") {
		return "", false
	}

	provided, err := hex.DecodeString(signature)
	if err != nil {
		return "", false
	}
	if !hmac.Equal(provided, c.mac(payload)) {
		return "", false
	}

	decoded, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", false
	}
	id, err := uuid.ParseBytes(decoded)
	if err != nil {
		return "", false
	}

	return id.String(), true
}

func (c *cookieSigner) mac(payload string) []byte {
	mac := hmac.New(sha256.New, c.secret)
	_, _ = mac.Write([]byte(payload))
	return mac.Sum(nil)
}

// setCookie issues a browser-session cookie; it has no Max-Age so it ends
// with the browser session.
func (c *cookieSigner) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    c.sign(id),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *cookieSigner) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionMiddleware resolves the session id from the cookie, or starts a
// new session when the cookie is missing or forged.
func (s *server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			id, _ = s.cookies.verify(cookie.Value)
		}
		if id == "" {
			id = uuid.NewString()
			s.cookies.setCookie(w, id)
		}

		ctx := context.WithValue(r.Context(), sessionIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionIDKey{}).(string)
	return id
}
