package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/AD-em/orphan-database/internal/config"
)

// CookieCodec signs and verifies the session cookie. The cookie value is
// "<id>.<hex hmac-sha256>"; a value that fails verification is treated the
// same as no cookie at all.
type CookieCodec struct {
	name   string
	secret []byte
	ttl    time.Duration
	secure bool
	domain string
}

func NewCookieCodec(cfg config.SessionConfig) CookieCodec {
	return CookieCodec{
		name:   cfg.CookieName,
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		secure: cfg.CookieSecure,
		domain: cfg.CookieDomain,
	}
}

// Name returns the cookie name.
func (c CookieCodec) Name() string { return c.name }

// Encode builds the Set-Cookie carrying a signed session ID.
func (c CookieCodec) Encode(id string) *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    id + "." + c.sign(id),
		Path:     "/",
		Domain:   c.domain,
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Expire builds the Set-Cookie that clears the session cookie.
func (c CookieCodec) Expire() *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		Domain:   c.domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Decode extracts and verifies the session ID from the request cookie.
func (c CookieCodec) Decode(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return "", false
	}
	id, mac, found := strings.Cut(cookie.Value, ".")
	if !found || id == "" {
		return "", false
	}
	if !hmac.Equal([]byte(mac), []byte(c.sign(id))) {
		return "", false
	}
	return id, true
}

func (c CookieCodec) sign(id string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))
}
