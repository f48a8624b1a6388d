package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Manager signs and verifies the HS256 session tokens issued upstream. Only
// verification is consumed by the request pipeline; signing exists for tests
// and the credential-less dev flow.
type Manager struct{ secret []byte }

func NewManager(secret string) *Manager { return &Manager{secret: []byte(secret)} }

// Claims is the verified identity carried by a session token.
type Claims struct {
	Sub        string `json:"sub"`
	Role       string `json:"role"`
	LocationID *uint  `json:"location_id,omitempty"`
	Exp        int64  `json:"exp"`
}

func b64enc(b []byte) string          { return base64.RawURLEncoding.EncodeToString(b) }
func b64dec(s string) ([]byte, error) { return base64.RawURLEncoding.DecodeString(s) }

func (m *Manager) Sign(sub, role string, locationID *uint, ttl time.Duration) (string, error) {
	header := map[string]string{"alg": "HS256", "typ": "JWT"}
	h, _ := json.Marshal(header)
	c, _ := json.Marshal(Claims{Sub: sub, Role: role, LocationID: locationID, Exp: time.Now().Add(ttl).Unix()})
	payload := b64enc(h) + "." + b64enc(c)
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(payload))
	return payload + "." + b64enc(mac.Sum(nil)), nil
}

func (m *Manager) Verify(tok string) (Claims, error) {
	var c Claims
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return c, errors.New("bad token")
	}
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(parts[0] + "." + parts[1]))
	got, err := b64dec(parts[2])
	if err != nil {
		return c, err
	}
	if !hmac.Equal(mac.Sum(nil), got) {
		return c, errors.New("bad signature")
	}
	cb, err := b64dec(parts[1])
	if err != nil {
		return c, err
	}
	if err := json.Unmarshal(cb, &c); err != nil {
		return c, err
	}
	if c.Exp > 0 && time.Now().Unix() > c.Exp {
		return c, errors.New("expired")
	}
	return c, nil
}
