package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"kopimakmur/internal/core"
)

const SessionCookieName = "kopi_session"

var ErrNoSession = errors.New("no valid session")

type sessionClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Seed     bool   `json:"seed,omitempty"`
	jwt.RegisteredClaims
}

// SessionManager stores the Principal in a signed cookie.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessionManager(secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

// Sign returns a token for p.
func (m *SessionManager) Sign(p Principal) (string, error) {
	now := m.now()
	claims := sessionClaims{
		Username: p.Username,
		Role:     string(p.Role),
		Seed:     p.Seed,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "kopimakmur",
			Subject:   strconv.FormatInt(p.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns its principal.
func (m *SessionManager) Parse(raw string) (Principal, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer("kopimakmur"),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.Username == "" {
		return Principal{}, ErrNoSession
	}
	return Principal{
		UserID:   id,
		Username: claims.Username,
		Role:     core.Role(claims.Role),
		Seed:     claims.Seed,
	}, nil
}

// Issue sets the session cookie for p.
func (m *SessionManager) Issue(w http.ResponseWriter, p Principal) error {
	token, err := m.Sign(p)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read returns the principal carried by r, or ErrNoSession.
func (m *SessionManager) Read(r *http.Request) (Principal, error) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil || c.Value == "" {
		return Principal{}, ErrNoSession
	}
	return m.Parse(c.Value)
}

// Clear expires the session cookie.
func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
