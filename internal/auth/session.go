package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

var (
	// ErrNoSession is returned when a request carries no validated session.
	ErrNoSession = errors.New("no session")
	// ErrInvalidSession is returned when a session token fails verification.
	ErrInvalidSession = errors.New("invalid session token")
)

// SessionClaims is the signed payload carried in the session cookie.
type SessionClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// SessionManager issues and validates signed session cookies. Sessions are
// fully client-held; the server keeps no session table, so revocation is the
// cookie being cleared.
type SessionManager struct {
	cookieName string
	secret     []byte
	ttl        time.Duration
	secure     bool
}

// NewSessionManager creates a session manager for the named cookie.
func NewSessionManager(cookieName, secret string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		cookieName: cookieName,
		secret:     []byte(secret),
		ttl:        ttl,
		secure:     secure,
	}
}

// Issue signs a session token for userID and sets it as a cookie on the
// outgoing response.
func (m *SessionManager) Issue(c echo.Context, userID uuid.UUID) error {
	claims := &SessionClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}

	c.SetCookie(&http.Cookie{
		Name:     m.cookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Validate verifies signature, shape and expiry of a raw token and returns
// the embedded user identifier.
func (m *SessionManager) Validate(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return uuid.Nil, ErrInvalidSession
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return uuid.Nil, ErrInvalidSession
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, ErrInvalidSession
	}
	return id, nil
}

// Revoke clears the session cookie. Idempotent: clearing an absent cookie is
// a no-op for the client.
func (m *SessionManager) Revoke(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Middleware guards protected routes. Requests with a missing or invalid
// session cookie are redirected to the site root.
func (m *SessionManager) Middleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:  m.secret,
		TokenLookup: "cookie:" + m.cookieName,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(SessionClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.Redirect(http.StatusFound, "/")
		},
	})
}

// UserID extracts the authenticated user identifier stored by Middleware.
func (m *SessionManager) UserID(c echo.Context) (uuid.UUID, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, ErrNoSession
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return uuid.Nil, ErrInvalidSession
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, ErrInvalidSession
	}
	return id, nil
}
