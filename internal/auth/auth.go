package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

var (
	// ErrNoCredentials means the request carries neither a bearer token nor a
	// signed-in session.
	ErrNoCredentials = errors.New("no credentials")
	// ErrInvalidCredentials means credentials were presented but rejected.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const tokenIssuer = "videotube"

// Claims carries the viewer id in the uid claim.
type Claims struct {
	UID string `json:"uid"`
	jwt.RegisteredClaims
}

// Authenticator resolves the viewer behind a request. It never creates users
// or sessions on its own; sign-in lives elsewhere.
type Authenticator struct {
	secret      []byte
	validity    time.Duration
	sessions    sessions.Store
	sessionName string
	now         func() time.Time
}

func NewAuthenticator(secret []byte, validity time.Duration, store sessions.Store, sessionName string) *Authenticator {
	return &Authenticator{
		secret:      secret,
		validity:    validity,
		sessions:    store,
		sessionName: sessionName,
		now:         time.Now,
	}
}

func (a *Authenticator) GenerateToken(userID uuid.UUID) (string, error) {
	now := a.now()
	claims := Claims{
		UID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.validity)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (a *Authenticator) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// ViewerFromRequest prefers an Authorization bearer token and falls back to
// the cookie session.
func (a *Authenticator) ViewerFromRequest(r *http.Request) (uuid.UUID, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		return a.viewerFromBearer(header)
	}
	return a.viewerFromSession(r)
}

func (a *Authenticator) viewerFromBearer(header string) (uuid.UUID, error) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return uuid.Nil, fmt.Errorf("%w: malformed authorization header", ErrInvalidCredentials)
	}

	claims, err := a.VerifyToken(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	id, err := uuid.Parse(claims.UID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad uid claim", ErrInvalidCredentials)
	}
	return id, nil
}
