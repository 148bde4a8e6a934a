package auth

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const sessionUserKey = "user_id"

// NewSessionStore builds the cookie store used for browser sessions. Missing
// keys are generated, which invalidates existing cookies on restart.
func NewSessionStore(authKey, encryptionKey []byte, production bool) *sessions.CookieStore {
	if len(authKey) == 0 {
		authKey = securecookie.GenerateRandomKey(64)
	}
	if len(encryptionKey) == 0 {
		encryptionKey = securecookie.GenerateRandomKey(32)
	}

	store := sessions.NewCookieStore(authKey, encryptionKey)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   production,
		SameSite: http.SameSiteLaxMode,
	}
	if production {
		store.Options.SameSite = http.SameSiteNoneMode
	}
	return store
}

// SaveSession records the viewer in the session cookie.
func (a *Authenticator) SaveSession(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	if a.sessions == nil {
		return fmt.Errorf("sessions are not configured")
	}

	session, err := a.sessions.Get(r, a.sessionName)
	if err != nil && session == nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	session.Values[sessionUserKey] = userID.String()

	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (a *Authenticator) viewerFromSession(r *http.Request) (uuid.UUID, error) {
	if a.sessions == nil {
		return uuid.Nil, ErrNoCredentials
	}
	if _, err := r.Cookie(a.sessionName); err != nil {
		return uuid.Nil, ErrNoCredentials
	}

	session, err := a.sessions.Get(r, a.sessionName)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if session.IsNew {
		return uuid.Nil, ErrNoCredentials
	}

	raw, ok := session.Values[sessionUserKey].(string)
	if !ok || raw == "" {
		return uuid.Nil, ErrNoCredentials
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad user id in session", ErrInvalidCredentials)
	}
	return id, nil
}
