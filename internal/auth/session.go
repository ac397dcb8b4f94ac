package auth

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const SessionName = "storefront_session"

// SessionStore garde le token d'accès dans un cookie signé pour les navigateurs
type SessionStore struct {
	store *sessions.CookieStore
}

func NewSessionStore(secret string, maxAge time.Duration, secure bool) *SessionStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionStore{store: store}
}

// Store est partagé avec gothic pour l'état OAuth
func (s *SessionStore) Store() sessions.Store {
	return s.store
}

func (s *SessionStore) Save(w http.ResponseWriter, r *http.Request, token string, expires time.Time) error {
	session, _ := s.store.Get(r, SessionName)
	session.Values["access_token"] = token
	session.Values["expires"] = expires.Unix()
	return session.Save(r, w)
}

// Token retourne le token du cookie s'il n'est pas expiré
func (s *SessionStore) Token(r *http.Request) (string, bool) {
	session, err := s.store.Get(r, SessionName)
	if err != nil {
		return "", false
	}
	token, _ := session.Values["access_token"].(string)
	expires, _ := session.Values["expires"].(int64)
	if token == "" || time.Now().Unix() >= expires {
		return "", false
	}
	return token, true
}

func (s *SessionStore) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, SessionName)
	session.Values = map[any]any{}
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
