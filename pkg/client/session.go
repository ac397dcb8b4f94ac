package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}

// Session est la session authentifiée fournie par /api/auth/login
type Session struct {
	User        User      `json:"user"`
	AccessToken string    `json:"accessToken"`
	Expires     time.Time `json:"expires"`
}

// Valid : une session sans token, ou expirée, ne permet aucun appel authentifié
func (s *Session) Valid() bool {
	return s.hasToken() && !s.Expired()
}

// Expired : une expiration nulle signifie que le serveur n'en a pas donné
func (s *Session) Expired() bool {
	return s != nil && !s.Expires.IsZero() && time.Now().After(s.Expires)
}

func (s *Session) hasToken() bool {
	return s != nil && s.AccessToken != ""
}

// SessionProvider expose la session courante. Subscribe notifie chaque changement de référence.
type SessionProvider interface {
	Current() *Session
	Subscribe() (<-chan struct{}, func())
}

// SessionWriter est un SessionProvider que le client peut remplir (login) et vider (logout)
type SessionWriter interface {
	SessionProvider
	Set(s *Session) error
}

// SessionHolder garde la session en mémoire, il est construit explicitement et partagé par le client
type SessionHolder struct {
	mu      sync.RWMutex
	current *Session
	subs    map[chan struct{}]struct{}
}

func NewSessionHolder(initial *Session) *SessionHolder {
	return &SessionHolder{current: initial, subs: make(map[chan struct{}]struct{})}
}

func (h *SessionHolder) Current() *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Set remplace la session ; les abonnés sont notifiés seulement si la référence change
func (h *SessionHolder) Set(s *Session) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.current == s {
		return nil
	}
	h.current = s
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

// Subscribe : le canal a un tampon de 1, plusieurs changements rapprochés donnent une seule notification
func (h *SessionHolder) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
		})
	}
}

// FileSessionHolder persiste la session dans un fichier JSON entre deux commandes CLI
type FileSessionHolder struct {
	*SessionHolder
	path string
}

// LoadFileSession lit la session enregistrée ; un fichier absent donne une session vide
func LoadFileSession(path string) (*FileSessionHolder, error) {
	h := &FileSessionHolder{SessionHolder: NewSessionHolder(nil), path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return h, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lecture session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("session illisible %s: %w", path, err)
	}
	h.current = &s
	return h, nil
}

// Set écrit la session (droits 0600) ou supprime le fichier quand s est nil
func (h *FileSessionHolder) Set(s *Session) error {
	if s == nil {
		if err := os.Remove(h.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("suppression session: %w", err)
		}
		return h.SessionHolder.Set(nil)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o700); err != nil {
		return fmt.Errorf("création dossier session: %w", err)
	}
	if err := os.WriteFile(h.path, data, 0o600); err != nil {
		return fmt.Errorf("écriture session: %w", err)
	}
	return h.SessionHolder.Set(s)
}
