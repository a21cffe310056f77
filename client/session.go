package client

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/chikoro/core/user"
)

// Session is what a signed-in client remembers between calls.
type Session struct {
	Token string        `json:"token,omitempty"`
	User  *user.Profile `json:"user,omitempty"`
}

type SessionStore interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

type MemoryStore struct {
	mu   sync.RWMutex
	sess Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess, nil
}

func (s *MemoryStore) Save(sess Session) error {
	s.mu.Lock()
	s.sess = sess
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear() error {
	return s.Save(Session{})
}

// FileStore keeps the session as JSON in a file readable by its owner only.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns an empty Session when the file does not exist.
func (s *FileStore) Load() (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sess Session
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return sess, nil
		}
		return sess, errors.Wrap(err, "reading session file")
	}
	if err = json.Unmarshal(data, &sess); err != nil {
		return Session{}, errors.Wrap(err, "decoding session file")
	}
	return sess, nil
}

func (s *FileStore) Save(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	if err = os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return errors.Wrap(err, "creating session dir")
	}
	return errors.Wrap(os.WriteFile(s.path, data, 0o600), "writing session file")
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing session file")
	}
	return nil
}

// Login signs in and stores the token with the user.
func (c *Client) Login(ctx context.Context, email, password string) (user.Profile, error) {
	res, err := c.Auth.Login(ctx, email, password)
	if err != nil {
		return user.Profile{}, err
	}
	prof := res.User
	if err = c.store.Save(Session{Token: res.AccessToken, User: &prof}); err != nil {
		return user.Profile{}, err
	}
	return prof, nil
}

func (c *Client) Logout() error {
	return c.store.Clear()
}

// IsAuthenticated reports whether a token is stored.
func (c *Client) IsAuthenticated() bool {
	sess, err := c.store.Load()
	return err == nil && sess.Token != ""
}

// CurrentUser is the stored user, nil when signed out.
func (c *Client) CurrentUser() *user.Profile {
	sess, err := c.store.Load()
	if err != nil {
		return nil
	}
	return sess.User
}

// LoadUser returns the current user. Without a token it is the stored user (maybe nil); with one it is
// refreshed through /auth/me, and the session is cleared when that fails.
func (c *Client) LoadUser(ctx context.Context) (*user.Profile, error) {
	sess, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	if sess.Token == "" {
		return sess.User, nil
	}

	prof, err := c.Auth.Me(ctx)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil, err // already cleared
		}
		return nil, c.forget(err)
	}
	sess.User = &prof
	if err = c.store.Save(sess); err != nil {
		return nil, err
	}
	return &prof, nil
}

// RefreshToken swaps the stored token for a fresh one.
func (c *Client) RefreshToken(ctx context.Context) error {
	res, err := c.Auth.RefreshToken(ctx)
	if err != nil {
		return err
	}
	prof := res.User
	return c.store.Save(Session{Token: res.AccessToken, User: &prof})
}
