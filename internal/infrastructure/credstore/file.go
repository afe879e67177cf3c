package credstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bot608/duocortex-accounts-page/internal/domain/session"
	"github.com/bot608/duocortex-accounts-page/internal/domain/user"
)

// fileStore persists the session as a single JSON snapshot on disk. Writes
// go through a temp file plus rename, so a reader sees either the old
// snapshot or the new one, never a partial write.
type fileStore struct {
	mu   sync.RWMutex
	path string
}

func newFileStore(path string) (*fileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	return &fileStore{path: path}, nil
}

func (s *fileStore) Save(token string, profile *user.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(session.New(token, profile))
}

func (s *fileStore) Load() (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(), nil
}

func (s *fileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *fileStore) Present() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read().Authenticated()
}

func (s *fileStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess := s.read(); sess != nil {
		return sess.Token
	}
	return ""
}

func (s *fileStore) TouchValidation() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.read()
	if sess == nil {
		return nil
	}
	sess.LastValidatedAt = time.Now().UTC()
	return s.write(sess)
}

func (s *fileStore) UpdateProfile(profile *user.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.read()
	if sess == nil {
		return nil
	}
	sess.Profile = profile
	return s.write(sess)
}

func (s *fileStore) TimeSinceValidation() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess := s.read()
	if sess == nil || sess.LastValidatedAt.IsZero() {
		return NeverValidated
	}
	return time.Since(sess.LastValidatedAt)
}

// read returns the stored session, or nil when the snapshot is missing or
// cannot be decoded. A corrupt snapshot behaves like an empty store.
func (s *fileStore) read() *session.Session {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil
	}
	if sess.Token == "" {
		return nil
	}
	return &sess
}

func (s *fileStore) write(sess *session.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
