package credstore

import (
	"sync"
	"time"

	"github.com/bot608/duocortex-accounts-page/internal/domain/session"
	"github.com/bot608/duocortex-accounts-page/internal/domain/user"
)

// memoryStore keeps the session in process memory. Used by tests and by
// deployments that want a session gone on restart.
type memoryStore struct {
	mu   sync.RWMutex
	sess *session.Session
}

func newMemoryStore() *memoryStore {
	return &memoryStore{}
}

func (s *memoryStore) Save(token string, profile *user.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = session.New(token, profile)
	return nil
}

func (s *memoryStore) Load() (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess == nil {
		return nil, nil
	}
	copied := *s.sess
	return &copied, nil
}

func (s *memoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sess = nil
	return nil
}

func (s *memoryStore) Present() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sess.Authenticated()
}

func (s *memoryStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess == nil {
		return ""
	}
	return s.sess.Token
}

func (s *memoryStore) TouchValidation() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess != nil {
		s.sess.LastValidatedAt = time.Now().UTC()
	}
	return nil
}

func (s *memoryStore) UpdateProfile(profile *user.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sess != nil {
		s.sess.Profile = profile
	}
	return nil
}

func (s *memoryStore) TimeSinceValidation() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sess == nil || s.sess.LastValidatedAt.IsZero() {
		return NeverValidated
	}
	return time.Since(s.sess.LastValidatedAt)
}
