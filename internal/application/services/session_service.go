package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bot608/duocortex-accounts-page/config"
	"github.com/bot608/duocortex-accounts-page/internal/application/providers"
	"github.com/bot608/duocortex-accounts-page/internal/domain/session"
	"github.com/bot608/duocortex-accounts-page/internal/domain/user"
	"github.com/bot608/duocortex-accounts-page/internal/infrastructure/backend"
	"github.com/bot608/duocortex-accounts-page/internal/infrastructure/credstore"
	"github.com/bot608/duocortex-accounts-page/pkg/errors"
	"github.com/bot608/duocortex-accounts-page/pkg/logger"
)

// SessionService drives the session state machine: it restores sessions from
// the credential store on startup, runs logins through the backend, and keeps
// the in-memory view and the store in sync.
//
// At most one authentication operation runs at a time. A second caller gets
// ErrOperationInProgress instead of queueing, so two logins can never
// interleave their writes to the store.
type SessionService struct {
	store     credstore.Store
	client    *backend.Client
	providers map[string]providers.IdentityProvider
	window    time.Duration
	prefix    string
	log       logger.Logger

	mu          sync.Mutex
	state       session.State
	current     *session.Session
	busy        bool
	initialized bool
}

// NewSessionService creates the lifecycle controller in the uninitialized
// state. Call Initialize before serving traffic.
func NewSessionService(
	store credstore.Store,
	client *backend.Client,
	idps []providers.IdentityProvider,
	cfg *config.AuthConfig,
	log logger.Logger,
) *SessionService {
	byName := make(map[string]providers.IdentityProvider, len(idps))
	for _, p := range idps {
		byName[p.Name()] = p
	}
	return &SessionService{
		store:     store,
		client:    client,
		providers: byName,
		window:    cfg.RevalidationWindow,
		prefix:    cfg.DevicePrefix,
		log:       log.With(logger.Component("session")),
		state:     session.StateUninitialized,
	}
}

// Initialize restores the stored session, revalidating against the backend
// only when the last confirmation is older than the revalidation window.
// Repeat calls and calls during another auth operation are no-ops.
//
// A token the backend rejects tears the session down; a transient network
// failure keeps the cached session, so an offline restart does not log the
// user out.
func (s *SessionService) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.initialized || s.busy {
		s.mu.Unlock()
		return nil
	}
	s.busy = true
	s.state = session.StateInitializing
	s.mu.Unlock()

	sess, err := s.store.Load()
	if err != nil || sess == nil {
		s.finish(session.StateUnauthenticated, nil)
		return nil
	}

	if !sess.NeedsRevalidation(s.window) {
		s.log.Debug("session restored from cache",
			logger.Duration("since_validation", s.store.TimeSinceValidation()))
		s.finish(session.StateAuthenticated, sess)
		return nil
	}

	profile, err := s.client.Validate(ctx, sess.Token)
	switch {
	case err == nil:
		s.store.Save(sess.Token, profile)
		fresh, _ := s.store.Load()
		s.finish(session.StateAuthenticated, fresh)
	case errors.Is(err, errors.ErrInvalidToken):
		s.log.Info("stored token rejected, clearing session")
		s.store.Clear()
		s.finish(session.StateUnauthenticated, nil)
	default:
		// Transient failure: the cached session stays usable.
		s.log.Warn("revalidation unreachable, keeping cached session", logger.Error(err))
		s.finish(session.StateAuthenticated, sess)
	}
	return nil
}

// Login exchanges email and password for a session. On success the token and
// profile are persisted together; on rejection any prior session is cleared.
func (s *SessionService) Login(ctx context.Context, email, password string) (*user.Profile, error) {
	if err := s.begin(session.StateLoggingIn); err != nil {
		return nil, err
	}

	result, err := s.client.PasswordLogin(ctx, user.NormalizeEmail(email), password, s.deviceID())
	if err != nil {
		s.store.Clear()
		s.finish(session.StateUnauthenticated, nil)
		return nil, err
	}
	return s.commitLogin(result)
}

// SocialLogin runs the named identity provider's exchange and persists the
// resulting session. Unknown provider names fail without touching state.
func (s *SessionService) SocialLogin(ctx context.Context, providerName string, assertion providers.Assertion) (*user.Profile, error) {
	provider, ok := s.providers[providerName]
	if !ok {
		return nil, errors.Wrap(errors.ErrNotFound, "unknown identity provider "+providerName)
	}

	if err := s.begin(session.StateLoggingIn); err != nil {
		return nil, err
	}

	result, err := provider.Exchange(ctx, assertion)
	if err != nil {
		s.store.Clear()
		s.finish(session.StateUnauthenticated, nil)
		return nil, err
	}

	s.log.Info("social login succeeded",
		logger.Provider(providerName), logger.Bool("new_user", result.IsNewUser))
	return s.commitLogin(result)
}

// AdoptToken accepts a token handed back by a provider redirect, confirms it
// against the backend to obtain the profile, and persists the session.
func (s *SessionService) AdoptToken(ctx context.Context, token string) (*user.Profile, error) {
	if err := s.begin(session.StateLoggingIn); err != nil {
		return nil, err
	}

	profile, err := s.client.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidToken) {
			s.store.Clear()
		}
		s.finish(session.StateUnauthenticated, nil)
		return nil, err
	}
	return s.commitLogin(&backend.LoginResult{Token: token, User: profile})
}

// RefreshUser revalidates the current token and refreshes the cached
// profile. A rejected token tears the session down; a network failure leaves
// the current session untouched and returns the error.
func (s *SessionService) RefreshUser(ctx context.Context) (*user.Profile, error) {
	token := s.store.Token()
	if token == "" {
		return nil, errors.ErrNotAuthenticated
	}

	if err := s.begin(session.StateRefreshing); err != nil {
		return nil, err
	}

	profile, err := s.client.Validate(ctx, token)
	switch {
	case err == nil:
		s.store.Save(token, profile)
		fresh, _ := s.store.Load()
		s.finish(session.StateAuthenticated, fresh)
		return profile, nil
	case errors.Is(err, errors.ErrInvalidToken):
		s.store.Clear()
		s.finish(session.StateUnauthenticated, nil)
		return nil, err
	default:
		s.finishKeep(session.StateAuthenticated)
		return nil, err
	}
}

// UpdateUser overlays the non-zero fields of partial onto the cached profile
// and persists the merge. The validation timestamp does not move; only the
// backend confirms validity.
func (s *SessionService) UpdateUser(partial *user.Profile) (*user.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.current.Authenticated() {
		return nil, errors.ErrNotAuthenticated
	}

	base := s.current.Profile
	if base == nil {
		base = &user.Profile{}
	}
	merged := base.Merge(partial)

	if err := s.store.UpdateProfile(merged); err != nil {
		return nil, errors.Wrap(err, "persist profile")
	}
	s.current.Profile = merged
	return merged, nil
}

// UpdateProfile pushes profile edits to the backend and merges the
// confirmed record into the cached session.
func (s *SessionService) UpdateProfile(ctx context.Context, partial *user.Profile) (*user.Profile, error) {
	if !s.Authenticated() {
		return nil, errors.ErrNotAuthenticated
	}

	updated, err := s.client.UpdateProfile(ctx, partial)
	if err != nil {
		return nil, err
	}
	if updated == nil || (*updated == user.Profile{}) {
		updated = partial
	}
	return s.UpdateUser(updated)
}

// Logout clears the store and the in-memory session, and allows a future
// Initialize to run again. Idempotent; logging out twice is not an error.
func (s *SessionService) Logout() error {
	if err := s.store.Clear(); err != nil {
		return errors.Wrap(err, "clear session store")
	}

	s.mu.Lock()
	s.current = nil
	s.state = session.StateUnauthenticated
	s.initialized = false
	s.mu.Unlock()

	s.log.Info("session cleared")
	return nil
}

// Invalidate drops the in-memory session without touching the store. The
// 401 interceptor calls this after it has already cleared the store.
func (s *SessionService) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.state = session.StateUnauthenticated
}

// State returns the current lifecycle state.
func (s *SessionService) State() session.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentUser returns the cached profile, or nil when unauthenticated.
func (s *SessionService) CurrentUser() *user.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.Profile == nil {
		return nil
	}
	copied := *s.current.Profile
	return &copied
}

// Authenticated reports whether a session with a token is active.
func (s *SessionService) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Authenticated()
}

// begin claims the single auth-operation slot, or reports that another
// operation holds it.
func (s *SessionService) begin(next session.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return errors.ErrOperationInProgress
	}
	s.busy = true
	s.state = next
	return nil
}

// finish releases the slot and commits the new state and session.
func (s *SessionService) finish(next session.State, sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.state = next
	s.current = sess
	s.initialized = true
}

// finishKeep releases the slot and restores the state without replacing the
// current session.
func (s *SessionService) finishKeep(next session.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false
	s.state = next
}

// commitLogin persists a successful exchange and moves to authenticated.
func (s *SessionService) commitLogin(result *backend.LoginResult) (*user.Profile, error) {
	if err := s.store.Save(result.Token, result.User); err != nil {
		s.finish(session.StateUnauthenticated, nil)
		return nil, errors.Wrap(err, "persist session")
	}
	sess, _ := s.store.Load()
	s.finish(session.StateAuthenticated, sess)
	return result.User, nil
}

func (s *SessionService) deviceID() string {
	return fmt.Sprintf("%s-%d", s.prefix, time.Now().UnixMilli())
}
