package session

import (
	"time"

	"github.com/bot608/duocortex-accounts-page/internal/domain/user"
)

// State describes where the lifecycle controller is in the session
// state machine.
type State string

const (
	StateUninitialized   State = "uninitialized"
	StateInitializing    State = "initializing"
	StateAuthenticated   State = "authenticated"
	StateUnauthenticated State = "unauthenticated"
	StateLoggingIn       State = "logging_in"
	StateRefreshing      State = "refreshing"
)

// Busy reports whether the state is one of the transient auth states during
// which no second authentication operation may start.
func (s State) Busy() bool {
	return s == StateInitializing || s == StateLoggingIn || s == StateRefreshing
}

// Session is the authenticated client state: an opaque bearer token issued
// by the backend plus a cached profile and its validation freshness.
type Session struct {
	Token           string        `json:"token"`
	Profile         *user.Profile `json:"profile,omitempty"`
	LastValidatedAt time.Time     `json:"last_validated_at"`
}

// New creates a session validated as of now.
func New(token string, profile *user.Profile) *Session {
	return &Session{
		Token:           token,
		Profile:         profile,
		LastValidatedAt: time.Now().UTC(),
	}
}

// Authenticated reports whether a token is present. Presence is not proof of
// server-side validity; validity is confirmed lazily.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// NeedsRevalidation reports whether the elapsed time since the last
// successful server confirmation exceeds the throttle window.
func (s *Session) NeedsRevalidation(window time.Duration) bool {
	if s == nil || s.LastValidatedAt.IsZero() {
		return true
	}
	return time.Since(s.LastValidatedAt) >= window
}
