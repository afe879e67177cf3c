package credstore

import (
	"errors"
	"math"
	"time"

	"github.com/bot608/duocortex-accounts-page/internal/domain/session"
	"github.com/bot608/duocortex-accounts-page/internal/domain/user"
)

// NeverValidated is the sentinel returned by TimeSinceValidation when no
// validation timestamp has been recorded. It compares greater than any real
// throttle window, forcing revalidation.
const NeverValidated = time.Duration(math.MaxInt64)

var (
	// ErrInvalidDriver is returned for an unknown driver type.
	ErrInvalidDriver = errors.New("credstore: invalid driver type")
	// ErrPathRequired is returned when the file driver has no path.
	ErrPathRequired = errors.New("credstore: file driver requires a path")
)

// Store is the durable client-side credential store. All operations are
// synchronous and local; nothing here touches the network.
//
// Save writes token, profile and a fresh validation timestamp together as
// one logical operation, so a reader never observes a token without its
// matching profile.
type Store interface {
	// Save overwrites any prior session with token + profile + now.
	Save(token string, profile *user.Profile) error

	// Load returns the last saved session, or nil if never saved, cleared,
	// or undeserializable. It never returns a decode error.
	Load() (*session.Session, error)

	// Clear removes all session state unconditionally. Idempotent.
	Clear() error

	// Present reports whether a token exists, independent of validity.
	Present() bool

	// Token returns the stored bearer token, or "" when absent.
	Token() string

	// TouchValidation advances the validation timestamp to now without
	// altering token or profile.
	TouchValidation() error

	// UpdateProfile replaces the stored profile while preserving the token
	// and the validation timestamp. The timestamp only ever advances on a
	// server confirmation, which a local profile edit is not. No-op when
	// no session is stored.
	UpdateProfile(profile *user.Profile) error

	// TimeSinceValidation returns the elapsed time since the last
	// successful server confirmation, or NeverValidated.
	TimeSinceValidation() time.Duration
}

// DriverType selects the storage driver.
type DriverType string

const (
	DriverMemory DriverType = "memory"
	DriverFile   DriverType = "file"
)

type storeConfig struct {
	path string
}

// Option configures the store factory.
type Option func(*storeConfig)

// WithPath sets the snapshot path for the file driver.
func WithPath(path string) Option {
	return func(c *storeConfig) {
		c.path = path
	}
}

// New creates a credential store for the given driver type.
func New(driver DriverType, opts ...Option) (Store, error) {
	cfg := &storeConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch driver {
	case DriverMemory:
		return newMemoryStore(), nil
	case DriverFile:
		if cfg.path == "" {
			return nil, ErrPathRequired
		}
		return newFileStore(cfg.path)
	default:
		return nil, ErrInvalidDriver
	}
}
