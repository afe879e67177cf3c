package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bot608/duocortex-accounts-page/internal/infrastructure/backend"
	"github.com/bot608/duocortex-accounts-page/pkg/idtoken"
)

// Assertion is a third-party identity assertion handed to an adapter. It
// may carry resolved profile fields, a raw ID token to extract them from,
// or both; explicit fields win over token claims.
type Assertion struct {
	SubjectID string
	Email     string
	Name      string
	Photo     string

	// IDToken is the raw provider-issued JWT, when the flow produced one.
	IDToken string

	// DeviceID is kept if already present; generated otherwise.
	DeviceID string
}

// IdentityProvider normalizes a provider-specific assertion and exchanges
// it with the backend's unified login endpoint for a session token.
type IdentityProvider interface {
	Name() string
	Exchange(ctx context.Context, assertion Assertion) (*backend.LoginResult, error)
}

// resolve fills missing assertion fields from the ID token claims, when one
// is present. A malformed token is ignored rather than failing the exchange;
// the backend rejects assertions it cannot identify.
func resolve(assertion Assertion) Assertion {
	if assertion.IDToken == "" {
		return assertion
	}
	claims, err := idtoken.Parse(assertion.IDToken)
	if err != nil {
		return assertion
	}
	if assertion.SubjectID == "" {
		assertion.SubjectID = claims.Subject
	}
	if assertion.Email == "" {
		assertion.Email = claims.Email
	}
	if assertion.Name == "" {
		assertion.Name = claims.Name
	}
	if assertion.Photo == "" {
		assertion.Photo = claims.Picture
	}
	return assertion
}

// ensureDeviceID returns the assertion's device ID, generating a fresh one
// when absent. The identifier is backend bookkeeping only, not a
// security credential.
func ensureDeviceID(assertion Assertion, prefix string) string {
	if assertion.DeviceID != "" {
		return assertion.DeviceID
	}
	if prefix == "" {
		prefix = "web-client"
	}
	frag := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), frag)
}
