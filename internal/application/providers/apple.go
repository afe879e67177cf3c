package providers

import (
	"context"

	"github.com/bot608/duocortex-accounts-page/internal/infrastructure/backend"
	"github.com/bot608/duocortex-accounts-page/pkg/logger"
)

// AppleProvider exchanges Apple identity assertions with the backend.
// Apple withholds the name after the first authorization, so a fallback
// display name is substituted when the assertion has none.
type AppleProvider struct {
	client       *backend.Client
	devicePrefix string
	log          logger.Logger
}

// NewAppleProvider creates an Apple identity provider adapter.
func NewAppleProvider(client *backend.Client, devicePrefix string, log logger.Logger) *AppleProvider {
	return &AppleProvider{client: client, devicePrefix: devicePrefix, log: log}
}

// Name implements IdentityProvider.
func (p *AppleProvider) Name() string { return "apple" }

// Exchange implements IdentityProvider.
func (p *AppleProvider) Exchange(ctx context.Context, assertion Assertion) (*backend.LoginResult, error) {
	assertion = resolve(assertion)

	name := assertion.Name
	if name == "" {
		name = "Apple User"
	}

	payload := map[string]any{
		"name":      name,
		"email":     assertion.Email,
		"appleId":   assertion.SubjectID,
		"device_id": ensureDeviceID(assertion, p.devicePrefix),
	}

	result, err := p.client.SocialLogin(ctx, payload)
	if err != nil {
		p.log.Warn("apple exchange failed",
			logger.Provider(p.Name()),
			logger.Error(err),
		)
		return nil, err
	}

	p.log.Info("apple exchange succeeded",
		logger.Provider(p.Name()),
		logger.Bool("is_new_user", result.IsNewUser),
	)
	return result, nil
}
