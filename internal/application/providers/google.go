package providers

import (
	"context"
	"net/url"

	"github.com/bot608/duocortex-accounts-page/internal/infrastructure/backend"
	"github.com/bot608/duocortex-accounts-page/pkg/errors"
	"github.com/bot608/duocortex-accounts-page/pkg/logger"
)

// suspendedMessage is the literal error value the backend puts in the
// redirect error parameter for suspended accounts.
const suspendedMessage = "Account suspended by admin"

// GoogleProvider exchanges Google identity assertions with the backend.
type GoogleProvider struct {
	client       *backend.Client
	devicePrefix string
	log          logger.Logger
}

// NewGoogleProvider creates a Google identity provider adapter.
func NewGoogleProvider(client *backend.Client, devicePrefix string, log logger.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, devicePrefix: devicePrefix, log: log}
}

// Name implements IdentityProvider.
func (p *GoogleProvider) Name() string { return "google" }

// Exchange implements IdentityProvider. The backend decides whether this is
// a registration or a login; the adapter only surfaces the isNewUser flag.
func (p *GoogleProvider) Exchange(ctx context.Context, assertion Assertion) (*backend.LoginResult, error) {
	assertion = resolve(assertion)

	payload := map[string]any{
		"name":      assertion.Name,
		"email":     assertion.Email,
		"photo":     assertion.Photo,
		"googleId":  assertion.SubjectID,
		"device_id": ensureDeviceID(assertion, p.devicePrefix),
	}

	result, err := p.client.SocialLogin(ctx, payload)
	if err != nil {
		p.log.Warn("google exchange failed",
			logger.Provider(p.Name()),
			logger.Error(err),
		)
		return nil, err
	}

	p.log.Info("google exchange succeeded",
		logger.Provider(p.Name()),
		logger.Bool("is_new_user", result.IsNewUser),
	)
	return result, nil
}

// ParseRedirectCallback extracts the outcome of the redirect-based Google
// flow from the navigation URL. Success carries an accessToken query
// parameter; failure carries an error parameter, with the admin-suspension
// message distinguished from generic failure.
func ParseRedirectCallback(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrap(errors.ErrInvalidCredentials, "malformed callback url")
	}

	query := parsed.Query()

	if token := query.Get("accessToken"); token != "" {
		return token, nil
	}

	if errMsg := query.Get("error"); errMsg != "" {
		if errMsg == suspendedMessage {
			return "", errors.NewBackendError(errors.ErrAccountSuspended, 0, errMsg)
		}
		return "", errors.NewBackendError(errors.ErrInvalidCredentials, 0, errMsg)
	}

	return "", errors.Wrap(errors.ErrInvalidCredentials, "google authentication failed")
}
