package application

import (
	"github.com/bot608/duocortex-accounts-page/config"
	"github.com/bot608/duocortex-accounts-page/internal/application/providers"
	"github.com/bot608/duocortex-accounts-page/internal/application/services"
	"github.com/bot608/duocortex-accounts-page/internal/infrastructure/backend"
	"github.com/bot608/duocortex-accounts-page/internal/infrastructure/credstore"
	"github.com/bot608/duocortex-accounts-page/pkg/logger"
)

// Services holds all application services.
type Services struct {
	Session *services.SessionService
	Wallet  *services.WalletService
}

// Dependencies holds shared infrastructure for services.
type Dependencies struct {
	Store   credstore.Store
	Backend *backend.Client
}

// NewDependencies creates the credential store from config.
func NewDependencies(cfg *config.Config) (*Dependencies, error) {
	store, err := credstore.New(
		credstore.DriverType(cfg.Store.Driver),
		credstore.WithPath(cfg.Store.Path),
	)
	if err != nil {
		return nil, err
	}
	return &Dependencies{Store: store}, nil
}

// NewServices wires the backend client, identity providers and services
// together. The 401 interceptor is bound here: any authenticated call that
// comes back 401 clears the store and drops the in-memory session before
// the failing call's own error handling runs.
func NewServices(deps *Dependencies, cfg *config.Config, log logger.Logger) *Services {
	var sessionService *services.SessionService

	client := backend.NewClient(&cfg.Backend, deps.Store, func() {
		deps.Store.Clear()
		if sessionService != nil {
			sessionService.Invalidate()
		}
		log.Warn("backend rejected session token, forcing re-login",
			logger.Component("session"))
	}, log)
	deps.Backend = client

	idps := []providers.IdentityProvider{
		providers.NewGoogleProvider(client, cfg.Auth.DevicePrefix, log),
		providers.NewAppleProvider(client, cfg.Auth.DevicePrefix, log),
	}

	sessionService = services.NewSessionService(deps.Store, client, idps, &cfg.Auth, log)
	walletService := services.NewWalletService(client, sessionService, log)

	return &Services{
		Session: sessionService,
		Wallet:  walletService,
	}
}
