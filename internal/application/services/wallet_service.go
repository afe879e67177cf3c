package services

import (
	"context"
	"sort"

	"github.com/bot608/duocortex-accounts-page/internal/domain/user"
	"github.com/bot608/duocortex-accounts-page/internal/domain/wallet"
	"github.com/bot608/duocortex-accounts-page/internal/infrastructure/backend"
	"github.com/bot608/duocortex-accounts-page/pkg/errors"
	"github.com/bot608/duocortex-accounts-page/pkg/logger"
)

// WalletService handles withdrawals and the transaction history. Withdrawal
// is two-phase: the form is validated entirely locally, then the caller's
// password is re-verified before the payout request goes out.
type WalletService struct {
	client   *backend.Client
	sessions *SessionService
	log      logger.Logger
}

// NewWalletService creates the wallet service.
func NewWalletService(client *backend.Client, sessions *SessionService, log logger.Logger) *WalletService {
	return &WalletService{
		client:   client,
		sessions: sessions,
		log:      log.With(logger.Component("wallet")),
	}
}

// ValidateWithdrawal checks the withdrawal form against the current balance
// without any network traffic. A request that fails here never reaches the
// backend.
func (s *WalletService) ValidateWithdrawal(req *wallet.WithdrawalRequest) error {
	profile := s.sessions.CurrentUser()
	if profile == nil {
		return errors.ErrNotAuthenticated
	}
	return req.Validate(profile.AvailableBalance())
}

// Withdraw submits a bank payout. The form is validated locally first, then
// the password is confirmed against the backend, and only then is the
// withdrawal requested. On success the cached profile is refreshed so the
// balance reflects the payout; a failed refresh is not a failed withdrawal.
func (s *WalletService) Withdraw(ctx context.Context, req *wallet.WithdrawalRequest, email, password string) (*user.Profile, error) {
	if err := s.ValidateWithdrawal(req); err != nil {
		return nil, err
	}

	if _, err := s.client.PasswordLogin(ctx, user.NormalizeEmail(email), password, "withdrawal-verify"); err != nil {
		if errors.Is(err, errors.ErrInvalidCredentials) {
			return nil, errors.NewBackendError(errors.ErrInvalidCredentials, 0, "Incorrect password")
		}
		return nil, err
	}

	if err := s.client.RequestWithdrawal(ctx, req); err != nil {
		return nil, err
	}
	s.log.Info("withdrawal requested", logger.Float64("amount", req.Amount))

	profile, err := s.sessions.RefreshUser(ctx)
	if err != nil {
		s.log.Warn("balance refresh after withdrawal failed", logger.Error(err))
		return s.sessions.CurrentUser(), nil
	}
	return profile, nil
}

// Transactions returns the quiz and wallet history, newest first, narrowed
// by the filter.
func (s *WalletService) Transactions(ctx context.Context, filter wallet.Filter) ([]wallet.Transaction, error) {
	if !s.sessions.Authenticated() {
		return nil, errors.ErrNotAuthenticated
	}

	history, err := s.client.QuizHistory(ctx)
	if err != nil {
		return nil, err
	}

	transactions := make([]wallet.Transaction, 0, len(history))
	for _, entry := range history {
		tx := wallet.FromQuizResult(entry)
		if filter.Matches(tx) {
			transactions = append(transactions, tx)
		}
	}

	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})
	return transactions, nil
}
