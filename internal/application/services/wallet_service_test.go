package services

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bot608/duocortex-accounts-page/internal/domain/user"
	"github.com/bot608/duocortex-accounts-page/internal/domain/wallet"
	"github.com/bot608/duocortex-accounts-page/pkg/errors"
	"github.com/bot608/duocortex-accounts-page/pkg/logger"
)

type walletFixture struct {
	*sessionFixture
	wallet       *WalletService
	requestCalls *atomic.Int64
}

func newWalletFixture(t *testing.T, handler http.HandlerFunc) *walletFixture {
	t.Helper()

	requestCalls := &atomic.Int64{}
	base := newSessionFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/user/request-withdrawal" {
			requestCalls.Add(1)
		}
		handler(w, r)
	})

	return &walletFixture{
		sessionFixture: base,
		wallet:         NewWalletService(base.client, base.svc, logger.Default()),
		requestCalls:   requestCalls,
	}
}

func authenticate(t *testing.T, f *walletFixture, available float64) {
	t.Helper()
	seedSession(t, f.sessionFixture, "T1",
		&user.Profile{Email: "asha@x.com", Coins: available, AvailableCoins: available},
		time.Minute)
	require.NoError(t, f.svc.Initialize(context.Background()))
}

func withdrawalForm(amount float64) *wallet.WithdrawalRequest {
	return &wallet.WithdrawalRequest{
		Amount:               amount,
		AccountHolderName:    "Asha Rao",
		AccountNumber:        "123456789012",
		ConfirmAccountNumber: "123456789012",
		BankName:             "State Bank",
		IFSCCode:             "SBIN0001234",
	}
}

func TestWithdraw_InvalidFormNeverReachesBackend(t *testing.T) {
	totalCalls := &atomic.Int64{}
	f := newWalletFixture(t, func(w http.ResponseWriter, r *http.Request) {
		totalCalls.Add(1)
		w.Write([]byte(`{}`))
	})
	authenticate(t, f, 500)
	callsAfterInit := totalCalls.Load()

	tests := []struct {
		name  string
		form  *wallet.WithdrawalRequest
		field string
	}{
		{"below minimum", withdrawalForm(50), "amount"},
		{"over balance", withdrawalForm(600), "amount"},
		{"mismatched confirmation", func() *wallet.WithdrawalRequest {
			form := withdrawalForm(200)
			form.ConfirmAccountNumber = "000000000000"
			return form
		}(), "confirmAccountNumber"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.wallet.Withdraw(context.Background(), tt.form, "asha@x.com", "pw")
			require.ErrorIs(t, err, errors.ErrValidation)

			var verrs *errors.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.NotEmpty(t, verrs.Field(tt.field))
		})
	}

	assert.Equal(t, callsAfterInit, totalCalls.Load(),
		"local validation failures make no network calls")
}

func TestWithdraw_WrongPasswordStopsBeforePayout(t *testing.T) {
	f := newWalletFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"Invalid email or password"}`))
		default:
			w.Write([]byte(`{}`))
		}
	})
	authenticate(t, f, 500)

	_, err := f.wallet.Withdraw(context.Background(), withdrawalForm(200), "asha@x.com", "typo")
	require.ErrorIs(t, err, errors.ErrInvalidCredentials)
	assert.Equal(t, "Incorrect password", errors.UserMessage(err, ""))

	assert.Equal(t, int64(0), f.requestCalls.Load())
	assert.True(t, f.store.Present(), "a failed password check keeps the session")
}

func TestWithdraw_SubmitsAndRefreshesBalance(t *testing.T) {
	var payout map[string]any
	f := newWalletFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			w.Write([]byte(`{"token":"T_verify","user":{"email":"asha@x.com"}}`))
		case "/user/request-withdrawal":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payout))
			w.Write([]byte(`{"message":"Withdrawal requested"}`))
		case "/user/user-details":
			w.Write([]byte(`{"email":"asha@x.com","coins":300,"availableCoins":300}`))
		}
	})
	authenticate(t, f, 500)

	profile, err := f.wallet.Withdraw(context.Background(), withdrawalForm(200), "asha@x.com", "pw")
	require.NoError(t, err)

	assert.Equal(t, int64(1), f.requestCalls.Load())
	assert.Equal(t, 200.0, payout["amount"])
	assert.Equal(t, "SBIN0001234", payout["ifscCode"])
	_, confirmSent := payout["confirmAccountNumber"]
	assert.False(t, confirmSent, "the confirmation field is form-only")
	assert.Equal(t, 300.0, profile.AvailableCoins, "balance reflects the payout")
}

func TestWithdraw_RefreshFailureIsNotAWithdrawalFailure(t *testing.T) {
	f := newWalletFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			w.Write([]byte(`{"token":"T_verify","user":{}}`))
		case "/user/request-withdrawal":
			w.Write([]byte(`{"message":"Withdrawal requested"}`))
		case "/user/user-details":
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})
	authenticate(t, f, 500)

	profile, err := f.wallet.Withdraw(context.Background(), withdrawalForm(200), "asha@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, 500.0, profile.AvailableCoins, "stale balance is returned when the refresh fails")
}

func TestWithdraw_RequiresSession(t *testing.T) {
	f := newWalletFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := f.wallet.Withdraw(context.Background(), withdrawalForm(200), "asha@x.com", "pw")
	require.ErrorIs(t, err, errors.ErrNotAuthenticated)
}

func TestTransactions(t *testing.T) {
	now := time.Now().UTC()
	history := []wallet.QuizResult{
		{ID: "1", Type: wallet.TypeQuizWin, Amount: 40, CreatedAt: now.Add(-2 * time.Hour), Metadata: map[string]any{"quiz_name": "GK Daily"}},
		{ID: "2", Type: wallet.TypeQuizLoss, Amount: -20, CreatedAt: now.Add(-time.Hour)},
		{ID: "3", Type: wallet.TypeRecharge, Amount: 100, CreatedAt: now},
	}

	f := newWalletFixture(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quizzes/history":
			json.NewEncoder(w).Encode(map[string]any{"history": history})
		default:
			w.Write([]byte(`{}`))
		}
	})
	authenticate(t, f, 500)

	t.Run("newest first", func(t *testing.T) {
		txs, err := f.wallet.Transactions(context.Background(), wallet.Filter{})
		require.NoError(t, err)
		require.Len(t, txs, 3)
		assert.Equal(t, "3", txs[0].ID)
		assert.Equal(t, "Quiz Win - GK Daily", txs[2].Title)
	})

	t.Run("filter by type", func(t *testing.T) {
		txs, err := f.wallet.Transactions(context.Background(), wallet.Filter{Type: wallet.TypeQuizLoss})
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, 20.0, txs[0].Amount)
		assert.False(t, txs[0].Credit)
	})
}

func TestTransactions_RequiresSession(t *testing.T) {
	f := newWalletFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := f.wallet.Transactions(context.Background(), wallet.Filter{})
	require.ErrorIs(t, err, errors.ErrNotAuthenticated)
}
