package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bot608/duocortex-accounts-page/config"
	"github.com/bot608/duocortex-accounts-page/internal/domain/wallet"
	"github.com/bot608/duocortex-accounts-page/pkg/errors"
	"github.com/bot608/duocortex-accounts-page/pkg/logger"
)

type staticTokens string

func (s staticTokens) Token() string { return string(s) }

func newTestClient(t *testing.T, handler http.Handler, token string, onUnauthorized UnauthorizedHook) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.BackendConfig{BaseURL: srv.URL, RequestTimeout: 5 * time.Second}
	return NewClient(cfg, staticTokens(token), onUnauthorized, logger.Default()), srv
}

func TestPasswordLogin_Success(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"T1","user":{"email":"a@x.com","coins":50}}`))
	}), "", nil)

	result, err := client.PasswordLogin(context.Background(), "a@x.com", "pw", "web-client-1")
	require.NoError(t, err)
	assert.Equal(t, "T1", result.Token)
	assert.Equal(t, "a@x.com", result.User.Email)
	assert.Equal(t, 50.0, result.User.Coins)
}

func TestPasswordLogin_BackendRejection(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"wrong password", http.StatusUnauthorized, `{"message":"Invalid email or password"}`, "Invalid email or password"},
		{"malformed response without token", http.StatusOK, `{"user":{"email":"a@x.com"}}`, "Login failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hookFired atomic.Bool
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}), "", func() { hookFired.Store(true) })

			_, err := client.PasswordLogin(context.Background(), "a@x.com", "bad", "dev")
			require.ErrorIs(t, err, errors.ErrInvalidCredentials)
			assert.Equal(t, tt.message, errors.UserMessage(err, "Login failed"))

			// Login carries no bearer token, so a 401 here must not
			// tear down any existing session.
			assert.False(t, hookFired.Load())
		})
	}
}

func TestPasswordLogin_TransportFailure(t *testing.T) {
	client, srv := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}), "", nil)
	srv.Close()

	_, err := client.PasswordLogin(context.Background(), "a@x.com", "pw", "dev")
	require.ErrorIs(t, err, errors.ErrNetwork)
}

func TestValidate_BlankTokenShortCircuits(t *testing.T) {
	var calls atomic.Int64
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}), "", nil)

	for _, token := range []string{"", "   "} {
		_, err := client.Validate(context.Background(), token)
		require.ErrorIs(t, err, errors.ErrInvalidToken)
	}
	assert.Equal(t, int64(0), calls.Load())
}

func TestValidate_Success(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/user-details", r.URL.Path)
		require.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
		w.Write([]byte(`{"email":"a@x.com","coins":75}`))
	}), "", nil)

	profile, err := client.Validate(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, 75.0, profile.Coins)
}

func TestValidate_UnauthorizedFiresHookBeforeReturn(t *testing.T) {
	var hookFired atomic.Bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), "", func() { hookFired.Store(true) })

	_, err := client.Validate(context.Background(), "T_rejected")
	require.ErrorIs(t, err, errors.ErrInvalidToken)
	assert.True(t, hookFired.Load())
}

func TestValidate_ServerErrorIsNetworkNotLogout(t *testing.T) {
	var hookFired atomic.Bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}), "", func() { hookFired.Store(true) })

	_, err := client.Validate(context.Background(), "T1")
	require.ErrorIs(t, err, errors.ErrNetwork)
	assert.False(t, hookFired.Load())
}

func TestBearerInjection_OnAuthenticatedCalls(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer stored-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"history":[]}`))
	}), "stored-token", nil)

	_, err := client.QuizHistory(context.Background())
	require.NoError(t, err)
}

func TestGlobalInterceptor_AnyAuthenticated401(t *testing.T) {
	var hookFired atomic.Bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}), "stale-token", func() { hookFired.Store(true) })

	_, err := client.QuizHistory(context.Background())
	require.ErrorIs(t, err, errors.ErrInvalidToken)
	assert.True(t, hookFired.Load())
}

func TestLoginNeverCarriesStoredToken(t *testing.T) {
	// The password check before a withdrawal hits the login endpoint while
	// a session is active; a wrong password there must not kill it.
	var hookFired atomic.Bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid email or password"}`))
	}), "active-session-token", func() { hookFired.Store(true) })

	_, err := client.PasswordLogin(context.Background(), "a@x.com", "typo", "dev")
	require.ErrorIs(t, err, errors.ErrInvalidCredentials)
	assert.False(t, hookFired.Load())
}

func TestRequestWithdrawal_StatusMapping(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Insufficient balance"}`))
	}), "T1", nil)

	err := client.RequestWithdrawal(context.Background(), &wallet.WithdrawalRequest{Amount: 500})
	require.ErrorIs(t, err, errors.ErrValidation)
	assert.Equal(t, "Insufficient balance", errors.UserMessage(err, ""))
}

func TestSocialLogin_SurfacesIsNewUser(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"T2","user":{"email":"g@x.com"},"isNewUser":true}`))
	}), "", nil)

	result, err := client.SocialLogin(context.Background(), map[string]any{"email": "g@x.com"})
	require.NoError(t, err)
	assert.True(t, result.IsNewUser)
	assert.Equal(t, "T2", result.Token)
}
