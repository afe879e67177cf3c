package credstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bot608/duocortex-accounts-page/internal/domain/user"
)

func newStores(t *testing.T) map[string]Store {
	t.Helper()

	fileStore, err := New(DriverFile, WithPath(filepath.Join(t.TempDir(), "session.json")))
	require.NoError(t, err)

	memStore, err := New(DriverMemory)
	require.NoError(t, err)

	return map[string]Store{"file": fileStore, "memory": memStore}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	profile := &user.Profile{Name: "Asha", Email: "asha@example.com", Coins: 50}

	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save("T1", profile))

			sess, err := store.Load()
			require.NoError(t, err)
			require.NotNil(t, sess)
			require.Equal(t, "T1", sess.Token)
			require.Equal(t, "asha@example.com", sess.Profile.Email)
			require.Equal(t, 50.0, sess.Profile.Coins)
			require.False(t, sess.LastValidatedAt.IsZero())

			require.True(t, store.Present())
			require.Equal(t, "T1", store.Token())
		})
	}
}

func TestStore_SaveOverwritesPriorSession(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save("old", &user.Profile{Email: "old@example.com"}))
			require.NoError(t, store.Save("new", &user.Profile{Email: "new@example.com"}))

			sess, err := store.Load()
			require.NoError(t, err)
			require.Equal(t, "new", sess.Token)
			require.Equal(t, "new@example.com", sess.Profile.Email)
		})
	}
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save("T1", &user.Profile{}))

			require.NoError(t, store.Clear())
			require.NoError(t, store.Clear())

			require.False(t, store.Present())
			sess, err := store.Load()
			require.NoError(t, err)
			require.Nil(t, sess)
			require.Equal(t, "", store.Token())
		})
	}
}

func TestStore_TimeSinceValidation(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.Equal(t, NeverValidated, store.TimeSinceValidation())

			require.NoError(t, store.Save("T1", &user.Profile{}))
			require.Less(t, store.TimeSinceValidation(), time.Minute)

			require.NoError(t, store.Clear())
			require.Equal(t, NeverValidated, store.TimeSinceValidation())
		})
	}
}

func TestStore_TouchValidationKeepsTokenAndProfile(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save("T1", &user.Profile{Email: "asha@example.com"}))

			before, err := store.Load()
			require.NoError(t, err)

			time.Sleep(5 * time.Millisecond)
			require.NoError(t, store.TouchValidation())

			after, err := store.Load()
			require.NoError(t, err)
			require.Equal(t, before.Token, after.Token)
			require.Equal(t, before.Profile.Email, after.Profile.Email)
			require.True(t, after.LastValidatedAt.After(before.LastValidatedAt))
		})
	}
}

func TestStore_UpdateProfilePreservesTokenAndTimestamp(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save("T1", &user.Profile{Email: "asha@example.com", Coins: 50}))
			before, err := store.Load()
			require.NoError(t, err)

			require.NoError(t, store.UpdateProfile(&user.Profile{Email: "asha@example.com", Coins: 75}))

			after, err := store.Load()
			require.NoError(t, err)
			require.Equal(t, "T1", after.Token)
			require.Equal(t, 75.0, after.Profile.Coins)
			require.Equal(t, before.LastValidatedAt.Unix(), after.LastValidatedAt.Unix())
		})
	}
}

func TestFileStore_CorruptSnapshotBehavesAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store, err := New(DriverFile, WithPath(path))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	sess, err := store.Load()
	require.NoError(t, err)
	require.Nil(t, sess)
	require.False(t, store.Present())
	require.Equal(t, NeverValidated, store.TimeSinceValidation())
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(DriverType("redis"))
	require.ErrorIs(t, err, ErrInvalidDriver)

	_, err = New(DriverFile)
	require.ErrorIs(t, err, ErrPathRequired)
}
