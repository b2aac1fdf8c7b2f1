package authsdk_test

import (
	"testing"

	"github.com/aussiebroadwan/tabsession/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestCredentialStoreSave(t *testing.T) {
	t.Parallel()

	t.Run("remember writes durable scope", func(t *testing.T) {
		store, durable, session := newStore()
		require.NoError(t, store.Save(authsdk.ScopeDurable, "tok-1", authsdk.User{ID: 1, Email: "a@example.com"}))

		v, ok, _ := durable.Get(authsdk.KeyToken)
		require.True(t, ok)
		require.Equal(t, "tok-1", v)
		v, _, _ = durable.Get(authsdk.KeyAuth)
		require.Equal(t, "true", v)
		requireNoCredentialKeys(t, session)

		u, err := store.User()
		require.NoError(t, err)
		require.Equal(t, "a@example.com", u.Email)
	})

	t.Run("session login evicts durable leftovers", func(t *testing.T) {
		store, durable, session := newStore()
		require.NoError(t, store.Save(authsdk.ScopeDurable, "old", authsdk.User{ID: 1}))
		require.NoError(t, store.Save(authsdk.ScopeSession, "new", authsdk.User{ID: 1}))

		requireNoCredentialKeys(t, durable)
		v, ok, _ := session.Get(authsdk.KeyToken)
		require.True(t, ok)
		require.Equal(t, "new", v)

		tok, ok, err := store.Token()
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "new", tok)
	})

	t.Run("empty token rejected", func(t *testing.T) {
		store, _, _ := newStore()
		require.Error(t, store.Save(authsdk.ScopeSession, "", authsdk.User{}))
	})
}

func TestCredentialStorePrefersDurable(t *testing.T) {
	t.Parallel()
	store, durable, session := newStore()

	require.NoError(t, session.Set(authsdk.KeyToken, "from-session"))
	tok, ok, err := store.Token()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "from-session", tok)

	require.NoError(t, durable.Set(authsdk.KeyToken, "from-durable"))
	tok, _, _ = store.Token()
	require.Equal(t, "from-durable", tok)
}

func TestCredentialStoreAbsent(t *testing.T) {
	t.Parallel()
	store, _, _ := newStore()

	_, ok, err := store.Token()
	require.NoError(t, err)
	require.False(t, ok)

	_, err = store.User()
	require.ErrorIs(t, err, authsdk.ErrNotAuthenticated)

	require.ErrorIs(t, store.ReplaceToken("x"), authsdk.ErrNotAuthenticated)
}

func TestCredentialStoreReplaceAndClear(t *testing.T) {
	t.Parallel()
	store, durable, session := newStore()

	var saved []string
	store.OnSave(func(tok string) { saved = append(saved, tok) })

	require.NoError(t, store.Save(authsdk.ScopeSession, "first", authsdk.User{ID: 9}))
	require.NoError(t, store.ReplaceToken("second"))

	v, _, _ := session.Get(authsdk.KeyToken)
	require.Equal(t, "second", v)
	requireNoCredentialKeys(t, durable)
	require.Equal(t, []string{"first", "second"}, saved)

	require.NoError(t, durable.Set(authsdk.KeyAuth, "true"))
	require.NoError(t, store.Clear())
	requireNoCredentialKeys(t, durable, session)
}
