package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Keys written by a login and removed by a logout, in both scopes.
const (
	KeyToken = "token"
	KeyUser  = "user"
	KeyAuth  = "auth"
)

// CredentialKeys enumerates every persisted credential key.
var CredentialKeys = []string{KeyToken, KeyUser, KeyAuth}

// Scope selects where a login is persisted.
type Scope int

const (
	// ScopeSession lasts for the lifetime of the client process.
	ScopeSession Scope = iota
	// ScopeDurable survives restarts.
	ScopeDurable
)

// CredentialStore reads and writes the persisted credential across the
// durable and per-session scopes. Reads consult the durable scope first and
// only one token is ever authoritative.
type CredentialStore struct {
	durable Storage
	session Storage

	mu     sync.Mutex
	onSave []func(token string)
}

func NewCredentialStore(durable, session Storage) *CredentialStore {
	if durable == nil {
		durable = NewMemoryStorage()
	}
	if session == nil {
		session = NewMemoryStorage()
	}
	return &CredentialStore{durable: durable, session: session}
}

// OnSave registers fn to run after every successful Save or ReplaceToken.
func (s *CredentialStore) OnSave(fn func(token string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSave = append(s.onSave, fn)
}

// Token returns the authoritative token. ok is false when neither scope
// holds one.
func (s *CredentialStore) Token() (token string, ok bool, err error) {
	_, token, ok, err = s.lookup(KeyToken)
	return token, ok, err
}

// User returns the stored user profile.
func (s *CredentialStore) User() (*User, error) {
	_, raw, ok, err := s.lookup(KeyUser)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAuthenticated
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode stored user: %w", err)
	}
	return &u, nil
}

// Save persists a fresh login into scope and removes any credential left in
// the other scope.
func (s *CredentialStore) Save(scope Scope, token string, user User) error {
	if token == "" {
		return errors.New("authsdk: empty token")
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}

	target, other := s.session, s.durable
	if scope == ScopeDurable {
		target, other = s.durable, s.session
	}

	if err := other.Delete(CredentialKeys...); err != nil {
		return fmt.Errorf("clear stale scope: %w", err)
	}
	for _, kv := range [][2]string{{KeyToken, token}, {KeyUser, string(raw)}, {KeyAuth, "true"}} {
		if err := target.Set(kv[0], kv[1]); err != nil {
			return fmt.Errorf("store %s: %w", kv[0], err)
		}
	}

	s.notify(token)
	return nil
}

// ReplaceToken swaps the token in whichever scope currently holds it, for a
// refreshed credential. Without a stored credential it fails with
// ErrNotAuthenticated.
func (s *CredentialStore) ReplaceToken(token string) error {
	if token == "" {
		return errors.New("authsdk: empty token")
	}
	scope, _, ok, err := s.lookup(KeyToken)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthenticated
	}
	if err := scope.Set(KeyToken, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}

	s.notify(token)
	return nil
}

// Clear removes every credential key from both scopes. Both scopes are
// attempted even if the first fails.
func (s *CredentialStore) Clear() error {
	return errors.Join(
		s.durable.Delete(CredentialKeys...),
		s.session.Delete(CredentialKeys...),
	)
}

func (s *CredentialStore) lookup(key string) (Storage, string, bool, error) {
	for _, scope := range []Storage{s.durable, s.session} {
		v, ok, err := scope.Get(key)
		if err != nil {
			return nil, "", false, err
		}
		if ok && v != "" {
			return scope, v, true, nil
		}
	}
	return nil, "", false, nil
}

func (s *CredentialStore) notify(token string) {
	s.mu.Lock()
	hooks := append([]func(string){}, s.onSave...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(token)
	}
}
