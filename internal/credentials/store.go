package credentials

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jask/previewkit/internal/suggest"
)

// ErrMissingKey matches every *MissingKeyError.
var ErrMissingKey = errors.New("credentials: missing test user")

// Credential is one test user's login pair.
type Credential struct {
	Username string
	Password string
}

// MissingKeyError names the unknown key and the keys that do exist.
type MissingKeyError struct {
	Key        string
	Valid      []string
	Suggestion string
}

func (e *MissingKeyError) Error() string {
	msg := fmt.Sprintf("credentials: no test user %q (valid keys: %s)", e.Key, strings.Join(e.Valid, ", "))
	if e.Suggestion != "" {
		msg += fmt.Sprintf("; did you mean %q?", e.Suggestion)
	}
	return msg
}

func (e *MissingKeyError) Is(target error) bool { return target == ErrMissingKey }

// Store maps test-user keys ("admin", "guest") to credentials.
type Store struct {
	users map[string]Credential
}

func NewStore(users map[string]Credential) *Store {
	s := &Store{users: make(map[string]Credential, len(users))}
	for k, c := range users {
		s.users[norm(k)] = c
	}
	return s
}

// Lookup returns the credential for key. Unknown keys are an error, never a
// default user.
func (s *Store) Lookup(key string) (Credential, error) {
	if c, ok := s.users[norm(key)]; ok {
		return c, nil
	}
	valid := s.Keys()
	err := &MissingKeyError{Key: key, Valid: valid}
	if sg, ok := suggest.Closest(key, valid); ok {
		err.Suggestion = sg
	}
	return Credential{}, err
}

// Keys returns the known keys sorted.
func (s *Store) Keys() []string {
	out := make([]string, 0, len(s.users))
	for k := range s.users {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// UserConfig is the config-file shape of one test user. An empty Password is
// resolved from the vault.
type UserConfig struct {
	Username string
	Password string
}

// FromConfig builds a Store from configured users, filling blank passwords
// from v (which may be nil). Keys are case-insensitive; two keys that differ
// only in case are rejected.
func FromConfig(users map[string]UserConfig, v *Vault) (*Store, error) {
	names := make([]string, 0, len(users))
	for name := range users {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]Credential, len(users))
	seen := make(map[string]string, len(users))
	for _, name := range names {
		u := users[name]
		key := norm(name)
		if key == "" {
			return nil, fmt.Errorf("credentials: blank test user key")
		}
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("credentials: duplicate test user %q (configured as %q and %q)", key, prev, name)
		}
		seen[key] = name

		username := strings.TrimSpace(u.Username)
		if username == "" {
			username = key
		}
		password := u.Password
		if password == "" && v != nil {
			p, err := v.Fetch(key)
			if err != nil {
				return nil, fmt.Errorf("credentials: password for %q: %w", key, err)
			}
			password = p
		}
		if password == "" {
			return nil, fmt.Errorf("credentials: no password for %q", key)
		}
		out[key] = Credential{Username: username, Password: password}
	}
	return NewStore(out), nil
}

func norm(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}
