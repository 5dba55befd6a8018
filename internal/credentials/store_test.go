package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testStore() *Store {
	return NewStore(map[string]Credential{
		"admin": {Username: "admin@shop.test", Password: "hunter2"},
		"Guest": {Username: "guest@shop.test", Password: "guest"},
	})
}

func TestLookupKnownKey(t *testing.T) {
	c, err := testStore().Lookup("admin")
	require.NoError(t, err)
	require.Equal(t, "admin@shop.test", c.Username)

	c, err = testStore().Lookup(" GUEST ")
	require.NoError(t, err)
	require.Equal(t, "guest", c.Password)
}

func TestLookupMissingKeyListsValidKeys(t *testing.T) {
	_, err := testStore().Lookup("nonexistent")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMissingKey))

	var missing *MissingKeyError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "nonexistent", missing.Key)
	require.Equal(t, []string{"admin", "guest"}, missing.Valid)
	require.Empty(t, missing.Suggestion)
	require.Contains(t, err.Error(), "admin, guest")
}

func TestLookupSuggestsTypo(t *testing.T) {
	_, err := testStore().Lookup("admn")
	var missing *MissingKeyError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "admin", missing.Suggestion)
	require.True(t, strings.HasSuffix(err.Error(), `did you mean "admin"?`))
}

func TestVaultRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", vaultFile)
	v := NewVault(path)

	_, err := v.Fetch("admin")
	require.ErrorIs(t, err, ErrNotInVault)

	require.NoError(t, v.Store("Admin", "s3cret"))
	got, err := v.Fetch("admin")
	require.NoError(t, err)
	require.Equal(t, "s3cret", got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "s3cret")
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	keys, err := v.Keys()
	require.NoError(t, err)
	require.Equal(t, []string{"admin"}, keys)

	require.NoError(t, v.Delete("admin"))
	_, err = v.Fetch("admin")
	require.ErrorIs(t, err, ErrNotInVault)
}

func TestVaultRejectsSwappedEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), vaultFile)
	v := NewVault(path)
	require.NoError(t, v.Store("admin", "admin-pass"))
	require.NoError(t, v.Store("guest", "guest-pass"))

	data, err := v.load()
	require.NoError(t, err)
	data.Users["admin"], data.Users["guest"] = data.Users["guest"], data.Users["admin"]
	require.NoError(t, v.save(data))

	_, err = v.Fetch("admin")
	require.ErrorContains(t, err, "unseal")
}

func TestFromConfigFillsPasswordsFromVault(t *testing.T) {
	v := NewVault(filepath.Join(t.TempDir(), vaultFile))
	require.NoError(t, v.Store("admin", "from-vault"))

	s, err := FromConfig(map[string]UserConfig{
		"admin": {Username: "admin@shop.test"},
		"guest": {Password: "guest"},
	}, v)
	require.NoError(t, err)

	admin, err := s.Lookup("admin")
	require.NoError(t, err)
	require.Equal(t, "from-vault", admin.Password)

	guest, err := s.Lookup("guest")
	require.NoError(t, err)
	require.Equal(t, "guest", guest.Username)
}

func TestFromConfigMissingPassword(t *testing.T) {
	_, err := FromConfig(map[string]UserConfig{"admin": {}}, nil)
	require.ErrorContains(t, err, `no password for "admin"`)

	v := NewVault(filepath.Join(t.TempDir(), vaultFile))
	_, err = FromConfig(map[string]UserConfig{"admin": {}}, v)
	require.ErrorIs(t, err, ErrNotInVault)
}

func TestFromConfigRejectsKeysDifferingInCase(t *testing.T) {
	_, err := FromConfig(map[string]UserConfig{
		"Admin": {Password: "one"},
		"admin": {Password: "two"},
	}, nil)
	require.ErrorContains(t, err, `duplicate test user "admin" (configured as "Admin" and "admin")`)
}

func TestFromConfigNormalizesVaultKey(t *testing.T) {
	v := NewVault(filepath.Join(t.TempDir(), vaultFile))
	require.NoError(t, v.Store("admin", "from-vault"))

	s, err := FromConfig(map[string]UserConfig{" ADMIN ": {}}, v)
	require.NoError(t, err)
	require.Equal(t, []string{"admin"}, s.Keys())
	c, err := s.Lookup("admin")
	require.NoError(t, err)
	require.Equal(t, "admin", c.Username)
	require.Equal(t, "from-vault", c.Password)
}
