package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadPrefersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("  from-file\n"), 0o600))

	secret, err := Load(Source{Name: "github token", File: path, Value: "inline"})
	require.NoError(t, err)
	require.Equal(t, "from-file", secret)
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0o600))

	_, err := Load(Source{Name: "github token", File: path, Value: "inline"})
	require.ErrorContains(t, err, "is empty")
}

func TestLoadInlineValue(t *testing.T) {
	secret, err := Load(Source{Value: "  inline  "})
	require.NoError(t, err)
	require.Equal(t, "inline", secret)
}

func TestLoadFromKeyring(t *testing.T) {
	original := keyringGet
	defer func() { keyringGet = original }()

	keyringGet = func(service, account string) (string, error) {
		require.Equal(t, KeyringService, service)
		if account == "ci" {
			return "from-keyring", nil
		}
		return "", errors.New("secret not found in keyring")
	}

	secret, err := Load(Source{Name: "github token", KeyringAccount: "ci"})
	require.NoError(t, err)
	require.Equal(t, "from-keyring", secret)

	_, err = Load(Source{Name: "github token", KeyringAccount: "missing"})
	require.ErrorContains(t, err, `keyring account "missing"`)
}

func TestLoadNotConfigured(t *testing.T) {
	_, err := Load(Source{Name: "github token"})
	require.EqualError(t, err, "github token is not configured")
}
