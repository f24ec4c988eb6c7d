package secrets

import (
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService is the service name secrets are stored under in the OS keyring.
const KeyringService = "job-digest"

// keyringGet is replaced in tests.
var keyringGet = keyring.Get

// Source describes how to load a secret value.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline secret value provided via configuration, flags or environment.
	Value string
	// File points to a file containing the secret value. When set it takes
	// precedence over Value.
	File string
	// KeyringAccount names an OS keyring entry under KeyringService. It is
	// consulted only when neither File nor Value yield a secret.
	KeyringAccount string
}

// Load returns the resolved secret value from the provided source. The
// lookup order is File, Value, then the OS keyring. The returned secret is
// always trimmed.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}

	account := strings.TrimSpace(src.KeyringAccount)
	if account != "" {
		secret, err := keyringGet(KeyringService, account)
		if err != nil {
			return "", fmt.Errorf("reading %s from keyring account %q: %w", name, account, err)
		}
		if secret = strings.TrimSpace(secret); secret != "" {
			return secret, nil
		}
		return "", fmt.Errorf("%s keyring entry %q is empty", name, account)
	}

	return "", fmt.Errorf("%s is not configured", name)
}
