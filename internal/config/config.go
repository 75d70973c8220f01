// Package config owns everything the CLI reads or persists locally: OAuth
// client credentials from the environment, stored tokens, the cached
// account/business ids, and the rates override file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const appDirName = "fb"

// Credentials holds the OAuth client settings, read from FRESHBOOKS_*
// environment variables. A .env file in the working directory is loaded
// first when present.
type Credentials struct {
	ClientID     string `envconfig:"CLIENT_ID" required:"true"`
	ClientSecret string `envconfig:"CLIENT_SECRET" required:"true"`
	RedirectURI  string `envconfig:"REDIRECT_URI" default:"http://localhost:8374/callback"`
}

// LoadCredentials reads the client credentials from the environment.
func LoadCredentials() (Credentials, error) {
	_ = godotenv.Load()

	var c Credentials
	if err := envconfig.Process("freshbooks", &c); err != nil {
		return Credentials{}, fmt.Errorf("loading credentials (set FRESHBOOKS_CLIENT_ID and FRESHBOOKS_CLIENT_SECRET in the environment or a .env file): %w", err)
	}
	return c, nil
}

// Dir returns the configuration directory, creating it if needed.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	dir := filepath.Join(base, appDirName)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	return dir, nil
}

// writeFileAtomic writes data via a temp file and rename so a crash
// mid-write never leaves a truncated file behind.
func writeFileAtomic(path string, data []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving %s: %w", filepath.Base(path), err)
	}
	return nil
}
