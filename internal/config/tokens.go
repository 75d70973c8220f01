package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// TokensPath returns the location of the stored OAuth tokens.
func TokensPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tokens.json"), nil
}

// LoadTokens loads previously saved tokens. A missing file returns
// (nil, nil) so callers can tell "never logged in" apart from a read
// failure.
func LoadTokens() (*oauth2.Token, error) {
	path, err := TokensPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", path, err)
	}
	return &tok, nil
}

// SaveTokens persists tokens with owner-only permissions.
func SaveTokens(tok *oauth2.Token) error {
	path, err := TokensPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling tokens: %w", err)
	}
	return writeFileAtomic(path, data)
}

// DeleteTokens removes the stored tokens. A missing file is not an error.
func DeleteTokens() error {
	path, err := TokensPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}
