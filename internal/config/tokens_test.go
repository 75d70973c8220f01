package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/mysticcoders/freshbooks-tools/internal/config"
)

func TestTokensRoundTrip(t *testing.T) {
	tempConfigDir(t)

	tok, err := config.LoadTokens()
	if err != nil {
		t.Fatalf("LoadTokens before save: %v", err)
	}
	if tok != nil {
		t.Fatalf("LoadTokens before save = %+v, want nil", tok)
	}

	want := &oauth2.Token{
		AccessToken:  "access-abc",
		RefreshToken: "refresh-xyz",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(11 * time.Hour).Truncate(time.Second),
	}
	if err := config.SaveTokens(want); err != nil {
		t.Fatalf("SaveTokens: %v", err)
	}

	got, err := config.LoadTokens()
	if err != nil {
		t.Fatalf("LoadTokens: %v", err)
	}
	if got == nil {
		t.Fatal("LoadTokens = nil after save")
	}
	if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken {
		t.Errorf("LoadTokens = %+v, want %+v", got, want)
	}
	if !got.Expiry.Equal(want.Expiry) {
		t.Errorf("Expiry = %v, want %v", got.Expiry, want.Expiry)
	}
}

func TestLoadTokensCorruptFile(t *testing.T) {
	dir := tempConfigDir(t)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tokens.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := config.LoadTokens(); err == nil {
		t.Error("LoadTokens with corrupt file: expected error")
	}
}

func TestDeleteTokens(t *testing.T) {
	tempConfigDir(t)

	// Deleting tokens that were never saved is fine.
	if err := config.DeleteTokens(); err != nil {
		t.Fatalf("DeleteTokens on missing file: %v", err)
	}

	if err := config.SaveTokens(&oauth2.Token{AccessToken: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := config.DeleteTokens(); err != nil {
		t.Fatalf("DeleteTokens: %v", err)
	}
	tok, err := config.LoadTokens()
	if err != nil || tok != nil {
		t.Errorf("LoadTokens after delete = %+v, %v, want nil, nil", tok, err)
	}
}

func TestAccountInfoRoundTrip(t *testing.T) {
	tempConfigDir(t)

	info, err := config.LoadAccountInfo()
	if err != nil || info != nil {
		t.Fatalf("LoadAccountInfo before save = %+v, %v, want nil, nil", info, err)
	}

	want := config.AccountInfo{AccountID: "Ab3xK9", BusinessID: 412345}
	if err := config.SaveAccountInfo(want); err != nil {
		t.Fatalf("SaveAccountInfo: %v", err)
	}

	got, err := config.LoadAccountInfo()
	if err != nil {
		t.Fatalf("LoadAccountInfo: %v", err)
	}
	if got == nil || *got != want {
		t.Errorf("LoadAccountInfo = %+v, want %+v", got, want)
	}

	if err := config.DeleteAccountInfo(); err != nil {
		t.Fatalf("DeleteAccountInfo: %v", err)
	}
	got, err = config.LoadAccountInfo()
	if err != nil || got != nil {
		t.Errorf("LoadAccountInfo after delete = %+v, %v, want nil, nil", got, err)
	}
}

func TestLoadAccountInfoIgnoresBadFiles(t *testing.T) {
	dir := tempConfigDir(t)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "account.json")

	// Corrupt and incomplete caches are treated as absent so discovery
	// reruns instead of wedging the CLI.
	for _, contents := range []string{"{not json", `{"account_id": "", "business_id": 0}`, `{"account_id": "abc"}`} {
		if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
			t.Fatal(err)
		}
		info, err := config.LoadAccountInfo()
		if err != nil || info != nil {
			t.Errorf("LoadAccountInfo(%q) = %+v, %v, want nil, nil", contents, info, err)
		}
	}
}
