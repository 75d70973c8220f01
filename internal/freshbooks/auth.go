package freshbooks

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/mysticcoders/freshbooks-tools/internal/config"
)

// requiredScopes is every scope the CLI needs. Requesting them all at
// login keeps one token usable across every command.
var requiredScopes = []string{
	"user:profile:read",
	"user:time_entries:read",
	"user:time_entries:write",
	"user:projects:read",
	"user:clients:read",
	"user:billable_items:read",
	"user:invoices:read",
	"user:payments:read",
	"user:teams:read",
	"user:expenses:read",
}

const (
	authorizeURL = "https://auth.freshbooks.com/oauth/authorize"
	tokenURL     = "https://api.freshbooks.com/auth/oauth/token"

	// loginTimeout bounds how long `fb auth login` waits for the browser
	// to hit the local callback.
	loginTimeout = 120 * time.Second
)

// OAuthConfig returns the oauth2.Config for the FreshBooks API using the
// provided client credentials.
func OAuthConfig(creds config.Credentials) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Scopes:       requiredScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   authorizeURL,
			TokenURL:  tokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// randomState returns an unguessable state parameter for the login flow.
func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

const callbackPage = `<!DOCTYPE html>
<html><body style="font-family: sans-serif; text-align: center; padding-top: 4em;">
<h2>Authorization complete</h2>
<p>You can close this tab and return to the terminal.</p>
</body></html>`

// Login runs the OAuth2 authorization code flow: it starts a listener on
// the redirect URI, prints the authorize URL for the user's browser,
// waits for the callback, exchanges the code, and persists the tokens.
func Login(ctx context.Context, creds config.Credentials) (*oauth2.Token, error) {
	cfg := OAuthConfig(creds)

	redirect, err := url.Parse(creds.RedirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URI %q: %w", creds.RedirectURI, err)
	}

	state, err := randomState()
	if err != nil {
		return nil, err
	}

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	path := redirect.Path
	if path == "" {
		path = "/"
	}
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if msg := q.Get("error"); msg != "" {
			http.Error(w, "Authorization failed. You can close this tab.", http.StatusBadRequest)
			errCh <- &AuthError{Message: fmt.Sprintf("authorization denied: %s.", msg)}
			return
		}
		if q.Get("state") != state {
			http.Error(w, "State mismatch. You can close this tab.", http.StatusBadRequest)
			errCh <- &AuthError{Message: "authorization state mismatch."}
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "Missing authorization code.", http.StatusBadRequest)
			errCh <- &AuthError{Message: "callback carried no authorization code."}
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, callbackPage)
		codeCh <- code
	})

	ln, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return nil, fmt.Errorf("starting callback listener on %s: %w", redirect.Host, err)
	}
	srv := &http.Server{Handler: mux}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := cfg.AuthCodeURL(state)
	fmt.Println()
	fmt.Println("Open this URL in your browser to authorize:")
	fmt.Printf("  %s\n", authURL)
	fmt.Println()
	fmt.Println("Waiting for authorization...")

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-time.After(loginTimeout):
		return nil, &AuthError{Message: "timed out waiting for the browser callback."}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, &AuthError{Message: fmt.Sprintf("token exchange failed: %v.", err)}
	}
	if err := config.SaveTokens(tok); err != nil {
		return nil, fmt.Errorf("saving tokens: %w", err)
	}
	return tok, nil
}
