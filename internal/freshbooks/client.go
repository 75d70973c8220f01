// Package freshbooks is a client for the FreshBooks accounting,
// timetracking, and comments APIs. It authenticates with OAuth2,
// discovers the caller's account and business ids on first use, and
// maps API failures onto typed errors the CLI can present.
package freshbooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/mysticcoders/freshbooks-tools/internal/config"
	"github.com/mysticcoders/freshbooks-tools/internal/model"
)

const defaultBaseURL = "https://api.freshbooks.com"

// perPage is the page size used for every paginated listing.
const perPage = 100

// savingTokenSource persists refreshed tokens so the next invocation
// does not have to redo the refresh.
type savingTokenSource struct {
	ts oauth2.TokenSource
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	// Best effort: an unsaved token still works for this run.
	_ = config.SaveTokens(tok)
	return tok, nil
}

// Client talks to the FreshBooks APIs on behalf of one authorized user.
type Client struct {
	httpClient *http.Client
	oauthCfg   *oauth2.Config
	log        *log.Logger

	baseURL string

	accountID  string
	businessID int64
}

// NewClient returns a Client that authenticates with tok, refreshing and
// persisting it as needed. Cached account info from earlier runs is
// loaded so most commands skip the profile lookup.
func NewClient(ctx context.Context, tok *oauth2.Token, oauthCfg *oauth2.Config, logger *log.Logger) *Client {
	ts := oauthCfg.TokenSource(ctx, tok)
	c := &Client{
		httpClient: oauth2.NewClient(ctx, &savingTokenSource{ts: ts}),
		oauthCfg:   oauthCfg,
		log:        logger,
		baseURL:    defaultBaseURL,
	}
	if info, err := config.LoadAccountInfo(); err == nil && info != nil {
		c.accountID = info.AccountID
		c.businessID = info.BusinessID
	}
	return c
}

// NewFromSaved builds a Client from the stored credentials and tokens.
func NewFromSaved(ctx context.Context, logger *log.Logger) (*Client, error) {
	creds, err := config.LoadCredentials()
	if err != nil {
		return nil, err
	}
	tok, err := config.LoadTokens()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, &AuthError{Message: "not authenticated."}
	}
	return NewClient(ctx, tok, OAuthConfig(creds), logger), nil
}

// SetBaseURL points the client at a different API root. Tests use this
// to target a local server.
func (c *Client) SetBaseURL(base string) {
	c.baseURL = base
}

// refreshAuth rebuilds the HTTP client from the stored refresh token,
// forcing a token refresh before the next request.
func (c *Client) refreshAuth(ctx context.Context) error {
	tok, err := config.LoadTokens()
	if err != nil {
		return err
	}
	if tok == nil || tok.RefreshToken == "" {
		return &AuthError{Message: "no refresh token available."}
	}
	stale := &oauth2.Token{RefreshToken: tok.RefreshToken}
	fresh, err := c.oauthCfg.TokenSource(ctx, stale).Token()
	if err != nil {
		return &AuthError{Message: fmt.Sprintf("token refresh failed: %v.", err)}
	}
	if err := config.SaveTokens(fresh); err != nil {
		c.log.Warn("could not save refreshed tokens", "err", err)
	}
	c.httpClient = oauth2.NewClient(ctx, &savingTokenSource{ts: c.oauthCfg.TokenSource(ctx, fresh)})
	return nil
}

func (c *Client) get(ctx context.Context, rawURL string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, rawURL, params, nil, out)
}

func (c *Client) post(ctx context.Context, rawURL string, body, out any) error {
	return c.do(ctx, http.MethodPost, rawURL, nil, body, out)
}

// do performs one API request. A 401 response triggers a single forced
// token refresh and retry before giving up.
func (c *Client) do(ctx context.Context, method, rawURL string, params url.Values, body, out any) error {
	data, resp, err := c.doOnce(ctx, method, rawURL, params, body)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		c.log.Debug("access token rejected, refreshing", "url", rawURL)
		if err := c.refreshAuth(ctx); err != nil {
			return err
		}
		data, resp, err = c.doOnce(ctx, method, rawURL, params, body)
		if err != nil {
			return err
		}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return &AuthError{Message: "authentication failed."}
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &RateLimitError{RetryAfter: retryAfter}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &APIError{StatusCode: resp.StatusCode, Message: apiErrorMessage(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", rawURL, err)
	}
	return nil
}

func (c *Client) doOnce(ctx context.Context, method, rawURL string, params url.Values, body any) ([]byte, *http.Response, error) {
	reqURL := rawURL
	if len(params) > 0 {
		reqURL = rawURL + "?" + params.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Api-Version", "alpha")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) {
			return nil, nil, &AuthError{Message: "token refresh was rejected."}
		}
		return nil, nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &NetworkError{Err: err}
	}
	return data, resp, nil
}

// apiErrorMessage digs a human-readable message out of an error payload,
// falling back to a truncated raw body.
func apiErrorMessage(data []byte) string {
	var envelope struct {
		Response struct {
			Errors []struct {
				Message string `json:"message"`
			} `json:"errors"`
		} `json:"response"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil {
		if len(envelope.Response.Errors) > 0 && envelope.Response.Errors[0].Message != "" {
			return envelope.Response.Errors[0].Message
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}
	const max = 200
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}

// CurrentUser fetches the authorized user's identity profile.
func (c *Client) CurrentUser(ctx context.Context) (*model.UserIdentity, error) {
	var envelope struct {
		Response model.UserIdentity `json:"response"`
	}
	if err := c.get(ctx, c.baseURL+"/auth/api/v1/users/me", nil, &envelope); err != nil {
		return nil, fmt.Errorf("fetching user profile: %w", err)
	}
	return &envelope.Response, nil
}

// EnsureAccountInfo returns the account id and business id for the
// authorized user, discovering them from the profile on first use and
// caching them on disk for later runs.
func (c *Client) EnsureAccountInfo(ctx context.Context) (string, int64, error) {
	if c.accountID != "" && c.businessID != 0 {
		return c.accountID, c.businessID, nil
	}

	me, err := c.CurrentUser(ctx)
	if err != nil {
		return "", 0, err
	}
	if len(me.BusinessMemberships) == 0 {
		return "", 0, fmt.Errorf("user has no business memberships")
	}
	business := me.BusinessMemberships[0].Business
	if business.AccountID == "" || business.ID == 0 {
		return "", 0, fmt.Errorf("profile is missing account or business id")
	}

	c.accountID = business.AccountID
	c.businessID = business.ID
	info := config.AccountInfo{AccountID: c.accountID, BusinessID: c.businessID}
	if err := config.SaveAccountInfo(info); err != nil {
		c.log.Warn("could not cache account info", "err", err)
	}
	c.log.Debug("resolved account info", "account_id", c.accountID, "business_id", c.businessID)
	return c.accountID, c.businessID, nil
}

// accountingURL builds a URL under the accounting API for this account.
func (c *Client) accountingURL(ctx context.Context, path string) (string, error) {
	accountID, _, err := c.EnsureAccountInfo(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/accounting/account/%s/%s", c.baseURL, accountID, path), nil
}

// timetrackingURL builds a URL under the timetracking API for this
// business.
func (c *Client) timetrackingURL(ctx context.Context, path string) (string, error) {
	_, businessID, err := c.EnsureAccountInfo(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/timetracking/business/%d/%s", c.baseURL, businessID, path), nil
}

// commentsURL builds a URL under the comments API, which hosts the
// services catalog and service rates.
func (c *Client) commentsURL(ctx context.Context, path string) (string, error) {
	_, businessID, err := c.EnsureAccountInfo(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/comments/business/%d/%s", c.baseURL, businessID, path), nil
}

// businessReportsURL builds a URL for the business-scoped report
// endpoints such as profit and loss.
func (c *Client) businessReportsURL(ctx context.Context, path string) (string, error) {
	_, businessID, err := c.EnsureAccountInfo(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/accounting/businesses/%d/reports/%s", c.baseURL, businessID, path), nil
}

// accountingResult is the response.result wrapper around accounting API
// payloads.
type accountingResult struct {
	Response struct {
		Result json.RawMessage `json:"result"`
	} `json:"response"`
}

// getAccounting performs a GET against an accounting endpoint and
// decodes the response.result payload into out.
func (c *Client) getAccounting(ctx context.Context, endpoint string, params url.Values, out any) error {
	var envelope accountingResult
	if err := c.get(ctx, endpoint, params, &envelope); err != nil {
		return err
	}
	if err := json.Unmarshal(envelope.Response.Result, out); err != nil {
		return fmt.Errorf("decoding result payload: %w", err)
	}
	return nil
}

// listMeta carries the pagination fields of the flat timetracking and
// comments list responses.
type listMeta struct {
	Total   int `json:"total"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
	Pages   int `json:"pages"`
}
