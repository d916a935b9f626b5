package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// codeTokenInvalid is the ledger's application-level error code for an
// expired or revoked access token. It can arrive on a 400 as well as a 401,
// so status alone is not enough to detect an auth rejection.
const codeTokenInvalid = 57

// GatewayConfig carries the OAuth-style credentials for the ledger API.
type GatewayConfig struct {
	AuthURL      string
	ClientID     string
	ClientSecret string
	RefreshToken string
	AccessToken  string
	Timeout      time.Duration
}

// Gateway owns the shared access token and wraps every outbound ledger call.
// A call rejected for auth reasons triggers exactly one token refresh and one
// resubmission; a second rejection is handed back to the caller. The token is
// never invalidated proactively, only on rejection.
type Gateway struct {
	client       *http.Client
	authURL      string
	clientID     string
	clientSecret string
	refreshToken string

	mu          sync.Mutex
	accessToken string
}

func NewGateway(cfg GatewayConfig) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Gateway{
		client:       &http.Client{Timeout: timeout},
		authURL:      cfg.AuthURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		refreshToken: cfg.RefreshToken,
		accessToken:  cfg.AccessToken,
	}
}

// Response is the buffered outcome of an authorized call. Ledger responses
// are small JSON documents, so reading them in full keeps the retry path
// simple.
type Response struct {
	StatusCode int
	Body       []byte
}

// Do executes the request produced by build with the current access token
// attached. The build function is invoked once per attempt so the request
// body can be re-read on the single auth retry.
func (g *Gateway) Do(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*Response, error) {
	resp, err := g.send(ctx, build)
	if err != nil {
		return nil, err
	}

	if !isAuthRejection(resp) {
		return resp, nil
	}

	slog.Warn("ledger rejected access token, refreshing", "status", resp.StatusCode)

	if err := g.refresh(ctx); err != nil {
		return nil, fmt.Errorf("refreshing access token: %w", err)
	}

	return g.send(ctx, build)
}

func (g *Gateway) send(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*Response, error) {
	req, err := build(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+g.token())

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

func (g *Gateway) token() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.accessToken
}

// refresh obtains a new access token using the long-lived refresh token and
// replaces the shared one. The whole exchange runs under the lock so two
// concurrent refreshes cannot overwrite each other with a stale token.
// Refresh itself is not retried; its failure is fatal for the in-flight call.
func (g *Gateway) refresh(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	params := url.Values{
		"refresh_token": {g.refreshToken},
		"client_id":     {g.clientID},
		"client_secret": {g.clientSecret},
		"grant_type":    {"refresh_token"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.authURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating refresh request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("executing refresh request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading refresh response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from token endpoint", resp.StatusCode)
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}

	if err := json.Unmarshal(body, &token); err != nil {
		return fmt.Errorf("decoding refresh response: %w", err)
	}

	if token.AccessToken == "" {
		return fmt.Errorf("token endpoint returned no access token")
	}

	g.accessToken = token.AccessToken

	return nil
}

func isAuthRejection(resp *Response) bool {
	if resp.StatusCode == http.StatusUnauthorized {
		return true
	}

	var body struct {
		Code int `json:"code"`
	}

	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return false
	}

	return resp.StatusCode >= 400 && body.Code == codeTokenInvalid
}
