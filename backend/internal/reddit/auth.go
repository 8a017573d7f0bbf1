package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hfabio/mcp-servers/backend/internal/credentials"
	apperrors "github.com/hfabio/mcp-servers/backend/pkg/errors"
	"go.uber.org/zap"
)

// Credentials are the script-app values needed for a token exchange
type Credentials struct {
	ClientID        string
	ClientSecret    string
	Username        string
	Password        string
	ApplicationName string
}

// missing lists the config keys that are not set
func (c Credentials) missing() []string {
	var fields []string
	if c.ClientID == "" {
		fields = append(fields, "REDDIT_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		fields = append(fields, "REDDIT_CLIENT_SECRET")
	}
	if c.Username == "" {
		fields = append(fields, "REDDIT_USERNAME")
	}
	if c.Password == "" {
		fields = append(fields, "REDDIT_PASSWORD")
	}
	return fields
}

// TokenAcquirer returns the cached bearer token or exchanges client
// credentials for a new one. There is no expiry tracking: a cached token is
// trusted as long as it is present.
type TokenAcquirer struct {
	authURL    string
	creds      Credentials
	store      credentials.Store
	httpClient *http.Client
	logger     *zap.Logger
}

// NewTokenAcquirer creates a token acquirer that posts to authURL
func NewTokenAcquirer(authURL string, creds Credentials, store credentials.Store, httpClient *http.Client, logger *zap.Logger) *TokenAcquirer {
	return &TokenAcquirer{
		authURL:    authURL,
		creds:      creds,
		store:      store,
		httpClient: httpClient,
		logger:     logger,
	}
}

// UserAgent is the identifier Reddit requires on every API call
func (a *TokenAcquirer) UserAgent() string {
	return fmt.Sprintf("go:%s:v1.0.0 (by /u/%s)", a.creds.ApplicationName, a.creds.Username)
}

// AcquireToken returns a bearer token, performing at most one exchange.
// A fresh token is merged into the stored credentials with a single write.
func (a *TokenAcquirer) AcquireToken(ctx context.Context) (string, error) {
	stored, err := a.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load credentials: %w", err)
	}
	if token := stored[credentials.RedditTokenKey]; token != "" {
		return token, nil
	}

	if missing := a.creds.missing(); len(missing) > 0 {
		return "", apperrors.NewConfigurationError(missing...)
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("username", a.creds.Username)
	form.Set("password", a.creds.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(a.creds.ClientID, a.creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", a.UserAgent())

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Error("Token exchange failed", zap.Error(err))
		return "", apperrors.NewFetchError(providerName, a.authURL, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperrors.NewFetchError(providerName, a.authURL, resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		a.logger.Error("Token exchange rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return "", apperrors.NewAuthenticationError(providerName, resp.StatusCode, string(body))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", apperrors.NewFetchError(providerName, a.authURL, resp.StatusCode, fmt.Errorf("decode token response: %w", err))
	}
	if payload.AccessToken == "" {
		return "", apperrors.NewAuthenticationError(providerName, resp.StatusCode, string(body))
	}

	merged := make(map[string]string, len(stored)+1)
	for k, v := range stored {
		merged[k] = v
	}
	merged[credentials.RedditTokenKey] = payload.AccessToken

	if err := a.store.Save(ctx, merged); err != nil {
		return "", fmt.Errorf("save credentials: %w", err)
	}

	a.logger.Info("Reddit access token obtained")
	return payload.AccessToken, nil
}
