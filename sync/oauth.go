// ABOUTME: OAuth configuration and token management for the Google People API
// ABOUTME: Handles token storage at XDG paths, refresh, and first-run authorization
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	gosync "sync"

	"github.com/adrg/xdg"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ContactsScope grants read/write access to the account's contacts.
const ContactsScope = "https://www.googleapis.com/auth/contacts"

var (
	// ErrNoCredentials means no OAuth client is configured.
	ErrNoCredentials = errors.New("google OAuth credentials not configured. Set GOOGLE_OAUTH_CLIENT_FILE or GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")

	// ErrNotInteractive means authorization is needed but nobody can complete it.
	ErrNotInteractive = errors.New("no saved Google token and no terminal to authorize. Run 'peoplesync auth' first")
)

// OAuthOptions selects where the OAuth client comes from.
type OAuthOptions struct {
	ClientID          string
	ClientSecret      string
	ClientSecretsFile string
	RedirectPort      int
}

// NewOAuthConfig creates OAuth2 config for the People API. A client secrets
// file takes precedence over an explicit client ID and secret.
func NewOAuthConfig(opts OAuthOptions) (*oauth2.Config, error) {
	redirectURL := fmt.Sprintf("http://localhost:%d/oauth/callback", opts.RedirectPort)

	if opts.ClientSecretsFile != "" {
		data, err := os.ReadFile(opts.ClientSecretsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read OAuth client file: %w", err)
		}

		config, err := google.ConfigFromJSON(data, ContactsScope)
		if err != nil {
			return nil, fmt.Errorf("failed to parse OAuth client file: %w", err)
		}
		config.RedirectURL = redirectURL
		return config, nil
	}

	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, ErrNoCredentials
	}

	return &oauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{ContactsScope},
		Endpoint:     google.Endpoint,
	}, nil
}

// TokenPath returns XDG-compliant path for storing OAuth tokens.
func TokenPath() string {
	return filepath.Join(xdg.DataHome, "peoplesync", "google-credentials.json")
}

// TokenStore persists a single OAuth token as JSON.
type TokenStore struct {
	Path string
}

// NewTokenStore returns a store at path, or at TokenPath when path is empty.
func NewTokenStore(path string) *TokenStore {
	if path == "" {
		path = TokenPath()
	}
	return &TokenStore{Path: path}
}

// Save writes the token with owner-only permissions.
func (s *TokenStore) Save(token *oauth2.Token) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(s.Path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	return nil
}

// Load reads the token. A missing file yields an error matching fs.ErrNotExist.
func (s *TokenStore) Load() (*oauth2.Token, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	return &token, nil
}

// Authorizer obtains a fresh token from the user, e.g. via a browser flow.
type Authorizer func(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error)

// Credentials returns a token source that is valid right now. A saved token is
// reused, refreshed if expired, and only when neither works is authorize
// called. Cancelling ctx aborts that first refresh or authorization; the
// returned source keeps refreshing after ctx is done. Every token the source
// hands out later is saved back to store.
func Credentials(ctx context.Context, config *oauth2.Config, store *TokenStore, authorize Authorizer) (oauth2.TokenSource, error) {
	token, err := store.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	switch {
	case token != nil && token.Valid():
		// reuse
	case token != nil && token.RefreshToken != "":
		token, err = config.TokenSource(ctx, token).Token()
		if err != nil {
			return nil, fmt.Errorf("failed to refresh token: %w", err)
		}
		if err := store.Save(token); err != nil {
			return nil, err
		}
	default:
		if authorize == nil {
			return nil, ErrNotInteractive
		}
		token, err = authorize(ctx, config)
		if err != nil {
			return nil, err
		}
		if err := store.Save(token); err != nil {
			return nil, err
		}
	}

	return &persistingTokenSource{
		base:  config.TokenSource(context.WithoutCancel(ctx), token),
		store: store,
		last:  token.AccessToken,
	}, nil
}

// persistingTokenSource saves every newly minted token.
type persistingTokenSource struct {
	base  oauth2.TokenSource
	store *TokenStore

	mu   gosync.Mutex
	last string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.base.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if token.AccessToken != p.last {
		if err := p.store.Save(token); err != nil {
			log.Printf("✗ Failed to persist refreshed token: %v", err)
		} else {
			p.last = token.AccessToken
		}
	}

	return token, nil
}
