// ABOUTME: Google OAuth CLI command and browser authorization flow
// ABOUTME: Runs a local callback server, exchanges the code, and saves the token
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"runtime"

	"github.com/google/uuid"
	"github.com/harperreed/peoplesync/config"
	"github.com/harperreed/peoplesync/sync"
	"golang.org/x/oauth2"
	"golang.org/x/term"
)

// TerminalAuthorizer returns the browser flow when stdin is a terminal and
// nil otherwise, so unattended servers fail fast instead of waiting.
func TerminalAuthorizer() sync.Authorizer {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}
	return BrowserAuthorize
}

// BrowserAuthorize runs the OAuth consent flow once and returns the token.
func BrowserAuthorize(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	redirect, err := url.Parse(config.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect URL %q: %w", config.RedirectURL, err)
	}

	state := uuid.NewString()
	callbackChan := make(chan *oauth2.Token, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "State mismatch", http.StatusBadRequest)
			errChan <- fmt.Errorf("oauth state mismatch")
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "No authorization code", http.StatusBadRequest)
			errChan <- fmt.Errorf("no authorization code received")
			return
		}

		token, err := config.Exchange(ctx, code)
		if err != nil {
			http.Error(w, "Token exchange failed", http.StatusInternalServerError)
			errChan <- fmt.Errorf("failed to exchange code: %w", err)
			return
		}

		callbackChan <- token
		_, _ = fmt.Fprintf(w, "Authorization successful! You can close this window.")
	})

	listener, err := net.Listen("tcp", net.JoinHostPort("", redirect.Port()))
	if err != nil {
		return nil, fmt.Errorf("failed to start OAuth callback server: %w", err)
	}

	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	defer func() { _ = server.Shutdown(context.Background()) }()

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)

	fmt.Println("Opening browser for Google OAuth...")
	fmt.Printf("\nIf browser doesn't open, visit this URL:\n%s\n\n", authURL)

	_ = openBrowser(authURL)

	select {
	case token := <-callbackChan:
		return token, nil
	case err := <-errChan:
		return nil, fmt.Errorf("OAuth flow failed: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// AuthCommand handles OAuth setup.
func AuthCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("auth", flag.ExitOnError)
	tokenPath := fs.String("token-path", "", "Token file (default: XDG data dir)")
	_ = fs.Parse(args)

	oauthConfig, err := sync.NewOAuthConfig(cfg.OAuthOptions())
	if err != nil {
		return err
	}

	authorize := TerminalAuthorizer()
	if authorize == nil {
		return fmt.Errorf("'peoplesync auth' needs an interactive terminal")
	}

	token, err := authorize(context.Background(), oauthConfig)
	if err != nil {
		return err
	}

	store := sync.NewTokenStore(*tokenPath)
	if err := store.Save(token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	fmt.Printf("\n✓ Authenticated successfully\n")
	fmt.Printf("✓ Tokens saved to %s\n\n", store.Path)
	fmt.Println("Ready to sync! Run 'peoplesync serve' to accept webhooks.")

	return nil
}

// openBrowser attempts to open URL in default browser
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	command := exec.Command(cmd, args...)
	return command.Start()
}
