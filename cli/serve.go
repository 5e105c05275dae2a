// ABOUTME: Webhook server CLI command
// ABOUTME: Obtains credentials, builds the People client once, and serves HTTP
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/harperreed/peoplesync/config"
	"github.com/harperreed/peoplesync/db"
	"github.com/harperreed/peoplesync/sync"
	"github.com/harperreed/peoplesync/web"
)

// ServeCommand starts the webhook server.
func ServeCommand(cfg *config.Config, database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	port := fs.Int("port", cfg.Port, "Port to listen on")
	tokenPath := fs.String("token-path", "", "Token file (default: XDG data dir)")
	_ = fs.Parse(args)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	oauthConfig, err := sync.NewOAuthConfig(cfg.OAuthOptions())
	if err != nil {
		return err
	}

	// Ctrl-C while waiting on the browser login aborts startup
	tokens, err := sync.Credentials(ctx, oauthConfig, sync.NewTokenStore(*tokenPath), TerminalAuthorizer())
	if err != nil {
		return fmt.Errorf("failed to get Google credentials: %w", err)
	}

	service, err := sync.NewPeopleClient(context.Background(), tokens)
	if err != nil {
		return err
	}

	directory := sync.NewPeopleDirectory(service, cfg.PageSize)

	var recorder sync.Recorder
	if database != nil {
		recorder = db.NewEventRecorder(database)
	}

	dispatcher := sync.NewDispatcher(directory, recorder, log.Default())
	server := web.NewServer(dispatcher, web.Options{
		MaxBodyBytes:  cfg.MaxBodyBytes,
		WebhookSecret: cfg.WebhookSecret,
		Logger:        log.Default(),
	})

	return server.Start(ctx, *port)
}
