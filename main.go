// ABOUTME: Entry point for the Airtable to Google Contacts webhook bridge
// ABOUTME: Routes to serve, auth, send, and status commands
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/harperreed/peoplesync/cli"
	"github.com/harperreed/peoplesync/config"
	"github.com/harperreed/peoplesync/db"
	"github.com/joho/godotenv"
)

const version = "0.1.0"

func main() {
	// Environment from .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("⚠️  Failed to load .env: %v", err)
	}

	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/peoplesync/peoplesync.db)")
	configPath := flag.String("config", "", "Config file (default: ~/.config/peoplesync/config.json)")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("peoplesync version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}

	command := args[0]
	commandArgs := args[1:]

	switch command {
	case "serve":
		database, err := db.OpenDatabase(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer database.Close()

		log.Printf("Event log: %s", cfg.DatabasePath)

		if err := cli.ServeCommand(cfg, database, commandArgs); err != nil {
			log.Fatalf("Server failed: %v", err)
		}

	case "auth":
		if err := cli.AuthCommand(cfg, commandArgs); err != nil {
			log.Fatalf("Error: %v", err)
		}

	case "send":
		if err := cli.SendCommand(commandArgs, os.Stdout); err != nil {
			log.Fatalf("✗ %v", err)
		}

	case "status":
		database, err := db.OpenDatabase(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer database.Close()

		if err := cli.StatusCommand(database, commandArgs, os.Stdout); err != nil {
			log.Fatalf("Error: %v", err)
		}

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`peoplesync v%s - Airtable to Google Contacts webhook bridge

USAGE:
  peoplesync [global flags] <command> [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Event log path (default: ~/.local/share/peoplesync/peoplesync.db)
  --config <path>        Config file (default: ~/.config/peoplesync/config.json)

COMMANDS:
  serve                  Start the webhook server
  auth                   Authorize Google Contacts access
  send                   Post a webhook event to a running server
  status                 Show sync state and recent events

SERVE:
  peoplesync serve
    --port <n>                Port to listen on (default: 8080)
    --token-path <path>       OAuth token file

  Endpoints:
    GET  /                    Health check
    POST /webhook             Airtable webhook (create, update, delete)

AUTH:
  peoplesync auth
    --token-path <path>       OAuth token file

SEND:
  peoplesync send
    --url <url>               Webhook URL (default: http://localhost:8080/webhook)
    --action <action>         create, update, or delete (default: create)
    --name <name>             Full name
    --email <email>           Email address
    --phone <phone>           Mobile number
    --city <city>             City
    --country <country>       Country
    --hr-id <id>              HR ID
    --last-synced <date>      Last synced date
    --needs-sync <bool>       Needs sync flag
    --contact-id <id>         Google contact resource name (delete)
    --secret <secret>         Shared webhook secret

STATUS:
  peoplesync status
    --limit <n>               Events to show (default: 20)

ENVIRONMENT:
  PEOPLESYNC_PORT             Listen port
  GOOGLE_OAUTH_CLIENT_FILE    OAuth client JSON downloaded from Google Cloud
  GOOGLE_CLIENT_ID            OAuth client ID
  GOOGLE_CLIENT_SECRET        OAuth client secret
  PEOPLESYNC_OAUTH_PORT       Port of the local OAuth callback
  PEOPLESYNC_WEBHOOK_SECRET   Require X-Webhook-Secret on /webhook
  PEOPLESYNC_DB_PATH          Event log path
  PEOPLESYNC_MAX_BODY_BYTES   Webhook body limit (default: 1 MiB)
  PEOPLESYNC_PAGE_SIZE        Contacts fetched per lookup

EXAMPLES:
  # Authorize once, then serve
  peoplesync auth
  peoplesync serve --port 8080

  # Create a contact through a running server
  peoplesync send --action create --name "Jane Doe" --email "jane@x.com" --hr-id HR1

  # Delete a contact
  peoplesync send --action delete --contact-id people/c123

`, version)
}
