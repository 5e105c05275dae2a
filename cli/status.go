// ABOUTME: CLI command showing sync state and recent webhook events
// ABOUTME: Renders the event log with lipgloss styles
package cli

import (
	"database/sql"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/harperreed/peoplesync/db"
	"github.com/harperreed/peoplesync/models"
)

var (
	statusTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("170")).
				MarginBottom(1)

	statusHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Underline(true)

	statusIdleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("9"))

	statusMessageStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Italic(true)
)

// StatusCommand prints the contacts sync state and recent webhook events.
func StatusCommand(database *sql.DB, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(out)
	limit := fs.Int("limit", 20, "Number of events to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	state, err := db.GetSyncState(database, db.ContactsService)
	if err != nil {
		return err
	}

	events, err := db.RecentEvents(database, *limit)
	if err != nil {
		return err
	}

	_, err = io.WriteString(out, renderStatus(state, events))
	return err
}

func renderStatus(state *db.SyncState, events []models.SyncEvent) string {
	var s strings.Builder

	s.WriteString(statusTitleStyle.Render("Google Contacts Sync"))
	s.WriteString("\n")

	if state == nil {
		s.WriteString(statusMessageStyle.Render("No webhooks received yet."))
		s.WriteString("\n")
		return s.String()
	}

	switch state.Status {
	case models.SyncStatusError:
		msg := ""
		if state.ErrorMessage != nil {
			msg = *state.ErrorMessage
		}
		s.WriteString(statusErrorStyle.Render("✗ error: " + msg))
	default:
		s.WriteString(statusIdleStyle.Render("✓ " + state.Status))
	}
	s.WriteString("\n")

	if state.LastSyncTime != nil {
		s.WriteString(fmt.Sprintf("Last success: %s\n", state.LastSyncTime.Local().Format("2006-01-02 15:04:05")))
	}
	s.WriteString("\n")

	s.WriteString(statusHeaderStyle.Render("Recent events"))
	s.WriteString("\n")

	if len(events) == 0 {
		s.WriteString(statusMessageStyle.Render("No events recorded."))
		s.WriteString("\n")
		return s.String()
	}

	for _, event := range events {
		line := fmt.Sprintf("%s  %-7s %-14s %-10s %s",
			event.ReceivedAt.Local().Format("2006-01-02 15:04:05"),
			event.Action,
			event.Outcome,
			orDash(event.HRID),
			orDash(event.ResourceName),
		)
		if event.Outcome == models.OutcomeFailed {
			line += "  " + event.ErrorMessage
			s.WriteString(statusErrorStyle.Render(line))
		} else {
			s.WriteString(line)
		}
		s.WriteString("\n")
	}

	return s.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
