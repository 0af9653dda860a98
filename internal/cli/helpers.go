// Package cli implements the catalogd cobra commands.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"

	"github.com/example/catalogd/internal/models"
	"github.com/example/catalogd/internal/wire"
)

// resolveTeamID accepts a team ID or name and returns the ID.
func resolveTeamID(ctx context.Context, app *wire.App, idOrName string) (string, error) {
	team, err := app.Catalog.GetTeam(ctx, idOrName)
	if err != nil {
		return "", err
	}
	return team.ID, nil
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// colorStatus renders a sync or drift status with a color cue.
func colorStatus(status string) string {
	switch status {
	case models.SyncStatusSuccess, models.DriftStatusAccepted, models.ServiceStatusActive:
		return color.New(color.FgGreen).Sprint(status)
	case models.SyncStatusPartial, models.DriftStatusPending:
		return color.New(color.FgYellow).Sprint(status)
	case models.SyncStatusFailed:
		return color.New(color.FgRed).Sprint(status)
	case models.DriftStatusDismissed, models.ServiceStatusInactive:
		return color.New(color.FgHiBlack).Sprint(status)
	default:
		return status
	}
}

// summaryLine renders a sync summary in one line.
func summaryLine(s *models.SyncSummary) string {
	if s == nil {
		return "-"
	}
	line := fmt.Sprintf("%d created, %d updated, %d unchanged", s.Created, s.Updated, s.Unchanged)
	if s.Deactivated > 0 {
		line += fmt.Sprintf(", %d deactivated", s.Deactivated)
	}
	if s.Deleted > 0 {
		line += fmt.Sprintf(", %d deleted", s.Deleted)
	}
	if s.DriftFlagged > 0 {
		line += ", " + color.New(color.FgYellow).Sprintf("%d drift-flagged", s.DriftFlagged)
	}
	return line
}
