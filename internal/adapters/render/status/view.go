package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/suitetecsa/suitetecsa-cli/internal/application"
	"github.com/suitetecsa/suitetecsa-cli/internal/domain"
)

// portalDateLayouts are the date formats the portals report, tried in order.
var portalDateLayouts = []string{"02/01/2006", "2006-01-02", time.RFC3339}

type RenderOptions struct {
	Now time.Time
	// WarnBefore flags block and delete dates closer than this to Now.
	WarnBefore time.Duration
}

func renderView(statuses []application.AccountStatus, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Nauta Account Status"),
		s.header.Render(fmt.Sprintf("accounts: %d", len(statuses))),
	}

	if len(statuses) == 0 {
		lines = append(lines, s.empty.Render("No account statuses available."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, status := range statuses {
		lines = append(lines, s.section.Render(renderAccount(status, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderAccount(status application.AccountStatus, opts RenderOptions, s styles) string {
	parts := []string{
		s.account.Render(accountTitle(status)),
		connectionLine(status, s),
		valueLine("credit:", status.Credit, s),
		valueLine("time left:", status.RemainingTime, s),
	}

	if status.Account.BlockDate != "" {
		parts = append(parts, dateLine("blocks", status.Account.BlockDate, opts, s))
	}
	if status.Account.DeleteDate != "" {
		parts = append(parts, dateLine("deleted", status.Account.DeleteDate, opts, s))
	}
	if status.Account.MailAccount != "" {
		parts = append(parts, valueLine("mail:", status.Account.MailAccount, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func accountTitle(status application.AccountStatus) string {
	username := strings.TrimSpace(status.Username)
	if username == "" {
		username = "(no account)"
	}

	classification := domain.AccountClassification(status.Account.AccountType)
	if status.Account.ServiceType != "" {
		return fmt.Sprintf("Account: %s (%s, %s)", username, classification, status.Account.ServiceType)
	}
	return fmt.Sprintf("Account: %s (%s)", username, classification)
}

func connectionLine(status application.AccountStatus, s styles) string {
	label := s.key.Render("connection:")
	if status.LoggedIn {
		return lipgloss.JoinHorizontal(lipgloss.Top, label, " ", s.online.Render("online"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, label, " ", s.offline.Render("offline"))
}

func valueLine(key, value string, s styles) string {
	rendered := s.detail.Render(value)
	if strings.TrimSpace(value) == "" {
		rendered = s.valueDim.Render("n/a")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, s.key.Render(key), " ", rendered)
}

func dateLine(verb, raw string, opts RenderOptions, s styles) string {
	label := s.key.Render(verb + ":")
	date, ok := parsePortalDate(raw)
	if !ok || opts.Now.IsZero() {
		return lipgloss.JoinHorizontal(lipgloss.Top, label, " ", s.detail.Render(raw))
	}

	dateStyle := lipgloss.NewStyle().Foreground(deadlineColor(date, opts.Now, opts.WarnBefore))
	line := lipgloss.JoinHorizontal(
		lipgloss.Top,
		label,
		" ",
		dateStyle.Render(fmt.Sprintf("%s (%s)", raw, formatRelative(date, opts.Now))),
	)

	if opts.WarnBefore > 0 && date.Sub(opts.Now) < opts.WarnBefore {
		line += " " + s.warning.Render("[soon]")
	}

	return line
}

func parsePortalDate(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range portalDateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func formatRelative(date, now time.Time) string {
	if !date.After(now) {
		return "passed"
	}

	days := int(math.Ceil(date.Sub(now).Hours() / 24))
	if days < 1 {
		days = 1
	}
	if days == 1 {
		return "in 1 day"
	}
	return fmt.Sprintf("in %d days", days)
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp, 240 faded to 255 bright.
	baseColor := 240.0
	targetColor := 255.0
	interpolated := baseColor + (targetColor-baseColor)*normalized

	return lipgloss.Color(fmt.Sprintf("%d", int(interpolated)))
}

// deadlineColor brightens as the date approaches, over a 30 day horizon
// unless warnBefore is longer.
func deadlineColor(date, now time.Time, warnBefore time.Duration) lipgloss.Color {
	if now.IsZero() || date.Before(now) {
		return lipgloss.Color("255")
	}

	horizon := 30 * 24 * time.Hour
	if warnBefore > horizon {
		horizon = warnBefore
	}

	inverted := horizon.Seconds() - date.Sub(now).Seconds()
	return interpolateColor(inverted, 0, horizon.Seconds())
}
