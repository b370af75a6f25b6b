package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/campaign-checkin-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const noProxyLabel = "None"

type RenderOptions struct {
	// ShowTimes adds the pass finish time, used when reading the ledger back.
	ShowTimes bool
	Now       time.Time
}

func renderView(reports []domain.AccountReport, counts tally, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Campaign Check-in Reports"),
		s.header.Render(fmt.Sprintf("accounts: %d", len(reports))),
	}

	if len(reports) == 0 {
		lines = append(lines, s.empty.Render("No account reports recorded yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines, s.detail.Render(fmt.Sprintf("checked in: %d  already today: %d  failed: %d",
		counts.checkedIn, counts.already, counts.failed)))

	for _, report := range reports {
		lines = append(lines, s.section.Render(renderAccount(report, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderAccount(report domain.AccountReport, opts RenderOptions, s styles) string {
	parts := []string{
		s.account.Render(accountTitle(report)),
	}

	if report.Failed() {
		parts = append(parts, field(s, "error", s.warning.Render(report.Failure)))
	} else {
		parts = append(parts,
			field(s, "points", s.detail.Render(formatPoints(report.Points))),
			field(s, "daily check-in", checkInStyle(report.CheckIn, s).Render(checkInLabel(report.CheckIn))),
		)
	}

	parts = append(parts, field(s, "proxy", s.detail.Render(proxyLabel(report.Proxy))))

	if !report.Failed() {
		parts = append(parts,
			field(s, "claimed tasks", listLabel(report.Claimed, s)),
			field(s, "verified now", listLabel(report.VerifiedTasks(), s)),
			field(s, "not yet claimable", listLabel(report.UnverifiedTasks(), s)),
		)
	}

	if opts.ShowTimes && !report.FinishedAt.IsZero() {
		parts = append(parts, field(s, "last pass", s.detail.Render(formatFinished(report.FinishedAt, opts.Now))))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func field(s styles, label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, "  ", s.label.Render(label+":"), " ", value)
}

func accountTitle(report domain.AccountReport) string {
	name := strings.TrimSpace(report.DisplayName)
	if name == "" {
		name = domain.UnknownDisplayName
	}
	return fmt.Sprintf("%s (%s)", name, domain.ShortAddress(report.Address))
}

func formatPoints(points float64) string {
	return strconv.FormatFloat(points, 'f', -1, 64)
}

func checkInLabel(status domain.CheckInStatus) string {
	if status == domain.CheckInUnknown {
		return "unknown"
	}
	return string(status)
}

func checkInStyle(status domain.CheckInStatus, s styles) lipgloss.Style {
	if status.Done() {
		return s.good
	}

	switch status {
	case domain.CheckInFailed, domain.CheckInError:
		return s.bad
	case domain.CheckInNotAvailable:
		return s.empty
	default:
		return s.detail
	}
}

func proxyLabel(proxy string) string {
	if strings.TrimSpace(proxy) == "" {
		return noProxyLabel
	}
	return proxy
}

func listLabel(items []string, s styles) string {
	if len(items) == 0 {
		return s.empty.Render("none")
	}
	return s.detail.Render(strings.Join(items, ", "))
}

func formatFinished(finishedAt, now time.Time) string {
	stamp := finishedAt.UTC().Format("2006-01-02 15:04 UTC")
	if now.IsZero() || finishedAt.After(now) {
		return stamp
	}

	ago := now.Sub(finishedAt)
	switch {
	case ago < time.Minute:
		return stamp + " (just now)"
	case ago < time.Hour:
		return fmt.Sprintf("%s (%d min ago)", stamp, int(ago.Minutes()))
	default:
		return fmt.Sprintf("%s (%d h ago)", stamp, int(ago.Hours()))
	}
}
