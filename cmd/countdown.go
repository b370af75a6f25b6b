package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bnema/campaign-checkin-cli/internal/ports"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

type countdownTickMsg time.Time

type countdownModel struct {
	spinner   spinner.Model
	deadline  time.Time
	remaining time.Duration
	done      bool
}

func newCountdownModel(deadline time.Time, now time.Time) countdownModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return countdownModel{
		spinner:   s,
		deadline:  deadline,
		remaining: deadline.Sub(now),
	}
}

func countdownTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return countdownTickMsg(t)
	})
}

func (m countdownModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, countdownTick())
}

func (m countdownModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case countdownTickMsg:
		m.remaining = m.deadline.Sub(time.Time(msg))
		if m.remaining <= 0 {
			m.done = true
			return m, tea.Quit
		}
		return m, countdownTick()
	default:
		return m, nil
	}
}

func (m countdownModel) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s Next cycle in %s", m.spinner.View(), FormatCountdown(m.remaining))
}

// FormatCountdown renders a wait as HH:MM:SS, rounding partial seconds up.
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64((d + time.Second - 1) / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// countdownSleeper shows a live countdown on a terminal while it waits.
type countdownSleeper struct {
	output io.Writer
}

func (s countdownSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	now := time.Now()
	p := tea.NewProgram(
		newCountdownModel(now.Add(d), now),
		tea.WithInput(nil),
		tea.WithOutput(s.output),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	)

	_, err := p.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

// loggedSleeper announces the wait once and then blocks quietly.
type loggedSleeper struct {
	logger *zap.Logger
	inner  ports.Sleeper
}

func (s loggedSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.logger.Info("waiting for next cycle",
		zap.String("remaining", FormatCountdown(d)),
		zap.Time("next_start", time.Now().Add(d)))
	return s.inner.Sleep(ctx, d)
}
