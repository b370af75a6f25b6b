package report

import (
	"errors"
	"io"
	"slices"

	"github.com/bnema/campaign-checkin-cli/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

// tally counts check-in outcomes across the rendered accounts.
type tally struct {
	checkedIn int
	already   int
	failed    int
}

func tallyReports(reports []domain.AccountReport) tally {
	var t tally
	for _, report := range reports {
		switch {
		case report.Failed():
			t.failed++
		case report.CheckIn == domain.CheckInSuccessful:
			t.checkedIn++
		case report.CheckIn == domain.CheckInAlreadyToday:
			t.already++
		case report.CheckIn == domain.CheckInFailed || report.CheckIn == domain.CheckInError:
			t.failed++
		}
	}
	return t
}

type reportsReadyMsg struct {
	reports []domain.AccountReport
	tally   tally
}

type model struct {
	input  []domain.AccountReport
	opts   RenderOptions
	styles styles
	output string
}

func newModel(reports []domain.AccountReport, opts RenderOptions) model {
	return model{
		input:  reports,
		opts:   opts,
		styles: newStyles(),
	}
}

// Init orders accounts whose pass failed after the rest, keeping ledger order otherwise.
func (m model) Init() tea.Cmd {
	reports := slices.Clone(m.input)
	return func() tea.Msg {
		slices.SortStableFunc(reports, func(a, b domain.AccountReport) int {
			switch {
			case a.Failed() == b.Failed():
				return 0
			case a.Failed():
				return 1
			default:
				return -1
			}
		})
		return reportsReadyMsg{reports: reports, tally: tallyReports(reports)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	ready, ok := msg.(reportsReadyMsg)
	if !ok {
		return m, nil
	}

	m.output = renderView(ready.reports, ready.tally, m.opts, m.styles)
	return m, tea.Quit
}

func (m model) View() string {
	return m.output
}

// Render lays out the stored reports of several accounts.
func Render(reports []domain.AccountReport, opts RenderOptions) (string, error) {
	p := tea.NewProgram(
		newModel(reports, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
