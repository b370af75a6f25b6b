package report

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/bnema/campaign-checkin-cli/internal/domain"
	"github.com/bnema/campaign-checkin-cli/internal/ports"
)

// Writer prints each account report as soon as its pass completes.
type Writer struct {
	mu     sync.Mutex
	out    io.Writer
	styles styles
}

var _ ports.Reporter = (*Writer)(nil)

func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out, styles: newStyles()}
}

func (w *Writer) Report(ctx context.Context, report domain.AccountReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := fmt.Fprintln(w.out, w.styles.section.Render(renderAccount(report, RenderOptions{}, w.styles))); err != nil {
		return fmt.Errorf("write account report: %w", err)
	}
	return nil
}
