package ports

import (
	"context"

	"github.com/bnema/campaign-checkin-cli/internal/domain"
)

type ReportRepository interface {
	GetByAddress(ctx context.Context, address string) (domain.AccountReport, error)
	List(ctx context.Context) ([]domain.AccountReport, error)
	Save(ctx context.Context, report domain.AccountReport) error
}

// Reporter shows a finished account pass to the operator.
type Reporter interface {
	Report(ctx context.Context, report domain.AccountReport) error
}
