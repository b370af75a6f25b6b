package ports

import (
	"context"

	"github.com/bnema/campaign-checkin-cli/internal/domain"
)

// VerifyResult is the decoded VerifyActivity response. Record is nil when the
// server returned no record; Errors holds GraphQL error messages verbatim.
type VerifyResult struct {
	Record *domain.ActivityRecord
	Errors []string
}

type CampaignBackend interface {
	ExchangeToken(ctx context.Context, externalToken string) (string, error)
	FetchPoints(ctx context.Context, token string) (float64, error)
	FetchActivities(ctx context.Context, token string) ([]domain.Activity, error)
	VerifyActivity(ctx context.Context, token, activityID string) (VerifyResult, error)
}
