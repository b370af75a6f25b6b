package application

import (
	"context"
	"strings"

	"github.com/bnema/campaign-checkin-cli/internal/domain"
	"github.com/bnema/campaign-checkin-cli/internal/ports"
	"go.uber.org/zap"
)

type TaskVerifier struct {
	backend ports.CampaignBackend
	logger  *zap.Logger
}

func NewTaskVerifier(backend ports.CampaignBackend, logger *zap.Logger) *TaskVerifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskVerifier{backend: backend, logger: logger}
}

// Verify makes a single claim attempt. Any failure reads as "not yet claimable".
func (v *TaskVerifier) Verify(ctx context.Context, session domain.Session, activityID string) bool {
	result, err := v.backend.VerifyActivity(ctx, session.Token, activityID)
	if err != nil {
		v.logger.Debug("task verification failed",
			zap.String("address", domain.ShortAddress(session.Address)),
			zap.String("activity", activityID),
			zap.Error(err))
		return false
	}
	if result.Record == nil {
		return false
	}
	return strings.ToUpper(result.Record.Status) == domain.RecordStatusCompleted
}

func (v *TaskVerifier) VerifyAll(ctx context.Context, session domain.Session, activities []domain.Activity) []domain.TaskOutcome {
	outcomes := make([]domain.TaskOutcome, 0, len(activities))
	for _, activity := range activities {
		if ctx.Err() != nil {
			break
		}
		outcomes = append(outcomes, domain.TaskOutcome{
			ActivityID: activity.ID,
			Title:      activity.Title,
			Claimed:    v.Verify(ctx, session, activity.ID),
		})
	}
	return outcomes
}
