package application

import (
	"context"
	"strings"

	"github.com/bnema/campaign-checkin-cli/internal/domain"
	"github.com/bnema/campaign-checkin-cli/internal/ports"
	"github.com/bnema/campaign-checkin-cli/internal/retry"
	"go.uber.org/zap"
)

// alreadyDoneMarkers are the error texts the backend uses for a check-in it
// has already recorded. It does not use a distinct code for this.
var alreadyDoneMarkers = []string{
	"already checked in",
	"already completed",
	"already verified",
}

// IsAlreadyCheckedInError reports whether a GraphQL error message means the
// check-in was recorded earlier.
func IsAlreadyCheckedInError(message string) bool {
	lower := strings.ToLower(message)
	for _, marker := range alreadyDoneMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// ClassifyCheckInResponse maps a check-in mutation result to a final status.
// A nil result means no response was received.
func ClassifyCheckInResponse(result *ports.VerifyResult) domain.CheckInStatus {
	if result == nil {
		return domain.CheckInFailed
	}
	if result.Record != nil && strings.ToUpper(result.Record.Status) == domain.RecordStatusCompleted {
		return domain.CheckInSuccessful
	}
	for _, message := range result.Errors {
		if IsAlreadyCheckedInError(message) {
			return domain.CheckInAlreadyToday
		}
	}
	return domain.CheckInFailed
}

type CheckInReconciler struct {
	backend ports.CampaignBackend
	clock   ports.Clock
	policy  retry.Policy
	logger  *zap.Logger
}

func NewCheckInReconciler(backend ports.CampaignBackend, clock ports.Clock, policy retry.Policy, logger *zap.Logger) *CheckInReconciler {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckInReconciler{backend: backend, clock: clock, policy: policy, logger: logger}
}

// Reconcile decides whether today's check-in is needed, performs it when it
// is, and returns the status for this pass. On success the returned record is
// stored on partition.DailyCheckIn.
func (r *CheckInReconciler) Reconcile(ctx context.Context, session domain.Session, partition *domain.CampaignPartition) domain.CheckInStatus {
	log := r.logger.With(zap.String("address", domain.ShortAddress(session.Address)))

	if partition == nil || partition.DailyCheckIn == nil {
		log.Info("daily check-in activity not found")
		return domain.CheckInNotAvailable
	}
	checkIn := partition.DailyCheckIn

	status := r.CurrentStatus(ctx, session, checkIn.ID)
	log.Info("check-in status from server", zap.String("status", string(status)))
	if status != domain.CheckInNotCheckedIn {
		return status
	}

	policy := r.policy
	policy.OnRetry = func(attempt uint, err error) {
		log.Debug("check-in rate limited, retrying", zap.Uint("attempt", attempt), zap.Error(err))
	}
	result, err := retry.Do(ctx, policy, func(ctx context.Context) (ports.VerifyResult, error) {
		return r.backend.VerifyActivity(ctx, session.Token, checkIn.ID)
	})
	if err != nil {
		log.Warn("check-in request failed", zap.String("activity", checkIn.Title), zap.Error(err))
		return domain.CheckInFailed
	}

	outcome := ClassifyCheckInResponse(&result)
	switch outcome {
	case domain.CheckInSuccessful:
		checkIn.Records = []domain.ActivityRecord{*result.Record}
		log.Info("check-in completed", zap.String("activity", checkIn.Title))
	case domain.CheckInAlreadyToday:
		log.Info("check-in already recorded by server", zap.Strings("errors", result.Errors))
	default:
		log.Warn("check-in not accepted", zap.Strings("errors", result.Errors))
	}

	return outcome
}

// CurrentStatus asks the server for the latest check-in record and compares
// its UTC date with today.
func (r *CheckInReconciler) CurrentStatus(ctx context.Context, session domain.Session, activityID string) domain.CheckInStatus {
	activities, err := r.backend.FetchActivities(ctx, session.Token)
	if err != nil {
		r.logger.Warn("check-in status query failed",
			zap.String("address", domain.ShortAddress(session.Address)),
			zap.Error(err))
		return domain.CheckInError
	}

	for _, activity := range activities {
		if activity.ID != activityID || !activity.IsDailyCheckIn() {
			continue
		}
		latest, ok := activity.LatestRecord()
		if !ok {
			return domain.CheckInNotCheckedIn
		}
		if domain.SameUTCDate(latest.CreatedAt, r.clock.Now()) && latest.Qualifies() {
			return domain.CheckInAlreadyToday
		}
		return domain.CheckInNotCheckedIn
	}

	return domain.CheckInNotCheckedIn
}
