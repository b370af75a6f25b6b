package application

import (
	"context"
	"fmt"

	"github.com/bnema/campaign-checkin-cli/internal/domain"
	"github.com/bnema/campaign-checkin-cli/internal/ports"
	"go.uber.org/zap"
)

type CampaignService struct {
	backend ports.CampaignBackend
	logger  *zap.Logger
}

func NewCampaignService(backend ports.CampaignBackend, logger *zap.Logger) *CampaignService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CampaignService{backend: backend, logger: logger}
}

// Fetch loads points and activities. A points failure is logged and counts as
// zero; an activity failure fails the fetch.
func (s *CampaignService) Fetch(ctx context.Context, session domain.Session) (domain.CampaignState, error) {
	points, err := s.backend.FetchPoints(ctx, session.Token)
	if err != nil {
		s.logger.Warn("fetch points failed, assuming zero",
			zap.String("address", domain.ShortAddress(session.Address)),
			zap.Error(err))
		points = 0
	}

	activities, err := s.backend.FetchActivities(ctx, session.Token)
	if err != nil {
		return domain.CampaignState{}, fmt.Errorf("fetch campaign activities: %w", err)
	}

	return domain.CampaignState{Activities: activities, Points: points}, nil
}
