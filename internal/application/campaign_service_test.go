package application

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/campaign-checkin-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestFetchReturnsPointsAndActivities(t *testing.T) {
	backend := newFakeBackend(checkInActivity(), domain.Activity{ID: "t1", Title: "Join Discord"})
	backend.points = 420
	svc := NewCampaignService(backend, zaptest.NewLogger(t))

	state, err := svc.Fetch(context.Background(), testSession)
	require.NoError(t, err)

	assert.Equal(t, float64(420), state.Points)
	assert.Len(t, state.Activities, 2)
}

func TestFetchPointsFailureCountsAsZero(t *testing.T) {
	backend := newFakeBackend(checkInActivity())
	backend.points = 99
	backend.pointsErr = errors.New("userMe failed")
	svc := NewCampaignService(backend, zaptest.NewLogger(t))

	state, err := svc.Fetch(context.Background(), testSession)
	require.NoError(t, err)

	assert.Zero(t, state.Points)
	assert.Len(t, state.Activities, 1)
}

func TestFetchActivitiesFailureIsFatal(t *testing.T) {
	backend := newFakeBackend()
	backend.activitiesErr = domain.ErrCampaignUnavailable
	svc := NewCampaignService(backend, zaptest.NewLogger(t))

	_, err := svc.Fetch(context.Background(), testSession)

	assert.ErrorIs(t, err, domain.ErrCampaignUnavailable)
	assert.ErrorContains(t, err, "fetch campaign activities")
}
