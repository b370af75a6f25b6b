package application

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bnema/campaign-checkin-cli/internal/adapters/httpclient"
	"github.com/bnema/campaign-checkin-cli/internal/domain"
	"github.com/bnema/campaign-checkin-cli/internal/ports"
	"github.com/bnema/campaign-checkin-cli/internal/retry"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func rateLimited(operation string) error {
	return &httpclient.StatusError{Operation: operation, StatusCode: 429}
}

func fastPolicy(attempts uint) retry.Policy {
	return retry.Policy{MaxAttempts: attempts, Delay: time.Microsecond}
}

// fakeClock doubles as a Sleeper that advances time instead of blocking.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: testNow}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return ctx.Err()
}

type fakeSigner struct {
	address string
	signed  []string
	err     error
}

func (s *fakeSigner) Address() string {
	return s.address
}

func (s *fakeSigner) SignMessage(_ context.Context, message string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.signed = append(s.signed, message)
	return "0xsig", nil
}

type fakeIdentity struct {
	nonceCalls int
	authCalls  int
	requests   []ports.SignInRequest
	// nonceErrs and authErrs are indexed by call; a nil entry or running past
	// the end means success.
	nonceErrs []error
	authErrs  []error
	alwaysErr error
	linked    []ports.LinkedAccount
}

func (f *fakeIdentity) RequestNonce(_ context.Context, address string) (string, error) {
	f.nonceCalls++
	if f.alwaysErr != nil {
		return "", f.alwaysErr
	}
	if err := pick(f.nonceErrs, f.nonceCalls); err != nil {
		return "", err
	}
	return fmt.Sprintf("nonce-%d", f.nonceCalls), nil
}

func (f *fakeIdentity) Authenticate(_ context.Context, req ports.SignInRequest) (ports.IdentityGrant, error) {
	f.authCalls++
	f.requests = append(f.requests, req)
	if err := pick(f.authErrs, f.authCalls); err != nil {
		return ports.IdentityGrant{}, err
	}
	return ports.IdentityGrant{Token: "privy-token", LinkedAccounts: f.linked}, nil
}

func pick(errs []error, call int) error {
	if call-1 < len(errs) {
		return errs[call-1]
	}
	return nil
}

type fakeBackend struct {
	exchangeCalls int
	exchangeErr   error

	points    float64
	pointsErr error

	activities    []domain.Activity
	activitiesErr error
	fetchCalls    int
	onFetch       func()

	verify      map[string]func() (ports.VerifyResult, error)
	verifyCalls map[string]int
}

func newFakeBackend(activities ...domain.Activity) *fakeBackend {
	return &fakeBackend{
		activities:  activities,
		verify:      map[string]func() (ports.VerifyResult, error){},
		verifyCalls: map[string]int{},
	}
}

func (b *fakeBackend) ExchangeToken(_ context.Context, externalToken string) (string, error) {
	b.exchangeCalls++
	if b.exchangeErr != nil {
		return "", b.exchangeErr
	}
	return "session-for-" + externalToken, nil
}

func (b *fakeBackend) FetchPoints(context.Context, string) (float64, error) {
	return b.points, b.pointsErr
}

func (b *fakeBackend) FetchActivities(context.Context, string) ([]domain.Activity, error) {
	b.fetchCalls++
	if b.onFetch != nil {
		b.onFetch()
	}
	if b.activitiesErr != nil {
		return nil, b.activitiesErr
	}
	out := make([]domain.Activity, len(b.activities))
	copy(out, b.activities)
	return out, nil
}

func (b *fakeBackend) VerifyActivity(_ context.Context, _ string, activityID string) (ports.VerifyResult, error) {
	b.verifyCalls[activityID]++
	if fn, ok := b.verify[activityID]; ok {
		return fn()
	}
	return ports.VerifyResult{}, nil
}

// addRecord appends a record to an activity, as the server would after a
// successful mutation.
func (b *fakeBackend) addRecord(activityID string, record domain.ActivityRecord) {
	for i := range b.activities {
		if b.activities[i].ID == activityID {
			b.activities[i].Records = append(b.activities[i].Records, record)
		}
	}
}

type recordingReporter struct {
	reports []domain.AccountReport
}

func (r *recordingReporter) Report(_ context.Context, report domain.AccountReport) error {
	r.reports = append(r.reports, report)
	return nil
}

type memoryReports struct {
	saved []domain.AccountReport
}

func (m *memoryReports) GetByAddress(_ context.Context, address string) (domain.AccountReport, error) {
	for i := len(m.saved) - 1; i >= 0; i-- {
		if m.saved[i].Address == address {
			return m.saved[i], nil
		}
	}
	return domain.AccountReport{}, domain.ErrReportNotFound
}

func (m *memoryReports) List(context.Context) ([]domain.AccountReport, error) {
	return m.saved, nil
}

func (m *memoryReports) Save(_ context.Context, report domain.AccountReport) error {
	m.saved = append(m.saved, report)
	return nil
}

func testSite() SignInSite {
	return SignInSite{Domain: "puzzlemania.0g.ai", ChainID: 8453}
}

func newTestAuthService(t *testing.T, identity ports.IdentityProvider, backend ports.CampaignBackend, clock ports.Clock, policy retry.Policy) *AuthService {
	t.Helper()

	svc, err := NewAuthService(identity, backend, clock, policy, testSite(), zaptest.NewLogger(t))
	require.NoError(t, err)
	return svc
}

func checkInActivity(records ...domain.ActivityRecord) domain.Activity {
	return domain.Activity{ID: "checkin", Title: "Daily Check-in", Records: records}
}

func completedVerify(activityID string, at time.Time) func() (ports.VerifyResult, error) {
	return func() (ports.VerifyResult, error) {
		return ports.VerifyResult{Record: &domain.ActivityRecord{ID: "rec-" + activityID, Status: "COMPLETED", CreatedAt: at}}, nil
	}
}
