package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/campaign-checkin-cli/internal/domain"
	"github.com/bnema/campaign-checkin-cli/internal/ports"
	"go.uber.org/zap"
)

const (
	DefaultCycleLength  = 24*time.Hour + 4*time.Minute
	DefaultAccountPause = 3 * time.Second
)

type CycleConfig struct {
	// Length is measured from the start of a pass to the start of the next.
	Length       time.Duration
	AccountPause time.Duration
}

type OrchestratorDeps struct {
	Auth     *AuthService
	Campaign *CampaignService
	CheckIn  *CheckInReconciler
	Tasks    *TaskVerifier
	Reporter ports.Reporter
	Reports  ports.ReportRepository
	Clock    ports.Clock
	// Pause is used between accounts, Wait between cycles.
	Pause  ports.Sleeper
	Wait   ports.Sleeper
	Logger *zap.Logger
}

type Orchestrator struct {
	signers []ports.Signer
	deps    OrchestratorDeps
	cfg     CycleConfig
	proxy   string
	logger  *zap.Logger
}

type PassSummary struct {
	StartedAt time.Time
	Elapsed   time.Duration
	Reports   []domain.AccountReport
}

func (s PassSummary) Failures() int {
	failures := 0
	for _, report := range s.Reports {
		if report.Failed() {
			failures++
		}
	}
	return failures
}

// NextWait is the time left until the next pass should start. It is zero when
// the pass already ran past the cycle length.
func NextWait(elapsed, cycleLength time.Duration) time.Duration {
	remaining := cycleLength - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// NewOrchestrator wires the per-account sequence. proxy is only shown in
// reports; the shared HTTP client already routes through it.
func NewOrchestrator(signers []ports.Signer, deps OrchestratorDeps, cfg CycleConfig, proxy string) (*Orchestrator, error) {
	if len(signers) == 0 {
		return nil, domain.ErrNoAccounts
	}
	if deps.Auth == nil || deps.Campaign == nil || deps.CheckIn == nil || deps.Tasks == nil {
		return nil, errors.New("orchestrator requires auth, campaign, check-in and task services")
	}
	if cfg.Length <= 0 {
		cfg.Length = DefaultCycleLength
	}
	if cfg.AccountPause < 0 {
		cfg.AccountPause = 0
	}
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Pause == nil {
		deps.Pause = ports.TimerSleeper{}
	}
	if deps.Wait == nil {
		deps.Wait = deps.Pause
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Orchestrator{
		signers: signers,
		deps:    deps,
		cfg:     cfg,
		proxy:   proxy,
		logger:  deps.Logger,
	}, nil
}

// Run repeats passes until ctx is done. maxPasses <= 0 means no limit; with a
// limit the wait after the final pass is skipped.
func (o *Orchestrator) Run(ctx context.Context, maxPasses int) error {
	for pass := 1; maxPasses <= 0 || pass <= maxPasses; pass++ {
		summary := o.RunPass(ctx)
		if err := ctx.Err(); err != nil {
			return err
		}

		wait := NextWait(o.deps.Clock.Now().Sub(summary.StartedAt), o.cfg.Length)
		o.logger.Info("pass finished",
			zap.Int("pass", pass),
			zap.Int("accounts", len(summary.Reports)),
			zap.Int("failures", summary.Failures()),
			zap.Duration("elapsed", summary.Elapsed.Round(time.Second)),
			zap.Duration("next_in", wait.Round(time.Second)))

		if maxPasses > 0 && pass == maxPasses {
			return nil
		}
		if wait > 0 {
			if err := o.deps.Wait.Sleep(ctx, wait); err != nil {
				return err
			}
		}
	}
	return nil
}

// RunPass processes every account once, in order. A failing account is logged
// and recorded; it never stops the pass.
func (o *Orchestrator) RunPass(ctx context.Context) PassSummary {
	summary := PassSummary{StartedAt: o.deps.Clock.Now()}

	for i, signer := range o.signers {
		if ctx.Err() != nil {
			break
		}

		short := domain.ShortAddress(signer.Address())
		o.logger.Info("processing account", zap.String("address", short))

		report, err := o.runAccount(ctx, signer)
		if err != nil {
			report.Failure = err.Error()
			o.logger.Error("account pass failed", zap.String("address", short), zap.Error(err))
		}
		report.FinishedAt = o.deps.Clock.Now()

		if o.deps.Reporter != nil {
			if err := o.deps.Reporter.Report(ctx, report); err != nil {
				o.logger.Warn("render report failed", zap.String("address", short), zap.Error(err))
			}
		}

		if o.deps.Reports != nil {
			if err := o.deps.Reports.Save(ctx, report); err != nil {
				o.logger.Warn("save report failed", zap.String("address", short), zap.Error(err))
			}
		}
		summary.Reports = append(summary.Reports, report)

		if i < len(o.signers)-1 && o.cfg.AccountPause > 0 {
			if err := o.deps.Pause.Sleep(ctx, o.cfg.AccountPause); err != nil {
				break
			}
		}
	}

	summary.Elapsed = o.deps.Clock.Now().Sub(summary.StartedAt)
	return summary
}

// runAccount is login, fetch, check-in, verify for one account. The session
// lives only inside this call.
func (o *Orchestrator) runAccount(ctx context.Context, signer ports.Signer) (report domain.AccountReport, err error) {
	report = domain.AccountReport{
		Address:     signer.Address(),
		DisplayName: domain.UnknownDisplayName,
		CheckIn:     domain.CheckInUnknown,
		Proxy:       o.proxy,
		StartedAt:   o.deps.Clock.Now(),
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("account pass panicked: %v", recovered)
		}
	}()

	session, err := o.deps.Auth.Login(ctx, signer)
	if err != nil {
		return report, err
	}
	report.DisplayName = session.DisplayName

	state, err := o.deps.Campaign.Fetch(ctx, session)
	if err != nil {
		return report, err
	}
	report.Points = state.Points

	partition := domain.Partition(state.Activities)
	report.CheckIn = o.deps.CheckIn.Reconcile(ctx, session, &partition)

	for _, activity := range partition.Claimed {
		report.Claimed = append(report.Claimed, activity.Title)
	}
	report.Tasks = o.deps.Tasks.VerifyAll(ctx, session, partition.Unclaimed)

	return report, nil
}
