package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bnema/campaign-checkin-cli/internal/adapters/deform"
	"github.com/bnema/campaign-checkin-cli/internal/adapters/httpclient"
	"github.com/bnema/campaign-checkin-cli/internal/adapters/keyfile"
	"github.com/bnema/campaign-checkin-cli/internal/adapters/privy"
	reportadapter "github.com/bnema/campaign-checkin-cli/internal/adapters/render/report"
	tomlrepo "github.com/bnema/campaign-checkin-cli/internal/adapters/repo/toml"
	"github.com/bnema/campaign-checkin-cli/internal/adapters/wallet"
	"github.com/bnema/campaign-checkin-cli/internal/application"
	"github.com/bnema/campaign-checkin-cli/internal/config"
	"github.com/bnema/campaign-checkin-cli/internal/domain"
	"github.com/bnema/campaign-checkin-cli/internal/logging"
	"github.com/bnema/campaign-checkin-cli/internal/ports"
	"github.com/mattn/go-isatty"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const dotEnvFile = ".env"

type runner struct {
	orchestrator *application.Orchestrator
	logger       *zap.Logger
	accounts     int
	proxy        string
}

func loadConfig(v *viper.Viper) (config.Config, error) {
	if err := config.LoadDotEnv(dotEnvFile); err != nil {
		return config.Config{}, err
	}

	homeDir, err := config.HomeDir()
	if err != nil {
		return config.Config{}, err
	}

	return config.Load(v, homeDir)
}

func newLogger(level string, errOut io.Writer) (*zap.Logger, error) {
	if errOut == os.Stderr {
		return logging.Stderr(level)
	}
	return logging.New(logging.Options{Level: level, Output: errOut})
}

func wireRunner(v *viper.Viper, out, errOut io.Writer) (*runner, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel, errOut)
	if err != nil {
		return nil, err
	}

	signers, err := loadSigners(cfg.AccountsFile)
	if err != nil {
		return nil, err
	}

	proxy, err := selectProxy(cfg.Proxy, logger)
	if err != nil {
		return nil, err
	}

	httpClient, err := httpclient.New(httpclient.Options{Timeout: cfg.HTTPTimeout, Proxy: proxy})
	if err != nil {
		return nil, fmt.Errorf("wire http client: %w", err)
	}

	identity, err := privy.NewClient(httpClient, cfg.Identity.BaseURL, privy.Headers{
		AppID:     cfg.Identity.AppID,
		CAID:      cfg.Identity.CAID,
		Client:    cfg.Identity.Client,
		UserAgent: cfg.Identity.UserAgent,
		Origin:    cfg.Site.Origin(),
	})
	if err != nil {
		return nil, fmt.Errorf("wire identity client: %w", err)
	}

	backend, err := deform.NewClient(httpClient, cfg.BackendURL, cfg.CampaignID, cfg.Site.Origin())
	if err != nil {
		return nil, fmt.Errorf("wire campaign client: %w", err)
	}

	reports, err := tomlrepo.NewRepository(cfg.ReportPath)
	if err != nil {
		return nil, fmt.Errorf("wire report repository: %w", err)
	}

	clock := ports.SystemClock{}
	auth, err := application.NewAuthService(identity, backend, clock, cfg.LoginRetry.Policy(), application.SignInSite{
		Domain:  cfg.Site.Domain,
		ChainID: cfg.Site.ChainID,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("wire auth service: %w", err)
	}

	displayProxy := httpclient.Redact(proxy)
	orchestrator, err := application.NewOrchestrator(signers, application.OrchestratorDeps{
		Auth:     auth,
		Campaign: application.NewCampaignService(backend, logger),
		CheckIn:  application.NewCheckInReconciler(backend, clock, cfg.CheckInRetry.Policy(), logger),
		Tasks:    application.NewTaskVerifier(backend, logger),
		Reporter: reportadapter.NewWriter(out),
		Reports:  reports,
		Clock:    clock,
		Pause:    ports.TimerSleeper{},
		Wait:     cycleSleeper(out, logger),
		Logger:   logger,
	}, application.CycleConfig{
		Length:       cfg.Cycle.Length,
		AccountPause: cfg.Cycle.AccountPause,
	}, displayProxy)
	if err != nil {
		return nil, fmt.Errorf("wire orchestrator: %w", err)
	}

	return &runner{
		orchestrator: orchestrator,
		logger:       logger,
		accounts:     len(signers),
		proxy:        displayProxy,
	}, nil
}

// loadSigners builds one wallet per key line. A bad key fails startup and is
// reported by line number only.
func loadSigners(path string) ([]ports.Signer, error) {
	lines, err := keyfile.ReadPrivateKeys(path)
	if err != nil {
		return nil, err
	}

	signers := make([]ports.Signer, 0, len(lines))
	var errs []error
	for _, line := range lines {
		w, err := wallet.New(domain.PrivateKey(line.Value))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s line %d: %w", path, line.Number, err))
			continue
		}
		signers = append(signers, w)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return signers, nil
}

func selectProxy(cfg config.ProxyConfig, logger *zap.Logger) (string, error) {
	if !cfg.Enabled {
		return "", nil
	}

	entries, err := keyfile.ReadProxies(cfg.File)
	if err != nil {
		return "", err
	}

	proxy, err := httpclient.SelectProxy(entries)
	if err != nil {
		if errors.Is(err, httpclient.ErrNoValidProxy) {
			logger.Warn("proxy enabled but no valid entry found, connecting directly", zap.String("file", cfg.File))
			return "", nil
		}
		return "", err
	}

	logger.Info("using proxy", zap.String("proxy", httpclient.Redact(proxy)))
	return proxy, nil
}

func cycleSleeper(out io.Writer, logger *zap.Logger) ports.Sleeper {
	if file, ok := out.(*os.File); ok && (isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())) {
		return countdownSleeper{output: out}
	}
	return loggedSleeper{logger: logger, inner: ports.TimerSleeper{}}
}

func openReports(v *viper.Viper) (*tomlrepo.Repository, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}

	reports, err := tomlrepo.NewRepository(cfg.ReportPath)
	if err != nil {
		return nil, fmt.Errorf("wire report repository: %w", err)
	}
	return reports, nil
}
