package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/campaign-checkin-cli/internal/retry"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix  = "CKIN"
	configName = "config"
	configType = "toml"
	configDir  = ".ckin"
	reportFile = "reports.toml"
)

const (
	KeyAccountsFile         = "accounts.file"
	KeyProxyEnabled         = "proxy.enabled"
	KeyProxyFile            = "proxy.file"
	KeyCycleLength          = "cycle.length"
	KeyCycleAccountPause    = "cycle.account_pause"
	KeyLoginRetryAttempts   = "retry.login.attempts"
	KeyLoginRetryDelay      = "retry.login.delay"
	KeyCheckInRetryAttempts = "retry.checkin.attempts"
	KeyCheckInRetryDelay    = "retry.checkin.delay"
	KeyHTTPTimeout          = "http.timeout"
	KeyIdentityBaseURL      = "identity.base_url"
	KeyIdentityAppID        = "identity.app_id"
	KeyIdentityCAID         = "identity.ca_id"
	KeyIdentityClient       = "identity.client"
	KeyIdentityUserAgent    = "identity.user_agent"
	KeyBackendURL           = "backend.url"
	KeyCampaignID           = "campaign.id"
	KeySiteDomain           = "site.domain"
	KeySiteChainID          = "site.chain_id"
	KeyReportPath           = "report.path"
	KeyLogLevel             = "log.level"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36"

type Config struct {
	AccountsFile string
	Proxy        ProxyConfig
	Cycle        CycleConfig
	LoginRetry   RetryConfig
	CheckInRetry RetryConfig
	HTTPTimeout  time.Duration
	Identity     IdentityConfig
	BackendURL   string
	CampaignID   string
	Site         SiteConfig
	ReportPath   string
	LogLevel     string
}

type ProxyConfig struct {
	Enabled bool
	File    string
}

type CycleConfig struct {
	Length       time.Duration
	AccountPause time.Duration
}

type RetryConfig struct {
	Attempts uint
	Delay    time.Duration
}

func (r RetryConfig) Policy() retry.Policy {
	return retry.Policy{MaxAttempts: r.Attempts, Delay: r.Delay}
}

type IdentityConfig struct {
	BaseURL   string
	AppID     string
	CAID      string
	Client    string
	UserAgent string
}

type SiteConfig struct {
	Domain  string
	ChainID int
}

// Origin is the browser origin the remote services expect.
func (s SiteConfig) Origin() string {
	return "https://" + s.Domain
}

// New returns a viper instance with defaults and the CKIN_ environment bound.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyAccountsFile, "private_keys.txt")
	v.SetDefault(KeyProxyEnabled, false)
	v.SetDefault(KeyProxyFile, "proxy.txt")
	v.SetDefault(KeyCycleLength, "24h4m")
	v.SetDefault(KeyCycleAccountPause, "3s")
	v.SetDefault(KeyLoginRetryAttempts, 30)
	v.SetDefault(KeyLoginRetryDelay, "2s")
	v.SetDefault(KeyCheckInRetryAttempts, 3)
	v.SetDefault(KeyCheckInRetryDelay, "2s")
	v.SetDefault(KeyHTTPTimeout, "30s")
	v.SetDefault(KeyIdentityBaseURL, "https://auth.privy.io/api/v1")
	v.SetDefault(KeyIdentityAppID, "clphlvsh3034xjw0fvs59mrdc")
	v.SetDefault(KeyIdentityCAID, "94f3cea1-8c2b-478d-90da-edc794f7114b")
	v.SetDefault(KeyIdentityClient, "react-auth:2.4.1")
	v.SetDefault(KeyIdentityUserAgent, defaultUserAgent)
	v.SetDefault(KeyBackendURL, "https://api.deform.cc/")
	v.SetDefault(KeyCampaignID, "f7e24f14-b911-4f11-b903-edac89a095ec")
	v.SetDefault(KeySiteDomain, "puzzlemania.0g.ai")
	v.SetDefault(KeySiteChainID, 8453)
	v.SetDefault(KeyReportPath, "")
	v.SetDefault(KeyLogLevel, "info")

	return v
}

// LoadDotEnv exports the variables of a .env file. A missing file is not an error.
// Parse errors quote the offending line, so they are replaced by a fixed message.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: file is not KEY=VALUE; private keys belong in %s", path, KeyAccountsFile)
	}
	return nil
}

// Load reads the optional config file under homeDir and resolves every key.
func Load(v *viper.Viper, homeDir string) (Config, error) {
	if v == nil {
		v = New()
	}

	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(filepath.Join(homeDir, configDir))
	if err := v.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	reportPath := v.GetString(KeyReportPath)
	if reportPath == "" {
		reportPath = filepath.Join(homeDir, configDir, reportFile)
	}
	reportPath = expandHome(reportPath, homeDir)

	cfg := Config{
		AccountsFile: expandHome(v.GetString(KeyAccountsFile), homeDir),
		Proxy: ProxyConfig{
			Enabled: v.GetBool(KeyProxyEnabled),
			File:    expandHome(v.GetString(KeyProxyFile), homeDir),
		},
		Cycle: CycleConfig{
			Length:       v.GetDuration(KeyCycleLength),
			AccountPause: v.GetDuration(KeyCycleAccountPause),
		},
		LoginRetry: RetryConfig{
			Attempts: v.GetUint(KeyLoginRetryAttempts),
			Delay:    v.GetDuration(KeyLoginRetryDelay),
		},
		CheckInRetry: RetryConfig{
			Attempts: v.GetUint(KeyCheckInRetryAttempts),
			Delay:    v.GetDuration(KeyCheckInRetryDelay),
		},
		HTTPTimeout: v.GetDuration(KeyHTTPTimeout),
		Identity: IdentityConfig{
			BaseURL:   v.GetString(KeyIdentityBaseURL),
			AppID:     v.GetString(KeyIdentityAppID),
			CAID:      v.GetString(KeyIdentityCAID),
			Client:    v.GetString(KeyIdentityClient),
			UserAgent: v.GetString(KeyIdentityUserAgent),
		},
		BackendURL: v.GetString(KeyBackendURL),
		CampaignID: v.GetString(KeyCampaignID),
		Site: SiteConfig{
			Domain:  v.GetString(KeySiteDomain),
			ChainID: v.GetInt(KeySiteChainID),
		},
		ReportPath: reportPath,
		LogLevel:   v.GetString(KeyLogLevel),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.AccountsFile) == "" {
		errs = append(errs, errors.New("accounts file is empty"))
	}
	if c.Proxy.Enabled && strings.TrimSpace(c.Proxy.File) == "" {
		errs = append(errs, errors.New("proxy is enabled but proxy file is empty"))
	}
	if c.Cycle.Length <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", KeyCycleLength))
	}
	if c.Cycle.AccountPause < 0 {
		errs = append(errs, fmt.Errorf("%s must not be negative", KeyCycleAccountPause))
	}
	if err := c.LoginRetry.Policy().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("retry.login: %w", err))
	}
	if err := c.CheckInRetry.Policy().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("retry.checkin: %w", err))
	}
	if c.HTTPTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", KeyHTTPTimeout))
	}
	for key, raw := range map[string]string{
		KeyIdentityBaseURL: c.Identity.BaseURL,
		KeyBackendURL:      c.BackendURL,
	} {
		if err := validateURL(raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
		}
	}
	if strings.TrimSpace(c.CampaignID) == "" {
		errs = append(errs, fmt.Errorf("%s is empty", KeyCampaignID))
	}
	if strings.TrimSpace(c.Site.Domain) == "" {
		errs = append(errs, fmt.Errorf("%s is empty", KeySiteDomain))
	}
	if c.Site.ChainID <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", KeySiteChainID))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func validateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("url is empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("url host is empty")
	}
	return nil
}

func expandHome(path, homeDir string) string {
	if path == "~" {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}

// HomeDir resolves the user's home directory.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return home, nil
}
