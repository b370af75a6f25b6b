package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/campaign-checkin-cli/internal/domain"
	"github.com/bnema/campaign-checkin-cli/internal/ports"
	"github.com/bnema/campaign-checkin-cli/internal/retry"
	"go.uber.org/zap"
)

const (
	walletClientType = "metamask"
	connectorType    = "injected"
	signInMode       = "login-or-sign-up"
	twitterLinkType  = "twitter_oauth"
	issuedAtLayout   = "2006-01-02T15:04:05.000Z07:00"
)

// SignInSite describes the site the wallet signs into.
type SignInSite struct {
	Domain   string
	ChainID  int
	Resource string
}

func (s SignInSite) validate() error {
	if strings.TrimSpace(s.Domain) == "" {
		return errors.New("sign-in domain is required")
	}
	if s.ChainID <= 0 {
		return errors.New("sign-in chain id must be positive")
	}
	return nil
}

func (s SignInSite) caip2() string {
	return "eip155:" + strconv.Itoa(s.ChainID)
}

// BuildSignInMessage renders the sign-in text the identity provider verifies.
// Field order and blank lines are part of what gets signed.
func BuildSignInMessage(site SignInSite, address, nonce string, issuedAt time.Time) string {
	resource := site.Resource
	if resource == "" {
		resource = "https://privy.io"
	}

	var b strings.Builder
	b.WriteString(site.Domain + " wants you to sign in with your Ethereum account:\n")
	b.WriteString(address + "\n")
	b.WriteString("\n")
	b.WriteString("By signing, you are proving you own this wallet and logging in. This does not initiate a transaction or cost any fees.\n")
	b.WriteString("\n")
	b.WriteString("URI: https://" + site.Domain + "\n")
	b.WriteString("Version: 1\n")
	b.WriteString("Chain ID: " + strconv.Itoa(site.ChainID) + "\n")
	b.WriteString("Nonce: " + nonce + "\n")
	b.WriteString("Issued At: " + issuedAt.UTC().Format(issuedAtLayout) + "\n")
	b.WriteString("Resources:\n")
	b.WriteString("- " + resource)
	return b.String()
}

// DisplayNameFrom picks the linked X account name, dropping anything after "|".
func DisplayNameFrom(linked []ports.LinkedAccount) string {
	for _, account := range linked {
		if account.Type != twitterLinkType || account.Name == "" {
			continue
		}
		name := strings.TrimSpace(strings.SplitN(account.Name, "|", 2)[0])
		if name != "" {
			return name
		}
	}
	return domain.UnknownDisplayName
}

type AuthService struct {
	identity ports.IdentityProvider
	backend  ports.CampaignBackend
	clock    ports.Clock
	policy   retry.Policy
	site     SignInSite
	logger   *zap.Logger
}

func NewAuthService(identity ports.IdentityProvider, backend ports.CampaignBackend, clock ports.Clock, policy retry.Policy, site SignInSite, logger *zap.Logger) (*AuthService, error) {
	if err := site.validate(); err != nil {
		return nil, err
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("login retry policy: %w", err)
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuthService{
		identity: identity,
		backend:  backend,
		clock:    clock,
		policy:   policy,
		site:     site,
		logger:   logger,
	}, nil
}

// Login runs the whole challenge, sign, authenticate, exchange sequence as one
// retryable unit: a 429 at any step starts over from the nonce request.
func (s *AuthService) Login(ctx context.Context, signer ports.Signer) (domain.Session, error) {
	address := signer.Address()
	policy := s.policy
	policy.OnRetry = func(attempt uint, err error) {
		s.logger.Debug("login rate limited, retrying",
			zap.String("address", domain.ShortAddress(address)),
			zap.Uint("attempt", attempt),
			zap.Error(err))
	}

	session, err := retry.Do(ctx, policy, func(ctx context.Context) (domain.Session, error) {
		return s.loginOnce(ctx, signer)
	})
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w for account %s: %w", domain.ErrAuthentication, domain.ShortAddress(address), err)
	}

	return session, nil
}

func (s *AuthService) loginOnce(ctx context.Context, signer ports.Signer) (domain.Session, error) {
	address := signer.Address()

	nonce, err := s.identity.RequestNonce(ctx, address)
	if err != nil {
		return domain.Session{}, fmt.Errorf("request login nonce: %w", err)
	}

	message := BuildSignInMessage(s.site, address, nonce, s.clock.Now())
	signature, err := signer.SignMessage(ctx, message)
	if err != nil {
		return domain.Session{}, fmt.Errorf("sign login message: %w", err)
	}

	grant, err := s.identity.Authenticate(ctx, ports.SignInRequest{
		Message:          message,
		Signature:        signature,
		ChainID:          s.site.caip2(),
		WalletClientType: walletClientType,
		ConnectorType:    connectorType,
		Mode:             signInMode,
	})
	if err != nil {
		return domain.Session{}, fmt.Errorf("authenticate signature: %w", err)
	}

	token, err := s.backend.ExchangeToken(ctx, grant.Token)
	if err != nil {
		return domain.Session{}, fmt.Errorf("exchange auth token: %w", err)
	}

	return domain.Session{
		Token:       token,
		DisplayName: DisplayNameFrom(grant.LinkedAccounts),
		Address:     address,
		LoginTime:   s.clock.Now(),
	}, nil
}
