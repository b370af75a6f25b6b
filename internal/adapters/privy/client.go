package privy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/bnema/campaign-checkin-cli/internal/adapters/httpclient"
	"github.com/bnema/campaign-checkin-cli/internal/ports"
	"github.com/go-resty/resty/v2"
)

const (
	initPath         = "siwe/init"
	authenticatePath = "siwe/authenticate"
)

// Headers are the client identification values the provider insists on.
type Headers struct {
	AppID     string
	CAID      string
	Client    string
	UserAgent string
	// Origin is the site the wallet logs into, e.g. https://puzzlemania.0g.ai.
	Origin string
}

type Client struct {
	http    *resty.Client
	baseURL string
	headers Headers
}

var _ ports.IdentityProvider = (*Client)(nil)

type initRequest struct {
	Address string `json:"address"`
}

type initResponse struct {
	Nonce string `json:"nonce"`
}

type authenticateRequest struct {
	Message          string `json:"message"`
	Signature        string `json:"signature"`
	ChainID          string `json:"chainId"`
	WalletClientType string `json:"walletClientType"`
	ConnectorType    string `json:"connectorType"`
	Mode             string `json:"mode"`
}

type authenticateResponse struct {
	Token string `json:"token"`
	User  *struct {
		LinkedAccounts []struct {
			Type string `json:"type"`
			Name string `json:"name"`
		} `json:"linked_accounts"`
	} `json:"user"`
}

func NewClient(httpClient *resty.Client, baseURL string, headers Headers) (*Client, error) {
	if httpClient == nil {
		return nil, errors.New("http client is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse identity base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.New("identity base url must use http or https")
	}

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimSuffix(baseURL, "/") + "/",
		headers: headers,
	}, nil
}

func (c *Client) RequestNonce(ctx context.Context, address string) (string, error) {
	var payload initResponse
	if err := c.post(ctx, initPath, initRequest{Address: address}, &payload); err != nil {
		return "", err
	}
	if payload.Nonce == "" {
		return "", errors.New("siwe init: response missing nonce")
	}

	return payload.Nonce, nil
}

func (c *Client) Authenticate(ctx context.Context, req ports.SignInRequest) (ports.IdentityGrant, error) {
	body := authenticateRequest{
		Message:          req.Message,
		Signature:        req.Signature,
		ChainID:          req.ChainID,
		WalletClientType: req.WalletClientType,
		ConnectorType:    req.ConnectorType,
		Mode:             req.Mode,
	}

	var payload authenticateResponse
	if err := c.post(ctx, authenticatePath, body, &payload); err != nil {
		return ports.IdentityGrant{}, err
	}
	if payload.Token == "" {
		return ports.IdentityGrant{}, errors.New("siwe authenticate: response missing token")
	}

	grant := ports.IdentityGrant{Token: payload.Token}
	if payload.User != nil {
		for _, linked := range payload.User.LinkedAccounts {
			grant.LinkedAccounts = append(grant.LinkedAccounts, ports.LinkedAccount{Type: linked.Type, Name: linked.Name})
		}
	}

	return grant, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	operation := "siwe " + strings.TrimPrefix(path, "siwe/")

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(c.requestHeaders()).
		SetBody(body).
		Post(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	if err := httpclient.CheckResponse(operation, resp); err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}

	return nil
}

func (c *Client) requestHeaders() map[string]string {
	origin := strings.TrimSuffix(c.headers.Origin, "/")
	headers := map[string]string{
		"Content-Type": "application/json",
		"privy-app-id": c.headers.AppID,
		"privy-ca-id":  c.headers.CAID,
		"privy-client": c.headers.Client,
		"User-Agent":   c.headers.UserAgent,
		"Origin":       origin,
		"Referer":      origin + "/",
	}
	for key, value := range headers {
		if value == "" || value == "/" {
			delete(headers, key)
		}
	}
	return headers
}
