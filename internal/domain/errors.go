package domain

import "errors"

var (
	ErrNoAccounts          = errors.New("no private keys configured")
	ErrInvalidPrivateKey   = errors.New("invalid private key")
	ErrAuthentication      = errors.New("authentication failed")
	ErrCampaignUnavailable = errors.New("campaign data not found")
	ErrReportNotFound      = errors.New("report not found")
)
