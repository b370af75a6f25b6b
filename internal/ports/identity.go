package ports

import "context"

type SignInRequest struct {
	Message          string
	Signature        string
	ChainID          string
	WalletClientType string
	ConnectorType    string
	Mode             string
}

type LinkedAccount struct {
	Type string
	Name string
}

type IdentityGrant struct {
	Token          string
	LinkedAccounts []LinkedAccount
}

type IdentityProvider interface {
	RequestNonce(ctx context.Context, address string) (string, error)
	Authenticate(ctx context.Context, req SignInRequest) (IdentityGrant, error)
}
