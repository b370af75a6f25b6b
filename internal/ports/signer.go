package ports

import "context"

// Signer holds one account's key and signs login challenges with it.
type Signer interface {
	Address() string
	SignMessage(ctx context.Context, message string) (string, error)
}
