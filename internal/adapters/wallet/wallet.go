package wallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/bnema/campaign-checkin-cli/internal/domain"
	"github.com/bnema/campaign-checkin-cli/internal/ports"
	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Wallet signs with a secp256k1 key the way personal_sign does.
type Wallet struct {
	key     *ecdsa.PrivateKey
	address string
}

var _ ports.Signer = (*Wallet)(nil)

func New(key domain.PrivateKey) (*Wallet, error) {
	privateKey, err := crypto.HexToECDSA(key.Reveal())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPrivateKey, err)
	}

	return &Wallet{
		key:     privateKey,
		address: crypto.PubkeyToAddress(privateKey.PublicKey).Hex(),
	}, nil
}

// Address is the EIP-55 checksummed address.
func (w *Wallet) Address() string {
	return w.address
}

func (w *Wallet) SignMessage(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	signature, err := crypto.Sign(accounts.TextHash([]byte(message)), w.key)
	if err != nil {
		return "", fmt.Errorf("sign message: %w", err)
	}
	signature[crypto.RecoveryIDOffset] += 27

	return hexutil.Encode(signature), nil
}
