package soroban

import (
	"context"
	"fmt"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
)

// Signer produces a signature over an assembled transaction envelope.
// In the browser flow this is backed by a wallet extension; server-side
// flows use KeypairSigner. Implementations return ErrSigningDeclined when
// the key holder refuses to sign; Invoke passes that through unwrapped, so
// callers can distinguish a refusal from a signing failure.
type Signer interface {
	Address() string
	SignTransaction(ctx context.Context, envelopeXDR, networkPassphrase string) (string, error)
}

// KeypairSigner signs with a locally held ed25519 secret seed.
type KeypairSigner struct {
	kp *keypair.Full
}

func NewKeypairSigner(secretSeed string) (*KeypairSigner, error) {
	kp, err := keypair.ParseFull(secretSeed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigningUnavailable, err)
	}
	return &KeypairSigner{kp: kp}, nil
}

func (s *KeypairSigner) Address() string {
	return s.kp.Address()
}

func (s *KeypairSigner) SignTransaction(_ context.Context, envelopeXDR, networkPassphrase string) (string, error) {
	generic, err := txnbuild.TransactionFromXDR(envelopeXDR)
	if err != nil {
		return "", fmt.Errorf("failed to parse envelope: %w", err)
	}
	tx, ok := generic.Transaction()
	if !ok {
		return "", fmt.Errorf("envelope is not a simple transaction")
	}
	signed, err := tx.Sign(networkPassphrase, s.kp)
	if err != nil {
		return "", fmt.Errorf("failed to sign envelope: %w", err)
	}
	return signed.Base64()
}
