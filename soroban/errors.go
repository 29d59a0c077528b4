package soroban

import (
	"errors"
	"fmt"

	"github.com/stellark/stellark-go/models"
)

var (
	// ErrAccountNotFound means the signer address has no funded ledger entry.
	ErrAccountNotFound = errors.New("account not found on ledger")

	// ErrSigningDeclined means the signer refused to sign the envelope.
	ErrSigningDeclined = errors.New("signing declined")

	// ErrSigningUnavailable means no signer is reachable for the request.
	ErrSigningUnavailable = errors.New("signer unavailable")

	// ErrConfirmTimeout means the confirmation poll gave up before the
	// ledger reported a terminal status. The transaction may still be
	// applied asynchronously; it cannot be recalled.
	ErrConfirmTimeout = errors.New("transaction confirmation timed out")
)

// SimulationError carries the network's diagnostic for a failed dry-run.
// It short-circuits the flow before any signing request is issued.
type SimulationError struct {
	Diagnostic string
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("simulation error: %s", e.Diagnostic)
}

// SubmissionError is an immediate non-pending rejection from sendTransaction.
type SubmissionError struct {
	Status     string
	Diagnostic string
}

func (e *SubmissionError) Error() string {
	if e.Diagnostic == "" {
		return fmt.Sprintf("submission failed with status %s", e.Status)
	}
	return fmt.Sprintf("submission failed with status %s: %s", e.Status, e.Diagnostic)
}

// TransactionError is a terminal non-success status observed while polling.
type TransactionError struct {
	Hash   string
	Status models.TxStatus
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s ended with status %s", e.Hash, e.Status)
}
