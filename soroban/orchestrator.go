package soroban

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"

	"github.com/stellark/stellark-go/models"
	"github.com/stellark/stellark-go/scval"
)

// dummyAccountAddress sources read-only simulations; it needs no funding
// because the envelope is never submitted.
const dummyAccountAddress = "GAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAWHF"

// InvokeRequest describes a single state-changing contract call.
type InvokeRequest struct {
	ContractAddress string
	Method          string
	Args            []xdr.ScVal
	Signer          Signer
}

// Invoke runs one contract call through the full protocol: account fetch,
// build, simulate, assemble, sign, submit, confirm. Simulation happens
// before signing so a signer is never asked to approve an envelope the
// network already rejects. The returned value is the method's decoded
// return value, nil for void methods.
func (c *Client) Invoke(ctx context.Context, req InvokeRequest) (*xdr.ScVal, error) {
	if req.Signer == nil {
		return nil, ErrSigningUnavailable
	}
	signerAddress := req.Signer.Address()

	account, err := c.AccountDetail(signerAddress)
	if err != nil {
		return nil, err
	}
	sequence, err := account.GetSequenceNumber()
	if err != nil {
		return nil, fmt.Errorf("failed to read account sequence: %w", err)
	}

	tx, err := c.buildInvokeTx(signerAddress, sequence, req, nil, xdr.TransactionExt{}, c.opts.BaseFee)
	if err != nil {
		return nil, err
	}
	envelopeXDR, err := tx.Base64()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	sim, err := c.simulateTransaction(ctx, envelopeXDR)
	if err != nil {
		return nil, err
	}
	if sim.Error != "" {
		return nil, &SimulationError{Diagnostic: sim.Error}
	}

	assembledXDR, err := c.assemble(signerAddress, sequence, req, sim)
	if err != nil {
		return nil, err
	}

	signedXDR, err := req.Signer.SignTransaction(ctx, assembledXDR, c.opts.NetworkPassphrase)
	if err != nil {
		return nil, err
	}

	sent, err := c.sendTransaction(ctx, signedXDR)
	if err != nil {
		return nil, err
	}
	switch sent.Status {
	case "PENDING", "DUPLICATE":
		// fall through to the confirmation poll
	default:
		return nil, &SubmissionError{Status: sent.Status, Diagnostic: sent.ErrorResultXdr}
	}

	pending := models.PendingTransaction{Hash: sent.Hash, Status: models.TxStatusPending}
	c.log.Info().
		Str("hash", pending.Hash).
		Str("contract", req.ContractAddress).
		Str("method", req.Method).
		Msg("transaction submitted, awaiting confirmation")

	return c.confirm(ctx, pending)
}

// SimulateRead executes the build and simulate steps with a placeholder
// source account and returns the decoded simulated return value. Nothing is
// signed or submitted.
func (c *Client) SimulateRead(ctx context.Context, contractAddress, method string, args []xdr.ScVal) (xdr.ScVal, error) {
	req := InvokeRequest{ContractAddress: contractAddress, Method: method, Args: args}

	tx, err := c.buildInvokeTx(dummyAccountAddress, 0, req, nil, xdr.TransactionExt{}, c.opts.BaseFee)
	if err != nil {
		return xdr.ScVal{}, err
	}
	envelopeXDR, err := tx.Base64()
	if err != nil {
		return xdr.ScVal{}, fmt.Errorf("failed to marshal envelope: %w", err)
	}

	sim, err := c.simulateTransaction(ctx, envelopeXDR)
	if err != nil {
		return xdr.ScVal{}, err
	}
	if sim.Error != "" {
		return xdr.ScVal{}, &SimulationError{Diagnostic: sim.Error}
	}
	if len(sim.Results) == 0 {
		return xdr.ScVal{}, &SimulationError{Diagnostic: "no results returned"}
	}

	var value xdr.ScVal
	if err := xdr.SafeUnmarshalBase64(sim.Results[0].XDR, &value); err != nil {
		return xdr.ScVal{}, fmt.Errorf("failed to unmarshal result XDR: %w", err)
	}
	return value, nil
}

func (c *Client) buildInvokeTx(
	sourceAddress string,
	sequence int64,
	req InvokeRequest,
	auth []xdr.SorobanAuthorizationEntry,
	ext xdr.TransactionExt,
	baseFee int64,
) (*txnbuild.Transaction, error) {
	contractAddr, err := scval.ScAddressFromString(req.ContractAddress)
	if err != nil {
		return nil, err
	}

	hostFunction := xdr.HostFunction{
		Type: xdr.HostFunctionTypeHostFunctionTypeInvokeContract,
		InvokeContract: &xdr.InvokeContractArgs{
			ContractAddress: contractAddr,
			FunctionName:    xdr.ScSymbol(req.Method),
			Args:            req.Args,
		},
	}

	source := txnbuild.NewSimpleAccount(sourceAddress, sequence)
	op := &txnbuild.InvokeHostFunction{
		HostFunction:  hostFunction,
		Auth:          auth,
		SourceAccount: source.AccountID,
		Ext:           ext,
	}

	tx, err := txnbuild.NewTransaction(
		txnbuild.TransactionParams{
			SourceAccount:        &source,
			IncrementSequenceNum: true,
			Operations:           []txnbuild.Operation{op},
			BaseFee:              baseFee,
			Preconditions: txnbuild.Preconditions{
				TimeBounds: txnbuild.NewTimeout(txValidity),
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}
	return tx, nil
}

// assemble folds the simulation's resource fee, footprint and authorization
// entries back into a fresh envelope at the same sequence number.
func (c *Client) assemble(sourceAddress string, sequence int64, req InvokeRequest, sim *simulateResult) (string, error) {
	var sorobanData xdr.SorobanTransactionData
	if err := xdr.SafeUnmarshalBase64(sim.TransactionData, &sorobanData); err != nil {
		return "", fmt.Errorf("failed to unmarshal transaction data: %w", err)
	}

	minResourceFee, err := strconv.ParseInt(sim.MinResourceFee, 10, 64)
	if err != nil {
		return "", fmt.Errorf("failed to parse min resource fee %q: %w", sim.MinResourceFee, err)
	}

	var auth []xdr.SorobanAuthorizationEntry
	if len(sim.Results) > 0 {
		for _, raw := range sim.Results[0].Auth {
			var entry xdr.SorobanAuthorizationEntry
			if err := xdr.SafeUnmarshalBase64(raw, &entry); err != nil {
				return "", fmt.Errorf("failed to unmarshal auth entry: %w", err)
			}
			auth = append(auth, entry)
		}
	}

	ext := xdr.TransactionExt{V: 1, SorobanData: &sorobanData}
	tx, err := c.buildInvokeTx(sourceAddress, sequence, req, auth, ext, c.opts.BaseFee+minResourceFee)
	if err != nil {
		return "", err
	}
	return tx.Base64()
}

// confirm polls the pending transaction until it leaves NOT_FOUND, the
// caller's context is cancelled, or MaxConfirmWait elapses. Once submitted
// the transaction cannot be recalled; a timeout only stops the waiting.
func (c *Client) confirm(ctx context.Context, pending models.PendingTransaction) (*xdr.ScVal, error) {
	deadline := time.NewTimer(c.opts.MaxConfirmWait)
	defer deadline.Stop()
	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, fmt.Errorf("%w: %s still unresolved after %s", ErrConfirmTimeout, pending.Hash, c.opts.MaxConfirmWait)
		case <-ticker.C:
		}

		status, err := c.getTransaction(ctx, pending.Hash)
		if err != nil {
			return nil, err
		}
		pending.Status = models.TxStatus(status.Status)

		switch pending.Status {
		case models.TxStatusNotFound:
			continue
		case models.TxStatusSuccess:
			c.log.Info().Str("hash", pending.Hash).Str("status", string(pending.Status)).
				Msg("transaction confirmed")
			return decodeReturnValue(status.ResultMetaXdr)
		default:
			return nil, &TransactionError{Hash: pending.Hash, Status: pending.Status}
		}
	}
}

func decodeReturnValue(resultMetaXDR string) (*xdr.ScVal, error) {
	if resultMetaXDR == "" {
		return nil, nil
	}
	var meta xdr.TransactionMeta
	if err := xdr.SafeUnmarshalBase64(resultMetaXDR, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result meta: %w", err)
	}

	var value *xdr.ScVal
	switch meta.V {
	case 3:
		if meta.V3 != nil && meta.V3.SorobanMeta != nil {
			rv := meta.V3.SorobanMeta.ReturnValue
			value = &rv
		}
	case 4:
		if meta.V4 != nil && meta.V4.SorobanMeta != nil {
			value = meta.V4.SorobanMeta.ReturnValue
		}
	}
	if value == nil || value.Type == xdr.ScValTypeScvVoid {
		return nil, nil
	}
	return value, nil
}
