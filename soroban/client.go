package soroban

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/stellar/go/clients/horizonclient"
	rpcclient "github.com/stellar/go/clients/rpcclient"
	"github.com/stellar/go/protocols/horizon"
)

// Options configures a ledger Client. Zero durations and fees fall back to
// the defaults below.
type Options struct {
	RPCURL            string
	HorizonURL        string
	NetworkPassphrase string
	RequestTimeout    time.Duration
	PollInterval      time.Duration
	MaxConfirmWait    time.Duration
	BaseFee           int64
}

const (
	defaultRequestTimeout = 10 * time.Second
	defaultPollInterval   = 1 * time.Second
	defaultMaxConfirmWait = 60 * time.Second
	defaultBaseFee        = 100

	// txValidity bounds the envelope's time window.
	txValidity = 30
)

// Client talks to a Soroban RPC node and its companion Horizon instance.
// It holds no per-transaction state; every orchestrated call is independent.
type Client struct {
	opts    Options
	http    *http.Client
	horizon *horizonclient.Client
	log     zerolog.Logger
}

func NewClient(opts Options, log zerolog.Logger) *Client {
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.MaxConfirmWait == 0 {
		opts.MaxConfirmWait = defaultMaxConfirmWait
	}
	if opts.BaseFee == 0 {
		opts.BaseFee = defaultBaseFee
	}
	return &Client{
		opts:    opts,
		http:    &http.Client{Timeout: opts.RequestTimeout},
		horizon: &horizonclient.Client{HorizonURL: opts.HorizonURL},
		log:     log.With().Str("component", "soroban").Logger(),
	}
}

func (c *Client) NetworkPassphrase() string { return c.opts.NetworkPassphrase }

// Health probes the RPC node and returns its latest ledger sequence.
func (c *Client) Health(ctx context.Context) (uint32, error) {
	rpc := rpcclient.NewClient(c.opts.RPCURL, nil)
	health, err := rpc.GetHealth(ctx)
	if err != nil {
		return 0, fmt.Errorf("rpc health check failed: %w", err)
	}
	return health.LatestLedger, nil
}

// AccountDetail resolves the current ledger entry for an account, including
// its sequence number and balances.
func (c *Client) AccountDetail(accountID string) (horizon.Account, error) {
	account, err := c.horizon.AccountDetail(horizonclient.AccountRequest{AccountID: accountID})
	if err != nil {
		if horizonclient.IsNotFoundError(err) {
			return horizon.Account{}, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
		}
		return horizon.Account{}, fmt.Errorf("account lookup failed: %w", err)
	}
	return account, nil
}

// --- JSON-RPC plumbing ---

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *Client) rpcCall(ctx context.Context, method string, params, result any) error {
	request := map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	}

	requestBody, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.opts.RPCURL, bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var envelope struct {
		Result json.RawMessage `json:"result,omitempty"`
		Error  *rpcError       `json:"error,omitempty"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", method, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("RPC error from %s: %s", method, envelope.Error.Message)
	}
	if err := json.Unmarshal(envelope.Result, result); err != nil {
		return fmt.Errorf("failed to unmarshal %s result: %w", method, err)
	}
	return nil
}

type simulateResult struct {
	Error           string `json:"error,omitempty"`
	TransactionData string `json:"transactionData"`
	MinResourceFee  string `json:"minResourceFee"`
	Results         []struct {
		XDR  string   `json:"xdr"`
		Auth []string `json:"auth"`
	} `json:"results"`
	LatestLedger uint32 `json:"latestLedger"`
}

func (c *Client) simulateTransaction(ctx context.Context, envelopeXDR string) (*simulateResult, error) {
	var result simulateResult
	params := map[string]any{"transaction": envelopeXDR}
	if err := c.rpcCall(ctx, "simulateTransaction", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type sendResult struct {
	Status         string `json:"status"`
	Hash           string `json:"hash"`
	ErrorResultXdr string `json:"errorResultXdr,omitempty"`
	LatestLedger   uint32 `json:"latestLedger"`
}

func (c *Client) sendTransaction(ctx context.Context, envelopeXDR string) (*sendResult, error) {
	var result sendResult
	params := map[string]any{"transaction": envelopeXDR}
	if err := c.rpcCall(ctx, "sendTransaction", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type getTransactionResult struct {
	Status        string `json:"status"`
	ResultXdr     string `json:"resultXdr,omitempty"`
	ResultMetaXdr string `json:"resultMetaXdr,omitempty"`
	Ledger        uint32 `json:"ledger,omitempty"`
}

func (c *Client) getTransaction(ctx context.Context, hash string) (*getTransactionResult, error) {
	var result getTransactionResult
	params := map[string]any{"hash": hash}
	if err := c.rpcCall(ctx, "getTransaction", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
