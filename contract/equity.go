// Package contract wraps the equity-token contract ABI in typed calls.
package contract

import (
	"context"
	"fmt"

	"github.com/stellar/go/xdr"

	"github.com/stellark/stellark-go/models"
	"github.com/stellark/stellark-go/scval"
	"github.com/stellark/stellark-go/soroban"
)

// EquityToken invokes one deployed equity-token contract instance. Payment
// legs (mint, transfer_with_payment) move XLM through the network's native
// asset contract, whose address is fixed per network.
type EquityToken struct {
	client   *soroban.Client
	address  string
	xlmToken string
}

func NewEquityToken(client *soroban.Client, contractAddress, xlmTokenAddress string) (*EquityToken, error) {
	if _, err := scval.ScAddressFromString(contractAddress); err != nil {
		return nil, err
	}
	if _, err := scval.ScAddressFromString(xlmTokenAddress); err != nil {
		return nil, fmt.Errorf("xlm token: %w", err)
	}
	return &EquityToken{client: client, address: contractAddress, xlmToken: xlmTokenAddress}, nil
}

func (e *EquityToken) Address() string { return e.address }

// InitCompanyParams carries the one-time company initialization arguments.
// Prices and the target amount are human-facing XLM figures; they are
// floored to base units on encoding.
type InitCompanyParams struct {
	Name          string
	Symbol        string
	TotalSupply   int64
	Owner         string
	EquityPercent int64
	Description   string
	TokenPrice    float64
	TargetAmount  float64
}

func (e *EquityToken) InitCompany(ctx context.Context, signer soroban.Signer, p InitCompanyParams) error {
	owner, err := scval.Address(p.Owner)
	if err != nil {
		return err
	}
	_, err = e.client.Invoke(ctx, soroban.InvokeRequest{
		ContractAddress: e.address,
		Method:          "init_company",
		Args: []xdr.ScVal{
			scval.String(p.Name),
			scval.String(p.Symbol),
			scval.I128(p.TotalSupply),
			owner,
			scval.I128(p.EquityPercent),
			scval.String(p.Description),
			scval.Amount(p.TokenPrice),
			scval.Amount(p.TargetAmount),
		},
		Signer: signer,
	})
	return err
}

// Mint buys amount tokens from the company owner's allocation. The buyer is
// the signer; the contract debits the payment in XLM and credits the tokens.
func (e *EquityToken) Mint(ctx context.Context, signer soroban.Signer, amount int64) error {
	buyer, err := scval.Address(signer.Address())
	if err != nil {
		return err
	}
	xlm, err := scval.Address(e.xlmToken)
	if err != nil {
		return err
	}
	_, err = e.client.Invoke(ctx, soroban.InvokeRequest{
		ContractAddress: e.address,
		Method:          "mint",
		Args:            []xdr.ScVal{buyer, scval.I128(amount), xlm},
		Signer:          signer,
	})
	return err
}

// Transfer moves tokens without a payment leg. The sender is the signer.
func (e *EquityToken) Transfer(ctx context.Context, signer soroban.Signer, to string, amount int64) error {
	from, err := scval.Address(signer.Address())
	if err != nil {
		return err
	}
	dest, err := scval.Address(to)
	if err != nil {
		return err
	}
	_, err = e.client.Invoke(ctx, soroban.InvokeRequest{
		ContractAddress: e.address,
		Method:          "transfer",
		Args:            []xdr.ScVal{from, dest, scval.I128(amount)},
		Signer:          signer,
	})
	return err
}

// TransferWithPayment settles a resale: the buyer (signer) pays the seller
// pricePerToken XLM per token and receives the tokens atomically.
func (e *EquityToken) TransferWithPayment(ctx context.Context, signer soroban.Signer, seller string, amount int64, pricePerToken float64) error {
	from, err := scval.Address(seller)
	if err != nil {
		return err
	}
	buyer, err := scval.Address(signer.Address())
	if err != nil {
		return err
	}
	xlm, err := scval.Address(e.xlmToken)
	if err != nil {
		return err
	}
	_, err = e.client.Invoke(ctx, soroban.InvokeRequest{
		ContractAddress: e.address,
		Method:          "transfer_with_payment",
		Args:            []xdr.ScVal{from, buyer, scval.I128(amount), scval.Amount(pricePerToken), xlm},
		Signer:          signer,
	})
	return err
}

// Burn destroys tokens and shrinks total supply. The owner may burn from any
// holder; holders burn their own.
func (e *EquityToken) Burn(ctx context.Context, signer soroban.Signer, from string, amount int64) error {
	holder, err := scval.Address(from)
	if err != nil {
		return err
	}
	_, err = e.client.Invoke(ctx, soroban.InvokeRequest{
		ContractAddress: e.address,
		Method:          "burn",
		Args:            []xdr.ScVal{holder, scval.I128(amount)},
		Signer:          signer,
	})
	return err
}

// BalanceOf reads a holder's token balance via simulation only.
func (e *EquityToken) BalanceOf(ctx context.Context, holder string) (int64, error) {
	addr, err := scval.Address(holder)
	if err != nil {
		return 0, err
	}
	value, err := e.client.SimulateRead(ctx, e.address, "balance_of", []xdr.ScVal{addr})
	if err != nil {
		return 0, err
	}
	return scval.DecodeI128ToInt64(value)
}

// GetCompanyInfo reads the contract's company_info entry. The ledger is the
// source of truth for supply and ownership; nothing here is cached.
func (e *EquityToken) GetCompanyInfo(ctx context.Context) (models.CompanyOnChainInfo, error) {
	var info models.CompanyOnChainInfo

	value, err := e.client.SimulateRead(ctx, e.address, "get_company_info", nil)
	if err != nil {
		return info, err
	}
	m, ok := value.GetMap()
	if !ok || m == nil {
		return info, fmt.Errorf("unexpected company info type %s, want map", value.Type)
	}
	return decodeCompanyInfo(*m)
}

func decodeCompanyInfo(m xdr.ScMap) (models.CompanyOnChainInfo, error) {
	var info models.CompanyOnChainInfo
	var err error

	if info.Name, err = mapString(m, "name"); err != nil {
		return info, err
	}
	if info.Symbol, err = mapString(m, "symbol"); err != nil {
		return info, err
	}
	if info.TotalSupply, err = mapInt64(m, "total_supply"); err != nil {
		return info, err
	}
	if info.Owner, err = mapAddress(m, "owner"); err != nil {
		return info, err
	}
	if info.EquityPercent, err = mapInt64(m, "equity_percent"); err != nil {
		return info, err
	}
	if info.Description, err = mapString(m, "description"); err != nil {
		return info, err
	}
	if info.TokenPrice, err = mapAmount(m, "token_price"); err != nil {
		return info, err
	}
	if info.TargetAmount, err = mapAmount(m, "target_amount"); err != nil {
		return info, err
	}
	return info, nil
}

func mapValue(m xdr.ScMap, key string) (xdr.ScVal, error) {
	v, found := scval.MapField(m, key)
	if !found {
		return xdr.ScVal{}, fmt.Errorf("company info missing field %q", key)
	}
	return v, nil
}

func mapString(m xdr.ScMap, key string) (string, error) {
	v, err := mapValue(m, key)
	if err != nil {
		return "", err
	}
	s, err := scval.DecodeString(v)
	if err != nil {
		return "", fmt.Errorf("company info field %q: %w", key, err)
	}
	return s, nil
}

func mapAddress(m xdr.ScMap, key string) (string, error) {
	v, err := mapValue(m, key)
	if err != nil {
		return "", err
	}
	s, err := scval.DecodeAddress(v)
	if err != nil {
		return "", fmt.Errorf("company info field %q: %w", key, err)
	}
	return s, nil
}

func mapInt64(m xdr.ScMap, key string) (int64, error) {
	v, err := mapValue(m, key)
	if err != nil {
		return 0, err
	}
	n, err := scval.DecodeI128ToInt64(v)
	if err != nil {
		return 0, fmt.Errorf("company info field %q: %w", key, err)
	}
	return n, nil
}

func mapAmount(m xdr.ScMap, key string) (float64, error) {
	v, err := mapValue(m, key)
	if err != nil {
		return 0, err
	}
	parts, ok := v.GetI128()
	if !ok {
		return 0, fmt.Errorf("company info field %q: unexpected type %s", key, v.Type)
	}
	return scval.I128ToDecimalFloat(parts, 7), nil
}
