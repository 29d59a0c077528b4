package models

// TxStatus is the ledger-reported status of a submitted transaction.
type TxStatus string

const (
	TxStatusPending  TxStatus = "PENDING"
	TxStatusSuccess  TxStatus = "SUCCESS"
	TxStatusFailed   TxStatus = "FAILED"
	TxStatusNotFound TxStatus = "NOT_FOUND"
)

// PendingTransaction exists only for the duration of one orchestrated call.
type PendingTransaction struct {
	Hash   string   `json:"hash"`
	Status TxStatus `json:"status"`
}

// NetworkConfig is the static deployment info served to the frontend.
type NetworkConfig struct {
	NetworkPassphrase string `json:"network_passphrase"`
	RPCURL            string `json:"rpc_url"`
	HorizonURL        string `json:"horizon_url"`
	XLMTokenAddress   string `json:"xlm_token_address"`
	ContractID        string `json:"contract_id,omitempty"`
}
