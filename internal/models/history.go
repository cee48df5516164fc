package models

// TransferRecord is one row of the local history log: demo transfers plus
// settled/failed workflow outcomes. Append-only; read wholesale, newest
// first.
type TransferRecord struct {
	// ID is the unique identifier for the record.
	ID int64 `json:"id" gorm:"column:id;primaryKey;autoIncrement"`
	// Account is the connected account the record belongs to.
	Account string `json:"account" gorm:"column:account;index"`
	// Kind is the workflow kind, or "transfer" for demo transfers.
	Kind string `json:"kind" gorm:"column:kind"`
	// ServiceName is the display name of the service involved, if any.
	ServiceName string `json:"service_name" gorm:"column:service_name"`
	// TokenID is the token involved, empty when not applicable.
	TokenID string `json:"token_id" gorm:"column:token_id"`
	// Amount is the stable-token amount in minor units, empty when not
	// applicable.
	Amount string `json:"amount" gorm:"column:amount"`
	// Status is completed, failed or pending.
	Status string `json:"status" gorm:"column:status"`
	// ToAddress is the counterparty for transfers and market buys.
	ToAddress string `json:"to_address" gorm:"column:to_address"`
	// TxHash is the confirming transaction, empty for local-only records.
	TxHash string `json:"tx_hash" gorm:"column:tx_hash"`
	// CreatedAt is the Unix timestamp when the record was written.
	CreatedAt int64 `json:"created_at" gorm:"column:created_at;index"`
}

const (
	RecordStatusCompleted = "completed"
	RecordStatusFailed    = "failed"
	RecordStatusPending   = "pending"
)

// HistoryRepository persists the transfer/settlement log.
type HistoryRepository interface {
	SaveRecord(record *TransferRecord) error
	// ListRecords returns up to limit records for the account, newest
	// first. An empty account returns records for every account.
	ListRecords(account string, limit int) ([]*TransferRecord, error)
	Close() error
}
