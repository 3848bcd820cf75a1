package dto

import (
	"metagen/internal/entity/common"
	"time"
)

// CreditTransactionQuery supports paginating a user's ledger.
type CreditTransactionQuery struct {
	common.BaseParams
	UserID string `json:"-" form:"-" query:"-"`
}

// CreditTransactionItem is a single ledger entry.
type CreditTransactionItem struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id,omitempty"`
	Amount    int64     `json:"amount"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// CreditsResponse reports a balance together with recent ledger entries.
type CreditsResponse struct {
	UserID       string                  `json:"user_id"`
	Balance      int64                   `json:"balance"`
	Transactions []CreditTransactionItem `json:"transactions"`
	Meta         *common.Meta            `json:"meta"`
}
