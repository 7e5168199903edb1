package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TransactionType is the kind of balance change.
type TransactionType string

// Transaction types.
const (
	TransactionTypeUse    TransactionType = "USE"
	TransactionTypeCancel TransactionType = "CANCEL"
)

// TransactionResult tells whether the attempt succeeded.
type TransactionResult string

// Transaction results.
const (
	TransactionResultSuccess TransactionResult = "SUCCESS"
	TransactionResultFail    TransactionResult = "FAIL"
)

// Transaction is an immutable record of one balance-affecting event.
//
// BalanceSnapshot is the balance after the event was applied, or the balance
// at the time of the attempt for FAIL records. AccountNumber is resolved from
// the referenced account and is not stored with the record.
type Transaction struct {
	ID              int64             `json:"-"`
	TransactionID   string            `json:"transaction_id"`
	AccountID       int64             `json:"account_id"`
	AccountNumber   string            `json:"account_number"`
	Type            TransactionType   `json:"transaction_type"`
	Result          TransactionResult `json:"transaction_result"`
	Amount          int64             `json:"amount"`
	BalanceSnapshot int64             `json:"balance_snapshot"`
	TransactedAt    time.Time         `json:"transacted_at"`
}

// NewTransactionID returns a fresh opaque transaction token.
func NewTransactionID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
