package domain

import (
	"strconv"
	"time"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

// Account statuses. The only allowed transition is IN_USE -> UNREGISTERED.
const (
	AccountStatusInUse        AccountStatus = "IN_USE"
	AccountStatusUnregistered AccountStatus = "UNREGISTERED"
)

const (
	// MaxAccountsPerUser is the cap on accounts a user can ever open, closed ones included.
	MaxAccountsPerUser = 10
	// FirstAccountNumber is assigned when no account exists yet.
	FirstAccountNumber = "1000000000"
)

// Account holds user balance in the smallest currency unit.
type Account struct {
	ID             int64         `json:"id"`
	UserID         int64         `json:"user_id"`
	Number         string        `json:"account_number"`
	Balance        int64         `json:"balance"`
	Status         AccountStatus `json:"status"`
	RegisteredAt   time.Time     `json:"registered_at"`
	UnregisteredAt *time.Time    `json:"unregistered_at,omitempty"`
}

// CreateAccountParams is the input data to persist a new account.
type CreateAccountParams struct {
	UserID       int64
	Number       string
	Balance      int64
	Status       AccountStatus
	RegisteredAt time.Time
}

// IsValidAccountNumber reports whether n is a non-empty string of decimal digits.
func IsValidAccountNumber(n string) bool {
	if n == "" {
		return false
	}

	for _, c := range n {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

// NextAccountNumber returns the number following highest, keeping its width.
func NextAccountNumber(highest string) (string, error) {
	if !IsValidAccountNumber(highest) {
		return "", strconv.ErrSyntax
	}

	n, err := strconv.ParseUint(highest, 10, 64)
	if err != nil {
		return "", err
	}

	next := strconv.FormatUint(n+1, 10)
	for len(next) < len(highest) {
		next = "0" + next
	}

	return next, nil
}
