package domain

import "github.com/go-petr/pet-account/pkg/errorspkg"

// Failure codes reported to clients.
const (
	CodeInvalidRequest             errorspkg.Code = "INVALID_REQUEST"
	CodeUserNotFound               errorspkg.Code = "USER_NOT_FOUND"
	CodeAccountNotFound            errorspkg.Code = "ACCOUNT_NOT_FOUND"
	CodeTransactionNotFound        errorspkg.Code = "TRANSACTION_NOT_FOUND"
	CodeAccountLimitExceeded       errorspkg.Code = "MAX_ACCOUNT_PER_USER_10"
	CodeOwnerMismatch              errorspkg.Code = "USER_ACCOUNT_UN_MATCH"
	CodeAlreadyClosed              errorspkg.Code = "ACCOUNT_ALREADY_UNREGISTERED"
	CodeBalanceNotEmpty            errorspkg.Code = "BALANCE_NOT_EMPTY"
	CodeAccountClosed              errorspkg.Code = "ACCOUNT_UNREGISTERED"
	CodeAmountExceedsBalance       errorspkg.Code = "AMOUNT_EXCEED_BALANCE"
	CodeTransactionAccountMismatch errorspkg.Code = "TRANSACTION_ACCOUNT_UN_MATCH"
	CodeCancelMustBeFull           errorspkg.Code = "CANCEL_MUST_FULLY"
	CodeTooOldToCancel             errorspkg.Code = "TOO_OLD_ORDER_TO_CANCEL"
	CodeTransactionNotCancelable   errorspkg.Code = "TRANSACTION_NOT_CANCELABLE"
)

var (
	// ErrInvalidAmount indicates a non-positive amount or a negative initial balance.
	ErrInvalidAmount = errorspkg.New(CodeInvalidRequest, "invalid amount")
	// ErrUserNotFound indicates that the user is not found.
	ErrUserNotFound = errorspkg.New(CodeUserNotFound, "user not found")
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errorspkg.New(CodeAccountNotFound, "account not found")
	// ErrTransactionNotFound indicates that the transaction is not found.
	ErrTransactionNotFound = errorspkg.New(CodeTransactionNotFound, "transaction not found")
	// ErrAccountLimitExceeded indicates that the user already owns the maximum number of accounts.
	ErrAccountLimitExceeded = errorspkg.New(CodeAccountLimitExceeded, "user cannot own more than 10 accounts")
	// ErrOwnerMismatch indicates that the account is owned by another user.
	ErrOwnerMismatch = errorspkg.New(CodeOwnerMismatch, "account is not owned by the user")
	// ErrAlreadyClosed indicates that the account is already unregistered.
	ErrAlreadyClosed = errorspkg.New(CodeAlreadyClosed, "account is already unregistered")
	// ErrBalanceNotEmpty indicates that an account with money on it cannot be closed.
	ErrBalanceNotEmpty = errorspkg.New(CodeBalanceNotEmpty, "account balance is not empty")
	// ErrAccountClosed indicates that the unregistered account cannot take transactions.
	ErrAccountClosed = errorspkg.New(CodeAccountClosed, "account is unregistered")
	// ErrAmountExceedsBalance indicates that the account does not have sufficient balance.
	ErrAmountExceedsBalance = errorspkg.New(CodeAmountExceedsBalance, "amount exceeds balance")
	// ErrTransactionAccountMismatch indicates that the transaction was made on another account.
	ErrTransactionAccountMismatch = errorspkg.New(CodeTransactionAccountMismatch, "transaction does not belong to the account")
	// ErrCancelMustBeFull indicates an attempt of partial cancellation.
	ErrCancelMustBeFull = errorspkg.New(CodeCancelMustBeFull, "transaction must be cancelled in full")
	// ErrTooOldToCancel indicates that the transaction is older than one year.
	ErrTooOldToCancel = errorspkg.New(CodeTooOldToCancel, "transaction is too old to cancel")
	// ErrTransactionNotCancelable indicates that only successful use transactions can be cancelled.
	ErrTransactionNotCancelable = errorspkg.New(CodeTransactionNotCancelable, "only successful use transactions can be cancelled")
)
