// Package ledgerservice manages business logic layer of account transactions.
//
// Every balance change runs in a single unit of work that holds the account
// row lock, so operations on one account are serialized while different
// accounts proceed in parallel. Attempts that pass validation but fail to
// persist are recorded as FAIL transactions.
package ledgerservice

import (
	"context"
	"time"

	"github.com/go-petr/pet-account/internal/domain"
	"github.com/go-petr/pet-account/internal/store"
	"github.com/go-petr/pet-account/pkg/clockpkg"
	"github.com/rs/zerolog"
)

// Cache keeps transactions by transaction id. Transactions are immutable,
// so cached entries never go stale.
//
//go:generate mockgen -source service.go -destination service_mock.go -package ledgerservice
type Cache interface {
	Get(ctx context.Context, transactionID string) (domain.Transaction, bool, error)
	Set(ctx context.Context, t domain.Transaction) error
}

// Service facilitates transaction service layer logic.
type Service struct {
	store store.Store
	cache Cache
	clock clockpkg.Clock
}

// New returns ledger service struct to manage transaction bussines logic.
func New(st store.Store, cache Cache, clk clockpkg.Clock) *Service {
	return &Service{
		store: st,
		cache: cache,
		clock: clk,
	}
}

// Use debits amount from the user's account and records a successful USE transaction.
func (s *Service) Use(ctx context.Context, userID int64, accountNumber string, amount int64) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	if amount <= 0 {
		l.Info().Int64("amount", amount).Msg("non-positive amount")
		return domain.Transaction{}, domain.ErrInvalidAmount
	}

	var (
		created domain.Transaction
		matched bool
	)

	err := s.store.ExecTx(ctx, func(q store.Querier) error {
		if _, err := q.GetUser(ctx, userID); err != nil {
			return err
		}

		acc, err := q.GetAccountByNumberForUpdate(ctx, accountNumber)
		if err != nil {
			return err
		}

		switch {
		case acc.UserID != userID:
			return domain.ErrOwnerMismatch
		case acc.Status == domain.AccountStatusUnregistered:
			return domain.ErrAccountClosed
		case amount > acc.Balance:
			return domain.ErrAmountExceedsBalance
		}

		matched = true

		acc.Balance -= amount

		acc, err = q.UpdateAccount(ctx, acc)
		if err != nil {
			return err
		}

		created, err = q.CreateTransaction(ctx, domain.Transaction{
			TransactionID:   domain.NewTransactionID(),
			AccountID:       acc.ID,
			Type:            domain.TransactionTypeUse,
			Result:          domain.TransactionResultSuccess,
			Amount:          amount,
			BalanceSnapshot: acc.Balance,
			TransactedAt:    s.clock.Now(),
		})

		return err
	})
	if err != nil {
		if matched {
			if _, ferr := s.RecordFailedUse(ctx, accountNumber, amount); ferr != nil {
				l.Error().Err(ferr).Str("account_number", accountNumber).Msg("cannot record failed use")
			}
		}

		return domain.Transaction{}, err
	}

	s.remember(ctx, created)

	return created, nil
}

// RecordFailedUse records a USE attempt that could not be completed.
// The snapshot is the current account balance.
func (s *Service) RecordFailedUse(ctx context.Context, accountNumber string, amount int64) (domain.Transaction, error) {
	return s.recordFailure(ctx, domain.TransactionTypeUse, accountNumber, amount)
}

// Cancel reverses a successful USE transaction in full and credits the account back.
// The original transaction is left untouched.
func (s *Service) Cancel(ctx context.Context, transactionID, accountNumber string, amount int64) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	if amount <= 0 {
		l.Info().Int64("amount", amount).Msg("non-positive amount")
		return domain.Transaction{}, domain.ErrInvalidAmount
	}

	var (
		created domain.Transaction
		matched bool
	)

	err := s.store.ExecTx(ctx, func(q store.Querier) error {
		original, err := q.GetTransaction(ctx, transactionID)
		if err != nil {
			return err
		}

		acc, err := q.GetAccountByNumberForUpdate(ctx, accountNumber)
		if err != nil {
			return err
		}

		now := s.clock.Now()

		switch {
		case original.AccountID != acc.ID:
			return domain.ErrTransactionAccountMismatch
		case original.Amount != amount:
			return domain.ErrCancelMustBeFull
		case original.TransactedAt.Before(yearBefore(now)):
			return domain.ErrTooOldToCancel
		case original.Type != domain.TransactionTypeUse || original.Result != domain.TransactionResultSuccess:
			return domain.ErrTransactionNotCancelable
		case acc.Status == domain.AccountStatusUnregistered:
			return domain.ErrAccountClosed
		}

		matched = true

		acc.Balance += amount

		acc, err = q.UpdateAccount(ctx, acc)
		if err != nil {
			return err
		}

		created, err = q.CreateTransaction(ctx, domain.Transaction{
			TransactionID:   domain.NewTransactionID(),
			AccountID:       acc.ID,
			Type:            domain.TransactionTypeCancel,
			Result:          domain.TransactionResultSuccess,
			Amount:          amount,
			BalanceSnapshot: acc.Balance,
			TransactedAt:    now,
		})

		return err
	})
	if err != nil {
		if matched {
			if _, ferr := s.RecordFailedCancel(ctx, accountNumber, amount); ferr != nil {
				l.Error().Err(ferr).Str("account_number", accountNumber).Msg("cannot record failed cancel")
			}
		}

		return domain.Transaction{}, err
	}

	s.remember(ctx, created)

	return created, nil
}

// RecordFailedCancel records a CANCEL attempt that could not be completed.
func (s *Service) RecordFailedCancel(ctx context.Context, accountNumber string, amount int64) (domain.Transaction, error) {
	return s.recordFailure(ctx, domain.TransactionTypeCancel, accountNumber, amount)
}

func (s *Service) recordFailure(ctx context.Context, typ domain.TransactionType, accountNumber string, amount int64) (domain.Transaction, error) {
	acc, err := s.store.GetAccountByNumber(ctx, accountNumber)
	if err != nil {
		return domain.Transaction{}, err
	}

	created, err := s.store.CreateTransaction(ctx, domain.Transaction{
		TransactionID:   domain.NewTransactionID(),
		AccountID:       acc.ID,
		Type:            typ,
		Result:          domain.TransactionResultFail,
		Amount:          amount,
		BalanceSnapshot: acc.Balance,
		TransactedAt:    s.clock.Now(),
	})
	if err != nil {
		return domain.Transaction{}, err
	}

	s.remember(ctx, created)

	return created, nil
}

// Query returns the transaction with the given id.
func (s *Service) Query(ctx context.Context, transactionID string) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	cached, ok, err := s.cache.Get(ctx, transactionID)
	if err != nil {
		l.Warn().Err(err).Str("transaction_id", transactionID).Msg("transaction cache read failed")
	}

	if ok {
		return cached, nil
	}

	t, err := s.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return domain.Transaction{}, err
	}

	s.remember(ctx, t)

	return t, nil
}

// yearBefore returns the same wall time one calendar year before t.
// A day missing in that year is clamped to the last day of the month, so Feb 29 maps to Feb 28.
func yearBefore(t time.Time) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	if last := time.Date(y-1, m+1, 0, 0, 0, 0, 0, t.Location()).Day(); d > last {
		d = last
	}

	return time.Date(y-1, m, d, hh, mm, ss, t.Nanosecond(), t.Location())
}

func (s *Service) remember(ctx context.Context, t domain.Transaction) {
	if err := s.cache.Set(ctx, t); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("transaction_id", t.TransactionID).Msg("transaction cache write failed")
	}
}
