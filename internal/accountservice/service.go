// Package accountservice manages business logic layer of accounts.
package accountservice

import (
	"context"
	"errors"

	"github.com/go-petr/pet-account/internal/domain"
	"github.com/go-petr/pet-account/internal/store"
	"github.com/go-petr/pet-account/pkg/clockpkg"
	"github.com/go-petr/pet-account/pkg/errorspkg"
	"github.com/rs/zerolog"
)

// Service facilitates account service layer logic.
type Service struct {
	store store.Store
	clock clockpkg.Clock
}

// New returns account service struct to manage account bussines logic.
func New(st store.Store, clk clockpkg.Clock) *Service {
	return &Service{
		store: st,
		clock: clk,
	}
}

// Create opens an account for the user with the given initial balance.
//
// Number generation and the per-user account limit are checked under the
// account number lock, so concurrent calls never share a number and never
// exceed the limit.
func (s *Service) Create(ctx context.Context, userID, initialBalance int64) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	if initialBalance < 0 {
		l.Info().Int64("initial_balance", initialBalance).Msg("negative initial balance")
		return domain.Account{}, domain.ErrInvalidAmount
	}

	var created domain.Account

	err := s.store.ExecTx(ctx, func(q store.Querier) error {
		if _, err := q.GetUser(ctx, userID); err != nil {
			return err
		}

		if err := q.LockAccountNumbers(ctx); err != nil {
			return err
		}

		count, err := q.CountAccountsByUser(ctx, userID)
		if err != nil {
			return err
		}

		if count >= domain.MaxAccountsPerUser {
			return domain.ErrAccountLimitExceeded
		}

		number, err := nextNumber(ctx, q)
		if err != nil {
			return err
		}

		created, err = q.CreateAccount(ctx, domain.CreateAccountParams{
			UserID:       userID,
			Number:       number,
			Balance:      initialBalance,
			Status:       domain.AccountStatusInUse,
			RegisteredAt: s.clock.Now(),
		})

		return err
	})
	if err != nil {
		return domain.Account{}, err
	}

	return created, nil
}

func nextNumber(ctx context.Context, q store.Querier) (string, error) {
	highest, err := q.GetHighestNumberedAccount(ctx)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return domain.FirstAccountNumber, nil
	}

	if err != nil {
		return "", err
	}

	number, err := domain.NextAccountNumber(highest.Number)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("account_number", highest.Number).Send()
		return "", errorspkg.ErrInternal
	}

	return number, nil
}

// Close unregisters the user's account. The account must be empty.
func (s *Service) Close(ctx context.Context, userID int64, accountNumber string) (domain.Account, error) {
	var closed domain.Account

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
			return domain.ErrAlreadyClosed
		case acc.Balance > 0:
			return domain.ErrBalanceNotEmpty
		}

		now := s.clock.Now()
		acc.Status = domain.AccountStatusUnregistered
		acc.UnregisteredAt = &now

		closed, err = q.UpdateAccount(ctx, acc)

		return err
	})
	if err != nil {
		return domain.Account{}, err
	}

	return closed, nil
}

// List returns all accounts the user has ever opened, closed ones included.
func (s *Service) List(ctx context.Context, userID int64) ([]domain.Account, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	accounts, err := s.store.ListAccountsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return accounts, nil
}
