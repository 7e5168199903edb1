//go:build integration

package store_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-petr/pet-account/internal/domain"
	"github.com/go-petr/pet-account/internal/integrationtest"
	"github.com/go-petr/pet-account/internal/store"
	"github.com/go-petr/pet-account/pkg/errorspkg"
	"github.com/go-petr/pet-account/pkg/randompkg"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

var now = time.Now().UTC().Truncate(time.Millisecond)

var approxTime = cmpopts.EquateApproxTime(time.Millisecond)

func setup(t *testing.T) (*store.SQLStore, *sql.DB) {
	t.Helper()

	db := integrationtest.SetupDB(t)

	return store.NewSQLStore(db), db
}

func createAccount(t *testing.T, st store.Querier, userID int64, number string, balance int64) domain.Account {
	t.Helper()

	acc, err := st.CreateAccount(context.Background(), domain.CreateAccountParams{
		UserID:       userID,
		Number:       number,
		Balance:      balance,
		Status:       domain.AccountStatusInUse,
		RegisteredAt: now,
	})
	require.NoError(t, err)

	return acc
}

func TestSQLStore(t *testing.T) {
	st, db := setup(t)
	ctx := context.Background()

	t.Run("Users", func(t *testing.T) {
		integrationtest.Flush(t, db)

		name := randompkg.Name()

		user, err := st.CreateUser(ctx, name)
		require.NoError(t, err)
		require.Equal(t, name, user.Name)
		require.NotZero(t, user.ID)

		got, err := st.GetUser(ctx, user.ID)
		require.NoError(t, err)

		if diff := cmp.Diff(user, got, approxTime); diff != "" {
			t.Errorf("GetUser() mismatch (-want +got):\n%s", diff)
		}

		_, err = st.GetUser(ctx, user.ID+1)
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("Accounts", func(t *testing.T) {
		integrationtest.Flush(t, db)

		_, err := st.GetHighestNumberedAccount(ctx)
		require.ErrorIs(t, err, domain.ErrAccountNotFound)

		owner, err := st.CreateUser(ctx, randompkg.Name())
		require.NoError(t, err)

		first := createAccount(t, st, owner.ID, "999", 0)
		second := createAccount(t, st, owner.ID, "1000", 10)

		highest, err := st.GetHighestNumberedAccount(ctx)
		require.NoError(t, err)
		require.Equal(t, second.Number, highest.Number)

		count, err := st.CountAccountsByUser(ctx, owner.ID)
		require.NoError(t, err)
		require.Equal(t, int64(2), count)

		list, err := st.ListAccountsByUser(ctx, owner.ID)
		require.NoError(t, err)

		if diff := cmp.Diff([]domain.Account{first, second}, list, approxTime); diff != "" {
			t.Errorf("ListAccountsByUser() mismatch (-want +got):\n%s", diff)
		}

		second.Balance = 0
		second.Status = domain.AccountStatusUnregistered
		second.UnregisteredAt = &now

		updated, err := st.UpdateAccount(ctx, second)
		require.NoError(t, err)

		if diff := cmp.Diff(second, updated, approxTime); diff != "" {
			t.Errorf("UpdateAccount() mismatch (-want +got):\n%s", diff)
		}

		_, err = st.GetAccountByNumber(ctx, "404")
		require.ErrorIs(t, err, domain.ErrAccountNotFound)
	})

	t.Run("AccountConstraints", func(t *testing.T) {
		integrationtest.Flush(t, db)

		owner, err := st.CreateUser(ctx, randompkg.Name())
		require.NoError(t, err)

		acc := createAccount(t, st, owner.ID, domain.FirstAccountNumber, 0)

		_, err = st.CreateAccount(ctx, domain.CreateAccountParams{
			UserID:       owner.ID + 1,
			Number:       "1000000001",
			Status:       domain.AccountStatusInUse,
			RegisteredAt: now,
		})
		require.ErrorIs(t, err, domain.ErrUserNotFound)

		_, err = st.CreateAccount(ctx, domain.CreateAccountParams{
			UserID:       owner.ID,
			Number:       acc.Number,
			Status:       domain.AccountStatusInUse,
			RegisteredAt: now,
		})
		require.ErrorIs(t, err, errorspkg.ErrInternal)

		acc.Balance = -1
		_, err = st.UpdateAccount(ctx, acc)
		require.ErrorIs(t, err, domain.ErrAmountExceedsBalance)
	})

	t.Run("Transactions", func(t *testing.T) {
		integrationtest.Flush(t, db)

		owner, err := st.CreateUser(ctx, randompkg.Name())
		require.NoError(t, err)

		acc := createAccount(t, st, owner.ID, domain.FirstAccountNumber, 100)

		arg := domain.Transaction{
			TransactionID:   domain.NewTransactionID(),
			AccountID:       acc.ID,
			Type:            domain.TransactionTypeUse,
			Result:          domain.TransactionResultSuccess,
			Amount:          100,
			BalanceSnapshot: 0,
			TransactedAt:    now,
		}

		created, err := st.CreateTransaction(ctx, arg)
		require.NoError(t, err)
		require.NotZero(t, created.ID)
		require.Equal(t, acc.Number, created.AccountNumber)

		got, err := st.GetTransaction(ctx, arg.TransactionID)
		require.NoError(t, err)

		if diff := cmp.Diff(created, got, approxTime); diff != "" {
			t.Errorf("GetTransaction() mismatch (-want +got):\n%s", diff)
		}

		_, err = st.GetTransaction(ctx, domain.NewTransactionID())
		require.ErrorIs(t, err, domain.ErrTransactionNotFound)

		unknown := arg
		unknown.TransactionID = domain.NewTransactionID()
		unknown.AccountID = acc.ID + 1
		_, err = st.CreateTransaction(ctx, unknown)
		require.ErrorIs(t, err, domain.ErrAccountNotFound)
	})

	t.Run("ExecTxRollback", func(t *testing.T) {
		integrationtest.Flush(t, db)

		owner, err := st.CreateUser(ctx, randompkg.Name())
		require.NoError(t, err)

		acc := createAccount(t, st, owner.ID, domain.FirstAccountNumber, 100)
		errAbort := errors.New("abort")

		err = st.ExecTx(ctx, func(q store.Querier) error {
			locked, err := q.GetAccountByNumberForUpdate(ctx, acc.Number)
			if err != nil {
				return err
			}

			locked.Balance = 0

			if _, err := q.UpdateAccount(ctx, locked); err != nil {
				return err
			}

			return errAbort
		})
		require.ErrorIs(t, err, errAbort)

		got, err := st.GetAccountByNumber(ctx, acc.Number)
		require.NoError(t, err)
		require.Equal(t, int64(100), got.Balance)
	})

	t.Run("RowLockSerializes", func(t *testing.T) {
		integrationtest.Flush(t, db)

		const n = 20

		owner, err := st.CreateUser(ctx, randompkg.Name())
		require.NoError(t, err)

		acc := createAccount(t, st, owner.ID, domain.FirstAccountNumber, 0)

		var wg sync.WaitGroup

		for i := 0; i < n; i++ {
			wg.Add(1)

			go func() {
				defer wg.Done()

				err := st.ExecTx(ctx, func(q store.Querier) error {
					if err := q.LockAccountNumbers(ctx); err != nil {
						return err
					}

					locked, err := q.GetAccountByNumberForUpdate(ctx, acc.Number)
					if err != nil {
						return err
					}

					locked.Balance++

					_, err = q.UpdateAccount(ctx, locked)

					return err
				})
				if err != nil {
					t.Errorf("ExecTx returned error: %v", err)
				}
			}()
		}

		wg.Wait()

		got, err := st.GetAccountByNumber(ctx, acc.Number)
		require.NoError(t, err)
		require.Equal(t, int64(n), got.Balance)
	})
}
