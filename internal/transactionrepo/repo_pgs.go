// Package transactionrepo manages repository layer of transactions.
package transactionrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/pet-account/internal/domain"
	"github.com/go-petr/pet-account/pkg/dbpkg"
	"github.com/go-petr/pet-account/pkg/errorspkg"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns transaction RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{db: db}
}

const createQuery = `
WITH t AS (
    INSERT INTO transactions (
        transaction_id,
        account_id,
        transaction_type,
        transaction_result,
        amount,
        balance_snapshot,
        transacted_at
    ) VALUES (
        $1, $2, $3, $4, $5, $6, $7
    ) RETURNING *
)
SELECT
    t.id, t.transaction_id, t.account_id, a.account_number, t.transaction_type,
    t.transaction_result, t.amount, t.balance_snapshot, t.transacted_at
FROM t
JOIN accounts a ON a.id = t.account_id
`

// Create inserts the transaction record and then returns it.
//
// Records are never updated or deleted afterwards.
func (r *RepoPGS) Create(ctx context.Context, arg domain.Transaction) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.TransactionID,
		arg.AccountID,
		arg.Type,
		arg.Result,
		arg.Amount,
		arg.BalanceSnapshot,
		arg.TransactedAt,
	)

	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.TransactionID,
		&t.AccountID,
		&t.AccountNumber,
		&t.Type,
		&t.Result,
		&t.Amount,
		&t.BalanceSnapshot,
		&t.TransactedAt,
	)

	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx context.Context, %+v)", arg)

		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Constraint == "transactions_account_id_fkey" {
				return domain.Transaction{}, domain.ErrAccountNotFound
			}
		}

		return domain.Transaction{}, errorspkg.ErrInternal
	}

	return t, nil
}

const getQuery = `
SELECT
    t.id, t.transaction_id, t.account_id, a.account_number, t.transaction_type,
    t.transaction_result, t.amount, t.balance_snapshot, t.transacted_at
FROM transactions t
JOIN accounts a ON a.id = t.account_id
WHERE t.transaction_id = $1
`

// Get returns the transaction with the given transaction id.
func (r *RepoPGS) Get(ctx context.Context, transactionID string) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, transactionID)

	var t domain.Transaction

	err := row.Scan(
		&t.ID,
		&t.TransactionID,
		&t.AccountID,
		&t.AccountNumber,
		&t.Type,
		&t.Result,
		&t.Amount,
		&t.BalanceSnapshot,
		&t.TransactedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			l.Info().Err(err).Str("transaction_id", transactionID).Send()
			return domain.Transaction{}, domain.ErrTransactionNotFound
		}

		l.Error().Err(err).Send()

		return domain.Transaction{}, errorspkg.ErrInternal
	}

	return t, nil
}
