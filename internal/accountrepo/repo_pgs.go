// Package accountrepo manages repository layer of accounts.
package accountrepo

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

// accountNumberLockKey is the advisory lock key serializing account number generation.
const accountNumberLockKey = 7_310_001

// RepoPGS facilitates account repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns account RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const columns = `id, account_user_id, account_number, balance, status, registered_at, unregistered_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (domain.Account, error) {
	var (
		a              domain.Account
		unregisteredAt sql.NullTime
	)

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Number,
		&a.Balance,
		&a.Status,
		&a.RegisteredAt,
		&unregisteredAt,
	)
	if err != nil {
		return domain.Account{}, err
	}

	if unregisteredAt.Valid {
		t := unregisteredAt.Time
		a.UnregisteredAt = &t
	}

	return a, nil
}

// mapError translates driver errors to domain errors.
func mapError(l *zerolog.Logger, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		l.Info().Err(err).Send()
		return domain.ErrAccountNotFound
	}

	l.Error().Err(err).Send()

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "accounts_balance_check":
			return domain.ErrAmountExceedsBalance
		case "accounts_account_user_id_fkey":
			return domain.ErrUserNotFound
		}
	}

	return errorspkg.ErrInternal
}

const createQuery = `
INSERT INTO
    accounts (account_user_id, account_number, balance, status, registered_at)
VALUES
    ($1, $2, $3, $4, $5)
RETURNING ` + columns

// Create creates the account and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.UserID,
		arg.Number,
		arg.Balance,
		arg.Status,
		arg.RegisteredAt,
	)

	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapError(l, err)
	}

	return a, nil
}

const getByNumberQuery = `
SELECT ` + columns + `
FROM accounts
WHERE account_number = $1
`

// GetByNumber returns the account with the given number.
func (r *RepoPGS) GetByNumber(ctx context.Context, number string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, getByNumberQuery, number))
	if err != nil {
		return domain.Account{}, mapError(l, err)
	}

	return a, nil
}

const getByNumberForUpdateQuery = getByNumberQuery + `FOR NO KEY UPDATE
`

// GetByNumberForUpdate returns the account with the given number and locks its row
// until the surrounding transaction ends.
func (r *RepoPGS) GetByNumberForUpdate(ctx context.Context, number string) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, getByNumberForUpdateQuery, number))
	if err != nil {
		return domain.Account{}, mapError(l, err)
	}

	return a, nil
}

const getHighestNumberedQuery = `
SELECT ` + columns + `
FROM accounts
ORDER BY length(account_number) DESC, account_number DESC
LIMIT 1
`

// GetHighestNumbered returns the account holding the highest account number.
func (r *RepoPGS) GetHighestNumbered(ctx context.Context) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, getHighestNumberedQuery))
	if err != nil {
		return domain.Account{}, mapError(l, err)
	}

	return a, nil
}

const countByUserQuery = `
SELECT count(*)
FROM accounts
WHERE account_user_id = $1
`

// CountByUser returns the number of accounts ever opened by the user.
func (r *RepoPGS) CountByUser(ctx context.Context, userID int64) (int64, error) {
	l := zerolog.Ctx(ctx)

	var n int64
	if err := r.db.QueryRowContext(ctx, countByUserQuery, userID).Scan(&n); err != nil {
		l.Error().Err(err).Send()
		return 0, errorspkg.ErrInternal
	}

	return n, nil
}

const listByUserQuery = `
SELECT ` + columns + `
FROM accounts
WHERE account_user_id = $1
ORDER BY id
`

// ListByUser returns the accounts of the given user in the order they were opened.
func (r *RepoPGS) ListByUser(ctx context.Context, userID int64) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listByUserQuery, userID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, a)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const updateQuery = `
UPDATE accounts
SET balance = $2, status = $3, unregistered_at = $4
WHERE id = $1
RETURNING ` + columns

// Update persists balance and status changes of the account and returns the stored row.
func (r *RepoPGS) Update(ctx context.Context, a domain.Account) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	var unregisteredAt sql.NullTime
	if a.UnregisteredAt != nil {
		unregisteredAt = sql.NullTime{Time: *a.UnregisteredAt, Valid: true}
	}

	row := r.db.QueryRowContext(ctx, updateQuery,
		a.ID,
		a.Balance,
		a.Status,
		unregisteredAt,
	)

	updated, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapError(l, err)
	}

	return updated, nil
}

const lockNumbersQuery = `SELECT pg_advisory_xact_lock($1)`

// LockNumbers takes the transaction scoped lock that serializes account number generation.
//
// It only has an effect inside a transaction; the lock is released on commit or rollback.
func (r *RepoPGS) LockNumbers(ctx context.Context) error {
	l := zerolog.Ctx(ctx)

	if _, err := r.db.ExecContext(ctx, lockNumbersQuery, accountNumberLockKey); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}
