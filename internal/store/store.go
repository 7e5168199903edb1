// Package store composes the account, user and transaction repositories into a unit of work.
package store

import (
	"context"
	"database/sql"

	"github.com/go-petr/pet-account/internal/accountrepo"
	"github.com/go-petr/pet-account/internal/domain"
	"github.com/go-petr/pet-account/internal/transactionrepo"
	"github.com/go-petr/pet-account/internal/userrepo"
	"github.com/go-petr/pet-account/pkg/dbpkg"
	"github.com/go-petr/pet-account/pkg/errorspkg"
	"github.com/rs/zerolog"
)

// Querier provides all functions to execute account, user and transaction queries.
//
//go:generate mockgen -source store.go -destination store_mock.go -package store
type Querier interface {
	CreateUser(ctx context.Context, name string) (domain.AccountUser, error)
	GetUser(ctx context.Context, id int64) (domain.AccountUser, error)

	CreateAccount(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	GetAccountByNumber(ctx context.Context, number string) (domain.Account, error)
	// GetAccountByNumberForUpdate locks the account until the enclosing ExecTx returns.
	GetAccountByNumberForUpdate(ctx context.Context, number string) (domain.Account, error)
	GetHighestNumberedAccount(ctx context.Context) (domain.Account, error)
	CountAccountsByUser(ctx context.Context, userID int64) (int64, error)
	ListAccountsByUser(ctx context.Context, userID int64) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, a domain.Account) (domain.Account, error)
	// LockAccountNumbers serializes account number generation until the enclosing ExecTx returns.
	LockAccountNumbers(ctx context.Context) error

	CreateTransaction(ctx context.Context, arg domain.Transaction) (domain.Transaction, error)
	GetTransaction(ctx context.Context, transactionID string) (domain.Transaction, error)
}

// Store provides all functions to execute queries and units of work.
type Store interface {
	Querier
	// ExecTx runs fn atomically: either every write made through q is applied or none is.
	ExecTx(ctx context.Context, fn func(q Querier) error) error
}

// SQLStore is the Postgres Store.
type SQLStore struct {
	*queries
	db *sql.DB
}

// NewSQLStore returns a Store backed by db.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{
		queries: newQueries(db),
		db:      db,
	}
}

// ExecTx executes fn within a database transaction.
func (s *SQLStore) ExecTx(ctx context.Context, fn func(q Querier) error) error {
	l := zerolog.Ctx(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if err := fn(newQueries(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			l.Error().Err(rbErr).Send()
		}

		return err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

type queries struct {
	users        *userrepo.RepoPGS
	accounts     *accountrepo.RepoPGS
	transactions *transactionrepo.RepoPGS
}

func newQueries(db dbpkg.SQLInterface) *queries {
	return &queries{
		users:        userrepo.NewRepoPGS(db),
		accounts:     accountrepo.NewRepoPGS(db),
		transactions: transactionrepo.NewRepoPGS(db),
	}
}

func (q *queries) CreateUser(ctx context.Context, name string) (domain.AccountUser, error) {
	return q.users.Create(ctx, name)
}

func (q *queries) GetUser(ctx context.Context, id int64) (domain.AccountUser, error) {
	return q.users.Get(ctx, id)
}

func (q *queries) CreateAccount(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	return q.accounts.Create(ctx, arg)
}

func (q *queries) GetAccountByNumber(ctx context.Context, number string) (domain.Account, error) {
	return q.accounts.GetByNumber(ctx, number)
}

func (q *queries) GetAccountByNumberForUpdate(ctx context.Context, number string) (domain.Account, error) {
	return q.accounts.GetByNumberForUpdate(ctx, number)
}

func (q *queries) GetHighestNumberedAccount(ctx context.Context) (domain.Account, error) {
	return q.accounts.GetHighestNumbered(ctx)
}

func (q *queries) CountAccountsByUser(ctx context.Context, userID int64) (int64, error) {
	return q.accounts.CountByUser(ctx, userID)
}

func (q *queries) ListAccountsByUser(ctx context.Context, userID int64) ([]domain.Account, error) {
	return q.accounts.ListByUser(ctx, userID)
}

func (q *queries) UpdateAccount(ctx context.Context, a domain.Account) (domain.Account, error) {
	return q.accounts.Update(ctx, a)
}

func (q *queries) LockAccountNumbers(ctx context.Context) error {
	return q.accounts.LockNumbers(ctx)
}

func (q *queries) CreateTransaction(ctx context.Context, arg domain.Transaction) (domain.Transaction, error) {
	return q.transactions.Create(ctx, arg)
}

func (q *queries) GetTransaction(ctx context.Context, transactionID string) (domain.Transaction, error) {
	return q.transactions.Get(ctx, transactionID)
}
