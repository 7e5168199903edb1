// Package userrepo manages repository layer of account users.
package userrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-petr/pet-account/internal/domain"
	"github.com/go-petr/pet-account/pkg/dbpkg"
	"github.com/go-petr/pet-account/pkg/errorspkg"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates user repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns user RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO account_users (name)
VALUES ($1)
RETURNING id, name, created_at
`

// Create creates the user and then returns it.
func (r *RepoPGS) Create(ctx context.Context, name string) (domain.AccountUser, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery, name)

	var u domain.AccountUser

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.CreatedAt,
	)

	if err != nil {
		l.Error().Err(err).Send()
		return domain.AccountUser{}, errorspkg.ErrInternal
	}

	return u, nil
}

const getQuery = `
SELECT id, name, created_at
FROM account_users
WHERE id = $1
`

// Get returns the user with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.AccountUser, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, getQuery, id)

	var u domain.AccountUser

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			l.Info().Err(err).Int64("user_id", id).Send()
			return domain.AccountUser{}, domain.ErrUserNotFound
		}

		l.Error().Err(err).Send()

		return domain.AccountUser{}, errorspkg.ErrInternal
	}

	return u, nil
}
