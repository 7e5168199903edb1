// Package userservice manages business logic layer of account users.
package userservice

import (
	"context"

	"github.com/go-petr/pet-account/internal/domain"
)

// Repo provides data access layer interface needed by user service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package userservice
type Repo interface {
	CreateUser(ctx context.Context, name string) (domain.AccountUser, error)
	GetUser(ctx context.Context, id int64) (domain.AccountUser, error)
}

// Service facilitates user service layer logic.
type Service struct {
	repo Repo
}

// New return user service struct to manage user bussines logic.
func New(ur Repo) *Service {
	return &Service{
		repo: ur,
	}
}

// Create registers and returns a user with the given name.
func (s *Service) Create(ctx context.Context, name string) (domain.AccountUser, error) {
	user, err := s.repo.CreateUser(ctx, name)
	if err != nil {
		return domain.AccountUser{}, err
	}

	return user, nil
}

// Get returns the user with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.AccountUser, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return domain.AccountUser{}, err
	}

	return user, nil
}
