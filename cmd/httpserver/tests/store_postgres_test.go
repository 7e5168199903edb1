//go:build integration

package tests

import (
	"testing"

	"github.com/go-petr/pet-account/internal/integrationtest"
	"github.com/go-petr/pet-account/internal/store"
)

func newStore(t *testing.T) store.Store {
	return store.NewSQLStore(integrationtest.SetupDB(t))
}
