// Package httpserver manages server creation and api routing.
package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-account/internal/accountdelivery"
	"github.com/go-petr/pet-account/internal/accountservice"
	"github.com/go-petr/pet-account/internal/ledgerservice"
	"github.com/go-petr/pet-account/internal/middleware"
	"github.com/go-petr/pet-account/internal/store"
	"github.com/go-petr/pet-account/internal/transactiondelivery"
	"github.com/go-petr/pet-account/internal/userdelivery"
	"github.com/go-petr/pet-account/internal/userservice"
	"github.com/go-petr/pet-account/pkg/clockpkg"
	"github.com/go-petr/pet-account/pkg/configpkg"
)

// Server holds the store, handlers router and configuration.
type Server struct {
	Store  store.Store
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(st store.Store, cache ledgerservice.Cache, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	clock := clockpkg.Real{}

	userService := userservice.New(st)
	accountService := accountservice.New(st, clock)
	ledgerService := ledgerservice.New(st, cache, clock)

	userHandler := userdelivery.NewHandler(userService)
	accountHandler := accountdelivery.NewHandler(accountService)
	transactionHandler := transactiondelivery.NewHandler(ledgerService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))

	engine.POST("/users", userHandler.Create)
	engine.GET("/users/:id", userHandler.Get)

	engine.POST("/accounts", accountHandler.Create)
	engine.DELETE("/accounts", accountHandler.Close)
	engine.GET("/accounts", accountHandler.List)

	engine.POST("/transactions/use", transactionHandler.Use)
	engine.POST("/transactions/cancel", transactionHandler.Cancel)
	engine.GET("/transactions/:transaction_id", transactionHandler.Get)

	if err := accountdelivery.RegisterValidators(); err != nil {
		return nil, errors.New("cannot register account number validator")
	}

	server := &Server{
		Store:  st,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
