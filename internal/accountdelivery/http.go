// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-account/internal/domain"
	"github.com/go-petr/pet-account/pkg/web"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Create(ctx context.Context, userID, initialBalance int64) (domain.Account, error)
	Close(ctx context.Context, userID int64, accountNumber string) (domain.Account, error)
	List(ctx context.Context, userID int64) ([]domain.Account, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) *Handler {
	return &Handler{service: as}
}

type data struct {
	Account domain.Account `json:"account"`
}

type dataAccounts struct {
	Accounts []domain.Account `json:"accounts"`
}

func status(err error) int {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOwnerMismatch):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAccountLimitExceeded),
		errors.Is(err, domain.ErrAlreadyClosed),
		errors.Is(err, domain.ErrBalanceNotEmpty):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAmount):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

type createRequest struct {
	UserID         int64 `json:"user_id" binding:"required,min=1"`
	InitialBalance int64 `json:"initial_balance" binding:"min=0"`
}

// Create handles http request to open an account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingError(err)})

		return
	}

	createdAccount, err := h.service.Create(ctx, req.UserID, req.InitialBalance)
	if err != nil {
		l.Info().Err(err).Int64("user_id", req.UserID).Msg("cannot open account")
		gctx.JSON(status(err), web.Response{Error: web.Error(err)})

		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: data{createdAccount}})
}

type closeRequest struct {
	UserID        int64  `json:"user_id" binding:"required,min=1"`
	AccountNumber string `json:"account_number" binding:"required,accountnumber"`
}

// Close handles http request to unregister an account.
func (h *Handler) Close(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req closeRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingError(err)})

		return
	}

	closedAccount, err := h.service.Close(ctx, req.UserID, req.AccountNumber)
	if err != nil {
		l.Info().Err(err).Str("account_number", req.AccountNumber).Msg("cannot close account")
		gctx.JSON(status(err), web.Response{Error: web.Error(err)})

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{closedAccount}})
}

type listRequest struct {
	UserID int64 `form:"user_id" binding:"required,min=1"`
}

// List handles http request to list accounts of a user.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingError(err)})

		return
	}

	accounts, err := h.service.List(ctx, req.UserID)
	if err != nil {
		gctx.JSON(status(err), web.Response{Error: web.Error(err)})
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: dataAccounts{accounts}})
}
