// Package transactiondelivery manages delivery layer of account transactions.
package transactiondelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-account/internal/domain"
	"github.com/go-petr/pet-account/pkg/web"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by transaction delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	Use(ctx context.Context, userID int64, accountNumber string, amount int64) (domain.Transaction, error)
	Cancel(ctx context.Context, transactionID, accountNumber string, amount int64) (domain.Transaction, error)
	Query(ctx context.Context, transactionID string) (domain.Transaction, error)
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transaction handler.
func NewHandler(ts Service) *Handler {
	return &Handler{service: ts}
}

type data struct {
	Transaction domain.Transaction `json:"transaction"`
}

func status(err error) int {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOwnerMismatch):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrAccountClosed),
		errors.Is(err, domain.ErrTransactionNotCancelable):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountExceedsBalance),
		errors.Is(err, domain.ErrTransactionAccountMismatch),
		errors.Is(err, domain.ErrCancelMustBeFull),
		errors.Is(err, domain.ErrTooOldToCancel):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

type useRequest struct {
	UserID        int64  `json:"user_id" binding:"required,min=1"`
	AccountNumber string `json:"account_number" binding:"required,accountnumber"`
	Amount        int64  `json:"amount" binding:"required,min=10,max=1000000000"`
}

// Use handles http request to debit an account.
func (h *Handler) Use(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req useRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingError(err)})

		return
	}

	t, err := h.service.Use(ctx, req.UserID, req.AccountNumber, req.Amount)
	if err != nil {
		l.Info().Err(err).Str("account_number", req.AccountNumber).Msg("use rejected")
		gctx.JSON(status(err), web.Response{Error: web.Error(err)})

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{t}})
}

type cancelRequest struct {
	TransactionID string `json:"transaction_id" binding:"required,len=32"`
	AccountNumber string `json:"account_number" binding:"required,accountnumber"`
	Amount        int64  `json:"amount" binding:"required,min=10,max=1000000000"`
}

// Cancel handles http request to reverse a use transaction.
func (h *Handler) Cancel(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req cancelRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingError(err)})

		return
	}

	t, err := h.service.Cancel(ctx, req.TransactionID, req.AccountNumber, req.Amount)
	if err != nil {
		l.Info().Err(err).Str("transaction_id", req.TransactionID).Msg("cancel rejected")
		gctx.JSON(status(err), web.Response{Error: web.Error(err)})

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{t}})
}

type getRequest struct {
	TransactionID string `uri:"transaction_id" binding:"required,len=32"`
}

// Get handles http request to query a transaction.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingError(err)})

		return
	}

	t, err := h.service.Query(ctx, req.TransactionID)
	if err != nil {
		gctx.JSON(status(err), web.Response{Error: web.Error(err)})
		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{t}})
}
