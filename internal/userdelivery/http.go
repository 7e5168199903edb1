// Package userdelivery manages delivery layer of account users.
package userdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-account/internal/domain"
	"github.com/go-petr/pet-account/pkg/web"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by user delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package userdelivery
type Service interface {
	Create(ctx context.Context, name string) (domain.AccountUser, error)
	Get(ctx context.Context, id int64) (domain.AccountUser, error)
}

// Handler facilitates user delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns user handler.
func NewHandler(us Service) *Handler {
	return &Handler{
		service: us,
	}
}

type data struct {
	User domain.AccountUser `json:"user"`
}

type createRequest struct {
	Name string `json:"name" binding:"required,max=64"`
}

// Create handles http request to register a user.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingError(err)})

		return
	}

	createdUser, err := h.service.Create(ctx, req.Name)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Response{Error: web.Error(err)})
		return
	}

	gctx.JSON(http.StatusCreated, web.Response{Data: data{createdUser}})
}

type getRequest struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// Get handles http request to get a user.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: web.BindingError(err)})

		return
	}

	user, err := h.service.Get(ctx, req.ID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrUserNotFound) {
			status = http.StatusNotFound
		}

		gctx.JSON(status, web.Response{Error: web.Error(err)})

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: data{user}})
}
