package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/nexusliving/bms/pkg/httpcontext"
	apartmentUC "github.com/nexusliving/bms/usecase/apartment"
)

type ApartmentHandler struct {
	baseHandler
	uc *apartmentUC.UseCase
}

func NewApartmentHandler(uc *apartmentUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ApartmentHandler {
	return &ApartmentHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List apartments
// @Tags apartments
// @Param page query int false "1-based page"
// @Param limit query int false "page size"
// @Router /api/v1/apartments [get]
func (h *ApartmentHandler) List(ctx *fasthttp.RequestCtx) {
	var (
		q   apartmentUC.Query
		err error
	)
	if q.Page, err = queryInt(ctx, "page"); err != nil {
		h.respondError(ctx, err)
		return
	}
	if q.Limit, err = queryInt(ctx, "limit"); err != nil {
		h.respondError(ctx, err)
		return
	}
	if q.MinRent, err = queryFloat(ctx, "min_rent"); err != nil {
		h.respondError(ctx, err)
		return
	}
	if q.MaxRent, err = queryFloat(ctx, "max_rent"); err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	page, err := h.uc.List(stdCtx, q)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, page)
}

// @Summary Get apartment
// @Tags apartments
// @Router /api/v1/apartments/{id} [get]
func (h *ApartmentHandler) Get(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	apartment, err := h.uc.Get(stdCtx, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, apartment)
}
