package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/nexusliving/bms/api/transport"
	"github.com/nexusliving/bms/pkg/httpcontext"
	agreementUC "github.com/nexusliving/bms/usecase/agreement"
)

type AgreementHandler struct {
	baseHandler
	uc *agreementUC.UseCase
}

func NewAgreementHandler(uc *agreementUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AgreementHandler {
	return &AgreementHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Submit an agreement request for the caller
// @Tags agreements
// @Accept json
// @Produce json
// @Router /api/v1/agreements [post]
func (h *AgreementHandler) Submit(ctx *fasthttp.RequestCtx) {
	var req transport.AgreementRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	agreement, err := h.uc.Submit(stdCtx, httpcontext.Identity(ctx), agreementUC.SubmitInput{
		UserName:    req.UserName,
		ApartmentID: req.ApartmentID,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, agreement)
}

// @Summary List pending agreement requests
// @Tags agreements
// @Router /api/v1/agreements [get]
func (h *AgreementHandler) ListPending(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	agreements, err := h.uc.ListPending(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, agreements, transport.ListMeta{Count: len(agreements)})
}

// @Summary Get the caller's agreement in any status
// @Tags agreements
// @Router /api/v1/agreements/{email} [get]
func (h *AgreementHandler) FindByRequester(ctx *fasthttp.RequestCtx) {
	email, ok := h.self(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	agreement, err := h.uc.FindByRequester(stdCtx, email)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, agreement)
}

// @Summary Get the caller's accepted agreement
// @Tags agreements
// @Router /api/v1/agreement/{email} [get]
func (h *AgreementHandler) FindActive(ctx *fasthttp.RequestCtx) {
	email, ok := h.self(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	agreement, err := h.uc.FindActive(stdCtx, email)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, agreement)
}

// @Summary Accept an agreement and promote its requester
// @Tags agreements
// @Router /api/v1/agreements/accept/{id} [patch]
func (h *AgreementHandler) Accept(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Accept(stdCtx, pathParam(ctx, "id"), httpcontext.Identity(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Reject an agreement
// @Tags agreements
// @Router /api/v1/agreements/reject/{id} [patch]
func (h *AgreementHandler) Reject(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.Reject(stdCtx, pathParam(ctx, "id"), httpcontext.Identity(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, result)
}

// @Summary Decision history of an agreement
// @Tags agreements
// @Router /api/v1/agreement-history/{id} [get]
func (h *AgreementHandler) History(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	events, err := h.uc.History(stdCtx, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, events)
}
