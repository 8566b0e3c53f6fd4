package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/nexusliving/bms/api/transport"
	"github.com/nexusliving/bms/pkg/httpcontext"
	announcementUC "github.com/nexusliving/bms/usecase/announcement"
	couponUC "github.com/nexusliving/bms/usecase/coupon"
)

type CouponHandler struct {
	baseHandler
	uc *couponUC.UseCase
}

func NewCouponHandler(uc *couponUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CouponHandler {
	return &CouponHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List coupons
// @Tags coupons
// @Router /api/v1/coupons [get]
func (h *CouponHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	coupons, err := h.uc.List(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, coupons)
}

// @Summary Create coupon
// @Tags coupons
// @Router /api/v1/coupons [post]
func (h *CouponHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.CouponRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	coupon, err := h.uc.Create(stdCtx, couponUC.CreateInput{
		Code:        req.Code,
		Discount:    req.Discount,
		Description: req.Description,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, coupon)
}

// @Summary Toggle coupon availability
// @Tags coupons
// @Router /api/v1/coupons/{id} [patch]
func (h *CouponHandler) SetAvailability(ctx *fasthttp.RequestCtx) {
	var req transport.CouponAvailabilityRequest
	if !h.decode(ctx, &req) {
		return
	}
	if req.Available == nil {
		h.respondInvalid(ctx, "available is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	coupon, err := h.uc.SetAvailability(stdCtx, pathParam(ctx, "id"), *req.Available)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, coupon)
}

// @Summary Delete coupon
// @Tags coupons
// @Router /api/v1/coupons/{id} [delete]
func (h *CouponHandler) Delete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, pathParam(ctx, "id")); err != nil {
		h.respondError(ctx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

type AnnouncementHandler struct {
	baseHandler
	uc *announcementUC.UseCase
}

func NewAnnouncementHandler(uc *announcementUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List announcements
// @Tags announcements
// @Router /api/v1/announcements [get]
func (h *AnnouncementHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	items, err := h.uc.List(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, items)
}

// @Summary Publish announcement
// @Tags announcements
// @Router /api/v1/announcements [post]
func (h *AnnouncementHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.AnnouncementRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	item, err := h.uc.Create(stdCtx, req.Title, req.Description)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, item)
}
