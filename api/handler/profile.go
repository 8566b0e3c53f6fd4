package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/nexusliving/bms/api/transport"
	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/pkg/httpcontext"
	"github.com/nexusliving/bms/repository"
	profileUC "github.com/nexusliving/bms/usecase/profile"
)

type ProfileHandler struct {
	baseHandler
	uc *profileUC.UseCase
}

func NewProfileHandler(uc *profileUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Create or refresh a profile
// @Tags users
// @Accept json
// @Produce json
// @Router /api/v1/users [post]
func (h *ProfileHandler) Upsert(ctx *fasthttp.RequestCtx) {
	var req transport.ProfileRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.UpsertProfile(stdCtx, &domain.User{
		Email:    req.Email,
		Name:     req.Name,
		PhotoURL: req.PhotoURL,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}

// @Summary List users
// @Tags users
// @Router /api/v1/users [get]
func (h *ProfileHandler) List(ctx *fasthttp.RequestCtx) {
	limit, err := queryInt(ctx, "limit")
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	offset, err := queryInt(ctx, "offset")
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	users, err := h.uc.ListUsers(stdCtx, repository.UserFilter{
		Role:   domain.Role(ctx.QueryArgs().Peek("role")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, users, transport.ListMeta{Count: len(users), Offset: offset})
}

// @Summary Get the caller's profile
// @Tags users
// @Router /api/v1/users/{email} [get]
func (h *ProfileHandler) Get(ctx *fasthttp.RequestCtx) {
	email, ok := h.self(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.GetProfile(stdCtx, email)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}

// @Summary Get the caller's role
// @Tags users
// @Router /api/v1/users/{email}/role [get]
func (h *ProfileHandler) Role(ctx *fasthttp.RequestCtx) {
	email, ok := h.self(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	role, err := h.uc.RoleOf(stdCtx, email)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"email": email, "role": string(role)})
}

// @Summary Demote a member back to user
// @Tags users
// @Router /api/v1/users/{email}/demote [patch]
func (h *ProfileHandler) Demote(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.Demote(stdCtx, pathParam(ctx, "email"), httpcontext.Identity(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}
