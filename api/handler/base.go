package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/nexusliving/bms/api/transport"
	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/pkg/httpcontext"
)

type baseHandler struct {
	adapter *httpcontext.Adapter
	logger  *zap.Logger
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload transport.Envelope) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.Success(data))
}

func (h baseHandler) respondList(ctx *fasthttp.RequestCtx, data interface{}, meta transport.ListMeta) {
	h.respondJSON(ctx, http.StatusOK, transport.SuccessList(data, meta))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("request_id", httpcontext.RequestID(ctx)),
			zap.ByteString("path", ctx.Path()),
			zap.Error(err),
		)
		message = "internal error"
	}
	h.respondJSON(ctx, status, transport.Failure(code, message, nil))
}

func (h baseHandler) respondInvalid(ctx *fasthttp.RequestCtx, message string) {
	h.respondJSON(ctx, http.StatusBadRequest, transport.Failure(string(domain.ErrCodeInvalid), message, nil))
}

// decode unmarshals the request body into dst and answers 400 on failure.
func (h baseHandler) decode(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return false
	}
	return true
}

// self resolves the {email} route parameter and checks it names the caller.
func (h baseHandler) self(ctx *fasthttp.RequestCtx) (string, bool) {
	identity := httpcontext.Identity(ctx)
	if identity == "" {
		h.respondError(ctx, domain.ErrUnauthorized)
		return "", false
	}
	email := domain.NormalizeEmail(pathParam(ctx, "email"))
	if email != identity {
		h.respondError(ctx, domain.ErrForbidden)
		return "", false
	}
	return email, true
}

func pathParam(ctx *fasthttp.RequestCtx, name string) string {
	value, _ := ctx.UserValue(name).(string)
	return value
}

func queryInt(ctx *fasthttp.RequestCtx, name string) (int, error) {
	raw := ctx.QueryArgs().Peek(name)
	if len(raw) == 0 {
		return 0, nil
	}
	value, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, domain.WrapError(domain.ErrCodeInvalid, name+" must be an integer", err)
	}
	return value, nil
}

func queryFloat(ctx *fasthttp.RequestCtx, name string) (float64, error) {
	raw := ctx.QueryArgs().Peek(name)
	if len(raw) == 0 {
		return 0, nil
	}
	value, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0, domain.WrapError(domain.ErrCodeInvalid, name+" must be a number", err)
	}
	return value, nil
}

var statusByCode = map[domain.ErrorCode]int{
	domain.ErrCodeUnauthorized: http.StatusUnauthorized,
	domain.ErrCodeForbidden:    http.StatusForbidden,
	domain.ErrCodeDuplicate:    http.StatusBadRequest,
	domain.ErrCodeInvalid:      http.StatusBadRequest,
	domain.ErrCodeNotFound:     http.StatusNotFound,
	domain.ErrCodeConflict:     http.StatusConflict,
	domain.ErrCodeRateLimited:  http.StatusTooManyRequests,
}

func mapError(err error) (int, string) {
	code := domain.CodeOf(err)
	if status, ok := statusByCode[code]; ok {
		return status, string(code)
	}
	return http.StatusInternalServerError, string(domain.ErrCodeInternal)
}
