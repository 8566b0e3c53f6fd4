package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/nexusliving/bms/api/transport"
	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/pkg/httpcontext"
	"github.com/nexusliving/bms/pkg/logger"
)

// Middleware wraps a fasthttp handler.
type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// Authenticator resolves a bearer token to the caller's email and session id.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (string, string, error)
}

// JWTAuth verifies the bearer token and records the caller identity on the
// request. Handlers read it through httpcontext.Identity; client supplied
// headers are never trusted for identity.
func JWTAuth(auth Authenticator, adapter *httpcontext.Adapter, log *zap.Logger) Middleware {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				writeError(ctx, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "missing bearer token")
				return
			}

			stdCtx, cancel := attach(adapter, ctx)
			email, sessionID, err := auth.Authenticate(stdCtx, tokenString)
			cancel()
			if err != nil {
				if domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
					logger.WithRequestID(stdCtx, log).Debug("rejected bearer token", zap.Error(err))
					writeError(ctx, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "invalid or expired token")
					return
				}
				logger.WithRequestID(stdCtx, log).Error("session lookup failed", zap.Error(err))
				writeError(ctx, http.StatusInternalServerError, domain.ErrCodeInternal, "internal error")
				return
			}

			httpcontext.SetIdentity(ctx, email)
			httpcontext.SetSessionID(ctx, sessionID)
			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

func attach(adapter *httpcontext.Adapter, ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if adapter != nil {
		return adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func writeError(ctx *fasthttp.RequestCtx, status int, code domain.ErrorCode, message string) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(transport.Failure(string(code), message, nil))
	ctx.SetBody(body)
}
