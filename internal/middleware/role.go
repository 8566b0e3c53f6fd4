package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/pkg/httpcontext"
	"github.com/nexusliving/bms/pkg/logger"
)

// RoleChecker looks up the stored role of an email.
type RoleChecker interface {
	RoleOf(ctx context.Context, email string) (domain.Role, error)
}

// RequireRole admits the request only when the caller's stored role equals
// role. It must run after JWTAuth. Roles are read on every request.
func RequireRole(checker RoleChecker, role domain.Role, adapter *httpcontext.Adapter, log *zap.Logger) Middleware {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			identity := httpcontext.Identity(ctx)
			if identity == "" {
				writeError(ctx, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "unauthorized")
				return
			}

			stdCtx, cancel := attach(adapter, ctx)
			got, err := checker.RoleOf(stdCtx, identity)
			cancel()
			switch {
			case errors.Is(err, domain.ErrUserNotFound):
				writeError(ctx, http.StatusForbidden, domain.ErrCodeForbidden, "forbidden")
				return
			case err != nil:
				logger.WithRequestID(stdCtx, log).Error("role lookup failed", zap.String("email", identity), zap.Error(err))
				writeError(ctx, http.StatusInternalServerError, domain.ErrCodeInternal, "internal error")
				return
			case got != role:
				logger.WithRequestID(stdCtx, log).Info("role check denied",
					zap.String("email", identity),
					zap.String("role", string(got)),
					zap.String("required", string(role)))
				writeError(ctx, http.StatusForbidden, domain.ErrCodeForbidden, "forbidden")
				return
			}
			next(ctx)
		}
	}
}
