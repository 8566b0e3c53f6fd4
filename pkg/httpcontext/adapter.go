package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	appLogger "github.com/nexusliving/bms/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

// User values under which the auth middleware stores the verified caller.
// They live on the fasthttp request, never in headers a client could set.
const (
	IdentityUserValue = "bms.identity"
	SessionUserValue  = "bms.session"
)

// Adapter turns a fasthttp request into a bounded context.Context.
type Adapter struct {
	timeout time.Duration
}

func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{timeout: timeout}
}

// Attach derives the context a handler passes to its use case. It is rooted
// at Background, so a client hanging up does not cancel a store call that
// was already issued; the adapter timeout still bounds it. The request ID
// is echoed on the response and, with the verified identity, scoped into
// the context for logging.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	stdCtx, cancel := context.WithTimeout(context.Background(), a.timeout)
	if ctx == nil {
		return appLogger.ContextWithRequestID(stdCtx, uuid.NewString()), cancel
	}

	reqID := RequestID(ctx)
	ctx.Response.Header.Set(RequestIDHeader, reqID)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)
	if identity := Identity(ctx); identity != "" {
		stdCtx = appLogger.ContextWithActor(stdCtx, identity)
	}
	return stdCtx, cancel
}

// RequestID returns the caller-supplied request ID or mints one. A minted ID
// is remembered on the request so later calls agree.
func RequestID(ctx *fasthttp.RequestCtx) string {
	if id := strings.TrimSpace(string(ctx.Response.Header.Peek(RequestIDHeader))); id != "" {
		return id
	}
	if id := strings.TrimSpace(string(ctx.Request.Header.Peek(RequestIDHeader))); id != "" {
		return id
	}
	id := uuid.NewString()
	ctx.Response.Header.Set(RequestIDHeader, id)
	return id
}

// Identity returns the verified caller email set by the auth middleware.
func Identity(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return ""
	}
	identity, _ := ctx.UserValue(IdentityUserValue).(string)
	return identity
}

func SetIdentity(ctx *fasthttp.RequestCtx, email string) {
	ctx.SetUserValue(IdentityUserValue, email)
}

// SessionID returns the session id bound to the caller's token.
func SessionID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return ""
	}
	sid, _ := ctx.UserValue(SessionUserValue).(string)
	return sid
}

func SetSessionID(ctx *fasthttp.RequestCtx, sessionID string) {
	ctx.SetUserValue(SessionUserValue, sessionID)
}
