package httpcontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	appLogger "github.com/nexusliving/bms/pkg/logger"
)

func TestAttachScopesRequestIDAndActor(t *testing.T) {
	var ctx fasthttp.RequestCtx
	ctx.Request.Header.Set(RequestIDHeader, "req-1")
	SetIdentity(&ctx, "a@x.com")

	stdCtx, cancel := NewAdapter(time.Second).Attach(&ctx)
	defer cancel()

	assert.Equal(t, "req-1", appLogger.RequestID(stdCtx))
	assert.Equal(t, "a@x.com", appLogger.Actor(stdCtx))
	assert.Equal(t, "req-1", string(ctx.Response.Header.Peek(RequestIDHeader)))

	deadline, ok := stdCtx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, 500*time.Millisecond)
}

func TestAttachMintsStableRequestID(t *testing.T) {
	var ctx fasthttp.RequestCtx

	stdCtx, cancel := NewAdapter(0).Attach(&ctx)
	defer cancel()

	reqID := appLogger.RequestID(stdCtx)
	assert.NotEmpty(t, reqID)
	assert.Equal(t, reqID, RequestID(&ctx))
	assert.Empty(t, appLogger.Actor(stdCtx))
	assert.Empty(t, Identity(&ctx))
}

func TestSessionIDRoundTrip(t *testing.T) {
	var ctx fasthttp.RequestCtx
	assert.Empty(t, SessionID(&ctx))

	SetSessionID(&ctx, "sid-1")
	assert.Equal(t, "sid-1", SessionID(&ctx))
	assert.Empty(t, SessionID(nil))
}
