package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/nexusliving/bms/api/transport"
	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/pkg/httpcontext"
)

type fakeAuth struct {
	email string
	sid   string
	err   error
	seen  string
}

func (f *fakeAuth) Authenticate(_ context.Context, raw string) (string, string, error) {
	f.seen = raw
	return f.email, f.sid, f.err
}

type fakeRoles map[string]domain.Role

func (f fakeRoles) RoleOf(_ context.Context, email string) (domain.Role, error) {
	if email == "broken@x.com" {
		return "", errors.New("connection refused")
	}
	role, ok := f[email]
	if !ok {
		return "", domain.ErrUserNotFound
	}
	return role, nil
}

func newCtx(ip string) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Init(&fasthttp.Request{}, &net.TCPAddr{IP: net.ParseIP(ip), Port: 4000}, nil)
	return &ctx
}

func okHandler(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(http.StatusOK)
}

func envelopeCode(t *testing.T, ctx *fasthttp.RequestCtx) string {
	t.Helper()
	var env transport.Envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &env))
	return env.Code
}

func TestJWTAuthSetsIdentity(t *testing.T) {
	auth := &fakeAuth{email: "a@x.com", sid: "sid-1"}
	ctx := newCtx("10.0.0.1")
	ctx.Request.Header.Set("Authorization", "Bearer abc.def")

	var identity, sid string
	JWTAuth(auth, httpcontext.NewAdapter(time.Second), nil)(func(ctx *fasthttp.RequestCtx) {
		identity = httpcontext.Identity(ctx)
		sid = httpcontext.SessionID(ctx)
	})(ctx)

	assert.Equal(t, "abc.def", auth.seen)
	assert.Equal(t, "a@x.com", identity)
	assert.Equal(t, "sid-1", sid)
}

func TestJWTAuthRejectsMissingOrInvalidToken(t *testing.T) {
	ctx := newCtx("10.0.0.1")
	JWTAuth(&fakeAuth{}, nil, nil)(okHandler)(ctx)
	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
	assert.Equal(t, "UNAUTHORIZED", envelopeCode(t, ctx))

	ctx = newCtx("10.0.0.1")
	ctx.Request.Header.Set("Authorization", "Bearer bad")
	JWTAuth(&fakeAuth{err: domain.ErrUnauthorized}, nil, nil)(okHandler)(ctx)
	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
}

func TestJWTAuthIgnoresSpoofedHeaders(t *testing.T) {
	ctx := newCtx("10.0.0.1")
	ctx.Request.Header.Set("X-User-Email", "admin@x.com")
	JWTAuth(&fakeAuth{}, nil, nil)(okHandler)(ctx)
	assert.Equal(t, http.StatusUnauthorized, ctx.Response.StatusCode())
	assert.Empty(t, httpcontext.Identity(ctx))
}

func TestJWTAuthReportsStoreFailure(t *testing.T) {
	ctx := newCtx("10.0.0.1")
	ctx.Request.Header.Set("Authorization", "Bearer tok")
	JWTAuth(&fakeAuth{err: errors.New("redis down")}, nil, nil)(okHandler)(ctx)
	assert.Equal(t, http.StatusInternalServerError, ctx.Response.StatusCode())
}

func TestRequireRole(t *testing.T) {
	roles := fakeRoles{"boss@x.com": domain.RoleAdmin, "m@x.com": domain.RoleMember}
	guard := RequireRole(roles, domain.RoleAdmin, nil, nil)(okHandler)

	cases := []struct {
		identity string
		status   int
	}{
		{"boss@x.com", http.StatusOK},
		{"m@x.com", http.StatusForbidden},
		{"ghost@x.com", http.StatusForbidden},
		{"broken@x.com", http.StatusInternalServerError},
		{"", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		ctx := newCtx("10.0.0.1")
		if tc.identity != "" {
			httpcontext.SetIdentity(ctx, tc.identity)
		}
		guard(ctx)
		assert.Equal(t, tc.status, ctx.Response.StatusCode(), tc.identity)
	}
}

func TestRateLimiterPerClient(t *testing.T) {
	clock := time.Now()
	rl := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 2}, nil)
	rl.now = func() time.Time { return clock }
	handler := rl.Middleware()(okHandler)

	for i := 0; i < 2; i++ {
		ctx := newCtx("10.0.0.1")
		handler(ctx)
		require.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	}

	ctx := newCtx("10.0.0.1")
	handler(ctx)
	assert.Equal(t, http.StatusTooManyRequests, ctx.Response.StatusCode())
	assert.Equal(t, "RATE_LIMITED", envelopeCode(t, ctx))
	assert.Equal(t, "2", string(ctx.Response.Header.Peek("Retry-After")))

	other := newCtx("10.0.0.2")
	handler(other)
	assert.Equal(t, http.StatusOK, other.Response.StatusCode())

	clock = clock.Add(time.Second)
	ctx = newCtx("10.0.0.1")
	handler(ctx)
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	clock := time.Now()
	rl := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1, Burst: 1}, nil)
	rl.now = func() time.Time { return clock }
	handler := rl.Middleware()(okHandler)

	handler(newCtx("10.0.0.1"))
	handler(newCtx("10.0.0.2"))
	assert.Equal(t, 2, rl.tracked())

	clock = clock.Add(limiterIdleTTL + time.Minute)
	handler(newCtx("10.0.0.3"))
	assert.Equal(t, 1, rl.tracked())
}
