package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nexusliving/bms/domain"
)

const (
	limiterIdleTTL    = 10 * time.Minute
	limiterSweepEvery = 5 * time.Minute
)

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-client token bucket keyed by remote IP. Forwarded
// headers are ignored.
type RateLimiter struct {
	cfg    RateLimitConfig
	logger *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	clients   map[string]*clientLimiter
	lastSweep time.Time
}

func NewRateLimiter(cfg RateLimitConfig, logger *zap.Logger) *RateLimiter {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		clients:   make(map[string]*clientLimiter),
		lastSweep: time.Now(),
	}
}

func (rl *RateLimiter) Middleware() Middleware {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			ip := ctx.RemoteIP().String()
			limiter := rl.limiter(ip)

			reservation := limiter.ReserveN(rl.now(), 1)
			if !reservation.OK() {
				rl.reject(ctx, ip, 0)
				return
			}
			if delay := reservation.DelayFrom(rl.now()); delay > 0 {
				reservation.CancelAt(rl.now())
				rl.reject(ctx, ip, int(delay.Seconds())+1)
				return
			}

			ctx.Response.Header.Set("X-RateLimit-Limit", strconv.Itoa(rl.cfg.Burst))
			ctx.Response.Header.Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.TokensAt(rl.now()))))
			next(ctx)
		}
	}
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) > limiterSweepEvery {
		for key, cl := range rl.clients {
			if now.Sub(cl.lastSeen) > limiterIdleTTL {
				delete(rl.clients, key)
			}
		}
		rl.lastSweep = now
	}

	cl, ok := rl.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RequestsPerSecond), rl.cfg.Burst)}
		rl.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.limiter
}

func (rl *RateLimiter) tracked() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.clients)
}

func (rl *RateLimiter) reject(ctx *fasthttp.RequestCtx, ip string, retryAfter int) {
	if retryAfter > 0 {
		ctx.Response.Header.Set("Retry-After", strconv.Itoa(retryAfter))
	}
	rl.logger.Debug("rate limit exceeded", zap.String("ip", ip), zap.ByteString("path", ctx.Path()))
	writeError(ctx, http.StatusTooManyRequests, domain.ErrCodeRateLimited, domain.ErrRateLimited.Message)
}
