package logger

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type scopeKey struct{}

// scope is the per-request metadata every log line should carry.
type scope struct {
	requestID string
	actor     string
}

// Config mirrors config.LoggerConfig but avoids importing the config package here.
type Config struct {
	Level    string
	Encoding string
	Service  string
	// Output defaults to stdout.
	Output io.Writer
}

// New builds a zap.Logger. "console" encoding is meant for local runs and
// adds stack traces on errors; anything else logs JSON.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			return nil, fmt.Errorf("log level %q: %w", cfg.Level, err)
		}
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	opts := []zap.Option{zap.AddCaller()}
	var encoder zapcore.Encoder
	if cfg.Encoding == "console" {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	var out io.Writer = os.Stdout
	if cfg.Output != nil {
		out = cfg.Output
	}
	if cfg.Service != "" {
		opts = append(opts, zap.Fields(zap.String("service", cfg.Service)))
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(out)), level)
	return zap.New(core, opts...), nil
}

func scopeOf(ctx context.Context) scope {
	if ctx == nil {
		return scope{}
	}
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

// ContextWithRequestID attaches a request ID to ctx.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	s := scopeOf(ctx)
	s.requestID = requestID
	return context.WithValue(ctx, scopeKey{}, s)
}

// ContextWithActor attaches the verified caller identity to ctx.
func ContextWithActor(ctx context.Context, actor string) context.Context {
	s := scopeOf(ctx)
	s.actor = actor
	return context.WithValue(ctx, scopeKey{}, s)
}

func RequestID(ctx context.Context) string {
	return scopeOf(ctx).requestID
}

func Actor(ctx context.Context) string {
	return scopeOf(ctx).actor
}

// WithRequestID returns base enriched with the request ID and actor stored
// in ctx. base is returned unchanged when ctx carries neither.
func WithRequestID(ctx context.Context, base *zap.Logger) *zap.Logger {
	if base == nil {
		return base
	}
	s := scopeOf(ctx)
	var fields []zap.Field
	if s.requestID != "" {
		fields = append(fields, zap.String("request_id", s.requestID))
	}
	if s.actor != "" {
		fields = append(fields, zap.String("actor", s.actor))
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}
