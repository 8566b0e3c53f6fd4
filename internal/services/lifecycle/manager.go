package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownFunc releases one component.
type ShutdownFunc func(ctx context.Context) error

type component struct {
	name string
	stop ShutdownFunc
}

// Manager owns the process lifetime: it turns termination signals into
// context cancellation and stops registered components newest first, so each
// one is closed before whatever it was built on.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu         sync.Mutex
	components []component
	once       sync.Once
	result     error
}

func New(timeout time.Duration, logger *zap.Logger) *Manager {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{timeout: timeout, logger: logger}
}

// Register adds a component to stop on shutdown. Components registered after
// Shutdown started are never stopped by it.
func (m *Manager) Register(name string, stop ShutdownFunc) {
	if stop == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components = append(m.components, component{name: name, stop: stop})
}

// SignalContext returns a context cancelled by SIGINT or SIGTERM.
func (m *Manager) SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Shutdown stops every component once, sharing one deadline. Failures do not
// stop the sequence; they are joined and returned. Repeated calls return the
// first result.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.once.Do(func() {
		m.mu.Lock()
		components := append([]component(nil), m.components...)
		m.mu.Unlock()

		ctx, cancel := context.WithTimeout(ctx, m.timeout)
		defer cancel()

		for i := len(components) - 1; i >= 0; i-- {
			c := components[i]
			started := time.Now()
			if err := c.stop(ctx); err != nil {
				m.logger.Error("component stop failed", zap.String("component", c.name), zap.Error(err))
				m.result = errors.Join(m.result, fmt.Errorf("%s: %w", c.name, err))
				continue
			}
			m.logger.Info("component stopped", zap.String("component", c.name), zap.Duration("took", time.Since(started)))
		}
	})
	return m.result
}
