package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Probe checks one dependency. A failing required probe marks the service
// unhealthy.
type Probe struct {
	Name     string
	Required bool
	Timeout  time.Duration
	Ping     func(ctx context.Context) error
}

func PostgresProbe(pool *pgxpool.Pool) Probe {
	return Probe{Name: "postgresql", Required: true, Timeout: 3 * time.Second, Ping: pool.Ping}
}

func RedisProbe(client redislib.UniversalClient) Probe {
	return Probe{
		Name:     "redis",
		Required: true,
		Timeout:  2 * time.Second,
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	}
}

// Backlog is the local write-behind queue whose depth is reported alongside
// the probes.
type Backlog interface {
	Len() (int, error)
}

// Monitor probes dependencies on an interval and caches the last result.
// Until the first check completes the service reports healthy.
type Monitor struct {
	probes   []Probe
	backlog  Backlog
	interval time.Duration
	logger   *zap.Logger

	mu     sync.RWMutex
	status Status

	stopCh   chan struct{}
	stopOnce sync.Once
}

func New(probes []Probe, backlog Backlog, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		probes:   probes,
		backlog:  backlog,
		interval: interval,
		logger:   logger,
		status:   Status{Healthy: true, Services: map[string]ServiceStatus{}},
		stopCh:   make(chan struct{}),
	}
}

func (m *Monitor) Start() {
	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.Refresh()
		for {
			select {
			case <-ticker.C:
				m.Refresh()
			case <-m.stopCh:
				return
			}
		}
	}()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether every required dependency answered the last check.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Healthy
}

// Status returns a copy of the last check.
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := m.status
	out.Services = make(map[string]ServiceStatus, len(m.status.Services))
	for name, s := range m.status.Services {
		out.Services[name] = s
	}
	if m.status.Backlog != nil {
		backlog := *m.status.Backlog
		out.Backlog = &backlog
	}
	return out
}

// Refresh runs every probe concurrently and stores the result.
func (m *Monitor) Refresh() {
	results := make([]ServiceStatus, len(m.probes))
	var g errgroup.Group
	for i, probe := range m.probes {
		i, probe := i, probe
		g.Go(func() error {
			results[i] = check(probe)
			return nil
		})
	}
	_ = g.Wait()

	status := Status{
		Healthy:   true,
		Services:  make(map[string]ServiceStatus, len(m.probes)),
		Backlog:   m.checkBacklog(),
		CheckedAt: time.Now().UTC(),
	}
	for i, probe := range m.probes {
		status.Services[probe.Name] = results[i]
		if probe.Required && !results[i].Up {
			status.Healthy = false
		}
	}

	m.mu.Lock()
	wasHealthy := m.status.Healthy
	m.status = status
	m.mu.Unlock()

	switch {
	case wasHealthy && !status.Healthy:
		m.logger.Warn("dependency check failed", zap.Any("services", status.Services))
	case !wasHealthy && status.Healthy:
		m.logger.Info("dependencies recovered")
	}
}

func check(probe Probe) ServiceStatus {
	out := ServiceStatus{Required: probe.Required}
	if probe.Ping == nil {
		out.Error = "no probe configured"
		return out
	}
	timeout := probe.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	started := time.Now()
	err := probe.Ping(ctx)
	out.LatencyMS = time.Since(started).Milliseconds()
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Up = true
	return out
}

func (m *Monitor) checkBacklog() *BacklogStatus {
	if m.backlog == nil {
		return nil
	}
	n, err := m.backlog.Len()
	if err != nil {
		m.logger.Warn("buffer size check failed", zap.Error(err))
		return &BacklogStatus{}
	}
	return &BacklogStatus{Readable: true, Pending: n}
}
