package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedBacklog struct {
	n   int
	err error
}

func (f fixedBacklog) Len() (int, error) { return f.n, f.err }

func ping(err error) func(context.Context) error {
	return func(context.Context) error { return err }
}

func TestRefreshMarksRequiredFailureUnhealthy(t *testing.T) {
	m := New([]Probe{
		{Name: "postgresql", Required: true, Ping: ping(nil)},
		{Name: "redis", Required: true, Ping: ping(errors.New("dial tcp: refused"))},
	}, fixedBacklog{n: 4}, 0, nil)

	assert.True(t, m.IsOnline(), "healthy before the first check")
	m.Refresh()

	status := m.Status()
	assert.False(t, status.Healthy)
	assert.False(t, m.IsOnline())
	assert.True(t, status.Services["postgresql"].Up)
	assert.Equal(t, "dial tcp: refused", status.Services["redis"].Error)
	require.NotNil(t, status.Backlog)
	assert.Equal(t, BacklogStatus{Readable: true, Pending: 4}, *status.Backlog)
	assert.False(t, status.CheckedAt.IsZero())
}

func TestOptionalProbeDoesNotDegrade(t *testing.T) {
	m := New([]Probe{
		{Name: "postgresql", Required: true, Ping: ping(nil)},
		{Name: "cache", Ping: ping(errors.New("down"))},
		{Name: "unconfigured"},
	}, nil, 0, nil)
	m.Refresh()

	status := m.Status()
	assert.True(t, status.Healthy)
	assert.False(t, status.Services["unconfigured"].Up)
	assert.Nil(t, status.Backlog)
}

func TestStatusReturnsCopy(t *testing.T) {
	m := New([]Probe{{Name: "postgresql", Required: true, Ping: ping(nil)}}, fixedBacklog{err: errors.New("closed")}, 0, nil)
	m.Refresh()

	status := m.Status()
	status.Services["postgresql"] = ServiceStatus{}
	status.Backlog.Pending = 99

	again := m.Status()
	assert.True(t, again.Services["postgresql"].Up)
	assert.False(t, again.Backlog.Readable)
	assert.Zero(t, again.Backlog.Pending)
}

func TestStopIsIdempotent(t *testing.T) {
	m := New(nil, nil, 0, nil)
	m.Start()
	m.Stop()
	m.Stop()
}
