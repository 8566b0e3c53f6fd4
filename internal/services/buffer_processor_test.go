package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/internal/infrastructure/buffer"
	"github.com/nexusliving/bms/repository"
	"github.com/nexusliving/bms/repository/memory"
)

type staticHealth bool

func (s staticHealth) IsOnline() bool { return bool(s) }

type flakyUsers struct {
	repository.UserRepository
	failures int
	onUpsert func()
}

func (f *flakyUsers) Upsert(ctx context.Context, user *domain.User) error {
	if f.onUpsert != nil {
		f.onUpsert()
	}
	if f.failures > 0 {
		f.failures--
		return errors.New("connection refused")
	}
	return f.UserRepository.Upsert(ctx, user)
}

func newProcessor(t *testing.T, health ConnectionHealth, users repository.UserRepository) (*BufferProcessor, *buffer.Queue) {
	t.Helper()
	queue, err := buffer.Open(filepath.Join(t.TempDir(), "buffer.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = queue.Close() })

	bp, err := NewBufferProcessor(queue, health, users, nil, ProcessorConfig{MaxRetries: 2})
	require.NoError(t, err)
	return bp, queue
}

func TestBridgeDefersAndDrainReplaysProfile(t *testing.T) {
	mem := memory.New()
	bp, queue := newProcessor(t, staticHealth(true), mem.Users())
	bridge := NewBufferBridge(queue, nil)

	require.NoError(t, bridge.DeferProfile(context.Background(), domain.User{Email: "A@x.com", Name: "Ann", Role: domain.RoleAdmin}))
	assert.Equal(t, 1, bp.Pending())

	report, err := bp.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DrainReport{Replayed: 1}, report)
	assert.Zero(t, bp.Pending())

	user, err := mem.Users().GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.Name)
	assert.Equal(t, domain.RoleUser, user.Role)
}

func TestDrainSkipsWhileOffline(t *testing.T) {
	bp, queue := newProcessor(t, staticHealth(false), memory.New().Users())
	require.NoError(t, NewBufferBridge(queue, nil).DeferProfile(context.Background(), domain.User{Email: "a@x.com"}))

	report, err := bp.Drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report)
	assert.Equal(t, 1, bp.Pending())
}

func TestDrainRetriesThenDrops(t *testing.T) {
	users := &flakyUsers{UserRepository: memory.New().Users(), failures: 5}
	bp, queue := newProcessor(t, staticHealth(true), users)
	require.NoError(t, NewBufferBridge(queue, nil).DeferProfile(context.Background(), domain.User{Email: "a@x.com"}))

	report, err := bp.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Retried)

	entries, err := queue.Batch(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Attempts)
	assert.Equal(t, "connection refused", entries[0].LastError)

	report, err = bp.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Dropped)
	assert.Zero(t, bp.Pending())
}

func TestDrainKeepsUpsertQueuedDuringReplay(t *testing.T) {
	mem := memory.New()
	users := &flakyUsers{UserRepository: mem.Users()}
	bp, queue := newProcessor(t, staticHealth(true), users)
	bridge := NewBufferBridge(queue, nil)
	require.NoError(t, bridge.DeferProfile(context.Background(), domain.User{Email: "a@x.com", Name: "first"}))

	users.onUpsert = func() {
		users.onUpsert = nil
		require.NoError(t, bridge.DeferProfile(context.Background(), domain.User{Email: "a@x.com", Name: "second"}))
	}

	report, err := bp.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Superseded)
	assert.Equal(t, 1, bp.Pending())

	report, err = bp.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Replayed)

	user, err := mem.Users().GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "second", user.Name)
}

func TestDrainExpiresStaleEntries(t *testing.T) {
	bp, queue := newProcessor(t, staticHealth(true), memory.New().Users())
	_, err := queue.Put(domain.User{Email: "old@x.com"}, time.Now().Add(-48*time.Hour))
	require.NoError(t, err)

	report, err := bp.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DrainReport{Expired: 1}, report)
	assert.Zero(t, bp.Pending())
}

func TestBridgeRejectsBlankEmail(t *testing.T) {
	_, queue := newProcessor(t, nil, memory.New().Users())
	err := NewBufferBridge(queue, nil).DeferProfile(context.Background(), domain.User{})
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}
