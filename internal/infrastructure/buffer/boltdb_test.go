package buffer

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusliving/bms/domain"
)

func openQueue(t *testing.T) *Queue {
	t.Helper()
	queue, err := Open(filepath.Join(t.TempDir(), "nested", "buffer.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = queue.Close() })
	return queue
}

func TestPutCoalescesByEmail(t *testing.T) {
	queue := openQueue(t)
	now := time.Now()

	first, err := queue.Put(domain.User{Email: " Ann@X.com", Name: "Ann"}, now)
	require.NoError(t, err)
	second, err := queue.Put(domain.User{Email: "ann@x.com", Name: "Ann B"}, now.Add(time.Second))
	require.NoError(t, err)
	_, err = queue.Put(domain.User{Email: "bob@x.com"}, now)
	require.NoError(t, err)

	assert.Greater(t, second.Version, first.Version)

	entries, err := queue.Batch(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ann@x.com", entries[0].Email())
	assert.Equal(t, "Ann B", entries[0].Profile.Name)
	assert.Equal(t, second.Version, entries[0].Version)
	assert.Equal(t, "bob@x.com", entries[1].Email())

	n, err := queue.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPutRejectsBlankEmail(t *testing.T) {
	_, err := openQueue(t).Put(domain.User{Email: "  "}, time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestSettleIgnoresSupersededVersion(t *testing.T) {
	queue := openQueue(t)
	stale, err := queue.Put(domain.User{Email: "a@x.com", Name: "old"}, time.Now())
	require.NoError(t, err)
	fresh, err := queue.Put(domain.User{Email: "a@x.com", Name: "new"}, time.Now())
	require.NoError(t, err)

	settled, err := queue.Settle("a@x.com", stale.Version)
	require.NoError(t, err)
	assert.False(t, settled)

	entries, err := queue.Batch(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].Profile.Name)

	settled, err = queue.Settle("a@x.com", fresh.Version)
	require.NoError(t, err)
	assert.True(t, settled)

	n, err := queue.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFailCountsAttempts(t *testing.T) {
	queue := openQueue(t)
	entry, err := queue.Put(domain.User{Email: "a@x.com"}, time.Now())
	require.NoError(t, err)

	updated, found, err := queue.Fail("a@x.com", entry.Version, errors.New("connection refused"))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, updated.Attempts)
	assert.Equal(t, "connection refused", updated.LastError)

	_, found, err = queue.Fail("a@x.com", entry.Version+100, nil)
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = queue.Fail("missing@x.com", 1, nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestExpireDropsStaleEntries(t *testing.T) {
	queue := openQueue(t)
	now := time.Now()
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := queue.Put(domain.User{Email: email}, now.Add(-48*time.Hour))
		require.NoError(t, err)
	}
	_, err := queue.Put(domain.User{Email: "fresh@x.com"}, now)
	require.NoError(t, err)

	dropped, err := queue.Expire(now.Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 3, dropped)

	entries, err := queue.Batch(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fresh@x.com", entries[0].Email())
}

func TestClosedQueue(t *testing.T) {
	var queue *Queue
	_, err := queue.Len()
	assert.Error(t, err)
	_, err = queue.Settle("a@x.com", 1)
	assert.Error(t, err)
	assert.NoError(t, queue.Close())
}
