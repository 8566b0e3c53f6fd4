package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusliving/bms/repository/memory"
)

func TestApartmentsCatalog(t *testing.T) {
	catalog, err := Apartments()
	require.NoError(t, err)
	require.Len(t, catalog, 20)

	seen := map[int]bool{}
	for _, a := range catalog {
		assert.False(t, seen[a.ApartmentNo], "duplicate apartment %d", a.ApartmentNo)
		seen[a.ApartmentNo] = true
		assert.NotEmpty(t, a.Image)
		assert.Positive(t, a.Rent)
		assert.True(t, a.Available)
	}
	assert.Equal(t, 201, catalog[0].ApartmentNo)
	assert.Equal(t, 1150.0, catalog[0].Rent)
}

func TestApplyIsIdempotent(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	n, err := Apply(ctx, store.Apartments(), nil)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	_, err = Apply(ctx, store.Apartments(), nil)
	require.NoError(t, err)

	count, err := store.Apartments().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, count)
}
