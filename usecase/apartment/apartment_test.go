package apartment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/repository/memory"
)

func seeded(t *testing.T, n int) *UseCase {
	t.Helper()
	store := memory.New()
	for i := 1; i <= n; i++ {
		require.NoError(t, store.Apartments().Upsert(context.Background(), &domain.Apartment{
			FloorNo:     i/4 + 1,
			BlockName:   "A",
			ApartmentNo: 100 + i,
			Rent:        float64(1000 + i*100),
			Available:   true,
		}))
	}
	return New(store.Apartments())
}

func TestListDefaultsToFirstPageOfSix(t *testing.T) {
	uc := seeded(t, 20)

	page, err := uc.List(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultLimit, page.Limit)
	assert.Equal(t, 20, page.Total)
	assert.Equal(t, 4, page.TotalPages)
	require.Len(t, page.Items, 6)
	assert.Equal(t, 101, page.Items[0].ApartmentNo)
}

func TestListPagesAndFiltersByRent(t *testing.T) {
	uc := seeded(t, 20)

	page, err := uc.List(context.Background(), Query{Page: 4, Limit: 6})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 119, page.Items[0].ApartmentNo)

	page, err = uc.List(context.Background(), Query{MinRent: 1500, MaxRent: 2000, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, MaxLimit, page.Limit)
	assert.Equal(t, 6, page.Total)
	for _, a := range page.Items {
		assert.GreaterOrEqual(t, a.Rent, 1500.0)
		assert.LessOrEqual(t, a.Rent, 2000.0)
	}
}

func TestListRejectsInvertedRentRange(t *testing.T) {
	uc := seeded(t, 1)

	_, err := uc.List(context.Background(), Query{MinRent: 3000, MaxRent: 1000})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.List(context.Background(), Query{MinRent: -1})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestListEmptyCatalog(t *testing.T) {
	uc := seeded(t, 0)

	page, err := uc.List(context.Background(), Query{Page: 3})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Zero(t, page.TotalPages)
}

func TestGet(t *testing.T) {
	uc := seeded(t, 2)
	page, err := uc.List(context.Background(), Query{})
	require.NoError(t, err)

	got, err := uc.Get(context.Background(), page.Items[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 102, got.ApartmentNo)

	_, err = uc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrApartmentNotFound)
	_, err = uc.Get(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrApartmentNotFound)
}
