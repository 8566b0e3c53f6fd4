package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusliving/bms/domain"
	"github.com/nexusliving/bms/repository"
	"github.com/nexusliving/bms/repository/memory"
)

type brokenApartments struct {
	repository.ApartmentRepository
}

func (brokenApartments) Count(context.Context) (int, error) {
	return 0, errors.New("connection reset")
}

func TestOverviewComputesPercentages(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, store.Apartments().Upsert(ctx, &domain.Apartment{ApartmentNo: i, Rent: 1000, Available: true}))
	}
	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		require.NoError(t, store.Users().Upsert(ctx, &domain.User{Email: email}))
	}
	require.NoError(t, store.Users().SetRole(ctx, "a@x.com", domain.RoleMember))

	agreement, err := store.Agreements().Create(ctx, &domain.Agreement{UserEmail: "a@x.com", ApartmentID: "x"})
	require.NoError(t, err)
	require.NoError(t, store.Agreements().UpdateStatus(ctx, agreement.ID, domain.AgreementAccepted, nil))

	got, err := New(store.Apartments(), store.Agreements(), store.Users()).Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalApartments)
	assert.Equal(t, 1, got.AcceptedAgreements)
	assert.Equal(t, 2, got.Users)
	assert.Equal(t, 1, got.Members)
	assert.InDelta(t, 33.33, got.UnavailablePercentage, 0.001)
	assert.InDelta(t, 66.67, got.AvailablePercentage, 0.001)
}

func TestOverviewWithoutApartments(t *testing.T) {
	store := memory.New()

	got, err := New(store.Apartments(), store.Agreements(), store.Users()).Overview(context.Background())
	require.NoError(t, err)
	assert.Zero(t, got.AvailablePercentage)
	assert.Zero(t, got.UnavailablePercentage)
}

func TestOverviewPropagatesStoreErrors(t *testing.T) {
	store := memory.New()

	_, err := New(brokenApartments{store.Apartments()}, store.Agreements(), store.Users()).Overview(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count apartments")
}
