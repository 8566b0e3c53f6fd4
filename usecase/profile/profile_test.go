package profile

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

type recordingDeferrer struct {
	calls []domain.User
	err   error
}

func (d *recordingDeferrer) DeferProfile(_ context.Context, user domain.User) error {
	if d.err != nil {
		return d.err
	}
	d.calls = append(d.calls, user)
	return nil
}

type downUsers struct {
	repository.UserRepository
	err error
}

func (d downUsers) Upsert(context.Context, *domain.User) error { return d.err }

func TestUpsertProfileDefaultsRoleAndIgnoresCallerRole(t *testing.T) {
	store := memory.New()
	uc := New(store.Users(), nil, nil)
	ctx := context.Background()

	u, err := uc.UpsertProfile(ctx, &domain.User{Email: " A@X.com", Name: "Ann", Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, domain.RoleUser, u.Role)

	require.NoError(t, store.Users().SetRole(ctx, "a@x.com", domain.RoleMember))

	u, err = uc.UpsertProfile(ctx, &domain.User{Email: "a@x.com", PhotoURL: "https://img/a.png"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, u.Role, "upsert never resets the role")
	assert.Equal(t, "Ann", u.Name)
	assert.Equal(t, "https://img/a.png", u.PhotoURL)
}

func TestUpsertProfileValidatesEmail(t *testing.T) {
	uc := New(memory.New().Users(), nil, nil)

	_, err := uc.UpsertProfile(context.Background(), &domain.User{Email: "nobody"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.UpsertProfile(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
}

func TestUpsertProfileDefersWhenStoreIsDown(t *testing.T) {
	storeDown := errors.New("connection refused")
	buf := &recordingDeferrer{}
	uc := New(downUsers{UserRepository: memory.New().Users(), err: storeDown}, buf, nil)

	u, err := uc.UpsertProfile(context.Background(), &domain.User{Email: "a@x.com", Name: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
	require.Len(t, buf.calls, 1)
	assert.Equal(t, "Ann", buf.calls[0].Name)
}

func TestUpsertProfileReturnsStoreErrorWhenDeferFails(t *testing.T) {
	storeDown := errors.New("connection refused")
	buf := &recordingDeferrer{err: errors.New("disk full")}
	uc := New(downUsers{UserRepository: memory.New().Users(), err: storeDown}, buf, nil)

	_, err := uc.UpsertProfile(context.Background(), &domain.User{Email: "a@x.com"})
	assert.ErrorIs(t, err, storeDown)
}

func TestRoleOf(t *testing.T) {
	store := memory.New()
	uc := New(store.Users(), nil, nil)
	ctx := context.Background()

	_, err := uc.RoleOf(ctx, "a@x.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = uc.UpsertProfile(ctx, &domain.User{Email: "a@x.com"})
	require.NoError(t, err)
	require.NoError(t, store.Users().SetRole(ctx, "a@x.com", domain.RoleAdmin))

	role, err := uc.RoleOf(ctx, "A@x.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)
}

func TestDemote(t *testing.T) {
	store := memory.New()
	uc := New(store.Users(), nil, nil)
	ctx := context.Background()

	for _, email := range []string{"m@x.com", "u@x.com", "boss@x.com"} {
		_, err := uc.UpsertProfile(ctx, &domain.User{Email: email})
		require.NoError(t, err)
	}
	require.NoError(t, store.Users().SetRole(ctx, "m@x.com", domain.RoleMember))
	require.NoError(t, store.Users().SetRole(ctx, "boss@x.com", domain.RoleAdmin))

	u, err := uc.Demote(ctx, "m@x.com", "boss@x.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, u.Role)

	u, err = uc.Demote(ctx, "u@x.com", "boss@x.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, u.Role)

	_, err = uc.Demote(ctx, "boss@x.com", "boss@x.com")
	assert.ErrorIs(t, err, domain.ErrAdminDemotion)

	_, err = uc.Demote(ctx, "ghost@x.com", "boss@x.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestListUsersFiltersByRole(t *testing.T) {
	store := memory.New()
	uc := New(store.Users(), nil, nil)
	ctx := context.Background()

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		_, err := uc.UpsertProfile(ctx, &domain.User{Email: email})
		require.NoError(t, err)
	}
	require.NoError(t, store.Users().SetRole(ctx, "b@x.com", domain.RoleMember))

	members, err := uc.ListUsers(ctx, repository.UserFilter{Role: domain.RoleMember})
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "b@x.com", members[0].Email)

	all, err := uc.ListUsers(ctx, repository.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = uc.ListUsers(ctx, repository.UserFilter{Role: "owner"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	none, err := New(memory.New().Users(), nil, nil).ListUsers(ctx, repository.UserFilter{})
	require.NoError(t, err)
	assert.NotNil(t, none)
}
