package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairwaylabs/teetime-backend/internal/auth"
	"github.com/fairwaylabs/teetime-backend/internal/pkg/request"
)

type fakeRepo struct {
	users  map[string]*User // by id
	hashes map[string]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: map[string]*User{}, hashes: map[string]string{}}
}

func (f *fakeRepo) Create(_ context.Context, u *User, passwordHash string) error {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return ErrEmailAlreadyUsed
		}
	}
	f.users[u.ID] = u
	f.hashes[u.ID] = passwordHash
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) GetPasswordHash(_ context.Context, id string) (string, error) {
	h, ok := f.hashes[id]
	if !ok {
		return "", ErrNotFound
	}
	return h, nil
}

func (f *fakeRepo) List(_ context.Context, _ request.ListParams) ([]*User, int, error) {
	var out []*User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Update(_ context.Context, u *User) error {
	if _, ok := f.users[u.ID]; !ok {
		return ErrNotFound
	}
	f.users[u.ID] = u
	return nil
}

func newTestService() Service {
	// Minimum bcrypt cost keeps the test fast.
	return NewService(newFakeRepo(), auth.NewBcryptPasswordHasherWithCost(4))
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	u, err := svc.Register(ctx, "  Golfer@Example.COM ", "Sam Golfer", "secret-password")
	require.NoError(t, err)
	assert.Equal(t, "golfer@example.com", u.Email)
	assert.False(t, u.IsSystemAdmin)

	t.Run("login with normalized email", func(t *testing.T) {
		got, err := svc.Login(ctx, "GOLFER@example.com", "secret-password")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "golfer@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidLogin)
	})

	t.Run("unknown account reports the same error as a bad password", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "secret-password")
		assert.ErrorIs(t, err, ErrInvalidLogin)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, "golfer@example.com", "Other", "another-password")
		assert.ErrorIs(t, err, ErrEmailAlreadyUsed)
	})
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	u, err := svc.Register(ctx, "admin@example.com", "Admin", "secret-password")
	require.NoError(t, err)

	name := "Renamed"
	isAdmin := true
	updated, err := svc.Update(ctx, u.ID, &name, &isAdmin)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.True(t, updated.IsSystemAdmin)

	ok, err := svc.IsSystemAdmin(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}
