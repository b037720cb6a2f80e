package memory

import (
	"context"
	"testing"

	"github.com/devquery-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStore_GetHidesDisabled(t *testing.T) {
	s := NewUserStore(
		domain.User{UserID: "u1", Username: "alice", Enable: 1},
		domain.User{UserID: "u2", Username: "bob", Enable: 0},
	)

	u, err := s.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = s.Get(context.Background(), "u2")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserStore_SoftDelete(t *testing.T) {
	s := NewUserStore(domain.User{UserID: "u1", Username: "alice", Enable: 1})

	require.NoError(t, s.SoftDelete(context.Background(), "u1"))
	_, err := s.Get(context.Background(), "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = s.GetByUsername(context.Background(), "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserStore_PutThenLookupByEmail(t *testing.T) {
	s := NewUserStore()
	require.NoError(t, s.Put(context.Background(), &domain.User{
		UserID: "u1", Username: "alice", Email: "alice@example.com", Enable: 1,
	}))

	u, err := s.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)
}
