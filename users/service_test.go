package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/authcore-go/apperror"
)

func TestGetProfileVanishedUser(t *testing.T) {
	svc := NewService(newFakeStore())

	// The ID was valid when the session was issued but the record is gone now.
	profile, err := svc.GetProfile(context.Background(), 42)
	require.Error(t, err)
	assert.Nil(t, profile)
	assert.True(t, apperror.IsNotFound(err))
}

func TestGetProfileOmitsPasswordHash(t *testing.T) {
	store := newFakeStore()
	created, err := store.Create(context.Background(), "alice", "alice@x.com", "hash")
	require.NoError(t, err)

	profile, err := NewService(store).GetProfile(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "alice@x.com", profile.Email)
}
