package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"friendship-service/internal/mocks"
	"friendship-service/internal/models"
)

func TestPresenceOnlyShowsFriends(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.befriend(t, 1, 2)
	f.befriend(t, 4, 1)

	for _, id := range []int64{2, 3, 4} {
		require.NoError(t, f.presence.SetPresence(ctx, id, true))
	}

	present, err := f.presence.FriendsCurrentlyPresent(ctx, 1)
	require.NoError(t, err)
	ids := make([]int64, len(present))
	for i, p := range present {
		ids[i] = p.FriendID
	}
	assert.Equal(t, []int64{2, 4}, ids)

	friends, err := f.friends.ListFriends(ctx, 1)
	require.NoError(t, err)
	for _, id := range ids {
		assert.Contains(t, friendIDs(friends), id)
	}
}

func TestPresenceWithNoFriendsIsEmpty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.presence.SetPresence(ctx, 2, true))

	present, err := f.presence.FriendsCurrentlyPresent(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, present)
	assert.Empty(t, present)
}

func TestPresenceLastWriteWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.befriend(t, 1, 2)

	require.NoError(t, f.presence.SetPresence(ctx, 2, true))
	require.NoError(t, f.presence.SetPresence(ctx, 2, false))

	present, err := f.presence.FriendsCurrentlyPresent(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, present)
}

func TestPresenceUnknownUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.ErrorIs(t, f.presence.SetPresence(ctx, 42, true), models.ErrNotFound)
	_, err := f.presence.FriendsCurrentlyPresent(ctx, 42)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestPresenceLooksUpFriendIDsOnly(t *testing.T) {
	users := new(mocks.MockUserRepository)
	friends := new(mocks.MockFriendRepository)
	presence := new(mocks.MockPresenceRepository)
	svc := NewPresenceService(users, friends, presence, nil)

	users.On("GetByID", mock.Anything, int64(1)).Return(&models.User{ID: 1}, nil).Once()
	friends.On("ListFriends", mock.Anything, int64(1)).Return([]int64{2, 5}, nil).Once()
	presence.On("ArePresent", mock.Anything, []int64{2, 5}).Return(map[int64]bool{2: false, 5: true}, nil).Once()
	users.On("GetByIDs", mock.Anything, []int64{5}).
		Return([]models.User{{ID: 5, FirstName: "Barbara", LastName: "Liskov"}}, nil).Once()

	present, err := svc.FriendsCurrentlyPresent(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []models.PresentFriend{{FriendID: 5, FirstName: "Barbara", LastName: "Liskov"}}, present)

	users.AssertExpectations(t)
	friends.AssertExpectations(t)
	presence.AssertExpectations(t)
}
