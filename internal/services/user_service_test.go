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

func TestListEligibleUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.befriend(t, 1, 2)
	_, err := f.friends.SendRequest(ctx, 3, 1)
	require.NoError(t, err)

	eligible, err := f.users.ListEligibleUsers(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{4}, friendIDs(eligible))

	eligible, err = f.users.ListEligibleUsers(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, friendIDs(eligible))

	_, err = f.users.ListEligibleUsers(ctx, 99)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestGetUserByIDOverlaysFriendPresence(t *testing.T) {
	users := new(mocks.MockUserRepository)
	friends := new(mocks.MockFriendRepository)
	presence := new(mocks.MockPresenceRepository)
	svc := NewUserService(users, friends, presence)

	users.On("GetByID", mock.Anything, int64(7)).Return(&models.User{ID: 7, FirstName: "Ken"}, nil).Once()
	friends.On("ListFriends", mock.Anything, int64(1)).Return([]int64{7}, nil).Once()
	presence.On("ArePresent", mock.Anything, []int64{7}).Return(map[int64]bool{7: true}, nil).Once()

	user, err := svc.GetUserByID(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.True(t, user.IsCoworking)

	users.AssertExpectations(t)
	friends.AssertExpectations(t)
	presence.AssertExpectations(t)
}

func TestGetUserByIDHidesNonFriendPresence(t *testing.T) {
	users := new(mocks.MockUserRepository)
	friends := new(mocks.MockFriendRepository)
	presence := new(mocks.MockPresenceRepository)
	svc := NewUserService(users, friends, presence)

	users.On("GetByID", mock.Anything, int64(7)).Return(&models.User{ID: 7, IsCoworking: true}, nil).Once()
	friends.On("ListFriends", mock.Anything, int64(1)).Return([]int64{}, nil).Once()

	user, err := svc.GetUserByID(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.False(t, user.IsCoworking)

	presence.AssertNotCalled(t, "ArePresent", mock.Anything, mock.Anything)
}

func TestGetUserByIDNotFound(t *testing.T) {
	users := new(mocks.MockUserRepository)
	svc := NewUserService(users, new(mocks.MockFriendRepository), new(mocks.MockPresenceRepository))

	users.On("GetByID", mock.Anything, int64(7)).Return(nil, models.ErrNotFound).Once()

	_, err := svc.GetUserByID(context.Background(), 1, 7)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestListUsersShowsOnlyFriendPresence(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.befriend(t, 1, 2)
	for _, id := range []int64{1, 2, 3, 4} {
		require.NoError(t, f.presence.SetPresence(ctx, id, true))
	}

	users, err := f.users.ListUsers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, users, 4)
	assert.True(t, users[0].IsCoworking)
	assert.True(t, users[1].IsCoworking)
	assert.False(t, users[2].IsCoworking)
	assert.False(t, users[3].IsCoworking)

	user, err := f.users.GetUserByID(ctx, 1, 3)
	require.NoError(t, err)
	assert.False(t, user.IsCoworking)

	eligible, err := f.users.ListEligibleUsers(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, []int64{3, 4}, friendIDs(eligible))
	for _, u := range eligible {
		assert.False(t, u.IsCoworking, "user %d", u.ID)
	}
}
