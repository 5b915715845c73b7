package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"friendship-service/internal/models"
	"friendship-service/internal/rabbitmq"
	"friendship-service/internal/repositories"
)

// MockFriendRepository mocks FriendRepository behavior for handlers and services.
type MockFriendRepository struct {
	mock.Mock
}

func (m *MockFriendRepository) CreateRequest(ctx context.Context, senderID, receiverID int64) (*models.FriendRequest, error) {
	args := m.Called(ctx, senderID, receiverID)
	var req *models.FriendRequest
	if val := args.Get(0); val != nil {
		req = val.(*models.FriendRequest)
	}
	return req, args.Error(1)
}

func (m *MockFriendRepository) GetRequest(ctx context.Context, requestID int64) (*models.FriendRequest, error) {
	args := m.Called(ctx, requestID)
	var req *models.FriendRequest
	if val := args.Get(0); val != nil {
		req = val.(*models.FriendRequest)
	}
	return req, args.Error(1)
}

func (m *MockFriendRepository) GetIncomingRequests(ctx context.Context, receiverID int64) ([]models.FriendRequest, error) {
	args := m.Called(ctx, receiverID)
	var reqs []models.FriendRequest
	if val := args.Get(0); val != nil {
		reqs = val.([]models.FriendRequest)
	}
	return reqs, args.Error(1)
}

func (m *MockFriendRepository) CountIncomingRequests(ctx context.Context, receiverID int64) (int, error) {
	args := m.Called(ctx, receiverID)
	return args.Int(0), args.Error(1)
}

func (m *MockFriendRepository) ResolveRequest(ctx context.Context, requestID, actorID int64, to models.RequestStatus) (*models.FriendRequest, error) {
	args := m.Called(ctx, requestID, actorID, to)
	var req *models.FriendRequest
	if val := args.Get(0); val != nil {
		req = val.(*models.FriendRequest)
	}
	return req, args.Error(1)
}

func (m *MockFriendRepository) ListFriends(ctx context.Context, userID int64) ([]int64, error) {
	args := m.Called(ctx, userID)
	var friends []int64
	if val := args.Get(0); val != nil {
		friends = val.([]int64)
	}
	return friends, args.Error(1)
}

func (m *MockFriendRepository) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFriendRepository) HasPendingRequest(ctx context.Context, userID, otherID int64) (bool, error) {
	args := m.Called(ctx, userID, otherID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFriendRepository) DeleteFriendship(ctx context.Context, userID, friendID int64) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

func (m *MockFriendRepository) ListRelatedUserIDs(ctx context.Context, userID int64) ([]int64, error) {
	args := m.Called(ctx, userID)
	var ids []int64
	if val := args.Get(0); val != nil {
		ids = val.([]int64)
	}
	return ids, args.Error(1)
}

// MockUserRepository mocks the user directory.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.User, error) {
	args := m.Called(ctx, ids)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) ListAll(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	var users []models.User
	if val := args.Get(0); val != nil {
		users = val.([]models.User)
	}
	return users, args.Error(1)
}

// MockPresenceRepository mocks the coworking flag store.
type MockPresenceRepository struct {
	mock.Mock
}

func (m *MockPresenceRepository) SetPresence(ctx context.Context, userID int64, isCoworking bool) error {
	args := m.Called(ctx, userID, isCoworking)
	return args.Error(0)
}

func (m *MockPresenceRepository) ArePresent(ctx context.Context, ids []int64) (map[int64]bool, error) {
	args := m.Called(ctx, ids)
	var present map[int64]bool
	if val := args.Get(0); val != nil {
		present = val.(map[int64]bool)
	}
	return present, args.Error(1)
}

// Compile-time assertions
var (
	_ repositories.FriendRepository   = (*MockFriendRepository)(nil)
	_ repositories.UserRepository     = (*MockUserRepository)(nil)
	_ repositories.PresenceRepository = (*MockPresenceRepository)(nil)
)

// MockPublisher mocks RabbitMQ publisher behavior for telemetry.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ rabbitmq.Publisher = (*MockPublisher)(nil)
