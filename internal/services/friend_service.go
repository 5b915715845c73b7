package services

import (
	"context"
	"fmt"
	"time"

	"friendship-service/internal/logger"
	"friendship-service/internal/models"
	"friendship-service/internal/repositories"
	"friendship-service/internal/telemetry"
)

// FriendService runs the friend request workflow:
// pending --accept(receiver)--> accepted, pending --reject(receiver)--> rejected.
// Accepting commits the friendship edge in the same transaction.
type FriendService struct {
	users    repositories.UserRepository
	friends  repositories.FriendRepository
	presence repositories.PresenceRepository
	events   *telemetry.EventEmitter
}

func NewFriendService(users repositories.UserRepository, friends repositories.FriendRepository, presence repositories.PresenceRepository, events *telemetry.EventEmitter) *FriendService {
	return &FriendService{users: users, friends: friends, presence: presence, events: events}
}

func (s *FriendService) SendRequest(ctx context.Context, senderID, receiverID int64) (*models.FriendRequest, error) {
	if senderID == receiverID {
		return nil, models.ErrSelfRequest
	}
	if _, err := s.users.GetByID(ctx, senderID); err != nil {
		return nil, fmt.Errorf("sender %d: %w", senderID, err)
	}
	if _, err := s.users.GetByID(ctx, receiverID); err != nil {
		return nil, fmt.Errorf("receiver %d: %w", receiverID, err)
	}

	req, err := s.friends.CreateRequest(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).InfoContext(ctx, "friend request created",
		"request_id", req.ID, "sender_id", senderID, "receiver_id", receiverID)
	s.events.Emit(ctx, telemetry.EventRequestCreated, requestPayload(req))
	return req, nil
}

// ListReceived returns pending requests addressed to receiverID, newest first.
func (s *FriendService) ListReceived(ctx context.Context, receiverID int64) ([]models.ReceivedRequest, error) {
	reqs, err := s.friends.GetIncomingRequests(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return []models.ReceivedRequest{}, nil
	}

	senderIDs := make([]int64, len(reqs))
	for i, req := range reqs {
		senderIDs[i] = req.SenderID
	}
	senders, err := s.users.GetByIDs(ctx, senderIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.UserSummary, len(senders))
	for i := range senders {
		byID[senders[i].ID] = senders[i].Summary()
	}

	out := make([]models.ReceivedRequest, 0, len(reqs))
	for _, req := range reqs {
		sender, ok := byID[req.SenderID]
		if !ok {
			sender = models.UserSummary{ID: req.SenderID}
		}
		out = append(out, models.ReceivedRequest{FriendRequest: req, Sender: sender})
	}
	return out, nil
}

func (s *FriendService) CountReceived(ctx context.Context, receiverID int64) (int, error) {
	return s.friends.CountIncomingRequests(ctx, receiverID)
}

func (s *FriendService) AcceptRequest(ctx context.Context, requestID, actorID int64) error {
	req, err := s.friends.ResolveRequest(ctx, requestID, actorID, models.RequestAccepted)
	if err != nil {
		return err
	}

	logger.FromContext(ctx).InfoContext(ctx, "friend request accepted",
		"request_id", req.ID, "sender_id", req.SenderID, "receiver_id", req.ReceiverID)
	s.events.Emit(ctx, telemetry.EventRequestAccepted, requestPayload(req))
	s.events.Emit(ctx, telemetry.EventFriendshipCreated, telemetry.FriendshipPayload{
		UserID:   req.SenderID,
		FriendID: req.ReceiverID,
		At:       time.Now().UTC(),
	})
	return nil
}

func (s *FriendService) RejectRequest(ctx context.Context, requestID, actorID int64) error {
	req, err := s.friends.ResolveRequest(ctx, requestID, actorID, models.RequestRejected)
	if err != nil {
		return err
	}

	logger.FromContext(ctx).InfoContext(ctx, "friend request rejected",
		"request_id", req.ID, "sender_id", req.SenderID, "receiver_id", req.ReceiverID)
	s.events.Emit(ctx, telemetry.EventRequestRejected, requestPayload(req))
	return nil
}

// ListFriends returns userID's friends ordered by id.
func (s *FriendService) ListFriends(ctx context.Context, userID int64) ([]models.User, error) {
	ids, err := s.friends.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return overlayPresence(ctx, s.presence, users)
}

func (s *FriendService) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	return s.friends.AreFriends(ctx, userID, otherID)
}

// HasPendingRequest reports an open request between the two users in either direction.
func (s *FriendService) HasPendingRequest(ctx context.Context, userID, otherID int64) (bool, error) {
	return s.friends.HasPendingRequest(ctx, userID, otherID)
}

// Unfriend removes the edge between actorID and friendID. Either side may do it.
func (s *FriendService) Unfriend(ctx context.Context, actorID, friendID int64) error {
	if err := s.friends.DeleteFriendship(ctx, actorID, friendID); err != nil {
		return err
	}

	logger.FromContext(ctx).InfoContext(ctx, "friendship removed", "user_id", actorID, "friend_id", friendID)
	s.events.Emit(ctx, telemetry.EventFriendshipDeleted, telemetry.FriendshipPayload{
		UserID:   actorID,
		FriendID: friendID,
		At:       time.Now().UTC(),
	})
	return nil
}

func requestPayload(req *models.FriendRequest) telemetry.FriendRequestPayload {
	return telemetry.FriendRequestPayload{
		RequestID:  req.ID,
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Status:     string(req.Status),
		CreatedAt:  req.CreatedAt,
	}
}
