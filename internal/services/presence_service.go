package services

import (
	"context"
	"fmt"

	"friendship-service/internal/logger"
	"friendship-service/internal/models"
	"friendship-service/internal/repositories"
	"friendship-service/internal/telemetry"
)

// PresenceService is the only writer of the coworking flag and answers which
// friends are coworking right now. Reads always hit the store.
type PresenceService struct {
	users    repositories.UserRepository
	friends  repositories.FriendRepository
	presence repositories.PresenceRepository
	events   *telemetry.EventEmitter
}

func NewPresenceService(users repositories.UserRepository, friends repositories.FriendRepository, presence repositories.PresenceRepository, events *telemetry.EventEmitter) *PresenceService {
	return &PresenceService{users: users, friends: friends, presence: presence, events: events}
}

func (s *PresenceService) SetPresence(ctx context.Context, userID int64, isCoworking bool) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return fmt.Errorf("user %d: %w", userID, err)
	}
	if err := s.presence.SetPresence(ctx, userID, isCoworking); err != nil {
		return err
	}

	logger.FromContext(ctx).DebugContext(ctx, "presence updated", "user_id", userID, "is_coworking", isCoworking)
	s.events.Emit(ctx, telemetry.EventPresenceUpdated, telemetry.PresencePayload{UserID: userID, IsCoworking: isCoworking})
	return nil
}

// FriendsCurrentlyPresent lists userID's friends whose flag is set, ordered by id.
// Presence is only ever looked up for ids in userID's friend list.
func (s *PresenceService) FriendsCurrentlyPresent(ctx context.Context, userID int64) ([]models.PresentFriend, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("user %d: %w", userID, err)
	}
	friendIDs, err := s.friends.ListFriends(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(friendIDs) == 0 {
		return []models.PresentFriend{}, nil
	}

	present, err := s.presence.ArePresent(ctx, friendIDs)
	if err != nil {
		return nil, err
	}
	presentIDs := make([]int64, 0, len(friendIDs))
	for _, id := range friendIDs {
		if present[id] {
			presentIDs = append(presentIDs, id)
		}
	}
	if len(presentIDs) == 0 {
		return []models.PresentFriend{}, nil
	}

	users, err := s.users.GetByIDs(ctx, presentIDs)
	if err != nil {
		return nil, err
	}
	out := make([]models.PresentFriend, 0, len(users))
	for _, u := range users {
		out = append(out, models.PresentFriend{FriendID: u.ID, FirstName: u.FirstName, LastName: u.LastName})
	}
	return out, nil
}
