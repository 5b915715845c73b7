package services

import (
	"context"
	"fmt"
	"slices"

	"friendship-service/internal/models"
	"friendship-service/internal/repositories"
)

// UserService is the directory of users that may be friended.
type UserService struct {
	users    repositories.UserRepository
	friends  repositories.FriendRepository
	presence repositories.PresenceRepository
}

func NewUserService(users repositories.UserRepository, friends repositories.FriendRepository, presence repositories.PresenceRepository) *UserService {
	return &UserService{users: users, friends: friends, presence: presence}
}

// GetUserByID looks up id as seen by viewerID. Presence is only shown when id
// is the viewer or one of the viewer's friends.
func (s *UserService) GetUserByID(ctx context.Context, viewerID, id int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", id, err)
	}
	visible, err := s.visiblePresence(ctx, viewerID, []models.User{*user})
	if err != nil {
		return nil, err
	}
	return &visible[0], nil
}

func (s *UserService) ListUsers(ctx context.Context, viewerID int64) ([]models.User, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.visiblePresence(ctx, viewerID, users)
}

// ListEligibleUsers returns every user other than userID that userID is not
// already friends with and shares no pending request with. None of them are
// friends, so none carry presence.
func (s *UserService) ListEligibleUsers(ctx context.Context, userID int64) ([]models.User, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("user %d: %w", userID, err)
	}
	related, err := s.friends.ListRelatedUserIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	all, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	eligible := make([]models.User, 0, len(all))
	for _, u := range all {
		if u.ID == userID || slices.Contains(related, u.ID) {
			continue
		}
		u.IsCoworking = false
		eligible = append(eligible, u)
	}
	return eligible, nil
}

// visiblePresence sets IsCoworking from the presence store for viewerID and
// viewerID's friends and clears it for everyone else.
func (s *UserService) visiblePresence(ctx context.Context, viewerID int64, users []models.User) ([]models.User, error) {
	friendIDs, err := s.friends.ListFriends(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	visible := make([]int64, 0, len(friendIDs)+1)
	for _, u := range users {
		if u.ID == viewerID || slices.Contains(friendIDs, u.ID) {
			visible = append(visible, u.ID)
		}
	}

	var present map[int64]bool
	if s.presence != nil && len(visible) > 0 {
		if present, err = s.presence.ArePresent(ctx, visible); err != nil {
			return nil, err
		}
	}
	for i := range users {
		switch {
		case !slices.Contains(visible, users[i].ID):
			users[i].IsCoworking = false
		case present != nil:
			users[i].IsCoworking = present[users[i].ID]
		}
	}
	return users, nil
}

// overlayPresence replaces IsCoworking with the value held by the presence
// store, which may live outside the users table.
func overlayPresence(ctx context.Context, presence repositories.PresenceRepository, users []models.User) ([]models.User, error) {
	if presence == nil || len(users) == 0 {
		return users, nil
	}
	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	present, err := presence.ArePresent(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].IsCoworking = present[users[i].ID]
	}
	return users, nil
}
