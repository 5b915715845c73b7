package models

type User struct {
	ID          int64  `db:"id" json:"id"`
	FirstName   string `db:"first_name" json:"first_name"`
	LastName    string `db:"last_name" json:"last_name"`
	Email       string `db:"email" json:"email"`
	Pronouns    string `db:"pronouns" json:"pronouns"`
	IsCoworking bool   `db:"is_coworking" json:"is_coworking"`
}

type UserSummary struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName}
}

// PresentFriend is one entry of a friends-presence answer.
type PresentFriend struct {
	FriendID  int64  `json:"friend_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ReceivedRequest pairs a pending request with its sender.
type ReceivedRequest struct {
	FriendRequest
	Sender UserSummary `json:"sender"`
}
