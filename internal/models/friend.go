package models

import (
	"fmt"
	"time"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

type FriendRequest struct {
	ID         int64         `db:"id" json:"id"`
	SenderID   int64         `db:"sender_id" json:"sender_id"`
	ReceiverID int64         `db:"receiver_id" json:"receiver_id"`
	Status     RequestStatus `db:"status" json:"status"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
}

// Resolve moves a pending request to a terminal status on behalf of actorID.
// Only the receiver may resolve, and only once.
func (r *FriendRequest) Resolve(actorID int64, to RequestStatus) error {
	if to != RequestAccepted && to != RequestRejected {
		return fmt.Errorf("%w: %s", ErrInvalidTransition, to)
	}
	if r.ReceiverID != actorID {
		return ErrUnauthorized
	}
	if r.Status != RequestPending {
		return ErrAlreadyResolved
	}
	r.Status = to
	return nil
}

// Pair returns the unordered pair the request is about.
func (r *FriendRequest) Pair() Pair {
	return PairKey(r.SenderID, r.ReceiverID)
}

// Friendship is a confirmed edge stored once per unordered pair, smaller id first.
type Friendship struct {
	UserLowID  int64     `db:"user_low_id" json:"user_low_id"`
	UserHighID int64     `db:"user_high_id" json:"user_high_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

func NewFriendship(a, b int64, at time.Time) Friendship {
	p := PairKey(a, b)
	return Friendship{UserLowID: p.Low, UserHighID: p.High, CreatedAt: at}
}

// Other returns the endpoint of the edge that is not userID.
func (f Friendship) Other(userID int64) int64 {
	if f.UserLowID == userID {
		return f.UserHighID
	}
	return f.UserLowID
}

type Pair struct {
	Low  int64
	High int64
}

func PairKey(a, b int64) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{Low: a, High: b}
}

// LockID folds the pair into a single int64 for pg_advisory_xact_lock.
func (p Pair) LockID() int64 {
	return p.Low<<32 ^ p.High
}

func (p Pair) String() string {
	return fmt.Sprintf("%d:%d", p.Low, p.High)
}
