package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"friendship-service/internal/models"
)

// FriendRepository stores friend requests and the friendship edges they produce.
// Every mutation is atomic and serialized per unordered pair or per request.
type FriendRepository interface {
	CreateRequest(ctx context.Context, senderID, receiverID int64) (*models.FriendRequest, error)
	GetRequest(ctx context.Context, requestID int64) (*models.FriendRequest, error)
	GetIncomingRequests(ctx context.Context, receiverID int64) ([]models.FriendRequest, error)
	CountIncomingRequests(ctx context.Context, receiverID int64) (int, error)
	ResolveRequest(ctx context.Context, requestID, actorID int64, to models.RequestStatus) (*models.FriendRequest, error)
	ListFriends(ctx context.Context, userID int64) ([]int64, error)
	AreFriends(ctx context.Context, userID, otherID int64) (bool, error)
	HasPendingRequest(ctx context.Context, userID, otherID int64) (bool, error)
	DeleteFriendship(ctx context.Context, userID, friendID int64) error
	ListRelatedUserIDs(ctx context.Context, userID int64) ([]int64, error)
}

type friendRepository struct {
	db *sqlx.DB
}

func NewFriendRepository(db *sqlx.DB) FriendRepository {
	return &friendRepository{db: db}
}

const requestColumns = `id, sender_id, receiver_id, status, created_at`

func (r *friendRepository) CreateRequest(ctx context.Context, senderID, receiverID int64) (*models.FriendRequest, error) {
	pair := models.PairKey(senderID, receiverID)
	var req models.FriendRequest
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockPair(ctx, tx, pair); err != nil {
			return err
		}

		var friends bool
		if err := tx.GetContext(ctx, &friends, `
SELECT EXISTS(SELECT 1 FROM friendships WHERE user_low_id=$1 AND user_high_id=$2)
`, pair.Low, pair.High); err != nil {
			return err
		}
		if friends {
			return models.ErrAlreadyFriends
		}

		var pending bool
		if err := tx.GetContext(ctx, &pending, `
SELECT EXISTS(
SELECT 1 FROM friend_requests
WHERE LEAST(sender_id, receiver_id)=$1 AND GREATEST(sender_id, receiver_id)=$2
AND status='pending'
)
`, pair.Low, pair.High); err != nil {
			return err
		}
		if pending {
			return models.ErrRequestAlreadyPending
		}

		return tx.QueryRowxContext(ctx, `
INSERT INTO friend_requests (sender_id, receiver_id, status)
VALUES ($1, $2, 'pending')
RETURNING `+requestColumns, senderID, receiverID).StructScan(&req)
	})
	if err != nil {
		return nil, writeFault(err)
	}
	return &req, nil
}

func (r *friendRepository) GetRequest(ctx context.Context, requestID int64) (*models.FriendRequest, error) {
	return retryRead(ctx, func() (*models.FriendRequest, error) {
		var req models.FriendRequest
		err := r.db.GetContext(ctx, &req, `SELECT `+requestColumns+` FROM friend_requests WHERE id=$1`, requestID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return &req, nil
	})
}

func (r *friendRepository) GetIncomingRequests(ctx context.Context, receiverID int64) ([]models.FriendRequest, error) {
	return retryRead(ctx, func() ([]models.FriendRequest, error) {
		reqs := []models.FriendRequest{}
		err := r.db.SelectContext(ctx, &reqs, `
SELECT `+requestColumns+`
FROM friend_requests
WHERE receiver_id=$1 AND status='pending'
ORDER BY created_at DESC, id DESC
`, receiverID)
		return reqs, err
	})
}

func (r *friendRepository) CountIncomingRequests(ctx context.Context, receiverID int64) (int, error) {
	return retryRead(ctx, func() (int, error) {
		var count int
		err := r.db.GetContext(ctx, &count, `
SELECT COUNT(*) FROM friend_requests WHERE receiver_id=$1 AND status='pending'
`, receiverID)
		return count, err
	})
}

func (r *friendRepository) ResolveRequest(ctx context.Context, requestID, actorID int64, to models.RequestStatus) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		var parties struct {
			SenderID   int64 `db:"sender_id"`
			ReceiverID int64 `db:"receiver_id"`
		}
		if err := tx.GetContext(ctx, &parties, `SELECT sender_id, receiver_id FROM friend_requests WHERE id=$1`, requestID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.ErrNotFound
			}
			return err
		}
		// Pair lock before row lock, same order as CreateRequest and DeleteFriendship.
		if err := lockPair(ctx, tx, models.PairKey(parties.SenderID, parties.ReceiverID)); err != nil {
			return err
		}
		if err := tx.GetContext(ctx, &req, `SELECT `+requestColumns+` FROM friend_requests WHERE id=$1 FOR UPDATE`, requestID); err != nil {
			return err
		}
		if err := req.Resolve(actorID, to); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `UPDATE friend_requests SET status=$2 WHERE id=$1`, requestID, req.Status); err != nil {
			return err
		}
		if to == models.RequestAccepted {
			pair := req.Pair()
			if _, err := tx.ExecContext(ctx, `
INSERT INTO friendships (user_low_id, user_high_id) VALUES ($1, $2)
`, pair.Low, pair.High); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, writeFault(err)
	}
	return &req, nil
}

func (r *friendRepository) ListFriends(ctx context.Context, userID int64) ([]int64, error) {
	return retryRead(ctx, func() ([]int64, error) {
		friends := []int64{}
		err := r.db.SelectContext(ctx, &friends, `
SELECT CASE WHEN user_low_id=$1 THEN user_high_id ELSE user_low_id END AS friend_id
FROM friendships
WHERE user_low_id=$1 OR user_high_id=$1
ORDER BY friend_id
`, userID)
		return friends, err
	})
}

func (r *friendRepository) AreFriends(ctx context.Context, userID, otherID int64) (bool, error) {
	pair := models.PairKey(userID, otherID)
	return retryRead(ctx, func() (bool, error) {
		var exists bool
		err := r.db.GetContext(ctx, &exists, `
SELECT EXISTS(
SELECT 1 FROM friendships WHERE user_low_id=$1 AND user_high_id=$2
)
`, pair.Low, pair.High)
		return exists, err
	})
}

func (r *friendRepository) HasPendingRequest(ctx context.Context, userID, otherID int64) (bool, error) {
	return retryRead(ctx, func() (bool, error) {
		var exists bool
		err := r.db.GetContext(ctx, &exists, `
SELECT EXISTS(
SELECT 1 FROM friend_requests
WHERE ((sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1))
AND status='pending'
)
`, userID, otherID)
		return exists, err
	})
}

func (r *friendRepository) DeleteFriendship(ctx context.Context, userID, friendID int64) error {
	pair := models.PairKey(userID, friendID)
	err := r.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockPair(ctx, tx, pair); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `
DELETE FROM friendships WHERE user_low_id=$1 AND user_high_id=$2
`, pair.Low, pair.High)
		if err != nil {
			return err
		}
		count, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if count == 0 {
			return models.ErrNotFound
		}
		return nil
	})
	return writeFault(err)
}

// ListRelatedUserIDs returns everyone userID is friends with or shares a
// pending request with, in either direction.
func (r *friendRepository) ListRelatedUserIDs(ctx context.Context, userID int64) ([]int64, error) {
	return retryRead(ctx, func() ([]int64, error) {
		ids := []int64{}
		err := r.db.SelectContext(ctx, &ids, `
SELECT CASE WHEN user_low_id=$1 THEN user_high_id ELSE user_low_id END AS other_id
FROM friendships
WHERE user_low_id=$1 OR user_high_id=$1
UNION
SELECT CASE WHEN sender_id=$1 THEN receiver_id ELSE sender_id END AS other_id
FROM friend_requests
WHERE (sender_id=$1 OR receiver_id=$1) AND status='pending'
ORDER BY other_id
`, userID)
		return ids, err
	})
}

func lockPair(ctx context.Context, tx *sqlx.Tx, pair models.Pair) error {
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, pair.LockID())
	return err
}

func (r *friendRepository) withTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
