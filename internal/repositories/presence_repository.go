package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"friendship-service/internal/models"
)

// PresenceRepository holds each user's coworking flag.
type PresenceRepository interface {
	SetPresence(ctx context.Context, userID int64, isCoworking bool) error
	// ArePresent answers only for the given ids; unknown ids map to false.
	ArePresent(ctx context.Context, ids []int64) (map[int64]bool, error)
}

// presenceRepository keeps the flag on the users row.
type presenceRepository struct {
	db *sqlx.DB
}

func NewPresenceRepository(db *sqlx.DB) PresenceRepository {
	return &presenceRepository{db: db}
}

func (r *presenceRepository) SetPresence(ctx context.Context, userID int64, isCoworking bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET is_coworking=$2 WHERE id=$1`, userID, isCoworking)
	if err != nil {
		return writeFault(err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return writeFault(err)
	}
	if rows == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *presenceRepository) ArePresent(ctx context.Context, ids []int64) (map[int64]bool, error) {
	present := make(map[int64]bool, len(ids))
	for _, id := range ids {
		present[id] = false
	}
	if len(ids) == 0 {
		return present, nil
	}

	type row struct {
		ID          int64 `db:"id"`
		IsCoworking bool  `db:"is_coworking"`
	}
	rows, err := retryRead(ctx, func() ([]row, error) {
		var rows []row
		err := r.db.SelectContext(ctx, &rows, `
SELECT id, is_coworking FROM users WHERE id = ANY($1)
`, pq.Array(ids))
		return rows, err
	})
	if err != nil {
		return nil, err
	}
	for _, rw := range rows {
		present[rw.ID] = rw.IsCoworking
	}
	return present, nil
}
