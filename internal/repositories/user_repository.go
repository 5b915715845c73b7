package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"friendship-service/internal/models"
)

// UserRepository is the read-only directory of users that can be friended.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.User, error)
	ListAll(ctx context.Context) ([]models.User, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, first_name, last_name, email, pronouns, is_coworking`

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return retryRead(ctx, func() (*models.User, error) {
		var user models.User
		err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return &user, nil
	})
}

// GetByIDs returns the users that exist among ids, ordered by id.
func (r *userRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return retryRead(ctx, func() ([]models.User, error) {
		users := []models.User{}
		err := r.db.SelectContext(ctx, &users, `
SELECT `+userColumns+` FROM users WHERE id = ANY($1) ORDER BY id
`, pq.Array(ids))
		return users, err
	})
}

func (r *userRepository) ListAll(ctx context.Context) ([]models.User, error) {
	return retryRead(ctx, func() ([]models.User, error) {
		users := []models.User{}
		err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`)
		return users, err
	})
}
