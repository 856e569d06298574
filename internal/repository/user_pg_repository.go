package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"travel-review-service/internal/apperror"
	"travel-review-service/internal/model"
)

const pgUniqueViolation = "23505"

type PGUserRepository struct {
	db *sqlx.DB
}

var _ UserRepository = (*PGUserRepository)(nil)

func NewPGUserRepository(db *sqlx.DB) *PGUserRepository {
	return &PGUserRepository{db: db}
}

type userRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Password  string    `db:"password"`
	Address   string    `db:"address"`
	Phone     string    `db:"phone"`
	CreatedAt time.Time `db:"created_at"`
}

// Insert relies on the UNIQUE constraint on email to reject duplicates.
func (r *PGUserRepository) Insert(ctx context.Context, u *model.User) error {
	const q = `
		INSERT INTO users (id, name, email, password, address, phone)
		VALUES (:id, :name, :email, :password, :address, :phone)
	`
	row := userRow{
		ID:       uuid.NewString(),
		Name:     u.Name,
		Email:    u.Email,
		Password: u.PasswordHash,
		Address:  u.Address,
		Phone:    u.Phone,
	}
	if _, err := r.db.NamedExecContext(ctx, q, row); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return apperror.Conflict(msgEmailTaken)
		}
		return apperror.Internal("create user", fmt.Errorf("PGUserRepository.Insert: %w", err))
	}
	u.ID = row.ID
	return nil
}

func (r *PGUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `
		SELECT id, name, email, password, address, phone, created_at
		FROM users
		WHERE email = $1
	`
	var row userRow
	err := r.db.GetContext(ctx, &row, q, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NotFound(msgUserNotFound)
	}
	if err != nil {
		return nil, apperror.Internal("find user", fmt.Errorf("PGUserRepository.FindByEmail: %w", err))
	}
	return &model.User{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.Password,
		Address:      row.Address,
		Phone:        row.Phone,
		CreatedAt:    row.CreatedAt,
	}, nil
}
