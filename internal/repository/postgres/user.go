package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkiryanov/quill/internal/apperrors"
	"github.com/nkiryanov/quill/internal/models"
	"github.com/nkiryanov/quill/internal/repository"
)

type UserRepo struct {
	DB DBTX
}

const userColumns = `id, created_at, name, password_hash, session_id, created_by`

const createUser = `-- name: CreateUser
INSERT INTO users (id, name, password_hash, session_id, created_by)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + userColumns

func (r *UserRepo) CreateUser(ctx context.Context, params repository.CreateUserParams) (models.User, error) {
	rows, _ := r.DB.Query(ctx, createUser, uuid.New(), params.Name, params.HashedPassword, uuid.New(), params.CreatedBy)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user, apperrors.ErrUserAlreadyExists
		}

		return user, dbError(err)
	}

	return user, nil
}

const getUserByID = `-- name: GetUserByID
SELECT ` + userColumns + ` FROM users
WHERE id = $1
`

func (r *UserRepo) GetUserByID(ctx context.Context, id uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByID, id)
	return collectUser(rows)
}

const getUserByName = `-- name: GetUserByName
SELECT ` + userColumns + ` FROM users
WHERE name = $1
`

func (r *UserRepo) GetUserByName(ctx context.Context, name string) (models.User, error) {
	rows, _ := r.DB.Query(ctx, getUserByName, name)
	return collectUser(rows)
}

const setSessionID = `-- name: SetSessionID
UPDATE users
SET session_id = $2
WHERE id = $1
RETURNING ` + userColumns

func (r *UserRepo) SetSessionID(ctx context.Context, userID uuid.UUID, sessionID uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, setSessionID, userID, sessionID)
	return collectUser(rows)
}

// Under read committed concurrent update waits for the first one to commit
// and then re-checks the condition against the committed epoch: only one swap may win
const swapSessionID = `-- name: SwapSessionID
UPDATE users
SET session_id = $3
WHERE id = $1 AND session_id = $2
RETURNING ` + userColumns

func (r *UserRepo) SwapSessionID(ctx context.Context, userID uuid.UUID, expected uuid.UUID, next uuid.UUID) (models.User, error) {
	rows, _ := r.DB.Query(ctx, swapSessionID, userID, expected, next)
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		// Nothing updated: either user is gone or the epoch moved on
		if _, err := r.GetUserByID(ctx, userID); err != nil {
			return models.User{}, err
		}
		return models.User{}, apperrors.ErrSessionMismatch
	default:
		return user, dbError(err)
	}
}

const deleteUser = `-- name: DeleteUser
DELETE FROM users
WHERE id = $1
`

func (r *UserRepo) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteUser, userID)

	switch {
	case err != nil:
		return dbError(err)
	case tag.RowsAffected() == 0:
		return apperrors.ErrUserNotFound
	default:
		return nil
	}
}

func collectUser(rows pgx.Rows) (models.User, error) {
	user, err := pgx.CollectOneRow(rows, rowToUser)

	switch {
	case err == nil:
		return user, nil
	case errors.Is(err, pgx.ErrNoRows):
		return user, apperrors.ErrUserNotFound
	default:
		return user, dbError(err)
	}
}

func rowToUser(row pgx.CollectableRow) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Name, &u.HashedPassword, &u.SessionID, &u.CreatedBy)
	return u, err
}
