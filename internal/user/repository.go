package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/Gagancm/FinSync/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrNoFields       = errors.New("no fields to update")
)

// Repository handles user data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user with today's date as join date.
// Email uniqueness is checked before the insert (callers lowercase first);
// the schema-level unique constraint backstops the check-then-insert race,
// and a violation is surfaced as ErrDuplicateEmail as well.
func (r *Repository) Create(ctx context.Context, params CreateParams) (*User, error) {
	count, err := r.db.NewSelect().
		Model((*database.User)(nil)).
		Where("email = ?", params.Email).
		Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateEmail
	}

	dbUser := &database.User{
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Email:        params.Email,
		PhoneNumber:  params.PhoneNumber,
		DateJoined:   time.Now(),
		PasswordHash: params.PasswordHash,
	}

	_, err = r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email (exact match as stored)
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// Update applies a partial update built from the supplied fields only
func (r *Repository) Update(ctx context.Context, userID int64, fields UpdateFields) (*User, error) {
	if fields.IsEmpty() {
		return nil, ErrNoFields
	}

	dbUser := new(database.User)
	q := r.db.NewUpdate().
		Model(dbUser).
		Where("user_id = ?", userID).
		Returning("*")

	if fields.FirstName != nil {
		q = q.Set("first_name = ?", *fields.FirstName)
	}
	if fields.LastName != nil {
		q = q.Set("last_name = ?", *fields.LastName)
	}
	if fields.Email != nil {
		q = q.Set("email = ?", *fields.Email)
	}
	if fields.PasswordHash != nil {
		q = q.Set("user_password = ?", *fields.PasswordHash)
	}

	result, err := q.Exec(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return mapDBUserToModel(dbUser), nil
}

// Delete removes a user row (hard delete)
func (r *Repository) Delete(ctx context.Context, userID int64) error {
	result, err := r.db.NewDelete().
		Model((*database.User)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:           dbu.ID,
		FirstName:    dbu.FirstName,
		LastName:     dbu.LastName,
		Email:        dbu.Email,
		PhoneNumber:  dbu.PhoneNumber,
		DateJoined:   dbu.DateJoined,
		PasswordHash: dbu.PasswordHash,
	}
}
