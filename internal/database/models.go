package database

import (
	"time"

	"github.com/uptrace/bun"
)

// User is the persistence model for the users table.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:"user_id,pk,autoincrement"`
	FirstName    string    `bun:"first_name"`
	LastName     string    `bun:"last_name"`
	Email        string    `bun:"email"`
	PhoneNumber  *string   `bun:"phone_number"`
	DateJoined   time.Time `bun:"date_joined"`
	PasswordHash string    `bun:"user_password"`
}
