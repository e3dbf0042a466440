package user

import "time"

// User is the domain model for an account.
type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	PhoneNumber  *string   `json:"phoneNumber"`
	DateJoined   time.Time `json:"dateJoined"`
	PasswordHash string    `json:"-"` // Never expose password hash in JSON
}

// CreateParams carries the fields required to insert a new user.
// DateJoined is assigned by the repository at insert time.
type CreateParams struct {
	FirstName    string
	LastName     string
	Email        string
	PhoneNumber  *string
	PasswordHash string
}

// UpdateFields holds the optional fields of a partial update.
// A nil field is left untouched.
type UpdateFields struct {
	FirstName    *string
	LastName     *string
	Email        *string
	PasswordHash *string
}

// IsEmpty reports whether no field is set.
func (f UpdateFields) IsEmpty() bool {
	return f.FirstName == nil && f.LastName == nil && f.Email == nil && f.PasswordHash == nil
}
