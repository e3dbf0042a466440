package auth

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gagancm/FinSync/internal/logging"
	"github.com/Gagancm/FinSync/internal/user"
)

// fakeUserRepo is an in-memory UserRepository mimicking the real
// repository's error semantics.
type fakeUserRepo struct {
	users       map[string]*user.User // keyed by email
	nextID      int64
	createCalls int
	lastUpdate  user.UpdateFields
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*user.User), nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, params user.CreateParams) (*user.User, error) {
	r.createCalls++
	if _, ok := r.users[params.Email]; ok {
		return nil, user.ErrDuplicateEmail
	}
	u := &user.User{
		ID:           r.nextID,
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		Email:        params.Email,
		PhoneNumber:  params.PhoneNumber,
		DateJoined:   time.Now(),
		PasswordHash: params.PasswordHash,
	}
	r.nextID++
	r.users[params.Email] = u
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) Update(_ context.Context, userID int64, fields user.UpdateFields) (*user.User, error) {
	r.lastUpdate = fields
	if fields.IsEmpty() {
		return nil, user.ErrNoFields
	}
	for _, u := range r.users {
		if u.ID != userID {
			continue
		}
		if fields.FirstName != nil {
			u.FirstName = *fields.FirstName
		}
		if fields.LastName != nil {
			u.LastName = *fields.LastName
		}
		if fields.Email != nil {
			delete(r.users, u.Email)
			u.Email = *fields.Email
			r.users[u.Email] = u
		}
		if fields.PasswordHash != nil {
			u.PasswordHash = *fields.PasswordHash
		}
		return u, nil
	}
	return nil, user.ErrNotFound
}

func (r *fakeUserRepo) Delete(_ context.Context, userID int64) error {
	for email, u := range r.users {
		if u.ID == userID {
			delete(r.users, email)
			return nil
		}
	}
	return user.ErrNotFound
}

func newTestService(t *testing.T, repo UserRepository) *Service {
	t.Helper()
	tokenService, err := NewJWTService(testSecret, 24*time.Hour)
	require.NoError(t, err)
	return NewService(repo, tokenService, NewPasswordHasher(4), logging.NewLogger(true))
}

func validSignup() SignupInput {
	return SignupInput{
		FirstName:       "A",
		LastName:        "B",
		Email:           "a@b.com",
		Password:        "longpw123",
		ConfirmPassword: "longpw123",
	}
}

func TestSignup_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := newTestService(t, repo)

	input := validSignup()
	input.Email = "A@B.Com"

	result, err := svc.Signup(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, "a@b.com", result.User.Email, "email must be lowercased")
	assert.NotEmpty(t, result.Token)

	// Stored hash verifies the submitted password and is not the plaintext
	stored := repo.users["a@b.com"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "longpw123", stored.PasswordHash)
	assert.True(t, NewPasswordHasher(4).Verify(stored.PasswordHash, "longpw123"))
}

func TestSignup_PasswordMismatch(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := newTestService(t, repo)

	input := validSignup()
	input.ConfirmPassword = "different123"

	_, err := svc.Signup(context.Background(), input)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "confirmPassword")
	assert.Zero(t, repo.createCalls, "repository must not be touched on validation failure")
}

func TestSignup_AccumulatesValidationErrors(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := newTestService(t, repo)

	_, err := svc.Signup(context.Background(), SignupInput{Email: "not-an-email", Password: "short"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "First name is required", verr.Fields["firstName"])
	assert.Equal(t, "Last name is required", verr.Fields["lastName"])
	assert.Equal(t, "Invalid email format", verr.Fields["email"])
	assert.Equal(t, "Password must be at least 8 characters long", verr.Fields["password"])
	assert.Equal(t, "Please confirm your password", verr.Fields["confirmPassword"])
	assert.Zero(t, repo.createCalls)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := newTestService(t, repo)

	_, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), validSignup())
	assert.ErrorIs(t, err, user.ErrDuplicateEmail)
	assert.Len(t, repo.users, 1, "no duplicate row may be created")
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := newTestService(t, repo)

	_, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), "A@B.Com", "longpw123")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", result.User.Email)
	assert.NotEmpty(t, result.Token)
}

func TestLogin_EnumerationResistance(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := newTestService(t, repo)

	_, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	_, wrongPassErr := svc.Login(context.Background(), "a@b.com", "wrongpass1")
	_, noUserErr := svc.Login(context.Background(), "nobody@b.com", "longpw123")

	// Wrong password and unknown email must be indistinguishable
	assert.ErrorIs(t, wrongPassErr, ErrInvalidCredentials)
	assert.ErrorIs(t, noUserErr, ErrInvalidCredentials)
	assert.Equal(t, wrongPassErr.Error(), noUserErr.Error())
}

func TestLogin_MissingCredentials(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeUserRepo())

	for _, tc := range []struct{ email, password string }{
		{"", "longpw123"},
		{"a@b.com", ""},
		{"", ""},
	} {
		_, err := svc.Login(context.Background(), tc.email, tc.password)
		assert.ErrorIs(t, err, ErrMissingCredentials)
	}
}

func TestUpdate_PartialFields(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := newTestService(t, repo)

	signed, err := svc.Signup(context.Background(), SignupInput{
		FirstName:       "Old",
		LastName:        "Name",
		Email:           "a@b.com",
		Password:        "longpw123",
		ConfirmPassword: "longpw123",
		PhoneNumber:     "555-0100",
	})
	require.NoError(t, err)

	before := *signed.User

	updated, err := svc.Update(context.Background(), signed.User.ID, UpdateInput{FirstName: "  New  "})
	require.NoError(t, err)

	assert.Equal(t, "New", updated.FirstName, "first name must be trimmed and updated")
	assert.Equal(t, before.LastName, updated.LastName)
	assert.Equal(t, before.Email, updated.Email)
	assert.Equal(t, before.PhoneNumber, updated.PhoneNumber)
	assert.Equal(t, before.DateJoined, updated.DateJoined)

	// Only the first name reached the repository
	assert.NotNil(t, repo.lastUpdate.FirstName)
	assert.Nil(t, repo.lastUpdate.LastName)
	assert.Nil(t, repo.lastUpdate.Email)
	assert.Nil(t, repo.lastUpdate.PasswordHash)
}

func TestUpdate_EmailLoweredAndPasswordRehashed(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := newTestService(t, repo)

	signed, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), signed.User.ID, UpdateInput{
		Email:    "NEW@B.Com",
		Password: "anotherpw1",
	})
	require.NoError(t, err)

	assert.Equal(t, "new@b.com", updated.Email)
	require.NotNil(t, repo.lastUpdate.PasswordHash)
	assert.True(t, NewPasswordHasher(4).Verify(*repo.lastUpdate.PasswordHash, "anotherpw1"))
}

func TestUpdate_PhoneNumberNotForwarded(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := newTestService(t, repo)

	signed, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), signed.User.ID, UpdateInput{PhoneNumber: "555-0199"})
	assert.ErrorIs(t, err, user.ErrNoFields)
}

func TestUpdate_NotFound(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, newFakeUserRepo())

	_, err := svc.Update(context.Background(), 999, UpdateInput{FirstName: "New"})
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := newTestService(t, repo)

	signed, err := svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), signed.User.ID))
	assert.Empty(t, repo.users)

	// Deleting a nonexistent id is a NotFound failure, not a silent success
	assert.ErrorIs(t, svc.Delete(context.Background(), signed.User.ID), user.ErrNotFound)
}

// errorRepo fails every operation with the same unexpected error.
type errorRepo struct{ err error }

func (r *errorRepo) Create(context.Context, user.CreateParams) (*user.User, error) {
	return nil, r.err
}
func (r *errorRepo) GetByEmail(context.Context, string) (*user.User, error) { return nil, r.err }
func (r *errorRepo) Update(context.Context, int64, user.UpdateFields) (*user.User, error) {
	return nil, r.err
}
func (r *errorRepo) Delete(context.Context, int64) error { return r.err }

func TestService_LogsUnexpectedFailures(t *testing.T) {
	t.Parallel()

	repoErr := errors.New("connection reset by peer")
	repo := &errorRepo{err: repoErr}

	var buf bytes.Buffer
	tokenService, err := NewJWTService(testSecret, 24*time.Hour)
	require.NoError(t, err)
	svc := NewService(repo, tokenService, NewPasswordHasher(4), logging.NewLoggerWithWriter(&buf, true))

	_, signupErr := svc.Signup(context.Background(), validSignup())
	_, loginErr := svc.Login(context.Background(), "a@b.com", "longpw123")
	_, updateErr := svc.Update(context.Background(), 1, UpdateInput{FirstName: "New"})
	deleteErr := svc.Delete(context.Background(), 1)

	for _, err := range []error{signupErr, loginErr, updateErr, deleteErr} {
		require.Error(t, err)
		assert.ErrorIs(t, err, repoErr)
		// Sentinel errors map to client-facing statuses; this one must not
		assert.NotErrorIs(t, err, user.ErrNotFound)
		assert.NotErrorIs(t, err, user.ErrDuplicateEmail)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	}

	logged := buf.String()
	assert.Contains(t, logged, "signup failed")
	assert.Contains(t, logged, "login lookup failed")
	assert.Contains(t, logged, "profile update failed")
	assert.Contains(t, logged, "account deletion failed")
	assert.Contains(t, logged, "connection reset by peer")
}
