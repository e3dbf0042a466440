package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Gagancm/FinSync/internal/logging"
	"github.com/Gagancm/FinSync/internal/user"
)

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// emailPattern matches one-or-more non-whitespace-non-@ chars, "@",
// one-or-more non-whitespace-non-@ chars, ".", one-or-more non-whitespace chars.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 8

// ValidationError accumulates field -> message validation failures
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// SignupInput is the raw signup payload
type SignupInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	PhoneNumber     string
}

// UpdateInput is the raw profile update payload. Empty fields are ignored.
type UpdateInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	PhoneNumber string
}

// AuthResult is returned on successful signup or login
type AuthResult struct {
	Token string
	User  *user.User
}

// Service orchestrates validation, repository calls and token issuance
type Service struct {
	userRepo     UserRepository
	tokenService TokenService
	hasher       *PasswordHasher
	logger       *logging.Logger
}

func NewService(userRepo UserRepository, tokenService TokenService, hasher *PasswordHasher, logger *logging.Logger) *Service {
	return &Service{
		userRepo:     userRepo,
		tokenService: tokenService,
		hasher:       hasher,
		logger:       logger,
	}
}

// Signup validates the input, creates the user and issues a session token.
// Validation failures are reported before any storage access.
func (s *Service) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	if verr := validateSignup(input); verr != nil {
		return nil, verr
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	var phone *string
	if input.PhoneNumber != "" {
		phone = &input.PhoneNumber
	}

	newUser, err := s.userRepo.Create(ctx, user.CreateParams{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Email:        strings.ToLower(input.Email),
		PhoneNumber:  phone,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		s.logger.Error("signup failed", "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokenService.CreateToken(newUser.ID, newUser.Email)
	if err != nil {
		s.logger.Error("token creation failed", "error", err, "userId", newUser.ID)
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	return &AuthResult{Token: token, User: newUser}, nil
}

// Login authenticates a user and issues a session token.
// Unknown email and wrong password both yield ErrInvalidCredentials so the
// responses are indistinguishable.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	existingUser, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("login lookup failed", "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Verify(existingUser.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokenService.CreateToken(existingUser.ID, existingUser.Email)
	if err != nil {
		s.logger.Error("token creation failed", "error", err, "userId", existingUser.ID)
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	return &AuthResult{Token: token, User: existingUser}, nil
}

// Update applies a partial profile update built from the supplied fields.
// PhoneNumber is accepted in the payload but the update statement does not
// include it; the column is only set at signup.
func (s *Service) Update(ctx context.Context, userID int64, input UpdateInput) (*user.User, error) {
	var fields user.UpdateFields

	if input.FirstName != "" {
		firstName := strings.TrimSpace(input.FirstName)
		fields.FirstName = &firstName
	}
	if input.LastName != "" {
		lastName := strings.TrimSpace(input.LastName)
		fields.LastName = &lastName
	}
	if input.Email != "" {
		email := strings.ToLower(input.Email)
		fields.Email = &email
	}
	if input.Password != "" {
		passwordHash, err := s.hasher.Hash(input.Password)
		if err != nil {
			return nil, err
		}
		fields.PasswordHash = &passwordHash
	}

	updatedUser, err := s.userRepo.Update(ctx, userID, fields)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNoFields), errors.Is(err, user.ErrNotFound), errors.Is(err, user.ErrDuplicateEmail):
			return nil, err
		}
		s.logger.Error("profile update failed", "error", err, "userId", userID)
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return updatedUser, nil
}

// Delete removes the authenticated user's account
func (s *Service) Delete(ctx context.Context, userID int64) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		s.logger.Error("account deletion failed", "error", err, "userId", userID)
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func validateSignup(input SignupInput) *ValidationError {
	fields := make(map[string]string)

	if strings.TrimSpace(input.FirstName) == "" {
		fields["firstName"] = "First name is required"
	}
	if strings.TrimSpace(input.LastName) == "" {
		fields["lastName"] = "Last name is required"
	}

	if input.Email == "" {
		fields["email"] = "Email is required"
	} else if !emailPattern.MatchString(input.Email) {
		fields["email"] = "Invalid email format"
	}

	if input.Password == "" {
		fields["password"] = "Password is required"
	} else if len(input.Password) < minPasswordLength {
		fields["password"] = "Password must be at least 8 characters long"
	}

	if input.ConfirmPassword == "" {
		fields["confirmPassword"] = "Please confirm your password"
	} else if input.Password != input.ConfirmPassword {
		fields["confirmPassword"] = "Passwords do not match"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
