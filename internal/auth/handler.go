package auth

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/Gagancm/FinSync/internal/httputil"
	"github.com/Gagancm/FinSync/internal/logging"
	"github.com/Gagancm/FinSync/internal/user"
)

// Handler contains HTTP handlers for the account endpoints
type Handler struct {
	service     *Service
	rateLimiter RateLimiter
	logger      *logging.Logger
}

func NewHandler(service *Service, rateLimiter RateLimiter, logger *logging.Logger) *Handler {
	return &Handler{
		service:     service,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// SignupRequest represents the signup request body
type SignupRequest struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateRequest represents the profile update request body
type UpdateRequest struct {
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Email       string `json:"email,omitempty"`
	Password    string `json:"password,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// UserResponse represents a user in API responses (never includes the hash)
type UserResponse struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	PhoneNumber *string   `json:"phoneNumber"`
	DateJoined  time.Time `json:"dateJoined"`
}

// AuthResponse represents a successful signup or login response
type AuthResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

// UpdateResponse represents a successful profile update response
type UpdateResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

// MessageResponse represents a message-only response
type MessageResponse struct {
	Message string `json:"message"`
}

// Signup handles user registration
// @Summary      Register a new user
// @Description  Create a new account and receive a session token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Signup payload"
// @Success      201 {object} AuthResponse
// @Failure      400 {object} httputil.ErrorResponse "Validation failed"
// @Failure      409 {object} httputil.ErrorResponse "Email already registered"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/users/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, "signup")
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded for signup", "ip", ip)
		httputil.RespondError(w, "Too many requests, please try again later", http.StatusTooManyRequests)
		return
	}

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid signup request body", "error", err.Error())
		httputil.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, "signup"); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	result, err := h.service.Signup(r.Context(), SignupInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		PhoneNumber:     req.PhoneNumber,
	})
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			logger.Warn("signup failed: validation error", "fields", verr.Fields)
			httputil.RespondErrorWithDetails(w, "Validation failed", verr.Fields, http.StatusBadRequest)
			return
		}
		if errors.Is(err, user.ErrDuplicateEmail) {
			logger.Warn("signup failed: email already registered")
			httputil.RespondErrorWithDetails(w, "Signup failed",
				map[string]string{"email": "This email is already registered"}, http.StatusConflict)
			return
		}
		logger.Error("signup failed: internal error", "error", err.Error())
		httputil.RespondErrorWithDetails(w, "Error creating user",
			map[string]string{"server": "An unexpected error occurred"}, http.StatusInternalServerError)
		return
	}

	logger.Info("user created successfully", "user_id", result.User.ID)

	httputil.RespondJSON(w, AuthResponse{
		Message: "User created successfully",
		Token:   result.Token,
		User:    toUserResponse(result.User),
	}, http.StatusCreated)
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate with email and password and receive a session token
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} AuthResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing fields"
// @Failure      401 {object} httputil.ErrorResponse "Invalid credentials"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/users/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, "login")
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded for login", "ip", ip)
		httputil.RespondError(w, "Too many requests, please try again later", http.StatusTooManyRequests)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, "login"); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrMissingCredentials) {
			logger.Warn("login failed: missing credentials")
			httputil.RespondErrorWithDetails(w, "Login failed",
				map[string]string{"credentials": "Email and password are required"}, http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("login failed: invalid credentials")
			httputil.RespondErrorWithDetails(w, "Login failed",
				map[string]string{"credentials": "Invalid email or password"}, http.StatusUnauthorized)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		httputil.RespondErrorWithDetails(w, "Login failed",
			map[string]string{"server": "An unexpected error occurred"}, http.StatusInternalServerError)
		return
	}

	logger.Info("user logged in successfully", "user_id", result.User.ID)

	httputil.RespondJSON(w, AuthResponse{
		Message: "Login successful",
		Token:   result.Token,
		User:    toUserResponse(result.User),
	}, http.StatusOK)
}

// UpdateProfile handles partial profile updates for the authenticated user
// @Summary      Update profile
// @Description  Update the authenticated user's profile fields
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateRequest true "Fields to update"
// @Success      200 {object} UpdateResponse
// @Failure      400 {object} httputil.ErrorResponse "No fields to update"
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/users/update-profile [put]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "Authentication failed", http.StatusUnauthorized)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid update request body", "error", err.Error())
		httputil.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"user_id": userID})

	updatedUser, err := h.service.Update(r.Context(), userID, UpdateInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		if errors.Is(err, user.ErrNoFields) {
			logger.Warn("update failed: no fields provided")
			httputil.RespondErrorWithDetails(w, "Update failed",
				map[string]string{"fields": "No fields to update"}, http.StatusBadRequest)
			return
		}
		if errors.Is(err, user.ErrNotFound) {
			logger.Warn("update failed: user not found")
			httputil.RespondErrorWithDetails(w, "Update failed",
				map[string]string{"user": "User not found"}, http.StatusNotFound)
			return
		}
		if errors.Is(err, user.ErrDuplicateEmail) {
			logger.Warn("update failed: email already registered")
			httputil.RespondErrorWithDetails(w, "Update failed",
				map[string]string{"email": "This email is already registered"}, http.StatusConflict)
			return
		}
		logger.Error("update failed: internal error", "error", err.Error())
		httputil.RespondErrorWithDetails(w, "Update failed",
			map[string]string{"server": "An unexpected error occurred"}, http.StatusInternalServerError)
		return
	}

	logger.Info("user updated successfully")

	httputil.RespondJSON(w, UpdateResponse{
		Message: "User updated successfully",
		User:    toUserResponse(updatedUser),
	}, http.StatusOK)
}

// DeleteAccount handles account deletion for the authenticated user
// @Summary      Delete account
// @Description  Permanently delete the authenticated user's account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} MessageResponse
// @Failure      401 {object} httputil.ErrorResponse "Unauthorized"
// @Failure      404 {object} httputil.ErrorResponse "User not found"
// @Failure      500 {object} httputil.ErrorResponse "Internal server error"
// @Router       /api/users/delete-account [delete]
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "Authentication failed", http.StatusUnauthorized)
		return
	}

	logger = logger.WithFields(map[string]any{"user_id": userID})

	if err := h.service.Delete(r.Context(), userID); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			logger.Warn("delete failed: user not found")
			httputil.RespondErrorWithDetails(w, "Delete failed",
				map[string]string{"user": "User not found"}, http.StatusNotFound)
			return
		}
		logger.Error("delete failed: internal error", "error", err.Error())
		httputil.RespondErrorWithDetails(w, "Delete failed",
			map[string]string{"server": "An unexpected error occurred"}, http.StatusInternalServerError)
		return
	}

	logger.Info("user deleted successfully")

	httputil.RespondJSON(w, MessageResponse{Message: "User deleted successfully"}, http.StatusOK)
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		PhoneNumber: u.PhoneNumber,
		DateJoined:  u.DateJoined,
	}
}

// getClientIP extracts the client IP address from the request.
// The RealIP middleware has already resolved forwarded headers.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
