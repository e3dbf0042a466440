package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func protectedHandler(t *testing.T, wantUserID int64, wantEmail string, called *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true

		userID, ok := GetUserIDFromContext(r.Context())
		if !ok || userID != wantUserID {
			t.Errorf("user id in context: got %d (ok=%v) want %d", userID, ok, wantUserID)
		}
		email, ok := GetUserEmailFromContext(r.Context())
		if !ok || email != wantEmail {
			t.Errorf("email in context: got %q (ok=%v) want %q", email, ok, wantEmail)
		}

		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth_Success(t *testing.T) {
	t.Parallel()

	svc, _ := NewJWTService(testSecret, time.Hour)
	tok, err := svc.CreateToken(7, "a@b.com")
	if err != nil {
		t.Fatalf("CreateToken error: %v", err)
	}

	called := false
	mw := NewMiddleware(svc)
	handler := mw.RequireAuth(protectedHandler(t, 7, "a@b.com", &called))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d want %d", rec.Code, http.StatusOK)
	}
	if !called {
		t.Fatalf("next handler was not called")
	}
}

func TestRequireAuth_Failures(t *testing.T) {
	t.Parallel()

	svc, _ := NewJWTService(testSecret, time.Hour)

	expiredSvc, _ := NewJWTService(testSecret, -time.Minute)
	expiredTok, _ := expiredSvc.CreateToken(1, "a@b.com")

	otherSvc, _ := NewJWTService([]byte("ffffffffffffffffffffffffffffffff"), time.Hour)
	foreignTok, _ := otherSvc.CreateToken(1, "a@b.com")

	tests := []struct {
		name        string
		authHeader  string
		wantMessage string
	}{
		{"no header", "", "Access denied. No token provided."},
		{"wrong scheme", "Basic abc123", "Invalid token format. Use Bearer token."},
		{"missing token part", "Bearer", "Invalid token format. Use Bearer token."},
		{"expired token", "Bearer " + expiredTok, "Token has expired"},
		{"bad signature", "Bearer " + foreignTok, "Invalid token"},
		{"garbage token", "Bearer not.a.jwt", "Invalid token"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			called := false
			mw := NewMiddleware(svc)
			handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status: got %d want %d", rec.Code, http.StatusUnauthorized)
			}
			if called {
				t.Fatalf("next handler must not be called")
			}

			var body struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON body: %v", err)
			}
			if body.Message != tc.wantMessage {
				t.Errorf("message: got %q want %q", body.Message, tc.wantMessage)
			}
		})
	}
}
