package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/sentinel/internal/models"
	"github.com/BradenHooton/sentinel/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockAuthService implements AuthServiceInterface for testing
type mockAuthService struct {
	SignupFunc func(ctx context.Context, username, password string) (*services.UserResponse, error)
	LoginFunc  func(ctx context.Context, input services.LoginInput) (*services.LoginResult, error)
}

func (m *mockAuthService) Signup(ctx context.Context, username, password string) (*services.UserResponse, error) {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, username, password)
	}
	return nil, models.ErrInternalServer
}

func (m *mockAuthService) Login(ctx context.Context, input services.LoginInput) (*services.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, input)
	}
	return nil, models.ErrInternalServer
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler(rec, req)
	return rec
}

func TestAuthHandler_Login_Success(t *testing.T) {
	service := &mockAuthService{
		LoginFunc: func(ctx context.Context, input services.LoginInput) (*services.LoginResult, error) {
			assert.Equal(t, "alice", input.Username)
			assert.NotEmpty(t, input.SourceIP)
			return &services.LoginResult{
				AccessToken: "token123",
				RiskScore:   12,
				User:        &services.UserResponse{ID: "user123", Username: "alice"},
			}, nil
		},
	}
	handler := NewAuthHandler(service, nil)

	rec := postJSON(t, handler.Login, "/auth/login", LoginRequest{Username: "Alice", Password: "hunter22"})

	assert.Equal(t, http.StatusOK, rec.Code)

	var result services.LoginResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "token123", result.AccessToken)
	assert.Equal(t, 12, result.RiskScore)
}

func TestAuthHandler_Login_BlockedReturns429(t *testing.T) {
	service := &mockAuthService{
		LoginFunc: func(ctx context.Context, input services.LoginInput) (*services.LoginResult, error) {
			return nil, models.ErrLoginBlocked
		},
	}
	handler := NewAuthHandler(service, nil)

	rec := postJSON(t, handler.Login, "/auth/login", LoginRequest{Username: "admin", Password: "hunter22"})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	// No hint about the risk engine in the body
	assert.NotContains(t, rec.Body.String(), "risk")
}

func TestAuthHandler_Login_BadCredentialsReturns401(t *testing.T) {
	service := &mockAuthService{
		LoginFunc: func(ctx context.Context, input services.LoginInput) (*services.LoginResult, error) {
			return nil, models.ErrUnauthorized
		},
	}
	handler := NewAuthHandler(service, nil)

	rec := postJSON(t, handler.Login, "/auth/login", LoginRequest{Username: "alice", Password: "wrong"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	handler := NewAuthHandler(&mockAuthService{}, nil)

	rec := postJSON(t, handler.Login, "/auth/login", LoginRequest{Username: "alice"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Login_MalformedBody(t *testing.T) {
	handler := NewAuthHandler(&mockAuthService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Signup_Success(t *testing.T) {
	service := &mockAuthService{
		SignupFunc: func(ctx context.Context, username, password string) (*services.UserResponse, error) {
			return &services.UserResponse{ID: "user123", Username: username, Role: "user"}, nil
		},
	}
	handler := NewAuthHandler(service, nil)

	rec := postJSON(t, handler.Signup, "/auth/signup", SignupRequest{Username: "alice", Password: "correct-horse-battery"})

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestAuthHandler_Signup_Conflict(t *testing.T) {
	service := &mockAuthService{
		SignupFunc: func(ctx context.Context, username, password string) (*services.UserResponse, error) {
			return nil, models.ErrConflict
		},
	}
	handler := NewAuthHandler(service, nil)

	rec := postJSON(t, handler.Signup, "/auth/signup", SignupRequest{Username: "alice", Password: "correct-horse-battery"})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthHandler_Signup_ShortUsername(t *testing.T) {
	handler := NewAuthHandler(&mockAuthService{}, nil)

	rec := postJSON(t, handler.Signup, "/auth/signup", SignupRequest{Username: "ab", Password: "correct-horse-battery"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
