package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/sentinel/internal/auth"
	"github.com/BradenHooton/sentinel/internal/models"
	pkgauth "github.com/BradenHooton/sentinel/pkg/auth"
	pkglogger "github.com/BradenHooton/sentinel/pkg/logger"
)

// UserRepository defines the user persistence operations the service needs
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// AttemptRecorder persists finalized login attempts
type AttemptRecorder interface {
	Record(ctx context.Context, attempt *models.LoginAttempt) error
}

// RiskEvaluator scores a candidate attempt before it is finalized
type RiskEvaluator interface {
	EvaluateLogin(ctx context.Context, candidate *models.LoginAttempt) models.RiskAssessment
}

// AuthService handles signup and risk-gated login
type AuthService struct {
	users       UserRepository
	attempts    AttemptRecorder
	gate        RiskEvaluator
	tm          *auth.TokenManager
	retention   time.Duration
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	now         func() time.Time
}

// NewAuthService creates a new AuthService. A nil clock defaults to time.Now.
func NewAuthService(users UserRepository, attempts AttemptRecorder, gate RiskEvaluator, tm *auth.TokenManager, retention time.Duration, logger *slog.Logger, auditLogger *pkglogger.AuditLogger, clock func() time.Time) *AuthService {
	if clock == nil {
		clock = time.Now
	}
	return &AuthService{
		users:       users,
		attempts:    attempts,
		gate:        gate,
		tm:          tm,
		retention:   retention,
		logger:      logger,
		auditLogger: auditLogger,
		now:         clock,
	}
}

// UserResponse represents a user in the HTTP response
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// LoginResult represents the response from a successful login
type LoginResult struct {
	AccessToken string        `json:"access_token"`
	RiskScore   int           `json:"risk_score"`
	User        *UserResponse `json:"user"`
}

// LoginInput carries everything the risk gate needs about one attempt
type LoginInput struct {
	Username  string
	Password  string
	SourceIP  string
	UserAgent string
}

// Signup registers a new user
func (s *AuthService) Signup(ctx context.Context, username, password string) (*UserResponse, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, models.ErrBadRequest
	}

	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		Role:         "user",
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return toUserResponse(created), nil
}

// Login authenticates a user. Every attempt passes through the risk gate
// before credentials are checked; a block decision refuses the login without
// revealing whether the account exists.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	now := s.now()

	candidate := &models.LoginAttempt{
		Username:            username,
		SourceIP:            input.SourceIP,
		UserAgent:           input.UserAgent,
		ClientFingerprint:   pkgauth.ClientFingerprint(input.SourceIP, input.UserAgent),
		PasswordFingerprint: pkgauth.FingerprintPassword(input.Password),
		PatternScore:        pkgauth.PatternScore(input.Password),
		AttemptTime:         now,
		ExpiresAt:           now.Add(s.retention),
	}

	assessment := s.gate.EvaluateLogin(ctx, candidate)

	if assessment.Action == models.ActionBlock {
		s.finalize(ctx, candidate, false, models.FailureBlockedHighRisk)
		s.auditLogger.LogRiskDecision(pkglogger.AuditEvent{
			EventType:     "login_blocked",
			Username:      username,
			IPAddress:     input.SourceIP,
			UserAgent:     input.UserAgent,
			Success:       false,
			FailureReason: models.FailureBlockedHighRisk,
			RiskScore:     assessment.RiskScore,
			Action:        string(assessment.Action),
		})
		return nil, models.ErrLoginBlocked
	}

	if assessment.Action == models.ActionWarn {
		s.auditLogger.LogRiskDecision(pkglogger.AuditEvent{
			EventType: "login_elevated_risk",
			Username:  username,
			IPAddress: input.SourceIP,
			UserAgent: input.UserAgent,
			RiskScore: assessment.RiskScore,
			Action:    string(assessment.Action),
		})
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.finalize(ctx, candidate, false, models.FailureUnknownUser)
			s.logAuthAttempt(candidate, false, models.FailureUnknownUser)
			return nil, models.ErrUnauthorized
		}
		// Not a credential failure; keep the attempt log honest about store
		// outages rather than recording them as bad credentials.
		s.finalize(ctx, candidate, false, models.FailureStoreError)
		s.logger.Error("failed to get user by username", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, input.Password); err != nil {
		s.finalize(ctx, candidate, false, models.FailureInvalidCredentials)
		s.logAuthAttempt(candidate, false, models.FailureInvalidCredentials)
		return nil, models.ErrUnauthorized
	}

	s.finalize(ctx, candidate, true, "")
	s.logAuthAttempt(candidate, true, "")

	token, err := s.tm.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &LoginResult{
		AccessToken: token,
		RiskScore:   assessment.RiskScore,
		User:        toUserResponse(user),
	}, nil
}

// finalize records the attempt outcome. Persistence failures are logged but
// never surfaced to the caller: a broken attempt store must not lock users
// out or mask the credential result.
func (s *AuthService) finalize(ctx context.Context, attempt *models.LoginAttempt, success bool, failureReason string) {
	attempt.Success = success
	if failureReason != "" {
		attempt.FailureReason = &failureReason
	}

	if err := s.attempts.Record(ctx, attempt); err != nil {
		s.logger.Error("failed to record login attempt",
			slog.String("source_ip", attempt.SourceIP),
			slog.Any("error", err))
	}
}

func (s *AuthService) logAuthAttempt(attempt *models.LoginAttempt, success bool, failureReason string) {
	eventType := "login_success"
	if !success {
		eventType = "login_failed"
	}
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     eventType,
		Username:      attempt.Username,
		IPAddress:     attempt.SourceIP,
		UserAgent:     attempt.UserAgent,
		Success:       success,
		FailureReason: failureReason,
	})
}

func toUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}
