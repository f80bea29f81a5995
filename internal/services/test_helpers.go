package services

import (
	"context"
	"time"

	"github.com/BradenHooton/sentinel/internal/models"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	CreateFunc        func(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsernameFunc func(ctx context.Context, username string) (*models.User, error)
	GetByIDFunc       func(ctx context.Context, id string) (*models.User, error)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

// MockAttemptRecorder implements AttemptRecorder for testing
type MockAttemptRecorder struct {
	RecordFunc func(ctx context.Context, attempt *models.LoginAttempt) error
	Recorded   []models.LoginAttempt
}

func (m *MockAttemptRecorder) Record(ctx context.Context, attempt *models.LoginAttempt) error {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, attempt)
	}
	m.Recorded = append(m.Recorded, *attempt)
	return nil
}

// MockRiskEvaluator implements RiskEvaluator for testing
type MockRiskEvaluator struct {
	EvaluateLoginFunc func(ctx context.Context, candidate *models.LoginAttempt) models.RiskAssessment
}

func (m *MockRiskEvaluator) EvaluateLogin(ctx context.Context, candidate *models.LoginAttempt) models.RiskAssessment {
	if m.EvaluateLoginFunc != nil {
		return m.EvaluateLoginFunc(ctx, candidate)
	}
	return models.RiskAssessment{
		Classification: models.ClassNormal,
		Action:         models.ActionAllow,
	}
}

// NewTestUser builds a user with sane defaults for tests
func NewTestUser(id, username, passwordHash string) *models.User {
	now := time.Now()
	return &models.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         "user",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
