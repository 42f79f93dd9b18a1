package mocks

import (
	"context"

	"github.com/rpggio/interntrack/internal/domain/account"
	"github.com/rpggio/interntrack/internal/domain/activity"
	"github.com/rpggio/interntrack/internal/domain/internship"
	"github.com/stretchr/testify/mock"
)

// InternshipRepository is a mock for internship.Repository.
type InternshipRepository struct {
	mock.Mock
}

func (m *InternshipRepository) ListByUser(ctx context.Context, userID string) ([]internship.Internship, error) {
	args := m.Called(ctx, userID)
	if list, ok := args.Get(0).([]internship.Internship); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InternshipRepository) Get(ctx context.Context, userID string, id int64) (*internship.Internship, error) {
	args := m.Called(ctx, userID, id)
	if rec, ok := args.Get(0).(*internship.Internship); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InternshipRepository) Create(ctx context.Context, userID string, rec *internship.Internship) error {
	args := m.Called(ctx, userID, rec)
	return args.Error(0)
}

func (m *InternshipRepository) UpdateStatus(ctx context.Context, userID string, id int64, status internship.Status) error {
	args := m.Called(ctx, userID, id, status)
	return args.Error(0)
}

func (m *InternshipRepository) Delete(ctx context.Context, userID string, id int64) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *InternshipRepository) ListLinks(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if list, ok := args.Get(0).([]string); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// UserRepository is a mock for account.UserRepository.
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *account.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) Get(ctx context.Context, id string) (*account.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*account.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*account.User, error) {
	args := m.Called(ctx, email)
	if user, ok := args.Get(0).(*account.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) UpdateNotifier(ctx context.Context, id string, notifier account.Notifier) error {
	args := m.Called(ctx, id, notifier)
	return args.Error(0)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, userID string, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, userID, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, userID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, userID, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
