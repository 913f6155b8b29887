package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type mockPruner struct{ mock.Mock }

func (m *mockPruner) PruneHistory(ctx context.Context, keep int) (int64, error) {
	args := m.Called(keep)
	return args.Get(0).(int64), args.Error(1)
}

type mockCleaner struct{ mock.Mock }

func (m *mockCleaner) RemoveOld(ctx context.Context, maxAge time.Duration) (int64, error) {
	args := m.Called(maxAge)
	return args.Get(0).(int64), args.Error(1)
}

func TestMainCleanup_RunsBothJobs(t *testing.T) {
	pruner := &mockPruner{}
	pruner.On("PruneHistory", RoomHistoryKeep).Return(int64(3), nil).Once()
	cleaner := &mockCleaner{}
	cleaner.On("RemoveOld", NotificationMaxAge).Return(int64(0), errors.New("db down")).Once()

	NewJobs(pruner, cleaner, zap.NewNop()).MainCleanup()

	pruner.AssertExpectations(t)
	cleaner.AssertExpectations(t)
}

func TestStartCronJobs(t *testing.T) {
	pruner := &mockPruner{}
	pruner.On("PruneHistory", mock.Anything).Return(int64(0), nil)
	cleaner := &mockCleaner{}
	cleaner.On("RemoveOld", mock.Anything).Return(int64(0), nil)

	s, err := NewJobs(pruner, cleaner, zap.NewNop()).StartCronJobs()
	assert.NoError(t, err)
	assert.True(t, s.IsRunning())
	s.Stop()
}
