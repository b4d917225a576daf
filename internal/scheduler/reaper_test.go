package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/web3ix-api/internal/metrics"
	"go.uber.org/zap"
)

type mockCodeStore struct{ mock.Mock }

func (m *mockCodeStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

func TestSweep_DeletesExpired(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &mockCodeStore{}
	store.On("DeleteExpired", mock.Anything, now).Return(4, nil).Once()

	r := NewReaper(store, zap.NewNop(), metrics.New(prometheus.NewRegistry()))
	r.now = func() time.Time { return now }
	r.sweep()

	store.AssertExpectations(t)
}

func TestSweep_ErrorIsNotFatal(t *testing.T) {
	store := &mockCodeStore{}
	store.On("DeleteExpired", mock.Anything, mock.Anything).Return(1, errors.New("throttled")).Once()

	r := NewReaper(store, zap.NewNop(), nil)
	assert.NotPanics(t, r.sweep)
	store.AssertExpectations(t)
}

func TestStart_InvalidSchedule(t *testing.T) {
	r := NewReaper(&mockCodeStore{}, zap.NewNop(), nil)
	assert.Error(t, r.Start("not a schedule"))
}

type countingStore struct{ calls atomic.Int32 }

func (c *countingStore) DeleteExpired(context.Context, time.Time) (int, error) {
	c.calls.Add(1)
	return 0, nil
}

func TestStartStop_RunsOnSchedule(t *testing.T) {
	store := &countingStore{}
	r := NewReaper(store, zap.NewNop(), nil)
	require.NoError(t, r.Start("@every 1s"))

	assert.Eventually(t, func() bool { return store.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r.Stop(ctx)
}
