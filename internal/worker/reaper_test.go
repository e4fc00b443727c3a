package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockHoldSweeper struct {
	mock.Mock
}

func (m *MockHoldSweeper) SweepExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestNewExpiryReaper(t *testing.T) {
	sweeper := new(MockHoldSweeper)
	reaper := NewExpiryReaper(sweeper, time.Minute)

	assert.NotNil(t, reaper)
	assert.Equal(t, time.Minute, reaper.interval)
	assert.NotNil(t, reaper.stopCh)
	assert.NotNil(t, reaper.doneCh)
}

func TestExpiryReaperSweep(t *testing.T) {
	t.Run("releases expired sets", func(t *testing.T) {
		sweeper := new(MockHoldSweeper)
		sweeper.On("SweepExpired", mock.Anything).Return(3, nil)

		reaper := NewExpiryReaper(sweeper, time.Minute)
		reaper.sweep(context.Background())

		sweeper.AssertExpectations(t)
	})

	t.Run("nothing to release", func(t *testing.T) {
		sweeper := new(MockHoldSweeper)
		sweeper.On("SweepExpired", mock.Anything).Return(0, nil)

		reaper := NewExpiryReaper(sweeper, time.Minute)
		reaper.sweep(context.Background())

		sweeper.AssertExpectations(t)
	})

	t.Run("survives sweep errors", func(t *testing.T) {
		sweeper := new(MockHoldSweeper)
		sweeper.On("SweepExpired", mock.Anything).Return(0, assert.AnError)

		reaper := NewExpiryReaper(sweeper, time.Minute)
		reaper.sweep(context.Background())

		sweeper.AssertExpectations(t)
	})
}

func TestExpiryReaperStartStop(t *testing.T) {
	t.Run("stop terminates the loop", func(t *testing.T) {
		sweeper := new(MockHoldSweeper)
		sweeper.On("SweepExpired", mock.Anything).Return(0, nil).Maybe()

		reaper := NewExpiryReaper(sweeper, 20*time.Millisecond)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go reaper.Start(ctx)
		time.Sleep(50 * time.Millisecond)
		reaper.Stop()

		select {
		case <-reaper.doneCh:
		case <-time.After(time.Second):
			t.Error("reaper did not stop in time")
		}
	})

	t.Run("context cancel terminates the loop", func(t *testing.T) {
		sweeper := new(MockHoldSweeper)
		sweeper.On("SweepExpired", mock.Anything).Return(0, nil).Maybe()

		reaper := NewExpiryReaper(sweeper, 20*time.Millisecond)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan struct{})
		go func() {
			reaper.Start(ctx)
			close(done)
		}()

		time.Sleep(30 * time.Millisecond)
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Error("reaper did not stop after context cancel")
		}
	})
}
