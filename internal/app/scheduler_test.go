package app

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingAlerter struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (a *recordingAlerter) Alert(_ context.Context, text string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, text)
	return a.err
}

func TestScheduler_RunOnce(t *testing.T) {
	tests := []struct {
		name       string
		runErr     error
		alertErr   error
		wantErr    bool
		wantAlerts int
		wantLevel  string
	}{
		{name: "success"},
		{name: "failure is logged and alerted", runErr: assert.AnError, wantErr: true, wantAlerts: 1, wantLevel: "error"},
		{name: "alert failure is not fatal", runErr: assert.AnError, alertErr: assert.AnError, wantErr: true, wantAlerts: 1, wantLevel: "error"},
		{name: "locked run is skipped", runErr: ErrLocked, wantLevel: "warn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.DebugLevel)
			alerter := &recordingAlerter{err: tt.alertErr}
			s := NewScheduler(func(context.Context) error { return tt.runErr }, 0, alerter, zap.New(core))

			err := s.RunOnce(context.Background())
			if tt.wantErr {
				assert.ErrorIs(t, err, tt.runErr)
			} else {
				require.NoError(t, err)
			}

			assert.Len(t, alerter.messages, tt.wantAlerts)
			if tt.wantAlerts > 0 {
				assert.Contains(t, alerter.messages[0], "Error Sending Notification(s)")
			}
			if tt.wantLevel != "" {
				require.NotZero(t, logs.Len())
				assert.Equal(t, tt.wantLevel, logs.All()[0].Level.String())
			}
		})
	}
}

func TestScheduler_StartStop(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(func(context.Context) error {
		runs.Add(1)
		return nil
	}, 10*time.Millisecond, &recordingAlerter{}, zap.NewNop())

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

func TestScheduler_StartCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32
	s := NewScheduler(func(context.Context) error {
		runs.Add(1)
		cancel()
		return nil
	}, time.Hour, &recordingAlerter{}, zap.NewNop())

	s.Start(ctx)
	assert.Equal(t, int32(1), runs.Load())
}
