package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	name string
	err  error
}

func (s *stubChecker) Name() string { return s.name }

func (s *stubChecker) Check(context.Context) error { return s.err }

// blockingChecker waits for its context to end.
type blockingChecker struct{ name string }

func (b *blockingChecker) Name() string { return b.name }

func (b *blockingChecker) Check(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestNewReadinessChecks_RejectsDuplicateNames(t *testing.T) {
	_, err := NewReadinessChecks(time.Second, &stubChecker{name: "sqlite"}, &stubChecker{name: "sqlite"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite")
}

func TestNewReadinessChecks_DefaultTimeout(t *testing.T) {
	r, err := NewReadinessChecks(0)

	require.NoError(t, err)
	assert.Equal(t, DefaultCheckTimeout, r.timeout)
}

func TestReady_NoCheckers(t *testing.T) {
	r, err := NewReadinessChecks(time.Second)
	require.NoError(t, err)

	result := r.Ready(context.Background())

	assert.Equal(t, HealthStatusHealthy, result.Status)
	assert.Empty(t, result.Checks)
	assert.False(t, result.Timestamp.IsZero())
}

func TestReady_Statuses(t *testing.T) {
	tests := []struct {
		name     string
		checkErr error
		status   HealthStatus
		message  string
	}{
		{name: "store reachable", status: HealthStatusHealthy},
		{
			name:     "store locked",
			checkErr: errors.New("database is locked"),
			status:   HealthStatusUnhealthy,
			message:  "database is locked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewReadinessChecks(time.Second, &stubChecker{name: "sqlite", err: tt.checkErr})
			require.NoError(t, err)

			result := r.Ready(context.Background())

			assert.Equal(t, tt.status, result.Status)
			require.Contains(t, result.Checks, "sqlite")
			assert.Equal(t, tt.status, result.Checks["sqlite"].Status)
			assert.Equal(t, tt.message, result.Checks["sqlite"].Message)
		})
	}
}

func TestReady_OneFailureMarksServiceUnhealthy(t *testing.T) {
	r, err := NewReadinessChecks(time.Second,
		&stubChecker{name: "sqlite"},
		&stubChecker{name: "schema", err: errors.New("no such table: quotes")},
	)
	require.NoError(t, err)

	result := r.Ready(context.Background())

	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	assert.Equal(t, HealthStatusHealthy, result.Checks["sqlite"].Status)
	assert.Equal(t, HealthStatusUnhealthy, result.Checks["schema"].Status)
}

func TestReady_CheckTimesOut(t *testing.T) {
	r, err := NewReadinessChecks(20*time.Millisecond, &blockingChecker{name: "sqlite"})
	require.NoError(t, err)

	start := time.Now()
	result := r.Ready(context.Background())

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	assert.Contains(t, result.Checks["sqlite"].Message, "deadline exceeded")
}

func TestReady_CancelledContext(t *testing.T) {
	r, err := NewReadinessChecks(time.Second, &blockingChecker{name: "sqlite"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := r.Ready(ctx)

	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	assert.Contains(t, result.Checks["sqlite"].Message, "context canceled")
}
