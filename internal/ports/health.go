package ports

import (
	"context"
	"fmt"
	"time"
)

// DefaultCheckTimeout bounds a single readiness check when none is given.
const DefaultCheckTimeout = 2 * time.Second

// HealthChecker is a dependency /-/ready consults. The sqlite store is the
// only one: it fails while the file is unreachable or not yet migrated.
type HealthChecker interface {
	// Name identifies the component in readiness responses.
	Name() string

	// Check returns nil when the component can serve quotes. It must honor ctx.
	Check(ctx context.Context) error
}

// Readiness reports whether the service can take traffic.
type Readiness interface {
	Ready(ctx context.Context) *HealthResult
}

// HealthStatus is the state of one check or of the whole service.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult is the aggregated readiness report.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// ReadinessChecks runs a fixed set of checkers in order, each under its own
// timeout. The set is decided at startup and never changes.
type ReadinessChecks struct {
	checkers []HealthChecker
	timeout  time.Duration
}

var _ Readiness = (*ReadinessChecks)(nil)

// NewReadinessChecks builds the check set. A non-positive timeout falls back
// to DefaultCheckTimeout. Checkers sharing a name are rejected.
func NewReadinessChecks(timeout time.Duration, checkers ...HealthChecker) (*ReadinessChecks, error) {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}

	seen := make(map[string]struct{}, len(checkers))
	for _, c := range checkers {
		if _, dup := seen[c.Name()]; dup {
			return nil, fmt.Errorf("duplicate readiness check %q", c.Name())
		}

		seen[c.Name()] = struct{}{}
	}

	return &ReadinessChecks{checkers: checkers, timeout: timeout}, nil
}

// Ready runs every check. One failure makes the service unhealthy.
func (r *ReadinessChecks) Ready(ctx context.Context) *HealthResult {
	result := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(r.checkers)),
		Timestamp: time.Now(),
	}

	for _, c := range r.checkers {
		check := r.run(ctx, c)
		if check.Status == HealthStatusUnhealthy {
			result.Status = HealthStatusUnhealthy
		}

		result.Checks[c.Name()] = check
	}

	return result
}

func (r *ReadinessChecks) run(ctx context.Context, c HealthChecker) *CheckResult {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	err := c.Check(ctx)

	check := &CheckResult{Status: HealthStatusHealthy, Duration: time.Since(start)}
	if err != nil {
		check.Status = HealthStatusUnhealthy
		check.Message = err.Error()
	}

	return check
}
