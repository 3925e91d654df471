package monitoring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func staticCheck(status HealthStatus) HealthCheckFunc {
	return func(context.Context) ComponentHealth {
		return ComponentHealth{Status: status}
	}
}

func TestCheckReportsWorstStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []HealthStatus
		want     HealthStatus
	}{
		{"no components", nil, HealthStatusHealthy},
		{"all healthy", []HealthStatus{HealthStatusHealthy, HealthStatusHealthy}, HealthStatusHealthy},
		{"one degraded", []HealthStatus{HealthStatusHealthy, HealthStatusDegraded}, HealthStatusDegraded},
		{"unhealthy wins", []HealthStatus{HealthStatusDegraded, HealthStatusUnhealthy, HealthStatusHealthy}, HealthStatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker("test")
			for i, status := range tt.statuses {
				hc.RegisterComponent(string(rune('a'+i)), staticCheck(status))
			}
			result := hc.Check(context.Background())
			assert.Equal(t, tt.want, result.Status)
			assert.Len(t, result.Components, len(tt.statuses))
			assert.Equal(t, "test", result.Version)
		})
	}
}

func TestPingCheck(t *testing.T) {
	ok := PingCheck(func(context.Context) error { return nil })(context.Background())
	assert.Equal(t, HealthStatusHealthy, ok.Status)

	failed := PingCheck(func(context.Context) error { return errors.New("database is locked") })(context.Background())
	assert.Equal(t, HealthStatusUnhealthy, failed.Status)
	assert.Contains(t, failed.Message, "database is locked")
}
