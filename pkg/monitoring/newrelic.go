package monitoring

import (
	"fmt"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// Config holds New Relic configuration
type Config struct {
	LicenseKey string
	AppName    string
	Enabled    bool
}

// NewRelicApp wraps the New Relic application
type NewRelicApp struct {
	*newrelic.Application
	enabled bool
}

// New creates a new New Relic application
func New(cfg Config) (*NewRelicApp, error) {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		// Return disabled app
		return &NewRelicApp{nil, false}, nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(true),
		newrelic.ConfigDistributedTracerEnabled(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create New Relic application: %w", err)
	}

	return &NewRelicApp{app, true}, nil
}

// IsEnabled reports whether telemetry is active
func (nr *NewRelicApp) IsEnabled() bool {
	return nr != nil && nr.enabled && nr.Application != nil
}

// RecordCustomEvent records a custom event
func (nr *NewRelicApp) RecordCustomEvent(eventType string, params map[string]interface{}) {
	if !nr.IsEnabled() {
		return
	}
	nr.Application.RecordCustomEvent(eventType, params)
}

// RecordCustomMetric records a custom metric
func (nr *NewRelicApp) RecordCustomMetric(name string, value float64) {
	if !nr.IsEnabled() {
		return
	}
	nr.Application.RecordCustomMetric(name, value)
}

// Shutdown gracefully shuts down the New Relic application
func (nr *NewRelicApp) Shutdown(timeout time.Duration) {
	if !nr.IsEnabled() {
		return
	}
	nr.Application.Shutdown(timeout)
}

// Custom metric helpers

// RecordRideCreated records a new ride request entering the approval chain
func (nr *NewRelicApp) RecordRideCreated() {
	nr.RecordCustomMetric("custom/ride/created", 1)
}

// RecordApprovalDecision records a department head or PM decision
func (nr *NewRelicApp) RecordApprovalDecision(stage string, approved bool) {
	nr.RecordCustomEvent("RideApprovalDecision", map[string]interface{}{
		"stage":    stage,
		"approved": approved,
	})
}

// RecordAssignmentOutcome records whether an assignment attempt won or lost the
// driver/vehicle race
func (nr *NewRelicApp) RecordAssignmentOutcome(won bool) {
	if won {
		nr.RecordCustomMetric("custom/assignment/won", 1)
		return
	}
	nr.RecordCustomMetric("custom/assignment/lost", 1)
}

// RecordRideCompleted records a completed trip and its distance
func (nr *NewRelicApp) RecordRideCompleted(distanceKM float64) {
	nr.RecordCustomEvent("RideCompleted", map[string]interface{}{
		"distance_km": distanceKM,
	})
}
