package health

import (
	"context"
	"time"
)

// Status is one checker's contribution to readiness.
type Status int

const (
	// StatusHealthy lets traffic through.
	StatusHealthy Status = iota
	// StatusDegraded lets traffic through but is reported.
	StatusDegraded
	// StatusUnhealthy holds traffic back.
	StatusUnhealthy
)

var statusNames = [...]string{"healthy", "degraded", "unhealthy"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// Ready reports whether s lets traffic through.
func (s Status) Ready() bool {
	return s != StatusUnhealthy
}

// Result is what a Checker reports. The Aggregator fills Duration and a
// missing Timestamp.
type Result struct {
	Status    Status
	Message   string
	Details   map[string]any
	Duration  time.Duration
	Timestamp time.Time
	Error     error
}

func result(s Status, message string, err error) Result {
	return Result{Status: s, Message: message, Error: err, Timestamp: time.Now()}
}

// Healthy returns a healthy result.
func Healthy(message string) Result { return result(StatusHealthy, message, nil) }

// Degraded returns a degraded result.
func Degraded(message string) Result { return result(StatusDegraded, message, nil) }

// Unhealthy returns an unhealthy result caused by err.
func Unhealthy(message string, err error) Result { return result(StatusUnhealthy, message, err) }

// WithDetails returns r with details attached.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// Checker contributes to readiness.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

type funcChecker struct {
	name string
	fn   func(context.Context) Result
}

func (f funcChecker) Name() string                     { return f.name }
func (f funcChecker) Check(ctx context.Context) Result { return f.fn(ctx) }

// Func returns a Checker named name that calls fn.
func Func(name string, fn func(context.Context) Result) Checker {
	return funcChecker{name: name, fn: fn}
}
