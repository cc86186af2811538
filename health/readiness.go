package health

import (
	"context"

	"github.com/jonwraymond/warmup/plan"
)

// WarmedUp reports whether the warm-up run has finished.
type WarmedUp interface {
	IsWarmedUp() bool
}

// PlanCache exposes the warm-up plan once it has been assembled.
// Peek must not block or start an assembly.
type PlanCache interface {
	Peek() (*plan.Plan, bool)
}

// ReadinessGate holds readiness back while warm-up runs, unless the plan
// disables the gate.
type ReadinessGate struct {
	flag  WarmedUp
	plans PlanCache
}

// NewReadinessGate creates a gate reading flag and plans on every check.
func NewReadinessGate(flag WarmedUp, plans PlanCache) *ReadinessGate {
	return &ReadinessGate{flag: flag, plans: plans}
}

// Name returns "warmup".
func (g *ReadinessGate) Name() string { return "warmup" }

// Ready reports false only while the gate is enabled and warm-up has not
// finished. A plan that has not been assembled yet counts as gate enabled.
func (g *ReadinessGate) Ready(context.Context) bool {
	ready, _ := g.state()
	return ready
}

// Check reports healthy when Ready and unhealthy otherwise.
func (g *ReadinessGate) Check(context.Context) Result {
	ready, gated := g.state()
	var res Result
	switch {
	case !gated:
		res = Healthy("readiness gate disabled")
	case ready:
		res = Healthy("warm-up finished")
	default:
		res = Unhealthy("warm-up in progress", ErrNotWarmedUp)
	}
	return res.WithDetails(map[string]any{
		"gated":     gated,
		"warmed_up": g.flag.IsWarmedUp(),
	})
}

func (g *ReadinessGate) state() (ready, gated bool) {
	gated = true
	if p, ok := g.plans.Peek(); ok {
		gated = p.ReadinessEnabled()
	}
	if !gated {
		return true, false
	}
	return g.flag.IsWarmedUp(), true
}
