package plan

import (
	"context"
	"fmt"
)

// Configurer adds discovered endpoints to a Builder during assembly.
type Configurer interface {
	// Name identifies the configurer in errors and logs.
	Name() string

	// Configure returns the builder to continue with. Returning nil keeps b.
	Configure(b *Builder) (*Builder, error)
}

// Assembler runs customizers and configurers over a fresh Builder.
//
// Order: the base customizer, then customizers sorted by registry name, then
// configurers in slice order, then Build. Later steps override earlier ones.
// Any error aborts assembly; no partial plan is returned.
type Assembler struct {
	// Base runs before every registered customizer, so named customizers
	// always override it. May be nil.
	Base Customizer

	// Customizers supplies user customizers. May be nil.
	Customizers *Registry

	// Configurers run after all customizers, in order.
	Configurers []Configurer

	// NewBuilder returns the starting builder. Default: NewBuilder.
	NewBuilder func() *Builder
}

// Result is the outcome of one assembly: exactly one of Plan and Err is set.
type Result struct {
	Plan *Plan
	Err  error
}

// Assemble builds a Plan.
func (a Assembler) Assemble(ctx context.Context) (*Plan, error) {
	r := a.Run(ctx)
	return r.Plan, r.Err
}

// Run builds a Plan and reports the outcome as a Result.
func (a Assembler) Run(ctx context.Context) Result {
	newBuilder := a.NewBuilder
	if newBuilder == nil {
		newBuilder = NewBuilder
	}
	b := newBuilder()

	if a.Base != nil {
		next, err := a.Base(b)
		if err != nil {
			return Result{Err: fmt.Errorf("base customizer: %w", err)}
		}
		if next != nil {
			b = next
		}
	}

	if a.Customizers != nil {
		for _, nc := range a.Customizers.Ordered() {
			if err := ctx.Err(); err != nil {
				return Result{Err: err}
			}
			next, err := nc.Customizer(b)
			if err != nil {
				return Result{Err: fmt.Errorf("customizer %q: %w", nc.Name, err)}
			}
			if next != nil {
				b = next
			}
		}
	}

	for _, c := range a.Configurers {
		if err := ctx.Err(); err != nil {
			return Result{Err: err}
		}
		next, err := c.Configure(b)
		if err != nil {
			return Result{Err: fmt.Errorf("configurer %q: %w", c.Name(), err)}
		}
		if next != nil {
			b = next
		}
	}

	p, err := b.Build()
	if err != nil {
		return Result{Err: fmt.Errorf("build plan: %w", err)}
	}
	return Result{Plan: p}
}
