// Package cache holds the settings cache of the warm-up plan.
//
// Memo is a single-slot cache filled at most once: the plan is assembled on
// first use, by whichever of the runner and the readiness gate asks first,
// and every later caller sees the same *plan.Plan.
//
//	plans := cache.NewMemo(assembler.Assemble)
//	p, err := plans.Get(ctx)
//
// A failed assembly is not cached; the next Get tries again.
package cache
