package initializer

import (
	"context"

	"github.com/jonwraymond/warmup/plan"
)

// Initializer is one warm-up step.
//
// Contract:
//   - Configure runs during plan assembly; an error aborts the assembly.
//   - WarmUp runs once on the runner goroutine after the server is listening.
//     It blocks until its calls are done and must honor ctx cancellation.
type Initializer interface {
	plan.Configurer

	// WarmUp performs the initializer's calls using p.
	WarmUp(ctx context.Context, p *plan.Plan) error
}

// Configurers returns the initializers as plan configurers, in order.
func Configurers(inits []Initializer) []plan.Configurer {
	out := make([]plan.Configurer, len(inits))
	for i, in := range inits {
		out[i] = in
	}
	return out
}
