// Package plan builds the immutable warm-up plan.
//
// A Plan lists the HTTP calls a service makes against itself after it has
// bound its port, together with the feature toggles and network settings used
// to make them. Plans are never constructed directly. Customizers receive a
// Builder, add endpoints and flip toggles, and the Assembler freezes the
// result once all customizers and discovery configurers have run.
//
// # Basic Usage
//
//	reg := plan.NewRegistry()
//	reg.MustRegister("orders", func(b *plan.Builder) (*plan.Builder, error) {
//	    return b.AddPath("/orders").
//	        AddPost("/orders/search", SearchRequest{Limit: 10}).
//	        EnableAutomaticEndpoint(), nil
//	})
//
//	asm := plan.Assembler{Customizers: reg}
//	p, err := asm.Assemble(ctx)
//
// # Repeated Calls
//
// InitializingMultipleTimes records a nested plan that is replayed a fixed
// number of times at a fixed interval. Nested plans are independent of the
// outer plan except for the default HTTP transport, and only one level of
// nesting is evaluated:
//
//	b.InitializingMultipleTimes(10, 200*time.Millisecond, func(b *plan.Builder) (*plan.Builder, error) {
//	    return b.AddPath("/catalog"), nil
//	})
package plan
