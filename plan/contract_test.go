package plan

import (
	"context"
	"testing"
	"time"
)

func TestPlanContract_AccessorsReturnCopies(t *testing.T) {
	p, err := NewBuilder().
		AddPath("/a").
		InitializingMultipleTimes(2, time.Millisecond, func(b *Builder) (*Builder, error) {
			return b.AddPath("/nested"), nil
		}).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	eps := p.Endpoints()
	eps[0].Path = "/changed"
	if got := p.Endpoints()[0].Path; got != "/a" {
		t.Errorf("Endpoints() shares storage: %q", got)
	}

	reps := p.RepeatSpecs()
	reps[0].Times = 99
	if got := p.RepeatSpecs()[0].Times; got != 2 {
		t.Errorf("RepeatSpecs() shares storage: %d", got)
	}
}

func TestPlanContract_BuildIsIndependent(t *testing.T) {
	b := NewBuilder().AddPath("/a")
	first, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	b.AddPath("/b").DisableReadiness()
	second, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if len(first.Endpoints()) != 1 || !first.ReadinessEnabled() {
		t.Error("later builder changes leaked into an earlier plan")
	}
	if len(second.Endpoints()) != 2 || second.ReadinessEnabled() {
		t.Error("second plan missing builder changes")
	}
}

func TestPlanContract_DefaultsAndClient(t *testing.T) {
	p, err := NewBuilder().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if p.Protocol() != DefaultProtocol || p.Hostname() != DefaultHostname {
		t.Errorf("target = %s://%s", p.Protocol(), p.Hostname())
	}
	if !p.ReadinessEnabled() || !p.TLSVerificationEnabled() || p.AutomaticEndpointEnabled() {
		t.Error("unexpected default toggles")
	}
	if p.HTTPClient() == nil || p.HTTPClient().Timeout != DefaultCallTimeout {
		t.Errorf("HTTPClient() = %+v", p.HTTPClient())
	}
}

func TestAssemblerContract_NoPartialPlan(t *testing.T) {
	p, err := Assembler{
		Base: func(b *Builder) (*Builder, error) { return b.AddPath("/ok"), nil },
		Configurers: []Configurer{
			recordingConfigurer{name: "broken", calls: new([]string), seen: new([]*Builder), err: ErrInvalidEndpoint},
		},
	}.Assemble(context.Background())
	if err == nil || p != nil {
		t.Fatalf("Assemble() = %v, %v; want nil plan and error", p, err)
	}
}
