package plan

import (
	"errors"
	"net/http"
	"reflect"
	"testing"
	"time"
)

type searchRequest struct {
	Query string `json:"query"`
}

func TestBuilder_Defaults(t *testing.T) {
	p, err := NewBuilder().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if p.AutomaticEndpointEnabled() {
		t.Error("AutomaticEndpointEnabled() = true, want false")
	}
	if !p.ReadinessEnabled() {
		t.Error("ReadinessEnabled() = false, want true")
	}
	if p.Protocol() != "http" {
		t.Errorf("Protocol() = %q, want http", p.Protocol())
	}
	if p.Hostname() != "localhost" {
		t.Errorf("Hostname() = %q, want localhost", p.Hostname())
	}
	if !p.TLSVerificationEnabled() {
		t.Error("TLSVerificationEnabled() = false, want true")
	}
	if p.HTTPClient() == nil {
		t.Error("HTTPClient() = nil")
	}
	if len(p.Endpoints()) != 0 {
		t.Errorf("Endpoints() len = %d, want 0", len(p.Endpoints()))
	}
	if len(p.RepeatSpecs()) != 0 {
		t.Errorf("RepeatSpecs() len = %d, want 0", len(p.RepeatSpecs()))
	}
}

func TestBuilder_AddEndpointVariants(t *testing.T) {
	body := searchRequest{Query: "q"}

	p, err := NewBuilder().
		AddEndpoint(NewEndpointWithBody("PUT", "/full", body, "text/plain")).
		AddPath("/p").
		AddRequest("DELETE", "/d").
		AddPost("/post", body).
		AddPostAs("/post-xml", body, "application/xml").
		AddRequestBody("PATCH", "/patch", body).
		AddRequestBodyAs("PUT", "/put", body, "application/merge-patch+json").
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := []Endpoint{
		{Method: "PUT", Path: "/full", Body: body, ContentType: "text/plain"},
		{Method: "GET", Path: "/p"},
		{Method: "DELETE", Path: "/d"},
		{Method: "POST", Path: "/post", Body: body, ContentType: "application/json"},
		{Method: "POST", Path: "/post-xml", Body: body, ContentType: "application/xml"},
		{Method: "PATCH", Path: "/patch", Body: body, ContentType: "application/json"},
		{Method: "PUT", Path: "/put", Body: body, ContentType: "application/merge-patch+json"},
	}

	got := p.Endpoints()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Endpoints() = %+v\nwant %+v", got, want)
	}
}

func TestBuilder_FluentReturnsSameInstance(t *testing.T) {
	b := NewBuilder()

	chained := []*Builder{
		b.AddPath("/a"),
		b.EnableAutomaticEndpoint(),
		b.DisableReadiness(),
		b.SetProtocol("https"),
		b.SetHostname("127.0.0.1"),
		b.DisableTLSVerification(),
		b.SetHTTPClient(nil),
	}
	for i, c := range chained {
		if c != b {
			t.Errorf("call %d returned a different builder", i)
		}
	}
}

func TestBuilder_Toggles(t *testing.T) {
	p, err := NewBuilder().
		EnableAutomaticEndpoint().
		DisableReadiness().
		SetProtocol("https").
		SetHostname("svc.local").
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !p.AutomaticEndpointEnabled() {
		t.Error("AutomaticEndpointEnabled() = false, want true")
	}
	if p.ReadinessEnabled() {
		t.Error("ReadinessEnabled() = true, want false")
	}
	if p.Protocol() != "https" || p.Hostname() != "svc.local" {
		t.Errorf("Protocol/Hostname = %q/%q", p.Protocol(), p.Hostname())
	}
}

func TestBuilder_DisableTLSVerification(t *testing.T) {
	base := &http.Transport{}
	b := NewBuilderWithTransport(base).DisableTLSVerification()

	p, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if p.TLSVerificationEnabled() {
		t.Error("TLSVerificationEnabled() = true, want false")
	}

	tr, ok := p.HTTPClient().Transport.(*http.Transport)
	if !ok {
		t.Fatalf("Transport type = %T, want *http.Transport", p.HTTPClient().Transport)
	}
	if tr.TLSClientConfig == nil || !tr.TLSClientConfig.InsecureSkipVerify {
		t.Error("default transport should skip verification")
	}
	// Clone may fill in base.TLSClientConfig for HTTP/2; verification must stay on.
	if base.TLSClientConfig != nil && base.TLSClientConfig.InsecureSkipVerify {
		t.Error("caller's transport stopped verifying certificates")
	}

	p, err = b.EnableTLSVerification().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	tr = p.HTTPClient().Transport.(*http.Transport)
	if tr.TLSClientConfig.InsecureSkipVerify {
		t.Error("verification should be restored")
	}
}

func TestBuilder_SetHTTPClient(t *testing.T) {
	client := &http.Client{Timeout: time.Second}

	p, err := NewBuilder().SetHTTPClient(client).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if p.HTTPClient() != client {
		t.Error("HTTPClient() should return the configured client")
	}
}

func TestBuilder_InitializingMultipleTimes(t *testing.T) {
	b := NewBuilder().AddPath("/outer")

	b.InitializingMultipleTimes(3, 250*time.Millisecond, func(nb *Builder) (*Builder, error) {
		if nb == b {
			t.Error("nested customizer received the outer builder")
		}
		return nb.AddPath("/inner").AddPost("/inner-post", "x").EnableAutomaticEndpoint(), nil
	})

	p, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if got := p.Endpoints(); len(got) != 1 || got[0].Path != "/outer" {
		t.Errorf("outer Endpoints() = %+v, want only /outer", got)
	}
	if p.AutomaticEndpointEnabled() {
		t.Error("outer plan should not inherit nested toggle")
	}
	if !p.RequestsAutomaticEndpoint() {
		t.Error("RequestsAutomaticEndpoint() = false, want true")
	}

	specs := p.RepeatSpecs()
	if len(specs) != 1 {
		t.Fatalf("RepeatSpecs() len = %d, want 1", len(specs))
	}
	if specs[0].Times != 3 || specs[0].Interval != 250*time.Millisecond {
		t.Errorf("spec = %d x %v, want 3 x 250ms", specs[0].Times, specs[0].Interval)
	}

	want := []Endpoint{
		Get("/inner"),
		Post("/inner-post", "x", ContentTypeJSON),
	}
	if got := specs[0].Plan.Endpoints(); !reflect.DeepEqual(got, want) {
		t.Errorf("nested Endpoints() = %+v, want %+v", got, want)
	}
}

func TestBuilder_InitializingRepeatedlyDefaults(t *testing.T) {
	c := func(b *Builder) (*Builder, error) { return b.AddPath("/x"), nil }

	p1, err := NewBuilder().InitializingRepeatedly(c).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	p2, err := NewBuilder().InitializingMultipleTimes(5, 500*time.Millisecond, c).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	s1, s2 := p1.RepeatSpecs()[0], p2.RepeatSpecs()[0]
	if s1.Times != s2.Times || s1.Interval != s2.Interval {
		t.Errorf("defaults = %d x %v, want %d x %v", s1.Times, s1.Interval, s2.Times, s2.Interval)
	}
	if !reflect.DeepEqual(s1.Plan.Endpoints(), s2.Plan.Endpoints()) {
		t.Error("nested endpoints differ")
	}
}

func TestBuilder_NestedFailurePropagates(t *testing.T) {
	boom := errors.New("boom")

	_, err := NewBuilder().
		InitializingMultipleTimes(2, time.Millisecond, func(b *Builder) (*Builder, error) {
			return nil, boom
		}).
		Build()
	if !errors.Is(err, boom) {
		t.Errorf("Build() error = %v, want %v", err, boom)
	}
}

func TestBuilder_InvalidInputs(t *testing.T) {
	tests := []struct {
		name string
		fn   func(b *Builder) *Builder
		want error
	}{
		{"empty path", func(b *Builder) *Builder { return b.AddPath("") }, ErrInvalidEndpoint},
		{"bad method", func(b *Builder) *Builder { return b.AddRequest("GE T", "/x") }, ErrInvalidEndpoint},
		{"nil customizer", func(b *Builder) *Builder { return b.InitializingMultipleTimes(1, 0, nil) }, ErrNilCustomizer},
		{"zero times", func(b *Builder) *Builder {
			return b.InitializingMultipleTimes(0, 0, func(b *Builder) (*Builder, error) { return b, nil })
		}, ErrInvalidRepeat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn(NewBuilder()).Build()
			if !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuilder_BuildIsRepeatable(t *testing.T) {
	b := NewBuilder().AddPath("/a")

	p1, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	p2, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if !reflect.DeepEqual(p1.Endpoints(), p2.Endpoints()) {
		t.Error("repeated Build() produced different endpoints")
	}

	b.AddPath("/b")
	if len(p1.Endpoints()) != 1 {
		t.Error("built plan changed after builder was mutated")
	}
}

func TestPlan_EndpointsReturnsCopy(t *testing.T) {
	p, _ := NewBuilder().AddPath("/a").Build()

	eps := p.Endpoints()
	eps[0].Path = "/changed"

	if p.Endpoints()[0].Path != "/a" {
		t.Error("Endpoints() exposed internal slice")
	}
}
