package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/warmup/config"
	"github.com/jonwraymond/warmup/plan"
	"github.com/jonwraymond/warmup/server"
)

type planView struct {
	Protocol          string         `yaml:"protocol"`
	Hostname          string         `yaml:"hostname"`
	VerifyTLS         bool           `yaml:"verify_tls"`
	Readiness         bool           `yaml:"readiness"`
	AutomaticEndpoint bool           `yaml:"automatic_endpoint"`
	Endpoints         []endpointView `yaml:"endpoints,omitempty"`
	Repeats           []repeatView   `yaml:"repeats,omitempty"`
}

type endpointView struct {
	Method      string `yaml:"method"`
	Path        string `yaml:"path"`
	ContentType string `yaml:"content_type,omitempty"`
	Body        any    `yaml:"body,omitempty"`
}

type repeatView struct {
	Times             int            `yaml:"times"`
	Interval          string         `yaml:"interval"`
	AutomaticEndpoint bool           `yaml:"automatic_endpoint"`
	Endpoints         []endpointView `yaml:"endpoints,omitempty"`
}

func newPlanCommand(load func() (*config.Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Print the assembled warm-up plan without starting the service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			cfg.Observe.Logging.Enabled = false

			s, err := server.New(cmd.Context(), cfg, server.WithRoutes(newCatalog().routes()...))
			if err != nil {
				return err
			}
			p, err := s.Plan(cmd.Context())
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(viewOf(p)); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func viewOf(p *plan.Plan) planView {
	v := planView{
		Protocol:          p.Protocol(),
		Hostname:          p.Hostname(),
		VerifyTLS:         p.TLSVerificationEnabled(),
		Readiness:         p.ReadinessEnabled(),
		AutomaticEndpoint: p.AutomaticEndpointEnabled(),
		Endpoints:         endpointViews(p.Endpoints()),
	}
	for _, r := range p.RepeatSpecs() {
		v.Repeats = append(v.Repeats, repeatView{
			Times:             r.Times,
			Interval:          r.Interval.String(),
			AutomaticEndpoint: r.Plan.AutomaticEndpointEnabled(),
			Endpoints:         endpointViews(r.Plan.Endpoints()),
		})
	}
	return v
}

func endpointViews(eps []plan.Endpoint) []endpointView {
	out := make([]endpointView, 0, len(eps))
	for _, e := range eps {
		out = append(out, endpointView{
			Method:      e.Method,
			Path:        e.Path,
			ContentType: e.ContentType,
			Body:        e.Body,
		})
	}
	return out
}
