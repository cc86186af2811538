package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/warmup/auth"
	"github.com/jonwraymond/warmup/cache"
	"github.com/jonwraymond/warmup/caller"
	"github.com/jonwraymond/warmup/config"
	"github.com/jonwraymond/warmup/health"
	"github.com/jonwraymond/warmup/initializer"
	"github.com/jonwraymond/warmup/observe"
	"github.com/jonwraymond/warmup/observe/exporters"
	"github.com/jonwraymond/warmup/plan"
	"github.com/jonwraymond/warmup/resilience"
	"github.com/jonwraymond/warmup/router"
	"github.com/jonwraymond/warmup/runner"
)

// Server is a warm-up enabled HTTP service.
//
// Contract:
//   - Lifecycle: New, then Start once, then Shutdown once.
//   - Concurrency: Port, Ready and the accessors are safe for concurrent use.
type Server struct {
	cfg      *config.Config
	obs      observe.Observer
	logger   observe.Logger
	registry *prometheus.Registry

	routes *router.Table
	plans  *cache.Memo[plan.Plan]
	runner *runner.Runner
	agg    *health.Aggregator
	gate   *health.ReadinessGate
	http   *http.Server

	port     atomic.Int64
	started  atomic.Bool
	serveErr chan error

	mu       sync.Mutex
	listener net.Listener
	cancel   context.CancelFunc
}

// New wires a Server from cfg. Nothing listens until Start.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	s := &Server{
		cfg:      cfg,
		registry: prometheus.NewRegistry(),
		serveErr: make(chan error, 1),
	}
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	obsCfg := cfg.ObserveConfig()
	if o.logOutput != nil {
		obsCfg.Logging.Output = o.logOutput
	}
	obs, err := observe.NewObserver(ctx, obsCfg, exporters.WithRegisterer(s.registry))
	if err != nil {
		return nil, fmt.Errorf("server: observer: %w", err)
	}
	s.obs = obs
	s.logger = obs.Logger().With(observe.Component("server"))

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return nil, err
	}

	tableOpts := []router.Option{router.WithMiddleware(middleware.Recoverer)}
	callerOpts := []caller.Option{
		caller.WithLogger(obs.Logger()),
		caller.WithMiddleware(mw),
		caller.WithTimeout(cfg.WarmUp.CallTimeout),
		caller.WithUserAgent(userAgent(cfg.Version)),
		caller.WithRetry(resilience.NewRetry(resilience.RetryConfig{
			Attempts: cfg.WarmUp.Retry.Attempts,
			Delay:    cfg.WarmUp.Retry.Delay,
			Jitter:   true,
			OnRetry: func(attempt int, err error, delay time.Duration) {
				s.logger.Debug(context.Background(), "retrying warm-up call",
					observe.Int("attempt", attempt),
					observe.Duration("delay", delay),
					observe.Err(err),
				)
			},
		})),
	}
	if cfg.Auth.Enabled {
		guard, tokens, err := s.security()
		if err != nil {
			return nil, err
		}
		tableOpts = append(tableOpts, router.WithGuard(guard))
		callerOpts = append(callerOpts, caller.WithTokenProvider(tokens))
	}
	s.routes = router.NewTable(tableOpts...)

	calls := caller.New(caller.PortFunc(s.Port), callerOpts...)
	inits := []initializer.Initializer{
		initializer.NewTransient(s.routes, calls,
			initializer.WithTransientLogger(obs.Logger()),
			initializer.WithPublicProbe(cfg.WarmUp.AutoSecurity),
		),
		initializer.NewHandlers(s.routes, calls,
			initializer.WithHandlersLogger(obs.Logger()),
		),
	}
	inits = append(inits, o.initializers...)

	customizers := plan.NewRegistry()
	for _, nc := range o.customizers {
		if err := customizers.Register(nc.name, nc.fn); err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
	}
	assembler := plan.Assembler{
		Base:        cfg.Customizer(),
		Customizers: customizers,
		Configurers: initializer.Configurers(inits),
	}
	s.plans = cache.NewMemo(assembler.Assemble)

	s.runner = runner.New(s.plans, inits,
		runner.WithLogger(obs.Logger()),
		runner.WithTracer(obs.Tracer()),
		runner.WithMetrics(mw.Metrics()),
	)

	s.gate = health.NewReadinessGate(s.runner, s.plans)
	s.agg = health.NewAggregator(health.DefaultCheckTimeout)
	s.agg.Register(s.gate)
	for _, c := range o.checkers {
		s.agg.Register(c)
	}

	for _, r := range append(s.systemRoutes(), o.routes...) {
		if err := s.routes.Register(r); err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
	}
	if err := s.routes.Rebuild(); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	s.http = &http.Server{
		Handler:           s.routes,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}
	return s, nil
}

func (s *Server) security() (router.Middleware, *auth.TokenSource, error) {
	secret, err := s.cfg.Auth.Secret()
	if err != nil {
		return nil, nil, err
	}
	authn, err := auth.NewJWTAuthenticator(auth.JWTConfig{
		Secret: secret,
		Issuer: s.cfg.Auth.Issuer,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("server: authenticator: %w", err)
	}
	tokens, err := auth.NewTokenSource(auth.TokenSourceConfig{
		Secret: secret,
		Issuer: s.cfg.Auth.Issuer,
		TTL:    s.cfg.Auth.TokenTTL,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("server: token source: %w", err)
	}
	return auth.Guard(authn, s.obs.Logger()), tokens, nil
}

func userAgent(version string) string {
	if version == "" {
		return "warmup"
	}
	return "warmup/" + version
}

func (s *Server) systemRoutes() []router.Route {
	get := func(pattern string, h http.Handler) router.Route {
		return router.Route{Method: http.MethodGet, Pattern: pattern, Handler: h, Public: true}
	}
	return []router.Route{
		get("/healthz", health.LivenessHandler()),
		get("/readyz", health.ReadinessHandler(s.agg)),
		get("/health", health.DetailedHandler(s.agg)),
		get("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})),
	}
}

// Start binds the configured address, begins serving and triggers the
// warm-up. ctx bounds the warm-up run, not the server.
func (s *Server) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	ln, err := net.Listen("tcp", s.cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		s.port.Store(int64(addr.Port))
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.listener = ln
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(ctx, "server stopped", observe.Err(err))
			s.serveErr <- err
		}
		close(s.serveErr)
	}()

	s.logger.Info(ctx, "server listening",
		observe.String("address", ln.Addr().String()),
		observe.Int("port", s.Port()),
	)
	s.runner.OnServerStarted(runCtx)
	return nil
}

// Serve starts the server and blocks until ctx is done or serving fails,
// then shuts down within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-s.serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return errors.Join(serveErr, s.Shutdown(shutdownCtx))
}

// Shutdown cancels a running warm-up, stops accepting requests and flushes
// telemetry.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	var errs []error
	if cancel != nil {
		cancel()
		if err := s.http.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("server: http shutdown: %w", err))
		}
		if err := s.runner.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("server: warm-up did not stop: %w", err))
		}
	}
	if err := s.obs.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server: observer shutdown: %w", err))
	}
	s.logger.Info(ctx, "server stopped")
	return errors.Join(errs...)
}

// Port returns the bound port, or 0 before Start.
func (s *Server) Port() int {
	return int(s.port.Load())
}

// Addr returns the base URL of the bound listener, or "" before Start.
func (s *Server) Addr() string {
	port := s.Port()
	if port == 0 {
		return ""
	}
	return s.cfg.WarmUp.Protocol + "://" + net.JoinHostPort(s.cfg.WarmUp.Hostname, strconv.Itoa(port))
}

// Ready reports whether the readiness gate lets traffic through.
func (s *Server) Ready(ctx context.Context) bool {
	return s.gate.Ready(ctx)
}

// Routes returns the live route table.
func (s *Server) Routes() *router.Table { return s.routes }

// Runner returns the warm-up runner.
func (s *Server) Runner() *runner.Runner { return s.runner }

// Plan returns the assembled warm-up plan, assembling it on first use.
func (s *Server) Plan(ctx context.Context) (*plan.Plan, error) {
	return s.plans.Get(ctx)
}
