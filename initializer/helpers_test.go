package initializer

import (
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/jonwraymond/warmup/caller"
	"github.com/jonwraymond/warmup/observe"
	"github.com/jonwraymond/warmup/plan"
	"github.com/jonwraymond/warmup/router"
)

// hits counts requests per "METHOD path".
type hits struct {
	mu sync.Mutex
	m  map[string]int
}

func (h *hits) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		if h.m == nil {
			h.m = map[string]int{}
		}
		h.m[r.Method+" "+r.URL.Path]++
		h.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (h *hits) get(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.m[key]
}

// server is a route table behind a real listener.
type server struct {
	table *router.Table
	hits  *hits
	srv   *httptest.Server
}

func newServer(t *testing.T, opts ...router.Option) *server {
	t.Helper()
	h := &hits{}
	table := router.NewTable(append(opts, router.WithMiddleware(h.middleware))...)
	srv := httptest.NewServer(table)
	t.Cleanup(srv.Close)
	return &server{table: table, hits: h, srv: srv}
}

func (s *server) Port() int {
	u, _ := url.Parse(s.srv.URL)
	_, p, _ := net.SplitHostPort(u.Host)
	port, _ := strconv.Atoi(p)
	return port
}

func (s *server) caller(logger observe.Logger) *caller.Caller {
	return caller.New(s, caller.WithLogger(logger))
}

func build(t *testing.T, b *plan.Builder) *plan.Plan {
	t.Helper()
	p, err := b.SetHostname("127.0.0.1").Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return p
}

func ok(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	})
}
