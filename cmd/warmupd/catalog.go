package main

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jonwraymond/warmup/router"
)

type item struct {
	ID    string  `json:"id,omitempty"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// catalog is the demo application served by warmupd.
type catalog struct {
	mu    sync.RWMutex
	items map[string]item
}

func newCatalog() *catalog {
	return &catalog{items: make(map[string]item)}
}

func (c *catalog) routes() []router.Route {
	return []router.Route{
		{
			Method:  http.MethodGet,
			Pattern: "/items",
			Handler: http.HandlerFunc(c.list),
			WarmUp:  &router.WarmUp{},
		},
		{
			Method:  http.MethodPost,
			Pattern: "/items/search",
			Handler: http.HandlerFunc(c.search),
			WarmUp:  &router.WarmUp{},
			RequestPayload: func() (any, error) {
				return searchRequest{Query: "warm-up", Limit: 1}, nil
			},
		},
		{
			// Writes are not warmed: a warm-up call would create an item.
			Method:  http.MethodPost,
			Pattern: "/items",
			Handler: http.HandlerFunc(c.create),
		},
		{
			Method:  http.MethodGet,
			Pattern: "/items/{id}",
			Handler: http.HandlerFunc(c.get),
		},
	}
}

func (c *catalog) list(w http.ResponseWriter, r *http.Request) {
	c.mu.RLock()
	out := make([]item, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, out)
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (c *catalog) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid search request", http.StatusBadRequest)
		return
	}
	c.mu.RLock()
	out := []item{}
	for _, it := range c.items {
		if req.Limit > 0 && len(out) == req.Limit {
			break
		}
		if it.Name == req.Query {
			out = append(out, it)
		}
	}
	c.mu.RUnlock()
	writeJSON(w, http.StatusOK, out)
}

func (c *catalog) create(w http.ResponseWriter, r *http.Request) {
	var it item
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil || it.Name == "" {
		http.Error(w, "invalid item", http.StatusBadRequest)
		return
	}
	it.ID = uuid.NewString()
	c.mu.Lock()
	c.items[it.ID] = it
	c.mu.Unlock()
	writeJSON(w, http.StatusCreated, it)
}

func (c *catalog) get(w http.ResponseWriter, r *http.Request) {
	c.mu.RLock()
	it, ok := c.items[chi.URLParam(r, "id")]
	c.mu.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
