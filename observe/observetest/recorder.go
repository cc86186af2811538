// Package observetest provides an in-memory observe.Logger for tests.
package observetest

import (
	"context"
	"strings"
	"sync"

	"github.com/jonwraymond/warmup/observe"
)

// Entry is one recorded log line.
type Entry struct {
	Level   string
	Message string
	Fields  map[string]any
}

// Recorder is an observe.Logger that keeps every entry in memory.
type Recorder struct {
	mu      *sync.Mutex
	entries *[]Entry
	base    []observe.Field
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{mu: &sync.Mutex{}, entries: &[]Entry{}}
}

func (r *Recorder) Info(_ context.Context, msg string, fields ...observe.Field) {
	r.record("info", msg, fields)
}

func (r *Recorder) Warn(_ context.Context, msg string, fields ...observe.Field) {
	r.record("warn", msg, fields)
}

func (r *Recorder) Error(_ context.Context, msg string, fields ...observe.Field) {
	r.record("error", msg, fields)
}

func (r *Recorder) Debug(_ context.Context, msg string, fields ...observe.Field) {
	r.record("debug", msg, fields)
}

// With returns a Recorder sharing the same entries with extra base fields.
func (r *Recorder) With(fields ...observe.Field) observe.Logger {
	base := append(append([]observe.Field(nil), r.base...), fields...)
	return &Recorder{mu: r.mu, entries: r.entries, base: base}
}

func (r *Recorder) record(level, msg string, fields []observe.Field) {
	e := Entry{Level: level, Message: msg, Fields: make(map[string]any, len(r.base)+len(fields))}
	for _, f := range r.base {
		e.Fields[f.Key] = f.Value
	}
	for _, f := range fields {
		e.Fields[f.Key] = f.Value
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	*r.entries = append(*r.entries, e)
}

// Entries returns a copy of all recorded entries.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), *r.entries...)
}

// AtLevel returns the entries recorded at level.
func (r *Recorder) AtLevel(level string) []Entry {
	var out []Entry
	for _, e := range r.Entries() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// Contains reports whether any entry at level has a message containing substr.
func (r *Recorder) Contains(level, substr string) bool {
	for _, e := range r.AtLevel(level) {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

var _ observe.Logger = (*Recorder)(nil)
