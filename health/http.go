package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// LivenessHandler answers 200 "OK" while the process can serve HTTP at all.
// Warm-up state does not affect it.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusOK, "OK")
	}
}

// ReadinessHandler answers 200 while every checker of agg lets traffic
// through and 503 "UNHEALTHY" otherwise. A 503 carries Retry-After.
func ReadinessHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := Overall(agg.CheckAll(r.Context()))
		switch status {
		case StatusHealthy:
			writeText(w, http.StatusOK, "OK")
		case StatusDegraded:
			writeText(w, http.StatusOK, "DEGRADED")
		default:
			w.Header().Set("Retry-After", "1")
			writeText(w, http.StatusServiceUnavailable, "UNHEALTHY")
		}
	}
}

// Report is the body of the detailed health endpoint.
type Report struct {
	Status    string        `json:"status"`
	Ready     bool          `json:"ready"`
	Timestamp time.Time     `json:"timestamp"`
	Checks    []CheckReport `json:"checks"`
}

// CheckReport is one checker's entry in a Report.
type CheckReport struct {
	Name     string         `json:"name"`
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// NewReport folds results into a Report.
func NewReport(results []NamedResult) Report {
	status := Overall(results)
	rep := Report{
		Status:    status.String(),
		Ready:     status.Ready(),
		Timestamp: time.Now().UTC(),
		Checks:    make([]CheckReport, 0, len(results)),
	}
	for _, res := range results {
		c := CheckReport{
			Name:     res.Name,
			Status:   res.Status.String(),
			Message:  res.Message,
			Duration: res.Duration.String(),
			Details:  res.Details,
		}
		if res.Error != nil {
			c.Error = res.Error.Error()
		}
		rep.Checks = append(rep.Checks, c)
	}
	return rep
}

// DetailedHandler answers with a JSON Report, using 503 when not ready.
func DetailedHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep := NewReport(agg.CheckAll(r.Context()))

		code := http.StatusOK
		if !rep.Ready {
			code = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(rep)
	}
}

func writeText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(body))
}
