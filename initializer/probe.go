package initializer

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// ProbePath is the path of the transient probe route.
const ProbePath = "/automaticWarmUpEndpoint"

var abcPattern = regexp.MustCompile(`^abc+$`)

// ProbePayload is the request and response body of the probe route. Its
// fields cover the common constraint kinds so that decoding and validating
// it loads the same code paths real handlers use.
type ProbePayload struct {
	Name        string    `json:"name" validate:"required,min=1,max=64"`
	Count       int       `json:"count" validate:"gte=1,lte=100"`
	Ratio       float64   `json:"ratio" validate:"gte=0,lte=1"`
	Code        string    `json:"code" validate:"required,abc"`
	Email       string    `json:"email" validate:"required,email"`
	Future      time.Time `json:"future" validate:"required,gt"`
	FutureOrNow time.Time `json:"futureOrNow" validate:"required,gte"`
	Past        time.Time `json:"past" validate:"required,lt"`
	PastOrNow   time.Time `json:"pastOrNow" validate:"required,lte"`
	Enabled     bool      `json:"enabled" validate:"eq=true"`
	Disabled    bool      `json:"disabled" validate:"eq=false"`
	Tags        []string  `json:"tags" validate:"min=1,max=10,dive,required"`
}

// DefaultProbePayload returns a payload that passes every constraint.
func DefaultProbePayload() ProbePayload {
	future := time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
	past := time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	return ProbePayload{
		Name:        "warm-up",
		Count:       1,
		Ratio:       0.5,
		Code:        "abccc",
		Email:       "warmup@example.com",
		Future:      future,
		FutureOrNow: future,
		Past:        past,
		PastOrNow:   past,
		Enabled:     true,
		Disabled:    false,
		Tags:        []string{"warm-up"},
	}
}

var probeValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("abc", func(fl validator.FieldLevel) bool {
		return abcPattern.MatchString(fl.Field().String())
	})
	return v
})

// Validate checks p against its constraints.
func (p ProbePayload) Validate() error {
	return probeValidator().Struct(p)
}

// ProbeHandler decodes a ProbePayload, validates it and echoes it back.
func ProbeHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p ProbePayload
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			writeProblem(w, http.StatusBadRequest, err)
			return
		}
		if err := p.Validate(); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				writeProblem(w, http.StatusUnprocessableEntity, verrs)
				return
			}
			writeProblem(w, http.StatusBadRequest, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(p)
	})
}

func writeProblem(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": status,
		"title":  http.StatusText(status),
		"detail": err.Error(),
	})
}
