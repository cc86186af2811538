package auth

import (
	"net/http"

	"github.com/jonwraymond/warmup/observe"
)

// Guard returns HTTP middleware that rejects requests without a valid bearer
// token with 401 and attaches the identity to the request context otherwise.
func Guard(a *JWTAuthenticator, logger observe.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = observe.NopLogger()
	}
	logger = logger.With(observe.Component("auth"))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := a.Authenticate(r.Context(), r.Header.Get(a.HeaderName()))
			if err != nil {
				logger.Debug(r.Context(), "request rejected",
					observe.String("path", r.URL.Path),
					observe.Err(err),
				)
				w.Header().Set("WWW-Authenticate", `Bearer realm="warmup"`)
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
