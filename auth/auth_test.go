package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newSource(t *testing.T, cfg TokenSourceConfig) *TokenSource {
	t.Helper()
	if cfg.Secret == nil {
		cfg.Secret = testSecret
	}
	src, err := NewTokenSource(cfg)
	if err != nil {
		t.Fatalf("NewTokenSource() error = %v", err)
	}
	return src
}

func newAuthenticator(t *testing.T, cfg JWTConfig) *JWTAuthenticator {
	t.Helper()
	if cfg.Secret == nil {
		cfg.Secret = testSecret
	}
	a, err := NewJWTAuthenticator(cfg)
	if err != nil {
		t.Fatalf("NewJWTAuthenticator() error = %v", err)
	}
	return a
}

func TestNew_RequiresSecret(t *testing.T) {
	if _, err := NewTokenSource(TokenSourceConfig{}); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("NewTokenSource() error = %v, want ErrMissingSecret", err)
	}
	if _, err := NewJWTAuthenticator(JWTConfig{}); !errors.Is(err, ErrMissingSecret) {
		t.Errorf("NewJWTAuthenticator() error = %v, want ErrMissingSecret", err)
	}
}

func TestTokenSource_RoundTrip(t *testing.T) {
	src := newSource(t, TokenSourceConfig{Issuer: "warmupd", Audience: "app"})
	a := newAuthenticator(t, JWTConfig{Issuer: "warmupd", Audience: "app"})

	token, err := src.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}

	id, err := a.Authenticate(context.Background(), "Bearer "+token)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if id.Principal != "warmup" || id.Issuer != "warmupd" {
		t.Errorf("identity = %+v", id)
	}
	if id.ExpiresAt.IsZero() {
		t.Error("ExpiresAt not set")
	}
	if !id.IsWarmUp() {
		t.Errorf("IsWarmUp() = false, claims = %v", id.Claims)
	}
	if (&Identity{Claims: map[string]any{"sub": "user"}}).IsWarmUp() || (*Identity)(nil).IsWarmUp() {
		t.Error("IsWarmUp() = true for a token without the warm-up claim")
	}
}

func TestTokenSource_ReusesUntilHalfLife(t *testing.T) {
	src := newSource(t, TokenSourceConfig{TTL: time.Minute})
	now := time.Now()
	src.now = func() time.Time { return now }

	first, _ := src.Token(context.Background())
	now = now.Add(20 * time.Second)
	second, _ := src.Token(context.Background())
	if first != second {
		t.Fatal("token renewed before half-life")
	}

	now = now.Add(15 * time.Second)
	third, _ := src.Token(context.Background())
	if third == first {
		t.Fatal("token not renewed after half-life")
	}
}

func TestTokenSource_CancelledContext(t *testing.T) {
	src := newSource(t, TokenSourceConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Token(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Token() error = %v, want context.Canceled", err)
	}
}

func TestJWTAuthenticator_Authenticate(t *testing.T) {
	a := newAuthenticator(t, JWTConfig{Issuer: "warmupd"})

	sign := func(claims jwt.Claims, method jwt.SigningMethod, key any) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	valid := jwt.RegisteredClaims{
		Issuer:    "warmupd",
		Subject:   "tester",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}
	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongIssuer := valid
	wrongIssuer.Issuer = "elsewhere"
	noExpiry := valid
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{"valid", "Bearer " + sign(valid, jwt.SigningMethodHS256, testSecret), nil},
		{"empty header", "", ErrMissingCredentials},
		{"wrong scheme", "Basic abc", ErrMissingCredentials},
		{"garbage", "Bearer not-a-token", ErrTokenMalformed},
		{"expired", "Bearer " + sign(expired, jwt.SigningMethodHS256, testSecret), ErrTokenExpired},
		{"wrong issuer", "Bearer " + sign(wrongIssuer, jwt.SigningMethodHS256, testSecret), ErrInvalidCredentials},
		{"missing expiry", "Bearer " + sign(noExpiry, jwt.SigningMethodHS256, testSecret), ErrInvalidCredentials},
		{"wrong key", "Bearer " + sign(valid, jwt.SigningMethodHS256, []byte("other")), ErrInvalidCredentials},
		{"wrong algorithm", "Bearer " + sign(valid, jwt.SigningMethodHS512, testSecret), ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := a.Authenticate(context.Background(), tt.header)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Authenticate() error = %v", err)
				}
				if id.Principal != "tester" {
					t.Errorf("Principal = %q, want tester", id.Principal)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authenticate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGuard(t *testing.T) {
	src := newSource(t, TokenSourceConfig{})
	a := newAuthenticator(t, JWTConfig{})

	var principal string
	h := Guard(a, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/catalog", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("without token: status = %d, want 401", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Error("missing WWW-Authenticate header")
	}

	token, _ := src.Token(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/catalog", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("with token: status = %d, want 204", rec.Code)
	}
	if principal != "warmup" {
		t.Errorf("principal = %q, want warmup", principal)
	}
}

func TestIdentityFromContext_Empty(t *testing.T) {
	if IdentityFromContext(context.Background()) != nil {
		t.Fatal("expected nil identity")
	}
	if PrincipalFromContext(context.Background()) != "" {
		t.Fatal("expected empty principal")
	}
}
