package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/ledgersync/internal/domain"
	"github.com/iho/ledgersync/internal/infrastructure/auth"
	"github.com/iho/ledgersync/internal/infrastructure/metrics"
)

func tenantEcho(got *int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = domain.TenantFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func subjectEcho(tenant *int64, subject *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*tenant = domain.TenantFromContext(r.Context())
		*subject, _ = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Hour)
	expired := auth.NewJWTManager("secret", -time.Minute)

	valid, err := manager.Generate("svc", 7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	stale, err := expired.Generate("svc", 7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantReason string
	}{
		{name: "bearer header", header: "Bearer " + valid, wantStatus: http.StatusNoContent},
		{name: "cookie", cookie: valid, wantStatus: http.StatusNoContent},
		{name: "missing", wantStatus: http.StatusUnauthorized, wantReason: "missing_token"},
		{name: "malformed header", header: "Token " + valid, wantStatus: http.StatusUnauthorized, wantReason: "missing_token"},
		{name: "expired", header: "Bearer " + stale, wantStatus: http.StatusUnauthorized, wantReason: "expired_token"},
		{name: "garbage", header: "Bearer abc", wantStatus: http.StatusUnauthorized, wantReason: "invalid_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New(prometheus.NewRegistry())
			req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "access_token", Value: tt.cookie})
			}

			var tenant int64
			var subject string
			rr := httptest.NewRecorder()
			Authenticate(manager, m)(subjectEcho(&tenant, &subject)).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
			if tt.wantReason == "" {
				if tenant != 7 || subject != "svc" {
					t.Fatalf("expected tenant 7 for svc, got %d for %q", tenant, subject)
				}
				return
			}
			if got := testutil.ToFloat64(m.AuthFailures.WithLabelValues(tt.wantReason)); got != 1 {
				t.Fatalf("expected one %s failure, got %v", tt.wantReason, got)
			}
		})
	}
}

func TestTenantFromHeader(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantTenant int64
	}{
		{name: "absent uses default", wantStatus: http.StatusNoContent, wantTenant: domain.DefaultTenantID},
		{name: "explicit", header: "12", wantStatus: http.StatusNoContent, wantTenant: 12},
		{name: "not a number", header: "abc", wantStatus: http.StatusBadRequest},
		{name: "zero", header: "0", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(TenantHeader, tt.header)
			}

			var tenant int64
			rr := httptest.NewRecorder()
			TenantFromHeader(tenantEcho(&tenant)).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rr.Code)
			}
			if tt.wantTenant != 0 && tenant != tt.wantTenant {
				t.Fatalf("expected tenant %d, got %d", tt.wantTenant, tenant)
			}
		})
	}
}
