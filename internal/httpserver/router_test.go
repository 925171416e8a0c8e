package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"directsales/internal/domain"
	"directsales/internal/metrics"
)

func newTestRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, deps)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestBuildRouter_MissingDependency(t *testing.T) {
	deps := stubDeps(&stubAccounts{})
	deps.Withdrawals = nil
	if _, err := buildRouter(logDiscard(), nil, deps); err == nil {
		t.Fatalf("expected error for missing withdrawals service")
	}
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t, stubDeps(&stubAccounts{}))
	rec := serve(router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz_NoDatabase(t *testing.T) {
	router := newTestRouter(t, stubDeps(&stubAccounts{}))
	rec := serve(router, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	deps := stubDeps(&stubAccounts{})
	deps.Metrics = metrics.New()
	router := newTestRouter(t, deps)

	serve(router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	rec := serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("request counter missing from exposition")
	}
}

func notifyRequest(method, body string) *http.Request {
	req := httptest.NewRequest(method, notifyPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestNotify_Preflight(t *testing.T) {
	payments := &stubPayments{}
	deps := stubDeps(&stubAccounts{})
	deps.Payments = payments
	deps.AllowedOrigins = []string{"https://shop.example"}
	router := newTestRouter(t, deps)

	req := httptest.NewRequest(http.MethodOptions, notifyPath, nil)
	req.Header.Set("Origin", "https://gateway.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := serve(router, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected permissive origin, got %q", got)
	}
	if payments.calls != 0 {
		t.Fatalf("preflight must not reach the payment service")
	}
}

func TestNotify_MethodNotAllowed(t *testing.T) {
	payments := &stubPayments{}
	deps := stubDeps(&stubAccounts{})
	deps.Payments = payments
	router := newTestRouter(t, deps)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := serve(router, notifyRequest(method, ""))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s: expected 405, got %d", method, rec.Code)
		}
	}
	if payments.calls != 0 {
		t.Fatalf("rejected methods must not reach the payment service")
	}
}

func TestNotify_StatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"applied", nil, http.StatusOK},
		{"invalid", fmt.Errorf("%w: m_payment_id missing", domain.ErrInvalidInput), http.StatusBadRequest},
		{"amount mismatch", domain.Invalid("amount_gross", "does not match"), http.StatusBadRequest},
		{"unknown", fmt.Errorf("transaction: %w", domain.ErrNotFound), http.StatusNotFound},
		{"storage", errors.New("apply notification: boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payments := &stubPayments{err: tc.err}
			deps := stubDeps(&stubAccounts{})
			deps.Payments = payments
			router := newTestRouter(t, deps)

			rec := serve(router, notifyRequest(http.MethodPost, "m_payment_id=abc&payment_status=COMPLETE&amount_gross=10.00"))
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d body=%s", tc.want, rec.Code, rec.Body.String())
			}
			if payments.form.Get("payment_status") != "COMPLETE" {
				t.Fatalf("form not forwarded: %v", payments.form)
			}
		})
	}
}

func TestNotify_SuccessBody(t *testing.T) {
	router := newTestRouter(t, stubDeps(&stubAccounts{}))
	rec := serve(router, notifyRequest(http.MethodPost, "m_payment_id=abc&payment_status=COMPLETE"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAPICORS_UsesConfiguredOrigins(t *testing.T) {
	deps := stubDeps(&stubAccounts{})
	deps.AllowedOrigins = []string{"https://shop.example"}
	router := newTestRouter(t, deps)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Origin", "https://shop.example")
	rec := serve(router, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://shop.example" {
		t.Fatalf("expected configured origin, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = serve(router, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign origin, got %d", rec.Code)
	}
}

func TestPagination_Invalid(t *testing.T) {
	router := newTestRouter(t, stubDeps(&stubAccounts{identity: customerIdentity()}))
	req := httptest.NewRequest(http.MethodGet, "/orders?limit=abc", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := serve(router, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
