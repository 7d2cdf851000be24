package observability

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decisionCount scrapes the authz decision counter for one guard and outcome
func decisionCount(t *testing.T, m *Metrics, guard, outcome string) float64 {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	prefix := fmt.Sprintf(`chillfilm_authz_decisions_total{guard=%q,outcome=%q} `, guard, outcome)
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if strings.HasPrefix(line, prefix) {
			v, err := strconv.ParseFloat(strings.TrimPrefix(line, prefix), 64)
			require.NoError(t, err)
			return v
		}
	}
	return 0
}

func TestMetrics_AuthzDecisions(t *testing.T) {
	m := NewMetrics()

	m.RecordAuthzDecision("permission", "authorized")
	m.RecordAuthzDecision("permission", "authorized")
	m.RecordAuthzDecision("superadmin", "forbidden")

	assert.Equal(t, float64(2), decisionCount(t, m, "permission", "authorized"))
	assert.Equal(t, float64(1), decisionCount(t, m, "superadmin", "forbidden"))
	assert.Equal(t, float64(0), decisionCount(t, m, "admin", "forbidden"))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordAuthzDecision("permission", "authorized")
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	assert.NotNil(t, m.Instrument(next))
}

func TestMetrics_InstrumentAndExpose(t *testing.T) {
	m := NewMetrics()

	r := chi.NewRouter()
	r.Use(m.Instrument)
	r.Get("/api/movies/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/movies/42", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `chillfilm_http_requests_total{method="GET",route="/api/movies/{id}",status="418"} 1`)
}
