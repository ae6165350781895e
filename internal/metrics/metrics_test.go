package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/items/:id", "418"))
	for _, id := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
	}
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/items/:id", "418"))
	assert.Equal(t, 2.0, after-before)

	unmatchedBefore := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404"))-unmatchedBefore)
}

func TestSyncObserver(t *testing.T) {
	before := testutil.ToFloat64(PackSyncTotal.WithLabelValues("created"))
	SyncObserver{}.ObservePackSync("created")
	assert.Equal(t, 1.0, testutil.ToFloat64(PackSyncTotal.WithLabelValues("created"))-before)
}

func TestObserveLLM(t *testing.T) {
	before := testutil.ToFloat64(LLMErrorsTotal.WithLabelValues("cover_letter"))
	ObserveLLM("cover_letter", time.Now(), nil)
	ObserveLLM("cover_letter", time.Now(), errors.New("quota"))
	assert.Equal(t, 1.0, testutil.ToFloat64(LLMErrorsTotal.WithLabelValues("cover_letter"))-before)
}

func TestPushSync(t *testing.T) {
	var method, path, body string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		method, path, body = r.Method, r.URL.Path, string(raw)
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	SyncObserver{}.ObservePackSync("updated")
	require.NoError(t, PushSync(context.Background(), gateway.URL))

	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/"+SyncJob, path)
	assert.Contains(t, body, "pricing_pack_sync_total")
}

func TestPushSync_GatewayError(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer gateway.Close()

	assert.Error(t, PushSync(context.Background(), gateway.URL))
}
