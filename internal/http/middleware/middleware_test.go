package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sessioncache/internal/observability"
	"github.com/yungbote/sessioncache/internal/platform/ctxutil"
	"github.com/yungbote/sessioncache/internal/platform/logger"
)

func TestAttachTraceContextGeneratesAndEchoesIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen == nil {
		t.Fatalf("trace data not attached")
	}
	if seen.RequestID != "req-123" {
		t.Fatalf("request id: want=req-123 got=%s", seen.RequestID)
	}
	if seen.TraceID == "" || rec.Header().Get(headerTraceID) != seen.TraceID {
		t.Fatalf("trace id not echoed: ctx=%q header=%q", seen.TraceID, rec.Header().Get(headerTraceID))
	}
}

func TestMetricsMiddlewareObservesRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()
	r := gin.New()
	r.Use(Metrics(m), RequestLogger(logger.Nop()))
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/7", nil))

	var buf bytes.Buffer
	_ = m.WritePrometheus(&buf)
	want := `sc_api_requests_total{method="GET",route="/items/:id",status="418"} 1`
	if !strings.Contains(buf.String(), want) {
		t.Fatalf("metrics missing %q\n%s", want, buf.String())
	}
}
