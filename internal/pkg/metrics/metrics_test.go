package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersAndHandler(t *testing.T) {
	m := New()
	m.OTPIssued.WithLabelValues("STUDENT", "OTP", "true").Inc()
	m.OTPVerifications.WithLabelValues("success").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OTPIssued.WithLabelValues("STUDENT", "OTP", "true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OTPVerifications.WithLabelValues("success")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "uniportal_otp_issued_total")
}

func TestGinMiddlewareObservesRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/students/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/students/42", nil))

	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
}
