package app

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/artifacts/artifactstest"
	"github.com/nimeshabuddhika/upi-fraud-detection/services/predict-api/configs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const scenarioA = `{"transaction_type":"P2P","amount":150000,"merchant_category":"Gambling",` +
	`"sender_bank":"Unknown Bank","receiver_bank":"SBI","device_type":"Emulator","network_type":"VPN"}`

func testRouter(t *testing.T, rate int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &configs.Config{MaxUploadBytes: 1 << 20}
	limiter := pkg.NewDistributedLimiter(nil, rateLimitKey, rate, rate, time.Minute, zap.NewNop())
	return NewRouter(zap.NewNop(), cfg, artifactstest.Context(t), limiter)
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_VersionedAndLegacyPathsAgree(t *testing.T) {
	r := testRouter(t, 0)

	v1 := post(r, "/api/v1/predict", scenarioA)
	legacy := post(r, "/predict", scenarioA)

	require.Equal(t, http.StatusOK, v1.Code)
	require.Equal(t, http.StatusOK, legacy.Code)
	assert.JSONEq(t, v1.Body.String(), legacy.Body.String())
}

func TestRouter_RateLimited(t *testing.T) {
	r := testRouter(t, 1)

	assert.Equal(t, http.StatusOK, post(r, "/api/v1/predict", scenarioA).Code)
	w := post(r, "/api/v1/predict", scenarioA)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRouter_MetricsExposed(t *testing.T) {
	r := testRouter(t, 0)
	post(r, "/api/v1/predict", scenarioA)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "upi_fraud_http_requests_total")
	assert.Contains(t, w.Body.String(), "upi_fraud_verdicts_total")
}

func TestRouter_Swagger(t *testing.T) {
	r := testRouter(t, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/upload_csv")
}
