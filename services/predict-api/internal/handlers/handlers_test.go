package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/artifacts"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/artifacts/artifactstest"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/features"
	middleware "github.com/nimeshabuddhika/upi-fraud-detection/pkg/middlewares"
	"github.com/nimeshabuddhika/upi-fraud-detection/pkg/views"
	"github.com/nimeshabuddhika/upi-fraud-detection/services/predict-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRouter(ic *artifacts.InferenceContext, maxUpload int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	r := gin.New()

	api := r.Group("/api/v1")
	api.Use(middleware.TraceID())
	h := NewPredictionHandler(logger,
		services.NewPredictionService(logger, ic),
		services.NewBatchService(logger, ic),
		maxUpload)
	h.RegisterRoutes(api)
	NewBaseHandler(logger, ic).RegisterRoutes(r)
	return r
}

func scenarioABody() map[string]interface{} {
	return map[string]interface{}{
		"transaction_type":  "P2P",
		"amount":            150000,
		"merchant_category": "Gambling",
		"sender_bank":       "Unknown Bank",
		"receiver_bank":     "SBI",
		"device_type":       "Emulator",
		"network_type":      "VPN",
	}
}

func postJSON(t *testing.T, r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postFile(t *testing.T, r http.Handler, field string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "transactions.csv")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload_csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) pkg.ErrorResponse {
	t.Helper()
	var out pkg.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestPredict_Success(t *testing.T) {
	r := newRouter(artifactstest.Context(t), 0)

	w := postJSON(t, r, "/api/v1/predict", scenarioABody())

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(pkg.HeaderTraceId))
	var out views.PredictResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, pkg.VerdictFraudulent, out.Prediction)
	assert.Equal(t, 1, out.IsFraud)
	assert.Equal(t, 0.8333, out.FraudProbability)
}

func TestPredict_InvalidBody(t *testing.T) {
	r := newRouter(artifactstest.Context(t), 0)

	cases := map[string]func(map[string]interface{}){
		"missing field":   func(b map[string]interface{}) { delete(b, "device_type") },
		"missing amount":  func(b map[string]interface{}) { delete(b, "amount") },
		"negative amount": func(b map[string]interface{}) { b["amount"] = -1 },
		"amount as text":  func(b map[string]interface{}) { b["amount"] = "lots" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			body := scenarioABody()
			mutate(body)

			w := postJSON(t, r, "/api/v1/predict", body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, pkg.ErrInvalidInputCode.Code, decodeError(t, w).Code)
		})
	}
}

func TestPredict_ZeroAmountAccepted(t *testing.T) {
	r := newRouter(artifactstest.Context(t), 0)
	body := scenarioABody()
	body["amount"] = 0

	w := postJSON(t, r, "/api/v1/predict", body)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestPredict_ModelUnavailable(t *testing.T) {
	r := newRouter(artifacts.Unavailable(nil), 0)

	w := postJSON(t, r, "/api/v1/predict", scenarioABody())

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, pkg.ErrModelUnavailableCode.Code, decodeError(t, w).Code)
}

func TestUploadCSV_Success(t *testing.T) {
	r := newRouter(artifactstest.Context(t), 1<<20)
	data := "transaction id,transaction type,amount (INR),merchant_category, sender_bank ,receiver_bank,device_type,network_type\n" +
		"T1,P2P,150000,Gambling,Unknown Bank,SBI,Emulator,VPN\n" +
		"T2,P2M,250,Grocery,HDFC,ICICI,Android,WiFi\n"

	w := postFile(t, r, "file", []byte(data))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "Analysis Complete", out["message"])
	assert.EqualValues(t, 2, out["total_processed"])
	assert.EqualValues(t, 1, out["fraud_count"])
	frauds := out["frauds"].([]interface{})
	require.Len(t, frauds, 1)
	fraud := frauds[0].(map[string]interface{})
	assert.Equal(t, "T1", fraud["transaction id"])
	assert.Equal(t, "P2P", fraud["transaction type"])
	assert.EqualValues(t, 150000, fraud["amount (INR)"])
	assert.Equal(t, "Unknown Bank", fraud["sender_bank"])
	assert.Equal(t, "83.33%", fraud["fraud_prob"])
}

func TestUploadCSV_NoTransactionIDKey(t *testing.T) {
	r := newRouter(artifactstest.Context(t), 1<<20)
	data := strings.Join(features.Columns(), ",") + "\nP2P,150000,Gambling,Unknown Bank,SBI,Emulator,VPN\n"

	w := postFile(t, r, "file", []byte(data))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "transaction id")
}

func TestUploadCSV_MissingColumn(t *testing.T) {
	r := newRouter(artifactstest.Context(t), 1<<20)
	data := "transaction type,amount (INR),merchant_category,receiver_bank,device_type,network_type\nP2P,1,Grocery,SBI,iOS,4G\n"

	w := postFile(t, r, "file", []byte(data))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	out := decodeError(t, w)
	assert.Equal(t, pkg.ErrMissingColumnsCode.Code, out.Code)
	assert.Equal(t, []string{"sender_bank"}, out.Missing)
	assert.Len(t, out.Found, 6)
}

func TestUploadCSV_NoFile(t *testing.T) {
	r := newRouter(artifactstest.Context(t), 1<<20)

	w := postFile(t, r, "upload", []byte("a,b\n"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, pkg.ErrInvalidInputCode.Code, decodeError(t, w).Code)
}

func TestUploadCSV_TooLarge(t *testing.T) {
	r := newRouter(artifactstest.Context(t), 64)
	data := strings.Repeat(strings.Join(features.Columns(), ",")+"\n", 10)

	w := postFile(t, r, "file", []byte(data))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, pkg.ErrPayloadTooLargeCode.Code, decodeError(t, w).Code)
}

func TestHealthAndReady(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		r := newRouter(artifactstest.Context(t), 0)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"model":"ready"`)

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unavailable", func(t *testing.T) {
		r := newRouter(artifacts.Unavailable(nil), 0)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"model":"unavailable"`)

		w = httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
