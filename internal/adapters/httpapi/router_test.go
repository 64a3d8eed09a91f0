package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/lipidcare/internal/adapters/db/memory"
	"github.com/Skufu/lipidcare/internal/adapters/notify"
	"github.com/Skufu/lipidcare/internal/application"
)

var refNow = time.Date(2025, time.January, 15, 14, 0, 0, 0, time.UTC)

type fakeDB struct {
	err error
}

func (f fakeDB) Ping(ctx context.Context) error {
	return f.err
}

type fakeOCR struct {
	lines []string
	err   error
}

func (f fakeOCR) Recognize(context.Context, string, []byte) ([]string, error) {
	return f.lines, f.err
}

func newTestRouter(t *testing.T, ocr fakeOCR, opts Options) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	opts.Service = application.New(application.Deps{
		Store: memory.New(),
		Queue: notify.NewMemoryQueue(),
		OCR:   ocr,
		Now:   func() time.Time { return refNow },
	})
	return NewRouter(opts)
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

var reportLines = []string{
	"Patient Name: Jane Roe",
	"TOTAL CHOLESTEROL", "210 MG/DL",
	"HDL CHOLESTEROL", "45 MG/DL",
	"LDL CHOLESTEROL", "130 MG/DL",
	"TRIGLYCERIDES", "150 MG/DL",
}

const highRiskPayload = `{
	"patient_id": "p-1",
	"total_cholesterol": 240,
	"ldl": 170,
	"hdl": 35,
	"triglycerides": 250,
	"blood_glucose": 110,
	"age": 60,
	"gender": "F",
	"bmi": 23,
	"smoking": true
}`

func TestRouterHealthz(t *testing.T) {
	router := newTestRouter(t, fakeOCR{}, Options{})

	w := do(router, "GET", "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestRouterReadyz(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		router := newTestRouter(t, fakeOCR{}, Options{Checks: []Check{{Name: "db", Checker: fakeDB{}}}})
		w := do(router, "GET", "/readyz", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", decode(t, w)["db"])
	})

	t.Run("degraded", func(t *testing.T) {
		router := newTestRouter(t, fakeOCR{}, Options{Checks: []Check{
			{Name: "db", Checker: fakeDB{}},
			{Name: "redis", Checker: fakeDB{err: errors.New("connection refused")}},
		}})
		w := do(router, "GET", "/readyz", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		body := decode(t, w)
		assert.Equal(t, "degraded", body["status"])
		assert.Contains(t, body["redis"], "connection refused")
	})
}

// Ensure limitBodySize middleware allows small payloads and blocks large ones.
func TestLimitBodySize(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(limitBodySize(10))
	router.POST("/echo", func(c *gin.Context) {
		_, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too large"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	t.Run("within limit", func(t *testing.T) {
		w := do(router, "POST", "/echo", "12345")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("over limit", func(t *testing.T) {
		w := do(router, "POST", "/echo", "01234567890")
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("expected 413, got %d", w.Code)
		}
	})
}

func TestAnalyzeEndpoint(t *testing.T) {
	router := newTestRouter(t, fakeOCR{}, Options{})

	w := do(router, "POST", "/api/analyze-lipid-profile", highRiskPayload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "p-1", body["patient_id"])
	assert.Contains(t, body["safety_disclaimer"], "DISCLAIMER")
	analysis := body["risk_analysis"].(map[string]any)
	assert.Equal(t, "High", analysis["risk_level"])
	management := body["management_type"].(map[string]any)
	assert.Equal(t, "medical_management", management["primary"])

	w = do(router, "GET", "/api/patient-history/p-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["history"], 1)

	w = do(router, "GET", "/api/notifications/p-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["notifications"], 1)
}

func TestAnalyzeValidation(t *testing.T) {
	router := newTestRouter(t, fakeOCR{}, Options{})

	w := do(router, "POST", "/api/analyze-lipid-profile", `{"patient_id": "p-1", "hdl": 40, "age": 50, "gender": "M"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for validation failure, got %d", w.Code)
	}
	body := decode(t, w)
	assert.Equal(t, "validation_failed", body["code"])
	assert.Contains(t, body["message"], "ldl")

	w = do(router, "POST", "/api/analyze-lipid-profile", `{"gender": "robot"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, "POST", "/api/analyze-lipid-profile", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_payload", decode(t, w)["code"])
}

func TestAnalyzeRejectsMissingHDL(t *testing.T) {
	router := newTestRouter(t, fakeOCR{}, Options{})

	w := do(router, "POST", "/api/analyze-lipid-profile",
		`{"patient_id":"p-1","ldl":120,"triglycerides":140,"blood_glucose":90,"age":50,"gender":"M"}`)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "validation_failed", body["code"])
	details := body["details"].(map[string]any)
	assert.Equal(t, "hdl", details["field"])

	w = do(router, "GET", "/api/patient-history/p-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["history"])
}

func TestExtractTextEndpoint(t *testing.T) {
	router := newTestRouter(t, fakeOCR{}, Options{})
	payload, _ := json.Marshal(map[string]any{"lines": reportLines})

	w := do(router, "POST", "/api/extract/text", string(payload))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	lipids := body["lipid_values"].(map[string]any)
	assert.Equal(t, 130.0, lipids["ldl"])

	w = do(router, "POST", "/api/extract/text", `{"lines": ["HDL CHOLESTEROL", "45"]}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body = decode(t, w)
	assert.Equal(t, "extraction_failed", body["code"])
	details := body["details"].(map[string]any)
	assert.Equal(t, "insufficient data", details["reason"])
	assert.Contains(t, details["raw_text"], "HDL CHOLESTEROL")
}

func uploadRequest(t *testing.T, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("report", "report.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest("POST", "/api/extract", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestExtractUpload(t *testing.T) {
	router := newTestRouter(t, fakeOCR{lines: reportLines}, Options{})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, []byte("fake image")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "Jane Roe", data["patient_name"])
}

func TestExtractUploadOCRFailure(t *testing.T) {
	router := newTestRouter(t, fakeOCR{err: errors.New("engine crashed")}, Options{})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, []byte("fake image")))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "upstream_unavailable", decode(t, w)["code"])
}

func TestActivitiesAndAdherence(t *testing.T) {
	router := newTestRouter(t, fakeOCR{}, Options{})

	w := do(router, "GET", "/api/adherence/p-1", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "data_absent", decode(t, w)["code"])

	w = do(router, "POST", "/api/activities", `{"patient_id": "p-1", "date": "2025-01-15", "stress_level": 10}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, 0.0, body["adherence_rate"])
	escalation := body["escalation"].(map[string]any)
	assert.Equal(t, "low_adherence", escalation["flag"])

	w = do(router, "POST", "/api/activities", `{"patient_id": "p-1", "date": "15/01/2025"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, "GET", "/api/adherence/p-1?start=2025-01-10&end=2025-01-15", "")
	require.Equal(t, http.StatusOK, w.Code)
	adherence := decode(t, w)["adherence"].(map[string]any)
	assert.Equal(t, 1.0, adherence["total_days"])

	w = do(router, "GET", "/api/adherence/p-1/streak", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, decode(t, w)["streak_days"])

	w = do(router, "GET", "/api/adherence/p-1/risk?days=7", "")
	require.Equal(t, http.StatusOK, w.Code)
	prediction := decode(t, w)["prediction"].(map[string]any)
	assert.Equal(t, "very_high", prediction["risk"])

	w = do(router, "GET", "/api/adherence/p-1/risk?days=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimit(t *testing.T) {
	router := newTestRouter(t, fakeOCR{}, Options{RateLimitRPS: 1, RateLimitBurst: 1})

	first := do(router, "GET", "/api/patient-history/p-1", "")
	assert.Equal(t, http.StatusOK, first.Code)
	second := do(router, "GET", "/api/patient-history/p-1", "")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "1", second.Header().Get("Retry-After"))

	health := do(router, "GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestIPRateLimiterEvictsIdleClients(t *testing.T) {
	now := refNow
	l := newIPRateLimiter(1, 1)
	l.now = func() time.Time { return now }

	l.limiter("192.0.2.1")
	l.limiter("192.0.2.2")
	assert.Equal(t, 2, l.size())

	now = now.Add(5 * time.Minute)
	l.limiter("192.0.2.2")
	assert.Equal(t, 2, l.size())

	now = now.Add(limiterIdleTTL)
	l.limiter("192.0.2.3")
	assert.Equal(t, 2, l.size(), "192.0.2.1 idle past the TTL should be dropped")

	now = now.Add(limiterIdleTTL + time.Second)
	l.limiter("192.0.2.3")
	assert.Equal(t, 1, l.size())
}
