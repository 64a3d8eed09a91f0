package httpapi

import (
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Skufu/lipidcare/internal/application"
	"github.com/Skufu/lipidcare/internal/domain"
	"github.com/Skufu/lipidcare/internal/extract"
)

const safetyDisclaimer = "IMPORTANT MEDICAL DISCLAIMER: This system provides educational information and risk " +
	"assessment support only. It does NOT replace professional medical diagnosis or treatment. Always consult " +
	"your healthcare provider before making medical decisions. Urgent cases require immediate medical attention. " +
	"Lipid management requires ongoing medical supervision. In case of chest pain, difficulty breathing, or other " +
	"emergency symptoms, call emergency services immediately."

type handlers struct {
	svc    *application.Service
	logger *zap.Logger
}

type extractResponse struct {
	Success     bool               `json:"success"`
	Data        *extract.Result    `json:"data"`
	LipidValues *domain.LipidPanel `json:"lipid_values,omitempty"`
}

func newExtractResponse(res *extract.Result) extractResponse {
	out := extractResponse{Success: true, Data: res}
	if panel, err := res.Panel(); err == nil {
		out.LipidValues = &panel
	}
	return out
}

func (h *handlers) extractReport(c *gin.Context) {
	file, err := c.FormFile("report")
	if err != nil {
		invalidPayload(c, err)
		return
	}
	f, err := file.Open()
	if err != nil {
		invalidPayload(c, err)
		return
	}
	defer f.Close()
	image, err := io.ReadAll(f)
	if err != nil {
		invalidPayload(c, err)
		return
	}
	if len(image) == 0 {
		writeError(c, h.logger, &domain.ValidationError{Field: "report", Reason: "is empty"})
		return
	}

	res, err := h.svc.ExtractReport(c.Request.Context(), file.Filename, image)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newExtractResponse(res))
}

type extractTextRequest struct {
	Lines []string `json:"lines"`
}

func (h *handlers) extractText(c *gin.Context) {
	var req extractTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	res, err := h.svc.ExtractText(req.Lines)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newExtractResponse(res))
}

type analyzeResponse struct {
	Success bool `json:"success"`
	domain.AssessmentRecord
	SafetyDisclaimer string `json:"safety_disclaimer"`
}

func (h *handlers) analyze(c *gin.Context) {
	var req application.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	in, err := req.Input()
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	rec, err := h.svc.Analyze(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, analyzeResponse{Success: true, AssessmentRecord: rec, SafetyDisclaimer: safetyDisclaimer})
}

type activityRequest struct {
	PatientID         string `json:"patient_id"`
	Date              string `json:"date"`
	DietFollowed      bool   `json:"diet_followed"`
	ExerciseCompleted bool   `json:"exercise_completed"`
	MedicationTaken   bool   `json:"medication_taken"`
	WaterIntakeMet    bool   `json:"water_intake_met"`
	SleepQuality      int    `json:"sleep_quality"`
	StressLevel       int    `json:"stress_level"`
	Notes             string `json:"notes"`
}

func (h *handlers) logActivity(c *gin.Context) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	date, err := parseDate("date", req.Date)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	res, err := h.svc.LogActivity(c.Request.Context(), domain.DailyActivity{
		PatientID:         req.PatientID,
		Date:              date,
		DietFollowed:      req.DietFollowed,
		ExerciseCompleted: req.ExerciseCompleted,
		MedicationTaken:   req.MedicationTaken,
		WaterIntakeMet:    req.WaterIntakeMet,
		SleepQuality:      req.SleepQuality,
		StressLevel:       req.StressLevel,
		Notes:             req.Notes,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	body := gin.H{
		"success":        true,
		"activity":       res.Activity,
		"adherence_rate": nil,
		"escalation":     res.Escalation,
	}
	if res.AdherenceRate != nil {
		body["adherence_rate"] = roundTenth(*res.AdherenceRate * 100)
	}
	c.JSON(http.StatusCreated, body)
}

func (h *handlers) adherence(c *gin.Context) {
	start, err := parseDate("start", c.Query("start"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	end, err := parseDate("end", c.Query("end"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	score, err := h.svc.Adherence(c.Request.Context(), c.Param("patient_id"), start, end)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "adherence": score})
}

func (h *handlers) streak(c *gin.Context) {
	n, err := h.svc.Streak(c.Request.Context(), c.Param("patient_id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "streak_days": n})
}

func (h *handlers) dropoutRisk(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(c, h.logger, &domain.ValidationError{Field: "days", Reason: "must be a positive integer"})
			return
		}
		days = n
	}
	pred, err := h.svc.DropoutRisk(c.Request.Context(), c.Param("patient_id"), days)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "prediction": pred})
}

func (h *handlers) history(c *gin.Context) {
	recs, err := h.svc.History(c.Request.Context(), c.Param("patient_id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if recs == nil {
		recs = []domain.AssessmentRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "history": recs})
}

func (h *handlers) notifications(c *gin.Context) {
	ns, err := h.svc.PendingNotifications(c.Request.Context(), c.Param("patient_id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": ns})
}

// parseDate reads a YYYY-MM-DD value. An empty string yields the zero time.
func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		return time.Time{}, &domain.ValidationError{Field: field, Reason: "must be a date in YYYY-MM-DD form"}
	}
	return t, nil
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
