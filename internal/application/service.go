// Package application wires the pure assessment packages to storage, the
// notification queue and the OCR engine.
package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Skufu/lipidcare/internal/adherence"
	"github.com/Skufu/lipidcare/internal/domain"
	"github.com/Skufu/lipidcare/internal/extract"
	"github.com/Skufu/lipidcare/internal/lifestyle"
	"github.com/Skufu/lipidcare/internal/metrics"
	"github.com/Skufu/lipidcare/internal/risk"
)

// ErrOCRDisabled is returned by ExtractReport when no OCR engine is configured.
var ErrOCRDisabled = fmt.Errorf("%w: ocr engine not configured", domain.ErrUpstream)

type Deps struct {
	Store      domain.Store
	Queue      domain.NotificationQueue
	OCR        domain.TextRecognizer
	Classifier domain.Classifier
	Logger     *zap.Logger
	Now        func() time.Time
}

type Service struct {
	store     domain.Store
	queue     domain.NotificationQueue
	ocr       domain.TextRecognizer
	scorer    *risk.Scorer
	generator *lifestyle.Generator
	tracker   *adherence.Tracker
	logger    *zap.Logger
	now       func() time.Time
}

func New(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Service{
		store:     d.Store,
		queue:     d.Queue,
		ocr:       d.OCR,
		scorer:    risk.NewScorer(d.Classifier, d.Logger.Named("risk")),
		generator: &lifestyle.Generator{Now: d.Now},
		tracker:   adherence.NewTracker(d.Store, adherence.WithClock(d.Now), adherence.WithLogger(d.Logger.Named("adherence"))),
		logger:    d.Logger,
		now:       d.Now,
	}
}

type AnalyzeInput struct {
	Panel     domain.LipidPanel
	Profile   domain.PatientProfile
	Extracted *domain.ExtractedReport
}

// Analyze runs the full pipeline for one panel. Storage and notification
// failures are logged; the assessment is still returned.
func (s *Service) Analyze(ctx context.Context, in AnalyzeInput) (domain.AssessmentRecord, error) {
	profile := in.Profile
	profile.ID = strings.TrimSpace(profile.ID)
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	panel := in.Panel.Derive()

	assessment, err := s.scorer.Assess(ctx, panel, profile)
	if err != nil {
		return domain.AssessmentRecord{}, err
	}
	decision := risk.ClassifyManagement(assessment.Level)
	now := s.now().UTC()

	rec := domain.AssessmentRecord{
		ID:         uuid.NewString(),
		PatientID:  profile.ID,
		Timestamp:  now,
		Panel:      panel,
		Profile:    profile,
		Assessment: assessment,
		Management: decision,
		Plan:       s.generator.Generate(assessment.Level, profile, decision),
		Extracted:  in.Extracted,
	}
	metrics.RecordAssessment(assessment.Level.String(), assessment.Source)

	log := s.logger.With(zap.String("patient_id", profile.ID), zap.String("assessment_id", rec.ID))
	if err := s.queue.Schedule(ctx, lifestyle.Notifications(profile.ID, assessment.Level, now)); err != nil {
		log.Error("failed to schedule notifications", zap.Error(err))
	}
	if err := s.store.SaveAssessment(ctx, rec); err != nil {
		log.Error("failed to save assessment", zap.Error(err))
	}

	log.Info("assessment completed",
		zap.String("risk_level", assessment.Level.String()),
		zap.Float64("risk_score", assessment.Score),
		zap.String("source", assessment.Source),
		zap.Int("critical_factors", len(assessment.CriticalFactors)),
	)
	return rec, nil
}

// ExtractReport sends the image to the OCR engine once and parses the lines
// it returns.
func (s *Service) ExtractReport(ctx context.Context, filename string, image []byte) (*extract.Result, error) {
	if s.ocr == nil {
		metrics.RecordExtraction("error")
		return nil, ErrOCRDisabled
	}
	start := time.Now()
	lines, err := s.ocr.Recognize(ctx, filename, image)
	metrics.RecordCollaboratorCall("ocr", err, time.Since(start))
	if err != nil {
		metrics.RecordExtraction("error")
		s.logger.Error("ocr failed", zap.String("filename", filename), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	return s.ExtractText(lines)
}

func (s *Service) ExtractText(lines []string) (*extract.Result, error) {
	res, err := extract.Extract(lines)
	metrics.RecordExtraction(extractionOutcome(res, err))
	if err != nil {
		s.logger.Warn("extraction failed", zap.Error(err), zap.Int("lines", len(lines)))
		return nil, err
	}
	if len(res.Missing) > 0 {
		s.logger.Info("extraction incomplete", zap.Any("missing", res.Missing))
	}
	return res, nil
}

func extractionOutcome(res *extract.Result, err error) string {
	var xerr *domain.ExtractionError
	switch {
	case errors.As(err, &xerr) && xerr.Reason == domain.ReasonNoText:
		return "no_text"
	case errors.As(err, &xerr):
		return "insufficient_data"
	case err != nil:
		return "error"
	case len(res.Missing) > 0:
		return "partial"
	}
	return "ok"
}

func (s *Service) History(ctx context.Context, patientID string) ([]domain.AssessmentRecord, error) {
	recs, err := s.store.History(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return recs, nil
}

// PendingNotifications hands out the patient's notifications that are due now.
func (s *Service) PendingNotifications(ctx context.Context, patientID string) ([]domain.Notification, error) {
	ns, err := s.queue.Pending(ctx, patientID, s.now())
	if err != nil {
		return nil, fmt.Errorf("pending notifications: %w", err)
	}
	return ns, nil
}
