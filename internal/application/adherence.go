package application

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Skufu/lipidcare/internal/adherence"
	"github.com/Skufu/lipidcare/internal/domain"
	"github.com/Skufu/lipidcare/internal/metrics"
)

// ActivityResult is what a patient sees after logging a day: the rolling
// weekly adherence rate and any escalation it triggered. Rate is nil when
// the logged day falls outside the current week.
type ActivityResult struct {
	Activity      domain.DailyActivity `json:"activity"`
	AdherenceRate *float64             `json:"adherence_rate"`
	Escalation    *domain.Escalation   `json:"escalation,omitempty"`
}

// LogActivity records a day; a zero date means today.
func (s *Service) LogActivity(ctx context.Context, a domain.DailyActivity) (ActivityResult, error) {
	if a.Date.IsZero() {
		a.Date = s.now()
	}
	if err := s.tracker.LogActivity(ctx, a); err != nil {
		return ActivityResult{}, err
	}
	metrics.RecordActivityLogged()
	a.Date = domain.Day(a.Date)

	out := ActivityResult{Activity: a}
	rate, esc, err := s.tracker.WeeklyEscalation(ctx, a.PatientID)
	switch {
	case errors.Is(err, domain.ErrDataAbsent):
		return out, nil
	case err != nil:
		s.logger.Error("weekly adherence check failed", zap.String("patient_id", a.PatientID), zap.Error(err))
		return out, nil
	}
	out.AdherenceRate = &rate
	out.Escalation = esc
	if esc != nil {
		metrics.RecordEscalation(esc.Flag)
	}
	return out, nil
}

// Adherence scores [start, end]. Zero times default to the last seven days.
func (s *Service) Adherence(ctx context.Context, patientID string, start, end time.Time) (domain.AdherenceScore, error) {
	if end.IsZero() {
		end = s.now()
	}
	if start.IsZero() {
		start = domain.Day(end).AddDate(0, 0, -6)
	}
	return s.tracker.ComputeAdherence(ctx, patientID, start, end)
}

func (s *Service) Streak(ctx context.Context, patientID string) (int, error) {
	return s.tracker.CurrentStreak(ctx, patientID)
}

// DropoutRisk predicts over the last days days; zero means the default window.
func (s *Service) DropoutRisk(ctx context.Context, patientID string, days int) (domain.DropoutPrediction, error) {
	if days == 0 {
		days = adherence.DefaultRiskWindowDays
	}
	return s.tracker.PredictDropoutRisk(ctx, patientID, days)
}
