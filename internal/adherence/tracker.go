package adherence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Skufu/lipidcare/internal/domain"
)

const (
	// DefaultRiskWindowDays is the lookback of PredictDropoutRisk.
	DefaultRiskWindowDays = 30
	escalationWindowDays  = 7
)

// Tracker reads and writes the activity log through a store. The store is
// responsible for per-patient serialisation.
type Tracker struct {
	store  domain.ActivityStore
	now    func() time.Time
	logger *zap.Logger
}

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

func NewTracker(store domain.ActivityStore, opts ...Option) *Tracker {
	t := &Tracker{store: store, now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) today() time.Time {
	return domain.Day(t.now().UTC())
}

// LogActivity upserts the record for its calendar day, replacing any record
// already logged for that day.
func (t *Tracker) LogActivity(ctx context.Context, a domain.DailyActivity) error {
	if err := a.Validate(); err != nil {
		return err
	}
	a.Date = domain.Day(a.Date)
	if err := t.store.UpsertActivity(ctx, a); err != nil {
		return fmt.Errorf("upsert activity: %w", err)
	}
	t.logger.Debug("activity logged",
		zap.String("patient_id", a.PatientID),
		zap.String("date", a.Date.Format(domain.DateLayout)),
		zap.Int("completed_axes", a.CompletedAxes()),
	)
	return nil
}

// ComputeAdherence scores the inclusive window [start, end].
func (t *Tracker) ComputeAdherence(ctx context.Context, patientID string, start, end time.Time) (domain.AdherenceScore, error) {
	start, end = domain.Day(start), domain.Day(end)
	if end.Before(start) {
		return domain.AdherenceScore{}, &domain.ValidationError{Field: "end_date", Reason: "must not be before start_date"}
	}
	records, err := t.store.Activities(ctx, patientID, start, end)
	if err != nil {
		return domain.AdherenceScore{}, fmt.Errorf("query activities: %w", err)
	}
	return Score(records, start, end)
}

func (t *Tracker) CurrentStreak(ctx context.Context, patientID string) (int, error) {
	records, err := t.store.RecentActivities(ctx, patientID)
	if err != nil {
		return 0, fmt.Errorf("query activities: %w", err)
	}
	return Streak(records), nil
}

// PredictDropoutRisk scores the last days days up to today. An empty window
// yields the unknown tier, not an error.
func (t *Tracker) PredictDropoutRisk(ctx context.Context, patientID string, days int) (domain.DropoutPrediction, error) {
	if days <= 0 {
		return domain.DropoutPrediction{}, &domain.ValidationError{Field: "days", Reason: "must be positive"}
	}
	today := t.today()
	score, err := t.ComputeAdherence(ctx, patientID, today.AddDate(0, 0, -days), today)
	if errors.Is(err, domain.ErrDataAbsent) {
		return DropoutRisk(nil, 0), nil
	}
	if err != nil {
		return domain.DropoutPrediction{}, err
	}
	streak, err := t.CurrentStreak(ctx, patientID)
	if err != nil {
		return domain.DropoutPrediction{}, err
	}
	return DropoutRisk(&score, streak), nil
}

// WeeklyEscalation checks the rolling seven-day adherence rate. It returns
// the rate, the escalation if one is due, and ErrDataAbsent for an empty week.
func (t *Tracker) WeeklyEscalation(ctx context.Context, patientID string) (float64, *domain.Escalation, error) {
	today := t.today()
	score, err := t.ComputeAdherence(ctx, patientID, today.AddDate(0, 0, -(escalationWindowDays-1)), today)
	if err != nil {
		return 0, nil, err
	}
	rate := score.Overall / 100
	esc := Escalate(rate)
	if esc != nil {
		t.logger.Info("adherence escalation",
			zap.String("patient_id", patientID),
			zap.String("flag", esc.Flag),
			zap.Float64("rate", rate),
		)
	}
	return rate, esc, nil
}
