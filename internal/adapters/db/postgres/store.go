// Package postgres implements domain.Store on PostgreSQL with pgx.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Skufu/lipidcare/internal/domain"
)

// Connect opens a pool and verifies it with a bounded ping.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return pool, nil
}

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// UpsertActivity relies on the (patient_id, activity_date) primary key: a
// second write for the same day replaces every column of the first.
func (s *Store) UpsertActivity(ctx context.Context, a domain.DailyActivity) error {
	query := `
		INSERT INTO daily_activities (
			patient_id, activity_date,
			diet_followed, exercise_completed, medication_taken, water_intake_met,
			sleep_quality, stress_level, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (patient_id, activity_date) DO UPDATE SET
			diet_followed = EXCLUDED.diet_followed,
			exercise_completed = EXCLUDED.exercise_completed,
			medication_taken = EXCLUDED.medication_taken,
			water_intake_met = EXCLUDED.water_intake_met,
			sleep_quality = EXCLUDED.sleep_quality,
			stress_level = EXCLUDED.stress_level,
			notes = EXCLUDED.notes,
			updated_at = now()`

	_, err := s.pool.Exec(ctx, query,
		a.PatientID, domain.Day(a.Date),
		a.DietFollowed, a.ExerciseCompleted, a.MedicationTaken, a.WaterIntakeMet,
		a.SleepQuality, a.StressLevel, a.Notes,
	)
	if err != nil {
		return fmt.Errorf("upsert daily activity: %w", err)
	}
	return nil
}

const activityColumns = `
	patient_id, activity_date,
	diet_followed, exercise_completed, medication_taken, water_intake_met,
	sleep_quality, stress_level, notes`

func (s *Store) Activities(ctx context.Context, patientID string, from, to time.Time) ([]domain.DailyActivity, error) {
	query := `SELECT ` + activityColumns + `
		FROM daily_activities
		WHERE patient_id = $1 AND activity_date BETWEEN $2 AND $3
		ORDER BY activity_date ASC`

	rows, err := s.pool.Query(ctx, query, patientID, domain.Day(from), domain.Day(to))
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	return collectActivities(rows)
}

func (s *Store) RecentActivities(ctx context.Context, patientID string) ([]domain.DailyActivity, error) {
	query := `SELECT ` + activityColumns + `
		FROM daily_activities
		WHERE patient_id = $1
		ORDER BY activity_date DESC`

	rows, err := s.pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("query recent activities: %w", err)
	}
	return collectActivities(rows)
}

func collectActivities(rows pgx.Rows) ([]domain.DailyActivity, error) {
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.DailyActivity, error) {
		var a domain.DailyActivity
		err := row.Scan(
			&a.PatientID, &a.Date,
			&a.DietFollowed, &a.ExerciseCompleted, &a.MedicationTaken, &a.WaterIntakeMet,
			&a.SleepQuality, &a.StressLevel, &a.Notes,
		)
		a.Date = domain.Day(a.Date)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan activities: %w", err)
	}
	return out, nil
}

// SaveAssessment records the patient and the assessment in one transaction.
func (s *Store) SaveAssessment(ctx context.Context, rec domain.AssessmentRecord) error {
	payload, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO patients (patient_id, patient_name, age, sex)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, 0), NULLIF($4, ''))
		ON CONFLICT (patient_id) DO UPDATE SET
			patient_name = COALESCE(EXCLUDED.patient_name, patients.patient_name),
			age = COALESCE(EXCLUDED.age, patients.age),
			sex = COALESCE(EXCLUDED.sex, patients.sex),
			updated_at = now()`,
		rec.PatientID, rec.Profile.Name, rec.Profile.Age, string(rec.Profile.Sex),
	)
	if err != nil {
		return fmt.Errorf("upsert patient: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO assessments (
			id, patient_id, assessed_at, risk_level, risk_score, source,
			lipid_values, profile, risk_analysis, management_type, lifestyle_plan, extracted_data
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.ID, rec.PatientID, rec.Timestamp.UTC(),
		rec.Assessment.Level.String(), rec.Assessment.Score, rec.Assessment.Source,
		payload.panel, payload.profile, payload.assessment, payload.management, payload.plan, payload.extracted,
	)
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit assessment: %w", err)
	}
	return nil
}

func (s *Store) History(ctx context.Context, patientID string) ([]domain.AssessmentRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, patient_id, assessed_at,
			lipid_values, profile, risk_analysis, management_type, lifestyle_plan, extracted_data
		FROM assessments
		WHERE patient_id = $1
		ORDER BY assessed_at DESC`, patientID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.AssessmentRecord, error) {
		var (
			rec domain.AssessmentRecord
			p   recordPayload
		)
		if err := row.Scan(&rec.ID, &rec.PatientID, &rec.Timestamp,
			&p.panel, &p.profile, &p.assessment, &p.management, &p.plan, &p.extracted); err != nil {
			return rec, err
		}
		rec.Timestamp = rec.Timestamp.UTC()
		return rec, p.decode(&rec)
	})
	if err != nil {
		return nil, fmt.Errorf("scan history: %w", err)
	}
	return out, nil
}

// recordPayload holds the JSONB columns of an assessment row.
type recordPayload struct {
	panel, profile, assessment, management, plan, extracted []byte
}

func encodeRecord(rec domain.AssessmentRecord) (recordPayload, error) {
	var (
		p   recordPayload
		err error
	)
	fields := []struct {
		dst *[]byte
		v   any
	}{
		{&p.panel, rec.Panel},
		{&p.profile, rec.Profile},
		{&p.assessment, rec.Assessment},
		{&p.management, rec.Management},
		{&p.plan, rec.Plan},
	}
	for _, f := range fields {
		if *f.dst, err = json.Marshal(f.v); err != nil {
			return p, fmt.Errorf("encode assessment: %w", err)
		}
	}
	if rec.Extracted != nil {
		if p.extracted, err = json.Marshal(rec.Extracted); err != nil {
			return p, fmt.Errorf("encode extracted data: %w", err)
		}
	}
	return p, nil
}

func (p recordPayload) decode(rec *domain.AssessmentRecord) error {
	fields := []struct {
		src []byte
		dst any
	}{
		{p.panel, &rec.Panel},
		{p.profile, &rec.Profile},
		{p.assessment, &rec.Assessment},
		{p.management, &rec.Management},
		{p.plan, &rec.Plan},
	}
	for _, f := range fields {
		if err := json.Unmarshal(f.src, f.dst); err != nil {
			return fmt.Errorf("decode assessment: %w", err)
		}
	}
	if len(p.extracted) > 0 {
		rec.Extracted = &domain.ExtractedReport{}
		if err := json.Unmarshal(p.extracted, rec.Extracted); err != nil {
			return fmt.Errorf("decode extracted data: %w", err)
		}
	}
	return nil
}

var _ domain.Store = (*Store)(nil)
