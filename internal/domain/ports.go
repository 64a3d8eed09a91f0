package domain

import (
	"context"
	"time"
)

type ActivityStore interface {
	// UpsertActivity replaces any existing row for (PatientID, Date).
	UpsertActivity(ctx context.Context, a DailyActivity) error
	// Activities returns rows with from <= Date <= to in ascending date order.
	Activities(ctx context.Context, patientID string, from, to time.Time) ([]DailyActivity, error)
	// RecentActivities returns all rows for the patient, newest first.
	RecentActivities(ctx context.Context, patientID string) ([]DailyActivity, error)
}

type AssessmentStore interface {
	SaveAssessment(ctx context.Context, rec AssessmentRecord) error
	// History returns the patient's assessments, newest first.
	History(ctx context.Context, patientID string) ([]AssessmentRecord, error)
}

type Store interface {
	ActivityStore
	AssessmentStore
	Ping(ctx context.Context) error
}

type NotificationQueue interface {
	Schedule(ctx context.Context, n []Notification) error
	Pending(ctx context.Context, patientID string, now time.Time) ([]Notification, error)
}

// TextRecognizer is the OCR engine: image bytes in, ordered text lines out.
type TextRecognizer interface {
	Recognize(ctx context.Context, filename string, image []byte) ([]string, error)
}

// Classifier is an optional statistical risk model.
type Classifier interface {
	Predict(ctx context.Context, features []float64) (label string, confidence float64, err error)
}
