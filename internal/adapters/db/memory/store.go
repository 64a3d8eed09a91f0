// Package memory is an in-process domain.Store used when no database is
// configured. Each patient has its own lock, so writes and reads for one
// patient are serialised while different patients proceed in parallel.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Skufu/lipidcare/internal/domain"
)

type patientLog struct {
	mu          sync.Mutex
	activities  map[time.Time]domain.DailyActivity
	assessments []domain.AssessmentRecord
}

type Store struct {
	mu       sync.Mutex
	patients map[string]*patientLog
}

func New() *Store {
	return &Store{patients: map[string]*patientLog{}}
}

// patient returns the log for id, creating it when create is set. A nil
// result means the patient has no data.
func (s *Store) patient(id string, create bool) *patientLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.patients[id]
	if !ok && create {
		p = &patientLog{activities: map[time.Time]domain.DailyActivity{}}
		s.patients[id] = p
	}
	return p
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) UpsertActivity(ctx context.Context, a domain.DailyActivity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := s.patient(a.PatientID, true)
	p.mu.Lock()
	defer p.mu.Unlock()
	a.Date = domain.Day(a.Date)
	p.activities[a.Date] = a
	return nil
}

func (s *Store) Activities(ctx context.Context, patientID string, from, to time.Time) ([]domain.DailyActivity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := s.patient(patientID, false)
	if p == nil {
		return nil, nil
	}
	from, to = domain.Day(from), domain.Day(to)

	p.mu.Lock()
	out := make([]domain.DailyActivity, 0, len(p.activities))
	for d, a := range p.activities {
		if !d.Before(from) && !d.After(to) {
			out = append(out, a)
		}
	}
	p.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) RecentActivities(ctx context.Context, patientID string) ([]domain.DailyActivity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := s.patient(patientID, false)
	if p == nil {
		return nil, nil
	}

	p.mu.Lock()
	out := make([]domain.DailyActivity, 0, len(p.activities))
	for _, a := range p.activities {
		out = append(out, a)
	}
	p.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *Store) SaveAssessment(ctx context.Context, rec domain.AssessmentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := s.patient(rec.PatientID, true)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.assessments = append(p.assessments, rec)
	return nil
}

func (s *Store) History(ctx context.Context, patientID string) ([]domain.AssessmentRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := s.patient(patientID, false)
	if p == nil {
		return nil, nil
	}

	p.mu.Lock()
	out := make([]domain.AssessmentRecord, len(p.assessments))
	copy(out, p.assessments)
	p.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

var _ domain.Store = (*Store)(nil)
