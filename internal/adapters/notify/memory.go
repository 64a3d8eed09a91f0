package notify

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skufu/lipidcare/internal/domain"
)

// MemoryQueue is the in-process queue used when redis is disabled.
type MemoryQueue struct {
	mu      sync.Mutex
	pending map[string][]domain.Notification
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{pending: map[string][]domain.Notification{}}
}

func (q *MemoryQueue) Schedule(ctx context.Context, ns []domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, n := range ns {
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		q.pending[n.PatientID] = append(q.pending[n.PatientID], n)
	}
	return nil
}

func (q *MemoryQueue) Pending(ctx context.Context, patientID string, now time.Time) ([]domain.Notification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	var due, later []domain.Notification
	for _, n := range q.pending[patientID] {
		if n.Due.After(now) {
			later = append(later, n)
		} else {
			due = append(due, n)
		}
	}
	q.pending[patientID] = later

	sort.SliceStable(due, func(i, j int) bool { return due[i].Due.Before(due[j].Due) })
	if due == nil {
		due = []domain.Notification{}
	}
	return due, nil
}

var _ domain.NotificationQueue = (*MemoryQueue)(nil)
