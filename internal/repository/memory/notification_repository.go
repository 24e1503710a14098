package memory

import (
	"context"
	"sync"
	"time"

	"eventhub-accounting-be/internal/repository/contract"
)

type NotificationRepository struct {
	mu      sync.Mutex
	records []contract.NotificationRecord
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) Create(ctx context.Context, record *contract.NotificationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	r.records = append(r.records, *record)
	return nil
}

func (r *NotificationRepository) Records() []contract.NotificationRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]contract.NotificationRecord(nil), r.records...)
}
