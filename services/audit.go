package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/LovationAdmin/wedding-api/models"
	"github.com/LovationAdmin/wedding-api/store"
)

// AuditWriter is anything an audit entry can be written through: the store
// itself or a transactional view of it.
type AuditWriter interface {
	CreateAuditLog(ctx context.Context, e *models.AuditLog) error
}

type AuditStore interface {
	AuditWriter
	QueryAuditLogs(ctx context.Context, q models.AuditQuery) ([]models.AuditLog, int, error)
}

// AuditListener receives entries once they are durably written
type AuditListener interface {
	AuditLogged(entry models.AuditLog)
}

type AuditService struct {
	store AuditStore
	now   func() time.Time

	mu       sync.RWMutex
	listener AuditListener
}

func NewAuditService(s AuditStore) *AuditService {
	return &AuditService{
		store: s,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuditService) SetListener(l AuditListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

// Log writes one entry and publishes it. A write failure is returned to the
// caller, never swallowed.
func (s *AuditService) Log(ctx context.Context, entry *models.AuditLog) error {
	if err := s.LogTx(ctx, s.store, entry); err != nil {
		return err
	}
	s.Notify(*entry)
	return nil
}

// LogTx writes an entry through w, usually a store transaction. The caller
// publishes it with Notify after commit.
func (s *AuditService) LogTx(ctx context.Context, w AuditWriter, entry *models.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now()
	}
	if err := w.CreateAuditLog(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log %s: %w", entry.Action, err)
	}
	return nil
}

func (s *AuditService) Notify(entries ...models.AuditLog) {
	s.mu.RLock()
	l := s.listener
	s.mu.RUnlock()
	if l == nil {
		return
	}
	for _, e := range entries {
		l.AuditLogged(e)
	}
}

func (s *AuditService) Query(ctx context.Context, q models.AuditQuery) (*models.AuditPage, error) {
	page, pageSize := store.NormalizePage(q.Page, q.PageSize, 50)
	q.Page, q.PageSize = page, pageSize

	items, total, err := s.store.QueryAuditLogs(ctx, q)
	if err != nil {
		log.WithError(err).Error("❌ Error querying audit logs")
		return nil, err
	}

	return &models.AuditPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

func totalPages(total, pageSize int) int {
	if total == 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
