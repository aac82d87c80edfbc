package outbox

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type entryModel struct {
	OutboxID    string     `gorm:"column:outbox_id;primaryKey"`
	TenantID    string     `gorm:"column:tenant_id;index"`
	EventID     string     `gorm:"column:event_id;uniqueIndex"`
	EventType   string     `gorm:"column:event_type"`
	RoutingKey  string     `gorm:"column:routing_key"`
	Envelope    []byte     `gorm:"column:envelope"`
	Status      string     `gorm:"column:status;index:idx_outbox_due"`
	RetryCount  int        `gorm:"column:retry_count"`
	MaxRetries  int        `gorm:"column:max_retries"`
	LastError   string     `gorm:"column:last_error"`
	ScheduledAt time.Time  `gorm:"column:scheduled_at;index:idx_outbox_due"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (entryModel) TableName() string { return "event_outbox" }

func modelFromEntry(e Entry) entryModel {
	return entryModel{
		OutboxID:    e.ID,
		TenantID:    e.TenantID,
		EventID:     e.EventID,
		EventType:   e.EventType,
		RoutingKey:  e.RoutingKey,
		Envelope:    e.Envelope,
		Status:      string(e.Status),
		RetryCount:  e.RetryCount,
		MaxRetries:  e.MaxRetries,
		LastError:   e.LastError,
		ScheduledAt: e.ScheduledAt.UTC(),
		CreatedAt:   e.CreatedAt.UTC(),
		PublishedAt: e.PublishedAt,
	}
}

func (m entryModel) toEntry() Entry {
	return Entry{
		ID:          m.OutboxID,
		TenantID:    m.TenantID,
		EventID:     m.EventID,
		EventType:   m.EventType,
		RoutingKey:  m.RoutingKey,
		Envelope:    m.Envelope,
		Status:      Status(m.Status),
		RetryCount:  m.RetryCount,
		MaxRetries:  m.MaxRetries,
		LastError:   m.LastError,
		ScheduledAt: m.ScheduledAt,
		CreatedAt:   m.CreatedAt,
		PublishedAt: m.PublishedAt,
	}
}

// GormStore persists outbox rows in PostgreSQL. MaxRetries, when positive,
// overrides the per-row retry limit recorded at enqueue time.
type GormStore struct {
	db *gorm.DB

	MaxRetries int
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// EnqueueTx inserts an entry on the caller's transaction so the outbox row
// commits or aborts together with the business rows.
func EnqueueTx(tx *gorm.DB, entry Entry) error {
	row := modelFromEntry(entry)
	return tx.Create(&row).Error
}

func (s *GormStore) Enqueue(ctx context.Context, entry Entry) error {
	return EnqueueTx(s.db.WithContext(ctx), entry)
}

// ClaimPending reads due PENDING rows oldest first under FOR UPDATE SKIP
// LOCKED and leases them by pushing scheduled_at past ClaimLease before the
// claim transaction commits. The row lock keeps concurrent replicas off the
// same rows during the claim; the lease keeps them off until the claimer
// marks the row published or failed, or crashes and the lease runs out.
func (s *GormStore) ClaimPending(ctx context.Context, limit int, now time.Time) ([]Entry, error) {
	var rows []entryModel
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND scheduled_at <= ?", string(StatusPending), now.UTC()).
			Order("created_at ASC").
			Limit(limit).
			Find(&rows).
			Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		ids := make([]string, 0, len(rows))
		for _, row := range rows {
			ids = append(ids, row.OutboxID)
		}
		return tx.Model(&entryModel{}).
			Where("outbox_id IN ?", ids).
			Update("scheduled_at", now.UTC().Add(ClaimLease)).
			Error
	})
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toEntry())
	}
	return entries, nil
}

func (s *GormStore) MarkPublished(ctx context.Context, id string, at time.Time) error {
	at = at.UTC()
	result := s.db.WithContext(ctx).
		Model(&entryModel{}).
		Where("outbox_id = ?", id).
		Updates(map[string]any{
			"status":       string(StatusPublished),
			"published_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (s *GormStore) MarkFailed(ctx context.Context, id string, cause string, now time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row entryModel
		if err := tx.Where("outbox_id = ?", id).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEntryNotFound
			}
			return err
		}
		entry := row.toEntry()
		if s.MaxRetries > 0 {
			entry.MaxRetries = s.MaxRetries
		}
		next := modelFromEntry(ApplyFailure(entry, cause, now))
		return tx.Model(&entryModel{}).
			Where("outbox_id = ?", id).
			Updates(map[string]any{
				"status":       next.Status,
				"retry_count":  next.RetryCount,
				"last_error":   next.LastError,
				"scheduled_at": next.ScheduledAt,
			}).Error
	})
}

func (s *GormStore) Requeue(ctx context.Context, id string, now time.Time) error {
	result := s.db.WithContext(ctx).
		Model(&entryModel{}).
		Where("outbox_id = ?", id).
		Updates(map[string]any{
			"status":       string(StatusPending),
			"retry_count":  0,
			"last_error":   "",
			"scheduled_at": now.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (s *GormStore) GC(ctx context.Context, publishedBefore time.Time) (int, error) {
	result := s.db.WithContext(ctx).
		Where("status = ? AND published_at < ?", string(StatusPublished), publishedBefore.UTC()).
		Delete(&entryModel{})
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}

func (s *GormStore) PendingCount(ctx context.Context) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&entryModel{}).
		Where("status = ?", string(StatusPending)).
		Count(&count).
		Error
	return int(count), err
}

// Models lists the gorm models this package owns, for schema migration.
func Models() []any {
	return []any{&entryModel{}}
}
