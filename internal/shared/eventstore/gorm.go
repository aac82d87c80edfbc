package eventstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"wareflow/internal/shared/events"
)

type eventModel struct {
	EventID       string    `gorm:"column:event_id;primaryKey"`
	EventType     string    `gorm:"column:event_type;index"`
	TenantID      string    `gorm:"column:tenant_id;index"`
	CorrelationID string    `gorm:"column:correlation_id;index"`
	CausationID   string    `gorm:"column:causation_id"`
	OccurredAt    time.Time `gorm:"column:occurred_at"`
	Envelope      []byte    `gorm:"column:envelope"`
}

func (eventModel) TableName() string { return "event_store" }

type processedModel struct {
	EventID     string    `gorm:"column:event_id;primaryKey"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

func (processedModel) TableName() string { return "event_processed" }

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AppendTx appends on the caller's transaction; ON CONFLICT DO NOTHING keeps
// the append idempotent on event_id.
func AppendTx(tx *gorm.DB, env events.Envelope) (bool, error) {
	if err := env.Validate(); err != nil {
		return false, err
	}
	raw, err := events.Encode(env)
	if err != nil {
		return false, err
	}
	row := eventModel{
		EventID:       env.EventID,
		EventType:     env.EventType,
		TenantID:      env.TenantID,
		CorrelationID: env.CorrelationID,
		CausationID:   env.CausationID,
		OccurredAt:    env.OccurredAt.UTC(),
		Envelope:      raw,
	}
	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *GormStore) Append(ctx context.Context, env events.Envelope) (bool, error) {
	return AppendTx(s.db.WithContext(ctx), env)
}

func (s *GormStore) Get(ctx context.Context, eventID string) (events.Envelope, error) {
	var row eventModel
	err := s.db.WithContext(ctx).Where("event_id = ?", eventID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return events.Envelope{}, ErrEventNotFound
		}
		return events.Envelope{}, err
	}
	return events.Decode(row.Envelope)
}

func (s *GormStore) ListByCorrelation(ctx context.Context, correlationID string) ([]events.Envelope, error) {
	var rows []eventModel
	err := s.db.WithContext(ctx).
		Where("correlation_id = ?", correlationID).
		Order("occurred_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	out := make([]events.Envelope, 0, len(rows))
	for _, row := range rows {
		env, err := events.Decode(row.Envelope)
		if err != nil {
			return nil, err
		}
		out = append(out, env)
	}
	return out, nil
}

func (s *GormStore) Seen(ctx context.Context, eventID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&processedModel{}).
		Where("event_id = ?", eventID).
		Count(&count).
		Error
	return count > 0, err
}

func (s *GormStore) MarkProcessed(ctx context.Context, eventID string) error {
	row := processedModel{EventID: eventID, ProcessedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).
		Create(&row).
		Error
}

// Models lists the gorm models this package owns, for schema migration.
func Models() []any {
	return []any{&eventModel{}, &processedModel{}}
}
