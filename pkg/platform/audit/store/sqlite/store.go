package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	audit "romportal/pkg/platform/audit"
	txcontext "romportal/pkg/platform/tx"
)

type outboxRow struct {
	ID          string     `gorm:"primaryKey;size:36"`
	Action      string     `gorm:"not null"`
	Payload     []byte     `gorm:"not null"`
	CreatedAt   time.Time  `gorm:"not null;index"`
	PublishedAt *time.Time `gorm:"index"`
}

func (outboxRow) TableName() string { return "audit_outbox" }

// Store implements audit.Store on SQLite through gorm.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the outbox table.
func (s *Store) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&outboxRow{})
}

func (s *Store) Append(ctx context.Context, entry audit.Entry) error {
	row := outboxRow{
		ID:        entry.ID.String(),
		Action:    string(entry.Action),
		Payload:   entry.Payload,
		CreatedAt: entry.CreatedAt,
	}
	if err := txcontext.Gorm(ctx, s.db).Create(&row).Error; err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

func (s *Store) Pending(ctx context.Context, limit int) ([]audit.Entry, error) {
	var rows []outboxRow
	err := s.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query pending outbox entries: %w", err)
	}
	entries := make([]audit.Entry, 0, len(rows))
	for _, r := range rows {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("parse outbox id %q: %w", r.ID, err)
		}
		entries = append(entries, audit.Entry{
			ID:        id,
			Action:    audit.Action(r.Action),
			Payload:   r.Payload,
			CreatedAt: r.CreatedAt,
		})
	}
	return entries, nil
}

func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	err := s.db.WithContext(ctx).
		Model(&outboxRow{}).
		Where("id IN ?", raw).
		Update("published_at", at).Error
	if err != nil {
		return fmt.Errorf("mark outbox entries published: %w", err)
	}
	return nil
}
