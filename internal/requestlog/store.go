package requestlog

import (
	"context"

	"github.com/eleven-am/inference-server/internal/shared"
	"gorm.io/gorm"
)

// Store persists request accounting rows. Constructed with a nil db it
// degrades to a no-op, which is how the server runs without DATABASE_DSN.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	if s == nil {
		return nil
	}
	return s.db.AutoMigrate(&Record{})
}

func (s *Store) Record(ctx context.Context, rec *Record) error {
	if s == nil {
		return nil
	}
	if rec.ID == "" {
		rec.ID = shared.NewID("req_")
	}
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	var records []Record
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	if s == nil {
		return 0, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&Record{}).Count(&count).Error
	return count, err
}
