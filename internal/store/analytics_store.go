package store

import (
	"context"
	"errors"
	"time"

	"contentdesk/internal/models"

	"gorm.io/gorm"
)

// AnalyticsStore persists immutable analytics snapshots.
type AnalyticsStore interface {
	Insert(ctx context.Context, snapshot *models.DashboardAnalytics) error
	Latest(ctx context.Context) (*models.DashboardAnalytics, error)
}

type GormAnalyticsStore struct {
	db *gorm.DB
}

func NewAnalyticsStore(db *gorm.DB) *GormAnalyticsStore {
	return &GormAnalyticsStore{db: db}
}

// Insert always creates a new row. The id and created_at are assigned here.
func (s *GormAnalyticsStore) Insert(ctx context.Context, snapshot *models.DashboardAnalytics) error {
	snapshot.ID = 0
	snapshot.CreatedAt = time.Time{}
	return wrap("insert snapshot", s.db.WithContext(ctx).Create(snapshot).Error)
}

// Latest returns the most recently created snapshot, or nil when none exists.
func (s *GormAnalyticsStore) Latest(ctx context.Context) (*models.DashboardAnalytics, error) {
	var snap models.DashboardAnalytics
	err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").First(&snap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("latest snapshot", err)
	}
	return &snap, nil
}
