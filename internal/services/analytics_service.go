package services

import (
	"context"
	"time"

	"contentdesk/internal/models"
	"contentdesk/internal/store"

	"github.com/rs/zerolog/log"
)

const recentActivityLabel = "Recent activity updated"

// AnalyticsService computes post counts per status. Nothing is cached; the
// three counts are separate queries and may disagree under concurrent writes.
type AnalyticsService struct {
	posts     store.PostStore
	snapshots store.AnalyticsStore
	now       func() time.Time
}

func NewAnalyticsService(posts store.PostStore, snapshots store.AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{posts: posts, snapshots: snapshots, now: time.Now}
}

// ComputeCurrent returns a fresh, unpersisted summary.
func (s *AnalyticsService) ComputeCurrent(ctx context.Context) (*models.DashboardAnalytics, error) {
	published, err := s.posts.CountByStatus(ctx, models.StatusPublished)
	if err != nil {
		return nil, err
	}
	drafts, err := s.posts.CountByStatus(ctx, models.StatusDraft)
	if err != nil {
		return nil, err
	}
	reviewed, err := s.posts.CountByStatus(ctx, models.StatusReviewed)
	if err != nil {
		return nil, err
	}

	return &models.DashboardAnalytics{
		TotalPosts:     published,
		TotalDrafts:    drafts,
		TotalReviews:   reviewed,
		RecentActivity: recentActivityLabel,
		CreatedAt:      s.now(),
	}, nil
}

// Snapshot computes the current summary and stores it as a new row.
func (s *AnalyticsService) Snapshot(ctx context.Context) (*models.DashboardAnalytics, error) {
	current, err := s.ComputeCurrent(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.snapshots.Insert(ctx, current); err != nil {
		return nil, err
	}
	log.Info().Uint("snapshot_id", current.ID).
		Int64("published", current.TotalPosts).
		Int64("drafts", current.TotalDrafts).
		Int64("reviewed", current.TotalReviews).
		Msg("analytics snapshot saved")
	return current, nil
}

// Latest returns the newest stored snapshot, or nil when none exists.
func (s *AnalyticsService) Latest(ctx context.Context) (*models.DashboardAnalytics, error) {
	return s.snapshots.Latest(ctx)
}
