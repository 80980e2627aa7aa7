package models

import (
	"time"
)

// DashboardAnalytics is a derived summary of post counts. Persisted rows are
// historical snapshots and are never updated.
type DashboardAnalytics struct {
	ID             uint      `gorm:"primaryKey" json:"id,omitempty"`
	TotalPosts     int64     `gorm:"not null" json:"totalPosts"`   // PUBLISHED
	TotalDrafts    int64     `gorm:"not null" json:"totalDrafts"`  // DRAFT
	TotalReviews   int64     `gorm:"not null" json:"totalReviews"` // REVIEWED
	RecentActivity string    `json:"recentActivity"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`
}

func (DashboardAnalytics) TableName() string {
	return "dashboard_analytics"
}
