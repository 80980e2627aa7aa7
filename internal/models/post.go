package models

import (
	"encoding/json"
	"time"
)

// PostStatus is the lifecycle state of a post.
type PostStatus string

const (
	StatusDraft     PostStatus = "DRAFT"
	StatusPublished PostStatus = "PUBLISHED"
	StatusReviewed  PostStatus = "REVIEWED"
	// StatusArchived exists in the schema but no operation moves a post into it.
	StatusArchived PostStatus = "ARCHIVED"
)

// ParseStatus returns the status named by s, or false if s is not a known status.
func ParseStatus(s string) (PostStatus, bool) {
	switch st := PostStatus(s); st {
	case StatusDraft, StatusPublished, StatusReviewed, StatusArchived:
		return st, true
	}
	return "", false
}

type Post struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Title     string     `gorm:"not null" json:"title"`
	Content   string     `gorm:"type:text" json:"content"`
	Status    PostStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	CreatedAt time.Time  `gorm:"not null;<-:create" json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Author    string     `gorm:"index" json:"author"`
	Likes     int        `gorm:"not null;default:0" json:"likes"`

	// append-only child rows, read back in id order
	CommentEntries  []PostComment  `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	FeedbackEntries []PostFeedback `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// Comments returns the comment bodies in insertion order.
func (p *Post) Comments() []string {
	out := make([]string, 0, len(p.CommentEntries))
	for _, c := range p.CommentEntries {
		out = append(out, c.Body)
	}
	return out
}

// Feedback returns the feedback bodies in insertion order.
func (p *Post) Feedback() []string {
	out := make([]string, 0, len(p.FeedbackEntries))
	for _, f := range p.FeedbackEntries {
		out = append(out, f.Body)
	}
	return out
}

// MarshalJSON flattens the child rows into plain string sequences.
func (p Post) MarshalJSON() ([]byte, error) {
	type post Post
	return json.Marshal(struct {
		post
		Comments []string `json:"comments"`
		Feedback []string `json:"feedback"`
	}{
		post:     post(p),
		Comments: p.Comments(),
		Feedback: p.Feedback(),
	})
}

type PostComment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type PostFeedback struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the feedback table name singular.
func (PostFeedback) TableName() string {
	return "post_feedback"
}
