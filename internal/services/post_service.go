package services

import (
	"context"
	"errors"
	"strings"

	"contentdesk/internal/models"
	"contentdesk/internal/store"

	"github.com/rs/zerolog/log"
)

// PostService owns the post state machine. The store validates nothing, so
// every invariant is checked here.
//
// Lookups of a missing post return (nil, nil); only Delete reports ErrNotFound.
type PostService struct {
	store store.PostStore
}

func NewPostService(s store.PostStore) *PostService {
	return &PostService{store: s}
}

func requireText(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return &ValidationError{Field: field, Message: "must not be empty"}
	}
	return nil
}

// Create stores a new post. Posts always start as drafts with no likes.
func (s *PostService) Create(ctx context.Context, title, content, author string) (*models.Post, error) {
	if err := requireText("title", title); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:   title,
		Content: content,
		Author:  author,
		Status:  models.StatusDraft,
	}
	if err := s.store.Save(ctx, post); err != nil {
		return nil, err
	}
	log.Debug().Uint("post_id", post.ID).Msg("post created")
	return post, nil
}

func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	return s.store.FindByID(ctx, id)
}

// Update overwrites title, content and author. Status, likes, comments and
// feedback are left as they are.
func (s *PostService) Update(ctx context.Context, id uint, title, content, author string) (*models.Post, error) {
	if err := requireText("title", title); err != nil {
		return nil, err
	}

	return s.mutate(ctx, id, func(ctx context.Context, id uint) error {
		return s.store.UpdateContent(ctx, id, title, content, author)
	})
}

// Publish moves the post to PUBLISHED from any status.
func (s *PostService) Publish(ctx context.Context, id uint) (*models.Post, error) {
	return s.transition(ctx, id, models.StatusPublished)
}

// SubmitForReview moves the post to REVIEWED from any status.
func (s *PostService) SubmitForReview(ctx context.Context, id uint) (*models.Post, error) {
	return s.transition(ctx, id, models.StatusReviewed)
}

func (s *PostService) transition(ctx context.Context, id uint, to models.PostStatus) (*models.Post, error) {
	post, err := s.mutate(ctx, id, func(ctx context.Context, id uint) error {
		return s.store.UpdateStatus(ctx, id, to)
	})
	if err != nil || post == nil {
		return nil, err
	}
	log.Debug().Uint("post_id", id).Str("status", string(to)).Msg("post status changed")
	return post, nil
}

// Like adds exactly one like.
func (s *PostService) Like(ctx context.Context, id uint) (*models.Post, error) {
	return s.mutate(ctx, id, s.store.IncrementLikes)
}

// AddComment appends text to the post's comments.
func (s *PostService) AddComment(ctx context.Context, id uint, text string) (*models.Post, error) {
	if err := requireText("comment", text); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(ctx context.Context, id uint) error {
		return s.store.AppendComment(ctx, id, text)
	})
}

// AddFeedback appends text to the post's feedback.
func (s *PostService) AddFeedback(ctx context.Context, id uint, text string) (*models.Post, error) {
	if err := requireText("feedback", text); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(ctx context.Context, id uint) error {
		return s.store.AppendFeedback(ctx, id, text)
	})
}

// mutate runs a column-scoped store write and reads the post back. Every
// write on an existing post goes through here, so concurrent likes, edits and
// transitions never overwrite each other's columns.
func (s *PostService) mutate(ctx context.Context, id uint, write func(context.Context, uint) error) (*models.Post, error) {
	if err := write(ctx, id); err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s.store.FindByID(ctx, id)
}

// Delete permanently removes the post.
func (s *PostService) Delete(ctx context.Context, id uint) error {
	err := s.store.DeleteByID(ctx, id)
	if errors.Is(err, store.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Search matches keyword against titles, ignoring case. An empty keyword
// matches every post.
func (s *PostService) Search(ctx context.Context, keyword string) ([]models.Post, error) {
	return s.store.FindByTitleContains(ctx, keyword, true)
}

func (s *PostService) ListPublished(ctx context.Context) ([]models.Post, error) {
	return s.store.FindAllPublished(ctx)
}

func (s *PostService) ListDrafts(ctx context.Context) ([]models.Post, error) {
	return s.store.FindAllDrafts(ctx)
}

func (s *PostService) ListUnderReview(ctx context.Context) ([]models.Post, error) {
	return s.store.FindAllReviewed(ctx)
}

func (s *PostService) ByAuthor(ctx context.Context, author string) ([]models.Post, error) {
	return s.store.FindByAuthor(ctx, author)
}

// ByStatus lists posts in the named status; unknown names are a ValidationError.
func (s *PostService) ByStatus(ctx context.Context, status string) ([]models.Post, error) {
	st, ok := models.ParseStatus(strings.ToUpper(status))
	if !ok {
		return nil, &ValidationError{Field: "status", Message: "is not a known status"}
	}
	return s.store.FindByStatus(ctx, st)
}
