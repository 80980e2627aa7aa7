package store

import (
	"context"
	"errors"
	"strings"

	"contentdesk/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostStore translates post operations into table reads and writes. It
// enforces no business rules.
type PostStore interface {
	Save(ctx context.Context, post *models.Post) error
	UpdateContent(ctx context.Context, id uint, title, content, author string) error
	UpdateStatus(ctx context.Context, id uint, status models.PostStatus) error
	FindByID(ctx context.Context, id uint) (*models.Post, error)
	FindByStatus(ctx context.Context, status models.PostStatus) ([]models.Post, error)
	FindByAuthor(ctx context.Context, author string) ([]models.Post, error)
	FindByTitleContains(ctx context.Context, substr string, caseInsensitive bool) ([]models.Post, error)
	FindAllDrafts(ctx context.Context) ([]models.Post, error)
	FindAllReviewed(ctx context.Context) ([]models.Post, error)
	FindAllPublished(ctx context.Context) ([]models.Post, error)
	CountByStatus(ctx context.Context, status models.PostStatus) (int64, error)
	DeleteByID(ctx context.Context, id uint) error
	IncrementLikes(ctx context.Context, id uint) error
	AppendComment(ctx context.Context, id uint, body string) error
	AppendFeedback(ctx context.Context, id uint, body string) error
	Ping(ctx context.Context) error
}

type GormPostStore struct {
	db *gorm.DB
}

func NewPostStore(db *gorm.DB) *GormPostStore {
	return &GormPostStore{db: db}
}

func byInsertion(tx *gorm.DB) *gorm.DB {
	return tx.Order("id ASC")
}

func (s *GormPostStore) withChildren(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("CommentEntries", byInsertion).
		Preload("FeedbackEntries", byInsertion)
}

// Save inserts the post when it has no id yet. Otherwise it writes title,
// content, status and author of the existing row and returns ErrNoRows if the
// row is gone; it never re-inserts a deleted post. Likes and child rows are
// only written through their dedicated atomic operations.
func (s *GormPostStore) Save(ctx context.Context, post *models.Post) error {
	if post.ID == 0 {
		return wrap("create post", s.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error)
	}
	return s.update(ctx, "save post", post.ID, map[string]interface{}{
		"title":   post.Title,
		"content": post.Content,
		"status":  post.Status,
		"author":  post.Author,
	})
}

// UpdateContent rewrites the editable fields of one post.
func (s *GormPostStore) UpdateContent(ctx context.Context, id uint, title, content, author string) error {
	return s.update(ctx, "update post", id, map[string]interface{}{
		"title":   title,
		"content": content,
		"author":  author,
	})
}

func (s *GormPostStore) UpdateStatus(ctx context.Context, id uint, status models.PostStatus) error {
	return s.update(ctx, "update status", id, map[string]interface{}{"status": status})
}

// update writes only the given columns (plus updated_at) of an existing row.
func (s *GormPostStore) update(ctx context.Context, op string, id uint, values map[string]interface{}) error {
	res := s.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return wrap(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNoRows
	}
	return nil
}

// FindByID returns nil without error when the post does not exist.
func (s *GormPostStore) FindByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.withChildren(ctx).First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("find post", err)
	}
	return &post, nil
}

func (s *GormPostStore) find(ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB) ([]models.Post, error) {
	posts := make([]models.Post, 0)
	if err := scope(s.withChildren(ctx)).Find(&posts).Error; err != nil {
		return nil, wrap(op, err)
	}
	return posts, nil
}

func (s *GormPostStore) FindByStatus(ctx context.Context, status models.PostStatus) ([]models.Post, error) {
	return s.find(ctx, "find posts by status", func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status = ?", status).Order("id ASC")
	})
}

func (s *GormPostStore) FindByAuthor(ctx context.Context, author string) ([]models.Post, error) {
	return s.find(ctx, "find posts by author", func(tx *gorm.DB) *gorm.DB {
		return tx.Where("author = ?", author).Order("id ASC")
	})
}

// FindByTitleContains matches substr literally; LIKE wildcards in substr are escaped.
func (s *GormPostStore) FindByTitleContains(ctx context.Context, substr string, caseInsensitive bool) ([]models.Post, error) {
	pattern := "%" + escapeLike(substr) + "%"
	return s.find(ctx, "search posts", func(tx *gorm.DB) *gorm.DB {
		if caseInsensitive {
			tx = tx.Where(`LOWER(title) LIKE LOWER(?) ESCAPE '\'`, pattern)
		} else {
			tx = tx.Where(`title LIKE ? ESCAPE '\'`, pattern)
		}
		return tx.Order("id ASC")
	})
}

func (s *GormPostStore) FindAllDrafts(ctx context.Context) ([]models.Post, error) {
	return s.find(ctx, "list drafts", func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status = ?", models.StatusDraft).Order("updated_at DESC, id DESC")
	})
}

func (s *GormPostStore) FindAllReviewed(ctx context.Context) ([]models.Post, error) {
	return s.find(ctx, "list reviewed", func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status = ?", models.StatusReviewed).Order("updated_at DESC, id DESC")
	})
}

func (s *GormPostStore) FindAllPublished(ctx context.Context) ([]models.Post, error) {
	return s.find(ctx, "list published", func(tx *gorm.DB) *gorm.DB {
		return tx.Where("status = ?", models.StatusPublished).Order("created_at DESC, id DESC")
	})
}

func (s *GormPostStore) CountByStatus(ctx context.Context, status models.PostStatus) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Post{}).Where("status = ?", status).Count(&count).Error
	return count, wrap("count posts", err)
}

// DeleteByID hard-deletes the post and its child rows. It returns ErrNoRows
// when the post does not exist.
func (s *GormPostStore) DeleteByID(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.PostComment{}).Error; err != nil {
			return wrap("delete comments", err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostFeedback{}).Error; err != nil {
			return wrap("delete feedback", err)
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return wrap("delete post", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNoRows
		}
		return nil
	})
	return err
}

// IncrementLikes bumps the counter in a single statement so concurrent likes
// are never lost.
func (s *GormPostStore) IncrementLikes(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		Update("likes", gorm.Expr("likes + ?", 1))
	if res.Error != nil {
		return wrap("like post", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNoRows
	}
	return nil
}

func (s *GormPostStore) AppendComment(ctx context.Context, id uint, body string) error {
	return s.appendChild(ctx, "append comment", id, &models.PostComment{PostID: id, Body: body})
}

func (s *GormPostStore) AppendFeedback(ctx context.Context, id uint, body string) error {
	return s.appendChild(ctx, "append feedback", id, &models.PostFeedback{PostID: id, Body: body})
}

// appendChild touches the parent's updated_at and inserts the child row in one
// transaction. Insertion order is the primary key order.
func (s *GormPostStore) appendChild(ctx context.Context, op string, id uint, child interface{}) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).Where("id = ?", id).Update("updated_at", tx.NowFunc())
		if res.Error != nil {
			return wrap(op, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNoRows
		}
		return wrap(op, tx.Create(child).Error)
	})
}

func (s *GormPostStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return wrap("ping", err)
	}
	return wrap("ping", sqlDB.PingContext(ctx))
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
