package handlers

import (
	"context"
	"io"
	"net/http"

	"contentdesk/internal/models"
	"contentdesk/internal/services"
	"contentdesk/internal/utils"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	posts *services.PostService
}

func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// postRequest is the create/update body. Any status sent by the client is ignored.
type postRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
}

type textRequest struct {
	Text string `json:"text"`
}

func (h *PostHandler) renderList(c *gin.Context, posts []models.Post, err error) {
	if err != nil {
		RenderFailure(c, err)
		return
	}
	c.JSON(http.StatusOK, posts)
}

// renderPost answers 404 for a nil post.
func (h *PostHandler) renderPost(c *gin.Context, code int, post *models.Post, err error) {
	if err != nil {
		RenderFailure(c, err)
		return
	}
	if post == nil {
		RenderError(c, http.StatusNotFound, "post not found")
		return
	}
	c.JSON(code, post)
}

// ListPublished GET /api/posts
func (h *PostHandler) ListPublished(c *gin.Context) {
	posts, err := h.posts.ListPublished(c.Request.Context())
	h.renderList(c, posts, err)
}

// ListDrafts GET /api/posts/drafts
func (h *PostHandler) ListDrafts(c *gin.Context) {
	posts, err := h.posts.ListDrafts(c.Request.Context())
	h.renderList(c, posts, err)
}

// ListForReview GET /api/posts/review
func (h *PostHandler) ListForReview(c *gin.Context) {
	posts, err := h.posts.ListUnderReview(c.Request.Context())
	h.renderList(c, posts, err)
}

// Search GET /api/posts/search?keyword=
func (h *PostHandler) Search(c *gin.Context) {
	posts, err := h.posts.Search(c.Request.Context(), c.Query("keyword"))
	h.renderList(c, posts, err)
}

// ByAuthor GET /api/posts/by-author?author=
func (h *PostHandler) ByAuthor(c *gin.Context) {
	posts, err := h.posts.ByAuthor(c.Request.Context(), c.Query("author"))
	h.renderList(c, posts, err)
}

// ByStatus GET /api/posts/by-status?status=
func (h *PostHandler) ByStatus(c *gin.Context) {
	posts, err := h.posts.ByStatus(c.Request.Context(), c.Query("status"))
	h.renderList(c, posts, err)
}

// Detail GET /api/posts/:id
func (h *PostHandler) Detail(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	post, err := h.posts.Get(c.Request.Context(), id)
	h.renderPost(c, http.StatusOK, post, err)
}

// Create POST /api/posts/create
func (h *PostHandler) Create(c *gin.Context) {
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RenderError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	post, err := h.posts.Create(c.Request.Context(), req.Title, req.Content, req.Author)
	h.renderPost(c, http.StatusCreated, post, err)
}

// Update PUT /api/posts/:id
func (h *PostHandler) Update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req postRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RenderError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	post, err := h.posts.Update(c.Request.Context(), id, req.Title, req.Content, req.Author)
	h.renderPost(c, http.StatusOK, post, err)
}

// Publish PUT /api/posts/:id/publish
func (h *PostHandler) Publish(c *gin.Context) {
	h.byID(c, h.posts.Publish)
}

// SubmitForReview PUT /api/posts/:id/review
func (h *PostHandler) SubmitForReview(c *gin.Context) {
	h.byID(c, h.posts.SubmitForReview)
}

// Like PUT /api/posts/:id/like
func (h *PostHandler) Like(c *gin.Context) {
	h.byID(c, h.posts.Like)
}

func (h *PostHandler) byID(c *gin.Context, op func(context.Context, uint) (*models.Post, error)) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	post, err := op(c.Request.Context(), id)
	h.renderPost(c, http.StatusOK, post, err)
}

// AddComment POST /api/posts/:id/comment
func (h *PostHandler) AddComment(c *gin.Context) {
	h.appendText(c, h.posts.AddComment)
}

// AddFeedback POST /api/posts/:id/feedback
func (h *PostHandler) AddFeedback(c *gin.Context) {
	h.appendText(c, h.posts.AddFeedback)
}

func (h *PostHandler) appendText(c *gin.Context, op func(context.Context, uint, string) (*models.Post, error)) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	text, err := readText(c)
	if err != nil {
		RenderError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	post, err := op(c.Request.Context(), id, text)
	h.renderPost(c, http.StatusOK, post, err)
}

// readText accepts either a JSON {"text": ...} body or a raw text body. Both
// are stored exactly as sent.
func readText(c *gin.Context) (string, error) {
	if c.ContentType() == gin.MIMEJSON {
		var req textRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return "", err
		}
		return req.Text, nil
	}
	b, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Comments GET /api/posts/:id/comments
func (h *PostHandler) Comments(c *gin.Context) {
	h.withPost(c, func(p *models.Post) {
		c.JSON(http.StatusOK, p.Comments())
	})
}

// Feedback GET /api/posts/:id/feedback
func (h *PostHandler) Feedback(c *gin.Context) {
	h.withPost(c, func(p *models.Post) {
		c.JSON(http.StatusOK, p.Feedback())
	})
}

// Preview GET /api/posts/:id/preview renders the markdown content as HTML.
func (h *PostHandler) Preview(c *gin.Context) {
	h.withPost(c, func(p *models.Post) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(utils.RenderMarkdown(p.Content)))
	})
}

func (h *PostHandler) withPost(c *gin.Context, fn func(*models.Post)) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		RenderFailure(c, err)
		return
	}
	if post == nil {
		RenderError(c, http.StatusNotFound, "post not found")
		return
	}
	fn(post)
}

// Delete DELETE /api/posts/:id
func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), id); err != nil {
		RenderFailure(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
