package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"contentdesk/internal/db/dbtest"
	"contentdesk/internal/models"
	"contentdesk/internal/services"
	"contentdesk/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

type postBody struct {
	ID        uint     `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Status    string   `json:"status"`
	Author    string   `json:"author"`
	Likes     int      `json:"likes"`
	Comments  []string `json:"comments"`
	Feedback  []string `json:"feedback"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
}

type analyticsBody struct {
	ID             uint   `json:"id"`
	TotalPosts     int64  `json:"totalPosts"`
	TotalDrafts    int64  `json:"totalDrafts"`
	TotalReviews   int64  `json:"totalReviews"`
	RecentActivity string `json:"recentActivity"`
}

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb := dbtest.New(t)
	posts := store.NewPostStore(gdb)
	return New(Deps{
		Posts:     services.NewPostService(posts),
		Analytics: services.NewAnalyticsService(posts, store.NewAnalyticsStore(gdb)),
		DB:        posts,
	}, "*")
}

func do(t *testing.T, srv http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func create(t *testing.T, srv http.Handler, title string) postBody {
	t.Helper()
	w := do(t, srv, http.MethodPost, "/api/posts/create", "application/json",
		`{"title":"`+title+`","content":"World","author":"Alice","status":"PUBLISHED"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[postBody](t, w)
}

func path(id uint, suffix string) string {
	return "/api/posts/" + jsonNumber(id) + suffix
}

func jsonNumber(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestCreateIgnoresClientStatus(t *testing.T) {
	srv := newTestServer(t)

	p := create(t, srv, "Hello")
	assert.NotZero(t, p.ID)
	assert.Equal(t, "DRAFT", p.Status)
	assert.Equal(t, 0, p.Likes)
	assert.Equal(t, []string{}, p.Comments)
	assert.Equal(t, []string{}, p.Feedback)
	assert.NotEmpty(t, p.CreatedAt)
}

func TestCreateValidation(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodPost, "/api/posts/create", "application/json", `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "title")

	w = do(t, srv, http.MethodPost, "/api/posts/create", "application/json", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetByID(t *testing.T) {
	srv := newTestServer(t)
	p := create(t, srv, "Hello")

	w := do(t, srv, http.MethodGet, path(p.ID, ""), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello", decode[postBody](t, w).Title)

	w = do(t, srv, http.MethodGet, "/api/posts/999", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, srv, http.MethodGet, "/api/posts/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	p := create(t, srv, "Hello")

	w := do(t, srv, http.MethodGet, "/api/posts/drafts", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]postBody](t, w), 1)

	w = do(t, srv, http.MethodPut, path(p.ID, "/review"), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "REVIEWED", decode[postBody](t, w).Status)

	w = do(t, srv, http.MethodGet, "/api/posts/review", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]postBody](t, w), 1)

	w = do(t, srv, http.MethodPut, path(p.ID, "/publish"), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "PUBLISHED", decode[postBody](t, w).Status)

	w = do(t, srv, http.MethodGet, "/api/posts", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	published := decode[[]postBody](t, w)
	require.Len(t, published, 1)
	assert.Equal(t, p.ID, published[0].ID)

	for _, suffix := range []string{"/publish", "/review", "/like"} {
		w = do(t, srv, http.MethodPut, path(999, suffix), "", "")
		assert.Equal(t, http.StatusNotFound, w.Code, suffix)
	}
}

func TestUpdate(t *testing.T) {
	srv := newTestServer(t)
	p := create(t, srv, "Hello")

	w := do(t, srv, http.MethodPut, path(p.ID, ""), "application/json", `{"title":"Hi","content":"There","author":"Bob","status":"ARCHIVED"}`)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[postBody](t, w)
	assert.Equal(t, "Hi", got.Title)
	assert.Equal(t, "Bob", got.Author)
	assert.Equal(t, "DRAFT", got.Status)

	w = do(t, srv, http.MethodPut, path(999, ""), "application/json", `{"title":"Hi"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, srv, http.MethodPut, path(p.ID, ""), "application/json", `{"title":" "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDelete(t *testing.T) {
	srv := newTestServer(t)
	p := create(t, srv, "Hello")

	w := do(t, srv, http.MethodDelete, path(p.ID, ""), "", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(t, srv, http.MethodGet, path(p.ID, ""), "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, srv, http.MethodDelete, path(p.ID, ""), "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearch(t *testing.T) {
	srv := newTestServer(t)
	hello := create(t, srv, "Hello World")
	create(t, srv, "Goodbye")

	w := do(t, srv, http.MethodGet, "/api/posts/search?keyword=hello", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[[]postBody](t, w)
	require.Len(t, got, 1)
	assert.Equal(t, hello.ID, got[0].ID)

	w = do(t, srv, http.MethodGet, "/api/posts/search?keyword=", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]postBody](t, w), 2)
}

func TestEmptyListsAreArrays(t *testing.T) {
	srv := newTestServer(t)

	for _, p := range []string{"/api/posts", "/api/posts/drafts", "/api/posts/review", "/api/posts/search?keyword=x"} {
		w := do(t, srv, http.MethodGet, p, "", "")
		require.Equal(t, http.StatusOK, w.Code, p)
		assert.JSONEq(t, `[]`, w.Body.String(), p)
	}
}

func TestByAuthorAndStatus(t *testing.T) {
	srv := newTestServer(t)
	create(t, srv, "Hello")

	w := do(t, srv, http.MethodGet, "/api/posts/by-author?author=Alice", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]postBody](t, w), 1)

	w = do(t, srv, http.MethodGet, "/api/posts/by-status?status=draft", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]postBody](t, w), 1)

	w = do(t, srv, http.MethodGet, "/api/posts/by-status?status=gone", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLikeCommentFeedback(t *testing.T) {
	srv := newTestServer(t)
	p := create(t, srv, "Hello")

	var got postBody
	for i := 0; i < 3; i++ {
		w := do(t, srv, http.MethodPut, path(p.ID, "/like"), "", "")
		require.Equal(t, http.StatusOK, w.Code)
		got = decode[postBody](t, w)
	}
	assert.Equal(t, 3, got.Likes)

	w := do(t, srv, http.MethodPost, path(p.ID, "/comment"), "text/plain", "first")
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, srv, http.MethodPost, path(p.ID, "/comment"), "application/json", `{"text":"second"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"first", "second"}, decode[postBody](t, w).Comments)

	w = do(t, srv, http.MethodGet, path(p.ID, "/comments"), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"first", "second"}, decode[[]string](t, w))

	w = do(t, srv, http.MethodPost, path(p.ID, "/feedback"), "text/plain", "needs a summary")
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, srv, http.MethodGet, path(p.ID, "/feedback"), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"needs a summary"}, decode[[]string](t, w))

	w = do(t, srv, http.MethodPost, path(p.ID, "/comment"), "text/plain", "   ")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodPost, path(999, "/feedback"), "text/plain", "x")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, srv, http.MethodGet, path(999, "/comments"), "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentBodiesStoredVerbatim(t *testing.T) {
	srv := newTestServer(t)
	p := create(t, srv, "Hello")

	long := strings.Repeat("x", 70000)
	w := do(t, srv, http.MethodPost, path(p.ID, "/comment"), "text/plain", long)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodPost, path(p.ID, "/comment"), "text/plain", "  padded \n")
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, srv, http.MethodPost, path(p.ID, "/comment"), "application/json", `{"text":"  padded \n"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodGet, path(p.ID, "/comments"), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	comments := decode[[]string](t, w)
	require.Len(t, comments, 3)
	assert.Len(t, comments[0], 70000)
	assert.Equal(t, "  padded \n", comments[1])
	assert.Equal(t, comments[1], comments[2])
}

func TestPreview(t *testing.T) {
	srv := newTestServer(t)
	w := do(t, srv, http.MethodPost, "/api/posts/create", "application/json", `{"title":"md","content":"**bold**"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	p := decode[postBody](t, w)

	w = do(t, srv, http.MethodGet, path(p.ID, "/preview"), "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "<strong>bold</strong>")
}

func TestDashboard(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/api/dashboard/latest", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	p := create(t, srv, "Hello")
	create(t, srv, "Draft")
	w = do(t, srv, http.MethodPut, path(p.ID, "/publish"), "", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodGet, "/api/dashboard/analytics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	current := decode[analyticsBody](t, w)
	assert.EqualValues(t, 1, current.TotalPosts)
	assert.EqualValues(t, 1, current.TotalDrafts)
	assert.EqualValues(t, 0, current.TotalReviews)
	assert.Equal(t, "Recent activity updated", current.RecentActivity)
	assert.Zero(t, current.ID)

	w = do(t, srv, http.MethodPost, "/api/dashboard/snapshot", "", "")
	require.Equal(t, http.StatusCreated, w.Code)
	snap := decode[analyticsBody](t, w)
	assert.NotZero(t, snap.ID)

	w = do(t, srv, http.MethodGet, "/api/dashboard/latest", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, snap.ID, decode[analyticsBody](t, w).ID)
}

type brokenStore struct {
	store.PostStore
}

func (brokenStore) CountByStatus(context.Context, models.PostStatus) (int64, error) {
	return 0, &store.StorageError{Op: "count posts", Err: errors.New("connection refused")}
}

func (brokenStore) Ping(context.Context) error {
	return errors.New("connection refused")
}

func TestStorageFailureIs500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	broken := brokenStore{}
	srv := New(Deps{
		Posts:     services.NewPostService(broken),
		Analytics: services.NewAnalyticsService(broken, nil),
		DB:        broken,
	}, "*")

	w := do(t, srv, http.MethodGet, "/api/dashboard/analytics", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())

	w = do(t, srv, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t)

	w := do(t, srv, http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGzipWhenAccepted(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
}

func TestPanicIsRecoveredAndLogged(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	// brokenStore has no FindByID, so the lookup panics
	broken := brokenStore{}
	srv := New(Deps{
		Posts:     services.NewPostService(broken),
		Analytics: services.NewAnalyticsService(broken, nil),
		DB:        broken,
	}, "*")

	w := do(t, srv, http.MethodGet, "/api/posts/1", "", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, `"message":"request"`), out)
	assert.Contains(t, out, `"status":500`)
}
