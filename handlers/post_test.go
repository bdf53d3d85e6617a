package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixelgram.app/pixelgram-backend/middleware"
	"pixelgram.app/pixelgram-backend/models"
)

func authedRequest(method, target string, body string, callerID int, vars map[string]string) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req = req.WithContext(middleware.ContextWithCallerID(req.Context(), callerID))
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	return req
}

func TestCreatePostRequiresImage(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	req := authedRequest("POST", "/api/posts", `{"caption": "no image"}`, 1, nil)
	rec := httptest.NewRecorder()
	CreatePost(db)(rec, req)

	assert.Equal(t, 400, rec.Code)
	assert.Contains(t, rec.Body.String(), "Image is required")
}

func TestCreatePostReturnsOwnerProjection(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO posts").
		WithArgs(1, "photo.jpg", "sunset").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery("FROM posts p JOIN users u").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "image", "caption", "created_at", "username", "profile_pic"}).
			AddRow(7, 1, "photo.jpg", "sunset", time.Now(), "alice", "alice.jpg"))

	req := authedRequest("POST", "/api/posts", `{"image": "photo.jpg", "caption": "sunset"}`, 1, nil)
	rec := httptest.NewRecorder()
	CreatePost(db)(rec, req)

	require.Equal(t, 201, rec.Code)

	var resp struct {
		Message string              `json:"message"`
		Post    models.PostWithUser `json:"post"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Post.UserID)
	assert.Equal(t, "alice", resp.Post.Username)
	assert.Equal(t, "alice.jpg", resp.Post.ProfilePic)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFeedAnnotatesPosts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	newer := time.Now()
	older := newer.Add(-time.Hour)

	mock.ExpectQuery("FROM posts p JOIN users u").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "image", "caption", "created_at",
				"username", "profile_pic", "like_count", "comment_count", "is_liked_by_user"}).
			AddRow(9, 2, "b.jpg", "second", newer, "bob", "bob.jpg", 3, 1, true).
			AddRow(8, 2, "a.jpg", "first", older, "bob", "bob.jpg", 0, 0, false))

	req := authedRequest("GET", "/api/posts/feed", "", 1, nil)
	rec := httptest.NewRecorder()
	GetFeed(db)(rec, req)

	require.Equal(t, 200, rec.Code)

	var feed []models.PostWithEngagement
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&feed))
	require.Len(t, feed, 2)
	assert.Equal(t, 9, feed[0].ID)
	assert.Equal(t, "bob", feed[0].Username)
	assert.Equal(t, 3, feed[0].LikeCount)
	assert.True(t, feed[0].IsLikedByUser)
	assert.Equal(t, 8, feed[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFeedEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM posts p JOIN users u").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "image", "caption", "created_at",
				"username", "profile_pic", "like_count", "comment_count", "is_liked_by_user"}))

	req := authedRequest("GET", "/api/posts/feed", "", 1, nil)
	rec := httptest.NewRecorder()
	GetFeed(db)(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestUpdatePostNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT user_id FROM posts").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	req := authedRequest("PUT", "/api/posts/5", `{"caption": "new"}`, 1,
		map[string]string{"id": "5"})
	rec := httptest.NewRecorder()
	UpdatePost(db)(rec, req)

	assert.Equal(t, 404, rec.Code)
}

func TestUpdatePostNotOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT user_id FROM posts").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(2))

	req := authedRequest("PUT", "/api/posts/5", `{"caption": "hijacked"}`, 1,
		map[string]string{"id": "5"})
	rec := httptest.NewRecorder()
	UpdatePost(db)(rec, req)

	assert.Equal(t, 403, rec.Code)
	// no UPDATE was expected, and none must have happened
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePostOmittedCaptionKeepsOldValue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT user_id FROM posts").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(1))
	// caption absent from the body: no UPDATE statement, straight to re-read
	mock.ExpectQuery("FROM posts p JOIN users u").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "user_id", "image", "caption", "created_at", "username", "profile_pic"}).
			AddRow(5, 1, "a.jpg", "old caption", time.Now(), "alice", ""))

	req := authedRequest("PUT", "/api/posts/5", `{}`, 1, map[string]string{"id": "5"})
	rec := httptest.NewRecorder()
	UpdatePost(db)(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "old caption")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePostNotOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT user_id FROM posts").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(2))

	req := authedRequest("DELETE", "/api/posts/5", "", 1, map[string]string{"id": "5"})
	rec := httptest.NewRecorder()
	DeletePost(db)(rec, req)

	assert.Equal(t, 403, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePostOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT user_id FROM posts").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(1))
	mock.ExpectExec("DELETE FROM posts").
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := authedRequest("DELETE", "/api/posts/5", "", 1, map[string]string{"id": "5"})
	rec := httptest.NewRecorder()
	DeletePost(db)(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleLikeLikes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT user_id FROM posts").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(2))
	mock.ExpectExec("INSERT INTO likes").
		WithArgs(5, 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT COUNT(.+) FROM likes").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	req := authedRequest("PUT", "/api/posts/5/like", "", 1, map[string]string{"id": "5"})
	rec := httptest.NewRecorder()
	ToggleLike(db)(rec, req)

	require.Equal(t, 200, rec.Code)

	var resp struct {
		Message string `json:"message"`
		Likes   int    `json:"likes"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Post liked", resp.Message)
	assert.Equal(t, 4, resp.Likes)
}

func TestToggleLikeUnlikes(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT user_id FROM posts").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(2))
	// already a member: the insert is a no-op, so the toggle removes
	mock.ExpectExec("INSERT INTO likes").
		WithArgs(5, 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM likes").
		WithArgs(5, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COUNT(.+) FROM likes").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	req := authedRequest("PUT", "/api/posts/5/like", "", 1, map[string]string{"id": "5"})
	rec := httptest.NewRecorder()
	ToggleLike(db)(rec, req)

	require.Equal(t, 200, rec.Code)

	var resp struct {
		Message string `json:"message"`
		Likes   int    `json:"likes"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Post unliked", resp.Message)
	assert.Equal(t, 3, resp.Likes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleLikeMissingPost(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT user_id FROM posts").
		WithArgs(999).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	req := authedRequest("PUT", "/api/posts/999/like", "", 1, map[string]string{"id": "999"})
	rec := httptest.NewRecorder()
	ToggleLike(db)(rec, req)

	assert.Equal(t, 404, rec.Code)
}

func TestAddCommentRequiresText(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	req := authedRequest("POST", "/api/posts/5/comment", `{"text": ""}`, 1,
		map[string]string{"id": "5"})
	rec := httptest.NewRecorder()
	AddComment(db)(rec, req)

	assert.Equal(t, 400, rec.Code)
	assert.Contains(t, rec.Body.String(), "Comment text is required")
}

func deleteCommentCase(t *testing.T, callerID, postOwnerID, commentAuthorID, wantStatus int) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT user_id FROM posts").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(postOwnerID))
	mock.ExpectQuery("SELECT user_id FROM comments").
		WithArgs(10, 5).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(commentAuthorID))
	if wantStatus == 200 {
		mock.ExpectExec("DELETE FROM comments").
			WithArgs(10).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	req := authedRequest("DELETE", "/api/posts/5/comment/10", "", callerID,
		map[string]string{"postId": "5", "commentId": "10"})
	rec := httptest.NewRecorder()
	DeleteComment(db)(rec, req)

	assert.Equal(t, wantStatus, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCommentByAuthor(t *testing.T) {
	// author deletes own comment on someone else's post
	deleteCommentCase(t, 3, 1, 3, 200)
}

func TestDeleteCommentByPostOwner(t *testing.T) {
	// post owner deletes a comment they did not author
	deleteCommentCase(t, 1, 1, 3, 200)
}

func TestDeleteCommentByStranger(t *testing.T) {
	deleteCommentCase(t, 9, 1, 3, 403)
}

func TestDeleteCommentMissingComment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT user_id FROM posts").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(1))
	mock.ExpectQuery("SELECT user_id FROM comments").
		WithArgs(10, 5).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	req := authedRequest("DELETE", "/api/posts/5/comment/10", "", 1,
		map[string]string{"postId": "5", "commentId": "10"})
	rec := httptest.NewRecorder()
	DeleteComment(db)(rec, req)

	assert.Equal(t, 404, rec.Code)
}
