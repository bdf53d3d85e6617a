package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"pixelgram.app/pixelgram-backend/middleware"
	"pixelgram.app/pixelgram-backend/models"
)

func fetchPostWithUser(db *sql.DB, postID int) (models.PostWithUser, error) {
	var p models.PostWithUser
	err := db.QueryRow(`
		SELECT p.id, p.user_id, p.image, p.caption, p.created_at,
		       u.username, u.profile_pic
		FROM posts p
		JOIN users u ON p.user_id = u.id
		WHERE p.id = $1`, postID).
		Scan(&p.ID, &p.UserID, &p.Image, &p.Caption, &p.CreatedAt,
			&p.Username, &p.ProfilePic)
	return p, err
}

func fetchPostComments(db *sql.DB, postID int) ([]models.CommentWithUser, error) {
	rows, err := db.Query(`
		SELECT c.id, c.post_id, c.user_id, c.text, c.created_at,
		       u.username, u.profile_pic
		FROM comments c
		JOIN users u ON c.user_id = u.id
		WHERE c.post_id = $1
		ORDER BY c.created_at ASC, c.id ASC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []models.CommentWithUser{}
	for rows.Next() {
		var c models.CommentWithUser
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Text,
			&c.CreatedAt, &c.Username, &c.ProfilePic); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func fetchPostDetail(db *sql.DB, postID int) (models.PostDetail, error) {
	var d models.PostDetail

	p, err := fetchPostWithUser(db, postID)
	if err != nil {
		return d, err
	}
	d.PostWithUser = p

	if err := db.QueryRow(`SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID).
		Scan(&d.LikeCount); err != nil {
		return d, err
	}

	d.Comments, err = fetchPostComments(db, postID)
	return d, err
}

// CreatePost - new post owned by the caller, empty likes and comments
func CreatePost(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r)

		var req struct {
			Image   string `json:"image"`
			Caption string `json:"caption"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Image == "" {
			writeError(w, http.StatusBadRequest, "Image is required")
			return
		}

		var postID int
		err := db.QueryRow(`
			INSERT INTO posts (user_id, image, caption)
			VALUES ($1, $2, $3)
			RETURNING id`,
			callerID, req.Image, req.Caption).Scan(&postID)
		if err != nil {
			writeInternalError(w, "CreatePost", err)
			return
		}

		post, err := fetchPostWithUser(db, postID)
		if err != nil {
			writeInternalError(w, "CreatePost", err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "Post created successfully",
			"post":    post,
		})
	}
}

// GetFeed - posts from the caller and everyone the caller follows,
// newest first, capped at 50
func GetFeed(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r)

		rows, err := db.Query(`
			SELECT p.id, p.user_id, p.image, p.caption, p.created_at,
			       u.username, u.profile_pic,
			       (SELECT COUNT(*) FROM likes WHERE post_id = p.id) as like_count,
			       (SELECT COUNT(*) FROM comments WHERE post_id = p.id) as comment_count,
			       EXISTS(SELECT 1 FROM likes WHERE post_id = p.id AND user_id = $1) as is_liked_by_user
			FROM posts p
			JOIN users u ON p.user_id = u.id
			WHERE p.user_id = $1
			   OR p.user_id IN (SELECT following_id FROM follows WHERE follower_id = $1)
			ORDER BY p.created_at DESC, p.id DESC
			LIMIT 50`,
			callerID)
		if err != nil {
			writeInternalError(w, "GetFeed", err)
			return
		}
		defer rows.Close()

		feed := []models.PostWithEngagement{}
		for rows.Next() {
			var p models.PostWithEngagement
			if err := rows.Scan(&p.ID, &p.UserID, &p.Image, &p.Caption, &p.CreatedAt,
				&p.Username, &p.ProfilePic, &p.LikeCount, &p.CommentCount,
				&p.IsLikedByUser); err != nil {
				writeInternalError(w, "GetFeed scan", err)
				return
			}
			feed = append(feed, p)
		}
		if err := rows.Err(); err != nil {
			writeInternalError(w, "GetFeed rows", err)
			return
		}

		writeJSON(w, http.StatusOK, feed)
	}
}

// GetPost - single post with owner and comment-author projections
func GetPost(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		postID, err := strconv.Atoi(vars["id"])
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid post ID")
			return
		}

		detail, err := fetchPostDetail(db, postID)
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "Post not found")
			return
		} else if err != nil {
			writeInternalError(w, "GetPost", err)
			return
		}

		writeJSON(w, http.StatusOK, detail)
	}
}

// GetPostsByUser - all posts owned by {userId}, newest first
func GetPostsByUser(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		userID, err := strconv.Atoi(vars["userId"])
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid userId")
			return
		}

		rows, err := db.Query(`
			SELECT p.id, p.user_id, p.image, p.caption, p.created_at,
			       u.username, u.profile_pic
			FROM posts p
			JOIN users u ON p.user_id = u.id
			WHERE p.user_id = $1
			ORDER BY p.created_at DESC, p.id DESC`,
			userID)
		if err != nil {
			writeInternalError(w, "GetPostsByUser", err)
			return
		}
		defer rows.Close()

		posts := []models.PostWithUser{}
		for rows.Next() {
			var p models.PostWithUser
			if err := rows.Scan(&p.ID, &p.UserID, &p.Image, &p.Caption,
				&p.CreatedAt, &p.Username, &p.ProfilePic); err != nil {
				writeInternalError(w, "GetPostsByUser scan", err)
				return
			}
			posts = append(posts, p)
		}
		if err := rows.Err(); err != nil {
			writeInternalError(w, "GetPostsByUser rows", err)
			return
		}

		writeJSON(w, http.StatusOK, posts)
	}
}

// UpdatePost - caption change, owner only. An absent caption keeps the
// old value.
func UpdatePost(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r)

		vars := mux.Vars(r)
		postID, err := strconv.Atoi(vars["id"])
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid post ID")
			return
		}

		var req struct {
			Caption *string `json:"caption"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var ownerID int
		err = db.QueryRow(`SELECT user_id FROM posts WHERE id = $1`, postID).
			Scan(&ownerID)
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "Post not found")
			return
		} else if err != nil {
			writeInternalError(w, "UpdatePost", err)
			return
		}

		if ownerID != callerID {
			writeError(w, http.StatusForbidden, "Not authorized")
			return
		}

		if req.Caption != nil {
			if _, err := db.Exec(`UPDATE posts SET caption = $1 WHERE id = $2`,
				*req.Caption, postID); err != nil {
				writeInternalError(w, "UpdatePost", err)
				return
			}
		}

		post, err := fetchPostWithUser(db, postID)
		if err != nil {
			writeInternalError(w, "UpdatePost", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Post updated successfully",
			"post":    post,
		})
	}
}

// DeletePost - owner only; comments and likes go with the post
func DeletePost(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r)

		vars := mux.Vars(r)
		postID, err := strconv.Atoi(vars["id"])
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid post ID")
			return
		}

		var ownerID int
		err = db.QueryRow(`SELECT user_id FROM posts WHERE id = $1`, postID).
			Scan(&ownerID)
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "Post not found")
			return
		} else if err != nil {
			writeInternalError(w, "DeletePost", err)
			return
		}

		if ownerID != callerID {
			writeError(w, http.StatusForbidden, "Not authorized")
			return
		}

		if _, err := db.Exec(`DELETE FROM posts WHERE id = $1`, postID); err != nil {
			writeInternalError(w, "DeletePost", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Post deleted successfully",
		})
	}
}

// ToggleLike - one request flips the caller's membership in the post's
// like set. The unique index on (post_id, user_id) keeps membership
// at-most-one under concurrent toggles.
func ToggleLike(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r)

		vars := mux.Vars(r)
		postID, err := strconv.Atoi(vars["id"])
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid post ID")
			return
		}

		var ownerID int
		err = db.QueryRow(`SELECT user_id FROM posts WHERE id = $1`, postID).
			Scan(&ownerID)
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "Post not found")
			return
		} else if err != nil {
			writeInternalError(w, "ToggleLike", err)
			return
		}

		result, err := db.Exec(`
			INSERT INTO likes (post_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT (post_id, user_id) DO NOTHING`,
			postID, callerID)
		if err != nil {
			writeInternalError(w, "ToggleLike", err)
			return
		}

		inserted, _ := result.RowsAffected()
		liked := inserted > 0
		if !liked {
			if _, err := db.Exec(`
				DELETE FROM likes WHERE post_id = $1 AND user_id = $2`,
				postID, callerID); err != nil {
				writeInternalError(w, "ToggleLike", err)
				return
			}
		}

		var likeCount int
		if err := db.QueryRow(`SELECT COUNT(*) FROM likes WHERE post_id = $1`, postID).
			Scan(&likeCount); err != nil {
			writeInternalError(w, "ToggleLike", err)
			return
		}

		if liked {
			go notifyPostOwnerOfLike(db, postID, ownerID, callerID)
		}

		message := "Post unliked"
		if liked {
			message = "Post liked"
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": message,
			"likes":   likeCount,
		})
	}
}

// AddComment - appends a comment authored by the caller
func AddComment(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r)

		vars := mux.Vars(r)
		postID, err := strconv.Atoi(vars["id"])
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid post ID")
			return
		}

		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Text == "" {
			writeError(w, http.StatusBadRequest, "Comment text is required")
			return
		}

		var ownerID int
		err = db.QueryRow(`SELECT user_id FROM posts WHERE id = $1`, postID).
			Scan(&ownerID)
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "Post not found")
			return
		} else if err != nil {
			writeInternalError(w, "AddComment", err)
			return
		}

		var comment models.Comment
		err = db.QueryRow(`
			INSERT INTO comments (post_id, user_id, text)
			VALUES ($1, $2, $3)
			RETURNING id, post_id, user_id, text, created_at`,
			postID, callerID, req.Text,
		).Scan(&comment.ID, &comment.PostID, &comment.UserID,
			&comment.Text, &comment.CreatedAt)
		if err != nil {
			writeInternalError(w, "AddComment", err)
			return
		}

		detail, err := fetchPostDetail(db, postID)
		if err != nil {
			writeInternalError(w, "AddComment", err)
			return
		}

		go notifyPostOwnerOfComment(db, postID, ownerID, callerID, req.Text)

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "Comment added successfully",
			"post":    detail,
		})
	}
}

// DeleteComment - allowed for the comment's author or the post's owner
func DeleteComment(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r)

		vars := mux.Vars(r)
		postID, err := strconv.Atoi(vars["postId"])
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid post ID")
			return
		}
		commentID, err := strconv.Atoi(vars["commentId"])
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid comment ID")
			return
		}

		var postOwnerID int
		err = db.QueryRow(`SELECT user_id FROM posts WHERE id = $1`, postID).
			Scan(&postOwnerID)
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "Post not found")
			return
		} else if err != nil {
			writeInternalError(w, "DeleteComment", err)
			return
		}

		var authorID int
		err = db.QueryRow(`
			SELECT user_id FROM comments WHERE id = $1 AND post_id = $2`,
			commentID, postID).Scan(&authorID)
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "Comment not found")
			return
		} else if err != nil {
			writeInternalError(w, "DeleteComment", err)
			return
		}

		if callerID != authorID && callerID != postOwnerID {
			writeError(w, http.StatusForbidden, "Not authorized")
			return
		}

		if _, err := db.Exec(`DELETE FROM comments WHERE id = $1`, commentID); err != nil {
			writeInternalError(w, "DeleteComment", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Comment deleted successfully",
		})
	}
}
