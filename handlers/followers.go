package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"pixelgram.app/pixelgram-backend/middleware"
	"pixelgram.app/pixelgram-backend/models"
)

// The follow edge is a single relation row, so the "following" and
// "followers" views can never disagree and a follow/unfollow is one
// atomic statement.

// FollowUser - caller starts following {userId}
func FollowUser(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r)

		vars := mux.Vars(r)
		targetID, err := strconv.Atoi(vars["userId"])
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid userId")
			return
		}

		if targetID == callerID {
			writeError(w, http.StatusBadRequest, "You cannot follow yourself")
			return
		}

		var targetExists bool
		err = db.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, targetID).
			Scan(&targetExists)
		if err != nil {
			writeInternalError(w, "FollowUser", err)
			return
		}
		if !targetExists {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}

		result, err := db.Exec(`
			INSERT INTO follows (follower_id, following_id)
			VALUES ($1, $2)
			ON CONFLICT (follower_id, following_id) DO NOTHING`,
			callerID, targetID)
		if err != nil {
			writeInternalError(w, "FollowUser", err)
			return
		}

		if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
			writeError(w, http.StatusBadRequest, "Already following this user")
			return
		}

		go notifyNewFollower(db, callerID, targetID)

		writeJSON(w, http.StatusOK, map[string]string{
			"message": "User followed successfully",
		})
	}
}

// UnfollowUser - caller stops following {userId}
func UnfollowUser(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r)

		vars := mux.Vars(r)
		targetID, err := strconv.Atoi(vars["userId"])
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid userId")
			return
		}

		var targetExists bool
		err = db.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, targetID).
			Scan(&targetExists)
		if err != nil {
			writeInternalError(w, "UnfollowUser", err)
			return
		}
		if !targetExists {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}

		result, err := db.Exec(`
			DELETE FROM follows
			WHERE follower_id = $1 AND following_id = $2`,
			callerID, targetID)
		if err != nil {
			writeInternalError(w, "UnfollowUser", err)
			return
		}

		if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
			writeError(w, http.StatusBadRequest, "Not following this user")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"message": "User unfollowed successfully",
		})
	}
}

// GetUserFollowers - users following {userId}
func GetUserFollowers(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listFollowEdge(db, w, r, `
			SELECT u.id, u.username, u.profile_pic, u.bio, f.created_at
			FROM follows f
			JOIN users u ON f.follower_id = u.id
			WHERE f.following_id = $1
			ORDER BY f.created_at DESC`, "GetUserFollowers")
	}
}

// GetUserFollowing - users {userId} follows
func GetUserFollowing(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listFollowEdge(db, w, r, `
			SELECT u.id, u.username, u.profile_pic, u.bio, f.created_at
			FROM follows f
			JOIN users u ON f.following_id = u.id
			WHERE f.follower_id = $1
			ORDER BY f.created_at DESC`, "GetUserFollowing")
	}
}

func listFollowEdge(db *sql.DB, w http.ResponseWriter, r *http.Request, query, where string) {
	vars := mux.Vars(r)
	userID, err := strconv.Atoi(vars["userId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid userId")
		return
	}

	var exists bool
	err = db.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).
		Scan(&exists)
	if err != nil {
		writeInternalError(w, where, err)
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	rows, err := db.Query(query, userID)
	if err != nil {
		writeInternalError(w, where, err)
		return
	}
	defer rows.Close()

	users := []models.FollowerInfo{}
	for rows.Next() {
		var u models.FollowerInfo
		if err := rows.Scan(&u.ID, &u.Username, &u.ProfilePic, &u.Bio, &u.FollowedAt); err != nil {
			writeInternalError(w, where+" scan", err)
			return
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		writeInternalError(w, where+" rows", err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}
