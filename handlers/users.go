package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"pixelgram.app/pixelgram-backend/middleware"
	"pixelgram.app/pixelgram-backend/models"
)

type userWithStats struct {
	models.User
	FollowersCount int `json:"followers_count"`
	FollowingCount int `json:"following_count"`
	PostsCount     int `json:"posts_count"`
}

func getUserProfile(db *sql.DB, w http.ResponseWriter, userID int) {
	var u userWithStats
	err := db.QueryRow(`
		SELECT id, username, email, bio, profile_pic, created_at
		FROM users WHERE id = $1`, userID).
		Scan(&u.ID, &u.Username, &u.Email, &u.Bio, &u.ProfilePic, &u.CreatedAt)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "User not found")
		return
	} else if err != nil {
		writeInternalError(w, "GetUserProfile", err)
		return
	}

	err = db.QueryRow(`
		SELECT
			(SELECT COUNT(*) FROM follows WHERE following_id = $1) as followers,
			(SELECT COUNT(*) FROM follows WHERE follower_id = $1) as following,
			(SELECT COUNT(*) FROM posts WHERE user_id = $1) as posts`,
		userID).Scan(&u.FollowersCount, &u.FollowingCount, &u.PostsCount)
	if err != nil {
		writeInternalError(w, "GetUserProfile stats", err)
		return
	}

	writeJSON(w, http.StatusOK, u)
}

// GetUserByID - public profile of any user, credential fields excluded
func GetUserByID(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		userID, err := strconv.Atoi(vars["userId"])
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid userId")
			return
		}
		getUserProfile(db, w, userID)
	}
}

// GetMyProfile - profile of the authenticated caller
func GetMyProfile(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		getUserProfile(db, w, middleware.CallerID(r))
	}
}

// UpdateProfile - partial update of the caller's profile. Pointer fields
// distinguish "absent" (leave untouched) from an explicit empty string
// (clear the field). A username change must stay globally unique.
func UpdateProfile(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r)

		var req struct {
			Username   *string `json:"username"`
			Bio        *string `json:"bio"`
			ProfilePic *string `json:"profile_pic"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		var currentUsername string
		err := db.QueryRow(`SELECT username FROM users WHERE id = $1`, callerID).
			Scan(&currentUsername)
		if err == sql.ErrNoRows {
			writeError(w, http.StatusNotFound, "User not found")
			return
		} else if err != nil {
			writeInternalError(w, "UpdateProfile", err)
			return
		}

		setClauses := []string{}
		args := []interface{}{}
		i := 1

		if req.Username != nil && *req.Username != currentUsername {
			if *req.Username == "" {
				writeError(w, http.StatusBadRequest, "Username cannot be empty")
				return
			}

			var taken bool
			err := db.QueryRow(`
				SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 AND id != $2)`,
				*req.Username, callerID).Scan(&taken)
			if err != nil {
				writeInternalError(w, "UpdateProfile", err)
				return
			}
			if taken {
				writeError(w, http.StatusBadRequest, "Username already taken")
				return
			}

			setClauses = append(setClauses, "username = $"+strconv.Itoa(i))
			args = append(args, *req.Username)
			i++
		}
		if req.Bio != nil {
			setClauses = append(setClauses, "bio = $"+strconv.Itoa(i))
			args = append(args, *req.Bio)
			i++
		}
		if req.ProfilePic != nil {
			setClauses = append(setClauses, "profile_pic = $"+strconv.Itoa(i))
			args = append(args, *req.ProfilePic)
			i++
		}

		if len(setClauses) > 0 {
			sqlStr := "UPDATE users SET " + strings.Join(setClauses, ", ") +
				" WHERE id = $" + strconv.Itoa(i)
			args = append(args, callerID)

			if _, err := db.Exec(sqlStr, args...); err != nil {
				writeInternalError(w, "UpdateProfile", err)
				return
			}
		}

		var u models.User
		err = db.QueryRow(`
			SELECT id, username, email, bio, profile_pic, created_at
			FROM users WHERE id = $1`, callerID).
			Scan(&u.ID, &u.Username, &u.Email, &u.Bio, &u.ProfilePic, &u.CreatedAt)
		if err != nil {
			writeInternalError(w, "UpdateProfile", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Profile updated successfully",
			"user":    u,
		})
	}
}

// SearchUsers - case-insensitive substring match on username, capped at 20
func SearchUsers(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		query := vars["query"]
		if len(query) > 50 {
			query = query[:50]
		}

		rows, err := db.Query(`
			SELECT id, username, profile_pic, bio
			FROM users
			WHERE username ILIKE $1
			ORDER BY LENGTH(username), username
			LIMIT 20`,
			"%"+query+"%")
		if err != nil {
			writeInternalError(w, "SearchUsers", err)
			return
		}
		defer rows.Close()

		users := []models.UserSummary{}
		for rows.Next() {
			var u models.UserSummary
			if err := rows.Scan(&u.ID, &u.Username, &u.ProfilePic, &u.Bio); err != nil {
				writeInternalError(w, "SearchUsers scan", err)
				return
			}
			users = append(users, u)
		}
		if err := rows.Err(); err != nil {
			writeInternalError(w, "SearchUsers rows", err)
			return
		}

		writeJSON(w, http.StatusOK, users)
	}
}
