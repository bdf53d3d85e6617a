package handlers

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"pixelgram.app/pixelgram-backend/middleware"
	"pixelgram.app/pixelgram-backend/services"
)

// RegisterFCMToken - upsert a device token for the caller
func RegisterFCMToken(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r)

		var req struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Token == "" {
			writeError(w, http.StatusBadRequest, "FCM token is required")
			return
		}

		_, err := db.Exec(`
			INSERT INTO fcm_tokens (user_id, token)
			VALUES ($1, $2)
			ON CONFLICT (user_id, token)
			DO UPDATE SET updated_at = NOW()`,
			callerID, req.Token)
		if err != nil {
			writeInternalError(w, "RegisterFCMToken", err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"message": "FCM token registered successfully",
		})
	}
}

func userTokens(db *sql.DB, userID int) []string {
	rows, err := db.Query(`
		SELECT token FROM fcm_tokens
		WHERE user_id = $1 AND token != ''`,
		userID)
	if err != nil {
		log.Printf("Error fetching FCM tokens for user %d: %v", userID, err)
		return nil
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

func usernameOf(db *sql.DB, userID int) string {
	var username string
	if err := db.QueryRow(`SELECT username FROM users WHERE id = $1`, userID).
		Scan(&username); err != nil {
		log.Printf("Error fetching username for notification: %v", err)
		return "Someone"
	}
	return username
}

func notifyPostOwnerOfLike(db *sql.DB, postID, ownerID, likerID int) {
	if !services.MessagingReady() || ownerID == likerID {
		return
	}

	tokens := userTokens(db, ownerID)
	if len(tokens) == 0 {
		return
	}

	data := map[string]string{
		"type":     "post_like",
		"post_id":  strconv.Itoa(postID),
		"liker_id": strconv.Itoa(likerID),
	}
	services.SendMultipleNotifications(db, tokens, "New like",
		usernameOf(db, likerID)+" liked your post", data)
}

func notifyPostOwnerOfComment(db *sql.DB, postID, ownerID, commenterID int, text string) {
	if !services.MessagingReady() || ownerID == commenterID {
		return
	}

	tokens := userTokens(db, ownerID)
	if len(tokens) == 0 {
		return
	}

	body := text
	if len(body) > 100 {
		body = body[:97] + "..."
	}

	data := map[string]string{
		"type":         "post_comment",
		"post_id":      strconv.Itoa(postID),
		"commenter_id": strconv.Itoa(commenterID),
	}
	services.SendMultipleNotifications(db, tokens,
		usernameOf(db, commenterID)+" commented on your post", body, data)
}

func notifyNewFollower(db *sql.DB, followerID, followingID int) {
	if !services.MessagingReady() {
		return
	}

	tokens := userTokens(db, followingID)
	if len(tokens) == 0 {
		return
	}

	data := map[string]string{
		"type":        "new_follower",
		"follower_id": strconv.Itoa(followerID),
	}
	services.SendMultipleNotifications(db, tokens, "New follower",
		usernameOf(db, followerID)+" started following you!", data)
}
