package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"pixelgram.app/pixelgram-backend/middleware"
	"pixelgram.app/pixelgram-backend/models"
)

type authResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    models.User `json:"user"`
}

func Register(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username        string `json:"username"`
			Email           string `json:"email"`
			Password        string `json:"password"`
			ConfirmPassword string `json:"confirm_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		req.Username = strings.TrimSpace(req.Username)
		req.Email = strings.TrimSpace(req.Email)

		if req.Username == "" || req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "Username, email and password are required")
			return
		}
		if req.Password != req.ConfirmPassword {
			writeError(w, http.StatusBadRequest, "Passwords don't match")
			return
		}

		var taken bool
		err := db.QueryRow(`
			SELECT EXISTS(SELECT 1 FROM users WHERE username = $1 OR email = $2)`,
			req.Username, req.Email).Scan(&taken)
		if err != nil {
			writeInternalError(w, "Register", err)
			return
		}
		if taken {
			writeError(w, http.StatusBadRequest, "Username or email already in use")
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			writeInternalError(w, "Register", err)
			return
		}

		var u models.User
		err = db.QueryRow(`
			INSERT INTO users (username, email, password)
			VALUES ($1, $2, $3)
			RETURNING id, username, email, bio, profile_pic, created_at`,
			req.Username, req.Email, string(hashed),
		).Scan(&u.ID, &u.Username, &u.Email, &u.Bio, &u.ProfilePic, &u.CreatedAt)
		if err != nil {
			writeInternalError(w, "Register", err)
			return
		}

		token, err := middleware.GenerateToken(u.ID)
		if err != nil {
			writeInternalError(w, "Register", err)
			return
		}

		writeJSON(w, http.StatusCreated, authResponse{
			Message: "User registered successfully",
			Token:   token,
			User:    u,
		})
	}
}

func Login(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		if req.Email == "" || req.Password == "" {
			writeError(w, http.StatusBadRequest, "Email and password are required")
			return
		}

		var u models.User
		var hash string
		err := db.QueryRow(`
			SELECT id, username, email, password, bio, profile_pic, created_at
			FROM users WHERE email = $1`,
			req.Email,
		).Scan(&u.ID, &u.Username, &u.Email, &hash, &u.Bio, &u.ProfilePic, &u.CreatedAt)
		if err == sql.ErrNoRows {
			writeError(w, http.StatusBadRequest, "Invalid credentials")
			return
		} else if err != nil {
			writeInternalError(w, "Login", err)
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
			writeError(w, http.StatusBadRequest, "Invalid credentials")
			return
		}

		token, err := middleware.GenerateToken(u.ID)
		if err != nil {
			writeInternalError(w, "Login", err)
			return
		}

		writeJSON(w, http.StatusOK, authResponse{
			Message: "Logged in successfully",
			Token:   token,
			User:    u,
		})
	}
}
