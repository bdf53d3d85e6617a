package routes

import (
	"database/sql"

	"github.com/gorilla/mux"
	"pixelgram.app/pixelgram-backend/handlers"
)

func CreateUserRoutes(db *sql.DB, router *mux.Router) *mux.Router {
	// Fixed segments before the {userId} wildcard
	router.HandleFunc("/users/search/{query}", handlers.SearchUsers(db)).Methods("GET")
	router.HandleFunc("/users/me/profile", handlers.GetMyProfile(db)).Methods("GET")
	router.HandleFunc("/users/profile", handlers.UpdateProfile(db)).Methods("PUT")

	router.HandleFunc("/users/{userId}", handlers.GetUserByID(db)).Methods("GET")
	router.HandleFunc("/users/{userId}/follow", handlers.FollowUser(db)).Methods("PUT")
	router.HandleFunc("/users/{userId}/unfollow", handlers.UnfollowUser(db)).Methods("PUT")
	router.HandleFunc("/users/{userId}/followers", handlers.GetUserFollowers(db)).Methods("GET")
	router.HandleFunc("/users/{userId}/following", handlers.GetUserFollowing(db)).Methods("GET")

	return router
}
