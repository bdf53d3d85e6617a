package routes

import (
	"database/sql"

	"github.com/gorilla/mux"
	"pixelgram.app/pixelgram-backend/handlers"
)

func CreatePostRoutes(db *sql.DB, router *mux.Router) *mux.Router {
	router.HandleFunc("/posts", handlers.CreatePost(db)).Methods("POST")
	router.HandleFunc("/posts/feed", handlers.GetFeed(db)).Methods("GET")
	router.HandleFunc("/posts/user/{userId}", handlers.GetPostsByUser(db)).Methods("GET")
	router.HandleFunc("/posts/{id}", handlers.GetPost(db)).Methods("GET")
	router.HandleFunc("/posts/{id}", handlers.UpdatePost(db)).Methods("PUT")
	router.HandleFunc("/posts/{id}", handlers.DeletePost(db)).Methods("DELETE")
	router.HandleFunc("/posts/{id}/like", handlers.ToggleLike(db)).Methods("PUT")
	router.HandleFunc("/posts/{id}/comment", handlers.AddComment(db)).Methods("POST")
	router.HandleFunc("/posts/{postId}/comment/{commentId}", handlers.DeleteComment(db)).Methods("DELETE")

	router.HandleFunc("/notifications/register-token", handlers.RegisterFCMToken(db)).Methods("POST")

	return router
}
