package routes

import (
	"database/sql"

	"github.com/gorilla/mux"
	"pixelgram.app/pixelgram-backend/handlers"
)

func CreateAuthRoutes(db *sql.DB, router *mux.Router) *mux.Router {
	router.HandleFunc("/auth/register", handlers.Register(db)).Methods("POST")
	router.HandleFunc("/auth/login", handlers.Login(db)).Methods("POST")

	return router
}
