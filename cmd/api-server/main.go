package main

import (
	"log"
	"net/http"
	"os"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"pixelgram.app/pixelgram-backend/database"
	"pixelgram.app/pixelgram-backend/middleware"
	"pixelgram.app/pixelgram-backend/routes"
	"pixelgram.app/pixelgram-backend/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET not set")
	}

	db, err := database.ConnectDB()
	if err != nil {
		log.Fatal("DB connection failed: ", err)
	}
	defer db.Close()

	if firebasePath := os.Getenv("FIREBASE_CREDENTIALS_PATH"); firebasePath != "" {
		if err := services.InitFirebase(firebasePath); err != nil {
			log.Printf("Firebase init failed, running without push: %v", err)
		}
	} else {
		log.Println("FIREBASE_CREDENTIALS_PATH not set, running without push")
	}

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	routes.CreateAuthRoutes(db, api)

	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.RequireAuth)
	routes.CreateUserRoutes(db, protected)
	routes.CreatePostRoutes(db, protected)

	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins([]string{"*"}),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, cors(router)))
}
