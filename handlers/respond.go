package handlers

import (
	"encoding/json"
	"log"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeInternalError hides the underlying cause from the client and keeps
// it in the server log.
func writeInternalError(w http.ResponseWriter, where string, err error) {
	log.Printf("%s error: %v", where, err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
