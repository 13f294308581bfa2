package handler

import "net/http"

// HandleHealth reports liveness. No auth, no dependencies.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}
