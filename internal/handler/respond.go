package handler

import (
	"encoding/json"
	"net/http"
)

// Every response carries the {success, message?, ...} envelope the
// storefront client switches on. Business failures still answer 200; only
// transport-level guards (auth middleware, rate limiter) use error status
// codes.

func respond(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func ok(w http.ResponseWriter, message string) {
	respond(w, http.StatusOK, map[string]any{"success": true, "message": message})
}

func okWith(w http.ResponseWriter, fields map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range fields {
		body[k] = v
	}
	respond(w, http.StatusOK, body)
}

func fail(w http.ResponseWriter, message string) {
	respond(w, http.StatusOK, map[string]any{"success": false, "message": message})
}

func failStatus(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]any{"success": false, "message": message})
}

const msgSomethingWentWrong = "Something went wrong"

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}
