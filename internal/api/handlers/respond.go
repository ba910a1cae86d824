package handlers

import (
	"encoding/json"
	"net/http"
)

// errorBody matches the error envelope the middleware and router emit.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, status int, code, message string) {
	jsonResponse(w, status, map[string]errorBody{
		"error": {Code: code, Message: message},
	})
}
