package response

import (
	"encoding/json"
	"log"
	"net/http"
)

// ErrorResponse is the JSON error body: a short human message in Spanish,
// optionally with machine detail.
type ErrorResponse struct {
	Msg   string `json:"msg"`
	Error string `json:"error,omitempty"`
}

func WriteError(w http.ResponseWriter, statusCode int, msg string) {
	WriteErrorWithDetail(w, statusCode, msg, "")
}

func WriteErrorWithDetail(w http.ResponseWriter, statusCode int, msg, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Msg: msg, Error: detail}); err != nil {
		log.Printf("failed to encode error response: %v", err)
	}
}

// WriteJSON writes any payload with the given status.
func WriteJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// Msg writes a bare {"msg": ...} body.
func Msg(w http.ResponseWriter, statusCode int, msg string) {
	WriteJSON(w, statusCode, map[string]string{"msg": msg})
}

func BadRequest(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusBadRequest, msg)
}

func Unauthorized(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusUnauthorized, msg)
}

func Forbidden(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusForbidden, msg)
}

func NotFound(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusNotFound, msg)
}

func Conflict(w http.ResponseWriter, msg string) {
	WriteError(w, http.StatusConflict, msg)
}

// UnprocessableToken is for malformed bearer tokens (422, matching the JWT
// error contract of the API).
func UnprocessableToken(w http.ResponseWriter, msg, detail string) {
	WriteErrorWithDetail(w, http.StatusUnprocessableEntity, msg, detail)
}

func InternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "Error interno del servidor")
}
