package api

import (
	"net/http"
	"strconv"
	"time"

	"mcdiscord/internal/models"

	"github.com/go-chi/render"
)

type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Success       bool        `json:"success"`
	StatusMessage string      `json:"status_message"`
	Timestamp     string      `json:"timestamp"`
}

func Ok(data interface{}) Response {
	return Response{
		Data:          data,
		Success:       true,
		StatusMessage: "Success",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
}

func Error(message string) Response {
	return Response{
		Success:       false,
		StatusMessage: message,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
}

type codeResponse struct {
	Code int `json:"code"`
}

// User IDs are strings so JavaScript clients keep all 64 bits.
type linkResponse struct {
	UserID string `json:"user_id"`
	UUID   string `json:"uuid"`
}

func newLinkResponse(pair models.UserPair) linkResponse {
	return linkResponse{
		UserID: strconv.FormatInt(pair.UserID(), 10),
		UUID:   pair.Player().String(),
	}
}

func fail(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, Error(message))
}

func notFound(w http.ResponseWriter, r *http.Request) {
	fail(w, r, http.StatusNotFound, "Requested resource not found")
}

func notAllowed(w http.ResponseWriter, r *http.Request) {
	fail(w, r, http.StatusMethodNotAllowed, "Method not allowed")
}
