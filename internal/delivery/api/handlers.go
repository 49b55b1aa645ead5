package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"mcdiscord/internal/application"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type playerEvent struct {
	UUID string `json:"uuid" validate:"required"`
	Name string `json:"name" validate:"max=16"`

	player uuid.UUID
}

func (e *playerEvent) Bind(r *http.Request) error {
	err := validate.Struct(e)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		parts := make([]string, 0, len(validationErrors))
		for _, fieldErr := range validationErrors {
			parts = append(parts, fmt.Sprintf("%s %s", fieldErr.Field(), fieldErr.Tag()))
		}
		return errors.New(strings.Join(parts, "; "))
	}
	if err != nil {
		return err
	}

	// Same parsing as the {uuid} path parameter.
	e.player, err = uuid.Parse(e.UUID)
	if err != nil {
		return fmt.Errorf("uuid invalid: %w", err)
	}
	return nil
}

type handler struct {
	links       application.LinkService
	connections application.ConnectionService
	logger      application.Logger
}

func playerParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	player, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		fail(w, r, http.StatusBadRequest, "Invalid player uuid")
		return uuid.Nil, false
	}
	return player, true
}

func (h *handler) requestCode(w http.ResponseWriter, r *http.Request) {
	player, ok := playerParam(w, r)
	if !ok {
		return
	}

	code, err := h.links.RequestCode(player)
	switch {
	case errors.Is(err, application.ErrPlayerLinked):
		fail(w, r, http.StatusConflict, "Player is already linked")
		return
	case errors.Is(err, application.ErrCodeSpaceExhausted):
		fail(w, r, http.StatusServiceUnavailable, "No link codes available, try again later")
		return
	case err != nil:
		h.logger.Error("Request code for %s: %v", player, err)
		fail(w, r, http.StatusInternalServerError, "Failed to issue code")
		return
	}

	render.JSON(w, r, Ok(codeResponse{Code: code}))
}

func (h *handler) getLink(w http.ResponseWriter, r *http.Request) {
	player, ok := playerParam(w, r)
	if !ok {
		return
	}

	pair := h.links.LookupPlayer(player)
	if pair.Empty() {
		fail(w, r, http.StatusNotFound, "Player is not linked")
		return
	}
	render.JSON(w, r, Ok(newLinkResponse(pair)))
}

func (h *handler) deleteLink(w http.ResponseWriter, r *http.Request) {
	player, ok := playerParam(w, r)
	if !ok {
		return
	}

	pair := h.links.UnlinkPlayer(player)
	if pair.Empty() {
		fail(w, r, http.StatusNotFound, "Player is not linked")
		return
	}
	render.JSON(w, r, Ok(newLinkResponse(pair)))
}

func (h *handler) playerJoined(w http.ResponseWriter, r *http.Request) {
	var event playerEvent
	if err := render.Bind(r, &event); err != nil {
		fail(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	h.connections.PlayerJoined(event.player, event.Name)
	render.JSON(w, r, Ok(nil))
}

func (h *handler) playerQuit(w http.ResponseWriter, r *http.Request) {
	var event playerEvent
	if err := render.Bind(r, &event); err != nil {
		fail(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	h.connections.PlayerQuit(event.player)
	render.JSON(w, r, Ok(nil))
}

func (h *handler) save(w http.ResponseWriter, r *http.Request) {
	if err := h.links.Save(); err != nil {
		h.logger.Error("Save requested by game server failed: %v", err)
		fail(w, r, http.StatusInternalServerError, "Failed to save links")
		return
	}
	render.JSON(w, r, Ok(nil))
}
