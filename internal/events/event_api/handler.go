package event_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ms-reservations/internal/apierror"
	"ms-reservations/internal/events"
	"ms-reservations/internal/logger"
	"ms-reservations/internal/models"
)

type Handler struct {
	EventService *events.Service
	Logger       *logger.Logger
}

func NewHandler(eventService *events.Service, log *logger.Logger) *Handler {
	return &Handler{EventService: eventService, Logger: log}
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := 1
	if raw := query.Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			page = parsed
		}
	}
	filters := models.EventFilters{
		Date:     query.Get("date"),
		Location: query.Get("location"),
		Search:   query.Get("search"),
	}

	pageData, err := h.EventService.List(r.Context(), filters, page)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEvents: %v", err))
		apierror.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(pageData)
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req events.CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateEvent: failed to decode request body: %v", err))
		apierror.Write(w, apierror.NewValidation().Add("body", "the request body must be valid JSON"))
		return
	}

	event, err := h.EventService.Create(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateEvent: %v", err))
		apierror.Write(w, err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateEvent: event %d created", event.ID))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(event)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		apierror.Write(w, apierror.NotFound("event"))
		return
	}

	event, err := h.EventService.Get(r.Context(), id)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetEvent: %v", err))
		apierror.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(event)
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		apierror.Write(w, apierror.NotFound("event"))
		return
	}

	var req events.UpdateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateEvent: failed to decode request body: %v", err))
		apierror.Write(w, apierror.NewValidation().Add("body", "the request body must be valid JSON"))
		return
	}

	event, err := h.EventService.Update(r.Context(), id, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateEvent: %v", err))
		apierror.Write(w, err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("UpdateEvent: event %d updated", event.ID))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(event)
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		apierror.Write(w, apierror.NotFound("event"))
		return
	}

	if err := h.EventService.Delete(r.Context(), id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteEvent: %v", err))
		apierror.Write(w, err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("DeleteEvent: event %d soft-deleted", id))

	w.WriteHeader(http.StatusNoContent)
}

func parseID(r *http.Request, param string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, param), 10, 64)
}
