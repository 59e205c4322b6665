package reservation_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ms-reservations/internal/apierror"
	"ms-reservations/internal/logger"
	"ms-reservations/internal/reservations"
)

type Handler struct {
	ReservationService *reservations.Service
	Logger             *logger.Logger
}

func NewHandler(reservationService *reservations.Service, log *logger.Logger) *Handler {
	return &Handler{ReservationService: reservationService, Logger: log}
}

func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	eventID, err := parseID(r, "id")
	if err != nil {
		apierror.Write(w, apierror.NotFound("event"))
		return
	}

	var req reservations.CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateReservation: failed to decode request body: %v", err))
		apierror.Write(w, apierror.NewValidation().Add("body", "the request body must be valid JSON"))
		return
	}

	reservation, err := h.ReservationService.Create(r.Context(), eventID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateReservation: %v", err))
		apierror.Write(w, err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("CreateReservation: reservation %d created for event %d", reservation.ID, eventID))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(reservation)
}

func (h *Handler) DeleteReservation(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		apierror.Write(w, apierror.NotFound("reservation"))
		return
	}

	if err := h.ReservationService.Delete(r.Context(), id); err != nil {
		h.Logger.Error("API", fmt.Sprintf("DeleteReservation: %v", err))
		apierror.Write(w, err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("DeleteReservation: reservation %d soft-deleted", id))

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetReservationQR(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		apierror.Write(w, apierror.NotFound("reservation"))
		return
	}

	png, err := h.ReservationService.ConfirmationQR(r.Context(), id)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetReservationQR: %v", err))
		apierror.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func parseID(r *http.Request, param string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, param), 10, 64)
}
