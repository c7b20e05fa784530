package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/prasanth45bit/travella-server-v2/internal/adapters/observability"
	"github.com/prasanth45bit/travella-server-v2/internal/app"
	"github.com/prasanth45bit/travella-server-v2/internal/domain"
)

type Handlers struct {
	B *app.BookingService
	Q *app.QueryService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers, verify domain.TokenVerifier) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1/bookings", func(r chi.Router) {
		r.Use(RequireAuth(verify))
		r.Post("/", h.createBooking)
		r.Get("/", h.listBookings)
		r.Get("/{id}", h.getBooking)
		r.Patch("/{id}/status", h.updateStatus)
		r.Post("/{id}/cancel", h.cancelBooking)
		r.Delete("/{id}", h.deleteBooking)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError is the single place tagged domain errors become status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeProblem(w, http.StatusBadRequest, "Invalid Input", err.Error())
	case errors.Is(err, domain.ErrAuth):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
	case errors.Is(err, domain.ErrForbidden):
		writeProblem(w, http.StatusForbidden, "Forbidden", "not allowed for this booking")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "booking not found")
	case errors.Is(err, domain.ErrUnknownReference):
		writeProblem(w, http.StatusUnprocessableEntity, "Unknown Reference", err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		writeProblem(w, http.StatusConflict, "Invalid Transition", err.Error())
	default:
		log.Error().Err(err).Msg("internal error")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// ---- request payloads ----

const dateLayout = "2006-01-02"

type createBookingRequest struct {
	DestinationID string                     `json:"destinationId"`
	Guests        int                        `json:"guests"`
	StartDate     string                     `json:"startDate"`
	EndDate       string                     `json:"endDate"`
	CustomPlan    []app.RawDayPlan           `json:"customPlan"`
	CarRental     *app.RawTransportSelection `json:"carRental,omitempty"`
	// A client-sent totalCost is deliberately not read; the server always
	// recomputes the total.
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// ---- handlers ----

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Input", "malformed JSON body")
		return
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Input", "startDate must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Input", "endDate must be YYYY-MM-DD")
		return
	}

	b, err := h.B.Create(r.Context(), p, app.CreateBookingInput{
		DestinationID: req.DestinationID,
		Guests:        req.Guests,
		Stay:          domain.StayWindow{Start: start, End: end},
		Plan:          req.CustomPlan,
		Transport:     req.CarRental,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	observability.ObserveBooking("created")
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	out, err := h.Q.ListBookings(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	if out == nil {
		out = []domain.Booking{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	view, err := h.Q.GetBooking(r.Context(), p, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	etag, body := calcETagAndBody(view)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getBooking body")
	}
}

func (h *Handlers) updateStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Input", "malformed JSON body")
		return
	}
	b, err := h.B.UpdateStatus(r.Context(), p, chi.URLParam(r, "id"), domain.BookingStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	observability.ObserveBooking(string(b.Status))
	writeJSON(w, http.StatusOK, b)
}

func (h *Handlers) cancelBooking(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	if err := h.B.Cancel(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	observability.ObserveBooking("cancelled")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) deleteBooking(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	if err := h.B.Delete(r.Context(), p, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	observability.ObserveBooking("deleted")
	w.WriteHeader(http.StatusNoContent)
}
