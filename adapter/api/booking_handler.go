package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	bookingCommands "github.com/felixgeelhaar/shiftgrid/internal/booking/application/commands"
	bookingQueries "github.com/felixgeelhaar/shiftgrid/internal/booking/application/queries"
	"github.com/felixgeelhaar/shiftgrid/pkg/observability"
	"github.com/google/uuid"
)

// BookingHandler serves the booking endpoints.
type BookingHandler struct {
	create       *bookingCommands.CreateBookingHandler
	cancel       *bookingCommands.CancelBookingHandler
	updateStatus *bookingCommands.UpdateBookingStatusHandler
	get          *bookingQueries.GetBookingHandler
	list         *bookingQueries.ListBookingsHandler
	availability *bookingQueries.CheckAvailabilityHandler
	logger       *slog.Logger
}

// BookingHandlerConfig holds dependencies for the booking handler.
type BookingHandlerConfig struct {
	CreateBooking       *bookingCommands.CreateBookingHandler
	CancelBooking       *bookingCommands.CancelBookingHandler
	UpdateBookingStatus *bookingCommands.UpdateBookingStatusHandler
	GetBooking          *bookingQueries.GetBookingHandler
	ListBookings        *bookingQueries.ListBookingsHandler
	CheckAvailability   *bookingQueries.CheckAvailabilityHandler
	Logger              *slog.Logger
}

// NewBookingHandler creates a new booking handler.
func NewBookingHandler(cfg BookingHandlerConfig) *BookingHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &BookingHandler{
		create:       cfg.CreateBooking,
		cancel:       cfg.CancelBooking,
		updateStatus: cfg.UpdateBookingStatus,
		get:          cfg.GetBooking,
		list:         cfg.ListBookings,
		availability: cfg.CheckAvailability,
		logger:       cfg.Logger,
	}
}

// CreateBookingRequest is the body of POST /api/v1/bookings.
type CreateBookingRequest struct {
	LocationID string    `json:"location_id"`
	EmployeeID string    `json:"employee_id,omitempty"`
	ResourceID string    `json:"resource_id,omitempty"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Status     string    `json:"status,omitempty"`
	Notes      string    `json:"notes,omitempty"`
}

// StatusRequest is the body of the cancel and status endpoints.
type StatusRequest struct {
	Status string `json:"status,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func actorOf(r *http.Request) string {
	if actor := observability.ActorFromContext(r.Context()); actor != "" {
		return actor
	}
	return "api"
}

func (h *BookingHandler) bookingID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("bookingID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid booking id")
		return uuid.Nil, false
	}
	return id, true
}

// Create handles POST /api/v1/bookings
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.create.Handle(r.Context(), bookingCommands.CreateBookingCommand{
		LocationID: req.LocationID,
		EmployeeID: req.EmployeeID,
		ResourceID: req.ResourceID,
		Start:      req.Start,
		End:        req.End,
		Status:     req.Status,
		Notes:      req.Notes,
		ActorID:    actorOf(r),
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	booking, err := h.get.Handle(r.Context(), bookingQueries.GetBookingQuery{BookingID: result.BookingID})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Location", "/api/v1/bookings/"+result.BookingID.String())
	writeJSON(w, http.StatusCreated, booking)
}

// Get handles GET /api/v1/bookings/{bookingID}
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bookingID(w, r)
	if !ok {
		return
	}
	booking, err := h.get.Handle(r.Context(), bookingQueries.GetBookingQuery{BookingID: id})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

// List handles GET /api/v1/bookings?location_id=...
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	from, err := parseTimeParam(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	to, err := parseTimeParam(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	q := r.URL.Query()
	query := bookingQueries.ListBookingsQuery{
		LocationID: q.Get("location_id"),
		EmployeeID: q.Get("employee_id"),
		ResourceID: q.Get("resource_id"),
		From:       from,
		To:         to,
		Limit:      parseIntParam(r, "limit", 0),
	}
	if statuses := q.Get("status"); statuses != "" {
		query.Statuses = strings.Split(statuses, ",")
	}

	bookings, err := h.list.Handle(r.Context(), query)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	if bookings == nil {
		bookings = []bookingQueries.BookingDTO{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

// Cancel handles POST /api/v1/bookings/{bookingID}/cancel
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bookingID(w, r)
	if !ok {
		return
	}
	var req StatusRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}

	err := h.cancel.Handle(r.Context(), bookingCommands.CancelBookingCommand{
		BookingID: id,
		Reason:    req.Reason,
		ActorID:   actorOf(r),
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateStatus handles PUT /api/v1/bookings/{bookingID}/status
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bookingID(w, r)
	if !ok {
		return
	}
	var req StatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	status, err := h.updateStatus.Handle(r.Context(), bookingCommands.UpdateBookingStatusCommand{
		BookingID: id,
		Status:    req.Status,
		Reason:    req.Reason,
		ActorID:   actorOf(r),
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id.String(), "status": string(status)})
}

// Availability handles GET /api/v1/availability
func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	start, err := parseTimeParam(r, "start")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	end, err := parseTimeParam(r, "end")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	q := r.URL.Query()
	query := bookingQueries.CheckAvailabilityQuery{
		EmployeeID: q.Get("employee_id"),
		ResourceID: q.Get("resource_id"),
		Start:      start,
		End:        end,
	}
	if exclude := q.Get("exclude_booking_id"); exclude != "" {
		id, err := uuid.Parse(exclude)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "invalid exclude_booking_id")
			return
		}
		query.ExcludeBookingID = id
	}

	result, err := h.availability.Handle(r.Context(), query)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
