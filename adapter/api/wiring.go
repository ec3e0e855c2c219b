package api

import (
	"github.com/felixgeelhaar/shiftgrid/internal/app"
)

// NewServerFromContainer wires the handlers of c into a server.
func NewServerFromContainer(cfg ServerConfig, c *app.Container) *Server {
	timeline := NewTimelineHandler(TimelineHandlerConfig{
		PaintCell:           c.PaintCellHandler,
		UndoPaint:           c.UndoPaintHandler,
		ClearDraft:          c.ClearDraftHandler,
		GetDayLayout:        c.GetDayLayoutHandler,
		ComputeSegments:     c.ComputeSegmentsHandler,
		ResolvePaintPreview: c.ResolvePaintPreviewHandler,
		Catalog:             c.Catalog,
		Logger:              c.Logger,
	})
	bookings := NewBookingHandler(BookingHandlerConfig{
		CreateBooking:       c.CreateBookingHandler,
		CancelBooking:       c.CancelBookingHandler,
		UpdateBookingStatus: c.UpdateBookingStatusHandler,
		GetBooking:          c.GetBookingHandler,
		ListBookings:        c.ListBookingsHandler,
		CheckAvailability:   c.CheckAvailabilityHandler,
		Logger:              c.Logger,
	})
	return NewServer(cfg, timeline, bookings, c.Health, c.Logger)
}
