package cli

import (
	"errors"
	"strings"

	internalApp "github.com/felixgeelhaar/shiftgrid/internal/app"
	bookingCommands "github.com/felixgeelhaar/shiftgrid/internal/booking/application/commands"
	bookingQueries "github.com/felixgeelhaar/shiftgrid/internal/booking/application/queries"
	timelineCommands "github.com/felixgeelhaar/shiftgrid/internal/timeline/application/commands"
	timelineQueries "github.com/felixgeelhaar/shiftgrid/internal/timeline/application/queries"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/application/services"
)

// ErrNotInitialized is returned by commands run without a wired App.
var ErrNotInitialized = errors.New("application not initialized - database connection required")

// App holds the CLI application dependencies.
type App struct {
	Container *internalApp.Container
	Catalog   *services.Catalog

	// Timeline Command Handlers
	PaintCellHandler  *timelineCommands.PaintCellHandler
	UndoPaintHandler  *timelineCommands.UndoPaintHandler
	ClearDraftHandler *timelineCommands.ClearDraftHandler

	// Timeline Query Handlers
	GetDayLayoutHandler        *timelineQueries.GetDayLayoutHandler
	ComputeSegmentsHandler     *timelineQueries.ComputeSegmentsHandler
	ResolvePaintPreviewHandler *timelineQueries.ResolvePaintPreviewHandler

	// Booking Command Handlers
	CreateBookingHandler       *bookingCommands.CreateBookingHandler
	CancelBookingHandler       *bookingCommands.CancelBookingHandler
	UpdateBookingStatusHandler *bookingCommands.UpdateBookingStatusHandler

	// Booking Query Handlers
	GetBookingHandler        *bookingQueries.GetBookingHandler
	ListBookingsHandler      *bookingQueries.ListBookingsHandler
	CheckAvailabilityHandler *bookingQueries.CheckAvailabilityHandler
}

// NewApp creates a new CLI application from a wired container.
func NewApp(c *internalApp.Container) *App {
	return &App{
		Container:                  c,
		Catalog:                    c.Catalog,
		PaintCellHandler:           c.PaintCellHandler,
		UndoPaintHandler:           c.UndoPaintHandler,
		ClearDraftHandler:          c.ClearDraftHandler,
		GetDayLayoutHandler:        c.GetDayLayoutHandler,
		ComputeSegmentsHandler:     c.ComputeSegmentsHandler,
		ResolvePaintPreviewHandler: c.ResolvePaintPreviewHandler,
		CreateBookingHandler:       c.CreateBookingHandler,
		CancelBookingHandler:       c.CancelBookingHandler,
		UpdateBookingStatusHandler: c.UpdateBookingStatusHandler,
		GetBookingHandler:          c.GetBookingHandler,
		ListBookingsHandler:        c.ListBookingsHandler,
		CheckAvailabilityHandler:   c.CheckAvailabilityHandler,
	}
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

// SplitList splits a comma separated flag value, dropping blanks.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
