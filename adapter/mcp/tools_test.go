package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/felixgeelhaar/shiftgrid/internal/app"
	timelineDomain "github.com/felixgeelhaar/shiftgrid/internal/timeline/domain"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/layout"
	"github.com/felixgeelhaar/shiftgrid/pkg/config"
	"github.com/felixgeelhaar/shiftgrid/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeps(t *testing.T) ToolDependencies {
	t.Helper()
	cfg := &config.Config{
		AppEnv:                 "test",
		DatabaseDriver:         "sqlite",
		SQLitePath:             ":memory:",
		DraftHistoryLimit:      10,
		OutboxBatchSize:        10,
		OutboxMaxRetries:       3,
		PublishBreakerFailures: 3,
		PublishBreakerTimeout:  time.Second,
	}
	c, err := app.NewContainer(context.Background(), cfg, observability.Discard())
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return ToolDependencies{Container: c}
}

func TestRegisterTools_ListTools(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{
		Name:    "test",
		Version: "1.0.0",
		Capabilities: mcp.Capabilities{
			Tools: true,
		},
	})

	require.NoError(t, RegisterTools(srv, newTestDeps(t)))

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)

	names := make(map[any]bool, len(tools))
	for _, tool := range tools {
		names[tool["name"]] = true
	}
	for _, want := range []string{
		"timeline.paint", "timeline.preview", "timeline.undo", "timeline.clear",
		"timeline.layout", "timeline.segments",
		"booking.check", "booking.create", "booking.get", "booking.list",
		"booking.cancel", "booking.status",
	} {
		assert.True(t, names[want], "%s should be registered", want)
	}
}

func TestRegisterTools_RequiresContainer(t *testing.T) {
	srv := mcp.NewServer(mcp.ServerInfo{Name: "test", Version: "1.0.0"})
	assert.Error(t, RegisterTools(nil, ToolDependencies{}))
	assert.Error(t, RegisterTools(srv, ToolDependencies{}))
}

func TestTimelineTools(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()

	preview, err := deps.preview(ctx, paintInput{
		LocationID: "loc-1",
		SessionID:  "sess-1",
		Cell:       "2024-03-04|1",
		EntityIDs:  []string{"e1"},
		Kind:       "work",
	})
	require.NoError(t, err)
	assert.True(t, preview.Resolved)
	assert.True(t, preview.WouldApply)
	assert.False(t, preview.WouldErase)

	painted, err := deps.paint(ctx, paintInput{
		LocationID: "loc-1",
		SessionID:  "sess-1",
		Cell:       "2024-03-04|1",
		EntityIDs:  []string{"e1"},
		Kind:       "work",
	})
	require.NoError(t, err)
	assert.True(t, painted.Applied)
	assert.Equal(t, []string{"2024-03-04|1"}, painted.AffectedCells)
	assert.Equal(t, 1, painted.Draft.Version)

	view, err := deps.dayLayout(ctx, layoutInput{LocationID: "loc-1", SessionID: "sess-1", DayKey: "2024-03-04"})
	require.NoError(t, err)
	require.Len(t, view.Segments, 1)
	assert.Equal(t, 1.0, view.Segments[0].Start)
	assert.Equal(t, 2.0, view.Segments[0].End)

	undone, err := deps.undo(ctx, draftInput{LocationID: "loc-1", SessionID: "sess-1"})
	require.NoError(t, err)
	assert.Empty(t, undone.Blocks)
	assert.NotNil(t, undone.Blocks)
	assert.Equal(t, 2, undone.Version)

	_, err = deps.undo(ctx, draftInput{LocationID: "loc-1", SessionID: "sess-1"})
	assert.ErrorIs(t, err, timelineDomain.ErrNothingToUndo)

	cleared, err := deps.clear(ctx, draftInput{LocationID: "loc-1", SessionID: "sess-1"})
	require.NoError(t, err)
	assert.Equal(t, true, cleared["cleared"])

	_, err = deps.paint(ctx, paintInput{LocationID: "loc:1", SessionID: "sess-1", Cell: "2024-03-04|1", Kind: "work"})
	assert.ErrorIs(t, err, timelineDomain.ErrInvalidDraftKey)
}

func TestSegmentsTool(t *testing.T) {
	deps := newTestDeps(t)

	out, err := deps.segments(context.Background(), segmentsInput{
		Blocks: []layout.SegmentBlock{
			{Key: "a", Name: "Alice", Start: 0, End: 4},
			{Key: "b", Name: "Bob", Start: 2, End: 6},
		},
	})
	require.NoError(t, err)
	require.Len(t, out.Segments, 3)
	assert.Len(t, out.Segments[1].Columns, 2)
}

func TestBookingTools(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	rfc := func(t time.Time) string { return t.Format(time.RFC3339) }

	created, err := deps.createBooking(ctx, bookingCreateInput{
		LocationID: "loc-1",
		EmployeeID: "e1",
		Start:      rfc(start),
		End:        rfc(start.Add(time.Hour)),
	})
	require.NoError(t, err)
	require.True(t, created.Created)
	require.NotNil(t, created.Booking)
	assert.Equal(t, "booked", created.Booking.Status)
	id := created.Booking.ID.String()

	clash, err := deps.createBooking(ctx, bookingCreateInput{
		LocationID: "loc-1",
		EmployeeID: "e1",
		Start:      rfc(start.Add(30 * time.Minute)),
		End:        rfc(start.Add(2 * time.Hour)),
	})
	require.NoError(t, err)
	assert.False(t, clash.Created)
	require.NotNil(t, clash.Conflict)
	assert.Equal(t, "employee", clash.Conflict.OwnerDimension)
	assert.Equal(t, created.Booking.ID, clash.Conflict.ExistingBookingID)

	avail, err := deps.checkAvailability(ctx, bookingCheckInput{
		EmployeeID: "e1",
		Start:      rfc(start),
		End:        rfc(start.Add(time.Hour)),
	})
	require.NoError(t, err)
	assert.False(t, avail.Available)

	avail, err = deps.checkAvailability(ctx, bookingCheckInput{
		EmployeeID:       "e1",
		Start:            rfc(start),
		End:              rfc(start.Add(time.Hour)),
		ExcludeBookingID: id,
	})
	require.NoError(t, err)
	assert.True(t, avail.Available)

	list, err := deps.listBookings(ctx, bookingListInput{LocationID: "loc-1", Status: "booked, pending"})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	got, err := deps.getBooking(ctx, bookingIDInput{BookingID: id})
	require.NoError(t, err)
	assert.Equal(t, "e1", got.EmployeeID)

	cancelled, err := deps.cancelBooking(ctx, bookingIDInput{BookingID: id, Reason: "sick"})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled["status"])

	_, err = deps.updateBookingStatus(ctx, bookingStatusInput{BookingID: id, Status: "completed"})
	assert.Error(t, err)

	avail, err = deps.checkAvailability(ctx, bookingCheckInput{
		EmployeeID: "e1",
		Start:      rfc(start),
		End:        rfc(start.Add(time.Hour)),
	})
	require.NoError(t, err)
	assert.True(t, avail.Available)
}

func TestBookingTools_InputErrors(t *testing.T) {
	deps := newTestDeps(t)
	ctx := context.Background()

	_, err := deps.createBooking(ctx, bookingCreateInput{LocationID: "loc-1", EmployeeID: "e1", Start: "tomorrow", End: "2024-03-04T10:00:00Z"})
	assert.ErrorContains(t, err, "invalid start")

	_, err = deps.checkAvailability(ctx, bookingCheckInput{EmployeeID: "e1", End: "2024-03-04T10:00:00Z"})
	assert.ErrorContains(t, err, "start is required")

	_, err = deps.getBooking(ctx, bookingIDInput{})
	assert.ErrorContains(t, err, "id is required")

	_, err = deps.cancelBooking(ctx, bookingIDInput{BookingID: "nope"})
	assert.ErrorContains(t, err, "invalid id")
}
