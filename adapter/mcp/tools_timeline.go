package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"
	timelineCommands "github.com/felixgeelhaar/shiftgrid/internal/timeline/application/commands"
	timelineQueries "github.com/felixgeelhaar/shiftgrid/internal/timeline/application/queries"
	timelineDomain "github.com/felixgeelhaar/shiftgrid/internal/timeline/domain"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/layout"
	"github.com/felixgeelhaar/shiftgrid/pkg/observability"
)

type draftInput struct {
	LocationID string `json:"location_id" jsonschema:"required"`
	SessionID  string `json:"session_id" jsonschema:"required"`
}

type paintInput struct {
	LocationID      string   `json:"location_id" jsonschema:"required"`
	SessionID       string   `json:"session_id" jsonschema:"required"`
	Cell            string   `json:"cell" jsonschema:"required"`
	EntityIDs       []string `json:"entity_ids" jsonschema:"required"`
	Kind            string   `json:"kind,omitempty"`
	TemplateID      string   `json:"template_id,omitempty"`
	Label           string   `json:"label,omitempty"`
	Mode            string   `json:"mode,omitempty"`
	ExpectedVersion int      `json:"expected_version,omitempty"`
}

type layoutInput struct {
	LocationID string `json:"location_id" jsonschema:"required"`
	SessionID  string `json:"session_id" jsonschema:"required"`
	DayKey     string `json:"day_key" jsonschema:"required"`
}

type segmentsInput struct {
	Blocks        []layout.SegmentBlock `json:"blocks" jsonschema:"required"`
	MaxColumns    *int                  `json:"max_columns,omitempty"`
	ClampMin      *float64              `json:"clamp_min,omitempty"`
	ClampMax      *float64              `json:"clamp_max,omitempty"`
	MergeAdjacent *bool                 `json:"merge_adjacent,omitempty"`
}

type draftOutput struct {
	Version   int                              `json:"version"`
	UndoDepth int                              `json:"undo_depth"`
	Blocks    []timelineDomain.AssignmentBlock `json:"blocks"`
}

type paintOutput struct {
	Applied       bool                      `json:"applied"`
	Erased        bool                      `json:"erased"`
	DayKey        string                    `json:"day_key,omitempty"`
	AffectedCells []string                  `json:"affected_cells"`
	Assignment    timelineDomain.Assignment `json:"assignment"`
	Draft         draftOutput               `json:"draft"`
}

type segmentsOutput struct {
	Segments []layout.Segment `json:"segments"`
}

func toDraftOutput(d timelineDomain.Draft) draftOutput {
	blocks := d.Blocks
	if blocks == nil {
		blocks = []timelineDomain.AssignmentBlock{}
	}
	return draftOutput{Version: d.Version, UndoDepth: d.UndoDepth, Blocks: blocks}
}

func registerTimelineTools(srv *mcp.Server, deps ToolDependencies) error {
	srv.Tool("timeline.paint").
		Description("Paint a cell of a draft schedule with a shift kind or template for the selected employees or resources").
		Handler(deps.paint)

	srv.Tool("timeline.preview").
		Description("Resolve what a paint gesture would do without changing the draft").
		Handler(deps.preview)

	srv.Tool("timeline.undo").
		Description("Undo the most recent paint on a draft").
		Handler(deps.undo)

	srv.Tool("timeline.clear").
		Description("Discard a draft and its undo history").
		Handler(deps.clear)

	srv.Tool("timeline.layout").
		Description("Lay out one day of a draft as time segments with side-by-side columns").
		Handler(deps.dayLayout)

	srv.Tool("timeline.segments").
		Description("Compute time segments and columns for arbitrary blocks").
		Handler(deps.segments)

	return nil
}

func (d ToolDependencies) paint(ctx context.Context, input paintInput) (*paintOutput, error) {
	ctx = observability.WithActor(observability.NewRequestContext(ctx, ""), d.actor())
	result, err := d.Container.PaintCellHandler.Handle(ctx, timelineCommands.PaintCellCommand{
		LocationID:      input.LocationID,
		SessionID:       input.SessionID,
		Cell:            input.Cell,
		EntityIDs:       input.EntityIDs,
		Kind:            input.Kind,
		TemplateID:      input.TemplateID,
		Label:           input.Label,
		Mode:            input.Mode,
		ExpectedVersion: input.ExpectedVersion,
	})
	if err != nil {
		return nil, err
	}
	affected := result.AffectedCells
	if affected == nil {
		affected = []string{}
	}
	return &paintOutput{
		Applied:       result.Applied,
		Erased:        result.Erased,
		DayKey:        result.DayKey,
		AffectedCells: affected,
		Assignment:    result.Assignment,
		Draft:         toDraftOutput(result.Draft),
	}, nil
}

func (d ToolDependencies) preview(ctx context.Context, input paintInput) (*timelineQueries.PaintPreview, error) {
	return d.Container.ResolvePaintPreviewHandler.Handle(ctx, timelineQueries.ResolvePaintPreviewQuery{
		LocationID: input.LocationID,
		SessionID:  input.SessionID,
		Cell:       input.Cell,
		EntityIDs:  input.EntityIDs,
		Kind:       input.Kind,
		TemplateID: input.TemplateID,
		Label:      input.Label,
		Mode:       input.Mode,
	})
}

func (d ToolDependencies) undo(ctx context.Context, input draftInput) (*draftOutput, error) {
	draft, err := d.Container.UndoPaintHandler.Handle(ctx, timelineCommands.UndoPaintCommand{
		LocationID: input.LocationID,
		SessionID:  input.SessionID,
	})
	if err != nil {
		return nil, err
	}
	out := toDraftOutput(draft)
	return &out, nil
}

func (d ToolDependencies) clear(ctx context.Context, input draftInput) (map[string]any, error) {
	err := d.Container.ClearDraftHandler.Handle(ctx, timelineCommands.ClearDraftCommand{
		LocationID: input.LocationID,
		SessionID:  input.SessionID,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"cleared": true}, nil
}

func (d ToolDependencies) dayLayout(ctx context.Context, input layoutInput) (*timelineQueries.DayLayoutView, error) {
	return d.Container.GetDayLayoutHandler.Handle(ctx, timelineQueries.GetDayLayoutQuery{
		LocationID: input.LocationID,
		SessionID:  input.SessionID,
		DayKey:     input.DayKey,
	})
}

func (d ToolDependencies) segments(ctx context.Context, input segmentsInput) (*segmentsOutput, error) {
	segments, err := d.Container.ComputeSegmentsHandler.Handle(ctx, timelineQueries.ComputeSegmentsQuery{
		Blocks:        input.Blocks,
		MaxColumns:    input.MaxColumns,
		ClampMin:      input.ClampMin,
		ClampMax:      input.ClampMax,
		MergeAdjacent: input.MergeAdjacent,
	})
	if err != nil {
		return nil, err
	}
	return &segmentsOutput{Segments: segments}, nil
}
