package timeline

import (
	"github.com/felixgeelhaar/shiftgrid/adapter/cli"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/application/queries"
)

func previewQuery(cell string) queries.ResolvePaintPreviewQuery {
	return queries.ResolvePaintPreviewQuery{
		LocationID: locationID,
		SessionID:  sessionID,
		Cell:       cell,
		EntityIDs:  cli.SplitList(paintEntities),
		Kind:       paintKind,
		TemplateID: paintTemplate,
		Label:      paintLabel,
		Mode:       paintMode,
	}
}
