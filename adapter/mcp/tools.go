package mcp

import (
	"errors"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/shiftgrid/internal/app"
)

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	Container *app.Container
	// Actor is recorded on booking events raised through MCP.
	Actor string
}

func (d ToolDependencies) actor() string {
	if d.Actor == "" {
		return "mcp"
	}
	return d.Actor
}

// RegisterTools registers the timeline and booking tools on srv.
func RegisterTools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.Container == nil {
		return errors.New("container is required")
	}

	if err := registerTimelineTools(srv, deps); err != nil {
		return err
	}
	if err := registerBookingTools(srv, deps); err != nil {
		return err
	}

	return nil
}
