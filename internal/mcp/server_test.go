package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/mcp-go/middleware"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/felixgeelhaar/shiftgrid/internal/app"
	"github.com/felixgeelhaar/shiftgrid/pkg/config"
	"github.com/felixgeelhaar/shiftgrid/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	_, err := NewServer(nil, "")
	require.Error(t, err)

	c, err := app.NewContainer(context.Background(), &config.Config{
		AppEnv:                 "test",
		DatabaseDriver:         "sqlite",
		SQLitePath:             ":memory:",
		OutboxBatchSize:        10,
		OutboxMaxRetries:       3,
		PublishBreakerFailures: 3,
		PublishBreakerTimeout:  time.Second,
	}, observability.Discard())
	require.NoError(t, err)
	t.Cleanup(c.Close)

	srv, err := NewServer(c, "1.2.3")
	require.NoError(t, err)

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)
	assert.NotEmpty(t, tools)
}

func TestFieldsToArgs(t *testing.T) {
	args := fieldsToArgs([]middleware.Field{{Key: "tool", Value: "timeline.paint"}, {Key: "ms", Value: 3}})
	assert.Equal(t, []any{"tool", "timeline.paint", "ms", 3}, args)
}
