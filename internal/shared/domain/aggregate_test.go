package domain_test

import (
	"testing"

	"github.com/felixgeelhaar/shiftgrid/internal/shared/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type testAggregate struct {
	domain.BaseAggregateRoot
}

type testEvent struct {
	domain.BaseEvent
}

func TestBaseAggregateRoot_Events(t *testing.T) {
	agg := &testAggregate{BaseAggregateRoot: domain.NewBaseAggregateRoot()}
	assert.NotEqual(t, uuid.Nil, agg.ID())
	assert.Empty(t, agg.DomainEvents())

	first := testEvent{BaseEvent: domain.NewBaseEvent(agg.ID(), "Test", "test.created")}
	second := testEvent{BaseEvent: domain.NewBaseEvent(agg.ID(), "Test", "test.updated")}
	agg.AddDomainEvent(first)
	agg.AddDomainEvent(second)

	events := agg.DomainEvents()
	assert.Len(t, events, 2)
	assert.Equal(t, "test.created", events[0].RoutingKey())
	assert.Equal(t, agg.ID(), events[1].AggregateID())

	agg.ClearDomainEvents()
	assert.Empty(t, agg.DomainEvents())
}

func TestBaseAggregateRoot_Version(t *testing.T) {
	agg := &testAggregate{BaseAggregateRoot: domain.NewBaseAggregateRoot()}
	agg.IncrementVersion()
	agg.IncrementVersion()
	assert.Equal(t, 2, agg.Version())

	restored := domain.RehydrateBaseAggregateRoot(domain.RehydrateBaseEntity(agg.ID(), agg.CreatedAt(), agg.UpdatedAt()), 7)
	assert.Equal(t, 7, restored.Version())
	assert.Equal(t, agg.ID(), restored.ID())
}

func TestBaseEvent_Metadata(t *testing.T) {
	ev := testEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Test", "test.created")}
	meta := domain.EventMetadata{CorrelationID: uuid.New(), ActorID: "emp1"}
	ev.SetMetadata(meta)

	assert.Equal(t, meta, ev.Metadata())
	assert.NotEqual(t, uuid.Nil, ev.EventID())
	assert.False(t, ev.OccurredAt().IsZero())
}
