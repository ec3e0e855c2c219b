package subscribers

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/shiftgrid/internal/booking/domain"
	"github.com/felixgeelhaar/shiftgrid/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/shiftgrid/pkg/observability"
)

// ActivitySubscriber writes an audit line and a metric for every booking
// event that reaches the bus.
type ActivitySubscriber struct {
	logger  *slog.Logger
	metrics observability.Metrics
}

func NewActivitySubscriber(logger *slog.Logger, metrics observability.Metrics) *ActivitySubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &ActivitySubscriber{logger: logger.With("component", "booking_activity"), metrics: metrics}
}

func (s *ActivitySubscriber) EventTypes() []string {
	return []string{
		domain.RoutingKeyBookingCreated,
		domain.RoutingKeyBookingCancelled,
		domain.RoutingKeyBookingStatusChanged,
	}
}

type createdPayload struct {
	LocationID string `json:"location_id"`
	EmployeeID string `json:"employee_id"`
	ResourceID string `json:"resource_id"`
	Status     string `json:"status"`
}

type statusPayload struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// Handle never fails on a malformed payload; the audit line is best effort
// and redelivery would not fix it.
func (s *ActivitySubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	ctx = observability.WithCorrelationID(ctx, event.Metadata.CorrelationID.String())
	s.metrics.Counter(observability.MetricEventsConsumed, 1, observability.T("routing_key", event.RoutingKey))

	attrs := []any{
		"booking_id", event.AggregateID,
		"event_id", event.EventID,
		"occurred_at", event.OccurredAt,
	}
	if event.Metadata.ActorID != "" {
		attrs = append(attrs, observability.ActorKey, event.Metadata.ActorID)
	}

	switch event.RoutingKey {
	case domain.RoutingKeyBookingCreated:
		var p createdPayload
		if err := event.DecodePayload(&p); err == nil {
			attrs = append(attrs,
				observability.LocationKey, p.LocationID,
				"employee_id", p.EmployeeID,
				"resource_id", p.ResourceID,
				"status", p.Status,
			)
		}
		s.logger.InfoContext(ctx, "booking created", attrs...)
	case domain.RoutingKeyBookingStatusChanged:
		var p statusPayload
		if err := event.DecodePayload(&p); err == nil {
			attrs = append(attrs, "from", p.From, "to", p.To, "reason", p.Reason)
		}
		s.logger.InfoContext(ctx, "booking status changed", attrs...)
	case domain.RoutingKeyBookingCancelled:
		s.logger.InfoContext(ctx, "booking cancelled", attrs...)
	default:
		s.logger.WarnContext(ctx, "unexpected routing key", "routing_key", event.RoutingKey)
	}
	return nil
}
