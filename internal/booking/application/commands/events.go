package commands

import (
	"context"

	"github.com/felixgeelhaar/shiftgrid/internal/booking/domain"
	sharedApplication "github.com/felixgeelhaar/shiftgrid/internal/shared/application"
	"github.com/felixgeelhaar/shiftgrid/internal/shared/infrastructure/outbox"
)

// saveWithEvents persists booking and writes its pending events to the
// outbox inside the transaction carried by txCtx.
func saveWithEvents(txCtx context.Context, repo domain.Repository, outboxRepo outbox.Repository, booking *domain.Booking, actorID string) error {
	if err := repo.Save(txCtx, booking); err != nil {
		return err
	}

	events := booking.DomainEvents()
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(txCtx, actorID))

	msgs, err := outbox.NewMessages(events)
	if err != nil {
		return err
	}
	if err := outboxRepo.SaveBatch(txCtx, msgs); err != nil {
		return err
	}
	booking.ClearDomainEvents()
	return nil
}
