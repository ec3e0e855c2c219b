package queries

import (
	"context"

	"github.com/felixgeelhaar/shiftgrid/internal/booking/domain"
	"github.com/google/uuid"
)

type GetBookingQuery struct {
	BookingID uuid.UUID
}

type GetBookingHandler struct {
	repo domain.Repository
}

func NewGetBookingHandler(repo domain.Repository) *GetBookingHandler {
	return &GetBookingHandler{repo: repo}
}

func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (*BookingDTO, error) {
	b, err := h.repo.FindByID(ctx, q.BookingID)
	if err != nil {
		return nil, err
	}
	dto := toDTO(b)
	return &dto, nil
}
