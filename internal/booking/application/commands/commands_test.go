package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/shiftgrid/internal/booking/domain"
	"github.com/felixgeelhaar/shiftgrid/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/shiftgrid/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) Save(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) FindOccupyingOverlaps(ctx context.Context, owner domain.OwnerKey, start, end time.Time) ([]*domain.Booking, error) {
	args := m.Called(ctx, owner, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

func (m *mockBookingRepo) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Booking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Booking), args.Error(1)
}

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Save(ctx context.Context, msg *outbox.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockOutboxRepo) SaveBatch(ctx context.Context, msgs []*outbox.Message) error {
	return m.Called(ctx, msgs).Error(0)
}

func (m *mockOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, err string, next time.Time) error {
	return m.Called(ctx, id, err, next).Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string) error {
	return m.Called(ctx, id, reason).Error(0)
}

func (m *mockOutboxRepo) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
}

func expectTx(uow *mockUnitOfWork, ctx context.Context, commit bool) {
	uow.On("Begin", ctx).Return(ctx, nil)
	if commit {
		uow.On("Commit", ctx).Return(nil)
	} else {
		uow.On("Rollback", ctx).Return(nil)
	}
}

func existingBooking(t *testing.T, employee, resource string, start, end time.Time, status domain.Status) *domain.Booking {
	t.Helper()
	b, err := domain.NewBooking(domain.NewBookingParams{
		LocationID: "loc-1",
		EmployeeID: employee,
		ResourceID: resource,
		Start:      start,
		End:        end,
		Status:     domain.StatusBooked,
	})
	require.NoError(t, err)
	if status != domain.StatusBooked {
		require.NoError(t, b.ChangeStatus(status, ""))
	}
	b.ClearDomainEvents()
	return b
}

func TestCreateBooking_Success(t *testing.T) {
	ctx := context.Background()
	repo, ob, uow := new(mockBookingRepo), new(mockOutboxRepo), new(mockUnitOfWork)
	metrics := observability.NewInMemoryMetrics()
	handler := NewCreateBookingHandler(repo, ob, uow, observability.Discard(), metrics)

	expectTx(uow, ctx, true)
	repo.On("FindOccupyingOverlaps", ctx, domain.OwnerKey{Dimension: domain.DimensionEmployee, ID: "emp-1"}, at(10, 0), at(11, 0)).
		Return([]*domain.Booking{}, nil)
	repo.On("FindOccupyingOverlaps", ctx, domain.OwnerKey{Dimension: domain.DimensionResource, ID: "room-1"}, at(10, 0), at(11, 0)).
		Return([]*domain.Booking{}, nil)
	repo.On("Save", ctx, mock.AnythingOfType("*domain.Booking")).Return(nil)
	ob.On("SaveBatch", ctx, mock.MatchedBy(func(msgs []*outbox.Message) bool {
		return len(msgs) == 1 && msgs[0].RoutingKey == domain.RoutingKeyBookingCreated
	})).Return(nil)

	res, err := handler.Handle(ctx, CreateBookingCommand{
		LocationID: "loc-1",
		EmployeeID: "emp-1",
		ResourceID: "room-1",
		Start:      at(10, 0),
		End:        at(11, 0),
		ActorID:    "tester",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, res.BookingID)
	assert.Equal(t, domain.StatusBooked, res.Status)
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricBookingsCreated, observability.T("status", "booked")))

	repo.AssertExpectations(t)
	ob.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestCreateBooking_ConflictOnResource(t *testing.T) {
	ctx := context.Background()
	repo, ob, uow := new(mockBookingRepo), new(mockOutboxRepo), new(mockUnitOfWork)
	metrics := observability.NewInMemoryMetrics()
	handler := NewCreateBookingHandler(repo, ob, uow, observability.Discard(), metrics)

	other := existingBooking(t, "emp-2", "room-1", at(10, 30), at(12, 0), domain.StatusBooked)

	expectTx(uow, ctx, false)
	repo.On("FindOccupyingOverlaps", ctx, domain.OwnerKey{Dimension: domain.DimensionEmployee, ID: "emp-1"}, mock.Anything, mock.Anything).
		Return([]*domain.Booking{}, nil)
	repo.On("FindOccupyingOverlaps", ctx, domain.OwnerKey{Dimension: domain.DimensionResource, ID: "room-1"}, mock.Anything, mock.Anything).
		Return([]*domain.Booking{other}, nil)

	_, err := handler.Handle(ctx, CreateBookingCommand{
		LocationID: "loc-1",
		EmployeeID: "emp-1",
		ResourceID: "room-1",
		Start:      at(10, 0),
		End:        at(11, 0),
	})
	require.ErrorIs(t, err, domain.ErrBookingConflict)

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, domain.DimensionResource, conflict.Owner.Dimension)
	assert.Equal(t, other.ID(), conflict.ExistingID)
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricBookingConflicts, observability.T("dimension", "resource")))

	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	uow.AssertExpectations(t)
}

func TestCreateBooking_StorageArbiterConflict(t *testing.T) {
	ctx := context.Background()
	repo, ob, uow := new(mockBookingRepo), new(mockOutboxRepo), new(mockUnitOfWork)
	handler := NewCreateBookingHandler(repo, ob, uow, nil, nil)

	expectTx(uow, ctx, false)
	repo.On("FindOccupyingOverlaps", ctx, mock.Anything, mock.Anything, mock.Anything).Return([]*domain.Booking{}, nil)
	repo.On("Save", ctx, mock.Anything).Return(&domain.ConflictError{
		Owner: domain.OwnerKey{Dimension: domain.DimensionEmployee, ID: "emp-1"},
	})

	_, err := handler.Handle(ctx, CreateBookingCommand{
		LocationID: "loc-1",
		EmployeeID: "emp-1",
		Start:      at(9, 0),
		End:        at(10, 0),
	})
	assert.ErrorIs(t, err, domain.ErrBookingConflict)
	ob.AssertNotCalled(t, "SaveBatch", mock.Anything, mock.Anything)
}

func TestCreateBooking_Validation(t *testing.T) {
	handler := NewCreateBookingHandler(new(mockBookingRepo), new(mockOutboxRepo), new(mockUnitOfWork), nil, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		cmd  CreateBookingCommand
		want error
	}{
		{"end before start", CreateBookingCommand{LocationID: "l", EmployeeID: "e", Start: at(11, 0), End: at(10, 0)}, domain.ErrInvalidInterval},
		{"empty interval", CreateBookingCommand{LocationID: "l", EmployeeID: "e", Start: at(10, 0), End: at(10, 0)}, domain.ErrInvalidInterval},
		{"no owner", CreateBookingCommand{LocationID: "l", Start: at(10, 0), End: at(11, 0)}, domain.ErrNoOwner},
		{"no location", CreateBookingCommand{EmployeeID: "e", Start: at(10, 0), End: at(11, 0)}, domain.ErrLocationRequired},
		{"bad status", CreateBookingCommand{LocationID: "l", EmployeeID: "e", Start: at(10, 0), End: at(11, 0), Status: "maybe"}, domain.ErrInvalidStatus},
		{"terminal initial status", CreateBookingCommand{LocationID: "l", EmployeeID: "e", Start: at(10, 0), End: at(11, 0), Status: "completed"}, domain.ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Handle(ctx, tt.cmd)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCancelBooking(t *testing.T) {
	ctx := context.Background()
	repo, ob, uow := new(mockBookingRepo), new(mockOutboxRepo), new(mockUnitOfWork)
	handler := NewCancelBookingHandler(repo, ob, uow, nil, nil)

	b := existingBooking(t, "emp-1", "", at(9, 0), at(10, 0), domain.StatusBooked)

	expectTx(uow, ctx, true)
	repo.On("FindByID", ctx, b.ID()).Return(b, nil)
	repo.On("Save", ctx, b).Return(nil)
	ob.On("SaveBatch", ctx, mock.MatchedBy(func(msgs []*outbox.Message) bool {
		return len(msgs) == 2 &&
			msgs[0].RoutingKey == domain.RoutingKeyBookingCancelled &&
			msgs[1].RoutingKey == domain.RoutingKeyBookingStatusChanged
	})).Return(nil)

	require.NoError(t, handler.Handle(ctx, CancelBookingCommand{BookingID: b.ID(), Reason: "sick"}))
	assert.Equal(t, domain.StatusCancelled, b.Status())
	assert.Empty(t, b.DomainEvents())
	ob.AssertExpectations(t)
}

func TestCancelBooking_NotFound(t *testing.T) {
	ctx := context.Background()
	repo, uow := new(mockBookingRepo), new(mockUnitOfWork)
	handler := NewCancelBookingHandler(repo, new(mockOutboxRepo), uow, nil, nil)

	id := uuid.New()
	expectTx(uow, ctx, false)
	repo.On("FindByID", ctx, id).Return(nil, domain.ErrBookingNotFound)

	err := handler.Handle(ctx, CancelBookingCommand{BookingID: id})
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestUpdateBookingStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("complete", func(t *testing.T) {
		repo, ob, uow := new(mockBookingRepo), new(mockOutboxRepo), new(mockUnitOfWork)
		handler := NewUpdateBookingStatusHandler(repo, ob, uow, nil, nil)
		b := existingBooking(t, "emp-1", "", at(9, 0), at(10, 0), domain.StatusBooked)

		expectTx(uow, ctx, true)
		repo.On("FindByID", ctx, b.ID()).Return(b, nil)
		repo.On("Save", ctx, b).Return(nil)
		ob.On("SaveBatch", ctx, mock.Anything).Return(nil)

		got, err := handler.Handle(ctx, UpdateBookingStatusCommand{BookingID: b.ID(), Status: "completed"})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCompleted, got)
	})

	t.Run("terminal", func(t *testing.T) {
		repo, uow := new(mockBookingRepo), new(mockUnitOfWork)
		handler := NewUpdateBookingStatusHandler(repo, new(mockOutboxRepo), uow, nil, nil)
		b := existingBooking(t, "emp-1", "", at(9, 0), at(10, 0), domain.StatusCancelled)

		expectTx(uow, ctx, false)
		repo.On("FindByID", ctx, b.ID()).Return(b, nil)

		_, err := handler.Handle(ctx, UpdateBookingStatusCommand{BookingID: b.ID(), Status: "booked"})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("unknown status", func(t *testing.T) {
		handler := NewUpdateBookingStatusHandler(new(mockBookingRepo), new(mockOutboxRepo), new(mockUnitOfWork), nil, nil)
		_, err := handler.Handle(ctx, UpdateBookingStatusCommand{BookingID: uuid.New(), Status: "gone"})
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	})
}

func TestSaveWithEvents_OutboxFailureAborts(t *testing.T) {
	ctx := context.Background()
	repo, ob := new(mockBookingRepo), new(mockOutboxRepo)
	b := existingBooking(t, "emp-1", "", at(9, 0), at(10, 0), domain.StatusBooked)
	require.NoError(t, b.Cancel(""))

	boom := errors.New("disk full")
	repo.On("Save", ctx, b).Return(nil)
	ob.On("SaveBatch", ctx, mock.Anything).Return(boom)

	err := saveWithEvents(ctx, repo, ob, b, "")
	assert.ErrorIs(t, err, boom)
	assert.NotEmpty(t, b.DomainEvents(), "events stay pending when the outbox write fails")
}
