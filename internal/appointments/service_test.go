package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carevault/booking-platform/internal/apperr"
	"github.com/carevault/booking-platform/internal/pricing"
	"github.com/carevault/booking-platform/internal/slotlock"
)

type fakeEscrow struct {
	opened  map[string]float64
	openErr error
}

func (f *fakeEscrow) Open(_ context.Context, appointmentID string, amount float64) error {
	if f.openErr != nil {
		return f.openErr
	}
	if f.opened == nil {
		f.opened = make(map[string]float64)
	}
	f.opened[appointmentID] = amount
	return nil
}

func testClock() pricing.FixedClock {
	return pricing.FixedClock{Instant: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)}
}

func newTestService(t *testing.T, cutoff time.Duration) (*Service, *fakeEscrow) {
	t.Helper()
	clock := testClock()
	engine := pricing.NewEngine(pricing.DefaultConfig(), clock, nil)
	esc := &fakeEscrow{}
	svc := NewService(NewInMemoryRepository(), engine, slotlock.NewMemoryLocker(), esc, clock, cutoff, nil, nil)
	return svc, esc
}

func bookingReq() *BookingRequest {
	return &BookingRequest{
		PatientID:          "pat-1",
		DoctorID:           "doc-1",
		Date:               "2026-09-02",
		Slot:               TimeSlot{Start: "10:00", End: "10:30", Available: true},
		Type:               TypeNormal,
		ConsultationFee:    1000,
		DoctorAvailability: 1,
	}
}

func TestBook(t *testing.T) {
	svc, esc := newTestService(t, 0)

	apt, err := svc.Book(context.Background(), bookingReq())
	require.NoError(t, err)

	assert.NotEmpty(t, apt.ID)
	assert.Equal(t, StatusPending, apt.Status)
	assert.Len(t, apt.OTP, 6)
	assert.False(t, apt.OTPVerified)
	assert.Equal(t, 1070.0, apt.Payment.TotalAmount)
	assert.Equal(t, pricing.PaymentStatusPending, apt.Payment.Status)
	assert.Equal(t, 1070.0, esc.opened[apt.ID])
}

func TestBookSlotTaken(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()

	_, err := svc.Book(ctx, bookingReq())
	require.NoError(t, err)

	_, err = svc.Book(ctx, bookingReq())
	assert.ErrorIs(t, err, ErrSlotTaken)

	// A different slot with the same doctor is fine.
	other := bookingReq()
	other.Slot.Start = "11:00"
	other.Slot.End = "11:30"
	_, err = svc.Book(ctx, other)
	assert.NoError(t, err)
}

func TestBookValidation(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*BookingRequest)
	}{
		{"missing patient", func(r *BookingRequest) { r.PatientID = " " }},
		{"missing doctor", func(r *BookingRequest) { r.DoctorID = "" }},
		{"bad date", func(r *BookingRequest) { r.Date = "02-09-2026" }},
		{"bad slot start", func(r *BookingRequest) { r.Slot.Start = "10am" }},
		{"bad type", func(r *BookingRequest) { r.Type = "urgent" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := bookingReq()
			tt.mutate(req)
			_, err := svc.Book(ctx, req)
			var verr *apperr.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestBookNegativeFeeReleasesSlot(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()

	bad := bookingReq()
	bad.ConsultationFee = -5
	_, err := svc.Book(ctx, bad)
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)

	// The failed quote must not leave the slot locked.
	_, err = svc.Book(ctx, bookingReq())
	assert.NoError(t, err)
}

func TestBookEscrowFailureRollsBack(t *testing.T) {
	clock := testClock()
	repo := NewInMemoryRepository()
	engine := pricing.NewEngine(pricing.DefaultConfig(), clock, nil)
	esc := &fakeEscrow{openErr: errors.New("escrow store down")}
	svc := NewService(repo, engine, slotlock.NewMemoryLocker(), esc, clock, 0, nil, nil)
	ctx := context.Background()

	_, err := svc.Book(ctx, bookingReq())
	require.Error(t, err)

	// The failed booking must not keep the slot; the retry gets a clean
	// pending appointment with its escrow opened.
	esc.openErr = nil
	apt, err := svc.Book(ctx, bookingReq())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, apt.Status)
	assert.Equal(t, apt.Payment.TotalAmount, esc.opened[apt.ID])
}

func TestAcceptRejectFlow(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()

	apt, err := svc.Book(ctx, bookingReq())
	require.NoError(t, err)

	confirmed, err := svc.Accept(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, confirmed.Status)

	// Accept is only valid from pending.
	_, err = svc.Accept(ctx, apt.ID)
	var ste *apperr.StateTransitionError
	require.ErrorAs(t, err, &ste)
	assert.Equal(t, StatusConfirmed, ste.From)
}

func TestRejectRecordsReasonAndFreesSlot(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()

	apt, err := svc.Book(ctx, bookingReq())
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, apt.ID, "double booked on my side")
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
	assert.Equal(t, "double booked on my side", rejected.RejectionReason)

	_, err = svc.Book(ctx, bookingReq())
	assert.NoError(t, err, "rejected booking should free the slot")
}

func TestVerifyOTP(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()

	apt, err := svc.Book(ctx, bookingReq())
	require.NoError(t, err)

	// Not valid while pending.
	_, err = svc.VerifyOTP(ctx, apt.ID, apt.OTP)
	var ste *apperr.StateTransitionError
	require.ErrorAs(t, err, &ste)

	_, err = svc.Accept(ctx, apt.ID)
	require.NoError(t, err)

	_, err = svc.VerifyOTP(ctx, apt.ID, "000000")
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)

	verified, err := svc.VerifyOTP(ctx, apt.ID, apt.OTP)
	require.NoError(t, err)
	assert.True(t, verified.OTPVerified)
	assert.Equal(t, StatusConfirmed, verified.Status, "verification must not change status")
}

func TestComplete(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()

	apt, err := svc.Book(ctx, bookingReq())
	require.NoError(t, err)
	_, err = svc.Accept(ctx, apt.ID)
	require.NoError(t, err)

	// Completion is gated on OTP verification.
	_, err = svc.Complete(ctx, apt.ID)
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.VerifyOTP(ctx, apt.ID, apt.OTP)
	require.NoError(t, err)

	done, err := svc.Complete(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
}

func TestTerminalStateRejectsEverything(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()

	apt, err := svc.Book(ctx, bookingReq())
	require.NoError(t, err)
	_, err = svc.Accept(ctx, apt.ID)
	require.NoError(t, err)
	_, err = svc.VerifyOTP(ctx, apt.ID, apt.OTP)
	require.NoError(t, err)
	_, err = svc.Complete(ctx, apt.ID)
	require.NoError(t, err)

	var ste *apperr.StateTransitionError
	_, err = svc.Accept(ctx, apt.ID)
	assert.ErrorAs(t, err, &ste)
	_, err = svc.Reject(ctx, apt.ID, "nope")
	assert.ErrorAs(t, err, &ste)
	_, err = svc.Cancel(ctx, apt.ID)
	assert.ErrorAs(t, err, &ste)
}

func TestCancel(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()

	apt, err := svc.Book(ctx, bookingReq())
	require.NoError(t, err)

	// Pending bookings are rejected by the doctor, not cancelled.
	_, err = svc.Cancel(ctx, apt.ID)
	var ste *apperr.StateTransitionError
	require.ErrorAs(t, err, &ste)

	_, err = svc.Accept(ctx, apt.ID)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)

	_, err = svc.Book(ctx, bookingReq())
	assert.NoError(t, err, "cancelled booking should free the slot")
}

func TestCancelCutoff(t *testing.T) {
	// Clock is frozen at 2026-09-01 12:00 UTC; the slot starts at
	// 2026-09-02 10:00, i.e. 22h away. A 24h cutoff must refuse.
	svc, _ := newTestService(t, 24*time.Hour)
	ctx := context.Background()

	apt, err := svc.Book(ctx, bookingReq())
	require.NoError(t, err)
	_, err = svc.Accept(ctx, apt.ID)
	require.NoError(t, err)

	_, err = svc.Cancel(ctx, apt.ID)
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)

	// A 2h cutoff leaves room.
	svc2, _ := newTestService(t, 2*time.Hour)
	apt2, err := svc2.Book(ctx, bookingReq())
	require.NoError(t, err)
	_, err = svc2.Accept(ctx, apt2.ID)
	require.NoError(t, err)
	_, err = svc2.Cancel(ctx, apt2.ID)
	assert.NoError(t, err)
}

func TestUnknownIDIsNotFound(t *testing.T) {
	svc, _ := newTestService(t, 0)
	ctx := context.Background()

	var nfe *apperr.NotFoundError
	_, err := svc.Get(ctx, "missing")
	assert.ErrorAs(t, err, &nfe)
	_, err = svc.Accept(ctx, "missing")
	assert.ErrorAs(t, err, &nfe)
	_, err = svc.VerifyOTP(ctx, "missing", "123456")
	assert.ErrorAs(t, err, &nfe)
}

func TestPaymentStatusWriter(t *testing.T) {
	clock := testClock()
	repo := NewInMemoryRepository()
	engine := pricing.NewEngine(pricing.DefaultConfig(), clock, nil)
	svc := NewService(repo, engine, slotlock.NewMemoryLocker(), &fakeEscrow{}, clock, 0, nil, nil)
	writer := NewPaymentStatusWriter(repo)
	ctx := context.Background()

	apt, err := svc.Book(ctx, bookingReq())
	require.NoError(t, err)

	require.NoError(t, writer.MarkPayment(ctx, apt.ID, pricing.PaymentStatusCompleted))
	got, err := svc.Get(ctx, apt.ID)
	require.NoError(t, err)
	assert.Equal(t, pricing.PaymentStatusCompleted, got.Payment.Status)
	assert.Equal(t, StatusPending, got.Status, "lifecycle status must be untouched")

	err = writer.MarkPayment(ctx, apt.ID, "settled")
	var verr *apperr.ValidationError
	assert.ErrorAs(t, err, &verr)

	var nfe *apperr.NotFoundError
	err = writer.MarkPayment(ctx, "missing", pricing.PaymentStatusRefunded)
	assert.ErrorAs(t, err, &nfe)
}
