package refund

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/pkg/apperror"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/internal/repository/memory"
	adminEvents "eventhub-accounting-be/pkg/admin/events"
	pkgEvents "eventhub-accounting-be/pkg/events"
	"eventhub-accounting-be/pkg/ledger"
	"eventhub-accounting-be/pkg/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 8, 1, 15, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	store     *memory.Store
	processor *Processor
	recorder  *adminEvents.Recorder

	userId    uuid.UUID
	walletId  uuid.UUID
	eventId   uuid.UUID
	bookingId uuid.UUID
	regular   uuid.UUID
	vip       uuid.UUID
	// two regular tickets at 100.00 and one vip at 100.00, 30.00 discount
	regularPurchase uuid.UUID
	vipPurchase     uuid.UUID
}

func newFixture(t *testing.T, startsIn int) *fixture {
	t.Helper()
	store := memory.NewStore()
	rec := adminEvents.NewRecorder()
	log := logger.NewNopLogger()
	m := metrics.Nop()

	f := &fixture{
		store:           store,
		recorder:        rec,
		userId:          uuid.New(),
		walletId:        uuid.New(),
		eventId:         uuid.New(),
		bookingId:       uuid.New(),
		regular:         uuid.New(),
		vip:             uuid.New(),
		regularPurchase: uuid.New(),
		vipPurchase:     uuid.New(),
	}

	store.Seed(func(w memory.Writer) {
		w.Wallet(entity.Wallet{Id: f.walletId, UserId: f.userId, Balance: decimal.Zero})
		w.Event(entity.Event{
			Id:          f.eventId,
			OrganizerId: uuid.New(),
			Title:       "Jazz Night",
			StartDate:   now.AddDate(0, 0, startsIn),
			IsPublished: true,
		})
		w.Ticket(entity.Ticket{Id: f.regular, EventId: f.eventId, TicketType: "regular", Price: dec("100.00"), Quantity: 50, SoldQuantity: 2})
		w.Ticket(entity.Ticket{Id: f.vip, EventId: f.eventId, TicketType: "vip", Price: dec("100.00"), Quantity: 10, SoldQuantity: 1})
		w.Booking(entity.Booking{
			Id:            f.bookingId,
			UserId:        f.userId,
			EventId:       f.eventId,
			PaymentMethod: entity.PaymentMethodWallet,
			PaymentStatus: entity.BookingPaymentPaid,
			Subtotal:      dec("300.00"),
			Discount:      dec("30.00"),
			Total:         dec("270.00"),
			TrackDiscount: dec("30.00"),
		})
		w.Purchase(entity.TicketPurchase{Id: f.regularPurchase, BookingId: f.bookingId, TicketId: f.regular, BuyerId: f.userId, EventId: f.eventId, Quantity: 2, TotalPrice: dec("200.00")})
		w.Purchase(entity.TicketPurchase{Id: f.vipPurchase, BookingId: f.bookingId, TicketId: f.vip, BuyerId: f.userId, EventId: f.eventId, Quantity: 1, TotalPrice: dec("100.00")})
	})

	f.processor = NewProcessor(store, ledger.New(store, m, log), adminEvents.NewNatsPublisher(rec, log), m, log, Options{MinDaysBeforeStart: 2})
	f.processor.clock = func() time.Time { return now }
	return f
}

func (f *fixture) cancel(items ...CancelItem) (*CancelResult, error) {
	return f.processor.Cancel(context.Background(), CancelRequest{
		UserId:    f.userId,
		BookingId: f.bookingId,
		Items:     items,
	})
}

func (f *fixture) booking(t *testing.T) entity.Booking {
	t.Helper()
	var b entity.Booking
	f.store.Snapshot(func(r memory.Reader) {
		var ok bool
		b, ok = r.Booking(f.bookingId)
		require.True(t, ok)
	})
	return b
}

func TestCancelRefundsNetOfDiscountShare(t *testing.T) {
	f := newFixture(t, 10)

	res, err := f.cancel(CancelItem{PurchaseId: f.regularPurchase, Quantity: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Cancelled)
	assert.Equal(t, "100.00", res.GrossAmount.StringFixed(2))
	assert.Equal(t, "10.00", res.DiscountShare.StringFixed(2))
	assert.Equal(t, "90.00", res.Refund.StringFixed(2))
	require.NotNil(t, res.WalletTransaction)
	assert.Equal(t, entity.WalletTransactionRefund, res.WalletTransaction.Type)

	b := f.booking(t)
	assert.Equal(t, "200.00", b.Subtotal.StringFixed(2))
	assert.Equal(t, "180.00", b.Total.StringFixed(2))
	assert.Equal(t, "20.00", b.TrackDiscount.StringFixed(2))

	f.store.Snapshot(func(r memory.Reader) {
		assert.Equal(t, "90.00", r.Wallet(f.walletId).Balance.StringFixed(2))
		assert.Equal(t, 1, r.Ticket(f.regular).SoldQuantity)
		assert.Equal(t, 1, r.Ticket(f.vip).SoldQuantity)

		for _, p := range r.Purchases() {
			if p.Id == f.regularPurchase {
				assert.Equal(t, 1, p.Quantity)
				assert.Equal(t, "100.00", p.TotalPrice.StringFixed(2))
			}
		}
	})
	assert.Len(t, f.recorder.Events(pkgEvents.TypeBookingCancelled), 1)
}

func TestCancelWholeBooking(t *testing.T) {
	f := newFixture(t, 10)

	res, err := f.cancel(
		CancelItem{PurchaseId: f.regularPurchase, Quantity: 2},
		CancelItem{PurchaseId: f.vipPurchase, Quantity: 1},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Cancelled)
	assert.Equal(t, "270.00", res.Refund.StringFixed(2))

	b := f.booking(t)
	assert.True(t, b.Subtotal.IsZero())
	assert.True(t, b.Total.IsZero())
	assert.True(t, b.TrackDiscount.IsZero())

	f.store.Snapshot(func(r memory.Reader) {
		assert.Empty(t, r.Purchases())
		assert.Equal(t, 0, r.Ticket(f.regular).SoldQuantity)
		assert.Equal(t, 0, r.Ticket(f.vip).SoldQuantity)
		assert.Equal(t, "270.00", r.Wallet(f.walletId).Balance.StringFixed(2))
	})
}

func TestCancelDeadline(t *testing.T) {
	tests := []struct {
		name     string
		startsIn int
		allowed  bool
	}{
		{name: "well ahead", startsIn: 10, allowed: true},
		{name: "last day", startsIn: 2, allowed: true},
		{name: "one day before", startsIn: 1, allowed: false},
		{name: "already started", startsIn: -1, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.startsIn)
			_, err := f.cancel(CancelItem{PurchaseId: f.vipPurchase, Quantity: 1})
			if tt.allowed {
				assert.NoError(t, err)
				return
			}
			assert.True(t, apperror.IsReason(err, apperror.ReasonRefundWindowClosed), "got %v", err)
		})
	}
}

func TestCancelRejectsInvalidSelections(t *testing.T) {
	f := newFixture(t, 10)

	tests := []struct {
		name  string
		items []CancelItem
	}{
		{name: "nothing selected", items: nil},
		{name: "too many", items: []CancelItem{{PurchaseId: f.regularPurchase, Quantity: 3}}},
		{name: "too many across repeats", items: []CancelItem{{PurchaseId: f.vipPurchase, Quantity: 1}, {PurchaseId: f.vipPurchase, Quantity: 1}}},
		{name: "zero quantity", items: []CancelItem{{PurchaseId: f.regularPurchase, Quantity: 0}}},
		{name: "foreign purchase", items: []CancelItem{{PurchaseId: uuid.New(), Quantity: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.cancel(tt.items...)
			assert.True(t, apperror.IsReason(err, apperror.ReasonInvalidCancellation), "got %v", err)
		})
	}

	f.store.Snapshot(func(r memory.Reader) {
		assert.True(t, r.Wallet(f.walletId).Balance.IsZero())
		assert.Len(t, r.Purchases(), 2)
	})
}

func TestCancelRejectsOtherUsersAndUnpaidBookings(t *testing.T) {
	f := newFixture(t, 10)

	_, err := f.processor.Cancel(context.Background(), CancelRequest{
		UserId:    uuid.New(),
		BookingId: f.bookingId,
		Items:     []CancelItem{{PurchaseId: f.vipPurchase, Quantity: 1}},
	})
	assert.True(t, apperror.IsReason(err, apperror.ReasonBookingNotFound))

	b := f.booking(t)
	b.PaymentStatus = entity.BookingPaymentPending
	f.store.Seed(func(w memory.Writer) { w.Booking(b) })

	_, err = f.cancel(CancelItem{PurchaseId: f.vipPurchase, Quantity: 1})
	assert.True(t, apperror.IsReason(err, apperror.ReasonInvalidCancellation))
}

func TestConcurrentCancellationsRefundOnce(t *testing.T) {
	f := newFixture(t, 10)

	const workers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.cancel(CancelItem{PurchaseId: f.vipPurchase, Quantity: 1}); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	f.store.Snapshot(func(r memory.Reader) {
		assert.Equal(t, "90.00", r.Wallet(f.walletId).Balance.StringFixed(2))
		assert.Len(t, r.WalletTransactions(), 1)
	})
}

func TestCancelRollsBackWhenRefundFails(t *testing.T) {
	f := newFixture(t, 10)
	f.store.FailOn(func(op string) error {
		if op == "wallet.update_balance" {
			return errors.New("disk full")
		}
		return nil
	})

	_, err := f.cancel(CancelItem{PurchaseId: f.regularPurchase, Quantity: 2})
	require.Error(t, err)

	b := f.booking(t)
	assert.Equal(t, "300.00", b.Subtotal.StringFixed(2))
	f.store.Snapshot(func(r memory.Reader) {
		assert.Len(t, r.Purchases(), 2)
		assert.Equal(t, 2, r.Ticket(f.regular).SoldQuantity)
		assert.True(t, r.Wallet(f.walletId).Balance.IsZero())
	})
	assert.Empty(t, f.recorder.Events(pkgEvents.TypeBookingCancelled))
}
