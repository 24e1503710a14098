package implementation

import (
	"context"
	"testing"
	"time"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/repository/contract"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var subscriptionColumns = []string{
	"id", "user_id", "plan_id", "start_date", "end_date", "is_active", "payment_method", "payment_id",
	"events_joined_this_month", "events_organized_this_month", "created_at", "updated_at",
}

var planColumns = []string{
	"id", "name", "tier", "description", "price", "event_join_limit", "event_creation_limit",
	"features", "is_active", "created_at", "updated_at",
}

var bookingColumns = []string{
	"id", "user_id", "event_id", "payment_method", "payment_status", "subtotal", "discount", "total",
	"track_discount", "coupon_id", "gateway_reference", "created_at",
}

func TestSubscriptionFindByUserIdLocksOnlyTheSubscriptionRow(t *testing.T) {
	db, mock := newMockedDB(t)
	repo := NewSubscriptionRepository(db)
	userId, subId, planId := uuid.New(), uuid.New(), uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "user_subscriptions" WHERE user_id = \$1 ORDER BY "user_subscriptions"\."id" LIMIT .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(subscriptionColumns).
			AddRow(subId.String(), userId.String(), planId.String(), now.AddDate(0, 0, -5), now.AddDate(0, 0, 25), true, "wallet", "", 2, 0, now, now))
	// The plan is preloaded in a separate statement without a lock.
	mock.ExpectQuery(`SELECT \* FROM "subscription_plans" WHERE "subscription_plans"\."id" = \$1$`).
		WillReturnRows(sqlmock.NewRows(planColumns).
			AddRow(planId.String(), "Basic", "basic", "", "199.00", 5, 1, []byte(`{"email_notification":true}`), true, now, now))

	sub, err := repo.FindSubscriptionByUserId(context.Background(), userId, contract.LockForUpdate)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, subId, sub.Id)
	assert.Equal(t, 2, sub.EventsJoinedThisMonth)
	assert.Equal(t, entity.PlanTierBasic, sub.Plan.Tier)
	assert.True(t, sub.Plan.Features.EmailNotification)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionFindByUserIdWithoutLock(t *testing.T) {
	db, mock := newMockedDB(t)
	repo := NewSubscriptionRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "user_subscriptions" WHERE user_id = \$1 ORDER BY "user_subscriptions"\."id" LIMIT [$0-9]+$`).
		WillReturnRows(sqlmock.NewRows(subscriptionColumns))

	sub, err := repo.FindSubscriptionByUserId(context.Background(), uuid.New(), contract.LockNone)
	require.NoError(t, err)
	assert.Nil(t, sub)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionFindOrderTakesRowLock(t *testing.T) {
	db, mock := newMockedDB(t)
	repo := NewSubscriptionRepository(db)
	orderId := "SUB-" + uuid.NewString()
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "subscription_orders" WHERE order_id = \$1 ORDER BY "subscription_orders"\."id" LIMIT .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "user_id", "plan_id", "type", "amount", "status", "external_transaction_id", "created_at", "updated_at"}).
			AddRow(uuid.NewString(), orderId, uuid.NewString(), uuid.NewString(), "renewal", "199.00", "pending", nil, now, now))

	order, err := repo.FindOrderByOrderId(context.Background(), orderId, contract.LockForUpdate)
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, entity.SubscriptionTransactionRenewal, order.Type)
	assert.Equal(t, entity.SubscriptionOrderPending, order.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingFindByIdTakesRowLock(t *testing.T) {
	db, mock := newMockedDB(t)
	repo := NewBookingRepository(db)
	bookingId := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "bookings" WHERE id = \$1 ORDER BY "bookings"\."id" LIMIT .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(bookingColumns).
			AddRow(bookingId.String(), uuid.NewString(), uuid.NewString(), "wallet", "paid", "300.00", "30.00", "270.00", "30.00", nil, nil, time.Now()))

	booking, err := repo.FindById(context.Background(), bookingId, contract.LockForUpdate)
	require.NoError(t, err)
	require.NotNil(t, booking)
	assert.Equal(t, entity.BookingPaymentPaid, booking.PaymentStatus)
	assert.Equal(t, "30.00", booking.TrackDiscount.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventDistributionCandidatesPageAfterCursor(t *testing.T) {
	db, mock := newMockedDB(t)
	repo := NewEventRepository(db)
	cutoff := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	cursor := contract.CandidateCursor{Id: uuid.New(), EndDate: cutoff.AddDate(0, 0, -4)}
	next := uuid.New()

	mock.ExpectQuery(`SELECT "id","end_date" FROM "events" WHERE .*end_date < \$3.* AND \(end_date, id\) > \(\$4, \$5\) ORDER BY end_date ASC,id ASC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "end_date"}).AddRow(next.String(), cutoff.AddDate(0, 0, -2)))

	page, err := repo.FindDistributionCandidates(context.Background(), cutoff, &cursor, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, next, page[0].Id)
	assert.True(t, page[0].EndDate.Equal(cutoff.AddDate(0, 0, -2)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
