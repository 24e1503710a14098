package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/repository/contract"
	"eventhub-accounting-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type tables struct {
	users         map[uuid.UUID]entity.User
	events        map[uuid.UUID]entity.Event
	tickets       map[uuid.UUID]entity.Ticket
	bookings      map[uuid.UUID]entity.Booking
	purchases     []entity.TicketPurchase
	coupons       map[uuid.UUID]entity.Coupon
	redemptions   []entity.CouponRedemption
	wallets       map[uuid.UUID]entity.Wallet
	walletTxs     []entity.WalletTransaction
	distributions []entity.RevenueDistribution
	plans         map[uuid.UUID]entity.SubscriptionPlan
	subscriptions map[uuid.UUID]entity.UserSubscription
	subTxs        []entity.SubscriptionTransaction
	subOrders     map[string]entity.SubscriptionOrder
	badges        map[uuid.UUID]entity.Badge
	userBadges    []entity.UserBadge
}

func newTables() *tables {
	return &tables{
		users:         map[uuid.UUID]entity.User{},
		events:        map[uuid.UUID]entity.Event{},
		tickets:       map[uuid.UUID]entity.Ticket{},
		bookings:      map[uuid.UUID]entity.Booking{},
		coupons:       map[uuid.UUID]entity.Coupon{},
		wallets:       map[uuid.UUID]entity.Wallet{},
		plans:         map[uuid.UUID]entity.SubscriptionPlan{},
		subscriptions: map[uuid.UUID]entity.UserSubscription{},
		subOrders:     map[string]entity.SubscriptionOrder{},
		badges:        map[uuid.UUID]entity.Badge{},
	}
}

func cloneMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func cloneSlice[V any](src []V) []V {
	return append([]V(nil), src...)
}

func (t *tables) clone() *tables {
	return &tables{
		users:         cloneMap(t.users),
		events:        cloneMap(t.events),
		tickets:       cloneMap(t.tickets),
		bookings:      cloneMap(t.bookings),
		purchases:     cloneSlice(t.purchases),
		coupons:       cloneMap(t.coupons),
		redemptions:   cloneSlice(t.redemptions),
		wallets:       cloneMap(t.wallets),
		walletTxs:     cloneSlice(t.walletTxs),
		distributions: cloneSlice(t.distributions),
		plans:         cloneMap(t.plans),
		subscriptions: cloneMap(t.subscriptions),
		subTxs:        cloneSlice(t.subTxs),
		subOrders:     cloneMap(t.subOrders),
		badges:        cloneMap(t.badges),
		userBadges:    cloneSlice(t.userBadges),
	}
}

// Store is an in-process database. A transaction holds the store lock from
// Begin until Commit or Rollback, so transactions are serializable and a
// rolled back transaction leaves no trace. Row locks are implied by that.
type Store struct {
	mu   sync.Mutex
	data *tables
	now  func() time.Time

	// failHook is consulted before every write; a non-nil error aborts the write.
	failMu   sync.Mutex
	failHook func(op string) error
}

func NewStore() *Store {
	return &Store{data: newTables(), now: time.Now}
}

// FailOn installs a hook used by tests to inject write failures.
func (s *Store) FailOn(hook func(op string) error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	s.failHook = hook
}

func (s *Store) checkFail(op string) error {
	s.failMu.Lock()
	hook := s.failHook
	s.failMu.Unlock()
	if hook == nil {
		return nil
	}
	return hook(op)
}

// NewUnitOfWork satisfies unitofwork.RepositoryFactory.
func (s *Store) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: s}
}

// Snapshot runs fn against committed state under the store lock.
func (s *Store) Snapshot(fn func(r Reader)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(Reader{t: s.data})
}

type UnitOfWork struct {
	store   *Store
	working *tables
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.working != nil {
		return fmt.Errorf("transaction already started")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	u.store.mu.Lock()
	u.working = u.store.data.clone()
	return nil
}

func (u *UnitOfWork) Commit() error {
	if u.working == nil {
		return fmt.Errorf("no transaction to commit")
	}
	u.store.data = u.working
	u.working = nil
	u.store.mu.Unlock()
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if u.working == nil {
		return nil
	}
	u.working = nil
	u.store.mu.Unlock()
	return nil
}

// with runs fn inside the open transaction, or as a single auto-committed statement.
func (u *UnitOfWork) with(fn func(t *tables) error) error {
	if u.working != nil {
		return fn(u.working)
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	return fn(u.store.data)
}

func (u *UnitOfWork) write(op string, fn func(t *tables) error) error {
	if err := u.store.checkFail(op); err != nil {
		return err
	}
	return u.with(fn)
}

func (u *UnitOfWork) now() time.Time {
	return u.store.now()
}

func (u *UnitOfWork) UserRepository() contract.UserRepository {
	return &userRepository{uow: u}
}

func (u *UnitOfWork) EventRepository() contract.EventRepository {
	return &eventRepository{uow: u}
}

func (u *UnitOfWork) TicketRepository() contract.TicketRepository {
	return &ticketRepository{uow: u}
}

func (u *UnitOfWork) BookingRepository() contract.BookingRepository {
	return &bookingRepository{uow: u}
}

func (u *UnitOfWork) CouponRepository() contract.CouponRepository {
	return &couponRepository{uow: u}
}

func (u *UnitOfWork) WalletRepository() contract.WalletRepository {
	return &walletRepository{uow: u}
}

func (u *UnitOfWork) RevenueRepository() contract.RevenueRepository {
	return &revenueRepository{uow: u}
}

func (u *UnitOfWork) SubscriptionRepository() contract.SubscriptionRepository {
	return &subscriptionRepository{uow: u}
}

func (u *UnitOfWork) BadgeRepository() contract.BadgeRepository {
	return &badgeRepository{uow: u}
}

// Seed writes rows directly into committed state.
func (s *Store) Seed(fn func(w Writer)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(Writer{t: s.data})
}

type Writer struct{ t *tables }

func (w Writer) User(u entity.User) {
	w.t.users[u.Id] = u
}

func (w Writer) Event(e entity.Event) {
	w.t.events[e.Id] = e
}

func (w Writer) Ticket(t entity.Ticket) {
	w.t.tickets[t.Id] = t
}

func (w Writer) Booking(b entity.Booking) {
	w.t.bookings[b.Id] = b
}

func (w Writer) Purchase(p entity.TicketPurchase) {
	w.t.purchases = append(w.t.purchases, p)
}

func (w Writer) Coupon(c entity.Coupon) {
	w.t.coupons[c.Id] = c
}

func (w Writer) Wallet(wl entity.Wallet) {
	w.t.wallets[wl.Id] = wl
}

func (w Writer) Plan(p entity.SubscriptionPlan) {
	w.t.plans[p.Id] = p
}

func (w Writer) Subscription(s entity.UserSubscription) {
	w.t.subscriptions[s.Id] = s
}

func (w Writer) Badge(b entity.Badge) {
	w.t.badges[b.Id] = b
}

func (w Writer) SubscriptionTransaction(tx entity.SubscriptionTransaction) {
	w.t.subTxs = append(w.t.subTxs, tx)
}

func (w Writer) SubscriptionOrder(o entity.SubscriptionOrder) {
	w.t.subOrders[o.OrderId] = o
}

func (w Writer) Distribution(d entity.RevenueDistribution) {
	w.t.distributions = append(w.t.distributions, d)
}

func (w Writer) UserBadge(ub entity.UserBadge) {
	w.t.userBadges = append(w.t.userBadges, ub)
}

// Reader exposes committed rows to test assertions.
type Reader struct{ t *tables }

func (r Reader) Event(id uuid.UUID) entity.Event {
	return r.t.events[id]
}

func (r Reader) Ticket(id uuid.UUID) entity.Ticket {
	return r.t.tickets[id]
}

func (r Reader) Wallet(id uuid.UUID) entity.Wallet {
	return r.t.wallets[id]
}

func (r Reader) Coupon(id uuid.UUID) entity.Coupon {
	return r.t.coupons[id]
}

func (r Reader) Bookings() []entity.Booking {
	out := make([]entity.Booking, 0, len(r.t.bookings))
	for _, b := range r.t.bookings {
		out = append(out, b)
	}
	return out
}

func (r Reader) Booking(id uuid.UUID) (entity.Booking, bool) {
	b, ok := r.t.bookings[id]
	return b, ok
}

func (r Reader) Purchases() []entity.TicketPurchase {
	return cloneSlice(r.t.purchases)
}

func (r Reader) Redemptions() []entity.CouponRedemption {
	return cloneSlice(r.t.redemptions)
}

func (r Reader) WalletTransactions() []entity.WalletTransaction {
	return cloneSlice(r.t.walletTxs)
}

func (r Reader) Distributions() []entity.RevenueDistribution {
	return cloneSlice(r.t.distributions)
}

func (r Reader) SubscriptionTransactions() []entity.SubscriptionTransaction {
	return cloneSlice(r.t.subTxs)
}

func (r Reader) SubscriptionOrder(orderId string) (entity.SubscriptionOrder, bool) {
	o, ok := r.t.subOrders[orderId]
	return o, ok
}

func (r Reader) UserBadges() []entity.UserBadge {
	return cloneSlice(r.t.userBadges)
}

func (r Reader) Subscription(userId uuid.UUID) (entity.UserSubscription, bool) {
	for _, s := range r.t.subscriptions {
		if s.UserId == userId {
			s.Plan = r.t.plans[s.PlanId]
			return s, true
		}
	}
	return entity.UserSubscription{}, false
}
