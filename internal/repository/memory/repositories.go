package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func ensureId(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func ensureTime(t *time.Time, now time.Time) {
	if t.IsZero() {
		*t = now
	}
}

type userRepository struct{ uow *UnitOfWork }

func (r *userRepository) FindById(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var out *entity.User
	err := r.uow.with(func(t *tables) error {
		if u, ok := t.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

type eventRepository struct{ uow *UnitOfWork }

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	return r.uow.write("event.create", func(t *tables) error {
		ensureId(&event.Id)
		ensureTime(&event.CreatedAt, r.uow.now())
		t.events[event.Id] = *event
		return nil
	})
}

func (r *eventRepository) FindById(ctx context.Context, id uuid.UUID, lock contract.LockMode) (*entity.Event, error) {
	var out *entity.Event
	err := r.uow.with(func(t *tables) error {
		if e, ok := t.events[id]; ok {
			out = &e
		}
		return nil
	})
	return out, err
}

func (r *eventRepository) FindDistributionCandidates(ctx context.Context, cutoff time.Time, after *contract.CandidateCursor, limit int) ([]contract.CandidateCursor, error) {
	var candidates []contract.CandidateCursor
	err := r.uow.with(func(t *tables) error {
		for _, e := range t.events {
			if !isCandidate(e, cutoff) {
				continue
			}
			c := contract.CandidateCursor{Id: e.Id, EndDate: *e.EndDate}
			if after != nil && !candidateBefore(*after, c) {
				continue
			}
			candidates = append(candidates, c)
		}
		return nil
	})
	sort.Slice(candidates, func(i, j int) bool {
		return candidateBefore(candidates[i], candidates[j])
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, err
}

// candidateBefore orders by end date, then by id bytes as Postgres orders uuids.
func candidateBefore(a, b contract.CandidateCursor) bool {
	if !a.EndDate.Equal(b.EndDate) {
		return a.EndDate.Before(b.EndDate)
	}
	return bytes.Compare(a.Id[:], b.Id[:]) < 0
}

func (r *eventRepository) FindDistributable(ctx context.Context, id uuid.UUID, cutoff time.Time, lock contract.LockMode) (*entity.Event, error) {
	var out *entity.Event
	err := r.uow.with(func(t *tables) error {
		if e, ok := t.events[id]; ok && isCandidate(e, cutoff) {
			out = &e
		}
		return nil
	})
	return out, err
}

func isCandidate(e entity.Event, cutoff time.Time) bool {
	return e.IsPublished && !e.RevenueDistributed && e.EndDate != nil && e.EndDate.Before(cutoff)
}

func (r *eventRepository) MarkDistributed(ctx context.Context, id uuid.UUID) error {
	return r.uow.write("event.mark_distributed", func(t *tables) error {
		e, ok := t.events[id]
		if !ok {
			return fmt.Errorf("event %s not found", id)
		}
		e.RevenueDistributed = true
		t.events[id] = e
		return nil
	})
}

func (r *eventRepository) CountByOrganizer(ctx context.Context, organizerId uuid.UUID) (int, error) {
	count := 0
	err := r.uow.with(func(t *tables) error {
		for _, e := range t.events {
			if e.OrganizerId == organizerId {
				count++
			}
		}
		return nil
	})
	return count, err
}

type ticketRepository struct{ uow *UnitOfWork }

func (r *ticketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	return r.uow.write("ticket.create", func(t *tables) error {
		ensureId(&ticket.Id)
		t.tickets[ticket.Id] = *ticket
		return nil
	})
}

func (r *ticketRepository) Update(ctx context.Context, ticket *entity.Ticket) error {
	return r.uow.write("ticket.update", func(t *tables) error {
		t.tickets[ticket.Id] = *ticket
		return nil
	})
}

func (r *ticketRepository) FindById(ctx context.Context, id uuid.UUID, lock contract.LockMode) (*entity.Ticket, error) {
	var out *entity.Ticket
	err := r.uow.with(func(t *tables) error {
		if tk, ok := t.tickets[id]; ok {
			out = &tk
		}
		return nil
	})
	return out, err
}

func (r *ticketRepository) FindByIds(ctx context.Context, ids []uuid.UUID, lock contract.LockMode) ([]*entity.Ticket, error) {
	var out []*entity.Ticket
	err := r.uow.with(func(t *tables) error {
		for _, id := range ids {
			if tk, ok := t.tickets[id]; ok {
				tk := tk
				out = append(out, &tk)
			}
		}
		return nil
	})
	return out, err
}

func (r *ticketRepository) FindByEvent(ctx context.Context, eventId uuid.UUID) ([]*entity.Ticket, error) {
	var out []*entity.Ticket
	err := r.uow.with(func(t *tables) error {
		for _, tk := range t.tickets {
			if tk.EventId == eventId {
				tk := tk
				out = append(out, &tk)
			}
		}
		return nil
	})
	return out, err
}

func (r *ticketRepository) SumSoldQuantity(ctx context.Context, eventId uuid.UUID) (int, error) {
	total := 0
	err := r.uow.with(func(t *tables) error {
		for _, tk := range t.tickets {
			if tk.EventId == eventId {
				total += tk.SoldQuantity
			}
		}
		return nil
	})
	return total, err
}

type bookingRepository struct{ uow *UnitOfWork }

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	return r.uow.write("booking.create", func(t *tables) error {
		ensureId(&booking.Id)
		ensureTime(&booking.CreatedAt, r.uow.now())
		if booking.GatewayReference != nil {
			for _, b := range t.bookings {
				if b.GatewayReference != nil && *b.GatewayReference == *booking.GatewayReference {
					return fmt.Errorf("duplicate gateway reference %s", *booking.GatewayReference)
				}
			}
		}
		t.bookings[booking.Id] = *booking
		return nil
	})
}

func (r *bookingRepository) Update(ctx context.Context, booking *entity.Booking) error {
	return r.uow.write("booking.update", func(t *tables) error {
		t.bookings[booking.Id] = *booking
		return nil
	})
}

func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.uow.write("booking.delete", func(t *tables) error {
		delete(t.bookings, id)
		return nil
	})
}

func (r *bookingRepository) FindById(ctx context.Context, id uuid.UUID, lock contract.LockMode) (*entity.Booking, error) {
	var out *entity.Booking
	err := r.uow.with(func(t *tables) error {
		if b, ok := t.bookings[id]; ok {
			out = &b
		}
		return nil
	})
	return out, err
}

func (r *bookingRepository) FindByGatewayReference(ctx context.Context, reference string, lock contract.LockMode) (*entity.Booking, error) {
	var out *entity.Booking
	err := r.uow.with(func(t *tables) error {
		for _, b := range t.bookings {
			if b.GatewayReference != nil && *b.GatewayReference == reference {
				b := b
				out = &b
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *bookingRepository) SumPaidRevenue(ctx context.Context, eventId uuid.UUID) (entity.BookingRevenue, error) {
	rev := entity.BookingRevenue{Subtotal: decimal.Zero, Total: decimal.Zero}
	err := r.uow.with(func(t *tables) error {
		for _, b := range t.bookings {
			if b.EventId == eventId && b.PaymentStatus == entity.BookingPaymentPaid {
				rev.Subtotal = rev.Subtotal.Add(b.Subtotal)
				rev.Total = rev.Total.Add(b.Total)
			}
		}
		return nil
	})
	return rev, err
}

func (r *bookingRepository) CountPaidByUser(ctx context.Context, userId uuid.UUID) (int, error) {
	count := 0
	err := r.uow.with(func(t *tables) error {
		for _, b := range t.bookings {
			if b.UserId == userId && b.PaymentStatus == entity.BookingPaymentPaid {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *bookingRepository) CreatePurchase(ctx context.Context, purchase *entity.TicketPurchase) error {
	return r.uow.write("purchase.create", func(t *tables) error {
		ensureId(&purchase.Id)
		ensureTime(&purchase.CreatedAt, r.uow.now())
		t.purchases = append(t.purchases, *purchase)
		return nil
	})
}

func (r *bookingRepository) UpdatePurchase(ctx context.Context, purchase *entity.TicketPurchase) error {
	return r.uow.write("purchase.update", func(t *tables) error {
		for i := range t.purchases {
			if t.purchases[i].Id == purchase.Id {
				t.purchases[i] = *purchase
				return nil
			}
		}
		return fmt.Errorf("purchase %s not found", purchase.Id)
	})
}

func (r *bookingRepository) DeletePurchase(ctx context.Context, id uuid.UUID) error {
	return r.uow.write("purchase.delete", func(t *tables) error {
		kept := t.purchases[:0:0]
		for _, p := range t.purchases {
			if p.Id != id {
				kept = append(kept, p)
			}
		}
		t.purchases = kept
		return nil
	})
}

func (r *bookingRepository) FindPurchasesByBooking(ctx context.Context, bookingId uuid.UUID) ([]*entity.TicketPurchase, error) {
	var out []*entity.TicketPurchase
	err := r.uow.with(func(t *tables) error {
		for _, p := range t.purchases {
			if p.BookingId == bookingId {
				p := p
				out = append(out, &p)
			}
		}
		return nil
	})
	return out, err
}

type couponRepository struct{ uow *UnitOfWork }

func (r *couponRepository) Create(ctx context.Context, coupon *entity.Coupon) error {
	return r.uow.write("coupon.create", func(t *tables) error {
		ensureId(&coupon.Id)
		t.coupons[coupon.Id] = *coupon
		return nil
	})
}

func (r *couponRepository) Update(ctx context.Context, coupon *entity.Coupon) error {
	return r.uow.write("coupon.update", func(t *tables) error {
		t.coupons[coupon.Id] = *coupon
		return nil
	})
}

func (r *couponRepository) FindByCode(ctx context.Context, code string, lock contract.LockMode) (*entity.Coupon, error) {
	var out *entity.Coupon
	err := r.uow.with(func(t *tables) error {
		for _, c := range t.coupons {
			if c.Code == code {
				c := c
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *couponRepository) HasRedeemed(ctx context.Context, couponId, userId uuid.UUID) (bool, error) {
	found := false
	err := r.uow.with(func(t *tables) error {
		for _, red := range t.redemptions {
			if red.CouponId == couponId && red.UserId == userId {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *couponRepository) CreateRedemption(ctx context.Context, redemption *entity.CouponRedemption) error {
	return r.uow.write("coupon.redeem", func(t *tables) error {
		for _, red := range t.redemptions {
			if red.CouponId == redemption.CouponId && red.UserId == redemption.UserId {
				return fmt.Errorf("coupon %s already redeemed by %s", red.CouponId, red.UserId)
			}
		}
		ensureId(&redemption.Id)
		ensureTime(&redemption.RedeemedAt, r.uow.now())
		t.redemptions = append(t.redemptions, *redemption)
		return nil
	})
}

type walletRepository struct{ uow *UnitOfWork }

func (r *walletRepository) Create(ctx context.Context, wallet *entity.Wallet) error {
	return r.uow.write("wallet.create", func(t *tables) error {
		for _, w := range t.wallets {
			if w.UserId == wallet.UserId {
				return fmt.Errorf("wallet for user %s already exists", wallet.UserId)
			}
		}
		ensureId(&wallet.Id)
		ensureTime(&wallet.CreatedAt, r.uow.now())
		wallet.UpdatedAt = wallet.CreatedAt
		t.wallets[wallet.Id] = *wallet
		return nil
	})
}

func (r *walletRepository) FindById(ctx context.Context, id uuid.UUID, lock contract.LockMode) (*entity.Wallet, error) {
	var out *entity.Wallet
	err := r.uow.with(func(t *tables) error {
		if w, ok := t.wallets[id]; ok {
			out = &w
		}
		return nil
	})
	return out, err
}

func (r *walletRepository) FindByUserId(ctx context.Context, userId uuid.UUID, lock contract.LockMode) (*entity.Wallet, error) {
	var out *entity.Wallet
	err := r.uow.with(func(t *tables) error {
		for _, w := range t.wallets {
			if w.UserId == userId {
				w := w
				out = &w
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *walletRepository) FindAllIds(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.uow.with(func(t *tables) error {
		for id := range t.wallets {
			ids = append(ids, id)
		}
		return nil
	})
	return ids, err
}

func (r *walletRepository) UpdateBalance(ctx context.Context, wallet *entity.Wallet) error {
	return r.uow.write("wallet.update_balance", func(t *tables) error {
		w, ok := t.wallets[wallet.Id]
		if !ok {
			return fmt.Errorf("wallet %s not found", wallet.Id)
		}
		if wallet.Balance.IsNegative() {
			return fmt.Errorf("wallet %s: balance check constraint violated", wallet.Id)
		}
		w.Balance = wallet.Balance
		w.UpdatedAt = r.uow.now()
		t.wallets[w.Id] = w
		return nil
	})
}

func (r *walletRepository) CreateTransaction(ctx context.Context, tx *entity.WalletTransaction) error {
	return r.uow.write("wallet.create_transaction", func(t *tables) error {
		if !tx.Amount.IsPositive() {
			return fmt.Errorf("wallet transaction amount must be positive")
		}
		ensureId(&tx.Id)
		ensureTime(&tx.CreatedAt, r.uow.now())
		t.walletTxs = append(t.walletTxs, *tx)
		return nil
	})
}

func (r *walletRepository) FindTransactions(ctx context.Context, walletId uuid.UUID, limit, offset int) ([]*entity.WalletTransaction, error) {
	var out []*entity.WalletTransaction
	err := r.uow.with(func(t *tables) error {
		for _, tx := range t.walletTxs {
			if tx.WalletId == walletId {
				tx := tx
				out = append(out, &tx)
			}
		}
		return nil
	})
	return paginate(out, limit, offset), err
}

func paginate[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		return items
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

type revenueRepository struct{ uow *UnitOfWork }

func (r *revenueRepository) Create(ctx context.Context, distribution *entity.RevenueDistribution) error {
	return r.uow.write("revenue.create", func(t *tables) error {
		for _, d := range t.distributions {
			if d.EventId == distribution.EventId {
				return fmt.Errorf("distribution for event %s already exists", d.EventId)
			}
		}
		ensureId(&distribution.Id)
		ensureTime(&distribution.DistributedAt, r.uow.now())
		t.distributions = append(t.distributions, *distribution)
		return nil
	})
}

func (r *revenueRepository) FindByEventId(ctx context.Context, eventId uuid.UUID) (*entity.RevenueDistribution, error) {
	var out *entity.RevenueDistribution
	err := r.uow.with(func(t *tables) error {
		for _, d := range t.distributions {
			if d.EventId == eventId {
				d := d
				out = &d
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *revenueRepository) FindAll(ctx context.Context, since time.Time, limit, offset int) ([]*entity.RevenueDistribution, int, error) {
	var out []*entity.RevenueDistribution
	err := r.uow.with(func(t *tables) error {
		for _, d := range t.distributions {
			if since.IsZero() || !d.DistributedAt.Before(since) {
				d := d
				out = append(out, &d)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistributedAt.After(out[j].DistributedAt)
	})
	return paginate(out, limit, offset), len(out), err
}

func (r *revenueRepository) SumSince(ctx context.Context, since time.Time) (entity.RevenueTotals, error) {
	totals := entity.RevenueTotals{TotalRevenue: decimal.Zero, AdminAmount: decimal.Zero, OrganizerAmount: decimal.Zero}
	err := r.uow.with(func(t *tables) error {
		for _, d := range t.distributions {
			if !since.IsZero() && d.DistributedAt.Before(since) {
				continue
			}
			totals.TotalRevenue = totals.TotalRevenue.Add(d.TotalRevenue)
			totals.AdminAmount = totals.AdminAmount.Add(d.AdminAmount)
			totals.OrganizerAmount = totals.OrganizerAmount.Add(d.OrganizerAmount)
			totals.Count++
		}
		return nil
	})
	return totals, err
}

type subscriptionRepository struct{ uow *UnitOfWork }

func (r *subscriptionRepository) CreatePlan(ctx context.Context, plan *entity.SubscriptionPlan) error {
	return r.uow.write("plan.create", func(t *tables) error {
		ensureId(&plan.Id)
		t.plans[plan.Id] = *plan
		return nil
	})
}

func (r *subscriptionRepository) UpdatePlan(ctx context.Context, plan *entity.SubscriptionPlan) error {
	return r.uow.write("plan.update", func(t *tables) error {
		t.plans[plan.Id] = *plan
		return nil
	})
}

func (r *subscriptionRepository) FindPlanById(ctx context.Context, id uuid.UUID) (*entity.SubscriptionPlan, error) {
	var out *entity.SubscriptionPlan
	err := r.uow.with(func(t *tables) error {
		if p, ok := t.plans[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *subscriptionRepository) FindPlanByTier(ctx context.Context, tier entity.PlanTier) (*entity.SubscriptionPlan, error) {
	var out *entity.SubscriptionPlan
	err := r.uow.with(func(t *tables) error {
		for _, p := range t.plans {
			if p.Tier == tier {
				p := p
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *subscriptionRepository) FindActivePlans(ctx context.Context) ([]*entity.SubscriptionPlan, error) {
	var out []*entity.SubscriptionPlan
	err := r.uow.with(func(t *tables) error {
		for _, p := range t.plans {
			if p.IsActive {
				p := p
				out = append(out, &p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	return out, err
}

func (r *subscriptionRepository) CreateSubscription(ctx context.Context, subscription *entity.UserSubscription) error {
	return r.uow.write("subscription.create", func(t *tables) error {
		for _, s := range t.subscriptions {
			if s.UserId == subscription.UserId {
				return fmt.Errorf("subscription for user %s already exists", s.UserId)
			}
		}
		ensureId(&subscription.Id)
		ensureTime(&subscription.CreatedAt, r.uow.now())
		subscription.UpdatedAt = subscription.CreatedAt
		row := *subscription
		row.Plan = entity.SubscriptionPlan{}
		t.subscriptions[row.Id] = row
		return nil
	})
}

func (r *subscriptionRepository) UpdateSubscription(ctx context.Context, subscription *entity.UserSubscription) error {
	return r.uow.write("subscription.update", func(t *tables) error {
		if _, ok := t.subscriptions[subscription.Id]; !ok {
			return fmt.Errorf("subscription %s not found", subscription.Id)
		}
		subscription.UpdatedAt = r.uow.now()
		row := *subscription
		row.Plan = entity.SubscriptionPlan{}
		t.subscriptions[row.Id] = row
		return nil
	})
}

func (r *subscriptionRepository) FindSubscriptionByUserId(ctx context.Context, userId uuid.UUID, lock contract.LockMode) (*entity.UserSubscription, error) {
	var out *entity.UserSubscription
	err := r.uow.with(func(t *tables) error {
		for _, s := range t.subscriptions {
			if s.UserId == userId {
				s := s
				s.Plan = t.plans[s.PlanId]
				out = &s
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *subscriptionRepository) ResetActiveCounters(ctx context.Context) (int, error) {
	count := 0
	err := r.uow.write("subscription.reset_counters", func(t *tables) error {
		for id, s := range t.subscriptions {
			if s.IsActive {
				s.ResetMonthlyCounters()
				t.subscriptions[id] = s
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *subscriptionRepository) DeactivateExpired(ctx context.Context, now time.Time) (int, error) {
	count := 0
	err := r.uow.write("subscription.deactivate_expired", func(t *tables) error {
		for id, s := range t.subscriptions {
			if s.IsActive && !s.EndDate.After(now) {
				s.IsActive = false
				t.subscriptions[id] = s
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *subscriptionRepository) CreateTransaction(ctx context.Context, tx *entity.SubscriptionTransaction) error {
	return r.uow.write("subscription.create_transaction", func(t *tables) error {
		if tx.ExternalTransactionId != nil {
			for _, existing := range t.subTxs {
				if existing.ExternalTransactionId != nil && *existing.ExternalTransactionId == *tx.ExternalTransactionId {
					return fmt.Errorf("duplicate external transaction id %s", *tx.ExternalTransactionId)
				}
			}
		}
		ensureId(&tx.Id)
		ensureTime(&tx.CreatedAt, r.uow.now())
		t.subTxs = append(t.subTxs, *tx)
		return nil
	})
}

func (r *subscriptionRepository) UpdateTransaction(ctx context.Context, tx *entity.SubscriptionTransaction) error {
	return r.uow.write("subscription.update_transaction", func(t *tables) error {
		for i := range t.subTxs {
			if t.subTxs[i].Id == tx.Id {
				t.subTxs[i] = *tx
				return nil
			}
		}
		return fmt.Errorf("subscription transaction %s not found", tx.Id)
	})
}

func (r *subscriptionRepository) FindLatestPaidTransaction(ctx context.Context, subscriptionId uuid.UUID) (*entity.SubscriptionTransaction, error) {
	var out *entity.SubscriptionTransaction
	err := r.uow.with(func(t *tables) error {
		// Later appends win ties on CreatedAt.
		for i := len(t.subTxs) - 1; i >= 0; i-- {
			tx := t.subTxs[i]
			if tx.SubscriptionId != subscriptionId || tx.IsRefunded {
				continue
			}
			if tx.Type != entity.SubscriptionTransactionPurchase && tx.Type != entity.SubscriptionTransactionRenewal {
				continue
			}
			if out == nil || tx.CreatedAt.After(out.CreatedAt) {
				tx := tx
				out = &tx
			}
		}
		return nil
	})
	return out, err
}

func (r *subscriptionRepository) FindTransactionByExternalId(ctx context.Context, externalId string) (*entity.SubscriptionTransaction, error) {
	var out *entity.SubscriptionTransaction
	err := r.uow.with(func(t *tables) error {
		for _, tx := range t.subTxs {
			if tx.ExternalTransactionId != nil && *tx.ExternalTransactionId == externalId {
				tx := tx
				out = &tx
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *subscriptionRepository) CreateOrder(ctx context.Context, order *entity.SubscriptionOrder) error {
	return r.uow.write("subscription.create_order", func(t *tables) error {
		if _, ok := t.subOrders[order.OrderId]; ok {
			return fmt.Errorf("duplicate order id %s", order.OrderId)
		}
		ensureId(&order.Id)
		ensureTime(&order.CreatedAt, r.uow.now())
		order.UpdatedAt = order.CreatedAt
		t.subOrders[order.OrderId] = *order
		return nil
	})
}

func (r *subscriptionRepository) UpdateOrder(ctx context.Context, order *entity.SubscriptionOrder) error {
	return r.uow.write("subscription.update_order", func(t *tables) error {
		if _, ok := t.subOrders[order.OrderId]; !ok {
			return fmt.Errorf("order %s not found", order.OrderId)
		}
		order.UpdatedAt = r.uow.now()
		t.subOrders[order.OrderId] = *order
		return nil
	})
}

func (r *subscriptionRepository) FindOrderByOrderId(ctx context.Context, orderId string, lock contract.LockMode) (*entity.SubscriptionOrder, error) {
	var out *entity.SubscriptionOrder
	err := r.uow.with(func(t *tables) error {
		if o, ok := t.subOrders[orderId]; ok {
			out = &o
		}
		return nil
	})
	return out, err
}

type badgeRepository struct{ uow *UnitOfWork }

func (r *badgeRepository) FindActiveByRole(ctx context.Context, role entity.UserRole) ([]*entity.Badge, error) {
	var out []*entity.Badge
	err := r.uow.with(func(t *tables) error {
		for _, b := range t.badges {
			if b.IsActive && b.ApplicableRole == role {
				b := b
				out = append(out, &b)
			}
		}
		return nil
	})
	return out, err
}

func (r *badgeRepository) HasBadge(ctx context.Context, userId, badgeId uuid.UUID) (bool, error) {
	found := false
	err := r.uow.with(func(t *tables) error {
		for _, ub := range t.userBadges {
			if ub.UserId == userId && ub.BadgeId == badgeId {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *badgeRepository) Assign(ctx context.Context, userBadge *entity.UserBadge) error {
	return r.uow.write("badge.assign", func(t *tables) error {
		for _, ub := range t.userBadges {
			if ub.UserId == userBadge.UserId && ub.BadgeId == userBadge.BadgeId {
				return fmt.Errorf("badge %s already assigned", ub.BadgeId)
			}
		}
		ensureId(&userBadge.Id)
		t.userBadges = append(t.userBadges, *userBadge)
		return nil
	})
}
