package mapper

import (
	"time"

	"eventhub-accounting-be/internal/dto"
	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/pkg/admin/refund"
	"eventhub-accounting-be/pkg/admin/revenue"
	"eventhub-accounting-be/pkg/admin/subscription"
	"eventhub-accounting-be/pkg/admin/usage"
	"eventhub-accounting-be/pkg/booking"

	"github.com/google/uuid"
)

// PlanToResponse converts a plan entity to its public DTO
func PlanToResponse(p *entity.SubscriptionPlan) dto.PlanResponse {
	if p == nil {
		return dto.PlanResponse{}
	}
	return dto.PlanResponse{
		Id:                 p.Id,
		Name:               p.Name,
		Tier:               string(p.Tier),
		Description:        p.Description,
		Price:              p.Price,
		EventJoinLimit:     p.EventJoinLimit,
		EventCreationLimit: p.EventCreationLimit,
		Features: dto.PlanFeaturesResponse{
			EmailNotification: p.Features.EmailNotification,
			GroupChat:         p.Features.GroupChat,
			PersonalChat:      p.Features.PersonalChat,
			AdvancedAnalytics: p.Features.AdvancedAnalytics,
			TicketScanning:    p.Features.TicketScanning,
			LiveStreaming:     p.Features.LiveStreaming,
		},
	}
}

func PlansToResponse(plans []*entity.SubscriptionPlan) []dto.PlanResponse {
	res := make([]dto.PlanResponse, 0, len(plans))
	for _, p := range plans {
		res = append(res, PlanToResponse(p))
	}
	return res
}

// SubscriptionToResponse converts a subscription with its preloaded plan.
func SubscriptionToResponse(s *entity.UserSubscription, now time.Time) *dto.SubscriptionResponse {
	if s == nil {
		return nil
	}
	return &dto.SubscriptionResponse{
		Id:            s.Id,
		Plan:          PlanToResponse(&s.Plan),
		StartDate:     s.StartDate,
		EndDate:       s.EndDate,
		IsActive:      s.IsActive,
		IsValid:       s.IsValid(now),
		DaysRemaining: s.DaysRemaining(now),
	}
}

func UsageToResponse(u *usage.Summary) *dto.UsageResponse {
	if u == nil {
		return nil
	}
	return &dto.UsageResponse{
		EventsJoined: dto.UsageLimit{
			Used:      u.EventsJoined,
			Limit:     u.EventJoinLimit,
			Remaining: u.JoinsRemaining,
			CanUse:    u.SubscriptionValid && u.JoinsRemaining != 0,
		},
		EventsOrganized: dto.UsageLimit{
			Used:      u.EventsOrganized,
			Limit:     u.EventCreateLimit,
			Remaining: u.CreatesRemaining,
			CanUse:    u.SubscriptionValid && u.CreatesRemaining != 0,
		},
	}
}

func ChangeToResponse(r *subscription.ChangeResult, now time.Time) *dto.SubscriptionChangeResponse {
	res := &dto.SubscriptionChangeResponse{
		Subscription: SubscriptionToResponse(r.Subscription, now),
		Amount:       r.Amount,
		Pending:      r.Pending,
		OrderId:      r.OrderId,
	}
	if r.Transaction != nil {
		id := r.Transaction.Id
		res.TransactionId = &id
	}
	return res
}

func QuoteToResponse(q *subscription.UpgradeQuote) *dto.UpgradeQuoteResponse {
	return &dto.UpgradeQuoteResponse{
		CurrentPlan:      PlanToResponse(q.CurrentPlan),
		TargetPlan:       PlanToResponse(q.TargetPlan),
		PaidAmount:       q.PaidAmount,
		DaysUsed:         q.DaysUsed,
		DaysRemaining:    q.DaysRemaining,
		RemainingBalance: q.RemainingBalance,
		UpgradeCost:      q.UpgradeCost,
	}
}

func WalletToResponse(w *entity.Wallet) *dto.WalletResponse {
	return &dto.WalletResponse{
		Id:        w.Id,
		Balance:   w.Balance,
		UpdatedAt: w.UpdatedAt,
	}
}

func WalletTransactionsToResponse(txs []*entity.WalletTransaction) []*dto.WalletTransactionResponse {
	res := make([]*dto.WalletTransactionResponse, 0, len(txs))
	for _, t := range txs {
		res = append(res, &dto.WalletTransactionResponse{
			Id:          t.Id,
			Type:        string(t.Type),
			Direction:   string(t.Direction),
			Amount:      t.Amount,
			Description: t.Description,
			BookingId:   t.BookingId,
			EventId:     t.EventId,
			CreatedAt:   t.CreatedAt,
		})
	}
	return res
}

// CheckoutToResponse converts a stored booking with its purchases.
func CheckoutToResponse(r *booking.CheckoutResult) *dto.CheckoutResponse {
	b := r.Booking
	purchases := make([]dto.PurchaseResponse, 0, len(r.Purchases))
	for _, p := range r.Purchases {
		purchases = append(purchases, dto.PurchaseResponse{
			Id:         p.Id,
			TicketId:   p.TicketId,
			Quantity:   p.Quantity,
			TotalPrice: p.TotalPrice,
		})
	}
	return &dto.CheckoutResponse{
		Booking: dto.BookingResponse{
			Id:            b.Id,
			EventId:       b.EventId,
			PaymentMethod: string(b.PaymentMethod),
			PaymentStatus: string(b.PaymentStatus),
			Subtotal:      b.Subtotal,
			Discount:      b.Discount,
			Total:         b.Total,
			CreatedAt:     b.CreatedAt,
			Purchases:     purchases,
		},
		Pending: r.Pending,
		OrderId: r.OrderId,
	}
}

func CancelToResponse(bookingId uuid.UUID, r *refund.CancelResult) *dto.CancelResponse {
	return &dto.CancelResponse{
		BookingId:     bookingId,
		Cancelled:     r.Cancelled,
		GrossAmount:   r.GrossAmount,
		DiscountShare: r.DiscountShare,
		Refund:        r.Refund,
	}
}

// ReportToResponse converts one distribution cycle's report.
func ReportToResponse(r *revenue.Report) *dto.DistributionRunResponse {
	res := &dto.DistributionRunResponse{
		Processed: r.Processed,
		Skipped:   r.Skipped,
		Failed:    r.Failed,
		ElapsedMs: r.Elapsed.Milliseconds(),
		Events:    make([]dto.DistributionEventResponse, 0, len(r.Events)),
	}
	for _, e := range r.Events {
		res.Events = append(res.Events, dto.DistributionEventResponse{
			EventId:           e.EventId,
			Outcome:           string(e.Outcome),
			TotalRevenue:      e.TotalRevenue,
			TotalParticipants: e.TotalParticipants,
			AdminAmount:       e.AdminAmount,
			OrganizerAmount:   e.OrganizerAmount,
			Error:             e.Error,
		})
	}
	return res
}
