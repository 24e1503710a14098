package apperror

import (
	"context"
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation            Kind = "validation"
	KindNotFound              Kind = "not_found"
	KindExternalPayment       Kind = "external_payment"
	KindConcurrencyConflict   Kind = "concurrency_conflict"
	KindInternalInconsistency Kind = "internal_inconsistency"
)

// Reason is the machine-checkable code returned to callers so UIs can branch.
type Reason string

const (
	ReasonSubscriptionRequired     Reason = "subscription_required"
	ReasonSubscriptionExpired      Reason = "subscription_expired"
	ReasonSubscriptionLimitReached Reason = "subscription_limit_reached"
	ReasonInsufficientBalance      Reason = "insufficient_wallet_balance"
	ReasonAlreadySubscribed        Reason = "already_subscribed"
	ReasonAlreadyOnPlan            Reason = "already_on_plan"
	ReasonInvalidUpgrade           Reason = "invalid_upgrade"
	ReasonTrialUnavailable         Reason = "trial_unavailable"
	ReasonRenewalNotAllowed        Reason = "renewal_not_allowed"
	ReasonInvalidCoupon            Reason = "invalid_coupon"
	ReasonTicketsUnavailable       Reason = "tickets_unavailable"
	ReasonInvalidTickets           Reason = "invalid_tickets"
	ReasonRefundWindowClosed       Reason = "refund_window_closed"
	ReasonInvalidCancellation      Reason = "invalid_cancellation"
	ReasonPaymentDeclined          Reason = "payment_declined"
	ReasonPaymentPending           Reason = "payment_pending"
	ReasonUnsupportedPayment       Reason = "unsupported_payment_method"
	ReasonInvalidAmount            Reason = "invalid_amount"
	ReasonInvalidRequest           Reason = "invalid_request"
	ReasonPlanNotFound             Reason = "plan_not_found"
	ReasonWalletNotFound           Reason = "wallet_not_found"
	ReasonEventNotFound            Reason = "event_not_found"
	ReasonBookingNotFound          Reason = "booking_not_found"
	ReasonOrderNotFound            Reason = "order_not_found"
	ReasonOrderAlreadySettled      Reason = "order_already_settled"
	ReasonPlanChangeNotAllowed     Reason = "plan_change_not_allowed"
	ReasonConcurrencyConflict      Reason = "concurrency_conflict"
	ReasonInconsistentState        Reason = "inconsistent_state"
)

// ErrConcurrencyConflict is returned by repositories when the database reports
// lock contention, a serialization failure or a deadlock.
var ErrConcurrencyConflict = errors.New("concurrency conflict")

// Rejection is an explicit business-rule result. It is returned, not panicked,
// so callers can tell "retry later" apart from "permanently invalid".
type Rejection struct {
	Kind    Kind
	Reason  Reason
	Message string
	Err     error
}

func (r *Rejection) Error() string {
	if r.Err != nil {
		return fmt.Sprintf("%s: %s: %v", r.Reason, r.Message, r.Err)
	}
	return fmt.Sprintf("%s: %s", r.Reason, r.Message)
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

// Transient reports whether the caller may retry the same request later.
func (r *Rejection) Transient() bool {
	return r.Kind == KindConcurrencyConflict
}

func Reject(reason Reason, message string) *Rejection {
	return &Rejection{Kind: KindValidation, Reason: reason, Message: message}
}

func NotFound(reason Reason, message string) *Rejection {
	return &Rejection{Kind: KindNotFound, Reason: reason, Message: message}
}

func PaymentFailed(reason Reason, message string, err error) *Rejection {
	return &Rejection{Kind: KindExternalPayment, Reason: reason, Message: message, Err: err}
}

func Inconsistent(message string, err error) *Rejection {
	return &Rejection{Kind: KindInternalInconsistency, Reason: ReasonInconsistentState, Message: message, Err: err}
}

func Conflict(err error) *Rejection {
	return &Rejection{
		Kind:    KindConcurrencyConflict,
		Reason:  ReasonConcurrencyConflict,
		Message: "the resource is busy, please retry",
		Err:     err,
	}
}

// AsRejection unwraps err looking for a Rejection.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

func IsReason(err error, reason Reason) bool {
	r, ok := AsRejection(err)
	return ok && r.Reason == reason
}

func IsKind(err error, kind Kind) bool {
	r, ok := AsRejection(err)
	return ok && r.Kind == kind
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

// RetryOnConflict runs fn and, when it fails with a concurrency conflict, runs
// it exactly once more. fn must open its own unit of work so the second attempt
// reads fresh rows. A second conflict is surfaced as a transient Rejection.
func RetryOnConflict(ctx context.Context, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	if err == nil || !IsConflict(err) {
		return err
	}
	if ctx.Err() != nil {
		return Conflict(err)
	}

	err = fn(ctx)
	if err != nil && IsConflict(err) {
		return Conflict(err)
	}
	return err
}
