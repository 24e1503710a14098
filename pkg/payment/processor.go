package payment

import (
	"context"
	"fmt"

	"eventhub-accounting-be/internal/entity"
	"eventhub-accounting-be/internal/pkg/apperror"
	"eventhub-accounting-be/internal/pkg/logger"
	"eventhub-accounting-be/internal/repository/contract"
	"eventhub-accounting-be/internal/repository/unitofwork"
	"eventhub-accounting-be/pkg/ledger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const logModule = "PAYMENT"

type Status string

const (
	StatusPaid    Status = "paid"
	StatusPending Status = "pending"
)

type Request struct {
	Method      entity.PaymentMethod
	UserId      uuid.UUID
	Amount      decimal.Decimal
	OrderId     string
	CardToken   string
	Description string
	BookingId   *uuid.UUID
}

type Result struct {
	Method            entity.PaymentMethod
	Status            Status
	WalletTransaction *entity.WalletTransaction
	GatewayTxId       string
}

// Processor collects a payment inside the caller's unit of work. A wallet
// debit joins the caller's transaction; a card charge is an external call
// that the caller rolls back around if anything after it fails.
type Processor struct {
	ledger  *ledger.Ledger
	gateway Gateway
	logger  logger.ILogger
}

func NewProcessor(ledger *ledger.Ledger, gateway Gateway, logger logger.ILogger) *Processor {
	return &Processor{
		ledger:  ledger,
		gateway: gateway,
		logger:  logger,
	}
}

func (p *Processor) Collect(ctx context.Context, uow unitofwork.UnitOfWork, req Request) (*Result, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.Reject(apperror.ReasonInvalidAmount, "payment amount must be greater than zero")
	}

	switch req.Method {
	case entity.PaymentMethodWallet:
		return p.collectWallet(ctx, uow, req)
	case entity.PaymentMethodCard:
		return p.collectCard(ctx, req)
	default:
		return nil, apperror.Reject(apperror.ReasonUnsupportedPayment,
			fmt.Sprintf("payment method %q is not supported", req.Method))
	}
}

func (p *Processor) collectWallet(ctx context.Context, uow unitofwork.UnitOfWork, req Request) (*Result, error) {
	wallet, err := ledger.WalletForUser(ctx, uow, req.UserId, contract.LockForUpdate)
	if err != nil {
		return nil, err
	}

	tx, err := p.ledger.Debit(ctx, uow, ledger.Entry{
		WalletId:    wallet.Id,
		Amount:      req.Amount,
		Type:        entity.WalletTransactionPayment,
		Description: req.Description,
		BookingId:   req.BookingId,
	})
	if err != nil {
		return nil, err
	}
	return &Result{Method: entity.PaymentMethodWallet, Status: StatusPaid, WalletTransaction: tx}, nil
}

func (p *Processor) collectCard(ctx context.Context, req Request) (*Result, error) {
	if p.gateway == nil {
		return nil, apperror.Reject(apperror.ReasonUnsupportedPayment, "card payments are not configured")
	}
	if req.CardToken == "" {
		return nil, apperror.Reject(apperror.ReasonPaymentDeclined, "card token is required")
	}

	res, err := p.gateway.Charge(ctx, ChargeRequest{
		OrderId:     req.OrderId,
		Amount:      req.Amount,
		CardToken:   req.CardToken,
		ItemName:    req.Description,
		CustomerRef: req.UserId.String(),
	})
	if err != nil {
		return nil, apperror.PaymentFailed(apperror.ReasonPaymentDeclined, "payment gateway unavailable", err)
	}

	switch res.Status {
	case ChargeSucceeded:
		return &Result{Method: entity.PaymentMethodCard, Status: StatusPaid, GatewayTxId: res.TransactionId}, nil
	case ChargePending:
		p.logger.Info(logModule, "Card charge pending", map[string]interface{}{
			"order_id":       req.OrderId,
			"transaction_id": res.TransactionId,
		})
		return &Result{Method: entity.PaymentMethodCard, Status: StatusPending, GatewayTxId: res.TransactionId}, nil
	default:
		p.logger.Warn(logModule, "Card charge declined", map[string]interface{}{
			"order_id": req.OrderId,
			"message":  res.Message,
		})
		return nil, apperror.PaymentFailed(apperror.ReasonPaymentDeclined, "card payment was declined", nil)
	}
}

// RefundCard returns money to the card of a settled order.
func (p *Processor) RefundCard(ctx context.Context, orderId string, amount decimal.Decimal, reason string) error {
	if p.gateway == nil {
		return apperror.Reject(apperror.ReasonUnsupportedPayment, "card payments are not configured")
	}
	if err := p.gateway.Refund(ctx, orderId, amount, reason); err != nil {
		return apperror.PaymentFailed(apperror.ReasonPaymentDeclined, "refund through gateway failed", err)
	}
	return nil
}
