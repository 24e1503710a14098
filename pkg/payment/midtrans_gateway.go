package payment

import (
	"context"
	"fmt"

	"eventhub-accounting-be/internal/pkg/logger"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/shopspring/decimal"
)

// MidtransGateway charges tokenized cards through the Midtrans Core API.
type MidtransGateway struct {
	client coreapi.Client
	logger logger.ILogger
}

func NewMidtransGateway(serverKey string, isProduction bool, log logger.ILogger) *MidtransGateway {
	env := midtrans.Sandbox
	if isProduction {
		env = midtrans.Production
	}

	var c coreapi.Client
	c.New(serverKey, env)
	return &MidtransGateway{client: c, logger: log}
}

// grossAmount converts to whole currency units; Midtrans does not accept fractions.
func grossAmount(amount decimal.Decimal) int64 {
	return amount.Round(0).IntPart()
}

func (g *MidtransGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, midErr := g.client.ChargeTransaction(&coreapi.ChargeReq{
		PaymentType: coreapi.PaymentTypeCreditCard,
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderId,
			GrossAmt: grossAmount(req.Amount),
		},
		CreditCard: &coreapi.CreditCardDetails{
			TokenID:        req.CardToken,
			Authentication: false,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    req.OrderId,
				Name:  req.ItemName,
				Price: grossAmount(req.Amount),
				Qty:   1,
			},
		},
	})
	if midErr != nil {
		g.logger.Error("PAYMENT", "Midtrans charge failed", map[string]interface{}{
			"order_id": req.OrderId,
			"error":    midErr.GetMessage(),
		})
		return nil, fmt.Errorf("midtrans charge: %s", midErr.GetMessage())
	}

	result := &ChargeResult{
		TransactionId: resp.TransactionID,
		Status:        mapTransactionStatus(resp.TransactionStatus, resp.FraudStatus),
		Message:       resp.StatusMessage,
	}
	g.logger.Info("PAYMENT", "Midtrans charge processed", map[string]interface{}{
		"order_id":       req.OrderId,
		"transaction_id": resp.TransactionID,
		"status":         resp.TransactionStatus,
		"fraud_status":   resp.FraudStatus,
	})
	return result, nil
}

func (g *MidtransGateway) Refund(ctx context.Context, orderId string, amount decimal.Decimal, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, midErr := g.client.RefundTransaction(orderId, &coreapi.RefundReq{
		Amount: grossAmount(amount),
		Reason: reason,
	})
	if midErr != nil {
		return fmt.Errorf("midtrans refund: %s", midErr.GetMessage())
	}
	return nil
}

// mapTransactionStatus folds Midtrans transaction and fraud statuses into a ChargeStatus.
func mapTransactionStatus(transactionStatus, fraudStatus string) ChargeStatus {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "challenge" {
			return ChargePending
		}
		return ChargeSucceeded
	case "settlement":
		return ChargeSucceeded
	case "pending", "authorize":
		return ChargePending
	default:
		return ChargeDeclined
	}
}
