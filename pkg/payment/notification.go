package payment

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
)

// Notification is the gateway's asynchronous status callback.
type Notification struct {
	OrderId           string `json:"order_id" validate:"required"`
	TransactionId     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status" validate:"required"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key" validate:"required"`
}

type NotificationOutcome string

const (
	NotificationSettled  NotificationOutcome = "settled"
	NotificationPending  NotificationOutcome = "pending"
	NotificationFailed   NotificationOutcome = "failed"
	NotificationRefunded NotificationOutcome = "refunded"
)

// Signature computes SHA512(order_id + status_code + gross_amount + server_key).
func Signature(orderId, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderId + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

func (n *Notification) VerifySignature(serverKey string) bool {
	if serverKey == "" || n.SignatureKey == "" {
		return false
	}
	expected := Signature(n.OrderId, n.StatusCode, n.GrossAmount, serverKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(n.SignatureKey)) == 1
}

func (n *Notification) Outcome() NotificationOutcome {
	switch n.TransactionStatus {
	case "refund", "partial_refund":
		return NotificationRefunded
	case "deny", "cancel", "expire", "failure":
		return NotificationFailed
	}
	switch mapTransactionStatus(n.TransactionStatus, n.FraudStatus) {
	case ChargeSucceeded:
		return NotificationSettled
	case ChargePending:
		return NotificationPending
	default:
		return NotificationFailed
	}
}
