package payment

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// StubGateway is an in-process Gateway for tests and local runs without
// gateway credentials. It answers every charge with Status.
type StubGateway struct {
	mu      sync.Mutex
	Status  ChargeStatus
	Err     error
	charges []ChargeRequest
	refunds []string
	seq     int
}

func NewStubGateway(status ChargeStatus) *StubGateway {
	return &StubGateway{Status: status}
}

func (g *StubGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return nil, g.Err
	}
	g.seq++
	g.charges = append(g.charges, req)
	return &ChargeResult{
		TransactionId: fmt.Sprintf("stub-%d", g.seq),
		Status:        g.Status,
	}, nil
}

func (g *StubGateway) Refund(ctx context.Context, orderId string, amount decimal.Decimal, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return g.Err
	}
	g.refunds = append(g.refunds, orderId)
	return nil
}

func (g *StubGateway) Charges() []ChargeRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]ChargeRequest(nil), g.charges...)
}

func (g *StubGateway) Refunds() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.refunds...)
}
