// Package payment charges buyers at checkout.
//
// The store has no gateway integration; Simulated approves every positive
// charge and issues a random reference that is stored with the purchase.
package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// FreeReference marks purchases whose total was zero and never reached a processor.
const FreeReference = "free"

// Processor charges an amount in cents and returns a payment reference.
type Processor interface {
	Charge(ctx context.Context, userID uint, amountCents int64) (string, error)
}

// Simulated is a Processor that accepts every charge.
type Simulated struct{}

// Charge returns a fresh uuid reference for any positive amount.
func (Simulated) Charge(ctx context.Context, userID uint, amountCents int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if amountCents <= 0 {
		return "", fmt.Errorf("charge user %d: amount must be positive, got %d", userID, amountCents)
	}
	return uuid.NewString(), nil
}

// ChargeTotal charges amountCents through p, skipping the processor entirely
// for free orders.
func ChargeTotal(ctx context.Context, p Processor, userID uint, amountCents int64) (string, error) {
	if amountCents <= 0 {
		return FreeReference, nil
	}
	return p.Charge(ctx, userID, amountCents)
}
