package payment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProcessor struct {
	calls int
}

func (r *recordingProcessor) Charge(ctx context.Context, userID uint, amountCents int64) (string, error) {
	r.calls++
	return "ref", nil
}

func TestSimulatedCharge(t *testing.T) {
	ref, err := Simulated{}.Charge(context.Background(), 1, 1999)
	require.NoError(t, err)
	_, err = uuid.Parse(ref)
	assert.NoError(t, err)

	_, err = Simulated{}.Charge(context.Background(), 1, 0)
	assert.Error(t, err)
}

func TestSimulatedChargeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Simulated{}.Charge(ctx, 1, 500)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChargeTotalSkipsFreeOrders(t *testing.T) {
	p := &recordingProcessor{}

	ref, err := ChargeTotal(context.Background(), p, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, FreeReference, ref)
	assert.Zero(t, p.calls)

	ref, err = ChargeTotal(context.Background(), p, 1, 250)
	require.NoError(t, err)
	assert.Equal(t, "ref", ref)
	assert.Equal(t, 1, p.calls)
}
