package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodeUnwrapsChain(t *testing.T) {
	base := NewNotFoundError("Game", 7)
	wrapped := fmt.Errorf("toggle like: %w", base)

	assert.Equal(t, CodeNotFound, ErrorCode(wrapped))
	assert.True(t, IsCode(wrapped, CodeNotFound))
	assert.Equal(t, "Game with ID 7 not found", base.Error())
}

func TestErrorCodeDefaultsToInternal(t *testing.T) {
	assert.Equal(t, CodeInternal, ErrorCode(errors.New("boom")))
	assert.False(t, IsCode(nil, CodeInternal))
}

func TestAppErrorIncludesCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := NewConflictError("Like already recorded", cause)

	assert.Equal(t, "Like already recorded: duplicate key", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestGamePricing(t *testing.T) {
	discount := int64(500)
	tooHigh := int64(2500)

	cases := []struct {
		name       string
		game       Game
		free       bool
		discounted bool
		effective  int64
	}{
		{"free", Game{PriceCents: 0}, true, false, 0},
		{"full price", Game{PriceCents: 1999}, false, false, 1999},
		{"on sale", Game{PriceCents: 1999, DiscountPriceCents: &discount}, false, true, 500},
		{"discount not lower", Game{PriceCents: 1999, DiscountPriceCents: &tooHigh}, false, false, 1999},
		{"free with discount set", Game{PriceCents: 0, DiscountPriceCents: &discount}, true, false, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.free, tc.game.IsFree())
			assert.Equal(t, tc.discounted, tc.game.IsDiscounted())
			assert.Equal(t, tc.effective, tc.game.EffectivePriceCents())
		})
	}
}
