package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name string
		inv  Inventory
		want Amount
	}{
		{"modified wins", Inventory{PriceModified: Known(150), PricePredicted: Known(120)}, Known(150)},
		{"modified zero is still set", Inventory{PriceModified: Known(0), PricePredicted: Known(120)}, Known(0)},
		{"predicted fallback", Inventory{PricePredicted: Known(120)}, Known(120)},
		{"unknown", Inventory{}, Amount{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectivePrice(tt.inv)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, Unknown, EffectivePrice(Inventory{}).Money())
}

func TestReconcile(t *testing.T) {
	t.Run("existing item", func(t *testing.T) {
		r := Parse([]byte(`{"predicted_price":120,"inventory":{"exists":true,"current_quantity":2,"price_modified":140}}`))
		rec := Reconcile(r)
		assert.True(t, rec.Existing)
		assert.Equal(t, 2, rec.CurrentQuantity)
		assert.Equal(t, Known(140), rec.EffectivePrice)
		assert.Equal(t, Known(120), rec.SuggestedPrice)
	})

	t.Run("inventory says not present", func(t *testing.T) {
		r := Parse([]byte(`{"predicted_price":120,"inventory":{"exists":false,"current_quantity":5}}`))
		rec := Reconcile(r)
		assert.False(t, rec.Existing)
		assert.Equal(t, 0, rec.CurrentQuantity)
		assert.Equal(t, Known(120), rec.SuggestedPrice)
	})

	t.Run("no inventory lookup", func(t *testing.T) {
		rec := Reconcile(Parse([]byte(`{}`)))
		assert.False(t, rec.Existing)
		assert.False(t, rec.SuggestedPrice.Valid)
	})
}
