package prediction

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAddDraft(t *testing.T) {
	d := NewAddDraft(Parse([]byte(`{"slug_used":"nike-dunk","predicted_price":120}`)))
	assert.Equal(t, "120.00", d.PriceText)
	assert.Equal(t, "1", d.QuantityText)

	d = NewAddDraft(Parse([]byte(`{"slug_used":"nike-dunk"}`)))
	assert.Equal(t, "", d.PriceText)
	assert.False(t, d.UseSuggestedPrice())
}

func TestAddDraft_OwnsItsResult(t *testing.T) {
	r := Parse([]byte(`{"slug_used":"nike-dunk","inventory":{"exists":true,"current_quantity":1}}`))
	d := NewAddDraft(r)
	r.Inventory.CurrentQuantity = 9
	assert.Equal(t, 1, d.Result.Inventory.CurrentQuantity)
}

func TestAddDraft_Validate(t *testing.T) {
	base := Parse([]byte(`{"slug_used":"nike-dunk","class_name":"nike_dunk","brand":"Nike","model":"Dunk","predicted_price":120}`))

	t.Run("valid", func(t *testing.T) {
		d := NewAddDraft(base)
		d.PriceText = "$135.5"
		d.QuantityText = "2"
		form, err := d.Validate()
		require.NoError(t, err)
		assert.Equal(t, "nike-dunk", form.Slug)
		assert.Equal(t, "Dunk", form.ModelName)
		assert.True(t, decimal.RequireFromString("135.50").Equal(form.Price))
		assert.Equal(t, 2, form.Quantity)
		assert.Equal(t, Known(120), form.PricePredicted)
	})

	tests := []struct {
		name     string
		price    string
		quantity string
		field    string
	}{
		{"empty price", "", "1", "price"},
		{"non-numeric price", "abc", "1", "price"},
		{"negative price", "-3", "1", "price"},
		{"zero quantity", "100", "0", "quantity"},
		{"negative quantity", "100", "-1", "quantity"},
		{"fractional quantity", "100", "1.5", "quantity"},
		{"empty quantity", "100", " ", "quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewAddDraft(base)
			d.PriceText = tt.price
			d.QuantityText = tt.quantity
			_, err := d.Validate()
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	t.Run("missing identity", func(t *testing.T) {
		d := NewAddDraft(Parse([]byte(`{"predicted_price":120}`)))
		_, err := d.Validate()
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "item", verr.Field)
	})
}

func TestParsePrice(t *testing.T) {
	tests := map[string]string{
		"120":     "120",
		"120.50":  "120.5",
		"120,50":  "120.5",
		"$120":    "120",
		"120 $":   "120",
		"€120":    "120",
		"0":       "0",
		"19.999":  "20",
		" 7.125 ": "7.13",
	}
	for in, want := range tests {
		got, err := ParsePrice(in)
		require.NoError(t, err, in)
		assert.True(t, decimal.RequireFromString(want).Equal(got), "%s: got %s", in, got)
	}
}
