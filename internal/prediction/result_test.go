package prediction

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullResponse(t *testing.T) {
	body := `{
		"status": "ok",
		"decision": "continue",
		"confidence": 0.92,
		"confidence_level": "HIGH",
		"class_name": "nike_dunk_low",
		"brand": "Nike",
		"model": "Dunk Low",
		"product_type": "sneaker",
		"slug_used": "nike-dunk-low-panda",
		"predicted_price": 120.0,
		"retail_price_usd": "110",
		"release_age": 2.5,
		"product_info": {"silhouette": "Dunk"},
		"sneaker_check": {"is_sneaker": true, "probability": 0.97},
		"inventory": {"exists": true, "current_quantity": 3, "price_modified": null, "price_predicted": 115.5},
		"similar_images": [{"path": "dunk/1.jpg", "score": 0.88}]
	}`

	r := Parse([]byte(body))
	assert.Equal(t, StatusOK, r.Status)
	assert.Equal(t, DecisionContinue, r.Decision)
	assert.Equal(t, LevelHigh, r.ConfidenceLevel)
	assert.Equal(t, Known(0.92), r.Confidence)
	assert.Equal(t, "Nike", r.Brand)
	assert.Equal(t, "Dunk Low", r.ModelName)
	assert.Equal(t, "Dunk", r.Silhouette)
	assert.Equal(t, Known(120), r.PredictedPrice)
	assert.Equal(t, Known(110), r.RetailPriceUSD)
	assert.True(t, r.SneakerCheck.Known)
	assert.True(t, r.SneakerCheck.IsSneaker)
	require.NotNil(t, r.Inventory)
	assert.True(t, r.Inventory.Exists)
	assert.Equal(t, 3, r.Inventory.CurrentQuantity)
	assert.False(t, r.Inventory.PriceModified.Valid)
	assert.Equal(t, Known(115.5), r.Inventory.PricePredicted)
	assert.Len(t, r.Similar.Items, 1)
	assert.NoError(t, r.ShapeError())
}

func TestParse_MissingNumbersAreUnknown(t *testing.T) {
	r := Parse([]byte(`{"status":"ok","predicted_price":-1,"confidence":null}`))

	assert.False(t, r.PredictedPrice.Valid)
	assert.False(t, r.Confidence.Valid)
	assert.Equal(t, Unknown, r.PredictedPrice.Money())
	assert.Equal(t, Unknown, r.RetailPriceUSD.Money())
	assert.Equal(t, Unknown, r.Confidence.Percent())
	assert.Equal(t, "N/A", r.SlugDisplay())
	assert.Nil(t, r.Inventory)
}

func TestParse_KnownZeroIsNotUnknown(t *testing.T) {
	r := Parse([]byte(`{"predicted_price":0}`))
	assert.True(t, r.PredictedPrice.Valid)
	assert.Equal(t, "$0.00", r.PredictedPrice.Money())
}

func TestParse_ModelNamePreferred(t *testing.T) {
	r := Parse([]byte(`{"model_name":"Air Max 90","model":"am90"}`))
	assert.Equal(t, "Air Max 90", r.ModelName)
}

func TestResult_NormalizeIdempotent(t *testing.T) {
	r := Result{
		Status:         " Low-Confidence",
		Decision:       "Manual Check",
		Confidence:     Known(-0.2),
		PredictedPrice: Known(99.99),
		Inventory:      &Inventory{Exists: true, CurrentQuantity: -2, PriceModified: Known(-5)},
		Similar:        Similar{Source: "BUILDING"},
	}

	once := r.Normalize()
	assert.Equal(t, StatusLowConfidence, once.Status)
	assert.Equal(t, DecisionManualCheck, once.Decision)
	assert.False(t, once.Confidence.Valid)
	assert.Equal(t, 0, once.Inventory.CurrentQuantity)
	assert.False(t, once.Inventory.PriceModified.Valid)
	assert.Equal(t, once, once.Normalize())
}

func TestResult_Tier(t *testing.T) {
	assert.Equal(t, LevelMedium, Result{ConfidenceLevel: LevelMedium, Confidence: Known(0.99)}.Tier())
	assert.Equal(t, LevelHigh, Result{Confidence: Known(0.85)}.Tier())
	assert.Equal(t, LevelMedium, Result{Confidence: Known(0.6)}.Tier())
	assert.Equal(t, LevelLow, Result{Confidence: Known(0.59)}.Tier())
	assert.Equal(t, ConfidenceLevel(""), Result{}.Tier())
}

func TestResult_ShapeError(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"empty", `{}`, true},
		{"only prices", `{"predicted_price":100}`, true},
		{"unknown status", `{"status":"maybe"}`, true},
		{"unknown decision", `{"status":"ok","decision":"later"}`, true},
		{"class only", `{"class_name":"nike_dunk_low"}`, false},
		{"gate only", `{"sneaker_check":{"is_sneaker":false}}`, false},
		{"status only", `{"status":"not_sneaker"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Parse([]byte(tt.body)).ShapeError()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnrecognizedShape))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
