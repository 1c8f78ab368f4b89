// Package prediction interprets the response of the sneaker prediction
// service. It shapes the raw response into a Result, decides which outcome the
// chat should show, and reconciles the predicted item with existing inventory.
//
// Everything here is a pure function of its input. Nothing is remembered
// between predictions.
package prediction

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrUnrecognizedShape marks a response that lacks every field the decision
// engine looks at. Such a response still renders, as an indeterminate outcome.
var ErrUnrecognizedShape = errors.New("unrecognized prediction result shape")

// Status is the gate/verdict signal of a prediction.
type Status string

const (
	StatusOK            Status = "ok"
	StatusNotSneaker    Status = "not_sneaker"
	StatusLowConfidence Status = "low_confidence"
)

func (s Status) known() bool {
	return s == StatusOK || s == StatusNotSneaker || s == StatusLowConfidence
}

// Decision is the service's recommendation on committing the item.
type Decision string

const (
	DecisionContinue    Decision = "continue"
	DecisionManualCheck Decision = "manual_check"
	DecisionStop        Decision = "stop"
)

func (d Decision) known() bool {
	return d == DecisionContinue || d == DecisionManualCheck || d == DecisionStop
}

// ConfidenceLevel is the coarse tier derived from the raw confidence.
type ConfidenceLevel string

const (
	LevelHigh   ConfidenceLevel = "high"
	LevelMedium ConfidenceLevel = "medium"
	LevelLow    ConfidenceLevel = "low"
)

// SneakerCheck is the outcome of the service's sneaker gate.
type SneakerCheck struct {
	Known       bool // the service sent a sneaker_check object
	IsSneaker   bool
	Probability Amount
}

// Inventory is present when the service already looked up the predicted
// identity in inventory.
type Inventory struct {
	Exists          bool
	CurrentQuantity int
	PriceModified   Amount
	PricePredicted  Amount
}

// Result is the semantic view of one prediction response.
type Result struct {
	Status          Status
	Decision        Decision
	ConfidenceLevel ConfidenceLevel
	Confidence      Amount

	ClassName   string
	Brand       string
	ModelName   string
	ProductName string
	ProductType string
	SlugUsed    string
	Silhouette  string

	PredictedPrice Amount
	RetailPriceUSD Amount
	ReleaseAge     Amount // years

	SneakerCheck SneakerCheck
	Inventory    *Inventory
	Similar      Similar

	// ServiceError carries the service's own "error" message, if any.
	ServiceError string
}

// Parse decodes a prediction response. It never fails: missing fields and
// fields of the wrong JSON type read as absent.
func Parse(body []byte) Result {
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return Result{}
	}

	r := Result{
		Status:          Status(str(root, "status")),
		Decision:        Decision(str(root, "decision")),
		ConfidenceLevel: ConfidenceLevel(str(root, "confidence_level")),
		Confidence:      amountOf(root.Get("confidence")),
		ClassName:       str(root, "class_name"),
		Brand:           str(root, "brand"),
		ModelName:       str(root, "model_name", "model"),
		ProductName:     str(root, "product_name"),
		ProductType:     str(root, "product_type"),
		SlugUsed:        str(root, "slug_used"),
		Silhouette:      str(root, "silhouette", "product_info.silhouette"),
		PredictedPrice:  amountOf(root.Get("predicted_price")),
		RetailPriceUSD:  amountOf(root.Get("retail_price_usd")),
		ReleaseAge:      amountOf(root.Get("release_age")),
		Similar:         ParseSimilar(root.Get("similar_images")),
		ServiceError:    str(root, "error"),
	}

	if check := root.Get("sneaker_check"); check.IsObject() {
		r.SneakerCheck = SneakerCheck{
			Known:       true,
			IsSneaker:   check.Get("is_sneaker").Type == gjson.True,
			Probability: amountOf(check.Get("probability")),
		}
	}

	if inv := root.Get("inventory"); inv.IsObject() {
		r.Inventory = &Inventory{
			Exists:          inv.Get("exists").Type == gjson.True,
			CurrentQuantity: int(amountOf(inv.Get("current_quantity")).Value),
			PriceModified:   amountOf(inv.Get("price_modified")),
			PricePredicted:  amountOf(inv.Get("price_predicted")),
		}
	}

	return r.Normalize()
}

// str returns the first path that holds a non-empty string.
func str(root gjson.Result, paths ...string) string {
	for _, p := range paths {
		v := root.Get(p)
		if v.Type != gjson.String {
			continue
		}
		if s := strings.TrimSpace(v.Str); s != "" {
			return s
		}
	}
	return ""
}

// normToken lower-cases an enum token and folds "manual-check" and
// "manual check" into "manual_check".
func normToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

// Normalize canonicalizes enum tokens, drops negative prices and scores, and
// normalizes the similar items. It is idempotent.
func (r Result) Normalize() Result {
	r.Status = Status(normToken(string(r.Status)))
	r.Decision = Decision(normToken(string(r.Decision)))
	r.ConfidenceLevel = ConfidenceLevel(normToken(string(r.ConfidenceLevel)))

	r.ClassName = strings.TrimSpace(r.ClassName)
	r.Brand = strings.TrimSpace(r.Brand)
	r.ModelName = strings.TrimSpace(r.ModelName)
	r.ProductName = strings.TrimSpace(r.ProductName)
	r.ProductType = strings.TrimSpace(r.ProductType)
	r.SlugUsed = strings.TrimSpace(r.SlugUsed)
	r.Silhouette = strings.TrimSpace(r.Silhouette)

	r.Confidence = r.Confidence.nonNegative()
	r.PredictedPrice = r.PredictedPrice.nonNegative()
	r.RetailPriceUSD = r.RetailPriceUSD.nonNegative()
	r.ReleaseAge = r.ReleaseAge.nonNegative()
	r.SneakerCheck.Probability = r.SneakerCheck.Probability.nonNegative()

	if r.Inventory != nil {
		inv := *r.Inventory
		if inv.CurrentQuantity < 0 {
			inv.CurrentQuantity = 0
		}
		inv.PriceModified = inv.PriceModified.nonNegative()
		inv.PricePredicted = inv.PricePredicted.nonNegative()
		r.Inventory = &inv
	}

	r.Similar = r.Similar.Normalize()
	return r
}

// SlugDisplay returns the slug the price was predicted from, or "N/A".
func (r Result) SlugDisplay() string {
	if r.SlugUsed == "" {
		return "N/A"
	}
	return r.SlugUsed
}

// Tier returns the service's confidence level, or one derived from the raw
// confidence when the level is absent. The derived tier is for display only.
func (r Result) Tier() ConfidenceLevel {
	if r.ConfidenceLevel != "" {
		return r.ConfidenceLevel
	}
	if !r.Confidence.Valid {
		return ""
	}
	switch c := r.Confidence.Value; {
	case c >= 0.85:
		return LevelHigh
	case c >= 0.6:
		return LevelMedium
	default:
		return LevelLow
	}
}

// ShapeError reports a response the decision engine cannot interpret. The
// caller logs it; rendering continues with the indeterminate outcome.
func (r Result) ShapeError() error {
	r = r.Normalize()
	if r.Status == "" && r.Decision == "" && !r.SneakerCheck.Known && r.ClassName == "" {
		return fmt.Errorf("%w: no status, decision, sneaker_check or class_name", ErrUnrecognizedShape)
	}
	if r.Status != "" && !r.Status.known() {
		return fmt.Errorf("%w: status %q", ErrUnrecognizedShape, r.Status)
	}
	if r.Decision != "" && !r.Decision.known() {
		return fmt.Errorf("%w: decision %q", ErrUnrecognizedShape, r.Decision)
	}
	return nil
}
