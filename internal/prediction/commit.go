package prediction

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError is a locally detected input problem. It is returned before
// any request leaves the client.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CommitForm is a validated add-to-inventory request.
type CommitForm struct {
	Slug           string
	ClassName      string
	Brand          string
	ModelName      string
	ProductName    string
	ProductType    string
	PricePredicted Amount
	Price          decimal.Decimal
	Quantity       int
}

// AddDraft is the editable state of the add flow. It holds its own copy of
// the result it was opened from.
type AddDraft struct {
	Result       Result
	PriceText    string
	QuantityText string
}

// NewAddDraft seeds the price from the predicted price and the quantity with 1.
func NewAddDraft(r Result) *AddDraft {
	r = r.Normalize()
	d := &AddDraft{Result: r, QuantityText: "1"}
	if r.PredictedPrice.Valid {
		d.PriceText = r.PredictedPrice.Fixed(2)
	}
	return d
}

// Reconciliation returns the new-vs-existing view of the draft's item.
func (d *AddDraft) Reconciliation() Reconciliation {
	return Reconcile(d.Result)
}

// UseSuggestedPrice resets the price to the predicted one. It reports false
// when there is no predicted price.
func (d *AddDraft) UseSuggestedPrice() bool {
	if !d.Result.PredictedPrice.Valid {
		return false
	}
	d.PriceText = d.Result.PredictedPrice.Fixed(2)
	return true
}

// Validate checks the draft and builds the form to commit.
func (d *AddDraft) Validate() (CommitForm, error) {
	r := d.Result
	if r.SlugUsed == "" && r.ClassName == "" {
		return CommitForm{}, &ValidationError{Field: "item", Reason: "prediction has no slug or class name"}
	}
	price, err := ParsePrice(d.PriceText)
	if err != nil {
		return CommitForm{}, err
	}
	qty, err := ParseQuantity(d.QuantityText)
	if err != nil {
		return CommitForm{}, err
	}
	return CommitForm{
		Slug:           r.SlugUsed,
		ClassName:      r.ClassName,
		Brand:          r.Brand,
		ModelName:      r.ModelName,
		ProductName:    r.ProductName,
		ProductType:    r.ProductType,
		PricePredicted: r.PredictedPrice,
		Price:          price,
		Quantity:       qty,
	}, nil
}

// ParsePrice reads a user-typed price such as "120", "$120.50" or "120,50 €".
// The result is non-negative and rounded to cents.
func ParsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "$€ ")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, &ValidationError{Field: "price", Reason: "price is required"}
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "price", Reason: fmt.Sprintf("%q is not a number", s)}
	}
	if d.IsNegative() {
		return decimal.Zero, &ValidationError{Field: "price", Reason: "price cannot be negative"}
	}
	return d.Round(2), nil
}

// ParseQuantity reads a whole quantity of at least 1.
func ParseQuantity(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, &ValidationError{Field: "quantity", Reason: "quantity is required"}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ValidationError{Field: "quantity", Reason: fmt.Sprintf("%q is not a whole number", s)}
	}
	if n < 1 {
		return 0, &ValidationError{Field: "quantity", Reason: "quantity must be at least 1"}
	}
	return n, nil
}
