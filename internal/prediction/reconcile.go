package prediction

// Reconciliation compares a predicted item with what inventory already holds.
type Reconciliation struct {
	Existing        bool
	CurrentQuantity int
	// EffectivePrice is the stocked price of an existing item.
	EffectivePrice Amount
	// SuggestedPrice seeds the editable price for a new or restocked item.
	SuggestedPrice Amount
}

// EffectivePrice prefers the user-set price over the predicted one. It is
// unknown when neither is set, never 0.
func EffectivePrice(inv Inventory) Amount {
	return inv.PriceModified.Or(inv.PricePredicted)
}

// Reconcile builds the new-vs-existing view for a result.
func Reconcile(r Result) Reconciliation {
	r = r.Normalize()
	rec := Reconciliation{SuggestedPrice: r.PredictedPrice}
	if r.Inventory != nil && r.Inventory.Exists {
		rec.Existing = true
		rec.CurrentQuantity = r.Inventory.CurrentQuantity
		rec.EffectivePrice = EffectivePrice(*r.Inventory)
	}
	return rec
}
