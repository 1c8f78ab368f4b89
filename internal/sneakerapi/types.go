package sneakerapi

import (
	"strings"

	"github.com/solekit/telegram-sneaker-bot/internal/prediction"
	"github.com/tidwall/gjson"
)

// InventoryRecord is one stocked item as listed by the service.
type InventoryRecord struct {
	ID             string
	ProductID      string
	Brand          string
	Model          string
	ProductType    string
	ClassName      string
	PricePredicted prediction.Amount
	PriceModified  prediction.Amount
	Quantity       int
	ImageID        string
}

// CommitRequest is the add-to-inventory body.
type CommitRequest struct {
	Slug           string   `json:"slug"`
	ClassName      string   `json:"class_name"`
	Brand          string   `json:"brand"`
	Model          string   `json:"model"`
	ProductName    string   `json:"product_name"`
	ProductType    string   `json:"product_type"`
	PricePredicted *float64 `json:"price_predicted"`
	Price          float64  `json:"price"`
	Quantity       int      `json:"quantity"`
}

// NewCommitRequest converts a validated form into a request body.
func NewCommitRequest(form prediction.CommitForm) CommitRequest {
	req := CommitRequest{
		Slug:        form.Slug,
		ClassName:   form.ClassName,
		Brand:       form.Brand,
		Model:       form.ModelName,
		ProductName: form.ProductName,
		ProductType: form.ProductType,
		Price:       form.Price.InexactFloat64(),
		Quantity:    form.Quantity,
	}
	if form.PricePredicted.Valid {
		v := form.PricePredicted.Value
		req.PricePredicted = &v
	}
	return req
}

func (r CommitRequest) validate() error {
	if strings.TrimSpace(r.Slug) == "" && strings.TrimSpace(r.ClassName) == "" {
		return &ValidationError{Field: "item", Reason: "slug or class name is required"}
	}
	if r.Quantity < 1 {
		return &ValidationError{Field: "quantity", Reason: "quantity must be at least 1"}
	}
	if r.Price < 0 {
		return &ValidationError{Field: "price", Reason: "price cannot be negative"}
	}
	return nil
}

// CommitAck is the service's answer to an add-to-inventory call.
type CommitAck struct {
	Status   string // "inserted" or "updated"
	Quantity int
	ImageID  string
}

// Updated reports whether an existing record was restocked.
func (a CommitAck) Updated() bool {
	return a.Status == "updated"
}

func parseCommitAck(body []byte) *CommitAck {
	root := gjson.ParseBytes(body)
	return &CommitAck{
		Status:   root.Get("status").String(),
		Quantity: int(root.Get("quantity").Int()),
		ImageID:  idOf(root.Get("image_gridfs_id")),
	}
}

// parseInventory accepts a bare array or an object with an "items" array.
func parseInventory(body []byte) []InventoryRecord {
	root := gjson.ParseBytes(body)
	if root.IsObject() {
		root = root.Get("items")
	}
	if !root.IsArray() {
		return nil
	}
	records := []InventoryRecord{}
	root.ForEach(func(_, v gjson.Result) bool {
		if !v.IsObject() {
			return true
		}
		id := idOf(v.Get("_id"))
		if id == "" {
			id = idOf(v.Get("id"))
		}
		records = append(records, InventoryRecord{
			ID:             id,
			ProductID:      idOf(v.Get("product_id")),
			Brand:          v.Get("brand").String(),
			Model:          v.Get("model").String(),
			ProductType:    v.Get("product_type").String(),
			ClassName:      v.Get("class_name").String(),
			PricePredicted: amount(v.Get("price_predicted")),
			PriceModified:  amount(v.Get("price_modified")),
			Quantity:       int(v.Get("quantity").Int()),
			ImageID:        idOf(v.Get("image_gridfs_id")),
		})
		return true
	})
	return records
}

// idOf reads an id sent as a string, a number or a {"$oid": ...} object.
func idOf(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if s == "None" {
			return ""
		}
		return s
	case gjson.Number:
		return v.Raw
	case gjson.JSON:
		if oid, ok := v.Map()["$oid"]; ok {
			return oid.String()
		}
	}
	return ""
}

func amount(v gjson.Result) prediction.Amount {
	if v.Type != gjson.Number || v.Float() < 0 {
		return prediction.Amount{}
	}
	return prediction.Known(v.Float())
}
