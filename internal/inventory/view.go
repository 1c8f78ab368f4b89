// Package inventory derives the display rows of the inventory dashboard from
// the service's inventory records. It never mutates the records.
package inventory

import (
	"strconv"
	"strings"

	"github.com/solekit/telegram-sneaker-bot/internal/prediction"
	"github.com/solekit/telegram-sneaker-bot/internal/sneakerapi"
)

// PerPage is the number of rows shown per dashboard page.
const PerPage = 5

// Row is one inventory record prepared for display.
type Row struct {
	ID        string
	Label     string // "#<productId>", empty without a product id
	Title     string // "brand model"
	Subtitle  string // product type, else class name
	Predicted string
	UserPrice string // "--" when no price was set by hand
	Quantity  int
	ImageID   string
}

// Effective returns the price the item is stocked at.
func (r Row) Effective() string {
	if r.UserPrice != prediction.Unknown {
		return r.UserPrice
	}
	return r.Predicted
}

// BuildRows keeps the service's order.
func BuildRows(records []sneakerapi.InventoryRecord) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := Row{
			ID:        rec.ID,
			Title:     strings.TrimSpace(strings.TrimSpace(rec.Brand) + " " + strings.TrimSpace(rec.Model)),
			Subtitle:  rec.ProductType,
			Predicted: rec.PricePredicted.Money(),
			UserPrice: rec.PriceModified.Money(),
			Quantity:  rec.Quantity,
			ImageID:   rec.ImageID,
		}
		if row.Subtitle == "" {
			row.Subtitle = rec.ClassName
		}
		if row.Title == "" {
			row.Title = "Unknown item"
		}
		if rec.ProductID != "" {
			row.Label = "#" + rec.ProductID
		}
		rows = append(rows, row)
	}
	return rows
}

// PageView is one page of rows.
type PageView struct {
	Rows       []Row
	Page       int // 1-based
	TotalPages int
	Total      int
	HasPrev    bool
	HasNext    bool
}

// Empty reports whether there is nothing to show at all.
func (p PageView) Empty() bool {
	return p.Total == 0
}

// Paginate clamps page into range, so a stale page number after the list
// shrank still shows the last page.
func Paginate(rows []Row, page, perPage int) PageView {
	if perPage < 1 {
		perPage = PerPage
	}
	total := len(rows)
	totalPages := (total + perPage - 1) / perPage
	if totalPages == 0 {
		return PageView{Page: 1, TotalPages: 0}
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	offset := (page - 1) * perPage
	end := offset + perPage
	if end > total {
		end = total
	}

	return PageView{
		Rows:       rows[offset:end],
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		HasPrev:    page > 1,
		HasNext:    end < total,
	}
}

// ParsePage reads the page number of an "inv:page:N" callback.
func ParsePage(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
