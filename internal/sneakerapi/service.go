package sneakerapi

import (
	"context"

	"github.com/solekit/telegram-sneaker-bot/internal/prediction"
)

// Service abstracts the remote sneaker classification and inventory API.
type Service interface {
	// Predict classifies and prices an image.
	Predict(ctx context.Context, image []byte, filename string) (prediction.Result, error)

	// CommitInventory inserts the item or adds to its quantity.
	CommitInventory(ctx context.Context, req CommitRequest) (*CommitAck, error)

	// ListInventory lists stocked items in the service's order.
	ListInventory(ctx context.Context) ([]InventoryRecord, error)

	// ImageURL maps an image id to its URL. The id is not validated.
	ImageURL(id string) string

	// FetchImage downloads the image behind ImageURL.
	FetchImage(ctx context.Context, id string) ([]byte, error)
}

var _ Service = (*Client)(nil)
