// Package sneakerapi is the client of the remote sneaker classification and
// inventory service.
package sneakerapi

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/solekit/telegram-sneaker-bot/internal/prediction"
	"github.com/tidwall/gjson"
)

const DefaultBaseURL = "http://127.0.0.1:5000"

type ClientOpts struct {
	BaseURL string
	// HTTPClient replaces the underlying transport, mostly for tests.
	HTTPClient *http.Client
}

// Client talks to the service over HTTP. Calls are not retried and have no
// timeout of their own; the caller's context bounds them.
type Client struct {
	httpClient *resty.Client
	baseURL    string
}

func NewClient(opts ClientOpts) *Client {
	c := Client{baseURL: DefaultBaseURL}
	if opts.BaseURL != "" {
		c.baseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}
	c.httpClient = rc.
		SetDebug(false).
		SetRetryCount(0).
		SetBaseURL(c.baseURL).
		SetHeader("Accept", "application/json")

	return &c
}

func (c *Client) req(ctx context.Context) *resty.Request {
	return c.httpClient.
		NewRequest().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.NewString())
}

// Predict uploads the image as the multipart field "file".
func (c *Client) Predict(ctx context.Context, image []byte, filename string) (prediction.Result, error) {
	if len(image) == 0 {
		return prediction.Result{}, &ValidationError{Field: "image", Reason: "no image selected"}
	}
	if filename == "" {
		filename = "image.jpg"
	}

	res, err := c.do("predict", c.req(ctx).
		SetFileReader("file", filename, bytes.NewReader(image)).
		Post, "/predict")
	if err != nil {
		return prediction.Result{}, err
	}
	return prediction.Parse(res.Body()), nil
}

// CommitInventory validates the request locally before sending it.
func (c *Client) CommitInventory(ctx context.Context, body CommitRequest) (*CommitAck, error) {
	if err := body.validate(); err != nil {
		return nil, err
	}

	res, err := c.do("add to inventory", c.req(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post, "/add-to-inventory")
	if err != nil {
		var netErr *NetworkError
		if errors.As(err, &netErr) && (netErr.StatusCode == http.StatusBadRequest || netErr.StatusCode == http.StatusUnprocessableEntity) {
			reason := netErr.Message
			if reason == "" {
				reason = "rejected by service"
			}
			return nil, &ValidationError{Reason: reason}
		}
		return nil, err
	}
	return parseCommitAck(res.Body()), nil
}

// ListInventory returns an empty, non-nil slice for an empty inventory.
func (c *Client) ListInventory(ctx context.Context) ([]InventoryRecord, error) {
	res, err := c.do("list inventory", c.req(ctx).Get, "/inventory")
	if err != nil {
		return nil, err
	}
	records := parseInventory(res.Body())
	if records == nil {
		records = []InventoryRecord{}
	}
	return records, nil
}

func (c *Client) ImageURL(id string) string {
	return c.baseURL + "/image/" + id
}

func (c *Client) FetchImage(ctx context.Context, id string) ([]byte, error) {
	res, err := c.do("fetch image", c.req(ctx).Get, c.ImageURL(id))
	if err != nil {
		return nil, err
	}
	return res.Body(), nil
}

// do runs a request and turns transport failures and non-2xx responses into
// a *NetworkError.
func (c *Client) do(op string, send func(url string) (*resty.Response, error), url string) (*resty.Response, error) {
	start := time.Now()
	res, err := send(url)
	if err != nil {
		log.Error().Err(err).Str("op", op).Str("url", url).Msg("service request failed")
		return nil, &NetworkError{Op: op, Err: err}
	}

	log.Debug().
		Str("op", op).
		Str("url", url).
		Int("status", res.StatusCode()).
		Dur("elapsed", time.Since(start)).
		Str("requestId", res.Request.Header.Get("X-Request-ID")).
		Msg("service request")

	if res.StatusCode() < 200 || res.StatusCode() > 299 {
		return nil, &NetworkError{
			Op:         op,
			StatusCode: res.StatusCode(),
			Message:    gjson.GetBytes(res.Body(), "error").String(),
		}
	}
	return res, nil
}
