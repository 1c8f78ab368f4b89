package sneakerapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/solekit/telegram-sneaker-bot/internal/prediction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientOpts{BaseURL: srv.URL})
}

func TestPredict_SendsMultipartFile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "jpegbytes", string(data))
		assert.Equal(t, "shoe.jpg", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","decision":"continue","confidence":0.92,"confidence_level":"high","predicted_price":120.0}`))
	})

	r, err := c.Predict(context.Background(), []byte("jpegbytes"), "shoe.jpg")
	require.NoError(t, err)
	assert.Equal(t, prediction.OutcomeAccepted, prediction.Decide(r))
	assert.Equal(t, prediction.Known(120), r.PredictedPrice)
}

func TestPredict_EmptyImage(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := c.Predict(context.Background(), nil, "shoe.jpg")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "image", verr.Field)
	assert.False(t, called)
}

func TestPredict_ServiceErrorIsNetworkError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"model not loaded"}`))
	})

	_, err := c.Predict(context.Background(), []byte("x"), "")
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, http.StatusInternalServerError, netErr.StatusCode)
	assert.Equal(t, "model not loaded", netErr.Message)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestPredict_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c := NewClient(ClientOpts{BaseURL: srv.URL})

	_, err := c.Predict(context.Background(), []byte("x"), "a.jpg")
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, 0, netErr.StatusCode)
	assert.NotNil(t, netErr.Unwrap())
}

func TestPredict_NoRetry(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.Predict(context.Background(), []byte("x"), "a.jpg")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestCommitInventory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/add-to-inventory", r.URL.Path)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "nike-dunk", body["slug"])
		assert.Equal(t, "Dunk", body["model"])
		assert.Equal(t, 135.5, body["price"])
		assert.Equal(t, float64(2), body["quantity"])
		assert.Equal(t, 120.0, body["price_predicted"])

		w.Write([]byte(`{"status":"updated","quantity":5,"image_gridfs_id":null}`))
	})

	predicted := 120.0
	ack, err := c.CommitInventory(context.Background(), CommitRequest{
		Slug:           "nike-dunk",
		Model:          "Dunk",
		PricePredicted: &predicted,
		Price:          135.5,
		Quantity:       2,
	})
	require.NoError(t, err)
	assert.True(t, ack.Updated())
	assert.Equal(t, 5, ack.Quantity)
	assert.Equal(t, "", ack.ImageID)
}

func TestCommitInventory_LocalValidation(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	tests := []CommitRequest{
		{Slug: "x", Quantity: 0, Price: 10},
		{Slug: "x", Quantity: 1, Price: -1},
		{Quantity: 1, Price: 10},
	}
	for _, req := range tests {
		_, err := c.CommitInventory(context.Background(), req)
		var verr *ValidationError
		assert.True(t, errors.As(err, &verr), "%+v", req)
	}
	assert.False(t, called)
}

func TestCommitInventory_RejectedByService(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"missing slug"}`))
	})

	_, err := c.CommitInventory(context.Background(), CommitRequest{ClassName: "nike_dunk", Price: 1, Quantity: 1})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "missing slug", verr.Reason)
}

func TestListInventory(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/inventory", r.URL.Path)
		w.Write([]byte(`[
			{"_id":{"$oid":"65a1"},"product_id":"p-1","brand":"Nike","model":"Dunk","product_type":"sneaker","price_predicted":120,"price_modified":135.5,"quantity":2,"image_gridfs_id":"img-1"},
			{"id":7,"brand":"Adidas","model":"Samba","class_name":"adidas_samba","price_predicted":null,"quantity":1}
		]`))
	})

	records, err := c.ListInventory(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "65a1", records[0].ID)
	assert.Equal(t, prediction.Known(135.5), records[0].PriceModified)
	assert.Equal(t, "img-1", records[0].ImageID)
	assert.Equal(t, "7", records[1].ID)
	assert.False(t, records[1].PricePredicted.Valid)
	assert.Equal(t, "adidas_samba", records[1].ClassName)
}

func TestListInventory_Empty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	records, err := c.ListInventory(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestImageURLAndFetch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/image/abc" {
			w.Write([]byte("png"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	assert.Equal(t, c.baseURL+"/image/abc", c.ImageURL("abc"))

	data, err := c.FetchImage(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	_, err = c.FetchImage(context.Background(), "missing")
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, http.StatusNotFound, netErr.StatusCode)
}

func TestNewCommitRequest(t *testing.T) {
	d := prediction.NewAddDraft(prediction.Parse([]byte(`{"slug_used":"nike-dunk","class_name":"nike_dunk","model":"Dunk"}`)))
	d.PriceText = "99,90"
	form, err := d.Validate()
	require.NoError(t, err)

	req := NewCommitRequest(form)
	assert.Equal(t, "Dunk", req.Model)
	assert.Equal(t, 99.9, req.Price)
	assert.Equal(t, 1, req.Quantity)
	assert.Nil(t, req.PricePredicted)
}
