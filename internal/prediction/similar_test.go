package prediction

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestParseSimilar_BothShapes(t *testing.T) {
	bare := ParseSimilar(gjson.Parse(`[{"path":"a.jpg","url":"/static/a.jpg","score":0.9}]`))
	wrapped := ParseSimilar(gjson.Parse(`{"source":"faiss","items":[{"path":"a.jpg","url":"/static/a.jpg","score":0.9}]}`))

	assert.Equal(t, SimilarReady, bare.State)
	assert.Equal(t, "", bare.Source)
	assert.Equal(t, SimilarReady, wrapped.State)
	assert.Equal(t, "faiss", wrapped.Source)
	assert.Equal(t, bare.Items, wrapped.Items)
	require.Len(t, bare.Items, 1)
	assert.Equal(t, Known(0.9), bare.Items[0].Score)
}

func TestSimilar_Normalize(t *testing.T) {
	s := Similar{
		Source: " Building ",
		Items: []SimilarItem{
			{Path: "b.jpg", Score: Known(0.8)},
			{Path: ""},
			{Path: " a.jpg ", Score: Known(0.7)},
			{Path: "b.jpg", Score: Known(0.1)},
		},
	}

	n := s.Normalize()
	assert.Equal(t, SimilarPending, n.State)
	assert.Equal(t, SourceBuilding, n.Source)
	assert.Equal(t, []SimilarItem{
		{Path: "b.jpg", Score: Known(0.8)},
		{Path: "a.jpg", Score: Known(0.7)},
	}, n.Items)
}

func TestSimilar_NormalizeIdempotent(t *testing.T) {
	inputs := []Similar{
		{},
		{State: SimilarPending},
		{Source: "building", Items: []SimilarItem{{Path: "x"}}},
		{Source: "faiss", Items: []SimilarItem{{Path: "x"}, {Path: "x"}, {Path: ""}, {Path: "y"}}},
		{State: SimilarPending, Source: "faiss"},
	}

	for _, in := range inputs {
		once := in.Normalize()
		assert.Equal(t, once, once.Normalize())
	}
}

func TestParseSimilar_RoundTrip(t *testing.T) {
	raws := []string{
		`[]`,
		`[{"path":"a.jpg","class_name":"nike_dunk","slug":"nike-dunk","score":0.91},{"path":"a.jpg"},{"url":"no-path"}]`,
		`{"source":"building","items":[{"path":"a.jpg"}]}`,
		`{"source":"faiss","items":[{"path":"a.jpg","score":"0.5"},{"path":"b.jpg"}]}`,
	}

	for _, raw := range raws {
		first := ParseSimilar(gjson.Parse(raw))
		data, err := json.Marshal(first)
		require.NoError(t, err)
		assert.Equal(t, first, ParseSimilar(gjson.ParseBytes(data)), raw)
	}
}
