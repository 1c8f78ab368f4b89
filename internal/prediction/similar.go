package prediction

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// SourceBuilding is the source tag the service sends while the similarity
// index for a class is still being constructed.
const SourceBuilding = "building"

// SimilarState tells whether the similar items can be trusted yet.
type SimilarState int

const (
	SimilarReady SimilarState = iota
	SimilarPending
)

func (s SimilarState) String() string {
	if s == SimilarPending {
		return "Pending"
	}
	return "Ready"
}

// SimilarItem is one visually similar catalog image. Path is the unique key.
type SimilarItem struct {
	Path      string
	URL       string
	Filename  string
	ClassName string
	Slug      string
	Score     Amount
}

// Similar is the single tagged form of the similar_images field, which the
// service sends either as a bare array or as {source, items}.
type Similar struct {
	State  SimilarState
	Source string
	Items  []SimilarItem
}

// ParseSimilar accepts both wire shapes. Anything else yields an empty,
// ready value.
func ParseSimilar(v gjson.Result) Similar {
	var s Similar
	switch {
	case v.IsArray():
		s.Items = parseSimilarItems(v)
	case v.IsObject():
		s.Source = v.Get("source").String()
		s.Items = parseSimilarItems(v.Get("items"))
	}
	return s.Normalize()
}

func parseSimilarItems(v gjson.Result) []SimilarItem {
	if !v.IsArray() {
		return nil
	}
	var items []SimilarItem
	v.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			return true
		}
		items = append(items, SimilarItem{
			Path:      item.Get("path").String(),
			URL:       item.Get("url").String(),
			Filename:  item.Get("filename").String(),
			ClassName: item.Get("class_name").String(),
			Slug:      item.Get("slug").String(),
			Score:     amountOf(item.Get("score")),
		})
		return true
	})
	return items
}

// Normalize drops items without a path, keeps the first item per path and
// keeps the service's order. The pending state and the "building" source
// always agree afterwards.
func (s Similar) Normalize() Similar {
	out := Similar{Source: strings.TrimSpace(s.Source)}
	if strings.EqualFold(out.Source, SourceBuilding) || (s.State == SimilarPending && out.Source == "") {
		out.State = SimilarPending
		out.Source = SourceBuilding
	}

	seen := make(map[string]bool, len(s.Items))
	for _, item := range s.Items {
		item.Path = strings.TrimSpace(item.Path)
		if item.Path == "" || seen[item.Path] {
			continue
		}
		seen[item.Path] = true
		out.Items = append(out.Items, item)
	}
	return out
}

type similarItemWire struct {
	Path      string   `json:"path"`
	URL       string   `json:"url,omitempty"`
	Filename  string   `json:"filename,omitempty"`
	ClassName string   `json:"class_name,omitempty"`
	Slug      string   `json:"slug,omitempty"`
	Score     *float64 `json:"score,omitempty"`
}

// MarshalJSON writes the wrapped {source, items} shape.
func (s Similar) MarshalJSON() ([]byte, error) {
	items := make([]similarItemWire, 0, len(s.Items))
	for _, item := range s.Items {
		w := similarItemWire{
			Path:      item.Path,
			URL:       item.URL,
			Filename:  item.Filename,
			ClassName: item.ClassName,
			Slug:      item.Slug,
		}
		if item.Score.Valid {
			score := item.Score.Value
			w.Score = &score
		}
		items = append(items, w)
	}
	source := s.Source
	if s.State == SimilarPending {
		source = SourceBuilding
	}
	return json.Marshal(struct {
		Source string            `json:"source"`
		Items  []similarItemWire `json:"items"`
	}{source, items})
}
