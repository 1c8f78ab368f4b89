package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Outcome
	}{
		{
			name: "not_sneaker wins over everything",
			body: `{"status":"not_sneaker","decision":"continue","confidence_level":"low"}`,
			want: OutcomeRejected,
		},
		{
			name: "low confidence level",
			body: `{"status":"ok","decision":"continue","confidence_level":"low"}`,
			want: OutcomeNeedsConfirmation,
		},
		{
			name: "low_confidence status",
			body: `{"status":"low_confidence","confidence":0.4,"decision":"manual_check"}`,
			want: OutcomeNeedsConfirmation,
		},
		{
			name: "continue",
			body: `{"status":"ok","decision":"continue","confidence":0.92,"confidence_level":"high"}`,
			want: OutcomeAccepted,
		},
		{
			name: "continue without status",
			body: `{"decision":"continue"}`,
			want: OutcomeAccepted,
		},
		{
			name: "manual_check alone",
			body: `{"status":"ok","decision":"manual_check"}`,
			want: OutcomeIndeterminate,
		},
		{
			name: "tokens are normalized",
			body: `{"status":" Not-Sneaker "}`,
			want: OutcomeRejected,
		},
		{
			name: "empty object",
			body: `{}`,
			want: OutcomeIndeterminate,
		},
		{
			name: "not json",
			body: `<html>502 Bad Gateway</html>`,
			want: OutcomeIndeterminate,
		},
		{
			name: "wrong types",
			body: `{"status":1,"decision":["continue"],"confidence":"high"}`,
			want: OutcomeIndeterminate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(Parse([]byte(tt.body))))
		})
	}
}

func TestDecide_NotSneakerNeverOffersCommit(t *testing.T) {
	for _, decision := range []string{"continue", "manual_check", "stop", ""} {
		for _, level := range []string{"high", "medium", "low", ""} {
			r := Result{Status: StatusNotSneaker, Decision: Decision(decision), ConfidenceLevel: ConfidenceLevel(level)}
			assert.Equal(t, OutcomeRejected, Decide(r), "decision=%q level=%q", decision, level)
			assert.False(t, CommitActionFor(r).Offered, "decision=%q level=%q", decision, level)
		}
	}
}

func TestCommitActionFor(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   CommitAction
	}{
		{
			name:   "continue",
			result: Result{Status: StatusOK, Decision: DecisionContinue, ConfidenceLevel: LevelHigh},
			want:   CommitAction{Offered: true, Label: LabelCommit},
		},
		{
			name:   "manual_check with low confidence",
			result: Result{Status: StatusLowConfidence, Decision: DecisionManualCheck},
			want:   CommitAction{Offered: true, Manual: true, Label: LabelCommitManual},
		},
		{
			name:   "manual_check with high confidence",
			result: Result{Status: StatusOK, Decision: DecisionManualCheck, ConfidenceLevel: LevelHigh},
			want:   CommitAction{Offered: true, Manual: true, Label: LabelCommitManual},
		},
		{
			name:   "continue while low confidence",
			result: Result{Status: StatusOK, Decision: DecisionContinue, ConfidenceLevel: LevelLow},
			want:   CommitAction{Offered: true, Label: LabelCommit},
		},
		{
			name:   "stop",
			result: Result{Status: StatusOK, Decision: DecisionStop},
			want:   CommitAction{},
		},
		{
			name:   "no decision",
			result: Result{Status: StatusOK},
			want:   CommitAction{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CommitActionFor(tt.result))
		})
	}
}

func TestPanelFor(t *testing.T) {
	t.Run("building suppresses items", func(t *testing.T) {
		r := Parse([]byte(`{"similar_images":{"source":"building","items":[{"path":"a.jpg"}]}}`))
		p := PanelFor(r)
		assert.Equal(t, PanelBuilding, p.Kind)
		assert.Empty(t, p.Items)
	})

	t.Run("matches keep service order", func(t *testing.T) {
		r := Parse([]byte(`{"similar_images":[
			{"path":"c.jpg","score":0.5},
			{"path":"a.jpg","score":0.9},
			{"path":"b.jpg","score":0.7}
		]}`))
		p := PanelFor(r)
		assert.Equal(t, PanelMatches, p.Kind)
		var paths []string
		for _, item := range p.Items {
			paths = append(paths, item.Path)
		}
		assert.Equal(t, []string{"c.jpg", "a.jpg", "b.jpg"}, paths)
	})

	t.Run("no items", func(t *testing.T) {
		assert.Equal(t, PanelHidden, PanelFor(Parse([]byte(`{"similar_images":{"source":"faiss","items":[]}}`))).Kind)
		assert.Equal(t, PanelHidden, PanelFor(Parse([]byte(`{}`))).Kind)
		assert.Equal(t, PanelHidden, PanelFor(Parse([]byte(`{"similar_images":"oops"}`))).Kind)
	})

	t.Run("large result is not truncated", func(t *testing.T) {
		var items []SimilarItem
		for i := 0; i < 25; i++ {
			items = append(items, SimilarItem{Path: string(rune('a'+i)) + ".jpg"})
		}
		p := PanelFor(Result{Similar: Similar{Items: items}})
		assert.Len(t, p.Items, 25)
	})
}

func TestBadge(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "accepted high",
			body: `{"status":"ok","decision":"continue","confidence":0.92,"confidence_level":"high","predicted_price":120.0}`,
			want: "HIGH confidence — continuing",
		},
		{
			name: "accepted with derived tier",
			body: `{"status":"ok","decision":"continue","confidence":0.7}`,
			want: "MEDIUM confidence — continuing",
		},
		{
			name: "accepted without confidence",
			body: `{"decision":"continue"}`,
			want: "Continuing",
		},
		{
			name: "needs confirmation",
			body: `{"status":"low_confidence","confidence":0.4,"decision":"manual_check"}`,
			want: "LOW confidence (40%) — confirm before adding",
		},
		{
			name: "needs confirmation without confidence",
			body: `{"confidence_level":"low"}`,
			want: "LOW confidence — confirm before adding",
		},
		{
			name: "rejected",
			body: `{"status":"not_sneaker"}`,
			want: "Not a sneaker",
		},
		{
			name: "rejected with gate probability",
			body: `{"status":"not_sneaker","sneaker_check":{"is_sneaker":false,"probability":0.12}}`,
			want: "Not a sneaker (gate 12%)",
		},
		{
			name: "indeterminate",
			body: `{"status":"ok"}`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Parse([]byte(tt.body))
			assert.Equal(t, tt.want, Badge(r, Decide(r)))
		})
	}
}

func TestDecide_NoMemoryAcrossCalls(t *testing.T) {
	rejected := Parse([]byte(`{"status":"not_sneaker"}`))
	accepted := Parse([]byte(`{"status":"ok","decision":"continue"}`))

	assert.Equal(t, OutcomeRejected, Decide(rejected))
	assert.Equal(t, OutcomeAccepted, Decide(accepted))
	assert.Equal(t, OutcomeRejected, Decide(rejected))
}
