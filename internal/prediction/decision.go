package prediction

import (
	"fmt"
	"strings"
)

// Outcome is the single status the chat shows for a prediction.
type Outcome int

const (
	OutcomeIndeterminate Outcome = iota
	OutcomeRejected
	OutcomeNeedsConfirmation
	OutcomeAccepted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIndeterminate:
		return "Indeterminate"
	case OutcomeRejected:
		return "Rejected"
	case OutcomeNeedsConfirmation:
		return "NeedsConfirmation"
	case OutcomeAccepted:
		return "Accepted"
	default:
		return fmt.Sprintf("Unknown(%d)", int(o))
	}
}

// Decide maps a result to an outcome. The rules are ordered and the first
// match wins, since several conditions can hold at once.
func Decide(r Result) Outcome {
	r = r.Normalize()
	switch {
	case r.Status == StatusNotSneaker:
		return OutcomeRejected
	case r.ConfidenceLevel == LevelLow || r.Status == StatusLowConfidence:
		return OutcomeNeedsConfirmation
	case r.Decision == DecisionContinue:
		return OutcomeAccepted
	default:
		return OutcomeIndeterminate
	}
}

// Commit action labels.
const (
	LabelCommit       = "Add / Update Inventory"
	LabelCommitManual = "Add / Confirm Manually"
)

// CommitAction describes the "commit to inventory" action for a result.
type CommitAction struct {
	Offered bool
	Manual  bool
	Label   string
}

// CommitActionFor is independent of the outcome. The action is offered iff
// the decision is continue or manual_check. A rejected image never gets it.
func CommitActionFor(r Result) CommitAction {
	r = r.Normalize()
	if r.Status == StatusNotSneaker {
		return CommitAction{}
	}
	switch r.Decision {
	case DecisionContinue:
		return CommitAction{Offered: true, Label: LabelCommit}
	case DecisionManualCheck:
		return CommitAction{Offered: true, Manual: true, Label: LabelCommitManual}
	}
	return CommitAction{}
}

// PanelKind selects what the similarity panel renders.
type PanelKind int

const (
	PanelHidden PanelKind = iota
	PanelBuilding
	PanelMatches
)

func (k PanelKind) String() string {
	switch k {
	case PanelBuilding:
		return "Building"
	case PanelMatches:
		return "Matches"
	default:
		return "Hidden"
	}
}

// Panel is the similarity panel sub-state.
type Panel struct {
	Kind  PanelKind
	Items []SimilarItem
}

// PanelFor never truncates or re-sorts; the service caps and orders the items.
// A building index suppresses the grid even when items are present.
func PanelFor(r Result) Panel {
	s := r.Similar.Normalize()
	switch {
	case s.State == SimilarPending:
		return Panel{Kind: PanelBuilding}
	case len(s.Items) > 0:
		return Panel{Kind: PanelMatches, Items: s.Items}
	default:
		return Panel{Kind: PanelHidden}
	}
}

// Badge returns the status line for an outcome, or "" when no badge is shown.
func Badge(r Result, o Outcome) string {
	r = r.Normalize()
	switch o {
	case OutcomeAccepted:
		tier := r.Tier()
		if tier == "" {
			return "Continuing"
		}
		return fmt.Sprintf("%s confidence — continuing", strings.ToUpper(string(tier)))
	case OutcomeNeedsConfirmation:
		if r.Confidence.Valid {
			return fmt.Sprintf("LOW confidence (%s) — confirm before adding", r.Confidence.Percent())
		}
		return "LOW confidence — confirm before adding"
	case OutcomeRejected:
		if r.SneakerCheck.Probability.Valid {
			return fmt.Sprintf("Not a sneaker (gate %s)", r.SneakerCheck.Probability.Percent())
		}
		return "Not a sneaker"
	}
	return ""
}
