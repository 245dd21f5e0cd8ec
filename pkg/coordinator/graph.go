package coordinator

import (
	"context"

	"github.com/txjustice/media-enrich/pkg/enrich"
	"github.com/txjustice/media-enrich/pkg/state"
)

// Nodes bundles the four processing-node collaborators one traversal needs.
// A single instance is shared read-only across all concurrent traversals
// (spec.md §5) — none of Extractor/Searcher/Validator/Merger hold
// per-incident state themselves.
type Nodes struct {
	Extract  *enrich.Extractor
	Search   *enrich.Searcher
	Validate *enrich.Validator
	Merge    *enrich.Merger
}

// Traverse implements pkg/queue.Traverser, letting a *Nodes be handed
// directly to a worker pool without an adapter type.
func (n *Nodes) Traverse(ctx context.Context, st *state.EnrichmentState) *state.EnrichmentState {
	return Run(ctx, n, st)
}

// Run drives one incident's traversal START→EXTRACT→...→{COMPLETE,ESCALATE}
// (spec.md §4.6), alternating processing nodes with Dispatch until the
// coordinator sets NextStage to a terminal stage. Purely sequential: no
// node runs concurrently with another within one call (spec.md §5).
func Run(ctx context.Context, nodes *Nodes, st *state.EnrichmentState) *state.EnrichmentState {
	st.CurrentStage = state.StageExtract

	for {
		switch st.CurrentStage {
		case state.StageExtract:
			st = nodes.Extract.Run(ctx, st)
		case state.StageSearch:
			st = nodes.Search.Run(ctx, st)
		case state.StageValidate:
			st = nodes.Validate.Run(ctx, st)
		case state.StageMerge:
			st = nodes.Merge.Run(ctx, st)
		case state.StageComplete, state.StageEscalate:
			return st
		}

		st = Dispatch(st)

		switch st.NextStage {
		case state.StageSearch, state.StageValidate, state.StageMerge, state.StageComplete, state.StageEscalate:
			st.CurrentStage = st.NextStage
		default:
			// spec.md §4.6: "If next_stage is outside {SEARCH, VALIDATE,
			// MERGE, COMPLETE, ESCALATE} the router falls back to ESCALATE."
			reason := state.ReasonInsufficientSource
			st.EscalationReason = &reason
			st.RequiresHumanReview = true
			st.CurrentStage = state.StageEscalate
		}
	}
}
