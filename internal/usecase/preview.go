package usecase

import (
	"context"
	"encoding/json"

	"claimgen/internal/domain"
	"claimgen/internal/predicate"
)

// PreviewPredicate validates a wire-form predicate and optionally dry-runs it
// against caller-supplied sample data. The result is always structured; the
// only errors raised are transport-level ones, which this use case has none
// of.
type PreviewPredicate struct{}

type PreviewRequest struct {
	Predicate  json.RawMessage
	SampleData map[string]any
}

func (uc *PreviewPredicate) Execute(_ context.Context, req PreviewRequest) predicate.PreviewResult {
	return predicate.Preview(req.Predicate, req.SampleData)
}

// CompileLegacyExpression turns an old free-text rule expression into the
// wire-form predicate tree, for one-time migration of early catalogs.
func CompileLegacyExpression(expr string) (json.RawMessage, error) {
	node, err := predicate.CompileExpression(expr)
	if err != nil {
		return nil, err
	}
	return domain.EncodePredicate(node)
}
