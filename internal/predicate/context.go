package predicate

// Sections are the named top-level parts of an audit data document. The
// evaluation context always carries each of them, defaulting to an empty
// mapping, so a path into a missing section fails comparisons instead of
// erroring.
var Sections = []string{"productInfo", "materials", "supplyChain", "sustainability"}

// BuildContext assembles the evaluation context for one audit: the raw
// document's keys, every known section (empty mapping when missing), and the
// whole document under "audit". The context is read-only to the evaluator.
func BuildContext(data map[string]any) map[string]any {
	ctx := make(map[string]any, len(data)+len(Sections)+1)
	for key, value := range data {
		ctx[key] = value
	}
	for _, section := range Sections {
		ctx[section] = fieldOrDefault(ctx, section, map[string]any{})
	}
	ctx["audit"] = data
	return ctx
}

// SampleContext is the synthetic context used by the publish-time sample
// evaluation: every section present and empty.
func SampleContext() map[string]any {
	return BuildContext(map[string]any{})
}
