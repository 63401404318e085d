package analyzer

import (
	"strings"

	"github.com/forcemetrics/apexscan/domain"
	"github.com/forcemetrics/apexscan/internal/instructions"
	"github.com/forcemetrics/apexscan/internal/parser"
)

// RecommendedQueryKey is the metadata key under which QueryTrimRecommender
// stores the synthesized replacement query. An empty value means no safe
// rewrite exists for that finding.
const RecommendedQueryKey = "recommendedQuery"

// QueryTrimRecommender synthesizes trimmed queries for unused projection
// findings on top of the shared instruction text. Synthesis refuses
// rather than guesses: queries with sub-selects and rewrites that would
// empty the projection produce no replacement.
type QueryTrimRecommender struct {
	instruction string
}

// NewQueryTrimRecommender creates the recommender for unused projection
// findings.
func NewQueryTrimRecommender() *QueryTrimRecommender {
	text, _ := instructions.For(domain.AntipatternUnusedSOQLFields)
	return &QueryTrimRecommender{instruction: text}
}

// Type implements Recommender.
func (r *QueryTrimRecommender) Type() domain.AntipatternType {
	return domain.AntipatternUnusedSOQLFields
}

// FixInstruction implements Recommender.
func (r *QueryTrimRecommender) FixInstruction() string {
	return r.instruction
}

// Recommend implements ResultRecommender. Each returned finding carries
// its synthesized replacement query under RecommendedQueryKey.
func (r *QueryTrimRecommender) Recommend(detections []domain.DetectedAntipattern) domain.AntipatternResult {
	instances := make([]domain.DetectedAntipattern, len(detections))
	for i, det := range detections {
		instances[i] = det
		meta := cloneMetadata(det.TypeMetadata)
		meta[RecommendedQueryKey] = trimQuery(det.SnippetBefore, stringSlice(det.TypeMetadata["unusedFields"]))
		instances[i].TypeMetadata = meta
	}
	return domain.AntipatternResult{
		AntipatternType:   r.Type(),
		FixInstruction:    r.instruction,
		DetectedInstances: instances,
	}
}

// trimQuery rebuilds the query without the unused fields, keeping the
// text from FROM onward as written. It returns "" when no rewrite is
// safe: the query nests a sub-select, it did not parse structurally, the
// unused fields are not in the projection, or removal would leave the
// projection empty.
func trimQuery(snippetText string, unused []string) string {
	if len(unused) == 0 {
		return ""
	}

	inner, bracketed := stripQueryBrackets(snippetText)
	q := parser.ParseSOQL(inner, 1)
	if !q.HasStructure || q.HasSubquery() {
		return ""
	}

	kept := make([]string, 0, len(q.SelectFields))
	for _, field := range q.SelectFields {
		if containsFold(unused, field) {
			continue
		}
		kept = append(kept, field)
	}
	if len(kept) == 0 || len(kept) == len(q.SelectFields) {
		return ""
	}

	fromPos := parser.KeywordIndex(inner, "from")
	if fromPos < 0 {
		return ""
	}

	fixed := "SELECT " + strings.Join(kept, ", ") + " " + strings.TrimSpace(inner[fromPos:])
	if bracketed {
		return "[" + fixed + "]"
	}
	return fixed
}

// stripQueryBrackets removes the inline query brackets when present and
// reports whether they were there, so the rewrite matches the shape of
// the input.
func stripQueryBrackets(s string) (string, bool) {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, "[") && strings.HasSuffix(t, "]") {
		return strings.TrimSpace(t[1 : len(t)-1]), true
	}
	return t, false
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}

// stringSlice coerces a metadata value to a string slice. Values that
// crossed a serialization boundary arrive as []any.
func stringSlice(v any) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// cloneMetadata copies a metadata map so recommendation stays a pure
// transform even when maps are shared across pipeline stages.
func cloneMetadata(meta map[string]any) map[string]any {
	clone := make(map[string]any, len(meta)+1)
	for k, v := range meta {
		clone[k] = v
	}
	return clone
}
