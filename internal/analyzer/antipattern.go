package analyzer

import (
	"github.com/forcemetrics/apexscan/domain"
	"github.com/forcemetrics/apexscan/internal/parser"
)

// Detector finds occurrences of one antipattern type in a single
// compilation unit. Implementations are stateless after construction and
// safe for concurrent use.
//
// Detect is fail-open: a unit that cannot be parsed is logged and yields
// no findings instead of aborting the scan.
type Detector interface {
	// Type identifies the antipattern this detector produces
	Type() domain.AntipatternType

	// Detect scans one unit's source and returns its findings. A nil or
	// empty slice means the unit is clean.
	Detect(unitName string, source string) []domain.DetectedAntipattern
}

// RuntimeEnricher recomputes finding severities from production
// telemetry. Enrich is a pure transform: it returns a new slice with the
// same length and order as detections and never mutates its input.
// Findings without a telemetry match pass through unchanged.
type RuntimeEnricher interface {
	// Types lists the antipattern types this enricher can serve
	Types() []domain.AntipatternType

	// Enrich returns a copy of detections with severities recomputed for
	// every finding that matches data. unitName scopes the join keys.
	Enrich(detections []domain.DetectedAntipattern, data domain.ClassRuntimeData, unitName string) []domain.DetectedAntipattern
}

// Recommender supplies the fix guidance for one antipattern type.
// FixInstruction returns the same text on every call.
type Recommender interface {
	// Type identifies the antipattern this recommender serves
	Type() domain.AntipatternType

	// FixInstruction returns the remediation text shared by all findings
	// of this type
	FixInstruction() string
}

// ResultRecommender is implemented by recommenders that assemble the
// antipattern result themselves, attaching per-finding fix data beyond
// the shared instruction text.
type ResultRecommender interface {
	Recommender

	// Recommend builds the result for the given findings. Findings are
	// copied, never mutated.
	Recommend(detections []domain.DetectedAntipattern) domain.AntipatternResult
}

// parseUnit parses one compilation unit for detection.
func parseUnit(unitName string, source string) (*parser.Node, error) {
	p := parser.NewParser()
	defer p.Close()
	return p.ParseFile(unitName, []byte(source))
}

// snippet returns the exact source text of the node that triggered a
// finding.
func snippet(n *parser.Node) string {
	return n.Raw
}

// receiverName resolves the textual qualifier of an invocation receiver.
// Identifiers resolve to their name and field accesses to the accessed
// field, so a.b.call() matches on "b". Computed receivers resolve to "".
func receiverName(n *parser.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type {
	case parser.NodeIdentifier:
		return n.Name
	case parser.NodeFieldAccess:
		if n.Property != nil {
			return n.Property.Name
		}
	}
	return ""
}
