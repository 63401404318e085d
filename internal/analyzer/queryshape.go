package analyzer

import (
	"log/slog"

	"github.com/forcemetrics/apexscan/domain"
	"github.com/forcemetrics/apexscan/internal/parser"
)

// QueryShapeConfig controls the unbounded query rule.
type QueryShapeConfig struct {
	// Severity is the static severity for findings. Runtime enrichment
	// may later recompute it from observed execution frequency.
	Severity domain.Severity
}

// QueryShapeDetector flags inline SOQL queries that carry neither a WHERE
// nor a LIMIT clause of their own. Such queries return row counts bounded
// only by table size, which is how they pass review on a seed org and
// then time out in production.
type QueryShapeDetector struct {
	cfg    QueryShapeConfig
	logger *slog.Logger
}

// NewQueryShapeDetector creates the unbounded query detector. A zero
// severity falls back to MAJOR.
func NewQueryShapeDetector(cfg QueryShapeConfig) *QueryShapeDetector {
	if cfg.Severity == "" {
		cfg.Severity = domain.SeverityMajor
	}
	return &QueryShapeDetector{cfg: cfg, logger: slog.Default()}
}

// Type implements Detector.
func (d *QueryShapeDetector) Type() domain.AntipatternType {
	return domain.AntipatternUnboundedSOQLQuery
}

// Detect implements Detector. Only top-level queries produce findings;
// sub-selects are evaluated as part of their parent and never reported on
// their own.
func (d *QueryShapeDetector) Detect(unitName string, source string) []domain.DetectedAntipattern {
	ast, err := parseUnit(unitName, source)
	if err != nil {
		d.logger.Warn("Skipping unit, parse failed", "unit", unitName, "error", err)
		return nil
	}

	var findings []domain.DetectedAntipattern
	walkScope(ast, func(n *parser.Node, sc scope) {
		if n.Type != parser.NodeQueryExpression || n.Query == nil {
			return
		}
		if isBounded(n.Query) {
			return
		}

		f := domain.DetectedAntipattern{
			UnitName:      unitName,
			MemberName:    sc.Method,
			LineNumber:    n.Location.StartLine,
			SnippetBefore: snippet(n),
			Severity:      d.cfg.Severity,
		}
		if sc.InLoop() {
			f.TypeMetadata = map[string]any{"loopDepth": sc.LoopDepth}
		}
		findings = append(findings, f)
	})
	return findings
}

// isBounded reports whether the query carries a WHERE or LIMIT clause of
// its own. Clause booleans come from the parsed structure when available.
// Recovery parses fall back to textual inspection with sub-selects masked
// first, so an inner query's clauses never bound the outer one.
func isBounded(q *parser.SOQLQuery) bool {
	if q.HasStructure {
		return q.HasWhere || q.HasLimit
	}
	return parser.ContainsClauseKeyword(q.Raw, "where") ||
		parser.ContainsClauseKeyword(q.Raw, "limit")
}
