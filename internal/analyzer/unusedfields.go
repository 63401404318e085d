package analyzer

import (
	"log/slog"
	"strings"

	"github.com/forcemetrics/apexscan/domain"
	"github.com/forcemetrics/apexscan/internal/parser"
)

// UnusedFieldsConfig controls the unused projection rule.
type UnusedFieldsConfig struct {
	// Severity is the static severity for findings, MINOR by default:
	// an over-wide projection wastes heap and query time but rarely
	// breaks anything on its own.
	Severity domain.Severity
}

// UnusedFieldsDetector flags queries that project fields the surrounding
// code never references. The reference check is textual over the unit
// with all query text masked out, so a field named only in another query
// still counts as unused. String literals count as references, which
// keeps fields read through dynamic describe calls alive.
type UnusedFieldsDetector struct {
	cfg    UnusedFieldsConfig
	logger *slog.Logger
}

// NewUnusedFieldsDetector creates the unused projection detector.
func NewUnusedFieldsDetector(cfg UnusedFieldsConfig) *UnusedFieldsDetector {
	if cfg.Severity == "" {
		cfg.Severity = domain.SeverityMinor
	}
	return &UnusedFieldsDetector{cfg: cfg, logger: slog.Default()}
}

// Type implements Detector.
func (d *UnusedFieldsDetector) Type() domain.AntipatternType {
	return domain.AntipatternUnusedSOQLFields
}

// Detect implements Detector. Each finding carries the unused and the
// original projected field lists in its metadata for downstream fix
// synthesis.
func (d *UnusedFieldsDetector) Detect(unitName string, source string) []domain.DetectedAntipattern {
	ast, err := parseUnit(unitName, source)
	if err != nil {
		d.logger.Warn("Skipping unit, parse failed", "unit", unitName, "error", err)
		return nil
	}

	type querySite struct {
		node *parser.Node
		sc   scope
	}
	var sites []querySite
	walkScope(ast, func(n *parser.Node, sc scope) {
		if n.Type == parser.NodeQueryExpression && n.Query != nil {
			sites = append(sites, querySite{node: n, sc: sc})
		}
	})
	if len(sites) == 0 {
		return nil
	}

	queryNodes := make([]*parser.Node, len(sites))
	for i, site := range sites {
		queryNodes[i] = site.node
	}
	masked := maskQuerySpans(source, queryNodes)

	var findings []domain.DetectedAntipattern
	for _, site := range sites {
		q := site.node.Query
		if !q.HasStructure {
			continue
		}

		var unused []string
		for _, field := range checkableFields(q.SelectFields) {
			if !referencesWord(masked, field.word) {
				unused = append(unused, field.original)
			}
		}
		if len(unused) == 0 {
			continue
		}

		findings = append(findings, domain.DetectedAntipattern{
			UnitName:      unitName,
			MemberName:    site.sc.Method,
			LineNumber:    site.node.Location.StartLine,
			SnippetBefore: snippet(site.node),
			Severity:      d.cfg.Severity,
			TypeMetadata: map[string]any{
				"unusedFields":   unused,
				"originalFields": append([]string(nil), q.SelectFields...),
			},
		})
	}
	return findings
}

// checkField pairs a projection entry as written with the identifier the
// reference check looks for.
type checkField struct {
	original string
	word     string
}

// checkableFields filters the projection down to fields the textual
// reference check can reason about: plain or dotted identifiers. Id is
// always considered used since the platform populates and keys on it.
// Aggregates, functions, and aliased expressions are skipped. Dotted
// relationship fields are checked by their last segment, which is the
// identifier code dereferences.
func checkableFields(fields []string) []checkField {
	var out []checkField
	for _, field := range fields {
		f := strings.TrimSpace(field)
		if f == "" || strings.ContainsAny(f, "( )") {
			continue
		}
		word := f
		if dot := strings.LastIndexByte(word, '.'); dot >= 0 {
			word = word[dot+1:]
		}
		if word == "" || strings.EqualFold(word, "Id") {
			continue
		}
		out = append(out, checkField{original: f, word: word})
	}
	return out
}

// referencesWord reports whether word occurs in text as a standalone
// identifier, compared case-insensitively.
func referencesWord(text, word string) bool {
	lower := strings.ToLower(text)
	w := strings.ToLower(word)
	for i := 0; ; {
		j := strings.Index(lower[i:], w)
		if j < 0 {
			return false
		}
		j += i
		before := j == 0 || !isIdentChar(lower[j-1])
		after := j+len(w) == len(lower) || !isIdentChar(lower[j+len(w)])
		if before && after {
			return true
		}
		i = j + 1
	}
}

func isIdentChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// maskQuerySpans blanks every inline query in source so field names
// inside query text never count as code references. Newlines are kept so
// masking stays length and line preserving.
func maskQuerySpans(source string, nodes []*parser.Node) string {
	if len(nodes) == 0 {
		return source
	}

	starts := lineStartOffsets(source)
	buf := []byte(source)
	for _, n := range nodes {
		line := n.Location.StartLine
		if line < 1 || line > len(starts) {
			continue
		}
		start := starts[line-1] + n.Location.StartCol
		if start < 0 || start >= len(buf) {
			continue
		}
		end := start + len(n.Raw)
		if end > len(buf) {
			end = len(buf)
		}
		for i := start; i < end; i++ {
			if buf[i] != '\n' {
				buf[i] = ' '
			}
		}
	}
	return string(buf)
}

// lineStartOffsets returns the byte offset of the start of each 1-based
// line.
func lineStartOffsets(source string) []int {
	starts := []int{0}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}
