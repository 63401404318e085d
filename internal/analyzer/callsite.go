package analyzer

import (
	"log/slog"
	"strings"

	"github.com/forcemetrics/apexscan/domain"
	"github.com/forcemetrics/apexscan/internal/parser"
)

// CallSiteConfig describes one expensive call to look for and the static
// severities assigned at matching sites.
type CallSiteConfig struct {
	// Type is the antipattern reported for matching sites
	Type domain.AntipatternType

	// Receiver and Method name the qualified call to match. Comparison is
	// case-insensitive, matching how Apex resolves identifiers.
	Receiver string
	Method   string

	// InLoopSeverity applies when the call site sits inside at least one
	// loop; BaselineSeverity applies everywhere else.
	InLoopSeverity   domain.Severity
	BaselineSeverity domain.Severity
}

// DefaultGlobalDescribeConfig returns the built-in rule for
// Schema.getGlobalDescribe(), whose cost grows with the org's schema and
// multiplies when the call sits inside a loop.
func DefaultGlobalDescribeConfig() CallSiteConfig {
	return CallSiteConfig{
		Type:             domain.AntipatternExpensiveGlobalDescribe,
		Receiver:         "Schema",
		Method:           "getGlobalDescribe",
		InLoopSeverity:   domain.SeverityCritical,
		BaselineSeverity: domain.SeverityMajor,
	}
}

// CallSiteDetector flags every invocation of one configured expensive
// call.
type CallSiteDetector struct {
	cfg    CallSiteConfig
	logger *slog.Logger
}

// NewCallSiteDetector creates a detector for the given call. Zero-value
// severities fall back to CRITICAL in loops and MAJOR elsewhere.
func NewCallSiteDetector(cfg CallSiteConfig) *CallSiteDetector {
	if cfg.InLoopSeverity == "" {
		cfg.InLoopSeverity = domain.SeverityCritical
	}
	if cfg.BaselineSeverity == "" {
		cfg.BaselineSeverity = domain.SeverityMajor
	}
	return &CallSiteDetector{cfg: cfg, logger: slog.Default()}
}

// Type implements Detector.
func (d *CallSiteDetector) Type() domain.AntipatternType {
	return d.cfg.Type
}

// Detect implements Detector.
func (d *CallSiteDetector) Detect(unitName string, source string) []domain.DetectedAntipattern {
	ast, err := parseUnit(unitName, source)
	if err != nil {
		d.logger.Warn("Skipping unit, parse failed", "unit", unitName, "error", err)
		return nil
	}

	var findings []domain.DetectedAntipattern
	walkScope(ast, func(n *parser.Node, sc scope) {
		if n.Type != parser.NodeMethodInvocation || !d.matches(n) {
			return
		}

		severity := d.cfg.BaselineSeverity
		if sc.InLoop() {
			severity = d.cfg.InLoopSeverity
		}
		findings = append(findings, domain.DetectedAntipattern{
			UnitName:      unitName,
			MemberName:    sc.Method,
			LineNumber:    n.Location.StartLine,
			SnippetBefore: snippet(n),
			Severity:      severity,
		})
	})
	return findings
}

// matches reports whether the invocation is the configured
// receiver.method pair. Only direct qualifier matches count: a chained
// call whose receiver is another invocation is matched at its own site.
func (d *CallSiteDetector) matches(n *parser.Node) bool {
	if !strings.EqualFold(n.Name, d.cfg.Method) {
		return false
	}
	return strings.EqualFold(receiverName(n.Object), d.cfg.Receiver)
}
