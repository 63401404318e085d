package analyzer

import (
	"fmt"

	"github.com/forcemetrics/apexscan/domain"
)

// AntipatternModule composes the detect, enrich, and recommend stages for
// one antipattern type. The detector is mandatory; enricher and
// recommender are optional and validated against the detector's type at
// construction, so wiring mistakes surface as config errors instead of
// silently wrong reports.
type AntipatternModule struct {
	detector    Detector
	enricher    RuntimeEnricher
	recommender Recommender
}

// ModuleOption configures optional stages of an AntipatternModule.
type ModuleOption func(*AntipatternModule)

// WithEnricher attaches a runtime enricher to the module.
func WithEnricher(e RuntimeEnricher) ModuleOption {
	return func(m *AntipatternModule) { m.enricher = e }
}

// WithRecommender attaches a recommender to the module.
func WithRecommender(r Recommender) ModuleOption {
	return func(m *AntipatternModule) { m.recommender = r }
}

// NewAntipatternModule builds a module around the given detector.
func NewAntipatternModule(detector Detector, opts ...ModuleOption) (*AntipatternModule, error) {
	if detector == nil {
		return nil, domain.NewConfigError("antipattern module requires a detector", nil)
	}

	m := &AntipatternModule{detector: detector}
	for _, opt := range opts {
		opt(m)
	}

	t := detector.Type()
	if m.recommender != nil && m.recommender.Type() != t {
		return nil, domain.NewConfigError(
			fmt.Sprintf("recommender serves %q but detector produces %q", m.recommender.Type(), t), nil)
	}
	if m.enricher != nil && !enricherServes(m.enricher, t) {
		return nil, domain.NewConfigError(
			fmt.Sprintf("enricher does not serve antipattern type %q", t), nil)
	}
	return m, nil
}

func enricherServes(e RuntimeEnricher, t domain.AntipatternType) bool {
	for _, served := range e.Types() {
		if served == t {
			return true
		}
	}
	return false
}

// Type returns the antipattern type this module detects.
func (m *AntipatternModule) Type() domain.AntipatternType {
	return m.detector.Type()
}

// HasEnricher reports whether runtime enrichment is wired for this
// module.
func (m *AntipatternModule) HasEnricher() bool {
	return m.enricher != nil
}

// FixInstruction returns the guidance text attached to this module's
// findings.
func (m *AntipatternModule) FixInstruction() string {
	if m.recommender != nil {
		return m.recommender.FixInstruction()
	}
	return fmt.Sprintf("%s detected. Manual review and fix recommended.", m.Type())
}

// Scan runs the pipeline on one compilation unit. runtimeData may be nil
// when no telemetry is available; enrichment is then skipped and findings
// keep their static severities. Scan has no failure path: a unit that
// cannot be analyzed yields an empty result.
func (m *AntipatternModule) Scan(unitName string, source string, runtimeData *domain.ClassRuntimeData) domain.AntipatternResult {
	detections := m.detector.Detect(unitName, source)
	if runtimeData != nil && m.enricher != nil && len(detections) > 0 {
		detections = m.enricher.Enrich(detections, *runtimeData, unitName)
	}

	if rr, ok := m.recommender.(ResultRecommender); ok {
		return rr.Recommend(detections)
	}
	return domain.AntipatternResult{
		AntipatternType:   m.Type(),
		FixInstruction:    m.FixInstruction(),
		DetectedInstances: detections,
	}
}
