package analyzer

import (
	"sort"

	"github.com/forcemetrics/apexscan/domain"
)

// AntipatternRegistry holds the modules enabled for a scan, keyed by
// type. Registering a type twice replaces the earlier module. The
// registry does no locking; callers finish registration before sharing
// it with concurrent scans.
type AntipatternRegistry struct {
	modules map[domain.AntipatternType]*AntipatternModule
}

// NewAntipatternRegistry creates an empty registry.
func NewAntipatternRegistry() *AntipatternRegistry {
	return &AntipatternRegistry{
		modules: make(map[domain.AntipatternType]*AntipatternModule),
	}
}

// Register adds a module, replacing any earlier module of the same type.
func (r *AntipatternRegistry) Register(m *AntipatternModule) {
	if m == nil {
		return
	}
	r.modules[m.Type()] = m
}

// Module returns the module registered for the given type.
func (r *AntipatternRegistry) Module(t domain.AntipatternType) (*AntipatternModule, bool) {
	m, ok := r.modules[t]
	return m, ok
}

// AllModules returns every registered module ordered by type name, so
// scan output stays stable across runs.
func (r *AntipatternRegistry) AllModules() []*AntipatternModule {
	types := r.RegisteredTypes()
	modules := make([]*AntipatternModule, 0, len(types))
	for _, t := range types {
		modules = append(modules, r.modules[t])
	}
	return modules
}

// RegisteredTypes returns the registered type names in sorted order.
func (r *AntipatternRegistry) RegisteredTypes() []domain.AntipatternType {
	types := make([]domain.AntipatternType, 0, len(r.modules))
	for t := range r.modules {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// EnricherRegistry indexes runtime enrichers by every type they serve.
// One enricher instance may serve several types; registration fans it
// out across all of them, replacing earlier entries per type.
type EnricherRegistry struct {
	enrichers map[domain.AntipatternType]RuntimeEnricher
}

// NewEnricherRegistry creates an empty enricher registry.
func NewEnricherRegistry() *EnricherRegistry {
	return &EnricherRegistry{
		enrichers: make(map[domain.AntipatternType]RuntimeEnricher),
	}
}

// Register indexes the enricher under every type it serves.
func (r *EnricherRegistry) Register(e RuntimeEnricher) {
	if e == nil {
		return
	}
	for _, t := range e.Types() {
		r.enrichers[t] = e
	}
}

// EnricherFor returns the enricher serving the given type.
func (r *EnricherRegistry) EnricherFor(t domain.AntipatternType) (RuntimeEnricher, bool) {
	e, ok := r.enrichers[t]
	return e, ok
}

// AllEnrichers returns the distinct registered enricher instances in
// stable type order.
func (r *EnricherRegistry) AllEnrichers() []RuntimeEnricher {
	types := make([]domain.AntipatternType, 0, len(r.enrichers))
	for t := range r.enrichers {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	seen := make(map[RuntimeEnricher]bool, len(types))
	var distinct []RuntimeEnricher
	for _, t := range types {
		e := r.enrichers[t]
		if seen[e] {
			continue
		}
		seen[e] = true
		distinct = append(distinct, e)
	}
	return distinct
}
