// Package instructions holds the remediation guidance texts shipped with
// the scanner. Each antipattern type maps to one embedded payload that is
// returned verbatim, so guidance can be revised without touching detector
// code.
package instructions

import (
	"embed"

	"github.com/forcemetrics/apexscan/domain"
)

//go:embed data/*.md
var payloads embed.FS

var files = map[domain.AntipatternType]string{
	domain.AntipatternExpensiveGlobalDescribe: "data/expensive_global_describe.md",
	domain.AntipatternUnboundedSOQLQuery:      "data/unbounded_soql_query.md",
	domain.AntipatternUnusedSOQLFields:        "data/unused_soql_fields.md",
}

// For returns the instruction payload for the given antipattern type.
func For(t domain.AntipatternType) (string, bool) {
	name, ok := files[t]
	if !ok {
		return "", false
	}
	data, err := payloads.ReadFile(name)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Types returns every antipattern type that has an instruction payload.
func Types() []domain.AntipatternType {
	types := make([]domain.AntipatternType, 0, len(files))
	for t := range files {
		types = append(types, t)
	}
	return types
}
