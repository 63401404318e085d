package analyzer

import (
	"fmt"

	"github.com/forcemetrics/apexscan/domain"
	"github.com/forcemetrics/apexscan/internal/instructions"
)

// InstructionRecommender serves the embedded remediation text for one
// antipattern type.
type InstructionRecommender struct {
	antipatternType domain.AntipatternType
	instruction     string
}

// NewInstructionRecommender creates a recommender backed by the embedded
// instruction payloads. A type without a payload is a wiring mistake and
// fails fast.
func NewInstructionRecommender(t domain.AntipatternType) (*InstructionRecommender, error) {
	text, ok := instructions.For(t)
	if !ok {
		return nil, domain.NewConfigError(
			fmt.Sprintf("no fix instruction registered for antipattern type %q", t), nil)
	}
	return &InstructionRecommender{antipatternType: t, instruction: text}, nil
}

// Type implements Recommender.
func (r *InstructionRecommender) Type() domain.AntipatternType {
	return r.antipatternType
}

// FixInstruction implements Recommender.
func (r *InstructionRecommender) FixInstruction() string {
	return r.instruction
}
