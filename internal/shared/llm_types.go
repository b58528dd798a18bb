package shared

import (
	"time"
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// AgentMeta holds operational metadata for one proposer call.
type AgentMeta struct {
	AgentName string
	Usage     TokenUsage
	Latency   time.Duration
}

// Attempt outcomes.
const (
	OutcomeAccepted  = "accepted"
	OutcomeViolation = "violation"
	OutcomeError     = "error"
)

// AttemptReport describes a single propose/validate round of a planning run.
type AttemptReport struct {
	Attempt int
	Outcome string
	// Rule is the violated constraint, empty when accepted.
	Rule    string
	DishIDs []string
	Score   float64
	Meta    AgentMeta
}
