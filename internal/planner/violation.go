package planner

import (
	"errors"
	"fmt"
	"strings"
)

// RuleID names a hard menu constraint.
type RuleID string

// Hard constraints, in the order the validator checks them.
const (
	RuleCoverage             RuleID = "coverage"
	RuleVegetarianFloor      RuleID = "vegetarian-floor"
	RuleProteinDiversity     RuleID = "protein-diversity"
	RuleNoRepetition         RuleID = "no-repetition"
	RuleSameDayBase          RuleID = "same-day-base"
	RuleHistoryExclusion     RuleID = "history-exclusion"
	RuleSpecialtyEligibility RuleID = "specialty-eligibility"
)

// Rules lists every hard constraint in check order.
var Rules = []RuleID{
	RuleCoverage,
	RuleVegetarianFloor,
	RuleProteinDiversity,
	RuleNoRepetition,
	RuleSameDayBase,
	RuleHistoryExclusion,
	RuleSpecialtyEligibility,
}

// WholeWeek is the Day of a violation that is not tied to one day.
const WholeWeek = -1

// Violation is a broken hard constraint. DishIDs are the slots a repair
// should avoid next time; they may be empty.
type Violation struct {
	Rule    RuleID
	Day     int
	DishIDs []string
	Detail  string
}

func (v *Violation) Error() string {
	var b strings.Builder
	b.WriteString(string(v.Rule))
	if v.Day != WholeWeek {
		fmt.Fprintf(&b, " (day %d)", v.Day+1)
	}
	if v.Detail != "" {
		b.WriteString(": ")
		b.WriteString(v.Detail)
	}
	if len(v.DishIDs) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(v.DishIDs, ", "))
	}
	return b.String()
}

// ErrProposalExhausted is matched by errors.Is when a planning run used all
// of its attempts without producing a valid menu.
var ErrProposalExhausted = errors.New("menu proposal attempts exhausted")

// ExhaustedError carries the violation of the final attempt.
type ExhaustedError struct {
	Attempts int
	Last     *Violation
}

func (e *ExhaustedError) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("%s after %d attempts", ErrProposalExhausted, e.Attempts)
	}
	return fmt.Sprintf("%s after %d attempts: %s", ErrProposalExhausted, e.Attempts, e.Last)
}

// Is reports ErrProposalExhausted.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrProposalExhausted
}

// Unwrap exposes the last violation to errors.As.
func (e *ExhaustedError) Unwrap() error {
	if e.Last == nil {
		return nil
	}
	return e.Last
}
