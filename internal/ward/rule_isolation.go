package ward

import (
	"context"
	"fmt"

	"wardcore/pkg/domain"
)

// NewIsolationRule returns the rule enforcing the adjacency contract for
// VIP and infectious patients: their roommate bed must be blocked, and a
// blocked bed must be justified by such a neighbour.
func NewIsolationRule() domain.Rule {
	return isolationRule{}
}

type isolationRule struct{}

func (isolationRule) Name() string { return "isolation" }

func (isolationRule) Evaluate(_ context.Context, view RuleView, _ []Change) (Result, error) {
	res := Result{}
	check := func(bed, mate Bed) {
		if occ, ok := bed.Occupant(); ok && occ.RequiresIsolation() && !mate.Blocked() {
			res.Violations = append(res.Violations, Violation{
				Rule:     "isolation",
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("bed %d holds an isolated patient but bed %d is not blocked", bed.Number, mate.Number),
				Bed:      mate.Number,
			})
		}
		if bed.Blocked() {
			occ, ok := mate.Occupant()
			if !ok || !occ.RequiresIsolation() {
				res.Violations = append(res.Violations, Violation{
					Rule:     "isolation",
					Severity: SeverityBlock,
					Message:  fmt.Sprintf("bed %d is blocked without an adjacent isolated patient", bed.Number),
					Bed:      bed.Number,
				})
			}
		}
	}
	for _, room := range rooms(view) {
		check(room.low, room.high)
		check(room.high, room.low)
	}
	return res, nil
}
