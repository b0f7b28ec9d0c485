package ward

import (
	"context"
	"fmt"

	"wardcore/pkg/domain"
)

// NewPediatricUnitRule returns the rule enforcing that patients under 13
// are housed only in the layout's pediatric unit.
func NewPediatricUnitRule() domain.Rule {
	return pediatricUnitRule{}
}

type pediatricUnitRule struct{}

func (pediatricUnitRule) Name() string { return "pediatric_unit" }

func (pediatricUnitRule) Evaluate(_ context.Context, view RuleView, _ []Change) (Result, error) {
	res := Result{}
	pediatric := view.Layout().PediatricUnit
	for _, bed := range view.ListBeds() {
		occ, ok := bed.Occupant()
		if !ok || !occ.UnderThirteen() {
			continue
		}
		if bed.Number.Unit() != pediatric {
			res.Violations = append(res.Violations, Violation{
				Rule:     "pediatric_unit",
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("bed %d holds patient %d aged %d outside unit %d", bed.Number, occ.ClinicalRecord, occ.Age, pediatric),
				Bed:      bed.Number,
			})
		}
	}
	return res, nil
}
