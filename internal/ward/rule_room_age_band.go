package ward

import (
	"context"
	"fmt"

	"wardcore/pkg/domain"
)

// NewRoomAgeBandRule returns the rule enforcing that patients under 16
// only share a room with other under-16 patients.
func NewRoomAgeBandRule() domain.Rule {
	return roomAgeBandRule{}
}

type roomAgeBandRule struct{}

func (roomAgeBandRule) Name() string { return "room_age_band" }

func (roomAgeBandRule) Evaluate(_ context.Context, view RuleView, _ []Change) (Result, error) {
	res := Result{}
	for _, room := range rooms(view) {
		a, aOK := room.low.Occupant()
		b, bOK := room.high.Occupant()
		if !aOK || !bOK {
			continue
		}
		if a.UnderSixteen() != b.UnderSixteen() {
			res.Violations = append(res.Violations, Violation{
				Rule:     "room_age_band",
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("beds %d and %d mix an under-16 patient with an adult", room.low.Number, room.high.Number),
				Bed:      room.low.Number,
			})
		}
	}
	return res, nil
}
