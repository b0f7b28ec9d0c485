package ward

import (
	"context"
	"fmt"

	"wardcore/pkg/domain"
)

// NewRoomGenderRule returns the rule enforcing that both occupants of a
// room share the same gender.
func NewRoomGenderRule() domain.Rule {
	return roomGenderRule{}
}

type roomGenderRule struct{}

func (roomGenderRule) Name() string { return "room_gender" }

func (roomGenderRule) Evaluate(_ context.Context, view RuleView, _ []Change) (Result, error) {
	res := Result{}
	for _, room := range rooms(view) {
		a, aOK := room.low.Occupant()
		b, bOK := room.high.Occupant()
		if !aOK || !bOK {
			continue
		}
		if a.Gender != b.Gender {
			res.Violations = append(res.Violations, Violation{
				Rule:     "room_gender",
				Severity: SeverityBlock,
				Message:  fmt.Sprintf("beds %d and %d hold patients of different gender", room.low.Number, room.high.Number),
				Bed:      room.low.Number,
			})
		}
	}
	return res, nil
}
