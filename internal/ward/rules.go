package ward

import "wardcore/pkg/domain"

// NewDefaultRulesEngine builds a rules engine with the built-in ward
// policy set. The rules are a commit-time safety net: operations already
// validate inline with descriptive errors, and the engine guarantees no
// transaction can commit a state that violates the ward invariants.
func NewDefaultRulesEngine() *RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(NewRoomGenderRule())
	engine.Register(NewRoomAgeBandRule())
	engine.Register(NewIsolationRule())
	engine.Register(NewPediatricUnitRule())
	return engine
}

// roomPair holds the two beds of one room for rule evaluation.
type roomPair struct {
	low  Bed
	high Bed
}

// rooms groups the view's beds into two-bed rooms keyed by parity.
func rooms(view RuleView) []roomPair {
	beds := view.ListBeds()
	byNumber := make(map[BedNumber]Bed, len(beds))
	for _, b := range beds {
		byNumber[b.Number] = b
	}
	var out []roomPair
	for _, b := range beds {
		if b.Number%2 == 0 {
			continue
		}
		mate, ok := byNumber[b.Number.Roommate()]
		if !ok {
			continue
		}
		out = append(out, roomPair{low: b, high: mate})
	}
	return out
}
