package ward

import "wardcore/pkg/domain"

type (
	Patient            = domain.Patient
	Gender             = domain.Gender
	Bed                = domain.Bed
	BedState           = domain.BedState
	BedNumber          = domain.BedNumber
	Layout             = domain.Layout
	Change             = domain.Change
	Action             = domain.Action
	Severity           = domain.Severity
	Violation          = domain.Violation
	Result             = domain.Result
	Rule               = domain.Rule
	RuleView           = domain.RuleView
	RulesEngine        = domain.RulesEngine
	RuleViolationError = domain.RuleViolationError
)

const (
	GenderMale   = domain.GenderMale
	GenderFemale = domain.GenderFemale
)

const (
	BedVacant   = domain.BedVacant
	BedOccupied = domain.BedOccupied
	BedBlocked  = domain.BedBlocked
)

const (
	ActionOccupy  = domain.ActionOccupy
	ActionRelease = domain.ActionRelease
	ActionBlock   = domain.ActionBlock
	ActionUnblock = domain.ActionUnblock
	ActionUpdate  = domain.ActionUpdate
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

// NewRulesEngine re-exports the domain constructor for callers wiring
// custom rule sets.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}
