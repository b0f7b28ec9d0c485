// Package domain defines the core entities, value types, and rule
// evaluation primitives used by wardcore.
package domain

import "fmt"

// Gender identifies a patient's gender for room compatibility checks.
type Gender string

// Recognised patient genders.
const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Clinical record numbers are five-digit identifiers.
const (
	MinClinicalRecord = 10000
	MaxClinicalRecord = 99999
)

// Patient describes one admitted (or admittable) hospital patient.
// Identity is the clinical record number.
type Patient struct {
	ClinicalRecord int    `json:"clinical_record"`
	Name           string `json:"name"`
	Age            int    `json:"age"`
	Gender         Gender `json:"gender"`
	Infected       bool   `json:"infected"`
	VIP            bool   `json:"vip"`
}

// NewPatient validates and constructs a patient record. Construction is
// rejected outright for an out-of-range clinical record number or an
// unknown gender; no partially built patient escapes.
func NewPatient(record int, name string, age int, gender Gender, infected, vip bool) (Patient, error) {
	if record < MinClinicalRecord || record > MaxClinicalRecord {
		return Patient{}, fmt.Errorf("clinical record number %d must have 5 digits", record)
	}
	if gender != GenderMale && gender != GenderFemale {
		return Patient{}, fmt.Errorf("unknown gender %q", gender)
	}
	if age < 0 {
		return Patient{}, fmt.Errorf("age %d must not be negative", age)
	}
	return Patient{
		ClinicalRecord: record,
		Name:           name,
		Age:            age,
		Gender:         gender,
		Infected:       infected,
		VIP:            vip,
	}, nil
}

// MustPatient constructs a patient and panics on invalid input. Intended
// for fixtures and demonstration seeds where the input is literal.
func MustPatient(record int, name string, age int, gender Gender, infected, vip bool) Patient {
	p, err := NewPatient(record, name, age, gender, infected, vip)
	if err != nil {
		panic(err)
	}
	return p
}

// UnderThirteen reports whether the pediatric-unit placement rule applies.
func (p Patient) UnderThirteen() bool { return p.Age < 13 }

// UnderSixteen reports whether the under-16 room sharing rule applies.
func (p Patient) UnderSixteen() bool { return p.Age < 16 }

// RequiresIsolation reports whether the patient's roommate bed must be
// kept blocked (VIP or infectious).
func (p Patient) RequiresIsolation() bool { return p.Infected || p.VIP }

// BedState enumerates the occupancy states of a single bed.
type BedState string

// Bed occupancy states.
const (
	// BedVacant marks an empty bed available for admission.
	BedVacant BedState = "vacant"
	// BedOccupied marks a bed holding a patient.
	BedOccupied BedState = "occupied"
	// BedBlocked marks a bed kept out of circulation to isolate a VIP or
	// infectious neighbour; distinct from vacant.
	BedBlocked BedState = "blocked"
)

// Bed is a single slot in the ward. Patient is set exactly when State is
// BedOccupied.
type Bed struct {
	Number  BedNumber `json:"number"`
	State   BedState  `json:"state"`
	Patient *Patient  `json:"patient,omitempty"`
}

// NewBed returns a vacant bed with the given number.
func NewBed(number BedNumber) Bed {
	return Bed{Number: number, State: BedVacant}
}

// Available reports whether the bed is vacant.
func (b Bed) Available() bool { return b.State == BedVacant }

// Blocked reports whether the bed is blocked.
func (b Bed) Blocked() bool { return b.State == BedBlocked }

// Occupant returns the admitted patient, if any.
func (b Bed) Occupant() (Patient, bool) {
	if b.State != BedOccupied || b.Patient == nil {
		return Patient{}, false
	}
	return *b.Patient, true
}

// Clone returns a deep copy of the bed.
func (b Bed) Clone() Bed {
	cp := b
	if b.Patient != nil {
		p := *b.Patient
		cp.Patient = &p
	}
	return cp
}

// Action indicates the type of occupancy modification performed.
type Action string

// Change actions captured during ward transactions.
const (
	// ActionOccupy indicates a patient was placed into a bed.
	ActionOccupy Action = "occupy"
	// ActionRelease indicates a bed was returned to vacant.
	ActionRelease Action = "release"
	// ActionBlock indicates a bed was blocked for isolation.
	ActionBlock Action = "block"
	// ActionUnblock indicates a blocked bed was returned to vacant.
	ActionUnblock Action = "unblock"
	// ActionUpdate indicates an occupant's record was replaced in place.
	ActionUpdate Action = "update"
)

// Change describes one bed mutation applied during a transaction.
type Change struct {
	Action Action
	Bed    BedNumber
	Before Bed
	After  Bed
}

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Bed      BedNumber
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by ward rules"
}
