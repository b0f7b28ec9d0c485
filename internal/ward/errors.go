package ward

import (
	"errors"
	"fmt"
)

// BedNotFoundError reports an operation addressing a bed number outside
// the ward's bed set.
type BedNotFoundError struct {
	Bed BedNumber
}

func (e BedNotFoundError) Error() string {
	return fmt.Sprintf("bed %d does not exist", e.Bed)
}

// BedUnavailableError reports an admission into a bed that is occupied or
// blocked.
type BedUnavailableError struct {
	Bed BedNumber
}

func (e BedUnavailableError) Error() string {
	return fmt.Sprintf("bed %d is not available", e.Bed)
}

// PatientNotFoundError reports a clinical record number with no admitted
// patient.
type PatientNotFoundError struct {
	Record int
}

func (e PatientNotFoundError) Error() string {
	return fmt.Sprintf("patient %d not found", e.Record)
}

// DuplicateRecordError reports an admission reusing a clinical record
// number that is already admitted.
type DuplicateRecordError struct {
	Record int
	Bed    BedNumber
}

func (e DuplicateRecordError) Error() string {
	return fmt.Sprintf("patient %d is already admitted to bed %d", e.Record, e.Bed)
}

// Relocation failures while turning on a VIP or infection flag.
var (
	ErrNoBedToRelocateRoommate = errors.New("no available bed to relocate roommate")
	ErrNoBedToMoveRoommate     = errors.New("no available bed to move roommate")
)
