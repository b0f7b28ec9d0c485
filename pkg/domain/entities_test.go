package domain

import "testing"

func TestNewPatientValidation(t *testing.T) {
	if _, err := NewPatient(9999, "Short Record", 30, GenderMale, false, false); err == nil {
		t.Fatalf("expected error for record below %d", MinClinicalRecord)
	}
	if _, err := NewPatient(100000, "Long Record", 30, GenderMale, false, false); err == nil {
		t.Fatalf("expected error for record above %d", MaxClinicalRecord)
	}
	if _, err := NewPatient(10001, "Bad Gender", 30, Gender("other"), false, false); err == nil {
		t.Fatalf("expected error for unknown gender")
	}
	if _, err := NewPatient(10001, "Bad Age", -1, GenderFemale, false, false); err == nil {
		t.Fatalf("expected error for negative age")
	}
	p, err := NewPatient(10001, "Maria Garcia", 30, GenderFemale, false, false)
	if err != nil {
		t.Fatalf("new patient: %v", err)
	}
	if p.ClinicalRecord != 10001 || p.Gender != GenderFemale {
		t.Fatalf("unexpected patient: %+v", p)
	}
}

func TestPatientAgeBands(t *testing.T) {
	child := MustPatient(10001, "Child", 12, GenderMale, false, false)
	teen := MustPatient(10002, "Teen", 13, GenderMale, false, false)
	almostAdult := MustPatient(10003, "Almost", 15, GenderMale, false, false)
	adult := MustPatient(10004, "Adult", 16, GenderMale, false, false)

	if !child.UnderThirteen() || teen.UnderThirteen() {
		t.Fatalf("under-13 boundary misclassified")
	}
	if !child.UnderSixteen() || !almostAdult.UnderSixteen() || adult.UnderSixteen() {
		t.Fatalf("under-16 boundary misclassified")
	}
}

func TestRequiresIsolation(t *testing.T) {
	plain := MustPatient(10001, "Plain", 30, GenderMale, false, false)
	vip := MustPatient(10002, "VIP", 30, GenderMale, false, true)
	infected := MustPatient(10003, "Infected", 30, GenderMale, true, false)

	if plain.RequiresIsolation() {
		t.Fatalf("plain patient should not require isolation")
	}
	if !vip.RequiresIsolation() || !infected.RequiresIsolation() {
		t.Fatalf("vip and infectious patients must require isolation")
	}
}

func TestBedStateHelpers(t *testing.T) {
	bed := NewBed(201)
	if !bed.Available() || bed.Blocked() {
		t.Fatalf("new bed must start vacant")
	}
	if _, ok := bed.Occupant(); ok {
		t.Fatalf("vacant bed must have no occupant")
	}

	p := MustPatient(10001, "Maria Garcia", 30, GenderFemale, false, false)
	bed.State = BedOccupied
	bed.Patient = &p
	occ, ok := bed.Occupant()
	if !ok || occ.ClinicalRecord != 10001 {
		t.Fatalf("expected occupant 10001, got %+v ok=%v", occ, ok)
	}

	clone := bed.Clone()
	clone.Patient.Name = "Changed"
	if bed.Patient.Name != "Maria Garcia" {
		t.Fatalf("clone must not share patient storage")
	}
}
