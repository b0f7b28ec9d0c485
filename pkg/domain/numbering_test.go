package domain

import "testing"

func TestBedNumberDecomposition(t *testing.T) {
	n := BedNumber(438)
	if n.Unit() != 4 {
		t.Fatalf("unit of 438 = %d, want 4", n.Unit())
	}
	if n.Index() != 38 {
		t.Fatalf("index of 438 = %d, want 38", n.Index())
	}
}

func TestRoommateInvolution(t *testing.T) {
	layout := DefaultLayout()
	for _, n := range layout.Beds() {
		mate := n.Roommate()
		if mate.Roommate() != n {
			t.Fatalf("roommate of roommate of %d = %d, want %d", n, mate.Roommate(), n)
		}
		if mate == n {
			t.Fatalf("bed %d cannot be its own roommate", n)
		}
		if n.Unit() != mate.Unit() {
			t.Fatalf("beds %d and %d share a room across units", n, mate)
		}
	}
	if BedNumber(201).Roommate() != 202 {
		t.Fatalf("roommate of 201 = %d, want 202", BedNumber(201).Roommate())
	}
	if BedNumber(202).Roommate() != 201 {
		t.Fatalf("roommate of 202 = %d, want 201", BedNumber(202).Roommate())
	}
}

func TestDefaultLayout(t *testing.T) {
	layout := DefaultLayout()
	if err := layout.Validate(); err != nil {
		t.Fatalf("default layout invalid: %v", err)
	}
	if got := layout.TotalBeds(); got != 152 {
		t.Fatalf("total beds = %d, want 152", got)
	}
	if layout.Contains(301) {
		t.Fatalf("unit 3 must not exist")
	}
	if layout.Contains(139) || layout.Contains(100) {
		t.Fatalf("indices outside 1..38 must not exist")
	}
	if !layout.Contains(101) || !layout.Contains(538) {
		t.Fatalf("boundary beds 101 and 538 must exist")
	}
}

func TestLayoutBedNumber(t *testing.T) {
	layout := DefaultLayout()
	n, err := layout.BedNumber(2, 5)
	if err != nil {
		t.Fatalf("bed number: %v", err)
	}
	if n != 205 {
		t.Fatalf("bed(2,5) = %d, want 205", n)
	}
	if _, err := layout.BedNumber(3, 5); err == nil {
		t.Fatalf("expected error for unknown unit")
	}
	if _, err := layout.BedNumber(2, 39); err == nil {
		t.Fatalf("expected error for index out of range")
	}
}

func TestLayoutBedsAscending(t *testing.T) {
	layout := DefaultLayout()
	beds := layout.Beds()
	if len(beds) != layout.TotalBeds() {
		t.Fatalf("beds() length = %d, want %d", len(beds), layout.TotalBeds())
	}
	for i := 1; i < len(beds); i++ {
		if beds[i-1] >= beds[i] {
			t.Fatalf("beds not strictly ascending at %d: %d >= %d", i, beds[i-1], beds[i])
		}
	}
	if beds[0] != 101 || beds[len(beds)-1] != 538 {
		t.Fatalf("bed range = %d..%d, want 101..538", beds[0], beds[len(beds)-1])
	}
}

func TestLayoutValidateRejectsBadConfigs(t *testing.T) {
	bad := Layout{Units: []int{1, 1}, FirstIndex: 1, LastIndex: 38, PediatricUnit: 1}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for duplicate units")
	}
	bad = Layout{Units: []int{1, 2}, FirstIndex: 1, LastIndex: 37, PediatricUnit: 1}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for odd last index")
	}
	bad = Layout{Units: []int{1, 2}, FirstIndex: 1, LastIndex: 38, PediatricUnit: 5}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for pediatric unit outside layout")
	}
}
