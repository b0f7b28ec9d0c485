package domain

import (
	"fmt"
	"sort"
)

// BedNumber encodes a bed's address as unit*100 + index within the unit.
type BedNumber int

// Unit returns the hospital unit the bed belongs to.
func (n BedNumber) Unit() int { return int(n) / 100 }

// Index returns the bed's position within its unit.
func (n BedNumber) Index() int { return int(n) % 100 }

// Roommate returns the other bed of the same two-bed room. Pairing is by
// parity: even numbers pair down, odd numbers pair up. The mapping is an
// involution and never crosses a unit boundary because indices start at 1.
func (n BedNumber) Roommate() BedNumber {
	if n%2 == 0 {
		return n - 1
	}
	return n + 1
}

// Layout describes the fixed bed set of a ward. It replaces compile-time
// constants so tests can build smaller synthetic wards.
type Layout struct {
	// Units lists the valid hospital units.
	Units []int
	// FirstIndex and LastIndex bound the bed index range within each unit.
	FirstIndex int
	LastIndex  int
	// PediatricUnit is the only unit admitting patients under 13.
	PediatricUnit int
}

// DefaultLayout returns the production bed set: units 1, 2, 4 and 5 with
// beds 1..=38 each, unit 5 pediatric.
func DefaultLayout() Layout {
	return Layout{
		Units:         []int{1, 2, 4, 5},
		FirstIndex:    1,
		LastIndex:     38,
		PediatricUnit: 5,
	}
}

// Validate checks the structural constraints the roommate pairing relies
// on: indices start at 1 so pairing never crosses a unit boundary, and the
// last index is even so every bed has a roommate inside the layout.
func (l Layout) Validate() error {
	if len(l.Units) == 0 {
		return fmt.Errorf("layout requires at least one unit")
	}
	seen := make(map[int]struct{}, len(l.Units))
	for _, unit := range l.Units {
		if unit < 1 {
			return fmt.Errorf("invalid unit %d", unit)
		}
		if _, dup := seen[unit]; dup {
			return fmt.Errorf("duplicate unit %d", unit)
		}
		seen[unit] = struct{}{}
	}
	if l.FirstIndex != 1 {
		return fmt.Errorf("bed indices must start at 1, got %d", l.FirstIndex)
	}
	if l.LastIndex < l.FirstIndex || l.LastIndex > 99 {
		return fmt.Errorf("invalid last bed index %d", l.LastIndex)
	}
	if l.LastIndex%2 != 0 {
		return fmt.Errorf("last bed index %d must be even so every room has two beds", l.LastIndex)
	}
	if _, ok := seen[l.PediatricUnit]; !ok {
		return fmt.Errorf("pediatric unit %d is not part of the layout", l.PediatricUnit)
	}
	return nil
}

// BedNumber constructs the number for (unit, index), rejecting pairs
// outside the layout.
func (l Layout) BedNumber(unit, index int) (BedNumber, error) {
	if !l.hasUnit(unit) {
		return 0, fmt.Errorf("invalid unit %d", unit)
	}
	if index < l.FirstIndex || index > l.LastIndex {
		return 0, fmt.Errorf("invalid bed index %d", index)
	}
	return BedNumber(unit*100 + index), nil
}

// MustBedNumber is like BedNumber but panics on invalid input. A bed
// number outside the layout is a programmer error, not a runtime
// condition: the full bed set is generated once at ward construction.
func (l Layout) MustBedNumber(unit, index int) BedNumber {
	n, err := l.BedNumber(unit, index)
	if err != nil {
		panic(err)
	}
	return n
}

// Contains reports whether n addresses a bed of this layout.
func (l Layout) Contains(n BedNumber) bool {
	return l.hasUnit(n.Unit()) && n.Index() >= l.FirstIndex && n.Index() <= l.LastIndex
}

// SortedUnits returns the layout's units in ascending order.
func (l Layout) SortedUnits() []int {
	units := append([]int(nil), l.Units...)
	sort.Ints(units)
	return units
}

// Beds enumerates every bed number of the layout in ascending order.
func (l Layout) Beds() []BedNumber {
	out := make([]BedNumber, 0, l.TotalBeds())
	for _, unit := range l.SortedUnits() {
		for idx := l.FirstIndex; idx <= l.LastIndex; idx++ {
			out = append(out, BedNumber(unit*100+idx))
		}
	}
	return out
}

// TotalBeds returns the size of the fixed bed set.
func (l Layout) TotalBeds() int {
	return len(l.Units) * (l.LastIndex - l.FirstIndex + 1)
}

func (l Layout) hasUnit(unit int) bool {
	for _, u := range l.Units {
		if u == unit {
			return true
		}
	}
	return false
}
