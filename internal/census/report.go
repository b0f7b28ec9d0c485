// Package census turns a point-in-time snapshot of the ward into a
// report that can be rendered as text, serialized as JSON, archived, or
// published to a blob store.
package census

import (
	"fmt"
	"strings"
	"time"

	"wardcore/pkg/domain"
)

// BedRecord is one bed's entry in a census report.
type BedRecord struct {
	Bed        int    `json:"bed"`
	State      string `json:"state"`
	Name       string `json:"name,omitempty"`
	Record     int    `json:"clinical_record,omitempty"`
	Age        int    `json:"age,omitempty"`
	Gender     string `json:"gender,omitempty"`
	Infectious bool   `json:"infectious,omitempty"`
	VIP        bool   `json:"vip,omitempty"`
}

// UnitSection groups the beds of one unit, ascending by bed number.
type UnitSection struct {
	Unit int         `json:"unit"`
	Beds []BedRecord `json:"beds"`
}

// Report is a full ward census.
type Report struct {
	TakenAt  time.Time     `json:"taken_at"`
	Units    []UnitSection `json:"units"`
	Occupied int           `json:"occupied"`
	Vacant   int           `json:"vacant"`
	Blocked  int           `json:"blocked"`
}

const (
	stateOccupied = "OCCUPIED"
	stateVacant   = "VACANT"
	stateBlocked  = "BLOCKED"
)

// Build assembles a report from a bed snapshot. Beds are grouped by the
// layout's units in ascending order; beds absent from the snapshot are
// skipped.
func Build(takenAt time.Time, layout domain.Layout, beds []domain.Bed) Report {
	byNumber := make(map[domain.BedNumber]domain.Bed, len(beds))
	for _, b := range beds {
		byNumber[b.Number] = b
	}

	report := Report{TakenAt: takenAt.UTC()}
	for _, unit := range layout.SortedUnits() {
		section := UnitSection{Unit: unit}
		for idx := layout.FirstIndex; idx <= layout.LastIndex; idx++ {
			n, err := layout.BedNumber(unit, idx)
			if err != nil {
				continue
			}
			bed, ok := byNumber[n]
			if !ok {
				continue
			}
			section.Beds = append(section.Beds, bedRecord(bed))
			switch bed.State {
			case domain.BedOccupied:
				report.Occupied++
			case domain.BedBlocked:
				report.Blocked++
			default:
				report.Vacant++
			}
		}
		report.Units = append(report.Units, section)
	}
	return report
}

func bedRecord(bed domain.Bed) BedRecord {
	rec := BedRecord{Bed: int(bed.Number)}
	if occ, ok := bed.Occupant(); ok {
		rec.State = stateOccupied
		rec.Name = occ.Name
		rec.Record = occ.ClinicalRecord
		rec.Age = occ.Age
		rec.Gender = string(occ.Gender)
		rec.Infectious = occ.Infected
		rec.VIP = occ.VIP
		return rec
	}
	if bed.State == domain.BedBlocked {
		rec.State = stateBlocked
	} else {
		rec.State = stateVacant
	}
	return rec
}

// Render formats the report as the per-unit bed listing used by the
// demo, one line per bed plus a trailing summary.
func (r Report) Render() string {
	var sb strings.Builder
	for _, section := range r.Units {
		fmt.Fprintf(&sb, "--- Unit %d ---\n", section.Unit)
		for _, bed := range section.Beds {
			switch bed.State {
			case stateOccupied:
				fmt.Fprintf(&sb, "Bed %d: OCCUPIED - %s (%d)", bed.Bed, bed.Name, bed.Record)
				if bed.Infectious {
					sb.WriteString(" [INFECTIOUS]")
				}
				if bed.VIP {
					sb.WriteString(" [VIP]")
				}
				sb.WriteString("\n")
			case stateBlocked:
				fmt.Fprintf(&sb, "Bed %d: BLOCKED\n", bed.Bed)
			default:
				fmt.Fprintf(&sb, "Bed %d: VACANT\n", bed.Bed)
			}
		}
	}
	fmt.Fprintf(&sb, "Summary: %d occupied, %d vacant, %d blocked\n", r.Occupied, r.Vacant, r.Blocked)
	return sb.String()
}
