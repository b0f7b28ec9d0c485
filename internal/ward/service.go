package ward

import (
	"context"
	"fmt"
	"time"
)

// Service exposes the ward's public operation set. Every mutating
// operation runs inside a store transaction, so callers observe each
// operation as all-or-nothing.
type Service struct {
	store   *Store
	metrics MetricsRecorder
	tracer  Tracer
}

// ServiceOption customises service construction.
type ServiceOption func(*Service)

// WithMetrics attaches a metrics recorder observing operation outcomes.
func WithMetrics(rec MetricsRecorder) ServiceOption {
	return func(s *Service) { s.metrics = rec }
}

// WithTracer attaches a tracer producing one span per operation.
func WithTracer(tr Tracer) ServiceOption {
	return func(s *Service) { s.tracer = tr }
}

// NewService constructs a service backed by the supplied store.
func NewService(store *Store, opts ...ServiceOption) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service and store for the given layout
// with the default rule set.
func NewInMemoryService(layout Layout, opts ...ServiceOption) (*Service, error) {
	store, err := NewStore(layout, NewDefaultRulesEngine())
	if err != nil {
		return nil, err
	}
	return NewService(store, opts...), nil
}

// Store returns the underlying storage implementation.
func (s *Service) Store() *Store { return s.store }

// Layout returns the ward's bed set configuration.
func (s *Service) Layout() Layout { return s.store.Layout() }

func (s *Service) run(ctx context.Context, operation string, fn func(tx *Transaction) error) (Result, error) {
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operation)
	}
	started := time.Now()
	res, err := s.store.RunInTransaction(ctx, fn)
	if s.metrics != nil {
		s.metrics.Observe(ctx, operation, err == nil, time.Since(started))
	}
	if span != nil {
		span.End(err)
	}
	return res, err
}

// Admit places a patient into a vacant bed, enforcing the full admission
// rule set. When the patient is VIP or infectious, the roommate bed is
// blocked as part of the same transaction.
func (s *Service) Admit(ctx context.Context, p Patient, n BedNumber) (Result, error) {
	return s.run(ctx, "admit", func(tx *Transaction) error {
		return tx.Admit(p, n)
	})
}

// Move relocates an admitted patient to another bed. The destination is
// validated with the full admission rule set; on failure the transaction
// is discarded and the ward, including any isolation block next to the
// source bed, is exactly as before the call.
func (s *Service) Move(ctx context.Context, record int, dest BedNumber) (Result, error) {
	return s.run(ctx, "move", func(tx *Transaction) error {
		return moveInTx(tx, record, dest)
	})
}

func moveInTx(tx *Transaction, record int, dest BedNumber) error {
	current, p, ok := tx.FindPatient(record)
	if !ok {
		return PatientNotFoundError{Record: record}
	}
	tx.Release(current)
	if p.RequiresIsolation() {
		oldRoommate := current.Roommate()
		if rb, ok := tx.Bed(oldRoommate); ok && rb.Blocked() {
			tx.Unblock(oldRoommate)
		}
	}
	return tx.Admit(p, dest)
}

// Switch swaps the beds of two admitted patients. Validation covers the
// pediatric-unit rule and each patient's new roommate; the swap commits
// only after both directions pass, so no partial application is ever
// observable.
func (s *Service) Switch(ctx context.Context, recordA, recordB int) (Result, error) {
	return s.run(ctx, "switch", func(tx *Transaction) error {
		if recordA == recordB {
			return fmt.Errorf("cannot switch patient %d with themselves", recordA)
		}
		bedA, p1, ok := tx.FindPatient(recordA)
		if !ok {
			return fmt.Errorf("first patient: %w", PatientNotFoundError{Record: recordA})
		}
		bedB, p2, ok := tx.FindPatient(recordB)
		if !ok {
			return fmt.Errorf("second patient: %w", PatientNotFoundError{Record: recordB})
		}

		pediatric := tx.Layout().PediatricUnit
		if p1.UnderThirteen() && bedB.Unit() != pediatric {
			return fmt.Errorf("switch would move patient %d under 13 outside unit %d", p1.ClinicalRecord, pediatric)
		}
		if p2.UnderThirteen() && bedA.Unit() != pediatric {
			return fmt.Errorf("switch would move patient %d under 13 outside unit %d", p2.ClinicalRecord, pediatric)
		}

		// Each mover is checked against its destination roommate. The
		// check is skipped when the destination roommate is the other
		// swapped bed: that pairing is the swap itself.
		if err := switchRoommateCheck(tx, p2, bedA, bedB); err != nil {
			return err
		}
		if err := switchRoommateCheck(tx, p1, bedB, bedA); err != nil {
			return err
		}

		tx.Release(bedA)
		tx.Release(bedB)
		tx.Occupy(bedA, p2)
		tx.Occupy(bedB, p1)
		return nil
	})
}

// switchRoommateCheck validates mover against the roommate of dest,
// skipping when that roommate is the other swapped bed.
func switchRoommateCheck(tx *Transaction, mover Patient, dest, other BedNumber) error {
	roommate := dest.Roommate()
	if roommate == other {
		return nil
	}
	rb, ok := tx.Bed(roommate)
	if !ok {
		return nil
	}
	if occ, occupied := rb.Occupant(); occupied {
		if mover.Gender != occ.Gender {
			return fmt.Errorf("switch would violate the gender rule")
		}
		if mover.UnderSixteen() != occ.UnderSixteen() {
			return fmt.Errorf("switch would violate the under-16 rule")
		}
		if occ.RequiresIsolation() {
			return fmt.Errorf("switch would place a patient next to an infectious or VIP patient")
		}
	}
	if mover.RequiresIsolation() && !rb.Blocked() {
		return fmt.Errorf("switch would leave patient %d without a blocked adjacent bed", mover.ClinicalRecord)
	}
	return nil
}

// SetVIP sets or clears a patient's VIP flag. Turning the flag on
// relocates an occupied roommate to the lowest-numbered compatible free
// bed and blocks the roommate bed; turning it off unblocks the roommate
// bed unless the patient is also infectious. The flag change and its
// side effects commit as one transaction: if relocation is impossible
// the flag is not applied.
func (s *Service) SetVIP(ctx context.Context, record int, vip bool) (Result, error) {
	return s.run(ctx, "set_vip", func(tx *Transaction) error {
		n, p, ok := tx.FindPatient(record)
		if !ok {
			return PatientNotFoundError{Record: record}
		}
		if p.VIP == vip {
			return nil
		}
		p.VIP = vip
		tx.Update(n, p)

		roommate := n.Roommate()
		if vip {
			if err := relocateRoommate(tx, roommate, ErrNoBedToRelocateRoommate); err != nil {
				return err
			}
			if rb, ok := tx.Bed(roommate); ok && rb.Available() {
				tx.Block(roommate)
			}
			return nil
		}
		if !p.Infected {
			if rb, ok := tx.Bed(roommate); ok && rb.Blocked() {
				tx.Unblock(roommate)
			}
		}
		return nil
	})
}

// MarkInfected flags a patient as infectious, relocating an occupied
// roommate and blocking the roommate bed, all in one transaction.
func (s *Service) MarkInfected(ctx context.Context, record int) (Result, error) {
	return s.run(ctx, "mark_infected", func(tx *Transaction) error {
		n, p, ok := tx.FindPatient(record)
		if !ok {
			return PatientNotFoundError{Record: record}
		}
		if p.Infected {
			return nil
		}
		p.Infected = true
		tx.Update(n, p)

		roommate := n.Roommate()
		if err := relocateRoommate(tx, roommate, ErrNoBedToMoveRoommate); err != nil {
			return err
		}
		if rb, ok := tx.Bed(roommate); ok && rb.Available() {
			tx.Block(roommate)
		}
		return nil
	})
}

// UnmarkInfected clears a patient's infection flag and, unless the
// patient is VIP, unblocks the roommate bed.
func (s *Service) UnmarkInfected(ctx context.Context, record int) (Result, error) {
	return s.run(ctx, "unmark_infected", func(tx *Transaction) error {
		n, p, ok := tx.FindPatient(record)
		if !ok {
			return PatientNotFoundError{Record: record}
		}
		if !p.Infected {
			return nil
		}
		p.Infected = false
		tx.Update(n, p)

		if !p.VIP {
			roommate := n.Roommate()
			if rb, ok := tx.Bed(roommate); ok && rb.Blocked() {
				tx.Unblock(roommate)
			}
		}
		return nil
	})
}

// Discharge frees the patient's bed and lifts the isolation block next
// to it when the patient was VIP or infectious.
func (s *Service) Discharge(ctx context.Context, record int) (Result, error) {
	return s.run(ctx, "discharge", func(tx *Transaction) error {
		n, p, ok := tx.FindPatient(record)
		if !ok {
			return PatientNotFoundError{Record: record}
		}
		tx.Release(n)
		if p.RequiresIsolation() {
			roommate := n.Roommate()
			if rb, ok := tx.Bed(roommate); ok && rb.Blocked() {
				tx.Unblock(roommate)
			}
		}
		return nil
	})
}

// relocateRoommate moves the occupant of bed n, if any, to the first
// compatible free bed. notFound is returned when no candidate exists.
func relocateRoommate(tx *Transaction, n BedNumber, notFound error) error {
	rb, ok := tx.Bed(n)
	if !ok {
		return nil
	}
	occ, occupied := rb.Occupant()
	if !occupied {
		return nil
	}
	candidates := tx.AvailableBedsFor(occ)
	if len(candidates) == 0 {
		return notFound
	}
	tx.Release(n)
	return tx.Admit(occ, candidates[0])
}

// AvailableBedsFor lists every bed the patient could be admitted to in
// the current ward state, ascending by bed number.
func (s *Service) AvailableBedsFor(_ context.Context, p Patient) []BedNumber {
	return s.store.AvailableBedsFor(p)
}

// FindPatient resolves a clinical record number to the bed holding the
// patient.
func (s *Service) FindPatient(ctx context.Context, record int) (BedNumber, Patient, bool) {
	var (
		n     BedNumber
		p     Patient
		found bool
	)
	_ = s.store.View(ctx, func(view RuleView) error {
		n, p, found = view.FindPatient(record)
		return nil
	})
	return n, p, found
}

// BedCounts aggregates the ward's beds by state.
type BedCounts struct {
	Occupied int
	Vacant   int
	Blocked  int
}

// CountBeds tallies beds by state in a single pass.
func (s *Service) CountBeds(ctx context.Context) BedCounts {
	var counts BedCounts
	_ = s.store.View(ctx, func(view RuleView) error {
		for _, bed := range view.ListBeds() {
			switch bed.State {
			case BedOccupied:
				counts.Occupied++
			case BedBlocked:
				counts.Blocked++
			default:
				counts.Vacant++
			}
		}
		return nil
	})
	return counts
}

// Beds returns a point-in-time snapshot of every bed, ascending by
// number.
func (s *Service) Beds(ctx context.Context) []Bed {
	var out []Bed
	_ = s.store.View(ctx, func(view RuleView) error {
		out = view.ListBeds()
		return nil
	})
	return out
}
