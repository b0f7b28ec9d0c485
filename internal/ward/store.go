package ward

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wardcore/pkg/domain"
)

// wardState is the authoritative occupancy map plus a secondary index
// from clinical record number to bed number. The index is rebuilt-free:
// every occupancy primitive keeps it in sync.
type wardState struct {
	layout Layout
	beds   map[BedNumber]Bed
	index  map[int]BedNumber
}

func newWardState(layout Layout) wardState {
	s := wardState{
		layout: layout,
		beds:   make(map[BedNumber]Bed, layout.TotalBeds()),
		index:  make(map[int]BedNumber),
	}
	for _, n := range layout.Beds() {
		s.beds[n] = domain.NewBed(n)
	}
	return s
}

func (s wardState) clone() wardState {
	cp := wardState{
		layout: s.layout,
		beds:   make(map[BedNumber]Bed, len(s.beds)),
		index:  make(map[int]BedNumber, len(s.index)),
	}
	for n, b := range s.beds {
		cp.beds[n] = b.Clone()
	}
	for record, n := range s.index {
		cp.index[record] = n
	}
	return cp
}

func (s *wardState) bed(n BedNumber) (Bed, bool) {
	b, ok := s.beds[n]
	return b, ok
}

// occupy places p into bed n. Callers must have verified the bed is
// vacant and the record number unused.
func (s *wardState) occupy(n BedNumber, p Patient) {
	b := s.beds[n]
	b.State = BedOccupied
	b.Patient = &p
	s.beds[n] = b
	s.index[p.ClinicalRecord] = n
}

func (s *wardState) release(n BedNumber) {
	b := s.beds[n]
	if b.Patient != nil {
		delete(s.index, b.Patient.ClinicalRecord)
	}
	b.State = BedVacant
	b.Patient = nil
	s.beds[n] = b
}

func (s *wardState) block(n BedNumber) {
	b := s.beds[n]
	b.State = BedBlocked
	b.Patient = nil
	s.beds[n] = b
}

func (s *wardState) unblock(n BedNumber) {
	b := s.beds[n]
	b.State = BedVacant
	b.Patient = nil
	s.beds[n] = b
}

// update replaces the occupant payload of bed n in place. The clinical
// record number must not change.
func (s *wardState) update(n BedNumber, p Patient) {
	b := s.beds[n]
	b.Patient = &p
	s.beds[n] = b
}

func (s *wardState) findPatient(record int) (BedNumber, Patient, bool) {
	n, ok := s.index[record]
	if !ok {
		return 0, Patient{}, false
	}
	occ, ok := s.beds[n].Occupant()
	if !ok {
		return 0, Patient{}, false
	}
	return n, occ, true
}

// admissionPolicy runs the roommate-facing admission checks in order:
// pediatric unit, gender, age band, isolation compatibility, and
// adjacent-bed availability for isolating patients. Bed existence and
// vacancy are the caller's concern.
func admissionPolicy(s *wardState, p Patient, n BedNumber) error {
	if p.UnderThirteen() && n.Unit() != s.layout.PediatricUnit {
		return fmt.Errorf("patients under 13 must be admitted to unit %d", s.layout.PediatricUnit)
	}
	roommateBed, ok := s.bed(n.Roommate())
	if !ok {
		return nil
	}
	if occ, occupied := roommateBed.Occupant(); occupied {
		if occ.Gender != p.Gender {
			return fmt.Errorf("roommates must share the same gender")
		}
		if p.UnderSixteen() != occ.UnderSixteen() {
			return fmt.Errorf("patients under 16 can only share a room with other under-16 patients")
		}
		if occ.RequiresIsolation() {
			return fmt.Errorf("cannot share a room with an infectious or VIP patient")
		}
	}
	if p.RequiresIsolation() && !roommateBed.Available() {
		return fmt.Errorf("adjacent bed %d must be free to isolate the patient", roommateBed.Number)
	}
	return nil
}

// availableBedsFor lists every bed the patient could be admitted to
// right now, ascending by bed number. The ordering is load-bearing:
// relocation always picks the first entry, keeping it deterministic.
func availableBedsFor(s *wardState, p Patient) []BedNumber {
	var out []BedNumber
	for _, n := range s.layout.Beds() {
		bed, ok := s.bed(n)
		if !ok || !bed.Available() {
			continue
		}
		if err := admissionPolicy(s, p, n); err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Store owns the ward state exclusively. Mutations run through
// RunInTransaction, which clones the state, applies the closure, checks
// the registered invariant rules against the candidate state, and
// commits only when no blocking violation exists. A failing closure or
// blocking violation discards the clone, so every operation is
// all-or-nothing.
type Store struct {
	mu     sync.RWMutex
	state  wardState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs a ward store for the given layout. A nil engine
// runs without commit-time invariant checks.
func NewStore(layout Layout, engine *RulesEngine) (*Store, error) {
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("ward layout: %w", err)
	}
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newWardState(layout),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// Layout returns the bed set configuration.
func (s *Store) Layout() Layout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.layout
}

// RulesEngine exposes the configured engine for callers registering
// additional rules.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used for transaction timestamps.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// RunInTransaction executes fn within a transactional copy of the ward.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx *Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := ruleView{state: &tx.state}
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// AvailableBedsFor lists every bed the patient could be admitted to in
// the current state, ascending by bed number.
func (s *Store) AvailableBedsFor(p Patient) []BedNumber {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return availableBedsFor(&s.state, p)
}

// View executes fn against a read-only snapshot of the ward state.
func (s *Store) View(_ context.Context, fn func(view RuleView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(ruleView{state: &snapshot})
}

// Transaction is a mutable unit of work over a cloned ward state.
type Transaction struct {
	state   wardState
	changes []Change
	now     time.Time
}

// Now returns the transaction timestamp.
func (tx *Transaction) Now() time.Time { return tx.now }

// Layout returns the bed set configuration.
func (tx *Transaction) Layout() Layout { return tx.state.layout }

// Bed retrieves a bed by number within the transaction scope.
func (tx *Transaction) Bed(n BedNumber) (Bed, bool) {
	b, ok := tx.state.bed(n)
	if !ok {
		return Bed{}, false
	}
	return b.Clone(), true
}

// FindPatient resolves a clinical record number to its bed and occupant.
func (tx *Transaction) FindPatient(record int) (BedNumber, Patient, bool) {
	return tx.state.findPatient(record)
}

// AvailableBedsFor lists compatible free beds for p, ascending.
func (tx *Transaction) AvailableBedsFor(p Patient) []BedNumber {
	return availableBedsFor(&tx.state, p)
}

func (tx *Transaction) record(action Action, n BedNumber, before, after Bed) {
	tx.changes = append(tx.changes, Change{Action: action, Bed: n, Before: before.Clone(), After: after.Clone()})
}

// Admit validates the full admission rule set for p at bed n and, on
// success, occupies the bed and blocks the roommate bed when the patient
// requires isolation. Checks run in order and fail fast; no mutation
// happens before all checks pass.
func (tx *Transaction) Admit(p Patient, n BedNumber) error {
	bed, ok := tx.state.bed(n)
	if !ok {
		return BedNotFoundError{Bed: n}
	}
	if !bed.Available() {
		return BedUnavailableError{Bed: n}
	}
	if existing, admitted := tx.state.index[p.ClinicalRecord]; admitted {
		return DuplicateRecordError{Record: p.ClinicalRecord, Bed: existing}
	}
	if err := admissionPolicy(&tx.state, p, n); err != nil {
		return err
	}

	before := tx.state.beds[n]
	tx.state.occupy(n, p)
	tx.record(ActionOccupy, n, before, tx.state.beds[n])

	if p.RequiresIsolation() {
		rm := n.Roommate()
		if roommateBed, ok := tx.state.bed(rm); ok && roommateBed.Available() {
			tx.state.block(rm)
			tx.record(ActionBlock, rm, roommateBed, tx.state.beds[rm])
		}
	}
	return nil
}

// Occupy places p into bed n without running the admission checks.
// Swap commits use it after both directions were validated; the bed
// must be vacant.
func (tx *Transaction) Occupy(n BedNumber, p Patient) {
	before := tx.state.beds[n]
	tx.state.occupy(n, p)
	tx.record(ActionOccupy, n, before, tx.state.beds[n])
}

// Release frees an occupied bed, removing its occupant from the index.
func (tx *Transaction) Release(n BedNumber) {
	before := tx.state.beds[n]
	tx.state.release(n)
	tx.record(ActionRelease, n, before, tx.state.beds[n])
}

// Block takes a vacant bed out of circulation.
func (tx *Transaction) Block(n BedNumber) {
	before := tx.state.beds[n]
	tx.state.block(n)
	tx.record(ActionBlock, n, before, tx.state.beds[n])
}

// Unblock returns a blocked bed to vacant.
func (tx *Transaction) Unblock(n BedNumber) {
	before := tx.state.beds[n]
	tx.state.unblock(n)
	tx.record(ActionUnblock, n, before, tx.state.beds[n])
}

// Update replaces the occupant payload of bed n. The clinical record
// number of the occupant must not change.
func (tx *Transaction) Update(n BedNumber, p Patient) {
	before := tx.state.beds[n]
	tx.state.update(n, p)
	tx.record(ActionUpdate, n, before, tx.state.beds[n])
}

// ruleView adapts a wardState to the read-only interface rules consume.
type ruleView struct {
	state *wardState
}

func (v ruleView) Layout() Layout { return v.state.layout }

func (v ruleView) ListBeds() []Bed {
	out := make([]Bed, 0, len(v.state.beds))
	for _, n := range v.state.layout.Beds() {
		if b, ok := v.state.bed(n); ok {
			out = append(out, b.Clone())
		}
	}
	return out
}

func (v ruleView) FindBed(n BedNumber) (Bed, bool) {
	b, ok := v.state.bed(n)
	if !ok {
		return Bed{}, false
	}
	return b.Clone(), true
}

func (v ruleView) FindPatient(record int) (BedNumber, Patient, bool) {
	return v.state.findPatient(record)
}
