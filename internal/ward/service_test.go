package ward

import (
	"context"
	"errors"
	"strings"
	"testing"

	"wardcore/pkg/domain"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewInMemoryService(domain.DefaultLayout())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func mustAdmit(t *testing.T, svc *Service, p Patient, n BedNumber) {
	t.Helper()
	if _, err := svc.Admit(context.Background(), p, n); err != nil {
		t.Fatalf("admit %d to bed %d: %v", p.ClinicalRecord, n, err)
	}
}

func bedState(t *testing.T, svc *Service, n BedNumber) Bed {
	t.Helper()
	var out Bed
	err := svc.Store().View(context.Background(), func(view RuleView) error {
		bed, ok := view.FindBed(n)
		if !ok {
			t.Fatalf("bed %d missing", n)
		}
		out = bed
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	return out
}

func adultMale(record int, name string) Patient {
	return domain.MustPatient(record, name, 35, domain.GenderMale, false, false)
}

func adultFemale(record int, name string) Patient {
	return domain.MustPatient(record, name, 30, domain.GenderFemale, false, false)
}

func TestDischargeFreesBedAndUnblocksRoommate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	vip := domain.MustPatient(10010, "Important Person", 50, GenderMale, false, true)
	mustAdmit(t, svc, vip, 101)

	if got := bedState(t, svc, 102); !got.Blocked() {
		t.Fatalf("bed 102 should be blocked next to a VIP")
	}
	if _, err := svc.Discharge(ctx, 10010); err != nil {
		t.Fatalf("discharge: %v", err)
	}
	if got := bedState(t, svc, 101); !got.Available() {
		t.Fatalf("bed 101 should be vacant after discharge")
	}
	if got := bedState(t, svc, 102); !got.Available() {
		t.Fatalf("bed 102 should be unblocked after the VIP leaves")
	}
	if _, err := svc.Discharge(ctx, 10010); err == nil {
		t.Fatalf("expected error discharging unknown patient")
	}
}

func TestMoveRelocatesAndReleasesIsolation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	infected := domain.MustPatient(10012, "Infectious", 28, GenderFemale, true, false)
	mustAdmit(t, svc, infected, 201)

	if _, err := svc.Move(ctx, 10012, 205); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := bedState(t, svc, 201); !got.Available() {
		t.Fatalf("source bed 201 should be vacant after move")
	}
	if got := bedState(t, svc, 202); !got.Available() {
		t.Fatalf("old roommate bed 202 should be unblocked after move")
	}
	if got := bedState(t, svc, 205); !got.Blocked() && got.State != BedOccupied {
		t.Fatalf("bed 205 should be occupied, got %v", got.State)
	}
	if got := bedState(t, svc, 206); !got.Blocked() {
		t.Fatalf("new roommate bed 206 should be blocked")
	}
}

func TestMoveFailureRestoresEverything(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	infected := domain.MustPatient(10012, "Infectious", 28, GenderFemale, true, false)
	mustAdmit(t, svc, infected, 201)
	mustAdmit(t, svc, adultMale(10002, "John Lopez"), 205)

	// 206 is adjacent to an occupied bed, so the isolating patient
	// cannot land there.
	_, err := svc.Move(ctx, 10012, 206)
	if err == nil {
		t.Fatalf("expected move to fail")
	}
	n, _, ok := svc.FindPatient(ctx, 10012)
	if !ok || n != 201 {
		t.Fatalf("patient should remain in bed 201, got %d ok=%v", n, ok)
	}
	if got := bedState(t, svc, 202); !got.Blocked() {
		t.Fatalf("bed 202 must stay blocked after failed move")
	}
}

func TestMoveToOwnRoommateBedSwapsRoomSides(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	infected := domain.MustPatient(10012, "Infectious", 28, GenderFemale, true, false)
	mustAdmit(t, svc, infected, 201)

	// The source bed is released before the destination is validated,
	// so an isolated patient can take their own blocked roommate bed.
	// The room just flips sides.
	if _, err := svc.Move(ctx, 10012, 202); err != nil {
		t.Fatalf("move to own roommate bed: %v", err)
	}
	if n, _, _ := svc.FindPatient(ctx, 10012); n != 202 {
		t.Fatalf("patient in bed %d, want 202", n)
	}
	if got := bedState(t, svc, 201); !got.Blocked() {
		t.Fatalf("bed 201 should now be the blocked side of the room")
	}
}

func TestSwitchSwapsPatients(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	mustAdmit(t, svc, adultMale(10002, "John Lopez"), 205)
	mustAdmit(t, svc, adultMale(10005, "Peter Sanchez"), 209)

	if _, err := svc.Switch(ctx, 10002, 10005); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if n, _, _ := svc.FindPatient(ctx, 10002); n != 209 {
		t.Fatalf("patient 10002 in bed %d, want 209", n)
	}
	if n, _, _ := svc.FindPatient(ctx, 10005); n != 205 {
		t.Fatalf("patient 10005 in bed %d, want 205", n)
	}
}

func TestSwitchWithinOneRoom(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	mustAdmit(t, svc, adultMale(10002, "John Lopez"), 205)
	mustAdmit(t, svc, adultMale(10005, "Peter Sanchez"), 206)

	if _, err := svc.Switch(ctx, 10002, 10005); err != nil {
		t.Fatalf("switch within room: %v", err)
	}
	if n, _, _ := svc.FindPatient(ctx, 10002); n != 206 {
		t.Fatalf("patient 10002 in bed %d, want 206", n)
	}
}

func TestSwitchValidationErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	mustAdmit(t, svc, adultMale(10002, "John Lopez"), 205)
	mustAdmit(t, svc, adultFemale(10001, "Maria Garcia"), 201)
	mustAdmit(t, svc, adultFemale(10004, "Ana Martinez"), 202)
	child := domain.MustPatient(10003, "Carlos Ruiz", 10, domain.GenderMale, false, false)
	mustAdmit(t, svc, child, 501)

	if _, err := svc.Switch(ctx, 10002, 10002); err == nil {
		t.Fatalf("expected error switching a patient with themselves")
	}
	if _, err := svc.Switch(ctx, 60001, 10002); err == nil || !strings.Contains(err.Error(), "first patient") {
		t.Fatalf("expected first-patient error, got %v", err)
	}
	if _, err := svc.Switch(ctx, 10002, 60002); err == nil || !strings.Contains(err.Error(), "second patient") {
		t.Fatalf("expected second-patient error, got %v", err)
	}
	// Child would leave the pediatric unit.
	if _, err := svc.Switch(ctx, 10003, 10002); err == nil || !strings.Contains(err.Error(), "under 13") {
		t.Fatalf("expected pediatric error, got %v", err)
	}
	// John would become Maria's roommate.
	if _, err := svc.Switch(ctx, 10002, 10004); err == nil || !strings.Contains(err.Error(), "gender") {
		t.Fatalf("expected gender error, got %v", err)
	}
	// Nothing may have changed.
	if n, _, _ := svc.FindPatient(ctx, 10002); n != 205 {
		t.Fatalf("patient 10002 moved to %d after failed switches", n)
	}
	if n, _, _ := svc.FindPatient(ctx, 10004); n != 202 {
		t.Fatalf("patient 10004 moved to %d after failed switches", n)
	}
}

func TestSwitchKeepsIsolationInvariant(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	vip := domain.MustPatient(10010, "Important Person", 50, GenderMale, false, true)
	mustAdmit(t, svc, vip, 101)
	mustAdmit(t, svc, adultMale(10002, "John Lopez"), 105)

	// Swapping would strand the VIP next to the unblocked bed 106.
	_, err := svc.Switch(ctx, 10010, 10002)
	if err == nil {
		t.Fatalf("expected switch to be rejected")
	}
	if n, _, _ := svc.FindPatient(ctx, 10010); n != 101 {
		t.Fatalf("vip moved to %d after rejected switch", n)
	}
}

func TestSetVIPBlocksRoommateBed(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	mustAdmit(t, svc, adultMale(10002, "John Lopez"), 205)

	if _, err := svc.SetVIP(ctx, 10002, true); err != nil {
		t.Fatalf("set vip: %v", err)
	}
	if got := bedState(t, svc, 206); !got.Blocked() {
		t.Fatalf("bed 206 should be blocked next to the VIP")
	}
	_, p, _ := svc.FindPatient(ctx, 10002)
	if !p.VIP {
		t.Fatalf("vip flag not applied")
	}

	if _, err := svc.SetVIP(ctx, 10002, false); err != nil {
		t.Fatalf("clear vip: %v", err)
	}
	if got := bedState(t, svc, 206); !got.Available() {
		t.Fatalf("bed 206 should be unblocked after clearing vip")
	}
}

func TestSetVIPRelocatesRoommateToLowestBed(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	mustAdmit(t, svc, adultMale(10002, "John Lopez"), 205)
	mustAdmit(t, svc, adultMale(10005, "Peter Sanchez"), 206)

	if _, err := svc.SetVIP(ctx, 10002, true); err != nil {
		t.Fatalf("set vip: %v", err)
	}
	// Peter ends up in the lowest compatible free bed.
	if n, _, _ := svc.FindPatient(ctx, 10005); n != 101 {
		t.Fatalf("roommate relocated to %d, want 101", n)
	}
	if got := bedState(t, svc, 206); !got.Blocked() {
		t.Fatalf("bed 206 should be blocked after relocation")
	}
}

func TestSetVIPFailsWhenNoBedForRoommate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	// Fill every bed with compatible males so the roommate has nowhere
	// to go.
	record := 20001
	for _, n := range svc.Layout().Beds() {
		mustAdmit(t, svc, adultMale(record, "Occupant"), n)
		record++
	}

	_, err := svc.SetVIP(ctx, 20001, true)
	if !errors.Is(err, ErrNoBedToRelocateRoommate) {
		t.Fatalf("expected ErrNoBedToRelocateRoommate, got %v", err)
	}
	// The flag change must not have been applied.
	_, p, _ := svc.FindPatient(ctx, 20001)
	if p.VIP {
		t.Fatalf("vip flag applied despite failed relocation")
	}
	if n, _, _ := svc.FindPatient(ctx, 20002); n != 102 {
		t.Fatalf("roommate moved to %d despite failed relocation", n)
	}
}

func TestSetVIPNoopWhenFlagUnchanged(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	mustAdmit(t, svc, adultMale(10002, "John Lopez"), 205)
	mustAdmit(t, svc, adultMale(10005, "Peter Sanchez"), 206)

	if _, err := svc.SetVIP(ctx, 10002, false); err != nil {
		t.Fatalf("redundant clear: %v", err)
	}
	if n, _, _ := svc.FindPatient(ctx, 10005); n != 206 {
		t.Fatalf("roommate moved by a no-op flag change")
	}
}

func TestMarkInfectedAndUnmark(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	mustAdmit(t, svc, adultFemale(10001, "Maria Garcia"), 201)

	if _, err := svc.MarkInfected(ctx, 10001); err != nil {
		t.Fatalf("mark infected: %v", err)
	}
	if got := bedState(t, svc, 202); !got.Blocked() {
		t.Fatalf("bed 202 should be blocked next to an infectious patient")
	}
	if _, err := svc.UnmarkInfected(ctx, 10001); err != nil {
		t.Fatalf("unmark infected: %v", err)
	}
	if got := bedState(t, svc, 202); !got.Available() {
		t.Fatalf("bed 202 should be unblocked after recovery")
	}
}

func TestUnmarkInfectedKeepsBlockForVIP(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	vip := domain.MustPatient(10010, "Important Person", 50, GenderMale, false, true)
	mustAdmit(t, svc, vip, 101)

	if _, err := svc.MarkInfected(ctx, 10010); err != nil {
		t.Fatalf("mark infected: %v", err)
	}
	if _, err := svc.UnmarkInfected(ctx, 10010); err != nil {
		t.Fatalf("unmark infected: %v", err)
	}
	// Still VIP, so the roommate bed stays blocked.
	if got := bedState(t, svc, 102); !got.Blocked() {
		t.Fatalf("bed 102 should remain blocked for the VIP")
	}
}

func TestCountBeds(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	mustAdmit(t, svc, adultFemale(10001, "Maria Garcia"), 201)
	vip := domain.MustPatient(10010, "Important Person", 50, GenderMale, false, true)
	mustAdmit(t, svc, vip, 101)

	counts := svc.CountBeds(ctx)
	if counts.Occupied != 2 || counts.Blocked != 1 {
		t.Fatalf("counts = %+v, want 2 occupied 1 blocked", counts)
	}
	if counts.Occupied+counts.Vacant+counts.Blocked != 152 {
		t.Fatalf("counts do not sum to 152: %+v", counts)
	}
}

func TestServiceObservabilityHooks(t *testing.T) {
	ctx := context.Background()
	rec := NewExpvarMetricsRecorder("")
	tracer := NewJSONTracer(nil)
	svc, err := NewInMemoryService(domain.DefaultLayout(), WithMetrics(rec), WithTracer(tracer))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	mustAdmit(t, svc, adultFemale(10001, "Maria Garcia"), 201)
	if _, err := svc.Admit(ctx, adultMale(10002, "John Lopez"), 202); err == nil {
		t.Fatalf("expected gender rejection")
	}

	snap := rec.Snapshot()
	if snap.Results["admit"]["success"] != 1 || snap.Results["admit"]["error"] != 1 {
		t.Fatalf("unexpected metric counts: %+v", snap.Results)
	}
	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(entries))
	}
	if entries[0].Status != "success" || entries[1].Status != "error" {
		t.Fatalf("unexpected span statuses: %+v", entries)
	}
}

func TestSeedDemoProducesConsistentWard(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	if err := SeedDemo(ctx, svc); err != nil {
		t.Fatalf("seed: %v", err)
	}
	counts := svc.CountBeds(ctx)
	if counts.Occupied != 6 {
		t.Fatalf("occupied = %d, want 6", counts.Occupied)
	}
	if counts.Blocked != 2 {
		t.Fatalf("blocked = %d, want 2 (vip and infectious roommate beds)", counts.Blocked)
	}
}
