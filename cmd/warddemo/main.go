// Command warddemo exercises the ward service end to end, printing the
// outcome of each operation. Set WARDCORE_SHOW_BEDS to also print the
// full bed listing at the end.
package main

import (
	"context"
	"fmt"
	"os"

	"wardcore/internal/census"
	"wardcore/internal/ward"
	"wardcore/pkg/domain"
)

func main() {
	ctx := context.Background()
	svc, err := ward.NewInMemoryService(domain.DefaultLayout(),
		ward.WithMetrics(ward.NewExpvarMetricsRecorder("warddemo")),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warddemo: %v\n", err)
		os.Exit(1)
	}
	layout := svc.Layout()
	fmt.Printf("Total beds: %d\n", layout.TotalBeds())

	maria := domain.MustPatient(10001, "Maria Garcia", 30, domain.GenderFemale, false, false)
	john := domain.MustPatient(10002, "John Lopez", 35, domain.GenderMale, false, false)
	carlos := domain.MustPatient(10003, "Carlos (10 years)", 10, domain.GenderMale, false, false)
	ana := domain.MustPatient(10004, "Ana Martinez", 34, domain.GenderFemale, false, false)
	peter := domain.MustPatient(10005, "Peter Sanchez", 35, domain.GenderMale, false, false)

	report := func(label string, err error) {
		if err != nil {
			fmt.Printf("%s -> error: %v\n", label, err)
			return
		}
		fmt.Printf("%s -> ok\n", label)
	}

	// Admissions, including two that must fail.
	_, err = svc.Admit(ctx, maria, 201)
	report("Admit Maria to 201", err)
	_, err = svc.Admit(ctx, john, 202)
	report("Admit John to 202", err) // different gender, same room
	_, err = svc.Admit(ctx, john, 205)
	report("Admit John to 205", err)
	_, err = svc.Admit(ctx, carlos, 101)
	report("Admit Carlos to 101", err) // under 13 outside pediatric unit
	_, err = svc.Admit(ctx, carlos, 501)
	report("Admit Carlos to 501", err)
	_, err = svc.Admit(ctx, ana, 203)
	report("Admit Ana to 203", err)

	// VIP handling blocks the adjacent bed.
	_, err = svc.SetVIP(ctx, 10002, true)
	report("Mark John as VIP", err)
	testPatient := domain.MustPatient(19000, "Test Patient", 40, domain.GenderMale, false, false)
	_, err = svc.Admit(ctx, testPatient, 206)
	report("Admit test patient to 206", err) // bed blocked next to a VIP

	available := svc.AvailableBedsFor(ctx, testPatient)
	fmt.Printf("Available beds for adult male (%d):", len(available))
	for i, n := range available {
		if i == 10 {
			fmt.Print(" ...")
			break
		}
		if i == 0 {
			fmt.Printf(" %d", n)
		} else {
			fmt.Printf(", %d", n)
		}
	}
	fmt.Println()

	// Infection flag round trip.
	_, err = svc.MarkInfected(ctx, 10001)
	report("Mark Maria as infectious", err)
	_, err = svc.UnmarkInfected(ctx, 10001)
	report("Unmark Maria as infectious", err)

	// Movement and switching.
	_, err = svc.Move(ctx, 10002, 207)
	report("Move John to bed 207", err)
	_, err = svc.Admit(ctx, peter, 209)
	report("Admit Peter to 209", err)
	_, err = svc.Switch(ctx, 10002, 10005)
	report("Switch John and Peter", err)

	if n, p, ok := svc.FindPatient(ctx, 10002); ok {
		fmt.Printf("Find patient 10002 => bed %d, name: %s\n", n, p.Name)
	} else {
		fmt.Println("Patient 10002 not found")
	}

	_, err = svc.Discharge(ctx, 10002)
	report("Discharge John", err)

	counts := svc.CountBeds(ctx)
	fmt.Printf("Summary: %d occupied, %d vacant, %d blocked\n", counts.Occupied, counts.Vacant, counts.Blocked)

	if _, ok := os.LookupEnv("WARDCORE_SHOW_BEDS"); ok {
		fmt.Println("\n=== FULL WARD STATE ===")
		snapshot := census.Build(svc.Store().NowFunc()(), layout, svc.Beds(ctx))
		fmt.Print(snapshot.Render())
	}
}
