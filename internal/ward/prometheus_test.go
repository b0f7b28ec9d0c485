package ward

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"wardcore/pkg/domain"
)

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	ctx := context.Background()
	rec.Observe(ctx, "admit", true, 5*time.Millisecond)
	rec.Observe(ctx, "admit", false, 3*time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond)

	success := rec.results.WithLabelValues("admit", "success")
	if got := testutil.ToFloat64(success); got != 1 {
		t.Fatalf("admit success count = %v, want 1", got)
	}
	failure := rec.results.WithLabelValues("admit", "error")
	if got := testutil.ToFloat64(failure); got != 1 {
		t.Fatalf("admit error count = %v, want 1", got)
	}
}

func TestBedStateCollector(t *testing.T) {
	svc, err := NewInMemoryService(domain.DefaultLayout())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := context.Background()
	vip := domain.MustPatient(10010, "Important Person", 50, GenderMale, false, true)
	if _, err := svc.Admit(ctx, vip, 101); err != nil {
		t.Fatalf("admit: %v", err)
	}

	reg := prometheus.NewRegistry()
	if err := reg.Register(NewBedStateCollector(svc)); err != nil {
		t.Fatalf("register collector: %v", err)
	}

	expected := `
# HELP ward_beds Number of ward beds by state.
# TYPE ward_beds gauge
ward_beds{state="blocked"} 1
ward_beds{state="occupied"} 1
ward_beds{state="vacant"} 150
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "ward_beds"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
}
