package monitor

import (
	"reflect"
	"testing"

	"rdtmon/internal/events"
)

func TestAddCoreSpecScenario(t *testing.T) {
	r := NewRegistry(0, 0)
	if err := r.AddCoreSpec("llc:1,2,[3,4]"); err != nil {
		t.Fatalf("AddCoreSpec: %v", err)
	}
	targets := r.Targets()
	if len(targets) != 3 {
		t.Fatalf("expected 3 targets, got %d", len(targets))
	}
	wantCores := [][]int{{1}, {2}, {3, 4}}
	for i, tgt := range targets {
		if !reflect.DeepEqual(tgt.Cores, wantCores[i]) {
			t.Fatalf("target %d cores = %v, want %v", i, tgt.Cores, wantCores[i])
		}
		if tgt.Events != events.Occupancy {
			t.Fatalf("target %d mask = %v, want occupancy only", i, tgt.Events)
		}
	}
}

func TestAddCoreSpecMergesMasksForSameCore(t *testing.T) {
	r := NewRegistry(0, 0)
	if err := r.AddCoreSpec("llc:1;mbr:1"); err != nil {
		t.Fatalf("AddCoreSpec: %v", err)
	}
	targets := r.Targets()
	if len(targets) != 1 {
		t.Fatalf("expected 1 target, got %d", len(targets))
	}
	want := events.Occupancy | events.RemoteBandwidth
	if targets[0].Events != want {
		t.Fatalf("mask = %v, want %v", targets[0].Events, want)
	}
}

func TestAddCoreSpecPartialOverlapIsFatal(t *testing.T) {
	r := NewRegistry(0, 0)
	if err := r.AddCoreSpec("llc:[1,2]"); err != nil {
		t.Fatalf("AddCoreSpec: %v", err)
	}
	err := r.AddCoreSpec("mbr:1")
	if err == nil || err.Error() != "cannot monitor same cores in different groups" {
		t.Fatalf("expected partial overlap error, got %v", err)
	}
}

func TestAddCoreSpecIdempotent(t *testing.T) {
	r := NewRegistry(0, 0)
	for i := 0; i < 2; i++ {
		if err := r.AddCoreSpec("llc:1,[3,4]"); err != nil {
			t.Fatalf("AddCoreSpec pass %d: %v", i, err)
		}
	}
	if len(r.Targets()) != 2 {
		t.Fatalf("re-registration must merge, got %d targets", len(r.Targets()))
	}
	for _, tgt := range r.Targets() {
		if tgt.Events != events.Occupancy {
			t.Fatalf("mask changed on re-registration: %v", tgt.Events)
		}
	}
}

func TestOverlapInvariantHeldAtEveryInsertion(t *testing.T) {
	r := NewRegistry(0, 0)
	if err := r.AddCoreSpec("llc:[1,2],[3,4]"); err != nil {
		t.Fatalf("AddCoreSpec: %v", err)
	}
	if err := r.AddCoreSpec("mbl:[2,3]"); err == nil {
		t.Fatal("expected partial overlap error for [2,3]")
	}
	// The registry must not have been left with a partially inserted
	// state violating the invariant.
	targets := r.Targets()
	for i := range targets {
		for j := i + 1; j < len(targets); j++ {
			if compareCores(targets[i].Cores, targets[j].Cores) == overlapPartial {
				t.Fatalf("targets %v and %v partially overlap", targets[i].Cores, targets[j].Cores)
			}
		}
	}
}

func TestAddPIDSpecMergesDuplicatePIDs(t *testing.T) {
	r := NewRegistry(0, 0)
	if err := r.AddPIDSpec("llc:100,200"); err != nil {
		t.Fatalf("AddPIDSpec: %v", err)
	}
	if err := r.AddPIDSpec("mbl:100"); err != nil {
		t.Fatalf("AddPIDSpec: %v", err)
	}
	targets := r.Targets()
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(targets))
	}
	if targets[0].PID != 100 || targets[0].Events != events.Occupancy|events.LocalBandwidth {
		t.Fatalf("pid 100 target = %+v", targets[0])
	}
	if targets[1].PID != 200 || targets[1].Events != events.Occupancy {
		t.Fatalf("pid 200 target = %+v", targets[1])
	}
}

func TestModesAreMutuallyExclusive(t *testing.T) {
	r := NewRegistry(0, 0)
	if err := r.AddCoreSpec("llc:1"); err != nil {
		t.Fatalf("AddCoreSpec: %v", err)
	}
	if err := r.AddPIDSpec("llc:100"); err == nil {
		t.Fatal("expected error registering PIDs after cores")
	}

	r = NewRegistry(0, 0)
	if err := r.AddPIDSpec("llc:100"); err != nil {
		t.Fatalf("AddPIDSpec: %v", err)
	}
	if err := r.AddCoreSpec("llc:1"); err == nil {
		t.Fatal("expected error registering cores after PIDs")
	}
}

func TestCapacityExceeded(t *testing.T) {
	r := NewRegistry(2, 2)
	if err := r.AddCoreSpec("llc:1,2,3"); err == nil {
		t.Fatal("expected core capacity error")
	}
	r = NewRegistry(2, 2)
	if err := r.AddPIDSpec("llc:10,20,30"); err == nil {
		t.Fatal("expected pid capacity error")
	}
}

func TestAddSpecRejectsBadInput(t *testing.T) {
	r := NewRegistry(0, 0)
	for _, spec := range []string{"", "  ", "cache:1", "llc:", "llc:x"} {
		if err := r.AddCoreSpec(spec); err == nil {
			t.Fatalf("AddCoreSpec(%q): expected error", spec)
		}
	}
	if err := r.AddPIDSpec("llc:[1,2]"); err == nil {
		t.Fatal("PID lists must not support bracket grouping")
	}
	if err := r.AddPIDSpec("llc:0"); err == nil {
		t.Fatal("pid 0 must be rejected")
	}
}

func TestDisplayMaskIsUnionOfTargets(t *testing.T) {
	r := NewRegistry(0, 0)
	if err := r.AddCoreSpec("llc:1;mbl:2"); err != nil {
		t.Fatalf("AddCoreSpec: %v", err)
	}
	want := events.Occupancy | events.LocalBandwidth
	if got := r.DisplayMask(); got != want {
		t.Fatalf("display mask = %v, want %v", got, want)
	}
}

func TestCompareCores(t *testing.T) {
	cases := []struct {
		a, b []int
		want overlap
	}{
		{[]int{1}, []int{2}, overlapNone},
		{[]int{1, 2}, []int{1, 2}, overlapSame},
		{[]int{1, 2}, []int{1}, overlapPartial},
		{[]int{1}, []int{1, 2}, overlapPartial},
		{[]int{1, 2}, []int{2, 3}, overlapPartial},
	}
	for _, c := range cases {
		if got := compareCores(c.a, c.b); got != c.want {
			t.Fatalf("compareCores(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}
