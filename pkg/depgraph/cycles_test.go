package depgraph

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"testing"
	"time"
)

// cycleSet normalizes a result into sorted "A→B→C" strings for comparison.
func cycleSet(r CycleResult) []string {
	out := make([]string, len(r.Cycles))
	for i, c := range r.Cycles {
		s := c[0]
		for _, id := range c[1:] {
			s += "→" + id
		}
		out[i] = s
	}
	sort.Strings(out)
	return out
}

func TestFindCycles_SelfLoop(t *testing.T) {
	g, _ := buildFrom(t, Fact{ProgramID: "A", Calls: []string{"A"}})

	r := g.FindCycles(context.Background(), 0)

	want := []string{"A"}
	if got := cycleSet(r); !reflect.DeepEqual(got, want) {
		t.Errorf("cycles = %v, want %v", got, want)
	}
	if r.Truncated {
		t.Error("Truncated = true, want false")
	}
}

func TestFindCycles_TwoNodeCycleReportedOnce(t *testing.T) {
	g, _ := buildFrom(t,
		Fact{ProgramID: "A", Calls: []string{"B"}},
		Fact{ProgramID: "B", Calls: []string{"A"}},
	)

	r := g.FindCycles(context.Background(), 0)

	want := []string{"A→B"}
	if got := cycleSet(r); !reflect.DeepEqual(got, want) {
		t.Errorf("cycles = %v, want %v (rotations collapse)", got, want)
	}
}

func TestFindCycles_Acyclic(t *testing.T) {
	g, _ := buildFrom(t,
		Fact{ProgramID: "A", Calls: []string{"B"}},
		Fact{ProgramID: "B", Calls: []string{"C"}},
	)

	r := g.FindCycles(context.Background(), 0)

	if len(r.Cycles) != 0 {
		t.Errorf("cycles = %v, want none", r.Cycles)
	}
}

func TestFindCycles_TriangleWithChord(t *testing.T) {
	// A→B, A→C, B→C, C→A: exactly two elementary cycles, {A,C} and {A,B,C}.
	g, _ := buildFrom(t,
		Fact{ProgramID: "A", Calls: []string{"B", "C"}},
		Fact{ProgramID: "B", Calls: []string{"C"}},
		Fact{ProgramID: "C", Calls: []string{"A"}},
	)

	r := g.FindCycles(context.Background(), 0)

	want := []string{"A→B→C", "A→C"}
	if got := cycleSet(r); !reflect.DeepEqual(got, want) {
		t.Errorf("cycles = %v, want %v", got, want)
	}
}

func TestFindCycles_FileEdgesExcluded(t *testing.T) {
	// The uses-file edge must not contribute to cycle search even though the
	// file node shares its id with nothing else.
	g, _ := buildFrom(t,
		Fact{ProgramID: "A", Calls: []string{"B"}, FilesUsed: []string{"SHARED"}},
		Fact{ProgramID: "B", FilesUsed: []string{"SHARED"}},
	)

	r := g.FindCycles(context.Background(), 0)

	if len(r.Cycles) != 0 {
		t.Errorf("cycles = %v, want none (file edges excluded)", r.Cycles)
	}
}

func TestFindCycles_SeparateCycles(t *testing.T) {
	g, _ := buildFrom(t,
		Fact{ProgramID: "A", Calls: []string{"B"}},
		Fact{ProgramID: "B", Calls: []string{"A"}},
		Fact{ProgramID: "C", Calls: []string{"D"}},
		Fact{ProgramID: "D", Calls: []string{"C"}},
	)

	r := g.FindCycles(context.Background(), 0)

	want := []string{"A→B", "C→D"}
	if got := cycleSet(r); !reflect.DeepEqual(got, want) {
		t.Errorf("cycles = %v, want %v", got, want)
	}
}

// completeGraph builds facts for a complete digraph on n programs, which has
// a combinatorial number of elementary cycles.
func completeGraph(n int) []Fact {
	facts := make([]Fact, n)
	for i := 0; i < n; i++ {
		f := Fact{ProgramID: fmt.Sprintf("P%02d", i)}
		for j := 0; j < n; j++ {
			if i != j {
				f.Calls = append(f.Calls, fmt.Sprintf("P%02d", j))
			}
		}
		facts[i] = f
	}
	return facts
}

func TestFindCycles_MaxCyclesTruncates(t *testing.T) {
	// K6 has 409 elementary cycles; cap well below that.
	g, _ := buildFrom(t, completeGraph(6)...)

	r := g.FindCycles(context.Background(), 25)

	if len(r.Cycles) != 25 {
		t.Errorf("len(cycles) = %d, want exactly 25", len(r.Cycles))
	}
	if !r.Truncated {
		t.Error("Truncated = false, want true")
	}
}

func TestFindCycles_Unbounded(t *testing.T) {
	// K5 has 84 elementary cycles: C(5,2)·1! + C(5,3)·2! + C(5,4)·3! + C(5,5)·4!.
	g, _ := buildFrom(t, completeGraph(5)...)

	r := g.FindCycles(context.Background(), 0)

	if len(r.Cycles) != 84 {
		t.Errorf("len(cycles) = %d, want 84", len(r.Cycles))
	}
	if r.Truncated {
		t.Error("Truncated = true, want false")
	}
}

func TestFindCycles_DeterministicAcrossRuns(t *testing.T) {
	g, _ := buildFrom(t, completeGraph(5)...)

	first := cycleSet(g.FindCycles(context.Background(), 0))
	for i := 0; i < 5; i++ {
		again := cycleSet(g.FindCycles(context.Background(), 0))
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced different cycle set", i)
		}
	}
}

func TestFindCycles_CancelledContext(t *testing.T) {
	// A cancelled context must yield a truncated partial result, not a hang.
	g, _ := buildFrom(t, completeGraph(9)...)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan CycleResult, 1)
	go func() { done <- g.FindCycles(ctx, 0) }()

	select {
	case r := <-done:
		if !r.Truncated {
			t.Error("Truncated = false, want true after cancellation")
		}
	case <-time.After(30 * time.Second):
		t.Fatal("FindCycles did not return after context cancellation")
	}
}

func TestFindCycles_EmptyGraph(t *testing.T) {
	g, _ := buildFrom(t)

	r := g.FindCycles(context.Background(), 0)

	if len(r.Cycles) != 0 || r.Truncated {
		t.Errorf("result = %+v, want empty and not truncated", r)
	}
}

func TestFindCycles_CyclesStartAtSmallestNode(t *testing.T) {
	g, _ := buildFrom(t,
		Fact{ProgramID: "ZULU", Calls: []string{"ALPHA"}},
		Fact{ProgramID: "ALPHA", Calls: []string{"MIKE"}},
		Fact{ProgramID: "MIKE", Calls: []string{"ZULU"}},
	)

	r := g.FindCycles(context.Background(), 0)

	if len(r.Cycles) != 1 {
		t.Fatalf("len(cycles) = %d, want 1", len(r.Cycles))
	}
	if r.Cycles[0][0] != "ALPHA" {
		t.Errorf("cycle starts at %q, want ALPHA (canonical rotation)", r.Cycles[0][0])
	}
}
