package depgraph

import (
	"reflect"
	"testing"
)

func TestConnectivity_DAGHasOneComponentPerNode(t *testing.T) {
	g, _ := buildFrom(t,
		Fact{ProgramID: "A", Calls: []string{"B"}},
		Fact{ProgramID: "B", Calls: []string{"C"}},
	)

	conn := g.Connectivity()

	if len(conn.Components) != 3 {
		t.Errorf("len(Components) = %d, want 3", len(conn.Components))
	}
	for _, comp := range conn.Components {
		if len(comp) != 1 {
			t.Errorf("component %v has size %d, want 1", comp, len(comp))
		}
	}
}

func TestConnectivity_TriangleIsOneComponent(t *testing.T) {
	g, _ := buildFrom(t,
		Fact{ProgramID: "A", Calls: []string{"B", "C"}},
		Fact{ProgramID: "B", Calls: []string{"C"}},
		Fact{ProgramID: "C", Calls: []string{"A"}},
	)

	conn := g.Connectivity()

	if len(conn.Components) != 1 {
		t.Fatalf("len(Components) = %d, want 1", len(conn.Components))
	}
	want := []string{"A", "B", "C"}
	if !reflect.DeepEqual(conn.Components[0], want) {
		t.Errorf("component = %v, want %v", conn.Components[0], want)
	}
}

func TestConnectivity_FileNodesFormTrivialComponents(t *testing.T) {
	g, _ := buildFrom(t,
		Fact{ProgramID: "A", Calls: []string{"B"}, FilesUsed: []string{"MASTER"}},
		Fact{ProgramID: "B", Calls: []string{"A"}},
	)

	conn := g.Connectivity()

	// {A,B} plus the trivial {MASTER}.
	if len(conn.Components) != 2 {
		t.Fatalf("len(Components) = %d, want 2", len(conn.Components))
	}
	for _, comp := range conn.Components {
		if len(comp) > 1 && comp[0] == "MASTER" {
			t.Errorf("file node in nontrivial component %v", comp)
		}
	}
}

func TestConnectivity_IsolatedNodes(t *testing.T) {
	g, _ := buildFrom(t,
		Fact{ProgramID: "LONER"},
		Fact{ProgramID: "A", Calls: []string{"B"}},
	)

	conn := g.Connectivity()

	want := []string{"LONER"}
	if !reflect.DeepEqual(conn.Isolated, want) {
		t.Errorf("Isolated = %v, want %v", conn.Isolated, want)
	}
}

func TestConnectivity_SelfLoopNotIsolated(t *testing.T) {
	g, _ := buildFrom(t, Fact{ProgramID: "A", Calls: []string{"A"}})

	conn := g.Connectivity()

	if len(conn.Isolated) != 0 {
		t.Errorf("Isolated = %v, want none (self-loop is an incident edge)", conn.Isolated)
	}
}

func TestIsIsolated(t *testing.T) {
	g, _ := buildFrom(t,
		Fact{ProgramID: "LONER"},
		Fact{ProgramID: "A", Calls: []string{"B"}},
	)

	tests := []struct {
		id   string
		want bool
	}{
		{"LONER", true},
		{"A", false},
		{"B", false},
		{"MISSING", false},
	}
	for _, tt := range tests {
		if got := g.IsIsolated(tt.id); got != tt.want {
			t.Errorf("IsIsolated(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
