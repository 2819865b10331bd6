package depgraph

import (
	"reflect"
	"testing"
)

func TestGraph_NodesByKind(t *testing.T) {
	g, _ := buildFrom(t,
		Fact{ProgramID: "A", Calls: []string{"B"}, FilesUsed: []string{"F1", "F2"}},
	)

	programs := g.NodesByKind(KindProgram)
	files := g.NodesByKind(KindFile)

	if len(programs) != 2 {
		t.Errorf("len(programs) = %d, want 2", len(programs))
	}
	if len(files) != 2 {
		t.Errorf("len(files) = %d, want 2", len(files))
	}
}

func TestGraph_EdgesByKind(t *testing.T) {
	g, _ := buildFrom(t,
		Fact{ProgramID: "A", Calls: []string{"B"}, FilesUsed: []string{"F"}},
	)

	calls := g.EdgesByKind(EdgeCalls)
	uses := g.EdgesByKind(EdgeUsesFile)

	if len(calls) != 1 || calls[0].Kind != EdgeCalls {
		t.Errorf("calls = %v, want one calls edge", calls)
	}
	if len(uses) != 1 || uses[0].Kind != EdgeUsesFile {
		t.Errorf("uses = %v, want one uses-file edge", uses)
	}
}

func TestGraph_NodeLookup(t *testing.T) {
	g, _ := buildFrom(t, Fact{ProgramID: "A"})

	if _, ok := g.Node("A"); !ok {
		t.Error("Node(A) not found")
	}
	if n, ok := g.Node("MISSING"); ok {
		t.Errorf("Node(MISSING) = %+v, want not found", n)
	}
}

func TestGraph_Adjacency(t *testing.T) {
	g, _ := buildFrom(t,
		Fact{ProgramID: "A", Calls: []string{"B", "C"}, FilesUsed: []string{"F"}},
		Fact{ProgramID: "B", Calls: []string{"C"}},
	)

	if got, want := g.Callees("A"), []string{"B", "C"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Callees(A) = %v, want %v", got, want)
	}
	if got, want := g.Callers("C"), []string{"A", "B"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Callers(C) = %v, want %v", got, want)
	}
	if got, want := g.FilesUsed("A"), []string{"F"}; !reflect.DeepEqual(got, want) {
		t.Errorf("FilesUsed(A) = %v, want %v", got, want)
	}
	if g.OutDegree("A") != 3 {
		t.Errorf("OutDegree(A) = %d, want 3", g.OutDegree("A"))
	}
	if g.InDegree("C") != 2 {
		t.Errorf("InDegree(C) = %d, want 2", g.InDegree("C"))
	}
}

func TestKindStrings(t *testing.T) {
	if KindProgram.String() != "program" || KindFile.String() != "file" {
		t.Errorf("node kind strings = %q/%q", KindProgram, KindFile)
	}
	if EdgeCalls.String() != "calls" || EdgeUsesFile.String() != "uses-file" {
		t.Errorf("edge kind strings = %q/%q", EdgeCalls, EdgeUsesFile)
	}
}
