package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/cobmap/cobmap/pkg/depgraph"
)

func cycleTestGraph(t *testing.T) *depgraph.Graph {
	t.Helper()
	b := depgraph.NewBuilder()
	facts := []depgraph.Fact{
		{ProgramID: "MAIN", SourceFile: "main.cob", LineCount: 40, Calls: []string{"BILLING"}},
		{ProgramID: "BILLING", SourceFile: "billing.cob", LineCount: 80, Calls: []string{"TAXCALC"}},
		{ProgramID: "TAXCALC", SourceFile: "taxcalc.cbl", LineCount: 12, Calls: []string{"BILLING"}},
	}
	for _, f := range facts {
		if err := b.Ingest(f); err != nil {
			t.Fatalf("Ingest(%s): %v", f.ProgramID, err)
		}
	}
	g, _ := b.Build()
	return g
}

func TestCycleListModelNavigation(t *testing.T) {
	g := cycleTestGraph(t)
	res := depgraph.CycleResult{Cycles: [][]string{
		{"BILLING", "TAXCALC"},
		{"MAIN", "BILLING"},
	}}

	m := NewCycleListModel(g, res)
	if m.Cursor != 0 {
		t.Fatalf("initial cursor = %d, want 0", m.Cursor)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m = next.(CycleListModel)
	if m.Cursor != 1 {
		t.Errorf("cursor after j = %d, want 1", m.Cursor)
	}

	// Moving past the end stays put
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m = next.(CycleListModel)
	if m.Cursor != 1 {
		t.Errorf("cursor after j at end = %d, want 1", m.Cursor)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	m = next.(CycleListModel)
	if m.Cursor != 0 {
		t.Errorf("cursor after k = %d, want 0", m.Cursor)
	}
}

func TestCycleListModelQuit(t *testing.T) {
	g := cycleTestGraph(t)
	m := NewCycleListModel(g, depgraph.CycleResult{Cycles: [][]string{{"A", "B"}}})

	for _, key := range []string{"q", "esc", "ctrl+c"} {
		var msg tea.KeyMsg
		switch key {
		case "q":
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEscape}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		}
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Errorf("key %q should quit", key)
		}
	}
}

func TestCycleListModelView(t *testing.T) {
	g := cycleTestGraph(t)
	res := depgraph.CycleResult{Cycles: [][]string{{"BILLING", "TAXCALC"}}}

	view := NewCycleListModel(g, res).View()

	if !strings.Contains(view, "BILLING") {
		t.Error("view should list the cycle members")
	}
	if !strings.Contains(view, "billing.cob") {
		t.Error("view should show source metadata for the selected cycle")
	}
	if !strings.Contains(view, "[1/1]") {
		t.Error("view should show the position counter")
	}
}

func TestCycleListModelViewEmpty(t *testing.T) {
	g := cycleTestGraph(t)
	view := NewCycleListModel(g, depgraph.CycleResult{}).View()

	if !strings.Contains(view, "no cycles") {
		t.Error("empty result should render a placeholder")
	}
}

func TestCycleListModelTruncated(t *testing.T) {
	g := cycleTestGraph(t)
	res := depgraph.CycleResult{Cycles: [][]string{{"A", "B"}}, Truncated: true}

	view := NewCycleListModel(g, res).View()
	if !strings.Contains(view, "truncated") {
		t.Error("truncated result should be flagged in the view")
	}
}

func TestFormatCycle(t *testing.T) {
	tests := []struct {
		name  string
		cycle []string
		want  string
	}{
		{name: "two nodes", cycle: []string{"A", "B"}, want: "A → B → A"},
		{name: "self loop", cycle: []string{"A"}, want: "A → A"},
		{name: "empty", cycle: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatCycle(tt.cycle); got != tt.want {
				t.Errorf("formatCycle(%v) = %q, want %q", tt.cycle, got, tt.want)
			}
		})
	}
}
