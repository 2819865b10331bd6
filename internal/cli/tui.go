package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cobmap/cobmap/pkg/depgraph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// CycleListModel - Interactive cycle browsing
// =============================================================================

// CycleListModel is the bubbletea model for browsing detected cycles.
// The selected cycle shows a detail pane with per-program source metadata.
type CycleListModel struct {
	graph  *depgraph.Graph
	cycles [][]string

	Cursor int
	Height int
	Offset int

	truncated bool
}

// NewCycleListModel creates a cycle browser over the given graph and result.
func NewCycleListModel(g *depgraph.Graph, res depgraph.CycleResult) CycleListModel {
	return CycleListModel{
		graph:     g,
		cycles:    res.Cycles,
		Height:    15,
		truncated: res.Truncated,
	}
}

func (m CycleListModel) Init() tea.Cmd {
	return nil
}

func (m CycleListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.cycles)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 10
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m CycleListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Circular Dependencies"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	if len(m.cycles) == 0 {
		b.WriteString(listDimStyle.Render("  no cycles detected"))
		b.WriteString("\n")
		return b.String()
	}

	end := m.Offset + m.Height
	if end > len(m.cycles) {
		end = len(m.cycles)
	}

	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		line := cursor + formatCycle(m.cycles[i])
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.detailPane())
	b.WriteString("\n")

	counter := fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.cycles))
	if m.truncated {
		counter += "  " + StyleWarning.Render("truncated")
	}
	b.WriteString(listDimStyle.Render(counter))

	return b.String()
}

// detailPane describes each program in the selected cycle.
func (m CycleListModel) detailPane() string {
	var b strings.Builder

	b.WriteString(listDimStyle.Render(strings.Repeat("─", 40)))
	b.WriteString("\n")

	for _, id := range m.cycles[m.Cursor] {
		node, ok := m.graph.Node(id)
		if !ok {
			continue
		}

		detail := "not analyzed"
		if node.Analyzed {
			detail = fmt.Sprintf("%s, %d lines", node.SourceFile, node.LineCount)
		}
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			listNormalStyle.Render(fmt.Sprintf("%-20s", id)),
			listDimStyle.Render(detail)))
	}

	return b.String()
}

// formatCycle renders a cycle as "A → B → A", closing the loop explicitly.
func formatCycle(cycle []string) string {
	if len(cycle) == 0 {
		return ""
	}
	return strings.Join(cycle, " "+iconArrow+" ") + " " + iconArrow + " " + cycle[0]
}
