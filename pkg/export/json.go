package export

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/cobmap/cobmap/pkg/cobol"
	"github.com/cobmap/cobmap/pkg/depgraph"
)

// Envelope carries run metadata shared by every JSON document.
type Envelope struct {
	RunID       string `json:"run_id"`
	GeneratedAt string `json:"generated_at"`
}

func newEnvelope() Envelope {
	return Envelope{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// NodeDoc is the JSON shape of a graph node.
type NodeDoc struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	SourceFile string `json:"source_file,omitempty"`
	LineCount  int    `json:"line_count,omitempty"`
	Phantom    bool   `json:"phantom,omitempty"`
}

// EdgeDoc is the JSON shape of a graph edge.
type EdgeDoc struct {
	From string `json:"from"`
	To   string `json:"to"`
	Kind string `json:"kind"`
}

// GraphDoc is the full graph as a JSON document. Nodes and edges are sorted
// so the document is stable across runs of the same input.
type GraphDoc struct {
	Envelope
	Nodes    []NodeDoc          `json:"nodes"`
	Edges    []EdgeDoc          `json:"edges"`
	Warnings []depgraph.Warning `json:"warnings,omitempty"`
}

// Graph builds the JSON document for g, attaching the build warnings.
func Graph(g *depgraph.Graph, warnings []depgraph.Warning) GraphDoc {
	doc := GraphDoc{Envelope: newEnvelope(), Warnings: warnings}
	for _, n := range sortedNodes(g) {
		doc.Nodes = append(doc.Nodes, NodeDoc{
			ID:         n.ID,
			Kind:       n.Kind.String(),
			SourceFile: n.SourceFile,
			LineCount:  n.LineCount,
			Phantom:    n.Phantom(),
		})
	}
	for _, e := range sortedEdges(g) {
		doc.Edges = append(doc.Edges, EdgeDoc{From: e.From, To: e.To, Kind: e.Kind.String()})
	}
	return doc
}

// ReportDoc wraps the connectivity report with run metadata.
type ReportDoc struct {
	Envelope
	depgraph.Report
}

// Statistics computes the full report for g and wraps it for export.
// maxCycles and ctx are forwarded to the cycle search.
func Statistics(ctx context.Context, g *depgraph.Graph, maxCycles int) ReportDoc {
	return ReportDoc{Envelope: newEnvelope(), Report: g.Statistics(ctx, maxCycles)}
}

// ProgramDoc is the JSON shape of a single analyzed source file.
type ProgramDoc struct {
	ProgramID  string   `json:"program_id"`
	SourceFile string   `json:"source_file"`
	LineCount  int      `json:"line_count"`
	Calls      []string `json:"calls"`
	FilesUsed  []string `json:"files_used"`
	Procedures []string `json:"procedures"`
}

// Programs converts extractor output into JSON documents, preserving the
// scanner's source-file order.
func Programs(analyses []cobol.Analysis) []ProgramDoc {
	docs := make([]ProgramDoc, 0, len(analyses))
	for _, a := range analyses {
		docs = append(docs, ProgramDoc{
			ProgramID:  a.ProgramID,
			SourceFile: a.SourceFile,
			LineCount:  a.LineCount,
			Calls:      a.Calls,
			FilesUsed:  a.FilesUsed,
			Procedures: a.Procedures,
		})
	}
	return docs
}

// Marshal renders any export document as indented JSON with a trailing
// newline, matching the formatting of files this tool writes to disk.
func Marshal(doc any) ([]byte, error) {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
