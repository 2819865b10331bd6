// Package export turns a dependency graph into artifacts: Graphviz DOT
// text, rendered SVG/PNG images, and JSON documents for downstream tooling.
//
// All textual output is stable: nodes and edges are emitted in sorted order,
// so the same graph always produces byte-identical DOT and JSON (modulo the
// run metadata on JSON envelopes).
package export

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/cobmap/cobmap/pkg/depgraph"
	"github.com/cobmap/cobmap/pkg/errors"
)

// Style selects how much of the graph a DOT export shows.
type Style string

// Supported export styles.
const (
	// StyleDetailed shows every node with metadata labels (source file,
	// line counts) and distinguishes call edges from file-usage edges.
	StyleDetailed Style = "detailed"
	// StyleSimple shows every node and edge with bare identifier labels.
	StyleSimple Style = "simple"
	// StyleCallsOnly restricts the output to program nodes and call edges.
	StyleCallsOnly Style = "calls-only"
)

// ParseStyle converts a user-supplied string into a Style.
// The underscore spelling "calls_only" is accepted as an alias.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(s) {
	case "detailed", "":
		return StyleDetailed, nil
	case "simple":
		return StyleSimple, nil
	case "calls-only", "calls_only":
		return StyleCallsOnly, nil
	}
	return "", errors.New(errors.ErrCodeInvalidStyle,
		"unknown style %q (expected detailed, simple, or calls-only)", s)
}

// Format selects the output encoding of a rendered graph.
type Format string

// Supported output formats.
const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat converts a user-supplied string into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "dot", "":
		return FormatDOT, nil
	case "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"unknown format %q (expected dot, svg, or png)", s)
}

// ToDOT converts a dependency graph to Graphviz DOT format.
// The resulting DOT string can be rendered with [RenderSVG] or [RenderPNG].
//
// Program nodes are drawn as blue boxes, file nodes as red ellipses, and
// phantom programs (called but never analyzed) with dashed outlines. File
// usage edges are dashed so call chains stand out.
func ToDOT(g *depgraph.Graph, style Style) string {
	var buf bytes.Buffer
	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"Helvetica\", fontcolor=white, style=filled];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	for _, n := range sortedNodes(g) {
		if style == StyleCallsOnly && n.Kind != depgraph.KindProgram {
			continue
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, style), ", "))
	}

	buf.WriteString("\n")
	for _, e := range sortedEdges(g) {
		if style == StyleCallsOnly && e.Kind != depgraph.EdgeCalls {
			continue
		}
		if e.Kind == depgraph.EdgeUsesFile {
			fmt.Fprintf(&buf, "  %q -> %q [color=\"#95a5a6\", style=dashed];\n", e.From, e.To)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [color=\"#2980b9\"];\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n depgraph.Node, style Style) []string {
	attrs := []string{fmt.Sprintf("label=%q", nodeLabel(n, style))}
	switch n.Kind {
	case depgraph.KindFile:
		attrs = append(attrs, "shape=ellipse", "fillcolor=\"#e74c3c\"")
	default:
		attrs = append(attrs, "shape=box", "fillcolor=\"#3498db\"")
		if n.Phantom() {
			attrs = append(attrs, "style=\"filled,dashed\"")
		}
	}
	return attrs
}

func nodeLabel(n depgraph.Node, style Style) string {
	if style != StyleDetailed {
		return n.ID
	}
	switch {
	case n.Kind == depgraph.KindFile:
		return n.ID + "\nfile"
	case n.Phantom():
		return n.ID + "\nnot analyzed"
	default:
		return fmt.Sprintf("%s\n%d lines", n.ID, n.LineCount)
	}
}

func sortedNodes(g *depgraph.Graph) []depgraph.Node {
	nodes := g.Nodes()
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	return nodes
}

func sortedEdges(g *depgraph.Graph) []depgraph.Edge {
	edges := g.Edges()
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.To != b.To {
			return a.To < b.To
		}
		return a.Kind < b.Kind
	})
	return edges
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.SVG, normalizeViewBox)
}

// RenderPNG renders a DOT graph to PNG using Graphviz.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG, nil)
}

func render(ctx context.Context, dot string, format graphviz.Format, post func([]byte) []byte) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	out := buf.Bytes()
	if post != nil {
		out = post(out)
	}
	return out, nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the outer svg tag so the image starts at origin
// and carries explicit width/height, which keeps browser embedding stable.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
