package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	cgerrors "github.com/matzehuels/cellgraph/pkg/errors"
	"github.com/matzehuels/cellgraph/pkg/sheet"
)

// Formats lists the output formats [Render] accepts.
var Formats = []string{"dot", "svg", "png"}

// Options configures graph generation.
type Options struct {
	// Values adds each cell's current value to its label. Reading values
	// evaluates formulas and fills their caches.
	Values bool
}

// ToDOT converts the cells of s to Graphviz DOT source.
func ToDOT(s *sheet.Sheet, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"Helvetica\", fontsize=14, style=filled, fillcolor=white];\n")
	buf.WriteString("  edge [arrowsize=0.7];\n")
	buf.WriteString("\n")

	cells := s.Cells()
	for _, c := range cells {
		fmt.Fprintf(&buf, "  %q [%s];\n", c.Position().String(), strings.Join(nodeAttrs(c, opts), ", "))
	}

	buf.WriteString("\n")
	for _, c := range cells {
		for _, ref := range c.ReferencedCells() {
			fmt.Fprintf(&buf, "  %q -> %q;\n", c.Position().String(), ref.String())
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(c *sheet.Cell, opts Options) []string {
	lines := []string{c.Position().String()}
	if text := c.Text(); text != "" {
		lines = append(lines, text)
	}
	if opts.Values && c.Kind() == sheet.KindFormula {
		lines = append(lines, "= "+c.Value().String())
	}
	attrs := []string{fmt.Sprintf("label=%q", strings.Join(lines, "\n"))}

	switch c.Kind() {
	case sheet.KindFormula:
		attrs = append(attrs, "shape=box", "style=\"rounded,filled\"", "fillcolor=\"#e8f0fe\"")
	case sheet.KindText:
		attrs = append(attrs, "shape=ellipse")
	case sheet.KindEmpty:
		attrs = append(attrs, "shape=ellipse", "style=\"filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

// Render converts DOT source to format ("dot", "svg" or "png").
func Render(ctx context.Context, dot, format string) ([]byte, error) {
	switch format {
	case "dot":
		return []byte(dot), nil
	case "svg":
		return RenderSVG(ctx, dot)
	case "png":
		return RenderPNG(ctx, dot)
	default:
		return nil, cgerrors.New(cgerrors.ErrCodeInvalidFormat, "unsupported format %q", format)
	}
}

// RenderSVG renders DOT source to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := renderGraphviz(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders DOT source to PNG.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return renderGraphviz(ctx, dot, graphviz.PNG)
}

func renderGraphviz(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one
// that scales from its viewBox.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
