package surface

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"math"
	"slices"
	"strconv"

	svg "github.com/ajstarks/svgo"
)

// geometry lists the attributes that svgo takes as positional arguments
// for each element; they are not repeated in the attribute list.
var geometry = map[string][]string{
	"rect":   {"x", "y", "width", "height"},
	"circle": {"cx", "cy", "r"},
	"line":   {"x1", "y1", "x2", "y2"},
	"path":   {"d"},
	"text":   {"x", "y"},
	"image":  {"x", "y", "width", "height", "href"},
	"marker": {"id", "refX", "refY", "markerWidth", "markerHeight"},

	"linearGradient": {"id", "x1", "y1", "x2", "y2"},
}

// WriteSVG serializes the current tree. Shape coordinates are rounded to
// whole pixels; path data is written as is.
func (s *Surface) WriteSVG(w io.Writer) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(int(math.Round(s.width)), int(math.Round(s.height)), attrList(s.root, nil)...)
	for _, c := range s.root.children {
		writeNode(canvas, c)
	}
	canvas.End()
	return ew.err
}

// String returns the serialized tree.
func (s *Surface) String() string {
	var buf bytes.Buffer
	_ = s.WriteSVG(&buf)
	return buf.String()
}

func writeNode(canvas *svg.SVG, n *Node) {
	attrs := attrList(n, geometry[n.tag])
	switch n.tag {
	case "defs":
		canvas.Def()
		writeChildren(canvas, n)
		canvas.DefEnd()
	case "g":
		canvas.Group(attrs...)
		writeChildren(canvas, n)
		canvas.Gend()
	case "clipPath":
		canvas.ClipPath(attrs...)
		writeChildren(canvas, n)
		canvas.ClipEnd()
	case "marker":
		canvas.Marker(n.attrs["id"], n.px("refX"), n.px("refY"), n.px("markerWidth"), n.px("markerHeight"), attrs...)
		writeChildren(canvas, n)
		canvas.MarkerEnd()
	case "linearGradient":
		canvas.LinearGradient(n.attrs["id"], n.pct("x1"), n.pct("y1"), n.pct("x2"), n.pct("y2"), stops(n))
	case "rect":
		canvas.Rect(n.px("x"), n.px("y"), n.px("width"), n.px("height"), attrs...)
	case "circle":
		canvas.Circle(n.px("cx"), n.px("cy"), n.px("r"), attrs...)
	case "line":
		canvas.Line(n.px("x1"), n.px("y1"), n.px("x2"), n.px("y2"), attrs...)
	case "path":
		canvas.Path(html.EscapeString(n.attrs["d"]), attrs...)
	case "text":
		if len(n.children) > 0 {
			writeRaw(canvas, n, attrList(n, nil))
			return
		}
		canvas.Text(n.px("x"), n.px("y"), n.text, attrs...)
	case "image":
		canvas.Image(n.px("x"), n.px("y"), n.px("width"), n.px("height"), html.EscapeString(n.attrs["href"]), attrs...)
	case "title":
		canvas.Title(n.text)
	default:
		writeRaw(canvas, n, attrs)
	}
}

// writeRaw writes elements svgo has no helper for, such as tspan.
func writeRaw(canvas *svg.SVG, n *Node, attrs []string) {
	fmt.Fprintf(canvas.Writer, "<%s", n.tag)
	for _, a := range attrs {
		fmt.Fprintf(canvas.Writer, " %s", a)
	}
	if len(n.children) == 0 && n.text == "" {
		fmt.Fprintln(canvas.Writer, "/>")
		return
	}
	fmt.Fprint(canvas.Writer, ">", html.EscapeString(n.text))
	writeChildren(canvas, n)
	fmt.Fprintf(canvas.Writer, "</%s>\n", n.tag)
}

func writeChildren(canvas *svg.SVG, n *Node) {
	for _, c := range n.children {
		writeNode(canvas, c)
	}
}

// attrList renders the node's attributes as name="value" pairs, skipping
// the positional ones.
func attrList(n *Node, skip []string) []string {
	var out []string
	for _, k := range n.Attrs() {
		if slices.Contains(skip, k) {
			continue
		}
		out = append(out, fmt.Sprintf(`%s="%s"`, k, html.EscapeString(n.attrs[k])))
	}
	return out
}

func (n *Node) px(name string) int {
	v := n.Float(name)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}

// pct reads a gradient coordinate given as "50%" or "50".
func (n *Node) pct(name string) uint8 {
	v := n.attrs[name]
	if len(v) > 0 && v[len(v)-1] == '%' {
		v = v[:len(v)-1]
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return uint8(math.Max(0, math.Min(100, math.Round(f))))
}

func stops(n *Node) []svg.Offcolor {
	var out []svg.Offcolor
	for _, c := range n.children {
		if c.tag != "stop" {
			continue
		}
		op := c.Float("stop-opacity")
		if math.IsNaN(op) {
			op = 1
		}
		out = append(out, svg.Offcolor{Offset: c.pct("offset"), Color: c.attrs["stop-color"], Opacity: op})
	}
	return out
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
