package spritepack

import (
	"bytes"
	"compress/gzip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/tilekit/spritepack/utils"
)

// Vector is a parsed SVG source image. Besides the oksvg icon used for
// rasterization it keeps an id-indexed table of node bounding boxes, which
// serves the stretchable-icon metadata lookups (see Sprite.ContentArea).
type Vector struct {
	icon  *oksvg.SvgIcon
	nodes map[string]Box
	// Intrinsic size in source units, taken from the SVG viewBox.
	width  float64
	height float64
}

// Box is an axis-aligned bounding box in source coordinates.
type Box struct {
	Left, Top, Right, Bottom float64
}

func (b Box) valid() bool {
	return b.Right > b.Left && b.Bottom > b.Top
}

func (b Box) union(o Box) Box {
	if b.Left > o.Left {
		b.Left = o.Left
	}
	if b.Top > o.Top {
		b.Top = o.Top
	}
	if b.Right < o.Right {
		b.Right = o.Right
	}
	if b.Bottom < o.Bottom {
		b.Bottom = o.Bottom
	}
	return b
}

// LoadVector reads an SVG or gzip-compressed SVGZ file from path.
func LoadVector(path string) (*Vector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	v, err := ReadVector(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// ReadVector parses an SVG image from r. Gzip-compressed data (SVGZ) is
// detected by its magic number and decompressed transparently.
func ReadVector(r io.Reader) (*Vector, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) > 1 && data[0] == 0x1f && data[1] == 0x8b {
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decompressing svgz: %w", err)
		}
		if data, err = io.ReadAll(zr); err != nil {
			return nil, fmt.Errorf("decompressing svgz: %w", err)
		}
	}

	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing svg: %w", err)
	}
	// oksvg tolerates arbitrary bytes and hands back a zero-size icon; a
	// document without usable dimensions is a parse failure, not a sprite.
	if icon.ViewBox.W <= 0 || icon.ViewBox.H <= 0 {
		return nil, fmt.Errorf("parsing svg: document has no usable dimensions")
	}

	return &Vector{
		icon:   icon,
		nodes:  parseNodeBoxes(data),
		width:  icon.ViewBox.W,
		height: icon.ViewBox.H,
	}, nil
}

// nodeBox returns the bounding box of the node with the given id, or false if
// the node is absent, hidden or has no measurable geometry.
func (v *Vector) nodeBox(id string) (Box, bool) {
	b, ok := v.nodes[id]
	return b, ok
}

// openNode tracks one element of the XML ancestor chain while scanning for
// id'ed geometry.
type openNode struct {
	id     string
	hidden bool
	// lost marks a subtree under a transform the scanner cannot represent;
	// its geometry is omitted rather than reported at wrong coordinates.
	lost   bool
	mat    affine
	bbox   Box
	hasBox bool
}

// parseNodeBoxes scans the raw SVG document and records the bounding box of
// every visible element carrying an id attribute. Group elements accumulate
// the union of their descendants. Only the basic shape elements and paths are
// measured; oksvg keeps no id-addressable node tree, so the boxes are derived
// from the markup directly. Translate, scale and matrix transforms are
// honored; a node under any other transform is omitted.
func parseNodeBoxes(data []byte) map[string]Box {
	nodes := make(map[string]Box)
	stack := make([]openNode, 0, 8)
	dec := xml.NewDecoder(bytes.NewReader(data))

	for {
		tok, err := dec.Token()
		if err != nil {
			return nodes
		}
		switch t := tok.(type) {
		case xml.StartElement:
			node := openNode{mat: identityAffine()}
			if n := len(stack); n > 0 {
				node.hidden = stack[n-1].hidden
				node.lost = stack[n-1].lost
				node.mat = stack[n-1].mat
			}
			attrs := make(map[string]string, len(t.Attr))
			for _, a := range t.Attr {
				attrs[a.Name.Local] = a.Value
			}
			node.id = attrs["id"]
			if attrs["display"] == "none" || attrs["visibility"] == "hidden" {
				node.hidden = true
			}
			if tr := attrs["transform"]; tr != "" {
				if m, ok := parseTransform(tr); ok {
					node.mat = node.mat.mul(m)
				} else {
					node.lost = true
				}
			}
			if b, ok := shapeBox(t.Name.Local, attrs); ok && !node.hidden && !node.lost {
				node.bbox = node.mat.applyBox(b)
				node.hasBox = true
			}
			stack = append(stack, node)

		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !node.hasBox || node.hidden {
				continue
			}
			if node.id != "" {
				if _, seen := nodes[node.id]; !seen && node.bbox.valid() {
					nodes[node.id] = node.bbox
				}
			}
			// Hand the box up so that groups cover their children.
			if n := len(stack); n > 0 {
				if stack[n-1].hasBox {
					stack[n-1].bbox = stack[n-1].bbox.union(node.bbox)
				} else {
					stack[n-1].bbox = node.bbox
					stack[n-1].hasBox = true
				}
			}
		}
	}
}

// shapeBox measures the local bounding box of a basic SVG shape element.
func shapeBox(name string, attrs map[string]string) (Box, bool) {
	num := func(key string) float64 {
		f, _ := strconv.ParseFloat(strings.TrimSpace(attrs[key]), 64)
		return f
	}
	switch name {
	case "rect", "image":
		w, h := num("width"), num("height")
		if w <= 0 || h <= 0 {
			return Box{}, false
		}
		x, y := num("x"), num("y")
		return Box{x, y, x + w, y + h}, true
	case "circle":
		r := num("r")
		if r <= 0 {
			return Box{}, false
		}
		cx, cy := num("cx"), num("cy")
		return Box{cx - r, cy - r, cx + r, cy + r}, true
	case "ellipse":
		rx, ry := num("rx"), num("ry")
		if rx <= 0 || ry <= 0 {
			return Box{}, false
		}
		cx, cy := num("cx"), num("cy")
		return Box{cx - rx, cy - ry, cx + rx, cy + ry}, true
	case "line":
		x1, y1, x2, y2 := num("x1"), num("y1"), num("x2"), num("y2")
		if x1 == x2 && y1 == y2 {
			return Box{}, false
		}
		return Box{utils.Min(x1, x2), utils.Min(y1, y2), utils.Max(x1, x2), utils.Max(y1, y2)}, true
	case "polygon", "polyline":
		return pointsBox(attrs["points"])
	case "path":
		return pathBox(attrs["d"])
	}
	return Box{}, false
}

// pointsBox measures the bounding box of a polygon/polyline points list.
func pointsBox(points string) (Box, bool) {
	fields := strings.FieldsFunc(points, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) < 4 {
		return Box{}, false
	}
	b := Box{}
	n := 0
	for i := 0; i+1 < len(fields); i += 2 {
		x, errX := strconv.ParseFloat(fields[i], 64)
		y, errY := strconv.ParseFloat(fields[i+1], 64)
		if errX != nil || errY != nil {
			return Box{}, false
		}
		p := Box{x, y, x, y}
		if n == 0 {
			b = p
		} else {
			b = b.union(p)
		}
		n++
	}
	return b, n >= 2 && b.valid()
}

// affine is a 2D transform in the SVG matrix layout (a b c d e f):
// x' = a*x + c*y + e, y' = b*x + d*y + f.
type affine struct {
	a, b, c, d, e, f float64
}

func identityAffine() affine {
	return affine{a: 1, d: 1}
}

// mul composes the transforms: the result applies n first, then m.
func (m affine) mul(n affine) affine {
	return affine{
		a: m.a*n.a + m.c*n.b,
		b: m.b*n.a + m.d*n.b,
		c: m.a*n.c + m.c*n.d,
		d: m.b*n.c + m.d*n.d,
		e: m.a*n.e + m.c*n.f + m.e,
		f: m.b*n.e + m.d*n.f + m.f,
	}
}

func (m affine) apply(x, y float64) (float64, float64) {
	return m.a*x + m.c*y + m.e, m.b*x + m.d*y + m.f
}

// applyBox transforms a bounding box by mapping its four corners.
func (m affine) applyBox(b Box) Box {
	x0, y0 := m.apply(b.Left, b.Top)
	x1, y1 := m.apply(b.Right, b.Bottom)
	out := Box{x0, y0, x0, y0}
	out = out.union(Box{x1, y1, x1, y1})
	x, y := m.apply(b.Right, b.Top)
	out = out.union(Box{x, y, x, y})
	x, y = m.apply(b.Left, b.Bottom)
	return out.union(Box{x, y, x, y})
}

// parseTransform evaluates a transform attribute into a single affine matrix.
// Supported functions are translate, scale and matrix; any other function
// (rotate, skew) makes the whole attribute unrepresentable and reports false.
func parseTransform(transform string) (affine, bool) {
	m := identityAffine()
	rest := strings.TrimSpace(transform)
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		end := strings.IndexByte(rest, ')')
		if open < 0 || end < open {
			return affine{}, false
		}
		name := strings.Trim(rest[:open], " \t\n,")
		args, ok := parseNumberList(rest[open+1 : end])
		if !ok {
			return affine{}, false
		}

		var n affine
		switch {
		case name == "translate" && (len(args) == 1 || len(args) == 2):
			n = identityAffine()
			n.e = args[0]
			if len(args) == 2 {
				n.f = args[1]
			}
		case name == "scale" && (len(args) == 1 || len(args) == 2):
			n = affine{a: args[0], d: args[0]}
			if len(args) == 2 {
				n.d = args[1]
			}
		case name == "matrix" && len(args) == 6:
			n = affine{args[0], args[1], args[2], args[3], args[4], args[5]}
		default:
			return affine{}, false
		}
		m = m.mul(n)
		rest = strings.TrimSpace(rest[end+1:])
	}
	return m, true
}

// parseNumberList splits a space or comma separated list of numbers.
func parseNumberList(s string) ([]float64, bool) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n' || r == '\r'
	})
	nums := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, false
		}
		nums[i] = v
	}
	return nums, true
}

// pathArgc is the argument count of each path command.
var pathArgc = map[byte]int{'M': 2, 'L': 2, 'T': 2, 'H': 1, 'V': 1, 'C': 6, 'S': 4, 'Q': 4, 'A': 7}

// pathBox measures the bounding box of a path's d attribute over its
// endpoints and control points. This is exact for the axis-aligned shapes
// metadata nodes are drawn with; curved segments may over-measure by their
// control hull, which only widens a stretch zone and never misplaces it.
func pathBox(d string) (Box, bool) {
	fields, ok := pathFields(d)
	if !ok || len(fields) == 0 {
		return Box{}, false
	}

	var b Box
	points := 0
	add := func(x, y float64) {
		p := Box{x, y, x, y}
		if points == 0 {
			b = p
		} else {
			b = b.union(p)
		}
		points++
	}

	var cmd byte
	var cx, cy, startX, startY float64
	i := 0
	for i < len(fields) {
		f := fields[i]
		if len(f) == 1 && isPathCommand(f[0]) {
			cmd = f[0]
			i++
			if cmd == 'Z' || cmd == 'z' {
				cx, cy = startX, startY
				cmd = 0
			}
			continue
		}
		if cmd == 0 {
			return Box{}, false
		}

		upper := cmd &^ 0x20
		rel := cmd >= 'a'
		argc := pathArgc[upper]
		if argc == 0 || i+argc > len(fields) {
			return Box{}, false
		}
		args := make([]float64, argc)
		for j := range args {
			v, err := strconv.ParseFloat(fields[i+j], 64)
			if err != nil {
				return Box{}, false
			}
			args[j] = v
		}
		i += argc

		switch upper {
		case 'M':
			x, y := args[0], args[1]
			if rel {
				x, y = cx+x, cy+y
			}
			add(x, y)
			cx, cy = x, y
			startX, startY = x, y
			// Further coordinate pairs of a moveto are implicit linetos.
			if rel {
				cmd = 'l'
			} else {
				cmd = 'L'
			}
		case 'L', 'T':
			x, y := args[0], args[1]
			if rel {
				x, y = cx+x, cy+y
			}
			add(x, y)
			cx, cy = x, y
		case 'H':
			x := args[0]
			if rel {
				x += cx
			}
			add(x, cy)
			cx = x
		case 'V':
			y := args[0]
			if rel {
				y += cy
			}
			add(cx, y)
			cy = y
		case 'C', 'S', 'Q':
			for j := 0; j < argc; j += 2 {
				x, y := args[j], args[j+1]
				if rel {
					x, y = cx+x, cy+y
				}
				add(x, y)
				if j == argc-2 {
					cx, cy = x, y
				}
			}
		case 'A':
			x, y := args[5], args[6]
			if rel {
				x, y = cx+x, cy+y
			}
			add(x, y)
			cx, cy = x, y
		}
	}
	return b, points >= 2 && b.valid()
}

// pathFields tokenizes a path data string into command letters and numbers.
func pathFields(d string) ([]string, bool) {
	var sb strings.Builder
	sb.Grow(len(d) + len(d)/2)
	for i := 0; i < len(d); i++ {
		c := d[i]
		switch {
		case isPathCommand(c):
			sb.WriteByte(' ')
			sb.WriteByte(c)
			sb.WriteByte(' ')
		case c == '-' && i > 0 && d[i-1] != 'e' && d[i-1] != 'E':
			sb.WriteByte(' ')
			sb.WriteByte(c)
		case c == ',':
			sb.WriteByte(' ')
		default:
			if (c < '0' || c > '9') && c != '.' && c != '-' && c != '+' &&
				c != 'e' && c != 'E' && c != ' ' && c != '\t' && c != '\n' && c != '\r' {
				return nil, false
			}
			sb.WriteByte(c)
		}
	}
	return strings.Fields(sb.String()), true
}

func isPathCommand(c byte) bool {
	switch c &^ 0x20 {
	case 'M', 'L', 'H', 'V', 'C', 'S', 'Q', 'T', 'A', 'Z':
		return true
	}
	return false
}
