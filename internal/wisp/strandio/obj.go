package strandio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/wispify/internal/fsutil"
	"github.com/banshee-data/wispify/internal/wisp/curvemath"
	"github.com/banshee-data/wispify/internal/wisp/faults"
)

const maxLine = 16 << 20

// CurveSet is a shared vertex list plus polylines indexing into it (0-based).
type CurveSet struct {
	Points  []r3.Vec
	Strands [][]int
}

// NewCurveSet lays curves out back to back, one strand per curve.
func NewCurveSet(curves []curvemath.Curve) CurveSet {
	var cs CurveSet
	for _, c := range curves {
		strand := make([]int, len(c))
		for i, p := range c {
			strand[i] = len(cs.Points)
			cs.Points = append(cs.Points, p)
		}
		cs.Strands = append(cs.Strands, strand)
	}
	return cs
}

// Curves resolves every strand to its points.
func (cs CurveSet) Curves() ([]curvemath.Curve, error) {
	out := make([]curvemath.Curve, len(cs.Strands))
	for s, strand := range cs.Strands {
		c := make(curvemath.Curve, len(strand))
		for i, idx := range strand {
			if idx < 0 || idx >= len(cs.Points) {
				return nil, fmt.Errorf("strandio: strand %d references vertex %d of %d: %w", s, idx, len(cs.Points), faults.ErrShapeMismatch)
			}
			c[i] = cs.Points[idx]
		}
		out[s] = c
	}
	return out, nil
}

// JoinSegments chains consecutive strands whose first index repeats the
// last index of the previous one, turning per-segment "l i j" records
// back into whole polylines.
func JoinSegments(strands [][]int) [][]int {
	var out [][]int
	for _, s := range strands {
		if len(s) == 0 {
			continue
		}
		if n := len(out); n > 0 {
			prev := out[n-1]
			if prev[len(prev)-1] == s[0] {
				out[n-1] = append(prev, s[1:]...)
				continue
			}
		}
		out = append(out, append([]int(nil), s...))
	}
	return out
}

// ReadPoints returns the "v" records of an OBJ file.
func ReadPoints(fsys fsutil.FileSystem, name string) ([]r3.Vec, error) {
	cs, err := ReadCurveSet(fsys, name)
	if err != nil {
		return nil, err
	}
	return cs.Points, nil
}

// ReadCurveSet returns the "v" and "l" records of an OBJ file. Other
// records and comments are ignored. Negative "l" indices count back from
// the latest vertex.
func ReadCurveSet(fsys fsutil.FileSystem, name string) (CurveSet, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return CurveSet{}, fmt.Errorf("strandio: %w", err)
	}
	defer f.Close()

	cs, err := parseOBJ(f)
	if err != nil {
		return CurveSet{}, fmt.Errorf("strandio: %s:%w", name, err)
	}
	return cs, nil
}

func parseOBJ(r io.Reader) (CurveSet, error) {
	var cs CurveSet
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLine)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return CurveSet{}, fmt.Errorf("%d: vertex needs three coordinates", line)
			}
			var xyz [3]float64
			for i := range xyz {
				v, err := strconv.ParseFloat(fields[i+1], 64)
				if err != nil {
					return CurveSet{}, fmt.Errorf("%d: %w", line, err)
				}
				xyz[i] = v
			}
			cs.Points = append(cs.Points, r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]})
		case "l":
			strand := make([]int, 0, len(fields)-1)
			for _, f := range fields[1:] {
				// "l" entries may carry a texture index as "v/vt".
				f, _, _ = strings.Cut(f, "/")
				idx, err := strconv.Atoi(f)
				if err != nil {
					return CurveSet{}, fmt.Errorf("%d: %w", line, err)
				}
				switch {
				case idx > 0:
					idx--
				case idx < 0:
					idx += len(cs.Points)
				default:
					return CurveSet{}, fmt.Errorf("%d: OBJ indices start at 1", line)
				}
				strand = append(strand, idx)
			}
			cs.Strands = append(cs.Strands, strand)
		}
	}
	if err := sc.Err(); err != nil {
		return CurveSet{}, fmt.Errorf("%d: %w", line, err)
	}
	return cs, nil
}

// WriteCurveSet writes cs as OBJ "v" records followed by 1-based "l"
// records.
func WriteCurveSet(fsys fsutil.FileSystem, name string, cs CurveSet) error {
	f, err := fsys.Create(name)
	if err != nil {
		return fmt.Errorf("strandio: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, p := range cs.Points {
		w.WriteString("v ")
		w.WriteString(formatFloat(p.X))
		w.WriteByte(' ')
		w.WriteString(formatFloat(p.Y))
		w.WriteByte(' ')
		w.WriteString(formatFloat(p.Z))
		w.WriteByte('\n')
	}
	for _, s := range cs.Strands {
		w.WriteByte('l')
		for _, idx := range s {
			w.WriteByte(' ')
			w.WriteString(strconv.Itoa(idx + 1))
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("strandio: write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("strandio: close %s: %w", name, err)
	}
	return nil
}

// WriteCurves writes curves back to back as one OBJ file.
func WriteCurves(fsys fsutil.FileSystem, name string, curves []curvemath.Curve) error {
	return WriteCurveSet(fsys, name, NewCurveSet(curves))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
