package octree

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/wispify/internal/wisp/faults"
)

const (
	// DefaultEpsilon inflates every box test so points on a boundary are kept.
	DefaultEpsilon = 1e-9
	// DefaultMaxRetries bounds the radius doublings of one query.
	DefaultMaxRetries = 64
	// MaxDepth forces a leaf once reached, so coincident points cannot split forever.
	MaxDepth = 48
	// MinLeafThreshold is the smallest accepted leaf threshold.
	MinLeafThreshold = 2
)

// Neighbor is one query result.
type Neighbor struct {
	Index int     // position in the point set given to Build
	Point r3.Vec  // the point itself
	Dist2 float64 // squared distance to the query point
}

// node is one arena slot. Leaves own order[first:first+count]; internal
// nodes reference up to eight children by arena index.
type node struct {
	upper, lower r3.Vec
	leaf         bool
	first, count int
	children     [8]int32
	nchild       uint8
}

// Index is an octree over a static point set.
type Index struct {
	// Epsilon inflates box-overlap tests during queries.
	Epsilon float64
	// MaxRetries caps radius doublings before a query gives up.
	MaxRetries int

	points []r3.Vec
	order  []int
	nodes  []node
}

// Bounds returns the per-axis maximum and minimum of points.
func Bounds(points []r3.Vec) (upper, lower r3.Vec) {
	if len(points) == 0 {
		return r3.Vec{}, r3.Vec{}
	}
	upper, lower = points[0], points[0]
	for _, p := range points[1:] {
		upper = r3.Vec{X: math.Max(upper.X, p.X), Y: math.Max(upper.Y, p.Y), Z: math.Max(upper.Z, p.Z)}
		lower = r3.Vec{X: math.Min(lower.X, p.X), Y: math.Min(lower.Y, p.Y), Z: math.Min(lower.Z, p.Z)}
	}
	return upper, lower
}

// Build partitions points into octants about the midpoint of [lower, upper]
// until a node holds fewer than leafThreshold points. Empty octants are
// omitted. The points slice is retained, not copied, and must not be
// modified afterwards.
func Build(points []r3.Vec, leafThreshold int, upper, lower r3.Vec) *Index {
	if leafThreshold < MinLeafThreshold {
		leafThreshold = MinLeafThreshold
	}
	idx := &Index{
		Epsilon:    DefaultEpsilon,
		MaxRetries: DefaultMaxRetries,
		points:     points,
	}
	if len(points) == 0 {
		return idx
	}
	members := make([]int, len(points))
	for i := range members {
		members[i] = i
	}
	idx.order = make([]int, 0, len(points))
	idx.build(members, leafThreshold, upper, lower, 0)
	return idx
}

func (idx *Index) build(members []int, threshold int, upper, lower r3.Vec, depth int) int32 {
	id := int32(len(idx.nodes))
	idx.nodes = append(idx.nodes, node{upper: upper, lower: lower})

	if len(members) < threshold || depth >= MaxDepth {
		n := &idx.nodes[id]
		n.leaf = true
		n.first = len(idx.order)
		n.count = len(members)
		idx.order = append(idx.order, members...)
		return id
	}

	mid := r3.Scale(0.5, r3.Add(upper, lower))
	var octants [8][]int
	for _, m := range members {
		o := octant(idx.points[m], mid)
		octants[o] = append(octants[o], m)
	}
	for o := range octants {
		if len(octants[o]) == 0 {
			continue
		}
		cu, cl := childBounds(o, upper, lower, mid)
		child := idx.build(octants[o], threshold, cu, cl, depth+1)
		// build appends to idx.nodes, so the parent is re-addressed here.
		n := &idx.nodes[id]
		n.children[n.nchild] = child
		n.nchild++
	}
	return id
}

// octant numbers the children upper-first: bit 2 is x, bit 1 is y, bit 0 is
// z, and a set bit means "not above the midpoint".
func octant(p, mid r3.Vec) int {
	o := 0
	if p.X <= mid.X {
		o |= 4
	}
	if p.Y <= mid.Y {
		o |= 2
	}
	if p.Z <= mid.Z {
		o |= 1
	}
	return o
}

func childBounds(o int, upper, lower, mid r3.Vec) (r3.Vec, r3.Vec) {
	cu, cl := upper, mid
	if o&4 != 0 {
		cu.X, cl.X = mid.X, lower.X
	}
	if o&2 != 0 {
		cu.Y, cl.Y = mid.Y, lower.Y
	}
	if o&1 != 0 {
		cu.Z, cl.Z = mid.Z, lower.Z
	}
	return cu, cl
}

// Len returns the number of indexed points.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.points)
}

// Leaves returns the number of leaf nodes.
func (idx *Index) Leaves() int {
	if idx == nil {
		return 0
	}
	leaves := 0
	for i := range idx.nodes {
		if idx.nodes[i].leaf {
			leaves++
		}
	}
	return leaves
}

// AverageLeafExtent averages, child by child up the tree, the largest box
// side of each leaf. It is the usual seed for a query radius. Returns -1 for
// a nil or empty index.
func (idx *Index) AverageLeafExtent() float64 {
	if idx == nil || len(idx.nodes) == 0 {
		return -1
	}
	return idx.averageExtent(0)
}

func (idx *Index) averageExtent(id int32) float64 {
	n := &idx.nodes[id]
	if n.leaf {
		d := r3.Sub(n.upper, n.lower)
		return math.Max(d.X, math.Max(d.Y, d.Z))
	}
	var sum float64
	for _, c := range n.children[:n.nchild] {
		sum += idx.averageExtent(c)
	}
	return sum / float64(n.nchild)
}

// KNearest returns the k points closest to q in ascending squared distance.
// Candidates are gathered from leaves within radius of q; the radius doubles
// until at least k candidates are found or MaxRetries is exhausted, then the
// gather is widened to the k-th candidate's distance so the result is exact.
// Equal distances keep the order in which candidates were encountered.
func (idx *Index) KNearest(q r3.Vec, radius float64, k int) ([]Neighbor, error) {
	if k <= 0 {
		return nil, nil
	}
	if k > idx.Len() {
		return nil, fmt.Errorf("octree: %d nearest requested from %d points: %w", k, idx.Len(), faults.ErrInsufficientCandidates)
	}
	if !(radius > 0) || math.IsInf(radius, 1) {
		radius = idx.seedRadius()
	}

	var candidates []int
	for attempt := 0; ; attempt++ {
		candidates = idx.gather(0, q, radius+idx.Epsilon, candidates[:0])
		if len(candidates) >= k {
			break
		}
		if attempt >= idx.MaxRetries {
			return nil, fmt.Errorf("octree: %d of %d candidates after %d doublings (radius %g): %w",
				len(candidates), k, attempt, radius, faults.ErrInsufficientCandidates)
		}
		radius *= 2
	}
	best := idx.nearest(q, candidates, k)

	// The k-th candidate may lie beyond radius, where unvisited leaves can
	// still hold nearer points. Every such point is within its L∞ reach.
	if reach := math.Sqrt(best[k-1].Dist2); reach > radius {
		candidates = idx.gather(0, q, reach+idx.Epsilon, candidates[:0])
		best = idx.nearest(q, candidates, k)
	}
	return best, nil
}

func (idx *Index) seedRadius() float64 {
	d := r3.Sub(idx.nodes[0].upper, idx.nodes[0].lower)
	r := math.Max(d.X, math.Max(d.Y, d.Z)) / 2
	if !(r > 0) {
		return 1
	}
	return r
}

func (idx *Index) gather(id int32, q r3.Vec, eps float64, dst []int) []int {
	n := &idx.nodes[id]
	if q.X > n.upper.X+eps || q.X < n.lower.X-eps ||
		q.Y > n.upper.Y+eps || q.Y < n.lower.Y-eps ||
		q.Z > n.upper.Z+eps || q.Z < n.lower.Z-eps {
		return dst
	}
	if n.leaf {
		return append(dst, idx.order[n.first:n.first+n.count]...)
	}
	for _, c := range n.children[:n.nchild] {
		dst = idx.gather(c, q, eps, dst)
	}
	return dst
}

// nearest keeps the k smallest distances with an insertion pass.
func (idx *Index) nearest(q r3.Vec, candidates []int, k int) []Neighbor {
	best := make([]Neighbor, k)
	for i := range best {
		best[i] = Neighbor{Index: -1, Dist2: math.Inf(1)}
	}
	for _, c := range candidates {
		p := idx.points[c]
		d2 := r3.Norm2(r3.Sub(q, p))
		for i := range best {
			if d2 < best[i].Dist2 {
				copy(best[i+1:], best[i:k-1])
				best[i] = Neighbor{Index: c, Point: p, Dist2: d2}
				break
			}
		}
	}
	return best
}
