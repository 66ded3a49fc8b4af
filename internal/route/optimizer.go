// Package route finds risk-aware flight paths between mission
// waypoints. The search is A* over a continuous space discretized on
// the fly: node identity is the coordinates rounded to a fixed grid,
// neighbors are generated per expansion, and the risk scorer prices
// every candidate edge. The search is bounded by an iteration cap
// rather than completeness guarantees; hitting the cap degrades to the
// direct segment, so optimization as a whole never fails.
package route

import (
	"container/heap"
	"log"
	"math"
	"sync"

	"github.com/amaan-ali-1107/UAV-mission-planner/internal/airspace"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/geo"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/mission"
	"github.com/amaan-ali-1107/UAV-mission-planner/internal/risk"
)

const (
	defaultGridResolution = 0.001 // degrees, ~100m at the equator
	defaultAltResolution  = 20.0  // meters
	defaultRiskWeight     = 2.0
	defaultMaxIterations  = 1000
	defaultWorkers        = 4

	// Goal tolerance
	goalHorizontalM = 100.0
	goalVerticalM   = 50.0

	// Minimum flight altitude during search
	minAltitudeM = 50.0

	// Penalty for entering a restricted zone outright
	noFlyPenalty = 10000.0
)

// ---------------------------------------------------------------------------
// Search nodes
// ---------------------------------------------------------------------------

// nodeKey is the hashable identity of a search node: coordinates
// rounded to the grid (lat/lng to 1e-6 degree, altitude to 0.1 m).
// Two nodes with equal keys are the same entity for the OPEN and
// CLOSED sets.
type nodeKey struct {
	lat int64
	lng int64
	alt int64
}

func keyFor(lat, lng, alt float64) nodeKey {
	return nodeKey{
		lat: int64(math.Round(lat * 1e6)),
		lng: int64(math.Round(lng * 1e6)),
		alt: int64(math.Round(alt * 10)),
	}
}

// node is one candidate position in the search.
type node struct {
	lat, lng, alt float64
	g, h, f       float64
	parent        *node
	seq           int // insertion order, breaks f-cost ties
	index         int // heap bookkeeping
}

func (n *node) key() nodeKey {
	return keyFor(n.lat, n.lng, n.alt)
}

func (n *node) point() geo.Point {
	return geo.Point{Lat: n.lat, Lng: n.lng, Alt: n.alt}
}

// openSet is a stable min-heap on f-cost: equal costs pop in insertion
// order.
type openSet struct {
	nodes   []*node
	nextSeq int
}

func (o *openSet) Len() int { return len(o.nodes) }

func (o *openSet) Less(i, j int) bool {
	if o.nodes[i].f != o.nodes[j].f {
		return o.nodes[i].f < o.nodes[j].f
	}
	return o.nodes[i].seq < o.nodes[j].seq
}

func (o *openSet) Swap(i, j int) {
	o.nodes[i], o.nodes[j] = o.nodes[j], o.nodes[i]
	o.nodes[i].index = i
	o.nodes[j].index = j
}

func (o *openSet) Push(x any) {
	n := x.(*node)
	n.index = len(o.nodes)
	o.nodes = append(o.nodes, n)
}

func (o *openSet) Pop() any {
	old := o.nodes
	n := old[len(old)-1]
	old[len(old)-1] = nil
	o.nodes = old[:len(old)-1]
	return n
}

func (o *openSet) push(n *node) {
	n.seq = o.nextSeq
	o.nextSeq++
	heap.Push(o, n)
}

func (o *openSet) pop() *node {
	return heap.Pop(o).(*node)
}

// ---------------------------------------------------------------------------
// Optimizer
// ---------------------------------------------------------------------------

// Optimizer runs risk-aware A* searches between consecutive mission
// waypoints. Safe for concurrent use; each search keeps its own OPEN
// and CLOSED sets.
type Optimizer struct {
	space  airspace.Config
	scorer *risk.Scorer

	gridResolution float64
	altResolution  float64
	riskWeight     float64
	maxIterations  int
	workers        int
}

// OptimizerOption configures an Optimizer.
type OptimizerOption func(*Optimizer)

// WithWorkers sets how many waypoint-pair searches run in parallel.
func WithWorkers(n int) OptimizerOption {
	return func(o *Optimizer) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithIterationCap overrides the per-pair search iteration cap.
func WithIterationCap(n int) OptimizerOption {
	return func(o *Optimizer) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}

// WithRiskWeight overrides how heavily segment risk is priced against
// distance.
func WithRiskWeight(w float64) OptimizerOption {
	return func(o *Optimizer) { o.riskWeight = w }
}

// NewOptimizer creates an optimizer over the given airspace, using the
// scorer as the per-segment cost oracle.
func NewOptimizer(space airspace.Config, scorer *risk.Scorer, opts ...OptimizerOption) *Optimizer {
	o := &Optimizer{
		space:          space,
		scorer:         scorer,
		gridResolution: defaultGridResolution,
		altResolution:  defaultAltResolution,
		riskWeight:     defaultRiskWeight,
		maxIterations:  defaultMaxIterations,
		workers:        defaultWorkers,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Optimize searches each consecutive waypoint pair and returns a new
// Mission with the concatenated optimized route. Pairs run in parallel
// across a bounded worker pool; any per-pair failure degrades to the
// direct segment for that pair only, so Optimize never fails.
func (o *Optimizer) Optimize(m mission.Mission) mission.Mission {
	if len(m.Waypoints) < 2 {
		return m.WithWaypoints(m.Waypoints)
	}

	segments := make([][]mission.Waypoint, len(m.Waypoints)-1)

	sem := make(chan struct{}, o.workers)
	var wg sync.WaitGroup
	for i := 0; i < len(m.Waypoints)-1; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			segments[i] = o.findPath(m.Waypoints[i], m.Waypoints[i+1], m)
		}(i)
	}
	wg.Wait()

	// Concatenate, dropping the duplicated start of each subsequent
	// segment.
	optimized := []mission.Waypoint{m.Waypoints[0]}
	for _, seg := range segments {
		optimized = append(optimized, seg[1:]...)
	}

	log.Printf("Route optimized: %d -> %d waypoints", len(m.Waypoints), len(optimized))
	return m.WithWaypoints(optimized)
}

// findPath runs one A* search from start to goal. Always returns a
// path beginning at start; the direct two-point segment if the search
// exhausts its iteration cap.
func (o *Optimizer) findPath(start, goal mission.Waypoint, m mission.Mission) []mission.Waypoint {
	goalPt := goal.Point()

	startNode := &node{lat: start.Lat, lng: start.Lng, alt: start.Altitude}
	startNode.h = o.heuristic(startNode.point(), goalPt)
	startNode.f = startNode.h

	open := &openSet{}
	open.push(startNode)

	closed := make(map[nodeKey]struct{})
	gScore := map[nodeKey]float64{startNode.key(): 0}

	for iterations := 0; open.Len() > 0 && iterations < o.maxIterations; iterations++ {
		current := open.pop()
		curKey := current.key()
		if _, seen := closed[curKey]; seen {
			continue // stale heap entry
		}

		if o.goalReached(current.point(), goalPt) {
			return reconstructPath(current)
		}

		closed[curKey] = struct{}{}

		for _, nb := range o.neighbors(current, goalPt) {
			nbKey := nb.key()
			if _, seen := closed[nbKey]; seen {
				continue
			}

			tentative := current.g + o.edgeCost(current, nb, m)
			if prev, known := gScore[nbKey]; known && tentative >= prev {
				continue
			}

			gScore[nbKey] = tentative
			nb.parent = current
			nb.g = tentative
			nb.h = o.heuristic(nb.point(), goalPt)
			nb.f = nb.g + nb.h
			open.push(nb)
		}
	}

	log.Printf("Route search exhausted (%d iterations), using direct segment", o.maxIterations)
	return []mission.Waypoint{start, goal}
}

// neighborDirs are the 8 compass directions plus altitude up/down.
var neighborDirs = [10][3]float64{
	{-1, -1, 0}, {-1, 0, 0}, {-1, 1, 0},
	{0, -1, 0}, {0, 1, 0},
	{1, -1, 0}, {1, 0, 0}, {1, 1, 0},
	{0, 0, -1}, {0, 0, 1},
}

// neighbors generates candidate successor nodes. Step size scales with
// the remaining distance to the goal so far-away expansion takes big
// steps while the approach keeps fine resolution, and a direct-to-goal
// candidate is added inside 2 km.
func (o *Optimizer) neighbors(n *node, goal geo.Point) []*node {
	distToGoal := geo.Distance(n.point(), goal)

	mult := 1.0
	switch {
	case distToGoal > 5000:
		mult = 5.0
	case distToGoal > 1000:
		mult = 2.0
	}

	latStep := o.gridResolution * mult
	lngStep := o.gridResolution * mult
	altStep := o.altResolution * mult

	out := make([]*node, 0, len(neighborDirs)+1)
	for _, d := range neighborDirs {
		out = append(out, &node{
			lat: n.lat + d[0]*latStep,
			lng: n.lng + d[1]*lngStep,
			alt: math.Max(minAltitudeM, n.alt+d[2]*altStep),
		})
	}

	if distToGoal < 2000 {
		out = append(out, &node{lat: goal.Lat, lng: goal.Lng, alt: goal.Alt})
	}
	return out
}

// edgeCost prices moving from one node to the next: physical distance,
// an altitude-change penalty, segment risk weighted against distance,
// and terrain and no-fly penalties at the destination.
func (o *Optimizer) edgeCost(from, to *node, m mission.Mission) float64 {
	distance := geo.Distance(from.point(), to.point())
	altitudeCost := math.Abs(to.alt-from.alt) * 0.1

	segment := m.WithWaypoints([]mission.Waypoint{
		{Lat: from.lat, Lng: from.lng, Altitude: from.alt},
		{Lat: to.lat, Lng: to.lng, Altitude: to.alt},
	})
	riskCost := o.scorer.Score(segment) * distance * o.riskWeight

	return distance + altitudeCost + riskCost +
		o.space.TerrainPenalty(to.lat, to.lng) +
		o.noFlyCost(to.point())
}

// noFlyCost returns a prohibitive penalty inside a restricted zone and
// a graduated penalty in the buffer band out to twice the radius.
func (o *Optimizer) noFlyCost(p geo.Point) float64 {
	minPenalty := math.Inf(1)
	for _, z := range o.space.RestrictedZones {
		d := geo.Distance(p, z.Center())
		if d < z.RadiusM {
			return noFlyPenalty
		}
		if d < z.RadiusM*2 {
			penalty := 500.0 * (1 - (d-z.RadiusM)/z.RadiusM)
			if penalty < minPenalty {
				minPenalty = penalty
			}
		}
	}
	if math.IsInf(minPenalty, 1) {
		return 0
	}
	return minPenalty
}

// heuristic estimates remaining cost: horizontal great-circle distance
// plus half the vertical distance. The risk term in edge costs is
// deliberately excluded, so the heuristic can underestimate relative
// to priced edges; the iteration cap bounds the search regardless.
func (o *Optimizer) heuristic(p, goal geo.Point) float64 {
	return geo.Distance(p, goal) + math.Abs(goal.Alt-p.Alt)*0.5
}

func (o *Optimizer) goalReached(p, goal geo.Point) bool {
	return geo.Distance(p, goal) < goalHorizontalM &&
		math.Abs(p.Alt-goal.Alt) < goalVerticalM
}

// reconstructPath walks parent links back to the start and returns the
// waypoints in flight order.
func reconstructPath(goal *node) []mission.Waypoint {
	var rev []mission.Waypoint
	for n := goal; n != nil; n = n.parent {
		rev = append(rev, mission.Waypoint{Lat: n.lat, Lng: n.lng, Altitude: n.alt})
	}
	out := make([]mission.Waypoint, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		out = append(out, rev[i])
	}
	return out
}
