// Package nav provides the waypoint navigation graph and pathfinder.
// Floor plans are static graphs of named waypoints; routes are computed
// with breadth-first search over the unweighted adjacency lists.
package nav

import (
	"math"
)

// Point is a world position. Y is vertical; movement happens in the XZ plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// DistXZ returns the planar distance between two points, ignoring height.
func (p Point) DistXZ(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Z-q.Z)
}

// Waypoint is a navigable node in a floor plan graph.
type Waypoint struct {
	ID             string   `json:"id"`
	Pos            Point    `json:"pos"`
	Floor          int      `json:"floor"`
	PauseAtDoorway bool     `json:"pause_at_doorway,omitempty"`
	IsStairs       bool     `json:"is_stairs,omitempty"`
	IsElevator     bool     `json:"is_elevator,omitempty"`
	Neighbors      []string `json:"neighbors"`
}

// Graph is a fixed set of waypoints with adjacency edges. Waypoint order is
// preserved from construction so BFS visitation (and therefore tie-breaking)
// is deterministic.
type Graph struct {
	waypoints []Waypoint
	byID      map[string]int
}

// NewGraph builds a graph from a waypoint list. Edges referencing unknown
// waypoints are ignored at traversal time rather than rejected, since plans
// are static data validated by their authors.
func NewGraph(waypoints []Waypoint) *Graph {
	g := &Graph{
		waypoints: waypoints,
		byID:      make(map[string]int, len(waypoints)),
	}
	for i, wp := range waypoints {
		g.byID[wp.ID] = i
	}
	return g
}

// Waypoint returns the waypoint with the given id.
func (g *Graph) Waypoint(id string) (Waypoint, bool) {
	i, ok := g.byID[id]
	if !ok {
		return Waypoint{}, false
	}
	return g.waypoints[i], true
}

// Waypoints returns all waypoints in construction order.
func (g *Graph) Waypoints() []Waypoint {
	return g.waypoints
}

// Nearest returns the waypoint closest to p, preferring waypoints on the
// given floor. If no waypoint exists on that floor it falls back to the
// nearest waypoint overall.
func (g *Graph) Nearest(p Point, floor int) (Waypoint, bool) {
	if len(g.waypoints) == 0 {
		return Waypoint{}, false
	}

	bestIdx, bestFloorIdx := -1, -1
	bestDist, bestFloorDist := math.Inf(1), math.Inf(1)

	for i, wp := range g.waypoints {
		d := wp.Pos.DistXZ(p)
		if d < bestDist {
			bestDist = d
			bestIdx = i
		}
		if wp.Floor == floor && d < bestFloorDist {
			bestFloorDist = d
			bestFloorIdx = i
		}
	}

	if bestFloorIdx >= 0 {
		return g.waypoints[bestFloorIdx], true
	}
	return g.waypoints[bestIdx], true
}

// Path returns the shortest-hop waypoint id sequence from startID to endID,
// found by breadth-first search. Ties are broken by adjacency-list order.
// A disconnected pair degrades to the direct [startID, endID] fallback so
// callers always receive a traversable (if geometrically naive) route.
func (g *Graph) Path(startID, endID string) []string {
	if startID == endID {
		return []string{startID}
	}

	prev := map[string]string{startID: ""}
	queue := []string{startID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		i, ok := g.byID[current]
		if !ok {
			continue
		}

		for _, neighbor := range g.waypoints[i].Neighbors {
			if _, seen := prev[neighbor]; seen {
				continue
			}
			prev[neighbor] = current
			if neighbor == endID {
				return rebuild(prev, startID, endID)
			}
			queue = append(queue, neighbor)
		}
	}

	return []string{startID, endID}
}

func rebuild(prev map[string]string, startID, endID string) []string {
	var path []string
	for id := endID; id != ""; id = prev[id] {
		path = append(path, id)
		if id == startID {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Route computes a point route from one world position to another. Endpoints
// are snapped to their nearest (floor-preferring) waypoints, the waypoint
// path is resolved with BFS, and the exact destination is appended as a
// final synthetic point distinct from the graph.
func (g *Graph) Route(from, to Point, fromFloor, toFloor int) []Point {
	start, okStart := g.Nearest(from, fromFloor)
	end, okEnd := g.Nearest(to, toFloor)
	if !okStart || !okEnd {
		// Empty graph: walk straight at the destination.
		return []Point{to}
	}

	ids := g.Path(start.ID, end.ID)
	route := make([]Point, 0, len(ids)+1)
	for _, id := range ids {
		if wp, ok := g.Waypoint(id); ok {
			route = append(route, wp.Pos)
		}
	}
	return append(route, to)
}

// RouteWaypoints is Route but returns the waypoints themselves along with the
// synthetic destination, so callers can honor per-waypoint flags while
// traversing. The final entry has an empty ID.
func (g *Graph) RouteWaypoints(from, to Point, fromFloor, toFloor int) []Waypoint {
	start, okStart := g.Nearest(from, fromFloor)
	end, okEnd := g.Nearest(to, toFloor)
	if !okStart || !okEnd {
		return []Waypoint{{Pos: to, Floor: toFloor}}
	}

	ids := g.Path(start.ID, end.ID)
	route := make([]Waypoint, 0, len(ids)+1)
	for _, id := range ids {
		if wp, ok := g.Waypoint(id); ok {
			route = append(route, wp)
		} else {
			// Disconnected fallback may name a waypoint we never stored.
			route = append(route, Waypoint{ID: id, Pos: to, Floor: toFloor})
		}
	}
	return append(route, Waypoint{Pos: to, Floor: toFloor})
}
