package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathShortestHops(t *testing.T) {
	g := CottagePlan().Graph

	path := g.Path("living-center", "kitchen-center")
	require.Equal(t, []string{
		"living-center", "living-door", "hall-north", "kitchen-door", "kitchen-center",
	}, path)
}

func TestPathSameNode(t *testing.T) {
	g := CottagePlan().Graph
	assert.Equal(t, []string{"hall-center"}, g.Path("hall-center", "hall-center"))
}

func TestPathDisconnectedFallsBack(t *testing.T) {
	g := NewGraph([]Waypoint{
		{ID: "a", Pos: Point{X: 0, Z: 0}},
		{ID: "b", Pos: Point{X: 10, Z: 10}},
	})
	assert.Equal(t, []string{"a", "b"}, g.Path("a", "b"))
}

func TestNeighborsResolvableAndSymmetric(t *testing.T) {
	for _, plan := range []*FloorPlan{CottagePlan(), TownhousePlan()} {
		for _, wp := range plan.Graph.Waypoints() {
			for _, nb := range wp.Neighbors {
				other, ok := plan.Graph.Waypoint(nb)
				require.True(t, ok, "%s: %q references unknown waypoint %q", plan.ID, wp.ID, nb)
				assert.Contains(t, other.Neighbors, wp.ID,
					"%s: edge %s -> %s is one-way", plan.ID, wp.ID, nb)
			}
		}
	}
}

func TestNearestPrefersFloor(t *testing.T) {
	g := TownhousePlan().Graph

	// Same XZ neighborhood exists on both floors; the floor argument decides.
	up, ok := g.Nearest(Point{X: -3.5, Z: 4.5}, 1)
	require.True(t, ok)
	assert.Equal(t, 1, up.Floor)

	down, ok := g.Nearest(Point{X: -3.5, Z: 4.5}, 0)
	require.True(t, ok)
	assert.Equal(t, 0, down.Floor)
}

func TestRouteEndsAtExactDestination(t *testing.T) {
	g := CottagePlan().Graph
	dest := Point{X: 5.5, Z: -3.4}

	route := g.Route(Point{X: 0.5, Z: 1.5}, dest, 0, 0)
	require.NotEmpty(t, route)
	assert.Equal(t, dest, route[len(route)-1])

	wps := g.RouteWaypoints(Point{X: 0.5, Z: 1.5}, dest, 0, 0)
	require.NotEmpty(t, wps)
	last := wps[len(wps)-1]
	assert.Empty(t, last.ID)
	assert.Equal(t, dest, last.Pos)
}

func TestCrossFloorRouteUsesStairs(t *testing.T) {
	plan := TownhousePlan()
	dest := Point{X: -3.5, Y: 3, Z: 4.5}

	wps := plan.Graph.RouteWaypoints(plan.Spawn, dest, 0, 1)
	require.NotEmpty(t, wps)

	var ids []string
	for _, wp := range wps {
		ids = append(ids, wp.ID)
	}
	assert.Contains(t, ids, "stairs-base")
	assert.Contains(t, ids, "stairs-top")
	assert.Equal(t, 1, wps[len(wps)-1].Floor)
}

func TestEmptyGraphRoutesStraight(t *testing.T) {
	g := NewGraph(nil)
	dest := Point{X: 3, Z: 3}
	assert.Equal(t, []Point{dest}, g.Route(Point{}, dest, 0, 0))
}

func TestPlanByID(t *testing.T) {
	plan, err := PlanByID(PlanTownhouse)
	require.NoError(t, err)
	assert.Equal(t, PlanTownhouse, plan.ID)
	assert.Len(t, plan.Rooms, 7)

	_, err = PlanByID("mansion")
	assert.Error(t, err)
}

func TestNearestRoomPrefersFloor(t *testing.T) {
	plan := TownhousePlan()

	room, ok := plan.NearestRoom(plan.Charging, plan.ChargingFloor)
	require.True(t, ok)
	assert.Equal(t, "living-room", room.ID)

	// An upstairs query only considers upstairs rooms.
	room, ok = plan.NearestRoom(Point{X: -3, Y: 3, Z: 4}, 1)
	require.True(t, ok)
	assert.Equal(t, "f2-bedroom", room.ID)
}
