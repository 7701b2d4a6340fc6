package nav

import "fmt"

// Room describes a serviceable area of a floor plan.
type Room struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Center Point  `json:"center"`
	Floor  int    `json:"floor"`
}

// FloorPlan bundles a waypoint graph with its rooms and charging station.
// Plans are swapped wholesale; swapping one resets all tasks and agents.
type FloorPlan struct {
	ID            string
	Graph         *Graph
	Rooms         []Room
	Charging      Point
	ChargingFloor int
	Spawn         Point
}

// Room returns the room with the given id.
func (p *FloorPlan) Room(id string) (Room, bool) {
	for _, r := range p.Rooms {
		if r.ID == id {
			return r, true
		}
	}
	return Room{}, false
}

// NearestRoom returns the room whose center is closest to the point,
// preferring rooms on the same floor. The charger sits outside every room
// outline, so callers attribute its position to the nearest one.
func (p *FloorPlan) NearestRoom(pt Point, floor int) (Room, bool) {
	var best Room
	bestDist := -1.0
	found := false
	for _, r := range p.Rooms {
		if r.Floor != floor {
			continue
		}
		d := pt.DistXZ(r.Center)
		if !found || d < bestDist {
			best = r
			bestDist = d
			found = true
		}
	}
	if !found && len(p.Rooms) > 0 {
		return p.Rooms[0], true
	}
	return best, found
}

// RoomIDs returns the plan's room ids in declaration order.
func (p *FloorPlan) RoomIDs() []string {
	ids := make([]string, len(p.Rooms))
	for i, r := range p.Rooms {
		ids[i] = r.ID
	}
	return ids
}

// PlanByID returns a built-in floor plan.
func PlanByID(id string) (*FloorPlan, error) {
	switch id {
	case PlanCottage:
		return CottagePlan(), nil
	case PlanTownhouse:
		return TownhousePlan(), nil
	default:
		return nil, fmt.Errorf("unknown floor plan %q", id)
	}
}

// Built-in floor plan ids.
const (
	PlanCottage   = "cottage"
	PlanTownhouse = "townhouse"
)

// cottageWaypoints is the single-floor graph: room centers joined to doorway
// nodes, doorways joined to a hallway spine, plus furniture anchor points.
func cottageWaypoints() []Waypoint {
	return []Waypoint{
		// Room centers.
		{ID: "living-center", Pos: Point{X: -3.5, Z: -2}, Neighbors: []string{"living-door", "living-couch"}},
		{ID: "kitchen-center", Pos: Point{X: 4.2, Z: -2.5}, Neighbors: []string{"kitchen-door", "kitchen-sink", "kitchen-stove"}},
		{ID: "bedroom-center", Pos: Point{X: -3.5, Z: 5}, Neighbors: []string{"bedroom-door", "bed-area", "desk-area"}},
		{ID: "bathroom-center", Pos: Point{X: 4, Z: 5.5}, Neighbors: []string{"bathroom-door", "bathtub-area"}},

		// Doorways.
		{ID: "living-door", Pos: Point{X: -0.5, Z: -1}, PauseAtDoorway: true, Neighbors: []string{"living-center", "hall-north"}},
		{ID: "kitchen-door", Pos: Point{X: 1, Z: -1}, PauseAtDoorway: true, Neighbors: []string{"kitchen-center", "hall-north"}},
		{ID: "bedroom-door", Pos: Point{X: -0.5, Z: 3}, PauseAtDoorway: true, Neighbors: []string{"bedroom-center", "hall-south"}},
		{ID: "bathroom-door", Pos: Point{X: 1.5, Z: 4}, PauseAtDoorway: true, Neighbors: []string{"bathroom-center", "hall-south"}},

		// Hallway spine.
		{ID: "hall-north", Pos: Point{X: 0.5, Z: 0}, Neighbors: []string{"living-door", "kitchen-door", "hall-center"}},
		{ID: "hall-center", Pos: Point{X: 0.5, Z: 1.5}, Neighbors: []string{"hall-north", "hall-south"}},
		{ID: "hall-south", Pos: Point{X: 0.5, Z: 3}, Neighbors: []string{"hall-center", "bedroom-door", "bathroom-door"}},

		// Furniture anchors.
		{ID: "kitchen-sink", Pos: Point{X: 5.5, Z: -3.5}, Neighbors: []string{"kitchen-center"}},
		{ID: "kitchen-stove", Pos: Point{X: 4.5, Z: -3.5}, Neighbors: []string{"kitchen-center"}},
		{ID: "living-couch", Pos: Point{X: -4.5, Z: -3}, Neighbors: []string{"living-center"}},
		{ID: "bed-area", Pos: Point{X: -4, Z: 5.8}, Neighbors: []string{"bedroom-center"}},
		{ID: "desk-area", Pos: Point{X: -1.5, Z: 4}, Neighbors: []string{"bedroom-center"}},
		{ID: "bathtub-area", Pos: Point{X: 5, Z: 6}, Neighbors: []string{"bathroom-center"}},
	}
}

func cottageRooms() []Room {
	return []Room{
		{ID: "living-room", Name: "Living Room", Center: Point{X: -3.5, Z: -2}},
		{ID: "kitchen", Name: "Kitchen", Center: Point{X: 4.2, Z: -2.5}},
		{ID: "bedroom", Name: "Bedroom", Center: Point{X: -3.5, Z: 5}},
		{ID: "bathroom", Name: "Bathroom", Center: Point{X: 4, Z: 5.5}},
		{ID: "hallway", Name: "Hallway", Center: Point{X: 0.5, Z: 1.5}},
	}
}

// CottagePlan is the default single-floor home.
func CottagePlan() *FloorPlan {
	return &FloorPlan{
		ID:       PlanCottage,
		Graph:    NewGraph(cottageWaypoints()),
		Rooms:    cottageRooms(),
		Charging: Point{X: -6, Z: -2},
		Spawn:    Point{X: 0.5, Z: 1.5},
	}
}

// TownhousePlan extends the cottage with a second floor reached by stairs.
func TownhousePlan() *FloorPlan {
	wps := cottageWaypoints()

	// Join the hallway to the stairwell.
	for i := range wps {
		if wps[i].ID == "hall-south" {
			wps[i].Neighbors = append(wps[i].Neighbors, "stairs-base")
		}
	}

	wps = append(wps,
		Waypoint{ID: "stairs-base", Pos: Point{X: 2, Z: 2}, IsStairs: true, Neighbors: []string{"hall-south", "stairs-top"}},
		Waypoint{ID: "stairs-top", Pos: Point{X: 2, Y: 3, Z: 2}, Floor: 1, IsStairs: true, Neighbors: []string{"stairs-base", "f2-landing"}},
		Waypoint{ID: "f2-landing", Pos: Point{X: 0.5, Y: 3, Z: 1.5}, Floor: 1, Neighbors: []string{"stairs-top", "f2-bedroom-door", "f2-office-door"}},
		Waypoint{ID: "f2-bedroom-door", Pos: Point{X: -0.5, Y: 3, Z: 3}, Floor: 1, PauseAtDoorway: true, Neighbors: []string{"f2-landing", "f2-bedroom-center"}},
		Waypoint{ID: "f2-bedroom-center", Pos: Point{X: -3.5, Y: 3, Z: 4.5}, Floor: 1, Neighbors: []string{"f2-bedroom-door"}},
		Waypoint{ID: "f2-office-door", Pos: Point{X: 1.5, Y: 3, Z: -0.5}, Floor: 1, PauseAtDoorway: true, Neighbors: []string{"f2-landing", "f2-office-center"}},
		Waypoint{ID: "f2-office-center", Pos: Point{X: 4, Y: 3, Z: -2}, Floor: 1, Neighbors: []string{"f2-office-door"}},
	)

	rooms := append(cottageRooms(),
		Room{ID: "f2-bedroom", Name: "Upstairs Bedroom", Center: Point{X: -3.5, Y: 3, Z: 4.5}, Floor: 1},
		Room{ID: "f2-office", Name: "Office", Center: Point{X: 4, Y: 3, Z: -2}, Floor: 1},
	)

	return &FloorPlan{
		ID:       PlanTownhouse,
		Graph:    NewGraph(wps),
		Rooms:    rooms,
		Charging: Point{X: -6, Z: -2},
		Spawn:    Point{X: 0.5, Z: 1.5},
	}
}
