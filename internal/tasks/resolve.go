package tasks

import (
	"strings"

	"github.com/talgya/simbot/internal/nav"
)

// Target is a resolved command: where to go, what kind of work, for how long.
type Target struct {
	RoomID       string
	Position     nav.Point
	Floor        int
	Type         Type
	WorkDuration float64 // engine-seconds
	Description  string
	Response     string
	// Maintenance marks robot upkeep trips, such as heading to the charger.
	// They complete without boosting the room or entering learned history.
	Maintenance bool
}

// Resolver turns free text into a task target. The engine treats it as an
// opaque collaborator; a keyword table ships as the default implementation.
type Resolver interface {
	Resolve(command string, plan *nav.FloorPlan) (Target, bool)
}

// nominal work durations per task type, in engine-seconds.
var workDurations = map[Type]float64{
	TypeCleaning:   30,
	TypeVacuuming:  28,
	TypeDishes:     25,
	TypeCooking:    40,
	TypeLaundry:    35,
	TypeOrganizing: 20,
	TypeBedMaking:  15,
	TypeScrubbing:  35,
	TypeSweeping:   18,
	TypeGeneral:    10,
}

// DurationFor returns the nominal work duration for a task type.
func DurationFor(t Type) float64 {
	if d, ok := workDurations[t]; ok {
		return d
	}
	return workDurations[TypeGeneral]
}

// KeywordResolver matches room and verb keywords against the active floor
// plan. It resolves only commands it recognizes; anything else is reported
// back to the user as unresolvable.
type KeywordResolver struct{}

type keywordRule struct {
	keywords []string
	roomID   string
	taskType Type
	desc     string
}

// Rules are ordered: more specific verbs match before generic room words.
var keywordRules = []keywordRule{
	{[]string{"dishes", "sink", "wash up"}, "kitchen", TypeDishes, "Washing the dishes..."},
	{[]string{"cook", "meal", "dinner", "breakfast"}, "kitchen", TypeCooking, "Cooking in the kitchen..."},
	{[]string{"vacuum"}, "", TypeVacuuming, "Vacuuming..."},
	{[]string{"scrub", "shower", "toilet"}, "bathroom", TypeScrubbing, "Scrubbing the bathroom..."},
	// "make" alone lands here; food-related makes are caught by the cooking
	// rule above.
	{[]string{"make bed", "make the bed", "make"}, "bedroom", TypeBedMaking, "Making the bed..."},
	{[]string{"laundry", "clothes"}, "bedroom", TypeLaundry, "Doing the laundry..."},
	{[]string{"organize", "tidy", "desk"}, "bedroom", TypeOrganizing, "Organizing..."},
	{[]string{"sweep"}, "", TypeSweeping, "Sweeping..."},
	{[]string{"clean"}, "", TypeCleaning, "Cleaning..."},
}

// roomWords maps room keywords to plan room ids.
var roomWords = []struct {
	word   string
	roomID string
}{
	{"upstairs bed", "f2-bedroom"},
	{"office", "f2-office"},
	{"kitchen", "kitchen"},
	{"living", "living-room"},
	{"couch", "living-room"},
	{"tv", "living-room"},
	{"bedroom", "bedroom"},
	{"bed", "bedroom"},
	{"bath", "bathroom"},
	{"hall", "hallway"},
}

// Resolve maps a command to a target on the given plan. The room comes from
// an explicit room word when present, otherwise from the matched verb's home
// room. Commands naming rooms the plan doesn't have are unresolvable.
func (KeywordResolver) Resolve(command string, plan *nav.FloorPlan) (Target, bool) {
	cmd := strings.ToLower(command)

	var matched *keywordRule
	for i := range keywordRules {
		for _, kw := range keywordRules[i].keywords {
			if strings.Contains(cmd, kw) {
				matched = &keywordRules[i]
				break
			}
		}
		if matched != nil {
			break
		}
	}

	roomID := ""
	for _, rw := range roomWords {
		if strings.Contains(cmd, rw.word) {
			roomID = rw.roomID
			break
		}
	}

	if matched == nil && roomID == "" {
		return Target{}, false
	}

	taskType := TypeCleaning
	desc := "Cleaning..."
	if matched != nil {
		taskType = matched.taskType
		desc = matched.desc
		if roomID == "" {
			roomID = matched.roomID
		}
	}
	if roomID == "" {
		// A bare verb like "vacuum" defaults to the living room.
		roomID = "living-room"
	}

	room, ok := plan.Room(roomID)
	if !ok {
		return Target{}, false
	}

	return Target{
		RoomID:       room.ID,
		Position:     room.Center,
		Floor:        room.Floor,
		Type:         taskType,
		WorkDuration: DurationFor(taskType),
		Description:  desc,
		Response:     "Got it! I'll " + strings.ToLower(strings.TrimSpace(command)) + ". On my way!",
	}, true
}
