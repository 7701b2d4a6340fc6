package dispatch

import (
	"math"
	"sort"

	"github.com/talgya/simbot/internal/agents"
	"github.com/talgya/simbot/internal/tasks"
)

const minutesPerDay = 24 * 60

// AnalysisInterval is how often patterns are recomputed, in sim-minutes.
const AnalysisInterval = 60

// ShouldReanalyze reports whether enough simulated time has passed since the
// last analysis pass.
func ShouldReanalyze(s State, nowSimMinutes float64) bool {
	return nowSimMinutes-s.LastAnalyzedAt >= AnalysisInterval
}

// Analyze recomputes every room pattern, the global peak activity hour, and
// the per-robot efficiency table from the event log. The input state is not
// mutated; running Analyze twice over the same log yields identical results.
func Analyze(s State, nowSimMinutes float64) State {
	out := s
	out.Normalize()
	out.RoomPatterns = make(map[string]RoomPattern)
	out.LastAnalyzedAt = nowSimMinutes

	byRoom := make(map[string][]Event)
	var roomOrder []string
	for _, ev := range s.Events {
		if _, seen := byRoom[ev.RoomID]; !seen {
			roomOrder = append(roomOrder, ev.RoomID)
		}
		byRoom[ev.RoomID] = append(byRoom[ev.RoomID], ev)
	}

	for _, roomID := range roomOrder {
		out.RoomPatterns[roomID] = analyzeRoom(roomID, byRoom[roomID])
	}

	// Global peak hour across all user interactions.
	var globalHourly [24]int
	for _, t := range s.UserInteractionTimes {
		globalHourly[hourOf(t)]++
	}
	out.PeakActivityHour = peakHour(globalHourly, 9)

	out.Efficiency = buildEfficiency(s.Events)
	out.Insights = generateInsights(out, nowSimMinutes)
	return out
}

func analyzeRoom(roomID string, events []Event) RoomPattern {
	p := RoomPattern{RoomID: roomID, TotalTaskCount: len(events)}

	var userDirtSum float64
	var cleanSum float64
	taskCounts := make(map[string]int)

	for _, ev := range events {
		p.HourlyActivity[hourOf(ev.TimeOfDay)]++
		if ev.Source == tasks.SourceUser {
			userDirtSum += 100 - ev.CleanlinessBefore
			p.UserInteractionCount++
		}
		taskCounts[ev.TaskType]++
		cleanSum += ev.CleanlinessBefore
	}

	if p.UserInteractionCount > 0 {
		p.AvgDirtinessAtUserAction = userDirtSum / float64(p.UserInteractionCount)
	}

	p.PeakHour = peakHour(p.HourlyActivity, 9)

	avgCleanliness := 75.0
	if len(events) > 0 {
		avgCleanliness = cleanSum / float64(len(events))
	}
	p.AvgDirtyRate = math.Max(0.05, (100-avgCleanliness)/6)

	// Service one hour ahead of the rush, snapped to the half hour.
	optimalHour := (p.PeakHour - 1 + 24) % 24
	p.OptimalCleanTime = float64(optimalHour*60 + 30)

	p.TopTasks = topTasks(taskCounts, 3)
	return p
}

func topTasks(counts map[string]int, n int) []TaskCount {
	out := make([]TaskCount, 0, len(counts))
	for taskType, count := range counts {
		out = append(out, TaskCount{TaskType: taskType, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].TaskType < out[j].TaskType
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func buildEfficiency(events []Event) map[agents.RobotID][]Efficiency {
	type acc struct {
		total float64
		count int
	}
	perRobot := make(map[agents.RobotID]map[string]*acc)
	var robotOrder []agents.RobotID

	for _, ev := range events {
		if ev.RobotID == "" || ev.WorkDuration <= 0 {
			continue
		}
		byTask, ok := perRobot[ev.RobotID]
		if !ok {
			byTask = make(map[string]*acc)
			perRobot[ev.RobotID] = byTask
			robotOrder = append(robotOrder, ev.RobotID)
		}
		a, ok := byTask[ev.TaskType]
		if !ok {
			a = &acc{}
			byTask[ev.TaskType] = a
		}
		a.total += ev.WorkDuration
		a.count++
	}

	out := make(map[agents.RobotID][]Efficiency, len(perRobot))
	for _, robotID := range robotOrder {
		byTask := perRobot[robotID]
		taskTypes := make([]string, 0, len(byTask))
		for taskType := range byTask {
			taskTypes = append(taskTypes, taskType)
		}
		sort.Strings(taskTypes)

		entries := make([]Efficiency, 0, len(taskTypes))
		for _, taskType := range taskTypes {
			a := byTask[taskType]
			entries = append(entries, Efficiency{
				RobotID:           robotID,
				TaskType:          taskType,
				CompletionCount:   a.count,
				AvgWorkDuration:   a.total / float64(a.count),
				TotalWorkDuration: a.total,
			})
		}
		out[robotID] = entries
	}
	return out
}

func hourOf(timeOfDay float64) int {
	h := int(timeOfDay/60) % 24
	if h < 0 {
		h += 24
	}
	return h
}

func peakHour(hourly [24]int, fallback int) int {
	best, bestCount := fallback, 0
	for h := 0; h < 24; h++ {
		if hourly[h] > bestCount {
			bestCount = hourly[h]
			best = h
		}
	}
	return best
}
