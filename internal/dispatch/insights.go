package dispatch

import (
	"fmt"
	"sort"

	"github.com/talgya/simbot/internal/agents"
)

var roomLabels = map[string]string{
	"living-room": "Living Room",
	"kitchen":     "Kitchen",
	"hallway":     "Hallway",
	"bedroom":     "Bedroom",
	"bathroom":    "Bathroom",
	"f2-bedroom":  "Upstairs Bedroom",
	"f2-office":   "Office",
}

var robotLabels = map[agents.RobotID]string{
	agents.RobotSim:     "Sim",
	agents.RobotChef:    "Chef",
	agents.RobotSparkle: "Sparkle",
}

func roomLabel(id string) string {
	if label, ok := roomLabels[id]; ok {
		return label
	}
	return id
}

func robotLabel(id agents.RobotID) string {
	if label, ok := robotLabels[id]; ok {
		return label
	}
	return string(id)
}

// generateInsights derives ranked natural-language findings from freshly
// analyzed patterns. External narrative consumers read these; the engine
// itself never acts on them.
func generateInsights(s State, now float64) []Insight {
	var insights []Insight
	patterns := make([]RoomPattern, 0, len(s.RoomPatterns))
	for _, id := range sortedPatternIDs(s.RoomPatterns) {
		patterns = append(patterns, s.RoomPatterns[id])
	}
	if len(patterns) == 0 {
		return insights
	}

	byDirt := append([]RoomPattern(nil), patterns...)
	sort.SliceStable(byDirt, func(i, j int) bool {
		return byDirt[i].AvgDirtyRate > byDirt[j].AvgDirtyRate
	})

	if byDirt[0].AvgDirtyRate > 1 {
		room := byDirt[0]
		insights = append(insights, Insight{
			ID:       "dirtiest-room",
			Category: "room",
			Text: fmt.Sprintf("%s gets dirty fastest (%.1f/hr) — schedule more frequent cleaning here.",
				roomLabel(room.RoomID), room.AvgDirtyRate),
			Importance:  0.9,
			GeneratedAt: now,
		})
	}

	if len(byDirt) > 1 {
		cleanest := byDirt[len(byDirt)-1]
		if cleanest.AvgDirtyRate < 2 {
			insights = append(insights, Insight{
				ID:       "cleanest-room",
				Category: "room",
				Text: fmt.Sprintf("%s stays clean longest — only needs occasional attention.",
					roomLabel(cleanest.RoomID)),
				Importance:  0.3,
				GeneratedAt: now,
			})
		}
	}

	if s.TotalUserCommands >= 5 {
		insights = append(insights, Insight{
			ID:       "peak-activity",
			Category: "timing",
			Text: fmt.Sprintf("You're most active around %02d:00. Robots now pre-clean before this time.",
				s.PeakActivityHour),
			Importance:  0.8,
			GeneratedAt: now,
		})
	}

	for _, robotID := range sortedEfficiencyIDs(s.Efficiency) {
		entries := s.Efficiency[robotID]
		if len(entries) == 0 {
			continue
		}
		top := entries[0]
		for _, e := range entries[1:] {
			if e.CompletionCount > top.CompletionCount {
				top = e
			}
		}
		if top.CompletionCount >= 3 {
			insights = append(insights, Insight{
				ID:       "robot-specialty-" + string(robotID),
				Category: "robot",
				Text: fmt.Sprintf("%s specializes in %s (%d completions, avg %.0fs).",
					robotLabel(robotID), top.TaskType, top.CompletionCount, top.AvgWorkDuration),
				Importance:  0.6,
				GeneratedAt: now,
			})
		}
	}

	insights = append(insights, efficiencyComparisons(s, now)...)

	for _, p := range patterns {
		if p.UserInteractionCount >= 3 && p.AvgDirtinessAtUserAction > 30 {
			insights = append(insights, Insight{
				ID:       "intervention-" + p.RoomID,
				Category: "trend",
				Text: fmt.Sprintf("You often clean %s manually when it's %.0f%% dirty — adjusting to clean earlier.",
					roomLabel(p.RoomID), p.AvgDirtinessAtUserAction),
				Importance:  0.65,
				GeneratedAt: now,
			})
		}
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Importance > insights[j].Importance
	})
	return insights
}

// efficiencyComparisons finds task types handled by multiple robots and
// calls out meaningful speed gaps.
func efficiencyComparisons(s State, now float64) []Insight {
	type sample struct {
		robotID agents.RobotID
		avg     float64
	}
	byTask := make(map[string][]sample)
	var taskOrder []string

	for _, robotID := range sortedEfficiencyIDs(s.Efficiency) {
		for _, e := range s.Efficiency[robotID] {
			if e.CompletionCount < minEfficiencySamples {
				continue
			}
			if _, seen := byTask[e.TaskType]; !seen {
				taskOrder = append(taskOrder, e.TaskType)
			}
			byTask[e.TaskType] = append(byTask[e.TaskType], sample{robotID, e.AvgWorkDuration})
		}
	}

	var insights []Insight
	for _, taskType := range taskOrder {
		samples := byTask[taskType]
		if len(samples) < 2 {
			continue
		}
		sort.SliceStable(samples, func(i, j int) bool { return samples[i].avg < samples[j].avg })
		fastest, slowest := samples[0], samples[len(samples)-1]
		diff := (slowest.avg - fastest.avg) / slowest.avg * 100
		if diff > 15 {
			insights = append(insights, Insight{
				ID:       "efficiency-" + taskType,
				Category: "efficiency",
				Text: fmt.Sprintf("%s is %.0f%% faster at %s than other robots.",
					robotLabel(fastest.robotID), diff, taskType),
				Importance:  0.7,
				GeneratedAt: now,
			})
		}
	}
	return insights
}
