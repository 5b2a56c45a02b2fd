package presentation

import (
	"github.com/taskmaster/planner/internal/domain/entities"
)

// DefaultHeatmapDays covers twelve full weeks plus today.
const DefaultHeatmapDays = 85

// HeatmapCell is one day of the heatmap.
type HeatmapCell struct {
	Date      entities.Date `json:"date"`
	Weekday   string        `json:"weekday"`
	Count     int           `json:"count"`
	Intensity int           `json:"intensity"`
}

// Heatmap is the daily completion grid, oldest week first. The last week may
// hold fewer than seven cells.
type Heatmap struct {
	Start entities.Date   `json:"start"`
	End   entities.Date   `json:"end"`
	Total int             `json:"total"`
	Weeks [][]HeatmapCell `json:"weeks"`
}

// Intensity maps a daily count to levels 0-4: 0, 1-2, 3-4, 5-6, 7+.
func Intensity(count int) int {
	switch {
	case count <= 0:
		return 0
	case count <= 2:
		return 1
	case count <= 4:
		return 2
	case count <= 6:
		return 3
	default:
		return 4
	}
}

// ActivityHeatmap counts completed tasks by completedAt over the trailing days
// ending today. Completions outside the window are ignored.
func ActivityHeatmap(tasks []entities.Task, today entities.Date, days int) Heatmap {
	if days <= 0 {
		days = DefaultHeatmapDays
	}

	first := today.AddDays(-(days - 1))
	counts := make(map[entities.Date]int, days)
	total := 0
	for _, t := range tasks {
		if !t.Completed || t.CompletedAt == nil {
			continue
		}
		d := t.CompletedAt.Day()
		if d.Before(first) || d.After(today) {
			continue
		}
		counts[d]++
		total++
	}

	hm := Heatmap{Start: first, End: today, Total: total}
	week := make([]HeatmapCell, 0, 7)
	for i := 0; i < days; i++ {
		d := first.AddDays(i)
		week = append(week, HeatmapCell{
			Date:      d,
			Weekday:   weekday(d),
			Count:     counts[d],
			Intensity: Intensity(counts[d]),
		})
		if len(week) == 7 {
			hm.Weeks = append(hm.Weeks, week)
			week = make([]HeatmapCell, 0, 7)
		}
	}
	if len(week) > 0 {
		hm.Weeks = append(hm.Weeks, week)
	}
	return hm
}

func weekday(d entities.Date) string {
	t, err := d.Time()
	if err != nil {
		return ""
	}
	return t.Weekday().String()[:3]
}
