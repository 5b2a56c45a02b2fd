package presentation

import (
	"github.com/taskmaster/planner/internal/domain/entities"
)

// DefaultChartDays is the length of the activity series.
const DefaultChartDays = 7

// ActivityPoint is one day of the activity series.
type ActivityPoint struct {
	Date      entities.Date `json:"date"`
	Label     string        `json:"label"`
	Created   int           `json:"created"`
	Completed int           `json:"completed"`
}

// Slice is one labelled segment of a distribution chart.
type Slice struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

// ActivitySeries counts tasks created and completed on each of the trailing
// days ending today, oldest first.
//
// Dates outside the window are clamped: anything earlier lands on the first
// day and anything later on the last. A task with no createdAt counts as
// created today. Only completed tasks with a completedAt count as completed.
func ActivitySeries(tasks []entities.Task, today entities.Date, days int) []ActivityPoint {
	if days <= 0 {
		days = DefaultChartDays
	}

	first := today.AddDays(-(days - 1))
	series := make([]ActivityPoint, days)
	for i := range series {
		d := first.AddDays(i)
		series[i] = ActivityPoint{Date: d, Label: dayLabel(d)}
	}

	bucket := func(d entities.Date) int {
		d = d.Day()
		switch {
		case d.Before(first):
			return 0
		case d.After(today):
			return days - 1
		}
		t, err := d.Time()
		if err != nil {
			return days - 1
		}
		start, _ := first.Time()
		return int(t.Sub(start).Hours() / 24)
	}

	for _, t := range tasks {
		created := t.CreatedAt
		if created.IsZero() {
			created = today
		}
		series[bucket(created)].Created++

		if t.Completed && t.CompletedAt != nil && !t.CompletedAt.IsZero() {
			series[bucket(*t.CompletedAt)].Completed++
		}
	}
	return series
}

func dayLabel(d entities.Date) string {
	t, err := d.Time()
	if err != nil {
		return string(d)
	}
	return t.Format("Jan 2")
}

// PriorityDistribution counts tasks per priority. A missing priority counts
// as medium; anything else unknown is left out.
func PriorityDistribution(tasks []entities.Task) []Slice {
	counts := map[entities.Priority]int{}
	for _, t := range tasks {
		p := t.Priority
		if p == "" {
			p = entities.PriorityMedium
		}
		if p.Valid() {
			counts[p]++
		}
	}

	return []Slice{
		{Key: string(entities.PriorityHigh), Label: "High", Value: counts[entities.PriorityHigh], Color: ColorHigh},
		{Key: string(entities.PriorityMedium), Label: "Medium", Value: counts[entities.PriorityMedium], Color: ColorMedium},
		{Key: string(entities.PriorityLow), Label: "Low", Value: counts[entities.PriorityLow], Color: ColorLow},
	}
}

// StatusDistribution splits tasks into completed and pending.
func StatusDistribution(tasks []entities.Task) []Slice {
	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}
	return []Slice{
		{Key: string(entities.StatusCompleted), Label: "Completed", Value: done, Color: ColorCompleted},
		{Key: string(entities.StatusActive), Label: "Pending", Value: len(tasks) - done, Color: ColorHigh},
	}
}
