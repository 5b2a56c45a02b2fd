package services

import (
	"context"
	"fmt"
	"time"

	"github.com/taskmaster/planner/internal/application/presentation"
	"github.com/taskmaster/planner/internal/application/query"
	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/infrastructure/clock"
	"github.com/taskmaster/planner/internal/infrastructure/config"
	"github.com/taskmaster/planner/internal/infrastructure/logger"
)

// Dashboard is the full dashboard view, rebuilt on every request.
type Dashboard struct {
	GeneratedAt time.Time                    `json:"generatedAt"`
	Today       entities.Date                `json:"today"`
	Stats       entities.TaskStats           `json:"stats"`
	Overdue     int                          `json:"overdue"`
	Activity    []presentation.ActivityPoint `json:"activity"`
	Priorities  []presentation.Slice         `json:"priorities"`
	Status      []presentation.Slice         `json:"status"`
	Heatmap     presentation.Heatmap         `json:"heatmap"`
	Events      []presentation.CalendarEvent `json:"events"`
	NotesByType map[entities.NoteType]int    `json:"notesByType"`
	RecentNotes []presentation.NoteCard      `json:"recentNotes"`
	UpcomingDue []presentation.TaskCard      `json:"upcoming"`
}

const (
	recentNotesLimit = 5
	upcomingLimit    = 5
)

// DashboardService assembles the dashboard from the task and note services
type DashboardService struct {
	tasks  *TaskService
	notes  *NoteService
	clock  clock.Clock
	cfg    config.DashboardConfig
	logger *logger.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(tasks *TaskService, notes *NoteService, clk clock.Clock, cfg config.DashboardConfig, log *logger.Logger) *DashboardService {
	return &DashboardService{
		tasks:  tasks,
		notes:  notes,
		clock:  clk,
		cfg:    cfg,
		logger: log.WithComponent("dashboard_service"),
	}
}

// Build repairs legacy task timestamps, then projects the current
// collections into a Dashboard.
func (s *DashboardService) Build(ctx context.Context) (*Dashboard, error) {
	if _, err := s.tasks.BackfillTimestamps(ctx); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	notes, err := s.notes.GetAllNotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}

	now := s.clock.Now()
	today := entities.DateOf(now)

	d := &Dashboard{
		GeneratedAt: now.UTC(),
		Today:       today,
		Stats:       ComputeTaskStats(tasks),
		Activity:    presentation.ActivitySeries(tasks, today, s.cfg.ChartDays),
		Priorities:  presentation.PriorityDistribution(tasks),
		Status:      presentation.StatusDistribution(tasks),
		Heatmap:     presentation.ActivityHeatmap(tasks, today, s.cfg.HeatmapDays),
		Events:      presentation.CalendarEvents(tasks, s.cfg.CalendarTitleLimit),
		NotesByType: make(map[entities.NoteType]int, len(entities.NoteTypes)),
	}

	for _, t := range entities.NoteTypes {
		d.NotesByType[t] = 0
	}
	for _, n := range notes {
		d.NotesByType[n.Type]++
	}

	recent := query.SortNotes(notes, query.SortByUpdated)
	if len(recent) > recentNotesLimit {
		recent = recent[:recentNotesLimit]
	}
	d.RecentNotes = presentation.NoteCards(recent)

	d.Overdue = len(query.FilterTasks(tasks, query.TaskOverdue(today)))

	open := query.OrderTasksByDueDate(query.FilterTasks(tasks, query.TaskStatus(entities.StatusActive)))
	upcoming := make([]entities.Task, 0, upcomingLimit)
	for _, t := range open {
		if !t.HasDueDate() || len(upcoming) == upcomingLimit {
			break
		}
		upcoming = append(upcoming, t)
	}
	d.UpcomingDue = presentation.TaskCards(upcoming, today)

	s.logger.Debugw("Dashboard built", "tasks", len(tasks), "notes", len(notes))
	return d, nil
}

// Heatmap returns only the completion heatmap, over days or the configured
// window when days is not positive.
func (s *DashboardService) Heatmap(ctx context.Context, days int) (presentation.Heatmap, error) {
	if days <= 0 {
		days = s.cfg.HeatmapDays
	}
	tasks, err := s.tasks.ListTasks(ctx)
	if err != nil {
		return presentation.Heatmap{}, err
	}
	return presentation.ActivityHeatmap(tasks, clock.Today(s.clock), days), nil
}

// CalendarEvents returns the calendar projection of dated tasks
func (s *DashboardService) CalendarEvents(ctx context.Context) ([]presentation.CalendarEvent, error) {
	tasks, err := s.tasks.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	return presentation.CalendarEvents(tasks, s.cfg.CalendarTitleLimit), nil
}

// CalendarICS renders dated tasks as an iCalendar feed
func (s *DashboardService) CalendarICS(ctx context.Context, name string) (string, error) {
	tasks, err := s.tasks.ListTasks(ctx)
	if err != nil {
		return "", err
	}
	return presentation.TaskCalendarICS(tasks, name, s.clock.Now()), nil
}
