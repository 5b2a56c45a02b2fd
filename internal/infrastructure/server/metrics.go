package server

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taskmaster/planner/internal/adapters/repository"
	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/infrastructure/clock"
	"github.com/taskmaster/planner/internal/infrastructure/logger"
)

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	storageFallbacks := prometheus.NewCounterFunc(
		prometheus.CounterOpts{
			Name: "taskmaster_storage_fallbacks_total",
			Help: "Stored collections or records that could not be decoded and were skipped",
		},
		func() float64 { return float64(s.store.Fallbacks()) },
	)

	registry.MustRegister(
		requestsTotal,
		requestDuration,
		storageFallbacks,
		newCollectionCollector(s.store, s.clock, s.logger),
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Custom metrics middleware
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	// Metrics endpoint
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// collectionCollector reports collection sizes at scrape time, loading each
// collection once per scrape.
type collectionCollector struct {
	store  *repository.Collections
	clock  clock.Clock
	logger *logger.Logger

	tasks   *prometheus.Desc
	overdue *prometheus.Desc
	notes   *prometheus.Desc
}

func newCollectionCollector(store *repository.Collections, clk clock.Clock, log *logger.Logger) *collectionCollector {
	return &collectionCollector{
		store:   store,
		clock:   clk,
		logger:  log,
		tasks:   prometheus.NewDesc("taskmaster_tasks", "Tasks by completion status", []string{"status"}, nil),
		overdue: prometheus.NewDesc("taskmaster_tasks_overdue", "Open tasks past their due date", nil, nil),
		notes:   prometheus.NewDesc("taskmaster_notes", "Notes by type", []string{"type"}, nil),
	}
}

func (c *collectionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.tasks
	ch <- c.overdue
	ch <- c.notes
}

func (c *collectionCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if tasks, err := c.store.LoadTasks(ctx); err != nil {
		c.logger.Warnw("Metrics scrape could not load tasks", "error", err)
	} else {
		today := clock.Today(c.clock)
		var completed, overdue int
		for i := range tasks {
			if tasks[i].Completed {
				completed++
			}
			if tasks[i].IsOverdue(today) {
				overdue++
			}
		}
		ch <- prometheus.MustNewConstMetric(c.tasks, prometheus.GaugeValue, float64(completed), "completed")
		ch <- prometheus.MustNewConstMetric(c.tasks, prometheus.GaugeValue, float64(len(tasks)-completed), "active")
		ch <- prometheus.MustNewConstMetric(c.overdue, prometheus.GaugeValue, float64(overdue))
	}

	if notes, err := c.store.LoadNotes(ctx); err != nil {
		c.logger.Warnw("Metrics scrape could not load notes", "error", err)
	} else {
		counts := make(map[entities.NoteType]int, len(entities.NoteTypes))
		for i := range notes {
			counts[notes[i].Type]++
		}
		for _, t := range entities.NoteTypes {
			ch <- prometheus.MustNewConstMetric(c.notes, prometheus.GaugeValue, float64(counts[t]), string(t))
		}
	}
}
