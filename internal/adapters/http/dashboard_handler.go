package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/planner/internal/application/services"
	"github.com/taskmaster/planner/internal/infrastructure/logger"
)

// DashboardHandler serves the dashboard, calendar and global search views
type DashboardHandler struct {
	dashboardService *services.DashboardService
	searchService    *services.SearchService
	calendarName     string
	logger           *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService, searchService *services.SearchService, calendarName string, logger *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		searchService:    searchService,
		calendarName:     calendarName,
		logger:           logger,
	}
}

// GetDashboard godoc
// @Summary Dashboard
// @Description Stats, activity chart, distributions, heatmap, calendar events and recent notes.
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.Dashboard
// @Security BearerAuth
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c echo.Context) error {
	d, err := h.dashboardService.Build(c.Request().Context())
	if err != nil {
		return serviceError(h.logger, c, "Build dashboard", err)
	}

	return c.JSON(http.StatusOK, d)
}

// GetHeatmap godoc
// @Summary Completion heatmap
// @Tags dashboard
// @Produce json
// @Param days query int false "Window size in days"
// @Success 200 {object} presentation.Heatmap
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /dashboard/heatmap [get]
func (h *DashboardHandler) GetHeatmap(c echo.Context) error {
	days := 0
	if s := c.QueryParam("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 366 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid days parameter")
		}
		days = n
	}

	hm, err := h.dashboardService.Heatmap(c.Request().Context(), days)
	if err != nil {
		return serviceError(h.logger, c, "Heatmap", err)
	}

	return c.JSON(http.StatusOK, hm)
}

// GetCalendarEvents godoc
// @Summary Calendar events
// @Description One event per task with a due date.
// @Tags calendar
// @Produce json
// @Success 200 {array} presentation.CalendarEvent
// @Security BearerAuth
// @Router /calendar/events [get]
func (h *DashboardHandler) GetCalendarEvents(c echo.Context) error {
	events, err := h.dashboardService.CalendarEvents(c.Request().Context())
	if err != nil {
		return serviceError(h.logger, c, "Calendar events", err)
	}

	return c.JSON(http.StatusOK, events)
}

// GetCalendarICS godoc
// @Summary iCalendar feed
// @Tags calendar
// @Produce text/calendar
// @Success 200 {string} string
// @Security BearerAuth
// @Router /calendar.ics [get]
func (h *DashboardHandler) GetCalendarICS(c echo.Context) error {
	ics, err := h.dashboardService.CalendarICS(c.Request().Context(), h.calendarName)
	if err != nil {
		return serviceError(h.logger, c, "Calendar feed", err)
	}

	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}

// Search godoc
// @Summary Search tasks and notes
// @Description Case-insensitive match; titles are returned escaped with matches in <mark>.
// @Tags search
// @Produce json
// @Param q query string false "Search text"
// @Success 200 {object} services.SearchResults
// @Security BearerAuth
// @Router /search [get]
func (h *DashboardHandler) Search(c echo.Context) error {
	res, err := h.searchService.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return serviceError(h.logger, c, "Search", err)
	}

	return c.JSON(http.StatusOK, res)
}
