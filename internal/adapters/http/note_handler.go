package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/planner/internal/application/presentation"
	"github.com/taskmaster/planner/internal/application/services"
	"github.com/taskmaster/planner/internal/infrastructure/logger"
	"github.com/taskmaster/planner/internal/ports"
)

// NoteHandler handles note-related requests
type NoteHandler struct {
	noteService *services.NoteService
	logger      *logger.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(noteService *services.NoteService, logger *logger.Logger) *NoteHandler {
	return &NoteHandler{
		noteService: noteService,
		logger:      logger,
	}
}

// ListNotes godoc
// @Summary List notes
// @Tags notes
// @Produce json
// @Param type query string false "standard, sticky, checklist, idea or meeting"
// @Param q query string false "Search text"
// @Param sort query string false "created, updated, title or type"
// @Success 200 {object} ListResponse[entities.Note]
// @Security BearerAuth
// @Router /notes [get]
func (h *NoteHandler) ListNotes(c echo.Context) error {
	var q ports.NoteQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	notes, err := h.noteService.QueryNotes(c.Request().Context(), q)
	if err != nil {
		return serviceError(h.logger, c, "List notes", err)
	}

	return c.JSON(http.StatusOK, newListResponse(notes))
}

// CreateNote godoc
// @Summary Create a note
// @Description specificData is interpreted according to type.
// @Tags notes
// @Accept json
// @Produce json
// @Param request body ports.CreateNoteRequest true "Note data"
// @Success 201 {object} entities.Note
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /notes [post]
func (h *NoteHandler) CreateNote(c echo.Context) error {
	var req ports.CreateNoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	note, err := h.noteService.CreateNote(c.Request().Context(), req)
	if err != nil {
		return serviceError(h.logger, c, "Create note", err)
	}

	return c.JSON(http.StatusCreated, note)
}

// GetNote godoc
// @Summary Get note by ID
// @Tags notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} entities.Note
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /notes/{id} [get]
func (h *NoteHandler) GetNote(c echo.Context) error {
	note, err := h.noteService.GetNoteByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(h.logger, c, "Get note", err)
	}

	return c.JSON(http.StatusOK, note)
}

// GetNoteCard godoc
// @Summary Note card
// @Description The note with its content size class and checklist progress.
// @Tags notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} presentation.NoteCard
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /notes/{id}/card [get]
func (h *NoteHandler) GetNoteCard(c echo.Context) error {
	note, err := h.noteService.GetNoteByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(h.logger, c, "Get note card", err)
	}

	return c.JSON(http.StatusOK, presentation.NewNoteCard(*note))
}

// UpdateNote godoc
// @Summary Update a note
// @Description A present specificData replaces the variant data as a whole. The note type never changes.
// @Tags notes
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param request body ports.UpdateNoteRequest true "Changed fields"
// @Success 200 {object} entities.Note
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /notes/{id} [put]
func (h *NoteHandler) UpdateNote(c echo.Context) error {
	var req ports.UpdateNoteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	note, err := h.noteService.ApplyUpdateRequest(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return serviceError(h.logger, c, "Update note", err)
	}

	return c.JSON(http.StatusOK, note)
}

// DeleteNote godoc
// @Summary Delete a note
// @Tags notes
// @Param id path string true "Note ID"
// @Success 204
// @Security BearerAuth
// @Router /notes/{id} [delete]
func (h *NoteHandler) DeleteNote(c echo.Context) error {
	if err := h.noteService.DeleteNote(c.Request().Context(), c.Param("id")); err != nil {
		return serviceError(h.logger, c, "Delete note", err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ClearNotes godoc
// @Summary Delete every note
// @Tags notes
// @Produce json
// @Success 200 {object} MessageResponse
// @Security BearerAuth
// @Router /notes [delete]
func (h *NoteHandler) ClearNotes(c echo.Context) error {
	if err := h.noteService.ClearNotes(c.Request().Context()); err != nil {
		return serviceError(h.logger, c, "Clear notes", err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "All notes deleted"})
}

// GetProgress godoc
// @Summary Checklist progress
// @Tags notes
// @Produce json
// @Param id path string true "Note ID"
// @Success 200 {object} entities.ChecklistProgress
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /notes/{id}/progress [get]
func (h *NoteHandler) GetProgress(c echo.Context) error {
	progress, err := h.noteService.GetChecklistProgress(c.Request().Context(), c.Param("id"))
	if err != nil {
		return serviceError(h.logger, c, "Checklist progress", err)
	}

	return c.JSON(http.StatusOK, progress)
}

// AddItem godoc
// @Summary Add a checklist item
// @Tags notes
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param request body ports.ChecklistItemRequest true "Item"
// @Success 200 {object} entities.Note
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /notes/{id}/items [post]
func (h *NoteHandler) AddItem(c echo.Context) error {
	var req ports.ChecklistItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	note, err := h.noteService.AddChecklistItem(c.Request().Context(), c.Param("id"), req.Text)
	if err != nil {
		return serviceError(h.logger, c, "Add checklist item", err)
	}

	return c.JSON(http.StatusOK, note)
}

// ToggleItem godoc
// @Summary Toggle a checklist item
// @Description An index outside the list leaves the note unchanged.
// @Tags notes
// @Produce json
// @Param id path string true "Note ID"
// @Param index path int true "Item index"
// @Success 200 {object} entities.Note
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /notes/{id}/items/{index}/toggle [post]
func (h *NoteHandler) ToggleItem(c echo.Context) error {
	idx, err := indexParam(c)
	if err != nil {
		return err
	}

	note, err := h.noteService.ToggleChecklistItem(c.Request().Context(), c.Param("id"), idx)
	if err != nil {
		return serviceError(h.logger, c, "Toggle checklist item", err)
	}

	return c.JSON(http.StatusOK, note)
}

// RemoveItem godoc
// @Summary Remove a checklist item
// @Tags notes
// @Produce json
// @Param id path string true "Note ID"
// @Param index path int true "Item index"
// @Success 200 {object} entities.Note
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /notes/{id}/items/{index} [delete]
func (h *NoteHandler) RemoveItem(c echo.Context) error {
	idx, err := indexParam(c)
	if err != nil {
		return err
	}

	note, err := h.noteService.RemoveChecklistItem(c.Request().Context(), c.Param("id"), idx)
	if err != nil {
		return serviceError(h.logger, c, "Remove checklist item", err)
	}

	return c.JSON(http.StatusOK, note)
}

// AddTag godoc
// @Summary Tag a standard note
// @Tags notes
// @Accept json
// @Produce json
// @Param id path string true "Note ID"
// @Param request body ports.TagRequest true "Tag"
// @Success 200 {object} entities.Note
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /notes/{id}/tags [post]
func (h *NoteHandler) AddTag(c echo.Context) error {
	var req ports.TagRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	note, err := h.noteService.AddTagToNote(c.Request().Context(), c.Param("id"), req.Tag)
	if err != nil {
		return serviceError(h.logger, c, "Add tag", err)
	}

	return c.JSON(http.StatusOK, note)
}

// RemoveTag godoc
// @Summary Untag a standard note
// @Tags notes
// @Produce json
// @Param id path string true "Note ID"
// @Param tag path string true "Tag"
// @Success 200 {object} entities.Note
// @Security BearerAuth
// @Router /notes/{id}/tags/{tag} [delete]
func (h *NoteHandler) RemoveTag(c echo.Context) error {
	note, err := h.noteService.RemoveTagFromNote(c.Request().Context(), c.Param("id"), c.Param("tag"))
	if err != nil {
		return serviceError(h.logger, c, "Remove tag", err)
	}

	return c.JSON(http.StatusOK, note)
}

// ExportNotes godoc
// @Summary Export notes as JSON
// @Tags notes
// @Produce json
// @Success 200 {array} entities.Note
// @Security BearerAuth
// @Router /notes/export [get]
func (h *NoteHandler) ExportNotes(c echo.Context) error {
	data, err := h.noteService.ExportNotes(c.Request().Context())
	if err != nil {
		return serviceError(h.logger, c, "Export notes", err)
	}

	return attachment(c, "notes.json", data)
}

// ImportNotes godoc
// @Summary Replace notes from a JSON array
// @Tags notes
// @Accept json
// @Produce json
// @Success 200 {object} ImportResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /notes/import [post]
func (h *NoteHandler) ImportNotes(c echo.Context) error {
	data, err := readImportBody(c)
	if err != nil {
		return err
	}

	n, err := h.noteService.ImportNotes(c.Request().Context(), data)
	if err != nil {
		return serviceError(h.logger, c, "Import notes", err)
	}

	return c.JSON(http.StatusOK, ImportResponse{Imported: n})
}
