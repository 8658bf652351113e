package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"day-scheduler/internal/service"
)

// ListSchedule serves today's entries ordered by start time.
func (h *Handler) ListSchedule(c *gin.Context) {
	entries, err := h.Schedule.ListEntries(c.Request.Context(), h.today())
	if err != nil {
		writeError(c, "schedule entry", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// CreateEntry adds an entry to today's schedule.
func (h *Handler) CreateEntry(c *gin.Context) {
	var input service.EntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badJSON(c, err)
		return
	}

	entry, err := h.Schedule.CreateEntry(c.Request.Context(), h.today(), input)
	if err != nil {
		writeError(c, "schedule entry", err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) UpdateEntry(c *gin.Context) {
	id, ok := parseID(c, "schedule entry")
	if !ok {
		return
	}
	var patch service.EntryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badJSON(c, err)
		return
	}

	entry, err := h.Schedule.UpdateEntry(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, "schedule entry", err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h *Handler) DeleteEntry(c *gin.Context) {
	id, ok := parseID(c, "schedule entry")
	if !ok {
		return
	}
	if err := h.Schedule.DeleteEntry(c.Request.Context(), id); err != nil {
		writeError(c, "schedule entry", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Schedule entry deleted successfully"})
}

type syncRequest struct {
	TemplateID *int `json:"template_id"`
}

// SyncSchedule rebuilds today's schedule from a template. The body is optional.
func (h *Handler) SyncSchedule(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badJSON(c, err)
		return
	}
	templateID := service.MinTemplateID
	if req.TemplateID != nil {
		templateID = *req.TemplateID
	}

	entries, err := h.Schedule.Sync(c.Request.Context(), h.today(), templateID)
	if err != nil {
		writeError(c, "schedule", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Sunset serves GET /api/sunset?lat=&lng=.
func (h *Handler) Sunset(c *gin.Context) {
	times, err := h.Times.Lookup(c.Request.Context(), c.Query("lat"), c.Query("lng"))
	if err != nil {
		writeError(c, "sunset", err)
		return
	}
	c.JSON(http.StatusOK, times)
}
