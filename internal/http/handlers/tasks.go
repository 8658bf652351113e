package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"day-scheduler/internal/service"
)

// ListTasks serves GET /api/tasks?template_id=N; all templates when omitted or 0.
func (h *Handler) ListTasks(c *gin.Context) {
	var templateID *int
	if raw := strings.TrimSpace(c.Query("template_id")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "template_id must be an integer"})
			return
		}
		if id != 0 {
			templateID = &id
		}
	}

	tasks, err := h.Tasks.ListTasks(c.Request.Context(), templateID)
	if err != nil {
		writeError(c, "task", err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *Handler) CreateTask(c *gin.Context) {
	var input service.TaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badJSON(c, err)
		return
	}

	task, err := h.Tasks.CreateTask(c.Request.Context(), input)
	if err != nil {
		writeError(c, "task", err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *Handler) UpdateTask(c *gin.Context) {
	id, ok := parseID(c, "task")
	if !ok {
		return
	}
	var patch service.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badJSON(c, err)
		return
	}

	task, err := h.Tasks.UpdateTask(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, "task", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	id, ok := parseID(c, "task")
	if !ok {
		return
	}
	if err := h.Tasks.DeleteTask(c.Request.Context(), id); err != nil {
		writeError(c, "task", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// Templates serves GET /api/templates.
func (h *Handler) Templates(c *gin.Context) {
	templates, err := h.Tasks.Templates(c.Request.Context())
	if err != nil {
		writeError(c, "template", err)
		return
	}
	c.JSON(http.StatusOK, templates)
}
