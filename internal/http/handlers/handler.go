package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"day-scheduler/internal/logger"
	"day-scheduler/internal/model"
	"day-scheduler/internal/service"
)

func init() {
	// Binding errors name fields the way the API spells them.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := service.RegisterRules(v); err != nil {
			panic(err)
		}
	}
}

// Handler serves the JSON API.
type Handler struct {
	Tasks    *service.TaskService
	Schedule *service.ScheduleService
	Times    *service.TimesService

	loc *time.Location
	now func() time.Time
}

func NewHandler(tasks *service.TaskService, schedule *service.ScheduleService, times *service.TimesService, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{Tasks: tasks, Schedule: schedule, Times: times, loc: loc, now: time.Now}
}

// SetClock overrides the wall clock used to decide what "today" is.
func (h *Handler) SetClock(now func() time.Time) {
	h.now = now
}

func (h *Handler) today() string {
	return model.DayOf(h.now().In(h.loc))
}

// parseID reads the :id path parameter. Non-numeric ids cannot exist, so they are reported as not found.
func parseID(c *gin.Context, resource string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": resource + " not found"})
		return 0, false
	}
	return uint(id), true
}

// badJSON reports a body that failed to decode or bind.
func badJSON(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": bindMessage(err)})
}

func bindMessage(err error) string {
	var (
		validation *service.ValidationError
		typeErr    *json.UnmarshalTypeError
	)
	switch {
	case errors.As(service.AsValidation(err), &validation):
		return validation.Message
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return fmt.Sprintf("%s must be %s, got %s", typeErr.Field, jsonKind(typeErr.Type), typeErr.Value)
	case errors.As(err, &typeErr):
		return "request body must be a JSON object"
	default:
		return "request body is not valid JSON"
	}
}

func jsonKind(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "a value"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "an object"
	}
}

// writeError maps service errors onto status codes. Only the message string reaches the client.
func writeError(c *gin.Context, resource string, err error) {
	err = service.AsValidation(err)
	var (
		validation *service.ValidationError
		upstream   *service.UpstreamError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": resource + " not found"})
	case errors.As(err, &upstream):
		logger.WithContext(c.Request.Context()).Error("upstream lookup failed", "service", upstream.Service, "error", upstream.Err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch " + upstream.Service + " data"})
	default:
		logger.WithContext(c.Request.Context()).Error("request failed", "resource", resource, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process " + resource + " request"})
	}
}
