package controller

import (
	"net/http"
	"strconv"
	"time"

	"race-weekend-api/internal/apperr"
	"race-weekend-api/internal/middleware"
	"race-weekend-api/internal/models"
	"race-weekend-api/internal/policy"
	"race-weekend-api/internal/repository"

	"github.com/gin-gonic/gin"
)

// CreateEvent (admin) adds a race weekend to the calendar.
func CreateEvent(c *gin.Context) {
	ctx := c.Request.Context()
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		apperr.Write(c, apperr.Unauthorized("Missing bearer token."))
		return
	}
	if !policy.CanCreateEvent(principal) {
		apperr.Write(c, apperr.Forbidden("Admin role required."))
		return
	}

	var body struct {
		Name      string `json:"name" binding:"required,max=200"`
		TrackName string `json:"track_name" binding:"required,max=200"`
		City      string `json:"city" binding:"required,max=100"`
		State     string `json:"state" binding:"required,min=2,max=50"`
		EventDate string `json:"event_date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apperr.Write(c, apperr.BadRequest("Invalid event payload."))
		return
	}
	eventDate, err := time.Parse(time.DateOnly, body.EventDate)
	if err != nil {
		apperr.Write(c, apperr.BadRequest("event_date must be YYYY-MM-DD."))
		return
	}

	event := models.Event{
		Name:      body.Name,
		TrackName: body.TrackName,
		City:      body.City,
		State:     body.State,
		EventDate: eventDate,
	}
	if err := repository.CreateEvent(ctx, &event); err != nil {
		apperr.Write(c, apperr.Internal())
		return
	}
	c.JSON(http.StatusCreated, event)
}

// ListEvents returns all events ordered by date.
func ListEvents(c *gin.Context) {
	events, err := repository.ListEvents(c.Request.Context())
	if err != nil {
		apperr.Write(c, apperr.Internal())
		return
	}
	c.JSON(http.StatusOK, events)
}

// GetEvent returns a single event by id.
func GetEvent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		apperr.Write(c, apperr.NotFound("Event not found."))
		return
	}
	event, err := repository.GetEventByID(c.Request.Context(), id)
	if err != nil {
		apperr.Write(c, apperr.Internal())
		return
	}
	if event == nil {
		apperr.Write(c, apperr.NotFound("Event not found."))
		return
	}
	c.JSON(http.StatusOK, event)
}
