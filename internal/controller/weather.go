package controller

import (
	"errors"
	"net/http"
	"strconv"

	"race-weekend-api/internal/apperr"
	"race-weekend-api/internal/repository"
	"race-weekend-api/internal/weather"
	"race-weekend-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// EventWeather serves GET /tasks/event/:id/weather: geocoding plus the
// daily forecast for an event's track location. Provider failures
// become 502; an ungeocodable location is a 404. Mounted on the shared
// wildcard route, so the literal path segments are checked here.
func EventWeather(c *gin.Context) {
	ctx := c.Request.Context()
	if c.Param("id") != "event" || c.Param("leaf") != "weather" {
		apperr.Write(c, apperr.NotFound("Not found."))
		return
	}
	id, err := strconv.ParseInt(c.Param("eventID"), 10, 64)
	if err != nil {
		apperr.Write(c, apperr.NotFound("Event not found."))
		return
	}
	event, err := repository.GetEventByID(ctx, id)
	if err != nil {
		apperr.Write(c, apperr.Internal())
		return
	}
	if event == nil {
		apperr.Write(c, apperr.NotFound("Event not found."))
		return
	}

	lat, lon, err := weather.Geocode(ctx, event.City, event.State)
	if err != nil {
		if errors.Is(err, weather.ErrNoResults) {
			apperr.Write(c, apperr.NotFound("Could not geocode event location."))
			return
		}
		logger.Error(ctx, "Geocoding failed", "error", err, "event_id", event.ID)
		apperr.Write(c, apperr.BadGateway("Geocoding provider failed."))
		return
	}

	daily, err := weather.DailyForecast(ctx, lat, lon)
	if err != nil {
		logger.Error(ctx, "Forecast fetch failed", "error", err, "event_id", event.ID)
		apperr.Write(c, apperr.BadGateway("Weather provider failed."))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"event": gin.H{
			"id":    event.ID,
			"name":  event.Name,
			"track": event.TrackName,
			"city":  event.City,
			"state": event.State,
		},
		"forecast": daily,
	})
}
