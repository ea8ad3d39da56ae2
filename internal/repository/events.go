package repository

import (
	"context"
	"database/sql"
	"errors"

	"race-weekend-api/internal/database"
	"race-weekend-api/internal/models"
	"race-weekend-api/pkg/logger"
)

// CreateEvent inserts an event and returns it with its assigned id.
func CreateEvent(ctx context.Context, e *models.Event) error {
	db := database.DB(ctx)
	if db == nil {
		return sql.ErrConnDone
	}
	err := db.QueryRowContext(ctx,
		`INSERT INTO events (name, track_name, city, state, event_date)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		e.Name, e.TrackName, e.City, e.State, e.EventDate).Scan(&e.ID)
	if err != nil {
		logger.Error(ctx, "Repository CreateEvent failed", "error", err)
		return err
	}
	return nil
}

// GetEventByID loads an event row. Returns (nil, nil) when absent.
func GetEventByID(ctx context.Context, id int64) (*models.Event, error) {
	db := database.DB(ctx)
	if db == nil {
		return nil, sql.ErrConnDone
	}
	var e models.Event
	err := db.QueryRowContext(ctx,
		`SELECT id, name, track_name, city, state, event_date FROM events WHERE id = $1`, id).
		Scan(&e.ID, &e.Name, &e.TrackName, &e.City, &e.State, &e.EventDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Error(ctx, "Repository GetEventByID failed", "error", err, "id", id)
		return nil, err
	}
	return &e, nil
}

// ListEvents returns all events ordered by date.
func ListEvents(ctx context.Context) ([]models.Event, error) {
	db := database.DB(ctx)
	if db == nil {
		return nil, sql.ErrConnDone
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, track_name, city, state, event_date FROM events ORDER BY event_date`)
	if err != nil {
		logger.Error(ctx, "Repository ListEvents failed", "error", err)
		return nil, err
	}
	defer rows.Close()
	events := []models.Event{}
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.TrackName, &e.City, &e.State, &e.EventDate); err != nil {
			logger.Error(ctx, "Repository scan event failed", "error", err)
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
