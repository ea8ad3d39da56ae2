package repository

import (
	"context"
	"database/sql"
	"errors"

	"race-weekend-api/internal/database"
	"race-weekend-api/internal/models"
	"race-weekend-api/pkg/logger"
)

// GetUserByID loads a user row. Returns (nil, nil) when absent.
func GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	db := database.DB(ctx)
	if db == nil {
		return nil, sql.ErrConnDone
	}
	var u models.User
	err := db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Error(ctx, "Repository GetUserByID failed", "error", err, "id", id)
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail loads a user row by email. Returns (nil, nil) when absent.
func GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	db := database.DB(ctx)
	if db == nil {
		return nil, sql.ErrConnDone
	}
	var u models.User
	err := db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Error(ctx, "Repository GetUserByEmail failed", "error", err)
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user and returns it with its assigned id.
func CreateUser(ctx context.Context, email, passwordHash, role string) (*models.User, error) {
	db := database.DB(ctx)
	if db == nil {
		return nil, sql.ErrConnDone
	}
	u := models.User{Email: email, PasswordHash: passwordHash, Role: role}
	err := db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, role) VALUES ($1, $2, $3) RETURNING id`,
		email, passwordHash, role).Scan(&u.ID)
	if err != nil {
		logger.Error(ctx, "Repository CreateUser failed", "error", err)
		return nil, err
	}
	return &u, nil
}
