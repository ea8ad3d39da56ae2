package controller

import (
	"net/http"
	"time"

	"race-weekend-api/internal/apperr"
	"race-weekend-api/internal/config"
	"race-weekend-api/internal/identity"
	"race-weekend-api/internal/repository"
	"race-weekend-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Register creates a new account with the user role. Duplicate emails
// fail with email_taken; weak passwords fail validation before hashing.
func Register(c *gin.Context) {
	ctx := c.Request.Context()
	var body struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apperr.Write(c, apperr.BadRequest("Invalid registration payload."))
		return
	}
	if err := identity.ValidatePassword(body.Password); err != nil {
		apperr.Write(c, apperr.BadRequest(err.Error()))
		return
	}

	existing, err := repository.GetUserByEmail(ctx, body.Email)
	if err != nil {
		apperr.Write(c, apperr.Internal())
		return
	}
	if existing != nil {
		apperr.Write(c, apperr.EmailTaken())
		return
	}

	hash, err := identity.HashPassword(body.Password)
	if err != nil {
		logger.Error(ctx, "Password hashing failed", "error", err)
		apperr.Write(c, apperr.Internal())
		return
	}
	user, err := repository.CreateUser(ctx, body.Email, hash, string(identity.RoleUser))
	if err != nil {
		apperr.Write(c, apperr.Internal())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "email": user.Email, "role": user.Role})
}

// Login verifies credentials and issues an access token. The error is
// the same whether the email is unknown or the password is wrong.
func Login(c *gin.Context) {
	ctx := c.Request.Context()
	var body struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apperr.Write(c, apperr.BadRequest("Invalid login payload."))
		return
	}

	user, err := repository.GetUserByEmail(ctx, body.Email)
	if err != nil {
		apperr.Write(c, apperr.Internal())
		return
	}
	if user == nil || !identity.VerifyPassword(body.Password, user.PasswordHash) {
		apperr.Write(c, apperr.InvalidCredentials())
		return
	}
	role, ok := identity.ParseRole(user.Role)
	if !ok {
		logger.Warn(ctx, "User row carries unknown role", "user_id", user.ID, "role", user.Role)
		apperr.Write(c, apperr.InvalidCredentials())
		return
	}

	cfg := config.Get()
	token, err := identity.SignToken(cfg.JWTSecret, user.ID, role,
		time.Duration(cfg.JWTExpiresMin)*time.Minute)
	if err != nil {
		logger.Error(ctx, "Token signing failed", "error", err)
		apperr.Write(c, apperr.Internal())
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}
