package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"race-weekend-api/internal/apperr"
	"race-weekend-api/internal/cache"
	"race-weekend-api/internal/identity"
	"race-weekend-api/internal/middleware"
	"race-weekend-api/internal/models"
	"race-weekend-api/internal/policy"
	"race-weekend-api/internal/query"
	"race-weekend-api/internal/queue"
	"race-weekend-api/internal/repository"
	"race-weekend-api/pkg/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/singleflight"
)

var listTasksGroup singleflight.Group

// ListTasks returns the caller's filtered, sorted, paginated checklist.
// Cache-first: the cached serialized payload is returned verbatim on a
// hit; on a miss the query runs once per key (singleflight) and the
// payload is written back with the configured TTL.
func ListTasks(c *gin.Context) {
	ctx := c.Request.Context()
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		apperr.Write(c, apperr.Unauthorized("Missing bearer token."))
		return
	}

	params, err := query.Parse(c.Request.URL.Query())
	if err != nil {
		apperr.Write(c, apperr.BadRequest(err.Error()))
		return
	}

	key := params.CacheKey(principal.ID)
	if b, hit := cache.GetTaskList(ctx, key); hit {
		c.Data(http.StatusOK, "application/json", b)
		return
	}

	v, err, _ := listTasksGroup.Do(key, func() (interface{}, error) {
		tasks, err := repository.ListTasks(context.Background(), principal.ID, params)
		if err != nil {
			return nil, err
		}
		return json.Marshal(tasks)
	})
	if err != nil {
		logger.Error(ctx, "ListTasks query failed", "error", err)
		apperr.Write(c, apperr.Internal())
		return
	}
	b := v.([]byte)
	c.Data(http.StatusOK, "application/json", b)
	go cache.SetTaskList(context.Background(), key, b)
}

// optionalAssignee distinguishes "assignee_id absent" from
// "assignee_id: null" in a PATCH body.
type optionalAssignee struct {
	Set   bool
	Value *int64
}

func (o *optionalAssignee) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

// CreateTask adds a checklist item. The event must exist, and assigning
// to anyone but yourself requires admin.
func CreateTask(c *gin.Context) {
	ctx := c.Request.Context()
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		apperr.Write(c, apperr.Unauthorized("Missing bearer token."))
		return
	}

	var body struct {
		EventID     int64      `json:"event_id" binding:"required"`
		Title       string     `json:"title" binding:"required,max=200"`
		Description string     `json:"description" binding:"max=1000"`
		Category    string     `json:"category" binding:"required"`
		Priority    *int       `json:"priority"`
		DueAt       *time.Time `json:"due_at"`
		AssigneeID  *int64     `json:"assignee_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apperr.Write(c, apperr.BadRequest("Invalid task payload."))
		return
	}
	if !models.TaskCategories[body.Category] {
		apperr.Write(c, apperr.BadRequest("Invalid category."))
		return
	}
	priority := 3
	if body.Priority != nil {
		if *body.Priority < 1 || *body.Priority > 5 {
			apperr.Write(c, apperr.BadRequest("Priority must be between 1 and 5."))
			return
		}
		priority = *body.Priority
	}

	event, err := repository.GetEventByID(ctx, body.EventID)
	if err != nil {
		apperr.Write(c, apperr.Internal())
		return
	}
	if event == nil {
		apperr.Write(c, apperr.BadRequest("Invalid event_id."))
		return
	}

	if !policy.CanAssign(principal, body.AssigneeID) {
		apperr.Write(c, apperr.Forbidden("Only admins can assign tasks to other users."))
		return
	}

	task := models.Task{
		EventID:     body.EventID,
		AssigneeID:  body.AssigneeID,
		Title:       body.Title,
		Description: body.Description,
		Category:    body.Category,
		Priority:    priority,
		DueAt:       body.DueAt,
	}
	if err := repository.CreateTask(ctx, &task); err != nil {
		apperr.Write(c, apperr.Internal())
		return
	}

	notifyAsync(&models.NotificationCommand{
		Kind:        "task_created",
		TaskID:      task.ID,
		Title:       task.Title,
		AssigneeID:  task.AssigneeID,
		RequestedAt: time.Now(),
	})

	c.JSON(http.StatusCreated, task)
}

// GetTask returns a single task the caller may read.
func GetTask(c *gin.Context) {
	principal, task, ok := loadTask(c)
	if !ok {
		return
	}
	if !policy.CanReadTask(principal, task) {
		apperr.Write(c, apperr.Forbidden("You do not have access to this task."))
		return
	}
	c.JSON(http.StatusOK, task)
}

// UpdateTask applies a partial update. Read access is required, and
// re-assigning to a different user requires admin.
func UpdateTask(c *gin.Context) {
	ctx := c.Request.Context()
	principal, task, ok := loadTask(c)
	if !ok {
		return
	}
	if !policy.CanUpdateTask(principal, task) {
		apperr.Write(c, apperr.Forbidden("You do not have access to this task."))
		return
	}

	var body struct {
		Title       *string          `json:"title"`
		Description *string          `json:"description"`
		Category    *string          `json:"category"`
		Priority    *int             `json:"priority"`
		Completed   *bool            `json:"completed"`
		DueAt       *time.Time       `json:"due_at"`
		AssigneeID  optionalAssignee `json:"assignee_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apperr.Write(c, apperr.BadRequest("Invalid task payload."))
		return
	}
	if body.Title != nil && (*body.Title == "" || len(*body.Title) > 200) {
		apperr.Write(c, apperr.BadRequest("Title must be 1-200 characters."))
		return
	}
	if body.Description != nil && len(*body.Description) > 1000 {
		apperr.Write(c, apperr.BadRequest("Description must be at most 1000 characters."))
		return
	}
	if body.Category != nil && !models.TaskCategories[*body.Category] {
		apperr.Write(c, apperr.BadRequest("Invalid category."))
		return
	}
	if body.Priority != nil && (*body.Priority < 1 || *body.Priority > 5) {
		apperr.Write(c, apperr.BadRequest("Priority must be between 1 and 5."))
		return
	}
	if body.AssigneeID.Set && !policy.CanAssign(principal, body.AssigneeID.Value) {
		apperr.Write(c, apperr.Forbidden("Only admins can assign tasks to other users."))
		return
	}

	patch := repository.TaskPatch{
		Title:       body.Title,
		Description: body.Description,
		Category:    body.Category,
		Priority:    body.Priority,
		Completed:   body.Completed,
		DueAt:       body.DueAt,
	}
	if body.AssigneeID.Set {
		patch.AssigneeID = &body.AssigneeID.Value
	}

	updated, err := repository.UpdateTask(ctx, task.ID, patch)
	if err != nil || updated == nil {
		apperr.Write(c, apperr.Internal())
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteTask removes a task. Team-wide tasks are admin-only; assigned
// tasks may be deleted by their assignee or an admin.
func DeleteTask(c *gin.Context) {
	principal, task, ok := loadTask(c)
	if !ok {
		return
	}
	if !policy.CanDeleteTask(principal, task) {
		if task.AssigneeID == nil {
			apperr.Write(c, apperr.Forbidden("Only admins can delete team-wide tasks."))
		} else {
			apperr.Write(c, apperr.Forbidden("You do not have access to this task."))
		}
		return
	}
	if err := repository.DeleteTask(c.Request.Context(), task.ID); err != nil {
		apperr.Write(c, apperr.Internal())
		return
	}
	c.Status(http.StatusNoContent)
}

// RemindTask queues a reminder notification for the assignee. The
// response never waits on delivery.
func RemindTask(c *gin.Context) {
	_, task, ok := loadTask(c)
	if !ok {
		return
	}
	notifyAsync(&models.NotificationCommand{
		Kind:        "reminder",
		TaskID:      task.ID,
		Title:       task.Title,
		AssigneeID:  task.AssigneeID,
		RequestedAt: time.Now(),
	})
	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "task_id": task.ID})
}

// loadTask resolves the principal and the :id task, writing the error
// response itself when either is missing. Existence is checked before
// any authorization so a 404 never reveals more than absence.
func loadTask(c *gin.Context) (identity.Principal, *models.Task, bool) {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		apperr.Write(c, apperr.Unauthorized("Missing bearer token."))
		return identity.Principal{}, nil, false
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		apperr.Write(c, apperr.NotFound("Task not found."))
		return principal, nil, false
	}
	task, err := repository.GetTaskByID(c.Request.Context(), id)
	if err != nil {
		apperr.Write(c, apperr.Internal())
		return principal, nil, false
	}
	if task == nil {
		apperr.Write(c, apperr.NotFound("Task not found."))
		return principal, nil, false
	}
	return principal, task, true
}

// notifyAsync publishes on a background context so client disconnects
// never abort the publish.
func notifyAsync(cmd *models.NotificationCommand) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		queue.PublishNotification(ctx, cmd)
	}()
}
