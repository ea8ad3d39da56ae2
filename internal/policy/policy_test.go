package policy

import (
	"testing"

	"race-weekend-api/internal/identity"
	"race-weekend-api/internal/models"
)

var (
	alice = identity.Principal{ID: 1, Role: identity.RoleUser}
	bob   = identity.Principal{ID: 2, Role: identity.RoleUser}
	admin = identity.Principal{ID: 99, Role: identity.RoleAdmin}
)

func taskFor(assignee *int64) *models.Task {
	return &models.Task{ID: 10, EventID: 1, AssigneeID: assignee}
}

func ptr(v int64) *int64 { return &v }

func TestCanCreateEvent(t *testing.T) {
	if CanCreateEvent(alice) {
		t.Fatal("non-admin must not create events")
	}
	if !CanCreateEvent(admin) {
		t.Fatal("admin must create events")
	}
}

func TestCanReadTask(t *testing.T) {
	tests := []struct {
		name      string
		principal identity.Principal
		assignee  *int64
		want      bool
	}{
		{"team-wide visible to anyone", alice, nil, true},
		{"own task visible", alice, ptr(1), true},
		{"other's task hidden", alice, ptr(2), false},
		{"other's task visible to admin", admin, ptr(2), true},
		{"team-wide visible to admin", admin, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanReadTask(tt.principal, taskFor(tt.assignee)); got != tt.want {
				t.Fatalf("CanReadTask = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanAssign(t *testing.T) {
	tests := []struct {
		name      string
		principal identity.Principal
		assignee  *int64
		want      bool
	}{
		{"nil assignee allowed", alice, nil, true},
		{"self-assignment allowed", alice, ptr(1), true},
		{"assigning others requires admin", alice, ptr(2), false},
		{"admin assigns anyone", admin, ptr(2), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAssign(tt.principal, tt.assignee); got != tt.want {
				t.Fatalf("CanAssign = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanDeleteTask(t *testing.T) {
	tests := []struct {
		name      string
		principal identity.Principal
		assignee  *int64
		want      bool
	}{
		{"team-wide delete denied to user", alice, nil, false},
		{"team-wide delete allowed to admin", admin, nil, true},
		{"assignee deletes own task", alice, ptr(1), true},
		{"other user cannot delete", bob, ptr(1), false},
		{"admin deletes assigned task", admin, ptr(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanDeleteTask(tt.principal, taskFor(tt.assignee)); got != tt.want {
				t.Fatalf("CanDeleteTask = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanUpdateTaskFollowsReadAccess(t *testing.T) {
	if !CanUpdateTask(alice, taskFor(nil)) {
		t.Fatal("team-wide task must be updatable by any authenticated user")
	}
	if CanUpdateTask(bob, taskFor(ptr(1))) {
		t.Fatal("non-assignee must not update")
	}
	if !CanUpdateTask(admin, taskFor(ptr(1))) {
		t.Fatal("admin must update any task")
	}
}
