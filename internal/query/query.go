// Package query builds the filtered, sorted, paginated task list query
// and the deterministic cache key that identifies its exact shape.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"race-weekend-api/internal/models"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var sortColumns = map[string]bool{
	"id":       true,
	"priority": true,
	"due_at":   true,
	"title":    true,
}

// Params is the normalized shape of a task list request.
type Params struct {
	Skip      int
	Limit     int
	EventID   *int64
	Category  *string
	Completed *bool
	Priority  *int
	Sort      string
	Order     string
}

// Parse normalizes raw query values. Unknown sort keys, orders,
// categories and malformed numbers are rejected; pagination values are
// defaulted and the page size capped.
func Parse(values url.Values) (Params, error) {
	p := Params{Skip: 0, Limit: DefaultLimit, Sort: "id", Order: "asc"}

	if v := values.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, fmt.Errorf("invalid skip %q", v)
		}
		p.Skip = n
	}
	if v := values.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return p, fmt.Errorf("invalid limit %q", v)
		}
		p.Limit = n
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if v := values.Get("event_id"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return p, fmt.Errorf("invalid event_id %q", v)
		}
		p.EventID = &n
	}
	if v := values.Get("category"); v != "" {
		if !models.TaskCategories[v] {
			return p, fmt.Errorf("invalid category %q", v)
		}
		p.Category = &v
	}
	if v := values.Get("completed"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return p, fmt.Errorf("invalid completed %q", v)
		}
		p.Completed = &b
	}
	if v := values.Get("priority"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 5 {
			return p, fmt.Errorf("invalid priority %q", v)
		}
		p.Priority = &n
	}
	if v := values.Get("sort"); v != "" {
		if !sortColumns[v] {
			return p, fmt.Errorf("invalid sort %q", v)
		}
		p.Sort = v
	}
	if v := values.Get("order"); v != "" {
		if v != "asc" && v != "desc" {
			return p, fmt.Errorf("invalid order %q", v)
		}
		p.Order = v
	}
	return p, nil
}

// CacheKey builds the deterministic cache key for this query shape as
// seen by one principal. Every parameter appears in a fixed order;
// unset filters are encoded as "-" so distinct shapes never collide.
func (p Params) CacheKey(principalID int64) string {
	var b strings.Builder
	b.WriteString("cache:tasks:")
	b.WriteString(strconv.FormatInt(principalID, 10))
	fmt.Fprintf(&b, ":%d:%d", p.Skip, p.Limit)
	b.WriteString(":" + fmtInt64(p.EventID))
	b.WriteString(":" + fmtStr(p.Category))
	b.WriteString(":" + fmtBool(p.Completed))
	b.WriteString(":" + fmtInt(p.Priority))
	b.WriteString(":" + p.Sort + ":" + p.Order)
	return b.String()
}

// SQL renders the SELECT for this query, scoped by the visibility rule:
// callers see team-wide tasks and tasks assigned to them. Admins get no
// blanket visibility in listings; single-item reads handle that case.
func (p Params) SQL(principalID int64) (string, []interface{}) {
	var sb strings.Builder
	args := []interface{}{principalID}
	sb.WriteString(`SELECT id, event_id, assignee_id, title, description, category, priority, completed, due_at, created_at
		FROM tasks WHERE (assignee_id IS NULL OR assignee_id = $1)`)

	if p.EventID != nil {
		args = append(args, *p.EventID)
		fmt.Fprintf(&sb, " AND event_id = $%d", len(args))
	}
	if p.Category != nil {
		args = append(args, *p.Category)
		fmt.Fprintf(&sb, " AND category = $%d", len(args))
	}
	if p.Completed != nil {
		args = append(args, *p.Completed)
		fmt.Fprintf(&sb, " AND completed = $%d", len(args))
	}
	if p.Priority != nil {
		args = append(args, *p.Priority)
		fmt.Fprintf(&sb, " AND priority = $%d", len(args))
	}

	// Sort and order come from closed whitelists; safe to interpolate.
	dir := "ASC"
	if p.Order == "desc" {
		dir = "DESC"
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s", p.Sort, dir)

	args = append(args, p.Limit)
	fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	args = append(args, p.Skip)
	fmt.Fprintf(&sb, " OFFSET $%d", len(args))

	return sb.String(), args
}

func fmtInt64(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func fmtInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func fmtStr(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}

func fmtBool(v *bool) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatBool(*v)
}
