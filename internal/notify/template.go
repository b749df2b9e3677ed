// Package notify implements the in-app notification feed: a fixed registry
// of message templates and a capacity-bounded, newest-first feed store.
package notify

import (
	"fmt"
	"strings"
)

// Severity is a coarse presentation class for a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
)

// Item is the subject a notification is about.
type Item struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`

	// Progress is a completion percentage, used by progress templates.
	Progress float64 `json:"progress,omitempty"`
}

// Template describes how an event type is rendered.
type Template struct {
	Title    string
	Message  func(Item) string
	Severity Severity
}

// fallbackTemplate renders event types the registry does not know.
var fallbackTemplate = Template{
	Title: "Notification",
	Message: func(it Item) string {
		if it.Title != "" {
			return it.Title
		}
		return "Activity update"
	},
	Severity: SeverityInfo,
}

func quoted(format string) func(Item) string {
	return func(it Item) string { return fmt.Sprintf(format, it.Title) }
}

// Registry maps event-type keys to templates. The zero value is not usable;
// call DefaultRegistry.
type Registry struct {
	templates map[string]Template
}

// DefaultRegistry returns the registry of built-in event types.
func DefaultRegistry() *Registry {
	return &Registry{templates: map[string]Template{
		"task_created":   {"Task Created", quoted(`New task: "%s"`), SeverityInfo},
		"task_updated":   {"Task Updated", quoted(`Updated: "%s"`), SeverityInfo},
		"task_completed": {"Task Completed", quoted(`Completed: "%s"`), SeveritySuccess},
		"task_deleted":   {"Task Deleted", quoted(`Deleted: "%s"`), SeverityWarning},
		"task_due_soon":  {"Task Due Soon", quoted(`"%s" is due soon`), SeverityWarning},
		"task_overdue":   {"Task Overdue", quoted(`"%s" is overdue`), SeverityWarning},

		"goal_created":   {"Goal Created", quoted(`New goal: "%s"`), SeverityInfo},
		"goal_updated":   {"Goal Updated", quoted(`Updated: "%s"`), SeverityInfo},
		"goal_completed": {"Goal Achieved", quoted(`Achieved: "%s"`), SeveritySuccess},
		"goal_deleted":   {"Goal Deleted", quoted(`Deleted: "%s"`), SeverityWarning},
		"goal_progress": {"Goal Progress", func(it Item) string {
			return fmt.Sprintf(`"%s" is %.0f%% complete`, it.Title, it.Progress)
		}, SeverityInfo},

		"reminder_created": {"Reminder Set", quoted(`Reminder set: "%s"`), SeverityInfo},
		"reminder_due":     {"Reminder", quoted(`%s`), SeverityWarning},
		"reminder_snoozed": {"Reminder Snoozed", quoted(`Snoozed: "%s"`), SeverityInfo},
		"reminder_deleted": {"Reminder Deleted", quoted(`Deleted: "%s"`), SeverityWarning},

		"profile_updated": {"Profile Updated", func(Item) string {
			return "Your profile has been updated"
		}, SeveritySuccess},
	}}
}

// Resolve returns the template for eventType, or the generic fallback.
func (r *Registry) Resolve(eventType string) Template {
	if t, ok := r.templates[eventType]; ok {
		return t
	}
	return fallbackTemplate
}

// Has reports whether eventType has a dedicated template.
func (r *Registry) Has(eventType string) bool {
	_, ok := r.templates[eventType]
	return ok
}

// ItemTypeOf derives the subject type from an event-type key: the text before
// the first underscore ("task_completed" -> "task"). Keys without an
// underscore have no derivable type and yield "".
func ItemTypeOf(eventType string) string {
	prefix, _, found := strings.Cut(eventType, "_")
	if !found {
		return ""
	}
	return prefix
}
