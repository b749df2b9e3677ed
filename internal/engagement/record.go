// Package engagement keeps the durable per-item engagement ledger: views,
// completions, progress history and notification interactions for every
// task, goal or reminder the user has touched.
package engagement

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// History caps.
const (
	MaxHistory         = 100
	MaxProgressUpdates = 50
)

// DefaultItemType is used when a caller does not name an item type.
const DefaultItemType = "goal"

// Action is a notification interaction.
type Action string

const (
	ActionSent      Action = "sent"
	ActionViewed    Action = "viewed"
	ActionSnoozed   Action = "snoozed"
	ActionCompleted Action = "completed"
)

// ErrInvalidAction is returned by ParseAction for values outside the four
// notification actions.
var ErrInvalidAction = errors.New("invalid notification action")

// ParseAction normalizes s (trimmed, lower-cased) and checks it is one of
// sent, viewed, snoozed or completed.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case ActionSent, ActionViewed, ActionSnoozed, ActionCompleted:
		return a, nil
	default:
		return "", fmt.Errorf("%w %q. Expected sent, viewed, snoozed or completed", ErrInvalidAction, s)
	}
}

// Key identifies one ledger record. Neither field is validated.
type Key struct {
	ItemID   string
	ItemType string
}

// NewKey builds a Key, substituting DefaultItemType for an empty itemType.
func NewKey(itemID, itemType string) Key {
	if itemType == "" {
		itemType = DefaultItemType
	}
	return Key{ItemID: itemID, ItemType: itemType}
}

// String returns the persisted form "{itemType}_{itemId}".
func (k Key) String() string {
	return k.ItemType + "_" + k.ItemID
}

// HistoryEntry is one notification interaction.
type HistoryEntry struct {
	Timestamp        time.Time      `json:"timestamp"`
	Action           Action         `json:"action"`
	NotificationType string         `json:"notificationType,omitempty"`
	Metadata         map[string]any `json:"metadata"`
}

// ProgressEntry is one progress change.
type ProgressEntry struct {
	Timestamp time.Time `json:"timestamp"`
	OldValue  float64   `json:"oldValue"`
	NewValue  float64   `json:"newValue"`
	Delta     float64   `json:"delta"`
}

// Record is the engagement state of one item. Records held by a Ledger are
// never modified in place; reducers work on a clone.
type Record struct {
	TotalNotifications     int             `json:"totalNotifications"`
	SnoozedCount           int             `json:"snoozedCount"`
	ViewCount              int             `json:"viewCount"`
	LastViewedAt           *time.Time      `json:"lastViewedAt,omitempty"`
	Completions            int             `json:"completions"`
	CompletedAt            *time.Time      `json:"completedAt,omitempty"`
	NotificationTypeCounts map[string]int  `json:"notificationTypeCounts"`
	NotificationHistory    []HistoryEntry  `json:"notificationHistory"`
	ProgressUpdates        []ProgressEntry `json:"progressUpdates"`
	LastNotificationAt     *time.Time      `json:"lastNotificationAt,omitempty"`
	LastNotificationAction Action          `json:"lastNotificationAction,omitempty"`
	LastNotificationType   string          `json:"lastNotificationType,omitempty"`
}

// ZeroRecord returns an empty record with non-nil collections.
func ZeroRecord() Record {
	return Record{
		NotificationTypeCounts: map[string]int{},
		NotificationHistory:    []HistoryEntry{},
		ProgressUpdates:        []ProgressEntry{},
	}
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := r
	out.NotificationTypeCounts = make(map[string]int, len(r.NotificationTypeCounts))
	for k, v := range r.NotificationTypeCounts {
		out.NotificationTypeCounts[k] = v
	}
	out.NotificationHistory = make([]HistoryEntry, len(r.NotificationHistory))
	for i, h := range r.NotificationHistory {
		h.Metadata = cloneMetadata(h.Metadata)
		out.NotificationHistory[i] = h
	}
	out.ProgressUpdates = append(make([]ProgressEntry, 0, len(r.ProgressUpdates)), r.ProgressUpdates...)
	out.LastViewedAt = cloneTime(r.LastViewedAt)
	out.CompletedAt = cloneTime(r.CompletedAt)
	out.LastNotificationAt = cloneTime(r.LastNotificationAt)
	return out
}

// normalize replaces nil collections left by decoding with empty ones.
func (r Record) normalize() Record {
	if r.NotificationTypeCounts == nil {
		r.NotificationTypeCounts = map[string]int{}
	}
	if r.NotificationHistory == nil {
		r.NotificationHistory = []HistoryEntry{}
	}
	for i := range r.NotificationHistory {
		if r.NotificationHistory[i].Metadata == nil {
			r.NotificationHistory[i].Metadata = map[string]any{}
		}
	}
	if r.ProgressUpdates == nil {
		r.ProgressUpdates = []ProgressEntry{}
	}
	return r
}

func cloneMetadata(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Snapshot is an immutable view of the whole ledger keyed by Key.String().
// Callers must not modify it.
type Snapshot map[string]Record
