// Package hook turns UI-level activity events, delivered as JSON, into calls
// on the notification feed and the engagement ledger.
//
// One event may touch the feed, the ledger, or both:
//
//	{"track":"notification","action":"sent","item_id":42,"item_type":"task",
//	 "notification_type":"task_due_soon","notify":"task_due_soon","title":"Write report"}
package hook

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/JamesPrial/todo-engagement/internal/engagement"
)

// Track kinds accepted in Event.Track.
const (
	TrackView         = "view"
	TrackCompletion   = "completion"
	TrackProgress     = "progress"
	TrackNotification = "notification"
)

// ErrUnknownTrack is returned for an unrecognised Event.Track value.
var ErrUnknownTrack = errors.New("unknown track kind")

// Event is one activity event.
type Event struct {
	// Track selects the ledger operation; empty means feed only.
	Track string `json:"track"`

	// Action is the notification action for Track == "notification".
	Action string `json:"action"`

	ItemID           ItemID  `json:"item_id"`
	ItemType         string  `json:"item_type"`
	Title            string  `json:"title"`
	NotificationType string  `json:"notification_type"`
	OldValue         float64 `json:"old_value"`
	NewValue         float64 `json:"new_value"`

	// Notify, when set, is the event-type key to surface in the feed.
	Notify string `json:"notify"`

	// Sound disables the feed's sound alert when explicitly false.
	Sound *bool `json:"sound"`
}

// ItemID accepts both JSON strings and numbers; the ledger keys on strings.
type ItemID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		*id = ""
	case string:
		*id = ItemID(x)
	case float64:
		*id = ItemID(strconv.FormatFloat(x, 'f', -1, 64))
	default:
		*id = ItemID(fmt.Sprintf("%v", x))
	}
	return nil
}

// ReadEvent decodes one event from r.
//
// Returns (nil, nil) if the event asks for neither a ledger update nor a
// notification; the caller has nothing to do.
func ReadEvent(r io.Reader) (*Event, error) {
	var ev Event
	if err := json.NewDecoder(r).Decode(&ev); err != nil {
		return nil, fmt.Errorf("failed to decode event: %w", err)
	}
	ev.Track = strings.ToLower(strings.TrimSpace(ev.Track))
	ev.Action = strings.ToLower(strings.TrimSpace(ev.Action))
	if ev.Track == "" && ev.Notify == "" {
		return nil, nil
	}
	return &ev, nil
}

// Key returns the ledger key the event is about.
func (e *Event) Key() engagement.Key {
	return engagement.NewKey(string(e.ItemID), e.ItemType)
}

// Validate reports whether the event can be applied.
func (e *Event) Validate() error {
	switch e.Track {
	case "", TrackView, TrackCompletion:
		return nil
	case TrackProgress:
		return engagement.CheckProgress(e.OldValue, e.NewValue)
	case TrackNotification:
		if strings.TrimSpace(e.Action) == "" {
			return errors.New("notification events require an action")
		}
		_, err := engagement.ParseAction(e.Action)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTrack, e.Track)
	}
}
