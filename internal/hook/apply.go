package hook

import (
	"github.com/JamesPrial/todo-engagement/internal/engagement"
	"github.com/JamesPrial/todo-engagement/internal/notify"
)

// Result reports what Apply did.
type Result struct {
	Key          string               `json:"key,omitempty"`
	Record       *engagement.Record   `json:"record,omitempty"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

// Apply performs the event against ledger and, when the event asks for it
// and feed is non-nil, against feed.
func Apply(ev *Event, feed *notify.Feed, ledger *engagement.Ledger) (Result, error) {
	if err := ev.Validate(); err != nil {
		return Result{}, err
	}

	var res Result
	if ev.Track != "" {
		key := ev.Key()
		switch ev.Track {
		case TrackView:
			ledger.TrackView(key)
		case TrackCompletion:
			ledger.TrackCompletion(key)
		case TrackProgress:
			ledger.TrackProgress(key, ev.OldValue, ev.NewValue)
		case TrackNotification:
			action, _ := engagement.ParseAction(ev.Action) // checked by Validate
			ledger.TrackNotification(key, action, ev.NotificationType)
		}
		rec := ledger.Stats(key)
		res.Key = key.String()
		res.Record = &rec
	}

	if ev.Notify != "" && feed != nil {
		var opts []notify.AddOption
		if ev.Sound != nil && !*ev.Sound {
			opts = append(opts, notify.Silent())
		}
		n := feed.Add(ev.Notify, notify.Item{
			ID:       string(ev.ItemID),
			Title:    ev.Title,
			Progress: ev.NewValue,
		}, opts...)
		res.Notification = &n
	}

	return res, nil
}
