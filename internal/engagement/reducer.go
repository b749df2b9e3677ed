package engagement

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Reducer derives the next state of one record. It receives a private clone
// and may modify it freely.
type Reducer func(rec Record, now time.Time) Record

// Apply returns a new snapshot equal to prev except that key holds the result
// of fn. prev is not modified. A key absent from prev starts from ZeroRecord.
func Apply(prev Snapshot, key Key, now time.Time, fn Reducer) Snapshot {
	next := make(Snapshot, len(prev)+1)
	for k, v := range prev {
		next[k] = v
	}
	rec, ok := prev[key.String()]
	if !ok {
		rec = ZeroRecord()
	}
	next[key.String()] = fn(rec.Clone(), now)
	return next
}

// Remove returns a new snapshot without key.
func Remove(prev Snapshot, key Key) Snapshot {
	next := make(Snapshot, len(prev))
	for k, v := range prev {
		if k != key.String() {
			next[k] = v
		}
	}
	return next
}

// Viewed counts one view.
func Viewed() Reducer {
	return func(rec Record, now time.Time) Record {
		rec.ViewCount++
		rec.LastViewedAt = &now
		return rec
	}
}

// Completed counts one completion; the latest completion time wins.
func Completed() Reducer {
	return func(rec Record, now time.Time) Record {
		rec.Completions++
		rec.CompletedAt = &now
		return rec
	}
}

// ErrNonFiniteProgress is returned by CheckProgress for values that cannot be
// persisted as JSON numbers.
var ErrNonFiniteProgress = errors.New("progress values must be finite")

// CheckProgress reports whether a progress change from oldValue to newValue,
// and its delta, are finite.
func CheckProgress(oldValue, newValue float64) error {
	for _, v := range []float64{oldValue, newValue, newValue - oldValue} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: old=%v new=%v", ErrNonFiniteProgress, oldValue, newValue)
		}
	}
	return nil
}

// Progressed appends a progress entry, keeping the newest MaxProgressUpdates.
func Progressed(oldValue, newValue float64) Reducer {
	return func(rec Record, now time.Time) Record {
		rec.ProgressUpdates = keepLast(append(rec.ProgressUpdates, ProgressEntry{
			Timestamp: now,
			OldValue:  oldValue,
			NewValue:  newValue,
			Delta:     newValue - oldValue,
		}), MaxProgressUpdates)
		return rec
	}
}

// Notified records a notification interaction. Only sent notifications count
// toward the totals; snoozes have their own counter. notificationType may be
// empty, in which case the previous LastNotificationType is kept.
func Notified(action Action, notificationType string) Reducer {
	return func(rec Record, now time.Time) Record {
		switch action {
		case ActionSent:
			rec.TotalNotifications++
			rec.LastNotificationAt = &now
			if notificationType != "" {
				rec.NotificationTypeCounts[notificationType]++
			}
		case ActionSnoozed:
			rec.SnoozedCount++
		}

		// TODO: populate Metadata (snooze count, progress values) once the
		// history view's expected fields are agreed; it is written empty today.
		rec.NotificationHistory = keepLast(append(rec.NotificationHistory, HistoryEntry{
			Timestamp:        now,
			Action:           action,
			NotificationType: notificationType,
			Metadata:         map[string]any{},
		}), MaxHistory)

		rec.LastNotificationAction = action
		if notificationType != "" {
			rec.LastNotificationType = notificationType
		}
		return rec
	}
}

// keepLast returns the newest n elements of s in a fresh slice when s is over
// the cap.
func keepLast[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return append(make([]T, 0, n), s[len(s)-n:]...)
}
