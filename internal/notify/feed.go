package notify

import (
	"crypto/rand"
	"io"
	"log"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// MaxNotifications bounds the feed; older notifications are dropped first.
const MaxNotifications = 100

// Notification is one entry in the feed.
type Notification struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Message          string    `json:"message"`
	Severity         Severity  `json:"severity"`
	ItemID           string    `json:"itemId"`
	ItemType         string    `json:"itemType"`
	NotificationType string    `json:"notificationType"`
	Read             bool      `json:"read"`
	CreatedAt        time.Time `json:"createdAt"`

	// OnClick is carried for the UI layer. The feed never calls it.
	OnClick func() `json:"-"`
}

// Alerter plays an audible alert. Play must return promptly.
type Alerter interface {
	Play()
}

// Feed is the in-app notification feed. It is safe for concurrent use.
//
// Every mutation builds a new slice and swaps it in, so a reader holding a
// result from List never observes a later change.
type Feed struct {
	registry *Registry
	alerter  Alerter
	logger   *log.Logger
	now      func() time.Time

	mu      sync.RWMutex
	items   []Notification // newest first; never mutated in place
	entropy io.Reader
}

// FeedOption configures a Feed.
type FeedOption func(*Feed)

// WithRegistry replaces the default template registry.
func WithRegistry(r *Registry) FeedOption {
	return func(f *Feed) { f.registry = r }
}

// WithAlerter sets the sound alert played for new notifications.
func WithAlerter(a Alerter) FeedOption {
	return func(f *Feed) { f.alerter = a }
}

// WithLogger sets the logger for template misses and alert failures.
func WithLogger(l *log.Logger) FeedOption {
	return func(f *Feed) { f.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) FeedOption {
	return func(f *Feed) { f.now = now }
}

// NewFeed creates an empty feed.
func NewFeed(opts ...FeedOption) *Feed {
	f := &Feed{
		registry: DefaultRegistry(),
		logger:   log.New(io.Discard, "", 0),
		now:      time.Now,
		items:    []Notification{},
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// AddOption adjusts a single Add call.
type AddOption func(*addParams)

type addParams struct {
	onClick   func()
	playSound bool
}

// WithOnClick attaches a click callback to the notification.
func WithOnClick(fn func()) AddOption {
	return func(p *addParams) { p.onClick = fn }
}

// Silent suppresses the sound alert for this notification.
func Silent() AddOption {
	return func(p *addParams) { p.playSound = false }
}

// Add renders eventType for item, prepends the result to the feed and plays
// the alert unless Silent is given. Add always succeeds; unknown event types
// use the generic template.
func (f *Feed) Add(eventType string, item Item, opts ...AddOption) Notification {
	params := addParams{playSound: true}
	for _, opt := range opts {
		opt(&params)
	}

	if !f.registry.Has(eventType) {
		f.logger.Printf("no template for event type %q, using generic notification", eventType)
	}
	tmpl := f.registry.Resolve(eventType)

	f.mu.Lock()
	now := f.now()
	n := Notification{
		ID:               ulid.MustNew(ulid.Timestamp(now), f.entropy).String(),
		Title:            tmpl.Title,
		Message:          tmpl.Message(item),
		Severity:         tmpl.Severity,
		ItemID:           item.ID,
		ItemType:         ItemTypeOf(eventType),
		NotificationType: eventType,
		CreatedAt:        now,
		OnClick:          params.onClick,
	}

	size := len(f.items) + 1
	if size > MaxNotifications {
		size = MaxNotifications
	}
	next := make([]Notification, 0, size)
	next = append(next, n)
	next = append(next, f.items[:size-1]...)
	f.items = next
	f.mu.Unlock()

	if params.playSound {
		f.alert()
	}
	return n
}

// alert plays the sound without letting a misbehaving Alerter reach the caller.
func (f *Feed) alert() {
	if f.alerter == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			f.logger.Printf("sound alert failed: %v", r)
		}
	}()
	f.alerter.Play()
}

// MarkRead marks the notification with id as read. Unknown ids are ignored.
func (f *Feed) MarkRead(id string) {
	f.update(func(items []Notification) []Notification {
		idx := indexOf(items, id)
		if idx < 0 || items[idx].Read {
			return items
		}
		next := append([]Notification(nil), items...)
		next[idx].Read = true
		return next
	})
}

// MarkAllRead marks every notification as read.
func (f *Feed) MarkAllRead() {
	f.update(func(items []Notification) []Notification {
		next := make([]Notification, len(items))
		for i, n := range items {
			n.Read = true
			next[i] = n
		}
		return next
	})
}

// Clear removes the notification with id. Unknown ids are ignored.
func (f *Feed) Clear(id string) {
	f.update(func(items []Notification) []Notification {
		idx := indexOf(items, id)
		if idx < 0 {
			return items
		}
		next := make([]Notification, 0, len(items)-1)
		next = append(next, items[:idx]...)
		return append(next, items[idx+1:]...)
	})
}

// ClearAll empties the feed.
func (f *Feed) ClearAll() {
	f.update(func([]Notification) []Notification { return []Notification{} })
}

func (f *Feed) update(fn func([]Notification) []Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = fn(f.items)
}

// List returns every notification, newest first.
func (f *Feed) List() []Notification {
	return f.filter(func(Notification) bool { return true })
}

// Get returns the notification with id.
func (f *Feed) Get(id string) (Notification, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if idx := indexOf(f.items, id); idx >= 0 {
		return f.items[idx], true
	}
	return Notification{}, false
}

// ByType returns notifications about items of itemType, newest first.
func (f *Feed) ByType(itemType string) []Notification {
	return f.filter(func(n Notification) bool { return n.ItemType == itemType })
}

// ByItem returns notifications about one item, newest first.
func (f *Feed) ByItem(itemID, itemType string) []Notification {
	return f.filter(func(n Notification) bool {
		return n.ItemID == itemID && n.ItemType == itemType
	})
}

// UnreadCount returns the number of unread notifications.
func (f *Feed) UnreadCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	count := 0
	for _, n := range f.items {
		if !n.Read {
			count++
		}
	}
	return count
}

func (f *Feed) filter(keep func(Notification) bool) []Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Notification, 0, len(f.items))
	for _, n := range f.items {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

func indexOf(items []Notification, id string) int {
	for i, n := range items {
		if n.ID == id {
			return i
		}
	}
	return -1
}
