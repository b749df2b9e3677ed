package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/JamesPrial/todo-engagement/internal/engagement"
	"github.com/JamesPrial/todo-engagement/internal/notify"
)

// ===========================================================================
// Helpers
// ===========================================================================

type handlerFunc func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func newHandlers(t *testing.T) (*Handlers, *notify.Feed, *engagement.Ledger) {
	t.Helper()
	feed := notify.NewFeed()
	ledger := engagement.NewLedger(nil)
	return NewHandlers(feed, ledger), feed, ledger
}

// call invokes handler with args and fails the test on a Go-level error.
func call(t *testing.T, handler handlerFunc, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	result, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("%s returned Go error: %v", name, err)
	}
	if result == nil {
		t.Fatalf("%s returned nil result", name)
	}
	return result
}

// resultText extracts the text from the first content element of a result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no Content elements")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("result.Content[0] is %T, want mcp.TextContent", result.Content[0])
	}
	return tc.Text
}

// decodeResult unmarshals a successful JSON result into v.
func decodeResult(t *testing.T, result *mcp.CallToolResult, v any) {
	t.Helper()
	if result.IsError {
		t.Fatalf("unexpected error result: %s", resultText(t, result))
	}
	if err := json.Unmarshal([]byte(resultText(t, result)), v); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
}

func assertErrorResult(t *testing.T, result *mcp.CallToolResult, substr string) {
	t.Helper()
	if !result.IsError {
		t.Fatalf("result IsError = false, want true (text %q)", resultText(t, result))
	}
	if text := resultText(t, result); !strings.Contains(text, substr) {
		t.Errorf("error text = %q, want it to contain %q", text, substr)
	}
}

// ===========================================================================
// Notification feed
// ===========================================================================

func Test_HandleAddNotification_RendersTemplate(t *testing.T) {
	t.Parallel()
	h, feed, _ := newHandlers(t)

	result := call(t, h.HandleAddNotification, "add_notification", map[string]any{
		"event_type": "task_completed",
		"item_id":    42,
		"title":      "Write report",
		"sound":      false,
	})

	var n notify.Notification
	decodeResult(t, result, &n)
	if n.Title != "Task Completed" || n.Message != `Completed: "Write report"` {
		t.Errorf("notification = %+v", n)
	}
	if n.ItemID != "42" || n.ItemType != "task" || n.Read {
		t.Errorf("notification fields = %+v", n)
	}
	if feed.UnreadCount() != 1 {
		t.Errorf("UnreadCount() = %d, want 1", feed.UnreadCount())
	}
}

func Test_HandleAddNotification_MissingEventType(t *testing.T) {
	t.Parallel()
	h, feed, _ := newHandlers(t)

	result := call(t, h.HandleAddNotification, "add_notification", map[string]any{})
	assertErrorResult(t, result, "event_type")
	if len(feed.List()) != 0 {
		t.Error("failed call added a notification")
	}
}

func Test_HandleMarkAndClearNotifications(t *testing.T) {
	t.Parallel()
	h, feed, _ := newHandlers(t)

	first := feed.Add("task_created", notify.Item{ID: "1", Title: "A"}, notify.Silent())
	feed.Add("goal_created", notify.Item{ID: "2", Title: "B"}, notify.Silent())

	call(t, h.HandleMarkNotificationRead, "mark_notification_read", map[string]any{"id": first.ID})
	if got, _ := feed.Get(first.ID); !got.Read {
		t.Error("notification not marked read")
	}
	if feed.UnreadCount() != 1 {
		t.Errorf("UnreadCount() = %d, want 1", feed.UnreadCount())
	}

	call(t, h.HandleMarkAllNotificationsRead, "mark_all_notifications_read", nil)
	if feed.UnreadCount() != 0 {
		t.Errorf("UnreadCount() after mark all = %d, want 0", feed.UnreadCount())
	}

	call(t, h.HandleClearNotification, "clear_notification", map[string]any{"id": first.ID})
	if _, ok := feed.Get(first.ID); ok {
		t.Error("notification still present after clear")
	}

	call(t, h.HandleClearNotifications, "clear_notifications", nil)
	if len(feed.List()) != 0 {
		t.Errorf("List() after clear all has %d entries", len(feed.List()))
	}
}

func Test_HandleMarkNotificationRead_MissingID(t *testing.T) {
	t.Parallel()
	h, _, _ := newHandlers(t)
	assertErrorResult(t, call(t, h.HandleMarkNotificationRead, "mark_notification_read", nil), "id")
	assertErrorResult(t, call(t, h.HandleClearNotification, "clear_notification", nil), "id")
}

func Test_HandleListNotifications_Filters(t *testing.T) {
	t.Parallel()
	h, feed, _ := newHandlers(t)

	feed.Add("task_created", notify.Item{ID: "1"}, notify.Silent())
	feed.Add("task_updated", notify.Item{ID: "2"}, notify.Silent())
	feed.Add("goal_created", notify.Item{ID: "1"}, notify.Silent())

	tests := []struct {
		name string
		args map[string]any
		want int
	}{
		{"all", nil, 3},
		{"by type", map[string]any{"item_type": "task"}, 2},
		{"by item", map[string]any{"item_type": "task", "item_id": "1"}, 1},
		{"unknown type", map[string]any{"item_type": "reminder"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []notify.Notification
			decodeResult(t, call(t, h.HandleListNotifications, "list_notifications", tt.args), &got)
			if len(got) != tt.want {
				t.Errorf("list_notifications(%v) returned %d, want %d", tt.args, len(got), tt.want)
			}
		})
	}
}

func Test_HandleListNotifications_ItemWithoutType(t *testing.T) {
	t.Parallel()
	h, _, _ := newHandlers(t)
	result := call(t, h.HandleListNotifications, "list_notifications", map[string]any{"item_id": "1"})
	assertErrorResult(t, result, "item_type")
}

func Test_HandleUnreadCount(t *testing.T) {
	t.Parallel()
	h, feed, _ := newHandlers(t)
	feed.Add("reminder_due", notify.Item{ID: "r"}, notify.Silent())

	var got map[string]int
	decodeResult(t, call(t, h.HandleUnreadCount, "unread_count", nil), &got)
	if got["unread"] != 1 {
		t.Errorf("unread = %d, want 1", got["unread"])
	}
}

// ===========================================================================
// Engagement ledger
// ===========================================================================

func Test_HandleTrackTools_UpdateLedger(t *testing.T) {
	t.Parallel()
	h, _, ledger := newHandlers(t)
	item := map[string]any{"item_id": "42", "item_type": "task"}

	call(t, h.HandleTrackView, "track_view", item)
	call(t, h.HandleTrackCompletion, "track_completion", item)
	call(t, h.HandleTrackProgress, "track_progress", map[string]any{
		"item_id": "42", "item_type": "task", "old_value": 20.0, "new_value": 35.0,
	})

	var rec engagement.Record
	decodeResult(t, call(t, h.HandleTrackNotification, "track_notification", map[string]any{
		"item_id": "42", "item_type": "task", "action": "snoozed", "notification_type": "task_due_soon",
	}), &rec)

	if rec.ViewCount != 1 || rec.Completions != 1 || rec.SnoozedCount != 1 {
		t.Errorf("record = %+v", rec)
	}
	if len(rec.ProgressUpdates) != 1 || rec.ProgressUpdates[0].Delta != 15 {
		t.Errorf("ProgressUpdates = %+v", rec.ProgressUpdates)
	}
	if got := ledger.Stats(engagement.NewKey("42", "task")); got.ViewCount != 1 {
		t.Errorf("ledger ViewCount = %d, want 1", got.ViewCount)
	}
}

func Test_HandleTrackView_DefaultsItemTypeToGoal(t *testing.T) {
	t.Parallel()
	h, _, ledger := newHandlers(t)

	call(t, h.HandleTrackView, "track_view", map[string]any{"item_id": 7})
	keys := ledger.Keys()
	if len(keys) != 1 || keys[0] != "goal_7" {
		t.Errorf("Keys() = %v, want [goal_7]", keys)
	}
}

func Test_HandleTrackTools_InvalidArguments(t *testing.T) {
	t.Parallel()
	h, _, ledger := newHandlers(t)

	tests := []struct {
		name    string
		handler handlerFunc
		args    map[string]any
		substr  string
	}{
		{"view without item", h.HandleTrackView, nil, "item_id"},
		{"progress without values", h.HandleTrackProgress, map[string]any{"item_id": "1"}, "old_value"},
		{"progress without new value", h.HandleTrackProgress, map[string]any{"item_id": "1", "old_value": 1.0}, "new_value"},
		{"notification without action", h.HandleTrackNotification, map[string]any{"item_id": "1"}, "action"},
		{"notification bad action", h.HandleTrackNotification, map[string]any{"item_id": "1", "action": "dismissed"}, "dismissed"},
		{"progress overflow", h.HandleTrackProgress, map[string]any{"item_id": "1", "old_value": 1.7e308, "new_value": -1.7e308}, "finite"},
		{"stats without item", h.HandleGetEngagementStats, nil, "item_id"},
		{"clear without item", h.HandleClearEngagementItem, nil, "item_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertErrorResult(t, call(t, tt.handler, tt.name, tt.args), tt.substr)
		})
	}
	if len(ledger.Keys()) != 0 {
		t.Errorf("invalid calls created records: %v", ledger.Keys())
	}
}

func Test_HandleTrackNotification_UpperCaseAction(t *testing.T) {
	t.Parallel()
	h, _, _ := newHandlers(t)

	var rec engagement.Record
	decodeResult(t, call(t, h.HandleTrackNotification, "track_notification", map[string]any{
		"item_id": "1", "action": "SENT", "notification_type": "goal_progress",
	}), &rec)
	if rec.TotalNotifications != 1 || rec.LastNotificationAction != engagement.ActionSent {
		t.Errorf("record = %+v, want one sent notification", rec)
	}
}

func Test_HandleGetEngagementStats_UnknownItemIsZero(t *testing.T) {
	t.Parallel()
	h, _, ledger := newHandlers(t)

	var rec engagement.Record
	decodeResult(t, call(t, h.HandleGetEngagementStats, "get_engagement_stats", map[string]any{"item_id": "nope"}), &rec)
	if rec.TotalNotifications != 0 || rec.ViewCount != 0 || len(rec.NotificationHistory) != 0 {
		t.Errorf("record = %+v, want zero", rec)
	}
	if len(ledger.Keys()) != 0 {
		t.Error("reading stats created a record")
	}
}

func Test_HandleClearEngagement(t *testing.T) {
	t.Parallel()
	h, _, ledger := newHandlers(t)

	ledger.TrackView(engagement.NewKey("1", "task"))
	ledger.TrackView(engagement.NewKey("2", "task"))

	call(t, h.HandleClearEngagementItem, "clear_engagement_item", map[string]any{"item_id": "1", "item_type": "task"})
	if keys := ledger.Keys(); len(keys) != 1 || keys[0] != "task_2" {
		t.Errorf("Keys() after clear item = %v", keys)
	}

	call(t, h.HandleClearEngagement, "clear_engagement", nil)
	if len(ledger.Keys()) != 0 {
		t.Errorf("Keys() after clear all = %v", ledger.Keys())
	}
}

func Test_HandleEngagementSummary(t *testing.T) {
	t.Parallel()
	h, _, ledger := newHandlers(t)

	a := engagement.NewKey("1", "task")
	b := engagement.NewKey("2", "goal")
	ledger.TrackNotification(a, engagement.ActionSent, "task_due_soon")
	ledger.TrackNotification(a, engagement.ActionSnoozed, "task_due_soon")
	ledger.TrackCompletion(b)
	ledger.TrackProgress(b, 0, 10)
	ledger.TrackView(b)

	var s engagement.Summary
	decodeResult(t, call(t, h.HandleEngagementSummary, "engagement_summary", nil), &s)
	want := engagement.Summary{
		TotalItems:           2,
		TotalNotifications:   1,
		TotalSnoozes:         1,
		TotalCompletions:     1,
		TotalProgressUpdates: 1,
		TotalViews:           1,
	}
	if s != want {
		t.Errorf("summary = %+v, want %+v", s, want)
	}
}
