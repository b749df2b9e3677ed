package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/JamesPrial/todo-engagement/internal/engagement"
	"github.com/JamesPrial/todo-engagement/internal/notify"
)

// Handlers serves the MCP tools over one feed and one ledger.
type Handlers struct {
	feed   *notify.Feed
	ledger *engagement.Ledger
}

// NewHandlers creates Handlers backed by feed and ledger.
func NewHandlers(feed *notify.Feed, ledger *engagement.Ledger) *Handlers {
	return &Handlers{feed: feed, ledger: ledger}
}

// jsonResult encodes v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// stringArg reads a string argument, accepting JSON numbers for ids.
func stringArg(request mcp.CallToolRequest, name string) string {
	switch v := request.GetArguments()[name].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// itemKey extracts the required item_id and optional item_type.
func itemKey(request mcp.CallToolRequest) (engagement.Key, error) {
	id := stringArg(request, "item_id")
	if id == "" {
		return engagement.Key{}, fmt.Errorf("missing required parameter: item_id")
	}
	return engagement.NewKey(id, stringArg(request, "item_type")), nil
}

// ---------------------------------------------------------------------------
// Notification feed
// ---------------------------------------------------------------------------

// HandleAddNotification renders event_type into a notification and adds it to the feed.
func (h *Handlers) HandleAddNotification(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	eventType := stringArg(request, "event_type")
	if eventType == "" {
		return mcp.NewToolResultError("Missing required parameter: event_type"), nil
	}

	var opts []notify.AddOption
	if !request.GetBool("sound", true) {
		opts = append(opts, notify.Silent())
	}

	n := h.feed.Add(eventType, notify.Item{
		ID:       stringArg(request, "item_id"),
		Title:    stringArg(request, "title"),
		Progress: request.GetFloat("progress", 0),
	}, opts...)
	return jsonResult(n)
}

// HandleMarkNotificationRead marks one notification read.
func (h *Handlers) HandleMarkNotificationRead(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := stringArg(request, "id")
	if id == "" {
		return mcp.NewToolResultError("Missing required parameter: id"), nil
	}
	h.feed.MarkRead(id)
	return mcp.NewToolResultText(fmt.Sprintf("Unread notifications: %d", h.feed.UnreadCount())), nil
}

// HandleMarkAllNotificationsRead marks the whole feed read.
func (h *Handlers) HandleMarkAllNotificationsRead(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.feed.MarkAllRead()
	return mcp.NewToolResultText("Unread notifications: 0"), nil
}

// HandleClearNotification removes one notification.
func (h *Handlers) HandleClearNotification(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := stringArg(request, "id")
	if id == "" {
		return mcp.NewToolResultError("Missing required parameter: id"), nil
	}
	h.feed.Clear(id)
	return mcp.NewToolResultText(fmt.Sprintf("Notifications remaining: %d", len(h.feed.List()))), nil
}

// HandleClearNotifications empties the feed.
func (h *Handlers) HandleClearNotifications(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.feed.ClearAll()
	return mcp.NewToolResultText("Notifications remaining: 0"), nil
}

// HandleListNotifications lists the feed, optionally filtered.
func (h *Handlers) HandleListNotifications(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	itemType := stringArg(request, "item_type")
	itemID := stringArg(request, "item_id")

	switch {
	case itemID != "" && itemType == "":
		return mcp.NewToolResultError("item_id filter requires item_type"), nil
	case itemID != "":
		return jsonResult(h.feed.ByItem(itemID, itemType))
	case itemType != "":
		return jsonResult(h.feed.ByType(itemType))
	default:
		return jsonResult(h.feed.List())
	}
}

// HandleUnreadCount returns the unread count as JSON.
func (h *Handlers) HandleUnreadCount(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]int{"unread": h.feed.UnreadCount()})
}

// ---------------------------------------------------------------------------
// Engagement ledger
// ---------------------------------------------------------------------------

// trackAndReport runs fn for the request's item and returns the updated record.
func (h *Handlers) trackAndReport(request mcp.CallToolRequest, fn func(engagement.Key)) (*mcp.CallToolResult, error) {
	key, err := itemKey(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fn(key)
	return jsonResult(h.ledger.Stats(key))
}

// HandleTrackView records a view.
func (h *Handlers) HandleTrackView(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.trackAndReport(request, h.ledger.TrackView)
}

// HandleTrackCompletion records a completion.
func (h *Handlers) HandleTrackCompletion(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.trackAndReport(request, h.ledger.TrackCompletion)
}

// HandleTrackProgress records a progress change.
func (h *Handlers) HandleTrackProgress(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	oldValue, err := request.RequireFloat("old_value")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: old_value"), nil
	}
	newValue, err := request.RequireFloat("new_value")
	if err != nil {
		return mcp.NewToolResultError("Missing required parameter: new_value"), nil
	}
	if err := engagement.CheckProgress(oldValue, newValue); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return h.trackAndReport(request, func(key engagement.Key) {
		h.ledger.TrackProgress(key, oldValue, newValue)
	})
}

// HandleTrackNotification records a notification interaction.
func (h *Handlers) HandleTrackNotification(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw := stringArg(request, "action")
	if raw == "" {
		return mcp.NewToolResultError("Missing required parameter: action"), nil
	}
	action, err := engagement.ParseAction(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notificationType := stringArg(request, "notification_type")
	return h.trackAndReport(request, func(key engagement.Key) {
		h.ledger.TrackNotification(key, action, notificationType)
	})
}

// HandleGetEngagementStats returns one item's record.
func (h *Handlers) HandleGetEngagementStats(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.trackAndReport(request, func(engagement.Key) {})
}

// HandleClearEngagementItem forgets one item.
func (h *Handlers) HandleClearEngagementItem(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := itemKey(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	h.ledger.ClearItem(key)
	return mcp.NewToolResultText(fmt.Sprintf("Cleared engagement for %s", key)), nil
}

// HandleClearEngagement forgets every item.
func (h *Handlers) HandleClearEngagement(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.ledger.ClearAll()
	return mcp.NewToolResultText("Cleared all engagement records"), nil
}

// HandleEngagementSummary returns totals across the ledger.
func (h *Handlers) HandleEngagementSummary(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.ledger.Summary())
}
