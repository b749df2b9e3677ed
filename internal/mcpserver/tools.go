// Package mcpserver exposes the notification feed and engagement ledger as
// MCP tools.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// itemParams adds the item_id/item_type pair shared by the ledger tools.
func itemParams(required bool) []mcp.ToolOption {
	idOpts := []mcp.PropertyOption{mcp.Description("Identifier of the task, goal or reminder")}
	if required {
		idOpts = append(idOpts, mcp.Required())
	}
	return []mcp.ToolOption{
		mcp.WithString("item_id", idOpts...),
		mcp.WithString("item_type",
			mcp.Description("Item type such as task, goal or reminder (defaults to 'goal')")),
	}
}

func newTool(name, description string, opts ...mcp.ToolOption) mcp.Tool {
	return mcp.NewTool(name, append([]mcp.ToolOption{mcp.WithDescription(description)}, opts...)...)
}

// ---------------------------------------------------------------------------
// Notification feed
// ---------------------------------------------------------------------------

// addNotificationTool returns a tool definition for adding a notification to the feed.
func addNotificationTool() mcp.Tool {
	return newTool("add_notification",
		"Render an event (for example task_completed) into a notification and add it to the feed. Unknown event types produce a generic notification.",
		mcp.WithString("event_type",
			mcp.Required(),
			mcp.Description("Event type key, e.g. task_created, goal_progress, reminder_due")),
		mcp.WithString("item_id",
			mcp.Description("Identifier of the item the event is about")),
		mcp.WithString("title",
			mcp.Description("Item title used in the message")),
		mcp.WithNumber("progress",
			mcp.Description("Progress percentage for goal_progress events")),
		mcp.WithBoolean("sound",
			mcp.Description("Play the sound alert (default true)")),
	)
}

// markNotificationReadTool returns a tool definition for marking one notification read.
func markNotificationReadTool() mcp.Tool {
	return newTool("mark_notification_read",
		"Mark a notification as read. Unknown ids are ignored.",
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Notification id")),
	)
}

// markAllNotificationsReadTool returns a tool definition for marking the whole feed read.
func markAllNotificationsReadTool() mcp.Tool {
	return newTool("mark_all_notifications_read",
		"Mark every notification in the feed as read.",
	)
}

// clearNotificationTool returns a tool definition for removing one notification.
func clearNotificationTool() mcp.Tool {
	return newTool("clear_notification",
		"Remove a notification from the feed. Unknown ids are ignored.",
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Notification id")),
	)
}

// clearNotificationsTool returns a tool definition for emptying the feed.
func clearNotificationsTool() mcp.Tool {
	return newTool("clear_notifications",
		"Remove every notification from the feed.",
	)
}

// listNotificationsTool returns a tool definition for listing the feed.
func listNotificationsTool() mcp.Tool {
	return newTool("list_notifications",
		"List notifications newest first. Filter by item_type, or by item_id together with item_type.",
		mcp.WithString("item_type",
			mcp.Description("Only notifications about items of this type")),
		mcp.WithString("item_id",
			mcp.Description("Only notifications about this item (requires item_type)")),
	)
}

// unreadCountTool returns a tool definition for counting unread notifications.
func unreadCountTool() mcp.Tool {
	return newTool("unread_count",
		"Return the number of unread notifications.",
	)
}

// ---------------------------------------------------------------------------
// Engagement ledger
// ---------------------------------------------------------------------------

// trackViewTool returns a tool definition for recording an item view.
func trackViewTool() mcp.Tool {
	return newTool("track_view",
		"Record that the user viewed an item.",
		itemParams(true)...,
	)
}

// trackCompletionTool returns a tool definition for recording an item completion.
func trackCompletionTool() mcp.Tool {
	return newTool("track_completion",
		"Record that the user completed an item.",
		itemParams(true)...,
	)
}

// trackProgressTool returns a tool definition for recording a progress change.
func trackProgressTool() mcp.Tool {
	opts := append(itemParams(true),
		mcp.WithNumber("old_value",
			mcp.Required(),
			mcp.Description("Progress before the change")),
		mcp.WithNumber("new_value",
			mcp.Required(),
			mcp.Description("Progress after the change")),
	)
	return newTool("track_progress",
		"Record a progress change on an item. The delta is new_value minus old_value.",
		opts...,
	)
}

// trackNotificationTool returns a tool definition for recording a notification interaction.
func trackNotificationTool() mcp.Tool {
	opts := append(itemParams(true),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Enum("sent", "viewed", "snoozed", "completed"),
			mcp.Description("Interaction with the notification")),
		mcp.WithString("notification_type",
			mcp.Description("Notification type, e.g. task_due_soon")),
	)
	return newTool("track_notification",
		"Record a notification being sent, viewed, snoozed or acted on.",
		opts...,
	)
}

// getEngagementStatsTool returns a tool definition for reading one item's record.
func getEngagementStatsTool() mcp.Tool {
	return newTool("get_engagement_stats",
		"Return the engagement record for an item. Items never tracked return an all-zero record.",
		itemParams(true)...,
	)
}

// clearEngagementItemTool returns a tool definition for forgetting one item.
func clearEngagementItemTool() mcp.Tool {
	return newTool("clear_engagement_item",
		"Delete the engagement record for an item.",
		itemParams(true)...,
	)
}

// clearEngagementTool returns a tool definition for forgetting every item.
func clearEngagementTool() mcp.Tool {
	return newTool("clear_engagement",
		"Delete every engagement record.",
	)
}

// engagementSummaryTool returns a tool definition for the ledger-wide totals.
func engagementSummaryTool() mcp.Tool {
	return newTool("engagement_summary",
		"Return totals across every tracked item.",
	)
}
