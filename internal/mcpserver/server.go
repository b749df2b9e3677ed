package mcpserver

import (
	"errors"

	"github.com/mark3labs/mcp-go/server"

	"github.com/JamesPrial/todo-engagement/internal/engagement"
	"github.com/JamesPrial/todo-engagement/internal/notify"
)

// NewServer creates an MCP server with every feed and ledger tool registered.
func NewServer(feed *notify.Feed, ledger *engagement.Ledger) (*server.MCPServer, error) {
	if feed == nil || ledger == nil {
		return nil, errors.New("mcpserver: feed and ledger are required")
	}
	h := NewHandlers(feed, ledger)

	s := server.NewMCPServer(
		"todo-engagement",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	// Notification feed tools
	s.AddTool(addNotificationTool(), h.HandleAddNotification)
	s.AddTool(markNotificationReadTool(), h.HandleMarkNotificationRead)
	s.AddTool(markAllNotificationsReadTool(), h.HandleMarkAllNotificationsRead)
	s.AddTool(clearNotificationTool(), h.HandleClearNotification)
	s.AddTool(clearNotificationsTool(), h.HandleClearNotifications)
	s.AddTool(listNotificationsTool(), h.HandleListNotifications)
	s.AddTool(unreadCountTool(), h.HandleUnreadCount)

	// Engagement ledger tools
	s.AddTool(trackViewTool(), h.HandleTrackView)
	s.AddTool(trackCompletionTool(), h.HandleTrackCompletion)
	s.AddTool(trackProgressTool(), h.HandleTrackProgress)
	s.AddTool(trackNotificationTool(), h.HandleTrackNotification)
	s.AddTool(getEngagementStatsTool(), h.HandleGetEngagementStats)
	s.AddTool(clearEngagementItemTool(), h.HandleClearEngagementItem)
	s.AddTool(clearEngagementTool(), h.HandleClearEngagement)
	s.AddTool(engagementSummaryTool(), h.HandleEngagementSummary)

	return s, nil
}
