package mcpserver

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// toolSpec describes the expected shape of a tool definition for table-driven
// testing. requiredParams lists parameter names that MUST appear in the
// schema's "required" array. allParams lists every parameter name that MUST
// exist in the schema's "properties" map.
type toolSpec struct {
	name           string
	wantName       string
	buildFunc      func() mcp.Tool
	requiredParams []string
	allParams      []string
}

// assertToolSpec is a test helper that verifies a tool matches its spec.
func assertToolSpec(t *testing.T, tool mcp.Tool, spec toolSpec) {
	t.Helper()

	// 1. Name
	if tool.Name != spec.wantName {
		t.Errorf("tool Name = %q, want %q", tool.Name, spec.wantName)
	}

	// 2. Description must be non-empty
	if tool.Description == "" {
		t.Errorf("tool %q has empty Description", tool.Name)
	}

	// 3. InputSchema type should be "object"
	if tool.InputSchema.Type != "object" {
		t.Errorf("tool %q InputSchema.Type = %q, want %q", tool.Name, tool.InputSchema.Type, "object")
	}

	// 4. All expected params exist in Properties
	for _, param := range spec.allParams {
		if _, ok := tool.InputSchema.Properties[param]; !ok {
			t.Errorf("tool %q missing expected parameter %q in Properties", tool.Name, param)
		}
	}

	// 5. Required params are in the Required array
	requiredSet := make(map[string]bool, len(tool.InputSchema.Required))
	for _, r := range tool.InputSchema.Required {
		requiredSet[r] = true
	}
	for _, param := range spec.requiredParams {
		if !requiredSet[param] {
			t.Errorf("tool %q: parameter %q should be required but is not in Required array %v",
				tool.Name, param, tool.InputSchema.Required)
		}
	}

	// 6. Params that are NOT in requiredParams should NOT be in Required
	optionalParams := make(map[string]bool)
	for _, p := range spec.allParams {
		optionalParams[p] = true
	}
	for _, r := range spec.requiredParams {
		delete(optionalParams, r)
	}
	for param := range optionalParams {
		if requiredSet[param] {
			t.Errorf("tool %q: parameter %q should be optional but appears in Required array %v",
				tool.Name, param, tool.InputSchema.Required)
		}
	}
}

// ---------------------------------------------------------------------------
// Tool definition tests: table-driven
// ---------------------------------------------------------------------------

func Test_ToolDefinitions_Cases(t *testing.T) {
	t.Parallel()

	item := []string{"item_id", "item_type"}

	tests := []toolSpec{
		{
			name:           "addNotificationTool",
			wantName:       "add_notification",
			buildFunc:      addNotificationTool,
			requiredParams: []string{"event_type"},
			allParams:      []string{"event_type", "item_id", "title", "progress", "sound"},
		},
		{
			name:           "markNotificationReadTool",
			wantName:       "mark_notification_read",
			buildFunc:      markNotificationReadTool,
			requiredParams: []string{"id"},
			allParams:      []string{"id"},
		},
		{
			name:      "markAllNotificationsReadTool",
			wantName:  "mark_all_notifications_read",
			buildFunc: markAllNotificationsReadTool,
		},
		{
			name:           "clearNotificationTool",
			wantName:       "clear_notification",
			buildFunc:      clearNotificationTool,
			requiredParams: []string{"id"},
			allParams:      []string{"id"},
		},
		{
			name:      "clearNotificationsTool",
			wantName:  "clear_notifications",
			buildFunc: clearNotificationsTool,
		},
		{
			name:      "listNotificationsTool",
			wantName:  "list_notifications",
			buildFunc: listNotificationsTool,
			allParams: item,
		},
		{
			name:      "unreadCountTool",
			wantName:  "unread_count",
			buildFunc: unreadCountTool,
		},
		{
			name:           "trackViewTool",
			wantName:       "track_view",
			buildFunc:      trackViewTool,
			requiredParams: []string{"item_id"},
			allParams:      item,
		},
		{
			name:           "trackCompletionTool",
			wantName:       "track_completion",
			buildFunc:      trackCompletionTool,
			requiredParams: []string{"item_id"},
			allParams:      item,
		},
		{
			name:           "trackProgressTool",
			wantName:       "track_progress",
			buildFunc:      trackProgressTool,
			requiredParams: []string{"item_id", "old_value", "new_value"},
			allParams:      []string{"item_id", "item_type", "old_value", "new_value"},
		},
		{
			name:           "trackNotificationTool",
			wantName:       "track_notification",
			buildFunc:      trackNotificationTool,
			requiredParams: []string{"item_id", "action"},
			allParams:      []string{"item_id", "item_type", "action", "notification_type"},
		},
		{
			name:           "getEngagementStatsTool",
			wantName:       "get_engagement_stats",
			buildFunc:      getEngagementStatsTool,
			requiredParams: []string{"item_id"},
			allParams:      item,
		},
		{
			name:           "clearEngagementItemTool",
			wantName:       "clear_engagement_item",
			buildFunc:      clearEngagementItemTool,
			requiredParams: []string{"item_id"},
			allParams:      item,
		},
		{
			name:      "clearEngagementTool",
			wantName:  "clear_engagement",
			buildFunc: clearEngagementTool,
		},
		{
			name:      "engagementSummaryTool",
			wantName:  "engagement_summary",
			buildFunc: engagementSummaryTool,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tool := tt.buildFunc()
			assertToolSpec(t, tool, tt)
		})
	}
}

// ---------------------------------------------------------------------------
// trackNotificationTool: action enum
// ---------------------------------------------------------------------------

func Test_trackNotificationTool_ActionEnum(t *testing.T) {
	t.Parallel()

	tool := trackNotificationTool()
	prop, ok := tool.InputSchema.Properties["action"].(map[string]any)
	if !ok {
		t.Fatalf("action property is %T, want map[string]any", tool.InputSchema.Properties["action"])
	}
	enum, ok := prop["enum"].([]string)
	if !ok {
		t.Fatalf("action enum is %T, want []string", prop["enum"])
	}

	want := map[string]bool{"sent": true, "viewed": true, "snoozed": true, "completed": true}
	if len(enum) != len(want) {
		t.Fatalf("action enum = %v, want %d values", enum, len(want))
	}
	for _, v := range enum {
		if !want[v] {
			t.Errorf("unexpected action enum value %q", v)
		}
	}
}

// ---------------------------------------------------------------------------
// itemParams: fresh slice per call
// ---------------------------------------------------------------------------

func Test_itemParams_IndependentSlices(t *testing.T) {
	t.Parallel()

	a := trackProgressTool()
	b := trackNotificationTool()
	if _, ok := a.InputSchema.Properties["action"]; ok {
		t.Error("track_progress picked up the action parameter from another tool")
	}
	if _, ok := b.InputSchema.Properties["old_value"]; ok {
		t.Error("track_notification picked up old_value from another tool")
	}
}
