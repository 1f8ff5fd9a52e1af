package schema

// TabEventType describes tab lifecycle or state changes.
type TabEventType string

const (
	// TabEventCreated indicates a tab was created.
	TabEventCreated TabEventType = "created"
	// TabEventClosed indicates a tab was removed.
	TabEventClosed TabEventType = "closed"
	// TabEventActivated indicates a tab became active.
	TabEventActivated TabEventType = "activated"
	// TabEventRenamed indicates a tab was renamed.
	TabEventRenamed TabEventType = "renamed"
	// TabEventReordered indicates the tab order changed.
	TabEventReordered TabEventType = "reordered"
	// TabEventUnread indicates an inactive tab received its first unread line.
	TabEventUnread TabEventType = "unread"
)

// TabEvent represents a change to a tab or tab list.
type TabEvent struct {
	Window    WindowName
	Type      TabEventType
	Tab       TabSnapshot
	OldName   TabName
	ActiveTab TabName
}

// ChannelEventType describes producer-side channel changes.
type ChannelEventType string

const (
	// ChannelEventCleared indicates a server-driven clear.
	ChannelEventCleared ChannelEventType = "cleared"
	// ChannelEventReplaced indicates a list-style producer replaced all lines.
	ChannelEventReplaced ChannelEventType = "replaced"
)

// ChannelEvent reports a channel change that forces consumers to resync.
type ChannelEvent struct {
	Type    ChannelEventType
	Channel ChannelID
	Version uint64
}
