package schema

// TabSnapshot is a read-only view of tab state for renderers.
type TabSnapshot struct {
	Name           TabName
	Streams        []ChannelID
	ShowTimestamps bool
	IgnoreActivity bool
	Active         bool
	Unread         bool
	UnreadCount    uint64
	Version        uint64
}

// WindowSnapshot is a read-only view of a window.
type WindowSnapshot struct {
	Name      WindowName
	Kind      WindowKind
	Channel   ChannelID
	WrapWidth int
	Height    int
	Tabs      []TabSnapshot
	ActiveTab int
}

// SearchStatus reports the search cursor of a destination.
type SearchStatus struct {
	Active       bool
	Pattern      string
	CurrentMatch int
	TotalMatches int
}

// View is the visible slice of a destination after a sync.
type View struct {
	Rows         []Row
	TotalRows    int
	ScrollOffset int
	AtBottom     bool
	WrapWidth    int
	Search       SearchStatus
}
