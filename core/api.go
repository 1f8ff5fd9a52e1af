package core

import "pkt.systems/chansync/schema"

// Producer is the write side of the core, used by ingest and commands.
type Producer interface {
	Append(channel schema.ChannelID, line schema.Line)
	AppendText(channel schema.ChannelID, text string)
	Clear(channel schema.ChannelID)
	Replace(channel schema.ChannelID, lines []schema.Line)
	ChannelVersion(channel schema.ChannelID) uint64
}

// RenderSurface is what a renderer needs to draw destinations.
type RenderSurface interface {
	WindowDestination(window schema.WindowName) (Destination, error)
	TabDestination(window schema.WindowName, tab schema.TabName) (Destination, error)
	SyncAndGetRows(dest Destination) (schema.View, error)
	HandleResize(dest Destination, width int) error
	ResizeWindow(window schema.WindowName, width, height int) error
	SetViewportHeight(dest Destination, height int) error
	Scroll(dest Destination, dir schema.ScrollDirection, amount int) error
	Search(dest Destination, pattern string) (schema.SearchStatus, error)
	NextMatch(dest Destination) (schema.SearchStatus, error)
	PrevMatch(dest Destination) (schema.SearchStatus, error)
	Tick() SyncStats
}

// TabManager manages tabs inside tabbed windows.
type TabManager interface {
	AddTab(window schema.WindowName, cfg schema.TabConfig) error
	RemoveTab(window schema.WindowName, name schema.TabName) bool
	RenameTab(window schema.WindowName, oldName, newName schema.TabName) error
	ReorderTabs(window schema.WindowName, order []schema.TabName) error
	ActivateTab(window schema.WindowName, index int) error
	ActivateTabByName(window schema.WindowName, name schema.TabName) error
	NextTab(window schema.WindowName) error
	PrevTab(window schema.WindowName) error
	NextTabWithUnread(window schema.WindowName) bool
	Tabs(window schema.WindowName) ([]schema.TabSnapshot, error)
	Windows() []schema.WindowSnapshot
	Window(name schema.WindowName) (schema.WindowSnapshot, error)
}

// Surface combines every capability of the core.
type Surface interface {
	Producer
	RenderSurface
	TabManager
}

var _ Surface = (*Core)(nil)
