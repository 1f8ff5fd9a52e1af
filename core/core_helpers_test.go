package core

import (
	"testing"
	"time"

	"pkt.systems/chansync/schema"
)

type recordingSink struct {
	tabEvents     []schema.TabEvent
	channelEvents []schema.ChannelEvent
}

func (s *recordingSink) OnTabEvent(event schema.TabEvent) {
	s.tabEvents = append(s.tabEvents, event)
}

func (s *recordingSink) OnChannelEvent(event schema.ChannelEvent) {
	s.channelEvents = append(s.channelEvents, event)
}

func (s *recordingSink) tabEventsOf(typ schema.TabEventType) []schema.TabEvent {
	var out []schema.TabEvent
	for _, event := range s.tabEvents {
		if event.Type == typ {
			out = append(out, event)
		}
	}
	return out
}

var fixedNow = time.Date(2024, 3, 1, 12, 34, 56, 0, time.UTC)

func testConfig() schema.CoreConfig {
	return schema.CoreConfig{
		Windows: []schema.WindowConfig{
			{Name: "main", Kind: schema.WindowText, Channel: "main", WrapWidth: 80, Height: 10},
			{
				Name:      "chat",
				Kind:      schema.WindowTabbed,
				WrapWidth: 80,
				Height:    10,
				Tabs: []schema.TabConfig{
					{Name: "All", Streams: []schema.ChannelID{"main", "thoughts"}},
					{Name: "Thoughts", Streams: []schema.ChannelID{"thoughts"}},
					{Name: "Quiet", Streams: []schema.ChannelID{"thoughts"}, IgnoreActivity: true},
				},
			},
		},
	}
}

func newTestCore(t *testing.T, cfg schema.CoreConfig) (*Core, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	c, err := New(cfg, Deps{EventSink: sink, Now: func() time.Time { return fixedNow }})
	if err != nil {
		t.Fatalf("new core: %v", err)
	}
	return c, sink
}

func mustWindowDest(t *testing.T, c *Core, name schema.WindowName) Destination {
	t.Helper()
	dest, err := c.WindowDestination(name)
	if err != nil {
		t.Fatalf("window destination %q: %v", name, err)
	}
	return dest
}

func mustTabDest(t *testing.T, c *Core, window schema.WindowName, tab schema.TabName) Destination {
	t.Helper()
	dest, err := c.TabDestination(window, tab)
	if err != nil {
		t.Fatalf("tab destination %q/%q: %v", window, tab, err)
	}
	return dest
}

func mustTabs(t *testing.T, c *Core, window schema.WindowName) []schema.TabSnapshot {
	t.Helper()
	tabs, err := c.Tabs(window)
	if err != nil {
		t.Fatalf("tabs %q: %v", window, err)
	}
	return tabs
}

func rowTexts(rows []schema.Row) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row.Text()
	}
	return out
}
