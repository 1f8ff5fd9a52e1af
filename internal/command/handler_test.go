package command

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"pkt.systems/chansync/core"
	"pkt.systems/chansync/schema"
	"pkt.systems/pslog"
)

func newTestHandler(t *testing.T) (*Handler, *core.Core) {
	t.Helper()
	c, err := core.New(schema.CoreConfig{
		Windows: []schema.WindowConfig{
			{Name: "main", Kind: schema.WindowText, Channel: "main", WrapWidth: 40, Height: 5},
			{Name: "chat", Kind: schema.WindowTabbed, WrapWidth: 40, Height: 5, Tabs: []schema.TabConfig{
				{Name: "All", Streams: []schema.ChannelID{"main", "thoughts"}},
				{Name: "Thoughts", Streams: []schema.ChannelID{"thoughts"}},
			}},
		},
	}, core.Deps{})
	if err != nil {
		t.Fatalf("core: %v", err)
	}
	return NewHandler(c, HandlerConfig{}), c
}

func mustHandle(t *testing.T, h *Handler, window schema.WindowName, input string) {
	t.Helper()
	handled, err := h.Handle(context.Background(), window, input)
	if err != nil {
		t.Fatalf("Handle(%q): %v", input, err)
	}
	if !handled {
		t.Fatalf("expected %q to be handled", input)
	}
}

func tabNames(t *testing.T, c *core.Core, window schema.WindowName) []string {
	t.Helper()
	tabs, err := c.Tabs(window)
	if err != nil {
		t.Fatalf("tabs: %v", err)
	}
	out := make([]string, len(tabs))
	for i, tab := range tabs {
		out[i] = string(tab.Name)
	}
	return out
}

func statusTexts(c *core.Core) []string {
	lines := c.ChannelLines(DefaultStatusChannel)
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = line.Text()
	}
	return out
}

func TestHandleIgnoresPlainInput(t *testing.T) {
	h, _ := newTestHandler(t)
	handled, err := h.Handle(context.Background(), "main", "just talking")
	if err != nil || handled {
		t.Fatalf("expected plain input to pass through, got handled=%v err=%v", handled, err)
	}
}

func TestHandleUnknownCommand(t *testing.T) {
	h, _ := newTestHandler(t)
	handled, err := h.Handle(context.Background(), "main", "/bogus")
	if !handled || err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got handled=%v err=%v", handled, err)
	}
}

func TestHandleTabAddWithOptions(t *testing.T) {
	h, c := newTestHandler(t)
	mustHandle(t, h, "chat", "/tab add Spam logons,deaths quiet ts")
	tabs, err := c.Tabs("chat")
	if err != nil {
		t.Fatalf("tabs: %v", err)
	}
	if len(tabs) != 3 {
		t.Fatalf("expected 3 tabs, got %d", len(tabs))
	}
	spam := tabs[2]
	if spam.Name != "Spam" || !spam.IgnoreActivity || !spam.ShowTimestamps {
		t.Fatalf("unexpected tab: %+v", spam)
	}
	if len(spam.Streams) != 2 || spam.Streams[1] != "deaths" {
		t.Fatalf("unexpected streams: %+v", spam.Streams)
	}
}

func TestHandleTabAddRejectsUnknownOption(t *testing.T) {
	h, _ := newTestHandler(t)
	if _, err := h.Handle(context.Background(), "chat", "/tab add Spam logons loud"); err == nil {
		t.Fatalf("expected unknown option error")
	}
}

func TestHandleTabAddOnTextWindow(t *testing.T) {
	h, _ := newTestHandler(t)
	_, err := h.Handle(context.Background(), "main", "/tab add Spam logons")
	if !errors.Is(err, schema.ErrNotTabbed) {
		t.Fatalf("expected ErrNotTabbed, got %v", err)
	}
}

func TestHandleTabRemoveLastTabFails(t *testing.T) {
	h, c := newTestHandler(t)
	mustHandle(t, h, "chat", "/tab rm Thoughts")
	if _, err := h.Handle(context.Background(), "chat", "/tab rm All"); err == nil {
		t.Fatalf("expected removing the last tab to fail")
	}
	if got := tabNames(t, c, "chat"); len(got) != 1 || got[0] != "All" {
		t.Fatalf("unexpected tabs: %v", got)
	}
}

func TestHandleTabRenameAndMove(t *testing.T) {
	h, c := newTestHandler(t)
	mustHandle(t, h, "chat", "/tab rename Thoughts Mind")
	mustHandle(t, h, "chat", "/tab move Mind,All")
	if got := strings.Join(tabNames(t, c, "chat"), ","); got != "Mind,All" {
		t.Fatalf("unexpected order: %s", got)
	}
	if _, err := h.Handle(context.Background(), "chat", "/tab move Mind"); !errors.Is(err, schema.ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder, got %v", err)
	}
}

func TestHandleTabNavigation(t *testing.T) {
	h, c := newTestHandler(t)
	mustHandle(t, h, "chat", "/tab go 2")
	if snap, _ := c.Window("chat"); snap.ActiveTab != 1 {
		t.Fatalf("expected tab 2 active, got %d", snap.ActiveTab)
	}
	mustHandle(t, h, "chat", "/tab next")
	if snap, _ := c.Window("chat"); snap.ActiveTab != 0 {
		t.Fatalf("expected wrap to first tab, got %d", snap.ActiveTab)
	}
	mustHandle(t, h, "chat", "/tab go Thoughts")
	mustHandle(t, h, "chat", "/tab prev")
	if snap, _ := c.Window("chat"); snap.ActiveTab != 0 {
		t.Fatalf("expected first tab after prev, got %d", snap.ActiveTab)
	}
	if _, err := h.Handle(context.Background(), "chat", "/tab go 9"); !errors.Is(err, schema.ErrTabIndex) {
		t.Fatalf("expected ErrTabIndex, got %v", err)
	}
}

func TestHandleTabUnread(t *testing.T) {
	h, c := newTestHandler(t)
	mustHandle(t, h, "chat", "/tab unread")
	if got := statusTexts(c); len(got) != 1 || got[0] != "status: no unread tabs" {
		t.Fatalf("expected no unread status, got %v", got)
	}
	c.AppendText("thoughts", "psst")
	mustHandle(t, h, "chat", "/tab unread")
	snap, _ := c.Window("chat")
	if snap.ActiveTab != 1 || snap.Tabs[1].Unread {
		t.Fatalf("expected Thoughts active and read, got %+v", snap)
	}
}

func TestHandleTabList(t *testing.T) {
	h, c := newTestHandler(t)
	c.AppendText("thoughts", "one")
	c.AppendText("thoughts", "two")
	mustHandle(t, h, "chat", "/tab list")
	got := statusTexts(c)
	if len(got) != 2 {
		t.Fatalf("expected 2 lines, got %v", got)
	}
	if got[0] != "*1 All [main,thoughts]" {
		t.Fatalf("unexpected first line: %q", got[0])
	}
	if got[1] != " 2 Thoughts [thoughts] (2 unread)" {
		t.Fatalf("unexpected second line: %q", got[1])
	}
}

func TestHandleClear(t *testing.T) {
	h, c := newTestHandler(t)
	c.AppendText("main", "hello")
	before := c.ChannelVersion("main")
	mustHandle(t, h, "main", "/clear")
	if c.ChannelVersion("main") != before+1 || len(c.ChannelLines("main")) != 0 {
		t.Fatalf("expected main cleared")
	}
	if _, err := h.Handle(context.Background(), "chat", "/clear"); err == nil {
		t.Fatalf("expected usage error for tabbed window without channel")
	}
	c.AppendText("thoughts", "x")
	mustHandle(t, h, "chat", "/clear thoughts")
	if len(c.ChannelLines("thoughts")) != 0 {
		t.Fatalf("expected thoughts cleared")
	}
}

func TestHandleSearch(t *testing.T) {
	h, c := newTestHandler(t)
	c.AppendText("main", "alpha")
	c.AppendText("main", "beta")
	mustHandle(t, h, "main", "/search BETA")
	dest, err := c.WindowDestination("main")
	if err != nil {
		t.Fatalf("dest: %v", err)
	}
	view, err := c.SyncAndGetRows(dest)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !view.Search.Active || view.Search.TotalMatches != 1 {
		t.Fatalf("unexpected search status: %+v", view.Search)
	}
	mustHandle(t, h, "main", "/search zzz")
	if got := statusTexts(c); len(got) != 1 || !strings.Contains(got[0], "no matches") {
		t.Fatalf("expected no matches status, got %v", got)
	}
	mustHandle(t, h, "main", "/search")
	view, _ = c.SyncAndGetRows(dest)
	if view.Search.Active {
		t.Fatalf("expected search cleared")
	}
}

func TestHandleWidthAndHeight(t *testing.T) {
	h, c := newTestHandler(t)
	mustHandle(t, h, "chat", "/width 20")
	mustHandle(t, h, "chat", "/height 3")
	snap, err := c.Window("chat")
	if err != nil {
		t.Fatalf("window: %v", err)
	}
	if snap.WrapWidth != 20 || snap.Height != 3 {
		t.Fatalf("unexpected geometry: %+v", snap)
	}
	if _, err := h.Handle(context.Background(), "chat", "/width wide"); err == nil {
		t.Fatalf("expected invalid width error")
	}
	if _, err := h.Handle(context.Background(), "chat", "/height 0"); err == nil {
		t.Fatalf("expected invalid height error")
	}
}

func TestHandleHelpWritesStatusChannel(t *testing.T) {
	h, c := newTestHandler(t)
	mustHandle(t, h, "main", "/help")
	got := statusTexts(c)
	if len(got) == 0 || got[0] != "Commands" {
		t.Fatalf("expected help output, got %v", got)
	}
	for _, line := range c.ChannelLines(DefaultStatusChannel) {
		if line.Segments[0].Kind != schema.KindSystem {
			t.Fatalf("expected system segments, got %+v", line.Segments)
		}
	}
}

func TestHandleEchoesCommands(t *testing.T) {
	_, c := newTestHandler(t)
	h := NewHandler(c, HandlerConfig{EchoCommands: true})
	mustHandle(t, h, "chat", "  /tab unread ")
	lines := c.ChannelLines(DefaultStatusChannel)
	if len(lines) != 2 {
		t.Fatalf("expected echo and status lines, got %d", len(lines))
	}
	echo := lines[0]
	if echo.Text() != "> /tab unread" {
		t.Fatalf("unexpected echo %q", echo.Text())
	}
	if echo.Segments[0].Kind != schema.KindPrompt || echo.Segments[1].Kind != schema.KindEcho {
		t.Fatalf("unexpected echo segments %+v", echo.Segments)
	}
	if lines[1].Text() != "status: no unread tabs" {
		t.Fatalf("unexpected status %q", lines[1].Text())
	}

	if handled, _ := h.Handle(context.Background(), "chat", "not a command"); handled {
		t.Fatalf("plain input must not be handled")
	}
	if got := len(c.ChannelLines(DefaultStatusChannel)); got != 2 {
		t.Fatalf("plain input must not be echoed, got %d lines", got)
	}
}

func TestHandleAuditLog(t *testing.T) {
	capture := &logCapture{}
	logger := pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		VerboseFields: true,
		MinLevel:      pslog.DebugLevel,
	})
	ctx := pslog.ContextWithLogger(context.Background(), logger)
	h, _ := newTestHandler(t)
	if _, err := h.Handle(ctx, "chat", "/tab next"); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !capture.has("audit command", "/tab next") {
		t.Fatalf("expected audit log entry, got %v", capture.lines())
	}

	capture.reset()
	quiet := NewHandler(h.surface, HandlerConfig{DisableAuditLogging: true})
	if _, err := quiet.Handle(ctx, "chat", "/tab next"); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if capture.has("audit command", "/tab next") {
		t.Fatalf("expected audit logging disabled")
	}
}

func TestHandleTabLogsTarget(t *testing.T) {
	capture := &logCapture{}
	logger := pslog.NewWithOptions(capture, pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		VerboseFields: true,
		MinLevel:      pslog.InfoLevel,
	})
	ctx := pslog.ContextWithLogger(context.Background(), logger)
	h, _ := newTestHandler(t)
	if _, err := h.Handle(ctx, "chat", "/tab rename Thoughts Ideas"); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	entry := capture.entry("command tab completed")
	if entry == nil {
		t.Fatalf("expected completion log, got %v", capture.lines())
	}
	if entry["tab"] != "Thoughts" || entry["window"] != "chat" {
		t.Fatalf("expected tab and window fields, got %+v", entry)
	}

	capture.reset()
	if _, err := h.Handle(ctx, "chat", "/tab go 1"); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	entry = capture.entry("command tab completed")
	if entry == nil {
		t.Fatalf("expected completion log, got %v", capture.lines())
	}
	if _, ok := entry["tab"]; ok {
		t.Fatalf("did not expect tab field for numeric target, got %+v", entry)
	}
}

type logCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (c *logCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Write(p)
}

func (c *logCapture) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf.Reset()
}

func (c *logCapture) lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Split(strings.TrimSpace(c.buf.String()), "\n")
}

func (c *logCapture) entry(message string) map[string]any {
	for _, line := range c.lines() {
		payload := map[string]any{}
		if err := json.Unmarshal([]byte(line), &payload); err != nil {
			continue
		}
		msg, _ := payload["msg"].(string)
		if msg == "" {
			msg, _ = payload["message"].(string)
		}
		if msg == message {
			return payload
		}
	}
	return nil
}

func (c *logCapture) has(message, command string) bool {
	for _, line := range c.lines() {
		payload := map[string]any{}
		if err := json.Unmarshal([]byte(line), &payload); err != nil {
			continue
		}
		msg, _ := payload["msg"].(string)
		if msg == "" {
			msg, _ = payload["message"].(string)
		}
		if msg == message && payload["command"] == command {
			return true
		}
	}
	return false
}
