package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"pkt.systems/chansync/core"
	"pkt.systems/chansync/internal/format"
	"pkt.systems/chansync/internal/logx"
	"pkt.systems/chansync/internal/version"
	"pkt.systems/chansync/schema"
)

// DefaultStatusChannel receives command feedback when no channel is configured.
const DefaultStatusChannel schema.ChannelID = "system"

// HandlerConfig configures slash command behavior.
type HandlerConfig struct {
	StatusChannel       schema.ChannelID
	DisableAuditLogging bool
	// EchoCommands writes each command to the status channel before it runs.
	EchoCommands bool
}

// Handler routes slash commands to core operations. Like the core it drives,
// a Handler must only be used from the rendering goroutine.
type Handler struct {
	surface core.Surface
	cfg     HandlerConfig
}

// NewHandler constructs a command handler.
func NewHandler(surface core.Surface, cfg HandlerConfig) *Handler {
	if cfg.StatusChannel == "" {
		cfg.StatusChannel = DefaultStatusChannel
	}
	return &Handler{surface: surface, cfg: cfg}
}

// Handle inspects input typed into window and executes slash commands. It
// reports false when input is not a command.
func (h *Handler) Handle(ctx context.Context, window schema.WindowName, input string) (bool, error) {
	if ctx == nil {
		return false, errors.New("missing context")
	}
	cmd, ok := Parse(input)
	if !ok {
		return false, nil
	}
	baseLog := logx.WindowFromContext(ctx, window)
	ctx = logx.ContextWithWindowLogger(ctx, baseLog, window)
	log := baseLog.With("input_len", len(input))
	if !h.cfg.DisableAuditLogging {
		log.Debug("audit command", "command", strings.TrimSpace(input))
	}
	if h.cfg.EchoCommands {
		h.surface.Append(h.cfg.StatusChannel, format.Echo(h.cfg.StatusChannel, "> ", strings.TrimSpace(input)))
	}
	log = log.With("command", cmd.Name, "args", len(cmd.Args))
	log.Info("command slash request")
	switch cmd.Name {
	case "":
		log.Warn("command slash rejected", "reason", "empty")
		return true, fmt.Errorf("invalid command")
	case "help":
		return true, h.handleHelp(ctx, window)
	case "version":
		return true, h.handleVersion(ctx, window)
	case "tab":
		return true, h.handleTab(ctx, window, cmd)
	case "clear":
		return true, h.handleClear(ctx, window, cmd)
	case "search":
		return true, h.handleSearch(ctx, window, cmd)
	case "width":
		return true, h.handleResize(ctx, window, cmd, true)
	case "height":
		return true, h.handleResize(ctx, window, cmd, false)
	default:
		log.Warn("command slash rejected", "reason", "unknown")
		return true, fmt.Errorf("unknown command: /%s", cmd.Name)
	}
}

func (h *Handler) handleHelp(ctx context.Context, window schema.WindowName) error {
	h.appendLines(helpLines())
	logx.WindowFromContext(ctx, window).Info("command help completed")
	return nil
}

func helpLines() []string {
	return []string{
		"Commands",
		"  /tab add <name> <stream,...> [quiet] [timestamps]",
		"  /tab rm <name>",
		"  /tab rename <old> <new>",
		"  /tab move <name,...>",
		"  /tab go <name|number>",
		"  /tab next | /tab prev | /tab unread | /tab list",
		"  /clear [channel]",
		"  /search [pattern]   (empty pattern clears)",
		"  /width <n> | /height <n>",
		"  /version",
	}
}

func (h *Handler) handleVersion(ctx context.Context, window schema.WindowName) error {
	h.appendStatus(version.Read().String())
	logx.WindowFromContext(ctx, window).Info("command version completed")
	return nil
}

func (h *Handler) handleTab(ctx context.Context, window schema.WindowName, cmd Command) error {
	if len(cmd.Args) == 0 {
		return fmt.Errorf("usage: /tab add|rm|rename|move|go|next|prev|unread|list")
	}
	sub := strings.ToLower(cmd.Args[0])
	args := cmd.Args[1:]
	log := logx.TabFromContext(ctx, window, tabTarget(sub, args))
	var err error
	switch sub {
	case "add", "new":
		err = h.tabAdd(window, args)
	case "rm", "close":
		if len(args) != 1 {
			return fmt.Errorf("usage: /tab rm <name>")
		}
		if !h.surface.RemoveTab(window, schema.TabName(args[0])) {
			err = fmt.Errorf("cannot remove tab %q: unknown tab or last tab", args[0])
		}
	case "rename", "mv":
		if len(args) != 2 {
			return fmt.Errorf("usage: /tab rename <old> <new>")
		}
		err = h.surface.RenameTab(window, schema.TabName(args[0]), schema.TabName(args[1]))
	case "move", "order":
		if len(args) == 0 {
			return fmt.Errorf("usage: /tab move <name,...>")
		}
		err = h.surface.ReorderTabs(window, splitNames(args))
	case "go":
		if len(args) != 1 {
			return fmt.Errorf("usage: /tab go <name|number>")
		}
		err = h.tabGo(window, args[0])
	case "next":
		err = h.surface.NextTab(window)
	case "prev":
		err = h.surface.PrevTab(window)
	case "unread":
		if !h.surface.NextTabWithUnread(window) {
			h.appendStatus("no unread tabs")
		}
	case "list", "ls":
		err = h.tabList(window)
	default:
		log.Warn("command tab rejected", "reason", "unknown subcommand", "subcommand", sub)
		return fmt.Errorf("unknown tab command: %s", sub)
	}
	if err != nil {
		log.Warn("command tab failed", "subcommand", sub, "err", err)
		return err
	}
	log.Info("command tab completed", "subcommand", sub)
	return nil
}

// tabTarget names the tab a /tab subcommand acts on, if any.
func tabTarget(sub string, args []string) schema.TabName {
	if len(args) == 0 {
		return ""
	}
	switch sub {
	case "add", "new", "rm", "close", "rename", "mv":
		return schema.TabName(args[0])
	case "go":
		if _, err := strconv.Atoi(args[0]); err != nil {
			return schema.TabName(args[0])
		}
	}
	return ""
}

func (h *Handler) tabAdd(window schema.WindowName, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: /tab add <name> <stream,...> [quiet] [timestamps]")
	}
	cfg := schema.TabConfig{Name: schema.TabName(args[0])}
	for _, name := range strings.Split(args[1], ",") {
		cfg.Streams = append(cfg.Streams, schema.ChannelID(name))
	}
	for _, flag := range args[2:] {
		switch strings.ToLower(flag) {
		case "quiet":
			cfg.IgnoreActivity = true
		case "timestamps", "ts":
			cfg.ShowTimestamps = true
		default:
			return fmt.Errorf("unknown tab option %q", flag)
		}
	}
	if len(cfg.Streams) == 0 {
		return fmt.Errorf("tab %q needs at least one stream", args[0])
	}
	return h.surface.AddTab(window, cfg)
}

func (h *Handler) tabGo(window schema.WindowName, target string) error {
	if n, err := strconv.Atoi(target); err == nil {
		return h.surface.ActivateTab(window, n-1)
	}
	return h.surface.ActivateTabByName(window, schema.TabName(target))
}

func (h *Handler) tabList(window schema.WindowName) error {
	tabs, err := h.surface.Tabs(window)
	if err != nil {
		return err
	}
	lines := make([]string, 0, len(tabs))
	for i, t := range tabs {
		marker := " "
		if t.Active {
			marker = "*"
		}
		line := fmt.Sprintf("%s%d %s [%s]", marker, i+1, t.Name, joinChannels(t.Streams))
		if t.Unread {
			line += fmt.Sprintf(" (%d unread)", t.UnreadCount)
		}
		lines = append(lines, line)
	}
	h.appendLines(lines)
	return nil
}

func (h *Handler) handleClear(ctx context.Context, window schema.WindowName, cmd Command) error {
	log := logx.WindowFromContext(ctx, window)
	var channel schema.ChannelID
	switch len(cmd.Args) {
	case 0:
		snap, err := h.surface.Window(window)
		if err != nil {
			return err
		}
		if snap.Kind != schema.WindowText {
			return fmt.Errorf("usage: /clear <channel>")
		}
		channel = snap.Channel
	case 1:
		id, err := schema.NormalizeChannelID(cmd.Args[0])
		if err != nil {
			return fmt.Errorf("channel %q: %w", cmd.Args[0], err)
		}
		channel = id
	default:
		return fmt.Errorf("usage: /clear [channel]")
	}
	h.surface.Clear(channel)
	logx.WithChannel(log, channel).Info("command clear completed")
	return nil
}

func (h *Handler) handleSearch(ctx context.Context, window schema.WindowName, cmd Command) error {
	dest, err := h.surface.WindowDestination(window)
	if err != nil {
		return err
	}
	status, err := h.surface.Search(dest, cmd.Remainder)
	if err != nil {
		return err
	}
	log := logx.WindowFromContext(ctx, window)
	if !status.Active {
		log.Info("command search cleared")
		return nil
	}
	log.Info("command search completed", "matches", status.TotalMatches)
	if status.TotalMatches == 0 {
		h.appendStatus(fmt.Sprintf("no matches for %q", status.Pattern))
	}
	return nil
}

func (h *Handler) handleResize(ctx context.Context, window schema.WindowName, cmd Command, width bool) error {
	name := "height"
	if width {
		name = "width"
	}
	if len(cmd.Args) != 1 {
		return fmt.Errorf("usage: /%s <n>", name)
	}
	n, err := strconv.Atoi(cmd.Args[0])
	if err != nil || n < 0 || (!width && n == 0) {
		return fmt.Errorf("invalid %s %q", name, cmd.Args[0])
	}
	snap, err := h.surface.Window(window)
	if err != nil {
		return err
	}
	if width {
		err = h.surface.ResizeWindow(window, n, snap.Height)
	} else {
		err = h.surface.ResizeWindow(window, snap.WrapWidth, n)
	}
	if err != nil {
		return err
	}
	logx.WindowFromContext(ctx, window).Info("command resize completed", name, n)
	return nil
}

func (h *Handler) appendStatus(message string) {
	if strings.TrimSpace(message) == "" {
		return
	}
	h.surface.Append(h.cfg.StatusChannel, format.System(h.cfg.StatusChannel, "status: "+message))
}

func (h *Handler) appendLines(lines []string) {
	for _, line := range lines {
		h.surface.Append(h.cfg.StatusChannel, format.System(h.cfg.StatusChannel, line))
	}
}

func splitNames(args []string) []schema.TabName {
	var out []schema.TabName
	for _, arg := range args {
		for _, name := range strings.Split(arg, ",") {
			if name = strings.TrimSpace(name); name != "" {
				out = append(out, schema.TabName(name))
			}
		}
	}
	return out
}

func joinChannels(ids []schema.ChannelID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}
