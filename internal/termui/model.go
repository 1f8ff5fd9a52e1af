// Package termui paints core destinations in a terminal and feeds keyboard
// input back into the core.
package termui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"pkt.systems/chansync/core"
	"pkt.systems/chansync/internal/eventbus"
	"pkt.systems/chansync/internal/ingest"
	"pkt.systems/chansync/internal/logx"
	"pkt.systems/chansync/schema"
	"pkt.systems/pslog"
)

// chromeRows is the header, status and input lines around the content.
const chromeRows = 3

// maxBatchesPerTick bounds how much ingest one tick applies so a flood of
// input cannot starve key handling.
const maxBatchesPerTick = 64

// DefaultTick is the refresh interval used when Options.Tick is zero.
const DefaultTick = 50 * time.Millisecond

// CommandHandler executes slash commands typed into the viewer.
type CommandHandler interface {
	Handle(ctx context.Context, window schema.WindowName, input string) (bool, error)
}

// Options configures the viewer.
type Options struct {
	Surface  core.Surface
	Commands CommandHandler
	Batches  <-chan ingest.Batch
	Events   <-chan eventbus.Event
	Window   schema.WindowName
	Tick     time.Duration
	Logger   pslog.Logger
	// InputTTY reads keys from the terminal device instead of stdin, for
	// when stdin is a data source.
	InputTTY bool
}

type inputMode int

const (
	modeNormal inputMode = iota
	modeSearch
	modeCommand
)

// Model is the bubbletea model of the viewer. Every core call happens inside
// Update, which bubbletea runs on a single goroutine.
type Model struct {
	ctx      context.Context
	surface  core.Surface
	commands CommandHandler
	batches  <-chan ingest.Batch
	events   <-chan eventbus.Event
	log      pslog.Logger
	keys     keyMap
	input    textinput.Model
	mode     inputMode
	tick     time.Duration

	focus     schema.WindowName
	width     int
	height    int
	ready     bool
	tabStart  int
	header    string
	status    string
	statusErr bool
	view      schema.View
	snap      schema.WindowSnapshot
}

// New constructs the viewer model.
func New(ctx context.Context, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	log := opts.Logger
	if log == nil {
		log = pslog.Ctx(ctx)
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = DefaultTick
	}
	input := textinput.New()
	input.Prompt = ""
	input.CharLimit = 512
	m := Model{
		ctx:      ctx,
		surface:  opts.Surface,
		commands: opts.Commands,
		batches:  opts.Batches,
		events:   opts.Events,
		log:      log,
		keys:     DefaultKeyMap(),
		input:    input,
		tick:     tick,
		focus:    opts.Window,
	}
	if m.focus == "" {
		if windows := m.surface.Windows(); len(windows) > 0 {
			m.focus = windows[0].Name
		}
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.tick)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeAll()
		m.refresh()
		return m, nil

	case tickMsg:
		m.drainBatches()
		m.drainEvents()
		m.surface.Tick()
		m.refresh()
		return m, tickCmd(m.tick)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(m.header)
	b.WriteString("\n")
	rows := m.view.Rows
	for i := 0; i < m.contentHeight(); i++ {
		if i < len(rows) {
			b.WriteString(ansi.Truncate(renderRow(rows[i]), m.width, ""))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderInput())
	return b.String()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeNormal {
		return m.handleInputKey(msg)
	}
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.NextWindow):
		m.cycleWindow()
	case key.Matches(msg, m.keys.NextTab):
		m.tabOp(m.surface.NextTab)
	case key.Matches(msg, m.keys.PrevTab):
		m.tabOp(m.surface.PrevTab)
	case key.Matches(msg, m.keys.NextUnread):
		if m.snap.Kind == schema.WindowTabbed && !m.surface.NextTabWithUnread(m.focus) {
			m.status = "no unread tabs"
		}
	case key.Matches(msg, m.keys.Up):
		m.scroll(schema.ScrollUp)
	case key.Matches(msg, m.keys.Down):
		m.scroll(schema.ScrollDown)
	case key.Matches(msg, m.keys.PageUp):
		m.scroll(schema.ScrollPageUp)
	case key.Matches(msg, m.keys.PageDown):
		m.scroll(schema.ScrollPageDown)
	case key.Matches(msg, m.keys.Top):
		m.scroll(schema.ScrollTop)
	case key.Matches(msg, m.keys.Bottom):
		m.scroll(schema.ScrollBottom)
	case key.Matches(msg, m.keys.NextMatch):
		m.step(m.surface.NextMatch)
	case key.Matches(msg, m.keys.PrevMatch):
		m.step(m.surface.PrevMatch)
	case key.Matches(msg, m.keys.Escape):
		m.search("")
	case key.Matches(msg, m.keys.Search):
		return m.beginInput(modeSearch, "/")
	case key.Matches(msg, m.keys.Command):
		return m.beginInput(modeCommand, ":")
	}
	m.refresh()
	return m, nil
}

func (m Model) beginInput(mode inputMode, prompt string) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.Prompt = prompt
	m.input.Reset()
	return m, m.input.Focus()
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.endInput()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		value := m.input.Value()
		mode := m.mode
		m.endInput()
		if mode == modeSearch {
			m.search(value)
		} else {
			m.runCommand(value)
		}
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) endInput() {
	m.mode = modeNormal
	m.input.Blur()
	m.input.Reset()
}

func (m *Model) runCommand(value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	if !strings.HasPrefix(value, "/") {
		value = "/" + value
	}
	if m.commands == nil {
		m.setError(errors.New("commands are not available"))
		return
	}
	if _, err := m.commands.Handle(m.ctx, m.focus, value); err != nil {
		m.setError(err)
	}
}

func (m *Model) search(pattern string) {
	dest, err := m.surface.WindowDestination(m.focus)
	if err != nil {
		m.setError(err)
		return
	}
	status, err := m.surface.Search(dest, pattern)
	if err != nil {
		m.setError(err)
		return
	}
	if status.Active && status.TotalMatches == 0 {
		m.status = fmt.Sprintf("no matches for %q", pattern)
	}
}

func (m *Model) step(move func(core.Destination) (schema.SearchStatus, error)) {
	dest, err := m.surface.WindowDestination(m.focus)
	if err != nil {
		m.setError(err)
		return
	}
	if _, err := move(dest); err != nil {
		m.setError(err)
	}
}

func (m *Model) scroll(dir schema.ScrollDirection) {
	dest, err := m.surface.WindowDestination(m.focus)
	if err != nil {
		m.setError(err)
		return
	}
	if err := m.surface.Scroll(dest, dir, 1); err != nil {
		m.setError(err)
	}
}

func (m *Model) tabOp(op func(schema.WindowName) error) {
	if m.snap.Kind != schema.WindowTabbed {
		return
	}
	if err := op(m.focus); err != nil {
		m.setError(err)
	}
}

func (m *Model) cycleWindow() {
	windows := m.surface.Windows()
	if len(windows) == 0 {
		return
	}
	next := 0
	for i, win := range windows {
		if win.Name == m.focus {
			next = (i + 1) % len(windows)
			break
		}
	}
	m.focus = windows[next].Name
	m.tabStart = 0
}

func (m *Model) setError(err error) {
	m.status = err.Error()
	m.statusErr = true
	logx.WindowFromContext(m.ctx, m.focus).Warn("viewer action failed", "err", err)
}

func (m *Model) resizeAll() {
	height := m.contentHeight()
	for _, win := range m.surface.Windows() {
		if err := m.surface.ResizeWindow(win.Name, m.width, height); err != nil {
			m.log.Warn("viewer resize failed", "window", win.Name, "err", err)
		}
	}
}

func (m Model) contentHeight() int {
	if h := m.height - chromeRows; h > 0 {
		return h
	}
	return 1
}

func (m *Model) drainBatches() {
	for i := 0; i < maxBatchesPerTick && m.batches != nil; i++ {
		select {
		case batch, ok := <-m.batches:
			if !ok {
				m.batches = nil
				m.log.Debug("viewer ingest closed")
				return
			}
			for _, line := range batch.Lines {
				m.surface.Append(batch.Channel, line)
			}
		default:
			return
		}
	}
}

func (m *Model) drainEvents() {
	for m.events != nil {
		select {
		case ev, ok := <-m.events:
			if !ok {
				m.events = nil
				return
			}
			if ev.Type == eventbus.EventTab && ev.Tab.Type == schema.TabEventUnread && ev.Tab.Window != m.focus {
				m.status = fmt.Sprintf("activity in %s/%s", ev.Tab.Window, ev.Tab.Tab.Name)
				m.statusErr = false
			}
		default:
			return
		}
	}
}

func (m *Model) refresh() {
	if m.status == "" {
		m.statusErr = false
	}
	snap, err := m.surface.Window(m.focus)
	if err != nil {
		m.setError(err)
		return
	}
	m.snap = snap
	dest, err := m.surface.WindowDestination(m.focus)
	if err != nil {
		m.setError(err)
		return
	}
	view, err := m.surface.SyncAndGetRows(dest)
	if err != nil {
		m.setError(err)
		return
	}
	m.view = view
	if snap.Kind == schema.WindowTabbed {
		m.header, m.tabStart = renderTabBar(snap.Tabs, m.width, m.tabStart)
	} else {
		m.header = fill(tabBarStyle.Render(fmt.Sprintf(" %s [%s] ", snap.Name, snap.Channel)), m.width)
	}
}

func (m Model) renderStatus() string {
	parts := []string{string(m.focus)}
	if m.view.AtBottom {
		parts = append(parts, "follow")
	} else {
		parts = append(parts, fmt.Sprintf("+%d", m.view.ScrollOffset))
	}
	if s := m.view.Search; s.Active {
		current := 0
		if s.CurrentMatch >= 0 {
			current = s.CurrentMatch + 1
		}
		parts = append(parts, fmt.Sprintf("/%s %d/%d", s.Pattern, current, s.TotalMatches))
	}
	line := statusStyle.Render(strings.Join(parts, " · "))
	if m.status != "" {
		style := statusStyle
		if m.statusErr {
			style = statusErrorStyle
		}
		line += "  " + style.Render(m.status)
	}
	return ansi.Truncate(line, m.width, "")
}

func (m Model) renderInput() string {
	if m.mode != modeNormal {
		return m.input.View()
	}
	hints := make([]string, 0, len(m.keys.hints()))
	for _, h := range m.keys.hints() {
		help := h.Help()
		hints = append(hints, help.Key+" "+help.Desc)
	}
	return ansi.Truncate(statusStyle.Render(strings.Join(hints, " · ")), m.width, "")
}

type tickMsg time.Time

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Run starts the viewer and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	progOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if opts.InputTTY {
		progOpts = append(progOpts, tea.WithInputTTY())
	}
	p := tea.NewProgram(New(ctx, opts), progOpts...)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
