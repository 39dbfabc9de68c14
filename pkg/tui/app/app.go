// Package app is the Bubble Tea front end: a card per episode with its
// compacted timeline, plus the gated refresh prompt.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"

	appsvc "tableflip.dev/akats/pkg/app"
	"tableflip.dev/akats/pkg/episode"
	"tableflip.dev/akats/pkg/export"
	"tableflip.dev/akats/pkg/gate"
	"tableflip.dev/akats/pkg/logging"
	"tableflip.dev/akats/pkg/theme"
	"tableflip.dev/akats/pkg/tui/help"
)

// Directory is the read side of the episode store.
type Directory interface {
	Refresh(ctx context.Context)
	Episodes() []episode.Episode
	Resolved() bool
}

// Copier writes export text to the clipboard.
type Copier interface {
	Copy(text string) error
}

type directoryLoadedMsg struct{}

type gateDoneMsg struct {
	err error
}

type copiedMsg struct {
	number int
	err    error
}

// Model contains UI state.
type Model struct {
	ctx    context.Context
	dir    Directory
	gate   gate.Gate
	copier Copier
	theme  theme.Theme
	logger *slog.Logger

	input   textinput.Model
	pending bool

	episodes []episode.Episode
	resolved bool
	selected int
	offset   int

	status string
	help   *help.Model

	termWidth  int
	termHeight int
}

// New builds the model. copier may be nil, which disables copying.
func New(ctx context.Context, dir Directory, g gate.Gate, copier Copier, th theme.Theme, logger *slog.Logger) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	ti := textinput.New()
	ti.Placeholder = "refresh key"
	ti.CharLimit = 256
	ti.Prompt = "key: "
	ti.EchoMode = textinput.EchoPassword

	return &Model{
		ctx:    ctx,
		dir:    dir,
		gate:   g,
		copier: copier,
		theme:  th,
		logger: logging.Component(logger, "tui"),
		input:  ti,
	}
}

// Init loads the directory in the background.
func (m *Model) Init() tea.Cmd {
	return m.loadDirectory()
}

func (m *Model) loadDirectory() tea.Cmd {
	ctx, dir := m.ctx, m.dir
	return func() tea.Msg {
		dir.Refresh(ctx)
		return directoryLoadedMsg{}
	}
}

func (m *Model) trigger() tea.Cmd {
	ctx, g := m.ctx, m.gate
	return func() tea.Msg {
		return gateDoneMsg{err: g.Trigger(ctx)}
	}
}

func (m *Model) copyEpisode(ep episode.Episode) tea.Cmd {
	c := m.copier
	return func() tea.Msg {
		text, err := export.ForEpisode(ep)
		if err == nil {
			err = c.Copy(text)
		}
		return copiedMsg{number: ep.Number, err: err}
	}
}

// syncEpisodes pulls the directory contents into the view.
func (m *Model) syncEpisodes() {
	m.resolved = m.dir.Resolved()
	m.episodes = m.dir.Episodes()
	if m.selected >= len(m.episodes) {
		m.selected = len(m.episodes) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
	m.clampOffset()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		if m.help != nil {
			m.help.SetSize(m.helpSize())
		}
		m.clampOffset()
		return m, nil

	case directoryLoadedMsg:
		m.syncEpisodes()
		return m, nil

	case gateDoneMsg:
		m.pending = false
		if msg.err != nil {
			m.logger.Debug("trigger ignored", "error", msg.err)
			return m, nil
		}
		snap := m.gate.Snapshot()
		if snap.State == gate.Closed {
			m.input.Blur()
			m.status = "Episodes reloaded"
			m.syncEpisodes()
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			// Copy failures are not surfaced beyond the log.
			m.logger.Debug("copy failed", logging.FieldEpisode, msg.number, "error", msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Copied timestamps for episode %d", msg.number)
		return m, nil

	case tea.KeyPressMsg:
		if m.help != nil {
			return m.updateHelp(msg)
		}
		if m.gate.Snapshot().State != gate.Closed {
			return m.updateGate(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m *Model) updateGate(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.pending || m.gate.Snapshot().State == gate.Submitting {
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil
	}
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		if err := m.gate.SetKey(m.input.Value()); err != nil {
			return m, nil
		}
		m.pending = true
		m.status = ""
		return m, m.trigger()
	case "esc":
		if err := m.gate.Hide(); err == nil {
			m.input.Blur()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if err := m.gate.SetKey(m.input.Value()); err != nil && !errors.Is(err, gate.ErrSubmitting) {
		m.logger.Debug("set key failed", "error", err)
	}
	return m, cmd
}

func (m *Model) updateHelp(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "?", "esc", "q":
		m.help = nil
		return m, nil
	}
	var cmd tea.Cmd
	m.help, cmd = m.help.Update(msg)
	return m, cmd
}

func (m *Model) helpSize() (int, int) {
	if m.termWidth <= 0 || m.termHeight <= 0 {
		return defaultCardWidth, 24
	}
	return m.termWidth - 2, m.termHeight - 2
}

func (m *Model) updateBrowse(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "?":
		w, h := m.helpSize()
		m.help = help.New(w, h, m.theme.Help)
		return m, nil
	case "r":
		if err := m.gate.Reveal(); err != nil {
			return m, nil
		}
		m.input.SetValue(m.gate.Snapshot().Key)
		m.input.CursorEnd()
		m.input.Focus()
		m.status = ""
		return m, nil
	case "j", "down":
		if m.selected < len(m.episodes)-1 {
			m.selected++
			m.clampOffset()
		}
	case "k", "up":
		if m.selected > 0 {
			m.selected--
			m.clampOffset()
		}
	case "g", "home":
		m.selected = 0
		m.clampOffset()
	case "G", "end":
		if len(m.episodes) > 0 {
			m.selected = len(m.episodes) - 1
			m.clampOffset()
		}
	case "c":
		if m.copier == nil || len(m.episodes) == 0 {
			return m, nil
		}
		ep := m.episodes[m.selected]
		if !ep.HasTimeline() {
			return m, nil
		}
		return m, m.copyEpisode(ep)
	}
	return m, nil
}

// clampOffset keeps the selected card inside the window of visible cards.
func (m *Model) clampOffset() {
	if m.selected < m.offset {
		m.offset = m.selected
	}
	for m.offset < m.selected && m.selected >= m.offset+m.visibleCards() {
		m.offset++
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// Run starts the program for a session and blocks until the user quits.
func Run(ctx context.Context, s *appsvc.Session) error {
	m := New(ctx, s.Directory, s.Gate, s.Copier, theme.New(s.Palette), s.Logger)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
