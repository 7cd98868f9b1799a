// Package tui provides a Bubble Tea terminal user interface for the FLAC
// to MP3 converter.
package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/audiotagtools/internal/codec"
	"github.com/handiism/audiotagtools/internal/config"
	"github.com/handiism/audiotagtools/internal/convert"
	"github.com/handiism/audiotagtools/internal/events"
	"github.com/handiism/audiotagtools/internal/model"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	dirStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// maxLogs is how many event lines stay on screen.
const maxLogs = 10

// errCanceled is shown when the user stops a run.
var errCanceled = errors.New("cancelled by user")

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateScanning
	StateConverting
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   events.Level
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	encoder   codec.Encoder
	events    chan events.Event
	logs      []LogEntry
	dirs      []string
	results   []convert.DirectoryResult
	err       error

	ctx    context.Context
	cancel context.CancelFunc

	manager *convert.Manager

	convertedFiles int32
	failedFiles    int32
	totalFiles     int32

	// Options
	inPlace         bool
	deleteOriginals bool
	playlist        bool
	verbose         bool

	width  int
	height int
}

// NewModel creates a new TUI model. Options start from settings.
func NewModel(settings *config.Settings, encoder codec.Encoder) Model {
	ti := textinput.New()
	ti.Placeholder = "/music/Artist/Album"
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:           StateInput,
		textInput:       ti,
		spinner:         sp,
		progress:        prog,
		settings:        settings,
		encoder:         encoder,
		events:          make(chan events.Event, 256),
		logs:            make([]LogEntry, 0),
		ctx:             ctx,
		cancel:          cancel,
		inPlace:         settings.Convert.InPlace,
		deleteOriginals: settings.Convert.DeleteOriginals,
		playlist:        settings.Convert.CreatePlaylist,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.waitForEvent())
}

// Message types
type (
	// ProgressMsg carries one event from the converter.
	ProgressMsg struct {
		Event events.Event
	}

	// ScanDoneMsg is sent when the scan completes.
	ScanDoneMsg struct {
		Dirs    []string
		Manager *convert.Manager
		Err     error
	}

	// ConvertDoneMsg is sent when every directory has been processed.
	ConvertDoneMsg struct {
		Results []convert.DirectoryResult
		Err     error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateConverting || m.state == StateScanning {
				m.cancel()
				m.state = StateError
				m.err = errCanceled
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.state = StateScanning
				return m, tea.Batch(m.scan(), m.spinner.Tick)
			}

		// Toggles are not forwarded to the text input.
		case "ctrl+o":
			if m.state == StateInput {
				m.inPlace = !m.inPlace
				return m, nil
			}

		case "ctrl+d":
			if m.state == StateInput {
				m.deleteOriginals = !m.deleteOriginals
				return m, nil
			}

		case "ctrl+p":
			if m.state == StateInput {
				m.playlist = !m.playlist
				return m, nil
			}

		case "ctrl+v":
			if m.state == StateInput {
				m.verbose = !m.verbose
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m = m.reset()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, m.waitForEvent())
		if msg.Event.Level == events.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case ScanDoneMsg:
		switch {
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		case len(msg.Dirs) == 0:
			m.state = StateError
			m.err = fmt.Errorf("no %s files found", convert.SourceExtension)
		default:
			m.dirs = msg.Dirs
			m.manager = msg.Manager
			_, _, m.totalFiles = m.manager.GetProgress()
			m.state = StateConverting
			cmds = append(cmds, m.startConversion(), m.tickProgress())
		}

	case ConvertDoneMsg:
		m.results = msg.Results
		if m.manager != nil {
			m.convertedFiles, m.failedFiles, m.totalFiles = m.manager.GetProgress()
		}
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errCanceled
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && m.state == StateConverting {
			m.convertedFiles, m.failedFiles, m.totalFiles = m.manager.GetProgress()
			cmds = append(cmds, m.progress.SetPercent(m.percent()), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// reset prepares the model for another root.
func (m Model) reset() Model {
	m.state = StateInput
	m.logs = nil
	m.dirs = nil
	m.results = nil
	m.err = nil
	m.convertedFiles = 0
	m.failedFiles = 0
	m.totalFiles = 0
	m.manager = nil
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.SetValue("")
	m.textInput.Focus()
	return m
}

func (m Model) percent() float64 {
	if m.totalFiles == 0 {
		return 0
	}
	return float64(m.convertedFiles+m.failedFiles) / float64(m.totalFiles)
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent delivers the next converter event as a ProgressMsg.
func (m Model) waitForEvent() tea.Cmd {
	ch := m.events
	return func() tea.Msg {
		return ProgressMsg{Event: <-ch}
	}
}

// sink forwards events to the UI, dropping them when the UI falls behind.
func (m Model) sink() events.Sink {
	ch := m.events
	return events.SinkFunc(func(e events.Event) {
		select {
		case ch <- e:
		default:
		}
	})
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("♫ audiotag"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Convert FLAC albums to MP3"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateScanning:
		b.WriteString(m.viewScanning())
	case StateConverting:
		b.WriteString(m.viewConverting())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func check(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter library root:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s Replace originals in place (ctrl+o)\n", check(m.inPlace))
	fmt.Fprintf(&b, "  %s Delete originals instead of archiving (ctrl+d)\n", check(m.deleteOriginals))
	fmt.Fprintf(&b, "  %s Create playlist (ctrl+p)\n", check(m.playlist))
	fmt.Fprintf(&b, "  %s Verbose output (ctrl+v)\n", check(m.verbose))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Bitrate: %d kbps, %d workers, on failure: %s",
		codec.ResolveBitrate(m.settings.Convert.Bitrate), m.settings.Convert.Workers, m.settings.Convert.FailurePolicy)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewScanning() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Scanning for FLAC directories..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewConverting() string {
	var b strings.Builder

	if len(m.dirs) > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("Found %d director%s:", len(m.dirs), plural(len(m.dirs), "y", "ies"))))
		b.WriteString("\n")
		for _, dir := range m.dirs {
			b.WriteString(dirStyle.Render("  ♪ " + filepath.Base(dir)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(m.progress.ViewAs(m.percent()))
	b.WriteString("\n")
	b.WriteString(infoStyle.Render(fmt.Sprintf("Files: %d/%d converted | %d failed",
		m.convertedFiles, m.totalFiles, m.failedFiles)))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	s := convert.Summarize(m.results)
	text := fmt.Sprintf(
		"✨ Conversion Complete!\n\n"+
			"Directories: %d\n"+
			"Converted: %d\n"+
			"Failed: %d\n"+
			"Degraded: %d\n"+
			"Errors: %d",
		s.Directories, s.Converted, s.Failed, s.Degraded, s.Errors,
	)
	var b strings.Builder
	b.WriteString(boxStyle.Render(text))
	b.WriteString("\n")
	for _, r := range m.results {
		switch {
		case r.Err != nil:
			b.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %s", filepath.Base(r.Dir), model.Kind(r.Err))))
		case r.Degraded:
			b.WriteString(warningStyle.Render(fmt.Sprintf("! %s: kept in %s", filepath.Base(r.Dir), filepath.Base(r.Output))))
		default:
			continue
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		fmt.Fprintf(&b, "  %s\n\n", m.err.Error())
	}
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case events.LevelError:
			style = errorStyle
			prefix = "✗"
		case events.LevelWarning:
			style = warningStyle
			prefix = "!"
		case events.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case events.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • ctrl+o: in place • ctrl+d: delete • ctrl+p: playlist • ctrl+v: verbose • esc: quit"
	case StateScanning, StateConverting:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: convert another • q: quit"
	}
	return ""
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// scan validates the root and creates the manager.
func (m Model) scan() tea.Cmd {
	root := strings.TrimSpace(m.textInput.Value())
	settings := *m.settings
	settings.Convert.InPlace = m.inPlace || m.deleteOriginals
	settings.Convert.DeleteOriginals = m.deleteOriginals
	settings.Convert.CreatePlaylist = m.playlist
	ctx, encoder, sink := m.ctx, m.encoder, m.sink()

	return func() tea.Msg {
		root, err := config.ExpandPath(root)
		if err != nil {
			return ScanDoneMsg{Err: err}
		}
		if err := model.CheckDir(root); err != nil {
			return ScanDoneMsg{Err: err}
		}

		manager, err := convert.NewManager(&settings, encoder, sink)
		if err != nil {
			return ScanDoneMsg{Err: err}
		}
		if err := manager.Initialize(ctx, root); err != nil {
			return ScanDoneMsg{Err: err}
		}

		var dirs []string
		for _, dir := range manager.Directories() {
			dirs = append(dirs, dir.Path)
		}
		return ScanDoneMsg{Dirs: dirs, Manager: manager}
	}
}

// startConversion runs the manager in the background.
func (m Model) startConversion() tea.Cmd {
	ctx, manager := m.ctx, m.manager
	return func() tea.Msg {
		if manager == nil {
			return ConvertDoneMsg{Err: errors.New("no manager")}
		}
		results, err := manager.Start(ctx)
		return ConvertDoneMsg{Results: results, Err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings, encoder codec.Encoder) error {
	p := tea.NewProgram(NewModel(settings, encoder), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
