// Package tui is the terminal front end of keyclip record. Terminal key
// presses become session inbox messages; the view shows recording time,
// input level and the most recent key.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tphakala/keyclip/internal/observability/metrics"
	"github.com/tphakala/keyclip/internal/session"
	"github.com/tphakala/keyclip/internal/timeline"
)

// RefreshInterval is how often the view polls the session and input level.
const RefreshInterval = 100 * time.Millisecond

// Key bindings that stop the take instead of being recorded.
const (
	KeyStop  = "esc"
	KeyCtrlC = "ctrl+c"
)

const levelBars = 20

// LevelSource reports the capture input level on a 0-100 scale.
type LevelSource interface {
	Level() int
}

// Config wires the model to a recording session.
type Config struct {
	Session *session.Session
	Levels  LevelSource // optional
	Metrics *metrics.SessionMetrics
	Device  string
}

type tickMsg time.Time

// Model is the bubbletea model for a recording take.
type Model struct {
	session *session.Session
	levels  LevelSource
	metrics *metrics.SessionMetrics
	device  string

	level    int
	elapsed  float64
	presses  int
	lastKey  string
	stopped  bool
	width    int
	errorMsg string
}

// New returns a model for a session that is already recording.
func New(cfg Config) Model {
	return Model{
		session: cfg.Session,
		levels:  cfg.Levels,
		metrics: cfg.Metrics,
		device:  cfg.Device,
	}
}

// Stopped reports whether the user ended the take.
func (m Model) Stopped() bool {
	return m.stopped
}

// Presses returns the number of key presses recorded so far.
func (m Model) Presses() int {
	return m.presses
}

// Init starts the refresh ticker.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(RefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		if m.stopped {
			return m, nil
		}
		m.refresh()
		return m, tickCmd()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	name := msg.String()
	switch name {
	case KeyStop, KeyCtrlC:
		m.stopped = true
		return m, tea.Quit
	}

	if m.session.State() != session.StateRecording {
		m.errorMsg = "not recording"
		return m, nil
	}

	// terminals report presses only, so every key message is a full press
	code, label := timeline.CodeFromTerminal(name)
	m.session.Post(session.KeyDown{Code: code, Label: label, At: m.session.Elapsed()})
	m.session.Post(session.KeyUp{Code: code})
	m.refresh()
	m.lastKey = timeline.NormalizeKey(code, label).Display
	return m, nil
}

func (m *Model) refresh() {
	m.session.Drain()
	m.presses = len(m.session.Events())
	m.elapsed = m.session.Elapsed()
	if m.levels != nil {
		m.level = m.levels.Level()
		m.metrics.SetCaptureLevel(m.level)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var sections []string

	title := TitleStyle.Render("KEYCLIP")
	if m.device != "" {
		title += StatusStyle.Render(" " + m.device)
	}
	sections = append(sections, title)

	var dot string
	if m.stopped {
		dot = IdleDotStyle.Render("○ STOPPED")
	} else {
		dot = RecordingDotStyle.Render("● REC")
	}
	status := fmt.Sprintf("%s  %s  %s", dot, formatElapsed(m.elapsed), renderLevelMeter(m.level))
	sections = append(sections, status)

	width := m.width
	if width <= 0 {
		width = 40
	}
	sections = append(sections, DividerStyle.Render(strings.Repeat("─", width)))

	keyLine := StatusStyle.Render(fmt.Sprintf("%d presses", m.presses))
	if m.lastKey != "" {
		keyLine += "  last " + KeyStyle.Render(m.lastKey)
	}
	sections = append(sections, keyLine)

	if m.errorMsg != "" {
		sections = append(sections, ErrorStyle.Render(m.errorMsg))
	}

	sections = append(sections, HelpStyle.Render("type to mark key presses · esc to stop"))
	return strings.Join(sections, "\n")
}

func renderLevelMeter(level int) string {
	filled := min(max(level*levelBars/100, 0), levelBars)

	var b strings.Builder
	for i := range levelBars {
		switch {
		case i >= filled:
			b.WriteString(LevelGrayStyle.Render("░"))
		case i >= levelBars*9/10:
			b.WriteString(LevelRedStyle.Render("█"))
		case i >= levelBars*6/10:
			b.WriteString(LevelYellowStyle.Render("█"))
		default:
			b.WriteString(LevelGreenStyle.Render("█"))
		}
	}
	return b.String()
}

func formatElapsed(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second))
	minutes := int(d / time.Minute)
	rest := d - time.Duration(minutes)*time.Minute
	return fmt.Sprintf("%02d:%04.1f", minutes, rest.Seconds())
}
