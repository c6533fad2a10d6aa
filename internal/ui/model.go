// Package ui hosts the Bubbletea model for the interactive analyzer view.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/spectro/internal/fb"
	"github.com/olivier-w/spectro/internal/pipeline"
	"github.com/olivier-w/spectro/internal/player"
	"github.com/olivier-w/spectro/internal/util"
)

// Rows reserved above and below the chart for header, status and help.
const chromeRows = 6

// Model draws one spectrum frame per tick. The frame itself is produced
// synchronously inside Update, so pausing the tick pauses analysis too.
type Model struct {
	driver *pipeline.Driver
	frame  *fb.Framebuffer
	play   *player.Player // nil when playback is off or unavailable
	note   string         // persistent notice, e.g. source fallback

	width    int
	height   int
	paused   bool
	done     bool
	quitting bool

	// measured frame rate, over one-second windows
	fps       float64
	fpsFrames int
	fpsStart  time.Time
}

// New wires the model. frame must be the same display the driver renders
// into. note is shown in the status area until quit; pass "" for none.
func New(d *pipeline.Driver, frame *fb.Framebuffer, play *player.Player, note string) Model {
	return Model{
		driver: d,
		frame:  frame,
		play:   play,
		note:   note,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(frameCmd(m.driver.Interval()), tea.SetWindowTitle("spectro"))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if isQuit(msg) {
			m.quitting = true
			m.shutdown()
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		}
		switch msg.String() {
		case " ":
			m.paused = !m.paused
			if m.play != nil {
				m.play.TogglePause()
			}
		case "m":
			m.driver.CycleScaleMode()
		case "w":
			m.driver.CycleWindow()
		case "p":
			m.driver.TogglePeaks()
		}
		return m, nil

	case frameMsg:
		if !m.paused && !m.done {
			info := m.driver.Step()
			if info.EOS {
				m.done = true
			}
			m.tickFPS()
		}
		return m, frameCmd(m.driver.Interval())

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		cols := max(msg.Width-4, 10)
		rows := max(msg.Height-chromeRows, 4)
		m.frame.Resize(cols, rows)
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	src := m.driver.Source()
	header := headerStyle.Render("spectro") + "  " +
		statusStyle.Render(src.Name())

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(header)
	b.WriteString("\n\n")
	for _, line := range strings.Split(m.frame.Frame(), "\n") {
		b.WriteString("  ")
		b.WriteString(chartStyle.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n  ")
	b.WriteString(statusStyle.Render(m.statusLine()))
	b.WriteString("\n  ")
	if m.note != "" {
		b.WriteString(noteStyle.Render(m.note))
		b.WriteString("\n  ")
	}
	b.WriteString(helpStyle.Render(helpText()))
	b.WriteString("\n")
	return b.String()
}

func (m Model) statusLine() string {
	src := m.driver.Source()
	state := "running"
	switch {
	case m.done:
		state = "done"
	case m.paused:
		state = "paused"
	}
	s := fmt.Sprintf("%s  %s  N=%d  %d bars  %s  %s",
		state,
		util.FormatHz(float64(src.SampleRate())),
		m.driver.FFTSize(),
		m.driver.Bars(),
		m.driver.ScaleMode(),
		m.driver.WindowFunc(),
	)
	if m.fps > 0 {
		s += fmt.Sprintf("  %.0f fps", m.fps)
	}
	if m.play != nil {
		s += "  " + util.FormatDuration(m.play.Position())
	}
	return s
}

func (m *Model) tickFPS() {
	now := time.Now()
	if m.fpsStart.IsZero() {
		m.fpsStart = now
	}
	m.fpsFrames++
	if elapsed := now.Sub(m.fpsStart); elapsed >= time.Second {
		m.fps = float64(m.fpsFrames) / elapsed.Seconds()
		m.fpsFrames = 0
		m.fpsStart = now
	}
}

func (m Model) shutdown() {
	m.driver.Close()
	if m.play != nil {
		m.play.Close()
	}
}
