package viz

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/resonance/internal/config"
	"github.com/san-kum/resonance/internal/dynamo"
	"github.com/san-kum/resonance/internal/sim"
	"github.com/san-kum/resonance/internal/storage"
)

const (
	frameInterval = time.Second / 30
	plotWidth     = 60
	plotHeight    = 6

	MinSpeed  = 0.5
	MaxSpeed  = 2.0
	speedStep = 0.25
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the live control surface. It owns the step loop: each tick it
// advances the state by a speed-dependent number of steps, and key presses
// edit the parameter record between steps.
type Model struct {
	st       *dynamo.State
	params   *dynamo.Params
	stepper  *sim.Stepper
	store    *storage.Store
	cfg      *config.Config
	logger   *slog.Logger
	label    string
	running  bool
	speed    float64
	pending  float64
	selected int
	status   string
	err      error
	width    int
	showHelp bool
}

// NewModel wraps a seeded state. store may be nil, which disables snapshots.
func NewModel(st *dynamo.State, params *dynamo.Params, cfg *config.Config, store *storage.Store, label string) Model {
	return Model{
		st:      st,
		params:  params,
		stepper: sim.NewStepper(),
		store:   store,
		cfg:     cfg,
		logger:  slog.Default(),
		label:   label,
		running: true,
		speed:   1.0,
		width:   plotWidth,
	}
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "tab":
			m.selected = (m.selected + 1) % len(dynamo.Tunable)
		case "shift+tab":
			m.selected = (m.selected + len(dynamo.Tunable) - 1) % len(dynamo.Tunable)
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "+", "=":
			m.adjustSpeed(speedStep)
		case "-", "_":
			m.adjustSpeed(-speedStep)
		case "s":
			m.snapshot()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.width = max(20, min(msg.Width-20, 2*plotWidth))
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance runs the steps owed for one frame. Speed 1 is one step per frame;
// fractional speeds carry the remainder to the next frame.
func (m *Model) advance() {
	m.pending += m.speed
	for m.pending >= 1 {
		m.pending--
		if m.st.Done() {
			m.running = false
			m.status = "horizon reached"
			m.pending = 0
			return
		}
		if _, err := m.stepper.Step(m.st, m.params, m.st.Next()); err != nil {
			m.running = false
			m.err = err
			return
		}
	}
}

func (m *Model) reset() {
	sim.Reset(m.st, m.params)
	m.pending = 0
	m.err = nil
	m.status = "reset"
}

func (m *Model) adjustParam(factor float64) {
	name := dynamo.Tunable[m.selected]
	current := m.params.GetParams()[name]
	if err := m.params.SetParam(name, current*factor); err != nil {
		m.err = err
	}
}

func (m *Model) adjustSpeed(delta float64) {
	m.speed = max(MinSpeed, min(MaxSpeed, m.speed+delta))
}

func (m *Model) snapshot() {
	if m.store == nil {
		m.status = "snapshots disabled"
		return
	}
	if err := m.store.Init(); err != nil {
		m.err = err
		return
	}
	id, err := m.store.Save(m.label, m.st, *m.params, m.cfg, nil)
	if err != nil {
		m.err = err
		return
	}
	m.logger.Info("snapshot saved", "run", id, "step", m.st.Next())
	m.status = "saved " + id
}

// Current is the index of the last written row.
func (m Model) Current() int { return max(m.st.Next()-1, 0) }

func (m Model) Running() bool    { return m.running }
func (m Model) Speed() float64   { return m.speed }
func (m Model) Selected() string { return dynamo.Tunable[m.selected] }

func (m Model) View() string {
	t := m.Current()

	var plots strings.Builder
	plots.WriteString(plotRow("energy U", m.st.Energy.Row(t), m.width, colorEnergy) + "\n")
	plots.WriteString(plotRow("density ρ", m.st.Density.Row(t), m.width, colorDensity) + "\n")
	plots.WriteString(plotRow("freq shift", m.st.FreqShift.Row(t), m.width, colorFreq) + "\n")
	plots.WriteString(plotRow("trajectory", m.st.Position[:t+1], m.width, colorTrajectory))

	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.label)) + "\n\n")
	switch {
	case m.err != nil:
		s.WriteString(StatusError.Render("ERROR") + "\n")
	case m.running:
		s.WriteString(StatusRunning.Render("RUNNING") + "\n")
	default:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n")
	}
	s.WriteString(metricLine("step", fmt.Sprintf("%d / %d", t, m.st.Time.Len()-1)))
	s.WriteString(metricLine("time", fmt.Sprintf("%.3f", m.st.Time.At(t))))
	s.WriteString(metricLine("position", fmt.Sprintf("%.3f", m.st.Position[t])))
	s.WriteString(metricLine("velocity", fmt.Sprintf("%.3f", m.st.Particle.V)))
	s.WriteString(metricLine("speed", fmt.Sprintf("%.2fx", m.speed)))
	s.WriteString(ProgressBar(float64(t)/float64(max(m.st.Time.Len()-1, 1)), 20) + "\n")

	s.WriteString("\n" + MetricLabel.Render("PARAMETERS") + "\n")
	values := m.params.GetParams()
	for i, name := range dynamo.Tunable {
		r := dynamo.Ranges[name]
		v := values[name]
		line := fmt.Sprintf("%-6s %s %.4g", name, ParamBar(v, r, 10), v)
		if i == m.selected {
			s.WriteString(NeonGlow.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + MetricLabel.Render(line) + "\n")
		}
	}

	if m.err != nil {
		s.WriteString("\n" + StatusError.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		s.WriteString("\n" + Subtle.Render(m.status) + "\n")
	}
	s.WriteString("\n" + KeyHint.Render("space:pause r:reset tab:param ↑↓:tune +/-:speed s:save ?:help q:quit"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, plotStyle.Render(plots.String()), GlassPanel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

func plotRow(caption string, data []float64, width int, color asciigraph.AnsiColor) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(plotHeight),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(color),
		asciigraph.Precision(3),
	)
}

func metricLine(label, value string) string {
	return MetricLabel.Width(10).Render(label) + MetricValue.Render(value) + "\n"
}

const helpText = `
  space      pause / resume stepping
  r          reset fields, particle and parameters
  tab        select next parameter
  up / k     increase selected parameter by 5%
  down / j   decrease selected parameter by 5%
  + / -      playback speed (0.5x to 2x)
  s          save a snapshot of the current run
  q          quit
`

// Run starts the live view on the terminal's alternate screen.
func Run(m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
