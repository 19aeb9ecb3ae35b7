package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/resonance/internal/config"
	"github.com/san-kum/resonance/internal/storage"
)

var (
	cyan  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

var presetInfo = map[string]string{
	"default": "seeded bump, cold start",
	"warm":    "row 1 copies the seed",
	"strong":  "coupling at the top of its range",
	"edge":    "particle starts at the wall",
	"long":    "2000-step horizon",
}

const (
	stateMenu = iota
	stateSim
)

type picker struct {
	state   int
	cursor  int
	presets []string
	store   *storage.Store
	err     error
	live    Model
}

func newPicker(store *storage.Store) picker {
	return picker{presets: config.ListPresets(), store: store}
}

func (m picker) Init() tea.Cmd { return nil }

func (m picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == stateSim {
		next, cmd := m.live.Update(msg)
		m.live = next.(Model)
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.presets)-1 {
			m.cursor++
		}
	case "enter", " ":
		name := m.presets[m.cursor]
		cfg := config.GetPreset(name)
		st, params, err := cfg.Build()
		if err != nil {
			m.err = err
			return m, nil
		}
		m.live = NewModel(st, &params, cfg, m.store, name)
		m.state = stateSim
		return m, m.live.Init()
	}
	return m, nil
}

func (m picker) View() string {
	if m.state == stateSim {
		return m.live.View()
	}
	var s strings.Builder
	s.WriteString(cyan.Render("RESONANCE") + dim.Render("  choose a preset") + "\n\n")
	for i, name := range m.presets {
		line := fmt.Sprintf("%-8s %s", name, dim.Render(presetInfo[name]))
		if i == m.cursor {
			s.WriteString(white.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + line + "\n")
		}
	}
	if m.err != nil {
		s.WriteString("\n" + StatusError.Render(m.err.Error()) + "\n")
	}
	s.WriteString("\n" + KeyHint.Render("↑↓:move enter:start q:quit"))
	return s.String()
}

// RunInteractive shows the preset picker and then the live view.
func RunInteractive(store *storage.Store) error {
	p := tea.NewProgram(newPicker(store), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
