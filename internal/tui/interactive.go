package tui

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/edmd/internal/config"
	"github.com/san-kum/edmd/internal/event"
	"github.com/san-kum/edmd/internal/particle"
	"github.com/san-kum/edmd/internal/sim"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

type appState int

const (
	stateMenu appState = iota
	stateConfig
	stateSim
)

// scenario is one selectable preset, flattened out of config.Presets
// for menu navigation.
type scenario struct {
	family, name string
	cfg          *config.Config
}

type model struct {
	state      appState
	cursor     int
	scenarios  []scenario
	selected   scenario

	paramNames  []string
	paramCursor int
	editing     bool
	editBuf     string

	running  bool
	paused   bool
	sim      *sim.Simulation
	simTime  float64
	speed    float64
	history  []float64 // kinetic energy trail
	eventCounts map[string]int

	width, height int
}

func NewInteractiveApp() *model {
	var scenarios []scenario
	families := make([]string, 0, len(config.Presets))
	for f := range config.Presets {
		families = append(families, f)
	}
	sort.Strings(families)
	for _, f := range families {
		names := config.ListPresets(f)
		sort.Strings(names)
		for _, n := range names {
			scenarios = append(scenarios, scenario{family: f, name: n, cfg: config.GetPreset(f, n)})
		}
	}
	return &model{
		state:       stateMenu,
		scenarios:   scenarios,
		paramNames:  []string{"seed", "end_time"},
		speed:       1.0,
		history:     make([]float64, 0, 120),
		eventCounts: make(map[string]int),
		width:       80,
		height:      24,
	}
}

func (m model) Init() tea.Cmd { return nil }

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if m.state != stateSim {
			return m, nil
		}
		if m.running && !m.paused && m.sim != nil {
			steps := int(m.speed)
			if steps < 1 {
				steps = 1
			}
			for i := 0; i < steps; i++ {
				m.step()
			}
		}
		if m.running && m.state == stateSim {
			return m, tick()
		}
		return m, nil
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateConfig:
		return m.configKey(msg)
	case stateSim:
		return m.simKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.scenarios)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.scenarios) == 0 {
			return m, nil
		}
		m.selected = m.scenarios[m.cursor]
		m.state = stateConfig
		m.paramCursor = 0
	}
	return m, nil
}

func (m model) configKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if m.editing {
		switch msg.String() {
		case "enter":
			var val float64
			fmt.Sscanf(m.editBuf, "%f", &val)
			switch m.paramNames[m.paramCursor] {
			case "seed":
				m.selected.cfg.Seed = uint64(val)
			case "end_time":
				m.selected.cfg.EndTime = val
			}
			m.editing = false
			m.editBuf = ""
		case "escape":
			m.editing = false
			m.editBuf = ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "escape":
		m.state = stateMenu
	case "up", "k":
		if m.paramCursor > 0 {
			m.paramCursor--
		}
	case "down", "j":
		if m.paramCursor < len(m.paramNames)-1 {
			m.paramCursor++
		}
	case "enter", " ":
		m.editing = true
		m.editBuf = m.paramValue(m.paramNames[m.paramCursor])
	case "s":
		if err := m.start(); err == nil {
			m.state = stateSim
			return m, tea.Batch(tea.ClearScreen, tick())
		}
	}
	return m, nil
}

func (m model) paramValue(name string) string {
	switch name {
	case "seed":
		return fmt.Sprintf("%d", m.selected.cfg.Seed)
	case "end_time":
		return fmt.Sprintf("%.2f", m.selected.cfg.EndTime)
	}
	return ""
}

func (m model) simKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "escape":
		m.running = false
		m.state = stateMenu
		return m, tea.ClearScreen
	case " ", "p":
		m.paused = !m.paused
	case "r":
		m.start()
		return m, tea.ClearScreen
	case "c":
		m.running = false
		m.state = stateConfig
		return m, tea.ClearScreen
	case "+", "=":
		m.speed = math.Min(m.speed*2, 64)
	case "-", "_":
		m.speed = math.Max(m.speed/2, 0.25)
	case "0":
		m.speed = 1.0
	}
	return m, nil
}

func (m *model) start() error {
	s, err := config.Build(m.selected.cfg)
	if err != nil {
		return err
	}
	counts := make(map[string]int)
	s.OnEvent(func(_ float64, _ int, ev event.Event) {
		counts[ev.Kind.String()]++
	})
	m.sim = s
	m.simTime = 0
	m.speed = 1.0
	m.history = make([]float64, 0, 120)
	m.eventCounts = counts
	m.running = true
	m.paused = false

	if err := m.sim.Init(context.Background()); err != nil {
		m.running = false
		return err
	}
	return nil
}

func (m *model) step() {
	if m.sim == nil {
		return
	}
	cont, err := m.sim.Step()
	if err != nil || !cont {
		m.running = false
		return
	}
	m.simTime = m.sim.Time()
	m.history = append(m.history, m.kineticEnergy())
	if len(m.history) > 120 {
		m.history = m.history[1:]
	}
}

func (m model) kineticEnergy() float64 {
	ke := 0.0
	for _, p := range m.sim.Particles() {
		ke += 0.5 * p.Mass * p.Vel.Norm2()
	}
	return ke
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateConfig:
		return m.viewConfig()
	case stateSim:
		return m.viewSim()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n  " + cyan.Render("edmd") + dim.Render(" — event-driven molecular dynamics") + "\n\n")
	for i, s := range m.scenarios {
		cursor := "  "
		style := dimmer
		if i == m.cursor {
			cursor = "> "
			style = white
		}
		b.WriteString(fmt.Sprintf("  %s%s\n", cursor, style.Render(s.family+"/"+s.name)))
	}
	b.WriteString("\n" + dim.Render("  up/down select, enter to configure, q to quit") + "\n")
	return b.String()
}

func (m model) viewConfig() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("\n  %s\n\n", cyan.Render(m.selected.family+"/"+m.selected.name)))
	for i, name := range m.paramNames {
		style := dimmer
		if i == m.paramCursor {
			style = white
		}
		val := m.paramValue(name)
		if m.editing && i == m.paramCursor {
			val = m.editBuf + "_"
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", style.Render(name+":"), yellow.Render(val)))
	}
	b.WriteString("\n" + dim.Render("  enter edit, s start, q back") + "\n")
	return b.String()
}

func (m model) viewSim() string {
	if m.sim == nil {
		return "\n  no simulation running\n"
	}
	var b strings.Builder
	status := "running"
	if m.paused {
		status = "paused"
	}
	if !m.running {
		status = "halted"
	}
	b.WriteString(fmt.Sprintf("\n  %s  t=%.4f  steps=%d  speed=%.2fx  %s\n\n",
		cyan.Render(m.selected.family+"/"+m.selected.name), m.simTime, m.sim.Steps(), m.speed, green.Render(status)))

	b.WriteString(m.drawScatter())

	spark := m.sparkline(m.history, 60)
	b.WriteString(fmt.Sprintf("\n   %s %s\n", dim.Render("KE"), magenta.Render(spark)))
	b.WriteString(fmt.Sprintf("   %s %s\n", dim.Render("events"), dimmer.Render(m.eventSummary())))

	b.WriteString("\n" + dim.Render("   space pause  +/- speed  r reset  c config  q quit") + "\n")
	return b.String()
}

func (m model) eventSummary() string {
	kinds := make([]string, 0, len(m.eventCounts))
	for k := range m.eventCounts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m.eventCounts[k]))
	}
	return strings.Join(parts, "  ")
}

func (m model) drawScatter() string {
	const w, h = 60, 16
	canvas := make([][]rune, h)
	for i := range canvas {
		canvas[i] = make([]rune, w)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	particles := m.sim.Particles()
	bx, by := m.boxExtent(particles)
	for _, p := range particles {
		x := int(p.Pos.X / bx * float64(w-1))
		y := int(p.Pos.Y / by * float64(h-1))
		set(canvas, x, y, glyph(p.Vel.Norm()), w, h)
	}

	var b strings.Builder
	b.WriteString("  " + strings.Repeat("-", w) + "\n")
	for _, row := range canvas {
		b.WriteString("  " + string(row) + "\n")
	}
	b.WriteString("  " + strings.Repeat("-", w) + "\n")
	return b.String()
}

// boxExtent estimates the occupied box from the widest particle
// spread, since the running Simulation doesn't expose its boundary
// lengths directly.
func (m model) boxExtent(particles []*particle.Particle) (float64, float64) {
	maxX, maxY := 1.0, 1.0
	for _, p := range particles {
		if p.Pos.X > maxX {
			maxX = p.Pos.X
		}
		if p.Pos.Y > maxY {
			maxY = p.Pos.Y
		}
	}
	return maxX, maxY
}

func (m model) sparkline(data []float64, width int) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		v := data[i*step]
		idx := int((v - minVal) / rang * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

func set(canvas [][]rune, x, y int, c rune, w, h int) {
	if x >= 0 && x < w && y >= 0 && y < h {
		canvas[y][x] = c
	}
}

// RunInteractive launches the full-screen menu -> config -> sim flow.
func RunInteractive() error {
	p := tea.NewProgram(NewInteractiveApp(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
