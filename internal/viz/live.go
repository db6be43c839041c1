package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/roastlab/roastsim/internal/control"
	"github.com/roastlab/roastsim/internal/profile"
	"github.com/roastlab/roastsim/internal/roast"
	"github.com/roastlab/roastsim/internal/sim"
)

const (
	graphHeight     = 12
	graphWidth      = 70
	historyCapacity = 600
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true).MarginBottom(1)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(0, 2).Width(38)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	eventStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

var gainNames = []string{"Kp", "Ki", "Kd"}

// Model runs a roast in accelerated real time and lets the operator
// retune the PID gains mid-flight.
type Model struct {
	params  roast.Params
	curve   *profile.Curve
	cfg     sim.Config
	drum    *roast.Drum
	pid     *control.PID
	gains   [3]float64
	t       float64
	power   float64
	running bool
	done    bool

	beanHist []float64
	targHist []float64

	selected int
	showHelp bool
	err      error
}

func NewModel(params roast.Params, curve *profile.Curve, gains [3]float64, cfg sim.Config) Model {
	m := Model{
		params:   params,
		curve:    curve,
		cfg:      cfg,
		gains:    gains,
		running:  true,
		beanHist: make([]float64, 0, historyCapacity),
		targHist: make([]float64, 0, historyCapacity),
	}
	m.reset()
	return m
}

func (m *Model) reset() {
	drum, err := roast.NewDrum(m.params)
	if err != nil {
		m.err = err
		return
	}
	m.drum = drum
	m.pid = control.NewPID(m.gains[0], m.gains[1], m.gains[2])
	m.t = 0
	m.power = 0
	m.done = false
	m.beanHist = m.beanHist[:0]
	m.targHist = m.targHist[:0]
}

// retune swaps in a fresh controller; accumulated integral state does not
// carry over across a gain change.
func (m *Model) retune(factor float64) {
	g := m.gains[m.selected]
	if g == 0 {
		g = 0.01
	}
	m.gains[m.selected] = g * factor
	m.pid = control.NewPID(m.gains[0], m.gains[1], m.gains[2])
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg { return TickMsg(t) })
}

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
			m.selected = (m.selected + 1) % len(gainNames)
		case "up", "k":
			m.retune(1.05)
		case "down", "j":
			m.retune(0.95)
		case "?":
			m.showHelp = !m.showHelp
		}
		return m, nil

	case TickMsg:
		if m.running && !m.done && m.err == nil {
			m.step()
		}
		return m, tick()
	}

	return m, nil
}

func (m *Model) step() {
	target := m.curve.At(m.t)
	out := m.pid.Output(m.drum.Measurement(), target, m.cfg.Dt)
	if out < m.cfg.MinPower {
		out = m.cfg.MinPower
	}
	if out > m.cfg.MaxPower {
		out = m.cfg.MaxPower
	}
	m.power = out
	m.drum.Advance(out, m.t, m.cfg.Dt)
	m.t += m.cfg.Dt

	m.beanHist = append(m.beanHist, m.drum.Measurement())
	m.targHist = append(m.targHist, target)
	if len(m.beanHist) > historyCapacity {
		m.beanHist = m.beanHist[1:]
		m.targHist = m.targHist[1:]
	}

	if m.t >= m.cfg.Duration {
		m.done = true
	}
}

func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("error: %v\n", m.err)
	}

	header := headerStyle.Render("roastsim live")

	graph := ""
	if len(m.beanHist) > 1 {
		graph = asciigraph.PlotMany([][]float64{m.targHist, m.beanHist},
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.SeriesColors(asciigraph.Gray, asciigraph.Green),
		)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		graphStyle.Render(graph),
		statsStyle.Render(m.statsView()),
	)

	help := helpStyle.Render("space pause  r reset  tab gain  up/down adjust  ? help  q quit")
	if m.showHelp {
		help = helpStyle.Render(strings.Join([]string{
			"space  pause / resume the roast",
			"r      recharge the drum and restart",
			"tab    select the next PID gain",
			"up/dn  nudge the selected gain 5%",
			"?      toggle this help",
			"q      quit",
		}, "\n"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, help)
}

func (m Model) statsView() string {
	tel := m.drum.Snapshot()
	target := m.curve.At(m.t)

	row := func(label, val string) string {
		return labelStyle.Render(label) + valueStyle.Render(val)
	}

	lines := []string{
		row("time", roast.FormatClock(m.t)),
		row("bean", fmt.Sprintf("%.1f C", tel.BeanTemp)),
		row("probe", fmt.Sprintf("%.1f C", m.drum.Measurement())),
		row("target", fmt.Sprintf("%.1f C", target)),
		row("drum", fmt.Sprintf("%.1f C", tel.DrumTemp)),
		row("power", fmt.Sprintf("%.0f %%", m.power)),
		row("RoR", fmt.Sprintf("%.1f C/min", tel.RoR)),
		row("water", fmt.Sprintf("%.1f %%", tel.WaterPct)),
		row("weight", fmt.Sprintf("%.1f %%", tel.WeightPct)),
		"",
	}

	for i, name := range gainNames {
		line := fmt.Sprintf("%-3s %.4f", name, m.gains[i])
		if i == m.selected {
			lines = append(lines, activeStyle.Render("> "+line))
		} else {
			lines = append(lines, valueStyle.Render("  "+line))
		}
	}

	ev := m.drum.Events()
	if ev.TurnTime > 0 {
		lines = append(lines, eventStyle.Render("turn  "+roast.FormatClock(ev.TurnTime)))
	}
	if ev.DryTime > 0 {
		lines = append(lines, eventStyle.Render("dry   "+roast.FormatClock(ev.DryTime)))
	}
	if ev.FirstCrackTime > 0 {
		lines = append(lines, eventStyle.Render("crack "+roast.FormatClock(ev.FirstCrackTime)))
	}
	if m.done {
		lines = append(lines, eventStyle.Render("drop  "+roast.FormatClock(m.t)))
	}
	if !m.running {
		lines = append(lines, helpStyle.Render("paused"))
	}

	return strings.Join(lines, "\n")
}
