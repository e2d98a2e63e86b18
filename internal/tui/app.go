package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/phaselab/internal/bounds"
	"github.com/san-kum/phaselab/internal/config"
	"github.com/san-kum/phaselab/internal/engine"
	"github.com/san-kum/phaselab/internal/render"
)

type tab int

const (
	tabLinear tab = iota
	tabFunction
)

func (t tab) String() string {
	if t == tabFunction {
		return "Function"
	}
	return "Linear"
}

type mode int

const (
	modeBrowse mode = iota
	modeEditField
	modeEditBounds
)

var functionFields = []string{"formula", engine.AlphaSlider, "start", "end", "ylim"}

var boundFields = [3]string{"min", "max", "step"}

// Model is the interactive analyzer. The engine does the work; the model
// only holds what the user is typing and the status line.
type Model struct {
	ctx context.Context
	eng *engine.Engine

	tab    tab
	mode   mode
	cursor [2]int

	fields  map[string]string
	editBuf string

	boundsName string
	boundsBuf  [3]string
	boundsCur  int

	status    string
	statusErr bool

	width  int
	height int
}

// New runs both analyses once so the first frame has something to show.
func New(ctx context.Context, eng *engine.Engine) Model {
	m := Model{
		ctx:    ctx,
		eng:    eng,
		fields: make(map[string]string, len(functionFields)),
		width:  120,
		height: 40,
	}
	in := eng.DefaultFunctionInput()
	m.setFields(in)

	_, lerr := eng.RecomputeFromSliders()
	_, ferr := eng.RecomputeFunctionAnalysis(ctx, in)
	switch {
	case lerr != nil:
		m.report(lerr, "")
	case ferr != nil:
		m.report(ferr, "")
	default:
		m.report(nil, "ready")
	}
	return m
}

func (m *Model) setFields(in engine.FunctionInput) {
	m.fields["formula"] = in.Formula
	m.fields[engine.AlphaSlider] = number(in.Alpha)
	m.fields["start"] = number(in.Start)
	m.fields["end"] = number(in.End)
	m.fields["ylim"] = number(in.YLim)
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (m *Model) report(err error, ok string) {
	if err != nil {
		m.status, m.statusErr = err.Error(), true
		return
	}
	m.status, m.statusErr = ok, false
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case modeEditField:
		return m.fieldKey(msg), nil
	case modeEditBounds:
		return m.boundsKey(msg), nil
	}
	return m.browseKey(msg)
}

func (m Model) rows() int {
	if m.tab == tabFunction {
		return len(functionFields)
	}
	return len(config.Coefficients)
}

// selected is the slider under the cursor: a coefficient on the linear
// tab, alpha on the function tab.
func (m Model) selected() string {
	if m.tab == tabFunction {
		return engine.AlphaSlider
	}
	return config.Coefficients[m.cursor[tabLinear]]
}

func (m Model) browseKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		m.tab = 1 - m.tab
	case "up", "k":
		if m.cursor[m.tab] > 0 {
			m.cursor[m.tab]--
		}
	case "down", "j":
		if m.cursor[m.tab] < m.rows()-1 {
			m.cursor[m.tab]++
		}
	case "left", "h":
		m.nudge(-1)
	case "right", "l":
		m.nudge(1)
	case "enter":
		m.mode = modeEditField
		if m.tab == tabFunction {
			m.editBuf = m.fields[functionFields[m.cursor[tabFunction]]]
		} else if s, err := m.eng.Sliders().Slider(m.selected()); err == nil {
			m.editBuf = number(s.Value)
		}
	case "b":
		s, err := m.eng.Sliders().Slider(m.selected())
		if err != nil {
			m.report(err, "")
			break
		}
		m.mode = modeEditBounds
		m.boundsName = s.Name
		m.boundsBuf = [3]string{number(s.Bound.Min), number(s.Bound.Max), number(s.Bound.Step)}
		m.boundsCur = 0
	}
	return m, nil
}

func (m *Model) nudge(dir int) {
	if m.tab == tabLinear {
		name := m.selected()
		s, err := m.eng.Sliders().Slider(name)
		if err != nil {
			m.report(err, "")
			return
		}
		res, err := m.eng.SetCoefficient(name, s.Value+float64(dir)*s.Bound.Step)
		if err == nil {
			m.report(nil, res.Equilibrium.String())
			return
		}
		m.report(err, "")
		return
	}

	if functionFields[m.cursor[tabFunction]] != engine.AlphaSlider {
		return
	}
	s, err := m.eng.Sliders().Slider(engine.AlphaSlider)
	if err != nil {
		m.report(err, "")
		return
	}
	base := s.Value
	if in, ok := m.eng.LastInput(); ok {
		base = in.Alpha
	}
	res, err := m.eng.SetAlpha(m.ctx, base+float64(dir)*s.Bound.Step)
	if err != nil {
		m.report(err, "")
		return
	}
	m.fields[engine.AlphaSlider] = number(res.Input.Alpha)
	m.report(nil, res.Title)
}

func edit(buf string, msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyBackspace:
		if r := []rune(buf); len(r) > 0 {
			return string(r[:len(r)-1])
		}
	case tea.KeySpace:
		return buf + " "
	case tea.KeyRunes:
		return buf + string(msg.Runes)
	}
	return buf
}

func (m Model) fieldKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.editBuf = ""
	case "enter":
		m.mode = modeBrowse
		m.commitField()
		m.editBuf = ""
	default:
		m.editBuf = edit(m.editBuf, msg)
	}
	return m
}

func (m *Model) commitField() {
	if m.tab == tabLinear {
		name := m.selected()
		v, err := strconv.ParseFloat(strings.TrimSpace(m.editBuf), 64)
		if err != nil {
			m.report(&bounds.InvalidInputError{Name: name, Field: "value", Text: m.editBuf}, "")
			return
		}
		res, err := m.eng.SetCoefficient(name, v)
		if err != nil {
			m.report(err, "")
			return
		}
		m.report(nil, res.Equilibrium.String())
		return
	}

	field := functionFields[m.cursor[tabFunction]]
	if field == engine.AlphaSlider {
		v, err := strconv.ParseFloat(strings.TrimSpace(m.editBuf), 64)
		if err != nil {
			m.report(&bounds.InvalidInputError{Name: field, Field: "value", Text: m.editBuf}, "")
			return
		}
		res, err := m.eng.SetAlpha(m.ctx, v)
		if err != nil {
			m.report(err, "")
			return
		}
		m.fields[field] = number(res.Input.Alpha)
		m.report(nil, fmt.Sprintf("%s (%s)", res.Title, res.Duration.Round(time.Microsecond)))
		return
	}

	m.fields[field] = m.editBuf
	res, err := m.eng.RecomputeFunctionText(m.ctx, m.fields["formula"], m.fields[engine.AlphaSlider],
		m.fields["start"], m.fields["end"], m.fields["ylim"])
	if err != nil {
		m.report(err, "")
		return
	}
	m.report(nil, fmt.Sprintf("%s (%s)", res.Title, res.Duration.Round(time.Microsecond)))
}

func (m Model) boundsKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
	case "tab", "down":
		m.boundsCur = (m.boundsCur + 1) % len(m.boundsBuf)
	case "shift+tab", "up":
		m.boundsCur = (m.boundsCur + len(m.boundsBuf) - 1) % len(m.boundsBuf)
	case "enter":
		err := m.eng.UpdateBounds(m.boundsName, m.boundsBuf[0], m.boundsBuf[1], m.boundsBuf[2])
		if err != nil {
			// stay in the editor so the bad field can be fixed
			m.report(err, "")
			return m
		}
		m.mode = modeBrowse
		if m.boundsName == engine.AlphaSlider {
			if in, ok := m.eng.LastInput(); ok {
				m.fields[engine.AlphaSlider] = number(in.Alpha)
			}
		}
		m.report(nil, "bounds of "+m.boundsName+" updated")
	default:
		m.boundsBuf[m.boundsCur] = edit(m.boundsBuf[m.boundsCur], msg)
	}
	return m
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(render.TitleStyle.Render("phaselab") + "  ")
	for _, t := range []tab{tabLinear, tabFunction} {
		if t == m.tab {
			b.WriteString(render.Selected.Render(" "+t.String()+" ") + " ")
		} else {
			b.WriteString(render.Subtle.Render(" "+t.String()+" ") + " ")
		}
	}
	b.WriteString("\n\n")

	if m.tab == tabFunction {
		b.WriteString(m.functionView())
	} else {
		b.WriteString(m.linearView())
	}

	b.WriteString("\n")
	if m.statusErr {
		b.WriteString(render.ErrorStyle.Render("error: " + m.status))
	} else {
		b.WriteString(render.Subtle.Render(m.status))
	}
	b.WriteString("\n" + render.KeyHint.Render(m.hints()))
	return b.String()
}

func (m Model) hints() string {
	switch m.mode {
	case modeEditField:
		return "type to edit  enter apply  esc cancel"
	case modeEditBounds:
		return "tab next field  enter apply  esc cancel"
	}
	if m.tab == tabFunction {
		return "↑↓ field  enter edit  ←→ alpha  b alpha bounds  tab linear  q quit"
	}
	return "↑↓ coefficient  ←→ nudge  enter set  b bounds  tab function  q quit"
}

func (m Model) terminal(panels int) *render.Terminal {
	w := (m.width - 30) / panels
	h := m.height - 20
	return render.NewTerminal(max(w, 20), max(h, 8))
}

func (m Model) cursorLine(on bool, label, value, extra string) string {
	if on {
		return render.Selected.Render("▸ "+label) + " " + render.MetricValue.Render(value) + " " + render.Subtle.Render(extra)
	}
	return "  " + render.MetricLabel.Render(label) + " " + value + " " + render.Subtle.Render(extra)
}

func (m Model) boundsLine() string {
	parts := make([]string, len(m.boundsBuf))
	for i, f := range boundFields {
		v := m.boundsBuf[i]
		if i == m.boundsCur {
			v += "▋"
			parts[i] = render.Selected.Render(f + "=" + v)
			continue
		}
		parts[i] = f + "=" + v
	}
	return "    " + strings.Join(parts, "  ")
}

func (m Model) linearView() string {
	var side strings.Builder
	side.WriteString(render.HeaderStyle.Render("coefficients") + "\n")
	for i, name := range config.Coefficients {
		s, err := m.eng.Sliders().Slider(name)
		if err != nil {
			continue
		}
		on := i == m.cursor[tabLinear]
		value := fmt.Sprintf("%6s", number(s.Value))
		if on && m.mode == modeEditField {
			value = m.editBuf + "▋"
		}
		extra := fmt.Sprintf("[%s, %s] step %s", number(s.Bound.Min), number(s.Bound.Max), number(s.Bound.Step))
		side.WriteString(m.cursorLine(on, name, value, extra) + "\n")
		if on && m.mode == modeEditBounds {
			side.WriteString(m.boundsLine() + "\n")
		}
	}

	res := m.eng.LastLinear()
	if res == nil {
		return lipgloss.JoinHorizontal(lipgloss.Top, side.String(), render.Subtle.Render("no result yet"))
	}
	side.WriteString("\n" + render.MetricLabel.Render("equilibrium ") + render.MetricValue.Render(res.Equilibrium.String()))
	return lipgloss.JoinHorizontal(lipgloss.Top, side.String(), "  ", m.terminal(2).Scene(res.Scene))
}

func (m Model) functionView() string {
	var side strings.Builder
	side.WriteString(render.HeaderStyle.Render("function") + "\n")
	for i, name := range functionFields {
		on := i == m.cursor[tabFunction]
		value := m.fields[name]
		if on && m.mode == modeEditField {
			value = m.editBuf + "▋"
		}
		extra := ""
		if name == engine.AlphaSlider {
			if s, err := m.eng.Sliders().Slider(name); err == nil {
				extra = fmt.Sprintf("[%s, %s] step %s", number(s.Bound.Min), number(s.Bound.Max), number(s.Bound.Step))
			}
		}
		side.WriteString(m.cursorLine(on, fmt.Sprintf("%-7s", name), value, extra) + "\n")
		if name == engine.AlphaSlider && m.mode == modeEditBounds {
			side.WriteString(m.boundsLine() + "\n")
		}
	}

	res := m.eng.LastFunction()
	if res == nil {
		return lipgloss.JoinHorizontal(lipgloss.Top, side.String(), render.Subtle.Render("no result yet"))
	}
	side.WriteString("\n" + render.TextBox.Render(res.Classes.Summary()))

	term := m.terminal(2)
	curve := render.PanelBox.Render(term.Curve(res.Y, res.Input.YLim, res.Title))
	phase := render.PanelBox.Render(render.TitleStyle.Render(res.Phase.Title) + "\n" + term.Panel(res.Phase))
	return lipgloss.JoinHorizontal(lipgloss.Top, side.String(), "  ", curve, phase)
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, eng *engine.Engine) error {
	p := tea.NewProgram(New(ctx, eng), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
