package cli

import (
	"context"
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/orgchart/pkg/chart"
	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/viewport"
)

// A terminal cell stands for cellWidth x cellHeight screen pixels, so the
// chart keeps its proportions with typical 1:2 character cells.
const (
	cellWidth  = 10.0
	cellHeight = 20.0

	footerRows = 2
	panStep    = 8 * cellWidth
)

var (
	styleEdge     = lipgloss.NewStyle().Foreground(colorDim)
	styleBox      = lipgloss.NewStyle().Foreground(colorWhite)
	styleExpanded = lipgloss.NewStyle().Foreground(colorGreen)
	styleSelected = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	styleFooter   = lipgloss.NewStyle().Foreground(colorGray)
)

type cellStyle uint8

const (
	cellBlank cellStyle = iota
	cellEdge
	cellBox
	cellExpanded
	cellSelected
)

func (s cellStyle) style() lipgloss.Style {
	switch s {
	case cellEdge:
		return styleEdge
	case cellBox:
		return styleBox
	case cellExpanded:
		return styleExpanded
	case cellSelected:
		return styleSelected
	}
	return lipgloss.NewStyle()
}

// =============================================================================
// chartModel - interactive chart
// =============================================================================

// chartModel is the bubbletea model behind the view command. Mouse input
// maps onto the chart's viewport: wheel zooms, dragging the background
// pans and clicking a box toggles it.
type chartModel struct {
	ctx  context.Context
	view *chart.View

	width, height int // terminal cells
	fitted        bool
	selected      string
	err           error
}

func newChartModel(ctx context.Context, view *chart.View) chartModel {
	return chartModel{ctx: ctx, view: view}
}

func (m chartModel) Init() tea.Cmd { return nil }

func (m chartModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if err := m.view.Resize(m.container()); err != nil {
			m.err = err
			return m, nil
		}
		if !m.fitted {
			m.err = m.view.Fit(m.ctx)
			m.fitted = m.err == nil
		}

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)
	}
	return m, nil
}

func (m chartModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "+", "=":
		m.view.ZoomIn()
	case "-", "_":
		m.view.ZoomOut()
	case "left", "h":
		m.pan(panStep, 0)
	case "right", "l":
		m.pan(-panStep, 0)
	case "up", "k":
		m.pan(0, panStep)
	case "down", "j":
		m.pan(0, -panStep)
	case "f":
		m.err = m.view.Fit(m.ctx)
	case "e":
		m.err = m.view.ExpandAll(m.ctx)
	case "c":
		m.err = m.view.CollapseDefault(m.ctx)
	case "tab":
		m.selected = m.cycle(1)
	case "shift+tab":
		m.selected = m.cycle(-1)
	case "enter", " ":
		if m.selected != "" {
			_, m.err = m.view.Toggle(m.ctx, m.selected)
		}
	}
	return m, nil
}

func (m *chartModel) handleMouse(msg tea.MouseMsg) {
	p := m.screenPoint(msg.X, msg.Y)
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.view.Wheel(-1)
	case msg.Button == tea.MouseButtonWheelDown:
		m.view.Wheel(1)
	case msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress:
		if b, ok := m.view.BoxAt(p); ok {
			m.selected = b.ID
			_, m.err = m.view.Toggle(m.ctx, b.ID)
			return
		}
		m.view.BeginDrag(p)
	case msg.Action == tea.MouseActionMotion:
		m.view.Drag(p)
	case msg.Action == tea.MouseActionRelease:
		m.view.EndDrag()
	}
}

// pan shifts the chart by (dx, dy) screen pixels.
func (m *chartModel) pan(dx, dy float64) {
	m.view.BeginDrag(viewport.Point{})
	m.view.Drag(viewport.Point{X: dx, Y: dy})
	m.view.EndDrag()
}

// cycle returns the visible box dir steps from the selection, in layout
// order.
func (m chartModel) cycle(dir int) string {
	var ids []string
	for _, b := range m.view.Layout().Boxes {
		if b.Visible {
			ids = append(ids, b.ID)
		}
	}
	if len(ids) == 0 {
		return ""
	}
	cur := -1
	for i, id := range ids {
		if id == m.selected {
			cur = i
			break
		}
	}
	if cur < 0 {
		if dir > 0 {
			return ids[0]
		}
		return ids[len(ids)-1]
	}
	return ids[(cur+dir+len(ids))%len(ids)]
}

func (m chartModel) container() viewport.Size {
	return viewport.Size{
		Width:  float64(m.width) * cellWidth,
		Height: float64(max(m.height-footerRows, 1)) * cellHeight,
	}
}

// screenPoint returns the pixel at the center of a terminal cell.
func (m chartModel) screenPoint(col, row int) viewport.Point {
	return viewport.Point{X: (float64(col) + 0.5) * cellWidth, Y: (float64(row) + 0.5) * cellHeight}
}

// =============================================================================
// Drawing
// =============================================================================

type canvas struct {
	w, h   int
	runes  [][]rune
	styles [][]cellStyle
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, runes: make([][]rune, h), styles: make([][]cellStyle, h)}
	for y := range c.runes {
		c.runes[y] = []rune(strings.Repeat(" ", w))
		c.styles[y] = make([]cellStyle, w)
	}
	return c
}

func (c *canvas) set(x, y int, r rune, s cellStyle) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	c.runes[y][x] = r
	c.styles[y][x] = s
}

// line draws a connector segment, joining crossings.
func (c *canvas) line(x, y int, r rune) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	if cur := c.runes[y][x]; cur != ' ' && cur != r {
		r = '┼'
	}
	c.set(x, y, r, cellEdge)
}

func (c *canvas) text(x, y, width int, s string, st cellStyle) {
	rs := []rune(s)
	if len(rs) > width {
		if width <= 1 {
			return
		}
		rs = append(rs[:width-1], '…')
	}
	x += (width - len(rs)) / 2
	for i, r := range rs {
		c.set(x+i, y, r, st)
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for y := range c.runes {
		start := 0
		for x := 1; x <= c.w; x++ {
			if x == c.w || c.styles[y][x] != c.styles[y][start] {
				run := string(c.runes[y][start:x])
				if st := c.styles[y][start]; st != cellBlank {
					run = st.style().Render(run)
				}
				b.WriteString(run)
				start = x
			}
		}
		if y < c.h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func toCell(p viewport.Point) (int, int) {
	return int(math.Floor(p.X / cellWidth)), int(math.Floor(p.Y / cellHeight))
}

func (m chartModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading…"
	}
	snap := m.view.Snapshot()
	vp := viewport.New(m.view.Config().Viewport)
	vp.Zoom, vp.Pan = snap.Viewport.Zoom, snap.Viewport.Pan

	c := newCanvas(m.width, max(m.height-footerRows, 1))
	for _, e := range snap.Edges {
		drawEdge(c, vp, e)
	}
	for _, b := range snap.Boxes {
		if b.Visible {
			drawBox(c, vp, b, b.ID == m.selected)
		}
	}

	status := fmt.Sprintf("zoom %d%% · %d of %d positions", int(math.Round(snap.Viewport.Zoom*100)), len(snap.Boxes), snap.Nodes)
	if m.selected != "" {
		status += " · " + m.selected
	}
	if m.err != nil {
		status = styleIconError.Render(iconError) + " " + m.err.Error()
	}
	help := "click/enter toggle · tab select · drag/arrows pan · wheel/+/- zoom · f fit · e expand · c collapse · q quit"
	return c.String() + "\n" + styleFooter.Render(status) + "\n" + StyleDim.Render(help)
}

// drawEdge draws a connector down from the parent, across at mid level and
// down into the child.
func drawEdge(c *canvas, vp *viewport.Viewport, e layout.Edge) {
	sx, sy := toCell(vp.ToScreen(viewport.Point{X: e.SourceX, Y: e.SourceY}))
	tx, ty := toCell(vp.ToScreen(viewport.Point{X: e.TargetX, Y: e.TargetY}))
	mid := sy + (ty-sy)/2
	for y := sy; y < mid; y++ {
		c.line(sx, y, '│')
	}
	lo, hi := min(sx, tx), max(sx, tx)
	for x := lo; x <= hi; x++ {
		c.line(x, mid, '─')
	}
	for y := mid + 1; y < ty; y++ {
		c.line(tx, y, '│')
	}
}

func drawBox(c *canvas, vp *viewport.Viewport, b layout.Box, selected bool) {
	x0, y0 := toCell(vp.ToScreen(viewport.Point{X: b.Left(), Y: b.Y}))
	x1, y1 := toCell(vp.ToScreen(viewport.Point{X: b.Right(), Y: b.Bottom()}))
	if x1-x0 < 2 || y1-y0 < 1 {
		c.set(x0, y0, '■', cellBox)
		return
	}

	st := cellBox
	if b.Expanded {
		st = cellExpanded
	}
	if selected {
		st = cellSelected
	}

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			r := ' '
			switch {
			case y == y0 && x == x0:
				r = '╭'
			case y == y0 && x == x1:
				r = '╮'
			case y == y1 && x == x0:
				r = '╰'
			case y == y1 && x == x1:
				r = '╯'
			case y == y0 || y == y1:
				r = '─'
			case x == x0 || x == x1:
				r = '│'
			}
			c.set(x, y, r, st)
		}
	}

	inner := x1 - x0 - 1
	row := y0 + 1
	for _, s := range []string{b.Label, b.Title, b.Holder} {
		if s == "" || row >= y1 {
			continue
		}
		c.text(x0+1, row, inner, s, st)
		row++
	}

	if b.HasChildren {
		badge := '+'
		if b.Expanded {
			badge = '−'
		}
		c.set(x0+(x1-x0)/2, y1, badge, st)
	}
}
