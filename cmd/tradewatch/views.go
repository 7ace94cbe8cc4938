package main

import (
	"fmt"
	"math"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/rxtech-lab/tradewatch/internal/types"
)

const (
	maxAlertRows   = 5
	minChartWidth  = 20
	minChartHeight = 6
)

// keyMap defines the screen key bindings.
type keyMap struct {
	Quit key.Binding
	Help key.Binding
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Help, k.Quit}}
}

func newKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
	}
}

// NewAlertTable creates a new table for displaying recent alerts.
func NewAlertTable() table.Model {
	columns := []table.Column{
		{Title: "Time", Width: 10},
		{Title: "Symbol", Width: 10},
		{Title: "Quantity", Width: 16},
		{Title: "Trade ID", Width: 14},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(false),
		table.WithHeight(maxAlertRows+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// UpdateAlertRows updates the table with alerts, newest first.
func UpdateAlertRows(t table.Model, alerts []types.Alert) table.Model {
	rows := make([]table.Row, 0, len(alerts))

	for _, alert := range alerts {
		tradeID := "-"
		if alert.TradeID != 0 {
			tradeID = fmt.Sprintf("%d", alert.TradeID)
		}

		rows = append(rows, table.Row{
			alert.CreatedAt.Format("15:04:05"),
			alert.Symbol,
			alert.Quantity.String(),
			tradeID,
		})
	}

	t.SetRows(rows)

	return t
}

// RenderChart draws points as a braille line chart. Fewer than two points
// render a placeholder.
func RenderChart(points []types.PricePoint, width, height int) string {
	width = max(width, minChartWidth)
	height = max(height, minChartHeight)

	if len(points) < 2 {
		return lipgloss.NewStyle().
			Width(width).
			Height(height).
			Faint(true).
			Render("Waiting for prices...")
	}

	minPrice, maxPrice := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		minPrice = math.Min(minPrice, p.Price)
		maxPrice = math.Max(maxPrice, p.Price)
	}

	margin := (maxPrice - minPrice) * 0.1
	if margin == 0 {
		margin = math.Max(maxPrice*0.0001, 0.01)
	}

	yLabelFormatter := func(_ int, value float64) string {
		return fmt.Sprintf("%.2f", value)
	}
	xLabelFormatter := func(_ int, value float64) string {
		return fmt.Sprintf("%d", int(math.Round(value)))
	}

	first := float64(points[0].Index)
	last := float64(points[len(points)-1].Index)

	lc := linechart.New(width, height,
		first, last,
		minPrice-margin, maxPrice+margin,
		linechart.WithXYSteps(4, 4),
		linechart.WithXLabelFormatter(xLabelFormatter),
		linechart.WithYLabelFormatter(yLabelFormatter),
		linechart.WithStyles(lipgloss.Style{}, lipgloss.Style{}, ChartStyle),
	)

	for i := 0; i < len(points)-1; i++ {
		p1 := canvas.Float64Point{X: float64(points[i].Index), Y: points[i].Price}
		p2 := canvas.Float64Point{X: float64(points[i+1].Index), Y: points[i+1].Price}
		lc.DrawBrailleLineWithStyle(p1, p2, ChartStyle)
	}

	lc.DrawXYAxisAndLabel()

	return lc.View()
}
