package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rxtech-lab/tradewatch/internal/monitor"
	"github.com/rxtech-lab/tradewatch/internal/series"
	"github.com/rxtech-lab/tradewatch/internal/types"
	"github.com/shopspring/decimal"
)

const sinkBufferSize = 256

// programSink forwards messages from background goroutines to the running
// program in the order they were sent. Send never blocks: the feed goroutine
// calls it, and Program.Send blocks until Update runs, which may itself be
// waiting for the feed to close. Messages that overflow the buffer are dropped.
type programSink struct {
	msgs      chan tea.Msg
	stop      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

func newProgramSink(size int) *programSink {
	if size <= 0 {
		size = sinkBufferSize
	}

	return &programSink{
		msgs:      make(chan tea.Msg, size),
		stop:      make(chan struct{}),
		startOnce: sync.Once{},
		stopOnce:  sync.Once{},
	}
}

// SetSender starts forwarding to send. Messages buffered before the call are
// delivered first. Only the first sender is used.
func (s *programSink) SetSender(send func(tea.Msg)) {
	s.startOnce.Do(func() {
		go s.forward(send)
	})
}

// Send queues msg for delivery, or drops it if the buffer is full.
func (s *programSink) Send(msg tea.Msg) {
	select {
	case s.msgs <- msg:
	default:
	}
}

// Stop ends forwarding. Queued messages are discarded.
func (s *programSink) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
}

func (s *programSink) forward(send func(tea.Msg)) {
	for {
		select {
		case <-s.stop:
			return
		case msg := <-s.msgs:
			send(msg)
		}
	}
}

// Model is the main Bubble Tea model for the trade watch screen.
type Model struct {
	session    *monitor.Session
	label      string
	threshold  decimal.Decimal
	interval   time.Duration
	window     int
	keys       keyMap
	help       help.Model
	alertTable table.Model
	alerts     []types.Alert
	priceText  string
	changeText string
	change     decimal.Decimal
	status     types.FeedStatus
	err        error
	width      int
	height     int
	quitting   bool
}

// NewModel creates a new Model for session.
func NewModel(session *monitor.Session) Model {
	cfg := session.Config()

	return Model{
		session:    session,
		label:      cfg.DatasetLabel(),
		threshold:  cfg.ThresholdDecimal(),
		interval:   cfg.DrainInterval,
		window:     cfg.ChartWindow,
		keys:       newKeyMap(),
		help:       help.New(),
		alertTable: NewAlertTable(),
		alerts:     make([]types.Alert, 0, maxAlertRows),
		priceText:  session.Series().PriceText(),
		changeText: session.Series().ChangeText(),
		change:     decimal.Zero,
		status:     session.Status(),
		err:        nil,
		width:      80,
		height:     24,
		quitting:   false,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.startFeed(), drainTick(m.interval))
}

func drainTick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return drainTickMsg(t)
	})
}

// startFeed returns a command that connects the feed.
func (m Model) startFeed() tea.Cmd {
	session := m.session

	return func() tea.Msg {
		if err := session.Start(context.Background()); err != nil {
			return FeedErrorMsg{Err: err}
		}

		return FeedStartedMsg{}
	}
}

// closeSession tears the session down off the render loop. Closing waits for
// the close frame and the feed goroutine.
func (m Model) closeSession() tea.Cmd {
	session := m.session

	return func() tea.Msg {
		return sessionClosedMsg{Err: session.Close()}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.quitting {
				return m, nil
			}
			m.quitting = true

			return m, m.closeSession()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll

			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.alertTable.SetWidth(msg.Width)

		return m, nil

	case sessionClosedMsg:
		m.err = msg.Err

		return m, tea.Quit

	case drainTickMsg:
		if m.quitting || m.session.Closed() {
			return m, nil
		}

		if update, ok := m.session.Tick(); ok {
			m = m.applyUpdate(update)
		}
		m.status = m.session.Status()

		return m, drainTick(m.interval)

	case AlertMsg:
		m.alerts = append([]types.Alert{msg.Alert}, m.alerts...)
		if len(m.alerts) > maxAlertRows {
			m.alerts = m.alerts[:maxAlertRows]
		}
		m.alertTable = UpdateAlertRows(m.alertTable, m.alerts)

		return m, nil

	case FeedStatusMsg:
		m.status = m.session.Status()
		if msg.Err != nil {
			m.err = msg.Err
		}

		return m, nil

	case FeedStartedMsg:
		m.status = m.session.Status()

		return m, nil

	case FeedErrorMsg:
		m.err = msg.Err
		m.status = m.session.Status()

		return m, nil
	}

	return m, nil
}

func (m Model) applyUpdate(update series.Update) Model {
	m.priceText = update.PriceText()
	m.changeText = update.ChangeText()
	m.change = update.ChangePercent

	return m
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder

	s.WriteString(TitleStyle.Render(m.label))
	s.WriteString("\n\n")
	s.WriteString(m.priceText)
	s.WriteString("\n")
	s.WriteString(FormatChangeWithColor(m.changeText, m.change))
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n\n")
	}

	chartHeight := m.height - 16
	s.WriteString(RenderChart(m.session.Series().Window(m.window), m.width-2, chartHeight))
	s.WriteString("\n\n")

	if len(m.alerts) == 0 {
		s.WriteString(HelpStyle.Render(fmt.Sprintf("No trades above %s yet", m.threshold.String())))
	} else {
		s.WriteString(AlertStyle.Render(fmt.Sprintf("%s %s", m.alerts[0].Title, m.alerts[0].Message)))
		s.WriteString("\n")
		s.WriteString(m.alertTable.View())
	}
	s.WriteString("\n\n")

	stats := m.session.Stats()
	s.WriteString(HelpStyle.Render(fmt.Sprintf("Feed: %s | queued: %d | dropped: %d | alerts: %d",
		m.status, m.session.QueueLen(), stats.FramesDropped, stats.AlertsRaised)))
	s.WriteString("\n")
	s.WriteString(m.help.View(m.keys))

	return s.String()
}
