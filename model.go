package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type model struct {
	store Store
	cfg   *Config

	tasks []Task
	state *CanvasState

	mode          Mode
	confirmAction ConfirmAction
	pendingConn   string

	width  int
	height int

	loaded         bool
	successMessage string
	errorMessage   string

	keys keyMap
	help help.Model
}

type canvasLoadedMsg struct {
	tasks []Task
	conns []TaskConnection
	err   error
}

func initialModel(store Store, cfg *Config) model {
	return model{
		store: store,
		cfg:   cfg,
		state: NewCanvasState(),
		mode:  ModeNormal,
		keys:  newKeyMap(),
		help:  help.New(),
	}
}

func loadCanvas(store Store) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		tasks, err := store.Tasks(ctx)
		if err != nil {
			return canvasLoadedMsg{err: err}
		}
		conns, err := store.Connections(ctx)
		if err != nil {
			return canvasLoadedMsg{err: err}
		}
		return canvasLoadedMsg{tasks: tasks, conns: conns}
	}
}

func (m model) Init() tea.Cmd {
	return loadCanvas(m.store)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case canvasLoadedMsg:
		if msg.err != nil {
			slog.Error("load canvas", "err", msg.err)
			m.errorMessage = msg.err.Error()
			return m, nil
		}
		m.loaded = true
		m.setCanvas(msg.tasks, msg.conns)
		return m, nil

	case tea.KeyMsg:
		m.successMessage = ""
		m.errorMessage = ""
		if m.mode == ModeConfirm {
			return m.handleConfirmKey(msg)
		}
		switch m.state.ConnectMode.(type) {
		case SelectingTarget:
			return m.handleTargetKey(msg)
		case EnteringLabel:
			return m.handleLabelKey(msg)
		default:
			return m.handleCanvasKey(msg)
		}
	}
	return m, nil
}

// setCanvas installs freshly loaded tasks, places the unplaced ones and
// writes the new positions back.
func (m *model) setCanvas(tasks []Task, conns []TaskConnection) {
	unplaced := make(map[string]bool)
	for _, task := range tasks {
		if !task.Placed() {
			unplaced[task.ID] = true
		}
	}
	AutoLayout(tasks)
	for i := range tasks {
		if unplaced[tasks[i].ID] && tasks[i].Placed() {
			m.saveTask(&tasks[i])
		}
	}
	m.tasks = tasks
	m.state.Connections = conns
	m.state.ClampSelection(len(tasks))
	slog.Debug("canvas loaded", "tasks", len(tasks), "connections", len(conns))
}

func (m model) handleCanvasKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.selectDir):
		m.handleSelectDirection(msg.String())
		m.followSelection()
	case key.Matches(msg, m.keys.move):
		m.handleMove(msg.String())
		m.followSelection()
	case key.Matches(msg, m.keys.pan):
		m.handlePan(msg.String())
	case key.Matches(msg, m.keys.next):
		m.state.SelectNext(len(m.tasks))
		m.followSelection()
	case key.Matches(msg, m.keys.prev):
		m.state.SelectPrev(len(m.tasks))
		m.followSelection()
	case key.Matches(msg, m.keys.zoomIn):
		m.state.ZoomIn()
	case key.Matches(msg, m.keys.zoomOut):
		m.state.ZoomOut()
	case key.Matches(msg, m.keys.connect):
		if m.state.BeginConnect(m.tasks) {
			slog.Debug("connect started", "from", m.tasks[m.state.SelectedNode].ID)
		}
	case key.Matches(msg, m.keys.unlink):
		m.requestUnlink()
	case key.Matches(msg, m.keys.importClip):
		m.importFromClipboard()
	case key.Matches(msg, m.keys.copyChart):
		m.copyFlowchart()
	case key.Matches(msg, m.keys.exportPNG):
		m.export(FormatPNG)
	case key.Matches(msg, m.keys.exportTXT):
		m.export(FormatTXT)
	}
	return m, nil
}

func (m model) handleTargetKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.cancel):
		m.state.CancelConnect()
	case key.Matches(msg, m.keys.confirm):
		if !m.state.ConfirmTarget(m.tasks) {
			m.errorMessage = "pick a task other than the source"
		}
	case msg.String() == "j" || key.Matches(msg, m.keys.next):
		m.state.SelectNext(len(m.tasks))
		m.followSelection()
	case msg.String() == "k" || key.Matches(msg, m.keys.prev):
		m.state.SelectPrev(len(m.tasks))
		m.followSelection()
	case key.Matches(msg, m.keys.selectDir):
		m.handleSelectDirection(msg.String())
		m.followSelection()
	case key.Matches(msg, m.keys.pan):
		m.handlePan(msg.String())
	case key.Matches(msg, m.keys.zoomIn):
		m.state.ZoomIn()
	case key.Matches(msg, m.keys.zoomOut):
		m.state.ZoomOut()
	}
	return m, nil
}

func (m model) handleLabelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.state.CancelConnect()
	case tea.KeyEnter:
		conn, ok := m.state.ConfirmLabel()
		if !ok {
			return m, nil
		}
		if err := m.store.SaveConnection(conn); err != nil {
			slog.Error("save connection", "id", conn.ID, "err", err)
			m.state.RemoveConnection(conn.ID)
			m.errorMessage = err.Error()
			return m, nil
		}
		m.successMessage = "Connection saved"
	case tea.KeyBackspace:
		m.state.DeleteLabelChar()
	case tea.KeySpace:
		m.state.AppendLabel(' ')
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			m.state.AppendLabel(r)
		}
	}
	return m, nil
}

func (m model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.yes):
		if m.confirmAction == ConfirmDeleteConnection {
			m.deleteConnection(m.pendingConn)
		}
		m.mode = ModeNormal
		m.confirmAction = ConfirmNone
		m.pendingConn = ""
	case key.Matches(msg, m.keys.no):
		m.mode = ModeNormal
		m.confirmAction = ConfirmNone
		m.pendingConn = ""
	}
	return m, nil
}

// requestUnlink deletes the first connection touching the selected task,
// asking first when confirmations are on.
func (m *model) requestUnlink() {
	idx, ok := m.state.SelectedConnection(m.tasks)
	if !ok {
		m.errorMessage = "no connection on this task"
		return
	}
	id := m.state.Connections[idx].ID
	if m.cfg.Confirmations {
		m.mode = ModeConfirm
		m.confirmAction = ConfirmDeleteConnection
		m.pendingConn = id
		return
	}
	m.deleteConnection(id)
}

func (m *model) deleteConnection(id string) {
	if err := m.store.DeleteConnection(id); err != nil {
		slog.Error("delete connection", "id", id, "err", err)
		m.errorMessage = err.Error()
		return
	}
	m.state.RemoveConnection(id)
	m.successMessage = "Connection deleted"
}

func (m *model) saveTask(task *Task) {
	task.UpdatedAt = time.Now().UTC()
	if err := m.store.SaveTask(task); err != nil {
		slog.Error("save task", "id", task.ID, "err", err)
		m.errorMessage = err.Error()
	}
}

// addFlowchart appends imported tasks and connections and persists them.
func (m *model) addFlowchart(chart *Flowchart) error {
	tasks, conns := ImportFlowchart(chart, m.cfg.DefaultAgent, "")
	if err := SaveImported(m.store, tasks, conns); err != nil {
		return err
	}
	m.tasks = append(m.tasks, tasks...)
	m.state.Connections = append(m.state.Connections, conns...)
	m.state.ClampSelection(len(m.tasks))
	slog.Info("flowchart imported", "tasks", len(tasks), "connections", len(conns))
	return nil
}

func (m *model) importFromClipboard() {
	text, err := readClipboardText()
	if err != nil {
		m.errorMessage = fmt.Sprintf("clipboard: %v", err)
		return
	}
	chart, ok := ParseFlowchart(flowchartSource(cleanClipboardText(text)))
	if !ok {
		m.errorMessage = "clipboard does not hold a flowchart"
		return
	}
	if err := m.addFlowchart(chart); err != nil {
		slog.Error("import flowchart", "err", err)
		m.errorMessage = err.Error()
		return
	}
	m.successMessage = fmt.Sprintf("Imported %d tasks", len(chart.Nodes))
}

func (m *model) copyFlowchart() {
	if len(m.tasks) == 0 {
		m.errorMessage = ErrNothingToExport.Error()
		return
	}
	if err := writeClipboardText(FormatFlowchart(m.tasks, m.state.Connections, LeftRight)); err != nil {
		m.errorMessage = fmt.Sprintf("clipboard: %v", err)
		return
	}
	m.successMessage = "Copied flowchart"
}

func (m *model) export(format ExportFormat) {
	var (
		path string
		err  error
	)
	switch format {
	case FormatPNG:
		if path, err = m.cfg.GetSavePath("canvas.png"); err == nil {
			err = ExportPNG(path, m.tasks, m.state.Connections)
		}
	case FormatTXT:
		cols, rows := m.canvasSize()
		if path, err = m.cfg.GetSavePath("canvas.txt"); err == nil {
			err = ExportTXT(path, m.tasks, m.state, cols, rows)
		}
	case FormatMermaid:
		if path, err = m.cfg.GetSavePath("canvas.mmd"); err == nil {
			err = ExportMermaid(path, m.tasks, m.state.Connections)
		}
	}
	if err != nil {
		slog.Error("export", "path", path, "err", err)
		m.errorMessage = err.Error()
		return
	}
	m.successMessage = "Exported to " + path
}

// canvasSize is the area left for the canvas after the header and footer.
func (m model) canvasSize() (int, int) {
	cols := m.width
	if cols < 1 {
		cols = 80
	}
	rows := m.height - 1 - lipgloss.Height(m.footer())
	if m.height < 1 {
		rows = 24
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

func (m model) footer() string {
	switch {
	case m.mode == ModeConfirm:
		return "Mode: CONFIRM | Delete this connection? (y/n)"
	case m.errorMessage != "":
		return lipgloss.NewStyle().Foreground(m.cfg.Theme.HTMLBadge).Render("ERROR: " + m.errorMessage)
	case m.successMessage != "":
		return m.successMessage
	}
	switch mode := m.state.ConnectMode.(type) {
	case EnteringLabel:
		return "Label: " + mode.Label + "█  " + m.help.View(connectHelp{keys: m.keys, labelling: true})
	case SelectingTarget:
		return m.help.View(connectHelp{keys: m.keys})
	}
	return m.help.View(m.keys)
}

func (m model) View() string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("0")).
		Background(m.cfg.Theme.Accent).
		Render(modeHeader(m.state))

	cols, rows := m.canvasSize()
	var body string
	switch {
	case !m.loaded && m.errorMessage == "":
		body = "Loading..."
	case len(m.tasks) == 0:
		body = lipgloss.NewStyle().Foreground(m.cfg.Theme.Dimmed).
			Render("No tasks yet. Press i to import a flowchart from the clipboard.")
	default:
		canvas := NewViewportCanvas(cols, rows, m.state)
		DrawCanvas(canvas, m.tasks, m.state, m.cfg.Theme)
		body = strings.Join(canvas.Lines(true), "\n")
	}
	body = lipgloss.NewStyle().Height(rows).MaxHeight(rows).Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.footer())
}
