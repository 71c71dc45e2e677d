package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

type memStore struct {
	tasks   map[string]Task
	conns   map[string]TaskConnection
	saves   int
	failing bool
	// failAfter lets that many saves succeed and fails every save after them.
	failAfter int
}

func newMemStore() *memStore {
	return &memStore{tasks: map[string]Task{}, conns: map[string]TaskConnection{}}
}

func (s *memStore) Tasks(ctx context.Context) ([]Task, error) {
	out := make([]Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (s *memStore) fail() bool {
	if s.failing {
		return true
	}
	if s.failAfter > 0 {
		s.failAfter--
		s.failing = s.failAfter == 0
	}
	return false
}

func (s *memStore) SaveTask(task *Task) error {
	if s.fail() {
		return errors.New("disk full")
	}
	s.saves++
	s.tasks[task.ID] = *task
	return nil
}

func (s *memStore) DeleteTask(id string) error {
	delete(s.tasks, id)
	return nil
}

func (s *memStore) Connections(ctx context.Context) ([]TaskConnection, error) {
	out := make([]TaskConnection, 0, len(s.conns))
	for _, c := range s.conns {
		out = append(out, c)
	}
	return out, nil
}

func (s *memStore) SaveConnection(conn TaskConnection) error {
	if s.fail() {
		return errors.New("disk full")
	}
	s.conns[conn.ID] = conn
	return nil
}

func (s *memStore) DeleteConnection(id string) error {
	if _, ok := s.conns[id]; !ok {
		return errors.New("not found")
	}
	delete(s.conns, id)
	return nil
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m model, msgs ...tea.Msg) model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(model)
	}
	return m
}

func loadedModel(t *testing.T, store *memStore, confirmations bool, tasks ...Task) model {
	t.Helper()
	cfg := &Config{DefaultAgent: "claude", Confirmations: confirmations, Theme: DefaultTheme()}
	m := initialModel(store, cfg)
	return press(t, m,
		tea.WindowSizeMsg{Width: 120, Height: 40},
		canvasLoadedMsg{tasks: tasks},
	)
}

func TestModelLoadPlacesTasks(t *testing.T) {
	store := newMemStore()
	m := loadedModel(t, store, true,
		Task{ID: "a", Title: "A", Status: StatusBacklog},
		Task{ID: "b", Title: "B", Status: StatusBacklog},
		Task{ID: "c", Title: "C", Status: StatusDone, CanvasX: 5, CanvasY: 5},
	)
	if m.tasks[1].CanvasY != GridSpacingY {
		t.Errorf("second backlog task not laid out: %+v", m.tasks[1])
	}
	if _, ok := store.tasks["b"]; !ok {
		t.Error("newly placed task not persisted")
	}
	if _, ok := store.tasks["c"]; ok {
		t.Error("already placed task rewritten")
	}
	if !strings.Contains(m.View(), "CANVAS") {
		t.Error("view is missing the mode header")
	}
}

func TestModelConnectFlow(t *testing.T) {
	store := newMemStore()
	m := loadedModel(t, store, true, taskAt("a", 10, 10), taskAt("b", 50, 10))

	m = press(t, m, runes("a"))
	if _, ok := m.state.ConnectMode.(SelectingTarget); !ok {
		t.Fatalf("expected SelectingTarget, got %T", m.state.ConnectMode)
	}
	if !strings.Contains(m.View(), "SELECT TARGET") {
		t.Error("header not updated")
	}

	// Enter on the source itself is refused.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if _, ok := m.state.ConnectMode.(SelectingTarget); !ok {
		t.Fatalf("self target accepted, now %T", m.state.ConnectMode)
	}

	m = press(t, m, runes("j"), tea.KeyMsg{Type: tea.KeyEnter})
	if _, ok := m.state.ConnectMode.(EnteringLabel); !ok {
		t.Fatalf("expected EnteringLabel, got %T", m.state.ConnectMode)
	}

	m = press(t, m, runes("g"), runes("o"), tea.KeyMsg{Type: tea.KeySpace}, runes("nx"),
		tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyEnter})
	if _, ok := m.state.ConnectMode.(ConnectInactive); !ok {
		t.Fatalf("expected inactive, got %T", m.state.ConnectMode)
	}
	if len(store.conns) != 1 {
		t.Fatalf("expected one stored connection, got %d", len(store.conns))
	}
	for _, conn := range store.conns {
		if conn.FromTaskID != "a" || conn.ToTaskID != "b" || conn.Label != "go n" {
			t.Errorf("unexpected connection %+v", conn)
		}
	}
}

func TestModelConnectStoreFailure(t *testing.T) {
	store := newMemStore()
	m := loadedModel(t, store, true, taskAt("a", 10, 10), taskAt("b", 50, 10))
	store.failing = true
	m = press(t, m, runes("a"), runes("j"), tea.KeyMsg{Type: tea.KeyEnter}, runes("x"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.errorMessage == "" {
		t.Error("store failure not reported")
	}
	if len(store.conns) != 0 || len(m.state.Connections) != 0 {
		t.Fatalf("failed save left stored=%d cached=%d", len(store.conns), len(m.state.Connections))
	}

	store.failing = false
	m = press(t, m, runes("a"), runes("j"), tea.KeyMsg{Type: tea.KeyEnter}, runes("x"), tea.KeyMsg{Type: tea.KeyEnter})
	if len(store.conns) != 1 || len(m.state.Connections) != 1 {
		t.Fatalf("retry left stored=%d cached=%d", len(store.conns), len(m.state.Connections))
	}
	if _, ok := store.conns[m.state.Connections[0].ID]; !ok {
		t.Error("cached connection is not the stored one")
	}
}

func TestModelCancelConnect(t *testing.T) {
	store := newMemStore()
	m := loadedModel(t, store, true, taskAt("a", 10, 10), taskAt("b", 50, 10))
	m = press(t, m, runes("a"), tea.KeyMsg{Type: tea.KeyTab}, tea.KeyMsg{Type: tea.KeyEnter},
		runes("x"), tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := m.state.ConnectMode.(ConnectInactive); !ok {
		t.Fatalf("expected inactive, got %T", m.state.ConnectMode)
	}
	if len(store.conns) != 0 || len(m.state.Connections) != 0 {
		t.Error("cancel stored a connection")
	}
}

func TestModelMovePersists(t *testing.T) {
	store := newMemStore()
	m := loadedModel(t, store, true, taskAt("a", 10, 10))
	m = press(t, m, runes("L"), runes("J"))
	if m.tasks[0].CanvasX != 12 || m.tasks[0].CanvasY != 12 {
		t.Errorf("unexpected position (%v, %v)", m.tasks[0].CanvasX, m.tasks[0].CanvasY)
	}
	if got := store.tasks["a"]; got.CanvasX != 12 || got.CanvasY != 12 {
		t.Errorf("position not persisted: %+v", got)
	}
}

func TestModelMoveStoreFailure(t *testing.T) {
	store := newMemStore()
	m := loadedModel(t, store, true, taskAt("a", 10, 10))
	store.failing = true
	m = press(t, m, runes("L"))
	if m.errorMessage == "" {
		t.Error("store failure not reported")
	}
	if !strings.Contains(m.View(), "disk full") {
		t.Error("error not shown in the footer")
	}
}

func TestModelUnlinkWithConfirmation(t *testing.T) {
	store := newMemStore()
	m := loadedModel(t, store, true, taskAt("a", 10, 10), taskAt("b", 50, 10))
	conn := NewTaskConnection("a", "b", "")
	store.conns[conn.ID] = conn
	m.state.Connections = []TaskConnection{conn}

	m = press(t, m, runes("x"))
	if m.mode != ModeConfirm {
		t.Fatalf("expected confirm mode, got %v", m.mode)
	}
	m = press(t, m, runes("n"))
	if m.mode != ModeNormal || len(m.state.Connections) != 1 {
		t.Fatal("declining should keep the connection")
	}

	m = press(t, m, runes("x"), runes("y"))
	if len(m.state.Connections) != 0 || len(store.conns) != 0 {
		t.Error("connection not deleted")
	}
}

func TestModelUnlinkWithoutConfirmation(t *testing.T) {
	store := newMemStore()
	m := loadedModel(t, store, false, taskAt("a", 10, 10), taskAt("b", 50, 10))
	conn := NewTaskConnection("b", "a", "")
	store.conns[conn.ID] = conn
	m.state.Connections = []TaskConnection{conn}

	m = press(t, m, runes("x"))
	if m.mode != ModeNormal || len(store.conns) != 0 {
		t.Error("expected immediate delete")
	}
}

func TestModelZoomAndSelect(t *testing.T) {
	store := newMemStore()
	m := loadedModel(t, store, true, taskAt("a", 10, 10), taskAt("b", 50, 10), taskAt("c", 10, 40))
	m = press(t, m, runes("+"), runes("="))
	if m.state.Zoom <= 1.15 {
		t.Errorf("zoom not increased: %v", m.state.Zoom)
	}
	m = press(t, m, runes("l"))
	if m.state.SelectedNode != 1 {
		t.Errorf("expected b, got %d", m.state.SelectedNode)
	}
	m = press(t, m, runes("h"), runes("j"))
	if m.state.SelectedNode != 2 {
		t.Errorf("expected c, got %d", m.state.SelectedNode)
	}
}

func TestModelAddFlowchart(t *testing.T) {
	store := newMemStore()
	m := loadedModel(t, store, true, taskAt("a", 10, 10))
	chart, ok := ParseFlowchart("graph LR\nX[One] --> Y[Two]")
	if !ok {
		t.Fatal("parse failed")
	}
	if err := m.addFlowchart(chart); err != nil {
		t.Fatal(err)
	}
	if len(m.tasks) != 3 || len(m.state.Connections) != 1 {
		t.Errorf("expected 3 tasks and 1 connection, got %d and %d", len(m.tasks), len(m.state.Connections))
	}
	if len(store.tasks) != 2 || len(store.conns) != 1 {
		t.Errorf("import not persisted: %d tasks, %d connections", len(store.tasks), len(store.conns))
	}
	if m.tasks[2].Agent != "claude" {
		t.Errorf("default agent not applied: %+v", m.tasks[2])
	}
}

func TestModelAddFlowchartRollsBack(t *testing.T) {
	chart, ok := ParseFlowchart("graph LR\nX[One] --> Y[Two]\nY --> Z[Three]")
	if !ok {
		t.Fatal("parse failed")
	}
	// Fail on each write in turn: three tasks then two connections.
	for n := 0; n < 5; n++ {
		store := newMemStore()
		m := loadedModel(t, store, true, taskAt("a", 10, 10))
		store.failAfter = n
		store.failing = n == 0
		if err := m.addFlowchart(chart); err == nil {
			t.Fatalf("write %d: expected an error", n)
		}
		if len(store.tasks) != 0 || len(store.conns) != 0 {
			t.Errorf("write %d: store kept %d tasks, %d connections", n, len(store.tasks), len(store.conns))
		}
		if len(m.tasks) != 1 || len(m.state.Connections) != 0 {
			t.Errorf("write %d: model changed to %d tasks, %d connections", n, len(m.tasks), len(m.state.Connections))
		}
	}
}

func TestModelQuit(t *testing.T) {
	m := loadedModel(t, newMemStore(), true)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
