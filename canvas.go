package main

import "math"

// ConnectMode is the state of the connection drawing flow. The concrete
// variants are ConnectInactive, SelectingTarget and EnteringLabel.
type ConnectMode interface {
	connectMode()
}

type ConnectInactive struct{}

// SelectingTarget holds the source task while the user picks a target.
type SelectingTarget struct {
	FromTaskID string
}

// EnteringLabel holds both endpoints while the user types the label.
type EnteringLabel struct {
	FromTaskID string
	ToTaskID   string
	Label      string
}

func (ConnectInactive) connectMode() {}
func (SelectingTarget) connectMode() {}
func (EnteringLabel) connectMode()   {}

// CanvasState is the viewport, selection and connect flow of the canvas view.
// SelectedNode indexes the task slice passed to each call; callers re-validate
// it with ClampSelection when the slice shrinks.
type CanvasState struct {
	PanX         float64
	PanY         float64
	Zoom         float64
	SelectedNode int
	ConnectMode  ConnectMode
	Connections  []TaskConnection
}

func NewCanvasState() *CanvasState {
	return &CanvasState{
		Zoom:        1.0,
		ConnectMode: ConnectInactive{},
		Connections: make([]TaskConnection, 0),
	}
}

func (s *CanvasState) ZoomIn() {
	s.Zoom = math.Min(s.Zoom+zoomStep, maxZoom)
}

func (s *CanvasState) ZoomOut() {
	s.Zoom = math.Max(s.Zoom-zoomStep, minZoom)
}

func (s *CanvasState) Pan(dx, dy float64) {
	s.PanX += dx
	s.PanY += dy
}

func (s *CanvasState) SelectNext(total int) {
	if total > 0 {
		s.SelectedNode = (s.SelectedNode + 1) % total
	}
}

func (s *CanvasState) SelectPrev(total int) {
	if total > 0 {
		if s.SelectedNode <= 0 {
			s.SelectedNode = total - 1
		} else {
			s.SelectedNode--
		}
	}
}

// ClampSelection pulls the selection back inside a list of the given length.
func (s *CanvasState) ClampSelection(total int) {
	if total <= 0 || s.SelectedNode < 0 {
		s.SelectedNode = 0
		return
	}
	if s.SelectedNode >= total {
		s.SelectedNode = total - 1
	}
}

// SelectInDirection moves the selection to the nearest task whose offset from
// the current task lies in the half-plane of (dx, dy). Ties keep the first
// candidate in list order.
func (s *CanvasState) SelectInDirection(tasks []Task, dx, dy float64) {
	if s.SelectedNode < 0 || s.SelectedNode >= len(tasks) {
		return
	}
	current := tasks[s.SelectedNode]

	bestIdx := s.SelectedNode
	bestDist := math.MaxFloat64
	for i, task := range tasks {
		if i == s.SelectedNode {
			continue
		}
		relX := task.CanvasX - current.CanvasX
		relY := task.CanvasY - current.CanvasY
		if relX*dx+relY*dy <= 0 {
			continue
		}
		dist := math.Hypot(relX, relY)
		if dist < bestDist {
			bestDist = dist
			bestIdx = i
		}
	}
	s.SelectedNode = bestIdx
}

// MoveSelected shifts the selected task and returns it for persistence.
func (s *CanvasState) MoveSelected(tasks []Task, dx, dy float64) (*Task, bool) {
	if s.SelectedNode < 0 || s.SelectedNode >= len(tasks) {
		return nil, false
	}
	task := &tasks[s.SelectedNode]
	task.CanvasX += dx
	task.CanvasY += dy
	return task, true
}

func (s *CanvasState) SelectedTask(tasks []Task) (*Task, bool) {
	if s.SelectedNode < 0 || s.SelectedNode >= len(tasks) {
		return nil, false
	}
	return &tasks[s.SelectedNode], true
}

// ConnectSource returns the source task id while a target is being picked.
func (s *CanvasState) ConnectSource() (string, bool) {
	if m, ok := s.ConnectMode.(SelectingTarget); ok {
		return m.FromTaskID, true
	}
	return "", false
}

func (s *CanvasState) Connecting() bool {
	switch s.ConnectMode.(type) {
	case SelectingTarget, EnteringLabel:
		return true
	default:
		return false
	}
}

// BeginConnect starts a connection from the selected task.
func (s *CanvasState) BeginConnect(tasks []Task) bool {
	if s.Connecting() {
		return false
	}
	task, ok := s.SelectedTask(tasks)
	if !ok {
		return false
	}
	s.ConnectMode = SelectingTarget{FromTaskID: task.ID}
	return true
}

// ConfirmTarget picks the selected task as the target. Picking the source
// itself is ignored and the flow stays in SelectingTarget.
func (s *CanvasState) ConfirmTarget(tasks []Task) bool {
	mode, ok := s.ConnectMode.(SelectingTarget)
	if !ok {
		return false
	}
	target, ok := s.SelectedTask(tasks)
	if !ok || target.ID == mode.FromTaskID {
		return false
	}
	s.ConnectMode = EnteringLabel{FromTaskID: mode.FromTaskID, ToTaskID: target.ID}
	return true
}

func (s *CanvasState) AppendLabel(r rune) {
	if mode, ok := s.ConnectMode.(EnteringLabel); ok {
		mode.Label += string(r)
		s.ConnectMode = mode
	}
}

func (s *CanvasState) DeleteLabelChar() {
	if mode, ok := s.ConnectMode.(EnteringLabel); ok {
		runes := []rune(mode.Label)
		if len(runes) > 0 {
			mode.Label = string(runes[:len(runes)-1])
			s.ConnectMode = mode
		}
	}
}

// ConfirmLabel finishes the flow, caches and returns the new connection.
func (s *CanvasState) ConfirmLabel() (TaskConnection, bool) {
	mode, ok := s.ConnectMode.(EnteringLabel)
	if !ok {
		return TaskConnection{}, false
	}
	conn := NewTaskConnection(mode.FromTaskID, mode.ToTaskID, mode.Label)
	s.Connections = append(s.Connections, conn)
	s.ConnectMode = ConnectInactive{}
	return conn, true
}

func (s *CanvasState) CancelConnect() {
	s.ConnectMode = ConnectInactive{}
}

// SelectedConnection is the first cached connection touching the selected task.
func (s *CanvasState) SelectedConnection(tasks []Task) (int, bool) {
	task, ok := s.SelectedTask(tasks)
	if !ok {
		return -1, false
	}
	for i, conn := range s.Connections {
		if conn.Touches(task.ID) {
			return i, true
		}
	}
	return -1, false
}

func (s *CanvasState) RemoveConnection(id string) (TaskConnection, bool) {
	for i, conn := range s.Connections {
		if conn.ID == id {
			s.Connections = append(s.Connections[:i], s.Connections[i+1:]...)
			return conn, true
		}
	}
	return TaskConnection{}, false
}
