package main

// direction maps a navigation key to a unit vector in canvas space, y down.
func direction(key string) (float64, float64, bool) {
	switch key {
	case "h", "H", "left", "shift+left":
		return -1, 0, true
	case "l", "L", "right", "shift+right":
		return 1, 0, true
	case "k", "K", "up", "shift+up":
		return 0, -1, true
	case "j", "J", "down", "shift+down":
		return 0, 1, true
	}
	return 0, 0, false
}

func (m *model) handlePan(key string) {
	if dx, dy, ok := direction(key); ok {
		m.state.Pan(dx*panStep, dy*panStep)
	}
}

func (m *model) handleSelectDirection(key string) {
	if dx, dy, ok := direction(key); ok {
		m.state.SelectInDirection(m.tasks, dx, dy)
	}
}

// handleMove shifts the selected task and writes its new position through.
func (m *model) handleMove(key string) {
	dx, dy, ok := direction(key)
	if !ok {
		return
	}
	if task, ok := m.state.MoveSelected(m.tasks, dx*moveStep, dy*moveStep); ok {
		m.saveTask(task)
	}
}

// followSelection pans just enough to bring the selected task into view.
func (m *model) followSelection() {
	task, ok := m.state.SelectedTask(m.tasks)
	if !ok {
		return
	}
	cols, rows := m.canvasSize()
	zoom := m.state.Zoom
	spanX := float64(cols) / zoom
	spanY := float64(rows) * 2 / zoom

	left := m.state.PanX - viewportMargin
	top := m.state.PanY - viewportMargin
	switch {
	case task.CanvasX < left:
		m.state.PanX = task.CanvasX + viewportMargin - 1
	case task.CanvasX+NodeWidth > left+spanX:
		m.state.PanX = task.CanvasX + NodeWidth - spanX + viewportMargin + 1
	}
	switch {
	case task.CanvasY < top:
		m.state.PanY = task.CanvasY + viewportMargin - 1
	case task.CanvasY+NodeHeight > top+spanY:
		m.state.PanY = task.CanvasY + NodeHeight - spanY + viewportMargin + 1
	}
}
