package main

// AutoLayout places unplaced tasks on a grid: one column per status, one row
// per task of that status in list order. The row counter advances for every
// task in the column, placed or not, so gaps are left where placed tasks sit.
// Tasks away from the origin are never moved.
func AutoLayout(tasks []Task) {
	for col, status := range Columns() {
		row := 0
		for i := range tasks {
			task := &tasks[i]
			if task.Status != status {
				continue
			}
			if !task.Placed() {
				pos := gridPosition(col, row)
				task.CanvasX = pos.X
				task.CanvasY = pos.Y
			}
			row++
		}
	}
}

// importPosition is where the i-th node of an imported flowchart lands.
// Left-right charts go in a single row; top-down charts fill columns of three.
func importPosition(dir FlowDirection, i int) Point {
	if dir == LeftRight {
		return gridPosition(i, 0)
	}
	return gridPosition(i/3, i%3)
}
