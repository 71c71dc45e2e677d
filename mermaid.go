package main

import (
	"fmt"
	"strings"
)

type FlowDirection int

const (
	TopDown FlowDirection = iota
	LeftRight
)

func (d FlowDirection) String() string {
	if d == LeftRight {
		return "LR"
	}
	return "TD"
}

type FlowNode struct {
	ID    string
	Label string
}

type FlowEdge struct {
	From  string
	To    string
	Label string
}

// Flowchart is the node/edge list of a parsed Mermaid flowchart.
type Flowchart struct {
	Direction FlowDirection
	Nodes     []FlowNode
	Edges     []FlowEdge
}

// Longer arrows come first so "--->" is not split as "-->" plus a dash.
var flowArrows = []string{"--->", "-->", "-.->", "==>", "---"}

var labelDelims = [][2]string{{"[", "]"}, {"{", "}"}, {"(", ")"}, {">", "]"}}

// ParseFlowchart reads a restricted Mermaid flowchart. It returns false when
// the header line is missing or no nodes are found; partial results are
// never returned.
func ParseFlowchart(input string) (*Flowchart, bool) {
	var lines []string
	for _, line := range strings.Split(input, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil, false
	}

	header := strings.ToLower(lines[0])
	if !strings.HasPrefix(header, "graph") && !strings.HasPrefix(header, "flowchart") {
		return nil, false
	}
	chart := &Flowchart{Direction: TopDown}
	if strings.Contains(header, "lr") || strings.Contains(header, "rl") {
		chart.Direction = LeftRight
	}

	seen := make(map[string]bool)
	addNode := func(node FlowNode) {
		if !seen[node.ID] {
			seen[node.ID] = true
			chart.Nodes = append(chart.Nodes, node)
		}
	}

	for _, line := range lines[1:] {
		if strings.HasPrefix(line, "%%") || strings.HasPrefix(line, "style") || strings.HasPrefix(line, "class") {
			continue
		}
		if edge, ok := parseFlowEdge(line); ok {
			addNode(FlowNode{ID: edge.From, Label: nodeLabel(line, edge.From)})
			addNode(FlowNode{ID: edge.To, Label: nodeLabel(line, edge.To)})
			chart.Edges = append(chart.Edges, edge)
			continue
		}
		if node, ok := parseFlowNode(line); ok {
			addNode(node)
		}
	}

	if len(chart.Nodes) == 0 {
		return nil, false
	}
	return chart, true
}

func parseFlowEdge(line string) (FlowEdge, bool) {
	for _, arrow := range flowArrows {
		pos := strings.Index(line, arrow)
		if pos < 0 {
			continue
		}
		left := strings.TrimSpace(line[:pos])
		right := strings.TrimSpace(line[pos+len(arrow):])

		label := ""
		if strings.HasPrefix(right, "|") {
			if end := strings.Index(right[1:], "|"); end >= 0 {
				label = strings.TrimSpace(right[1 : end+1])
				right = strings.TrimSpace(right[end+2:])
			}
		}

		from, ok := flowNodeID(left)
		if !ok {
			continue
		}
		to, ok := flowNodeID(right)
		if !ok {
			continue
		}
		return FlowEdge{From: from, To: to, Label: label}, true
	}
	return FlowEdge{}, false
}

// flowNodeID strips any shape delimiter from a node reference: "A[Start]" is "A".
func flowNodeID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if end := strings.IndexAny(s, "[{(>/"); end >= 0 {
		s = s[:end]
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

func nodeLabel(line, id string) string {
	for _, d := range labelDelims {
		search := id + d[0]
		start := strings.Index(line, search)
		if start < 0 {
			continue
		}
		rest := line[start+len(search):]
		end := strings.Index(rest, d[1])
		if end < 0 {
			continue
		}
		if label := strings.TrimSpace(rest[:end]); label != "" {
			return label
		}
	}
	return id
}

func parseFlowNode(line string) (FlowNode, bool) {
	id, ok := flowNodeID(line)
	if !ok || !strings.ContainsAny(line, "[{(") {
		return FlowNode{}, false
	}
	return FlowNode{ID: id, Label: nodeLabel(line, id)}, true
}

// ImportFlowchart turns a flowchart into new tasks and the connections
// between them. Tasks are placed on the import grid.
func ImportFlowchart(chart *Flowchart, agent, projectID string) ([]Task, []TaskConnection) {
	tasks := make([]Task, 0, len(chart.Nodes))
	ids := make(map[string]string, len(chart.Nodes))
	for i, node := range chart.Nodes {
		task := NewTask(node.Label, agent, projectID)
		pos := importPosition(chart.Direction, i)
		task.CanvasX = pos.X
		task.CanvasY = pos.Y
		tasks = append(tasks, task)
		ids[node.ID] = task.ID
	}

	conns := make([]TaskConnection, 0, len(chart.Edges))
	for _, edge := range chart.Edges {
		from, okFrom := ids[edge.From]
		to, okTo := ids[edge.To]
		if okFrom && okTo {
			conns = append(conns, NewTaskConnection(from, to, edge.Label))
		}
	}
	return tasks, conns
}

// FormatFlowchart writes tasks and connections as a Mermaid flowchart that
// ParseFlowchart reads back. Node ids are n0, n1, ... in task order.
func FormatFlowchart(tasks []Task, conns []TaskConnection, dir FlowDirection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "graph %s\n", dir)

	ids := make(map[string]string, len(tasks))
	for i, task := range tasks {
		ids[task.ID] = fmt.Sprintf("n%d", i)
	}

	used := make(map[string]bool)
	for _, conn := range conns {
		from, okFrom := ids[conn.FromTaskID]
		to, okTo := ids[conn.ToTaskID]
		if !okFrom || !okTo {
			continue
		}
		fromIdx, _ := findTask(tasks, conn.FromTaskID)
		toIdx, _ := findTask(tasks, conn.ToTaskID)
		arrow := "-->"
		if conn.Label != "" {
			arrow = "-->|" + sanitizeFlowText(conn.Label, "|") + "|"
		}
		fmt.Fprintf(&b, "    %s[%s] %s %s[%s]\n",
			from, sanitizeFlowText(tasks[fromIdx].Title, "]"),
			arrow,
			to, sanitizeFlowText(tasks[toIdx].Title, "]"))
		used[from] = true
		used[to] = true
	}

	for i, task := range tasks {
		id := fmt.Sprintf("n%d", i)
		if !used[id] {
			fmt.Fprintf(&b, "    %s[%s]\n", id, sanitizeFlowText(task.Title, "]"))
		}
	}
	return b.String()
}

func sanitizeFlowText(s, closer string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, closer, "")
	if strings.TrimSpace(s) == "" {
		return "untitled"
	}
	return s
}
