package main

import (
	"strings"
	"testing"
)

func TestParseFlowchartBasic(t *testing.T) {
	chart, ok := ParseFlowchart("graph TD\nA --> B\nB --> C")
	if !ok {
		t.Fatal("parse failed")
	}
	if chart.Direction != TopDown {
		t.Errorf("expected TD, got %s", chart.Direction)
	}
	if len(chart.Nodes) != 3 || len(chart.Edges) != 2 {
		t.Fatalf("expected 3 nodes and 2 edges, got %d and %d", len(chart.Nodes), len(chart.Edges))
	}
	for i, id := range []string{"A", "B", "C"} {
		if chart.Nodes[i].ID != id || chart.Nodes[i].Label != id {
			t.Errorf("node %d: %+v", i, chart.Nodes[i])
		}
	}
}

func TestParseFlowchartRejects(t *testing.T) {
	for _, input := range []string{"", "not a graph", "   \n\n", "graph LR\n%% only a comment"} {
		if chart, ok := ParseFlowchart(input); ok || chart != nil {
			t.Errorf("%q: expected no result, got %+v", input, chart)
		}
	}
}

func TestParseFlowchartLabels(t *testing.T) {
	chart, ok := ParseFlowchart("graph TD\nA[Start] --> B[End]")
	if !ok {
		t.Fatal("parse failed")
	}
	if chart.Nodes[0].Label != "Start" || chart.Nodes[1].Label != "End" {
		t.Errorf("unexpected labels %+v", chart.Nodes)
	}
}

func TestParseFlowchartDirection(t *testing.T) {
	tests := map[string]FlowDirection{
		"graph LR":     LeftRight,
		"flowchart RL": LeftRight,
		"FLOWCHART TB": TopDown,
		"graph":        TopDown,
	}
	for header, want := range tests {
		chart, ok := ParseFlowchart(header + "\nA --> B")
		if !ok {
			t.Fatalf("%q: parse failed", header)
		}
		if chart.Direction != want {
			t.Errorf("%q: expected %s, got %s", header, want, chart.Direction)
		}
	}
}

func TestParseFlowchartDedup(t *testing.T) {
	chart, ok := ParseFlowchart("graph TD\nA[One] --> B\nA --> B\nB --> A[Other]")
	if !ok {
		t.Fatal("parse failed")
	}
	if len(chart.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %+v", chart.Nodes)
	}
	if chart.Nodes[0].Label != "One" {
		t.Errorf("first occurrence should win, got %q", chart.Nodes[0].Label)
	}
	if len(chart.Edges) != 3 {
		t.Errorf("expected 3 edges, got %d", len(chart.Edges))
	}
}

func TestParseFlowchartArrowVariants(t *testing.T) {
	input := `flowchart LR
    %% comment
    style A fill:#f9f
    classDef hot fill:#f00
    A{Decide} -->|yes| B(Ship)
    A --->|no| C[Wait]
    B -.-> D
    C ==> D
    D --- E>Flag]
    F[Lonely]
`
	chart, ok := ParseFlowchart(input)
	if !ok {
		t.Fatal("parse failed")
	}

	wantNodes := []FlowNode{
		{ID: "A", Label: "Decide"},
		{ID: "B", Label: "Ship"},
		{ID: "C", Label: "Wait"},
		{ID: "D", Label: "D"},
		{ID: "E", Label: "Flag"},
		{ID: "F", Label: "Lonely"},
	}
	if len(chart.Nodes) != len(wantNodes) {
		t.Fatalf("expected %d nodes, got %+v", len(wantNodes), chart.Nodes)
	}
	for i, want := range wantNodes {
		if chart.Nodes[i] != want {
			t.Errorf("node %d: expected %+v, got %+v", i, want, chart.Nodes[i])
		}
	}

	wantEdges := []FlowEdge{
		{From: "A", To: "B", Label: "yes"},
		{From: "A", To: "C", Label: "no"},
		{From: "B", To: "D"},
		{From: "C", To: "D"},
		{From: "D", To: "E"},
	}
	if len(chart.Edges) != len(wantEdges) {
		t.Fatalf("expected %d edges, got %+v", len(wantEdges), chart.Edges)
	}
	for i, want := range wantEdges {
		if chart.Edges[i] != want {
			t.Errorf("edge %d: expected %+v, got %+v", i, want, chart.Edges[i])
		}
	}
}

func TestImportFlowchart(t *testing.T) {
	chart, _ := ParseFlowchart("graph TD\nA[Plan] --> B[Build]\nB -->|then| C[Test]\nC --> D[Ship]")
	tasks, conns := ImportFlowchart(chart, "claude", "proj")
	if len(tasks) != 4 || len(conns) != 3 {
		t.Fatalf("expected 4 tasks and 3 connections, got %d and %d", len(tasks), len(conns))
	}
	for i, task := range tasks {
		if task.ID == "" || task.Agent != "claude" || task.ProjectID != "proj" || task.Status != StatusBacklog {
			t.Errorf("task %d: %+v", i, task)
		}
		want := importPosition(TopDown, i)
		if task.CanvasX != want.X || task.CanvasY != want.Y {
			t.Errorf("task %d at (%v, %v), expected %+v", i, task.CanvasX, task.CanvasY, want)
		}
	}
	if conns[1].FromTaskID != tasks[1].ID || conns[1].ToTaskID != tasks[2].ID || conns[1].Label != "then" {
		t.Errorf("unexpected connection %+v", conns[1])
	}
}

func TestFormatFlowchartRoundTrip(t *testing.T) {
	tasks := []Task{
		{ID: "x", Title: "Write [draft]"},
		{ID: "y", Title: "Review"},
		{ID: "z", Title: "Publish"},
		{ID: "w", Title: ""},
	}
	conns := []TaskConnection{
		{ID: "1", FromTaskID: "x", ToTaskID: "y", Label: "ready|set"},
		{ID: "2", FromTaskID: "y", ToTaskID: "z"},
		{ID: "3", FromTaskID: "y", ToTaskID: "missing"},
	}
	out := FormatFlowchart(tasks, conns, LeftRight)
	if !strings.HasPrefix(out, "graph LR\n") {
		t.Errorf("unexpected header in %q", out)
	}

	chart, ok := ParseFlowchart(out)
	if !ok {
		t.Fatalf("formatted chart does not parse:\n%s", out)
	}
	if chart.Direction != LeftRight {
		t.Errorf("direction lost")
	}
	if len(chart.Nodes) != 4 || len(chart.Edges) != 2 {
		t.Fatalf("expected 4 nodes and 2 edges, got %+v", chart)
	}
	if chart.Nodes[0].Label != "Write [draft" {
		t.Errorf("unexpected label %q", chart.Nodes[0].Label)
	}
	if chart.Edges[0].Label != "readyset" {
		t.Errorf("unexpected edge label %q", chart.Edges[0].Label)
	}
	if chart.Nodes[3].Label != "untitled" {
		t.Errorf("empty title should format as untitled, got %q", chart.Nodes[3].Label)
	}
}
